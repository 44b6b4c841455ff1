// Package session tracks who is logged in to the node.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/sbx/internal/domain"
)

// State is the latest known session. User is nil when nobody is logged in
// or the last lookup failed; Err holds that failure.
type State struct {
	User      *domain.User
	Err       error
	UpdatedAt time.Time
}

// LoggedIn reports whether the state carries a user
func (s State) LoggedIn() bool {
	return s.User != nil
}

// Accessor owns the current-user state. Concurrent refreshes are not
// sequenced: whichever lookup finishes last wins.
type Accessor struct {
	repo   domain.UserRepository
	store  domain.Store
	logger *slog.Logger

	mu    sync.RWMutex
	state State
}

// NewAccessor creates a new session accessor. store may be nil; when set,
// the last known user is restored from it.
func NewAccessor(repo domain.UserRepository, store domain.Store, logger *slog.Logger) *Accessor {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Accessor{repo: repo, store: store, logger: logger}
	if store != nil {
		if user, ok := store.GetCurrentUser(); ok {
			a.state = State{User: user}
		}
	}
	return a
}

// Current returns the latest state
func (a *Accessor) Current() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// UpdateCurrentUser asks the node who owns the session and records the
// answer, or clears the user on failure
func (a *Accessor) UpdateCurrentUser(ctx context.Context) State {
	user, err := a.repo.GetCurrentUser(ctx)
	if err != nil {
		a.logger.Debug("no current user", "error", err)
		user = nil
	}

	state := State{User: user, Err: err, UpdatedAt: time.Now()}
	a.mu.Lock()
	a.state = state
	a.mu.Unlock()

	a.persist(user)
	return state
}

// Login authenticates against the node
func (a *Accessor) Login(ctx context.Context, user, pass string) error {
	if err := a.repo.Login(ctx, user, pass); err != nil {
		a.logger.Error("login failed", "user", user, "error", err)
		return err
	}
	a.logger.Info("logged in", "user", user)
	return nil
}

// Logout ends the session and forgets the current user
func (a *Accessor) Logout(ctx context.Context) error {
	err := a.repo.Logout(ctx)
	if err != nil {
		a.logger.Error("logout failed", "error", err)
	}

	a.mu.Lock()
	a.state = State{UpdatedAt: time.Now()}
	a.mu.Unlock()
	a.persist(nil)
	return err
}

func (a *Accessor) persist(user *domain.User) {
	if a.store == nil {
		return
	}
	if user == nil {
		a.store.ClearCurrentUser()
		return
	}
	if err := a.store.SaveCurrentUser(user); err != nil {
		a.logger.Warn("failed to cache current user", "error", err)
	}
}
