// Package dialog models a modal dialog as a value that settles exactly once,
// either confirmed with a result or cancelled.
package dialog

import (
	"context"
	"errors"
	"sync"
)

// ErrCancelled is returned by Wait when the user dismissed the dialog
var ErrCancelled = errors.New("dialog cancelled")

// State is the settlement state of a Future
type State int

const (
	Pending State = iota
	Confirmed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Future is the outcome of a dialog. The first call to Confirm or Cancel
// wins; later calls are ignored.
type Future[T any] struct {
	mu    sync.Mutex
	state State
	value T
	done  chan struct{}
}

// NewFuture creates a pending future
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Confirm settles the future with value. It reports whether this call
// settled it.
func (f *Future[T]) Confirm(value T) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != Pending {
		return false
	}
	f.state = Confirmed
	f.value = value
	close(f.done)
	return true
}

// Cancel settles the future as cancelled. It reports whether this call
// settled it.
func (f *Future[T]) Cancel() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != Pending {
		return false
	}
	f.state = Cancelled
	close(f.done)
	return true
}

// State returns the current state
func (f *Future[T]) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Done is closed once the future settles
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future settles or ctx ends
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	var zero T
	select {
	case <-f.done:
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Cancelled {
		return zero, ErrCancelled
	}
	return f.value, nil
}
