// Package app wires the node client, the local store and the services
// shared by the TUI and the CLI.
package app

import (
	"fmt"
	"log/slog"

	"github.com/mmcdole/sbx/internal/boxes"
	"github.com/mmcdole/sbx/internal/bulk"
	"github.com/mmcdole/sbx/internal/config"
	"github.com/mmcdole/sbx/internal/domain"
	"github.com/mmcdole/sbx/internal/images"
	"github.com/mmcdole/sbx/internal/metadata"
	"github.com/mmcdole/sbx/internal/outbox"
	"github.com/mmcdole/sbx/internal/session"
	"github.com/mmcdole/sbx/internal/slicebox"
	"github.com/mmcdole/sbx/internal/store"
	"github.com/mmcdole/sbx/internal/tagging"
)

// Node is everything sbx asks of a Slicebox node
type Node interface {
	domain.BoxRepository
	domain.OutboxRepository
	domain.MetadataRepository
	domain.SeriesTagRepository
	domain.UserRepository
}

// Services are the controllers behind every screen and command
type Services struct {
	Boxes    *boxes.Service
	Outbox   *outbox.Service
	Images   *images.Service
	Tagging  *tagging.Service
	Metadata *metadata.Aggregator
	Session  *session.Accessor
}

// NewServices builds the services over node. Outcomes are reported to
// notifier; st may be nil.
func NewServices(node Node, st domain.Store, notifier domain.Notifier, logger *slog.Logger) Services {
	if logger == nil {
		logger = slog.Default()
	}
	pipeline := bulk.NewPipeline(notifier, logger)
	agg := metadata.NewAggregator(node, logger)
	return Services{
		Boxes:    boxes.NewService(node, pipeline, notifier, logger),
		Outbox:   outbox.NewService(node, pipeline, logger),
		Images:   images.NewService(node, agg, pipeline, logger),
		Tagging:  tagging.NewService(agg, node, st, notifier, logger),
		Metadata: agg,
		Session:  session.NewAccessor(node, st, logger),
	}
}

// App is a connection to the configured node
type App struct {
	Config *config.Config
	Client *slicebox.Client
	Store  domain.Store
	Logger *slog.Logger
}

// Open connects to the node named in cfg and opens its local store
func Open(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if !cfg.IsConfigured() {
		return nil, domain.ErrNotConfigured
	}
	if logger == nil {
		logger = slog.Default()
	}

	st, err := store.NewSessionStore(cfg.Cache.Dir, cfg.Server.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	client, err := slicebox.NewClient(cfg.Server.URL, logger,
		slicebox.WithTimeout(cfg.HTTP.Timeout),
		slicebox.WithStore(st),
	)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &App{Config: cfg, Client: client, Store: st, Logger: logger}, nil
}

// Services builds the services reporting to notifier
func (a *App) Services(notifier domain.Notifier) Services {
	return NewServices(a.Client, a.Store, notifier, a.Logger)
}

// Close releases the local store
func (a *App) Close() error {
	return a.Store.Close()
}
