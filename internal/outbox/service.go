// Package outbox monitors the node's outgoing transfer queue.
package outbox

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmcdole/sbx/internal/bulk"
	"github.com/mmcdole/sbx/internal/dialog"
	"github.com/mmcdole/sbx/internal/domain"
)

// Service lists and deletes outbox transactions
type Service struct {
	repo     domain.OutboxRepository
	pipeline *bulk.Pipeline
	logger   *slog.Logger
}

// NewService creates a new outbox service
func NewService(repo domain.OutboxRepository, pipeline *bulk.Pipeline, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, pipeline: pipeline, logger: logger}
}

// Entries returns the raw outbox snapshot
func (s *Service) Entries(ctx context.Context) ([]domain.OutboxEntry, error) {
	entries, err := s.repo.GetOutbox(ctx)
	if err != nil {
		s.logger.Error("failed to fetch outbox", "error", err)
		return nil, err
	}
	return entries, nil
}

// Groups fetches a fresh snapshot and groups it by transaction
func (s *Service) Groups(ctx context.Context) ([]domain.TransactionGroup, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return nil, err
	}
	groups := GroupTransactions(entries)
	s.logger.Debug("fetched outbox", "entries", len(entries), "transactions", len(groups))
	return groups, nil
}

// DeleteRequest builds the bulk request removing every entry of groups.
// Failures go to onError; success is silent.
func (s *Service) DeleteRequest(groups []domain.TransactionGroup, reloader domain.Reloader, onError func(string)) bulk.Request {
	return bulk.Request{
		Noun:     "outbox entries",
		IDs:      EntryIDs(groups),
		Title:    "Delete Outbox Entries",
		Message:  fmt.Sprintf("Permanently delete %d outbox entries?", len(groups)),
		Strategy: bulk.PerEntity(s.repo.DeleteOutboxEntry),
		Reloader: reloader,
		OnError:  onError,
		Quiet:    true,
	}
}

// Delete asks for confirmation and removes every entry of groups
func (s *Service) Delete(ctx context.Context, groups []domain.TransactionGroup, opener dialog.Opener, reloader domain.Reloader, onError func(string)) error {
	return s.pipeline.Run(ctx, s.DeleteRequest(groups, reloader, onError), opener)
}
