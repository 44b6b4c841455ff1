// Package images deletes every image below a selection of studies or
// patients in a single request.
package images

import (
	"context"
	"log/slog"

	"github.com/mmcdole/sbx/internal/bulk"
	"github.com/mmcdole/sbx/internal/dialog"
	"github.com/mmcdole/sbx/internal/domain"
	"github.com/mmcdole/sbx/internal/fanout"
	"github.com/mmcdole/sbx/internal/metadata"
)

// Noun is how images are named in dialogs and notifications
const Noun = "image(s)"

// Service resolves and deletes images
type Service struct {
	repo     domain.MetadataRepository
	metadata *metadata.Aggregator
	pipeline *bulk.Pipeline
	logger   *slog.Logger
}

// NewService creates a new image service. Lookups go through agg, deletes
// through repo.
func NewService(repo domain.MetadataRepository, agg *metadata.Aggregator, pipeline *bulk.Pipeline, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, metadata: agg, pipeline: pipeline, logger: logger}
}

// Resolve returns the ids of the images below every entry, in entry order
func (s *Service) Resolve(ctx context.Context, prefix string, entryIDs []int64) ([]int64, error) {
	imgs, err := s.metadata.ImagesBelow(ctx, prefix, entryIDs)
	if err != nil {
		s.logger.Error("failed to resolve images", "prefix", prefix, "entries", len(entryIDs), "error", err)
		return nil, err
	}
	return fanout.Unique(domain.IDs(imgs)), nil
}

// DeleteRequest builds the bulk request deleting all imageIDs at once
func (s *Service) DeleteRequest(imageIDs []int64, reloader domain.Reloader) bulk.Request {
	return bulk.Request{
		Noun:     Noun,
		IDs:      imageIDs,
		Strategy: bulk.SingleBatch(s.repo.DeleteImages),
		Reloader: reloader,
	}
}

// Delete resolves the images below entryIDs, asks for confirmation and
// deletes them
func (s *Service) Delete(ctx context.Context, prefix string, entryIDs []int64, opener dialog.Opener, reloader domain.Reloader) error {
	ids, err := s.Resolve(ctx, prefix, entryIDs)
	if err != nil {
		return err
	}
	return s.DeleteIDs(ctx, ids, opener, reloader)
}

// DeleteIDs asks for confirmation and deletes already resolved images
func (s *Service) DeleteIDs(ctx context.Context, imageIDs []int64, opener dialog.Opener, reloader domain.Reloader) error {
	return s.pipeline.Run(ctx, s.DeleteRequest(imageIDs, reloader), opener)
}
