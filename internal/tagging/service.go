// Package tagging attaches series tags to every series below a selection of
// studies or patients.
package tagging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmcdole/sbx/internal/domain"
	"github.com/mmcdole/sbx/internal/fanout"
	"github.com/mmcdole/sbx/internal/metadata"
)

// Service resolves series ids and applies tags to them
type Service struct {
	metadata *metadata.Aggregator
	tags     domain.SeriesTagRepository
	store    domain.Store
	notifier domain.Notifier
	logger   *slog.Logger
}

// NewService creates a new tagging service. store may be nil.
func NewService(agg *metadata.Aggregator, tags domain.SeriesTagRepository, store domain.Store, notifier domain.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{metadata: agg, tags: tags, store: store, notifier: notifier, logger: logger}
}

// ResolveSeriesIDs fetches "<prefix><id>/images" for every entry and returns
// the distinct series ids of the images, in first-seen order
func (s *Service) ResolveSeriesIDs(ctx context.Context, prefix string, entryIDs []int64) ([]int64, error) {
	images, err := s.metadata.ImagesBelow(ctx, prefix, entryIDs)
	if err != nil {
		s.logger.Error("failed to resolve series", "prefix", prefix, "entries", len(entryIDs), "error", err)
		return nil, err
	}

	seriesIDs := make([]int64, len(images))
	for i, img := range images {
		seriesIDs[i] = img.SeriesID
	}
	unique := fanout.Unique(seriesIDs)
	s.logger.Debug("resolved series", "entries", len(entryIDs), "images", len(images), "series", len(unique))
	return unique, nil
}

// KnownTags fetches the node's series tags. The last successful answer is
// kept in the store and served when the node cannot be reached.
func (s *Service) KnownTags(ctx context.Context) ([]domain.SeriesTag, error) {
	tags, err := s.tags.GetSeriesTags(ctx)
	if err != nil {
		if s.store != nil {
			if cached, ok := s.store.GetSeriesTags(); ok {
				s.logger.Warn("using cached series tags", "error", err, "count", len(cached))
				return cached, nil
			}
		}
		s.logger.Error("failed to fetch series tags", "error", err)
		return nil, err
	}
	if s.store != nil {
		if err := s.store.SaveSeriesTags(tags); err != nil {
			s.logger.Warn("failed to cache series tags", "error", err)
		}
	}
	return tags, nil
}

// Apply posts every tag to every series. All requests are issued at once;
// the outcome is notified after all of them settled.
func (s *Service) Apply(ctx context.Context, seriesIDs []int64, tags []domain.SeriesTag) error {
	pairs := fanout.Product(tags, seriesIDs)
	s.logger.Debug("tagging series", "series", len(seriesIDs), "tags", len(tags), "requests", len(pairs))

	err := fanout.Each(ctx, pairs, func(ctx context.Context, p fanout.Pair[domain.SeriesTag, int64]) error {
		return s.tags.AddSeriesTag(ctx, p.Second, p.First)
	})
	if err != nil {
		s.logger.Error("failed to tag series", "error", err)
		if s.notifier != nil {
			s.notifier.Error(domain.ErrorPayload(err))
		}
		return err
	}

	if s.notifier != nil {
		s.notifier.Info(fmt.Sprintf("%d series tagged.", len(seriesIDs)))
	}
	return nil
}
