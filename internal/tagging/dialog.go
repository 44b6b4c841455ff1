package tagging

import (
	"context"

	"github.com/mmcdole/sbx/internal/domain"
	"github.com/sourcegraph/conc"
)

// Dialog is the state behind one "tag series" dialog
type Dialog struct {
	SeriesIDs []int64
	Selection *Selection
}

// Open resolves the series below entryIDs and fetches the known tags, both
// at once. Either failure fails the dialog.
func (s *Service) Open(ctx context.Context, prefix string, entryIDs []int64) (*Dialog, error) {
	var (
		wg        conc.WaitGroup
		seriesIDs []int64
		known     []domain.SeriesTag
		seriesErr error
		tagsErr   error
	)
	wg.Go(func() {
		seriesIDs, seriesErr = s.ResolveSeriesIDs(ctx, prefix, entryIDs)
	})
	wg.Go(func() {
		known, tagsErr = s.KnownTags(ctx)
	})
	wg.Wait()

	if seriesErr != nil {
		return nil, seriesErr
	}
	if tagsErr != nil {
		return nil, tagsErr
	}
	return &Dialog{SeriesIDs: seriesIDs, Selection: NewSelection(known)}, nil
}

// Submit applies the selected tags to the resolved series
func (s *Service) Submit(ctx context.Context, d *Dialog) error {
	return s.Apply(ctx, d.SeriesIDs, d.Selection.Tags())
}
