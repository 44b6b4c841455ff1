package metadata

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmcdole/sbx/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo serves canned children per parent id, optionally delayed or failing
type fakeRepo struct {
	imagesBySeries   map[int64][]domain.Image
	imagesByStudy    map[int64][]domain.Image
	imagesByPatient  map[int64][]domain.Image
	seriesByStudy    map[int64][]domain.Series
	studiesByPatient map[int64][]domain.Study
	imagesByPrefix   map[string][]domain.Image
	delay            map[int64]time.Duration
	fail             map[int64]error

	mu      sync.Mutex
	filters []domain.Filter
	calls   atomic.Int32
}

func (r *fakeRepo) wait(id int64, f domain.Filter) error {
	r.calls.Add(1)
	r.mu.Lock()
	r.filters = append(r.filters, f)
	r.mu.Unlock()
	if d, ok := r.delay[id]; ok {
		time.Sleep(d)
	}
	return r.fail[id]
}

func (r *fakeRepo) GetPatients(ctx context.Context, startIndex, count int) ([]domain.Patient, error) {
	return []domain.Patient{{ID: 1}, {ID: 2}}, nil
}

func (r *fakeRepo) GetImagesForSeries(ctx context.Context, id int64) ([]domain.Image, error) {
	if err := r.wait(id, domain.Filter{}); err != nil {
		return nil, err
	}
	return r.imagesBySeries[id], nil
}

func (r *fakeRepo) GetImagesForStudy(ctx context.Context, id int64, f domain.Filter) ([]domain.Image, error) {
	if err := r.wait(id, f); err != nil {
		return nil, err
	}
	return r.imagesByStudy[id], nil
}

func (r *fakeRepo) GetImagesForPatient(ctx context.Context, id int64, f domain.Filter) ([]domain.Image, error) {
	if err := r.wait(id, f); err != nil {
		return nil, err
	}
	return r.imagesByPatient[id], nil
}

func (r *fakeRepo) GetSeriesForStudy(ctx context.Context, id int64, f domain.Filter) ([]domain.Series, error) {
	if err := r.wait(id, f); err != nil {
		return nil, err
	}
	return r.seriesByStudy[id], nil
}

func (r *fakeRepo) GetStudiesForPatient(ctx context.Context, id int64, f domain.Filter) ([]domain.Study, error) {
	if err := r.wait(id, f); err != nil {
		return nil, err
	}
	return r.studiesByPatient[id], nil
}

func (r *fakeRepo) GetImages(ctx context.Context, prefix string, id int64) ([]domain.Image, error) {
	if err := r.wait(id, domain.Filter{}); err != nil {
		return nil, err
	}
	return r.imagesByPrefix[prefix], nil
}

func (r *fakeRepo) DeleteImages(ctx context.Context, ids []int64) error { return nil }

func imgs(ids ...int64) []domain.Image {
	out := make([]domain.Image, len(ids))
	for i, id := range ids {
		out[i] = domain.Image{ID: id}
	}
	return out
}

func TestImagesForSeries_FlattensInInputOrder(t *testing.T) {
	repo := &fakeRepo{
		imagesBySeries: map[int64][]domain.Image{
			1: imgs(10, 11),
			2: imgs(20),
			3: imgs(30, 31, 32),
		},
		// The first entity answers last; order must not follow completion
		delay: map[int64]time.Duration{1: 30 * time.Millisecond},
	}
	agg := NewAggregator(repo, nil)

	got, err := agg.ImagesForSeries(context.Background(), []domain.Series{{ID: 1}, {ID: 2}, {ID: 3}})
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11, 20, 30, 31, 32}, domain.IDs(got))
}

func TestImagesForStudies_PassesFilterToEveryRequest(t *testing.T) {
	repo := &fakeRepo{imagesByStudy: map[int64][]domain.Image{1: imgs(1), 2: imgs(2)}}
	agg := NewAggregator(repo, nil)
	f := domain.Filter{SeriesTags: []domain.SeriesTag{{ID: 9}}}

	got, err := agg.ImagesForStudies(context.Background(), []domain.Study{{ID: 1}, {ID: 2}}, f)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, domain.IDs(got))
	require.Len(t, repo.filters, 2)
	for _, seen := range repo.filters {
		assert.Equal(t, f, seen)
	}
}

func TestImagesForPatients_EmptyInputMakesNoRequests(t *testing.T) {
	repo := &fakeRepo{}
	agg := NewAggregator(repo, nil)

	got, err := agg.ImagesForPatients(context.Background(), nil, domain.Filter{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, repo.calls.Load())
}

func TestStudiesForPatients_FailsWithFirstErrorAfterAllSettle(t *testing.T) {
	errFirst := errors.New("patient 2 is gone")
	errLater := errors.New("patient 3 is gone")
	repo := &fakeRepo{
		studiesByPatient: map[int64][]domain.Study{1: {{ID: 1}}},
		fail:             map[int64]error{2: errFirst, 3: errLater},
		delay:            map[int64]time.Duration{3: 30 * time.Millisecond},
	}
	agg := NewAggregator(repo, nil)

	got, err := agg.StudiesForPatients(context.Background(), []domain.Patient{{ID: 1}, {ID: 2}, {ID: 3}}, domain.Filter{})
	require.ErrorIs(t, err, errFirst)
	assert.Nil(t, got)
	assert.EqualValues(t, 3, repo.calls.Load())
}

func TestSeriesForPatients_TwoStages(t *testing.T) {
	repo := &fakeRepo{
		studiesByPatient: map[int64][]domain.Study{
			1: {{ID: 100}, {ID: 101}},
			2: {{ID: 200}},
		},
		seriesByStudy: map[int64][]domain.Series{
			100: {{ID: 1000}},
			101: {{ID: 1010}, {ID: 1011}},
			200: {{ID: 2000}},
		},
	}
	agg := NewAggregator(repo, nil)

	got, err := agg.SeriesForPatients(context.Background(), []domain.Patient{{ID: 1}, {ID: 2}}, domain.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []int64{1000, 1010, 1011, 2000}, domain.IDs(got))
	assert.EqualValues(t, 5, repo.calls.Load())
}

func TestSeriesForPatients_StudyFailureSkipsSecondStage(t *testing.T) {
	boom := errors.New("boom")
	repo := &fakeRepo{fail: map[int64]error{1: boom}}
	agg := NewAggregator(repo, nil)

	_, err := agg.SeriesForPatients(context.Background(), []domain.Patient{{ID: 1}}, domain.Filter{})
	require.ErrorIs(t, err, boom)
	assert.EqualValues(t, 1, repo.calls.Load())
}

func TestImagesBelow_DispatchesOnPrefix(t *testing.T) {
	repo := &fakeRepo{
		imagesByPatient: map[int64][]domain.Image{1: imgs(10, 11), 2: imgs(12)},
		imagesByStudy:   map[int64][]domain.Image{5: imgs(50)},
		imagesByPrefix:  map[string][]domain.Image{"/api/metadata/series/": imgs(70)},
	}
	agg := NewAggregator(repo, nil)
	ctx := context.Background()

	got, err := agg.ImagesBelow(ctx, domain.PatientsPrefix, []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11, 12}, domain.IDs(got))

	got, err = agg.ImagesBelow(ctx, domain.StudiesPrefix, []int64{5})
	require.NoError(t, err)
	assert.Equal(t, []int64{50}, domain.IDs(got))

	got, err = agg.ImagesBelow(ctx, "/api/metadata/series/", []int64{7})
	require.NoError(t, err)
	assert.Equal(t, []int64{70}, domain.IDs(got))

	for _, f := range repo.filters {
		assert.Equal(t, domain.Filter{}, f)
	}
	assert.EqualValues(t, 4, repo.calls.Load())
}

func TestImagesBelow_FailsWhenOneEntityFails(t *testing.T) {
	boom := &domain.APIError{Status: 404, Payload: "no such study"}
	repo := &fakeRepo{
		imagesByStudy: map[int64][]domain.Image{1: imgs(10)},
		fail:          map[int64]error{2: boom},
	}
	agg := NewAggregator(repo, nil)

	got, err := agg.ImagesBelow(context.Background(), domain.StudiesPrefix, []int64{1, 2})
	require.ErrorIs(t, err, boom)
	assert.Nil(t, got)
}
