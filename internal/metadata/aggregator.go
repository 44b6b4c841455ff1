// Package metadata resolves the imaging hierarchy across many entities at
// once: one request per source entity, results flattened in input order.
package metadata

import (
	"context"
	"log/slog"

	"github.com/mmcdole/sbx/internal/domain"
	"github.com/mmcdole/sbx/internal/fanout"
)

// Aggregator fans metadata lookups out over a set of entities.
// A failing lookup fails the whole call with the first error to arrive;
// the other lookups are left to finish and their results are dropped.
type Aggregator struct {
	repo   domain.MetadataRepository
	logger *slog.Logger
}

// NewAggregator creates a new metadata aggregator
func NewAggregator(repo domain.MetadataRepository, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{repo: repo, logger: logger}
}

// ImagesForSeries returns the images of every given series
func (a *Aggregator) ImagesForSeries(ctx context.Context, series []domain.Series) ([]domain.Image, error) {
	return run(a, "images for series", len(series), func() ([]domain.Image, error) {
		return fanout.FlattenAll(ctx, series, func(ctx context.Context, s domain.Series) ([]domain.Image, error) {
			return a.repo.GetImagesForSeries(ctx, s.ID)
		})
	})
}

// ImagesForStudies returns the filtered images of every given study
func (a *Aggregator) ImagesForStudies(ctx context.Context, studies []domain.Study, f domain.Filter) ([]domain.Image, error) {
	return run(a, "images for studies", len(studies), func() ([]domain.Image, error) {
		return fanout.FlattenAll(ctx, studies, func(ctx context.Context, s domain.Study) ([]domain.Image, error) {
			return a.repo.GetImagesForStudy(ctx, s.ID, f)
		})
	})
}

// ImagesForPatients returns the filtered images of every given patient
func (a *Aggregator) ImagesForPatients(ctx context.Context, patients []domain.Patient, f domain.Filter) ([]domain.Image, error) {
	return run(a, "images for patients", len(patients), func() ([]domain.Image, error) {
		return fanout.FlattenAll(ctx, patients, func(ctx context.Context, p domain.Patient) ([]domain.Image, error) {
			return a.repo.GetImagesForPatient(ctx, p.ID, f)
		})
	})
}

// ImagesBelow returns the images below every entity of the given prefix.
// Patients and studies use their typed lookups with an empty filter; any
// other prefix goes through the generic images endpoint.
func (a *Aggregator) ImagesBelow(ctx context.Context, prefix string, ids []int64) ([]domain.Image, error) {
	switch prefix {
	case domain.PatientsPrefix:
		patients := make([]domain.Patient, len(ids))
		for i, id := range ids {
			patients[i] = domain.Patient{ID: id}
		}
		return a.ImagesForPatients(ctx, patients, domain.Filter{})
	case domain.StudiesPrefix:
		studies := make([]domain.Study, len(ids))
		for i, id := range ids {
			studies[i] = domain.Study{ID: id}
		}
		return a.ImagesForStudies(ctx, studies, domain.Filter{})
	}
	return run(a, "images below "+prefix, len(ids), func() ([]domain.Image, error) {
		return fanout.FlattenAll(ctx, ids, func(ctx context.Context, id int64) ([]domain.Image, error) {
			return a.repo.GetImages(ctx, prefix, id)
		})
	})
}

// SeriesForStudies returns the filtered series of every given study
func (a *Aggregator) SeriesForStudies(ctx context.Context, studies []domain.Study, f domain.Filter) ([]domain.Series, error) {
	return run(a, "series for studies", len(studies), func() ([]domain.Series, error) {
		return fanout.FlattenAll(ctx, studies, func(ctx context.Context, s domain.Study) ([]domain.Series, error) {
			return a.repo.GetSeriesForStudy(ctx, s.ID, f)
		})
	})
}

// StudiesForPatients returns the filtered studies of every given patient
func (a *Aggregator) StudiesForPatients(ctx context.Context, patients []domain.Patient, f domain.Filter) ([]domain.Study, error) {
	return run(a, "studies for patients", len(patients), func() ([]domain.Study, error) {
		return fanout.FlattenAll(ctx, patients, func(ctx context.Context, p domain.Patient) ([]domain.Study, error) {
			return a.repo.GetStudiesForPatient(ctx, p.ID, f)
		})
	})
}

// SeriesForPatients resolves patients to studies, then studies to series.
// The second stage starts only after every study lookup has settled.
func (a *Aggregator) SeriesForPatients(ctx context.Context, patients []domain.Patient, f domain.Filter) ([]domain.Series, error) {
	studies, err := a.StudiesForPatients(ctx, patients, f)
	if err != nil {
		return nil, err
	}
	return a.SeriesForStudies(ctx, studies, f)
}

func run[T any](a *Aggregator, op string, n int, fn func() ([]T, error)) ([]T, error) {
	a.logger.Debug("metadata fan-out", "op", op, "entities", n)
	out, err := fn()
	if err != nil {
		a.logger.Error("metadata fan-out failed", "op", op, "error", err)
		return nil, err
	}
	a.logger.Debug("metadata fan-out done", "op", op, "results", len(out))
	return out, nil
}

// Patients returns one page of the patient list
func (a *Aggregator) Patients(ctx context.Context, startIndex, count int) ([]domain.Patient, error) {
	patients, err := a.repo.GetPatients(ctx, startIndex, count)
	if err != nil {
		a.logger.Error("failed to fetch patients", "error", err)
		return nil, err
	}
	return patients, nil
}
