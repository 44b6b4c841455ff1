package domain

import (
	"context"
)

// Filter narrows metadata queries. Empty sets are not sent to the server.
type Filter struct {
	Sources     []Source
	SeriesTypes []SeriesType
	SeriesTags  []SeriesTag
}

// IsEmpty reports whether no filter set is populated
func (f Filter) IsEmpty() bool {
	return len(f.Sources) == 0 && len(f.SeriesTypes) == 0 && len(f.SeriesTags) == 0
}

// BoxRepository provides access to box pairing
type BoxRepository interface {
	// GetBoxes returns all paired boxes
	GetBoxes(ctx context.Context) ([]Box, error)

	// AddBox registers a box entity as-is
	AddBox(ctx context.Context, box Box) error

	// GenerateBaseURL asks the node to create a pending box and returns the
	// URL the remote side should connect to
	GenerateBaseURL(ctx context.Context, remoteBoxName string) (string, error)

	// AddRemoteBox connects to a box that generated a base URL on its side
	AddRemoteBox(ctx context.Context, name, baseURL string) (*Box, error)

	// DeleteBox removes a box
	DeleteBox(ctx context.Context, id int64) error
}

// OutboxRepository provides access to the outgoing transfer queue
type OutboxRepository interface {
	// GetOutbox returns every outbox entry
	GetOutbox(ctx context.Context) ([]OutboxEntry, error)

	// DeleteOutboxEntry removes a single entry
	DeleteOutboxEntry(ctx context.Context, id int64) error
}

// Entity prefixes accepted by MetadataRepository.GetImages
const (
	StudiesPrefix  = "/api/metadata/studies/"
	PatientsPrefix = "/api/metadata/patients/"
)

// MetadataRepository provides per-entity metadata lookups. Each call is a
// single request; fan-out across entities is done by the caller.
type MetadataRepository interface {
	GetPatients(ctx context.Context, startIndex, count int) ([]Patient, error)
	GetImagesForSeries(ctx context.Context, seriesID int64) ([]Image, error)
	GetImagesForStudy(ctx context.Context, studyID int64, f Filter) ([]Image, error)
	GetImagesForPatient(ctx context.Context, patientID int64, f Filter) ([]Image, error)
	GetSeriesForStudy(ctx context.Context, studyID int64, f Filter) ([]Series, error)
	GetStudiesForPatient(ctx context.Context, patientID int64, f Filter) ([]Study, error)

	// GetImages fetches "<prefix><id>/images" for an arbitrary entity prefix
	GetImages(ctx context.Context, prefix string, id int64) ([]Image, error)

	// DeleteImages removes all given images in one request
	DeleteImages(ctx context.Context, ids []int64) error
}

// SeriesTagRepository provides access to series tags
type SeriesTagRepository interface {
	GetSeriesTags(ctx context.Context) ([]SeriesTag, error)
	AddSeriesTag(ctx context.Context, seriesID int64, tag SeriesTag) error
}

// UserRepository provides session operations
type UserRepository interface {
	GetCurrentUser(ctx context.Context) (*User, error)
	Login(ctx context.Context, user, pass string) error
	Logout(ctx context.Context) error
}

// Notifier shows user-facing notifications. Info messages are transient;
// errors stay visible until dismissed or their timeout elapses.
type Notifier interface {
	Info(message string)
	Error(message string)
}

// Reloader is a view that can re-fetch its data
type Reloader interface {
	Reload()
}

// ReloadFunc adapts a function to Reloader
type ReloadFunc func()

func (f ReloadFunc) Reload() { f() }
