package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/sbx/internal/boxes"
	"github.com/mmcdole/sbx/internal/dialog"
	"github.com/mmcdole/sbx/internal/domain"
	"github.com/mmcdole/sbx/internal/images"
	"github.com/mmcdole/sbx/internal/metadata"
	"github.com/mmcdole/sbx/internal/outbox"
	"github.com/mmcdole/sbx/internal/session"
	"github.com/mmcdole/sbx/internal/tagging"
)

// Command factories for async operations

const (
	loadTimeout = 30 * time.Second

	// patientPageSize is how many patients the patients view lists
	patientPageSize = 1000
)

// LoadBoxesCmd loads all paired boxes
func LoadBoxesCmd(svc *boxes.Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		list, err := svc.List(ctx)
		if err != nil {
			return LoadFailedMsg{View: ViewBoxes, Err: err}
		}
		return BoxesLoadedMsg{Boxes: list}
	}
}

// LoadOutboxCmd loads the outbox and groups it by transaction
func LoadOutboxCmd(svc *outbox.Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		groups, err := svc.Groups(ctx)
		if err != nil {
			return LoadFailedMsg{View: ViewOutbox, Err: err}
		}
		return OutboxLoadedMsg{Groups: groups}
	}
}

// LoadPatientsCmd loads the first page of patients
func LoadPatientsCmd(agg *metadata.Aggregator) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		patients, err := agg.Patients(ctx, 0, patientPageSize)
		if err != nil {
			return LoadFailedMsg{View: ViewPatients, Err: err}
		}
		return PatientsLoadedMsg{Patients: patients}
	}
}

// UpdateSessionCmd asks the node who is logged in
func UpdateSessionCmd(acc *session.Accessor) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return SessionMsg{State: acc.UpdateCurrentUser(ctx)}
	}
}

// LoginCmd authenticates against the node
func LoginCmd(acc *session.Accessor, user, pass string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return LoginDoneMsg{User: user, Err: acc.Login(ctx, user, pass)}
	}
}

// LogoutCmd ends the session
func LogoutCmd(acc *session.Accessor) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		if err := acc.Logout(ctx); err != nil {
			return ErrMsg{Err: err, Context: "logging out"}
		}
		return SessionMsg{State: acc.Current()}
	}
}

// Bulk commands block on the confirmation dialog, so they run under the
// model's context rather than a timeout.

// DeleteBoxesCmd runs the box delete pipeline
func DeleteBoxesCmd(ctx context.Context, svc *boxes.Service, list []domain.Box, opener dialog.Opener, reloader domain.Reloader) tea.Cmd {
	return func() tea.Msg {
		return BulkDoneMsg{View: ViewBoxes, Err: svc.Delete(ctx, list, opener, reloader)}
	}
}

// DeleteOutboxCmd runs the outbox delete pipeline
func DeleteOutboxCmd(ctx context.Context, svc *outbox.Service, groups []domain.TransactionGroup, opener dialog.Opener, reloader domain.Reloader, onError func(string)) tea.Cmd {
	return func() tea.Msg {
		return BulkDoneMsg{View: ViewOutbox, Err: svc.Delete(ctx, groups, opener, reloader, onError)}
	}
}

// DeleteImagesCmd resolves the images below the entries and runs the
// image delete pipeline
func DeleteImagesCmd(ctx context.Context, svc *images.Service, prefix string, entryIDs []int64, opener dialog.Opener, reloader domain.Reloader) tea.Cmd {
	return func() tea.Msg {
		ids, err := svc.Resolve(ctx, prefix, entryIDs)
		if err != nil {
			return ErrMsg{Err: err, Context: "resolving images"}
		}
		return BulkDoneMsg{View: ViewPatients, Err: svc.DeleteIDs(ctx, ids, opener, reloader)}
	}
}

// OpenTagDialogCmd resolves the series below the entries and the known tags
func OpenTagDialogCmd(svc *tagging.Service, prefix string, entryIDs []int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		d, err := svc.Open(ctx, prefix, entryIDs)
		return TagDialogReadyMsg{Dialog: d, Err: err}
	}
}

// ApplyTagsCmd posts the selected tags to every resolved series
func ApplyTagsCmd(svc *tagging.Service, d *tagging.Dialog) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return TagsAppliedMsg{Err: svc.Submit(ctx, d)}
	}
}

// GenerateBaseURLCmd asks the node for a connection URL for a new box
func GenerateBaseURLCmd(svc *boxes.Service, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		u, err := svc.GenerateBaseURL(ctx, name)
		return BaseURLGeneratedMsg{Name: name, URL: u, Err: err}
	}
}

// ConnectBoxCmd connects to a box that generated a URL on its side
func ConnectBoxCmd(svc *boxes.Service, name, baseURL string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		box, err := svc.Connect(ctx, name, baseURL)
		return BoxConnectedMsg{Box: box, Err: err}
	}
}

// ClearStatusCmd returns a command that clears the status with the given
// sequence number after a delay
func ClearStatusCmd(seq int, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearToastMsg{Seq: seq}
	})
}
