package tui

import (
	"github.com/mmcdole/sbx/internal/dialog"
	"github.com/mmcdole/sbx/internal/domain"
	"github.com/mmcdole/sbx/internal/session"
	"github.com/mmcdole/sbx/internal/slicebox"
	"github.com/mmcdole/sbx/internal/tagging"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface. An unreachable node is reported
// without the transport details, which rarely fit the footer.
func (e ErrMsg) Error() string {
	text := domain.ErrorPayload(e.Err)
	if slicebox.IsOffline(e.Err) {
		text = "node unreachable"
	}
	if e.Context != "" {
		return e.Context + ": " + text
	}
	return text
}

// BoxesLoadedMsg carries a fresh box list
type BoxesLoadedMsg struct {
	Boxes []domain.Box
}

// OutboxLoadedMsg carries the transaction groups of one outbox snapshot
type OutboxLoadedMsg struct {
	Groups []domain.TransactionGroup
}

// PatientsLoadedMsg carries the patient list
type PatientsLoadedMsg struct {
	Patients []domain.Patient
}

// LoadFailedMsg signals that a view could not refresh
type LoadFailedMsg struct {
	View View
	Err  error
}

// ReloadMsg asks a view to re-fetch its data
type ReloadMsg struct {
	View View
}

// ToastMsg shows a notification in the footer
type ToastMsg struct {
	Text  string
	Error bool
}

// ClearToastMsg hides the status with the given sequence number
type ClearToastMsg struct {
	Seq int
}

// OpenConfirmMsg asks the UI to show a confirmation dialog bound to Handle
type OpenConfirmMsg struct {
	Confirm dialog.Confirm
	Handle  *dialog.Handle[struct{}]
}

// BannerMsg sets the inline error banner of a view
type BannerMsg struct {
	View View
	Text string
}

// BulkDoneMsg signals that a bulk operation returned
type BulkDoneMsg struct {
	View View
	Err  error
}

// TagDialogReadyMsg carries the state of a freshly opened tag dialog
type TagDialogReadyMsg struct {
	Dialog *tagging.Dialog
	Err    error
}

// TagsAppliedMsg signals that tagging settled
type TagsAppliedMsg struct {
	Err error
}

// BaseURLGeneratedMsg carries the URL a remote box should connect to
type BaseURLGeneratedMsg struct {
	Name string
	URL  string
	Err  error
}

// BoxConnectedMsg signals that connecting to a remote box settled
type BoxConnectedMsg struct {
	Box *domain.Box
	Err error
}

// SessionMsg carries the result of a current-user lookup
type SessionMsg struct {
	State session.State
}

// LoginDoneMsg signals that a login attempt settled
type LoginDoneMsg struct {
	User string
	Err  error
}
