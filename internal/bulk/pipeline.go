// Package bulk runs confirm-then-act operations over a selection of table
// rows: ask, execute, notify, reload.
package bulk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmcdole/sbx/internal/dialog"
	"github.com/mmcdole/sbx/internal/domain"
)

// Status is the lifecycle of one bulk operation
type Status int

const (
	AwaitingConfirmation Status = iota
	Executing
	Settled
	Cancelled
)

func (s Status) String() string {
	switch s {
	case AwaitingConfirmation:
		return "awaiting confirmation"
	case Executing:
		return "executing"
	case Settled:
		return "settled"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Request describes one bulk operation
type Request struct {
	// Noun names the entities in user-facing text, e.g. "box(es)"
	Noun string
	IDs  []int64

	Strategy Strategy
	Reloader domain.Reloader

	// Title, Message and Action override the default delete wording
	Title   string
	Message string
	Action  string

	// SuccessText overrides "N <noun> deleted"
	SuccessText string

	// OnError receives the error payload instead of the error toast
	OnError func(payload string)

	// Quiet suppresses the success toast
	Quiet bool

	// Observe is called on every status change
	Observe func(Status)
}

// Confirmation returns the dialog content for r
func (r Request) Confirmation() dialog.Confirm {
	c := dialog.Confirm{
		Title:   r.Title,
		Message: r.Message,
		Action:  r.Action,
	}
	if c.Title == "" {
		c.Title = "Delete " + r.Noun
	}
	if c.Message == "" {
		c.Message = fmt.Sprintf("Permanently delete %d %s?", len(r.IDs), r.Noun)
	}
	if c.Action == "" {
		c.Action = "Delete"
	}
	return c
}

func (r Request) successText() string {
	if r.SuccessText != "" {
		return r.SuccessText
	}
	return fmt.Sprintf("%d %s deleted", len(r.IDs), r.Noun)
}

// Pipeline runs bulk requests and reports their outcome through a Notifier
type Pipeline struct {
	notifier domain.Notifier
	logger   *slog.Logger
}

// NewPipeline creates a new bulk pipeline
func NewPipeline(notifier domain.Notifier, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{notifier: notifier, logger: logger}
}

// Run opens the confirmation dialog and blocks until the operation has
// settled or the dialog was cancelled. Cancelling returns
// dialog.ErrCancelled and runs nothing. Once confirmed, the dialog stays
// open while the strategy executes and is closed when it settles; the
// bound table is then reloaded exactly once, whatever the outcome.
func (p *Pipeline) Run(ctx context.Context, req Request, opener dialog.Opener) error {
	if req.Strategy == nil {
		return errors.New("bulk request has no strategy")
	}
	observe := func(s Status) {
		if req.Observe != nil {
			req.Observe(s)
		}
	}

	observe(AwaitingConfirmation)
	handle := opener.OpenConfirm(req.Confirmation())
	if _, err := handle.Wait(ctx); err != nil {
		handle.Close()
		observe(Cancelled)
		return err
	}

	observe(Executing)
	p.logger.Debug("bulk operation confirmed", "noun", req.Noun, "count", len(req.IDs))
	err := req.Strategy.Execute(ctx, req.IDs)
	handle.Close()
	observe(Settled)

	if err != nil {
		p.logger.Error("bulk operation failed", "noun", req.Noun, "count", len(req.IDs), "error", err)
		payload := domain.ErrorPayload(err)
		if req.OnError != nil {
			req.OnError(payload)
		} else if p.notifier != nil {
			p.notifier.Error(payload)
		}
	} else if !req.Quiet && p.notifier != nil {
		p.notifier.Info(req.successText())
	}

	if req.Reloader != nil {
		req.Reloader.Reload()
	}
	return err
}
