// Package boxes pairs this node with remote Slicebox nodes.
package boxes

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/mmcdole/sbx/internal/bulk"
	"github.com/mmcdole/sbx/internal/dialog"
	"github.com/mmcdole/sbx/internal/domain"
)

// Noun is how boxes are named in confirmations and toasts
const Noun = "box(es)"

// ErrNameRequired is returned when a pairing is attempted without a box name
var ErrNameRequired = errors.New("remote box name is required")

// Service manages box pairing
type Service struct {
	repo     domain.BoxRepository
	pipeline *bulk.Pipeline
	notifier domain.Notifier
	logger   *slog.Logger
}

// NewService creates a new box service
func NewService(repo domain.BoxRepository, pipeline *bulk.Pipeline, notifier domain.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, pipeline: pipeline, notifier: notifier, logger: logger}
}

// List returns all paired boxes
func (s *Service) List(ctx context.Context) ([]domain.Box, error) {
	boxes, err := s.repo.GetBoxes(ctx)
	if err != nil {
		s.logger.Error("failed to fetch boxes", "error", err)
		return nil, err
	}
	s.logger.Debug("fetched boxes", "count", len(boxes))
	return boxes, nil
}

// Add posts a box entity, notifies the outcome and reloads the table
// either way
func (s *Service) Add(ctx context.Context, box domain.Box, reloader domain.Reloader) error {
	err := s.repo.AddBox(ctx, box)
	if err != nil {
		s.logger.Error("failed to add box", "name", box.Name, "error", err)
		s.notifyError(err)
	} else {
		s.notifyInfo("Box added")
	}
	if reloader != nil {
		reloader.Reload()
	}
	return err
}

// GenerateBaseURL creates a pending box for remoteBoxName and returns the
// URL the remote operator connects with. Errors are left to the caller,
// which shows them inline.
func (s *Service) GenerateBaseURL(ctx context.Context, remoteBoxName string) (string, error) {
	name := strings.TrimSpace(remoteBoxName)
	if name == "" {
		return "", ErrNameRequired
	}
	u, err := s.repo.GenerateBaseURL(ctx, name)
	if err != nil {
		s.logger.Error("failed to generate base URL", "name", name, "error", err)
		return "", err
	}
	s.logger.Info("generated box base URL", "name", name)
	return u, nil
}

// Connect pairs with a remote box using the URL it generated
func (s *Service) Connect(ctx context.Context, remoteBoxName, baseURL string) (*domain.Box, error) {
	name := strings.TrimSpace(remoteBoxName)
	if name == "" {
		return nil, ErrNameRequired
	}
	if _, err := url.ParseRequestURI(strings.TrimSpace(baseURL)); err != nil {
		return nil, err
	}
	box, err := s.repo.AddRemoteBox(ctx, name, strings.TrimSpace(baseURL))
	if err != nil {
		s.logger.Error("failed to connect to remote box", "name", name, "error", err)
		return nil, err
	}
	s.logger.Info("connected to remote box", "name", name)
	return box, nil
}

// DeleteRequest builds the bulk request deleting boxes one by one
func (s *Service) DeleteRequest(boxes []domain.Box, reloader domain.Reloader) bulk.Request {
	return bulk.Request{
		Noun:     Noun,
		IDs:      domain.IDs(boxes),
		Strategy: bulk.PerEntity(s.repo.DeleteBox),
		Reloader: reloader,
	}
}

// Delete asks for confirmation and deletes the given boxes
func (s *Service) Delete(ctx context.Context, boxes []domain.Box, opener dialog.Opener, reloader domain.Reloader) error {
	return s.pipeline.Run(ctx, s.DeleteRequest(boxes, reloader), opener)
}

func (s *Service) notifyInfo(msg string) {
	if s.notifier != nil {
		s.notifier.Info(msg)
	}
}

func (s *Service) notifyError(err error) {
	if s.notifier != nil {
		s.notifier.Error(domain.ErrorPayload(err))
	}
}

// MailBody returns the URL-encoded body of an email handing baseURL to the
// remote operator
func MailBody(baseURL string) string {
	return encodeURIComponent("Box connection URL:\n\n" + baseURL)
}

// MailtoLink returns a mailto: link carrying MailBody
func MailtoLink(baseURL string) string {
	return "mailto:?subject=" + encodeURIComponent("Slicebox connection") + "&body=" + MailBody(baseURL)
}

// encodeURIComponent escapes s for use as a single URI component, with
// spaces as %20
func encodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
