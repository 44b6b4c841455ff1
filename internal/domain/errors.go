package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for domain operations
var (
	// ErrServerOffline indicates the Slicebox node is unreachable
	ErrServerOffline = errors.New("slicebox node is unreachable")

	// ErrAuthFailed indicates the session is missing or the credentials were rejected
	ErrAuthFailed = errors.New("not authenticated")

	// ErrNotFound indicates the requested entity does not exist
	ErrNotFound = errors.New("entity not found")

	// ErrNotConfigured indicates no server URL has been set up yet
	ErrNotConfigured = errors.New("server is not configured")
)

// APIError is a non-2xx response from the node. Payload holds the raw
// response body, which the server uses as a human readable error message.
type APIError struct {
	Status  int
	Method  string
	Path    string
	Payload string
}

func (e *APIError) Error() string {
	if e.Payload != "" {
		return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.Status, e.Payload)
	}
	return fmt.Sprintf("%s %s: %d", e.Method, e.Path, e.Status)
}

// Is maps status codes onto the sentinel errors
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrAuthFailed:
		return e.Status == 401 || e.Status == 403
	case ErrNotFound:
		return e.Status == 404
	}
	return false
}

// ErrorPayload returns the text that should be shown to the user for err:
// the server-provided body when there is one, the error text otherwise.
func ErrorPayload(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if p := strings.TrimSpace(apiErr.Payload); p != "" {
			return p
		}
	}
	return err.Error()
}
