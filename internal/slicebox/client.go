package slicebox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/sbx/internal/domain"
)

const (
	defaultTimeout = 60 * time.Second

	// Page sizes used by the web UI when it wants "everything"
	allImagesCount  = 100000000
	allSeriesCount  = 100000000
	allStudiesCount = 1000000
)

// Client implements the domain repositories against a Slicebox node's REST API.
// Authentication is cookie based: a successful login sets a session cookie that
// the jar replays on every following request.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	jar        *sessionJar
	store      domain.Store
	logger     *slog.Logger

	// session orders persisting the cookies against clearing them
	session sync.Mutex
}

var (
	_ domain.BoxRepository       = (*Client)(nil)
	_ domain.OutboxRepository    = (*Client)(nil)
	_ domain.MetadataRepository  = (*Client)(nil)
	_ domain.SeriesTagRepository = (*Client)(nil)
	_ domain.UserRepository      = (*Client)(nil)
)

// Option configures a Client
type Option func(*Client)

// WithTimeout overrides the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithStore persists session cookies so a login survives process restarts
func WithStore(store domain.Store) Option {
	return func(c *Client) {
		c.store = store
	}
}

// WithHTTPClient replaces the underlying HTTP client. Its cookie jar is
// replaced with the client's own.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a new Slicebox API client
func NewClient(baseURL string, logger *slog.Logger, opts ...Option) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		return nil, domain.ErrNotConfigured
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q: scheme and host are required", baseURL)
	}

	jar, err := newSessionJar()
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: defaultTimeout},
		jar:        jar,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient.Jar = jar

	if c.store != nil {
		if cookies, ok := c.store.GetCookies(); ok {
			jar.SetCookies(c.baseURL, cookies)
			c.logger.Debug("restored session cookies", "count", len(cookies))
		}
	}

	return c, nil
}

// BaseURL returns the node URL the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// doRequest performs a request against the node. pathAndQuery is appended to
// the base URL verbatim so that pre-built filter query strings are sent
// exactly as constructed. A non-nil body is JSON encoded.
// Requests are never retried.
func (c *Client) doRequest(ctx context.Context, method, pathAndQuery string, body any) ([]byte, error) {
	reqURL := c.baseURL.String() + pathAndQuery

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("slicebox request", "method", method, "url", reqURL, "requestID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Error("slicebox request failed", "error", err, "url", reqURL, "requestID", requestID)
		return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.persistCookies()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &domain.APIError{
			Status:  resp.StatusCode,
			Method:  method,
			Path:    pathAndQuery,
			Payload: string(respBody),
		}
		c.logger.Error("slicebox request error",
			"status", resp.StatusCode,
			"body", string(respBody),
			"method", method,
			"path", pathAndQuery,
			"requestID", requestID,
		)
		return nil, apiErr
	}

	return respBody, nil
}

// getJSON performs a GET and decodes the JSON response into dest
func (c *Client) getJSON(ctx context.Context, pathAndQuery string, dest any) error {
	body, err := c.doRequest(ctx, http.MethodGet, pathAndQuery, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("failed to parse response from %s: %w", pathAndQuery, err)
	}
	return nil
}

// persistCookies writes the jar's cookies for the node to the store
func (c *Client) persistCookies() {
	if c.store == nil {
		return
	}
	c.session.Lock()
	defer c.session.Unlock()
	cookies := c.jar.Cookies(c.baseURL)
	if len(cookies) == 0 {
		return
	}
	if err := c.store.SaveCookies(cookies); err != nil {
		c.logger.Warn("failed to persist session cookies", "error", err)
	}
}

// clearSession forgets all cookies, in memory and on disk
func (c *Client) clearSession() {
	c.session.Lock()
	defer c.session.Unlock()
	c.jar.Reset()
	if c.store != nil {
		c.store.ClearCookies()
	}
}

// IsOffline reports whether err means the node could not be reached
func IsOffline(err error) bool {
	return errors.Is(err, domain.ErrServerOffline)
}
