package slicebox

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/mmcdole/sbx/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	URI    string
	Body   string
	Cookie string
}

// fakeNode is a minimal Slicebox node that records every request
type fakeNode struct {
	mu       sync.Mutex
	requests []recordedRequest
	handlers map[string]http.HandlerFunc
	server   *httptest.Server
}

func newFakeNode(t *testing.T) *fakeNode {
	t.Helper()
	n := &fakeNode{handlers: map[string]http.HandlerFunc{}}
	n.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		cookie := ""
		if c, err := r.Cookie("slicebox-session"); err == nil {
			cookie = c.Value
		}
		n.mu.Lock()
		n.requests = append(n.requests, recordedRequest{
			Method: r.Method,
			URI:    r.URL.RequestURI(),
			Body:   string(body),
			Cookie: cookie,
		})
		h, ok := n.handlers[r.Method+" "+r.URL.Path]
		n.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusOK)
			return
		}
		h(w, r)
	}))
	t.Cleanup(n.server.Close)
	return n
}

func (n *fakeNode) handle(pattern string, h http.HandlerFunc) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers[pattern] = h
}

func (n *fakeNode) last() recordedRequest {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.requests[len(n.requests)-1]
}

func jsonHandler(v any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
}

func newTestClient(t *testing.T, n *fakeNode, opts ...Option) *Client {
	t.Helper()
	c, err := NewClient(n.server.URL, nil, opts...)
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresURL(t *testing.T) {
	_, err := NewClient("", nil)
	require.ErrorIs(t, err, domain.ErrNotConfigured)

	_, err = NewClient("localhost", nil)
	require.Error(t, err)
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	c, err := NewClient("http://node.example:5000/", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://node.example:5000", c.BaseURL())
}

func TestGetBoxes(t *testing.T) {
	n := newFakeNode(t)
	n.handle("GET /api/boxes", jsonHandler([]domain.Box{
		{ID: 1, Name: "remote", BaseURL: "http://remote/api/box/abc", SendMethod: "PUSH", Online: true},
	}))
	c := newTestClient(t, n)

	boxes, err := c.GetBoxes(context.Background())
	require.NoError(t, err)
	require.Len(t, boxes, 1)
	assert.Equal(t, "remote", boxes[0].Name)
	assert.True(t, boxes[0].Online)
	assert.Equal(t, "/api/boxes", n.last().URI)
}

func TestGenerateBaseURL(t *testing.T) {
	n := newFakeNode(t)
	n.handle("POST /api/boxes/generatebaseurl", jsonHandler(map[string]string{"value": "http://node/api/box/xyz"}))
	c := newTestClient(t, n)

	u, err := c.GenerateBaseURL(context.Background(), "hospital")
	require.NoError(t, err)
	assert.Equal(t, "http://node/api/box/xyz", u)
	assert.JSONEq(t, `{"value":"hospital"}`, n.last().Body)
}

func TestAddRemoteBox(t *testing.T) {
	n := newFakeNode(t)
	n.handle("POST /api/boxes/addremotebox", jsonHandler(domain.Box{ID: 9, Name: "hospital"}))
	c := newTestClient(t, n)

	box, err := c.AddRemoteBox(context.Background(), "hospital", "http://remote/api/box/abc")
	require.NoError(t, err)
	assert.Equal(t, int64(9), box.ID)
	assert.JSONEq(t, `{"name":"hospital","baseUrl":"http://remote/api/box/abc"}`, n.last().Body)
}

func TestDeleteEndpoints(t *testing.T) {
	n := newFakeNode(t)
	c := newTestClient(t, n)
	ctx := context.Background()

	require.NoError(t, c.DeleteBox(ctx, 4))
	assert.Equal(t, recordedRequest{Method: http.MethodDelete, URI: "/api/boxes/4"}, n.last())

	require.NoError(t, c.DeleteOutboxEntry(ctx, 17))
	assert.Equal(t, recordedRequest{Method: http.MethodDelete, URI: "/api/outbox/17"}, n.last())

	require.NoError(t, c.DeleteImages(ctx, []int64{3, 1, 2}))
	last := n.last()
	assert.Equal(t, "/api/images/delete", last.URI)
	assert.JSONEq(t, `[3,1,2]`, last.Body)
}

func TestMetadataEndpoints(t *testing.T) {
	n := newFakeNode(t)
	c := newTestClient(t, n)
	ctx := context.Background()
	f := domain.Filter{
		Sources:    []domain.Source{{SourceType: "box", SourceID: 1}},
		SeriesTags: []domain.SeriesTag{{ID: 7}},
	}

	tests := []struct {
		name string
		call func() error
		want string
	}{
		{
			name: "images for series",
			call: func() error { _, err := c.GetImagesForSeries(ctx, 5); return err },
			want: "/api/metadata/images?startindex=0&count=100000000&seriesid=5",
		},
		{
			name: "images for study",
			call: func() error { _, err := c.GetImagesForStudy(ctx, 5, f); return err },
			want: "/api/metadata/studies/5/images?sources=box:1&seriestags=7",
		},
		{
			name: "images for patient",
			call: func() error { _, err := c.GetImagesForPatient(ctx, 2, domain.Filter{}); return err },
			want: "/api/metadata/patients/2/images",
		},
		{
			name: "series for study",
			call: func() error { _, err := c.GetSeriesForStudy(ctx, 5, f); return err },
			want: "/api/metadata/series?startindex=0&count=100000000&studyid=5&sources=box:1&seriestags=7",
		},
		{
			name: "studies for patient",
			call: func() error { _, err := c.GetStudiesForPatient(ctx, 2, domain.Filter{}); return err },
			want: "/api/metadata/studies?startindex=0&count=1000000&patientid=2",
		},
		{
			name: "images by prefix",
			call: func() error { _, err := c.GetImages(ctx, PatientsPrefix, 8); return err },
			want: "/api/metadata/patients/8/images",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n.handle(http.MethodGet+" "+pathOf(tt.want), jsonHandler([]any{}))
			require.NoError(t, tt.call())
			assert.Equal(t, tt.want, n.last().URI)
		})
	}
}

func pathOf(uri string) string {
	for i, r := range uri {
		if r == '?' {
			return uri[:i]
		}
	}
	return uri
}

func TestAddSeriesTag_SendsNewTagSentinel(t *testing.T) {
	n := newFakeNode(t)
	c := newTestClient(t, n)

	err := c.AddSeriesTag(context.Background(), 12, domain.SeriesTag{ID: domain.NewTagID, Name: "Lungs"})
	require.NoError(t, err)
	last := n.last()
	assert.Equal(t, "/api/metadata/series/12/seriestags", last.URI)
	assert.JSONEq(t, `{"id":-1,"name":"Lungs"}`, last.Body)
}

func TestAPIErrorCarriesPayload(t *testing.T) {
	n := newFakeNode(t)
	n.handle("DELETE /api/boxes/3", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, "Box is in use")
	})
	c := newTestClient(t, n)

	err := c.DeleteBox(context.Background(), 3)
	require.Error(t, err)

	var apiErr *domain.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Box is in use", domain.ErrorPayload(err))
}

func TestUnauthorizedMapsToAuthFailed(t *testing.T) {
	n := newFakeNode(t)
	n.handle("GET /api/users/current", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	c := newTestClient(t, n)

	_, err := c.GetCurrentUser(context.Background())
	require.ErrorIs(t, err, domain.ErrAuthFailed)
}

func TestUnreachableNodeIsOffline(t *testing.T) {
	n := newFakeNode(t)
	c := newTestClient(t, n)
	n.server.Close()

	_, err := c.GetOutbox(context.Background())
	require.Error(t, err)
	assert.True(t, IsOffline(err))
}

func TestCanceledContextIsNotOffline(t *testing.T) {
	n := newFakeNode(t)
	c := newTestClient(t, n)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetOutbox(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsOffline(err))
}

func TestLoginSessionCookieIsReplayedAndPersisted(t *testing.T) {
	n := newFakeNode(t)
	n.handle("POST /api/users/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "slicebox-session", Value: "s3cr3t", Path: "/"})
	})
	n.handle("GET /api/users/current", jsonHandler(domain.User{ID: 1, User: "admin", Role: "ADMINISTRATOR"}))
	store := newMemStore()
	c := newTestClient(t, n, WithStore(store))
	ctx := context.Background()

	require.NoError(t, c.Login(ctx, "admin", "pw"))
	assert.JSONEq(t, `{"user":"admin","pass":"pw"}`, n.last().Body)

	user, err := c.GetCurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin", user.User)
	assert.Equal(t, "s3cr3t", n.last().Cookie)

	cookies, ok := store.GetCookies()
	require.True(t, ok)
	require.Len(t, cookies, 1)
	assert.Equal(t, "s3cr3t", cookies[0].Value)

	// A new client restores the session from the store
	restored := newTestClient(t, n, WithStore(store))
	_, err = restored.GetCurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", n.last().Cookie)
}

func TestLogoutClearsSessionEvenOnError(t *testing.T) {
	n := newFakeNode(t)
	n.handle("POST /api/users/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "slicebox-session", Value: "s3cr3t", Path: "/"})
	})
	n.handle("POST /api/users/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	store := newMemStore()
	c := newTestClient(t, n, WithStore(store))
	ctx := context.Background()

	require.NoError(t, c.Login(ctx, "admin", "pw"))
	require.Error(t, c.Logout(ctx))

	_, ok := store.GetCookies()
	assert.False(t, ok)

	_, _ = c.GetBoxes(ctx)
	assert.Empty(t, n.last().Cookie)
}

func TestLogoutWhileRequestsInFlight(t *testing.T) {
	n := newFakeNode(t)
	n.handle("POST /api/users/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "slicebox-session", Value: "s3cr3t", Path: "/"})
	})
	n.handle("GET /api/outbox", jsonHandler([]domain.OutboxEntry{}))
	store := newMemStore()
	c := newTestClient(t, n, WithStore(store))
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "admin", "pw"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := c.GetOutbox(ctx)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Logout(ctx))
		}()
	}
	wg.Wait()

	_, ok := store.GetCookies()
	assert.False(t, ok)

	_, err := c.GetOutbox(ctx)
	require.NoError(t, err)
	assert.Empty(t, n.last().Cookie)
}

// memStore is an in-memory domain.Store for client tests
type memStore struct {
	mu      sync.Mutex
	cookies []*http.Cookie
	user    *domain.User
	tags    []domain.SeriesTag
}

func newMemStore() *memStore { return &memStore{} }

func (s *memStore) GetCookies() ([]*http.Cookie, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cookies, len(s.cookies) > 0
}

func (s *memStore) SaveCookies(cookies []*http.Cookie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookies = cookies
	return nil
}

func (s *memStore) ClearCookies() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookies = nil
}

func (s *memStore) GetCurrentUser() (*domain.User, bool) { return s.user, s.user != nil }
func (s *memStore) SaveCurrentUser(u *domain.User) error { s.user = u; return nil }
func (s *memStore) ClearCurrentUser()                    { s.user = nil }

func (s *memStore) GetSeriesTags() ([]domain.SeriesTag, bool) { return s.tags, s.tags != nil }
func (s *memStore) SaveSeriesTags(tags []domain.SeriesTag) error {
	s.tags = tags
	return nil
}

func (s *memStore) InvalidateAll() { s.cookies, s.user, s.tags = nil, nil, nil }
func (s *memStore) Close() error   { return nil }
