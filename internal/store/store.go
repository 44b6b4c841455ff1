package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/sbx/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketSession    = []byte("session")
	bucketSeriesTags = []byte("seriestags")
)

// Keys
const (
	keyCookies = "cookies"
	keyUser    = "user"
	keyTags    = "all"
)

// storedCookie is the persisted subset of http.Cookie
type storedCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Path    string    `json:"path,omitempty"`
	Domain  string    `json:"domain,omitempty"`
	Expires time.Time `json:"expires,omitempty"`
}

// tagSnapshot is the last series tag list fetched from the node
type tagSnapshot struct {
	Tags    []domain.SeriesTag `json:"tags"`
	SavedAt time.Time          `json:"savedAt"`
}

// SessionStore implements domain.Store using BoltDB, with a memory cache in
// front of it. Each node gets its own database file.
type SessionStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

var _ domain.Store = (*SessionStore)(nil)

// NewSessionStore opens the store for serverURL below baseCacheDir.
// An empty baseCacheDir keeps everything in memory.
func NewSessionStore(baseCacheDir, serverURL string) (*SessionStore, error) {
	if baseCacheDir == "" {
		return &SessionStore{cache: make(map[string][]byte)}, nil
	}

	dir := baseCacheDir
	if serverURL != "" {
		dir = filepath.Join(baseCacheDir, hashServerURL(serverURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "sbx.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketSession, bucketSeriesTags} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SessionStore{db: db, cache: make(map[string][]byte)}, nil
}

func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *SessionStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *SessionStore) get(bucket []byte, key string, dest any) bool {
	cacheKey := string(bucket) + ":" + key

	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucket).Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if data == nil {
		return false
	}

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *SessionStore) set(bucket []byte, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[string(bucket)+":"+key] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

func (s *SessionStore) delete(bucket []byte, key string) {
	s.mu.Lock()
	delete(s.cache, string(bucket)+":"+key)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Delete([]byte(key))
	})
}

// === Session ===

// GetCookies returns the persisted session cookies; expired ones are dropped
func (s *SessionStore) GetCookies() ([]*http.Cookie, bool) {
	var stored []storedCookie
	if !s.get(bucketSession, keyCookies, &stored) {
		return nil, false
	}

	now := time.Now()
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		if !c.Expires.IsZero() && c.Expires.Before(now) {
			continue
		}
		cookies = append(cookies, &http.Cookie{
			Name:    c.Name,
			Value:   c.Value,
			Path:    c.Path,
			Domain:  c.Domain,
			Expires: c.Expires,
		})
	}
	return cookies, len(cookies) > 0
}

func (s *SessionStore) SaveCookies(cookies []*http.Cookie) error {
	stored := make([]storedCookie, len(cookies))
	for i, c := range cookies {
		stored[i] = storedCookie{
			Name:    c.Name,
			Value:   c.Value,
			Path:    c.Path,
			Domain:  c.Domain,
			Expires: c.Expires,
		}
	}
	return s.set(bucketSession, keyCookies, stored)
}

func (s *SessionStore) ClearCookies() {
	s.delete(bucketSession, keyCookies)
}

func (s *SessionStore) GetCurrentUser() (*domain.User, bool) {
	var user domain.User
	if !s.get(bucketSession, keyUser, &user) {
		return nil, false
	}
	return &user, true
}

func (s *SessionStore) SaveCurrentUser(user *domain.User) error {
	if user == nil {
		s.ClearCurrentUser()
		return nil
	}
	return s.set(bucketSession, keyUser, user)
}

func (s *SessionStore) ClearCurrentUser() {
	s.delete(bucketSession, keyUser)
}

// === Series tags ===

func (s *SessionStore) GetSeriesTags() ([]domain.SeriesTag, bool) {
	var snap tagSnapshot
	if !s.get(bucketSeriesTags, keyTags, &snap) {
		return nil, false
	}
	return snap.Tags, true
}

func (s *SessionStore) SaveSeriesTags(tags []domain.SeriesTag) error {
	return s.set(bucketSeriesTags, keyTags, tagSnapshot{Tags: tags, SavedAt: time.Now()})
}

// === Invalidation ===

// InvalidateAll drops every cached value, in memory and on disk
func (s *SessionStore) InvalidateAll() {
	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketSession, bucketSeriesTags} {
			if err := tx.DeleteBucket(bucket); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return err
			}
		}
		return nil
	})
}
