package app

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/mmcdole/sbx/internal/config"
	"github.com/mmcdole/sbx/internal/dialog"
	"github.com/mmcdole/sbx/internal/domain"
	"github.com/mmcdole/sbx/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNode struct {
	Node
	boxes []domain.Box

	mu      sync.Mutex
	deleted []int64
}

func (n *fakeNode) GetBoxes(ctx context.Context) ([]domain.Box, error) {
	return n.boxes, nil
}

func (n *fakeNode) DeleteBox(ctx context.Context, id int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deleted = append(n.deleted, id)
	return nil
}

type recorder struct {
	infos  []string
	errors []string
}

func (r *recorder) Info(msg string)  { r.infos = append(r.infos, msg) }
func (r *recorder) Error(msg string) { r.errors = append(r.errors, msg) }

func TestOpen(t *testing.T) {
	t.Run("unconfigured", func(t *testing.T) {
		_, err := Open(config.DefaultConfig(), log.NullLogger())
		require.ErrorIs(t, err, domain.ErrNotConfigured)
	})

	t.Run("opens store and client", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Server.URL = "http://localhost:5000"
		cfg.Cache.Dir = filepath.Join(t.TempDir(), "cache")

		a, err := Open(cfg, log.NullLogger())
		require.NoError(t, err)
		defer a.Close()

		assert.Equal(t, "http://localhost:5000", a.Client.BaseURL())
		require.NotNil(t, a.Store)

		svc := a.Services(&recorder{})
		assert.NotNil(t, svc.Boxes)
		assert.NotNil(t, svc.Session)
	})

	t.Run("invalid url", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Server.URL = "localhost"
		cfg.Cache.Dir = ""

		_, err := Open(cfg, log.NullLogger())
		require.Error(t, err)
	})
}

func TestNewServicesSharesNotifier(t *testing.T) {
	node := &fakeNode{boxes: []domain.Box{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}}
	rec := &recorder{}
	svc := NewServices(node, nil, rec, log.NullLogger())

	list, err := svc.Boxes.List(context.Background())
	require.NoError(t, err)

	err = svc.Boxes.Delete(context.Background(), list, dialog.AutoConfirm, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 2}, node.deleted)
	assert.Equal(t, []string{"2 box(es) deleted"}, rec.infos)
	assert.Empty(t, rec.errors)
}
