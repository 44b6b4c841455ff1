package boxes

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mmcdole/sbx/internal/bulk"
	"github.com/mmcdole/sbx/internal/dialog"
	"github.com/mmcdole/sbx/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBoxes struct {
	mu        sync.Mutex
	added     []domain.Box
	generated []string
	remote    [][2]string
	deleted   []int64
	err       error
}

func (f *fakeBoxes) GetBoxes(ctx context.Context) ([]domain.Box, error) {
	return []domain.Box{{ID: 1, Name: "a"}}, f.err
}

func (f *fakeBoxes) AddBox(ctx context.Context, box domain.Box) error {
	f.added = append(f.added, box)
	return f.err
}

func (f *fakeBoxes) GenerateBaseURL(ctx context.Context, name string) (string, error) {
	f.generated = append(f.generated, name)
	if f.err != nil {
		return "", f.err
	}
	return "http://node/api/box/" + name, nil
}

func (f *fakeBoxes) AddRemoteBox(ctx context.Context, name, baseURL string) (*domain.Box, error) {
	f.remote = append(f.remote, [2]string{name, baseURL})
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Box{ID: 2, Name: name, BaseURL: baseURL}, nil
}

func (f *fakeBoxes) DeleteBox(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.err
}

type notes struct{ infos, errs []string }

func (n *notes) Info(m string)  { n.infos = append(n.infos, m) }
func (n *notes) Error(m string) { n.errs = append(n.errs, m) }

func newService(repo *fakeBoxes, n *notes) *Service {
	return NewService(repo, bulk.NewPipeline(n, nil), n, nil)
}

func TestAdd_NotifiesAndReloads(t *testing.T) {
	repo := &fakeBoxes{}
	n := &notes{}
	reloads := 0

	require.NoError(t, newService(repo, n).Add(context.Background(), domain.Box{Name: "x"}, domain.ReloadFunc(func() { reloads++ })))
	assert.Equal(t, []string{"Box added"}, n.infos)
	assert.Equal(t, 1, reloads)

	repo.err = &domain.APIError{Status: 400, Payload: "Duplicate box name"}
	require.Error(t, newService(repo, n).Add(context.Background(), domain.Box{Name: "x"}, domain.ReloadFunc(func() { reloads++ })))
	assert.Equal(t, []string{"Duplicate box name"}, n.errs)
	assert.Equal(t, 2, reloads)
}

func TestGenerateBaseURL(t *testing.T) {
	repo := &fakeBoxes{}
	svc := newService(repo, &notes{})

	u, err := svc.GenerateBaseURL(context.Background(), "  hospital ")
	require.NoError(t, err)
	assert.Equal(t, "http://node/api/box/hospital", u)

	_, err = svc.GenerateBaseURL(context.Background(), "")
	require.ErrorIs(t, err, ErrNameRequired)
	assert.Len(t, repo.generated, 1)
}

func TestConnect(t *testing.T) {
	repo := &fakeBoxes{}
	svc := newService(repo, &notes{})

	box, err := svc.Connect(context.Background(), "clinic", "http://remote/api/box/abc")
	require.NoError(t, err)
	assert.Equal(t, "clinic", box.Name)
	assert.Equal(t, [][2]string{{"clinic", "http://remote/api/box/abc"}}, repo.remote)

	_, err = svc.Connect(context.Background(), "clinic", "not a url")
	require.Error(t, err)

	repo.err = errors.New("remote unreachable")
	_, err = svc.Connect(context.Background(), "clinic", "http://remote/api/box/abc")
	require.EqualError(t, err, "remote unreachable")
}

func TestDelete_UsesBoxWording(t *testing.T) {
	repo := &fakeBoxes{}
	n := &notes{}
	svc := newService(repo, n)
	boxes := []domain.Box{{ID: 3}, {ID: 4}}

	assert.Equal(t, "Delete box(es)", svc.DeleteRequest(boxes, nil).Confirmation().Title)

	require.NoError(t, svc.Delete(context.Background(), boxes, dialog.AutoConfirm, nil))
	assert.ElementsMatch(t, []int64{3, 4}, repo.deleted)
	assert.Equal(t, []string{"2 box(es) deleted"}, n.infos)
}

func TestMailBody(t *testing.T) {
	assert.Equal(t,
		"Box%20connection%20URL%3A%0A%0Ahttp%3A%2F%2Fnode%2Fapi%2Fbox%2Fabc",
		MailBody("http://node/api/box/abc"))
}
