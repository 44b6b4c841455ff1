package components

import (
	"testing"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/sbx/internal/dialog"
	"github.com/mmcdole/sbx/internal/domain"
	"github.com/mmcdole/sbx/internal/tagging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func newBoxTable() DataTable {
	t := NewDataTable([]table.Column{{Title: "Name", Width: 20}}, "empty")
	t.SetSize(80, 20)
	t.SetRows([]int64{1, 2, 3}, []table.Row{{"alpha"}, {"beta"}, {"gamma"}})
	return t
}

func TestDataTable_SelectedFallsBackToCursor(t *testing.T) {
	dt := newBoxTable()
	assert.Equal(t, []int64{1}, dt.Selected())

	dt.ToggleMark() // marks 1, moves to 2
	dt.table.MoveDown(1)
	dt.ToggleMark() // marks 3
	assert.Equal(t, []int64{1, 3}, dt.Selected())

	dt.ClearMarks()
	assert.Equal(t, 0, dt.MarkedCount())
}

func TestDataTable_SetRowsKeepsCursorAndDropsStaleMarks(t *testing.T) {
	dt := newBoxTable()
	dt.table.MoveDown(1)
	dt.ToggleMark() // marks 2, cursor on 3
	dt.table.SetCursor(1)

	dt.SetRows([]int64{0, 1, 3}, []table.Row{{"zero"}, {"alpha"}, {"gamma"}})
	assert.Equal(t, 0, dt.MarkedCount())

	dt.SetRows([]int64{0, 1, 3}, []table.Row{{"zero"}, {"alpha"}, {"gamma"}})
	id, ok := dt.CursorID()
	require.True(t, ok)
	assert.Equal(t, int64(1), id)
}

func TestDataTable_Filter(t *testing.T) {
	dt := newBoxTable()
	dt.ToggleFilter()
	for _, k := range []string{"g", "a", "m"} {
		dt, _ = dt.Update(keyMsg(k))
	}
	assert.Equal(t, 1, dt.Len())
	id, _ := dt.CursorID()
	assert.Equal(t, int64(3), id)

	dt, _ = dt.Update(keyMsg("enter"))
	assert.True(t, dt.IsFiltering())
	assert.False(t, dt.IsFilterTyping())

	dt, _ = dt.Update(keyMsg("esc"))
	assert.False(t, dt.IsFiltering())
	assert.Equal(t, 3, dt.Len())
}

func TestDataTable_Views(t *testing.T) {
	dt := NewDataTable([]table.Column{{Title: "Name", Width: 20}}, "Nothing here")
	assert.Contains(t, dt.View(), "Loading...")

	dt.SetRows(nil, nil)
	assert.Contains(t, dt.View(), "Nothing here")

	dt.SetBanner("Box is in use")
	assert.Contains(t, dt.View(), "Box is in use")
}

func TestConfirmModal_ConfirmWaitsForClose(t *testing.T) {
	h := dialog.NewHandle[struct{}]()
	m := NewConfirmModal()
	m.Show(dialog.Confirm{Title: "Delete box(es)", Message: "Permanently delete 1 box(es)?", Action: "Delete"}, h)
	assert.Contains(t, m.View(), "Permanently delete 1 box(es)?")

	m, cmd := m.Update(keyMsg("y"))
	require.NotNil(t, cmd)
	assert.Equal(t, dialog.Confirmed, h.State())
	assert.True(t, m.IsBusy())
	assert.Contains(t, m.View(), "Deleting...")

	// keys are ignored while busy
	m, _ = m.Update(keyMsg("esc"))
	assert.True(t, m.IsVisible())

	h.Close()
	m, _ = m.Update(cmd())
	assert.False(t, m.IsVisible())
}

func TestConfirmModal_EscCancels(t *testing.T) {
	h := dialog.NewHandle[struct{}]()
	m := NewConfirmModal()
	m.Show(dialog.Confirm{Title: "Delete"}, h)

	m, cmd := m.Update(keyMsg("esc"))
	assert.Nil(t, cmd)
	assert.False(t, m.IsVisible())
	assert.Equal(t, dialog.Cancelled, h.State())
}

func TestFormModal_FocusAndSubmit(t *testing.T) {
	m := NewFormModal()
	m.Show("Connect to Box", "",
		Field{Label: "Remote box name"},
		Field{Label: "Base URL"},
	)

	m, _, submitted := m.Update(keyMsg(" north "))
	assert.False(t, submitted)
	m, _, submitted = m.Update(keyMsg("enter"))
	assert.False(t, submitted)
	m, _, _ = m.Update(keyMsg("http://remote/api/box/1"))

	m.SetError("previous failure")
	m, _, submitted = m.Update(keyMsg("enter"))
	assert.True(t, submitted)
	assert.Empty(t, m.Error())
	assert.Equal(t, []string{"north", "http://remote/api/box/1"}, m.Values())
	assert.Equal(t, " north ", m.RawValue(0))

	m, _, _ = m.Update(keyMsg("esc"))
	assert.False(t, m.IsVisible())
}

func TestFormModal_BusyIgnoresKeys(t *testing.T) {
	m := NewFormModal()
	m.Show("Generate Base URL", "", Field{Label: "Remote box name"})
	m.SetBusy(true)

	m, _, submitted := m.Update(keyMsg("enter"))
	assert.False(t, submitted)
	m, _, _ = m.Update(keyMsg("esc"))
	assert.True(t, m.IsVisible())

	m.SetError("A box with that name already exists")
	assert.False(t, m.IsBusy())
	assert.Contains(t, m.View(), "A box with that name already exists")
}

func TestTagModal_Keys(t *testing.T) {
	d := &tagging.Dialog{
		SeriesIDs: []int64{100},
		Selection: tagging.NewSelection([]domain.SeriesTag{{ID: 1, Name: "Lungs"}, {ID: 2, Name: "Liver"}}),
	}
	m := NewTagModal()
	m.Show(d)

	_, _, submit := m.HandleKeyMsg(keyMsg("enter"))
	assert.False(t, submit, "nothing selected yet")

	m.HandleKeyMsg(keyMsg("l"))
	require.Len(t, m.Suggestions(), 2)
	m.HandleKeyMsg(tea.KeyMsg{Type: tea.KeyDown})
	m.HandleKeyMsg(keyMsg("tab"))
	assert.Equal(t, "Liver", m.input.Value())

	m.HandleKeyMsg(keyMsg("enter"))
	assert.Equal(t, []domain.SeriesTag{{ID: 2, Name: "Liver"}}, d.Selection.Tags())

	m.HandleKeyMsg(keyMsg("backspace"))
	assert.Equal(t, 0, d.Selection.Len())

	_, shouldClose, _ := m.HandleKeyMsg(keyMsg("esc"))
	assert.True(t, shouldClose)
}

func TestMessageModal_Close(t *testing.T) {
	m := NewMessageModal()
	m.Show(dialog.Message{Title: "Base URL", Message: "http://node/api/box/abc"})
	assert.Contains(t, m.View(), "http://node/api/box/abc")

	m, _ = m.Update(keyMsg("enter"))
	assert.False(t, m.IsVisible())
}
