package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/sbx/internal/tui/styles"
	"github.com/sahilm/fuzzy"
)

// DataTable is a table of entities keyed by id that can be filtered and
// have rows marked for bulk actions
type DataTable struct {
	table   table.Model
	columns []table.Column

	rows        []table.Row // unfiltered, without the mark column
	ids         []int64
	filteredIdx []int // indices into rows; nil when no filter is applied
	marked      map[int64]bool

	filterActive bool
	filterInput  textinput.Model

	banner  string
	loading bool
	empty   string

	width  int
	height int
}

// NewDataTable creates a table with the given columns
func NewDataTable(columns []table.Column, empty string) DataTable {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.CharLimit = 100

	t := table.New(
		table.WithColumns(withMarkColumn(columns)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(styles.TableStyles())

	return DataTable{
		table:       t,
		columns:     columns,
		marked:      make(map[int64]bool),
		filterInput: ti,
		loading:     true,
		empty:       empty,
	}
}

func withMarkColumn(columns []table.Column) []table.Column {
	return append([]table.Column{{Title: " ", Width: 1}}, columns...)
}

// SetRows replaces the content. Marks on ids that disappeared are dropped
// and the cursor stays on the same entity when it is still present.
func (t *DataTable) SetRows(ids []int64, rows []table.Row) {
	cursorID, hadCursor := t.CursorID()

	t.ids = ids
	t.rows = rows
	t.loading = false

	present := make(map[int64]bool, len(ids))
	for _, id := range ids {
		present[id] = true
	}
	for id := range t.marked {
		if !present[id] {
			delete(t.marked, id)
		}
	}

	if t.filterActive {
		t.applyFilter()
	}
	t.refresh()

	if hadCursor {
		for i, idx := range t.visible() {
			if t.ids[idx] == cursorID {
				t.table.SetCursor(i)
				break
			}
		}
	}
}

// SetSize sets the outer dimensions of the table
func (t *DataTable) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.recalcHeight()
}

func (t *DataTable) recalcHeight() {
	h := t.height
	if t.filterActive {
		h--
	}
	if t.banner != "" {
		h--
	}
	// header and its border
	t.table.SetHeight(max(h-2, 1))
	t.table.SetWidth(t.width)
}

// Loading reports whether no rows were delivered yet
func (t DataTable) Loading() bool {
	return t.loading
}

// Len returns the number of visible rows
func (t DataTable) Len() int {
	return len(t.visible())
}

// visible returns the indices of the rows that pass the filter
func (t DataTable) visible() []int {
	if t.filteredIdx != nil {
		return t.filteredIdx
	}
	idx := make([]int, len(t.rows))
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// CursorID returns the id of the row under the cursor
func (t DataTable) CursorID() (int64, bool) {
	vis := t.visible()
	c := t.table.Cursor()
	if c < 0 || c >= len(vis) {
		return 0, false
	}
	return t.ids[vis[c]], true
}

// Selected returns the marked ids in table order, or the id under the
// cursor when nothing is marked
func (t DataTable) Selected() []int64 {
	var ids []int64
	for _, id := range t.ids {
		if t.marked[id] {
			ids = append(ids, id)
		}
	}
	if len(ids) > 0 {
		return ids
	}
	if id, ok := t.CursorID(); ok {
		return []int64{id}
	}
	return nil
}

// MarkedCount returns how many rows are marked
func (t DataTable) MarkedCount() int {
	return len(t.marked)
}

// ToggleMark marks or unmarks the row under the cursor and moves down
func (t *DataTable) ToggleMark() {
	id, ok := t.CursorID()
	if !ok {
		return
	}
	if t.marked[id] {
		delete(t.marked, id)
	} else {
		t.marked[id] = true
	}
	t.refresh()
	t.table.MoveDown(1)
}

// ClearMarks unmarks every row
func (t *DataTable) ClearMarks() {
	clear(t.marked)
	t.refresh()
}

// SetBanner shows an inline error above the table; "" hides it
func (t *DataTable) SetBanner(text string) {
	t.banner = text
	t.recalcHeight()
}

// Banner returns the inline error text
func (t DataTable) Banner() string {
	return t.banner
}

// ToggleFilter activates the filter input
func (t *DataTable) ToggleFilter() {
	t.filterActive = true
	t.filterInput.Focus()
	t.recalcHeight()
}

// IsFiltering returns true if filter mode is active
func (t DataTable) IsFiltering() bool {
	return t.filterActive
}

// IsFilterTyping returns true if filter is active AND input is focused
func (t DataTable) IsFilterTyping() bool {
	return t.filterActive && t.filterInput.Focused()
}

// ClearFilter deactivates the filter and shows all rows
func (t *DataTable) ClearFilter() {
	t.filterActive = false
	t.filteredIdx = nil
	t.filterInput.SetValue("")
	t.filterInput.Blur()
	t.recalcHeight()
	t.refresh()
}

func (t *DataTable) applyFilter() {
	query := t.filterInput.Value()
	if query == "" {
		t.filteredIdx = nil
		return
	}

	lowerTitles := make([]string, len(t.rows))
	for i, r := range t.rows {
		lowerTitles[i] = strings.ToLower(strings.Join(r, " "))
	}

	matches := fuzzy.Find(strings.ToLower(query), lowerTitles)
	t.filteredIdx = make([]int, len(matches))
	for i, match := range matches {
		t.filteredIdx[i] = match.Index
	}
}

// refresh pushes the visible rows into the table
func (t *DataTable) refresh() {
	vis := t.visible()
	rows := make([]table.Row, len(vis))
	for i, idx := range vis {
		mark := " "
		if t.marked[t.ids[idx]] {
			mark = styles.MarkedChar
		}
		rows[i] = append(table.Row{mark}, t.rows[idx]...)
	}
	t.table.SetRows(rows)
	if t.table.Cursor() >= len(rows) {
		t.table.SetCursor(max(len(rows)-1, 0))
	}
}

// Update handles navigation and filter input
func (t DataTable) Update(msg tea.Msg) (DataTable, tea.Cmd) {
	if t.IsFilterTyping() {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				t.ClearFilter()
				return t, nil
			case "enter":
				t.filterInput.Blur()
				return t, nil
			case "backspace":
				if t.filterInput.Value() == "" {
					t.ClearFilter()
					return t, nil
				}
			}
		}

		var cmd tea.Cmd
		t.filterInput, cmd = t.filterInput.Update(msg)
		t.applyFilter()
		t.refresh()
		t.table.SetCursor(0)
		return t, cmd
	}

	if t.filterActive {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				t.ClearFilter()
				return t, nil
			case "/":
				t.filterInput.Focus()
				return t, nil
			}
		}
	}

	var cmd tea.Cmd
	t.table, cmd = t.table.Update(msg)
	return t, cmd
}

// View renders the table with its banner and filter bar
func (t DataTable) View() string {
	var parts []string
	if t.banner != "" {
		banner := t.banner
		if t.width > 0 {
			banner = styles.Truncate(banner, t.width-2)
		}
		parts = append(parts, styles.BannerStyle.Render(banner))
	}

	switch {
	case t.loading:
		parts = append(parts, styles.DimStyle.Render("Loading..."))
	case len(t.rows) == 0:
		parts = append(parts, styles.DimStyle.Render(t.empty))
	default:
		parts = append(parts, t.table.View())
	}

	if t.filterActive {
		parts = append(parts, t.filterInput.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
