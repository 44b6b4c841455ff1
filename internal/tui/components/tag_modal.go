package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/sbx/internal/domain"
	"github.com/mmcdole/sbx/internal/tagging"
	"github.com/mmcdole/sbx/internal/tui/styles"
)

const maxSuggestions = 6

// TagModal collects the series tags to apply to a resolved set of series
type TagModal struct {
	visible bool
	busy    bool
	dialog  *tagging.Dialog

	input       textinput.Model
	suggestions []domain.SeriesTag
	cursor      int // index into suggestions, -1 when none is highlighted

	width int
}

// NewTagModal creates a new tag modal
func NewTagModal() TagModal {
	ti := textinput.New()
	ti.Placeholder = "Tag name..."
	ti.Prompt = "> "
	ti.CharLimit = 64
	ti.Width = 32

	return TagModal{input: ti, cursor: -1}
}

// Show displays the modal for the given dialog state
func (m *TagModal) Show(d *tagging.Dialog) {
	m.visible = true
	m.busy = false
	m.dialog = d
	m.input.SetValue("")
	m.input.Focus()
	m.suggestions = nil
	m.cursor = -1
}

// Hide dismisses the modal
func (m *TagModal) Hide() {
	m.visible = false
	m.busy = false
	m.dialog = nil
	m.input.Blur()
}

// IsVisible returns whether the modal is shown
func (m *TagModal) IsVisible() bool {
	return m.visible
}

// Dialog returns the dialog state being edited
func (m *TagModal) Dialog() *tagging.Dialog {
	return m.dialog
}

// SetBusy marks the submission as in flight
func (m *TagModal) SetBusy(busy bool) {
	m.busy = busy
}

// Suggestions returns the tags offered for the current input
func (m *TagModal) Suggestions() []domain.SeriesTag {
	return m.suggestions
}

// SetSize sets the modal dimensions
func (m *TagModal) SetSize(width int) {
	m.width = width
}

func (m *TagModal) refreshSuggestions() {
	m.suggestions = m.dialog.Selection.FindTags(m.input.Value())
	if len(m.suggestions) > maxSuggestions {
		m.suggestions = m.suggestions[:maxSuggestions]
	}
	m.cursor = -1
	if len(m.suggestions) > 0 {
		m.cursor = 0
	}
}

// HandleKeyMsg processes a key message, returns (handled, shouldClose, shouldSubmit)
func (m *TagModal) HandleKeyMsg(msg tea.KeyMsg) (handled bool, shouldClose bool, shouldSubmit bool) {
	if !m.visible || m.dialog == nil {
		return false, false, false
	}
	if m.busy {
		return true, false, false
	}

	sel := m.dialog.Selection
	value := strings.TrimSpace(m.input.Value())

	switch msg.String() {
	case "esc":
		return true, true, false
	case "up", "ctrl+p":
		if m.cursor > 0 {
			m.cursor--
		}
		return true, false, false
	case "down", "ctrl+n":
		if m.cursor < len(m.suggestions)-1 {
			m.cursor++
		}
		return true, false, false
	case "tab":
		if m.cursor >= 0 {
			m.input.SetValue(m.suggestions[m.cursor].Name)
			m.input.CursorEnd()
			m.refreshSuggestions()
		}
		return true, false, false
	case "enter":
		if value == "" {
			return true, false, sel.Len() > 0
		}
		if m.cursor >= 0 {
			sel.Add(m.suggestions[m.cursor])
		} else {
			sel.AddName(value)
		}
		m.input.SetValue("")
		m.suggestions = nil
		m.cursor = -1
		return true, false, false
	case "backspace":
		if m.input.Value() == "" {
			if tags := sel.Tags(); len(tags) > 0 {
				sel.Remove(tags[len(tags)-1].Name)
			}
			return true, false, false
		}
	}

	m.input, _ = m.input.Update(msg)
	m.refreshSuggestions()
	return true, false, false
}

// View renders the tag modal
func (m *TagModal) View() string {
	if !m.visible || m.dialog == nil {
		return ""
	}

	modalWidth := 44
	if m.width > 0 && m.width < 60 {
		modalWidth = m.width - 10
	}

	var lines []string
	lines = append(lines, styles.ModalTitleStyle.Render("Tag Series"))
	lines = append(lines, styles.SubtitleStyle.Render(fmt.Sprintf("%d series selected", len(m.dialog.SeriesIDs))))
	lines = append(lines, "")

	tags := m.dialog.Selection.Tags()
	if len(tags) == 0 {
		lines = append(lines, styles.DimStyle.Render("No tags selected"))
	} else {
		chips := make([]string, len(tags))
		for i, t := range tags {
			label := t.Name
			if t.IsNew() {
				label += " (new)"
			}
			chips[i] = styles.InfoToastStyle.Render(label)
		}
		lines = append(lines, lipgloss.NewStyle().Width(modalWidth).Render(strings.Join(chips, " ")))
	}
	lines = append(lines, "")
	lines = append(lines, m.input.View())

	for i, s := range m.suggestions {
		line := styles.Pad(s.Name, modalWidth-4)
		if i == m.cursor {
			line = lipgloss.NewStyle().
				Foreground(styles.White).
				Background(styles.SlateLight).
				Render(line)
		} else {
			line = lipgloss.NewStyle().
				Foreground(styles.LightGray).
				Render(line)
		}
		lines = append(lines, "  "+line)
	}

	lines = append(lines, "")
	if m.busy {
		lines = append(lines, styles.SpinnerStyle.Render("Tagging..."))
	} else {
		lines = append(lines, styles.DimStyle.Render("Enter: Add  Tab: Complete  Enter on empty: Apply  Esc: Cancel"))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Teal).
		Background(styles.SlateDark).
		Padding(1, 2).
		Width(modalWidth).
		Render(strings.Join(lines, "\n"))
}
