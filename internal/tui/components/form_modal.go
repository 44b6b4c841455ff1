package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/sbx/internal/tui/styles"
)

// Field describes one input of a FormModal
type Field struct {
	Label       string
	Placeholder string
	Value       string
	Secret      bool
}

// FormModal is a modal with one or more text inputs, an inline error line
// and a busy state while its submission is in flight
type FormModal struct {
	visible bool
	title   string
	hint    string
	labels  []string
	inputs  []textinput.Model
	focus   int
	errText string
	busy    bool
}

// NewFormModal creates a new form modal
func NewFormModal() FormModal {
	return FormModal{}
}

// Show displays the modal with the given fields
func (m *FormModal) Show(title, hint string, fields ...Field) {
	m.visible = true
	m.title = title
	m.hint = hint
	m.errText = ""
	m.busy = false
	m.focus = 0
	m.labels = make([]string, len(fields))
	m.inputs = make([]textinput.Model, len(fields))

	for i, f := range fields {
		ti := textinput.New()
		ti.Placeholder = f.Placeholder
		ti.CharLimit = 256
		ti.Width = 36
		ti.Prompt = ""
		ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
		ti.PlaceholderStyle = styles.DimStyle
		ti.SetValue(f.Value)
		if f.Secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		m.labels[i] = f.Label
		m.inputs[i] = ti
	}
	if len(m.inputs) > 0 {
		m.inputs[0].Focus()
	}
}

// Hide dismisses the modal
func (m *FormModal) Hide() {
	m.visible = false
	m.busy = false
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

// IsVisible returns whether the modal is shown
func (m FormModal) IsVisible() bool {
	return m.visible
}

// Title returns the modal title
func (m FormModal) Title() string {
	return m.title
}

// Values returns the trimmed input values in field order
func (m FormModal) Values() []string {
	values := make([]string, len(m.inputs))
	for i, in := range m.inputs {
		values[i] = strings.TrimSpace(in.Value())
	}
	return values
}

// RawValue returns the untrimmed value of field i
func (m FormModal) RawValue(i int) string {
	if i < 0 || i >= len(m.inputs) {
		return ""
	}
	return m.inputs[i].Value()
}

// SetBusy marks the submission as in flight
func (m *FormModal) SetBusy(busy bool) {
	m.busy = busy
}

// IsBusy returns whether a submission is in flight
func (m FormModal) IsBusy() bool {
	return m.busy
}

// SetError shows an inline error and ends the busy state
func (m *FormModal) SetError(text string) {
	m.errText = text
	m.busy = false
}

// Error returns the inline error text
func (m FormModal) Error() string {
	return m.errText
}

func (m *FormModal) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = (i + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
}

// Update handles input events, returns (modal, cmd, submitted).
// Submitting clears the inline error.
func (m FormModal) Update(msg tea.Msg) (FormModal, tea.Cmd, bool) {
	if !m.visible || len(m.inputs) == 0 {
		return m, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if m.busy {
			return m, nil, false
		}
		switch keyMsg.String() {
		case "enter":
			if m.focus < len(m.inputs)-1 {
				m.setFocus(m.focus + 1)
				return m, nil, false
			}
			m.errText = ""
			return m, nil, true
		case "tab", "down":
			m.setFocus(m.focus + 1)
			return m, nil, false
		case "shift+tab", "up":
			m.setFocus(m.focus - 1)
			return m, nil, false
		case "esc":
			m.Hide()
			return m, nil, false
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd, false
}

// View renders the form modal
func (m FormModal) View() string {
	if !m.visible {
		return ""
	}

	const modalWidth = 40

	rows := []string{styles.ModalTitleStyle.Render(m.title)}
	for i, in := range m.inputs {
		label := styles.SubtitleStyle
		if i == m.focus {
			label = styles.AccentStyle
		}
		rows = append(rows, label.Render(m.labels[i]), in.View(), "")
	}

	if m.errText != "" {
		rows = append(rows, styles.ErrorStyle.Width(modalWidth).Render(m.errText), "")
	}

	switch {
	case m.busy:
		rows = append(rows, styles.SpinnerStyle.Render("Working..."))
	case m.hint != "":
		rows = append(rows, styles.DimStyle.Width(modalWidth).Render(m.hint))
	}

	return styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
