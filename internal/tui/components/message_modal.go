package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/sbx/internal/dialog"
	"github.com/mmcdole/sbx/internal/tui/styles"
)

// MessageModal shows a title and a message with a single Close action
type MessageModal struct {
	visible bool
	content dialog.Message
}

// NewMessageModal creates a new message modal
func NewMessageModal() MessageModal {
	return MessageModal{}
}

// Show displays the modal
func (m *MessageModal) Show(content dialog.Message) {
	m.visible = true
	m.content = content
}

// Hide dismisses the modal
func (m *MessageModal) Hide() {
	m.visible = false
}

// IsVisible returns whether the modal is shown
func (m MessageModal) IsVisible() bool {
	return m.visible
}

// Content returns the shown message
func (m MessageModal) Content() dialog.Message {
	return m.content
}

// Update closes the modal on enter, esc or q
func (m MessageModal) Update(msg tea.Msg) (MessageModal, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.visible {
		switch keyMsg.String() {
		case "enter", "esc", "q":
			m.Hide()
		}
	}
	return m, nil
}

// View renders the message modal
func (m MessageModal) View() string {
	if !m.visible {
		return ""
	}

	const modalWidth = 60

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render(m.content.Title),
		lipgloss.NewStyle().Width(modalWidth).Render(m.content.Message),
		"",
		styles.ButtonStyle.Render("enter Close"),
	)
	return styles.ModalStyle.Render(content)
}
