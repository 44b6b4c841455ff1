package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/sbx/internal/dialog"
	"github.com/mmcdole/sbx/internal/tui/styles"
)

// ConfirmClosedMsg is sent when the operation behind a confirmed dialog
// settled and closed the dialog
type ConfirmClosedMsg struct{}

// ConfirmModal asks before a destructive action. It stays open with a
// busy label after confirming until the operation closes the handle.
type ConfirmModal struct {
	visible bool
	busy    bool
	content dialog.Confirm
	handle  *dialog.Handle[struct{}]
}

// NewConfirmModal creates a new confirmation modal
func NewConfirmModal() ConfirmModal {
	return ConfirmModal{}
}

// Show displays the modal bound to handle
func (m *ConfirmModal) Show(content dialog.Confirm, handle *dialog.Handle[struct{}]) {
	m.visible = true
	m.busy = false
	m.content = content
	m.handle = handle
}

// Hide dismisses the modal, cancelling the handle if it is still pending
func (m *ConfirmModal) Hide() {
	if m.handle != nil && m.handle.State() == dialog.Pending {
		m.handle.Cancel()
	}
	m.visible = false
	m.busy = false
	m.handle = nil
}

// IsVisible returns whether the modal is shown
func (m ConfirmModal) IsVisible() bool {
	return m.visible
}

// IsBusy returns whether the confirmed operation is still running
func (m ConfirmModal) IsBusy() bool {
	return m.busy
}

// Content returns the dialog text
func (m ConfirmModal) Content() dialog.Confirm {
	return m.content
}

// Update handles y/n input. Once confirmed, keys are ignored until the
// handle closes.
func (m ConfirmModal) Update(msg tea.Msg) (ConfirmModal, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	switch msg := msg.(type) {
	case ConfirmClosedMsg:
		m.visible = false
		m.busy = false
		m.handle = nil
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "y", "Y", "enter":
			if m.handle == nil || !m.handle.Confirm(struct{}{}) {
				m.Hide()
				return m, nil
			}
			m.busy = true
			return m, waitClosed(m.handle)
		case "n", "N", "esc", "q":
			m.Hide()
			return m, nil
		}
	}
	return m, nil
}

func waitClosed(h *dialog.Handle[struct{}]) tea.Cmd {
	return func() tea.Msg {
		<-h.Closed()
		return ConfirmClosedMsg{}
	}
}

// View renders the confirmation modal
func (m ConfirmModal) View() string {
	if !m.visible {
		return ""
	}

	const modalWidth = 44

	body := lipgloss.NewStyle().Width(modalWidth).Render(m.content.Message)

	var footer string
	if m.busy {
		footer = styles.SpinnerStyle.Render("Deleting...")
	} else {
		footer = lipgloss.JoinHorizontal(lipgloss.Top,
			styles.DangerButtonStyle.Render("y "+m.content.Action),
			"  ",
			styles.ButtonStyle.Render("n Cancel"),
		)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render(m.content.Title),
		body,
		"",
		footer,
	)
	return styles.DangerModalStyle.Render(content)
}
