package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/sbx/internal/domain"
	"github.com/mmcdole/sbx/internal/tui/components"
	"github.com/mmcdole/sbx/internal/tui/styles"
)

// View identifies one of the top level tables
type View int

const (
	ViewBoxes View = iota
	ViewOutbox
	ViewPatients
	viewCount
)

func (v View) String() string {
	switch v {
	case ViewBoxes:
		return "Boxes"
	case ViewOutbox:
		return "Outbox"
	case ViewPatients:
		return "Patients"
	default:
		return "Unknown"
	}
}

// ChromeHeight is the number of lines taken by the header and footer
const ChromeHeight = 3

func newTables() [viewCount]components.DataTable {
	var tables [viewCount]components.DataTable
	tables[ViewBoxes] = components.NewDataTable([]table.Column{
		{Title: "Name", Width: 24},
		{Title: "Send", Width: 6},
		{Title: "Status", Width: 8},
		{Title: "Base URL", Width: 48},
	}, "No boxes. Press a to generate a connection URL or c to connect.")
	tables[ViewOutbox] = components.NewDataTable([]table.Column{
		{Title: "Box", Width: 24},
		{Title: "Transaction", Width: 12},
		{Title: "Images left", Width: 16},
		{Title: "Status", Width: 8},
	}, "Outbox is empty.")
	tables[ViewPatients] = components.NewDataTable([]table.Column{
		{Title: "Name", Width: 32},
		{Title: "Patient ID", Width: 16},
		{Title: "Birth date", Width: 12},
		{Title: "Sex", Width: 4},
	}, "No patients.")
	return tables
}

func boxRows(boxes []domain.Box) ([]int64, []table.Row) {
	rows := make([]table.Row, len(boxes))
	for i, b := range boxes {
		status := "offline"
		if b.Online {
			status = "online"
		}
		rows[i] = table.Row{b.Name, b.FormattedSendMethod(), status, b.BaseURL}
	}
	return domain.IDs(boxes), rows
}

// outboxRows keys groups by transaction id
func outboxRows(groups []domain.TransactionGroup) ([]int64, []table.Row) {
	ids := make([]int64, len(groups))
	rows := make([]table.Row, len(groups))
	for i, g := range groups {
		status := "sending"
		if g.Failed {
			status = "failed"
		}
		ids[i] = g.TransactionID
		rows[i] = table.Row{
			g.RemoteBoxName,
			fmt.Sprintf("%d", g.TransactionID),
			fmt.Sprintf("%d of %d", g.ImagesLeft, g.TotalImageCount),
			status,
		}
	}
	return ids, rows
}

func patientRows(patients []domain.Patient) ([]int64, []table.Row) {
	rows := make([]table.Row, len(patients))
	for i, p := range patients {
		rows[i] = table.Row{p.DisplayName(), p.PatientID.Value, p.PatientBirthDate.Value, p.PatientSex.Value}
	}
	return domain.IDs(patients), rows
}

// renderHeader renders the view tabs and the node URL
func (m Model) renderHeader() string {
	tabs := make([]string, 0, viewCount)
	for v := View(0); v < viewCount; v++ {
		label := fmt.Sprintf("%d %s", v+1, v)
		if v == m.ActiveView {
			tabs = append(tabs, styles.ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, styles.InactiveTabStyle.Render(label))
		}
	}
	left := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	right := styles.DimStyle.Render(m.ServerURL)
	if m.Session.Err != nil && !m.Session.LoggedIn() {
		right = styles.OfflineDot + " " + right
	} else {
		right = styles.OnlineDot + " " + right
	}

	gap := max(m.Width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

// renderFooter renders a single-line minimal footer
func (m Model) renderFooter() string {
	var left string
	switch {
	case m.StatusMsg != "" && m.StatusIsErr:
		left = styles.ErrorToastStyle.Render(styles.Truncate(m.StatusMsg, m.Width/2)) +
			styles.DimStyle.Render(" esc dismiss")
	case m.StatusMsg != "":
		left = styles.InfoToastStyle.Render(styles.Truncate(m.StatusMsg, m.Width/2))
	case m.loadErr[m.ActiveView] != "":
		left = styles.ErrorStyle.Render(styles.Truncate(m.loadErr[m.ActiveView], m.Width/2))
	default:
		if n := m.tables[m.ActiveView].MarkedCount(); n > 0 {
			left = styles.AccentStyle.Render(fmt.Sprintf("%d marked", n))
		}
	}

	var center string
	switch m.ActiveView {
	case ViewBoxes:
		center = hint("a", "URL") + "  " + hint("c", "Connect") + "  " + hint("d", "Delete")
	case ViewOutbox:
		center = hint("d", "Delete")
	case ViewPatients:
		center = hint("t", "Tag") + "  " + hint("x", "Delete images")
	}

	user := "not logged in"
	if m.Session.LoggedIn() {
		user = m.Session.User.User
	}
	right := styles.DimStyle.Render(user) + "  " + hint("?", "help")

	leftWidth := lipgloss.Width(left)
	centerWidth := lipgloss.Width(center)
	rightWidth := lipgloss.Width(right)

	if leftWidth+centerWidth+rightWidth >= m.Width {
		gap := max(m.Width-leftWidth-rightWidth, 0)
		return left + strings.Repeat(" ", gap) + right
	}

	available := m.Width - leftWidth - rightWidth
	leftPad := (available - centerWidth) / 2
	rightPad := available - centerWidth - leftPad
	return left + strings.Repeat(" ", leftPad) + center + strings.Repeat(" ", rightPad) + right
}

func hint(k, desc string) string {
	return styles.AccentStyle.Render(k) + styles.DimStyle.Render(" "+desc)
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	help := `
VIEWS                           ACTIONS
  1          Boxes                a      Generate box URL
  2          Outbox               c      Connect to box
  3          Patients             d/x    Delete selection
  Tab        Next view            t      Tag series
                                  r      Refresh
TABLE                           OTHER
  j/k        Up/down              L      Logout
  g/G        First/last row       q      Quit
  Space      Mark row             ?      This help
  /          Filter               Esc    Close / Cancel

Press any key to return...
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(help))
}

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.State == StateHelp {
		return m.renderHelp()
	}

	view := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		"",
		m.tables[m.ActiveView].View(),
	)
	view = lipgloss.NewStyle().Height(m.Height - 1).Render(view)
	view = lipgloss.JoinVertical(lipgloss.Left, view, m.renderFooter())

	switch {
	case m.Confirm.IsVisible():
		view = overlay(m, m.Confirm.View())
	case m.TagModal.IsVisible():
		view = overlay(m, m.TagModal.View())
	case m.Form.IsVisible():
		view = overlay(m, m.Form.View())
	case m.Message.IsVisible():
		view = overlay(m, m.Message.View())
	}
	return view
}

func overlay(m Model, modal string) string {
	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		modal)
}
