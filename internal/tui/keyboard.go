package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/sbx/internal/domain"
	"github.com/mmcdole/sbx/internal/slicebox"
	"github.com/mmcdole/sbx/internal/tui/components"
)

// handleKeyMsg routes a key press: open modals first, then the filter
// input, then the global bindings, then the table
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	if m.State == StateHelp {
		m.State = StateBrowsing
		return m, nil
	}

	if handled, next, cmd := m.routeToModal(msg); handled {
		return next, cmd
	}

	table := &m.tables[m.ActiveView]
	if table.IsFilterTyping() {
		var cmd tea.Cmd
		*table, cmd = table.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m.quit()

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Boxes):
		return m, m.switchView(ViewBoxes)

	case key.Matches(msg, Keys.Outbox):
		return m, m.switchView(ViewOutbox)

	case key.Matches(msg, Keys.Patients):
		return m, m.switchView(ViewPatients)

	case key.Matches(msg, Keys.NextView):
		return m, m.switchView((m.ActiveView + 1) % viewCount)

	case key.Matches(msg, Keys.Refresh):
		return m, m.loadCmd(m.ActiveView)

	case key.Matches(msg, Keys.Filter):
		table.ToggleFilter()
		return m, nil

	case key.Matches(msg, Keys.Mark):
		table.ToggleMark()
		return m, nil

	case key.Matches(msg, Keys.Escape):
		switch {
		case table.IsFiltering():
			table.ClearFilter()
		case m.StatusIsErr:
			m.clearStatus()
		case table.Banner() != "":
			table.SetBanner("")
		default:
			table.ClearMarks()
		}
		return m, nil

	case key.Matches(msg, Keys.Delete):
		return m, m.deleteSelection()

	case key.Matches(msg, Keys.Add) && m.ActiveView == ViewBoxes:
		m.formKind = formGenerateURL
		m.Form.Show("Generate Base URL",
			"The node creates a pending box and a URL for the remote side to connect with.",
			components.Field{Label: "Remote box name", Placeholder: "e.g. hospital-north"},
		)
		return m, nil

	case key.Matches(msg, Keys.Connect) && m.ActiveView == ViewBoxes:
		m.formKind = formConnect
		m.Form.Show("Connect to Box",
			"Paste the base URL generated by the remote node.",
			components.Field{Label: "Remote box name", Placeholder: "e.g. hospital-north"},
			components.Field{Label: "Base URL", Placeholder: "https://remote/api/box/..."},
		)
		return m, nil

	case key.Matches(msg, Keys.Tag) && m.ActiveView == ViewPatients:
		ids := table.Selected()
		if len(ids) == 0 {
			return m, nil
		}
		return m, OpenTagDialogCmd(m.svc.Tagging, slicebox.PatientsPrefix, ids)

	case key.Matches(msg, Keys.Logout):
		return m, LogoutCmd(m.svc.Session)
	}

	var cmd tea.Cmd
	*table, cmd = table.Update(msg)
	return m, cmd
}

// routeToModal hands msg to the topmost visible modal
func (m Model) routeToModal(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	switch {
	case m.Confirm.IsVisible():
		var cmd tea.Cmd
		m.Confirm, cmd = m.Confirm.Update(msg)
		return true, m, cmd

	case m.TagModal.IsVisible():
		_, shouldClose, shouldSubmit := m.TagModal.HandleKeyMsg(msg)
		if shouldClose {
			m.TagModal.Hide()
			return true, m, nil
		}
		if shouldSubmit {
			m.TagModal.SetBusy(true)
			return true, m, ApplyTagsCmd(m.svc.Tagging, m.TagModal.Dialog())
		}
		return true, m, nil

	case m.Form.IsVisible():
		var (
			cmd       tea.Cmd
			submitted bool
		)
		m.Form, cmd, submitted = m.Form.Update(msg)
		if !m.Form.IsVisible() {
			m.formKind = formNone
			return true, m, cmd
		}
		if submitted {
			return true, m, m.submitForm()
		}
		return true, m, cmd

	case m.Message.IsVisible():
		var cmd tea.Cmd
		m.Message, cmd = m.Message.Update(msg)
		return true, m, cmd
	}
	return false, m, nil
}

// submitForm starts the request behind the visible form
func (m *Model) submitForm() tea.Cmd {
	values := m.Form.Values()
	m.Form.SetBusy(true)

	switch m.formKind {
	case formGenerateURL:
		return GenerateBaseURLCmd(m.svc.Boxes, values[0])
	case formConnect:
		return ConnectBoxCmd(m.svc.Boxes, values[0], values[1])
	case formLogin:
		return LoginCmd(m.svc.Session, values[0], m.Form.RawValue(1))
	}
	m.Form.SetBusy(false)
	return nil
}

// deleteSelection starts the delete pipeline of the active view for the
// marked rows, or the row under the cursor
func (m *Model) deleteSelection() tea.Cmd {
	table := &m.tables[m.ActiveView]
	ids := table.Selected()
	if len(ids) == 0 {
		return nil
	}

	switch m.ActiveView {
	case ViewBoxes:
		list := pick(m.Boxes, ids)
		if len(list) == 0 {
			return nil
		}
		return DeleteBoxesCmd(m.ctx, m.svc.Boxes, list, m.sink, m.sink.Reloader(ViewBoxes))

	case ViewOutbox:
		groups := pickBy(m.Groups, ids, func(g domain.TransactionGroup) int64 { return g.TransactionID })
		if len(groups) == 0 {
			return nil
		}
		table.SetBanner("")
		return DeleteOutboxCmd(m.ctx, m.svc.Outbox, groups, m.sink, m.sink.Reloader(ViewOutbox), m.sink.Banner(ViewOutbox))

	case ViewPatients:
		return DeleteImagesCmd(m.ctx, m.svc.Images, slicebox.PatientsPrefix, ids, m.sink, m.sink.Reloader(ViewPatients))
	}
	return nil
}

// pick returns the entities with the given ids, in ids order
func pick[T domain.Identified](items []T, ids []int64) []T {
	return pickBy(items, ids, func(item T) int64 { return item.GetID() })
}

func pickBy[T any](items []T, ids []int64, id func(T) int64) []T {
	byID := make(map[int64]T, len(items))
	for _, item := range items {
		byID[id(item)] = item
	}
	out := make([]T, 0, len(ids))
	for _, i := range ids {
		if item, ok := byID[i]; ok {
			out = append(out, item)
		}
	}
	return out
}
