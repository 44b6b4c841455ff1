package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/sbx/internal/app"
	"github.com/mmcdole/sbx/internal/boxes"
	"github.com/mmcdole/sbx/internal/dialog"
	"github.com/mmcdole/sbx/internal/domain"
	"github.com/mmcdole/sbx/internal/poll"
	"github.com/mmcdole/sbx/internal/session"
	"github.com/mmcdole/sbx/internal/tui/components"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateHelp
)

// formKind tells what the visible form submits to
type formKind int

const (
	formNone formKind = iota
	formGenerateURL
	formConnect
	formLogin
)

// Options tune the model
type Options struct {
	ServerURL string
	Username  string

	OutboxInterval time.Duration
	BoxesInterval  time.Duration
	InfoTimeout    time.Duration
	ErrorTimeout   time.Duration
}

func (o *Options) setDefaults() {
	if o.OutboxInterval <= 0 {
		o.OutboxInterval = poll.OutboxInterval
	}
	if o.BoxesInterval <= 0 {
		o.BoxesInterval = poll.BoxesInterval
	}
	if o.InfoTimeout <= 0 {
		o.InfoTimeout = 3 * time.Second
	}
	if o.ErrorTimeout <= 0 {
		o.ErrorTimeout = 30 * time.Second
	}
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	// Services
	svc    app.Services
	sink   *EventSink
	logger *slog.Logger
	opts   Options

	// ctx outlives single requests; bulk operations wait on it
	ctx    context.Context
	cancel context.CancelFunc

	// Views
	ActiveView View
	tables     [viewCount]components.DataTable
	loadErr    [viewCount]string

	// Data
	Boxes    []domain.Box
	Groups   []domain.TransactionGroup
	Patients []domain.Patient
	Session  session.State

	// Polling
	pollers  [viewCount]*poll.Controller
	Registry *poll.Registry

	// Modals
	Confirm  components.ConfirmModal
	Form     components.FormModal
	formKind formKind
	Message  components.MessageModal
	TagModal components.TagModal

	// Dimensions
	Width  int
	Height int

	// Status line
	ServerURL   string
	StatusMsg   string
	StatusIsErr bool
	statusSeq   int
}

// NewModel creates a new application model. The services must report to sink.
func NewModel(svc app.Services, sink *EventSink, opts Options, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}
	opts.setDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	registry := &poll.Registry{}

	m := Model{
		State:      StateBrowsing,
		svc:        svc,
		sink:       sink,
		logger:     logger,
		opts:       opts,
		ctx:        ctx,
		cancel:     cancel,
		ActiveView: ViewBoxes,
		tables:     newTables(),
		Registry:   registry,
		Confirm:    components.NewConfirmModal(),
		Form:       components.NewFormModal(),
		Message:    components.NewMessageModal(),
		TagModal:   components.NewTagModal(),
		Session:    svc.Session.Current(),
		ServerURL:  opts.ServerURL,
	}
	m.pollers[ViewBoxes] = poll.NewController("boxes", opts.BoxesInterval,
		sink.Reloader(ViewBoxes).Reload, registry, logger)
	m.pollers[ViewOutbox] = poll.NewController("outbox", opts.OutboxInterval,
		sink.Reloader(ViewOutbox).Reload, registry, logger)
	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	if p := m.pollers[m.ActiveView]; p != nil {
		p.Start()
	}
	return tea.Batch(
		m.sink.Wait(),
		UpdateSessionCmd(m.svc.Session),
		m.loadCmd(m.ActiveView),
	)
}

// Shutdown stops polling and abandons pending bulk operations
func (m Model) Shutdown() {
	m.sink.Close()
	for _, p := range m.pollers {
		if p != nil {
			p.Stop()
		}
	}
	m.cancel()
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.Shutdown()
	return m, tea.Quit
}

// loadCmd returns the command refreshing view
func (m Model) loadCmd(v View) tea.Cmd {
	switch v {
	case ViewBoxes:
		return LoadBoxesCmd(m.svc.Boxes)
	case ViewOutbox:
		return LoadOutboxCmd(m.svc.Outbox)
	case ViewPatients:
		return LoadPatientsCmd(m.svc.Metadata)
	}
	return nil
}

// switchView shows v, moving polling over to it
func (m *Model) switchView(v View) tea.Cmd {
	if v == m.ActiveView {
		return nil
	}
	if p := m.pollers[m.ActiveView]; p != nil {
		p.Stop()
	}
	m.ActiveView = v
	if p := m.pollers[v]; p != nil {
		p.Start()
	}
	return m.loadCmd(v)
}

// setStatus shows a notification in the footer and schedules its removal
func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.StatusMsg = text
	m.StatusIsErr = isErr
	timeout := m.opts.InfoTimeout
	if isErr {
		timeout = m.opts.ErrorTimeout
	}
	return ClearStatusCmd(m.statusSeq, timeout)
}

func (m *Model) clearStatus() {
	m.StatusMsg = ""
	m.StatusIsErr = false
}

func (m *Model) updateLayout() {
	for i := range m.tables {
		m.tables[i].SetSize(m.Width, m.Height-ChromeHeight)
	}
	m.TagModal.SetSize(m.Width)
}

func (m *Model) showLogin() {
	if m.Form.IsVisible() && m.formKind == formLogin {
		return
	}
	m.formKind = formLogin
	m.Form.Show("Log in to "+m.ServerURL, "",
		components.Field{Label: "Username", Value: m.opts.Username},
		components.Field{Label: "Password", Secret: true},
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sinkMsg:
		next, cmd := m.Update(msg.msg)
		return next, tea.Batch(cmd, m.sink.Wait())

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case ReloadMsg:
		return m, m.loadCmd(msg.View)

	case BoxesLoadedMsg:
		m.Boxes = msg.Boxes
		m.tables[ViewBoxes].SetRows(boxRows(msg.Boxes))
		m.loadErr[ViewBoxes] = ""
		return m, nil

	case OutboxLoadedMsg:
		m.Groups = msg.Groups
		m.tables[ViewOutbox].SetRows(outboxRows(msg.Groups))
		m.loadErr[ViewOutbox] = ""
		return m, nil

	case PatientsLoadedMsg:
		m.Patients = msg.Patients
		m.tables[ViewPatients].SetRows(patientRows(msg.Patients))
		m.loadErr[ViewPatients] = ""
		return m, nil

	case LoadFailedMsg:
		if errors.Is(msg.Err, domain.ErrAuthFailed) {
			m.Session = session.State{Err: msg.Err}
			m.showLogin()
			return m, nil
		}
		m.loadErr[msg.View] = ErrMsg{Err: msg.Err, Context: "refreshing " + strings.ToLower(msg.View.String())}.Error()
		return m, nil

	case ToastMsg:
		return m, m.setStatus(msg.Text, msg.Error)

	case ClearToastMsg:
		if msg.Seq == m.statusSeq {
			m.clearStatus()
		}
		return m, nil

	case ErrMsg:
		return m, m.setStatus(msg.Error(), true)

	case OpenConfirmMsg:
		if m.Confirm.IsVisible() || msg.Handle.IsClosed() {
			msg.Handle.Close()
			return m, nil
		}
		m.Confirm.Show(msg.Confirm, msg.Handle)
		return m, nil

	case components.ConfirmClosedMsg:
		m.Confirm, _ = m.Confirm.Update(msg)
		return m, nil

	case BannerMsg:
		m.tables[msg.View].SetBanner(msg.Text)
		return m, nil

	case BulkDoneMsg:
		if msg.Err == nil {
			m.tables[msg.View].ClearMarks()
		} else if !errors.Is(msg.Err, dialog.ErrCancelled) {
			m.logger.Debug("bulk operation ended with error", "view", msg.View, "error", msg.Err)
		}
		return m, nil

	case TagDialogReadyMsg:
		if msg.Err != nil {
			return m, m.setStatus(ErrMsg{Err: msg.Err, Context: "opening tag dialog"}.Error(), true)
		}
		m.TagModal.Show(msg.Dialog)
		return m, nil

	case TagsAppliedMsg:
		m.TagModal.Hide()
		if msg.Err == nil {
			m.tables[ViewPatients].ClearMarks()
		}
		return m, nil

	case BaseURLGeneratedMsg:
		if m.formKind != formGenerateURL {
			return m, nil
		}
		if msg.Err != nil {
			m.Form.SetError(domain.ErrorPayload(msg.Err))
			return m, nil
		}
		m.Form.Hide()
		m.formKind = formNone
		m.Message.Show(baseURLMessage(msg.Name, msg.URL))
		return m, LoadBoxesCmd(m.svc.Boxes)

	case BoxConnectedMsg:
		if m.formKind != formConnect {
			return m, nil
		}
		if msg.Err != nil {
			m.Form.SetError(domain.ErrorPayload(msg.Err))
			return m, nil
		}
		m.Form.Hide()
		m.formKind = formNone
		return m, tea.Batch(
			m.setStatus(fmt.Sprintf("Connected to %s", msg.Box.Name), false),
			LoadBoxesCmd(m.svc.Boxes),
		)

	case SessionMsg:
		m.Session = msg.State
		switch {
		case msg.State.LoggedIn():
		case errors.Is(msg.State.Err, domain.ErrAuthFailed):
			m.showLogin()
		case msg.State.Err != nil:
			return m, m.setStatus(ErrMsg{Err: msg.State.Err}.Error(), true)
		default:
			m.showLogin()
		}
		return m, nil

	case LoginDoneMsg:
		if m.formKind != formLogin {
			return m, nil
		}
		if msg.Err != nil {
			text := domain.ErrorPayload(msg.Err)
			if errors.Is(msg.Err, domain.ErrAuthFailed) {
				text = "Incorrect username or password"
			}
			m.Form.SetError(text)
			return m, nil
		}
		m.Form.Hide()
		m.formKind = formNone
		m.opts.Username = msg.User
		return m, tea.Batch(
			m.setStatus("Logged in as "+msg.User, false),
			UpdateSessionCmd(m.svc.Session),
			m.loadCmd(m.ActiveView),
		)
	}

	return m, nil
}

// baseURLMessage is shown once the node generated a connection URL
func baseURLMessage(name, baseURL string) dialog.Message {
	return dialog.Message{
		Title: "Base URL for " + name,
		Message: "Give this URL to the operator of the remote box:\n\n" + baseURL +
			"\n\nOr send it by email:\n" + boxes.MailtoLink(baseURL),
	}
}
