package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/sbx/internal/dialog"
	"github.com/mmcdole/sbx/internal/domain"
)

// EventSink carries events raised by services on background goroutines into
// the Bubble Tea loop. It is the notifier, dialog opener and reloader handed
// to the services.
//
// Toasts, reloads and banners are never dropped: when the buffer is full the
// sender waits until the UI drains it or the sink is closed.
type EventSink struct {
	ch        chan tea.Msg
	done      chan struct{}
	closeOnce sync.Once
}

var (
	_ domain.Notifier = (*EventSink)(nil)
	_ dialog.Opener   = (*EventSink)(nil)
)

// NewEventSink creates a sink buffering up to size events
func NewEventSink(size int) *EventSink {
	return &EventSink{
		ch:   make(chan tea.Msg, size),
		done: make(chan struct{}),
	}
}

// Close releases every sender still waiting. Later events are discarded.
func (s *EventSink) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// send delivers msg, waiting for room in the buffer. It reports false if
// the sink was closed first.
func (s *EventSink) send(msg tea.Msg) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.ch <- msg:
		return true
	case <-s.done:
		return false
	}
}

// offer delivers msg only if the buffer has room
func (s *EventSink) offer(msg tea.Msg) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.ch <- msg:
		return true
	default:
		return false
	}
}

// Info queues an info toast
func (s *EventSink) Info(message string) {
	s.send(ToastMsg{Text: message})
}

// Error queues an error toast
func (s *EventSink) Error(message string) {
	s.send(ToastMsg{Text: message, Error: true})
}

// OpenConfirm queues a confirmation dialog. A dialog that cannot be queued
// is cancelled right away so the caller never waits on it.
func (s *EventSink) OpenConfirm(c dialog.Confirm) *dialog.Handle[struct{}] {
	h := dialog.NewHandle[struct{}]()
	if !s.offer(OpenConfirmMsg{Confirm: c, Handle: h}) {
		h.Close()
	}
	return h
}

// Reloader returns a reloader that refreshes view
func (s *EventSink) Reloader(view View) domain.Reloader {
	return domain.ReloadFunc(func() {
		s.send(ReloadMsg{View: view})
	})
}

// Banner returns a callback setting the inline error banner of view
func (s *EventSink) Banner(view View) func(string) {
	return func(text string) {
		s.send(BannerMsg{View: view, Text: text})
	}
}

// sinkMsg wraps an event so Update knows to wait for the next one
type sinkMsg struct {
	msg tea.Msg
}

// Wait returns a command that blocks until the next event. It yields nil
// once the sink is closed.
func (s *EventSink) Wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-s.ch:
			return sinkMsg{msg: msg}
		case <-s.done:
			return nil
		}
	}
}
