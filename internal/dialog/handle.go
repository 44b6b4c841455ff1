package dialog

import "sync"

// Handle is a Future owned by an open dialog widget. Whoever acts on the
// result closes the dialog through the handle once the action has settled.
type Handle[T any] struct {
	*Future[T]

	once   sync.Once
	closed chan struct{}
}

// NewHandle creates a handle for a freshly opened dialog
func NewHandle[T any]() *Handle[T] {
	return &Handle[T]{
		Future: NewFuture[T](),
		closed: make(chan struct{}),
	}
}

// Close dismisses the dialog. A dialog closed while still pending counts
// as cancelled. Close is safe to call more than once.
func (h *Handle[T]) Close() {
	h.once.Do(func() {
		h.Cancel()
		close(h.closed)
	})
}

// Closed is closed when the dialog has been dismissed
func (h *Handle[T]) Closed() <-chan struct{} {
	return h.closed
}

// IsClosed reports whether Close has been called
func (h *Handle[T]) IsClosed() bool {
	select {
	case <-h.closed:
		return true
	default:
		return false
	}
}

// Confirm is the content of a confirmation dialog
type Confirm struct {
	Title   string
	Message string
	Action  string // label of the confirming button
}

// Message is the content of an informational dialog with a single Close button
type Message struct {
	Title   string
	Message string
}

// Opener shows dialogs. Implementations return immediately; the returned
// handle settles when the user answers.
type Opener interface {
	OpenConfirm(c Confirm) *Handle[struct{}]
}

// OpenerFunc adapts a function to Opener
type OpenerFunc func(c Confirm) *Handle[struct{}]

func (f OpenerFunc) OpenConfirm(c Confirm) *Handle[struct{}] { return f(c) }

// AutoConfirm is an Opener that confirms every dialog immediately
var AutoConfirm Opener = OpenerFunc(func(Confirm) *Handle[struct{}] {
	h := NewHandle[struct{}]()
	h.Confirm(struct{}{})
	return h
})
