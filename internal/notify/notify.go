// Package notify delivers transient user notifications ("toasts").
//
// A notification carries an ID; a later notification with the same ID replaces
// the earlier one, which is how a loading message turns into a success or error.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Kind is the visual category of a notification.
type Kind string

const (
	KindLoading Kind = "loading"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification is a single transient message.
type Notification struct {
	ID      string
	Kind    Kind
	Message string
}

// Notifier receives notifications.
type Notifier interface {
	Notify(n Notification)
}

// Loading issues a loading notification and returns its ID so the outcome can replace it.
func Loading(n Notifier, message string) string {
	id := uuid.NewString()
	n.Notify(Notification{ID: id, Kind: KindLoading, Message: message})
	return id
}

// Success issues a success notification. An empty id starts a new notification.
func Success(n Notifier, id, message string) {
	if id == "" {
		id = uuid.NewString()
	}
	n.Notify(Notification{ID: id, Kind: KindSuccess, Message: message})
}

// Error issues an error notification. An empty id starts a new notification.
func Error(n Notifier, id, message string) {
	if id == "" {
		id = uuid.NewString()
	}
	n.Notify(Notification{ID: id, Kind: KindError, Message: message})
}

// Nop discards every notification.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(Notification) {}

// OrNop returns n, or Nop when n is nil.
func OrNop(n Notifier) Notifier {
	if n == nil {
		return Nop{}
	}
	return n
}

// Terminal prints notifications to a writer and mirrors them to a logger.
// Loading messages are printed as progress lines; replacements are printed below them.
type Terminal struct {
	mu     sync.Mutex
	out    io.Writer
	logger *zap.Logger
}

// NewTerminal creates a Terminal notifier writing to out.
func NewTerminal(out io.Writer, logger *zap.Logger) *Terminal {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Terminal{out: out, logger: logger}
}

// Notify implements Notifier.
//
//nolint:errcheck // writing to the terminal; errors are not recoverable
func (t *Terminal) Notify(n Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch n.Kind {
	case KindLoading:
		fmt.Fprintf(t.out, "… %s\n", n.Message)
	case KindSuccess:
		fmt.Fprintf(t.out, "✓ %s\n", n.Message)
	case KindError:
		fmt.Fprintf(t.out, "✗ %s\n", n.Message)
	default:
		fmt.Fprintln(t.out, n.Message)
	}
	t.logger.Debug("notification",
		zap.String("id", n.ID),
		zap.String("kind", string(n.Kind)),
		zap.String("message", n.Message))
}

// Flash collects notifications for display on the next rendered page.
// A notification replaces a pending one with the same ID.
type Flash struct {
	mu      sync.Mutex
	pending []Notification
}

// Notify implements Notifier.
func (f *Flash) Notify(n Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.pending {
		if f.pending[i].ID == n.ID {
			f.pending[i] = n
			return
		}
	}
	f.pending = append(f.pending, n)
}

// Pending returns a copy of the notifications not yet drained.
func (f *Flash) Pending() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Notification(nil), f.pending...)
}

// Drain returns the pending notifications and clears them.
// Loading notifications that were never resolved are dropped.
func (f *Flash) Drain() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Notification, 0, len(f.pending))
	for _, n := range f.pending {
		if n.Kind != KindLoading {
			out = append(out, n)
		}
	}
	f.pending = nil
	return out
}
