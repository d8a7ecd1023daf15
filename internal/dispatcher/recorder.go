package dispatcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/dshills/vimcore/internal/logging"
)

// Recorder is a Dispatcher that remembers every call and optionally
// forwards it. Tests and the CLI use it to show what the core dispatched.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
	next  Dispatcher
}

// NewRecorder creates a recorder that forwards to next, which may be nil.
func NewRecorder(next Dispatcher) *Recorder {
	return &Recorder{next: next}
}

// Dispatch implements Dispatcher.
func (r *Recorder) Dispatch(ctx context.Context, call Call) error {
	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()
	if r.next != nil {
		return r.next.Dispatch(ctx, call)
	}
	return nil
}

// Calls returns the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Last returns the most recent call.
func (r *Recorder) Last() (Call, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return Call{}, false
	}
	return r.calls[len(r.calls)-1], true
}

// Reset forgets the recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// Message is one piece of feedback captured by Messages.
type Message struct {
	Kind  ErrorKind
	Text  string
	Error bool
	Bell  bool
}

func (m Message) String() string {
	switch {
	case m.Bell:
		return "<bell>"
	case m.Error:
		return fmt.Sprintf("E(%s): %s", m.Kind, m.Text)
	default:
		return m.Text
	}
}

// Messages is a Reporter that keeps what it is told and logs it.
type Messages struct {
	mu   sync.Mutex
	msgs []Message
	log  *logging.Logger
}

// NewMessages creates a reporter; log may be nil.
func NewMessages(log *logging.Logger) *Messages {
	return &Messages{log: logging.OrNop(log).WithComponent("reporter")}
}

// ReportError implements Reporter.
func (m *Messages) ReportError(kind ErrorKind, message string) {
	m.add(Message{Kind: kind, Text: message, Error: true})
	m.log.Debug("error (%s): %s", kind, message)
}

// ReportStatus implements Reporter.
func (m *Messages) ReportStatus(message string) {
	m.add(Message{Text: message})
}

// Bell implements Reporter.
func (m *Messages) Bell() {
	m.add(Message{Bell: true})
}

func (m *Messages) add(msg Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
}

// All returns every message.
func (m *Messages) All() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.msgs...)
}

// Errors returns the error messages.
func (m *Messages) Errors() []Message {
	var out []Message
	for _, msg := range m.All() {
		if msg.Error {
			out = append(out, msg)
		}
	}
	return out
}

// Bells returns how many times the bell rang.
func (m *Messages) Bells() int {
	n := 0
	for _, msg := range m.All() {
		if msg.Bell {
			n++
		}
	}
	return n
}

// Reset forgets every message.
func (m *Messages) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = nil
}
