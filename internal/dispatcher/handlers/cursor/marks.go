package cursor

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/engine/buffer"
)

// MarkPrevious is the mark set to the position a jump started from.
const MarkPrevious = '\''

// ActionSetMark sets a mark at the caret (m).
const ActionSetMark = "mark.set"

// ErrInvalidMark is returned for a mark name m cannot set.
var ErrInvalidMark = errors.New("cursor: invalid mark name")

// jumps are the motions that record MarkPrevious.
var jumps = map[string]bool{
	"cursor.documentStart":     true,
	"cursor.documentEnd":       true,
	"cursor.gotoLine":          true,
	"cursor.gotoPercent":       true,
	"cursor.matchPair":         true,
	"cursor.paragraphForward":  true,
	"cursor.paragraphBackward": true,
	"cursor.gotoMark":          true,
	"cursor.gotoMarkLine":      true,
}

// MarkHandler handles mark.set.
type MarkHandler struct {
	buf *buffer.Memory
}

// NewMarkHandler creates a mark handler for buf.
func NewMarkHandler(buf *buffer.Memory) *MarkHandler {
	return &MarkHandler{buf: buf}
}

// Namespace implements dispatcher.Namespace.
func (h *MarkHandler) Namespace() string {
	return "mark"
}

// CanHandle implements dispatcher.Namespace.
func (h *MarkHandler) CanHandle(name string) bool {
	return name == ActionSetMark
}

// Handle implements dispatcher.Namespace.
func (h *MarkHandler) Handle(_ context.Context, call dispatcher.Call) error {
	name, _ := call.Args.Rune("mark")
	if !Settable(name) {
		return fmt.Errorf("%w: %q", ErrInvalidMark, name)
	}
	h.buf.SetMark(name, buffer.MarkTarget{Span: buffer.Point(h.buf.Cursor())})
	return nil
}

// Settable reports whether m or :mark may set the named mark.
func Settable(name rune) bool {
	switch {
	case name >= 'a' && name <= 'z', name >= 'A' && name <= 'Z':
		return true
	}
	switch name {
	case '\'', '`', '<', '>', '[', ']':
		return true
	}
	return false
}
