// Package mode implements the mode.* handlers. The key machine tracks the
// current mode; these handlers place the carets and shape the selections
// that go with a mode change.
package mode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/engine/buffer"
)

// Action names for mode changes.
const (
	ActionNormal          = "mode.normal"          // <Esc>
	ActionInsert          = "mode.insert"          // i
	ActionInsertLineStart = "mode.insertLineStart" // I
	ActionAppend          = "mode.append"          // a
	ActionAppendLineEnd   = "mode.appendLineEnd"   // A
	ActionOpenBelow       = "mode.openBelow"       // o
	ActionOpenAbove       = "mode.openAbove"       // O
	ActionReplace         = "mode.replace"         // R
	ActionVisual          = "mode.visual"          // v
	ActionVisualLine      = "mode.visualLine"      // V
	ActionVisualBlock     = "mode.visualBlock"     // <C-v>
	ActionReselect        = "mode.reselect"        // gv
	ActionSelect          = "mode.select"          // gh
)

// ErrNoPreviousVisual is returned by gv before any visual selection ended.
var ErrNoPreviousVisual = errors.New("mode: no previous visual selection")

// Handler places carets on mode changes. It remembers the last visual
// selection for gv and sets the '< and '> marks when visual mode ends.
type Handler struct {
	buf *buffer.Memory

	last     []buffer.Span
	lastMode string

	// AutoIndent reports whether o and O copy the current line's indent.
	AutoIndent func() bool
}

// NewHandler creates a mode handler for buf.
func NewHandler(buf *buffer.Memory) *Handler {
	return &Handler{buf: buf}
}

// Namespace implements dispatcher.Namespace.
func (h *Handler) Namespace() string {
	return "mode"
}

// CanHandle implements dispatcher.Namespace.
func (h *Handler) CanHandle(name string) bool {
	switch name {
	case ActionNormal, ActionInsert, ActionInsertLineStart, ActionAppend,
		ActionAppendLineEnd, ActionOpenBelow, ActionOpenAbove, ActionReplace,
		ActionVisual, ActionVisualLine, ActionVisualBlock, ActionReselect, ActionSelect:
		return true
	}
	return false
}

// Handle implements dispatcher.Namespace.
func (h *Handler) Handle(_ context.Context, call dispatcher.Call) error {
	switch call.Handler {
	case ActionNormal:
		return h.normal(call)
	case ActionInsert, ActionReplace:
		if call.Args.Text("visual") != "" {
			h.collapse()
		}
		return nil
	case ActionInsertLineStart:
		return h.each(func(p int) (int, error) {
			line := h.buf.LineAt(p)
			text := h.buf.Substr(line)
			return line.Start + len(text) - len(strings.TrimLeft(text, " \t")), nil
		})
	case ActionAppend:
		return h.each(func(p int) (int, error) {
			if line := h.buf.LineAt(p); p < line.End {
				return nextChar(h.buf.Text(), p), nil
			}
			return p, nil
		})
	case ActionAppendLineEnd:
		return h.each(func(p int) (int, error) {
			return h.buf.LineAt(p).End, nil
		})
	case ActionOpenBelow:
		return h.each(func(p int) (int, error) {
			line := h.buf.LineAt(p)
			ins, err := h.buf.Insert(line.End, "\n"+h.indentOf(line))
			return ins.End, err
		})
	case ActionOpenAbove:
		return h.each(func(p int) (int, error) {
			line := h.buf.LineAt(p)
			indent := h.indentOf(line)
			_, err := h.buf.Insert(line.Start, indent+"\n")
			return line.Start + len(indent), err
		})
	case ActionVisual, ActionVisualLine, ActionVisualBlock, ActionSelect:
		// Entering from normal mode starts an empty selection at each caret;
		// switching between visual kinds keeps it.
		return nil
	case ActionReselect:
		if len(h.last) == 0 {
			return ErrNoPreviousVisual
		}
		h.buf.SetSelections(h.last...)
		return nil
	}
	return fmt.Errorf("%w: %s", dispatcher.ErrNoHandler, call.Handler)
}

// LastVisual returns the selections and mode name of the last visual
// selection.
func (h *Handler) LastVisual() ([]buffer.Span, string) {
	return append([]buffer.Span(nil), h.last...), h.lastMode
}

func (h *Handler) normal(call dispatcher.Call) error {
	from := call.Args.Text("from")
	if from == "" {
		from = call.Args.Text("visual")
	}
	switch from {
	case "insert", "replace":
		// Leaving insert puts the caret back on the last typed character.
		return h.each(func(p int) (int, error) {
			if line := h.buf.LineAt(p); p > line.Start {
				return prevChar(h.buf.Text(), p, line.Start), nil
			}
			return p, nil
		})
	case "visual", "visual-line", "visual-block", "select":
		h.remember(from)
	}
	h.collapse()
	return nil
}

// remember saves the selection for gv and sets '< and '>.
func (h *Handler) remember(kind string) {
	sels := h.buf.CurrentSelections()
	h.last = sels
	h.lastMode = kind
	first := sels[0].Normalize()
	start, end := first.Start, first.End
	if kind == "visual-line" {
		start = h.buf.LineAt(start).Start
		end = h.buf.LineAt(end).End
	}
	h.buf.SetMark('<', buffer.MarkTarget{Span: buffer.Point(start)})
	h.buf.SetMark('>', buffer.MarkTarget{Span: buffer.Point(end)})
}

// collapse reduces each selection to its caret.
func (h *Handler) collapse() {
	sels := h.buf.CurrentSelections()
	for i, s := range sels {
		sels[i] = buffer.Point(s.End)
	}
	h.buf.SetSelections(sels...)
}

func (h *Handler) indentOf(line buffer.Span) string {
	if h.AutoIndent == nil || !h.AutoIndent() {
		return ""
	}
	text := h.buf.Substr(line)
	return text[:len(text)-len(strings.TrimLeft(text, " \t"))]
}

// each moves every caret to where fn says, one selection at a time so that
// fn sees the edits made for earlier carets.
func (h *Handler) each(fn func(p int) (int, error)) error {
	n := len(h.buf.CurrentSelections())
	for i := 0; i < n; i++ {
		p, err := fn(h.buf.CurrentSelections()[i].End)
		if err != nil {
			return err
		}
		sels := h.buf.CurrentSelections()
		sels[i] = buffer.Point(p)
		h.buf.SetSelections(sels...)
	}
	return nil
}

func nextChar(text string, p int) int {
	if p >= len(text) {
		return len(text)
	}
	c, _, _, _ := uniseg.FirstGraphemeClusterInString(text[p:], -1)
	return p + len(c)
}

func prevChar(text string, p, floor int) int {
	q := floor
	for q < p {
		n := nextChar(text, q)
		if n >= p {
			return q
		}
		q = n
	}
	return floor
}
