// Package operator implements the operator.* handlers: an operator applies
// to the text a motion, a text object or the visual selection covers.
package operator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/cursor"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/register"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/search"
	"github.com/dshills/vimcore/internal/engine/buffer"
)

// Action names for operators.
const (
	ActionDelete     = "operator.delete"     // d
	ActionChange     = "operator.change"     // c
	ActionYank       = "operator.yank"       // y
	ActionIndent     = "operator.indent"     // >
	ActionOutdent    = "operator.outdent"    // <
	ActionLowercase  = "operator.lowercase"  // gu
	ActionUppercase  = "operator.uppercase"  // gU
	ActionToggleCase = "operator.toggleCase" // g~
	ActionRot13      = "operator.rot13"      // g?
)

// ErrNoRange is returned for an operator call without motion or visual
// selection.
var ErrNoRange = errors.New("operator: no motion or selection")

// Range is the text an operator applies to. A linewise range covers whole
// lines, terminators included.
type Range struct {
	Span     buffer.Span
	Linewise bool
}

// Handler applies operators to a buffer.
type Handler struct {
	buf    *buffer.Memory
	regs   *register.Store
	search *search.Handler

	// ShiftWidth returns the indent step for > and <. Nil means 8.
	ShiftWidth func() int
}

// NewHandler creates an operator handler. search resolves search motions
// and may be nil.
func NewHandler(buf *buffer.Memory, regs *register.Store, search *search.Handler) *Handler {
	return &Handler{buf: buf, regs: regs, search: search}
}

// Namespace implements dispatcher.Namespace.
func (h *Handler) Namespace() string {
	return "operator"
}

// CanHandle implements dispatcher.Namespace.
func (h *Handler) CanHandle(name string) bool {
	switch name {
	case ActionDelete, ActionChange, ActionYank, ActionIndent, ActionOutdent,
		ActionLowercase, ActionUppercase, ActionToggleCase, ActionRot13:
		return true
	}
	return false
}

// Handle implements dispatcher.Namespace.
func (h *Handler) Handle(_ context.Context, call dispatcher.Call) error {
	r, err := h.Resolve(call)
	if err != nil {
		return err
	}
	reg, _ := call.Args.Rune("register")
	return h.Apply(call.Handler, r, reg)
}

// Resolve computes the range of an operator call from its motion, or from
// the selection for a visual call.
func (h *Handler) Resolve(call dispatcher.Call) (Range, error) {
	caret := h.buf.Cursor()

	if n, ok := call.Args.Int("visualLines"); ok {
		row := h.buf.RowOf(caret)
		return h.lines(row, row+n-1), nil
	}
	if call.Args.Text("visual") != "" {
		sel := h.buf.CurrentSelections()[0].Normalize()
		if call.Args.Bool("linewise") {
			return h.lines(h.buf.RowOf(sel.Start), h.buf.RowOf(sel.End)), nil
		}
		return Range{Span: buffer.Span{Start: sel.Start, End: h.afterChar(sel.End)}}, nil
	}

	motion, ok := call.Motion()
	if !ok {
		return Range{}, ErrNoRange
	}
	if motion.Namespace() == "select" {
		s, err := cursor.Object(h.buf, motion, caret)
		if err != nil {
			return Range{}, err
		}
		if motion.Args.Bool("linewise") {
			return Range{Span: s, Linewise: true}, nil
		}
		return Range{Span: s}, nil
	}

	var target int
	var err error
	switch {
	case motion.Namespace() == "search" && h.search != nil:
		target, err = h.search.Target(motion, caret)
	case cursor.Handles(motion.Handler):
		target, err = cursor.Target(h.buf, motion, caret)
	default:
		err = fmt.Errorf("%w: %s", cursor.ErrUnknownMove, motion.Handler)
	}
	if err != nil {
		return Range{}, err
	}

	if motion.Args.Bool("linewise") {
		return h.lines(h.buf.RowOf(caret), h.buf.RowOf(target)), nil
	}
	s := buffer.Span{Start: caret, End: target}.Normalize()
	if motion.Args.Bool("inclusive") {
		s.End = h.afterChar(s.End)
	}
	return Range{Span: s}, nil
}

// lines returns the linewise range of rows a..b in either order.
func (h *Handler) lines(a, b int) Range {
	if a > b {
		a, b = b, a
	}
	return Range{
		Span:     buffer.Span{Start: h.buf.LineAtRow(a).Start, End: h.buf.FullLineAtRow(b).End},
		Linewise: true,
	}
}

func (h *Handler) afterChar(p int) int {
	text := h.buf.Text()
	if p >= len(text) {
		return len(text)
	}
	_, size := utf8.DecodeRuneInString(text[p:])
	return p + size
}

// Apply runs operator name on r. reg is the register named with ", or 0.
func (h *Handler) Apply(name string, r Range, reg rune) error {
	switch name {
	case ActionDelete:
		return h.delete(r, reg)
	case ActionChange:
		return h.change(r, reg)
	case ActionYank:
		h.regs.Yank(reg, h.content(r))
		h.buf.SetSelections(buffer.Point(r.Span.Start))
		return nil
	case ActionIndent:
		return h.shift(r, 1)
	case ActionOutdent:
		return h.shift(r, -1)
	case ActionLowercase:
		return h.mapRunes(r, unicode.ToLower)
	case ActionUppercase:
		return h.mapRunes(r, unicode.ToUpper)
	case ActionToggleCase:
		return h.mapRunes(r, toggleCase)
	case ActionRot13:
		return h.mapRunes(r, rot13)
	}
	return fmt.Errorf("%w: %s", dispatcher.ErrNoHandler, name)
}

// content returns the register contents for r. Linewise text always ends
// in a newline.
func (h *Handler) content(r Range) register.Register {
	text := h.buf.Substr(r.Span)
	if r.Linewise && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return register.Register{Text: text, Linewise: r.Linewise}
}

func (h *Handler) delete(r Range, reg rune) error {
	h.regs.Delete(reg, h.content(r))

	s := r.Span
	// Deleting the last lines of a buffer without a final newline also
	// removes the newline before them.
	if r.Linewise && s.End == h.buf.Size() && s.Start > 0 && !strings.HasSuffix(h.buf.Substr(s), "\n") {
		s.Start--
	}
	if err := h.buf.Delete(s); err != nil {
		return err
	}
	if r.Linewise {
		h.buf.SetSelections(buffer.Point(firstNonBlank(h.buf, h.buf.RowOf(s.Start))))
		return nil
	}
	h.buf.SetSelections(buffer.Point(s.Start))
	return nil
}

func (h *Handler) change(r Range, reg rune) error {
	if !r.Linewise {
		return h.delete(r, reg)
	}
	// A linewise change keeps one empty line with the first line's indent.
	h.regs.Delete(reg, h.content(r))
	first := h.buf.LineAt(r.Span.Start)
	indent := leadingSpace(h.buf.Substr(first))
	s := r.Span
	repl := indent
	if strings.HasSuffix(h.buf.Substr(s), "\n") {
		repl += "\n"
	}
	if _, err := h.buf.Replace(s, repl); err != nil {
		return err
	}
	h.buf.SetSelections(buffer.Point(s.Start + len(indent)))
	return nil
}

func (h *Handler) shift(r Range, dir int) error {
	sw := 8
	if h.ShiftWidth != nil {
		if n := h.ShiftWidth(); n > 0 {
			sw = n
		}
	}
	first, last := h.buf.RowOf(r.Span.Start), h.buf.RowOf(max(r.Span.End-1, r.Span.Start))
	rows := make([]int, 0, last-first+1)
	for row := first; row <= last; row++ {
		rows = append(rows, row)
	}
	// Bottom up, so earlier offsets stay valid.
	sort.Sort(sort.Reverse(sort.IntSlice(rows)))
	for _, row := range rows {
		line := h.buf.LineAtRow(row)
		text := h.buf.Substr(line)
		if text == "" {
			continue
		}
		ws := leadingSpace(text)
		width := indentWidth(ws)
		width = max(0, width+dir*sw)
		if _, err := h.buf.Replace(buffer.Span{Start: line.Start, End: line.Start + len(ws)}, strings.Repeat(" ", width)); err != nil {
			return err
		}
	}
	h.buf.SetSelections(buffer.Point(firstNonBlank(h.buf, first)))
	return nil
}

func (h *Handler) mapRunes(r Range, fn func(rune) rune) error {
	text := h.buf.Substr(r.Span)
	if _, err := h.buf.Replace(r.Span, strings.Map(fn, text)); err != nil {
		return err
	}
	h.buf.SetSelections(buffer.Point(r.Span.Start))
	return nil
}

func toggleCase(r rune) rune {
	if unicode.IsUpper(r) {
		return unicode.ToLower(r)
	}
	return unicode.ToUpper(r)
}

func rot13(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z':
		return 'a' + (r-'a'+13)%26
	case r >= 'A' && r <= 'Z':
		return 'A' + (r-'A'+13)%26
	}
	return r
}

func leadingSpace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}

func indentWidth(ws string) int {
	w := 0
	for _, c := range ws {
		if c == '\t' {
			w += 8 - w%8
		} else {
			w++
		}
	}
	return w
}

func firstNonBlank(b *buffer.Memory, row int) int {
	line := b.LineAtRow(row)
	return line.Start + len(leadingSpace(b.Substr(line)))
}
