// Package search implements the search.* motions on an in-memory buffer.
package search

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/engine/buffer"
)

// Action names for search motions.
const (
	ActionSearchForward      = "search.forward"      // /
	ActionSearchBackward     = "search.backward"     // ?
	ActionSearchNext         = "search.next"         // n
	ActionSearchPrev         = "search.prev"         // N
	ActionSearchWordForward  = "search.wordForward"  // *
	ActionSearchWordBackward = "search.wordBackward" // #
)

// Errors returned by searches.
var (
	ErrNotFound  = errors.New("search: pattern not found")
	ErrNoPattern = errors.New("search: no pattern")
	ErrNoWord    = errors.New("search: no word under cursor")
)

// Handler moves the cursor to search matches. Searches wrap around the
// end of the buffer.
type Handler struct {
	buf *buffer.Memory

	// OnPattern is called with the pattern * and # search for, so the
	// host can remember it as the last search.
	OnPattern func(pattern string, forward bool)
}

// NewHandler creates a search handler for buf.
func NewHandler(buf *buffer.Memory) *Handler {
	return &Handler{buf: buf}
}

// Namespace implements dispatcher.Namespace.
func (h *Handler) Namespace() string {
	return "search"
}

// CanHandle implements dispatcher.Namespace.
func (h *Handler) CanHandle(name string) bool {
	switch name {
	case ActionSearchForward, ActionSearchBackward, ActionSearchNext, ActionSearchPrev,
		ActionSearchWordForward, ActionSearchWordBackward:
		return true
	}
	return false
}

// Handle implements dispatcher.Namespace.
func (h *Handler) Handle(_ context.Context, call dispatcher.Call) error {
	sels := h.buf.CurrentSelections()
	for i, s := range sels {
		p, err := h.Target(call, s.End)
		if err != nil {
			return err
		}
		if call.Args.Bool("extend") {
			sels[i] = buffer.Span{Start: s.Start, End: p}
		} else {
			sels[i] = buffer.Point(p)
		}
	}
	h.buf.SetSelections(sels...)
	return nil
}

// Target returns the offset the search call moves to from from.
func (h *Handler) Target(call dispatcher.Call, from int) (int, error) {
	pattern := call.Args.Text("pattern")
	forward := true
	switch call.Handler {
	case ActionSearchBackward:
		forward = false
	case ActionSearchNext, ActionSearchPrev:
		forward = call.Args.Bool("forward")
	case ActionSearchWordForward, ActionSearchWordBackward:
		word := wordAt(h.buf, from)
		if word == "" {
			return 0, ErrNoWord
		}
		pattern = `\b` + regexp2.Escape(word) + `\b`
		forward = call.Handler == ActionSearchWordForward
		if h.OnPattern != nil {
			h.OnPattern(pattern, forward)
		}
	}
	if pattern == "" {
		return 0, ErrNoPattern
	}

	p := from
	var match buffer.Span
	for i, n := 0, call.Count(); i < n; i++ {
		var err error
		match, err = find(h.buf, pattern, p, forward)
		if err != nil {
			return 0, err
		}
		p = match.Start
	}
	return applyOffset(h.buf, match, call.Args.Text("offset")), nil
}

func find(b *buffer.Memory, pattern string, from int, forward bool) (buffer.Span, error) {
	var (
		s     buffer.Span
		found bool
		err   error
	)
	if forward {
		s, found, err = b.FindForward(pattern, from+1)
		if err == nil && !found {
			s, found, err = b.FindForward(pattern, 0)
		}
	} else {
		s, found, err = b.FindBackward(pattern, 0, from)
		if err == nil && !found {
			s, found, err = b.FindBackward(pattern, from, b.Size()+1)
		}
	}
	if err != nil {
		return buffer.Span{}, err
	}
	if !found {
		return buffer.Span{}, fmt.Errorf("%w: %s", ErrNotFound, pattern)
	}
	return s, nil
}

// applyOffset handles the e, s and b search offsets ("e-1", "s+2").
func applyOffset(b *buffer.Memory, m buffer.Span, offset string) int {
	if offset == "" {
		return m.Start
	}
	base := m.Start
	rest := offset
	switch offset[0] {
	case 'e':
		base = max(m.End-1, m.Start)
		rest = offset[1:]
	case 's', 'b':
		rest = offset[1:]
	default:
		// A bare number moves lines.
		n, err := strconv.Atoi(strings.TrimPrefix(offset, "+"))
		if err != nil {
			return m.Start
		}
		return b.LineAtRow(b.RowOf(m.Start) + n).Start
	}
	if rest == "" {
		return base
	}
	n, err := strconv.Atoi(strings.TrimPrefix(rest, "+"))
	if err != nil {
		return base
	}
	return max(0, min(base+n, b.Size()))
}

func wordAt(b *buffer.Memory, p int) string {
	line := b.LineAt(p)
	text := b.Substr(line)
	col := p - line.Start
	isWord := func(r rune) bool { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) }
	start := strings.LastIndexFunc(text[:col], func(r rune) bool { return !isWord(r) }) + 1
	end := strings.IndexFunc(text[start:], func(r rune) bool { return !isWord(r) })
	if end < 0 {
		return text[start:]
	}
	return text[start : start+end]
}
