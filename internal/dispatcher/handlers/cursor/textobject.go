package cursor

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/engine/buffer"
)

type objectFunc func(b *buffer.Memory, at int, count int) (buffer.Span, bool)

var objects = map[string]objectFunc{
	"select.innerWord":         wordObject(false, false),
	"select.aroundWord":        wordObject(false, true),
	"select.innerWORD":         wordObject(true, false),
	"select.aroundWORD":        wordObject(true, true),
	"select.innerParagraph":    paragraphObject(false),
	"select.aroundParagraph":   paragraphObject(true),
	"select.innerParen":        pairObject('(', ')', false),
	"select.aroundParen":       pairObject('(', ')', true),
	"select.innerBracket":      pairObject('[', ']', false),
	"select.aroundBracket":     pairObject('[', ']', true),
	"select.innerBrace":        pairObject('{', '}', false),
	"select.aroundBrace":       pairObject('{', '}', true),
	"select.innerAngle":        pairObject('<', '>', false),
	"select.aroundAngle":       pairObject('<', '>', true),
	"select.innerDoubleQuote":  quoteObject('"', false),
	"select.aroundDoubleQuote": quoteObject('"', true),
	"select.innerSingleQuote":  quoteObject('\'', false),
	"select.aroundSingleQuote": quoteObject('\'', true),
	"select.innerBacktick":     quoteObject('`', false),
	"select.aroundBacktick":    quoteObject('`', true),
}

// Object returns the span of the select.* text object call around at.
func Object(b *buffer.Memory, call dispatcher.Call, at int) (buffer.Span, error) {
	fn, ok := objects[call.Handler]
	if !ok {
		return buffer.Span{}, fmt.Errorf("%w: %s", ErrUnknownMove, call.Handler)
	}
	s, ok := fn(b, at, call.Count())
	if !ok {
		return buffer.Span{}, ErrNoTarget
	}
	return s, nil
}

// SelectHandler selects text objects in visual mode.
type SelectHandler struct {
	buf *buffer.Memory
}

// NewSelectHandler creates a select.* handler for buf.
func NewSelectHandler(buf *buffer.Memory) *SelectHandler {
	return &SelectHandler{buf: buf}
}

// Namespace implements dispatcher.Namespace.
func (h *SelectHandler) Namespace() string {
	return "select"
}

// CanHandle implements dispatcher.Namespace.
func (h *SelectHandler) CanHandle(name string) bool {
	_, ok := objects[name]
	return ok
}

// Handle implements dispatcher.Namespace. The selection ends on the last
// character of the object.
func (h *SelectHandler) Handle(_ context.Context, call dispatcher.Call) error {
	sels := h.buf.CurrentSelections()
	for i, s := range sels {
		obj, err := Object(h.buf, call, s.End)
		if err != nil {
			return err
		}
		end := obj.End
		if end > obj.Start {
			end = prevRune(h.buf.Text(), end, obj.Start)
		}
		sels[i] = buffer.Span{Start: obj.Start, End: end}
	}
	h.buf.SetSelections(sels...)
	return nil
}

func wordObject(big, around bool) objectFunc {
	return func(b *buffer.Memory, at, count int) (buffer.Span, bool) {
		text := b.Text()
		line := b.LineAt(at)
		if at >= line.End && line.End > line.Start {
			at = prevRune(text, line.End, line.Start)
		}
		r, _ := runeAt(text, at)
		cls := classOf(r, big)
		start := at
		for start > line.Start {
			pr, size := runeBefore(text, start)
			if classOf(pr, big) != cls {
				break
			}
			start -= size
		}
		end := at
		for n := 0; n < count; n++ {
			if n > 0 {
				r, _ = runeAt(text, end)
				cls = classOf(r, big)
			}
			for end < line.End {
				nr, size := runeAt(text, end)
				if classOf(nr, big) != cls {
					break
				}
				end += size
			}
		}
		if around && cls != classSpace {
			trail := end
			for trail < line.End {
				nr, size := runeAt(text, trail)
				if !unicode.IsSpace(nr) {
					break
				}
				trail += size
			}
			if trail > end {
				end = trail
			} else {
				for start > line.Start {
					pr, size := runeBefore(text, start)
					if !unicode.IsSpace(pr) {
						break
					}
					start -= size
				}
			}
		}
		return buffer.Span{Start: start, End: end}, end > start
	}
}

func paragraphObject(around bool) objectFunc {
	return func(b *buffer.Memory, at, count int) (buffer.Span, bool) {
		blank := func(r int) bool { return strings.TrimSpace(b.LineText(r)) == "" }
		row := b.RowOf(at)
		last := b.LineCount() - 1
		kind := blank(row)
		first := row
		for first > 0 && blank(first-1) == kind {
			first--
		}
		end := row
		for n := 0; n < count; n++ {
			if n > 0 {
				if end >= last {
					break
				}
				end++
				kind = blank(end)
			}
			for end < last && blank(end+1) == kind {
				end++
			}
		}
		if around && end < last {
			next := blank(end + 1)
			for end < last && blank(end+1) == next {
				end++
			}
		}
		return buffer.Span{Start: b.LineAtRow(first).Start, End: b.FullLineAtRow(end).End}, true
	}
}

// pairObject finds the innermost open/close pair enclosing at.
func pairObject(open, close rune, around bool) objectFunc {
	return func(b *buffer.Memory, at, count int) (buffer.Span, bool) {
		text := b.Text()
		start := -1
		p := at
		if r, _ := runeAt(text, p); r == open {
			start = p
			count--
		}
		depth := 0
		for count > 0 && p > 0 {
			r, size := runeBefore(text, p)
			p -= size
			switch r {
			case close:
				depth++
			case open:
				if depth == 0 {
					start = p
					count--
				} else {
					depth--
				}
			}
		}
		if start < 0 || count > 0 {
			return buffer.Span{}, false
		}
		depth = 0
		for q := start; q < len(text); {
			r, size := runeAt(text, q)
			switch r {
			case open:
				depth++
			case close:
				depth--
				if depth == 0 {
					if around {
						return buffer.Span{Start: start, End: q + size}, true
					}
					_, osize := runeAt(text, start)
					return buffer.Span{Start: start + osize, End: q}, true
				}
			}
			q += size
		}
		return buffer.Span{}, false
	}
}

// quoteObject finds the quoted string on the line around or after at.
func quoteObject(quote rune, around bool) objectFunc {
	return func(b *buffer.Memory, at, _ int) (buffer.Span, bool) {
		line := b.LineAt(at)
		text := b.Substr(line)
		col := at - line.Start
		var quotes []int
		for i, r := range text {
			if r == quote && (i == 0 || text[i-1] != '\\') {
				quotes = append(quotes, i)
			}
		}
		for i := 0; i+1 < len(quotes); i += 2 {
			open, close := quotes[i], quotes[i+1]
			if col > close {
				continue
			}
			if around {
				end := close + 1
				for end < len(text) && (text[end] == ' ' || text[end] == '\t') {
					end++
				}
				return buffer.Span{Start: line.Start + open, End: line.Start + end}, true
			}
			return buffer.Span{Start: line.Start + open + 1, End: line.Start + close}, true
		}
		return buffer.Span{}, false
	}
}
