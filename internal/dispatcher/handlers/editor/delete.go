package editor

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/rivo/uniseg"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/operator"
	"github.com/dshills/vimcore/internal/engine/buffer"
)

func (h *Handler) deleteRange(s buffer.Span, call dispatcher.Call) error {
	if s.Len() == 0 {
		return nil
	}
	reg, _ := call.Args.Rune("register")
	return h.ops.Apply(operator.ActionDelete, operator.Range{Span: s}, reg)
}

// charsForward is the span of count characters from the caret, within the
// line.
func (h *Handler) charsForward(count int) buffer.Span {
	p := h.buf.Cursor()
	line := h.buf.LineAt(p)
	return buffer.Span{Start: p, End: charsFrom(h.buf.Text(), p, count, line.End)}
}

func (h *Handler) deleteChar(call dispatcher.Call) error {
	if err := h.deleteRange(h.charsForward(call.Count()), call); err != nil {
		return err
	}
	h.clampNormal()
	return nil
}

func (h *Handler) substituteChar(call dispatcher.Call) error {
	return h.deleteRange(h.charsForward(call.Count()), call)
}

func (h *Handler) deleteCharBack(call dispatcher.Call) error {
	p := h.buf.Cursor()
	line := h.buf.LineAt(p)
	text := h.buf.Text()
	from := p
	for n := call.Count(); n > 0 && from > line.Start; n-- {
		from = prevChar(text, from, line.Start)
	}
	return h.deleteRange(buffer.Span{Start: from, End: p}, call)
}

// toLineEnd is the span from the caret to the end of the count'th line.
func (h *Handler) toLineEnd(count int) buffer.Span {
	p := h.buf.Cursor()
	last := min(h.buf.RowOf(p)+count-1, h.buf.LineCount()-1)
	return buffer.Span{Start: p, End: h.buf.LineAtRow(last).End}
}

func (h *Handler) deleteToEnd(call dispatcher.Call) error {
	if err := h.deleteRange(h.toLineEnd(call.Count()), call); err != nil {
		return err
	}
	h.clampNormal()
	return nil
}

func (h *Handler) changeToEnd(call dispatcher.Call) error {
	return h.deleteRange(h.toLineEnd(call.Count()), call)
}

func (h *Handler) changeLine(call dispatcher.Call) error {
	row := h.buf.RowOf(h.buf.Cursor())
	reg, _ := call.Args.Rune("register")
	return h.ops.Apply(operator.ActionChange, h.lines(row, row+call.Count()-1), reg)
}

func (h *Handler) deleteSelection(call dispatcher.Call) error {
	sel := h.buf.CurrentSelections()[0].Normalize()
	sel.End = nextChar(h.buf.Text(), sel.End)
	return h.deleteRange(sel, call)
}

func (h *Handler) yankLine(call dispatcher.Call) error {
	caret := h.buf.Cursor()
	row := h.buf.RowOf(caret)
	reg, _ := call.Args.Rune("register")
	if err := h.ops.Apply(operator.ActionYank, h.lines(row, row+call.Count()-1), reg); err != nil {
		return err
	}
	h.buf.SetSelections(buffer.Point(caret))
	return nil
}

func (h *Handler) joinLines(call dispatcher.Call) error {
	return h.join(call, true)
}

func (h *Handler) joinLinesNoSpace(call dispatcher.Call) error {
	return h.join(call, false)
}

// join joins count lines, at least two, starting at the caret line. In
// visual mode it joins the selected lines. With spaces the leading blanks
// of each joined line collapse to one space.
func (h *Handler) join(call dispatcher.Call, spaces bool) error {
	row := h.buf.RowOf(h.buf.Cursor())
	n := max(call.Count(), 2)
	if call.Args.Text("visual") != "" {
		sel := h.buf.CurrentSelections()[0].Normalize()
		row = h.buf.RowOf(sel.Start)
		n = max(h.buf.RowOf(sel.End)-row+1, 2)
	}
	if row+1 >= h.buf.LineCount() {
		return ErrNoNextLine
	}
	at := 0
	for i := 1; i < n && row+1 < h.buf.LineCount(); i++ {
		cur := h.buf.LineAtRow(row)
		next := h.buf.LineAtRow(row + 1)
		gap := buffer.Span{Start: cur.End, End: next.Start}
		sep := ""
		if spaces {
			body := h.buf.Substr(next)
			ws := leadingSpace(body)
			gap.End += len(ws)
			rest := body[len(ws):]
			prev := h.buf.Substr(cur)
			if rest != "" && !strings.HasPrefix(rest, ")") && prev != "" && !isBlank(prev[len(prev)-1]) {
				sep = " "
			}
		}
		if _, err := h.buf.Replace(gap, sep); err != nil {
			return err
		}
		at = cur.End
	}
	h.buf.SetSelections(buffer.Point(at))
	return nil
}

// replaceChar replaces count characters under the caret, or every selected
// character in visual mode, with the char argument.
func (h *Handler) replaceChar(call dispatcher.Call) error {
	ch, ok := call.Args.Rune("char")
	if !ok {
		return fmt.Errorf("%w: %s", dispatcher.ErrInvalidCall, call)
	}
	if call.Args.Text("visual") != "" {
		r, err := h.ops.Resolve(call)
		if err != nil {
			return err
		}
		if _, err := h.buf.Replace(r.Span, fillGraphemes(h.buf.Substr(r.Span), ch)); err != nil {
			return err
		}
		h.buf.SetSelections(buffer.Point(r.Span.Start))
		return nil
	}

	p := h.buf.Cursor()
	line := h.buf.LineAt(p)
	text := h.buf.Text()
	end := p
	for n := 0; n < call.Count(); n++ {
		if end >= line.End {
			return ErrShortLine
		}
		end = nextChar(text, end)
	}
	span := buffer.Span{Start: p, End: end}
	if ch == '\r' || ch == '\n' {
		ins, err := h.buf.Replace(span, "\n")
		if err != nil {
			return err
		}
		h.buf.SetSelections(buffer.Point(ins.End))
		return nil
	}
	ins, err := h.buf.Replace(span, strings.Repeat(string(ch), call.Count()))
	if err != nil {
		return err
	}
	h.buf.SetSelections(buffer.Point(ins.End - len(string(ch))))
	return nil
}

// fillGraphemes replaces every character of text but newlines with ch.
func fillGraphemes(text string, ch rune) string {
	var sb strings.Builder
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		if g.Str() == "\n" {
			sb.WriteByte('\n')
			continue
		}
		sb.WriteRune(ch)
	}
	return sb.String()
}

func (h *Handler) toggleCaseChar(call dispatcher.Call) error {
	span := h.charsForward(call.Count())
	if span.Len() == 0 {
		return nil
	}
	toggled := strings.Map(func(r rune) rune {
		if unicode.IsUpper(r) {
			return unicode.ToLower(r)
		}
		return unicode.ToUpper(r)
	}, h.buf.Substr(span))
	ins, err := h.buf.Replace(span, toggled)
	if err != nil {
		return err
	}
	h.buf.SetSelections(buffer.Point(ins.End))
	h.clampNormal()
	return nil
}

func (h *Handler) increment(call dispatcher.Call) error {
	return h.addToNumber(call.Count())
}

func (h *Handler) decrement(call dispatcher.Call) error {
	return h.addToNumber(-call.Count())
}

// addToNumber adds delta to the decimal number under or after the caret
// and leaves the caret on its last digit.
func (h *Handler) addToNumber(delta int) error {
	p := h.buf.Cursor()
	line := h.buf.LineAt(p)
	text := h.buf.Substr(line)
	start, end, ok := numberAt(text, p-line.Start)
	if !ok {
		return ErrNoNumber
	}
	n, err := strconv.Atoi(text[start:end])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoNumber, err)
	}
	ins, err := h.buf.Replace(buffer.Span{Start: line.Start + start, End: line.Start + end}, strconv.Itoa(n+delta))
	if err != nil {
		return err
	}
	h.buf.SetSelections(buffer.Point(ins.End - 1))
	return nil
}

func numberAt(text string, col int) (start, end int, ok bool) {
	i := min(col, len(text))
	if i < len(text) && isDigit(text[i]) {
		for i > 0 && isDigit(text[i-1]) {
			i--
		}
	} else {
		for i < len(text) && !isDigit(text[i]) {
			i++
		}
		if i == len(text) {
			return 0, 0, false
		}
	}
	end = i
	for end < len(text) && isDigit(text[end]) {
		end++
	}
	if i > 0 && text[i-1] == '-' {
		i--
	}
	return i, end, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
