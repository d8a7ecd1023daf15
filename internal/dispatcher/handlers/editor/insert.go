package editor

import (
	"unicode"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/operator"
	"github.com/dshills/vimcore/internal/engine/buffer"
)

func (h *Handler) insert(text string) error {
	return h.each(func(s buffer.Span) (buffer.Span, error) {
		ins, err := h.buf.Insert(s.End, text)
		if err != nil {
			return s, err
		}
		return buffer.Point(ins.End), nil
	})
}

func (h *Handler) insertText(call dispatcher.Call) error {
	return h.insert(call.Args.Text("text"))
}

func (h *Handler) insertNewline(dispatcher.Call) error {
	return h.insert("\n")
}

func (h *Handler) insertTab(dispatcher.Call) error {
	return h.insert("\t")
}

// replaceText overwrites the character under each caret. At the end of a
// line it inserts.
func (h *Handler) replaceText(call dispatcher.Call) error {
	text := call.Args.Text("text")
	return h.each(func(s buffer.Span) (buffer.Span, error) {
		p := s.End
		over := buffer.Point(p)
		if line := h.buf.LineAt(p); p < line.End && text != "\n" {
			over.End = nextChar(h.buf.Text(), p)
		}
		ins, err := h.buf.Replace(over, text)
		if err != nil {
			return s, err
		}
		return buffer.Point(ins.End), nil
	})
}

func (h *Handler) replaceSelection(call dispatcher.Call) error {
	text := call.Args.Text("text")
	return h.each(func(s buffer.Span) (buffer.Span, error) {
		n := s.Normalize()
		n.End = nextChar(h.buf.Text(), n.End)
		ins, err := h.buf.Replace(n, text)
		if err != nil {
			return s, err
		}
		return buffer.Point(ins.End), nil
	})
}

// backspace deletes the character before each caret, joining with the
// previous line at a line start.
func (h *Handler) backspace(dispatcher.Call) error {
	return h.each(func(s buffer.Span) (buffer.Span, error) {
		p := s.End
		if p == 0 {
			return s, nil
		}
		from := p - 1
		if line := h.buf.LineAt(p); p > line.Start {
			from = prevChar(h.buf.Text(), p, line.Start)
		}
		if err := h.buf.Delete(buffer.Span{Start: from, End: p}); err != nil {
			return s, err
		}
		return buffer.Point(from), nil
	})
}

// deleteWordBack deletes blanks and then one word before each caret.
func (h *Handler) deleteWordBack(dispatcher.Call) error {
	return h.each(func(s buffer.Span) (buffer.Span, error) {
		p := s.End
		line := h.buf.LineAt(p)
		from := p
		switch {
		case p == 0:
			return s, nil
		case p == line.Start:
			from = p - 1
		default:
			text := h.buf.Text()
			for from > line.Start && isBlank(text[from-1]) {
				from--
			}
			if from > line.Start {
				word := isWord(rune(text[from-1]))
				for from > line.Start && !isBlank(text[from-1]) && isWord(rune(text[from-1])) == word {
					from--
				}
			}
		}
		if err := h.buf.Delete(buffer.Span{Start: from, End: p}); err != nil {
			return s, err
		}
		return buffer.Point(from), nil
	})
}

func (h *Handler) deleteToLineStart(dispatcher.Call) error {
	return h.each(func(s buffer.Span) (buffer.Span, error) {
		line := h.buf.LineAt(s.End)
		if err := h.buf.Delete(buffer.Span{Start: line.Start, End: s.End}); err != nil {
			return s, err
		}
		return buffer.Point(line.Start), nil
	})
}

func (h *Handler) pasteRegister(call dispatcher.Call) error {
	name, _ := call.Args.Rune("register")
	r, ok := h.regs.Get(name)
	if !ok || r.Text == "" {
		return ErrEmptyRegister
	}
	return h.insert(r.Text)
}

func (h *Handler) indent(dispatcher.Call) error {
	return h.shiftLine(operator.ActionIndent)
}

func (h *Handler) outdent(dispatcher.Call) error {
	return h.shiftLine(operator.ActionOutdent)
}

// shiftLine shifts the caret line and keeps the caret on the same text.
func (h *Handler) shiftLine(action string) error {
	p := h.buf.Cursor()
	row := h.buf.RowOf(p)
	fromEnd := h.buf.LineAtRow(row).End - p
	if err := h.ops.Apply(action, h.lines(row, row), 0); err != nil {
		return err
	}
	line := h.buf.LineAtRow(row)
	h.buf.SetSelections(buffer.Point(max(line.Start, line.End-fromEnd)))
	return nil
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t'
}

func isWord(r rune) bool {
	return r == '_' || r >= 0x80 || unicode.IsLetter(r) || unicode.IsDigit(r)
}
