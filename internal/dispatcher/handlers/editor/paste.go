package editor

import (
	"strings"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/register"
	"github.com/dshills/vimcore/internal/engine/buffer"
)

func (h *Handler) pasteAfter(call dispatcher.Call) error {
	return h.paste(call, true)
}

func (h *Handler) pasteBefore(call dispatcher.Call) error {
	return h.paste(call, false)
}

// paste puts count copies of a register next to the caret. Linewise text
// goes on its own lines and leaves the caret on the first non-blank of the
// first pasted line; charwise text leaves it on the last pasted character.
func (h *Handler) paste(call dispatcher.Call, after bool) error {
	name, _ := call.Args.Rune("register")
	r, ok := h.regs.Get(name)
	if !ok || r.Text == "" {
		return ErrEmptyRegister
	}
	text := strings.Repeat(r.Text, call.Count())
	if call.Args.Text("visual") != "" {
		return h.pasteOver(call, r, text)
	}

	p := h.buf.Cursor()
	row := h.buf.RowOf(p)
	if r.Linewise {
		at := h.buf.LineAtRow(row).Start
		skip := 0
		if after {
			at = h.buf.FullLineAtRow(row).End
			if at == h.buf.Size() && !strings.HasSuffix(h.buf.Text(), "\n") {
				text = "\n" + strings.TrimSuffix(text, "\n")
				skip = 1
			}
		}
		ins, err := h.buf.Insert(at, text)
		if err != nil {
			return err
		}
		h.buf.SetSelections(buffer.Point(h.firstNonBlank(h.buf.RowOf(ins.Start + skip))))
		return nil
	}

	at := p
	if line := h.buf.LineAt(p); after && p < line.End {
		at = nextChar(h.buf.Text(), p)
	}
	ins, err := h.buf.Insert(at, text)
	if err != nil {
		return err
	}
	caret := prevChar(h.buf.Text(), ins.End, ins.Start)
	if strings.Contains(text, "\n") {
		caret = ins.Start
	}
	h.buf.SetSelections(buffer.Point(caret))
	return nil
}

// pasteOver replaces the visual selection with text. The replaced text goes
// to the unnamed register.
func (h *Handler) pasteOver(call dispatcher.Call, r register.Register, text string) error {
	rng, err := h.ops.Resolve(call)
	if err != nil {
		return err
	}
	old := h.buf.Substr(rng.Span)
	switch {
	case r.Linewise && !rng.Linewise:
		text = "\n" + text
	case !r.Linewise && rng.Linewise:
		text += "\n"
	}
	ins, err := h.buf.Replace(rng.Span, text)
	if err != nil {
		return err
	}
	h.regs.Delete(0, register.Register{Text: old, Linewise: rng.Linewise})
	caret := ins.Start
	if r.Linewise {
		caret = h.firstNonBlank(h.buf.RowOf(ins.Start + len(text) - len(strings.TrimLeft(text, "\n"))))
	}
	h.buf.SetSelections(buffer.Point(caret))
	return nil
}
