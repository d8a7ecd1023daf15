package excmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/cursor"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/editor"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/operator"
	"github.com/dshills/vimcore/internal/engine/buffer"
)

func (h *Handler) gotoLine(_ context.Context, call dispatcher.Call) error {
	last, _ := call.Args.Int("last")
	h.buf.SetMark(cursor.MarkPrevious, buffer.MarkTarget{Span: buffer.Point(h.buf.Cursor())})
	h.caretTo(last)
	return nil
}

func (h *Handler) delete(_ context.Context, call dispatcher.Call) error {
	first, last := h.rows(call)
	return h.ops.Apply(operator.ActionDelete, h.lines(first, last), registerName(call))
}

// yank leaves the caret where it was.
func (h *Handler) yank(_ context.Context, call dispatcher.Call) error {
	first, last := h.rows(call)
	sels := h.buf.CurrentSelections()
	if err := h.ops.Apply(operator.ActionYank, h.lines(first, last), registerName(call)); err != nil {
		return err
	}
	h.buf.SetSelections(sels...)
	return nil
}

// put always puts linewise, below the line or above it with !.
func (h *Handler) put(_ context.Context, call dispatcher.Call) error {
	r, ok := h.regs.Get(registerName(call))
	if !ok || r.Text == "" {
		return editor.ErrEmptyRegister
	}
	after, _ := call.Args.Int("last")
	if call.Args.Bool("above") {
		after--
	}
	after = max(-1, min(after, h.buf.LineCount()-1))
	_, last, err := h.insertLines(after, r.Text)
	if err != nil {
		return err
	}
	h.caretTo(last)
	return nil
}

func (h *Handler) copyLines(_ context.Context, call dispatcher.Call) error {
	first, last := h.rows(call)
	dest, _ := call.Args.Int("dest")
	text := h.buf.Substr(h.lines(first, last).Span)
	_, end, err := h.insertLines(dest, text)
	if err != nil {
		return err
	}
	h.caretTo(end)
	return nil
}

func (h *Handler) moveLines(_ context.Context, call dispatcher.Call) error {
	first, last := h.rows(call)
	dest, _ := call.Args.Int("dest")
	if dest >= first && dest < last {
		return ErrMoveIntoItself
	}
	if dest == first-1 || dest == last {
		h.caretTo(last)
		return nil
	}

	s := h.lines(first, last).Span
	text := h.buf.Substr(s)
	if s.End == h.buf.Size() && s.Start > 0 && !strings.HasSuffix(text, "\n") {
		s.Start--
	}
	if err := h.buf.Delete(s); err != nil {
		return err
	}
	if dest > last {
		dest -= last - first + 1
	}
	_, end, err := h.insertLines(dest, text)
	if err != nil {
		return err
	}
	h.caretTo(end)
	return nil
}

// insertLines inserts text as whole lines below row after, or at the top
// for -1, and returns the rows it now occupies.
func (h *Handler) insertLines(after int, text string) (first, last int, err error) {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	n := strings.Count(text, "\n")
	at := 0
	if after >= 0 {
		at = h.buf.FullLineAtRow(after).End
		if at == h.buf.Size() && !strings.HasSuffix(h.buf.Text(), "\n") {
			text = "\n" + strings.TrimSuffix(text, "\n")
		}
	}
	if _, err := h.buf.Insert(at, text); err != nil {
		return 0, 0, err
	}
	return after + 1, after + n, nil
}

// join joins the range, or with a count that many lines from the last
// line of the range. A single line joins with the next one.
func (h *Handler) join(ctx context.Context, call dispatcher.Call) error {
	first, _ := call.Args.Int("first")
	last, _ := call.Args.Int("last")
	n := last - first + 1
	if c, ok := call.Args.Int("count"); ok {
		first, n = last, c
	}
	h.caretTo(first)

	name := editor.ActionJoinLines
	if call.Args.Bool("forced") {
		name = editor.ActionJoinNoSpace
	}
	err := h.edit.Handle(ctx, dispatcher.NewCall(name).With("count", max(n, 2)))
	if errors.Is(err, editor.ErrNoNextLine) {
		return nil
	}
	return err
}

func (h *Handler) shiftRight(_ context.Context, call dispatcher.Call) error {
	return h.shift(call, operator.ActionIndent)
}

func (h *Handler) shiftLeft(_ context.Context, call dispatcher.Call) error {
	return h.shift(call, operator.ActionOutdent)
}

// shift shifts the lines once per > or < typed.
func (h *Handler) shift(call dispatcher.Call, name string) error {
	first, last := h.rows(call)
	amount, _ := call.Args.Int("amount")
	for i, n := 0, max(amount, 1); i < n; i++ {
		if err := h.ops.Apply(name, h.lines(first, last), 0); err != nil {
			return err
		}
	}
	h.caretTo(last)
	return nil
}

func (h *Handler) undo(ctx context.Context, call dispatcher.Call) error {
	name := editor.ActionUndo
	if call.Handler == ActionRedo {
		name = editor.ActionRedo
	}
	if !h.edit.CanHandle(name) {
		return fmt.Errorf("%w: %s", dispatcher.ErrNoHandler, call.Handler)
	}
	return h.edit.Handle(ctx, dispatcher.NewCall(name))
}
