package editor

import (
	"errors"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/engine/buffer"
)

// Undo errors.
var (
	ErrNothingToUndo = errors.New("editor: already at oldest change")
	ErrNothingToRedo = errors.New("editor: already at newest change")
)

type snapshot struct {
	text     string
	caret    int
	revision int
}

// History keeps whole-text snapshots of a buffer for undo and redo. The
// changes between two checkpoints form one undo step, so the caller
// checkpoints once per completed command rather than once per edit.
type History struct {
	buf   *buffer.Memory
	limit int
	cur   snapshot
	undo  []snapshot
	redo  []snapshot
}

// NewHistory creates a history for buf keeping at most limit steps. A limit
// of zero or less keeps 1000.
func NewHistory(buf *buffer.Memory, limit int) *History {
	if limit <= 0 {
		limit = 1000
	}
	h := &History{buf: buf, limit: limit}
	h.cur = h.take()
	return h
}

func (h *History) take() snapshot {
	return snapshot{text: h.buf.Text(), caret: h.buf.Cursor(), revision: h.buf.Revision()}
}

// Checkpoint closes the current undo step if the buffer changed since the
// last checkpoint.
func (h *History) Checkpoint() {
	if h.buf.Revision() == h.cur.revision {
		h.cur.caret = h.buf.Cursor()
		return
	}
	h.undo = append(h.undo, h.cur)
	if len(h.undo) > h.limit {
		h.undo = h.undo[len(h.undo)-h.limit:]
	}
	h.redo = nil
	h.cur = h.take()
}

// Undo reverts count steps.
func (h *History) Undo(count int) error {
	h.Checkpoint()
	return h.step(count, &h.undo, &h.redo, ErrNothingToUndo)
}

// Redo reapplies count undone steps.
func (h *History) Redo(count int) error {
	h.Checkpoint()
	return h.step(count, &h.redo, &h.undo, ErrNothingToRedo)
}

// Len returns the number of undo and redo steps held.
func (h *History) Len() (undo, redo int) {
	return len(h.undo), len(h.redo)
}

func (h *History) step(count int, from, to *[]snapshot, empty error) error {
	if len(*from) == 0 {
		return empty
	}
	for n := 0; n < count && len(*from) > 0; n++ {
		last := len(*from) - 1
		s := (*from)[last]
		*from = (*from)[:last]
		*to = append(*to, h.cur)
		if _, err := h.buf.Replace(buffer.Span{Start: 0, End: h.buf.Size()}, s.text); err != nil {
			return err
		}
		h.buf.SetSelections(buffer.Point(s.caret))
		h.cur = h.take()
	}
	return nil
}

func (h *Handler) undo(call dispatcher.Call) error {
	if err := h.hist.Undo(call.Count()); err != nil {
		return err
	}
	h.clampNormal()
	return nil
}

func (h *Handler) redo(call dispatcher.Call) error {
	if err := h.hist.Redo(call.Count()); err != nil {
		return err
	}
	h.clampNormal()
	return nil
}
