package cursor

import (
	"context"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/engine/buffer"
)

// Handler moves every selection of a buffer for cursor.* calls. With the
// "extend" argument the selection head moves and the anchor stays.
type Handler struct {
	buf *buffer.Memory
}

// NewHandler creates a cursor handler for buf.
func NewHandler(buf *buffer.Memory) *Handler {
	return &Handler{buf: buf}
}

// Namespace implements dispatcher.Namespace.
func (h *Handler) Namespace() string {
	return "cursor"
}

// CanHandle implements dispatcher.Namespace.
func (h *Handler) CanHandle(name string) bool {
	return Handles(name)
}

// Handle implements dispatcher.Namespace.
func (h *Handler) Handle(_ context.Context, call dispatcher.Call) error {
	sels := h.buf.CurrentSelections()
	extend := call.Args.Bool("extend")
	from := sels[0].End
	for i, s := range sels {
		p, err := Target(h.buf, call, s.End)
		if err != nil {
			return err
		}
		if extend {
			sels[i] = buffer.Span{Start: s.Start, End: p}
		} else {
			sels[i] = buffer.Point(p)
		}
	}
	if jumps[call.Handler] {
		h.buf.SetMark(MarkPrevious, buffer.MarkTarget{Span: buffer.Point(from)})
	}
	h.buf.SetSelections(sels...)
	return nil
}
