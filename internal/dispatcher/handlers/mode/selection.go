package mode

import (
	"context"
	"fmt"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/engine/buffer"
)

// Action names for visual selection edits.
const (
	ActionSwapEnds    = "selection.swapEnds"    // o
	ActionSwapCorners = "selection.swapCorners" // O
)

// SelectionHandler moves the caret to the other end of visual selections.
type SelectionHandler struct {
	buf *buffer.Memory
}

// NewSelectionHandler creates a selection.* handler for buf.
func NewSelectionHandler(buf *buffer.Memory) *SelectionHandler {
	return &SelectionHandler{buf: buf}
}

// Namespace implements dispatcher.Namespace.
func (h *SelectionHandler) Namespace() string {
	return "selection"
}

// CanHandle implements dispatcher.Namespace.
func (h *SelectionHandler) CanHandle(name string) bool {
	return name == ActionSwapEnds || name == ActionSwapCorners
}

// Handle implements dispatcher.Namespace. In a block selection O swaps the
// columns of the two corners and keeps their rows; elsewhere it acts like o.
func (h *SelectionHandler) Handle(_ context.Context, call dispatcher.Call) error {
	if !h.CanHandle(call.Handler) {
		return fmt.Errorf("%w: %s", dispatcher.ErrNoHandler, call.Handler)
	}
	block := call.Handler == ActionSwapCorners && call.Args.Text("visual") == "visual-block"
	sels := h.buf.CurrentSelections()
	for i, s := range sels {
		if !block {
			sels[i] = buffer.Span{Start: s.End, End: s.Start}
			continue
		}
		a, b := h.buf.LineAt(s.Start), h.buf.LineAt(s.End)
		sels[i] = buffer.Span{
			Start: min(a.Start+(s.End-b.Start), a.End),
			End:   min(b.Start+(s.Start-a.Start), b.End),
		}
	}
	h.buf.SetSelections(sels...)
	return nil
}
