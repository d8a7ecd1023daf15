// Package view implements the view.* scroll handlers over a row viewport
// and resolves the screen-relative motions H, M and L against it.
package view

import (
	"context"
	"fmt"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/engine/buffer"
)

// Action names for view operations.
const (
	ActionScrollLineDown = "view.scrollLineDown" // <C-e>
	ActionScrollLineUp   = "view.scrollLineUp"   // <C-y>
	ActionPageDown       = "view.pageDown"       // <C-f>
	ActionPageUp         = "view.pageUp"         // <C-b>
	ActionHalfPageDown   = "view.halfPageDown"   // <C-d>
	ActionHalfPageUp     = "view.halfPageUp"     // <C-u>
	ActionCenter         = "view.center"         // zz
	ActionTop            = "view.top"            // zt
	ActionBottom         = "view.bottom"         // zb
	ActionRedraw         = "view.redraw"         // <C-l>
)

// Screen motions rewritten into cursor.gotoLine.
const (
	MotionScreenTop    = "cursor.screenTop"    // H
	MotionScreenMiddle = "cursor.screenMiddle" // M
	MotionScreenBottom = "cursor.screenBottom" // L
)

// Viewport is the range of buffer rows a window shows.
type Viewport struct {
	Top    int
	Height int
}

// Bottom returns the last row the viewport can show.
func (v *Viewport) Bottom() int {
	return v.Top + max(v.Height, 1) - 1
}

// Reveal scrolls the least amount that makes row visible.
func (v *Viewport) Reveal(row int) {
	switch {
	case row < v.Top:
		v.Top = row
	case row > v.Bottom():
		v.Top = row - max(v.Height, 1) + 1
	}
}

// Handler scrolls one window's viewport.
type Handler struct {
	buf *buffer.Memory
	vp  *Viewport
}

// NewHandler creates a view handler for buf shown through vp.
func NewHandler(buf *buffer.Memory, vp *Viewport) *Handler {
	return &Handler{buf: buf, vp: vp}
}

// Namespace implements dispatcher.Namespace.
func (h *Handler) Namespace() string {
	return "view"
}

// CanHandle implements dispatcher.Namespace.
func (h *Handler) CanHandle(name string) bool {
	switch name {
	case ActionScrollLineDown, ActionScrollLineUp, ActionPageDown, ActionPageUp,
		ActionHalfPageDown, ActionHalfPageUp, ActionCenter, ActionTop, ActionBottom, ActionRedraw:
		return true
	}
	return false
}

// Handle implements dispatcher.Namespace.
func (h *Handler) Handle(_ context.Context, call dispatcher.Call) error {
	n := call.Count()
	page := max(h.vp.Height-2, 1)
	half := max(h.vp.Height/2, 1)
	row := h.buf.RowOf(h.buf.Cursor())

	switch call.Handler {
	case ActionScrollLineDown:
		h.scroll(n)
	case ActionScrollLineUp:
		h.scroll(-n)
	case ActionPageDown:
		h.scroll(n * page)
	case ActionPageUp:
		h.scroll(-n * page)
	case ActionHalfPageDown:
		h.scroll(half)
		h.moveTo(row + half)
		return nil
	case ActionHalfPageUp:
		h.scroll(-half)
		h.moveTo(row - half)
		return nil
	case ActionCenter:
		h.setTop(row - h.vp.Height/2)
	case ActionTop:
		h.setTop(row)
	case ActionBottom:
		h.setTop(row - h.vp.Height + 1)
	case ActionRedraw:
	default:
		return fmt.Errorf("%w: %s", dispatcher.ErrNoHandler, call.Handler)
	}
	h.keepCaretVisible()
	return nil
}

func (h *Handler) setTop(top int) {
	h.vp.Top = max(0, min(top, h.buf.LineCount()-1))
}

func (h *Handler) scroll(delta int) {
	h.setTop(h.vp.Top + delta)
}

func (h *Handler) moveTo(row int) {
	row = max(0, min(row, h.buf.LineCount()-1))
	h.buf.SetSelections(buffer.Point(firstNonBlank(h.buf, row)))
	h.vp.Reveal(row)
}

// keepCaretVisible moves the caret onto the nearest visible row after a
// scroll.
func (h *Handler) keepCaretVisible() {
	row := h.buf.RowOf(h.buf.Cursor())
	switch {
	case row < h.vp.Top:
		h.buf.SetSelections(buffer.Point(firstNonBlank(h.buf, h.vp.Top)))
	case row > h.vp.Bottom():
		h.buf.SetSelections(buffer.Point(firstNonBlank(h.buf, min(h.vp.Bottom(), h.buf.LineCount()-1))))
	}
}

// Rewrite is a dispatcher.PreHook that turns H, M and L into line jumps
// within the viewport, including when they are an operator's motion.
func (h *Handler) Rewrite(_ context.Context, call *dispatcher.Call) bool {
	*call = h.rewrite(*call)
	return true
}

func (h *Handler) rewrite(call dispatcher.Call) dispatcher.Call {
	if m, ok := call.Motion(); ok {
		return call.With("motion", h.rewrite(m))
	}
	last := min(h.vp.Bottom(), h.buf.LineCount()-1)
	var row int
	switch call.Handler {
	case MotionScreenTop:
		row = min(h.vp.Top+call.Count()-1, last)
	case MotionScreenMiddle:
		row = h.vp.Top + (last-h.vp.Top)/2
	case MotionScreenBottom:
		row = max(last-call.Count()+1, h.vp.Top)
	default:
		return call
	}
	out := dispatcher.NewCall("cursor.gotoLine")
	for k, v := range call.Args {
		out = out.With(k, v)
	}
	return out.With("count", row+1)
}

func firstNonBlank(b *buffer.Memory, row int) int {
	line := b.LineAtRow(row)
	text := b.Substr(line)
	for i, r := range text {
		if r != ' ' && r != '\t' {
			return line.Start + i
		}
	}
	return line.End
}
