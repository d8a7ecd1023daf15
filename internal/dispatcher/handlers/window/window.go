// Package window implements the window.* handlers on top of a Manager that
// owns the window layout.
package window

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/vimcore/internal/dispatcher"
)

// Action names for window operations.
const (
	ActionSplitHorizontal = "window.splitHorizontal" // <C-w>s, :split
	ActionSplitVertical   = "window.splitVertical"   // <C-w>v, :vsplit
	ActionNext            = "window.next"            // <C-w>w
	ActionPrev            = "window.prev"            // <C-w>W
	ActionClose           = "window.close"           // <C-w>c, :close
	ActionOnly            = "window.only"            // <C-w>o, :only
	ActionFocusLeft       = "window.focusLeft"       // <C-w>h
	ActionFocusDown       = "window.focusDown"       // <C-w>j
	ActionFocusUp         = "window.focusUp"         // <C-w>k
	ActionFocusRight      = "window.focusRight"      // <C-w>l
)

// Direction is a focus direction.
type Direction int

const (
	DirLeft Direction = iota
	DirRight
	DirUp
	DirDown
)

// ErrLastWindow is returned when closing the only window.
var ErrLastWindow = errors.New("window: cannot close last window")

// Manager owns the windows.
type Manager interface {
	// Split opens a new window on the current buffer and focuses it.
	Split(vertical bool) error
	// Focus moves to the neighbouring window in dir, if any.
	Focus(dir Direction) error
	// FocusIndex moves to window index.
	FocusIndex(index int) error
	// Close closes the current window.
	Close() error
	// Only closes every window but the current one.
	Only() error
	// Count returns the number of windows.
	Count() int
	// Current returns the index of the current window.
	Current() int
}

// Handler dispatches window.* calls to a Manager.
type Handler struct {
	wm Manager
}

// NewHandler creates a window handler.
func NewHandler(wm Manager) *Handler {
	return &Handler{wm: wm}
}

// Namespace implements dispatcher.Namespace.
func (h *Handler) Namespace() string {
	return "window"
}

// CanHandle implements dispatcher.Namespace.
func (h *Handler) CanHandle(name string) bool {
	switch name {
	case ActionSplitHorizontal, ActionSplitVertical, ActionNext, ActionPrev,
		ActionClose, ActionOnly, ActionFocusLeft, ActionFocusDown, ActionFocusUp, ActionFocusRight:
		return true
	}
	return false
}

// Handle implements dispatcher.Namespace. A count on <C-w>w or <C-w>W
// selects the window by number.
func (h *Handler) Handle(_ context.Context, call dispatcher.Call) error {
	switch call.Handler {
	case ActionSplitHorizontal:
		return h.wm.Split(false)
	case ActionSplitVertical:
		return h.wm.Split(true)
	case ActionNext, ActionPrev:
		if n, ok := call.Args.Int("count"); ok && n > 1 {
			return h.wm.FocusIndex(min(n, h.wm.Count()) - 1)
		}
		step := 1
		if call.Handler == ActionPrev {
			step = -1
		}
		n := h.wm.Count()
		return h.wm.FocusIndex(((h.wm.Current()+step)%n + n) % n)
	case ActionClose:
		if h.wm.Count() <= 1 {
			return ErrLastWindow
		}
		return h.wm.Close()
	case ActionOnly:
		return h.wm.Only()
	case ActionFocusLeft:
		return h.wm.Focus(DirLeft)
	case ActionFocusDown:
		return h.wm.Focus(DirDown)
	case ActionFocusUp:
		return h.wm.Focus(DirUp)
	case ActionFocusRight:
		return h.wm.Focus(DirRight)
	}
	return fmt.Errorf("%w: %s", dispatcher.ErrNoHandler, call.Handler)
}
