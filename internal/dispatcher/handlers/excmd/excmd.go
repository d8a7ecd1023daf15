// Package excmd implements the ex.* handlers that edit or inspect the
// buffer: the line commands, :substitute, :global and the listings.
//
// Calls carry the resolved range as the rows "first" and "last" (zero
// based, -1 for the line before the first) next to the parsed command
// parameters. A :copy or :move destination arrives resolved as "dest".
package excmd

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/editor"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/operator"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/register"
	"github.com/dshills/vimcore/internal/engine/buffer"
	"github.com/dshills/vimcore/internal/ex"
)

// Action names.
const (
	ActionGotoLine   = "ex.gotoLine" // :5
	ActionDelete     = "ex.delete"
	ActionYank       = "ex.yank"
	ActionPut        = "ex.put"
	ActionCopy       = "ex.copy"
	ActionMove       = "ex.move"
	ActionJoin       = "ex.join"
	ActionShiftRight = "ex.shiftRight"
	ActionShiftLeft  = "ex.shiftLeft"
	ActionSubstitute = "ex.substitute"
	ActionGlobal     = "ex.global"
	ActionNormal     = "ex.normal"
	ActionPrint      = "ex.print"
	ActionNumber     = "ex.number"
	ActionList       = "ex.list"
	ActionLineNumber = "ex.lineNumber"
	ActionMark       = "ex.mark"
	ActionMarks      = "ex.marks"
	ActionRegisters  = "ex.registers"
	ActionUndo       = "ex.undo"
	ActionRedo       = "ex.redo"
)

// Errors.
var (
	ErrMoveIntoItself = errors.New("cannot move a range of lines into itself")
	ErrNoMarks        = errors.New("no marks set")
	ErrConfirm        = errors.New("the c flag of :substitute is not supported")
)

// Runner executes what :global and :normal hand back to the host.
type Runner interface {
	// RunParsed runs a parsed command line at the current caret.
	RunParsed(ctx context.Context, line *ex.ParsedCommandLine) error

	// Normal feeds keys in Normal mode without user mappings when remap is
	// false.
	Normal(ctx context.Context, keys string, remap bool) error
}

type command func(h *Handler, ctx context.Context, call dispatcher.Call) error

var commands = map[string]command{
	ActionGotoLine:   (*Handler).gotoLine,
	ActionDelete:     (*Handler).delete,
	ActionYank:       (*Handler).yank,
	ActionPut:        (*Handler).put,
	ActionCopy:       (*Handler).copyLines,
	ActionMove:       (*Handler).moveLines,
	ActionJoin:       (*Handler).join,
	ActionShiftRight: (*Handler).shiftRight,
	ActionShiftLeft:  (*Handler).shiftLeft,
	ActionSubstitute: (*Handler).substitute,
	ActionGlobal:     (*Handler).global,
	ActionNormal:     (*Handler).normal,
	ActionPrint:      (*Handler).print,
	ActionNumber:     (*Handler).print,
	ActionList:       (*Handler).print,
	ActionLineNumber: (*Handler).lineNumber,
	ActionMark:       (*Handler).mark,
	ActionMarks:      (*Handler).marks,
	ActionRegisters:  (*Handler).registers,
	ActionUndo:       (*Handler).undo,
	ActionRedo:       (*Handler).undo,
}

// Handler runs Ex commands against one buffer.
type Handler struct {
	buf  *buffer.Memory
	regs *register.Store
	ops  *operator.Handler
	edit *editor.Handler
	out  dispatcher.Reporter
	run  Runner

	// IgnoreCase decides whether a pattern without an i or I flag ignores
	// case. Nil uses the buffer default.
	IgnoreCase func(pattern string) bool
}

// NewHandler creates an Ex handler. Line edits go through ops and edit so
// registers and undo behave as for Normal mode commands. run may be nil
// when :global and :normal are not needed.
func NewHandler(buf *buffer.Memory, regs *register.Store, ops *operator.Handler, edit *editor.Handler, out dispatcher.Reporter, run Runner) *Handler {
	return &Handler{buf: buf, regs: regs, ops: ops, edit: edit, out: out, run: run}
}

// Namespace implements dispatcher.Namespace.
func (h *Handler) Namespace() string {
	return "ex"
}

// CanHandle implements dispatcher.Namespace.
func (h *Handler) CanHandle(name string) bool {
	switch name {
	case ActionGlobal, ActionNormal:
		return h.run != nil
	}
	_, ok := commands[name]
	return ok
}

// Handle implements dispatcher.Namespace.
func (h *Handler) Handle(ctx context.Context, call dispatcher.Call) error {
	fn, ok := commands[call.Handler]
	if !ok || !h.CanHandle(call.Handler) {
		return fmt.Errorf("%w: %s", dispatcher.ErrNoHandler, call.Handler)
	}
	return fn(h, ctx, call)
}

// rows returns the range of call clamped to the buffer. A count replaces
// the range with count lines starting at its last line.
func (h *Handler) rows(call dispatcher.Call) (first, last int) {
	first, _ = call.Args.Int("first")
	last, _ = call.Args.Int("last")
	if n, ok := call.Args.Int("count"); ok && n > 0 {
		first, last = max(last, 0), max(last, 0)+n-1
	}
	top := h.buf.LineCount() - 1
	return max(0, min(first, top)), max(0, min(last, top))
}

// lines is the linewise range of rows first..last.
func (h *Handler) lines(first, last int) operator.Range {
	return operator.Range{
		Span:     buffer.Span{Start: h.buf.LineAtRow(first).Start, End: h.buf.FullLineAtRow(last).End},
		Linewise: true,
	}
}

func (h *Handler) firstNonBlank(row int) int {
	line := h.buf.LineAtRow(row)
	text := h.buf.Substr(line)
	for i := 0; i < len(text); i++ {
		if text[i] != ' ' && text[i] != '\t' {
			return line.Start + i
		}
	}
	return line.End
}

func (h *Handler) caretTo(row int) {
	row = max(0, min(row, h.buf.LineCount()-1))
	h.buf.SetSelections(buffer.Point(h.firstNonBlank(row)))
}

func (h *Handler) ignoreCase(pattern string) bool {
	if h.IgnoreCase != nil {
		return h.IgnoreCase(pattern)
	}
	return h.buf.IgnoreCase()
}

// registerName converts the "register" parameter to a rune, 0 if absent.
func registerName(call dispatcher.Call) rune {
	r, _ := utf8.DecodeRuneInString(call.Args.Text("register"))
	if r == utf8.RuneError {
		return 0
	}
	return r
}
