// Package editor implements the editor.* handlers: character edits in
// insert and normal mode, paste, join, increment and undo.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/operator"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/register"
	"github.com/dshills/vimcore/internal/engine/buffer"
)

// Action names for insert mode edits.
const (
	ActionInsertText        = "editor.insertText"
	ActionInsertNewline     = "editor.insertNewline"     // <CR>
	ActionInsertTab         = "editor.insertTab"         // <Tab>
	ActionReplaceText       = "editor.replaceText"       // typing in Replace mode
	ActionReplaceSelection  = "editor.replaceSelection"  // typing in Select mode
	ActionBackspace         = "editor.backspace"         // <BS>
	ActionDeleteWordBack    = "editor.deleteWordBack"    // <C-w>
	ActionDeleteToLineStart = "editor.deleteToLineStart" // <C-u>
	ActionPasteRegister     = "editor.pasteRegister"     // <C-r>{reg}
	ActionIndent            = "editor.indent"            // <C-t>
	ActionOutdent           = "editor.outdent"           // <C-d>
)

// Action names for normal and visual mode edits.
const (
	ActionDeleteChar      = "editor.deleteChar"       // x
	ActionDeleteCharBack  = "editor.deleteCharBack"   // X
	ActionDeleteToEnd     = "editor.deleteToEnd"      // D
	ActionChangeToEnd     = "editor.changeToEnd"      // C
	ActionSubstituteChar  = "editor.substituteChar"   // s
	ActionChangeLine      = "editor.changeLine"       // S
	ActionDeleteSelection = "editor.deleteSelection"  // <BS> in Select mode
	ActionYankLine        = "editor.yankLine"         // Y
	ActionPasteAfter      = "editor.pasteAfter"       // p
	ActionPasteBefore     = "editor.pasteBefore"      // P
	ActionJoinLines       = "editor.joinLines"        // J
	ActionJoinNoSpace     = "editor.joinLinesNoSpace" // gJ
	ActionReplaceChar     = "editor.replaceChar"      // r
	ActionToggleCaseChar  = "editor.toggleCaseChar"   // ~
	ActionIncrement       = "editor.increment"        // <C-a>
	ActionDecrement       = "editor.decrement"        // <C-x>
	ActionUndo            = "editor.undo"             // u
	ActionUndoLine        = "editor.undoLine"         // U
	ActionRedo            = "editor.redo"             // <C-r>
)

// Editor errors.
var (
	ErrEmptyRegister = errors.New("editor: nothing in register")
	ErrNoNextLine    = errors.New("editor: no line to join")
	ErrNoNumber      = errors.New("editor: no number under cursor")
	ErrShortLine     = errors.New("editor: not enough characters to replace")
)

type editFunc func(h *Handler, call dispatcher.Call) error

var edits = map[string]editFunc{
	ActionInsertText:        (*Handler).insertText,
	ActionInsertNewline:     (*Handler).insertNewline,
	ActionInsertTab:         (*Handler).insertTab,
	ActionReplaceText:       (*Handler).replaceText,
	ActionReplaceSelection:  (*Handler).replaceSelection,
	ActionBackspace:         (*Handler).backspace,
	ActionDeleteWordBack:    (*Handler).deleteWordBack,
	ActionDeleteToLineStart: (*Handler).deleteToLineStart,
	ActionPasteRegister:     (*Handler).pasteRegister,
	ActionIndent:            (*Handler).indent,
	ActionOutdent:           (*Handler).outdent,
	ActionDeleteChar:        (*Handler).deleteChar,
	ActionDeleteCharBack:    (*Handler).deleteCharBack,
	ActionDeleteToEnd:       (*Handler).deleteToEnd,
	ActionChangeToEnd:       (*Handler).changeToEnd,
	ActionSubstituteChar:    (*Handler).substituteChar,
	ActionChangeLine:        (*Handler).changeLine,
	ActionDeleteSelection:   (*Handler).deleteSelection,
	ActionYankLine:          (*Handler).yankLine,
	ActionPasteAfter:        (*Handler).pasteAfter,
	ActionPasteBefore:       (*Handler).pasteBefore,
	ActionJoinLines:         (*Handler).joinLines,
	ActionJoinNoSpace:       (*Handler).joinLinesNoSpace,
	ActionReplaceChar:       (*Handler).replaceChar,
	ActionToggleCaseChar:    (*Handler).toggleCaseChar,
	ActionIncrement:         (*Handler).increment,
	ActionDecrement:         (*Handler).decrement,
	ActionUndo:              (*Handler).undo,
	ActionUndoLine:          (*Handler).undo,
	ActionRedo:              (*Handler).redo,
}

// Handler edits a buffer.
type Handler struct {
	buf  *buffer.Memory
	regs *register.Store
	ops  *operator.Handler
	hist *History
}

// NewHandler creates an editor handler. Range edits such as x and D go
// through ops so they fill registers the way operators do. hist may be nil,
// in which case undo and redo are not handled.
func NewHandler(buf *buffer.Memory, regs *register.Store, ops *operator.Handler, hist *History) *Handler {
	return &Handler{buf: buf, regs: regs, ops: ops, hist: hist}
}

// Namespace implements dispatcher.Namespace.
func (h *Handler) Namespace() string {
	return "editor"
}

// CanHandle implements dispatcher.Namespace.
func (h *Handler) CanHandle(name string) bool {
	switch name {
	case ActionUndo, ActionUndoLine, ActionRedo:
		return h.hist != nil
	}
	_, ok := edits[name]
	return ok
}

// Handle implements dispatcher.Namespace.
func (h *Handler) Handle(_ context.Context, call dispatcher.Call) error {
	fn, ok := edits[call.Handler]
	if !ok || !h.CanHandle(call.Handler) {
		return fmt.Errorf("%w: %s", dispatcher.ErrNoHandler, call.Handler)
	}
	return fn(h, call)
}

// each runs fn for every selection in turn. fn gets the selection as it is
// after the earlier edits and returns its replacement.
func (h *Handler) each(fn func(s buffer.Span) (buffer.Span, error)) error {
	n := len(h.buf.CurrentSelections())
	for i := 0; i < n; i++ {
		s, err := fn(h.buf.CurrentSelections()[i])
		if err != nil {
			return err
		}
		sels := h.buf.CurrentSelections()
		sels[i] = s
		h.buf.SetSelections(sels...)
	}
	return nil
}

// lines returns the linewise range of rows first..last.
func (h *Handler) lines(first, last int) operator.Range {
	last = min(last, h.buf.LineCount()-1)
	return operator.Range{
		Span:     buffer.Span{Start: h.buf.LineAtRow(first).Start, End: h.buf.FullLineAtRow(last).End},
		Linewise: true,
	}
}

// clampNormal keeps the caret on a character, as normal mode requires.
func (h *Handler) clampNormal() {
	p := h.buf.Cursor()
	line := h.buf.LineAt(p)
	if p >= line.End && line.End > line.Start {
		h.buf.SetSelections(buffer.Point(prevChar(h.buf.Text(), line.End, line.Start)))
	}
}

// nextChar returns the offset after the character at p.
func nextChar(text string, p int) int {
	if p >= len(text) {
		return len(text)
	}
	c, _, _, _ := uniseg.FirstGraphemeClusterInString(text[p:], -1)
	return p + len(c)
}

// prevChar returns the start of the character before p, not before floor.
func prevChar(text string, p, floor int) int {
	q := floor
	for q < p {
		n := nextChar(text, q)
		if n >= p {
			return q
		}
		q = n
	}
	return floor
}

// charsFrom returns the offset count characters after p, stopping at end.
func charsFrom(text string, p, count, end int) int {
	for ; count > 0 && p < end; count-- {
		p = nextChar(text, p)
	}
	return min(p, end)
}

func leadingSpace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}

func (h *Handler) firstNonBlank(row int) int {
	line := h.buf.LineAtRow(row)
	return line.Start + len(leadingSpace(h.buf.Substr(line)))
}
