package excmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/cursor"
	"github.com/dshills/vimcore/internal/engine/buffer"
)

// markOrder is the order :marks lists marks in.
const markOrder = `'abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"[]^.<>`

func (h *Handler) print(_ context.Context, call dispatcher.Call) error {
	first, last := h.rows(call)
	flags := flagsOf(call)
	number := call.Handler == ActionNumber || flags["#"]
	list := call.Handler == ActionList || flags["l"]
	for row := first; row <= last; row++ {
		h.printRow(row, number, list)
	}
	h.caretTo(last)
	return nil
}

func (h *Handler) printRow(row int, number, list bool) {
	text := h.buf.LineText(row)
	if list {
		text = strings.ReplaceAll(text, "\t", "^I") + "$"
	}
	if number {
		text = fmt.Sprintf("%3d %s", row+1, text)
	}
	h.out.ReportStatus(text)
}

// lineNumber reports the number of the last line of the range, 0 for the
// line before the first.
func (h *Handler) lineNumber(_ context.Context, call dispatcher.Call) error {
	last, _ := call.Args.Int("last")
	h.out.ReportStatus(strconv.Itoa(max(last, -1) + 1))
	return nil
}

// mark sets a mark at the start of the last line of the range.
func (h *Handler) mark(_ context.Context, call dispatcher.Call) error {
	name, _ := utf8.DecodeRuneInString(call.Args.Text("mark"))
	if !cursor.Settable(name) {
		return fmt.Errorf("%w: %q", cursor.ErrInvalidMark, name)
	}
	last, _ := call.Args.Int("last")
	row := max(0, min(last, h.buf.LineCount()-1))
	h.buf.SetMark(name, buffer.MarkTarget{Span: buffer.Point(h.buf.LineAtRow(row).Start)})
	return nil
}

// marks lists the set marks, or those named in the argument.
func (h *Handler) marks(_ context.Context, call dispatcher.Call) error {
	names := call.Args.Text("names")
	var rows []string
	for _, name := range markOrder {
		if names != "" && !strings.ContainsRune(names, name) {
			continue
		}
		t, ok := h.buf.MarkLookup(name)
		if !ok {
			continue
		}
		if t.InOtherFile() {
			rows = append(rows, fmt.Sprintf(" %c %6s %4s %s", name, "-", "-", t.File))
			continue
		}
		p := t.Span.End
		row := h.buf.RowOf(p)
		col := p - h.buf.LineAtRow(row).Start
		rows = append(rows, fmt.Sprintf(" %c %6d %4d %s", name, row+1, col, h.buf.LineText(row)))
	}
	if len(rows) == 0 {
		return ErrNoMarks
	}
	h.out.ReportStatus("mark line  col file/text")
	for _, r := range rows {
		h.out.ReportStatus(r)
	}
	return nil
}

// registers lists the non-empty registers, or those named in the argument.
func (h *Handler) registers(_ context.Context, call dispatcher.Call) error {
	names := call.Args.Text("names")
	h.out.ReportStatus("Type Name Content")
	for _, name := range h.regs.Names() {
		if names != "" && !strings.ContainsRune(names, name) {
			continue
		}
		r, _ := h.regs.Get(name)
		kind := 'c'
		if r.Linewise {
			kind = 'l'
		}
		h.out.ReportStatus(fmt.Sprintf("  %c  \"%c   %s", kind, name, printable(r.Text)))
	}
	return nil
}

// printable shows control characters as ^X and cuts long text.
func printable(s string) string {
	const width = 60
	var sb strings.Builder
	n := 0
	for _, r := range s {
		if n >= width {
			break
		}
		if r < ' ' {
			sb.WriteByte('^')
			sb.WriteRune(r + '@')
			n += 2
			continue
		}
		sb.WriteRune(r)
		n++
	}
	return sb.String()
}
