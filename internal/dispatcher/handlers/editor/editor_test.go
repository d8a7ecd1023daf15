package editor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/editor"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/operator"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/register"
	"github.com/dshills/vimcore/internal/engine/buffer"
)

type fixture struct {
	buf  *buffer.Memory
	regs *register.Store
	hist *editor.History
	h    *editor.Handler
}

func setup(text string, sels ...buffer.Span) *fixture {
	b := buffer.NewMemory(text, buffer.WithSelections(sels...))
	regs := register.NewStore()
	hist := editor.NewHistory(b, 0)
	return &fixture{
		buf:  b,
		regs: regs,
		hist: hist,
		h:    editor.NewHandler(b, regs, operator.NewHandler(b, regs, nil), hist),
	}
}

func call(handler string, kv ...any) dispatcher.Call {
	c := dispatcher.NewCall(handler).With("count", 1)
	for i := 0; i+1 < len(kv); i += 2 {
		c = c.With(kv[i].(string), kv[i+1])
	}
	return c
}

func TestEdits(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		sels   []buffer.Span
		call   dispatcher.Call
		want   string
		carets []int
	}{
		{"insert", "ab", []buffer.Span{buffer.Point(1)}, call(editor.ActionInsertText, "text", "hi"), "ahib", []int{3}},
		{"insert at every caret", "ab\ncd", []buffer.Span{buffer.Point(0), buffer.Point(3)}, call(editor.ActionInsertText, "text", "X"), "Xab\nXcd", []int{1, 5}},
		{"newline", "ab", []buffer.Span{buffer.Point(1)}, call(editor.ActionInsertNewline), "a\nb", []int{2}},
		{"backspace joins lines", "ab\ncd", []buffer.Span{buffer.Point(3)}, call(editor.ActionBackspace), "abcd", []int{2}},
		{"backspace over combining mark", "ae\u0301", []buffer.Span{buffer.Point(4)}, call(editor.ActionBackspace), "a", []int{1}},
		{"backspace at start", "ab", []buffer.Span{buffer.Point(0)}, call(editor.ActionBackspace), "ab", []int{0}},
		{"C-w", "foo bar  ", []buffer.Span{buffer.Point(9)}, call(editor.ActionDeleteWordBack), "foo ", []int{4}},
		{"C-u", "x\nabc", []buffer.Span{buffer.Point(4)}, call(editor.ActionDeleteToLineStart), "x\nc", []int{2}},
		{"replace mode overwrites", "abc", []buffer.Span{buffer.Point(1)}, call(editor.ActionReplaceText, "text", "X"), "aXc", []int{2}},
		{"replace mode appends at line end", "ab", []buffer.Span{buffer.Point(2)}, call(editor.ActionReplaceText, "text", "X"), "abX", []int{3}},
		{"select mode replaces selection", "hello", []buffer.Span{{Start: 1, End: 3}}, call(editor.ActionReplaceSelection, "text", "X"), "hXo", []int{2}},
		{"select mode backspace", "hello", []buffer.Span{{Start: 3, End: 1}}, call(editor.ActionDeleteSelection), "ho", []int{1}},
		{"x at line end", "abc", []buffer.Span{buffer.Point(2)}, call(editor.ActionDeleteChar), "ab", []int{1}},
		{"3x", "abcdef", []buffer.Span{buffer.Point(1)}, call(editor.ActionDeleteChar, "count", 3), "aef", []int{1}},
		{"X stops at line start", "abc", []buffer.Span{buffer.Point(2)}, call(editor.ActionDeleteCharBack, "count", 5), "c", []int{0}},
		{"D", "ab cd\nx", []buffer.Span{buffer.Point(2)}, call(editor.ActionDeleteToEnd), "ab\nx", []int{1}},
		{"C", "ab cd\nx", []buffer.Span{buffer.Point(2)}, call(editor.ActionChangeToEnd), "ab\nx", []int{2}},
		{"s", "abc", []buffer.Span{buffer.Point(2)}, call(editor.ActionSubstituteChar), "ab", []int{2}},
		{"S keeps indent", "a\n  b\nc", []buffer.Span{buffer.Point(3)}, call(editor.ActionChangeLine), "a\n  \nc", []int{4}},
		{"J", "a\n   b\nc", []buffer.Span{buffer.Point(0)}, call(editor.ActionJoinLines), "a b\nc", []int{1}},
		{"3J", "a\nb\nc", []buffer.Span{buffer.Point(0)}, call(editor.ActionJoinLines, "count", 3), "a b c", []int{3}},
		{"J before paren", "f(\n)", []buffer.Span{buffer.Point(0)}, call(editor.ActionJoinLines), "f()", []int{2}},
		{"gJ", "a\n  b", []buffer.Span{buffer.Point(0)}, call(editor.ActionJoinNoSpace), "a  b", []int{1}},
		{"r", "abcd", []buffer.Span{buffer.Point(1)}, call(editor.ActionReplaceChar, "char", 'x', "count", 2), "axxd", []int{2}},
		{"r CR", "ab cd", []buffer.Span{buffer.Point(2)}, call(editor.ActionReplaceChar, "char", '\r'), "ab\ncd", []int{3}},
		{"visual r", "abc\ndef", []buffer.Span{{Start: 1, End: 5}}, call(editor.ActionReplaceChar, "char", 'x', "visual", "visual"), "axx\nxxf", []int{1}},
		{"~", "aBc", []buffer.Span{buffer.Point(0)}, call(editor.ActionToggleCaseChar, "count", 2), "Abc", []int{2}},
		{"~ past line end", "aBc", []buffer.Span{buffer.Point(0)}, call(editor.ActionToggleCaseChar, "count", 5), "AbC", []int{2}},
		{"C-a finds number", "x 9 y", []buffer.Span{buffer.Point(0)}, call(editor.ActionIncrement), "x 10 y", []int{3}},
		{"C-x negative", "v-3", []buffer.Span{buffer.Point(2)}, call(editor.ActionDecrement, "count", 5), "v-8", []int{2}},
		{"C-t", "ab", []buffer.Span{buffer.Point(1)}, call(editor.ActionIndent), "        ab", []int{9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(tt.text, tt.sels...)
			if err := f.h.Handle(context.Background(), tt.call); err != nil {
				t.Fatal(err)
			}
			if got := f.buf.Text(); got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
			var carets []int
			for _, s := range f.buf.CurrentSelections() {
				carets = append(carets, s.End)
			}
			if diff := cmp.Diff(tt.carets, carets); diff != "" {
				t.Errorf("carets (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEditErrors(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		caret int
		call  dispatcher.Call
		want  error
	}{
		{"J on last line", "a\nb", 2, call(editor.ActionJoinLines), editor.ErrNoNextLine},
		{"r past line end", "ab", 0, call(editor.ActionReplaceChar, "char", 'x', "count", 3), editor.ErrShortLine},
		{"C-a without number", "abc", 0, call(editor.ActionIncrement), editor.ErrNoNumber},
		{"p from empty register", "abc", 0, call(editor.ActionPasteAfter, "register", 'q'), editor.ErrEmptyRegister},
		{"C-r from empty register", "abc", 0, call(editor.ActionPasteRegister, "register", 'q'), editor.ErrEmptyRegister},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(tt.text, buffer.Point(tt.caret))
			err := f.h.Handle(context.Background(), tt.call)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if got := f.buf.Text(); got != tt.text {
				t.Errorf("text changed to %q", got)
			}
		})
	}
}

func TestRegisters(t *testing.T) {
	f := setup("abcdef", buffer.Point(1))
	if err := f.h.Handle(context.Background(), call(editor.ActionDeleteChar, "count", 2, "register", 'a')); err != nil {
		t.Fatal(err)
	}
	if r, _ := f.regs.Get('a'); r.Text != "bc" {
		t.Errorf(`"a = %q`, r.Text)
	}

	f = setup("a\nb", buffer.Point(2))
	if err := f.h.Handle(context.Background(), call(editor.ActionYankLine)); err != nil {
		t.Fatal(err)
	}
	want := register.Register{Text: "b\n", Linewise: true}
	if r, _ := f.regs.Get(0); r != want {
		t.Errorf("Y = %+v, want %+v", r, want)
	}
	if c := f.buf.Cursor(); c != 2 {
		t.Errorf("Y moved the caret to %d", c)
	}
}

func TestPaste(t *testing.T) {
	line := register.Register{Text: "x\n", Linewise: true}
	chars := register.Register{Text: "xy"}
	tests := []struct {
		name  string
		text  string
		caret int
		reg   register.Register
		call  dispatcher.Call
		want  string
		at    int
	}{
		{"p linewise", "a\nb\n", 0, line, call(editor.ActionPasteAfter), "a\nx\nb\n", 2},
		{"p linewise on last line", "a", 0, line, call(editor.ActionPasteAfter), "a\nx", 2},
		{"P linewise", "a\nb\n", 2, line, call(editor.ActionPasteBefore), "a\nx\nb\n", 2},
		{"2p charwise", "ab", 0, chars, call(editor.ActionPasteAfter, "count", 2), "axyxyb", 4},
		{"P charwise", "ab", 1, chars, call(editor.ActionPasteBefore), "axyb", 2},
		{"C-r", "ab", 1, chars, call(editor.ActionPasteRegister), "axyb", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(tt.text, buffer.Point(tt.caret))
			f.regs.Yank(0, tt.reg)
			if err := f.h.Handle(context.Background(), tt.call); err != nil {
				t.Fatal(err)
			}
			if got := f.buf.Text(); got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
			if c := f.buf.Cursor(); c != tt.at {
				t.Errorf("cursor = %d, want %d", c, tt.at)
			}
		})
	}
}

func TestPasteOverSelection(t *testing.T) {
	f := setup("hello", buffer.Span{Start: 1, End: 3})
	f.regs.Yank(0, register.Register{Text: "Z"})
	if err := f.h.Handle(context.Background(), call(editor.ActionPasteAfter, "visual", "visual")); err != nil {
		t.Fatal(err)
	}
	if got := f.buf.Text(); got != "hZo" {
		t.Errorf("text = %q", got)
	}
	if r, _ := f.regs.Get(0); r.Text != "ell" {
		t.Errorf("unnamed = %q, want the replaced text", r.Text)
	}
}

func TestUndoRedo(t *testing.T) {
	f := setup("abc")
	x := call(editor.ActionDeleteChar)
	for i := 0; i < 2; i++ {
		if err := f.h.Handle(context.Background(), x); err != nil {
			t.Fatal(err)
		}
		f.hist.Checkpoint()
	}
	if got := f.buf.Text(); got != "c" {
		t.Fatalf("text = %q", got)
	}

	steps := []struct {
		call dispatcher.Call
		want string
	}{
		{call(editor.ActionUndo), "bc"},
		{call(editor.ActionUndo), "abc"},
		{call(editor.ActionRedo, "count", 2), "c"},
	}
	for _, s := range steps {
		if err := f.h.Handle(context.Background(), s.call); err != nil {
			t.Fatalf("%s: %v", s.call, err)
		}
		if got := f.buf.Text(); got != s.want {
			t.Errorf("after %s text = %q, want %q", s.call, got, s.want)
		}
	}
	if err := f.h.Handle(context.Background(), call(editor.ActionRedo)); !errors.Is(err, editor.ErrNothingToRedo) {
		t.Errorf("redo past newest: err = %v", err)
	}

	// A new change drops the redo steps.
	_ = f.h.Handle(context.Background(), call(editor.ActionUndo))
	_ = f.h.Handle(context.Background(), call(editor.ActionInsertText, "text", "q"))
	f.hist.Checkpoint()
	if _, redo := f.hist.Len(); redo != 0 {
		t.Errorf("redo steps after a change = %d", redo)
	}
}

func TestUndoNeedsHistory(t *testing.T) {
	b := buffer.NewMemory("x")
	regs := register.NewStore()
	h := editor.NewHandler(b, regs, operator.NewHandler(b, regs, nil), nil)
	if h.CanHandle(editor.ActionUndo) {
		t.Error("undo handled without a history")
	}
	if err := h.Handle(context.Background(), call(editor.ActionUndo)); !errors.Is(err, dispatcher.ErrNoHandler) {
		t.Errorf("err = %v", err)
	}
}
