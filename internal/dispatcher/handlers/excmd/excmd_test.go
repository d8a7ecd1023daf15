package excmd_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/cursor"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/editor"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/excmd"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/operator"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/register"
	"github.com/dshills/vimcore/internal/engine/buffer"
	"github.com/dshills/vimcore/internal/ex"
	"github.com/dshills/vimcore/internal/ex/address"
)

const four = "one\ntwo\nthree\nfour\n"

// lineRunner runs :global sub-commands on the caret line the way the
// editor does, without the rest of the pipeline.
type lineRunner struct {
	h      *excmd.Handler
	buf    *buffer.Memory
	normal []string
}

func (r *lineRunner) RunParsed(ctx context.Context, line *ex.ParsedCommandLine) error {
	row := r.buf.RowOf(r.buf.Cursor())
	call := dispatcher.NewCall(line.Command.Handler).With("first", row).With("last", row)
	for k, v := range line.Command.Params {
		call = call.With(k, v)
	}
	if node, ok := line.Command.Params.Range("address"); ok {
		dest, err := address.New(r.buf).Row(node)
		if err != nil {
			return err
		}
		call = call.With("dest", dest)
	}
	return r.h.Handle(ctx, call)
}

func (r *lineRunner) Normal(_ context.Context, keys string, remap bool) error {
	r.normal = append(r.normal, fmt.Sprintf("%d:%s:%t", r.buf.RowOf(r.buf.Cursor()), keys, remap))
	return nil
}

type fixture struct {
	buf  *buffer.Memory
	regs *register.Store
	msgs *dispatcher.Messages
	run  *lineRunner
	h    *excmd.Handler
}

func newFixture(text string) *fixture {
	buf := buffer.NewMemory(text)
	regs := register.NewStore()
	ops := operator.NewHandler(buf, regs, nil)
	ed := editor.NewHandler(buf, regs, ops, editor.NewHistory(buf, 0))
	msgs := dispatcher.NewMessages(nil)
	run := &lineRunner{buf: buf}
	h := excmd.NewHandler(buf, regs, ops, ed, msgs, run)
	run.h = h
	return &fixture{buf: buf, regs: regs, msgs: msgs, run: run, h: h}
}

func rng(name string, first, last int) dispatcher.Call {
	return dispatcher.NewCall(name).With("first", first).With("last", last)
}

func sub(t *testing.T, line string) *ex.ParsedCommandLine {
	t.Helper()
	p, err := ex.Parse(line)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLineCommands(t *testing.T) {
	tests := []struct {
		name  string
		call  dispatcher.Call
		want  string
		caret int
	}{
		{":2,3d", rng(excmd.ActionDelete, 1, 2), "one\nfour\n", 4},
		{":d 2", rng(excmd.ActionDelete, 0, 0).With("count", 2), "three\nfour\n", 0},
		{":$d", rng(excmd.ActionDelete, 3, 3), "one\ntwo\nthree\n", 8},
		{":1t$", rng(excmd.ActionCopy, 0, 0).With("dest", 3), four + "one\n", 19},
		{":4t0", rng(excmd.ActionCopy, 3, 3).With("dest", -1), "four\n" + four, 0},
		{":1m$", rng(excmd.ActionMove, 0, 0).With("dest", 3), "two\nthree\nfour\none\n", 15},
		{":4m0", rng(excmd.ActionMove, 3, 3).With("dest", -1), "four\none\ntwo\nthree\n", 0},
		{":2m1 stays", rng(excmd.ActionMove, 1, 1).With("dest", 0), four, 4},
		{":1,2j", rng(excmd.ActionJoin, 0, 1), "one two\nthree\nfour\n", 3},
		{":j on one line", rng(excmd.ActionJoin, 0, 0), "one two\nthree\nfour\n", 3},
		{":j!", rng(excmd.ActionJoin, 0, 1).With("forced", true), "onetwo\nthree\nfour\n", 3},
		{":$j", rng(excmd.ActionJoin, 3, 3), four, 14},
		{":1,2>", rng(excmd.ActionShiftRight, 0, 1).With("amount", 1), "        one\n        two\nthree\nfour\n", 20},
		{":3", rng(excmd.ActionGotoLine, 2, 2), four, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(four)
			if err := f.h.Handle(context.Background(), tt.call); err != nil {
				t.Fatal(err)
			}
			if got := f.buf.Text(); got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
			if c := f.buf.Cursor(); c != tt.caret {
				t.Errorf("cursor = %d, want %d", c, tt.caret)
			}
		})
	}
}

func TestMoveIntoItself(t *testing.T) {
	f := newFixture(four)
	err := f.h.Handle(context.Background(), rng(excmd.ActionMove, 1, 2).With("dest", 1))
	if !errors.Is(err, excmd.ErrMoveIntoItself) {
		t.Errorf("err = %v, want ErrMoveIntoItself", err)
	}
	if f.buf.Text() != four {
		t.Errorf("text changed to %q", f.buf.Text())
	}
}

func TestYankAndPut(t *testing.T) {
	ctx := context.Background()
	f := newFixture(four)
	f.buf.SetSelections(buffer.Point(9))

	if err := f.h.Handle(ctx, rng(excmd.ActionYank, 0, 1).With("register", "a")); err != nil {
		t.Fatal(err)
	}
	if c := f.buf.Cursor(); c != 9 {
		t.Errorf(":yank moved the cursor to %d", c)
	}
	r, _ := f.regs.Get('a')
	if diff := cmp.Diff(register.Register{Text: "one\ntwo\n", Linewise: true}, r); diff != "" {
		t.Errorf("register a (-want +got):\n%s", diff)
	}

	if err := f.h.Handle(ctx, rng(excmd.ActionPut, 3, 3).With("register", "a")); err != nil {
		t.Fatal(err)
	}
	if want := four + "one\ntwo\n"; f.buf.Text() != want {
		t.Errorf("after :put text = %q, want %q", f.buf.Text(), want)
	}
	if c := f.buf.Cursor(); c != 23 {
		t.Errorf("cursor = %d, want 23", c)
	}

	if err := f.h.Handle(ctx, rng(excmd.ActionPut, 0, 0).With("register", "a").With("above", true)); err != nil {
		t.Fatal(err)
	}
	if want := "one\ntwo\n" + four + "one\ntwo\n"; f.buf.Text() != want {
		t.Errorf("after :put! text = %q, want %q", f.buf.Text(), want)
	}

	err := f.h.Handle(ctx, rng(excmd.ActionPut, 0, 0).With("register", "q"))
	if !errors.Is(err, editor.ErrEmptyRegister) {
		t.Errorf(":put q err = %v", err)
	}
}

func TestSubstitute(t *testing.T) {
	tests := []struct {
		name        string
		first, last int
		pattern     string
		replacement string
		flags       []string
		want        string
		caret       int
		status      []string
	}{
		{"g on every line", 0, 3, "o", "0", []string{"g"}, "0ne\ntw0\nthree\nf0ur\n", 14, []string{"3 substitutions on 3 lines"}},
		{"first match only", 0, 0, "[a-z]", "X", nil, "Xne\ntwo\nthree\nfour\n", 0, nil},
		{"groups", 0, 0, "(o)(n)", `\2\1`, nil, "noe\ntwo\nthree\nfour\n", 0, nil},
		{"ampersand", 1, 1, "w", "[&]", nil, "one\nt[w]o\nthree\nfour\n", 4, nil},
		{"case modifiers", 1, 1, "t(wo)", `T\U\1`, nil, "one\nTWO\nthree\nfour\n", 4, nil},
		{"upper once", 2, 2, "three", `\u&`, nil, "one\ntwo\nThree\nfour\n", 8, nil},
		{"line break", 0, 0, "n", `\r`, nil, "o\ne\ntwo\nthree\nfour\n", 2, nil},
		{"ignore case flag", 0, 0, "ONE", "1", []string{"i"}, "1\ntwo\nthree\nfour\n", 0, nil},
		{"count only", 0, 3, "o", "", []string{"g", "n"}, four, 0, []string{"3 matches on 3 lines"}},
		{"no error with e", 0, 3, "zzz", "", []string{"e"}, four, 0, nil},
		{"print flag", 1, 1, "two", "2", []string{"#"}, "one\n2\nthree\nfour\n", 4, []string{"  2 2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(four)
			call := rng(excmd.ActionSubstitute, tt.first, tt.last).
				With("pattern", tt.pattern).
				With("replacement", tt.replacement)
			if tt.flags != nil {
				call = call.With("flags", tt.flags)
			}
			if err := f.h.Handle(context.Background(), call); err != nil {
				t.Fatal(err)
			}
			if got := f.buf.Text(); got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
			if c := f.buf.Cursor(); c != tt.caret {
				t.Errorf("cursor = %d, want %d", c, tt.caret)
			}
			var status []string
			for _, m := range f.msgs.All() {
				status = append(status, m.Text)
			}
			if diff := cmp.Diff(tt.status, status); diff != "" {
				t.Errorf("status (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSubstituteErrors(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		flags   []string
		want    error
	}{
		{"not found", "zzz", nil, address.ErrPatternNotFound},
		{"bad pattern", "(", nil, address.ErrInvalidPattern},
		{"confirm", "o", []string{"c"}, excmd.ErrConfirm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(four)
			call := rng(excmd.ActionSubstitute, 0, 3).With("pattern", tt.pattern).With("replacement", "x")
			if tt.flags != nil {
				call = call.With("flags", tt.flags)
			}
			if err := f.h.Handle(context.Background(), call); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if f.buf.Text() != four {
				t.Errorf("text changed to %q", f.buf.Text())
			}
		})
	}
}

func TestGlobal(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		invert  bool
		command string
		want    string
	}{
		{"delete matches", "o", false, "d", "three\n"},
		{"delete the rest", "o", true, "d", "one\ntwo\nfour\n"},
		{"substitute", "^t", false, "s/t/T/", "one\nTwo\nThree\nfour\n"},
		{"reverse", "^", false, "m0", "four\nthree\ntwo\none\n"},
		{"copy below", "^f", false, "t.", "one\ntwo\nthree\nfour\nfour\n"},
		{"join pairs", "^", false, "j", "one two\nthree four\n"},
		{"missing sub-match is not an error", ".", false, "s/w/W/", "one\ntWo\nthree\nfour\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(four)
			call := rng(excmd.ActionGlobal, 0, 3).
				With("pattern", tt.pattern).
				With("invert", tt.invert).
				With("subcommand", sub(t, tt.command))
			if err := f.h.Handle(context.Background(), call); err != nil {
				t.Fatal(err)
			}
			if got := f.buf.Text(); got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGlobalNoMatch(t *testing.T) {
	f := newFixture(four)
	call := rng(excmd.ActionGlobal, 0, 3).With("pattern", "zzz").With("subcommand", sub(t, "d"))
	if err := f.h.Handle(context.Background(), call); !errors.Is(err, address.ErrPatternNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestNormalOnRange(t *testing.T) {
	f := newFixture(four)
	if err := f.h.Handle(context.Background(), rng(excmd.ActionNormal, 1, 2).With("keys", "A;")); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"1:A;:true", "2:A;:true"}, f.run.normal); diff != "" {
		t.Errorf("normal runs (-want +got):\n%s", diff)
	}
}

func TestListings(t *testing.T) {
	tests := []struct {
		name string
		call dispatcher.Call
		want []string
	}{
		{":p", rng(excmd.ActionPrint, 0, 1), []string{"one", "two"}},
		{":nu", rng(excmd.ActionNumber, 2, 2), []string{"  3 three"}},
		{":l", rng(excmd.ActionList, 3, 3), []string{"^Ix^I$"}},
		{":=", rng(excmd.ActionLineNumber, 3, 3), []string{"4"}},
		{":0=", rng(excmd.ActionLineNumber, -1, -1), []string{"0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture("one\ntwo\nthree\n\tx\t\n")
			if err := f.h.Handle(context.Background(), tt.call); err != nil {
				t.Fatal(err)
			}
			var got []string
			for _, m := range f.msgs.All() {
				got = append(got, m.Text)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("output (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMarksAndRegisters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(four)
	if err := f.h.Handle(ctx, dispatcher.NewCall(excmd.ActionMarks)); !errors.Is(err, excmd.ErrNoMarks) {
		t.Errorf(":marks with none set: err = %v", err)
	}
	if err := f.h.Handle(ctx, rng(excmd.ActionMark, 2, 2).With("mark", "a")); err != nil {
		t.Fatal(err)
	}
	if m, ok := f.buf.MarkLookup('a'); !ok || m.Span != buffer.Point(8) {
		t.Errorf("mark a = %v, %t", m, ok)
	}
	if err := f.h.Handle(ctx, rng(excmd.ActionMark, 0, 0).With("mark", "1")); !errors.Is(err, cursor.ErrInvalidMark) {
		t.Errorf(":mark 1 err = %v", err)
	}

	f.msgs.Reset()
	if err := f.h.Handle(ctx, dispatcher.NewCall(excmd.ActionMarks)); err != nil {
		t.Fatal(err)
	}
	want := []string{"mark line  col file/text", " a      3    0 three"}
	var got []string
	for _, m := range f.msgs.All() {
		got = append(got, m.Text)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf(":marks (-want +got):\n%s", diff)
	}

	f.msgs.Reset()
	f.regs.Yank('b', register.Register{Text: "x\ty\n", Linewise: true})
	if err := f.h.Handle(ctx, dispatcher.NewCall(excmd.ActionRegisters).With("names", "b")); err != nil {
		t.Fatal(err)
	}
	got = nil
	for _, m := range f.msgs.All() {
		got = append(got, m.Text)
	}
	if diff := cmp.Diff([]string{"Type Name Content", `  l  "b   x^Iy^J`}, got); diff != "" {
		t.Errorf(":registers (-want +got):\n%s", diff)
	}
}

func TestUndo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(four)
	if err := f.h.Handle(ctx, rng(excmd.ActionDelete, 0, 1)); err != nil {
		t.Fatal(err)
	}
	if err := f.h.Handle(ctx, dispatcher.NewCall(excmd.ActionUndo)); err != nil {
		t.Fatal(err)
	}
	if f.buf.Text() != four {
		t.Errorf("after :undo text = %q", f.buf.Text())
	}
	if err := f.h.Handle(ctx, dispatcher.NewCall(excmd.ActionRedo)); err != nil {
		t.Fatal(err)
	}
	if want := "three\nfour\n"; f.buf.Text() != want {
		t.Errorf("after :redo text = %q, want %q", f.buf.Text(), want)
	}
}
