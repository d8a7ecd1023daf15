package app_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/vimcore/internal/app"
	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/input/key"
)

type memFS map[string]string

func (fs memFS) ReadFile(path string) ([]byte, error) {
	s, ok := fs[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(s), nil
}

func (fs memFS) WriteFile(path string, data []byte, appendTo bool) error {
	if appendTo {
		fs[path] += string(data)
		return nil
	}
	fs[path] = string(data)
	return nil
}

func (fs memFS) Exists(path string) bool {
	_, ok := fs[path]
	return ok
}

// upper upper-cases its input whatever the command.
type upper struct{}

func (upper) Run(_ context.Context, command, stdin string) (string, error) {
	if stdin == "" {
		return command + "\n", nil
	}
	return strings.ToUpper(stdin), nil
}

type fixture struct {
	t   *testing.T
	ctx context.Context
	fs  memFS
	ed  *app.Editor
}

// newFixture opens a.txt holding text in a strict editor.
func newFixture(t *testing.T, text string) *fixture {
	t.Helper()
	fs := memFS{"a.txt": text}
	ed := app.New(app.Options{Strict: true, FS: fs, Shell: upper{}, Height: 10})
	f := &fixture{t: t, ctx: context.Background(), fs: fs, ed: ed}
	if err := ed.Open(f.ctx, "a.txt"); err != nil {
		t.Fatal(err)
	}
	f.noErrors()
	ed.Messages().Reset()
	return f
}

func (f *fixture) ex(lines ...string) {
	f.t.Helper()
	for _, line := range lines {
		if err := f.ed.Execute(f.ctx, line); err != nil {
			f.t.Fatalf("Execute(%q) = %v", line, err)
		}
	}
}

func (f *fixture) keys(notation string) {
	f.t.Helper()
	if err := f.ed.FeedKeys(f.ctx, notation); err != nil {
		f.t.Fatalf("FeedKeys(%q) = %v", notation, err)
	}
}

func (f *fixture) text() string {
	return f.ed.Document().Buffer().Text()
}

func (f *fixture) row() int {
	buf := f.ed.Document().Buffer()
	return buf.RowOf(buf.Cursor())
}

func (f *fixture) noErrors() {
	f.t.Helper()
	if errs := f.ed.Messages().Errors(); len(errs) > 0 {
		f.t.Fatalf("unexpected errors: %v", errs)
	}
}

func (f *fixture) statuses() []string {
	var out []string
	for _, m := range f.ed.Messages().All() {
		if !m.Error && !m.Bell {
			out = append(out, m.Text)
		}
	}
	return out
}

func TestKeysEditBuffer(t *testing.T) {
	f := newFixture(t, "one two three\nfour\n")
	f.keys("2dw")
	if got, want := f.text(), "three\nfour\n"; got != want {
		t.Errorf("after 2dw: got %q, want %q", got, want)
	}
	f.keys("jdd")
	if got, want := f.text(), "three\n"; got != want {
		t.Errorf("after jdd: got %q, want %q", got, want)
	}
	f.noErrors()
}

func TestErrorEdge(t *testing.T) {
	tests := []struct {
		line string
		kind dispatcher.ErrorKind
	}{
		{"frobnicate", dispatcher.KindParse},
		{"1,2set", dispatcher.KindParse},
		{"/nomatch/d", dispatcher.KindResolution},
		{"'zd", dispatcher.KindResolution},
		{"tabnew", dispatcher.KindDispatch},
		{"nunmap xyz", dispatcher.KindDispatch},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			f := newFixture(t, "a\nb\n")
			if err := f.ed.Execute(f.ctx, tt.line); err != nil {
				t.Fatalf("Execute returned %v, want the error reported", err)
			}
			errs := f.ed.Messages().Errors()
			if len(errs) != 1 {
				t.Fatalf("errors = %v, want one", errs)
			}
			if errs[0].Kind != tt.kind {
				t.Errorf("kind = %s, want %s (%s)", errs[0].Kind, tt.kind, errs[0].Text)
			}
			if got := f.ed.Messages().Bells(); got != 1 {
				t.Errorf("bells = %d, want 1", got)
			}
			if got := f.text(); got != "a\nb\n" {
				t.Errorf("buffer changed to %q", got)
			}
		})
	}
}

func TestKeyErrorResets(t *testing.T) {
	f := newFixture(t, "a\nb\n")
	f.keys(":nope<CR>")
	if f.ed.Messages().Bells() == 0 {
		t.Error("no bell for a failed command line")
	}
	if !f.ed.Window().Machine().State().IsClear() {
		t.Error("pending state kept after an error")
	}
	f.keys("dd")
	if got := f.text(); got != "b\n" {
		t.Errorf("after recovery: got %q, want %q", got, "b\n")
	}
}

func TestGotoLine(t *testing.T) {
	f := newFixture(t, "a\nb\nc\nd\n")
	f.ex("3")
	if f.row() != 2 {
		t.Errorf(":3 row = %d, want 2", f.row())
	}
	f.keys(":1<CR>")
	if f.row() != 0 {
		t.Errorf(":1 row = %d, want 0", f.row())
	}
	f.ex("/c/")
	if f.row() != 2 {
		t.Errorf(":/c/ row = %d, want 2", f.row())
	}
	if last, _ := f.ed.Session().LastSearch(); last.Pattern != "c" {
		t.Errorf("last search = %q, want c", last.Pattern)
	}
	f.noErrors()
}

func TestSubstituteMemory(t *testing.T) {
	f := newFixture(t, "foo foo\nfoo\nbar foo\n")
	f.ex("s/foo/x/", "2&&", "3s//y/", "1s/x/~~/")
	if got, want := f.text(), "yy foo\nx\nbar y\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	sub, ok := f.ed.Session().LastSubstitute()
	if !ok || sub.Pattern != "x" || sub.Replacement != "yy" {
		t.Errorf("last substitute = %+v", sub)
	}
	f.noErrors()

	fresh := newFixture(t, "a\n")
	fresh.ex("&")
	if errs := fresh.ed.Messages().Errors(); len(errs) != 1 || errs[0].Kind != dispatcher.KindResolution {
		t.Errorf(":& with no previous substitute: %v", errs)
	}
}

func TestGlobalAndNormal(t *testing.T) {
	f := newFixture(t, "x1\ny\nx2\n")
	f.ex("g/x/d")
	if got := f.text(); got != "y\n" {
		t.Errorf(":g/x/d: got %q", got)
	}
	f.ex("normal Az")
	if got := f.text(); got != "yz\n" {
		t.Errorf(":normal Az: got %q", got)
	}
	if f.ed.Window().Machine().Mode().IsTextEntry() {
		t.Error(":normal left insert mode open")
	}
	f.noErrors()
}

func TestMappings(t *testing.T) {
	f := newFixture(t, "a\nb\nc\n")
	f.ex("let mapleader = ','", "nnoremap <leader>d dd")
	f.keys(",d")
	if got := f.text(); got != "b\nc\n" {
		t.Errorf("after ,d: got %q", got)
	}

	f.ed.Messages().Reset()
	f.ex("nmap")
	if got := f.statuses(); len(got) != 1 || !strings.Contains(got[0], ",d") {
		t.Errorf(":nmap listed %q", got)
	}

	f.ex("nunmap ,d")
	f.ed.Messages().Reset()
	f.ex("nmap")
	if diff := cmp.Diff([]string{"No mapping found"}, f.statuses()); diff != "" {
		t.Errorf(":nmap after unmap (-want +got):\n%s", diff)
	}
	f.noErrors()
}

func TestVisualRanges(t *testing.T) {
	tests := []struct {
		name string
		text string
		keys string
		want string
	}{
		{"charwise ending on a line start", "ab\ncd\nef\n", "vj:d<CR>", "ef\n"},
		{"linewise", "ab\ncd\nef\n", "Vj:d<CR>", "ef\n"},
		{"marks after leaving visual mode", "1\n2\n3\n4\n5\n6\n", "jVj<Esc>G:'<,'>d<CR>", "1\n4\n5\n6\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.text)
			f.keys(tt.keys)
			if got := f.text(); got != tt.want {
				t.Errorf("after %s: got %q, want %q", tt.keys, got, tt.want)
			}
			f.noErrors()
		})
	}
}

func TestSetLetEcho(t *testing.T) {
	f := newFixture(t, "bar\nFOO\n")
	f.ex("set sw=4 ic", "let &ts = 2")
	s := f.ed.Session().Settings
	if s.Int("shiftwidth") != 4 || !s.Bool("ignorecase") || s.Int("tabstop") != 2 {
		t.Fatalf("settings not applied: sw=%d ic=%v ts=%d", s.Int("shiftwidth"), s.Bool("ignorecase"), s.Int("tabstop"))
	}
	f.ex("/foo/d")
	if got := f.text(); got != "bar\n" {
		t.Errorf("ignorecase search: got %q", got)
	}
	f.ed.Messages().Reset()
	f.ex("set sw?", "echo &sw", `echo "hi"`)
	want := []string{"  shiftwidth=4", "4", "hi"}
	if diff := cmp.Diff(want, f.statuses()); diff != "" {
		t.Errorf("statuses (-want +got):\n%s", diff)
	}
	f.ex("echo nope")
	if len(f.ed.Messages().Errors()) != 1 {
		t.Error("echo of an undefined variable did not fail")
	}
}

func TestHistory(t *testing.T) {
	f := newFixture(t, "a\n")
	f.ex("set sw=2", "echo 1")
	f.ed.Messages().Reset()
	f.ex("history")
	want := []string{"      #  cmd history", "     1  set sw=2", "     2  echo 1", "     3  history"}
	if diff := cmp.Diff(want, f.statuses()); diff != "" {
		t.Errorf(":history (-want +got):\n%s", diff)
	}
	f.ed.Messages().Reset()
	f.ex("history : -1")
	if diff := cmp.Diff([]string{"      #  cmd history", "     4  history : -1"}, f.statuses()); diff != "" {
		t.Errorf(":history -1 (-want +got):\n%s", diff)
	}
}

func TestUndo(t *testing.T) {
	f := newFixture(t, "a\nb\n")
	f.keys("dd")
	f.keys("u")
	if got := f.text(); got != "a\nb\n" {
		t.Errorf("after dd u: got %q", got)
	}
	f.ex("d", "undo")
	if got := f.text(); got != "a\nb\n" {
		t.Errorf("after :d :undo: got %q", got)
	}
	f.ex("redo")
	if got := f.text(); got != "b\n" {
		t.Errorf("after :redo: got %q", got)
	}
	f.noErrors()
}

func TestQuit(t *testing.T) {
	f := newFixture(t, "one\n")
	f.keys("x")
	f.ex("q")
	if errs := f.ed.Messages().Errors(); len(errs) != 1 || !strings.Contains(errs[0].Text, "no write") {
		t.Errorf(":q with changes: %v", errs)
	}
	if f.ed.Quitting() {
		t.Fatal("quit with unsaved changes")
	}
	if err := f.ed.Execute(f.ctx, "q!"); !errors.Is(err, app.ErrQuit) {
		t.Errorf(":q! = %v, want ErrQuit", err)
	}
	if !f.ed.Quitting() || f.ed.ExitCode() != 0 {
		t.Errorf("Quitting = %v, ExitCode = %d", f.ed.Quitting(), f.ed.ExitCode())
	}
}

func TestWriteQuit(t *testing.T) {
	tests := []struct {
		name  string
		keys  string
		line  string
		saved string
	}{
		{"wq", "x", "wq", "ne\n"},
		{"x unmodified", "", "x", "one\n"},
		{"ZZ", "x", "", "ne\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "one\n")
			f.keys(tt.keys)
			var err error
			if tt.line != "" {
				err = f.ed.Execute(f.ctx, tt.line)
			} else {
				err = f.ed.FeedKeys(f.ctx, "ZZ")
			}
			if !errors.Is(err, app.ErrQuit) {
				t.Fatalf("got %v, want ErrQuit", err)
			}
			if got := f.fs["a.txt"]; got != tt.saved {
				t.Errorf("a.txt = %q, want %q", got, tt.saved)
			}
		})
	}

	f := newFixture(t, "one\n")
	if err := f.ed.Execute(f.ctx, "cq"); !errors.Is(err, app.ErrQuit) || f.ed.ExitCode() != 1 {
		t.Errorf(":cq = %v, exit code %d", err, f.ed.ExitCode())
	}
}

func TestWindows(t *testing.T) {
	f := newFixture(t, "a\nb\n")
	f.ex("split")
	if f.ed.Count() != 2 || f.ed.Current() != 1 {
		t.Fatalf("after :split: %d windows, current %d", f.ed.Count(), f.ed.Current())
	}
	wins := f.ed.Windows()
	if wins[0].Document() != wins[1].Document() {
		t.Error(":split shows another document")
	}
	f.keys("dd")
	if got := wins[0].Document().Buffer().Text(); got != "b\n" {
		t.Errorf("edit not shared between windows: %q", got)
	}

	f.keys("<C-w>k")
	if f.ed.Current() != 0 {
		t.Errorf("<C-w>k: current = %d, want 0", f.ed.Current())
	}
	f.ex("new")
	if f.ed.Count() != 3 || f.ed.Document().Name() != "" {
		t.Errorf(":new: %d windows, name %q", f.ed.Count(), f.ed.Document().Name())
	}
	f.ex("only")
	if f.ed.Count() != 1 {
		t.Errorf(":only left %d windows", f.ed.Count())
	}
	f.noErrors()

	f.ex("close")
	if errs := f.ed.Messages().Errors(); len(errs) != 1 {
		t.Errorf(":close of the last window: %v", errs)
	}
}

func TestBuffers(t *testing.T) {
	f := newFixture(t, "a\n")
	f.fs["b.txt"] = "b\n"
	f.ex("e b.txt")
	docs := f.ed.Documents()
	if len(docs) != 2 {
		t.Fatalf("%d documents, want a.txt and b.txt only", len(docs))
	}
	if f.text() != "b\n" {
		t.Errorf(":e b.txt shows %q", f.text())
	}
	f.ex("bp")
	if got := f.ed.Document().Name(); got != "a.txt" {
		t.Errorf(":bp went to %q", got)
	}
	f.ed.Messages().Reset()
	f.ex("ls")
	got := f.statuses()
	if len(got) != 2 || !strings.Contains(got[0], "%") || !strings.Contains(got[1], `"b.txt"`) {
		t.Errorf(":ls = %q", got)
	}
	f.noErrors()
}

func TestFilterAndRead(t *testing.T) {
	f := newFixture(t, "ab\ncd\n")
	f.ex("%!tr a-z A-Z")
	if got := f.text(); got != "AB\nCD\n" {
		t.Errorf(":%%! got %q", got)
	}
	f.ex("$r !echo")
	if got := f.text(); got != "AB\nCD\necho\n" {
		t.Errorf(":r ! got %q", got)
	}
	f.ed.Messages().Reset()
	f.ex("!!")
	if diff := cmp.Diff([]string{"echo"}, f.statuses()); diff != "" {
		t.Errorf(":!! (-want +got):\n%s", diff)
	}
}

func TestMacrosPersist(t *testing.T) {
	f := newFixture(t, "a\nb\nc\n")
	f.keys("qaddq")
	path := filepath.Join(t.TempDir(), "macros.json")
	if err := f.ed.SaveMacros(path); err != nil {
		t.Fatal(err)
	}

	g := newFixture(t, "a\nb\nc\n")
	if err := g.ed.LoadMacros(path); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(key.Sequence{"d", "d"}, g.ed.Session().Macros.Get('a')); diff != "" {
		t.Errorf("macro a (-want +got):\n%s", diff)
	}
	g.keys("@a")
	if got := g.text(); got != "b\nc\n" {
		t.Errorf("after @a: got %q", got)
	}
}
