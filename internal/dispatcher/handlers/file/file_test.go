package file_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/file"
	"github.com/dshills/vimcore/internal/engine/buffer"
)

type doc struct {
	buf   *buffer.Memory
	name  string
	saved int
}

func newDoc(name, text string) *doc {
	buf := buffer.NewMemory(text)
	return &doc{buf: buf, name: name, saved: buf.Revision()}
}

func (d *doc) Buffer() *buffer.Memory { return d.buf }
func (d *doc) Name() string           { return d.name }
func (d *doc) SetName(path string)    { d.name = path }
func (d *doc) Modified() bool         { return d.buf.Revision() != d.saved }
func (d *doc) MarkSaved()             { d.saved = d.buf.Revision() }

type docs struct {
	list []*doc
	cur  int
}

func (m *docs) Current() file.Document { return m.list[m.cur] }

func (m *docs) Documents() []file.Document {
	out := make([]file.Document, len(m.list))
	for i, d := range m.list {
		out[i] = d
	}
	return out
}

func (m *docs) Find(path string) (file.Document, bool) {
	for _, d := range m.list {
		if d.name == path {
			return d, true
		}
	}
	return nil, false
}

func (m *docs) Open(path, text string) file.Document {
	m.list = append(m.list, newDoc(path, text))
	m.cur = len(m.list) - 1
	return m.list[m.cur]
}

func (m *docs) New() file.Document { return m.Open("", "") }

func (m *docs) Switch(d file.Document) {
	for i, x := range m.list {
		if x == d {
			m.cur = i
		}
	}
}

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

// upper is a shell whose every command upper-cases its input.
type upper struct {
	commands []string
}

func (s *upper) Run(_ context.Context, command, stdin string) (string, error) {
	s.commands = append(s.commands, command)
	if command == "false" {
		return "", errors.New("shell returned 1")
	}
	if stdin == "" {
		return "out of " + command + "\n", nil
	}
	return strings.ToUpper(stdin), nil
}

type fixture struct {
	docs *docs
	fs   memFS
	sh   *upper
	msgs *dispatcher.Messages
	h    *file.Handler
}

func newFixture(name, text string) *fixture {
	f := &fixture{
		docs: &docs{list: []*doc{newDoc(name, text)}},
		fs:   memFS{},
		sh:   &upper{},
		msgs: dispatcher.NewMessages(nil),
	}
	f.h = file.NewHandler(f.docs, f.msgs)
	f.h.FS = f.fs
	f.h.Shell = f.sh
	return f
}

func (f *fixture) run(t *testing.T, call dispatcher.Call) error {
	t.Helper()
	f.msgs.Reset()
	return f.h.Handle(context.Background(), call)
}

func (f *fixture) status() []string {
	var out []string
	for _, m := range f.msgs.All() {
		out = append(out, m.Text)
	}
	return out
}

func (f *fixture) text() string {
	return f.docs.Current().Buffer().Text()
}

func TestInfo(t *testing.T) {
	f := newFixture("a.txt", "one\ntwo\nthree\nfour\n")
	buf := f.docs.Current().Buffer()
	buf.SetSelections(buffer.Point(4))
	if err := f.run(t, dispatcher.NewCall(file.ActionInfo)); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{`"a.txt" 4 lines --50%--`}, f.status()); diff != "" {
		t.Errorf("info (-want +got):\n%s", diff)
	}

	buf.Insert(0, "x")
	f.docs.Current().SetName("")
	f.run(t, dispatcher.NewCall(file.ActionInfo))
	if diff := cmp.Diff([]string{`"[No Name]" [Modified] 4 lines --50%--`}, f.status()); diff != "" {
		t.Errorf("info (-want +got):\n%s", diff)
	}
}

func TestWrite(t *testing.T) {
	tests := []struct {
		name    string
		bufName string
		call    dispatcher.Call
		files   memFS
		want    memFS
		saved   bool
		err     error
	}{
		{
			name:    "own file",
			bufName: "a.txt",
			call:    dispatcher.NewCall(file.ActionWrite),
			want:    memFS{"a.txt": "one\ntwo\n"},
			saved:   true,
		},
		{
			name: "no name",
			call: dispatcher.NewCall(file.ActionWrite),
			want: memFS{},
			err:  file.ErrNoFileName,
		},
		{
			name:  "names the buffer",
			call:  dispatcher.NewCall(file.ActionWrite).With("file", "b.txt"),
			want:  memFS{"b.txt": "one\ntwo\n"},
			saved: true,
		},
		{
			name:    "other file exists",
			bufName: "a.txt",
			call:    dispatcher.NewCall(file.ActionWrite).With("file", "b.txt"),
			files:   memFS{"b.txt": "old"},
			want:    memFS{"b.txt": "old"},
			err:     file.ErrFileExists,
		},
		{
			name:    "forced over other file",
			bufName: "a.txt",
			call:    dispatcher.NewCall(file.ActionWrite).With("file", "b.txt").With("forced", true),
			files:   memFS{"b.txt": "old"},
			want:    memFS{"b.txt": "one\ntwo\n"},
		},
		{
			name:    "append a range",
			bufName: "a.txt",
			call:    dispatcher.NewCall(file.ActionWrite).With("file", "b.txt").With("append", true).With("first", 1).With("last", 1),
			files:   memFS{"b.txt": "old\n"},
			want:    memFS{"b.txt": "old\ntwo\n"},
		},
		{
			name:    "partial own file",
			bufName: "a.txt",
			call:    dispatcher.NewCall(file.ActionWrite).With("first", 0).With("last", 0),
			want:    memFS{},
			err:     file.ErrPartialWrite,
		},
		{
			name:    "range that covers the buffer",
			bufName: "a.txt",
			call:    dispatcher.NewCall(file.ActionWrite).With("first", 0).With("last", 1),
			want:    memFS{"a.txt": "one\ntwo\n"},
			saved:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.bufName, "one\ntwo\n")
			d := f.docs.list[0]
			d.saved = -1
			for k, v := range tt.files {
				f.fs[k] = v
			}
			err := f.run(t, tt.call)
			if !errors.Is(err, tt.err) {
				t.Fatalf("err = %v, want %v", err, tt.err)
			}
			if diff := cmp.Diff(tt.want, f.fs); diff != "" {
				t.Errorf("files (-want +got):\n%s", diff)
			}
			if got := !d.Modified(); got != tt.saved {
				t.Errorf("saved = %t, want %t", got, tt.saved)
			}
		})
	}
}

func TestWriteStatus(t *testing.T) {
	f := newFixture("a.txt", "one\ntwo")
	if err := f.run(t, dispatcher.NewCall(file.ActionWrite)); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{`"a.txt" 2L, 7B written`}, f.status()); diff != "" {
		t.Errorf("status (-want +got):\n%s", diff)
	}
}

func TestWriteAll(t *testing.T) {
	f := newFixture("a.txt", "a\n")
	f.docs.Open("b.txt", "b\n")
	f.docs.Open("", "scratch\n")
	for _, d := range f.docs.list {
		d.buf.Insert(0, ">")
	}
	err := f.run(t, dispatcher.NewCall(file.ActionWriteAll))
	if !errors.Is(err, file.ErrNoFileName) {
		t.Errorf("err = %v, want ErrNoFileName", err)
	}
	if diff := cmp.Diff(memFS{"a.txt": ">a\n", "b.txt": ">b\n"}, f.fs); diff != "" {
		t.Errorf("files (-want +got):\n%s", diff)
	}
}

func TestEdit(t *testing.T) {
	f := newFixture("a.txt", "one\n")
	f.fs["a.txt"] = "disk\n"
	f.fs["b.txt"] = "b\n"

	if err := f.run(t, dispatcher.NewCall(file.ActionEdit).With("file", "b.txt")); err != nil {
		t.Fatal(err)
	}
	if got := f.docs.Current().Name(); got != "b.txt" {
		t.Fatalf("current = %q", got)
	}
	if f.text() != "b\n" {
		t.Errorf("text = %q", f.text())
	}

	if err := f.run(t, dispatcher.NewCall(file.ActionEdit).With("file", "a.txt")); err != nil {
		t.Fatal(err)
	}
	if f.text() != "one\n" {
		t.Errorf(":e of an open buffer = %q, want its text kept", f.text())
	}

	f.docs.Current().Buffer().Insert(0, "x")
	if err := f.run(t, dispatcher.NewCall(file.ActionEdit)); !errors.Is(err, file.ErrUnsavedChanges) {
		t.Errorf(":e on a modified buffer: err = %v", err)
	}
	if err := f.run(t, dispatcher.NewCall(file.ActionEdit).With("forced", true)); err != nil {
		t.Fatal(err)
	}
	if f.text() != "disk\n" || f.docs.Current().Modified() {
		t.Errorf(":e! left %q modified=%t", f.text(), f.docs.Current().Modified())
	}

	if err := f.run(t, dispatcher.NewCall(file.ActionEdit).With("file", "new.txt")); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{`"new.txt" [New]`}, f.status()); diff != "" {
		t.Errorf("status (-want +got):\n%s", diff)
	}
	if len(f.docs.list) != 3 {
		t.Errorf("documents = %d, want 3", len(f.docs.list))
	}
}

func TestReadAndFilter(t *testing.T) {
	tests := []struct {
		name  string
		call  dispatcher.Call
		want  string
		caret int
	}{
		{"read file", dispatcher.NewCall(file.ActionRead).With("file", "b.txt").With("last", 0), "one\nB1\nB2\ntwo\nthree\n", 4},
		{"read at top", dispatcher.NewCall(file.ActionRead).With("file", "b.txt").With("last", -1), "B1\nB2\none\ntwo\nthree\n", 0},
		{"read command", dispatcher.NewCall(file.ActionRead).With("command", "date").With("last", 2), "one\ntwo\nthree\nout of date\n", 14},
		{"filter", dispatcher.NewCall(file.ActionFilter).With("command", "tr a-z A-Z").With("first", 1).With("last", 2), "one\nTWO\nTHREE\n", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture("a.txt", "one\ntwo\nthree\n")
			f.fs["b.txt"] = "B1\nB2\n"
			if err := f.run(t, tt.call); err != nil {
				t.Fatal(err)
			}
			if f.text() != tt.want {
				t.Errorf("text = %q, want %q", f.text(), tt.want)
			}
			if c := f.docs.Current().Buffer().Cursor(); c != tt.caret {
				t.Errorf("cursor = %d, want %d", c, tt.caret)
			}
		})
	}
}

func TestShell(t *testing.T) {
	f := newFixture("a.txt", "one\n")
	if err := f.run(t, dispatcher.NewCall(file.ActionShell).With("command", "ls")); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"out of ls"}, f.status()); diff != "" {
		t.Errorf("status (-want +got):\n%s", diff)
	}
	if err := f.run(t, dispatcher.NewCall(file.ActionShell).With("command", "false")); err == nil {
		t.Error("failing command: want error")
	}
}

func TestBuffers(t *testing.T) {
	f := newFixture("a.txt", "a\n")
	f.docs.Open("b.txt", "b\n")
	f.docs.Open("notes/c.txt", "c\n")
	ctx := context.Background()

	steps := []struct {
		call dispatcher.Call
		want string
		err  error
	}{
		{dispatcher.NewCall(file.ActionBufferNext), "a.txt", nil},
		{dispatcher.NewCall(file.ActionBufferPrev), "notes/c.txt", nil},
		{dispatcher.NewCall(file.ActionBufferPrev).With("count", 2), "a.txt", nil},
		{dispatcher.NewCall(file.ActionBufferLast), "notes/c.txt", nil},
		{dispatcher.NewCall(file.ActionBufferFirst), "a.txt", nil},
		{dispatcher.NewCall(file.ActionBuffer).With("number", 2), "b.txt", nil},
		{dispatcher.NewCall(file.ActionBuffer).With("name", "c.t"), "notes/c.txt", nil},
		{dispatcher.NewCall(file.ActionBuffer).With("name", ".txt"), "notes/c.txt", file.ErrAmbiguousBuffer},
		{dispatcher.NewCall(file.ActionBuffer).With("number", 9), "notes/c.txt", file.ErrNoSuchBuffer},
	}
	for _, s := range steps {
		err := f.h.Handle(ctx, s.call)
		if !errors.Is(err, s.err) {
			t.Errorf("%s: err = %v, want %v", s.call, err, s.err)
		}
		if got := f.docs.Current().Name(); got != s.want {
			t.Errorf("%s: current = %q, want %q", s.call, got, s.want)
		}
	}

	f.docs.list[0].buf.Insert(0, "x")
	if err := f.run(t, dispatcher.NewCall(file.ActionBuffers)); err != nil {
		t.Fatal(err)
	}
	want := []string{
		`  1   + "a.txt"                        line 1`,
		`  2     "b.txt"                        line 1`,
		`  3 %   "notes/c.txt"                  line 1`,
	}
	if diff := cmp.Diff(want, f.status()); diff != "" {
		t.Errorf(":ls (-want +got):\n%s", diff)
	}
}
