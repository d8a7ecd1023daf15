package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/engine/buffer"
)

// Action names for file operations.
const (
	ActionInfo        = "file.info"        // <C-g>, :file
	ActionWrite       = "file.write"       // :w, :w >>, :w !cmd
	ActionWriteAll    = "file.writeAll"    // :wall
	ActionEdit        = "file.edit"        // :e, :e!
	ActionNew         = "file.new"         // :enew
	ActionRead        = "file.read"        // :r, :r !cmd
	ActionRename      = "file.rename"      // :file name
	ActionFilter      = "file.filter"      // :{range}!cmd
	ActionShell       = "file.shell"       // :!cmd, :shell
	ActionBuffers     = "file.buffers"     // :ls
	ActionBuffer      = "file.buffer"      // :b
	ActionBufferNext  = "file.bufferNext"  // :bn
	ActionBufferPrev  = "file.bufferPrev"  // :bp
	ActionBufferFirst = "file.bufferFirst" // :bf
	ActionBufferLast  = "file.bufferLast"  // :bl
)

// Errors.
var (
	ErrNoFileName      = errors.New("no file name")
	ErrUnsavedChanges  = errors.New("no write since last change (add ! to override)")
	ErrFileExists      = errors.New("file exists (add ! to override)")
	ErrPartialWrite    = errors.New("use ! to write partial buffer")
	ErrNoSuchBuffer    = errors.New("no such buffer")
	ErrAmbiguousBuffer = errors.New("more than one match")
)

// report is the line count above which filters say what they did.
const report = 2

// Document is an open buffer and the file it belongs to.
type Document interface {
	Buffer() *buffer.Memory
	// Name is the file path, empty for a buffer without one.
	Name() string
	SetName(path string)
	// Modified reports changes since the last write or load.
	Modified() bool
	MarkSaved()
}

// Manager owns the open documents.
type Manager interface {
	Current() Document
	Documents() []Document
	Find(path string) (Document, bool)
	// Open adds a document for path holding text and makes it current.
	Open(path, text string) Document
	// New adds an empty document without a name and makes it current.
	New() Document
	Switch(doc Document)
}

type action func(h *Handler, ctx context.Context, call dispatcher.Call) error

var actions = map[string]action{
	ActionInfo:        (*Handler).info,
	ActionWrite:       (*Handler).write,
	ActionWriteAll:    (*Handler).writeAll,
	ActionEdit:        (*Handler).edit,
	ActionNew:         (*Handler).newBuffer,
	ActionRead:        (*Handler).read,
	ActionRename:      (*Handler).rename,
	ActionFilter:      (*Handler).filter,
	ActionShell:       (*Handler).shell,
	ActionBuffers:     (*Handler).buffers,
	ActionBuffer:      (*Handler).buffer,
	ActionBufferNext:  (*Handler).cycle,
	ActionBufferPrev:  (*Handler).cycle,
	ActionBufferFirst: (*Handler).cycle,
	ActionBufferLast:  (*Handler).cycle,
}

// Handler runs file operations on the documents of a Manager.
type Handler struct {
	docs Manager
	out  dispatcher.Reporter

	// FS defaults to OS.
	FS FileSystem
	// Shell defaults to Sh.
	Shell Shell
}

// NewHandler creates a file handler.
func NewHandler(docs Manager, out dispatcher.Reporter) *Handler {
	return &Handler{docs: docs, out: out, FS: OS{}, Shell: Sh{}}
}

// Namespace implements dispatcher.Namespace.
func (h *Handler) Namespace() string {
	return "file"
}

// CanHandle implements dispatcher.Namespace.
func (h *Handler) CanHandle(name string) bool {
	_, ok := actions[name]
	return ok
}

// Handle implements dispatcher.Namespace.
func (h *Handler) Handle(ctx context.Context, call dispatcher.Call) error {
	fn, ok := actions[call.Handler]
	if !ok {
		return fmt.Errorf("%w: %s", dispatcher.ErrNoHandler, call.Handler)
	}
	return fn(h, ctx, call)
}

// info reports the name, state and size of the current buffer and where
// the caret is in it.
func (h *Handler) info(_ context.Context, _ dispatcher.Call) error {
	doc := h.docs.Current()
	buf := doc.Buffer()
	name := doc.Name()
	if name == "" {
		name = "[No Name]"
	}
	mod := ""
	if doc.Modified() {
		mod = " [Modified]"
	}
	if buf.Size() == 0 {
		h.out.ReportStatus(fmt.Sprintf("%q%s --No lines in buffer--", name, mod))
		return nil
	}
	n := buf.LineCount()
	pct := (buf.RowOf(buf.Cursor()) + 1) * 100 / n
	h.out.ReportStatus(fmt.Sprintf("%q%s %d %s --%d%%--", name, mod, n, plural(n, "line", "lines"), pct))
	return nil
}

// write writes the range, the whole buffer by default, to a file or to the
// input of a command. Writing the whole buffer to its own file marks it
// saved.
func (h *Handler) write(ctx context.Context, call dispatcher.Call) error {
	doc := h.docs.Current()
	buf := doc.Buffer()
	first, last, whole := rows(buf, call)
	text := buf.Substr(lineSpan(buf, first, last))

	if cmd := call.Args.Text("command"); cmd != "" {
		out, err := h.Shell.Run(ctx, cmd, text)
		h.reportLines(out)
		return err
	}

	path := call.Args.Text("file")
	force := call.Args.Bool("forced")
	appendTo := call.Args.Bool("append")
	switch {
	case path == "" && doc.Name() == "":
		return ErrNoFileName
	case path == "":
		path = doc.Name()
	case doc.Name() == "":
		doc.SetName(path)
	}
	own := path == doc.Name()
	if !force && !appendTo {
		if !own && h.FS.Exists(path) {
			return fmt.Errorf("%w: %s", ErrFileExists, path)
		}
		if own && !whole {
			return ErrPartialWrite
		}
	}

	if err := h.FS.WriteFile(path, []byte(text), appendTo); err != nil {
		return err
	}
	if own && whole && !appendTo {
		doc.MarkSaved()
	}
	verb := "written"
	if appendTo {
		verb = "appended"
	}
	h.out.ReportStatus(fmt.Sprintf("%q %dL, %dB %s", path, countLines(text), len(text), verb))
	return nil
}

// writeAll writes every modified buffer that has a name.
func (h *Handler) writeAll(_ context.Context, _ dispatcher.Call) error {
	var errs []error
	for i, doc := range h.docs.Documents() {
		if !doc.Modified() {
			continue
		}
		if doc.Name() == "" {
			errs = append(errs, fmt.Errorf("%w for buffer %d", ErrNoFileName, i+1))
			continue
		}
		if err := h.FS.WriteFile(doc.Name(), []byte(doc.Buffer().Text()), false); err != nil {
			errs = append(errs, err)
			continue
		}
		doc.MarkSaved()
	}
	return errors.Join(errs...)
}

// edit opens a file, or reloads the current one when no file is given.
func (h *Handler) edit(ctx context.Context, call dispatcher.Call) error {
	path := call.Args.Text("file")
	cur := h.docs.Current()
	if path == "" || path == cur.Name() {
		return h.reload(ctx, cur, call.Args.Bool("forced"))
	}
	if doc, ok := h.docs.Find(path); ok {
		h.docs.Switch(doc)
		return h.info(ctx, call)
	}
	data, err := h.FS.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		h.docs.Open(path, "")
		h.out.ReportStatus(fmt.Sprintf("%q [New]", path))
		return nil
	case err != nil:
		return err
	}
	h.docs.Open(path, string(data))
	return h.info(ctx, call)
}

func (h *Handler) reload(ctx context.Context, doc Document, force bool) error {
	if doc.Name() == "" {
		return ErrNoFileName
	}
	if doc.Modified() && !force {
		return ErrUnsavedChanges
	}
	data, err := h.FS.ReadFile(doc.Name())
	if err != nil {
		return err
	}
	buf := doc.Buffer()
	row := buf.RowOf(buf.Cursor())
	if _, err := buf.Replace(buffer.Span{Start: 0, End: buf.Size()}, string(data)); err != nil {
		return err
	}
	buf.SetSelections(buffer.Point(buf.LineAtRow(row).Start))
	doc.MarkSaved()
	return h.info(ctx, dispatcher.Call{})
}

func (h *Handler) newBuffer(_ context.Context, _ dispatcher.Call) error {
	h.docs.New()
	return nil
}

// read inserts a file, or the output of a command, below the last line of
// the range.
func (h *Handler) read(ctx context.Context, call dispatcher.Call) error {
	doc := h.docs.Current()
	var text string
	if cmd := call.Args.Text("command"); cmd != "" {
		out, err := h.Shell.Run(ctx, cmd, "")
		if err != nil {
			return err
		}
		text = out
	} else {
		path := call.Args.Text("file")
		if path == "" {
			path = doc.Name()
		}
		if path == "" {
			return ErrNoFileName
		}
		data, err := h.FS.ReadFile(path)
		if err != nil {
			return err
		}
		text = string(data)
	}
	if text == "" {
		return nil
	}

	buf := doc.Buffer()
	after := buf.RowOf(buf.Cursor())
	if last, ok := call.Args.Int("last"); ok {
		after = min(last, buf.LineCount()-1)
	}
	first, err := insertLines(buf, after, text)
	if err != nil {
		return err
	}
	buf.SetSelections(buffer.Point(buf.LineAtRow(first).Start))
	return nil
}

// rename gives the current buffer a new file name. Without one it reports
// like <C-g>.
func (h *Handler) rename(ctx context.Context, call dispatcher.Call) error {
	if path := call.Args.Text("file"); path != "" {
		h.docs.Current().SetName(path)
	}
	return h.info(ctx, call)
}

// filter replaces the lines of the range with the output of a command
// that reads them.
func (h *Handler) filter(ctx context.Context, call dispatcher.Call) error {
	buf := h.docs.Current().Buffer()
	first, last, _ := rows(buf, call)
	s := lineSpan(buf, first, last)
	in := buf.Substr(s)
	out, err := h.Shell.Run(ctx, call.Args.Text("command"), in)
	if err != nil {
		return err
	}
	if strings.HasSuffix(in, "\n") && out != "" && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	if _, err := buf.Replace(s, out); err != nil {
		return err
	}
	buf.SetSelections(buffer.Point(buf.LineAtRow(first).Start))
	if n := last - first + 1; n > report {
		h.out.ReportStatus(fmt.Sprintf("%d lines filtered", n))
	}
	return nil
}

// shell runs a command and reports its output.
func (h *Handler) shell(ctx context.Context, call dispatcher.Call) error {
	out, err := h.Shell.Run(ctx, call.Args.Text("command"), "")
	h.reportLines(out)
	return err
}

func (h *Handler) reportLines(out string) {
	if out == "" {
		return
	}
	for _, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		h.out.ReportStatus(line)
	}
}

// rows returns the range of call, the whole buffer by default, and
// whether it covers every line.
func rows(buf *buffer.Memory, call dispatcher.Call) (first, last int, whole bool) {
	top := buf.LineCount() - 1
	first, ok1 := call.Args.Int("first")
	last, ok2 := call.Args.Int("last")
	if !ok1 || !ok2 {
		return 0, top, true
	}
	first, last = max(0, min(first, top)), max(0, min(last, top))
	return first, last, first == 0 && last == top
}

func lineSpan(buf *buffer.Memory, first, last int) buffer.Span {
	return buffer.Span{Start: buf.LineAtRow(first).Start, End: buf.FullLineAtRow(last).End}
}

// insertLines inserts text as whole lines below row after, -1 for the
// top, and returns the row of the first one.
func insertLines(buf *buffer.Memory, after int, text string) (int, error) {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	at := 0
	if after >= 0 {
		at = buf.FullLineAtRow(after).End
		if at == buf.Size() && !strings.HasSuffix(buf.Text(), "\n") {
			text = "\n" + strings.TrimSuffix(text, "\n")
		}
	}
	if _, err := buf.Insert(at, text); err != nil {
		return 0, err
	}
	return after + 1, nil
}

func countLines(s string) int {
	n := strings.Count(s, "\n")
	if s != "" && !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
