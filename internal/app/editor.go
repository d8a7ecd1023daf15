// Package app is the editor facade around the key and Ex core. An Editor
// owns the open documents and the windows showing them; every window runs
// its own key state machine against a shared session.
//
// The Editor is the error edge of the core: failures of a key or a command
// line are reported through the Reporter with a bell, the window's pending
// state is reset, and the call returns normally. Only ErrQuit is returned.
package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"unicode"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/file"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/register"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/window"
	"github.com/dshills/vimcore/internal/input/key"
	"github.com/dshills/vimcore/internal/input/macro"
	"github.com/dshills/vimcore/internal/input/vim"
	"github.com/dshills/vimcore/internal/logging"
	"github.com/dshills/vimcore/internal/session"
)

// Options configures an Editor.
type Options struct {
	Logger *logging.Logger

	// Reporter receives messages and bells. Nil keeps them in Messages.
	Reporter dispatcher.Reporter

	// Session is shared by every window. Nil creates one.
	Session *session.State

	// Strict panics on state machine invariant violations and disables
	// panic recovery in the dispatcher.
	Strict bool

	// Metrics enables dispatcher metrics per window.
	Metrics bool

	// Height is the number of rows a window shows. Defaults to 24.
	Height int

	// FS and Shell replace the operating system for file commands.
	FS    file.FileSystem
	Shell file.Shell

	// Builtins replaces the default key tables.
	Builtins vim.Builtins

	// Trace sees every call a window dispatches, after it ran.
	Trace func(call dispatcher.Call, err error)
}

// Editor is a set of windows over a set of documents.
type Editor struct {
	opts    Options
	log     *logging.Logger
	out     dispatcher.Reporter
	msgs    *dispatcher.Messages
	session *session.State
	regs    *register.Store
	docs    documents

	windows []*Window
	cur     int

	quit       bool
	exitCode   int
	lastFilter string
}

var _ window.Manager = (*Editor)(nil)

// New creates an editor with one window on an empty buffer.
func New(opts Options) *Editor {
	if opts.Height <= 0 {
		opts.Height = 24
	}
	ed := &Editor{
		opts:    opts,
		log:     logging.OrNop(opts.Logger).WithComponent("app"),
		session: opts.Session,
		regs:    register.NewStore(),
	}
	if ed.session == nil {
		ed.session = session.New()
	}
	if opts.Reporter != nil {
		ed.out = opts.Reporter
	} else {
		ed.msgs = dispatcher.NewMessages(opts.Logger)
		ed.out = ed.msgs
	}
	if ed.session.Settings.Bool("strict") {
		ed.opts.Strict = true
	}
	ed.session.Settings.OnChange(func(name string, value any) {
		if name != "ignorecase" {
			return
		}
		on, _ := value.(bool)
		for _, doc := range ed.docs.all() {
			doc.buf.SetIgnoreCase(on)
		}
	})

	doc := ed.newDocument("", "")
	ed.windows = []*Window{newWindow(ed, doc, opts.Height)}
	return ed
}

// Session returns the shared session.
func (ed *Editor) Session() *session.State {
	return ed.session
}

// Registers returns the shared registers.
func (ed *Editor) Registers() *register.Store {
	return ed.regs
}

// Messages returns the collected messages, or nil when a Reporter was
// given.
func (ed *Editor) Messages() *dispatcher.Messages {
	return ed.msgs
}

// Window returns the current window.
func (ed *Editor) Window() *Window {
	return ed.windows[ed.cur]
}

// Windows returns the windows in layout order.
func (ed *Editor) Windows() []*Window {
	return slices.Clone(ed.windows)
}

// Document returns the document of the current window.
func (ed *Editor) Document() *Document {
	return ed.Window().doc
}

// Documents returns the buffer list.
func (ed *Editor) Documents() []*Document {
	return ed.docs.all()
}

// Quitting reports whether a quit command closed the editor.
func (ed *Editor) Quitting() bool {
	return ed.quit
}

// ExitCode is the status the host should exit with after ErrQuit.
func (ed *Editor) ExitCode() int {
	return ed.exitCode
}

func (ed *Editor) newDocument(name, text string) *Document {
	doc := newDocument(name, text, ed.session.Settings.Bool("ignorecase"))
	ed.docs.add(doc)
	return doc
}

// ignoreCase applies 'ignorecase' and 'smartcase' to pattern.
func (ed *Editor) ignoreCase(pattern string) bool {
	s := ed.session.Settings
	if !s.Bool("ignorecase") {
		return false
	}
	if s.Bool("smartcase") && hasUpper(pattern) {
		return false
	}
	return true
}

func hasUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

// Open edits path in the current window, as :edit does.
func (ed *Editor) Open(ctx context.Context, path string) error {
	w := ed.Window()
	return ed.edge(w, "edit", path, w.dispatch(ctx, dispatcher.NewCall(file.ActionEdit).With("file", path)))
}

// NewBuffer shows a new unnamed buffer holding text in the current
// window.
func (ed *Editor) NewBuffer(text string) *Document {
	w := ed.Window()
	return fileManager{ed: ed, win: w}.Open("", text).(*Document)
}

// Feed handles one typed key in the current window.
func (ed *Editor) Feed(ctx context.Context, tok key.Token) error {
	w := ed.Window()
	err := w.machine.Feed(ctx, tok)
	return ed.edge(w, "keys", string(tok), err)
}

// FeedKeys feeds keys written in key notation, one at a time. A key that
// fails is reported and the rest are still fed, as when typed.
func (ed *Editor) FeedKeys(ctx context.Context, notation string) error {
	seq, err := key.ParseSequence(notation)
	if err != nil {
		return &CommandError{Op: "keys", Source: notation, Err: err}
	}
	for _, tok := range seq {
		if err := ed.Feed(ctx, tok); err != nil {
			return err
		}
	}
	return nil
}

// Execute runs a command line in the current window as if typed after ":".
func (ed *Editor) Execute(ctx context.Context, line string) error {
	w := ed.Window()
	return ed.edge(w, "ex", line, w.RunEx(ctx, line))
}

// edge reports err and resets the window's pending state. The undo step
// is closed once the window is back out of a text entry mode.
func (ed *Editor) edge(w *Window, op, source string, err error) error {
	if err != nil && !errors.Is(err, ErrQuit) {
		kind := kindOf(err)
		if kind == dispatcher.KindInvariant {
			ed.log.Error("%s %q: %v", op, source, err)
		} else {
			ed.log.WithField("kind", kind).Debug("%s %q: %v", op, source, err)
		}
		ed.out.ReportError(kind, message(err))
		ed.out.Bell()
		w.machine.Reset()
	}
	if !w.machine.Mode().IsTextEntry() && w.machine.State().IsClear() {
		w.doc.hist.Checkpoint()
	}
	if errors.Is(err, ErrQuit) {
		ed.quit = true
		return ErrQuit
	}
	return nil
}

// Split implements window.Manager.
func (ed *Editor) Split(_ bool) error {
	w := newWindow(ed, ed.Document(), ed.opts.Height)
	w.vp.Top = ed.Window().vp.Top
	ed.cur++
	ed.windows = slices.Insert(ed.windows, ed.cur, w)
	return nil
}

// Focus implements window.Manager. Windows are kept in one row, so left
// and up go to the previous window and right and down to the next.
func (ed *Editor) Focus(dir window.Direction) error {
	next := ed.cur + 1
	if dir == window.DirLeft || dir == window.DirUp {
		next = ed.cur - 1
	}
	if next < 0 || next >= len(ed.windows) {
		return nil
	}
	ed.cur = next
	return nil
}

// FocusIndex implements window.Manager.
func (ed *Editor) FocusIndex(index int) error {
	if index < 0 || index >= len(ed.windows) {
		return fmt.Errorf("no window %d", index+1)
	}
	ed.cur = index
	return nil
}

// Close implements window.Manager.
func (ed *Editor) Close() error {
	if len(ed.windows) <= 1 {
		return window.ErrLastWindow
	}
	ed.windows = slices.Delete(ed.windows, ed.cur, ed.cur+1)
	ed.cur = min(ed.cur, len(ed.windows)-1)
	return nil
}

// Only implements window.Manager.
func (ed *Editor) Only() error {
	ed.windows = []*Window{ed.Window()}
	ed.cur = 0
	return nil
}

// Count implements window.Manager.
func (ed *Editor) Count() int {
	return len(ed.windows)
}

// Current implements window.Manager.
func (ed *Editor) Current() int {
	return ed.cur
}

// shown reports how many windows show doc.
func (ed *Editor) shown(doc *Document) int {
	n := 0
	for _, w := range ed.windows {
		if w.doc == doc {
			n++
		}
	}
	return n
}

// SaveMacros writes the macro registers to path.
func (ed *Editor) SaveMacros(path string) error {
	return macro.Save(ed.session.Macros, path)
}

// LoadMacros reads macro registers saved by SaveMacros.
func (ed *Editor) LoadMacros(path string) error {
	return macro.Load(ed.session.Macros, path)
}
