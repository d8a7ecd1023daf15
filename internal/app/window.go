package app

import (
	"context"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/cursor"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/editor"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/excmd"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/file"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/mode"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/operator"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/search"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/view"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/window"
	"github.com/dshills/vimcore/internal/ex"
	"github.com/dshills/vimcore/internal/input/key"
	imode "github.com/dshills/vimcore/internal/input/mode"
	"github.com/dshills/vimcore/internal/input/vim"
	"github.com/dshills/vimcore/internal/session"
)

// Window is one view of a document. Each window has its own key state
// machine and viewport; the session and registers are shared.
type Window struct {
	ed      *Editor
	doc     *Document
	vp      view.Viewport
	machine *vim.Machine
	router  *dispatcher.Router
	files   *file.Handler
}

func newWindow(ed *Editor, doc *Document, height int) *Window {
	w := &Window{ed: ed, vp: view.Viewport{Height: height}}
	w.machine = vim.New(ed.session, dispatcher.DispatchFunc(w.dispatch), vim.Options{
		Strict:   ed.opts.Strict,
		Logger:   ed.log,
		Builtins: ed.opts.Builtins,
		Ex:       w,
	})
	w.show(doc)
	return w
}

// Document returns the document shown in the window.
func (w *Window) Document() *Document {
	return w.doc
}

// Machine returns the window's key state machine.
func (w *Window) Machine() *vim.Machine {
	return w.machine
}

// Viewport returns the rows the window shows.
func (w *Window) Viewport() view.Viewport {
	return w.vp
}

// Router returns the dispatcher of the shown document.
func (w *Window) Router() *dispatcher.Router {
	return w.router
}

func (w *Window) dispatch(ctx context.Context, call dispatcher.Call) error {
	return w.router.Dispatch(ctx, call)
}

// show makes the window display doc, rebuilding the handlers around its
// buffer.
func (w *Window) show(doc *Document) {
	if w.doc == doc {
		return
	}
	w.doc = doc
	w.router = w.route(doc)
	w.machine.SetBuffer(doc.buf)
	w.vp.Top = 0
	w.vp.Reveal(doc.buf.RowOf(doc.buf.Cursor()))
}

func (w *Window) route(doc *Document) *dispatcher.Router {
	ed := w.ed
	buf := doc.buf
	settings := ed.session.Settings

	r := dispatcher.New(dispatcher.Config{
		RecoverFromPanic: !ed.opts.Strict,
		EnableMetrics:    ed.opts.Metrics,
		Logger:           ed.log,
	})

	srch := search.NewHandler(buf)
	srch.OnPattern = func(pattern string, forward bool) {
		ed.session.SetLastSearch(session.Search{Pattern: pattern, Forward: forward})
	}
	ops := operator.NewHandler(buf, ed.regs, srch)
	ops.ShiftWidth = func() int { return settings.Int("shiftwidth") }
	edit := editor.NewHandler(buf, ed.regs, ops, doc.hist)
	lines := excmd.NewHandler(buf, ed.regs, ops, edit, ed.out, w)
	lines.IgnoreCase = ed.ignoreCase
	modes := mode.NewHandler(buf)
	modes.AutoIndent = func() bool { return settings.Bool("autoindent") }
	scroll := view.NewHandler(buf, &w.vp)

	w.files = file.NewHandler(fileManager{ed: ed, win: w}, ed.out)
	if ed.opts.FS != nil {
		w.files.FS = ed.opts.FS
	}
	if ed.opts.Shell != nil {
		w.files.Shell = ed.opts.Shell
	}

	r.RegisterNamespace(cursor.NewHandler(buf))
	r.RegisterNamespace(cursor.NewMarkHandler(buf))
	r.RegisterNamespace(cursor.NewSelectHandler(buf))
	r.RegisterNamespace(edit)
	r.RegisterNamespace(ops)
	r.RegisterNamespace(srch)
	r.RegisterNamespace(modes)
	r.RegisterNamespace(mode.NewSelectionHandler(buf))
	r.RegisterNamespace(scroll)
	r.RegisterNamespace(lines)
	r.RegisterNamespace(w.files)
	r.RegisterNamespace(window.NewHandler(ed))

	r.OnPre(scroll.Rewrite)
	r.OnPost(func(_ context.Context, call dispatcher.Call, err error) {
		if ed.opts.Trace != nil {
			ed.opts.Trace(call, err)
		}
		if err == nil && w.doc == doc {
			w.vp.Reveal(buf.RowOf(buf.Cursor()))
		}
	})
	return r
}

// RunEx implements vim.ExRunner.
func (w *Window) RunEx(ctx context.Context, line string) error {
	return w.ed.runEx(ctx, w, line)
}

// RunParsed implements excmd.Runner.
func (w *Window) RunParsed(ctx context.Context, line *ex.ParsedCommandLine) error {
	return w.ed.runParsed(ctx, w, line)
}

// Normal implements excmd.Runner. An incomplete command left at the end
// of keys is abandoned as if <Esc> was typed.
func (w *Window) Normal(ctx context.Context, keys string, remap bool) error {
	seq, err := key.ParseSequence(keys)
	if err != nil {
		return err
	}
	if err := w.machine.Replay(ctx, seq, remap); err != nil {
		return err
	}
	switch {
	case w.machine.Mode() != imode.Normal:
		return w.machine.Replay(ctx, key.Sequence{"<Esc>"}, false)
	case !w.machine.State().IsClear():
		w.machine.Reset()
	}
	return nil
}
