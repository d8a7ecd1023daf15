package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/vimcore/internal/app"
	"github.com/dshills/vimcore/internal/config"
	"github.com/dshills/vimcore/internal/config/watcher"
	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/engine/buffer"
	"github.com/dshills/vimcore/internal/input/key"
)

// newScreen is replaced by tests with a simulation screen.
var newScreen = tcell.NewScreen

// reloadEvent asks the screen loop to reload the configuration.
type reloadEvent struct {
	when time.Time
	path string
}

func (e *reloadEvent) When() time.Time { return e.when }

// inspector shows the buffer, the mode, pending keys, the last dispatch
// and the last message while keys are typed.
type inspector struct {
	screen tcell.Screen
	ed     *app.Editor
	reload *config.Reloader

	lastKey  key.Token
	lastCall string
	bells    int
}

func runInspect(ctx context.Context, g globals, args []string) (int, error) {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(g.stderr)
	if err := fs.Parse(args); err != nil {
		return 0, fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() > 1 {
		return 0, fmt.Errorf("%w: inspect takes at most one file", errUsage)
	}

	screen, err := newScreen()
	if err != nil {
		return 0, err
	}
	if err := screen.Init(); err != nil {
		return 0, err
	}
	defer screen.Fini()
	_, height := screen.Size()

	in := &inspector{screen: screen}
	ed, reload, err := g.editor(ctx, app.Options{
		Height: max(height-2, 1),
		Trace: func(call dispatcher.Call, err error) {
			in.lastCall = call.String()
			if err != nil {
				in.lastCall += " -> " + err.Error()
			}
		},
	})
	if err != nil {
		return 0, err
	}
	in.ed, in.reload = ed, reload
	if fs.NArg() == 1 {
		if err := ed.Open(ctx, fs.Arg(0)); err != nil {
			return 0, err
		}
	}

	if reload != nil {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			err := watcher.Watch(ctx, reload.Current().Watched(), func(ev watcher.Event) {
				_ = screen.PostEvent(&reloadEvent{when: ev.Time, path: ev.Path})
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				ed.Messages().ReportError(dispatcher.KindDispatch, "watch: "+err.Error())
			}
		}()
	}

	if err := in.loop(ctx); err != nil {
		return 0, err
	}
	return ed.ExitCode(), nil
}

// loop handles screen events until a quit command or ctx ends.
func (in *inspector) loop(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = in.screen.PostEvent(tcell.NewEventInterrupt(nil))
		case <-done:
		}
	}()
	for {
		in.draw()
		switch ev := in.screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventInterrupt:
			if ctx.Err() != nil {
				return nil
			}
		case *tcell.EventResize:
			in.screen.Sync()
		case *tcell.EventKey:
			in.lastKey = key.FromTcell(ev).Token()
			if err := in.ed.Feed(ctx, in.lastKey); errors.Is(err, app.ErrQuit) {
				return nil
			}
		case *reloadEvent:
			if _, err := in.reload.Load(); err != nil {
				in.ed.Messages().ReportError(dispatcher.KindDispatch, err.Error())
			} else {
				in.ed.Messages().ReportStatus("reloaded " + ev.path)
			}
		}
	}
}

func (in *inspector) draw() {
	s := in.screen
	s.Clear()
	width, height := s.Size()
	w := in.ed.Window()
	buf := w.Document().Buffer()
	vp := w.Viewport()

	rows := max(height-2, 0)
	cursor := buf.Cursor()
	curRow := buf.RowOf(cursor)
	for y := 0; y < rows; y++ {
		row := vp.Top + y
		if row >= buf.LineCount() {
			put(s, 0, y, width, "~", tcell.StyleDefault.Foreground(tcell.ColorBlue))
			continue
		}
		put(s, 0, y, width, buf.LineText(row), tcell.StyleDefault)
	}
	if curRow >= vp.Top && curRow < vp.Top+rows {
		line := buf.LineAtRow(curRow)
		col := uniseg.StringWidth(buf.Substr(buffer.Span{Start: line.Start, End: cursor}))
		s.ShowCursor(col, curRow-vp.Top)
	} else {
		s.HideCursor()
	}

	m := w.Machine()
	status := fmt.Sprintf(" %s | keys %s | last %s | %s",
		strings.ToUpper(m.Mode().String()), in.pending(), in.lastKey, in.lastCall)
	put(s, 0, height-2, width, status, tcell.StyleDefault.Reverse(true))
	put(s, 0, height-1, width, in.message(), tcell.StyleDefault)
	s.Show()
}

func (in *inspector) pending() string {
	st := in.ed.Window().Machine().State()
	if st.MustCollectInput() {
		return st.PendingKeys() + st.Pending()
	}
	return st.PendingKeys()
}

// message returns the newest message and rings the bell for new bells.
func (in *inspector) message() string {
	msgs := in.ed.Messages()
	if n := msgs.Bells(); n > in.bells {
		in.bells = n
		_ = in.screen.Beep()
	}
	all := msgs.All()
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].Text != "" {
			return all[i].Text
		}
	}
	return ""
}

// put writes text at x, y, clipped to width columns.
func put(s tcell.Screen, x, y, width int, text string, style tcell.Style) {
	g := uniseg.NewGraphemes(text)
	for g.Next() && x < width {
		runes := g.Runes()
		s.SetContent(x, y, runes[0], runes[1:], style)
		x += max(g.Width(), 1)
	}
}
