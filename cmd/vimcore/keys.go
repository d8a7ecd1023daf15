package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/dshills/vimcore/internal/app"
	"github.com/dshills/vimcore/internal/dispatcher"
)

// lineReporter prints messages one per line.
type lineReporter struct {
	w io.Writer
}

func (r lineReporter) ReportError(kind dispatcher.ErrorKind, message string) {
	fmt.Fprintf(r.w, "error[%s] %s\n", kind, message)
}

func (r lineReporter) ReportStatus(message string) {
	fmt.Fprintf(r.w, "status %s\n", message)
}

func (r lineReporter) Bell() {
	fmt.Fprintln(r.w, "bell")
}

// runKeys feeds key notation to an editor and prints each dispatch, each
// message and finally the mode and buffer.
func runKeys(ctx context.Context, g globals, args []string) (int, error) {
	fs := flag.NewFlagSet("keys", flag.ContinueOnError)
	fs.SetOutput(g.stderr)
	path := fs.String("file", "", "file to edit")
	text := fs.String("text", "", "initial buffer text when no file is given")
	quiet := fs.Bool("q", false, "do not print the buffer at the end")
	stats := fs.Bool("stats", false, "print per-handler call counts of the current window")
	if err := fs.Parse(args); err != nil {
		return 0, fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() == 0 {
		return 0, fmt.Errorf("%w: keys needs key notation", errUsage)
	}
	notation := strings.Join(fs.Args(), "")

	ed, _, err := g.editor(ctx, app.Options{
		Reporter: lineReporter{w: g.stdout},
		Metrics:  *stats,
		Trace: func(call dispatcher.Call, err error) {
			if err != nil {
				fmt.Fprintf(g.stdout, "dispatch %s -> %v\n", call, err)
				return
			}
			fmt.Fprintf(g.stdout, "dispatch %s\n", call)
		},
	})
	if err != nil {
		return 0, err
	}
	switch {
	case *path != "":
		if err := ed.Open(ctx, *path); err != nil {
			return 0, err
		}
	case *text != "":
		ed.NewBuffer(*text)
	}

	if err := ed.FeedKeys(ctx, notation); err != nil {
		if errors.Is(err, app.ErrQuit) {
			return ed.ExitCode(), nil
		}
		return 0, err
	}
	if *stats {
		printStats(g.stdout, ed.Window().Router().Metrics())
	}
	if !*quiet {
		w := ed.Window()
		fmt.Fprintf(g.stdout, "mode %s\n", w.Machine().Mode())
		if pending := w.Machine().State().PendingKeys(); pending != "" {
			fmt.Fprintf(g.stdout, "pending %s\n", pending)
		}
		fmt.Fprintf(g.stdout, "--- %s\n", displayName(ed.Document()))
		io.WriteString(g.stdout, ed.Document().Buffer().Text())
	}
	return 0, nil
}

func displayName(doc *app.Document) string {
	if name := doc.Name(); name != "" {
		return name
	}
	return "[No Name]"
}

func printStats(w io.Writer, m *dispatcher.Metrics) {
	for _, s := range m.Snapshot() {
		fmt.Fprintf(w, "stats %s calls=%d errors=%d avg=%s\n", s.Handler, s.Calls, s.Errors, s.Average())
	}
}
