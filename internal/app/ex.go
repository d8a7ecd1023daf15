package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/excmd"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/file"
	"github.com/dshills/vimcore/internal/ex"
	"github.com/dshills/vimcore/internal/ex/address"
	"github.com/dshills/vimcore/internal/session"
)

// Ex errors.
var (
	ErrNoSuchMapping    = errors.New("no such mapping")
	ErrUndefined        = errors.New("undefined variable")
	ErrNoPreviousFilter = errors.New("no previous command")
)

// coreCommand runs an Ex command the editor handles itself.
type coreCommand func(ed *Editor, ctx context.Context, w *Window, line *ex.ParsedCommandLine, call dispatcher.Call) error

var coreCommands map[string]coreCommand

func init() {
	coreCommands = map[string]coreCommand{
		"ex.map":              (*Editor).exMap,
		"ex.noremap":          (*Editor).exMap,
		"ex.unmap":            (*Editor).exUnmap,
		"ex.mapclear":         (*Editor).exMapclear,
		"ex.set":              (*Editor).exSet,
		"ex.normal":           (*Editor).exNormal,
		"ex.history":          (*Editor).exHistory,
		"ex.let":              (*Editor).exLet,
		"ex.echo":             (*Editor).exEcho,
		"ex.nohlsearch":       func(*Editor, context.Context, *Window, *ex.ParsedCommandLine, dispatcher.Call) error { return nil },
		"ex.substitute":       (*Editor).exSubstitute,
		"ex.repeatSubstitute": (*Editor).exSubstitute,
		"ex.global":           (*Editor).exGlobal,
		"ex.filter":           (*Editor).exFilter,
		"ex.quit":             (*Editor).exQuit,
		"ex.qall":             (*Editor).exQuit,
		"ex.cquit":            (*Editor).exQuit,
		"ex.wq":               (*Editor).exWriteQuit,
		"ex.xit":              (*Editor).exWriteQuit,
		"ex.wqall":            (*Editor).exWriteQuit,
		"ex.split":            (*Editor).exSplit,
		"ex.vsplit":           (*Editor).exSplit,
		"ex.new":              (*Editor).exSplit,
		"ex.vnew":             (*Editor).exSplit,
		"ex.only":             func(ed *Editor, _ context.Context, _ *Window, _ *ex.ParsedCommandLine, _ dispatcher.Call) error { return ed.Only() },
		"ex.close":            func(ed *Editor, _ context.Context, _ *Window, _ *ex.ParsedCommandLine, _ dispatcher.Call) error { return ed.Close() },
		"ex.cd":               (*Editor).exCd,
		"ex.pwd":              (*Editor).exCd,
		"ex.shell":            unsupported(ErrNotSupported),
		"ex.tabnext":          unsupported(ErrTabsUnsupported),
		"ex.tabprevious":      unsupported(ErrTabsUnsupported),
		"ex.tabedit":          unsupported(ErrTabsUnsupported),
		"ex.tabclose":         unsupported(ErrTabsUnsupported),
		"ex.tabonly":          unsupported(ErrTabsUnsupported),
		"ex.tabfirst":         unsupported(ErrTabsUnsupported),
		"ex.tablast":          unsupported(ErrTabsUnsupported),
	}
}

func unsupported(err error) coreCommand {
	return func(_ *Editor, _ context.Context, _ *Window, line *ex.ParsedCommandLine, _ dispatcher.Call) error {
		return fmt.Errorf("%w: %s", err, line.Command.Name)
	}
}

// fileActions maps the Ex commands the file handlers implement.
var fileActions = map[string]string{
	"ex.write":     file.ActionWrite,
	"ex.wall":      file.ActionWriteAll,
	"ex.edit":      file.ActionEdit,
	"ex.enew":      file.ActionNew,
	"ex.read":      file.ActionRead,
	"ex.ls":        file.ActionBuffers,
	"ex.buffer":    file.ActionBuffer,
	"ex.bnext":     file.ActionBufferNext,
	"ex.bprevious": file.ActionBufferPrev,
	"ex.bfirst":    file.ActionBufferFirst,
	"ex.blast":     file.ActionBufferLast,
}

// runEx parses and runs one command line in w. The line goes into the
// command history even when it fails.
func (ed *Editor) runEx(ctx context.Context, w *Window, line string) error {
	line = strings.TrimLeft(line, ": \t")
	if line == "" {
		return nil
	}
	ed.session.History.Add(session.HistoryCmd, line)
	parsed, err := ex.Parse(line)
	if err != nil {
		return err
	}
	if err := parsed.Validate(); err != nil {
		return err
	}
	return ed.runParsed(ctx, w, parsed)
}

// runParsed resolves the range of line against w's buffer and runs it.
func (ed *Editor) runParsed(ctx context.Context, w *Window, line *ex.ParsedCommandLine) error {
	res := ed.resolver(w)
	before := res.LastSearch()
	// A search address becomes the last search pattern.
	searched := func() {
		if after := res.LastSearch(); after != before {
			ed.session.SetLastSearchPattern(after)
		}
	}

	cmd := line.Command
	if cmd == nil {
		region, err := res.Resolve(line.Range, ex.DefaultLine)
		searched()
		if err != nil {
			return err
		}
		return w.dispatch(ctx, dispatcher.NewCall(excmd.ActionGotoLine).
			With("first", region.First).
			With("last", region.Last))
	}

	call, err := buildCall(line, res)
	searched()
	if err != nil {
		return err
	}
	if fn, ok := coreCommands[cmd.Handler]; ok {
		return fn(ed, ctx, w, line, call)
	}
	if cmd.Handler == "ex.read" && call.Args.Text("command") != "" {
		// :r !cmd is the previous command for :!! as well.
		ed.lastFilter = call.Args.Text("command")
	}
	if action, ok := fileActions[cmd.Handler]; ok {
		call.Handler = action
	}
	if cmd.Handler == "ex.file" {
		call.Handler = file.ActionInfo
		if call.Args.Text("file") != "" {
			call.Handler = file.ActionRename
		}
	}
	return w.dispatch(ctx, call)
}

func (ed *Editor) resolver(w *Window) *address.Resolver {
	s := ed.session.Settings
	opts := []address.Option{
		address.WithIgnoreCase(s.Bool("ignorecase"), s.Bool("smartcase")),
		address.WithVisual(w.machine.Mode().IsVisual()),
	}
	if last, ok := ed.session.LastSearch(); ok {
		opts = append(opts, address.WithLastSearch(last.Pattern))
	}
	return address.New(w.doc.buf, opts...)
}

// buildCall turns a parsed command into a call. The range is resolved
// into the rows "first" and "last" when the command has one, and a
// :copy or :move address into the row "dest".
func buildCall(line *ex.ParsedCommandLine, res *address.Resolver) (dispatcher.Call, error) {
	cmd := line.Command
	call := dispatcher.NewCall(cmd.Handler)
	if cmd.Addressable && (cmd.Default != ex.DefaultNone || !line.Range.IsEmpty()) {
		region, err := res.Resolve(line.Range, cmd.Default)
		if err != nil {
			return call, err
		}
		call = call.With("first", region.First).With("last", region.Last)
	}
	for k, v := range cmd.Params {
		if node, ok := v.(ex.RangeNode); ok && k == "address" {
			row, err := res.Row(node)
			if err != nil {
				return call, err
			}
			call = call.With("dest", row)
			continue
		}
		call = call.With(k, v)
	}
	if cmd.Forced {
		call = call.With("forced", true)
	}
	return call, nil
}

// exSubstitute fills in what :s and :& reuse from the last substitute
// and search before handing the call to the line handlers:
//
//	:s//x/      the last search pattern
//	:s/a/~/     ~ is the previous replacement
//	:s or :&    the last pattern and replacement; r uses the last search
//	:&&         the flags of the last substitute too
func (ed *Editor) exSubstitute(ctx context.Context, w *Window, line *ex.ParsedCommandLine, call dispatcher.Call) error {
	prev, hasPrev := ed.session.LastSubstitute()
	search, hasSearch := ed.session.LastSearch()
	flags, _ := call.Args["flags"].([]string)
	flags = slices.Clone(flags)
	keep := slices.Contains(flags, "&")
	useSearch := slices.Contains(flags, "r")
	flags = slices.DeleteFunc(flags, func(f string) bool { return f == "&" || f == "r" })

	var pattern, replacement string
	switch {
	case call.Handler == "ex.substitute" && line.Command.Params.Has("pattern"):
		pattern = call.Args.Text("pattern")
		if pattern == "" {
			if !hasSearch {
				return &address.ResolutionError{Err: address.ErrNoPreviousPattern}
			}
			pattern = search.Pattern
		}
		replacement = tildeReplace(call.Args.Text("replacement"), prev.Replacement)
	case !hasPrev:
		return &address.ResolutionError{Err: address.ErrNoPreviousPattern}
	default:
		pattern, replacement = prev.Pattern, prev.Replacement
		if useSearch && hasSearch {
			pattern = search.Pattern
		}
	}
	if keep && hasPrev {
		flags = append(slices.Clone(prev.Flags), flags...)
	}

	ed.session.SetLastSubstitute(session.Substitute{Pattern: pattern, Replacement: replacement, Flags: flags})
	ed.session.SetLastSearchPattern(pattern)
	call.Handler = excmd.ActionSubstitute
	return w.dispatch(ctx, call.With("pattern", pattern).With("replacement", replacement).With("flags", flags))
}

// tildeReplace replaces every unescaped ~ in rep with prev.
func tildeReplace(rep, prev string) string {
	if !strings.Contains(rep, "~") {
		return rep
	}
	var sb strings.Builder
	for i := 0; i < len(rep); i++ {
		switch {
		case rep[i] == '\\' && i+1 < len(rep):
			sb.WriteByte(rep[i])
			sb.WriteByte(rep[i+1])
			i++
		case rep[i] == '~':
			sb.WriteString(prev)
		default:
			sb.WriteByte(rep[i])
		}
	}
	return sb.String()
}

// exGlobal runs :global with an empty pattern as the last search.
func (ed *Editor) exGlobal(ctx context.Context, w *Window, _ *ex.ParsedCommandLine, call dispatcher.Call) error {
	pattern := call.Args.Text("pattern")
	if pattern == "" {
		last, ok := ed.session.LastSearch()
		if !ok {
			return &address.ResolutionError{Err: address.ErrNoPreviousPattern}
		}
		pattern = last.Pattern
	}
	ed.session.SetLastSearchPattern(pattern)
	return w.dispatch(ctx, call.With("pattern", pattern))
}

// exNormal runs keys once at the caret, or once per line with a range.
func (ed *Editor) exNormal(ctx context.Context, w *Window, line *ex.ParsedCommandLine, call dispatcher.Call) error {
	if !line.Range.IsEmpty() {
		return w.dispatch(ctx, call)
	}
	return w.Normal(ctx, call.Args.Text("keys"), !call.Args.Bool("forced"))
}

// exFilter runs :{range}!cmd through the lines, or :!cmd on its own. :!!
// repeats the last command.
func (ed *Editor) exFilter(ctx context.Context, w *Window, line *ex.ParsedCommandLine, call dispatcher.Call) error {
	cmd := call.Args.Text("command")
	if cmd == "" {
		if ed.lastFilter == "" {
			return ErrNoPreviousFilter
		}
		cmd = ed.lastFilter
	}
	ed.lastFilter = cmd
	call = call.With("command", cmd)
	call.Handler = file.ActionShell
	if !line.Range.IsEmpty() {
		call.Handler = file.ActionFilter
	}
	return w.dispatch(ctx, call)
}

// exQuit handles :quit, :qall and :cquit. Buffers stay loaded when their
// last window closes, so only leaving the editor checks for changes.
func (ed *Editor) exQuit(_ context.Context, _ *Window, line *ex.ParsedCommandLine, call dispatcher.Call) error {
	force := call.Args.Bool("forced")
	switch line.Command.Handler {
	case "ex.cquit":
		ed.exitCode = 1
		return ErrQuit
	case "ex.qall":
		return ed.quitAll(force)
	}
	return ed.quitWindow(force)
}

// exWriteQuit handles :wq, :x and :wqall.
func (ed *Editor) exWriteQuit(ctx context.Context, w *Window, line *ex.ParsedCommandLine, call dispatcher.Call) error {
	force := call.Args.Bool("forced")
	if line.Command.Handler == "ex.wqall" {
		if err := w.dispatch(ctx, dispatcher.NewCall(file.ActionWriteAll)); err != nil {
			return err
		}
		return ed.quitAll(force)
	}
	if line.Command.Handler == "ex.wq" || w.doc.Modified() || call.Args.Text("file") != "" {
		call.Handler = file.ActionWrite
		if err := w.dispatch(ctx, call); err != nil {
			return err
		}
	}
	return ed.quitWindow(force)
}

func (ed *Editor) quitWindow(force bool) error {
	if len(ed.windows) > 1 {
		return ed.Close()
	}
	return ed.quitAll(force)
}

func (ed *Editor) quitAll(force bool) error {
	if !force {
		for _, doc := range ed.docs.all() {
			if doc.Modified() {
				name := doc.Name()
				if name == "" {
					name = "[No Name]"
				}
				return fmt.Errorf("%w: %s", ErrUnsavedChanges, name)
			}
		}
	}
	ed.exitCode = 0
	return ErrQuit
}

// exSplit handles :split, :vsplit, :new and :vnew. The new window is
// focused and edits the file if one is given.
func (ed *Editor) exSplit(ctx context.Context, _ *Window, line *ex.ParsedCommandLine, call dispatcher.Call) error {
	name := line.Command.Handler
	if err := ed.Split(name == "ex.vsplit" || name == "ex.vnew"); err != nil {
		return err
	}
	w := ed.Window()
	path := call.Args.Text("file")
	switch {
	case path != "":
		return w.dispatch(ctx, dispatcher.NewCall(file.ActionEdit).With("file", path))
	case name == "ex.new" || name == "ex.vnew":
		return w.dispatch(ctx, dispatcher.NewCall(file.ActionNew))
	}
	return nil
}

// exCd handles :cd and :pwd. :cd without a directory goes home.
func (ed *Editor) exCd(_ context.Context, _ *Window, line *ex.ParsedCommandLine, call dispatcher.Call) error {
	if line.Command.Handler == "ex.cd" {
		dir := call.Args.Text("file")
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			dir = home
		}
		if err := os.Chdir(dir); err != nil {
			return err
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	ed.out.ReportStatus(wd)
	return nil
}

// exSet applies :set arguments. Without any it lists the options that
// differ from their defaults.
func (ed *Editor) exSet(_ context.Context, _ *Window, _ *ex.ParsedCommandLine, call dispatcher.Call) error {
	s := ed.session.Settings
	args, _ := call.Args["options"].([]string)
	if len(args) == 0 {
		for _, o := range session.Options {
			if v, _ := s.Get(o.Name); v != o.Default {
				args = append(args, o.Name+"?")
			}
		}
		if len(args) == 0 {
			return nil
		}
	}
	lines, err := s.Apply(args)
	for _, l := range lines {
		ed.out.ReportStatus(l)
	}
	return err
}

// exHistory lists a command-line history: ":history [name] [first][,last]".
func (ed *Editor) exHistory(_ context.Context, _ *Window, _ *ex.ParsedCommandLine, call dispatcher.Call) error {
	name := call.Args.Text("name")
	kinds := []session.HistoryKind{session.HistoryCmd, session.HistorySearch, session.HistoryInput}
	if name != "all" {
		kind, ok := session.ParseHistoryKind(name)
		if !ok {
			return fmt.Errorf("%w: %s", ex.ErrInvalidArgument, name)
		}
		kinds = []session.HistoryKind{kind}
	}
	first, last, err := historyRange(call.Args.Text("range"))
	if err != nil {
		return err
	}
	for _, kind := range kinds {
		ed.out.ReportStatus(fmt.Sprintf("      #  %s history", kind))
		for _, e := range ed.session.History.Range(kind, first, last) {
			ed.out.ReportStatus(fmt.Sprintf("%6d  %s", e.Number, e.Line))
		}
	}
	return nil
}

// historyRange parses "[first][,last]". A lone number selects one entry;
// a missing side is open.
func historyRange(s string) (first, last int, err error) {
	const open = 1 << 30
	if s == "" {
		return 1, open, nil
	}
	lo, hi, comma := strings.Cut(s, ",")
	num := func(t string, def int) (int, error) {
		if t == "" {
			return def, nil
		}
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0, fmt.Errorf("%w: %s", ex.ErrInvalidArgument, s)
		}
		return n, nil
	}
	if first, err = num(lo, 1); err != nil {
		return 0, 0, err
	}
	if !comma {
		return first, first, nil
	}
	last, err = num(hi, open)
	return first, last, err
}

// exLet sets a setting: ":let &sw = 4", ":let g:mapleader = ','".
func (ed *Editor) exLet(_ context.Context, _ *Window, _ *ex.ParsedCommandLine, call dispatcher.Call) error {
	return ed.session.Settings.Set(variable(call.Args.Text("name")), call.Args["value"])
}

// exEcho shows a literal, an option or a variable.
func (ed *Editor) exEcho(_ context.Context, _ *Window, _ *ex.ParsedCommandLine, call dispatcher.Call) error {
	expr := strings.TrimSpace(call.Args.Text("expr"))
	if expr == "" {
		ed.out.ReportStatus("")
		return nil
	}
	switch {
	case len(expr) >= 2 && (expr[0] == '"' || expr[0] == '\'') && expr[len(expr)-1] == expr[0]:
		if expr[0] == '"' {
			if s, err := strconv.Unquote(expr); err == nil {
				ed.out.ReportStatus(s)
				return nil
			}
		}
		ed.out.ReportStatus(expr[1 : len(expr)-1])
		return nil
	}
	if _, err := strconv.Atoi(expr); err == nil {
		ed.out.ReportStatus(expr)
		return nil
	}
	name := variable(expr)
	if _, ok := ed.session.Settings.Get(name); !ok {
		return fmt.Errorf("%w: %s", ErrUndefined, expr)
	}
	ed.out.ReportStatus(ed.session.Settings.String(name))
	return nil
}

// variable strips the option and scope prefixes of a :let name.
func variable(name string) string {
	name = strings.TrimPrefix(name, "&")
	for _, scope := range []string{"g:", "l:", "s:"} {
		name = strings.TrimPrefix(name, scope)
	}
	return name
}
