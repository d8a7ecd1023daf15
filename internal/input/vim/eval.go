package vim

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/input/key"
	"github.com/dshills/vimcore/internal/input/macro"
	"github.com/dshills/vimcore/internal/input/mode"
	"github.com/dshills/vimcore/internal/session"
)

// pending is the part of InputState translate reads.
type pending struct {
	mode        mode.Mode
	count       int
	hasCount    bool
	register    rune
	actionInput string
	motionInput string
}

func (m *Machine) eval(ctx context.Context) error {
	st := m.state
	p := pending{
		mode:        st.Mode(),
		count:       st.Count(),
		hasCount:    st.HasCount(),
		register:    st.Register,
		actionInput: st.ActionInput,
		motionInput: st.MotionInput,
	}
	action, motion := st.Action, st.Motion
	keys := st.keys.Clone()

	// Commands the core runs itself. State is reset first because they
	// feed keys back through the machine.
	switch a := action.(type) {
	case RecordMacro:
		st.Reset()
		return m.toggleRecording(p.actionInput)
	case PlayMacro:
		st.Reset()
		return m.playMacro(ctx, p.actionInput, p.count)
	case RepeatLast:
		st.Reset()
		return m.repeatLast(ctx, p.count, p.hasCount)
	case CommandLine:
		st.Reset()
		if p.mode.IsVisual() {
			// Leaving visual mode sets '< and '> for the command line.
			m.setMode(mode.Normal)
			if err := m.dispatch(ctx, dispatcher.NewCall("mode.normal").With("from", p.mode.String())); err != nil {
				return m.fail(err)
			}
		}
		return m.runEx(ctx, p.actionInput)
	case ExCommand:
		st.Reset()
		return m.runEx(ctx, a.Line)
	}

	call, err := translate(action, motion, p, m.session)
	if err != nil {
		return m.fail(err)
	}
	m.remember(motion, p)

	next := nextMode(action, p.mode)
	var entry *macro.RepeatEntry
	if action != nil && repeatable(action) {
		entry = m.repeatEntry(call, keys, p)
	}

	st.Reset()
	m.setMode(next)
	if err := m.dispatch(ctx, call); err != nil {
		return err
	}

	if entry != nil {
		if entry.Kind == macro.RepeatKeys && (next == mode.Insert || next == mode.Replace) {
			m.insert = &insertCapture{entry: *entry}
		} else {
			m.session.Repeat.Record(*entry)
		}
	}
	return nil
}

// translate turns the pending action and motion into one call. An
// operator with a motion receives the motion call as its "motion"
// argument.
func translate(action, motion Descriptor, p pending, sess *session.State) (dispatcher.Call, error) {
	visual := p.mode.IsVisual()

	if action == nil {
		call, err := motionCall(motion, p.count, p.hasCount, p.motionInput, sess)
		if err != nil {
			return dispatcher.Call{}, err
		}
		if visual {
			call = call.With("extend", true)
		}
		return call, nil
	}

	var call dispatcher.Call
	switch a := action.(type) {
	case Operator:
		if motion == nil {
			call = dispatcher.NewCall(a.Handler).With("count", p.count).With("visual", p.mode.String())
			if a.Linewise || p.mode == mode.VisualLine {
				call = call.With("linewise", true)
			}
			break
		}
		mc, err := motionCall(motion, p.count, p.hasCount, p.motionInput, sess)
		if err != nil {
			return dispatcher.Call{}, err
		}
		call = dispatcher.NewCall(a.Handler).With("count", 1).With("motion", mc)
	case Action:
		call = dispatcher.NewCall(a.Handler).With("count", p.count)
		if a.Arg != "" {
			call = call.With(a.Arg, inputRune(p.actionInput))
		}
		if visual {
			call = call.With("visual", p.mode.String())
		}
	default:
		return dispatcher.Call{}, &InvariantError{Op: "translate", Mode: p.mode, Err: fmt.Errorf("%w: %s", ErrWrongMode, action)}
	}
	if p.register != 0 {
		call = call.With("register", p.register)
	}
	return call, nil
}

func motionCall(d Descriptor, count int, hasCount bool, input string, sess *session.State) (dispatcher.Call, error) {
	switch mo := d.(type) {
	case Motion:
		handler := mo.Handler
		if hasCount && mo.Counted != "" {
			handler = mo.Counted
		}
		call := dispatcher.NewCall(handler).With("count", count)
		if mo.Linewise {
			call = call.With("linewise", true)
		}
		if mo.Inclusive {
			call = call.With("inclusive", true)
		}
		if mo.Arg != "" {
			call = call.With(mo.Arg, inputRune(input))
		}
		return call, nil

	case CharSearch:
		return charSearchCall(session.CharSearch{Char: inputRune(input), Forward: mo.Forward, Till: mo.Till}, count), nil

	case RepeatCharSearch:
		last, ok := sess.LastCharSearch()
		if !ok {
			return dispatcher.Call{}, ErrNoPreviousCharFind
		}
		if mo.Reverse {
			last.Forward = !last.Forward
		}
		return charSearchCall(last, count).With("repeat", true), nil

	case Search:
		pattern, offset := splitSearch(input, mo.Forward)
		if pattern == "" {
			last, ok := sess.LastSearch()
			if !ok || last.Pattern == "" {
				return dispatcher.Call{}, ErrNoPreviousSearch
			}
			pattern = last.Pattern
		}
		handler := "search.backward"
		if mo.Forward {
			handler = "search.forward"
		}
		call := dispatcher.NewCall(handler).With("count", count).With("pattern", pattern)
		if offset != "" {
			call = call.With("offset", offset)
		}
		return call, nil

	case RepeatSearch:
		last, ok := sess.LastSearch()
		if !ok || last.Pattern == "" {
			return dispatcher.Call{}, ErrNoPreviousSearch
		}
		handler := "search.next"
		if mo.Reverse {
			handler = "search.prev"
		}
		call := dispatcher.NewCall(handler).With("count", count).
			With("pattern", last.Pattern).
			With("forward", last.Forward != mo.Reverse)
		if last.Offset != "" {
			call = call.With("offset", last.Offset)
		}
		return call, nil
	}
	return dispatcher.Call{}, fmt.Errorf("%w: no motion", ErrWrongMode)
}

func charSearchCall(cs session.CharSearch, count int) dispatcher.Call {
	var handler string
	switch {
	case cs.Forward && cs.Till:
		handler = "cursor.tillChar"
	case cs.Forward:
		handler = "cursor.findChar"
	case cs.Till:
		handler = "cursor.tillCharBack"
	default:
		handler = "cursor.findCharBack"
	}
	call := dispatcher.NewCall(handler).With("count", count).With("char", cs.Char)
	if cs.Forward {
		call = call.With("inclusive", true)
	}
	return call
}

// splitSearch splits "pat/e" into the pattern and the offset after the
// first unescaped delimiter.
func splitSearch(input string, forward bool) (pattern, offset string) {
	delim := byte('?')
	if forward {
		delim = '/'
	}
	for i := 0; i < len(input); i++ {
		switch input[i] {
		case '\\':
			i++
		case delim:
			return input[:i], input[i+1:]
		}
	}
	return input, ""
}

func inputRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

// remember stores the session side of a motion: the last search and the
// last character search.
func (m *Machine) remember(motion Descriptor, p pending) {
	switch mo := motion.(type) {
	case CharSearch:
		m.session.SetLastCharSearch(session.CharSearch{Char: inputRune(p.motionInput), Forward: mo.Forward, Till: mo.Till})
	case Search:
		pattern, offset := splitSearch(p.motionInput, mo.Forward)
		if pattern == "" {
			if last, ok := m.session.LastSearch(); ok {
				pattern = last.Pattern
			}
		}
		m.session.SetLastSearch(session.Search{Pattern: pattern, Forward: mo.Forward, Offset: offset})
	}
}

// nextMode is the mode after action ran in md.
func nextMode(action Descriptor, md mode.Mode) mode.Mode {
	switch a := action.(type) {
	case Action:
		if a.NextMode != mode.Unknown {
			return a.NextMode
		}
	case Operator:
		if a.Insert {
			return mode.Insert
		}
		return mode.Normal
	}
	if md == mode.OperatorPending {
		return mode.Normal
	}
	return md
}

func (m *Machine) repeatEntry(call dispatcher.Call, keys key.Sequence, p pending) *macro.RepeatEntry {
	if p.mode.IsVisual() {
		return &macro.RepeatEntry{
			Kind:    macro.RepeatCommand,
			Handler: call.Handler,
			Args:    call.Args,
			Mode:    p.mode,
			Visual:  m.snapshot(p.mode),
		}
	}
	args := map[string]any{}
	if p.hasCount {
		args["count"] = p.count
	}
	if p.register != 0 {
		args["register"] = p.register
	}
	return &macro.RepeatEntry{Kind: macro.RepeatKeys, Keys: keys, Args: args, Mode: p.mode}
}

func (m *Machine) snapshot(md mode.Mode) *macro.VisualSnapshot {
	snap := &macro.VisualSnapshot{Mode: md, Lines: 1}
	if m.buf == nil {
		return snap
	}
	sels := m.buf.CurrentSelections()
	if len(sels) == 0 {
		return snap
	}
	u := sels[0].Normalize()
	for _, s := range sels[1:] {
		u = u.Union(s.Normalize())
	}
	last := u.End
	if last > u.Start {
		last--
	}
	snap.Lines = m.buf.RowOf(last) - m.buf.RowOf(u.Start) + 1
	snap.Selections = sels
	return snap
}

// repeatLast replays the last repeatable command. A count replaces the
// recorded one.
func (m *Machine) repeatLast(ctx context.Context, count int, hasCount bool) error {
	e, ok := m.session.Repeat.Last()
	if !ok {
		return m.fail(ErrNothingToRepeat)
	}

	if e.Kind == macro.RepeatCommand {
		call := dispatcher.Call{Handler: e.Handler, Args: dispatcher.Args{}}
		for k, v := range e.Args {
			call.Args[k] = v
		}
		if hasCount {
			call = call.With("count", count)
		}
		if e.Visual != nil {
			call = call.With("visualLines", e.Visual.Lines)
		}
		return m.dispatch(ctx, call)
	}

	var seq key.Sequence
	if r, ok := e.Args["register"].(rune); ok {
		seq = append(seq, `"`, key.Token(string(r)))
	}
	if !hasCount {
		count, hasCount = e.Args["count"].(int)
	}
	if hasCount {
		for _, c := range strconv.Itoa(count) {
			seq = append(seq, key.Token(string(c)))
		}
	}
	seq = append(seq, e.Keys...)
	return m.Replay(ctx, seq, false)
}

func (m *Machine) toggleRecording(input string) error {
	rec := m.session.Macros
	if rec.IsRecording() {
		reg := rec.Recording()
		keys := rec.Stop()
		m.log.Debug("recorded @%c: %s", reg, keys)
		return nil
	}
	if err := rec.Start(inputRune(input)); err != nil {
		return m.fail(err)
	}
	return nil
}

func (m *Machine) playMacro(ctx context.Context, input string, count int) error {
	if err := m.enter(); err != nil {
		return err
	}
	defer m.leave()
	err := m.player.Play(inputRune(input), count, func(tok key.Token) error {
		return m.feed(ctx, tok, true, true)
	})
	if err != nil {
		if IsInvariant(err) {
			return err
		}
		return m.fail(err)
	}
	return nil
}

func (m *Machine) runEx(ctx context.Context, line string) error {
	line = strings.TrimLeft(line, ": ")
	if m.ex != nil {
		return m.ex.RunEx(ctx, line)
	}
	return m.dispatch(ctx, dispatcher.NewCall("ex.commandLine").With("line", line))
}
