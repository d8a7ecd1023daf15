package vim

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/engine/buffer"
	"github.com/dshills/vimcore/internal/input/key"
	"github.com/dshills/vimcore/internal/input/macro"
	"github.com/dshills/vimcore/internal/input/mode"
	"github.com/dshills/vimcore/internal/logging"
	"github.com/dshills/vimcore/internal/session"
)

// ExRunner runs a command line typed after ":".
type ExRunner interface {
	RunEx(ctx context.Context, line string) error
}

// Options configures a Machine.
type Options struct {
	// Strict panics on invariant violations instead of resetting. The
	// "strict" setting has the same effect.
	Strict bool

	Logger *logging.Logger

	// Builtins replaces the default command tables.
	Builtins Builtins

	// Ex runs ":" command lines. Without it they are dispatched as
	// ex.commandLine calls.
	Ex ExRunner

	// Buffer is read to snapshot visual selections for ".".
	Buffer buffer.Buffer
}

// Machine is the key state machine of one view. It is not safe for
// concurrent use; the session it shares with other views is.
type Machine struct {
	state    *InputState
	session  *session.State
	resolver *Resolver
	disp     dispatcher.Dispatcher
	player   *macro.Player
	ex       ExRunner
	buf      buffer.Buffer
	log      *logging.Logger
	strict   bool

	depth  int
	insert *insertCapture
}

// insertCapture collects the keys typed in Insert mode after a repeatable
// command, so "." can replay the insertion.
type insertCapture struct {
	entry macro.RepeatEntry
	keys  key.Sequence
}

// New creates a machine in Normal mode.
func New(sess *session.State, d dispatcher.Dispatcher, opts Options) *Machine {
	builtins := opts.Builtins
	if builtins == nil {
		builtins = DefaultBuiltins()
	}
	return &Machine{
		state:    NewInputState(),
		session:  sess,
		resolver: NewResolver(sess.Mappings, builtins),
		disp:     d,
		player:   macro.NewPlayer(sess.Macros),
		ex:       opts.Ex,
		buf:      opts.Buffer,
		log:      logging.OrNop(opts.Logger).WithComponent("vim"),
		strict:   opts.Strict,
	}
}

// State returns the pending command state.
func (m *Machine) State() *InputState {
	return m.state
}

// Mode returns the current mode.
func (m *Machine) Mode() mode.Mode {
	return m.state.Mode()
}

// Resolver returns the resolver used for key lookups.
func (m *Machine) Resolver() *Resolver {
	return m.resolver
}

// SetEx sets the runner for ":" command lines.
func (m *Machine) SetEx(ex ExRunner) {
	m.ex = ex
}

// SetBuffer sets the buffer visual selections are read from.
func (m *Machine) SetBuffer(b buffer.Buffer) {
	m.buf = b
}

// Feed processes one typed key and evaluates the command it completes.
// On error the pending state is reset to Normal mode.
func (m *Machine) Feed(ctx context.Context, tok key.Token) error {
	return m.typed(ctx, tok, true)
}

// Process is Feed without evaluation: a completed command stays pending
// until Eval.
func (m *Machine) Process(ctx context.Context, tok key.Token) error {
	return m.typed(ctx, tok, false)
}

// FeedKeys feeds typed keys in order and stops at the first error.
func (m *Machine) FeedKeys(ctx context.Context, seq key.Sequence) error {
	for _, tok := range seq {
		if err := m.Feed(ctx, tok); err != nil {
			return err
		}
	}
	return nil
}

func (m *Machine) typed(ctx context.Context, tok key.Token, evalNow bool) error {
	rec := m.session.Macros
	wasRecording := rec.IsRecording()
	err := m.feed(ctx, tok, true, evalNow)
	if wasRecording && rec.IsRecording() {
		rec.Record(tok)
	}
	return err
}

// Replay feeds seq as replayed keys: they are not recorded into a macro
// and the nesting depth is bounded by the maxreplaydepth setting. remap
// false disables user mappings.
func (m *Machine) Replay(ctx context.Context, seq key.Sequence, remap bool) error {
	if err := m.enter(); err != nil {
		return err
	}
	defer m.leave()
	for _, tok := range seq {
		if err := m.feed(ctx, tok, remap, true); err != nil {
			return err
		}
	}
	return nil
}

func (m *Machine) enter() error {
	m.depth++
	if limit := m.session.Settings.Int("maxreplaydepth"); limit > 0 && m.depth > limit {
		m.depth--
		return m.invariant(&InvariantError{Op: "replay", Mode: m.Mode(), Err: ErrReplayDepth})
	}
	return nil
}

func (m *Machine) leave() {
	m.depth--
}

// Eval evaluates the pending command if it is runnable.
func (m *Machine) Eval(ctx context.Context) error {
	ok, err := m.state.Runnable()
	if err != nil {
		return m.invariant(err)
	}
	if !ok {
		return nil
	}
	return m.eval(ctx)
}

// Reset cancels the pending command and returns to Normal mode without
// dispatching anything.
func (m *Machine) Reset() {
	m.state.Reset()
	m.insert = nil
	m.setMode(mode.Normal)
}

func (m *Machine) feed(ctx context.Context, tok key.Token, remap, evalNow bool) error {
	st := m.state
	if tok == "<Esc>" {
		return m.escape(ctx)
	}

	if st.captureRegister {
		st.captureRegister = false
		r, ok := tok.Char()
		if !ok || !validRegister(r) {
			return m.fail(fmt.Errorf("%w: %s", ErrInvalidRegister, tok))
		}
		st.Register = r
		st.Partial = nil
		return nil
	}

	if st.collect != NoInput {
		return m.collectInput(ctx, tok, evalNow)
	}

	md := st.Mode()
	switch md {
	case mode.Insert, mode.Replace, mode.Select:
		return m.feedText(ctx, tok, remap, evalNow)
	}

	if tok.IsDigit() && len(st.Partial) == 0 {
		digit := string(tok)
		switch {
		case md == mode.OperatorPending:
			if digit != "0" || st.MotionCount != "" {
				st.MotionCount += digit
				return nil
			}
		case st.Action == nil:
			if digit != "0" || st.ActionCount != "" {
				st.ActionCount += digit
				return nil
			}
		}
	}

	st.Partial = append(st.Partial, tok)
	res := m.resolver.Resolve(md, st.Partial, remap)
	if res.Kind == NotFound && md == mode.OperatorPending {
		res = m.resolvePending(st.Partial, remap)
	}

	switch res.Kind {
	case Incomplete:
		m.hold(res)
		return nil
	case NotFound:
		if st.exact != nil {
			return m.runExact(ctx, remap, evalNow)
		}
		return m.fail(&NotFoundError{Mode: md, Keys: st.Partial.Clone()})
	}
	return m.apply(ctx, res, evalNow)
}

// hold remembers the exact match of an Incomplete resolution. An earlier
// one is kept when the longer sequence has none.
func (m *Machine) hold(res Resolution) {
	if res.Exact != nil {
		m.state.exact = res.Exact
		m.state.exactLen = len(m.state.Partial)
	}
}

// runExact runs the held exact match after a key ruled out the longer
// mappings, then feeds the keys typed after the match again.
func (m *Machine) runExact(ctx context.Context, remap, evalNow bool) error {
	st := m.state
	res, n := *st.exact, st.exactLen
	rest := st.Partial[n:].Clone()
	st.Partial = st.Partial[:n:n]
	st.exact, st.exactLen = nil, 0
	if err := m.apply(ctx, res, evalNow); err != nil {
		return err
	}
	for _, t := range rest {
		if err := m.feed(ctx, t, remap, evalNow); err != nil {
			return err
		}
	}
	return nil
}

// apply runs a Mapped or Complete resolution of st.Partial.
func (m *Machine) apply(ctx context.Context, res Resolution, evalNow bool) error {
	st := m.state
	st.exact, st.exactLen = nil, 0
	if res.Kind == Mapped {
		st.Partial = nil
		return m.Replay(ctx, res.Mapping.RHS, false)
	}
	switch st.Mode() {
	case mode.Insert, mode.Replace, mode.Select:
		m.captureInsert(st.Partial...)
	}
	return m.setCommand(ctx, res.Command, evalNow)
}

// resolvePending handles a sequence the operator-pending table does not
// know: the operator's own keys, or the last of them, make the line motion
// of a doubled operator (dd, g~~, gUgU).
func (m *Machine) resolvePending(seq key.Sequence, remap bool) Resolution {
	op, ok := m.state.Action.(Operator)
	if !ok {
		return Resolution{Kind: NotFound}
	}
	if seq.Equals(op.Keys) || (len(seq) == 1 && seq[0] == op.Keys.Last()) {
		return Resolution{Kind: Complete, Command: lineMotion}
	}
	res := m.resolver.Resolve(mode.Normal, seq, remap)
	switch res.Kind {
	case Complete:
		if other, ok := res.Command.(Operator); ok && other.Handler == op.Handler {
			return Resolution{Kind: Complete, Command: lineMotion}
		}
	case Incomplete:
		return res
	}
	return Resolution{Kind: NotFound}
}

func (m *Machine) setCommand(ctx context.Context, d Descriptor, evalNow bool) error {
	st := m.state
	md := st.Mode()

	if _, ok := d.(RegisterPrefix); ok {
		st.captureRegister = true
		st.Partial = nil
		return nil
	}

	st.keys = append(st.keys, st.Partial...)
	st.Partial = nil
	if err := st.SetCommand(d); err != nil {
		return m.invariant(err)
	}

	switch {
	case IsMotion(d) && md == mode.OperatorPending:
		m.setMode(mode.Normal)
	case !IsMotion(d) && !md.IsVisual():
		if _, ok := d.(Operator); ok {
			m.setMode(mode.OperatorPending)
		}
	}

	if in := m.inputFor(d); in != NoInput {
		st.collect = in
		st.collectMotion = IsMotion(d)
		if _, ok := d.(CommandLine); ok {
			st.ActionInput = commandLineSeed(md, st)
		}
		return nil
	}
	return m.maybeEval(ctx, evalNow)
}

func (m *Machine) inputFor(d Descriptor) InputKind {
	if _, ok := d.(RecordMacro); ok && m.session.Macros.IsRecording() {
		return NoInput
	}
	return inputOf(d)
}

// commandLineSeed is the text ":" starts with: '<,'> in visual modes and
// .,.+N-1 after a count.
func commandLineSeed(md mode.Mode, st *InputState) string {
	switch {
	case md.IsVisual():
		return "'<,'>"
	case st.ActionCount != "":
		n := st.Count()
		if n == 1 {
			return "."
		}
		return fmt.Sprintf(".,.+%d", n-1)
	}
	return ""
}

func (m *Machine) maybeEval(ctx context.Context, evalNow bool) error {
	ok, err := m.state.Runnable()
	if err != nil {
		return m.invariant(err)
	}
	if ok && evalNow {
		return m.eval(ctx)
	}
	return nil
}

func (m *Machine) collectInput(ctx context.Context, tok key.Token, evalNow bool) error {
	st := m.state
	buf := &st.ActionInput
	if st.collectMotion {
		buf = &st.MotionInput
	}

	done := false
	switch st.collect {
	case CharInput:
		text, ok := tok.Text()
		if !ok || utf8.RuneCountInString(text) != 1 {
			return m.fail(&NotFoundError{Mode: st.Mode(), Keys: append(st.keys.Clone(), tok)})
		}
		*buf = text
		done = true
	case LineInput:
		switch tok {
		case "<CR>":
			done = true
		case "<BS>", "<C-h>":
			if *buf == "" {
				m.Reset()
				return nil
			}
			_, size := utf8.DecodeLastRuneInString(*buf)
			*buf = (*buf)[:len(*buf)-size]
		case "<C-u>":
			*buf = ""
		default:
			if text, ok := tok.Text(); ok {
				*buf += text
			}
		}
	}
	st.keys = append(st.keys, tok)
	if !done {
		return nil
	}
	st.collect = NoInput
	st.collectMotion = false
	return m.maybeEval(ctx, evalNow)
}

// feedText handles Insert, Replace and Select modes, where keys that are
// neither mapped nor built in are text.
func (m *Machine) feedText(ctx context.Context, tok key.Token, remap, evalNow bool) error {
	st := m.state
	md := st.Mode()
	st.Partial = append(st.Partial, tok)
	res := m.resolver.Resolve(md, st.Partial, remap)

	switch res.Kind {
	case Incomplete:
		m.hold(res)
		return nil
	case Mapped, Complete:
		return m.apply(ctx, res, evalNow)
	}
	if st.exact != nil {
		return m.runExact(ctx, remap, evalNow)
	}

	// Flush the first key as text and feed the rest again.
	first, rest := st.Partial[0], st.Partial[1:].Clone()
	st.Partial = nil
	if err := m.insertText(ctx, first); err != nil {
		return err
	}
	for _, t := range rest {
		if err := m.feed(ctx, t, remap, evalNow); err != nil {
			return err
		}
	}
	return nil
}

func (m *Machine) insertText(ctx context.Context, tok key.Token) error {
	text, ok := tok.Text()
	if !ok {
		m.log.Debug("ignoring %s in %s mode", tok, m.Mode())
		return nil
	}
	handler := "editor.insertText"
	switch m.Mode() {
	case mode.Replace:
		handler = "editor.replaceText"
	case mode.Select:
		handler = "editor.replaceSelection"
		m.setMode(mode.Insert)
	}
	m.captureInsert(tok)
	return m.dispatch(ctx, dispatcher.NewCall(handler).With("text", text))
}

func (m *Machine) captureInsert(toks ...key.Token) {
	if m.insert != nil {
		m.insert.keys = append(m.insert.keys, toks...)
	}
}

func (m *Machine) finishInsert() {
	if m.insert == nil {
		return
	}
	e := m.insert.entry
	e.Keys = append(append(e.Keys.Clone(), m.insert.keys...), "<Esc>")
	m.session.Repeat.Record(e)
	m.insert = nil
}

// escape cancels the pending command and leaves the current mode.
func (m *Machine) escape(ctx context.Context) error {
	st := m.state
	md := st.Mode()
	if (md == mode.Insert || md == mode.Replace) && st.exact != nil && st.collect == NoInput {
		if err := m.runExact(ctx, true, true); err != nil {
			return err
		}
		md = st.Mode()
	}
	if (md == mode.Insert || md == mode.Replace) && len(st.Partial) > 0 && st.collect == NoInput {
		pending := st.Partial.Clone()
		st.Partial = nil
		for _, t := range pending {
			if err := m.insertText(ctx, t); err != nil {
				return err
			}
		}
	}
	if md == mode.Insert || md == mode.Replace {
		m.finishInsert()
	}
	st.Reset()
	if md == mode.Normal || md == mode.OperatorPending {
		m.setMode(mode.Normal)
		return nil
	}
	m.setMode(mode.Normal)
	return m.dispatch(ctx, dispatcher.NewCall("mode.normal").With("from", md.String()))
}

func (m *Machine) setMode(to mode.Mode) {
	m.state.modes.Switch(to)
}

func (m *Machine) dispatch(ctx context.Context, call dispatcher.Call) error {
	if m.disp == nil {
		return nil
	}
	return m.disp.Dispatch(ctx, call)
}

// fail resets to Normal mode and returns err.
func (m *Machine) fail(err error) error {
	m.log.Debug("reset after error: %v", err)
	m.Reset()
	return err
}

func (m *Machine) invariant(err error) error {
	m.log.Error("invariant violated: %v", err)
	if m.strict || m.session.Settings.Bool("strict") {
		panic(err)
	}
	return m.fail(err)
}

// validRegister reports whether r can follow ".
func validRegister(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune(`"-_+*/.:%#=`, r)
}
