package vim

import (
	"strconv"

	"github.com/dshills/vimcore/internal/input/key"
	"github.com/dshills/vimcore/internal/input/mode"
)

// InputState is the pending command of one view. Everything but the mode
// is transient and cleared by Reset.
type InputState struct {
	modes *mode.Manager

	// Action is the pending operator or action.
	Action      Descriptor
	ActionInput string

	// Motion is the pending motion.
	Motion      Descriptor
	MotionInput string

	// ActionCount is the count typed before the command, MotionCount the
	// one typed after an operator. Both are digit strings.
	ActionCount string
	MotionCount string

	// Partial holds the keys not yet resolved.
	Partial key.Sequence

	// Register is the register named with ", or 0.
	Register rune

	captureRegister bool
	collect         InputKind
	collectMotion   bool
	// keys is the command as typed, without counts and register.
	keys key.Sequence

	// exact is a complete match of the first exactLen keys of Partial
	// that waits while a longer user mapping may still match.
	exact    *Resolution
	exactLen int
}

// NewInputState creates a state in Normal mode.
func NewInputState() *InputState {
	return &InputState{modes: mode.NewManager()}
}

// Mode returns the current mode.
func (s *InputState) Mode() mode.Mode {
	return s.modes.Current()
}

// Modes returns the mode manager, for listening to mode changes.
func (s *InputState) Modes() *mode.Manager {
	return s.modes
}

// MustCaptureRegister reports whether the next key names a register.
func (s *InputState) MustCaptureRegister() bool {
	return s.captureRegister
}

// MustCollectInput reports whether keys are being collected as input.
func (s *InputState) MustCollectInput() bool {
	return s.collect != NoInput
}

// Pending returns the input being collected, e.g. the pattern typed after
// "/".
func (s *InputState) Pending() string {
	if s.collectMotion {
		return s.MotionInput
	}
	return s.ActionInput
}

// Count returns the effective count: action count times motion count, 1
// when neither was typed.
func (s *InputState) Count() int {
	return parseCount(s.ActionCount) * parseCount(s.MotionCount)
}

// HasCount reports whether any count was typed.
func (s *InputState) HasCount() bool {
	return s.ActionCount != "" || s.MotionCount != ""
}

func parseCount(digits string) int {
	if digits == "" {
		return 1
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// SetCommand stores d in the action or motion slot. Filling a slot twice
// before a reset is an invariant violation.
func (s *InputState) SetCommand(d Descriptor) error {
	if IsMotion(d) {
		if s.Motion != nil {
			return &InvariantError{Op: "set motion", Mode: s.Mode(), Err: ErrTooManyMotions}
		}
		s.Motion = d
		return nil
	}
	if s.Action != nil {
		return &InvariantError{Op: "set action", Mode: s.Mode(), Err: ErrTooManyActions}
	}
	s.Action = d
	return nil
}

// Runnable reports whether the pending command can be evaluated. A
// contradictory combination of mode, action and motion is an invariant
// violation.
func (s *InputState) Runnable() (bool, error) {
	if s.captureRegister || s.collect != NoInput {
		return false, nil
	}
	md := s.Mode()
	switch {
	case s.Action != nil && s.Motion != nil:
		if md == mode.OperatorPending {
			return false, &InvariantError{Op: "runnable", Mode: md, Err: ErrWrongMode}
		}
		if _, ok := s.Action.(Operator); !ok {
			return false, &InvariantError{Op: "runnable", Mode: md, Err: ErrTooManyMotions}
		}
		return true, nil
	case s.Motion != nil:
		if md == mode.OperatorPending {
			return false, &InvariantError{Op: "runnable", Mode: md, Err: ErrWrongMode}
		}
		return true, nil
	case s.Action != nil:
		if _, ok := s.Action.(Operator); ok && !md.IsVisual() {
			return false, nil
		}
		return true, nil
	}
	return false, nil
}

// IsClear reports whether every transient field has its default value.
func (s *InputState) IsClear() bool {
	return s.Action == nil && s.Motion == nil &&
		s.ActionInput == "" && s.MotionInput == "" &&
		s.ActionCount == "" && s.MotionCount == "" &&
		len(s.Partial) == 0 && s.Register == 0 &&
		!s.captureRegister && s.collect == NoInput && len(s.keys) == 0
}

// Reset clears every transient field. The mode is left alone.
func (s *InputState) Reset() {
	s.Action = nil
	s.ActionInput = ""
	s.Motion = nil
	s.MotionInput = ""
	s.ActionCount = ""
	s.MotionCount = ""
	s.Partial = nil
	s.Register = 0
	s.captureRegister = false
	s.collect = NoInput
	s.collectMotion = false
	s.keys = nil
	s.exact = nil
	s.exactLen = 0
}

// PendingKeys returns what the status line shows for the command being
// typed, e.g. `"a2d3`.
func (s *InputState) PendingKeys() string {
	var out string
	if s.Register != 0 {
		out = `"` + string(s.Register)
	} else if s.captureRegister {
		out = `"`
	}
	out += s.ActionCount + s.keys.String() + s.MotionCount + s.Partial.String()
	return out
}
