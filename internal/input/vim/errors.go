package vim

import (
	"errors"
	"fmt"

	"github.com/dshills/vimcore/internal/input/key"
	"github.com/dshills/vimcore/internal/input/mode"
)

// ErrNotFound is returned when a key sequence names no command.
var ErrNotFound = errors.New("command not found")

// Invariant violations. They mean the resolution logic is broken, not that
// the user typed something wrong.
var (
	ErrTooManyActions = errors.New("too many actions")
	ErrTooManyMotions = errors.New("too many motions")
	ErrWrongMode      = errors.New("wrong mode")
	ErrReplayDepth    = errors.New("replay depth exceeded")
)

// Other user-facing errors.
var (
	ErrInvalidRegister    = errors.New("invalid register")
	ErrNoPreviousSearch   = errors.New("no previous regular expression")
	ErrNoPreviousCharFind = errors.New("no previous character search")
	ErrNothingToRepeat    = errors.New("nothing to repeat")
)

// NotFoundError names the sequence that failed to resolve.
type NotFoundError struct {
	Mode mode.Mode
	Keys key.Sequence
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s in %s mode", ErrNotFound, e.Keys, e.Mode)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// InvariantError is a state machine programming error.
type InvariantError struct {
	Op   string
	Mode mode.Mode
	Err  error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("vim: %s in %s mode: %v", e.Op, e.Mode, e.Err)
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}

// IsInvariant reports whether err is a state machine invariant violation.
func IsInvariant(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}
