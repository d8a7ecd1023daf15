package address

import (
	"errors"
	"fmt"

	"github.com/dshills/vimcore/internal/engine/buffer"
)

// Resolution errors.
var (
	ErrPatternNotFound   = errors.New("pattern not found")
	ErrInvalidPattern    = buffer.ErrInvalidPattern
	ErrNoPreviousPattern = errors.New("no previous regular expression")
	ErrMarkNotSet        = errors.New("mark not set")
	ErrMarkInOtherFile   = errors.New("mark in other file")
)

// ResolutionError describes an address that could not be resolved. One of
// Pattern or Mark names the failing address.
type ResolutionError struct {
	Pattern string
	Mark    rune
	Err     error
}

func (e *ResolutionError) Error() string {
	if e.Mark != 0 {
		return fmt.Sprintf("%v: '%c", e.Err, e.Mark)
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Pattern)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
