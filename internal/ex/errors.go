package ex

import (
	"errors"
	"fmt"
)

// Parse error kinds.
var (
	// ErrUnknownCommand indicates a command name no route matches.
	ErrUnknownCommand = errors.New("not an editor command")

	// ErrBadRange indicates malformed range syntax.
	ErrBadRange = errors.New("bad range")

	// ErrNoRangeAllowed indicates a range before a command that takes none.
	ErrNoRangeAllowed = errors.New("no range allowed")

	// ErrNoBangAllowed indicates "!" after a command that is not forceable.
	ErrNoBangAllowed = errors.New("no ! allowed")

	// ErrMissingArgument indicates a mandatory argument was not given.
	ErrMissingArgument = errors.New("argument required")

	// ErrTrailingCharacters indicates text after a complete command.
	ErrTrailingCharacters = errors.New("trailing characters")

	// ErrInvalidArgument indicates an argument that failed validation.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotAllowedInGlobal indicates a :global sub-command that does not
	// cooperate with :global.
	ErrNotAllowedInGlobal = errors.New("cannot be used with :global")
)

// ParseError describes a failure to scan or parse a command line.
type ParseError struct {
	// Kind is one of the Err* sentinels above.
	Kind error

	// Source is the command line being parsed.
	Source string

	// Pos is the byte offset of the offending text in Source.
	Pos int

	// Text is the offending substring, if any.
	Text string

	// Msg adds detail, if any.
	Msg string
}

func newParseError(kind error, src string, pos int, text, msg string) *ParseError {
	return &ParseError{Kind: kind, Source: src, Pos: pos, Text: text, Msg: msg}
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	s := e.Kind.Error()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Text != "" {
		s += fmt.Sprintf(": %q", e.Text)
	}
	return s
}

// Unwrap returns the error kind.
func (e *ParseError) Unwrap() error {
	return e.Kind
}

var errUnterminatedString = errors.New("unterminated string")
