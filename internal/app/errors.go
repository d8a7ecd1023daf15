package app

import (
	"errors"
	"fmt"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/ex"
	"github.com/dshills/vimcore/internal/ex/address"
	"github.com/dshills/vimcore/internal/input/key"
	"github.com/dshills/vimcore/internal/input/vim"
)

// Editor errors.
var (
	// ErrQuit signals that the last window was closed and the host should
	// exit. Editor.ExitCode holds the status.
	ErrQuit = errors.New("quit requested")

	// ErrTabsUnsupported is returned by the tab page commands.
	ErrTabsUnsupported = errors.New("tab pages are not supported")

	// ErrNotSupported is returned by commands the core recognizes but
	// leaves to the host, such as :shell.
	ErrNotSupported = errors.New("not supported")

	// ErrUnsavedChanges is returned when quitting would lose changes.
	ErrUnsavedChanges = errors.New("no write since last change (add ! to override)")
)

// CommandError is a failed command line or key sequence.
type CommandError struct {
	Op     string // "ex" or "keys"
	Source string // the command line or key notation
	Err    error
}

func (e *CommandError) Error() string {
	if e == nil {
		return ""
	}
	if e.Source == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Source, e.Err)
}

func (e *CommandError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// kindOf classifies err for the Reporter.
func kindOf(err error) dispatcher.ErrorKind {
	var (
		parseErr   *ex.ParseError
		resolveErr *address.ResolutionError
		notFound   *vim.NotFoundError
		invariant  *vim.InvariantError
	)
	switch {
	case errors.As(err, &parseErr), errors.Is(err, key.ErrInvalidSpec), errors.Is(err, key.ErrUnmatchedBracket):
		return dispatcher.KindParse
	case errors.As(err, &resolveErr):
		return dispatcher.KindResolution
	case errors.As(err, &notFound), errors.Is(err, vim.ErrNotFound):
		return dispatcher.KindNotFound
	case errors.As(err, &invariant):
		return dispatcher.KindInvariant
	}
	return dispatcher.KindDispatch
}

// message is the text shown for err. Wrapping by CommandError is dropped
// since the user just typed the source.
func message(err error) string {
	var ce *CommandError
	if errors.As(err, &ce) && ce.Err != nil {
		return ce.Err.Error()
	}
	return err.Error()
}
