package dispatcher

import "errors"

// Dispatcher errors.
var (
	// ErrNoHandler indicates no handler was found for a call.
	ErrNoHandler = errors.New("dispatcher: no handler for action")

	// ErrCancelled indicates a pre hook cancelled the call.
	ErrCancelled = errors.New("dispatcher: action cancelled by hook")

	// ErrPanic indicates the handler panicked.
	ErrPanic = errors.New("dispatcher: handler panic")

	// ErrInvalidCall indicates a call without a handler name.
	ErrInvalidCall = errors.New("dispatcher: invalid action")
)

// ErrorKind classifies a reported error.
type ErrorKind string

const (
	KindParse      ErrorKind = "parse"
	KindResolution ErrorKind = "resolution"
	KindNotFound   ErrorKind = "not-found"
	KindInvariant  ErrorKind = "invariant"
	KindDispatch   ErrorKind = "dispatch"
)
