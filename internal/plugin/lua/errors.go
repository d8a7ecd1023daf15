package lua

import "errors"

var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrNoCommander is raised by vim.cmd when no editor is attached.
	ErrNoCommander = errors.New("vim.cmd: no editor attached")
)
