// Package vim implements the Vim key-sequence state machine.
//
// A Machine owns the InputState of one view. Every key goes through Feed,
// which accumulates counts, a register name, an operator and a motion
// until a runnable command exists, then evaluates it into exactly one
// dispatcher.Call:
//
//	2dw  ->  operator.delete{count=1, motion=cursor.wordForward{count=2}}
//	"ayy ->  operator.yank{count=1, motion=cursor.line{count=1, linewise=true}, register='a'}
//	3j   ->  cursor.down{count=3, linewise=true}
//
// Key sequences are resolved by a Resolver: user mappings from the session
// first, then the built-in command tables, then prefix incompleteness.
// Mapped right-hand sides, macros and "." are replayed synchronously
// through the same pipeline with a bounded depth.
//
// Built-in commands are closed descriptor variants (Motion, Operator,
// Action, CharSearch, ...). translate turns a descriptor and the pending
// state into a handler name and arguments.
package vim
