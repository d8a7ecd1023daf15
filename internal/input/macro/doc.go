// Package macro records and replays key macros and keeps the repeat buffer
// used by the "." command.
//
// Macro registers are process-wide: a single Recorder is shared by every
// buffer of a session, so "qa" in one view and "@a" in another replay the
// same keys. Registers hold key tokens in notation form, which is also the
// form Save and Load write to disk:
//
//	version = 1
//	last_played = "a"
//
//	[macros]
//	a = "0dwj"
//
// Replay is synchronous. The Player hands each token to a callback that
// feeds it back through the key pipeline before Play returns.
package macro
