// Package session holds the state Vim treats as global to an editing
// session: user mappings, macro registers, the repeat buffer, command-line
// history, the last search and character search, and settings.
//
// One State is created per process (or per test) and passed explicitly to
// every view's input machine. Nothing in it is per buffer; per-buffer
// state lives in package vim.
package session
