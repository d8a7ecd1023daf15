// Package ex parses colon command lines.
//
// A command line such as "1,5s/foo/bar/g" is split by a Scanner into a lazy
// stream of Tokens: range tokens (digits, ".", "$", "%", marks, searches,
// offsets, separators) followed by at most one Command token whose
// parameters were validated by that command's argument scanner. A Scanner
// is not restartable; scanning the same text again needs a new Scanner.
//
// Command names are recognized through a Registry, an ordered list of
// anchored regexp2 routes. The first matching route wins, so the order of
// the default table is significant: it decides how abbreviations such as
// "s", "se" and "sp" resolve.
//
// The Parser drives the Scanner once and builds a ParsedCommandLine: a
// RangeNode plus an optional Command. Range resolution against a buffer
// lives in package address.
package ex
