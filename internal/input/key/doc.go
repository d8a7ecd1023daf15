// Package key provides key event types, key notation parsing and the
// key sequence tokenizer for the input system.
//
// This package defines the fundamental types for representing keyboard input:
//
//   - Key: Identifies a keyboard key (special keys, function keys, or runes)
//   - Modifier: Represents modifier keys (Ctrl, Alt, Shift, Meta)
//   - Event: A single key press with modifiers
//   - Token: One logical key in canonical Vim notation ("d", "<C-w>", "<Esc>")
//
// # Key Notation
//
// A notation string is a flat run of keys. Every character is its own
// token, except "<", which opens a bracketed special key that runs to the
// next ">":
//
//	2dw          -> "2" "d" "w"
//	<C-w>h       -> "<C-w>" "h"
//	<esc>:w<cr>  -> "<Esc>" ":" "w" "<CR>"
//
// Names inside brackets are case-insensitive and are normalized to one
// canonical spelling, so "<c-W>" and "<C-w>" produce the same Token. A
// literal "<" is written "<lt>". An unmatched "<" is an error.
//
// # Tokenizer
//
// Tokenizer yields tokens one at a time and cannot be rewound; scanning the
// same notation twice requires a new Tokenizer.
package key
