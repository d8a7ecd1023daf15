package key

import (
	"fmt"
	"unicode"
)

// Event represents a single key press.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Modifiers contains the active modifier keys.
	Modifiers Modifier
}

// NewRuneEvent creates a key event for a character.
func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{Key: KeyRune, Rune: r, Modifiers: mods}
}

// NewSpecialEvent creates a key event for a special key.
func NewSpecialEvent(k Key, mods Modifier) Event {
	return Event{Key: k, Modifiers: mods}
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsModified returns true if any modifier is pressed.
// For character events, Shift alone is not considered modified
// (since Shift changes the character itself).
func (e Event) IsModified() bool {
	if e.IsRune() {
		return e.Modifiers&(ModCtrl|ModAlt|ModMeta) != 0
	}
	return e.Modifiers != ModNone
}

// Token returns the canonical notation for the event.
//
//	'd'            -> "d"
//	'D' or S-'d'   -> "D"
//	' '            -> "<Space>"
//	'<'            -> "<lt>"
//	C-'W'          -> "<C-w>"
//	Escape         -> "<Esc>"
//	S-Tab          -> "<S-Tab>"
func (e Event) Token() Token {
	if e.Key == KeyNone {
		return ""
	}

	if e.Key == KeyRune {
		r := e.Rune
		if !e.IsModified() {
			if e.Modifiers.HasShift() {
				r = unicode.ToUpper(r)
			}
			switch r {
			case ' ':
				return "<Space>"
			case '<':
				return "<lt>"
			}
			return Token(string(r))
		}

		// Control combinations are case-insensitive.
		if e.Modifiers.HasCtrl() {
			r = unicode.ToLower(r)
		}
		name := string(r)
		switch r {
		case ' ':
			name = "Space"
		case '<':
			name = "lt"
		}
		return Token("<" + e.Modifiers.notationPrefix() + name + ">")
	}

	name, ok := notationNames[e.Key]
	if !ok {
		name = e.Key.String()
	}
	return Token("<" + e.Modifiers.notationPrefix() + name + ">")
}

// String returns the canonical notation of the event.
func (e Event) String() string {
	return string(e.Token())
}

// Equals returns true if two events represent the same key press.
func (e Event) Equals(other Event) bool {
	return e.Token() == other.Token()
}

// IsEscape returns true if this is the Escape key (with no modifiers).
func (e Event) IsEscape() bool {
	return e.Key == KeyEscape && e.Modifiers == ModNone
}

// IsEnter returns true if this is the Enter key (with no modifiers).
func (e Event) IsEnter() bool {
	return e.Key == KeyEnter && e.Modifiers == ModNone
}

// GoString implements fmt.GoStringer for debugging.
func (e Event) GoString() string {
	return fmt.Sprintf("Event{Key: %s, Rune: %q, Modifiers: %s}",
		e.Key.String(), e.Rune, e.Modifiers.String())
}
