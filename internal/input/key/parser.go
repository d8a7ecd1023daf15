package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Parse errors
var (
	ErrEmptySpec        = errors.New("empty key specification")
	ErrInvalidSpec      = errors.New("invalid key specification")
	ErrUnmatchedBracket = errors.New("unmatched bracket in key notation")
)

// Parse parses a single key specification into an Event.
//
// Supported formats:
//   - Single character: "a", "A", "1", "@"
//   - Bracketed: "<C-s>", "<A-f>", "<C-S-p>", "<CR>", "<Esc>", "<lt>"
func Parse(spec string) (Event, error) {
	if spec == "" {
		return Event{}, ErrEmptySpec
	}

	if len(spec) > 2 && spec[0] == '<' && spec[len(spec)-1] == '>' {
		return parseBracketed(spec[1 : len(spec)-1])
	}

	if utf8.RuneCountInString(spec) == 1 {
		r, _ := utf8.DecodeRuneInString(spec)
		return charEvent(r), nil
	}

	return Event{}, fmt.Errorf("%w: %q", ErrInvalidSpec, spec)
}

// MustParse parses a key specification and panics on error.
// Use only for known-valid specs in initialization code.
func MustParse(spec string) Event {
	event, err := Parse(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return event
}

// charEvent converts a bare character into an event. Control characters
// that have a named key are folded into that key.
func charEvent(r rune) Event {
	switch r {
	case '\t':
		return NewSpecialEvent(KeyTab, ModNone)
	case '\r', '\n':
		return NewSpecialEvent(KeyEnter, ModNone)
	case 0x1b:
		return NewSpecialEvent(KeyEscape, ModNone)
	case 0x7f:
		return NewSpecialEvent(KeyBackspace, ModNone)
	}
	return NewRuneEvent(r, ModNone)
}

// parseBracketed parses the inside of "<...>": zero or more modifier
// letters each followed by '-', then a key name or a single character.
func parseBracketed(inner string) (Event, error) {
	if strings.TrimSpace(inner) == "" {
		return Event{}, fmt.Errorf("%w: empty brackets", ErrInvalidSpec)
	}

	var mods Modifier
	for len(inner) > 2 && inner[1] == '-' {
		mod := modifierFromLetter(inner[0])
		if mod == ModNone {
			return Event{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, inner[:1])
		}
		mods = mods.With(mod)
		inner = inner[2:]
	}

	lower := strings.ToLower(inner)
	if k, ok := keyNameMap[lower]; ok {
		return NewSpecialEvent(k, mods), nil
	}
	if r, ok := runeNameMap[lower]; ok {
		return NewRuneEvent(r, mods), nil
	}

	if utf8.RuneCountInString(inner) == 1 {
		r, _ := utf8.DecodeRuneInString(inner)
		ev := charEvent(r)
		ev.Modifiers = mods
		return ev, nil
	}

	return Event{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, inner)
}

// ExpandLeader replaces every case-insensitive "<Leader>" in notation with
// the given leader key notation.
func ExpandLeader(notation, leader string) string {
	if leader == "" {
		leader = `\`
	}
	if leader == " " {
		leader = "<Space>"
	}
	if leader == "<" {
		leader = "<lt>"
	}

	const name = "<leader>"
	lower := strings.ToLower(notation)
	if !strings.Contains(lower, name) {
		return notation
	}

	var sb strings.Builder
	for {
		i := strings.Index(lower, name)
		if i < 0 {
			sb.WriteString(notation)
			return sb.String()
		}
		sb.WriteString(notation[:i])
		sb.WriteString(leader)
		notation = notation[i+len(name):]
		lower = lower[i+len(name):]
	}
}
