package key

import "strings"

// Modifier is a set of held modifier keys.
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	// ModMeta is Cmd on macOS, written <D-...>.
	ModMeta
)

// modifierOrder is the canonical order of modifiers in notation: the
// letter used inside brackets and the name used in debug output.
var modifierOrder = []struct {
	mod    Modifier
	letter byte
	name   string
}{
	{ModCtrl, 'C', "Ctrl"},
	{ModShift, 'S', "Shift"},
	{ModAlt, 'A', "Alt"},
	{ModMeta, 'D', "Meta"},
}

// Has reports whether any modifier in mod is held.
func (m Modifier) Has(mod Modifier) bool { return m&mod != 0 }

func (m Modifier) HasShift() bool { return m.Has(ModShift) }
func (m Modifier) HasCtrl() bool  { return m.Has(ModCtrl) }

// With adds mod.
func (m Modifier) With(mod Modifier) Modifier { return m | mod }

// String returns e.g. "Ctrl+Alt", or "" for ModNone.
func (m Modifier) String() string {
	var parts []string
	for _, o := range modifierOrder {
		if m.Has(o.mod) {
			parts = append(parts, o.name)
		}
	}
	return strings.Join(parts, "+")
}

// notationPrefix returns the in-bracket prefix, e.g. "C-S-".
func (m Modifier) notationPrefix() string {
	var sb strings.Builder
	for _, o := range modifierOrder {
		if m.Has(o.mod) {
			sb.WriteByte(o.letter)
			sb.WriteByte('-')
		}
	}
	return sb.String()
}

// modifierFromLetter maps a bracket modifier letter, in either case, to
// its Modifier. M is Vim's alias for A.
func modifierFromLetter(b byte) Modifier {
	switch b {
	case 'm', 'M':
		return ModAlt
	}
	for _, o := range modifierOrder {
		if b == o.letter || b == o.letter+'a'-'A' {
			return o.mod
		}
	}
	return ModNone
}
