package vim

import (
	"fmt"

	"github.com/dshills/vimcore/internal/input/key"
	"github.com/dshills/vimcore/internal/input/mode"
)

// Descriptor is a built-in command. The set of variants is closed: Motion,
// CharSearch, RepeatCharSearch, Search, RepeatSearch, Operator, Action,
// RecordMacro, PlayMacro, RepeatLast, CommandLine, ExCommand and
// RegisterPrefix.
type Descriptor interface {
	fmt.Stringer
	descriptor()
}

// InputKind says what a command collects after its keys.
type InputKind uint8

const (
	NoInput InputKind = iota
	// CharInput takes the next key as a character (f, r, m, q, @).
	CharInput
	// LineInput collects keys until <CR> (/, ?, :).
	LineInput
)

// Motion moves the cursor or, in operator-pending and visual modes,
// selects a text object.
type Motion struct {
	Handler string
	// Counted replaces Handler when a count was typed (G, gg, %).
	Counted   string
	Linewise  bool
	Inclusive bool
	// Input and Arg describe a trailing character such as a mark name.
	Input InputKind
	Arg   string
}

// CharSearch is f, F, t or T.
type CharSearch struct {
	Forward bool
	Till    bool
}

// RepeatCharSearch is ; or , repeating the last character search.
type RepeatCharSearch struct {
	Reverse bool
}

// Search is / or ?, collecting a pattern until <CR>.
type Search struct {
	Forward bool
}

// RepeatSearch is n or N.
type RepeatSearch struct {
	Reverse bool
}

// Operator edits the text a motion covers. In visual modes it acts on the
// selection and needs no motion.
type Operator struct {
	Handler    string
	Keys       key.Sequence
	Repeatable bool
	// Insert operators leave the view in Insert mode (c).
	Insert bool
	// Linewise forces the selection to whole lines (visual D, X, Y).
	Linewise bool
}

// Action is a command that needs no motion.
type Action struct {
	Handler    string
	NextMode   mode.Mode
	Repeatable bool
	Input      InputKind
	Arg        string
}

// RecordMacro is q: q{reg} starts recording, q stops it.
type RecordMacro struct{}

// PlayMacro is @{reg}.
type PlayMacro struct{}

// RepeatLast is the . command.
type RepeatLast struct{}

// CommandLine is :, collecting an Ex command line until <CR>.
type CommandLine struct{}

// ExCommand runs a fixed Ex command line (ZZ, &, gt).
type ExCommand struct {
	Line string
}

// RegisterPrefix is ", which takes a register name.
type RegisterPrefix struct{}

func (Motion) descriptor()           {}
func (CharSearch) descriptor()       {}
func (RepeatCharSearch) descriptor() {}
func (Search) descriptor()           {}
func (RepeatSearch) descriptor()     {}
func (Operator) descriptor()         {}
func (Action) descriptor()           {}
func (RecordMacro) descriptor()      {}
func (PlayMacro) descriptor()        {}
func (RepeatLast) descriptor()       {}
func (CommandLine) descriptor()      {}
func (ExCommand) descriptor()        {}
func (RegisterPrefix) descriptor()   {}

func (m Motion) String() string   { return "motion " + m.Handler }
func (o Operator) String() string { return "operator " + o.Handler }
func (a Action) String() string   { return "action " + a.Handler }

func (c CharSearch) String() string {
	switch {
	case c.Forward && c.Till:
		return "motion t"
	case c.Forward:
		return "motion f"
	case c.Till:
		return "motion T"
	}
	return "motion F"
}

func (r RepeatCharSearch) String() string {
	if r.Reverse {
		return "motion ,"
	}
	return "motion ;"
}

func (s Search) String() string {
	if s.Forward {
		return "motion /"
	}
	return "motion ?"
}

func (r RepeatSearch) String() string {
	if r.Reverse {
		return "motion N"
	}
	return "motion n"
}

func (RecordMacro) String() string    { return "record macro" }
func (PlayMacro) String() string      { return "play macro" }
func (RepeatLast) String() string     { return "repeat last" }
func (CommandLine) String() string    { return "command line" }
func (e ExCommand) String() string    { return ":" + e.Line }
func (RegisterPrefix) String() string { return "register" }

// IsMotion reports whether d fills the motion slot of a command.
func IsMotion(d Descriptor) bool {
	switch d.(type) {
	case Motion, CharSearch, RepeatCharSearch, Search, RepeatSearch:
		return true
	}
	return false
}

// inputOf returns what d collects after its keys.
func inputOf(d Descriptor) InputKind {
	switch d := d.(type) {
	case Motion:
		return d.Input
	case Action:
		return d.Input
	case CharSearch, PlayMacro, RecordMacro:
		return CharInput
	case Search, CommandLine:
		return LineInput
	}
	return NoInput
}

// repeatable reports whether d is recorded for the . command.
func repeatable(d Descriptor) bool {
	switch d := d.(type) {
	case Operator:
		return d.Repeatable
	case Action:
		return d.Repeatable
	}
	return false
}
