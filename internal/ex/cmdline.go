package ex

import (
	"encoding/json"
	"strings"
)

// Separator joins the two sides of a range.
type Separator uint8

const (
	NoSeparator Separator = iota
	Comma
	Semicolon
)

// String returns the separator character.
func (s Separator) String() string {
	switch s {
	case Comma:
		return ","
	case Semicolon:
		return ";"
	default:
		return ""
	}
}

// MarshalText encodes the separator character.
func (s Separator) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// RangeNode is a parsed, unresolved line range. A node with no tokens on
// either side means no range was given.
type RangeNode struct {
	Start     []Token   `json:"start,omitempty"`
	End       []Token   `json:"end,omitempty"`
	Separator Separator `json:"separator,omitempty"`
}

// IsEmpty reports whether no range was given.
func (r RangeNode) IsEmpty() bool {
	return len(r.Start) == 0 && len(r.End) == 0 && r.Separator == NoSeparator
}

// String returns the range in command-line notation. Parsing the result
// yields a node that resolves to the same lines.
func (r RangeNode) String() string {
	var sb strings.Builder
	for _, t := range r.Start {
		sb.WriteString(t.String())
	}
	sb.WriteString(r.Separator.String())
	for _, t := range r.End {
		sb.WriteString(t.String())
	}
	return sb.String()
}

// DefaultRange is the range a command operates on when none is typed.
type DefaultRange uint8

const (
	// DefaultNone means the command has no implicit range.
	DefaultNone DefaultRange = iota
	// DefaultLine means the current line.
	DefaultLine
	// DefaultAll means the whole buffer.
	DefaultAll
	// DefaultLast means the last line.
	DefaultLast
)

func (d DefaultRange) String() string {
	switch d {
	case DefaultLine:
		return "line"
	case DefaultAll:
		return "all"
	case DefaultLast:
		return "last"
	default:
		return "none"
	}
}

// MarshalText encodes the default range name.
func (d DefaultRange) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Command is a recognized command with its parsed parameters.
type Command struct {
	// Name is the canonical command name, e.g. "substitute".
	Name string `json:"name"`

	// Handler is the dispatch identifier, e.g. "ex.substitute".
	Handler string `json:"handler"`

	Params Params `json:"params,omitempty"`
	Forced bool   `json:"forced,omitempty"`

	Addressable bool         `json:"addressable"`
	Global      bool         `json:"cooperatesWithGlobal"`
	Default     DefaultRange `json:"defaultRange"`
}

// ParsedCommandLine is the result of parsing one command line.
type ParsedCommandLine struct {
	Range RangeNode `json:"range"`

	// Command is nil for a range-only line such as "5".
	Command *Command `json:"command,omitempty"`

	// Source is the text that was parsed.
	Source string `json:"source"`
}

// Validate checks that a command taking no range was not given one.
func (p *ParsedCommandLine) Validate() error {
	if p.Command != nil && !p.Command.Addressable && !p.Range.IsEmpty() {
		return newParseError(ErrNoRangeAllowed, p.Source, 0, p.Range.String(), "")
	}
	return nil
}

// JSON returns the indented JSON form of the parsed line.
func (p *ParsedCommandLine) JSON() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// Params holds the validated arguments of a command.
type Params map[string]any

// Text returns the string parameter key, or "".
func (p Params) Text(key string) string {
	s, _ := p[key].(string)
	return s
}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Int returns the integer parameter key.
func (p Params) Int(key string) (int, bool) {
	n, ok := p[key].(int)
	return n, ok
}

// Bool returns the boolean parameter key, false if absent.
func (p Params) Bool(key string) bool {
	b, _ := p[key].(bool)
	return b
}

// Strings returns the string-slice parameter key.
func (p Params) Strings(key string) []string {
	s, _ := p[key].([]string)
	return s
}

// Range returns the RangeNode parameter key.
func (p Params) Range(key string) (RangeNode, bool) {
	r, ok := p[key].(RangeNode)
	return r, ok
}

// Line returns the nested ParsedCommandLine parameter key.
func (p Params) Line(key string) (*ParsedCommandLine, bool) {
	l, ok := p[key].(*ParsedCommandLine)
	return l, ok && l != nil
}
