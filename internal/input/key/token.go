package key

import (
	"strings"
	"unicode/utf8"
)

// Token is one logical key in canonical notation: a bare character such as
// "d" or a bracketed special key such as "<C-w>".
type Token string

// IsSpecial reports whether the token is a bracketed special key.
func (t Token) IsSpecial() bool {
	return len(t) > 2 && t[0] == '<' && t[len(t)-1] == '>'
}

// IsDigit reports whether the token is a single ASCII digit.
func (t Token) IsDigit() bool {
	return len(t) == 1 && t[0] >= '0' && t[0] <= '9'
}

// Char returns the single character a token stands for. Tokens such as
// "<Space>", "<lt>" and "<Tab>" map to their character; other special
// keys and multi-rune grapheme clusters report false.
func (t Token) Char() (rune, bool) {
	switch t {
	case "<Space>":
		return ' ', true
	case "<lt>":
		return '<', true
	case "<Tab>":
		return '\t', true
	}
	if t.IsSpecial() || t == "" {
		return 0, false
	}
	if utf8.RuneCountInString(string(t)) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(string(t))
	return r, true
}

// Text returns the literal text a token inserts, if any.
func (t Token) Text() (string, bool) {
	if t == "<CR>" {
		return "\n", true
	}
	if r, ok := t.Char(); ok {
		return string(r), true
	}
	if !t.IsSpecial() && t != "" {
		return string(t), true
	}
	return "", false
}

// Event parses the token back into a key event.
func (t Token) Event() (Event, error) {
	return Parse(string(t))
}

// Sequence is an ordered run of tokens.
type Sequence []Token

// String returns the notation for the sequence.
func (s Sequence) String() string {
	var sb strings.Builder
	for _, t := range s {
		sb.WriteString(string(t))
	}
	return sb.String()
}

// Equals returns true if two sequences are identical.
func (s Sequence) Equals(other Sequence) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix returns true if this sequence starts with the given prefix.
func (s Sequence) HasPrefix(prefix Sequence) bool {
	if len(prefix) > len(s) {
		return false
	}
	return s[:len(prefix)].Equals(prefix)
}

// Clone returns a copy of the sequence.
func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// Last returns the final token, or "" if empty.
func (s Sequence) Last() Token {
	if len(s) == 0 {
		return ""
	}
	return s[len(s)-1]
}

// ParseSequence tokenizes a notation string into a Sequence.
func ParseSequence(notation string) (Sequence, error) {
	toks, err := Tokenize(notation)
	if err != nil {
		return nil, err
	}
	return Sequence(toks), nil
}

// MustParseSequence parses a sequence string and panics on error.
// Use only for known-valid sequences in initialization code.
func MustParseSequence(notation string) Sequence {
	seq, err := ParseSequence(notation)
	if err != nil {
		panic("invalid key sequence: " + notation + ": " + err.Error())
	}
	return seq
}
