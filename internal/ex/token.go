package ex

import (
	"strconv"
	"strings"
)

// TokenKind identifies the kind of an Ex token.
type TokenKind uint8

const (
	TokenEOF TokenKind = iota
	TokenDigits
	TokenDot
	TokenDollar
	TokenPercent
	TokenMark
	TokenSearchForward
	TokenSearchBackward
	TokenOffset
	TokenComma
	TokenSemicolon
	TokenCommand
)

var tokenKindNames = [...]string{
	TokenEOF:            "eof",
	TokenDigits:         "digits",
	TokenDot:            "dot",
	TokenDollar:         "dollar",
	TokenPercent:        "percent",
	TokenMark:           "mark",
	TokenSearchForward:  "search-forward",
	TokenSearchBackward: "search-backward",
	TokenOffset:         "offset",
	TokenComma:          "comma",
	TokenSemicolon:      "semicolon",
	TokenCommand:        "command",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "token(" + strconv.Itoa(int(k)) + ")"
}

// Token is one lexical element of a command line. Only the fields that
// belong to Kind are set.
type Token struct {
	Kind TokenKind

	// Line is the value of a TokenDigits.
	Line int

	// Mark is the mark name of a TokenMark.
	Mark rune

	// Pattern is the raw pattern of a search token. Escaped delimiters are
	// kept as typed; an empty pattern means "the last search".
	Pattern string

	// Deltas are the offsets of a TokenOffset, in typing order.
	Deltas []int

	// Command is set for TokenCommand.
	Command *Command

	// Pos is the byte offset of the token in the scanned text.
	Pos int
}

// Sum returns the total of an offset token's deltas.
func (t Token) Sum() int {
	n := 0
	for _, d := range t.Deltas {
		n += d
	}
	return n
}

// IsRange reports whether the token contributes to a line range.
func (t Token) IsRange() bool {
	return t.Kind != TokenEOF && t.Kind != TokenCommand
}

// String returns the token in command-line notation. Range tokens print in
// a form the Scanner reads back to an equivalent token.
func (t Token) String() string {
	switch t.Kind {
	case TokenDigits:
		return strconv.Itoa(t.Line)
	case TokenDot:
		return "."
	case TokenDollar:
		return "$"
	case TokenPercent:
		return "%"
	case TokenMark:
		return "'" + string(t.Mark)
	case TokenSearchForward:
		return "/" + t.Pattern + "/"
	case TokenSearchBackward:
		return "?" + t.Pattern + "?"
	case TokenOffset:
		var sb strings.Builder
		for _, d := range t.Deltas {
			if d >= 0 {
				sb.WriteByte('+')
			}
			sb.WriteString(strconv.Itoa(d))
		}
		return sb.String()
	case TokenComma:
		return ","
	case TokenSemicolon:
		return ";"
	case TokenCommand:
		if t.Command != nil {
			return t.Command.Name
		}
		return ""
	default:
		return ""
	}
}

// MarshalText encodes the token in command-line notation.
func (t Token) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Digits returns a line-number token.
func Digits(n int) Token { return Token{Kind: TokenDigits, Line: n} }

// Dot returns a current-line token.
func Dot() Token { return Token{Kind: TokenDot} }

// Dollar returns a last-line token.
func Dollar() Token { return Token{Kind: TokenDollar} }

// Percent returns a whole-buffer token.
func Percent() Token { return Token{Kind: TokenPercent} }

// Mark returns a mark token.
func Mark(name rune) Token { return Token{Kind: TokenMark, Mark: name} }

// SearchForward returns a forward search token.
func SearchForward(pattern string) Token { return Token{Kind: TokenSearchForward, Pattern: pattern} }

// SearchBackward returns a backward search token.
func SearchBackward(pattern string) Token { return Token{Kind: TokenSearchBackward, Pattern: pattern} }

// Offset returns an offset token.
func Offset(deltas ...int) Token { return Token{Kind: TokenOffset, Deltas: deltas} }
