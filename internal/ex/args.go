package ex

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ArgReader walks the argument text of one command.
type ArgReader struct {
	// Name is the command name as typed, e.g. ">>" or "sub".
	Name string

	// Forced is true if "!" followed the name.
	Forced bool

	reg  *Registry
	src  string // whole command line
	text string // argument text
	base int    // offset of text in src
	pos  int
}

// Registry returns the registry the command line is parsed with.
func (r *ArgReader) Registry() *Registry {
	return r.reg
}

// EOF reports whether all argument text was consumed.
func (r *ArgReader) EOF() bool {
	return r.pos >= len(r.text)
}

// Peek returns the next rune without consuming it, or 0 at the end.
func (r *ArgReader) Peek() rune {
	if r.EOF() {
		return 0
	}
	c, _ := utf8.DecodeRuneInString(r.text[r.pos:])
	return c
}

// Next consumes and returns the next rune, or 0 at the end.
func (r *ArgReader) Next() rune {
	if r.EOF() {
		return 0
	}
	c, n := utf8.DecodeRuneInString(r.text[r.pos:])
	r.pos += n
	return c
}

// SkipSpace consumes blanks and reports whether any were skipped.
func (r *ArgReader) SkipSpace() bool {
	start := r.pos
	for !r.EOF() && isBlank(r.text[r.pos]) {
		r.pos++
	}
	return r.pos > start
}

// Rest consumes the remaining text and returns it without surrounding
// blanks.
func (r *ArgReader) Rest() string {
	s := strings.TrimSpace(r.text[r.pos:])
	r.pos = len(r.text)
	return s
}

// Word consumes text up to the next unescaped blank. A backslash before a
// blank keeps the blank in the word and is dropped.
func (r *ArgReader) Word() string {
	r.SkipSpace()
	var sb strings.Builder
	for !r.EOF() {
		c := r.text[r.pos]
		if isBlank(c) {
			break
		}
		if c == '\\' && r.pos+1 < len(r.text) && isBlank(r.text[r.pos+1]) {
			sb.WriteByte(r.text[r.pos+1])
			r.pos += 2
			continue
		}
		sb.WriteByte(c)
		r.pos++
	}
	return sb.String()
}

// Words consumes the remaining text as blank-separated words.
func (r *ArgReader) Words() []string {
	var out []string
	for {
		w := r.Word()
		if w == "" {
			return out
		}
		out = append(out, w)
	}
}

// Delimited consumes text up to an unescaped delim and the delimiter
// itself. A backslash escapes the next character; both are kept. The
// second result is false if the text ended first.
func (r *ArgReader) Delimited(delim rune) (string, bool) {
	var sb strings.Builder
	for !r.EOF() {
		c := r.Next()
		if c == '\\' && !r.EOF() {
			sb.WriteRune(c)
			sb.WriteRune(r.Next())
			continue
		}
		if c == delim {
			return sb.String(), true
		}
		sb.WriteRune(c)
	}
	return sb.String(), false
}

// Count consumes an optional decimal count. A zero count is invalid.
func (r *ArgReader) Count() (int, bool, error) {
	r.SkipSpace()
	start := r.pos
	for !r.EOF() && isDigit(r.text[r.pos]) {
		r.pos++
	}
	if start == r.pos {
		return 0, false, nil
	}
	n, err := strconv.Atoi(r.text[start:r.pos])
	if err != nil || n <= 0 {
		return 0, false, r.errorAt(start, ErrInvalidArgument, r.text[start:r.pos], "positive count required")
	}
	return n, true, nil
}

// Flags consumes a run of characters drawn from allowed.
func (r *ArgReader) Flags(allowed string) []string {
	r.SkipSpace()
	var out []string
	for !r.EOF() && strings.IndexByte(allowed, r.text[r.pos]) >= 0 {
		out = append(out, string(r.text[r.pos]))
		r.pos++
	}
	return out
}

// End fails if unconsumed text other than blanks remains.
func (r *ArgReader) End() error {
	r.SkipSpace()
	if r.EOF() {
		return nil
	}
	return r.errorAt(r.pos, ErrTrailingCharacters, r.text[r.pos:], "")
}

// Error returns a ParseError of the given kind at the current position.
func (r *ArgReader) Error(kind error, msg string) error {
	text := ""
	if !r.EOF() {
		text = r.text[r.pos:]
	}
	return r.errorAt(r.pos, kind, text, msg)
}

func (r *ArgReader) errorAt(pos int, kind error, text, msg string) *ParseError {
	return newParseError(kind, r.src, r.base+pos, text, msg)
}

// Accept consumes prefix if the remaining text starts with it.
func (r *ArgReader) Accept(prefix string) bool {
	if strings.HasPrefix(r.text[r.pos:], prefix) {
		r.pos += len(prefix)
		return true
	}
	return false
}

// Raw consumes the remaining text after leading blanks, keeping trailing
// blanks.
func (r *ArgReader) Raw() string {
	r.SkipSpace()
	s := r.text[r.pos:]
	r.pos = len(r.text)
	return s
}

// offset returns the position of the reader in the whole command line.
func (r *ArgReader) offset() int {
	return r.base + r.pos
}

// rebase moves a ParseError from a nested command line that started at
// offset into the enclosing line.
func (r *ArgReader) rebase(err error, offset int) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		cp := *pe
		cp.Source = r.src
		cp.Pos += offset
		return &cp
	}
	return err
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// validDelimiter reports whether c may delimit a pattern argument.
func validDelimiter(c rune) bool {
	if c == 0 || c == '\\' || c == '"' || c == '|' || c > unicode.MaxASCII {
		return false
	}
	return !unicode.IsLetter(c) && !unicode.IsDigit(c) && !unicode.IsSpace(c)
}
