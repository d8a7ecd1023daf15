package ex

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Scanner splits a command line into Tokens. It yields range tokens one at
// a time, then at most one Command token, then TokenEOF forever. After an
// error every call returns the same error.
type Scanner struct {
	src string
	reg *Registry
	pos int

	started    bool
	done       bool
	err        error
	prev       TokenKind
	rangeStart int
	sawRange   bool

	// rangeOnly rejects command names; used for sub-addresses.
	rangeOnly bool
}

// NewScanner creates a scanner over src, the text after the leading ":".
// A nil registry means DefaultRegistry.
func NewScanner(src string, reg *Registry) *Scanner {
	if reg == nil {
		reg = DefaultRegistry()
	}
	return &Scanner{src: src, reg: reg, rangeStart: -1}
}

// Next returns the next token.
func (s *Scanner) Next() (Token, error) {
	if s.err != nil {
		return Token{Kind: TokenEOF, Pos: s.pos}, s.err
	}
	if !s.started {
		s.started = true
		for s.pos < len(s.src) && (s.src[s.pos] == ':' || isBlank(s.src[s.pos])) {
			s.pos++
		}
	}
	s.skipBlanks()
	if s.done || s.pos >= len(s.src) {
		s.done = true
		return Token{Kind: TokenEOF, Pos: s.pos}, nil
	}

	start := s.pos
	c := s.src[s.pos]
	var tok Token
	switch {
	case isDigit(c):
		for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
			s.pos++
		}
		n, err := strconv.Atoi(s.src[start:s.pos])
		if err != nil {
			return s.fail(ErrBadRange, start, s.src[start:s.pos], "line number out of range")
		}
		tok = Token{Kind: TokenDigits, Line: n}
	case c == '.' || c == '$':
		if s.prev == TokenOffset && s.sawRange {
			return s.fail(ErrBadRange, start, s.src[start:], "")
		}
		s.pos++
		tok = Token{Kind: TokenDot}
		if c == '$' {
			tok.Kind = TokenDollar
		}
	case c == '%':
		s.pos++
		tok = Token{Kind: TokenPercent}
	case c == '\'':
		s.pos++
		if s.pos >= len(s.src) || isBlank(s.src[s.pos]) {
			return s.fail(ErrBadRange, start, s.src[start:], "missing mark name")
		}
		r, n := utf8.DecodeRuneInString(s.src[s.pos:])
		s.pos += n
		tok = Token{Kind: TokenMark, Mark: r}
	case c == '/' || c == '?':
		tok = Token{Kind: TokenSearchForward, Pattern: s.pattern(c)}
		if c == '?' {
			tok.Kind = TokenSearchBackward
		}
	case c == '+' || c == '-':
		deltas, err := s.offsets()
		if err != nil {
			return s.fail(ErrBadRange, start, s.src[start:s.pos], "offset out of range")
		}
		tok = Token{Kind: TokenOffset, Deltas: deltas}
	case c == ',':
		s.pos++
		tok = Token{Kind: TokenComma}
	case c == ';':
		s.pos++
		tok = Token{Kind: TokenSemicolon}
	default:
		return s.command(start)
	}

	tok.Pos = start
	s.prev = tok.Kind
	if !s.sawRange {
		s.sawRange = true
		s.rangeStart = start
	}
	return tok, nil
}

func (s *Scanner) skipBlanks() {
	for s.pos < len(s.src) && isBlank(s.src[s.pos]) {
		s.pos++
	}
}

// pattern reads a search pattern after its opening delimiter. The pattern
// runs to the next unescaped delimiter or the end of the line.
func (s *Scanner) pattern(delim byte) string {
	s.pos++
	var sb strings.Builder
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '\\' && s.pos+1 < len(s.src) {
			sb.WriteString(s.src[s.pos : s.pos+2])
			s.pos += 2
			continue
		}
		s.pos++
		if c == delim {
			break
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// offsets reads a run of "+N", "-N", "+" and "-".
func (s *Scanner) offsets() ([]int, error) {
	var deltas []int
	for s.pos < len(s.src) && (s.src[s.pos] == '+' || s.src[s.pos] == '-') {
		sign := 1
		if s.src[s.pos] == '-' {
			sign = -1
		}
		s.pos++
		start := s.pos
		for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
			s.pos++
		}
		n := 1
		if s.pos > start {
			v, err := strconv.Atoi(s.src[start:s.pos])
			if err != nil {
				return nil, err
			}
			n = v
		}
		deltas = append(deltas, sign*n)
	}
	return deltas, nil
}

func (s *Scanner) command(start int) (Token, error) {
	rest := s.src[start:]
	if s.rangeOnly {
		return s.fail(ErrTrailingCharacters, start, rest, "")
	}
	def, name, ok := s.reg.Match(rest)
	if !ok {
		return s.fail(ErrUnknownCommand, start, commandWord(rest), "")
	}
	if s.sawRange && !def.Addressable {
		return s.fail(ErrNoRangeAllowed, s.rangeStart, strings.TrimSpace(s.src[s.rangeStart:start]), "")
	}
	s.pos = start + len(name)

	forced := false
	if s.pos < len(s.src) && s.src[s.pos] == '!' {
		switch {
		case def.Forceable:
			forced = true
			s.pos++
		case def.Scan == nil:
			return s.fail(ErrNoBangAllowed, s.pos, "", "")
		}
	}

	ar := &ArgReader{
		Name:   name,
		Forced: forced,
		reg:    s.reg,
		src:    s.src,
		text:   s.src[s.pos:],
		base:   s.pos,
	}
	var params Params
	if def.Scan != nil {
		p, err := def.Scan(ar)
		if err != nil {
			s.err = err
			s.done = true
			return Token{Kind: TokenEOF, Pos: start}, err
		}
		params = p
	} else if err := ar.End(); err != nil {
		s.err = err
		s.done = true
		return Token{Kind: TokenEOF, Pos: start}, err
	}
	s.pos = len(s.src)
	s.done = true
	s.prev = TokenCommand

	return Token{
		Kind: TokenCommand,
		Pos:  start,
		Command: &Command{
			Name:        def.Name,
			Handler:     def.Handler,
			Params:      params,
			Forced:      forced,
			Addressable: def.Addressable,
			Global:      def.Global,
			Default:     def.Default,
		},
	}, nil
}

func (s *Scanner) fail(kind error, pos int, text, msg string) (Token, error) {
	s.err = newParseError(kind, s.src, pos, text, msg)
	s.done = true
	return Token{Kind: TokenEOF, Pos: pos}, s.err
}

// commandWord returns the leading letters of text, or its first character.
func commandWord(text string) string {
	i := 0
	for i < len(text) && isLetter(text[i]) {
		i++
	}
	if i == 0 {
		_, n := utf8.DecodeRuneInString(text)
		return text[:n]
	}
	return text[:i]
}
