package ex

type parserState uint8

const (
	parsingLineRef parserState = iota
	parseDone
)

// Parser builds one ParsedCommandLine from a Scanner. Each token is visited
// once; a Parser cannot be reused.
type Parser struct {
	scanner *Scanner
	state   parserState
	node    RangeNode
	onEnd   bool

	line *ParsedCommandLine
	err  error
}

// NewParser creates a parser for source using reg. A nil registry means
// DefaultRegistry.
func NewParser(source string, reg *Registry) *Parser {
	return &Parser{scanner: NewScanner(source, reg)}
}

// Parse parses source with the default registry.
func Parse(source string) (*ParsedCommandLine, error) {
	return NewParser(source, nil).Parse()
}

// Parse parses source with this registry.
func (r *Registry) Parse(source string) (*ParsedCommandLine, error) {
	return NewParser(source, r).Parse()
}

// ParseRange parses source as a range with no command, as used for the
// destination address of :copy and :move.
func (r *Registry) ParseRange(source string) (RangeNode, error) {
	p := NewParser(source, r)
	p.scanner.rangeOnly = true
	line, err := p.Parse()
	if err != nil {
		return RangeNode{}, err
	}
	return line.Range, nil
}

// Parse consumes the scanner and returns the parsed line. Calling Parse
// again returns the first result.
func (p *Parser) Parse() (*ParsedCommandLine, error) {
	for p.state == parsingLineRef {
		tok, err := p.scanner.Next()
		if err != nil {
			p.done(nil, err)
			break
		}
		switch tok.Kind {
		case TokenEOF:
			p.finish(nil)
		case TokenCommand:
			p.finish(tok.Command)
		default:
			if err := p.addRange(tok); err != nil {
				p.done(nil, err)
			}
		}
	}
	return p.line, p.err
}

func (p *Parser) finish(cmd *Command) {
	line := &ParsedCommandLine{
		Range:   p.node,
		Command: cmd,
		Source:  p.scanner.src,
	}
	if err := line.Validate(); err != nil {
		p.done(nil, err)
		return
	}
	p.done(line, nil)
}

func (p *Parser) done(line *ParsedCommandLine, err error) {
	p.state = parseDone
	p.line = line
	p.err = err
}

// addRange attaches a range token to the side currently being built.
func (p *Parser) addRange(tok Token) error {
	side := &p.node.Start
	if p.onEnd {
		side = &p.node.End
	}

	switch tok.Kind {
	case TokenComma, TokenSemicolon:
		if p.node.Separator != NoSeparator {
			// A later pair replaces the earlier one: 1,2,3,4 is 3,4.
			p.node.Start = p.node.End
			p.node.End = nil
		}
		if len(p.node.Start) == 0 {
			p.node.Start = []Token{{Kind: TokenDot, Pos: tok.Pos}}
		}
		p.node.Separator = Comma
		if tok.Kind == TokenSemicolon {
			p.node.Separator = Semicolon
		}
		p.onEnd = true

	case TokenDigits:
		switch {
		case len(*side) == 0:
			*side = append(*side, tok)
		case len(*side) == 1 && (*side)[0].Kind == TokenDigits:
			(*side)[0] = tok
		default:
			return p.badRange(tok)
		}

	case TokenDot, TokenDollar, TokenPercent, TokenMark:
		if len(*side) != 0 {
			return p.badRange(tok)
		}
		*side = append(*side, tok)

	case TokenSearchForward, TokenSearchBackward:
		kept := (*side)[:0]
		for _, t := range *side {
			if t.Kind != TokenOffset {
				kept = append(kept, t)
			}
		}
		*side = append(kept, tok)

	case TokenOffset:
		if n := len(*side); n > 0 && (*side)[n-1].Kind == TokenOffset {
			last := &(*side)[n-1]
			merged := make([]int, 0, len(last.Deltas)+len(tok.Deltas))
			merged = append(merged, last.Deltas...)
			last.Deltas = append(merged, tok.Deltas...)
			return nil
		}
		*side = append(*side, tok)
	}
	return nil
}

func (p *Parser) badRange(tok Token) error {
	return newParseError(ErrBadRange, p.scanner.src, tok.Pos, p.scanner.src[tok.Pos:], "")
}
