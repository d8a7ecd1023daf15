package key

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
)

// Tokenizer splits a key notation string into Tokens, one per call to
// Next. It is not restartable.
type Tokenizer struct {
	src   string
	rest  string
	state int
	err   error
}

// NewTokenizer creates a tokenizer over the notation string.
func NewTokenizer(notation string) *Tokenizer {
	return &Tokenizer{
		src:   notation,
		rest:  notation,
		state: -1,
	}
}

// Next returns the next token. It returns false once the input is
// exhausted or an error occurred; Err distinguishes the two.
func (t *Tokenizer) Next() (Token, bool) {
	if t.err != nil || t.rest == "" {
		return "", false
	}

	if t.rest[0] == '<' {
		end := strings.IndexByte(t.rest, '>')
		if end < 0 {
			t.err = fmt.Errorf("%w at offset %d in %q", ErrUnmatchedBracket, t.offset(), t.src)
			return "", false
		}
		ev, err := parseBracketed(t.rest[1:end])
		if err != nil {
			t.err = fmt.Errorf("offset %d in %q: %w", t.offset(), t.src, err)
			return "", false
		}
		t.rest = t.rest[end+1:]
		t.state = -1
		return ev.Token(), true
	}

	var cluster string
	cluster, t.rest, _, t.state = uniseg.FirstGraphemeClusterInString(t.rest, t.state)

	runes := []rune(cluster)
	if len(runes) == 1 {
		return charEvent(runes[0]).Token(), true
	}
	if cluster == "\r\n" {
		return "<CR>", true
	}
	return Token(cluster), true
}

// Err returns the error that stopped tokenization, if any.
func (t *Tokenizer) Err() error {
	return t.err
}

func (t *Tokenizer) offset() int {
	return len(t.src) - len(t.rest)
}

// Tokenize drains a fresh Tokenizer over notation.
func Tokenize(notation string) ([]Token, error) {
	tz := NewTokenizer(notation)
	toks := make([]Token, 0, len(notation))
	for {
		tok, ok := tz.Next()
		if !ok {
			break
		}
		toks = append(toks, tok)
	}
	if err := tz.Err(); err != nil {
		return nil, err
	}
	return toks, nil
}
