package buffer

import (
	"fmt"

	"github.com/dlclark/regexp2"
)

// searcher compiles and caches search patterns.
type searcher struct {
	cache map[string]*regexp2.Regexp
}

func newSearcher() *searcher {
	return &searcher{cache: make(map[string]*regexp2.Regexp)}
}

func (s *searcher) compile(pattern string, ignoreCase bool) (*regexp2.Regexp, error) {
	key := pattern
	opts := regexp2.RegexOptions(regexp2.Multiline)
	if ignoreCase {
		key = "(?i)" + pattern
		opts |= regexp2.IgnoreCase
	}
	if re, ok := s.cache[key]; ok {
		return re, nil
	}
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err)
	}
	s.cache[key] = re
	return re, nil
}

// runeIndex maps between byte offsets and rune indexes of a text.
type runeIndex struct {
	runes   []rune
	offsets []int // byte offset of each rune, plus len(text)
}

func newRuneIndex(text string) *runeIndex {
	idx := &runeIndex{
		runes:   make([]rune, 0, len(text)),
		offsets: make([]int, 0, len(text)+1),
	}
	for i, r := range text {
		idx.runes = append(idx.runes, r)
		idx.offsets = append(idx.offsets, i)
	}
	idx.offsets = append(idx.offsets, len(text))
	return idx
}

// runeAt returns the rune index of the first rune at or after byte offset.
func (idx *runeIndex) runeAt(offset int) int {
	lo, hi := 0, len(idx.offsets)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if idx.offsets[mid] < offset {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

func (idx *runeIndex) span(m *regexp2.Match) Span {
	return Span{Start: idx.offsets[m.Index], End: idx.offsets[m.Index+m.Length]}
}

// FindForward implements Buffer.
func (m *Memory) FindForward(pattern string, from int) (Span, bool, error) {
	re, err := m.searcher.compile(pattern, m.ignoreCase)
	if err != nil {
		return Span{}, false, err
	}
	from = m.clamp(from)
	idx := newRuneIndex(m.text)
	match, err := re.FindRunesMatchStartingAt(idx.runes, idx.runeAt(from))
	if err != nil {
		return Span{}, false, err
	}
	if match == nil {
		return Span{}, false, nil
	}
	return idx.span(match), true, nil
}

// FindBackward implements Buffer.
func (m *Memory) FindBackward(pattern string, from, to int) (Span, bool, error) {
	re, err := m.searcher.compile(pattern, m.ignoreCase)
	if err != nil {
		return Span{}, false, err
	}
	from, to = m.clamp(from), m.clamp(to)
	idx := newRuneIndex(m.text)
	match, err := re.FindRunesMatchStartingAt(idx.runes, idx.runeAt(from))
	var last Span
	found := false
	for err == nil && match != nil {
		s := idx.span(match)
		if s.Start >= to {
			break
		}
		last, found = s, true
		match, err = re.FindNextMatch(match)
	}
	if err != nil {
		return Span{}, false, err
	}
	return last, found, nil
}
