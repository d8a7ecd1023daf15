package buffer

import (
	"io"
	"sort"
	"strings"
)

// Memory is an in-memory Buffer holding LF-normalized text.
type Memory struct {
	text       string
	lineStarts []int
	selections []Span
	marks      map[rune]MarkTarget
	ignoreCase bool
	path       string
	revision   int
	searcher   *searcher
	anchors    []*Anchors
}

// NewMemory creates a buffer holding text, with a caret at offset 0.
func NewMemory(text string, opts ...Option) *Memory {
	m := &Memory{
		marks:    make(map[rune]MarkTarget),
		searcher: newSearcher(),
	}
	m.setText(normalizeLineEndings(text))
	m.selections = []Span{Point(0)}
	for _, opt := range opts {
		opt(m)
	}
	m.clampSelections()
	return m
}

// NewMemoryFromReader creates a buffer from r.
func NewMemoryFromReader(r io.Reader, opts ...Option) (*Memory, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewMemory(string(data), opts...), nil
}

func (m *Memory) setText(text string) {
	m.text = text
	m.lineStarts = m.lineStarts[:0]
	m.lineStarts = append(m.lineStarts, 0)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' && i+1 < len(text) {
			m.lineStarts = append(m.lineStarts, i+1)
		}
	}
	m.revision++
}

// Text returns the whole buffer.
func (m *Memory) Text() string {
	return m.text
}

// Path returns the file the buffer was loaded from, if any.
func (m *Memory) Path() string {
	return m.path
}

// Revision increments on every change to the text.
func (m *Memory) Revision() int {
	return m.revision
}

// Size implements Buffer.
func (m *Memory) Size() int {
	return len(m.text)
}

// LineCount implements Buffer.
func (m *Memory) LineCount() int {
	return len(m.lineStarts)
}

// RowOf implements Buffer.
func (m *Memory) RowOf(point int) int {
	point = m.clamp(point)
	// First line start greater than point, minus one.
	return sort.SearchInts(m.lineStarts, point+1) - 1
}

// LineAtRow implements Buffer.
func (m *Memory) LineAtRow(row int) Span {
	row = max(0, min(row, len(m.lineStarts)-1))
	start := m.lineStarts[row]
	var end int
	if row+1 < len(m.lineStarts) {
		end = m.lineStarts[row+1] - 1
	} else {
		end = len(m.text)
		if end > start && m.text[end-1] == '\n' {
			end--
		}
	}
	return Span{Start: start, End: end}
}

// LineAt implements Buffer.
func (m *Memory) LineAt(point int) Span {
	return m.LineAtRow(m.RowOf(point))
}

// LineText returns the text of line row without its terminator.
func (m *Memory) LineText(row int) string {
	return m.Substr(m.LineAtRow(row))
}

// FullLineAtRow returns the span of line row including its terminator.
func (m *Memory) FullLineAtRow(row int) Span {
	s := m.LineAtRow(row)
	if s.End < len(m.text) {
		s.End++
	}
	return s
}

// Substr implements Buffer.
func (m *Memory) Substr(s Span) string {
	s = s.Normalize()
	start, end := m.clamp(s.Start), m.clamp(s.End)
	return m.text[start:end]
}

// CurrentSelections implements Buffer.
func (m *Memory) CurrentSelections() []Span {
	return append([]Span(nil), m.selections...)
}

// SetSelections replaces the selections. At least one is kept.
func (m *Memory) SetSelections(sels ...Span) {
	if len(sels) == 0 {
		sels = []Span{Point(0)}
	}
	m.selections = append(m.selections[:0], sels...)
	m.clampSelections()
}

// Cursor returns the caret of the first selection.
func (m *Memory) Cursor() int {
	return m.selections[0].End
}

// MarkLookup implements Buffer.
func (m *Memory) MarkLookup(name rune) (MarkTarget, bool) {
	t, ok := m.marks[name]
	return t, ok
}

// SetMark sets mark name to span.
func (m *Memory) SetMark(name rune, target MarkTarget) {
	m.marks[name] = target
}

// Replace replaces the text in s with text and returns the span of the
// inserted text. Selections and marks after the edit shift with it.
func (m *Memory) Replace(s Span, text string) (Span, error) {
	s = s.Normalize()
	if s.Start < 0 || s.End > len(m.text) {
		return Span{}, ErrOffsetOutOfRange
	}
	text = normalizeLineEndings(text)
	m.moveAnchors(s, text)
	var sb strings.Builder
	sb.Grow(len(m.text) - s.Len() + len(text))
	sb.WriteString(m.text[:s.Start])
	sb.WriteString(text)
	sb.WriteString(m.text[s.End:])
	m.setText(sb.String())

	delta := len(text) - s.Len()
	shift := func(p int) int {
		switch {
		case p >= s.End:
			return p + delta
		case p > s.Start:
			return s.Start
		}
		return p
	}
	for i, sel := range m.selections {
		m.selections[i] = Span{Start: shift(sel.Start), End: shift(sel.End)}
	}
	for name, t := range m.marks {
		if !t.InOtherFile() {
			m.marks[name] = MarkTarget{Span: Span{Start: shift(t.Span.Start), End: shift(t.Span.End)}}
		}
	}
	m.clampSelections()
	return Span{Start: s.Start, End: s.Start + len(text)}, nil
}

// Insert inserts text at point.
func (m *Memory) Insert(point int, text string) (Span, error) {
	return m.Replace(Point(point), text)
}

// Delete removes the text in s.
func (m *Memory) Delete(s Span) error {
	_, err := m.Replace(s, "")
	return err
}

func (m *Memory) clamp(p int) int {
	return max(0, min(p, len(m.text)))
}

func (m *Memory) clampSelections() {
	for i, s := range m.selections {
		m.selections[i] = Span{Start: m.clamp(s.Start), End: m.clamp(s.End)}
	}
}
