package buffer

import (
	"errors"
	"fmt"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrInvalidPattern   = errors.New("invalid pattern")
)

// Span is a half-open byte range.
type Span struct {
	Start int
	End   int
}

// BeforeFirstLine is the span of the virtual line before row 0, produced
// by the line address 0. It is never a valid buffer range.
var BeforeFirstLine = Span{Start: -1, End: -1}

// Point returns an empty span at p.
func Point(p int) Span {
	return Span{Start: p, End: p}
}

// String returns "[start,end)".
func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// Len returns the length of the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// IsEmpty returns true if the span has zero length.
func (s Span) IsEmpty() bool {
	return s.Start == s.End
}

// IsBeforeFirstLine reports whether s is the line-0 sentinel.
func (s Span) IsBeforeFirstLine() bool {
	return s == BeforeFirstLine
}

// Normalize returns the span with Start <= End.
func (s Span) Normalize() Span {
	if s.Start > s.End {
		return Span{Start: s.End, End: s.Start}
	}
	return s
}

// Contains reports whether p lies in the span.
func (s Span) Contains(p int) bool {
	return p >= s.Start && p < s.End
}

// Union returns the smallest span covering both spans.
func (s Span) Union(other Span) Span {
	return Span{Start: min(s.Start, other.Start), End: max(s.End, other.End)}
}

// MarkTarget is what a mark points at: a span in this buffer or, for a
// file mark set in another buffer, that file's path.
type MarkTarget struct {
	Span Span
	File string
}

// InOtherFile reports whether the mark lives in another file.
func (m MarkTarget) InOtherFile() bool {
	return m.File != ""
}

// Buffer is the read capability the core needs from a host buffer or view.
type Buffer interface {
	// CurrentSelections returns the selections, one per cursor. An empty
	// span is a caret.
	CurrentSelections() []Span

	// LineAt returns the span of the line containing point.
	LineAt(point int) Span

	// LineAtRow returns the span of line row, clamped to the buffer.
	LineAtRow(row int) Span

	// RowOf returns the row containing point.
	RowOf(point int) int

	// LineCount returns the number of lines; an empty buffer has one.
	LineCount() int

	// Size returns the length in bytes.
	Size() int

	// Substr returns the text in s.
	Substr(s Span) string

	// FindForward returns the first match of pattern starting at or after
	// from. A malformed pattern is an error wrapping ErrInvalidPattern.
	FindForward(pattern string, from int) (Span, bool, error)

	// FindBackward returns the last match of pattern that starts in
	// [from, to).
	FindBackward(pattern string, from, to int) (Span, bool, error)

	// MarkLookup returns the target of mark name.
	MarkLookup(name rune) (MarkTarget, bool)
}
