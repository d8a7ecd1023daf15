package buffer

import (
	"slices"
	"strings"

	"github.com/dlclark/regexp2"
)

// Anchors are line-start offsets that follow edits, the way :global marks
// the lines it will visit. An anchor is dropped when its line is deleted or
// joined onto the line above.
type Anchors struct {
	offsets []int
	live    []bool
}

// Len returns the number of anchors, dropped ones included.
func (a *Anchors) Len() int {
	return len(a.offsets)
}

// At returns anchor i, or false once it has been dropped.
func (a *Anchors) At(i int) (int, bool) {
	return a.offsets[i], a.live[i]
}

// Track starts tracking offsets through later edits until Untrack.
func (m *Memory) Track(offsets ...int) *Anchors {
	a := &Anchors{offsets: slices.Clone(offsets), live: make([]bool, len(offsets))}
	for i := range a.live {
		a.live[i] = true
	}
	m.anchors = append(m.anchors, a)
	return a
}

// Untrack stops tracking a.
func (m *Memory) Untrack(a *Anchors) {
	m.anchors = slices.DeleteFunc(m.anchors, func(x *Anchors) bool { return x == a })
}

// moveAnchors updates the anchors for replacing s with text. It runs
// before the text changes.
func (m *Memory) moveAnchors(s Span, text string) {
	delta := len(text) - s.Len()
	joined := s.Len() > 0 && !m.isLineStart(s.Start) && !strings.HasSuffix(text, "\n")
	for _, a := range m.anchors {
		for i, p := range a.offsets {
			if !a.live[i] {
				continue
			}
			switch {
			case p == s.End && joined:
				a.live[i] = false
			case p >= s.End:
				a.offsets[i] = p + delta
			case p > s.Start:
				a.live[i] = false
			case p == s.Start && s.Len() > 0 && s.End >= m.lineEnd(p):
				a.live[i] = false
			}
		}
	}
}

func (m *Memory) isLineStart(p int) bool {
	return p == 0 || m.text[p-1] == '\n'
}

// lineEnd returns the offset after the terminator of the line starting at p.
func (m *Memory) lineEnd(p int) int {
	if i := strings.IndexByte(m.text[p:], '\n'); i >= 0 {
		return p + i + 1
	}
	return len(m.text)
}

// Compile compiles pattern with the buffer's search options. ignoreCase
// overrides the buffer default.
func (m *Memory) Compile(pattern string, ignoreCase bool) (*regexp2.Regexp, error) {
	return m.searcher.compile(pattern, ignoreCase)
}

// IgnoreCase reports the buffer's default search case sensitivity.
func (m *Memory) IgnoreCase() bool {
	return m.ignoreCase
}

// SetIgnoreCase changes the default search case sensitivity.
func (m *Memory) SetIgnoreCase(on bool) {
	m.ignoreCase = on
}
