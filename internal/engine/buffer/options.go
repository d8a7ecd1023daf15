package buffer

import "strings"

// Option is a functional option for configuring a Memory buffer.
type Option func(*Memory)

// WithSelections sets the initial selections. An empty list keeps the
// default caret at offset 0.
func WithSelections(sels ...Span) Option {
	return func(m *Memory) {
		if len(sels) > 0 {
			m.selections = append([]Span(nil), sels...)
		}
	}
}

// WithMark sets a mark.
func WithMark(name rune, target MarkTarget) Option {
	return func(m *Memory) {
		m.marks[name] = target
	}
}

// WithIgnoreCase makes searches case-insensitive.
func WithIgnoreCase(on bool) Option {
	return func(m *Memory) {
		m.ignoreCase = on
	}
}

// WithPath records the file the buffer was loaded from.
func WithPath(path string) Option {
	return func(m *Memory) {
		m.path = path
	}
}

// normalizeLineEndings converts CRLF and CR line endings to LF.
func normalizeLineEndings(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
