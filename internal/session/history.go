package session

import (
	"fmt"
	"slices"
	"sync"
)

// HistoryKind names one of the command-line histories.
type HistoryKind uint8

const (
	HistoryCmd HistoryKind = iota
	HistorySearch
	HistoryInput
)

var historyNames = [...]string{
	HistoryCmd:    "cmd",
	HistorySearch: "search",
	HistoryInput:  "input",
}

func (k HistoryKind) String() string {
	if int(k) < len(historyNames) {
		return historyNames[k]
	}
	return fmt.Sprintf("history(%d)", k)
}

// ParseHistoryKind accepts the names :history takes: "cmd", ":", "search",
// "/", "?", "input", "@" and any prefix of the words.
func ParseHistoryKind(s string) (HistoryKind, bool) {
	switch s {
	case "", ":":
		return HistoryCmd, true
	case "/", "?":
		return HistorySearch, true
	case "@":
		return HistoryInput, true
	}
	for i, name := range historyNames {
		if len(s) <= len(name) && name[:len(s)] == s {
			return HistoryKind(i), true
		}
	}
	return 0, false
}

// HistoryEntry is one remembered line with its 1-based number.
type HistoryEntry struct {
	Number int
	Line   string
}

// History remembers command lines and search patterns, most recent last.
// A repeated line moves to the end instead of being stored twice.
type History struct {
	mu      sync.Mutex
	max     int
	next    [len(historyNames)]int
	entries [len(historyNames)][]HistoryEntry
}

// NewHistory creates a history that keeps max lines per kind.
func NewHistory(max int) *History {
	return &History{max: max}
}

// SetMax changes the bound and drops the oldest lines beyond it.
func (h *History) SetMax(max int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.max = max
	for k := range h.entries {
		h.trim(HistoryKind(k))
	}
}

// Add appends line to kind.
func (h *History) Add(kind HistoryKind, line string) {
	if line == "" || int(kind) >= len(h.entries) {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	list := slices.DeleteFunc(h.entries[kind], func(e HistoryEntry) bool {
		return e.Line == line
	})
	h.next[kind]++
	h.entries[kind] = append(list, HistoryEntry{Number: h.next[kind], Line: line})
	h.trim(kind)
}

func (h *History) trim(kind HistoryKind) {
	if h.max <= 0 {
		h.entries[kind] = nil
		return
	}
	if n := len(h.entries[kind]); n > h.max {
		h.entries[kind] = slices.Clone(h.entries[kind][n-h.max:])
	}
}

// Entries returns the lines of kind, oldest first.
func (h *History) Entries(kind HistoryKind) []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	if int(kind) >= len(h.entries) {
		return nil
	}
	return slices.Clone(h.entries[kind])
}

// Last returns the most recent line of kind.
func (h *History) Last(kind HistoryKind) (string, bool) {
	e := h.Entries(kind)
	if len(e) == 0 {
		return "", false
	}
	return e[len(e)-1].Line, true
}

// Range returns the entries of kind numbered first..last. Negative numbers
// count back from the newest entry, -1 being the newest.
func (h *History) Range(kind HistoryKind, first, last int) []HistoryEntry {
	entries := h.Entries(kind)
	if len(entries) == 0 {
		return nil
	}
	newest := entries[len(entries)-1].Number
	abs := func(n int) int {
		if n < 0 {
			return newest + n + 1
		}
		return n
	}
	first, last = abs(first), abs(last)
	var out []HistoryEntry
	for _, e := range entries {
		if e.Number >= first && e.Number <= last {
			out = append(out, e)
		}
	}
	return out
}
