// Package register stores the text registers yank, delete and put use.
package register

import (
	"strings"
	"sync"
	"unicode"
)

// Register is the content of one register.
type Register struct {
	Text     string
	Linewise bool
}

// Unnamed is the register used when none is given.
const Unnamed = '"'

// Store holds the registers. It is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	regs map[rune]Register
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{regs: make(map[rune]Register)}
}

// Get returns register name; 0 means the unnamed register.
func (s *Store) Get(name rune) (Register, bool) {
	if name == 0 {
		name = Unnamed
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.regs[unicode.ToLower(name)]
	return r, ok
}

// Yank stores text yanked into name. The unnamed register and "0 follow
// every yank unless name is the black hole register.
func (s *Store) Yank(name rune, r Register) {
	s.store(name, r, false)
}

// Delete stores deleted text. Unnamed deletes of whole lines or of text
// spanning lines shift "1 to "9; smaller ones go to "-.
func (s *Store) Delete(name rune, r Register) {
	s.store(name, r, true)
}

func (s *Store) store(name rune, r Register, deleted bool) {
	if name == '_' {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case name >= 'A' && name <= 'Z':
		lower := unicode.ToLower(name)
		prev := s.regs[lower]
		if prev.Linewise && !r.Linewise {
			r.Text = prev.Text + r.Text + "\n"
		} else {
			r.Text = prev.Text + r.Text
		}
		r.Linewise = prev.Linewise || r.Linewise
		s.regs[lower] = r
	case name != 0 && name != Unnamed:
		s.regs[name] = r
	case deleted && (r.Linewise || strings.Contains(r.Text, "\n")):
		for i := '9'; i > '1'; i-- {
			if prev, ok := s.regs[i-1]; ok {
				s.regs[i] = prev
			}
		}
		s.regs['1'] = r
	case deleted:
		s.regs['-'] = r
	default:
		s.regs['0'] = r
	}
	s.regs[Unnamed] = r
}

// Names returns the names of the non-empty registers.
func (s *Store) Names() []rune {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []rune
	for _, name := range `"0123456789-abcdefghijklmnopqrstuvwxyz` {
		if _, ok := s.regs[name]; ok {
			out = append(out, name)
		}
	}
	return out
}
