package keymap

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/dshills/vimcore/internal/input/key"
	"github.com/dshills/vimcore/internal/input/mode"
)

// Mapping is one user mapping in one mode.
type Mapping struct {
	Mode mode.Mode
	LHS  key.Sequence
	RHS  key.Sequence

	// Noremap mappings are replayed without user mappings. Every replay is
	// non-recursive in this core; the flag is kept for :map listings and
	// for hosts that care.
	Noremap bool

	// Silent, Nowait and Unique carry the <silent>, <nowait> and <unique>
	// attributes of :map.
	Silent bool
	Nowait bool
	Unique bool

	// Source names where the mapping came from: "ex", "config", "lua" or a
	// file path.
	Source string
}

// String formats the mapping the way :map lists it.
func (m Mapping) String() string {
	star := " "
	if m.Noremap {
		star = "*"
	}
	return fmt.Sprintf("%-2s %-12s %s %s", m.Mode.Letter(), m.LHS.String(), star, m.RHS.String())
}

// ErrMappingExists is returned for a <unique> mapping whose lhs is taken.
var ErrMappingExists = errors.New("mapping already exists")

// Table holds the user mappings of every mode. It is safe for concurrent
// use.
type Table struct {
	mu    sync.RWMutex
	trees map[mode.Mode]*Tree[Mapping]
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{trees: make(map[mode.Mode]*Tree[Mapping])}
}

// Map adds m, replacing an existing mapping of the same lhs in its mode.
func (t *Table) Map(m Mapping) error {
	if len(m.LHS) == 0 {
		return fmt.Errorf("keymap: empty lhs")
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	tree := t.trees[m.Mode]
	if tree == nil {
		tree = NewTree[Mapping]()
		t.trees[m.Mode] = tree
	}
	if m.Unique {
		if _, ok := tree.Get(m.LHS); ok {
			return fmt.Errorf("%w: %s", ErrMappingExists, m.LHS)
		}
	}
	m.LHS = m.LHS.Clone()
	m.RHS = m.RHS.Clone()
	tree.Insert(m.LHS, m)
	return nil
}

// MapModes adds the same mapping to each mode.
func (t *Table) MapModes(modes []mode.Mode, m Mapping) error {
	for _, md := range modes {
		m.Mode = md
		if err := t.Map(m); err != nil {
			return err
		}
	}
	return nil
}

// Unmap removes the mapping of lhs in md.
func (t *Table) Unmap(md mode.Mode, lhs key.Sequence) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	tree := t.trees[md]
	if tree == nil {
		return false
	}
	return tree.Remove(lhs)
}

// Clear removes every mapping of md.
func (t *Table) Clear(md mode.Mode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.trees, md)
}

// Lookup returns the mapping whose lhs is exactly seq.
func (t *Table) Lookup(md mode.Mode, seq key.Sequence) (Mapping, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tree := t.trees[md]
	if tree == nil {
		return Mapping{}, false
	}
	return tree.Get(seq)
}

// HasLonger reports whether seq is a strict prefix of some lhs in md.
func (t *Table) HasLonger(md mode.Mode, seq key.Sequence) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tree := t.trees[md]
	return tree != nil && tree.HasLonger(seq)
}

// Mappings returns the mappings of md sorted by lhs.
func (t *Table) Mappings(md mode.Mode) []Mapping {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tree := t.trees[md]
	if tree == nil {
		return nil
	}
	out := make([]Mapping, 0, tree.Len())
	tree.Walk(func(_ key.Sequence, m Mapping) bool {
		out = append(out, m)
		return true
	})
	slices.SortFunc(out, func(a, b Mapping) int {
		return strings.Compare(a.LHS.String(), b.LHS.String())
	})
	return out
}

// Len returns the number of mappings across all modes.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, tree := range t.trees {
		n += tree.Len()
	}
	return n
}

// RemoveSource drops every mapping that came from source.
func (t *Table) RemoveSource(source string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	removed := 0
	for _, tree := range t.trees {
		var drop []key.Sequence
		tree.Walk(func(seq key.Sequence, m Mapping) bool {
			if m.Source == source {
				drop = append(drop, seq)
			}
			return true
		})
		for _, seq := range drop {
			if tree.Remove(seq) {
				removed++
			}
		}
	}
	return removed
}
