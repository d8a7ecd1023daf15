package keymap

import (
	"github.com/dshills/vimcore/internal/input/key"
)

// Tree is a prefix tree keyed by key tokens.
type Tree[V any] struct {
	root *node[V]
	size int
}

type node[V any] struct {
	children map[key.Token]*node[V]
	value    V
	set      bool
	// below counts the values stored strictly under this node.
	below int
}

// NewTree creates an empty tree.
func NewTree[V any]() *Tree[V] {
	return &Tree[V]{root: &node[V]{}}
}

// Len returns the number of stored sequences.
func (t *Tree[V]) Len() int {
	return t.size
}

// Insert stores v under seq, replacing any existing value. It reports
// whether a value was replaced. Empty sequences are ignored.
func (t *Tree[V]) Insert(seq key.Sequence, v V) bool {
	if len(seq) == 0 {
		return false
	}
	if _, ok := t.Get(seq); ok {
		n := t.find(seq)
		n.value = v
		return true
	}

	n := t.root
	for _, tok := range seq {
		n.below++
		child, ok := n.children[tok]
		if !ok {
			if n.children == nil {
				n.children = make(map[key.Token]*node[V])
			}
			child = &node[V]{}
			n.children[tok] = child
		}
		n = child
	}
	n.value = v
	n.set = true
	t.size++
	return false
}

// Remove deletes the value stored under seq and prunes empty nodes.
func (t *Tree[V]) Remove(seq key.Sequence) bool {
	if _, ok := t.Get(seq); !ok {
		return false
	}

	path := make([]*node[V], 0, len(seq)+1)
	n := t.root
	path = append(path, n)
	for _, tok := range seq {
		n = n.children[tok]
		path = append(path, n)
	}

	var zero V
	n.value = zero
	n.set = false
	t.size--

	for i := len(path) - 2; i >= 0; i-- {
		parent, child := path[i], path[i+1]
		parent.below--
		if !child.set && len(child.children) == 0 {
			delete(parent.children, seq[i])
		}
	}
	return true
}

// Get returns the value stored under exactly seq.
func (t *Tree[V]) Get(seq key.Sequence) (V, bool) {
	var zero V
	n := t.find(seq)
	if n == nil || !n.set {
		return zero, false
	}
	return n.value, true
}

// HasLonger reports whether some stored sequence strictly extends seq.
func (t *Tree[V]) HasLonger(seq key.Sequence) bool {
	n := t.find(seq)
	return n != nil && n.below > 0
}

// Clear removes every value.
func (t *Tree[V]) Clear() {
	t.root = &node[V]{}
	t.size = 0
}

// Walk calls fn for each stored sequence in no particular order. Returning
// false stops the walk.
func (t *Tree[V]) Walk(fn func(seq key.Sequence, v V) bool) {
	t.walk(t.root, nil, fn)
}

func (t *Tree[V]) walk(n *node[V], prefix key.Sequence, fn func(key.Sequence, V) bool) bool {
	if n.set && !fn(prefix.Clone(), n.value) {
		return false
	}
	for tok, child := range n.children {
		if !t.walk(child, append(prefix, tok), fn) {
			return false
		}
	}
	return true
}

func (t *Tree[V]) find(seq key.Sequence) *node[V] {
	n := t.root
	for _, tok := range seq {
		child, ok := n.children[tok]
		if !ok {
			return nil
		}
		n = child
	}
	return n
}
