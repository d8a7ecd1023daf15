package vim

import (
	"github.com/dshills/vimcore/internal/input/key"
	"github.com/dshills/vimcore/internal/input/keymap"
	"github.com/dshills/vimcore/internal/input/mode"
)

// ResolutionKind is the outcome of resolving a partial sequence.
type ResolutionKind uint8

const (
	NotFound ResolutionKind = iota
	// Complete means a built-in command matched exactly.
	Complete
	// Mapped means a user mapping matched exactly.
	Mapped
	// Incomplete means a longer command or mapping starts with the
	// sequence.
	Incomplete
)

func (k ResolutionKind) String() string {
	switch k {
	case Complete:
		return "complete"
	case Mapped:
		return "mapped"
	case Incomplete:
		return "incomplete"
	}
	return "not-found"
}

// Resolution is what a sequence resolved to.
type Resolution struct {
	Kind    ResolutionKind
	Command Descriptor
	Mapping keymap.Mapping

	// Exact is set on an Incomplete resolution whose sequence also
	// matched exactly: the match to run when the next key rules out the
	// longer user mappings.
	Exact *Resolution
}

// Resolver looks key sequences up in the user mappings and the built-in
// tables.
type Resolver struct {
	user     *keymap.Table
	builtins Builtins
}

// NewResolver creates a resolver. user may be nil.
func NewResolver(user *keymap.Table, builtins Builtins) *Resolver {
	if builtins == nil {
		builtins = make(Builtins)
	}
	return &Resolver{user: user, builtins: builtins}
}

// Builtins returns the built-in tables.
func (r *Resolver) Builtins() Builtins {
	return r.builtins
}

// Resolve resolves seq in md. The order is: exact user mapping, exact
// built-in, then prefix of anything longer. An exact match that is also
// the prefix of a longer user mapping is Incomplete with Exact set. remap
// false skips user mappings entirely.
func (r *Resolver) Resolve(md mode.Mode, seq key.Sequence, remap bool) Resolution {
	if len(seq) == 0 {
		return Resolution{Kind: NotFound}
	}
	useUser := remap && r.user != nil
	var exact *Resolution
	if useUser {
		if m, ok := r.user.Lookup(md, seq); ok {
			exact = &Resolution{Kind: Mapped, Mapping: m}
		}
	}
	if exact == nil {
		if d, ok := r.builtins.Lookup(md, seq); ok {
			exact = &Resolution{Kind: Complete, Command: d}
		}
	}
	longerUser := useUser && r.user.HasLonger(md, seq)
	switch {
	case exact != nil && longerUser:
		return Resolution{Kind: Incomplete, Exact: exact}
	case exact != nil:
		return *exact
	case longerUser || r.builtins.HasLonger(md, seq):
		return Resolution{Kind: Incomplete}
	}
	return Resolution{Kind: NotFound}
}
