package ex

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
)

// ArgScanner validates the text after a command name and returns its
// parameters. It must report missing or malformed arguments as errors
// instead of defaulting them.
type ArgScanner func(r *ArgReader) (Params, error)

// Definition describes one Ex command.
type Definition struct {
	// Name is the canonical command name.
	Name string

	// Handler is the dispatch identifier; defaults to "ex.<Name>".
	Handler string

	// Addressable is true if a range may precede the command.
	Addressable bool

	// Forceable is true if the command accepts a "!" suffix.
	Forceable bool

	// Global is true if :global may run the command on matched lines.
	Global bool

	// Default is the range used when none is typed.
	Default DefaultRange

	// Scan parses the arguments. Nil means the command takes none.
	Scan ArgScanner
}

type route struct {
	pattern string
	re      *regexp2.Regexp
	def     *Definition
}

// Registry maps command names to definitions through an ordered list of
// anchored regexp routes. The first route that matches wins.
type Registry struct {
	routes []*route
	byPat  map[string]*route
	byName map[string]*Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byPat:  make(map[string]*route),
		byName: make(map[string]*Definition),
	}
}

// Register appends a route. Registering a pattern that already exists
// replaces its definition in place and keeps its position.
func (r *Registry) Register(pattern string, def *Definition) error {
	if def == nil || def.Name == "" {
		return fmt.Errorf("ex: register %q: definition needs a name", pattern)
	}
	if def.Handler == "" {
		def.Handler = "ex." + def.Name
	}
	if rt, ok := r.byPat[pattern]; ok {
		rt.def = def
		r.byName[def.Name] = def
		return nil
	}
	re, err := regexp2.Compile(`^(?:`+pattern+`)`, regexp2.None)
	if err != nil {
		return fmt.Errorf("ex: register %q: %w", pattern, err)
	}
	rt := &route{pattern: pattern, re: re, def: def}
	r.routes = append(r.routes, rt)
	r.byPat[pattern] = rt
	r.byName[def.Name] = def
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(pattern string, def *Definition) {
	if err := r.Register(pattern, def); err != nil {
		panic(err)
	}
}

// Match finds the first route matching the start of text. It returns the
// definition and the matched name text.
func (r *Registry) Match(text string) (*Definition, string, bool) {
	for _, rt := range r.routes {
		m, err := rt.re.FindStringMatch(text)
		if err != nil || m == nil || m.Length == 0 {
			continue
		}
		return rt.def, m.String(), true
	}
	return nil, "", false
}

// Lookup returns the definition with the given canonical name.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	def, ok := r.byName[name]
	return def, ok
}

// Definitions returns every distinct definition in route order.
func (r *Registry) Definitions() []*Definition {
	seen := make(map[*Definition]bool, len(r.routes))
	defs := make([]*Definition, 0, len(r.routes))
	for _, rt := range r.routes {
		if !seen[rt.def] {
			seen[rt.def] = true
			defs = append(defs, rt.def)
		}
	}
	return defs
}

// Patterns returns the route patterns in order.
func (r *Registry) Patterns() []string {
	out := make([]string, len(r.routes))
	for i, rt := range r.routes {
		out[i] = rt.pattern
	}
	return out
}

// Len returns the number of routes.
func (r *Registry) Len() int {
	return len(r.routes)
}

// abbr builds an abbreviation pattern: the required prefix followed by any
// leading part of rest, not followed by another letter. abbr("s", "ub")
// matches "s" and "su" and "sub".
func abbr(required, rest string) string {
	var sb strings.Builder
	sb.WriteString(regexp2.Escape(required))
	for _, c := range rest {
		sb.WriteString("(?:")
		sb.WriteString(regexp2.Escape(string(c)))
	}
	sb.WriteString(strings.Repeat(")?", len([]rune(rest))))
	sb.WriteString(`(?![A-Za-z])`)
	return sb.String()
}
