package dispatcher

import (
	"fmt"
	"slices"
	"strings"
)

// Args are the named arguments of a call.
type Args map[string]any

// Call is a handler name and its arguments.
type Call struct {
	Handler string `json:"handler"`
	Args    Args   `json:"args,omitempty"`
}

// NewCall returns a call with a fresh argument map.
func NewCall(handler string) Call {
	return Call{Handler: handler, Args: Args{}}
}

// With returns a copy of c with key set to value.
func (c Call) With(key string, value any) Call {
	args := make(Args, len(c.Args)+1)
	for k, v := range c.Args {
		args[k] = v
	}
	args[key] = value
	return Call{Handler: c.Handler, Args: args}
}

// Namespace returns the handler name up to the first dot.
func (c Call) Namespace() string {
	ns, _, ok := strings.Cut(c.Handler, ".")
	if !ok {
		return ""
	}
	return ns
}

// Motion returns the embedded motion of an operator call.
func (c Call) Motion() (Call, bool) {
	m, ok := c.Args["motion"].(Call)
	return m, ok
}

// Count returns the count argument, 1 when absent.
func (c Call) Count() int {
	if n, ok := c.Args.Int("count"); ok && n > 0 {
		return n
	}
	return 1
}

// String formats the call as handler{key=value, ...} with sorted keys.
func (c Call) String() string {
	if len(c.Args) == 0 {
		return c.Handler
	}
	keys := make([]string, 0, len(c.Args))
	for k := range c.Args {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var sb strings.Builder
	sb.WriteString(c.Handler)
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		switch v := c.Args[k].(type) {
		case string:
			fmt.Fprintf(&sb, "%s=%q", k, v)
		case rune:
			fmt.Fprintf(&sb, "%s=%q", k, v)
		default:
			fmt.Fprintf(&sb, "%s=%v", k, v)
		}
	}
	sb.WriteByte('}')
	return sb.String()
}

// Int returns an integer argument.
func (a Args) Int(key string) (int, bool) {
	switch v := a[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	}
	return 0, false
}

// Text returns a string argument.
func (a Args) Text(key string) string {
	s, _ := a[key].(string)
	return s
}

// Bool returns a boolean argument.
func (a Args) Bool(key string) bool {
	b, _ := a[key].(bool)
	return b
}

// Rune returns a rune argument.
func (a Args) Rune(key string) (rune, bool) {
	r, ok := a[key].(rune)
	return r, ok
}
