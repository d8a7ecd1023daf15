package session

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// Setting errors.
var (
	ErrUnknownOption = errors.New("unknown option")
	ErrInvalidValue  = errors.New("invalid argument")
)

// OptionKind is the value type of an option.
type OptionKind uint8

const (
	KindBool OptionKind = iota
	KindInt
	KindString
)

// Option describes a known setting.
type Option struct {
	Name    string
	Short   string
	Kind    OptionKind
	Default any
}

// Options known to the core. Unknown names are stored as strings when set
// through Set, but :set rejects them.
var Options = []Option{
	{Name: "ignorecase", Short: "ic", Kind: KindBool, Default: false},
	{Name: "smartcase", Short: "scs", Kind: KindBool, Default: false},
	{Name: "magic", Kind: KindBool, Default: true},
	{Name: "wrapscan", Short: "ws", Kind: KindBool, Default: true},
	{Name: "hlsearch", Short: "hls", Kind: KindBool, Default: false},
	{Name: "incsearch", Short: "is", Kind: KindBool, Default: false},
	{Name: "number", Short: "nu", Kind: KindBool, Default: false},
	{Name: "relativenumber", Short: "rnu", Kind: KindBool, Default: false},
	{Name: "expandtab", Short: "et", Kind: KindBool, Default: false},
	{Name: "autoindent", Short: "ai", Kind: KindBool, Default: false},
	{Name: "shiftwidth", Short: "sw", Kind: KindInt, Default: 8},
	{Name: "tabstop", Short: "ts", Kind: KindInt, Default: 8},
	{Name: "history", Short: "hi", Kind: KindInt, Default: 50},
	{Name: "maxreplaydepth", Kind: KindInt, Default: 100},
	{Name: "strict", Kind: KindBool, Default: false},
	{Name: "mapleader", Kind: KindString, Default: `\`},
}

// LookupOption finds an option by full or short name.
func LookupOption(name string) (Option, bool) {
	for _, o := range Options {
		if o.Name == name || (o.Short != "" && o.Short == name) {
			return o, true
		}
	}
	return Option{}, false
}

// Settings is the key-value store settings are read through.
type Settings struct {
	mu       sync.RWMutex
	values   map[string]any
	onChange []func(name string, value any)
}

// NewSettings creates settings holding the defaults.
func NewSettings() *Settings {
	s := &Settings{values: make(map[string]any, len(Options))}
	for _, o := range Options {
		s.values[o.Name] = o.Default
	}
	return s
}

// Get returns the value of name. Short option names are accepted.
func (s *Settings) Get(name string) (any, bool) {
	if o, ok := LookupOption(name); ok {
		name = o.Name
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	return v, ok
}

// Set stores value under name. Values for known options are converted to
// the option's kind.
func (s *Settings) Set(name string, value any) error {
	if o, ok := LookupOption(name); ok {
		v, err := convert(o, value)
		if err != nil {
			return err
		}
		name, value = o.Name, v
	}
	s.mu.Lock()
	s.values[name] = value
	callbacks := slices.Clone(s.onChange)
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn(name, value)
	}
	return nil
}

// OnChange registers fn to run after every Set.
func (s *Settings) OnChange(fn func(name string, value any)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// Bool returns a boolean setting, false when unset or of another type.
func (s *Settings) Bool(name string) bool {
	v, _ := s.Get(name)
	b, _ := v.(bool)
	return b
}

// Int returns an integer setting.
func (s *Settings) Int(name string) int {
	v, _ := s.Get(name)
	n, _ := v.(int)
	return n
}

// String returns a string setting.
func (s *Settings) String(name string) string {
	v, _ := s.Get(name)
	if str, ok := v.(string); ok {
		return str
	}
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// Names returns every stored setting name, sorted.
func (s *Settings) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.values))
	for k := range s.values {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

func convert(o Option, value any) (any, error) {
	switch o.Kind {
	case KindBool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case int:
			return v != 0, nil
		case int64:
			return v != 0, nil
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("%w: %s=%s", ErrInvalidValue, o.Name, v)
			}
			return b, nil
		}
	case KindInt:
		switch v := value.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			return int(v), nil
		case string:
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("%w: %s=%s", ErrInvalidValue, o.Name, v)
			}
			return n, nil
		}
	case KindString:
		if v, ok := value.(string); ok {
			return v, nil
		}
		return fmt.Sprint(value), nil
	}
	return nil, fmt.Errorf("%w: %s=%v", ErrInvalidValue, o.Name, value)
}

// Apply runs the arguments of a :set command: "opt", "noopt", "invopt",
// "opt!", "opt?", "opt&", "opt=val", "opt:val", "opt+=n", "opt-=n" and
// "all". It returns the lines a query produces.
func (s *Settings) Apply(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		lines, err := s.applyOne(arg)
		if err != nil {
			return out, err
		}
		out = append(out, lines...)
	}
	return out, nil
}

func (s *Settings) applyOne(arg string) ([]string, error) {
	if arg == "all" {
		var out []string
		for _, o := range Options {
			out = append(out, s.format(o))
		}
		return out, nil
	}

	name, op, value := splitSetArg(arg)
	o, ok := LookupOption(name)
	if !ok {
		stripped := strings.TrimPrefix(strings.TrimPrefix(name, "no"), "inv")
		if op == "" && stripped != name {
			if bo, found := LookupOption(stripped); found && bo.Kind == KindBool {
				if strings.HasPrefix(name, "no") {
					return nil, s.Set(bo.Name, false)
				}
				return nil, s.Set(bo.Name, !s.Bool(bo.Name))
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownOption, arg)
	}

	switch op {
	case "?":
		return []string{s.format(o)}, nil
	case "&":
		return nil, s.Set(o.Name, o.Default)
	case "!":
		if o.Kind != KindBool {
			return nil, fmt.Errorf("%w: %s", ErrInvalidValue, arg)
		}
		return nil, s.Set(o.Name, !s.Bool(o.Name))
	case "=", ":":
		return nil, s.Set(o.Name, value)
	case "+=", "-=", "^=":
		if o.Kind == KindInt {
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", ErrInvalidValue, arg)
			}
			switch op {
			case "+=":
				return nil, s.Set(o.Name, s.Int(o.Name)+n)
			case "-=":
				return nil, s.Set(o.Name, s.Int(o.Name)-n)
			default:
				return nil, s.Set(o.Name, s.Int(o.Name)*n)
			}
		}
		if o.Kind == KindString {
			cur := s.String(o.Name)
			switch op {
			case "+=":
				return nil, s.Set(o.Name, cur+value)
			case "-=":
				return nil, s.Set(o.Name, strings.Replace(cur, value, "", 1))
			default:
				return nil, s.Set(o.Name, value+cur)
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidValue, arg)
	}

	if o.Kind == KindBool {
		return nil, s.Set(o.Name, true)
	}
	return []string{s.format(o)}, nil
}

// splitSetArg splits "name+=value" into its parts.
func splitSetArg(arg string) (name, op, value string) {
	for i := 0; i < len(arg); i++ {
		switch arg[i] {
		case '?', '!', '&':
			if i == len(arg)-1 {
				return arg[:i], arg[i:], ""
			}
		case '=', ':':
			return arg[:i], arg[i : i+1], arg[i+1:]
		case '+', '-', '^':
			if i+1 < len(arg) && arg[i+1] == '=' {
				return arg[:i], arg[i : i+2], arg[i+2:]
			}
		}
	}
	return arg, "", ""
}

func (s *Settings) format(o Option) string {
	if o.Kind == KindBool {
		if s.Bool(o.Name) {
			return "  " + o.Name
		}
		return "no" + o.Name
	}
	return fmt.Sprintf("  %s=%s", o.Name, s.String(o.Name))
}
