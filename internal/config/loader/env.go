package loader

import (
	"os"
	"strconv"
	"strings"
)

// DefaultEnvPrefix prefixes the environment variables Env reads.
const DefaultEnvPrefix = "VIMCORE_"

// Env reads settings from environment variables.
type Env struct {
	prefix  string
	environ func() []string
	mapping map[string]string
}

// NewEnv creates an environment loader for variables starting with
// prefix, which includes the trailing underscore.
func NewEnv(prefix string) *Env {
	return &Env{
		prefix:  prefix,
		environ: os.Environ,
		mapping: map[string]string{
			prefix + "LEADER":     "settings.leader",
			prefix + "LOG_LEVEL":  "log.level",
			prefix + "CONFIG_DIR": "paths.config",
		},
	}
}

// WithEnviron replaces os.Environ as the variable source.
func (l *Env) WithEnviron(environ []string) *Env {
	l.environ = func() []string { return environ }
	return l
}

// Load returns the prefixed variables as a configuration map. Mapped names
// go to their configured path; any other VIMCORE_NAME sets
// settings.name.
func (l *Env) Load() map[string]any {
	cfg := make(map[string]any)
	for _, kv := range l.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		path, mapped := l.mapping[name]
		if !mapped {
			path = "settings." + strings.ToLower(strings.TrimPrefix(name, l.prefix))
		}
		setByPath(cfg, path, parseValue(value))
	}
	return cfg
}

// parseValue types an environment value: booleans, then integers, then
// the string itself.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return s
}

// setByPath sets a value in nested maps along a dotted path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	cur := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[part] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}
