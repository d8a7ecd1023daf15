package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/vimcore/internal/config/loader"
	"github.com/dshills/vimcore/internal/input/key"
	"github.com/dshills/vimcore/internal/input/keymap"
	"github.com/dshills/vimcore/internal/session"
)

// MaxIncludeDepth bounds nested @include directives.
const MaxIncludeDepth = 8

// settingAliases maps configuration keys to session option names.
var settingAliases = map[string]string{
	"leader":           "mapleader",
	"max_replay_depth": "maxreplaydepth",
	"history_size":     "history",
}

// Mapping is one [[mappings]] entry.
type Mapping struct {
	Mode    string `toml:"mode"`
	LHS     string `toml:"lhs"`
	RHS     string `toml:"rhs"`
	Noremap bool   `toml:"noremap"`
	Silent  bool   `toml:"silent"`
	Nowait  bool   `toml:"nowait"`
}

// Config is a loaded configuration file with its includes and environment
// overrides merged in.
type Config struct {
	// Path is the file Load read. Mappings it defines are tagged with it.
	Path string

	// Files are the TOML files read, Path first.
	Files []string

	Settings map[string]any
	Mappings []Mapping

	// Keymaps are YAML or TOML keymap files, resolved against Path's
	// directory.
	Keymaps []string

	// Init is a Lua init script, resolved against Path's directory.
	Init string

	LogLevel string
}

// file is the decoded shape of a merged configuration.
type file struct {
	Settings map[string]any `toml:"settings"`
	Mappings []Mapping      `toml:"mappings"`
	Keymaps  []string       `toml:"keymaps"`
	Init     string         `toml:"init"`
	Log      struct {
		Level string `toml:"level"`
	} `toml:"log"`
}

type options struct {
	fs       loader.FileSystem
	env      *loader.Env
	maxDepth int
}

// Option configures Load.
type Option func(*options)

// WithFS reads configuration files through fs.
func WithFS(fs loader.FileSystem) Option {
	return func(o *options) { o.fs = fs }
}

// WithEnviron takes environment overrides from environ instead of the
// process environment. A nil environ disables them.
func WithEnviron(environ []string) Option {
	return func(o *options) {
		if environ == nil {
			o.env = nil
			return
		}
		o.env = loader.NewEnv(loader.DefaultEnvPrefix).WithEnviron(environ)
	}
}

// WithIncludeDepth overrides MaxIncludeDepth.
func WithIncludeDepth(n int) Option {
	return func(o *options) { o.maxDepth = n }
}

// Load reads the TOML file at path. A missing file loads as an empty
// configuration so a default path can be watched for creation.
func Load(path string, opts ...Option) (*Config, error) {
	o := options{
		env:      loader.NewEnv(loader.DefaultEnvPrefix),
		maxDepth: MaxIncludeDepth,
	}
	for _, opt := range opts {
		opt(&o)
	}

	raw, files, err := loader.NewTOML(o.fs).LoadWithIncludes(path, o.maxDepth)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		files = []string{path}
	}
	if o.env != nil {
		raw = loader.DeepMerge(raw, o.env.Load())
	}

	var f file
	if len(raw) > 0 {
		data, err := toml.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &f); err != nil {
			return nil, &loader.ParseError{Path: path, Message: err.Error(), Err: err}
		}
	}

	dir := filepath.Dir(path)
	cfg := &Config{
		Path:     path,
		Files:    files,
		Settings: f.Settings,
		Mappings: f.Mappings,
		LogLevel: f.Log.Level,
	}
	for _, km := range f.Keymaps {
		cfg.Keymaps = append(cfg.Keymaps, resolve(dir, km))
	}
	if f.Init != "" {
		cfg.Init = resolve(dir, f.Init)
	}
	return cfg, nil
}

func resolve(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// Watched returns every file whose change should reload the
// configuration.
func (c *Config) Watched() []string {
	out := slices.Clone(c.Files)
	out = append(out, c.Keymaps...)
	if c.Init != "" {
		out = append(out, c.Init)
	}
	return out
}

// Apply writes the settings into st and replaces the mappings this
// configuration contributed before. Every entry is attempted; the errors
// are joined.
func (c *Config) Apply(st *session.State) error {
	var errs []error

	names := make([]string, 0, len(c.Settings))
	for name := range c.Settings {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		opt := name
		if alias, ok := settingAliases[name]; ok {
			opt = alias
		}
		if err := st.Settings.Set(opt, c.Settings[name]); err != nil {
			errs = append(errs, fmt.Errorf("%s: setting %s: %w", c.Path, name, err))
		}
	}

	leader := st.Settings.String("mapleader")
	st.Mappings.RemoveSource(c.Path)
	for i, m := range c.Mappings {
		if err := c.addMapping(st.Mappings, leader, m); err != nil {
			errs = append(errs, fmt.Errorf("%s: mapping %d: %w", c.Path, i+1, err))
		}
	}

	kl := keymap.NewLoader(leader)
	for _, path := range c.Keymaps {
		if _, err := kl.LoadInto(st.Mappings, path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Config) addMapping(t *keymap.Table, leader string, m Mapping) error {
	modes, err := keymap.ParseModes(m.Mode)
	if err != nil {
		return err
	}
	lhs, err := key.ParseSequence(key.ExpandLeader(m.LHS, leader))
	if err != nil {
		return fmt.Errorf("lhs %q: %w", m.LHS, err)
	}
	if len(lhs) == 0 {
		return fmt.Errorf("empty lhs")
	}
	rhs, err := key.ParseSequence(key.ExpandLeader(m.RHS, leader))
	if err != nil {
		return fmt.Errorf("rhs %q: %w", m.RHS, err)
	}
	return t.MapModes(modes, keymap.Mapping{
		LHS:     lhs,
		RHS:     rhs,
		Noremap: m.Noremap,
		Silent:  m.Silent,
		Nowait:  m.Nowait,
		Source:  c.Path,
	})
}
