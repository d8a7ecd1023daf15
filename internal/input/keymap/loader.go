package keymap

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/vimcore/internal/input/key"
	"github.com/dshills/vimcore/internal/input/mode"
)

// Format is a keymap file format.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
)

// FormatFor returns the format implied by a file extension.
func FormatFor(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".toml":
		return FormatTOML, true
	}
	return 0, false
}

// Loader reads mapping files.
type Loader struct {
	// Leader replaces <leader> in lhs and rhs. Defaults to `\`.
	Leader string

	searchPaths []string
}

// NewLoader creates a loader with the given leader.
func NewLoader(leader string) *Loader {
	return &Loader{Leader: leader}
}

// AddSearchPath adds a directory LoadAll scans.
func (l *Loader) AddSearchPath(dir string) {
	l.searchPaths = append(l.searchPaths, dir)
}

// LoadFile reads a YAML or TOML mapping file. Mappings are tagged with the
// file path as their source.
func (l *Loader) LoadFile(path string) ([]Mapping, error) {
	format, ok := FormatFor(path)
	if !ok {
		return nil, fmt.Errorf("keymap: unsupported file type %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading keymap file: %w", err)
	}
	maps, err := l.Load(bytes.NewReader(data), format, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return maps, nil
}

// Load decodes mappings from r.
func (l *Loader) Load(r io.Reader, format Format, source string) ([]Mapping, error) {
	var cfg fileConfig
	switch format {
	case FormatTOML:
		if err := toml.NewDecoder(r).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decoding keymap: %w", err)
		}
	default:
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && err != io.EOF {
			return nil, fmt.Errorf("decoding keymap: %w", err)
		}
	}
	return l.build(cfg, source)
}

// LoadAll reads every mapping file in the search paths, in path then name
// order.
func (l *Loader) LoadAll() ([]Mapping, error) {
	var out []Mapping
	for _, dir := range l.searchPaths {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("reading keymap dir: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if _, ok := FormatFor(e.Name()); !ok {
				continue
			}
			maps, err := l.LoadFile(filepath.Join(dir, e.Name()))
			if err != nil {
				return nil, err
			}
			out = append(out, maps...)
		}
	}
	return out, nil
}

// LoadInto reads path and replaces every mapping the file contributed
// earlier, so a reloaded file wins over its previous contents.
func (l *Loader) LoadInto(t *Table, path string) (int, error) {
	maps, err := l.LoadFile(path)
	if err != nil {
		return 0, err
	}
	t.RemoveSource(path)
	for _, m := range maps {
		if err := t.Map(m); err != nil {
			return 0, err
		}
	}
	return len(maps), nil
}

// fileConfig is the structure of YAML and TOML keymap files. TOML files
// use [[keymap]] tables.
type fileConfig struct {
	Keymaps []sectionConfig `yaml:"keymaps" toml:"keymap"`
}

type sectionConfig struct {
	Mode     string            `yaml:"mode" toml:"mode"`
	Noremap  bool              `yaml:"noremap" toml:"noremap"`
	Silent   bool              `yaml:"silent" toml:"silent"`
	Nowait   bool              `yaml:"nowait" toml:"nowait"`
	Mappings map[string]string `yaml:"mappings" toml:"mappings"`
}

func (l *Loader) build(cfg fileConfig, source string) ([]Mapping, error) {
	leader := l.Leader
	if leader == "" {
		leader = `\`
	}
	var out []Mapping
	for i, sec := range cfg.Keymaps {
		modes, err := ParseModes(sec.Mode)
		if err != nil {
			return nil, fmt.Errorf("keymap %d: %w", i, err)
		}
		lhss := make([]string, 0, len(sec.Mappings))
		for lhs := range sec.Mappings {
			lhss = append(lhss, lhs)
		}
		slices.Sort(lhss)
		for _, lhs := range lhss {
			lseq, err := key.ParseSequence(key.ExpandLeader(lhs, leader))
			if err != nil {
				return nil, fmt.Errorf("keymap %d: lhs %q: %w", i, lhs, err)
			}
			rseq, err := key.ParseSequence(key.ExpandLeader(sec.Mappings[lhs], leader))
			if err != nil {
				return nil, fmt.Errorf("keymap %d: rhs of %q: %w", i, lhs, err)
			}
			if len(lseq) == 0 {
				return nil, fmt.Errorf("keymap %d: empty lhs", i)
			}
			for _, md := range modes {
				out = append(out, Mapping{
					Mode:    md,
					LHS:     lseq,
					RHS:     rseq,
					Noremap: sec.Noremap,
					Silent:  sec.Silent,
					Nowait:  sec.Nowait,
					Source:  source,
				})
			}
		}
	}
	return out, nil
}

// ParseModes turns a mode field into modes. It accepts map-command letter
// sets such as "", "n", "nv" or "!" and mode names such as "visual-line".
func ParseModes(s string) ([]mode.Mode, error) {
	s = strings.TrimSpace(s)
	if s == "!" {
		modes, _ := mode.ForMapCommand("", true)
		return modes, nil
	}
	if modes, ok := mode.ForMapCommand(s, false); ok {
		return modes, nil
	}
	if m, err := mode.Parse(s); err == nil && len(s) > 1 {
		return []mode.Mode{m}, nil
	}

	var out []mode.Mode
	for _, r := range s {
		modes, ok := mode.ForMapCommand(string(r), false)
		if !ok {
			return nil, fmt.Errorf("unknown mode %q", s)
		}
		for _, m := range modes {
			if !slices.Contains(out, m) {
				out = append(out, m)
			}
		}
	}
	return out, nil
}
