package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// IncludeKey is the top-level key listing files to merge under a file.
const IncludeKey = "@include"

// TOML loads TOML configuration files.
type TOML struct {
	fs FileSystem
}

// NewTOML creates a TOML loader reading through fs. A nil fs reads the
// operating system.
func NewTOML(fs FileSystem) *TOML {
	if fs == nil {
		fs = OSFS{}
	}
	return &TOML{fs: fs}
}

// LoadFile decodes the file at path. A missing file yields nil, nil.
func (l *TOML) LoadFile(path string) (map[string]any, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes TOML data. source names the data in errors.
func Parse(source string, data []byte) (map[string]any, error) {
	var cfg map[string]any
	if err := toml.Unmarshal(data, &cfg); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return nil, perr
	}
	return cfg, nil
}

// LoadWithIncludes loads path and merges the files named by its @include
// key beneath it, so the including file wins. Includes are resolved
// relative to the including file and may nest maxDepth deep. It returns
// the merged map and every file read, the including file first.
func (l *TOML) LoadWithIncludes(path string, maxDepth int) (map[string]any, []string, error) {
	if maxDepth <= 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrIncludeDepth, path)
	}
	cfg, err := l.LoadFile(path)
	if err != nil || cfg == nil {
		return nil, nil, err
	}
	files := []string{path}

	includes, ok := cfg[IncludeKey]
	if !ok {
		return cfg, files, nil
	}
	delete(cfg, IncludeKey)

	var names []string
	switch v := includes.(type) {
	case string:
		names = []string{v}
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, nil, fmt.Errorf("%s: %s must be a string or an array of strings", path, IncludeKey)
			}
			names = append(names, s)
		}
	default:
		return nil, nil, fmt.Errorf("%s: %s must be a string or an array of strings, got %T", path, IncludeKey, includes)
	}

	base := map[string]any{}
	dir := filepath.Dir(path)
	for _, name := range names {
		inc := name
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(dir, inc)
		}
		incCfg, incFiles, err := l.LoadWithIncludes(inc, maxDepth-1)
		if err != nil {
			return nil, nil, fmt.Errorf("loading include %s: %w", inc, err)
		}
		base = DeepMerge(base, incCfg)
		files = append(files, incFiles...)
	}
	return DeepMerge(base, cfg), files, nil
}

// DeepMerge merges src into dst and returns dst. Tables merge recursively,
// arrays are concatenated with dst's elements first, and any other src
// value replaces dst's.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, sv := range src {
		dv, ok := dst[k]
		if !ok {
			dst[k] = sv
			continue
		}
		switch s := sv.(type) {
		case map[string]any:
			if d, ok := dv.(map[string]any); ok {
				dst[k] = DeepMerge(d, s)
				continue
			}
		case []any:
			if d, ok := dv.([]any); ok {
				dst[k] = append(append([]any(nil), d...), s...)
				continue
			}
		}
		dst[k] = sv
	}
	return dst
}
