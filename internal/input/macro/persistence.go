package macro

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/vimcore/internal/input/key"
)

const currentVersion = 1

type persistedData struct {
	Version    int               `toml:"version"`
	LastPlayed string            `toml:"last_played,omitempty"`
	Macros     map[string]string `toml:"macros"`
}

// Export encodes every non-empty register as TOML.
func Export(r *Recorder) ([]byte, error) {
	data := persistedData{
		Version: currentVersion,
		Macros:  make(map[string]string),
	}
	if lp := r.LastPlayed(); lp != 0 {
		data.LastPlayed = string(lp)
	}
	for _, name := range r.Registers() {
		data.Macros[string(name)] = r.Get(name).String()
	}
	return toml.Marshal(data)
}

// Import decodes TOML produced by Export. With merge, registers that
// already hold keys are kept.
func Import(r *Recorder, raw []byte, merge bool) error {
	var data persistedData
	if err := toml.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("decoding macros: %w", err)
	}
	if data.Version > currentVersion {
		return fmt.Errorf("unsupported macros version %d (max %d)", data.Version, currentVersion)
	}

	for name, notation := range data.Macros {
		reg, size := utf8.DecodeRuneInString(name)
		if size != len(name) || !IsValidRegister(reg) {
			continue
		}
		if merge && len(r.Get(reg)) > 0 {
			continue
		}
		keys, err := key.ParseSequence(notation)
		if err != nil {
			return fmt.Errorf("register %c: %w", reg, err)
		}
		if err := r.Set(reg, keys); err != nil {
			return err
		}
	}
	if lp, _ := utf8.DecodeRuneInString(data.LastPlayed); IsValidRegister(lp) {
		r.setLastPlayed(lp)
	}
	return nil
}

// Save writes the registers to path through a temporary file.
func Save(r *Recorder, path string) error {
	raw, err := Export(r)
	if err != nil {
		return fmt.Errorf("encoding macros: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating macro dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("writing macros: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing macros: %w", err)
	}
	return nil
}

// Load replaces the registers with the contents of path. A missing file
// leaves the recorder untouched.
func Load(r *Recorder, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading macros: %w", err)
	}
	r.ClearAll()
	return Import(r, raw, false)
}
