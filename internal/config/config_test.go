package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/vimcore/internal/config/watcher"
	"github.com/dshills/vimcore/internal/input/key"
	"github.com/dshills/vimcore/internal/input/keymap"
	"github.com/dshills/vimcore/internal/input/mode"
	"github.com/dshills/vimcore/internal/session"
)

func writeFile(t *testing.T, path, text string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
}

func mustSeq(t *testing.T, notation string) key.Sequence {
	t.Helper()
	seq, err := key.ParseSequence(notation)
	if err != nil {
		t.Fatal(err)
	}
	return seq
}

func rhs(t *testing.T, st *session.State, md mode.Mode, lhs string) string {
	t.Helper()
	m, ok := st.Mappings.Lookup(md, mustSeq(t, lhs))
	if !ok {
		return ""
	}
	return m.RHS.String()
}

func TestLoadAndApply(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vimcore.toml")
	writeFile(t, path, `
"@include" = "base.toml"
keymaps = ["keys.yaml"]
init = "init.lua"

[settings]
leader = ","
shiftwidth = 4
history_size = 20
max_replay_depth = 50

[[mappings]]
mode = "n"
lhs = "<leader>w"
rhs = ":w<CR>"
noremap = true
`)
	writeFile(t, filepath.Join(dir, "base.toml"), `
[settings]
shiftwidth = 8
ignorecase = true

[[mappings]]
mode = "i"
lhs = "jk"
rhs = "<Esc>"
`)
	writeFile(t, filepath.Join(dir, "keys.yaml"), `
keymaps:
  - mode: n
    mappings:
      "<leader>q": ":q<CR>"
`)

	cfg, err := Load(path, WithEnviron([]string{"VIMCORE_SMARTCASE=true"}))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	wantWatched := []string{
		path,
		filepath.Join(dir, "base.toml"),
		filepath.Join(dir, "keys.yaml"),
		filepath.Join(dir, "init.lua"),
	}
	if diff := cmp.Diff(wantWatched, cfg.Watched()); diff != "" {
		t.Errorf("Watched (-want +got):\n%s", diff)
	}

	st := session.New()
	if err := cfg.Apply(st); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	s := st.Settings
	if s.String("mapleader") != "," || s.Int("shiftwidth") != 4 || !s.Bool("ignorecase") ||
		!s.Bool("smartcase") || s.Int("history") != 20 || s.Int("maxreplaydepth") != 50 {
		t.Errorf("settings: leader=%q sw=%d ic=%v scs=%v hi=%d depth=%d",
			s.String("mapleader"), s.Int("shiftwidth"), s.Bool("ignorecase"),
			s.Bool("smartcase"), s.Int("history"), s.Int("maxreplaydepth"))
	}
	tests := []struct {
		md   mode.Mode
		lhs  string
		want string
	}{
		{mode.Normal, ",w", ":w<CR>"},
		{mode.Insert, "jk", "<Esc>"},
		{mode.Normal, ",q", ":q<CR>"},
	}
	for _, tt := range tests {
		if got := rhs(t, st, tt.md, tt.lhs); got != tt.want {
			t.Errorf("%s %s -> %q, want %q", tt.md, tt.lhs, got, tt.want)
		}
	}
}

func TestApplyReplacesOwnMappings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vimcore.toml")
	st := session.New()
	if err := st.Settings.Set("mapleader", ","); err != nil {
		t.Fatal(err)
	}
	if err := st.Mappings.Map(keymapping(t, "gx", "dd", "ex")); err != nil {
		t.Fatal(err)
	}

	writeFile(t, path, "[[mappings]]\nmode = \"n\"\nlhs = \"Q\"\nrhs = \"gq\"\n")
	apply(t, path, st)
	writeFile(t, path, "[[mappings]]\nmode = \"n\"\nlhs = \"Y\"\nrhs = \"y$\"\n")
	apply(t, path, st)

	if got := rhs(t, st, mode.Normal, "Q"); got != "" {
		t.Errorf("stale mapping Q -> %q kept", got)
	}
	if got := rhs(t, st, mode.Normal, "Y"); got != "y$" {
		t.Errorf("Y -> %q, want y$", got)
	}
	if got := rhs(t, st, mode.Normal, "gx"); got != "dd" {
		t.Errorf("mapping from another source dropped: gx -> %q", got)
	}
}

func TestApplyCollectsErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vimcore.toml")
	writeFile(t, path, `
[settings]
shiftwidth = "wide"
tabstop = 2

[[mappings]]
mode = "q"
lhs = "a"
rhs = "b"

[[mappings]]
lhs = "<bad"
rhs = "b"

[[mappings]]
lhs = "Z"
rhs = "zz"
`)
	cfg, err := Load(path, WithEnviron(nil))
	if err != nil {
		t.Fatal(err)
	}
	st := session.New()
	if err := cfg.Apply(st); err == nil {
		t.Error("Apply accepted bad entries")
	}
	if st.Settings.Int("tabstop") != 2 {
		t.Error("good setting skipped after a bad one")
	}
	if got := rhs(t, st, mode.Normal, "Z"); got != "zz" {
		t.Errorf("good mapping skipped: Z -> %q", got)
	}
}

func TestLoadMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "none.toml")
	cfg, err := Load(path, WithEnviron(nil))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff([]string{path}, cfg.Watched()); diff != "" {
		t.Errorf("Watched (-want +got):\n%s", diff)
	}
	if err := cfg.Apply(session.New()); err != nil {
		t.Errorf("Apply(empty) = %v", err)
	}
}

func TestReloaderWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vimcore.toml")
	writeFile(t, path, "[settings]\nshiftwidth = 2\n")

	st := session.New()
	applied := make(chan *Config, 8)
	r := &Reloader{
		Path:    path,
		State:   st,
		Options: []Option{WithEnviron(nil)},
		OnApply: func(c *Config) { applied <- c },
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Watch(ctx, watcher.WithDebounce(20*time.Millisecond)) }()
	defer func() {
		cancel()
		<-done
	}()

	select {
	case <-applied:
	case <-time.After(5 * time.Second):
		t.Fatal("initial load not applied")
	}
	// Give the watcher time to register before changing the file.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, path, "[settings]\nshiftwidth = 6\n")

	deadline := time.After(5 * time.Second)
	for st.Settings.Int("shiftwidth") != 6 {
		select {
		case <-applied:
		case <-deadline:
			t.Fatalf("shiftwidth = %d after reload, want 6", st.Settings.Int("shiftwidth"))
		}
	}
	if r.Current() == nil {
		t.Error("Current() = nil after reload")
	}
}

func keymapping(t *testing.T, lhs, rhs, source string) keymap.Mapping {
	t.Helper()
	return keymap.Mapping{Mode: mode.Normal, LHS: mustSeq(t, lhs), RHS: mustSeq(t, rhs), Source: source}
}

func apply(t *testing.T, path string, st *session.State) {
	t.Helper()
	cfg, err := Load(path, WithEnviron(nil))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Apply(st); err != nil {
		t.Fatalf("Apply: %v", err)
	}
}
