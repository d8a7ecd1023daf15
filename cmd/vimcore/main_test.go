package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/google/go-cmp/cmp"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestParse(t *testing.T) {
	code, out, errOut := runCLI(t, "parse", ":1,$s/a/b/g")
	if code != 0 {
		t.Fatalf("exit %d, stderr %q", code, errOut)
	}
	var got struct {
		Command struct {
			Name    string `json:"name"`
			Handler string `json:"handler"`
		} `json:"command"`
		Source string `json:"source"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if got.Command.Name != "substitute" || got.Source != "1,$s/a/b/g" {
		t.Errorf("parsed %+v", got)
	}
}

func TestParseGet(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"parse", "-get", "command.name", "%d"}, "delete\n"},
		{[]string{"parse", "-get", "command.handler", "w!"}, "ex.write\n"},
		{[]string{"parse", "-get", "command.forced", "w!"}, "true\n"},
	}
	for _, tt := range tests {
		code, out, errOut := runCLI(t, tt.args...)
		if code != 0 || out != tt.want {
			t.Errorf("%v: exit %d, stdout %q, stderr %q, want %q", tt.args, code, out, errOut, tt.want)
		}
	}
	if code, _, errOut := runCLI(t, "parse", "-get", "nothing.here", "d"); code != 1 || !strings.Contains(errOut, "no value") {
		t.Errorf("missing path: exit %d, stderr %q", code, errOut)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"unknown command", []string{"parse", "frobnicate"}, 1},
		{"range not allowed", []string{"parse", "1,2set"}, 1},
		{"no line", []string{"parse"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := runCLI(t, tt.args...)
			if code != tt.code {
				t.Errorf("exit %d, want %d (stderr %q)", code, tt.code, errOut)
			}
			if out != "" {
				t.Errorf("stdout = %q, want nothing", out)
			}
			if !strings.HasPrefix(errOut, "vimcore: ") {
				t.Errorf("stderr = %q", errOut)
			}
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		code    int
		wantOut string
		wantErr string
	}{
		{"version", []string{"-version"}, 0, "vimcore dev", ""},
		{"no command", nil, 2, "", "Usage: vimcore"},
		{"unknown command", []string{"frob"}, 2, "", `unknown command "frob"`},
		{"bad level", []string{"-log-level", "loud", "parse", "q"}, 2, "", "invalid log level"},
		{"bad flag", []string{"-nope"}, 2, "", "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := runCLI(t, tt.args...)
			if code != tt.code {
				t.Errorf("exit %d, want %d", code, tt.code)
			}
			if !strings.Contains(out, tt.wantOut) {
				t.Errorf("stdout %q lacks %q", out, tt.wantOut)
			}
			if !strings.Contains(errOut, tt.wantErr) {
				t.Errorf("stderr %q lacks %q", errOut, tt.wantErr)
			}
		})
	}
}

func TestKeys(t *testing.T) {
	code, out, errOut := runCLI(t, "keys", "-text", "one\ntwo\nthree\n", "jdd")
	if code != 0 {
		t.Fatalf("exit %d, stderr %q", code, errOut)
	}
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	var dispatched int
	for _, l := range lines {
		if strings.HasPrefix(l, "dispatch ") {
			dispatched++
		}
	}
	if dispatched < 2 {
		t.Errorf("want a dispatch line per command, got output:\n%s", out)
	}
	i := len(lines) - 4
	if i < 0 {
		t.Fatalf("short output:\n%s", out)
	}
	want := []string{"mode normal", "--- [No Name]", "one", "three"}
	if diff := cmp.Diff(want, lines[i:]); diff != "" {
		t.Errorf("tail of output (-want +got):\n%s", diff)
	}
}

func TestKeysStats(t *testing.T) {
	code, out, errOut := runCLI(t, "keys", "-q", "-stats", "-text", "a b c\n", "ww")
	if code != 0 {
		t.Fatalf("exit %d, stderr %q", code, errOut)
	}
	var stats []string
	for _, l := range strings.Split(out, "\n") {
		if strings.HasPrefix(l, "stats ") {
			stats = append(stats, l)
		}
	}
	if len(stats) == 0 || !strings.Contains(stats[0], "calls=2") {
		t.Errorf("stats lines = %q, want the motion handler first with 2 calls", stats)
	}
}

func TestKeysQuit(t *testing.T) {
	tests := []struct {
		keys string
		code int
	}{
		{":q<CR>", 0},
		{":cq<CR>", 1},
	}
	for _, tt := range tests {
		t.Run(tt.keys, func(t *testing.T) {
			code, out, errOut := runCLI(t, "keys", "-text", "x\n", tt.keys)
			if code != tt.code {
				t.Errorf("exit %d, want %d (stderr %q)", code, tt.code, errOut)
			}
			if strings.Contains(out, "--- ") {
				t.Errorf("buffer printed after quit:\n%s", out)
			}
		})
	}
}

func TestKeysReportsErrors(t *testing.T) {
	code, out, _ := runCLI(t, "keys", "-q", ":nosuchcommand<CR>")
	if code != 0 {
		t.Errorf("exit %d, want 0", code)
	}
	if !strings.Contains(out, "error[") {
		t.Errorf("no error line in output:\n%s", out)
	}
	if strings.Contains(out, "--- ") {
		t.Errorf("-q still printed the buffer:\n%s", out)
	}
}

func TestKeysWithConfig(t *testing.T) {
	dir := t.TempDir()
	write := func(name, text string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}
	cfg := write("vimcore.toml", `
init = "init.lua"

[settings]
leader = ","

[[mappings]]
mode = "n"
lhs = "<leader>d"
rhs = "dd"
`)
	write("init.lua", `vim.noremap("n", "Z", "x")`)
	file := write("f.txt", "abc\ndef\n")

	code, out, errOut := runCLI(t, "-config", cfg, "keys", "-file", file, ",dZ")
	if code != 0 {
		t.Fatalf("exit %d, stderr %q", code, errOut)
	}
	if !strings.HasSuffix(out, "f.txt\nef\n") {
		t.Errorf("mappings from config and init script not applied:\n%s", out)
	}
}

func TestKeysMissingConfig(t *testing.T) {
	code, _, errOut := runCLI(t, "-config", filepath.Join(t.TempDir(), "none.toml"), "keys", "-q", "l")
	if code != 0 {
		t.Errorf("exit %d for a missing config file (stderr %q)", code, errOut)
	}
}

// scripted returns a simulation screen that types keys once initialized.
func scripted(t *testing.T, keys []tcell.Key, runes string) func() (tcell.Screen, error) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	return func() (tcell.Screen, error) {
		return &scriptedScreen{SimulationScreen: sim, keys: keys, runes: runes}, nil
	}
}

type scriptedScreen struct {
	tcell.SimulationScreen
	keys  []tcell.Key
	runes string
	last  string
}

func (s *scriptedScreen) Init() error {
	if err := s.SimulationScreen.Init(); err != nil {
		return err
	}
	s.SetSize(40, 6)
	go func() {
		for _, r := range s.runes {
			s.InjectKey(tcell.KeyRune, r, tcell.ModNone)
		}
		for _, k := range s.keys {
			s.InjectKey(k, 0, tcell.ModNone)
		}
	}()
	return nil
}

// Show keeps the text of the status line for the test to inspect.
func (s *scriptedScreen) Show() {
	s.SimulationScreen.Show()
	cells, width, height := s.GetContents()
	var sb strings.Builder
	for _, c := range cells[(height-2)*width : (height-1)*width] {
		sb.WriteString(string(c.Runes))
	}
	s.last = strings.TrimRight(sb.String(), " ")
}

func TestInspect(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f.txt")
	if err := os.WriteFile(file, []byte("hello\nworld\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var screen *scriptedScreen
	orig := newScreen
	t.Cleanup(func() { newScreen = orig })
	open := scripted(t, []tcell.Key{tcell.KeyEnter}, "jx:q!")
	newScreen = func() (tcell.Screen, error) {
		s, err := open()
		screen = s.(*scriptedScreen)
		return s, err
	}

	code, _, errOut := runCLI(t, "inspect", file)
	if code != 0 {
		t.Fatalf("exit %d, stderr %q", code, errOut)
	}
	if !strings.Contains(screen.last, "NORMAL") || !strings.Contains(screen.last, "last !") {
		t.Errorf("status line before quitting = %q", screen.last)
	}
	if data, _ := os.ReadFile(file); string(data) != "hello\nworld\n" {
		t.Errorf(":q! wrote the file: %q", data)
	}
}
