package keymap

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/vimcore/internal/input/key"
	"github.com/dshills/vimcore/internal/input/mode"
)

func seq(s string) key.Sequence {
	return key.MustParseSequence(s)
}

func TestTree(t *testing.T) {
	tree := NewTree[string]()
	tree.Insert(seq("aa"), "two")
	tree.Insert(seq("aaa"), "three")

	tests := []struct {
		input  string
		value  string
		found  bool
		longer bool
	}{
		{"a", "", false, true},
		{"aa", "two", true, true},
		{"aaa", "three", true, false},
		{"aaaa", "", false, false},
		{"b", "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, ok := tree.Get(seq(tt.input))
			if v != tt.value || ok != tt.found {
				t.Errorf("Get = %q, %v; want %q, %v", v, ok, tt.value, tt.found)
			}
			if got := tree.HasLonger(seq(tt.input)); got != tt.longer {
				t.Errorf("HasLonger = %v, want %v", got, tt.longer)
			}
		})
	}
}

func TestTreeRemovePrunes(t *testing.T) {
	tree := NewTree[int]()
	tree.Insert(seq("gq"), 1)
	tree.Insert(seq("g~"), 2)
	if replaced := tree.Insert(seq("gq"), 3); !replaced {
		t.Error("Insert over existing value did not report replace")
	}
	if tree.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tree.Len())
	}

	tree.Remove(seq("gq"))
	if !tree.HasLonger(seq("g")) {
		t.Error("g lost its remaining child")
	}
	tree.Remove(seq("g~"))
	if tree.HasLonger(seq("g")) || tree.HasLonger(nil) {
		t.Error("empty tree still reports longer entries")
	}
	if tree.Remove(seq("x")) {
		t.Error("Remove of a missing sequence returned true")
	}
}

func TestTableLookup(t *testing.T) {
	tbl := NewTable()
	if err := tbl.Map(Mapping{Mode: mode.Normal, LHS: seq("w"), RHS: seq("b")}); err != nil {
		t.Fatal(err)
	}
	if _, ok := tbl.Lookup(mode.Normal, seq("w")); !ok {
		t.Error("normal mapping not found")
	}
	if _, ok := tbl.Lookup(mode.Insert, seq("w")); ok {
		t.Error("mapping leaked into insert mode")
	}
	if !tbl.Unmap(mode.Normal, seq("w")) {
		t.Error("Unmap returned false")
	}
	if _, ok := tbl.Lookup(mode.Normal, seq("w")); ok {
		t.Error("mapping still present after Unmap")
	}
}

func TestTableMapModes(t *testing.T) {
	tbl := NewTable()
	modes, _ := mode.ForMapCommand("", false)
	err := tbl.MapModes(modes, Mapping{LHS: seq("<C-s>"), RHS: seq(":w<CR>"), Noremap: true})
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Len() != len(modes) {
		t.Errorf("Len = %d, want %d", tbl.Len(), len(modes))
	}
	tbl.Clear(mode.Normal)
	if _, ok := tbl.Lookup(mode.Normal, seq("<C-s>")); ok {
		t.Error("Clear left the normal mapping")
	}
	if _, ok := tbl.Lookup(mode.Visual, seq("<C-s>")); !ok {
		t.Error("Clear(Normal) removed the visual mapping")
	}
}

func TestTableUnique(t *testing.T) {
	tbl := NewTable()
	m := Mapping{Mode: mode.Normal, LHS: seq("Y"), RHS: seq("y$")}
	if err := tbl.Map(m); err != nil {
		t.Fatal(err)
	}
	m.Unique = true
	if err := tbl.Map(m); !errors.Is(err, ErrMappingExists) {
		t.Errorf("err = %v, want ErrMappingExists", err)
	}
}

func TestTableMappingsSorted(t *testing.T) {
	tbl := NewTable()
	for _, lhs := range []string{"zz", "Y", "<C-a>"} {
		_ = tbl.Map(Mapping{Mode: mode.Normal, LHS: seq(lhs), RHS: seq("x")})
	}
	var got []string
	for _, m := range tbl.Mappings(mode.Normal) {
		got = append(got, m.LHS.String())
	}
	if diff := cmp.Diff([]string{"<C-a>", "Y", "zz"}, got); diff != "" {
		t.Errorf("Mappings order (-want +got):\n%s", diff)
	}
}

const yamlKeymap = `
keymaps:
  - mode: n
    noremap: true
    mappings:
      "<leader>w": ":w<CR>"
      "Y": "y$"
  - mode: x
    mappings:
      "<lt>": "<lt>gv"
`

const tomlKeymap = `
[[keymap]]
mode = "n"
noremap = true

[keymap.mappings]
"<leader>w" = ":w<CR>"
"Y" = "y$"

[[keymap]]
mode = "x"

[keymap.mappings]
"<lt>" = "<lt>gv"
`

func TestLoaderFormats(t *testing.T) {
	for _, tt := range []struct {
		name   string
		format Format
		data   string
	}{
		{"yaml", FormatYAML, yamlKeymap},
		{"toml", FormatTOML, tomlKeymap},
	} {
		t.Run(tt.name, func(t *testing.T) {
			maps, err := NewLoader(",").Load(strings.NewReader(tt.data), tt.format, "test")
			if err != nil {
				t.Fatal(err)
			}
			// two normal mappings, one for each of the three visual modes
			if len(maps) != 5 {
				t.Fatalf("got %d mappings, want 5", len(maps))
			}
			first := maps[0]
			if first.Mode != mode.Normal || first.LHS.String() != ",w" || first.RHS.String() != ":w<CR>" || !first.Noremap {
				t.Errorf("first mapping = %+v", first)
			}
			if maps[2].Mode != mode.Visual || maps[2].Noremap {
				t.Errorf("third mapping = %+v", maps[2])
			}
		})
	}
}

func TestLoaderErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad mode", "keymaps:\n  - mode: q\n    mappings: {a: b}\n"},
		{"bad lhs", "keymaps:\n  - mode: n\n    mappings: {\"<C-\": b}\n"},
		{"bad yaml", "keymaps: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLoader("").Load(strings.NewReader(tt.data), FormatYAML, "x"); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadIntoReplacesSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "maps.yaml")
	write := func(body string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	tbl := NewTable()
	_ = tbl.Map(Mapping{Mode: mode.Normal, LHS: seq("Q"), RHS: seq("gq"), Source: "ex"})

	write("keymaps:\n  - mode: n\n    mappings: {Y: y$, H: ^}\n")
	l := NewLoader("")
	if n, err := l.LoadInto(tbl, path); err != nil || n != 2 {
		t.Fatalf("LoadInto = %d, %v", n, err)
	}

	write("keymaps:\n  - mode: n\n    mappings: {Y: yy}\n")
	if _, err := l.LoadInto(tbl, path); err != nil {
		t.Fatal(err)
	}
	if _, ok := tbl.Lookup(mode.Normal, seq("H")); ok {
		t.Error("mapping removed from the file survived reload")
	}
	if m, _ := tbl.Lookup(mode.Normal, seq("Y")); m.RHS.String() != "yy" {
		t.Errorf("Y rhs = %q, want yy", m.RHS.String())
	}
	if _, ok := tbl.Lookup(mode.Normal, seq("Q")); !ok {
		t.Error("mapping from another source was dropped")
	}
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	_ = os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(yamlKeymap), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "b.toml"), []byte(tomlKeymap), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644)

	l := NewLoader("")
	l.AddSearchPath(dir)
	l.AddSearchPath(filepath.Join(dir, "missing"))
	maps, err := l.LoadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(maps) != 10 {
		t.Errorf("got %d mappings, want 10", len(maps))
	}
}

func TestParseModes(t *testing.T) {
	tests := []struct {
		input string
		want  []mode.Mode
	}{
		{"n", []mode.Mode{mode.Normal}},
		{"nx", []mode.Mode{mode.Normal, mode.Visual, mode.VisualLine, mode.VisualBlock}},
		{"!", []mode.Mode{mode.Insert}},
		{"insert", []mode.Mode{mode.Insert}},
		{"visual-line", []mode.Mode{mode.VisualLine}},
	}
	for _, tt := range tests {
		got, err := ParseModes(tt.input)
		if err != nil {
			t.Errorf("ParseModes(%q): %v", tt.input, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ParseModes(%q) (-want +got):\n%s", tt.input, diff)
		}
	}
}
