package key

import (
	"errors"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/google/go-cmp/cmp"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{"empty", "", []Token{}},
		{"count operator motion", "2dw", []Token{"2", "d", "w"}},
		{"window command", "<C-w>h", []Token{"<C-w>", "h"}},
		{"lowercase names", "<esc>:w<cr>", []Token{"<Esc>", ":", "w", "<CR>"}},
		{"ctrl uppercase folds", "<c-W>", []Token{"<C-w>"}},
		{"ctrl shift", "<C-S-b>", []Token{"<C-S-b>"}},
		{"literal less-than", "<lt><lt>", []Token{"<lt>", "<lt>"}},
		{"greater-than is plain", ">>", []Token{">", ">"}},
		{"space", "a b", []Token{"a", "<Space>", "b"}},
		{"space name", "<space>", []Token{"<Space>"}},
		{"bar and bslash", "<Bar><Bslash>", []Token{"|", `\`}},
		{"shift letter", "<S-a>", []Token{"A"}},
		{"ctrl minus", "<C-->", []Token{"<C-->"}},
		{"meta alias", "<M-x>", []Token{"<A-x>"}},
		{"function key", "<f5>", []Token{"<F5>"}},
		{"shift tab", "<s-tab>", []Token{"<S-Tab>"}},
		{"tab char", "\t", []Token{"<Tab>"}},
		{"combining grapheme", "e\u0301x", []Token{"e\u0301", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize(%q) error: %v", tt.input, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"unmatched", "a<Esc", ErrUnmatchedBracket},
		{"lone less-than", "<<", ErrUnmatchedBracket},
		{"empty brackets", "<>", ErrInvalidSpec},
		{"unknown name", "<Bogus>", ErrInvalidSpec},
		{"unknown modifier", "<X-a>", ErrInvalidSpec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("Tokenize(%q) error = %v, want %v", tt.input, err, tt.want)
			}
		})
	}
}

func TestTokenizerIsLazy(t *testing.T) {
	tz := NewTokenizer("ab<Esc")

	tok, ok := tz.Next()
	if !ok || tok != "a" {
		t.Fatalf("first Next() = %q, %v; want \"a\", true", tok, ok)
	}
	tok, ok = tz.Next()
	if !ok || tok != "b" {
		t.Fatalf("second Next() = %q, %v; want \"b\", true", tok, ok)
	}
	if tz.Err() != nil {
		t.Fatalf("Err() before reaching bad input = %v", tz.Err())
	}
	if _, ok := tz.Next(); ok {
		t.Fatal("Next() on unmatched bracket should report false")
	}
	if !errors.Is(tz.Err(), ErrUnmatchedBracket) {
		t.Errorf("Err() = %v, want ErrUnmatchedBracket", tz.Err())
	}
	if _, ok := tz.Next(); ok {
		t.Error("Next() after an error should keep reporting false")
	}
}

func TestTokenChar(t *testing.T) {
	tests := []struct {
		tok    Token
		want   rune
		wantOK bool
	}{
		{"a", 'a', true},
		{"<Space>", ' ', true},
		{"<lt>", '<', true},
		{"<Tab>", '\t', true},
		{"<Esc>", 0, false},
		{"<C-w>", 0, false},
		{"e\u0301", 0, false},
	}

	for _, tt := range tests {
		got, ok := tt.tok.Char()
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("%q.Char() = %q, %v; want %q, %v", tt.tok, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestTokenDigit(t *testing.T) {
	for _, tok := range []Token{"0", "5", "9"} {
		if !tok.IsDigit() {
			t.Errorf("%q.IsDigit() = false, want true", tok)
		}
	}
	for _, tok := range []Token{"a", "<F1>", "12", ""} {
		if tok.IsDigit() {
			t.Errorf("%q.IsDigit() = true, want false", tok)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	specs := []string{"a", "A", "<C-w>", "<Esc>", "<CR>", "<C-S-b>", "<lt>", "<Space>", "<F12>", "<A-x>", "<S-Tab>"}
	for _, spec := range specs {
		ev, err := Parse(spec)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", spec, err)
		}
		if got := string(ev.Token()); got != spec {
			t.Errorf("Parse(%q).Token() = %q", spec, got)
		}
	}
}

func TestSequence(t *testing.T) {
	seq := MustParseSequence("g~~")
	if seq.String() != "g~~" {
		t.Errorf("String() = %q, want %q", seq.String(), "g~~")
	}
	if !seq.HasPrefix(Sequence{"g", "~"}) {
		t.Error("HasPrefix(g~) = false, want true")
	}
	if seq.HasPrefix(Sequence{"g", "u"}) {
		t.Error("HasPrefix(gu) = true, want false")
	}
	if seq.Last() != "~" {
		t.Errorf("Last() = %q, want ~", seq.Last())
	}
	clone := seq.Clone()
	clone[0] = "x"
	if seq[0] != "g" {
		t.Error("Clone shares storage with original")
	}
}

func TestExpandLeader(t *testing.T) {
	tests := []struct {
		notation string
		leader   string
		want     string
	}{
		{"<leader>w", ",", ",w"},
		{"<Leader>w<LEADER>", " ", "<Space>w<Space>"},
		{"<leader>x", "", `\x`},
		{"dd", ",", "dd"},
	}
	for _, tt := range tests {
		if got := ExpandLeader(tt.notation, tt.leader); got != tt.want {
			t.Errorf("ExpandLeader(%q, %q) = %q, want %q", tt.notation, tt.leader, got, tt.want)
		}
	}
}

func TestFromTcell(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want Token
	}{
		{"rune", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), "x"},
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), "<Esc>"},
		{"enter", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), "<CR>"},
		{"ctrl w", tcell.NewEventKey(tcell.KeyCtrlW, 0, tcell.ModCtrl), "<C-w>"},
		{"f3", tcell.NewEventKey(tcell.KeyF3, 0, tcell.ModNone), "<F3>"},
		{"backtab", tcell.NewEventKey(tcell.KeyBacktab, 0, tcell.ModNone), "<S-Tab>"},
		{"less-than", tcell.NewEventKey(tcell.KeyRune, '<', tcell.ModNone), "<lt>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromTcell(tt.ev).Token(); got != tt.want {
				t.Errorf("FromTcell() token = %q, want %q", got, tt.want)
			}
		})
	}
}
