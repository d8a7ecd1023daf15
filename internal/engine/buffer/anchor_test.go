package buffer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAnchors(t *testing.T) {
	type anchor struct {
		At   int
		Live bool
	}
	tests := []struct {
		name string
		span Span
		text string
		want []anchor
	}{
		{"delete a line", Span{2, 5}, "", []anchor{{0, true}, {2, false}, {2, true}, {4, true}}},
		{"join with the line above", Span{1, 2}, " ", []anchor{{0, true}, {2, false}, {5, true}, {7, true}}},
		{"open a line above", Span{0, 0}, "x\n", []anchor{{2, true}, {4, true}, {7, true}, {9, true}}},
		{"edit inside a line", Span{2, 4}, "q", []anchor{{0, true}, {2, true}, {4, true}, {6, true}}},
		{"delete lines below an anchor", Span{5, 9}, "", []anchor{{0, true}, {2, true}, {5, false}, {7, false}}},
		{"insert after the last anchor", Span{8, 8}, "tail", []anchor{{0, true}, {2, true}, {5, true}, {7, true}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMemory("a\nbb\nc\nd\n")
			a := m.Track(0, 2, 5, 7)
			if _, err := m.Replace(tt.span, tt.text); err != nil {
				t.Fatal(err)
			}
			var got []anchor
			for i, n := 0, a.Len(); i < n; i++ {
				p, ok := a.At(i)
				got = append(got, anchor{p, ok})
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("anchors (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUntrack(t *testing.T) {
	m := NewMemory("a\nb\n")
	a := m.Track(2)
	m.Untrack(a)
	if _, err := m.Insert(0, "x\n"); err != nil {
		t.Fatal(err)
	}
	if p, _ := a.At(0); p != 2 {
		t.Errorf("untracked anchor moved to %d", p)
	}
}
