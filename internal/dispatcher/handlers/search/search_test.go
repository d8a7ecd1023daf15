package search_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/search"
	"github.com/dshills/vimcore/internal/engine/buffer"
)

const text = "alpha beta\ngamma alpha\nbeta alphabet\n"

func TestTarget(t *testing.T) {
	tests := []struct {
		name string
		call dispatcher.Call
		from int
		want int
	}{
		{"forward", dispatcher.NewCall(search.ActionSearchForward).With("pattern", "alpha"), 0, 17},
		{"forward wraps", dispatcher.NewCall(search.ActionSearchForward).With("pattern", "gamma"), 20, 11},
		{"count", dispatcher.NewCall(search.ActionSearchForward).With("pattern", "alpha").With("count", 2), 0, 28},
		{"backward", dispatcher.NewCall(search.ActionSearchBackward).With("pattern", "beta"), 23, 6},
		{"backward wraps", dispatcher.NewCall(search.ActionSearchBackward).With("pattern", "beta"), 3, 23},
		{"next", dispatcher.NewCall(search.ActionSearchNext).With("pattern", "beta").With("forward", true), 6, 23},
		{"prev", dispatcher.NewCall(search.ActionSearchPrev).With("pattern", "beta").With("forward", false), 23, 6},
		{"end offset", dispatcher.NewCall(search.ActionSearchForward).With("pattern", "gamma").With("offset", "e"), 0, 15},
		{"start offset", dispatcher.NewCall(search.ActionSearchForward).With("pattern", "gamma").With("offset", "s+2"), 0, 13},
		{"line offset", dispatcher.NewCall(search.ActionSearchForward).With("pattern", "gamma").With("offset", "1"), 0, 23},
		{"word", dispatcher.NewCall(search.ActionSearchWordForward), 2, 17},
		{"word skips longer words", dispatcher.NewCall(search.ActionSearchWordBackward), 17, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := search.NewHandler(buffer.NewMemory(text))
			got, err := h.Target(tt.call, tt.from)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Target = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestErrors(t *testing.T) {
	h := search.NewHandler(buffer.NewMemory(text))
	if _, err := h.Target(dispatcher.NewCall(search.ActionSearchForward).With("pattern", "delta"), 0); !errors.Is(err, search.ErrNotFound) {
		t.Errorf("missing pattern: err = %v", err)
	}
	if _, err := h.Target(dispatcher.NewCall(search.ActionSearchForward).With("pattern", "(a"), 0); !errors.Is(err, buffer.ErrInvalidPattern) {
		t.Errorf("bad pattern: err = %v", err)
	}
	if _, err := h.Target(dispatcher.NewCall(search.ActionSearchNext), 0); !errors.Is(err, search.ErrNoPattern) {
		t.Errorf("no pattern: err = %v", err)
	}
}

func TestHandleReportsWordPattern(t *testing.T) {
	b := buffer.NewMemory(text, buffer.WithSelections(buffer.Point(12)))
	h := search.NewHandler(b)
	var got string
	h.OnPattern = func(p string, _ bool) { got = p }
	if err := h.Handle(context.Background(), dispatcher.NewCall(search.ActionSearchWordForward)); err != nil {
		t.Fatal(err)
	}
	if got != `\bgamma\b` {
		t.Errorf("pattern = %q", got)
	}
	if c := b.Cursor(); c != 11 {
		t.Errorf("cursor = %d, want 11 after wrapping", c)
	}
}
