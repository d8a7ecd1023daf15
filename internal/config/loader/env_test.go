package loader

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEnvLoad(t *testing.T) {
	env := NewEnv(DefaultEnvPrefix).WithEnviron([]string{
		"HOME=/home/me",
		"VIMCORE_SHIFTWIDTH=4",
		"VIMCORE_IGNORECASE=yes",
		"VIMCORE_LEADER=,",
		"VIMCORE_LOG_LEVEL=debug",
		"VIMCORE_MAGIC=off",
		"VIMCORE_BROKEN",
	})
	want := map[string]any{
		"settings": map[string]any{
			"shiftwidth": int64(4),
			"ignorecase": true,
			"leader":     ",",
			"magic":      false,
		},
		"log": map[string]any{"level": "debug"},
	}
	if diff := cmp.Diff(want, env.Load()); diff != "" {
		t.Errorf("Load (-want +got):\n%s", diff)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"true", true},
		{"ON", true},
		{"no", false},
		{"12", int64(12)},
		{"-3", int64(-3)},
		{"1.5", "1.5"},
		{"", ""},
		{"<Space>", "<Space>"},
	}
	for _, tt := range tests {
		if got := parseValue(tt.in); got != tt.want {
			t.Errorf("parseValue(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}
