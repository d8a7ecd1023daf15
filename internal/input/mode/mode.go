package mode

import (
	"fmt"
	"strings"
)

// Mode is one of the editing modes.
type Mode uint8

const (
	Unknown Mode = iota
	Normal
	Insert
	Replace
	Visual
	VisualLine
	VisualBlock
	Select
	OperatorPending
)

var modeNames = [...]string{
	Unknown:         "unknown",
	Normal:          "normal",
	Insert:          "insert",
	Replace:         "replace",
	Visual:          "visual",
	VisualLine:      "visual-line",
	VisualBlock:     "visual-block",
	Select:          "select",
	OperatorPending: "operator-pending",
}

// All lists every enterable mode in display order.
var All = []Mode{Normal, Insert, Replace, Visual, VisualLine, VisualBlock, Select, OperatorPending}

// String returns the mode identifier (e.g. "normal", "visual-line").
func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// DisplayName returns the status-line label for the mode.
func (m Mode) DisplayName() string {
	switch m {
	case Normal:
		return ""
	case Insert:
		return "-- INSERT --"
	case Replace:
		return "-- REPLACE --"
	case Visual:
		return "-- VISUAL --"
	case VisualLine:
		return "-- VISUAL LINE --"
	case VisualBlock:
		return "-- VISUAL BLOCK --"
	case Select:
		return "-- SELECT --"
	case OperatorPending:
		return "-- (op) --"
	default:
		return "-- ? --"
	}
}

// IsVisual reports whether the mode has an active visual selection.
func (m Mode) IsVisual() bool {
	return m == Visual || m == VisualLine || m == VisualBlock
}

// IsTextEntry reports whether typed characters become buffer text.
func (m Mode) IsTextEntry() bool {
	return m == Insert || m == Replace
}

// CursorStyle returns the cursor style used while in the mode.
func (m Mode) CursorStyle() CursorStyle {
	switch m {
	case Insert:
		return CursorBar
	case Replace, OperatorPending:
		return CursorUnderline
	default:
		return CursorBlock
	}
}

// Parse returns the mode named s. Both identifiers ("visual-line") and
// single map letters ("n", "x") are accepted; a letter standing for several
// modes returns the first of them.
func Parse(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range modeNames {
		if name == s && Mode(i) != Unknown {
			return Mode(i), nil
		}
	}
	switch s {
	case "visualline", "linewise-visual", "vl":
		return VisualLine, nil
	case "visualblock", "blockwise-visual", "vb":
		return VisualBlock, nil
	case "operatorpending", "op":
		return OperatorPending, nil
	}
	if modes, ok := letterModes[s]; ok {
		return modes[0], nil
	}
	return Unknown, fmt.Errorf("unknown mode %q", s)
}

// CursorStyle defines the visual appearance of the cursor.
type CursorStyle uint8

const (
	// CursorBlock is a full-cell block cursor (normal mode).
	CursorBlock CursorStyle = iota

	// CursorBar is a thin vertical bar cursor (insert mode).
	CursorBar

	// CursorUnderline is an underline cursor.
	CursorUnderline
)

// String returns a human-readable cursor style name.
func (c CursorStyle) String() string {
	switch c {
	case CursorBlock:
		return "block"
	case CursorBar:
		return "bar"
	case CursorUnderline:
		return "underline"
	default:
		return "unknown"
	}
}
