package mode

import "strings"

var letterModes = map[string][]Mode{
	"n": {Normal},
	"v": {Visual, VisualLine, VisualBlock, Select},
	"x": {Visual, VisualLine, VisualBlock},
	"s": {Select},
	"o": {OperatorPending},
	"i": {Insert},
}

// defaultMapModes are the modes a bare ":map" applies to.
var defaultMapModes = []Mode{Normal, Visual, VisualLine, VisualBlock, Select, OperatorPending}

// ForMapCommand returns the modes addressed by a mapping command prefix:
// "" for :map, "n" for :nmap, "x" for :xmap and so on. bang selects the
// ":map!" form, which addresses insert mode.
func ForMapCommand(letter string, bang bool) ([]Mode, bool) {
	if bang {
		if letter != "" {
			return nil, false
		}
		return []Mode{Insert}, true
	}
	if letter == "" {
		return append([]Mode(nil), defaultMapModes...), true
	}
	modes, ok := letterModes[strings.ToLower(letter)]
	if !ok {
		return nil, false
	}
	return append([]Mode(nil), modes...), true
}

// Letter returns the map-command letter that addresses exactly this mode,
// or "" when no single letter does.
func (m Mode) Letter() string {
	switch m {
	case Normal:
		return "n"
	case Select:
		return "s"
	case OperatorPending:
		return "o"
	case Insert:
		return "i"
	case Visual, VisualLine, VisualBlock:
		return "x"
	}
	return ""
}
