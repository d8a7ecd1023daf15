package macro

import (
	"fmt"

	"github.com/dshills/vimcore/internal/input/key"
)

// Player replays macros from a Recorder.
type Player struct {
	recorder *Recorder
}

// NewPlayer creates a player for recorder.
func NewPlayer(recorder *Recorder) *Player {
	return &Player{recorder: recorder}
}

// Play feeds the keys of register to feed count times. The register '@'
// replays the last played register. Playback stops at the first error from
// feed.
func (p *Player) Play(register rune, count int, feed func(key.Token) error) error {
	if register == '@' {
		register = p.recorder.LastPlayed()
		if register == 0 {
			return ErrNoLastMacro
		}
	}
	name := NormalizeRegister(register)
	if name == 0 {
		return fmt.Errorf("%w: %q", ErrInvalidRegister, register)
	}
	keys := p.recorder.Get(name)
	if len(keys) == 0 {
		return fmt.Errorf("%w: %c", ErrEmptyRegister, name)
	}

	p.recorder.setLastPlayed(name)
	for i, n := 0, max(count, 1); i < n; i++ {
		for _, tok := range keys {
			if err := feed(tok); err != nil {
				return err
			}
		}
	}
	return nil
}
