package macro

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/vimcore/internal/engine/buffer"
	"github.com/dshills/vimcore/internal/input/key"
	"github.com/dshills/vimcore/internal/input/mode"
)

// RepeatKind says how a repeat entry is replayed.
type RepeatKind uint8

const (
	// RepeatKeys replays the recorded keys through the key pipeline.
	RepeatKeys RepeatKind = iota
	// RepeatCommand dispatches the recorded handler directly.
	RepeatCommand
)

func (k RepeatKind) String() string {
	if k == RepeatCommand {
		return "command"
	}
	return "keys"
}

// VisualSnapshot records the selection a visual-mode command acted on, so
// "." can apply the same extent at the cursor.
type VisualSnapshot struct {
	Mode       mode.Mode
	Lines      int
	Selections []buffer.Span
}

// RepeatEntry is what "." replays.
type RepeatEntry struct {
	ID   uuid.UUID
	Kind RepeatKind

	// Keys is set for RepeatKeys: the full command as typed, counts
	// included.
	Keys key.Sequence

	// Handler and Args are set for RepeatCommand.
	Handler string
	Args    map[string]any

	Mode   mode.Mode
	Visual *VisualSnapshot
	At     time.Time
}

// RepeatBuffer holds the last repeatable command.
type RepeatBuffer struct {
	mu    sync.Mutex
	last  *RepeatEntry
	now   func() time.Time
	count int
}

// NewRepeatBuffer creates an empty buffer.
func NewRepeatBuffer() *RepeatBuffer {
	return &RepeatBuffer{now: time.Now}
}

// Record stores e as the last repeatable command and returns it with its
// ID and time filled in.
func (b *RepeatBuffer) Record(e RepeatEntry) RepeatEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	e.ID = uuid.New()
	e.At = b.now()
	e.Keys = e.Keys.Clone()
	b.last = &e
	b.count++
	return e
}

// Last returns the last recorded entry.
func (b *RepeatBuffer) Last() (RepeatEntry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.last == nil {
		return RepeatEntry{}, false
	}
	e := *b.last
	e.Keys = e.Keys.Clone()
	return e, true
}

// Recorded returns how many entries have been recorded.
func (b *RepeatBuffer) Recorded() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Clear forgets the last entry.
func (b *RepeatBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = nil
}
