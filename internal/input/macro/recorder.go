package macro

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/vimcore/internal/input/key"
)

// Recorder errors.
var (
	ErrInvalidRegister  = errors.New("invalid register")
	ErrAlreadyRecording = errors.New("already recording")
	ErrEmptyRegister    = errors.New("empty register")
	ErrNoLastMacro      = errors.New("no previously used register")
)

// Recorder holds the macro registers and the recording in progress.
type Recorder struct {
	mu         sync.Mutex
	recording  bool
	register   rune
	appending  bool
	keys       key.Sequence
	registers  map[rune]key.Sequence
	lastPlayed rune
}

// NewRecorder creates a recorder with empty registers.
func NewRecorder() *Recorder {
	return &Recorder{registers: make(map[rune]key.Sequence)}
}

// Start begins recording into register. An upper-case name appends to the
// lower-case register when recording stops.
func (r *Recorder) Start(register rune) error {
	name := NormalizeRegister(register)
	if name == 0 {
		return fmt.Errorf("%w: %q", ErrInvalidRegister, register)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recording {
		return fmt.Errorf("%w: %c", ErrAlreadyRecording, r.register)
	}
	r.recording = true
	r.register = name
	r.appending = IsAppendRegister(register)
	r.keys = nil
	return nil
}

// Stop ends the recording, stores it and returns the recorded keys.
func (r *Recorder) Stop() key.Sequence {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return nil
	}
	r.recording = false
	keys := r.keys
	r.keys = nil

	if r.appending {
		r.registers[r.register] = append(r.registers[r.register].Clone(), keys...)
	} else if len(keys) > 0 {
		r.registers[r.register] = keys.Clone()
	} else {
		delete(r.registers, r.register)
	}
	return keys
}

// Record appends tok to the recording in progress.
func (r *Recorder) Record(tok key.Token) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recording {
		r.keys = append(r.keys, tok)
	}
}

// IsRecording reports whether a recording is in progress.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Recording returns the register being recorded into, or 0.
func (r *Recorder) Recording() rune {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return 0
	}
	return r.register
}

// Get returns a copy of the keys in register.
func (r *Recorder) Get(register rune) key.Sequence {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registers[NormalizeRegister(register)].Clone()
}

// Set replaces the contents of register. Upper-case names append.
func (r *Recorder) Set(register rune, keys key.Sequence) error {
	name := NormalizeRegister(register)
	if name == 0 {
		return fmt.Errorf("%w: %q", ErrInvalidRegister, register)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case IsAppendRegister(register):
		r.registers[name] = append(r.registers[name].Clone(), keys...)
	case len(keys) == 0:
		delete(r.registers, name)
	default:
		r.registers[name] = keys.Clone()
	}
	return nil
}

// Registers returns the non-empty registers in a-z, 0-9 order.
func (r *Recorder) Registers() []rune {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []rune
	for _, name := range AllRegisters() {
		if len(r.registers[name]) > 0 {
			out = append(out, name)
		}
	}
	return out
}

// ClearAll empties every register.
func (r *Recorder) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registers = make(map[rune]key.Sequence)
}

// LastPlayed returns the register @@ replays, or 0.
func (r *Recorder) LastPlayed() rune {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastPlayed
}

func (r *Recorder) setLastPlayed(register rune) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastPlayed = register
}
