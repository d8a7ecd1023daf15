package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/vimcore/internal/input/keymap"
	"github.com/dshills/vimcore/internal/input/macro"
)

// Search is the last search command.
type Search struct {
	Pattern string
	Forward bool
	// Offset is the text after the closing delimiter, e.g. "e" or "+1".
	Offset string
}

// CharSearch is the last f, F, t or T.
type CharSearch struct {
	Char    rune
	Forward bool
	Till    bool
}

// Substitute is the last :substitute.
type Substitute struct {
	Pattern     string
	Replacement string
	Flags       []string
}

// State is the session-wide state. Its lifetime is the process, or one
// test; Reset starts a new session in place.
type State struct {
	ID uuid.UUID

	Mappings *keymap.Table
	Macros   *macro.Recorder
	Repeat   *macro.RepeatBuffer
	History  *History
	Settings *Settings

	mu         sync.Mutex
	search     *Search
	charSearch *CharSearch
	substitute *Substitute
}

// New creates a session with default settings.
func New() *State {
	s := &State{Settings: NewSettings()}
	s.Reset()
	s.Settings.OnChange(func(name string, value any) {
		if name == "history" {
			if n, ok := value.(int); ok {
				s.History.SetMax(n)
			}
		}
	})
	return s
}

// Reset clears everything but the settings and gives the session a new ID.
func (s *State) Reset() {
	s.ID = uuid.New()
	s.Mappings = keymap.NewTable()
	s.Macros = macro.NewRecorder()
	s.Repeat = macro.NewRepeatBuffer()
	s.History = NewHistory(s.Settings.Int("history"))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = nil
	s.charSearch = nil
	s.substitute = nil
}

// LastSearch returns the last search, if any.
func (s *State) LastSearch() (Search, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.search == nil {
		return Search{}, false
	}
	return *s.search, true
}

// SetLastSearch records a search and adds its pattern to the search
// history.
func (s *State) SetLastSearch(search Search) {
	s.mu.Lock()
	s.search = &search
	s.mu.Unlock()
	s.History.Add(HistorySearch, search.Pattern)
}

// SetLastSearchPattern replaces the pattern of the last search, keeping its
// direction. Ex search addresses use it.
func (s *State) SetLastSearchPattern(pattern string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.search == nil {
		s.search = &Search{Forward: true}
	}
	s.search.Pattern = pattern
}

// LastCharSearch returns the last character search, if any.
func (s *State) LastCharSearch() (CharSearch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.charSearch == nil {
		return CharSearch{}, false
	}
	return *s.charSearch, true
}

// SetLastCharSearch records a character search.
func (s *State) SetLastCharSearch(cs CharSearch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.charSearch = &cs
}

// LastSubstitute returns the last :substitute, if any.
func (s *State) LastSubstitute() (Substitute, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.substitute == nil {
		return Substitute{}, false
	}
	return *s.substitute, true
}

// SetLastSubstitute records a :substitute.
func (s *State) SetLastSubstitute(sub Substitute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.substitute = &sub
}
