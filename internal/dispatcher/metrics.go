package dispatcher

import (
	"slices"
	"sync"
	"time"
)

// HandlerStats are the counters of one handler.
type HandlerStats struct {
	Handler string
	Calls   int
	Errors  int
	Panics  int
	Total   time.Duration
}

// Average returns the mean call duration.
func (s HandlerStats) Average() time.Duration {
	if s.Calls == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Calls)
}

// Metrics counts dispatches per handler.
type Metrics struct {
	mu    sync.Mutex
	stats map[string]*HandlerStats
}

// NewMetrics creates empty metrics.
func NewMetrics() *Metrics {
	return &Metrics{stats: make(map[string]*HandlerStats)}
}

func (m *Metrics) get(name string) *HandlerStats {
	s, ok := m.stats[name]
	if !ok {
		s = &HandlerStats{Handler: name}
		m.stats[name] = s
	}
	return s
}

func (m *Metrics) record(name string, d time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.get(name)
	s.Calls++
	s.Total += d
	if err != nil {
		s.Errors++
	}
}

func (m *Metrics) recordPanic(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.get(name).Panics++
}

// Snapshot returns the stats of every handler, most called first.
func (m *Metrics) Snapshot() []HandlerStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]HandlerStats, 0, len(m.stats))
	for _, s := range m.stats {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b HandlerStats) int {
		if a.Calls != b.Calls {
			return b.Calls - a.Calls
		}
		if a.Handler < b.Handler {
			return -1
		}
		if a.Handler > b.Handler {
			return 1
		}
		return 0
	})
	return out
}

// Reset clears all counters.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = make(map[string]*HandlerStats)
}
