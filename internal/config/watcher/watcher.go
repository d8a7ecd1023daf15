// Package watcher reports changes to configuration files.
//
// Files are watched through their directories, so editors that save by
// writing a new file and renaming it over the old one are still seen.
// Bursts of events for one file are coalesced into a single callback once
// the file has been quiet for the debounce delay.
package watcher

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/vimcore/internal/logging"
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 100 * time.Millisecond

// ErrClosed is returned by a watcher after Close.
var ErrClosed = errors.New("watcher closed")

// Op is what happened to a file.
type Op int

const (
	OpWrite Op = iota
	OpCreate
	OpRemove
	OpRename
)

func (op Op) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Event is a debounced change to a watched file.
type Event struct {
	Path string
	Op   Op
	Time time.Time
}

// Handler receives events. Calls are serialized.
type Handler func(Event)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Zero reports every event.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger watch errors go to.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		w.log = logging.OrNop(l).WithComponent("watcher")
	}
}

// Watcher watches a set of files.
type Watcher struct {
	fsw      *fsnotify.Watcher
	handler  Handler
	debounce time.Duration
	log      *logging.Logger

	mu      sync.Mutex
	files   map[string]bool
	dirs    map[string]int
	pending map[string]*time.Timer
	ready   chan Event
	closed  bool
}

// New creates a watcher calling handler for changes.
func New(handler Handler, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:      fsw,
		handler:  handler,
		debounce: DefaultDebounce,
		log:      logging.Nop(),
		files:    make(map[string]bool),
		dirs:     make(map[string]int),
		pending:  make(map[string]*time.Timer),
		ready:    make(chan Event, 16),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Add starts watching path. The file need not exist yet; its directory
// must.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if w.files[abs] {
		return nil
	}
	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[abs] = true
	return nil
}

// Remove stops watching path.
func (w *Watcher) Remove(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.files[abs] {
		return nil
	}
	delete(w.files, abs)
	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		return w.fsw.Remove(dir)
	}
	return nil
}

// Files returns the watched paths.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	return out
}

// Run delivers events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return ErrClosed
			}
			w.queue(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return ErrClosed
			}
			w.log.Warn("watch error: %v", err)
		case ev := <-w.ready:
			w.handler(ev)
		}
	}
}

// Close stops the watcher and drops pending events.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()
	return w.fsw.Close()
}

func (w *Watcher) queue(fe fsnotify.Event) {
	op, ok := convertOp(fe.Op)
	if !ok {
		return
	}
	abs, err := filepath.Abs(fe.Name)
	if err != nil {
		return
	}
	ev := Event{Path: abs, Op: op, Time: time.Now()}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || !w.files[abs] {
		return
	}
	if w.debounce == 0 {
		w.send(ev)
		return
	}
	if t, ok := w.pending[abs]; ok {
		t.Stop()
	}
	w.pending[abs] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, abs)
		closed := w.closed
		w.mu.Unlock()
		if !closed {
			w.send(ev)
		}
	})
}

// send hands ev to Run without blocking the caller forever when Run has
// stopped.
func (w *Watcher) send(ev Event) {
	select {
	case w.ready <- ev:
	default:
		w.log.Warn("dropping change to %s", ev.Path)
	}
}

func convertOp(op fsnotify.Op) (Op, bool) {
	switch {
	case op.Has(fsnotify.Remove):
		return OpRemove, true
	case op.Has(fsnotify.Rename):
		return OpRename, true
	case op.Has(fsnotify.Create):
		return OpCreate, true
	case op.Has(fsnotify.Write):
		return OpWrite, true
	}
	return 0, false
}

// Watch calls handler for changes to paths until ctx is done.
func Watch(ctx context.Context, paths []string, handler Handler, opts ...Option) error {
	w, err := New(handler, opts...)
	if err != nil {
		return err
	}
	defer w.Close()
	for _, p := range paths {
		if err := w.Add(p); err != nil {
			return err
		}
	}
	return w.Run(ctx)
}
