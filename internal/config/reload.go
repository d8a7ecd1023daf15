package config

import (
	"context"
	"sync"

	"github.com/dshills/vimcore/internal/config/watcher"
	"github.com/dshills/vimcore/internal/logging"
	"github.com/dshills/vimcore/internal/session"
)

// Reloader keeps a session in step with a configuration file.
type Reloader struct {
	Path    string
	State   *session.State
	Logger  *logging.Logger
	Options []Option

	// OnApply runs after every successful load, e.g. to rerun the Lua
	// init script the configuration names.
	OnApply func(*Config)

	mu      sync.Mutex
	current *Config
}

// Current returns the last configuration applied.
func (r *Reloader) Current() *Config {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Load reads the configuration and applies it. Errors applying single
// entries are logged and do not fail the load.
func (r *Reloader) Load() (*Config, error) {
	log := logging.OrNop(r.Logger).WithComponent("config")
	cfg, err := Load(r.Path, r.Options...)
	if err != nil {
		return nil, err
	}
	if err := cfg.Apply(r.State); err != nil {
		log.Warn("applying %s: %v", r.Path, err)
	}
	r.mu.Lock()
	r.current = cfg
	r.mu.Unlock()
	if r.OnApply != nil {
		r.OnApply(cfg)
	}
	log.Debug("loaded %s (%d settings, %d mappings)", r.Path, len(cfg.Settings), len(cfg.Mappings))
	return cfg, nil
}

// Watch loads the configuration, then reloads it whenever one of its
// files changes, until ctx is done. Files added by a reload are watched
// from then on.
func (r *Reloader) Watch(ctx context.Context, opts ...watcher.Option) error {
	log := logging.OrNop(r.Logger).WithComponent("config")
	cfg, err := r.Load()
	if err != nil {
		return err
	}

	var w *watcher.Watcher
	w, err = watcher.New(func(ev watcher.Event) {
		log.Info("%s changed (%s), reloading", ev.Path, ev.Op)
		cfg, err := r.Load()
		if err != nil {
			log.Error("reloading %s: %v", r.Path, err)
			return
		}
		for _, p := range cfg.Watched() {
			if err := w.Add(p); err != nil {
				log.Warn("watching %s: %v", p, err)
			}
		}
	}, append([]watcher.Option{watcher.WithLogger(r.Logger)}, opts...)...)
	if err != nil {
		return err
	}
	defer w.Close()

	for _, p := range cfg.Watched() {
		if err := w.Add(p); err != nil {
			return err
		}
	}
	return w.Run(ctx)
}
