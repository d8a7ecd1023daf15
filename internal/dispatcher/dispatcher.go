package dispatcher

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/dshills/vimcore/internal/logging"
)

// Dispatcher runs calls produced by the core. It is called exactly once per
// evaluated command.
type Dispatcher interface {
	Dispatch(ctx context.Context, call Call) error
}

// DispatchFunc adapts a function to Dispatcher.
type DispatchFunc func(ctx context.Context, call Call) error

// Dispatch implements Dispatcher.
func (f DispatchFunc) Dispatch(ctx context.Context, call Call) error {
	return f(ctx, call)
}

// Reporter shows feedback to the user. Implementations must not fail.
type Reporter interface {
	ReportError(kind ErrorKind, message string)
	ReportStatus(message string)
	Bell()
}

// HandlerFunc handles one call.
type HandlerFunc func(ctx context.Context, call Call) error

// Namespace handles every call whose name starts with "<Namespace()>.".
type Namespace interface {
	Namespace() string
	CanHandle(handler string) bool
	Handle(ctx context.Context, call Call) error
}

// PreHook runs before a handler. Returning false cancels the call.
type PreHook func(ctx context.Context, call *Call) bool

// PostHook runs after a handler with its error.
type PostHook func(ctx context.Context, call Call, err error)

// Config configures a Router.
type Config struct {
	// RecoverFromPanic turns handler panics into ErrPanic.
	RecoverFromPanic bool

	// EnableMetrics collects per-handler counts and timings.
	EnableMetrics bool

	// Logger receives a debug line per call. Nil disables logging.
	Logger *logging.Logger
}

// DefaultConfig returns a configuration with panic recovery on.
func DefaultConfig() Config {
	return Config{RecoverFromPanic: true}
}

// Router is a Dispatcher backed by registered handlers.
type Router struct {
	mu         sync.RWMutex
	handlers   map[string]HandlerFunc
	namespaces map[string]Namespace
	fallback   HandlerFunc
	preHooks   []PreHook
	postHooks  []PostHook

	config  Config
	log     *logging.Logger
	metrics *Metrics
}

// New creates a router.
func New(config Config) *Router {
	r := &Router{
		handlers:   make(map[string]HandlerFunc),
		namespaces: make(map[string]Namespace),
		config:     config,
		log:        logging.OrNop(config.Logger).WithComponent("dispatcher"),
	}
	if config.EnableMetrics {
		r.metrics = NewMetrics()
	}
	return r
}

// NewWithDefaults creates a router with DefaultConfig.
func NewWithDefaults() *Router {
	return New(DefaultConfig())
}

// Metrics returns the collected metrics, or nil when disabled.
func (r *Router) Metrics() *Metrics {
	return r.metrics
}

// Handle registers fn for an exact handler name.
func (r *Router) Handle(name string, fn HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = fn
}

// RegisterNamespace registers a namespace handler.
func (r *Router) RegisterNamespace(ns Namespace) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.namespaces[ns.Namespace()] = ns
}

// SetFallback sets the handler used when nothing else matches.
func (r *Router) SetFallback(fn HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = fn
}

// Unregister removes an exact handler.
func (r *Router) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, name)
}

// OnPre adds a pre hook.
func (r *Router) OnPre(h PreHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.preHooks = append(r.preHooks, h)
}

// OnPost adds a post hook.
func (r *Router) OnPost(h PostHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.postHooks = append(r.postHooks, h)
}

// CanHandle reports whether a handler exists for name.
func (r *Router) CanHandle(name string) bool {
	return r.route(name) != nil
}

// Dispatch implements Dispatcher.
func (r *Router) Dispatch(ctx context.Context, call Call) error {
	if call.Handler == "" {
		return ErrInvalidCall
	}
	start := time.Now()

	r.mu.RLock()
	pre := append([]PreHook(nil), r.preHooks...)
	post := append([]PostHook(nil), r.postHooks...)
	r.mu.RUnlock()

	for _, h := range pre {
		if !h(ctx, &call) {
			r.log.Debug("cancelled %s", call.Handler)
			return ErrCancelled
		}
	}

	fn := r.route(call.Handler)
	var err error
	if fn == nil {
		err = fmt.Errorf("%w: %s", ErrNoHandler, call.Handler)
	} else if r.config.RecoverFromPanic {
		err = r.runRecovered(ctx, fn, call)
	} else {
		err = fn(ctx, call)
	}

	for _, h := range post {
		h(ctx, call, err)
	}
	if r.metrics != nil {
		r.metrics.record(call.Handler, time.Since(start), err)
	}
	if err != nil {
		r.log.Debug("%s failed: %v", call, err)
	} else {
		r.log.Debug("%s", call)
	}
	return err
}

func (r *Router) route(name string) HandlerFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if fn, ok := r.handlers[name]; ok {
		return fn
	}
	if ns, ok := r.namespaces[Call{Handler: name}.Namespace()]; ok && ns.CanHandle(name) {
		return ns.Handle
	}
	return r.fallback
}

func (r *Router) runRecovered(ctx context.Context, fn HandlerFunc, call Call) (err error) {
	defer func() {
		if v := recover(); v != nil {
			stack := make([]byte, 4096)
			n := runtime.Stack(stack, false)
			r.log.Error("handler panic for %s: %v\n%s", call.Handler, v, stack[:n])
			if r.metrics != nil {
				r.metrics.recordPanic(call.Handler)
			}
			err = fmt.Errorf("%w: %s: %v", ErrPanic, call.Handler, v)
		}
	}()
	return fn(ctx, call)
}
