package scope

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strconv"

	"github.com/ardnew/bindexpr/lang"
	"github.com/ardnew/bindexpr/log"
)

// WatchFunc returns the current value of a watched quantity.
type WatchFunc func(s *Scope) (any, error)

// ListenerFunc is called when a watched value changes. On the first call
// oldValue equals newValue.
type ListenerFunc func(newValue, oldValue any, s *Scope) error

// sentinel marks a watcher that has never been evaluated. The field keeps
// distinct allocations from sharing an address.
type sentinel struct{ _ byte }

//nolint:gochecknoglobals
var uninitialized = &sentinel{}

type watcher struct {
	watch  WatchFunc
	listen ListenerFunc
	last   any
	name   string
}

// Scope holds a set of properties and the watchers observing them.
// A Scope is not safe for concurrent use.
type Scope struct {
	data     map[string]any
	logger   log.Logger
	watchers []*watcher
	compile  []lang.Option
	ttl      int
}

// New returns an empty scope configured by opts.
func New(opts ...Option) *Scope {
	s := &Scope{
		data: make(map[string]any),
		ttl:  DefaultTTL,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// TTL returns the maximum number of digest passes.
func (s *Scope) TTL() int { return s.ttl }

// Len returns the number of registered watchers.
func (s *Scope) Len() int { return len(s.watchers) }

// Names returns the watcher names in registration order.
func (s *Scope) Names() []string {
	names := make([]string, len(s.watchers))
	for i, w := range s.watchers {
		names[i] = w.name
	}

	return names
}

// Get returns the scope property name.
func (s *Scope) Get(name string) (any, bool) {
	v, ok := s.data[name]

	return v, ok
}

// Set assigns the scope property name.
func (s *Scope) Set(name string, value any) { s.data[name] = value }

// Keys returns the sorted property names.
func (s *Scope) Keys() []string { return slices.Sorted(maps.Keys(s.data)) }

// Data returns the property map. Expressions evaluated by the scope use it
// as their context.
func (s *Scope) Data() map[string]any { return s.data }

// Watch registers a watcher. A nil listenerFn does nothing when the value
// changes. Watch panics if watchFn is nil.
func (s *Scope) Watch(watchFn WatchFunc, listenerFn ListenerFunc) {
	s.watch("watch["+strconv.Itoa(len(s.watchers))+"]", watchFn, listenerFn)
}

// WatchExpr compiles text and watches its value evaluated against the
// scope properties. The watcher is named by text.
func (s *Scope) WatchExpr(text string, listenerFn ListenerFunc) error {
	e, err := s.expression(context.Background(), text)
	if err != nil {
		return err
	}

	s.watch(text, func(s *Scope) (any, error) {
		return e.Eval(s.data, nil)
	}, listenerFn)

	return nil
}

// Eval compiles text and evaluates it against the scope properties.
func (s *Scope) Eval(text string, locals any) (any, error) {
	e, err := s.expression(context.Background(), text)
	if err != nil {
		return nil, err
	}

	return e.Eval(s.data, locals)
}

func (s *Scope) expression(ctx context.Context, text string) (*lang.Expression, error) {
	opts := append([]lang.Option{lang.WithLogger(s.logger)}, s.compile...)

	return lang.Compile(ctx, text, opts...)
}

func (s *Scope) watch(name string, watchFn WatchFunc, listenerFn ListenerFunc) {
	if watchFn == nil {
		panic("scope: nil watch function")
	}

	if listenerFn == nil {
		listenerFn = func(any, any, *Scope) error { return nil }
	}

	s.watchers = append(s.watchers, &watcher{
		watch:  watchFn,
		listen: listenerFn,
		last:   uninitialized,
		name:   name,
	})
}

// Digest evaluates every watcher, calling the listeners of those whose
// value changed, and repeats until a pass sees no change.
//
// Digest fails with a [*NonConvergenceError] when the values are still
// changing after TTL passes. A watch or listener error aborts the digest
// immediately. ctx is checked before each pass.
func (s *Scope) Digest(ctx context.Context) error {
	logger := s.logger.With(slog.Int("ttl", s.ttl))

	for pass := 1; ; pass++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		dirty, err := s.digestOnce()
		if err != nil {
			logger.TraceContext(ctx, "digest failed",
				slog.Int("pass", pass),
				slog.Any("error", err),
			)

			return err
		}

		logger.TraceContext(ctx, "digest pass",
			slog.Int("pass", pass),
			slog.Int("watchers", len(s.watchers)),
			slog.Int("dirty", len(dirty)),
		)

		if len(dirty) == 0 {
			return nil
		}

		if pass >= s.ttl {
			return &NonConvergenceError{TTL: s.ttl, Watchers: dirty}
		}
	}
}

// digestOnce runs one pass over the watchers registered when it starts and
// returns the names of those that changed.
func (s *Scope) digestOnce() ([]string, error) {
	var dirty []string

	for _, w := range s.watchers {
		value, err := w.watch(s)
		if err != nil {
			return dirty, wrap(ErrWatch, w.name, err)
		}

		if identical(value, w.last) {
			continue
		}

		old := w.last
		if old == any(uninitialized) {
			old = value
		}

		w.last = value
		dirty = append(dirty, w.name)

		if err := w.listen(value, old, s); err != nil {
			return dirty, wrap(ErrListener, w.name, err)
		}
	}

	return dirty, nil
}
