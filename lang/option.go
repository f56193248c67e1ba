package lang

import (
	"strings"

	"github.com/ardnew/bindexpr/log"
)

// Backend selects how a syntax tree becomes an [Evaluator].
type Backend int

const (
	// BackendClosure composes one Go closure per node.
	BackendClosure Backend = iota
	// BackendSource generates source text and hands it to a [Materializer].
	BackendSource
)

// DefaultBackend is the backend used when none is configured.
const DefaultBackend = BackendClosure

// String returns the backend name.
func (b Backend) String() string {
	switch b {
	case BackendClosure:
		return "closure"
	case BackendSource:
		return "source"
	default:
		return "unknown"
	}
}

// Backends returns the names of all backends.
func Backends() []string {
	return []string{BackendClosure.String(), BackendSource.String()}
}

// ParseBackend returns the backend with the given name, or DefaultBackend.
func ParseBackend(s string) Backend {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "source", "expr":
		return BackendSource
	default:
		return DefaultBackend
	}
}

// Option configures [Compile].
type Option func(*config)

type config struct {
	materializer Materializer
	logger       log.Logger
	backend      Backend
	noCache      bool
}

func makeConfig(opts ...Option) config {
	c := config{
		materializer: ExprMaterializer{},
		backend:      DefaultBackend,
	}

	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// cacheable reports whether compiled results depend only on the source text
// and backend, so they may be shared between callers.
func (c config) cacheable() bool {
	if c.noCache {
		return false
	}

	_, isDefault := c.materializer.(ExprMaterializer)

	return c.backend == BackendClosure || isDefault
}

// WithBackend selects the compile backend.
func WithBackend(b Backend) Option {
	return func(c *config) { c.backend = b }
}

// WithMaterializer selects the source backend using m. A nil m restores
// [ExprMaterializer].
func WithMaterializer(m Materializer) Option {
	return func(c *config) {
		if m == nil {
			m = ExprMaterializer{}
		}

		c.materializer = m
		c.backend = BackendSource
	}
}

// WithCache controls whether compiled expressions are cached by source.
// Caching is enabled by default. The process-wide cache holds failed
// compiles too and is emptied when it reaches 4096 entries.
func WithCache(enable bool) Option {
	return func(c *config) { c.noCache = !enable }
}

// WithLogger sets the logger used for trace records.
func WithLogger(logger log.Logger) Option {
	return func(c *config) { c.logger = logger }
}
