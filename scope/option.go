package scope

import (
	"maps"

	"github.com/ardnew/bindexpr/lang"
	"github.com/ardnew/bindexpr/log"
)

// DefaultTTL is the default maximum number of digest passes.
const DefaultTTL = 10

// Option configures a [Scope].
type Option func(*Scope)

// WithTTL sets the maximum number of passes [Scope.Digest] runs before it
// gives up. Values below 1 select [DefaultTTL].
func WithTTL(ttl int) Option {
	return func(s *Scope) {
		if ttl < 1 {
			ttl = DefaultTTL
		}

		s.ttl = ttl
	}
}

// WithLogger sets the logger used for digest trace records. Expressions
// compiled by the scope log through it as well.
func WithLogger(logger log.Logger) Option {
	return func(s *Scope) { s.logger = logger }
}

// WithData copies data into the scope properties.
func WithData(data map[string]any) Option {
	return func(s *Scope) { maps.Copy(s.data, data) }
}

// WithCompileOptions sets options passed to [lang.Compile] by
// [Scope.WatchExpr] and [Scope.Eval].
func WithCompileOptions(opts ...lang.Option) Option {
	return func(s *Scope) { s.compile = append(s.compile, opts...) }
}
