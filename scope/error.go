package scope

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/bindexpr/lang"
)

// Predefined errors (sentinel values).
var (
	ErrWatch          = lang.NewError("watch failed")
	ErrListener       = lang.NewError("listener failed")
	ErrNonConvergence = lang.NewError("digest did not converge")
)

// wrap annotates err with the name of the watcher it came from.
func wrap(sentinel *lang.Error, name string, err error) error {
	return sentinel.Wrap(fmt.Errorf("%s: %w", name, err)).
		With(slog.String("watcher", name))
}

// NonConvergenceError is returned by [Scope.Digest] when watchers are still
// changing after TTL passes.
type NonConvergenceError struct {
	// Watchers names the watchers that changed during the last pass.
	Watchers []string
	TTL      int
}

// Error implements the error interface.
func (e *NonConvergenceError) Error() string {
	return ErrNonConvergence.Error() + " after " + strconv.Itoa(e.TTL) +
		" passes: " + strings.Join(e.Watchers, ", ")
}

// Unwrap returns [ErrNonConvergence].
func (e *NonConvergenceError) Unwrap() error { return ErrNonConvergence }

// LogValue implements slog.LogValuer.
func (e *NonConvergenceError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrNonConvergence.Error()),
		slog.Int("ttl", e.TTL),
		slog.Any("watchers", e.Watchers),
	)
}
