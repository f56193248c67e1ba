package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/bindexpr/cli/cmd/repl"
	"github.com/ardnew/bindexpr/log"
	"github.com/ardnew/bindexpr/pkg"
	"github.com/ardnew/bindexpr/scope"
)

// Repl starts an interactive session that evaluates expressions against
// scope properties loaded from data files.
type Repl struct {
	Context []string `help:"Data file providing scope properties (repeatable, '-' for stdin)" placeholder:"FILE"      short:"c"`
	Set     []string `help:"Assign a scope property"                                          placeholder:"KEY=VALUE" short:"s"`
	TTL     int      `help:"Maximum number of digest passes"                                  default:"${digestTTL}"  short:"t"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	props, err := loadData(ctx, r.Context)
	if err != nil {
		return err
	}

	if err := assign(props, r.Set); err != nil {
		return err
	}

	s := scope.New(
		scope.WithTTL(r.TTL),
		scope.WithLogger(log.Default()),
		scope.WithData(props),
		scope.WithCompileOptions(compileOptions(ctx)...),
	)

	dir := cacheDir(ctx)

	log.DebugContext(ctx, "repl session",
		slog.Int("properties", len(props)),
		slog.String("cache", dir),
	)

	return repl.Run(ctx, s, dir, log.Default())
}

// cacheDir returns the cache directory configured on the command line.
func cacheDir(ctx context.Context) string {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Model != nil {
		if dir, ok := ktx.Model.Vars()[CacheIdentifier]; ok && dir != "" {
			return dir
		}
	}

	return pkg.CacheDir()
}
