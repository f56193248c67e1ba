package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/bindexpr/cli/data"
	"github.com/ardnew/bindexpr/lang"
	"github.com/ardnew/bindexpr/log"
	"github.com/ardnew/bindexpr/pkg"
	"github.com/ardnew/bindexpr/scope"
)

// Digest loads a manifest of scope properties and watch expressions and
// runs a digest over them.
//
// A manifest is a YAML document:
//
//	data:
//	  user: {first: Ada}
//	watch:
//	  - expr: user.first
//	    assign: greeting.name
//	  - expr: greeting
//
// Each listener firing is printed. A watch with assign copies its new value
// into the scope property at that dotted path.
type Digest struct {
	TTL    int      `default:"${digestTTL}" help:"Maximum number of digest passes"               short:"t"`
	Set    []string `                       help:"Assign a scope property before the digest"     placeholder:"KEY=VALUE" short:"s"`
	Output string   `default:"native"       help:"Output format of the final scope properties"   short:"o" enum:"native,json,yaml"`
	Indent int      `default:"2"            help:"Indent width for json and yaml output"          short:"i"`
	Quiet  bool     `                       help:"Print only the final scope properties"          short:"q"`

	Manifest string `arg:"" help:"Manifest file, searched in the --path directories, or '-' for stdin" name:"manifest"`
}

// manifest is the decoded form of a digest manifest.
type manifest struct {
	Data  map[string]any `yaml:"data"`
	Watch []watchSpec    `yaml:"watch"`
}

type watchSpec struct {
	Expr   string `yaml:"expr"`
	Assign string `yaml:"assign"`
}

// Run executes the digest command.
func (d *Digest) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	return d.run(ctx, stdout(ctx))
}

func (d *Digest) run(ctx context.Context, w io.Writer) error {
	m, err := readManifest(ctx, d.Manifest)
	if err != nil {
		return err
	}

	s := scope.New(
		scope.WithTTL(d.TTL),
		scope.WithLogger(log.Default()),
		scope.WithData(m.Data),
		scope.WithCompileOptions(compileOptions(ctx)...),
	)

	if err := assign(s.Data(), d.Set); err != nil {
		return err
	}

	for _, entry := range m.Watch {
		if err := s.WatchExpr(entry.Expr, d.listener(w, entry)); err != nil {
			return err
		}
	}

	log.DebugContext(ctx, "digest start",
		slog.String("manifest", d.Manifest),
		slog.Int("watchers", s.Len()),
		slog.Int("ttl", s.TTL()),
	)

	if err := s.Digest(ctx); err != nil {
		return err
	}

	return render(ctx, w, s.Data(), d.Output, d.Indent)
}

func (d *Digest) listener(w io.Writer, entry watchSpec) scope.ListenerFunc {
	return func(value, old any, s *scope.Scope) error {
		if entry.Assign != "" {
			data.Set(s.Data(), entry.Assign, value)
		}

		if d.Quiet {
			return nil
		}

		_, err := fmt.Fprintf(w, "%s: %s -> %s\n",
			entry.Expr, lang.FormatValue(old), lang.FormatValue(value))

		return err
	}
}

// readManifest decodes and validates the named manifest.
func readManifest(ctx context.Context, name string) (*manifest, error) {
	srcs, err := openSources(ctx, []string{name})
	if err != nil {
		return nil, pkg.ErrManifest.Wrap(err)
	}

	defer closeSources(srcs)

	var m manifest

	if err := yaml.NewDecoder(srcs[0]).DecodeContext(ctx, &m); err != nil {
		return nil, pkg.ErrManifest.Wrapf("%s: %w", srcs[0].name, err)
	}

	for i, entry := range m.Watch {
		if entry.Expr == "" {
			return nil, pkg.ErrManifest.Wrapf("%s: watch[%d]: missing expr", srcs[0].name, i)
		}
	}

	if m.Data == nil {
		m.Data = make(map[string]any)
	}

	for k, v := range m.Data {
		m.Data[k] = data.Normalize(v)
	}

	return &m, nil
}
