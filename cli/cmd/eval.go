package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/bindexpr/log"
)

// Eval compiles an expression and evaluates it against YAML data.
type Eval struct {
	Context []string `help:"YAML file providing the context object, or '-' for stdin" placeholder:"FILE"      short:"c"`
	Locals  []string `help:"YAML file providing the locals object"                    placeholder:"FILE"      short:"l"`
	Set     []string `help:"Assign a context property; KEY may be a dotted path"      placeholder:"KEY=VALUE" short:"s"`
	Output  string   `help:"Output format"                                            default:"native"        short:"o" enum:"native,json,yaml"`
	Indent  int      `help:"Indent width for json and yaml output"                    default:"2"             short:"i"`

	Expr string `arg:"" help:"Expression to evaluate, or '-' to read it from stdin" name:"expr"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	return e.run(ctx, stdout(ctx))
}

func (e *Eval) run(ctx context.Context, w io.Writer) error {
	expr, err := compileArg(ctx, e.Expr)
	if err != nil {
		return err
	}

	this, err := loadData(ctx, e.Context)
	if err != nil {
		return err
	}

	if err := assign(this, e.Set); err != nil {
		return err
	}

	var locals any

	if len(e.Locals) > 0 {
		if locals, err = loadData(ctx, e.Locals); err != nil {
			return err
		}
	}

	value, err := expr.Eval(this, locals)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "evaluated",
		slog.String("expr", expr.Source()),
		slog.String("backend", expr.Backend().String()),
		slog.Bool("constant", expr.Constant()),
	)

	return render(ctx, w, value, e.Output, e.Indent)
}
