package lang

import (
	"context"
	"io"
	"log/slog"

	"github.com/klauspost/readahead"
)

// Evaluator evaluates a compiled expression. Identifiers resolve against
// locals first, when locals owns the name, and then against context.
// Either argument may be nil.
type Evaluator func(context, locals any) (any, error)

// Parse compiles text with the default options and returns its evaluator.
func Parse(text string) (Evaluator, error) {
	e, err := Compile(context.Background(), text)
	if err != nil {
		return nil, err
	}

	return e.eval, nil
}

// Expression is a compiled expression. It is immutable and safe for
// concurrent use.
type Expression struct {
	program   *Program
	eval      Evaluator
	source    string
	generated string
	backend   Backend
}

// Eval evaluates the expression.
func (e *Expression) Eval(context, locals any) (any, error) {
	return e.eval(context, locals)
}

// Evaluator returns the evaluator of the expression.
func (e *Expression) Evaluator() Evaluator { return e.eval }

// Source returns the text the expression was compiled from.
func (e *Expression) Source() string { return e.source }

// Generated returns the source text produced for the materializer, or the
// empty string for the closure backend.
func (e *Expression) Generated() string { return e.generated }

// Program returns the syntax tree of the expression.
func (e *Expression) Program() *Program { return e.program }

// Backend returns the backend that compiled the expression.
func (e *Expression) Backend() Backend { return e.backend }

// Constant reports whether the expression never reads its context or
// locals.
func (e *Expression) Constant() bool { return Constant(e.program) }

// Compile lexes, parses and compiles text. Lexer and parser errors are
// returned unchanged, and no expression is returned on failure. Results are
// cached by source and backend unless [WithCache] disables it; see
// [ClearCache].
func Compile(ctx context.Context, text string, opts ...Option) (*Expression, error) {
	cfg := makeConfig(opts...)

	if cfg.cacheable() {
		return compileCached(ctx, text, cfg)
	}

	return compile(ctx, text, cfg)
}

// CompileReader compiles the expression read from r.
func CompileReader(ctx context.Context, r io.Reader, opts ...Option) (*Expression, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	return Compile(ctx, string(data), opts...)
}

func compile(ctx context.Context, text string, cfg config) (*Expression, error) {
	prog, err := BuildAST(text)
	if err != nil {
		cfg.logger.TraceContext(ctx, "parse failed",
			slog.String("source", text),
			slog.Any("error", err),
		)

		return nil, err
	}

	e := &Expression{
		program: prog,
		source:  text,
		backend: cfg.backend,
	}

	switch cfg.backend {
	case BackendSource:
		e.generated, err = Generate(prog)
		if err != nil {
			return nil, err
		}

		e.eval, err = cfg.materializer.Materialize(e.generated, ContextParam, LocalsParam)
		if err != nil {
			return nil, err
		}

	default:
		e.eval, err = Closure(prog)
		if err != nil {
			return nil, err
		}
	}

	cfg.logger.TraceContext(ctx, "compiled",
		slog.String("source", text),
		slog.String("backend", cfg.backend.String()),
		slog.Bool("constant", e.Constant()),
	)

	return e, nil
}

// thunk is the internal form of a compiled node.
type thunk func(context, locals any) any

// Closure compiles prog to a tree of closures. The result never fails at
// evaluation time.
func Closure(prog *Program) (Evaluator, error) {
	if prog == nil {
		return nil, ErrCompile.Wrap(errNilNode)
	}

	fn, err := closure(prog)
	if err != nil {
		return nil, err
	}

	return func(context, locals any) (any, error) {
		return fn(context, locals), nil
	}, nil
}

func closure(n Node) (thunk, error) {
	switch n := n.(type) {
	case *Program:
		return closure(n.Body)

	case *Literal:
		v := n.Value

		return func(any, any) any { return v }, nil

	case *ArrayExpression:
		elems, err := closures(n.Elements)
		if err != nil {
			return nil, err
		}

		// A nonzero capacity gives every result its own backing array, so
		// even [] evaluates to a distinct slice each call.
		return func(c, l any) any {
			out := make([]any, len(elems), max(len(elems), 1))
			for i, e := range elems {
				out[i] = e(c, l)
			}

			return out
		}, nil

	case *ObjectExpression:
		keys := make([]string, len(n.Properties))
		values := make([]Node, len(n.Properties))

		for i, p := range n.Properties {
			keys[i], values[i] = p.KeyName(), p.Value
		}

		vals, err := closures(values)
		if err != nil {
			return nil, err
		}

		return func(c, l any) any {
			out := make(map[string]any, len(keys))
			for i, k := range keys {
				out[k] = vals[i](c, l)
			}

			return out
		}, nil

	case *Identifier:
		name := n.Name

		return func(c, l any) any {
			if v, ok := lookup(l, name); ok {
				return v
			}

			return Member(c, name)
		}, nil

	case *ThisExpression:
		return func(c, _ any) any { return c }, nil

	case *LocalsExpression:
		return func(_, l any) any { return l }, nil

	case *MemberExpression:
		if n.Property == nil {
			return nil, ErrCompile.Wrap(errNilNode)
		}

		obj, err := closure(n.Object)
		if err != nil {
			return nil, err
		}

		name := n.Property.Name

		return func(c, l any) any {
			if o := obj(c, l); Truthy(o) {
				return Member(o, name)
			}

			return nil
		}, nil

	default:
		return nil, ErrCompile.Wrap(errUnexpectedNode(n))
	}
}

func closures(nodes []Node) ([]thunk, error) {
	out := make([]thunk, len(nodes))

	for i, n := range nodes {
		fn, err := closure(n)
		if err != nil {
			return nil, err
		}

		out[i] = fn
	}

	return out, nil
}
