package lang

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Materializer turns generated source text into an evaluator. The source
// refers to the context and locals arguments by the given parameter names
// and calls the helper functions named by FuncOwns, FuncMember, FuncTruthy
// and FuncArray.
type Materializer interface {
	Materialize(source, contextParam, localsParam string) (Evaluator, error)
}

// MaterializerFunc adapts a function to the [Materializer] interface.
type MaterializerFunc func(source, contextParam, localsParam string) (Evaluator, error)

// Materialize calls f.
func (f MaterializerFunc) Materialize(
	source, contextParam, localsParam string,
) (Evaluator, error) {
	return f(source, contextParam, localsParam)
}

// ExprMaterializer compiles generated source with expr-lang. Programs run
// without a typed environment; the two parameters are bound per call.
type ExprMaterializer struct{}

// Materialize compiles source into an expr-lang program.
func (ExprMaterializer) Materialize(
	source, contextParam, localsParam string,
) (Evaluator, error) {
	program, err := expr.Compile(source, exprFunctions()...)
	if err != nil {
		return nil, ErrMaterialize.Wrap(err).
			With(slog.String("source", source))
	}

	return exprEvaluator(program, contextParam, localsParam), nil
}

func exprEvaluator(program *vm.Program, contextParam, localsParam string) Evaluator {
	return func(context, locals any) (any, error) {
		out, err := expr.Run(program, map[string]any{
			contextParam: context,
			localsParam:  locals,
		})
		if err != nil {
			return nil, ErrEvaluate.Wrap(err)
		}

		return out, nil
	}
}

var errArgs = errors.New("wrong argument count")

func exprFunctions() []expr.Option {
	return []expr.Option{
		expr.Function(FuncOwns, func(params ...any) (any, error) {
			obj, name, err := propertyArgs(FuncOwns, params)
			if err != nil {
				return nil, err
			}

			return Owns(obj, name), nil
		}),
		expr.Function(FuncMember, func(params ...any) (any, error) {
			obj, name, err := propertyArgs(FuncMember, params)
			if err != nil {
				return nil, err
			}

			return Member(obj, name), nil
		}),
		expr.Function(FuncTruthy, func(params ...any) (any, error) {
			if len(params) != 1 {
				return nil, ErrEvaluate.Wrap(errArgs).
					With(slog.String("func", FuncTruthy))
			}

			return Truthy(params[0]), nil
		}),
		expr.Function(FuncArray, func(params ...any) (any, error) {
			if len(params) != 0 {
				return nil, ErrEvaluate.Wrap(errArgs).
					With(slog.String("func", FuncArray))
			}

			return make([]any, 0, 1), nil
		}),
	}
}

func propertyArgs(fn string, params []any) (any, string, error) {
	if len(params) != 2 {
		return nil, "", ErrEvaluate.Wrap(errArgs).With(
			slog.String("func", fn),
			slog.String("args", strconv.Itoa(len(params))),
		)
	}

	name, ok := params[1].(string)
	if !ok {
		return nil, "", ErrEvaluate.Wrap(errors.New("property name is not a string")).
			With(slog.String("func", fn))
	}

	return params[0], name, nil
}
