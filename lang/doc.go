// Package lang compiles binding expressions: a restricted JavaScript-like
// syntax of literals, identifiers, dot member access, arrays and objects.
//
// # Grammar
//
//	program     := primary EOF
//	primary     := ( '[' arrayDecl | '{' objectDecl | constant
//	               | identifier | literal ) ( '.' identifier )*
//	arrayDecl   := ( primary ( ',' primary )* )? ']'
//	objectDecl  := ( key ':' primary ( ',' key ':' primary )* )? '}'
//	key         := identifier | literal
//	constant    := 'null' | 'true' | 'false' | 'this' | '$locals'
//
// Numbers are float64. Strings use single or double quotes with the escapes
// \n \f \r \t \v \' \" and \uXXXX.
//
// # Evaluation
//
// A compiled expression is an [Evaluator] taking two arguments, context and
// locals. An identifier reads the property of locals when locals owns it,
// even if the value is falsy, and otherwise the property of context. Member
// access on a falsy object yields nil instead of failing:
//
//	eval, _ := lang.Parse("user.address.city")
//	v, _ := eval(map[string]any{}, nil) // v == nil
//
// Properties are keys of maps with string keys and exported struct fields,
// matched by Go name or json tag.
//
// # Backends
//
// [BackendClosure] (default) composes one closure per node. [BackendSource]
// renders the tree as text with [Generate] and passes it to a
// [Materializer]; [ExprMaterializer] runs that text on expr-lang.
//
//	e, err := lang.Compile(ctx, `{name: first, tags: ["a", "b"]}`,
//		lang.WithBackend(lang.BackendSource))
//
// # Caching
//
// [Compile] caches results keyed by an xxh3 hash of the source and backend.
// [ClearCache] drops the cache.
//
// # Errors
//
// Lexer failures are [*LexError] and parser failures are [*ParseError];
// both match [ErrLex] or [ErrParse] with [errors.Is] and render the
// offending line with a caret.
package lang
