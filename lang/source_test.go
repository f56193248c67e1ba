package lang

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "literal",
			input: "1",
			want:  []string{"1.0"},
		},
		{
			name:  "string escapes",
			input: `"a b"`,
			want:  []string{`"a\u0020b"`},
		},
		{
			name:  "null",
			input: "null",
			want:  []string{"nil"},
		},
		{
			name:  "this and locals",
			input: "[this, $locals, true]",
			want:  []string{"[s, l, true]"},
		},
		{
			name:  "empty array",
			input: "[[], 1]",
			want:  []string{"[array(), 1.0]"},
		},
		{
			name:  "identifier",
			input: "x",
			want: []string{
				`let v0 = owns(l, "x") ? member(l, "x") : member(s, "x");`,
				"v0",
			},
		},
		{
			name:  "member chain",
			input: "a.b",
			want: []string{
				`let v0 = owns(l, "a") ? member(l, "a") : member(s, "a");`,
				`let v1 = truthy(v0) ? member(v0, "b") : nil;`,
				"v1",
			},
		},
		{
			name:  "object",
			input: `{a: 1, "k-2": x}`,
			want: []string{
				`let v0 = owns(l, "x") ? member(l, "x") : member(s, "x");`,
				`{"a": 1.0, "k\u002d2": v0}`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := BuildAST(tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			got, err := Generate(prog)
			if err != nil {
				t.Fatalf("generate error: %v", err)
			}

			if want := strings.Join(tt.want, "\n"); got != want {
				t.Errorf("unexpected source\n got: %s\nwant: %s", got, want)
			}
		})
	}
}

func TestGenerate_NumberingResetsPerCall(t *testing.T) {
	prog, err := BuildAST("a.b.c")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	first, _ := Generate(prog)
	second, _ := Generate(prog)

	if first != second {
		t.Errorf("generation is not repeatable\n%s\n---\n%s", first, second)
	}

	if !strings.HasPrefix(second, "let v0 ") {
		t.Errorf("expected numbering to restart, got %q", second)
	}
}

func TestGenerate_Errors(t *testing.T) {
	if _, err := Generate(nil); !errors.Is(err, ErrCompile) {
		t.Errorf("expected ErrCompile, got %v", err)
	}

	bad := &Program{Body: &MemberExpression{Object: &ThisExpression{}}}
	if _, err := Generate(bad); !errors.Is(err, ErrCompile) {
		t.Errorf("expected ErrCompile, got %v", err)
	}
}

func TestEscape(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{value: nil, want: "nil"},
		{value: true, want: "true"},
		{value: 2.0, want: "2.0"},
		{value: 0.25, want: "0.25"},
		{value: 1e21, want: "1e+21"},
		{value: math.Inf(1), want: `float("+Inf")`},
		{value: math.Inf(-1), want: `float("-Inf")`},
		{value: "ab9", want: `"ab9"`},
		{value: `"`, want: `"\u0022"`},
		{value: "\U0001F600", want: `"\U0001f600"`},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := escape(tt.value); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

// recordingMaterializer captures the generated source. Its evaluators
// return that source.
type recordingMaterializer struct {
	source []string
}

func (m *recordingMaterializer) Materialize(
	source, contextParam, localsParam string,
) (Evaluator, error) {
	if contextParam != ContextParam || localsParam != LocalsParam {
		return nil, errors.New("unexpected parameter names")
	}

	m.source = append(m.source, source)

	return func(any, any) (any, error) { return source, nil }, nil
}

func TestWithMaterializer(t *testing.T) {
	rec := &recordingMaterializer{}

	e, err := Compile(context.Background(), "a", WithMaterializer(rec))
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	if e.Backend() != BackendSource {
		t.Errorf("expected source backend, got %s", e.Backend())
	}

	got, _ := e.Eval(nil, nil)
	if got != e.Generated() || len(rec.source) != 1 {
		t.Errorf("materializer not used: %v %v", got, rec.source)
	}

	// custom materializers are never cached
	if _, err := Compile(context.Background(), "a", WithMaterializer(rec)); err != nil {
		t.Fatalf("compile error: %v", err)
	}

	if len(rec.source) != 2 {
		t.Errorf("expected 2 materializations, got %d", len(rec.source))
	}
}

func TestWithMaterializer_Error(t *testing.T) {
	failing := MaterializerFunc(func(string, string, string) (Evaluator, error) {
		return nil, ErrMaterialize.Wrap(errors.New("unsupported"))
	})

	e, err := Compile(context.Background(), "a", WithMaterializer(failing))
	if !errors.Is(err, ErrMaterialize) {
		t.Fatalf("expected ErrMaterialize, got %v", err)
	}

	if e != nil {
		t.Error("expected no expression on failure")
	}
}

func TestExprMaterializer(t *testing.T) {
	m := ExprMaterializer{}

	if _, err := m.Materialize("let v0 = ;", ContextParam, LocalsParam); !errors.Is(err, ErrMaterialize) {
		t.Errorf("expected ErrMaterialize, got %v", err)
	}

	eval, err := m.Materialize(`member(s, "k")`, ContextParam, LocalsParam)
	if err != nil {
		t.Fatalf("materialize error: %v", err)
	}

	got, err := eval(map[string]any{"k": "v"}, nil)
	if err != nil || got != "v" {
		t.Errorf("expected v, got %v (%v)", got, err)
	}

	eval, err = m.Materialize(`member(s)`, ContextParam, LocalsParam)
	if err != nil {
		t.Fatalf("materialize error: %v", err)
	}

	if _, err := eval(nil, nil); !errors.Is(err, ErrEvaluate) {
		t.Errorf("expected ErrEvaluate, got %v", err)
	}
}

func TestExprMaterializer_Infinity(t *testing.T) {
	e, err := Compile(context.Background(), "[1e999]",
		WithBackend(BackendSource), WithCache(false))
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	got, err := e.Eval(nil, nil)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}

	list, ok := got.([]any)
	if !ok || len(list) != 1 {
		t.Fatalf("unexpected result %#v", got)
	}

	if f, ok := list[0].(float64); !ok || !math.IsInf(f, 1) {
		t.Errorf("expected +Inf, got %#v", list[0])
	}
}
