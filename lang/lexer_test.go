package lang

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestLex_Numbers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		text  string
	}{
		{name: "integer", input: "42", want: 42, text: "42"},
		{name: "decimal", input: "3.25", want: 3.25, text: "3.25"},
		{name: "leading dot", input: ".5", want: 0.5, text: ".5"},
		{name: "trailing dot", input: "5.", want: 5, text: "5."},
		{name: "exponent", input: "1e10", want: 1e10, text: "1e10"},
		{name: "signed exponent", input: "1e+10", want: 1e10, text: "1e+10"},
		{name: "negative exponent", input: "25E-1", want: 2.5, text: "25E-1"},
		{name: "fraction exponent", input: "1.5e3", want: 1500, text: "1.5e3"},
		{name: "overflow", input: "1e999", want: math.Inf(1), text: "1e999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Lex(tt.input)
			if err != nil {
				t.Fatalf("lex error: %v", err)
			}

			if len(tokens) != 1 {
				t.Fatalf("expected 1 token, got %d", len(tokens))
			}

			tok := tokens[0]
			if tok.Kind != TokenNumber {
				t.Errorf("expected number token, got %s", tok.Kind)
			}

			if tok.Text != tt.text {
				t.Errorf("expected text %q, got %q", tt.text, tok.Text)
			}

			if got, ok := tok.Value.(float64); !ok || got != tt.want {
				t.Errorf("expected value %v, got %v", tt.want, tok.Value)
			}
		})
	}
}

func TestLex_NumberStopsAtSecondDot(t *testing.T) {
	tokens, err := Lex("1.2.3")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	want := []string{"1.2", ".3"}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(tokens))
	}

	for i, w := range want {
		if tokens[i].Text != w {
			t.Errorf("token %d: expected %q, got %q", i, w, tokens[i].Text)
		}
	}
}

func TestLex_Strings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "double quoted", input: `"hello"`, want: "hello"},
		{name: "single quoted", input: `'hello'`, want: "hello"},
		{name: "empty", input: `""`, want: ""},
		{name: "newline escape", input: `"a\nb"`, want: "a\nb"},
		{name: "control escapes", input: `"\f\r\t\v"`, want: "\f\r\t\v"},
		{name: "quote escapes", input: `'\'\"'`, want: `'"`},
		{name: "other quote inside", input: `"it's"`, want: "it's"},
		{name: "unknown escape", input: `"\q\\"`, want: `q\`},
		{name: "unicode escape", input: `"\u0041\u00e9"`, want: "A\u00e9"},
		{name: "unicode upper hex", input: `"\u00E9"`, want: "\u00e9"},
		{name: "surrogate pair", input: `"\ud83d\ude00"`, want: "\U0001f600"},
		{name: "lone surrogate", input: `"\ud83dx"`, want: "\ufffdx"},
		{name: "raw unicode", input: `"h\u00e9llo"`, want: "h\u00e9llo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Lex(tt.input)
			if err != nil {
				t.Fatalf("lex error: %v", err)
			}

			if len(tokens) != 1 {
				t.Fatalf("expected 1 token, got %d", len(tokens))
			}

			if tokens[0].Kind != TokenString {
				t.Errorf("expected string token, got %s", tokens[0].Kind)
			}

			if tokens[0].Text != tt.input {
				t.Errorf("expected text %q, got %q", tt.input, tokens[0].Text)
			}

			if got := tokens[0].Value; got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestLex_Sequence(t *testing.T) {
	tokens, err := Lex("{a: [1, 'x'], $b_2: c.d} \v")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	want := []struct {
		text string
		kind TokenKind
	}{
		{"{", TokenPunct},
		{"a", TokenIdentifier},
		{":", TokenPunct},
		{"[", TokenPunct},
		{"1", TokenNumber},
		{",", TokenPunct},
		{"'x'", TokenString},
		{"]", TokenPunct},
		{",", TokenPunct},
		{"$b_2", TokenIdentifier},
		{":", TokenPunct},
		{"c", TokenIdentifier},
		{".", TokenPunct},
		{"d", TokenIdentifier},
		{"}", TokenPunct},
	}

	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(tokens))
	}

	for i, w := range want {
		if tokens[i].Text != w.text || tokens[i].Kind != w.kind {
			t.Errorf("token %d: expected %s %q, got %s %q",
				i, w.kind, w.text, tokens[i].Kind, tokens[i].Text)
		}
	}

	if !tokens[1].Identifier() || tokens[0].Identifier() {
		t.Error("Identifier() does not match token kind")
	}
}

func TestLex_Offsets(t *testing.T) {
	tokens, err := Lex("é . b")
	if err == nil {
		t.Fatalf("expected error for non-ASCII identifier, got %v", tokens)
	}

	tokens, err = Lex("'é' b")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	if tokens[1].Offset != 4 {
		t.Errorf("expected rune offset 4, got %d", tokens[1].Offset)
	}
}

func TestLex_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reason string
		offset int
	}{
		{name: "dangling exponent", input: "1e", reason: "Invalid exponent", offset: 1},
		{name: "exponent sign only", input: "1e+", reason: "Invalid exponent", offset: 1},
		{name: "exponent letter", input: "2ex", reason: "Invalid exponent", offset: 1},
		{name: "unmatched quote", input: `x "abc`, reason: "Unmatched quote", offset: 2},
		{name: "trailing backslash", input: `'abc\`, reason: "Unmatched quote", offset: 0},
		{name: "short unicode", input: `"\u12"`, reason: "Invalid unicode escape", offset: 1},
		{name: "bad unicode", input: `"\u12g4"`, reason: "Invalid unicode escape", offset: 1},
		{name: "unexpected character", input: "a + b", reason: "Unexpected next character: +", offset: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Lex(tt.input)
			if !errors.Is(err, ErrLex) {
				t.Fatalf("expected ErrLex, got %v", err)
			}

			var lexErr *LexError
			if !errors.As(err, &lexErr) {
				t.Fatalf("expected *LexError, got %T", err)
			}

			if lexErr.Reason != tt.reason {
				t.Errorf("expected reason %q, got %q", tt.reason, lexErr.Reason)
			}

			if lexErr.Offset != tt.offset {
				t.Errorf("expected offset %d, got %d", tt.offset, lexErr.Offset)
			}

			if !strings.Contains(err.Error(), tt.reason) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.reason)
			}
		})
	}
}

func BenchmarkLex(b *testing.B) {
	input := `{user: {name: "Ada", tags: ["a", 'b', "é"]}, n: 1.5e3, ok: $locals.flag}`

	b.ReportAllocs()

	for b.Loop() {
		if _, err := Lex(input); err != nil {
			b.Fatal(err)
		}
	}
}
