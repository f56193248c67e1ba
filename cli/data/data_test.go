package data

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ardnew/bindexpr/pkg"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]any
	}{
		{"empty", "", map[string]any{}},
		{"null", "~\n", map[string]any{}},
		{
			name:  "scalars",
			input: "n: 3\nf: 1.5\nneg: -2\ns: text\nb: true\nz: null\n",
			want: map[string]any{
				"n": 3.0, "f": 1.5, "neg": -2.0, "s": "text", "b": true, "z": nil,
			},
		},
		{
			name:  "nested",
			input: "user:\n  first: Ada\n  tags: [1, two]\n",
			want: map[string]any{
				"user": map[string]any{
					"first": "Ada",
					"tags":  []any{1.0, "two"},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Decode() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	for _, input := range []string{
		"- 1\n- 2\n",
		"just a string\n",
		"a: [1, 2\n",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := Decode(strings.NewReader(input))
			if !errors.Is(err, pkg.ErrDecodeData) {
				t.Errorf("Decode(%q) error = %v, want ErrDecodeData", input, err)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	in := map[any]any{
		1:     uint64(2),
		"arr": []any{int64(-1), float32(0.5), map[string]any{"k": 7}},
	}

	want := map[string]any{
		"1":   2.0,
		"arr": []any{-1.0, 0.5, map[string]any{"k": 7.0}},
	}

	if got := Normalize(in); !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize() = %#v, want %#v", got, want)
	}
}

func TestParseAssignment(t *testing.T) {
	tests := []struct {
		input   string
		key     string
		value   any
		wantErr bool
	}{
		{input: "a=1", key: "a", value: 1.0},
		{input: "a.b=text", key: "a.b", value: "text"},
		{input: " a = true", key: "a", value: true},
		{input: "a=", key: "a", value: ""},
		{input: "a=null", key: "a", value: nil},
		{input: "a=x=y", key: "a", value: "x=y"},
		{input: "a=[1, 2]", key: "a", value: []any{1.0, 2.0}},
		{input: "a={b: 1}", key: "a", value: map[string]any{"b": 1.0}},
		{input: "a", wantErr: true},
		{input: "=1", wantErr: true},
		{input: ".a=1", wantErr: true},
		{input: "a.=1", wantErr: true},
		{input: "a..b=1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			key, value, err := ParseAssignment(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrAssignment) {
					t.Fatalf("ParseAssignment(%q) error = %v, want ErrAssignment", tt.input, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("ParseAssignment(%q) error = %v", tt.input, err)
			}

			if key != tt.key || !reflect.DeepEqual(value, tt.value) {
				t.Errorf("ParseAssignment(%q) = (%q, %#v), want (%q, %#v)",
					tt.input, key, value, tt.key, tt.value)
			}
		})
	}
}

func TestSet(t *testing.T) {
	m := map[string]any{"a": 1.0, "user": map[string]any{"first": "Ada"}}

	Set(m, "b", 2.0)
	Set(m, "user.last", "Lovelace")
	Set(m, "a.x.y", true)

	want := map[string]any{
		"a":    map[string]any{"x": map[string]any{"y": true}},
		"b":    2.0,
		"user": map[string]any{"first": "Ada", "last": "Lovelace"},
	}

	if !reflect.DeepEqual(m, want) {
		t.Errorf("Set() = %#v, want %#v", m, want)
	}
}
