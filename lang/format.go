package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format returns canonical source for n. Parsing the result yields a tree
// equal to n.
func Format(n Node) string {
	var sb strings.Builder

	format(&sb, n)

	return sb.String()
}

func format(sb *strings.Builder, n Node) {
	switch n := n.(type) {
	case *Program:
		format(sb, n.Body)

	case *Literal:
		sb.WriteString(formatLiteral(n.Value))

	case *ArrayExpression:
		sb.WriteByte('[')

		for i, e := range n.Elements {
			if i > 0 {
				sb.WriteString(", ")
			}

			format(sb, e)
		}

		sb.WriteByte(']')

	case *ObjectExpression:
		sb.WriteByte('{')

		for i, p := range n.Properties {
			if i > 0 {
				sb.WriteString(", ")
			}

			format(sb, p)
		}

		sb.WriteByte('}')

	case *Property:
		format(sb, n.Key)
		sb.WriteString(": ")
		format(sb, n.Value)

	case *Identifier:
		sb.WriteString(n.Name)

	case *ThisExpression:
		sb.WriteString("this")

	case *LocalsExpression:
		sb.WriteString("$locals")

	case *MemberExpression:
		format(sb, n.Object)
		sb.WriteByte('.')
		format(sb, n.Property)
	}
}

func formatLiteral(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"

	case bool:
		return strconv.FormatBool(v)

	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			// overflows back to +Inf; NaN is not expressible
			return "1e999"
		}

		return NumberString(v)

	case string:
		return quoteSource(v)

	default:
		return "null"
	}
}

// FormatValue returns source-like text for a value produced by evaluation.
// Arrays and objects are written as literals with object keys sorted.
// Numbers use [NumberString], so NaN and the infinities appear by name.
// Values with no literal form are written as quoted strings.
func FormatValue(v any) string {
	var sb strings.Builder

	formatValue(&sb, v)

	return sb.String()
}

func formatValue(sb *strings.Builder, v any) {
	switch v := v.(type) {
	case nil:
		sb.WriteString("null")

		return

	case bool:
		sb.WriteString(strconv.FormatBool(v))

		return

	case float64:
		sb.WriteString(NumberString(v))

		return

	case string:
		sb.WriteString(quoteSource(v))

		return
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		sb.WriteString(NumberString(float64(rv.Int())))

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		sb.WriteString(NumberString(float64(rv.Uint())))

	case reflect.Float32, reflect.Float64:
		sb.WriteString(NumberString(rv.Float()))

	case reflect.Bool:
		sb.WriteString(strconv.FormatBool(rv.Bool()))

	case reflect.String:
		sb.WriteString(quoteSource(rv.String()))

	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			sb.WriteString("null")

			return
		}

		formatValue(sb, rv.Elem().Interface())

	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			sb.WriteString("null")

			return
		}

		sb.WriteByte('[')

		for i := range rv.Len() {
			if i > 0 {
				sb.WriteString(", ")
			}

			formatValue(sb, rv.Index(i).Interface())
		}

		sb.WriteByte(']')

	case reflect.Map:
		if rv.IsNil() {
			sb.WriteString("null")

			return
		}

		type entry struct {
			key   string
			value any
		}

		entries := make([]entry, 0, rv.Len())
		for iter := rv.MapRange(); iter.Next(); {
			entries = append(entries, entry{
				key:   fmt.Sprint(iter.Key().Interface()),
				value: iter.Value().Interface(),
			})
		}

		slices.SortFunc(entries, func(a, b entry) int {
			return strings.Compare(a.key, b.key)
		})

		sb.WriteByte('{')

		for i, e := range entries {
			if i > 0 {
				sb.WriteString(", ")
			}

			sb.WriteString(quoteSource(e.key))
			sb.WriteString(": ")
			formatValue(sb, e.value)
		}

		sb.WriteByte('}')

	default:
		sb.WriteString(quoteSource(fmt.Sprint(v)))
	}
}

// quoteSource quotes s using only escapes the lexer understands.
func quoteSource(s string) string {
	var sb strings.Builder

	sb.WriteByte('"')

	for _, r := range s {
		switch r {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case '\n':
			sb.WriteString(`\n`)
		case '\f':
			sb.WriteString(`\f`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\v':
			sb.WriteString(`\v`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&sb, `\u%04x`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}

	sb.WriteByte('"')

	return sb.String()
}

// Print writes an indented outline of the tree rooted at n.
func Print(w io.Writer, n Node) error {
	return printIndent(writer(w), n, 0)
}

func writer(w io.Writer) func(indent int, item ...string) error {
	return func(indent int, item ...string) error {
		_, err := io.WriteString(w,
			strings.Repeat("  ", indent)+strings.Join(item, ": ")+"\n")

		return err
	}
}

func printIndent(put func(int, ...string) error, n Node, indent int) error {
	if n == nil {
		return put(indent, "(nil)")
	}

	switch n := n.(type) {
	case *Literal:
		return put(indent, n.Kind().String(), formatLiteral(n.Value))

	case *Identifier:
		return put(indent, n.Kind().String(), n.Name)

	case *MemberExpression:
		if err := put(indent, n.Kind().String(), n.Property.Name); err != nil {
			return err
		}

		return printIndent(put, n.Object, indent+1)
	}

	if err := put(indent, n.Kind().String()); err != nil {
		return err
	}

	var children []Node

	switch n := n.(type) {
	case *Program:
		children = []Node{n.Body}

	case *ArrayExpression:
		children = n.Elements

	case *ObjectExpression:
		children = make([]Node, len(n.Properties))
		for i, p := range n.Properties {
			children[i] = p
		}

	case *Property:
		children = []Node{n.Key, n.Value}
	}

	for _, c := range children {
		if err := printIndent(put, c, indent+1); err != nil {
			return err
		}
	}

	return nil
}

// Tree converts n to nested maps and slices keyed the way ESTree nodes are,
// suitable for JSON or YAML encoding.
func Tree(n Node) any {
	switch n := n.(type) {
	case *Program:
		return map[string]any{"type": n.Kind().String(), "body": Tree(n.Body)}

	case *Literal:
		return map[string]any{"type": n.Kind().String(), "value": n.Value}

	case *ArrayExpression:
		elems := make([]any, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = Tree(e)
		}

		return map[string]any{"type": n.Kind().String(), "elements": elems}

	case *ObjectExpression:
		props := make([]any, len(n.Properties))
		for i, p := range n.Properties {
			props[i] = Tree(p)
		}

		return map[string]any{"type": n.Kind().String(), "properties": props}

	case *Property:
		return map[string]any{
			"type":  n.Kind().String(),
			"key":   Tree(n.Key),
			"value": Tree(n.Value),
		}

	case *Identifier:
		return map[string]any{"type": n.Kind().String(), "name": n.Name}

	case *ThisExpression, *LocalsExpression:
		return map[string]any{"type": n.Kind().String()}

	case *MemberExpression:
		return map[string]any{
			"type":     n.Kind().String(),
			"object":   Tree(n.Object),
			"property": Tree(n.Property),
		}

	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler.
func (p *Program) MarshalJSON() ([]byte, error) {
	return json.Marshal(Tree(p))
}

// MarshalYAML implements yaml.InterfaceMarshaler.
func (p *Program) MarshalYAML() (any, error) {
	return Tree(p), nil
}

// String returns the canonical source of the program.
func (p *Program) String() string { return Format(p) }

// FormatJSON writes the tree of p as JSON. A positive indent pretty-prints.
func FormatJSON(_ context.Context, w io.Writer, p *Program, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(p, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(p)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// FormatYAML writes the tree of p as YAML. A non-positive indent selects
// flow style.
func FormatYAML(ctx context.Context, w io.Writer, p *Program, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, p, opts...)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}
