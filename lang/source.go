package lang

import (
	"math"
	"strconv"
	"strings"
)

// Parameter names of generated source.
const (
	ContextParam = "s"
	LocalsParam  = "l"
)

// Helper functions referenced by generated source. A [Materializer] must
// provide them with the semantics of [Owns], [Member] and [Truthy]. FuncArray
// takes no arguments and returns a new empty []any with nonzero capacity.
const (
	FuncOwns   = "owns"
	FuncMember = "member"
	FuncTruthy = "truthy"
	FuncArray  = "array"
)

// Generate renders prog as source text for a [Materializer].
//
// Every identifier and member access is bound to a fresh temporary vN by a
// let statement ahead of the final expression, so each lookup is evaluated
// exactly once:
//
//	let v0 = owns(l, "a") ? member(l, "a") : member(s, "a");
//	let v1 = truthy(v0) ? member(v0, "b") : nil;
//	v1
//
// String literals escape every rune outside [A-Za-z0-9].
func Generate(prog *Program) (string, error) {
	if prog == nil {
		return "", ErrCompile.Wrap(errNilNode)
	}

	var g generator

	if err := g.recurse(prog); err != nil {
		return "", err
	}

	return strings.Join(g.code, "\n"), nil
}

// generator holds the state of one Generate call.
type generator struct {
	code     []string
	declared []string
	nextID   int
}

// temp allocates the next temporary name.
func (g *generator) temp() string {
	name := "v" + strconv.Itoa(g.nextID)
	g.nextID++
	g.declared = append(g.declared, name)

	return name
}

// assign emits the statement binding a new temporary to expr.
func (g *generator) assign(expr string) string {
	v := g.temp()
	g.code = append(g.code, "let "+v+" = "+expr+";")

	return v
}

func (g *generator) recurse(n Node) error {
	prog, ok := n.(*Program)
	if !ok {
		return ErrCompile.Wrap(errUnexpectedNode(n))
	}

	body, err := g.expr(prog.Body)
	if err != nil {
		return err
	}

	g.code = append(g.code, body)

	return nil
}

// expr returns the fragment for n, emitting statements for any temporaries
// it needs.
func (g *generator) expr(n Node) (string, error) {
	switch n := n.(type) {
	case *Literal:
		return escape(n.Value), nil

	case *ArrayExpression:
		if len(n.Elements) == 0 {
			return FuncArray + "()", nil
		}

		parts := make([]string, len(n.Elements))

		for i, e := range n.Elements {
			s, err := g.expr(e)
			if err != nil {
				return "", err
			}

			parts[i] = s
		}

		return "[" + strings.Join(parts, ", ") + "]", nil

	case *ObjectExpression:
		parts := make([]string, len(n.Properties))

		for i, p := range n.Properties {
			s, err := g.expr(p.Value)
			if err != nil {
				return "", err
			}

			parts[i] = quote(p.KeyName()) + ": " + s
		}

		return "{" + strings.Join(parts, ", ") + "}", nil

	case *Identifier:
		name := quote(n.Name)

		return g.assign(
			FuncOwns + "(" + LocalsParam + ", " + name + ") ? " +
				FuncMember + "(" + LocalsParam + ", " + name + ") : " +
				FuncMember + "(" + ContextParam + ", " + name + ")",
		), nil

	case *ThisExpression:
		return ContextParam, nil

	case *LocalsExpression:
		return LocalsParam, nil

	case *MemberExpression:
		if n.Property == nil {
			return "", ErrCompile.Wrap(errNilNode)
		}

		left, err := g.expr(n.Object)
		if err != nil {
			return "", err
		}

		return g.assign(
			FuncTruthy + "(" + left + ") ? " +
				FuncMember + "(" + left + ", " + quote(n.Property.Name) + ") : nil",
		), nil

	default:
		return "", ErrCompile.Wrap(errUnexpectedNode(n))
	}
}

// escape renders a literal value as source.
func escape(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"

	case bool:
		return strconv.FormatBool(v)

	case float64:
		switch {
		case math.IsInf(v, 1):
			return `float("+Inf")`
		case math.IsInf(v, -1):
			return `float("-Inf")`
		case math.IsNaN(v):
			return `float("NaN")`
		}

		s := strconv.FormatFloat(v, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}

		return s

	case string:
		return quote(v)

	default:
		return "nil"
	}
}

// quote returns s as a double-quoted string literal with every rune other
// than ASCII letters and digits replaced by a \u or \U escape.
func quote(s string) string {
	var buf strings.Builder

	buf.Grow(len(s) + 2)
	buf.WriteByte('"')

	for _, r := range s {
		switch {
		case ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') ||
			('0' <= r && r <= '9'):
			buf.WriteRune(r)

		case r > 0xFFFF:
			buf.WriteString(`\U`)
			writeHex(&buf, uint32(r), 8)

		default:
			buf.WriteString(`\u`)
			writeHex(&buf, uint32(r), 4)
		}
	}

	buf.WriteByte('"')

	return buf.String()
}

func writeHex(buf *strings.Builder, n uint32, width int) {
	s := strconv.FormatUint(uint64(n), 16)
	buf.WriteString(strings.Repeat("0", width-len(s)))
	buf.WriteString(s)
}
