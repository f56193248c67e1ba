package lang

// NodeKind identifies the variant of a [Node].
type NodeKind int

const (
	KindProgram    NodeKind = iota // Program
	KindLiteral                    // Literal
	KindArray                      // ArrayExpression
	KindObject                     // ObjectExpression
	KindProperty                   // Property
	KindIdentifier                 // Identifier
	KindThis                       // ThisExpression
	KindLocals                     // LocalsExpression
	KindMember                     // MemberExpression
)

var nodeKindName = [...]string{
	KindProgram:    "Program",
	KindLiteral:    "Literal",
	KindArray:      "ArrayExpression",
	KindObject:     "ObjectExpression",
	KindProperty:   "Property",
	KindIdentifier: "Identifier",
	KindThis:       "ThisExpression",
	KindLocals:     "LocalsExpression",
	KindMember:     "MemberExpression",
}

// String returns the node type name.
func (k NodeKind) String() string {
	if k < 0 || int(k) >= len(nodeKindName) {
		return "Unknown"
	}

	return nodeKindName[k]
}

// Node is an element of the syntax tree. The set of implementations is
// closed; every Node is one of the pointer types declared in this file.
type Node interface {
	Kind() NodeKind
	node()
}

type (
	// Program is the root of a tree and wraps a single expression.
	Program struct {
		Body Node
	}

	// Literal is a constant: nil, bool, float64 or string.
	Literal struct {
		Value any
	}

	// ArrayExpression is a bracketed list of expressions.
	ArrayExpression struct {
		Elements []Node
	}

	// ObjectExpression is a braced list of key/value properties.
	ObjectExpression struct {
		Properties []*Property
	}

	// Property is one entry of an ObjectExpression. Key is an *Identifier or
	// a *Literal.
	Property struct {
		Key   Node
		Value Node
	}

	// Identifier names a property of locals or context.
	Identifier struct {
		Name string
	}

	// ThisExpression refers to the context argument.
	ThisExpression struct{}

	// LocalsExpression refers to the locals argument.
	LocalsExpression struct{}

	// MemberExpression is dot access of Property on Object.
	MemberExpression struct {
		Object   Node
		Property *Identifier
	}
)

func (*Program) Kind() NodeKind          { return KindProgram }
func (*Literal) Kind() NodeKind          { return KindLiteral }
func (*ArrayExpression) Kind() NodeKind  { return KindArray }
func (*ObjectExpression) Kind() NodeKind { return KindObject }
func (*Property) Kind() NodeKind         { return KindProperty }
func (*Identifier) Kind() NodeKind       { return KindIdentifier }
func (*ThisExpression) Kind() NodeKind   { return KindThis }
func (*LocalsExpression) Kind() NodeKind { return KindLocals }
func (*MemberExpression) Kind() NodeKind { return KindMember }

func (*Program) node()          {}
func (*Literal) node()          {}
func (*ArrayExpression) node()  {}
func (*ObjectExpression) node() {}
func (*Property) node()         {}
func (*Identifier) node()       {}
func (*ThisExpression) node()   {}
func (*LocalsExpression) node() {}
func (*MemberExpression) node() {}

// KeyName returns the object key a property defines: the raw name of an
// identifier key or the string form of a literal key.
func (p *Property) KeyName() string {
	switch k := p.Key.(type) {
	case *Identifier:
		return k.Name
	case *Literal:
		return ToString(k.Value)
	default:
		return ""
	}
}

// Walk calls fn for n and each of its descendants in depth-first order,
// skipping the children of any node for which fn returns false.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}

	switch n := n.(type) {
	case *Program:
		Walk(n.Body, fn)

	case *ArrayExpression:
		for _, e := range n.Elements {
			Walk(e, fn)
		}

	case *ObjectExpression:
		for _, p := range n.Properties {
			Walk(p, fn)
		}

	case *Property:
		Walk(n.Key, fn)
		Walk(n.Value, fn)

	case *MemberExpression:
		Walk(n.Object, fn)
		Walk(n.Property, fn)

	case *Literal, *Identifier, *ThisExpression, *LocalsExpression:
	}
}

// Constant reports whether n can be evaluated without a context or locals,
// meaning the subtree contains no identifier lookup, this or $locals. The
// property name of a member expression is not a lookup.
func Constant(n Node) bool {
	switch n := n.(type) {
	case *Program:
		return Constant(n.Body)

	case *Literal:
		return true

	case *ArrayExpression:
		for _, e := range n.Elements {
			if !Constant(e) {
				return false
			}
		}

		return true

	case *ObjectExpression:
		for _, p := range n.Properties {
			if !Constant(p.Value) {
				return false
			}
		}

		return true

	case *Property:
		return Constant(n.Value)

	case *MemberExpression:
		return Constant(n.Object)

	default:
		return false
	}
}
