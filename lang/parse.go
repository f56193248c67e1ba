package lang

import "unicode/utf8"

// BuildAST lexes text and parses the tokens into a [Program].
//
// Grammar:
//
//	program     := primary EOF
//	primary     := ( '[' arrayDecl | '{' objectDecl | constant
//	               | identifier | literal ) ( '.' identifier )*
//	arrayDecl   := ( primary ( ',' primary )* )? ']'
//	objectDecl  := ( key ':' primary ( ',' key ':' primary )* )? '}'
//	key         := identifier | literal
//	constant    := 'null' | 'true' | 'false' | 'this' | '$locals'
func BuildAST(text string) (*Program, error) {
	tokens, err := Lex(text)
	if err != nil {
		return nil, err
	}

	p := parser{
		source: text,
		tokens: tokens,
		end:    utf8.RuneCountInString(text),
	}

	body, err := p.primary()
	if err != nil {
		return nil, err
	}

	if p.pos < len(p.tokens) {
		return nil, p.unexpected()
	}

	return &Program{Body: body}, nil
}

// constants maps keywords to the nodes they denote.
//
//nolint:gochecknoglobals
var constants = map[string]func() Node{
	"null":    func() Node { return &Literal{Value: nil} },
	"true":    func() Node { return &Literal{Value: true} },
	"false":   func() Node { return &Literal{Value: false} },
	"this":    func() Node { return &ThisExpression{} },
	"$locals": func() Node { return &LocalsExpression{} },
}

// parser consumes tokens from the front.
type parser struct {
	source string
	tokens []Token
	pos    int
	end    int
}

func (p *parser) peek() (Token, bool) {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos], true
	}

	return Token{}, false
}

// expect consumes the next token if it is the punctuation text.
func (p *parser) expect(text string) bool {
	if t, ok := p.peek(); ok && t.is(text) {
		p.pos++

		return true
	}

	return false
}

// consume is expect that fails when the next token does not match.
func (p *parser) consume(text string) error {
	if !p.expect(text) {
		return newParseError(p.source, p.offset(), "Unexpected. Expecting: "+text)
	}

	return nil
}

// offset returns the rune offset of the next token, or of the end of input.
func (p *parser) offset() int {
	if t, ok := p.peek(); ok {
		return t.Offset
	}

	return p.end
}

// unexpected reports the next token, or the end of input.
func (p *parser) unexpected() error {
	t, ok := p.peek()
	if !ok {
		return newParseError(p.source, p.end, "Unexpected end of input")
	}

	return newParseError(p.source, t.Offset, "Unexpected token: "+t.Text)
}

func (p *parser) primary() (Node, error) {
	var (
		node Node
		err  error
	)

	switch t, ok := p.peek(); {
	case !ok:
		return nil, p.unexpected()

	case t.is("["):
		p.pos++
		node, err = p.arrayDecl()

	case t.is("{"):
		p.pos++
		node, err = p.objectDecl()

	case t.Kind == TokenIdentifier:
		p.pos++

		if mk, isConst := constants[t.Text]; isConst {
			node = mk()
		} else {
			node = &Identifier{Name: t.Text}
		}

	case t.Kind == TokenNumber || t.Kind == TokenString:
		p.pos++
		node = &Literal{Value: t.Value}

	default:
		return nil, p.unexpected()
	}

	if err != nil {
		return nil, err
	}

	for p.expect(".") {
		prop, err := p.identifier()
		if err != nil {
			return nil, err
		}

		node = &MemberExpression{Object: node, Property: prop}
	}

	return node, nil
}

// identifier consumes a property name after '.'. Keywords are plain names
// in this position.
func (p *parser) identifier() (*Identifier, error) {
	t, ok := p.peek()
	if !ok || t.Kind != TokenIdentifier {
		return nil, newParseError(p.source, p.offset(),
			"Unexpected. Expecting: identifier")
	}

	p.pos++

	return &Identifier{Name: t.Text}, nil
}

func (p *parser) arrayDecl() (Node, error) {
	elements := []Node{}

	if t, ok := p.peek(); !ok || !t.is("]") {
		for {
			e, err := p.primary()
			if err != nil {
				return nil, err
			}

			elements = append(elements, e)

			if !p.expect(",") {
				break
			}
		}
	}

	if err := p.consume("]"); err != nil {
		return nil, err
	}

	return &ArrayExpression{Elements: elements}, nil
}

func (p *parser) objectDecl() (Node, error) {
	properties := []*Property{}

	if t, ok := p.peek(); !ok || !t.is("}") {
		for {
			key, err := p.propertyKey()
			if err != nil {
				return nil, err
			}

			if err := p.consume(":"); err != nil {
				return nil, err
			}

			value, err := p.primary()
			if err != nil {
				return nil, err
			}

			properties = append(properties, &Property{Key: key, Value: value})

			if !p.expect(",") {
				break
			}
		}
	}

	if err := p.consume("}"); err != nil {
		return nil, err
	}

	return &ObjectExpression{Properties: properties}, nil
}

// propertyKey consumes an object key. Keywords are plain names here.
func (p *parser) propertyKey() (Node, error) {
	t, ok := p.peek()

	switch {
	case ok && t.Kind == TokenIdentifier:
		p.pos++

		return &Identifier{Name: t.Text}, nil

	case ok && (t.Kind == TokenNumber || t.Kind == TokenString):
		p.pos++

		return &Literal{Value: t.Value}, nil

	default:
		return nil, p.unexpected()
	}
}
