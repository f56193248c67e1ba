package lang

// TokenKind classifies a [Token].
type TokenKind int

const (
	TokenNumber     TokenKind = iota // number
	TokenString                      // string
	TokenIdentifier                  // identifier
	TokenPunct                       // punctuation
)

// String returns the name of the token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenNumber:
		return "number"
	case TokenString:
		return "string"
	case TokenIdentifier:
		return "identifier"
	case TokenPunct:
		return "punctuation"
	default:
		return "unknown"
	}
}

// Token is a lexical unit of expression source.
//
// Text is the exact source slice the token was read from, including the
// quotes of a string. Value holds the decoded float64 of a number or string
// of a string literal, and is nil for identifiers and punctuation.
type Token struct {
	Value  any
	Text   string
	Offset int
	Kind   TokenKind
}

// Identifier reports whether the token is an identifier.
func (t Token) Identifier() bool { return t.Kind == TokenIdentifier }

// String returns the source text of the token.
func (t Token) String() string { return t.Text }

// is reports whether t is the punctuation token text.
func (t Token) is(text string) bool {
	return t.Kind == TokenPunct && t.Text == text
}
