package lang

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

const eof rune = -1

// Lex converts expression source into tokens in source order.
func Lex(text string) ([]Token, error) {
	l := lexer{text: text, src: []rune(text)}

	return l.lex()
}

// lexer makes a single left-to-right pass over the runes of text with one
// rune of lookahead.
type lexer struct {
	text   string
	src    []rune
	tokens []Token
	pos    int
}

func (l *lexer) lex() ([]Token, error) {
	for l.pos < len(l.src) {
		ch := l.src[l.pos]

		var err error

		switch {
		case isDigit(ch) || (ch == '.' && isDigit(l.peek())):
			err = l.readNumber()

		case ch == '\'' || ch == '"':
			err = l.readString(ch)

		case strings.ContainsRune("[],{}:.", ch):
			l.emit(TokenPunct, l.pos, l.pos+1, nil)
			l.pos++

		case isIdentStart(ch):
			l.readIdent()

		case isWhitespace(ch):
			l.pos++

		default:
			err = newLexError(l.text, l.pos,
				"Unexpected next character: "+string(ch))
		}

		if err != nil {
			return nil, err
		}
	}

	return l.tokens, nil
}

// peek returns the rune after the current one, or eof.
func (l *lexer) peek() rune { return l.at(l.pos + 1) }

func (l *lexer) at(i int) rune {
	if i < len(l.src) {
		return l.src[i]
	}

	return eof
}

func (l *lexer) emit(kind TokenKind, start, end int, value any) {
	l.tokens = append(l.tokens, Token{
		Kind:   kind,
		Text:   string(l.src[start:end]),
		Value:  value,
		Offset: start,
	})
}

func (l *lexer) readNumber() error {
	start := l.pos
	dot, exp := false, false

	for l.pos < len(l.src) {
		ch := l.src[l.pos]

		switch {
		case isDigit(ch):
			l.pos++

		case ch == '.' && !dot && !exp:
			dot = true
			l.pos++

		case (ch == 'e' || ch == 'E') && !exp:
			next := l.peek()
			if next == '+' || next == '-' {
				if !isDigit(l.at(l.pos + 2)) {
					return newLexError(l.text, l.pos, "Invalid exponent")
				}

				l.pos += 2
			} else if isDigit(next) {
				l.pos++
			} else {
				return newLexError(l.text, l.pos, "Invalid exponent")
			}

			exp = true

		default:
			return l.emitNumber(start)
		}
	}

	return l.emitNumber(start)
}

func (l *lexer) emitNumber(start int) error {
	text := string(l.src[start:l.pos])

	f, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return newLexError(l.text, start, "Invalid number: "+text)
	}

	l.emit(TokenNumber, start, l.pos, f)

	return nil
}

func (l *lexer) readString(quote rune) error {
	start := l.pos
	l.pos++

	var buf strings.Builder

	for l.pos < len(l.src) {
		ch := l.src[l.pos]

		switch ch {
		case quote:
			l.pos++
			l.emit(TokenString, start, l.pos, buf.String())

			return nil

		case '\\':
			l.pos++
			if l.pos >= len(l.src) {
				return newLexError(l.text, start, "Unmatched quote")
			}

			if l.src[l.pos] == 'u' {
				r, err := l.readUnicodeEscape()
				if err != nil {
					return err
				}

				buf.WriteRune(r)

				continue
			}

			buf.WriteRune(unescape(l.src[l.pos]))
			l.pos++

		default:
			buf.WriteRune(ch)
			l.pos++
		}
	}

	return newLexError(l.text, start, "Unmatched quote")
}

// readUnicodeEscape decodes \uXXXX with l.pos on the 'u'. A high surrogate
// immediately followed by an escaped low surrogate is combined; any other
// surrogate becomes U+FFFD.
func (l *lexer) readUnicodeEscape() (rune, error) {
	r, ok := l.hex4(l.pos + 1)
	if !ok {
		return 0, newLexError(l.text, l.pos-1, "Invalid unicode escape")
	}

	l.pos += 5

	if !utf16.IsSurrogate(r) {
		return r, nil
	}

	if l.at(l.pos) == '\\' && l.at(l.pos+1) == 'u' {
		if lo, ok := l.hex4(l.pos + 2); ok {
			if pair := utf16.DecodeRune(r, lo); pair != utf8.RuneError {
				l.pos += 6

				return pair, nil
			}
		}
	}

	return utf8.RuneError, nil
}

func (l *lexer) hex4(i int) (rune, bool) {
	if i+4 > len(l.src) {
		return 0, false
	}

	n, err := strconv.ParseUint(string(l.src[i:i+4]), 16, 32)
	if err != nil {
		return 0, false
	}

	return rune(n), true
}

func (l *lexer) readIdent() {
	start := l.pos

	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.pos++
	}

	l.emit(TokenIdentifier, start, l.pos, nil)
}

func unescape(ch rune) rune {
	switch ch {
	case 'n':
		return '\n'
	case 'f':
		return '\f'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'v':
		return '\v'
	default:
		return ch
	}
}

func isDigit(ch rune) bool { return '0' <= ch && ch <= '9' }

func isIdentStart(ch rune) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') ||
		ch == '_' || ch == '$'
}

func isIdentPart(ch rune) bool { return isIdentStart(ch) || isDigit(ch) }

func isWhitespace(ch rune) bool {
	switch ch {
	case ' ', '\r', '\t', '\n', '\v', '\u00a0':
		return true
	default:
		return false
	}
}
