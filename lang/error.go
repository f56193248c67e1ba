package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrLex         = NewError("lex error")
	ErrParse       = NewError("parse error")
	ErrCompile     = NewError("compile error")
	ErrMaterialize = NewError("materialize failed")
	ErrEvaluate    = NewError("evaluation failed")
	ErrReadInput   = NewError("failed to read input")
)

var errNilNode = errors.New("nil node")

func errUnexpectedNode(n Node) error {
	if n == nil {
		return errNilNode
	}

	return errors.New("unexpected node " + n.Kind().String())
}

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
//
// Errors derived from a sentinel with [Error.Wrap] or [Error.With] still
// match that sentinel with [errors.Is].
type Error struct {
	base  *Error
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError creates a new sentinel Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// Error implements the error interface.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.sentinel() == e.sentinel()
}

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		base:  e.sentinel(),
		msg:   e.msg,
		err:   err,
		attrs: e.attrs,
	}
}

// With adds attributes to the error for structured logging.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		base:  e.sentinel(),
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

func (e *Error) sentinel() *Error {
	if e.base != nil {
		return e.base
	}

	return e
}

// Position identifies a location in expression source. Offset counts runes
// from zero; Line and Column count from one.
type Position struct {
	Offset int
	Line   int
	Column int
}

// String returns "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

func position(source string, offset int) Position {
	pos := Position{Offset: offset, Line: 1, Column: 1}

	i := 0
	for _, r := range source {
		if i >= offset {
			break
		}

		if r == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}

		i++
	}

	return pos
}

// LexError reports source text the lexer cannot tokenize.
type LexError struct {
	Reason string
	Source string
	Offset int
}

func newLexError(source string, offset int, reason string) *LexError {
	return &LexError{Reason: reason, Source: source, Offset: offset}
}

// Error renders the reason followed by the offending source line.
func (e *LexError) Error() string {
	return formatWithContext("lex error", e.Reason, e.Source, e.Offset)
}

// Unwrap returns [ErrLex].
func (e *LexError) Unwrap() error { return ErrLex }

// Position returns the location of the error in Source.
func (e *LexError) Position() Position { return position(e.Source, e.Offset) }

// LogValue implements slog.LogValuer.
func (e *LexError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrLex.msg),
		slog.String("reason", e.Reason),
		slog.String("position", e.Position().String()),
	)
}

// ParseError reports a token sequence that does not match the grammar.
type ParseError struct {
	Reason string
	Source string
	Offset int
}

func newParseError(source string, offset int, reason string) *ParseError {
	return &ParseError{Reason: reason, Source: source, Offset: offset}
}

// Error renders the reason followed by the offending source line.
func (e *ParseError) Error() string {
	return formatWithContext("parse error", e.Reason, e.Source, e.Offset)
}

// Unwrap returns [ErrParse].
func (e *ParseError) Unwrap() error { return ErrParse }

// Position returns the location of the error in Source.
func (e *ParseError) Position() Position { return position(e.Source, e.Offset) }

// LogValue implements slog.LogValuer.
func (e *ParseError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrParse.msg),
		slog.String("reason", e.Reason),
		slog.String("position", e.Position().String()),
	)
}

// formatWithContext formats an error with the source line it occurred on and
// a caret under the offending column.
func formatWithContext(kind, reason, source string, offset int) string {
	pos := position(source, offset)

	var buf strings.Builder

	buf.WriteString(kind)
	buf.WriteString(" at line ")
	buf.WriteString(strconv.Itoa(pos.Line))
	buf.WriteString(", column ")
	buf.WriteString(strconv.Itoa(pos.Column))
	buf.WriteString(": ")
	buf.WriteString(reason)

	lines := strings.Split(source, "\n")
	if pos.Line > len(lines) {
		return buf.String()
	}

	num := strconv.Itoa(pos.Line)

	buf.WriteString("\n  ")
	buf.WriteString(num)
	buf.WriteString(" | ")
	buf.WriteString(lines[pos.Line-1])
	buf.WriteByte('\n')
	// 2 leading spaces + " | "
	buf.WriteString(strings.Repeat(" ", len(num)+5+pos.Column-1))
	buf.WriteByte('^')

	return buf.String()
}
