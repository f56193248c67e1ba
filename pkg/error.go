package pkg

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Error represents a chain of errors, innermost first.
type Error []error

// ErrReadInput is returned when reading an expression or data source fails.
var ErrReadInput = MakeErrorf("failed to read input")

// ErrDecodeData is returned when a YAML data document cannot be decoded.
var ErrDecodeData = MakeErrorf("failed to decode data")

// ErrManifest is returned when a digest manifest is missing or malformed.
var ErrManifest = MakeErrorf("invalid manifest")

// ErrJSONMarshal is returned when JSON marshaling fails.
var ErrJSONMarshal = MakeErrorf("JSON marshal error")

// ErrYAMLMarshal is returned when YAML marshaling fails.
var ErrYAMLMarshal = MakeErrorf("YAML marshal error")

// ErrInvalidFormat is returned when an unknown output format is requested.
// Wrap it with the requested format and the list of valid formats.
var ErrInvalidFormat = MakeErrorf("invalid format")

// MakeError constructs an Error from the given errors. Nil errors are
// skipped and wrapped errors are flattened.
func MakeError(errs ...error) Error {
	var e Error

	for _, err := range errs {
		if err != nil {
			e = append(e, UnwrapErrors(err)...)
		}
	}

	return e
}

// MakeErrorf constructs an Error from a formatted error message.
func MakeErrorf(format string, args ...any) Error {
	return MakeError(fmt.Errorf(format, args...))
}

// Error joins the chain with ": " from outermost to innermost, so the
// sentinel reads first.
func (e Error) Error() string {
	var sb strings.Builder

	for i, err := range slices.Backward(e) {
		if i < len(e)-1 {
			sb.WriteString(": ")
		}

		sb.WriteString(err.Error())
	}

	return sb.String()
}

// Wrap returns a new chain with err appended as the innermost cause.
func (e Error) Wrap(err ...error) Error {
	return append(slices.Clone(err), e...)
}

// Wrapf returns a new chain with a formatted innermost cause.
func (e Error) Wrapf(format string, args ...any) Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// Unwrap returns the errors contained in the receiver.
func (e Error) Unwrap() []error {
	return e
}

// Is reports whether every error in target appears in the receiver's chain,
// so a wrapped sentinel matches with [errors.Is].
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok || len(t) == 0 {
		return false
	}

	for _, te := range t {
		if !slices.ContainsFunc(e, func(x error) bool { return errors.Is(x, te) }) {
			return false
		}
	}

	return true
}

// UnwrapErrors recursively unwraps an error chain and returns all errors in
// the chain, innermost first.
func UnwrapErrors(err error) Error {
	if err == nil {
		return nil
	}

	chain := Error{}

	if e, ok := err.(interface{ Unwrap() []error }); ok {
		for _, wrapped := range e.Unwrap() {
			chain = append(chain, UnwrapErrors(wrapped)...)
		}

		return chain
	}

	return append(chain, err)
}
