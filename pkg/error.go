package pkg

import (
	"errors"
	"fmt"
	"strings"
)

// Error represents a chain of errors, innermost first.
type Error []error

// Sentinel errors for the command-line front end. Test with errors.Is.
var (
	// ErrReadInput is returned when reading a source or variables file fails.
	ErrReadInput = MakeErrorf("failed to read input")
	// ErrInvalidVar is returned when a --var flag is not of the form k=v.
	ErrInvalidVar = MakeErrorf("invalid variable")
	// ErrDecodeVars is returned when a variables file cannot be decoded.
	ErrDecodeVars = MakeErrorf("failed to decode variables")
	// ErrJSONMarshal is returned when JSON marshaling fails.
	ErrJSONMarshal = MakeErrorf("JSON marshal error")
	// ErrYAMLMarshal is returned when YAML marshaling fails.
	ErrYAMLMarshal = MakeErrorf("YAML marshal error")
	// ErrInvalidFormat is returned when an unknown output format is requested.
	ErrInvalidFormat = MakeErrorf("invalid format")
)

// MakeError constructs an Error from the given errors, the first argument
// being the innermost. Nil errors are skipped.
func MakeError(errs ...error) Error {
	var e Error

	for _, err := range errs {
		if err != nil {
			e = append(e, UnwrapErrors(err)...)
		}
	}

	return e
}

// MakeErrorf constructs an Error from a formatted message.
func MakeErrorf(format string, args ...any) Error {
	return MakeError(fmt.Errorf(format, args...))
}

// Error joins the chain with ": ", innermost first.
func (e Error) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}

	return strings.Join(msgs, ": ")
}

// Wrap appends errors to a copy of the receiver.
func (e Error) Wrap(err ...error) Error {
	return append(e[:len(e):len(e)], err...)
}

// Wrapf appends a formatted error to a copy of the receiver.
func (e Error) Wrapf(format string, args ...any) Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// Unwrap returns the errors in the chain.
func (e Error) Unwrap() []error { return e }

// Is reports whether target is a chain whose errors all appear, in order,
// at the start of e. This lets a wrapped sentinel match the sentinel.
func (e Error) Is(target error) bool {
	var t Error
	if !errors.As(target, &t) || len(t) == 0 || len(t) > len(e) {
		return false
	}

	for i := range t {
		if e[i] != t[i] {
			return false
		}
	}

	return true
}

// UnwrapErrors recursively unwraps an error chain and returns every error
// in it, innermost first.
func UnwrapErrors(err error) Error {
	if err == nil {
		return nil
	}

	chain := Error{}

	switch e := err.(type) {
	case interface{ Unwrap() []error }:
		for _, wrapped := range e.Unwrap() {
			chain = append(chain, UnwrapErrors(wrapped)...)
		}

	case interface{ Unwrap() error }:
		chain = append(chain, UnwrapErrors(e.Unwrap())...)
	}

	return append(chain, err)
}
