package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/stencil/lang/token"
)

// Predefined errors (sentinel values).
//
// The first group classifies every [SyntaxError]; use [errors.Is] to test
// the kind of a failure returned by the parser.
var (
	ErrUnexpectedToken         = NewError("unexpected token")
	ErrUnknownName             = NewError("unknown name")
	ErrInvalidAssignmentTarget = NewError("invalid assignment target")
	ErrNonConstantDefault      = NewError("non-constant default")
	ErrMixedLiteralForm        = NewError("mixed literal form")
	ErrInvalidArgument         = NewError("invalid argument")

	ErrCompile        = NewError("compilation failed")
	ErrEvaluate       = NewError("evaluation failed")
	ErrRegistryFrozen = NewError("registry is frozen")
	ErrInvalidSymbol  = NewError("invalid symbol")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
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

// Is reports whether target is the sentinel this error was derived from.
// Errors produced by [Error.Wrap] and [Error.With] share the message of
// their sentinel and compare equal to it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.err == nil && len(t.attrs) == 0 && t.msg != "" &&
		t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
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
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// SyntaxError reports a single parse failure. Parsing never recovers: the
// first SyntaxError aborts the whole parse.
type SyntaxError struct {
	// Kind is one of the classification sentinels, such as
	// [ErrUnexpectedToken] or [ErrUnknownName].
	Kind *Error
	// Message is the diagnostic without location information.
	Message string
	// Line is the 1-based source line, or 0 when unknown.
	Line int
	// Source identifies the template being parsed.
	Source token.Source
	// Suggestion is the "did you mean" candidate already appended to
	// Message, if any.
	Suggestion string
}

func newSyntaxError(kind *Error, msg string, line int) *SyntaxError {
	return &SyntaxError{Kind: kind, Message: msg, Line: line}
}

// Error renders the message followed by the template name and line.
// Trailing punctuation of the message is kept at the very end:
//
//	Unknown "cycl" function. Did you mean "cycle" in "index" at line 1?
func (e *SyntaxError) Error() string {
	msg := e.Message
	punct := ""

	if n := len(msg); n > 0 && (msg[n-1] == '.' || msg[n-1] == '?') {
		msg, punct = msg[:n-1], msg[n-1:]
	}

	if e.Source.Name != "" {
		msg += " in " + strconv.Quote(e.Source.Name)
	}

	if e.Line > 0 {
		msg += " at line " + strconv.Itoa(e.Line)
	}

	return msg + punct
}

// Unwrap returns the kind sentinel.
func (e *SyntaxError) Unwrap() error {
	if e.Kind == nil {
		return nil
	}

	return e.Kind
}

// LogValue implements slog.LogValuer.
func (e *SyntaxError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("error", e.Message),
		slog.Int("line", e.Line),
	}

	if e.Kind != nil {
		attrs = append(attrs, slog.String("kind", e.Kind.msg))
	}

	if e.Source.Name != "" {
		attrs = append(attrs, slog.String("template", e.Source.Name))
	}

	if e.Suggestion != "" {
		attrs = append(attrs, slog.String("suggestion", e.Suggestion))
	}

	return slog.GroupValue(attrs...)
}

// withKind returns a copy of e reclassified as kind.
func (e *SyntaxError) withKind(kind *Error) *SyntaxError {
	c := *e
	c.Kind = kind

	return &c
}

// suggest appends a "did you mean" hint when [Suggest] finds a candidate.
func (e *SyntaxError) suggest(name string, known []string) *SyntaxError {
	if s, ok := Suggest(name, known); ok {
		e.Suggestion = s
		e.Message += " Did you mean " + strconv.Quote(s) + "?"
	}

	return e
}

// attachSource records src on err when err is a [SyntaxError] that has no
// source yet.
func attachSource(err error, src token.Source) error {
	var se *SyntaxError
	if errors.As(err, &se) && se.Source == (token.Source{}) {
		se.Source = src
	}

	return err
}
