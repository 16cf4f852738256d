// Package token defines the lexical tokens consumed by the expression parser.
package token

import (
	"log/slog"
	"strconv"
)

// Kind identifies the lexical class of a [Token].
type Kind int

const (
	// EOF marks the end of the token sequence.
	EOF Kind = iota
	// Name is an identifier.
	Name
	// Number is an integer or floating-point literal.
	Number
	// String is a string literal or one literal segment of an interpolated
	// string.
	String
	// Operator is a unary or binary operator, including word operators such
	// as "and" or "starts with".
	Operator
	// Punctuation is one of ( ) [ ] { } ? : . , |.
	Punctuation
	// InterpolationStart opens a #{ ... } segment inside a string.
	InterpolationStart
	// InterpolationEnd closes a #{ ... } segment inside a string.
	InterpolationEnd
	// Spread is the ... marker inside sequence and mapping literals.
	Spread
)

// String returns the English description of the kind used in diagnostics.
func (k Kind) String() string {
	switch k {
	case EOF:
		return "end of template"

	case Name:
		return "name"

	case Number:
		return "number"

	case String:
		return "string"

	case Operator:
		return "operator"

	case Punctuation:
		return "punctuation"

	case InterpolationStart:
		return "begin of string interpolation"

	case InterpolationEnd:
		return "end of string interpolation"

	case Spread:
		return "spread operator"

	default:
		return "unknown (" + strconv.Itoa(int(k)) + ")"
	}
}

// Token is a single lexical token with the source line it starts on.
// Tokens are never mutated after the lexer produces them.
type Token struct {
	Kind  Kind
	Value string
	Line  int
}

// Test reports whether the token has the given kind and, when values are
// given, whether its value equals one of them.
func (t Token) Test(kind Kind, values ...string) bool {
	if t.Kind != kind {
		return false
	}

	if len(values) == 0 {
		return true
	}

	for _, v := range values {
		if t.Value == v {
			return true
		}
	}

	return false
}

// String returns a compact debugging representation of the token.
func (t Token) String() string {
	return t.Kind.String() + "(" + strconv.Quote(t.Value) + ")@" +
		strconv.Itoa(t.Line)
}

// LogValue implements slog.LogValuer.
func (t Token) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", t.Kind.String()),
		slog.String("value", t.Value),
		slog.Int("line", t.Line),
	)
}

// Source identifies the template a token sequence was read from.
type Source struct {
	// Name is the logical template name reported in diagnostics.
	Name string
	// Code is the raw expression source.
	Code string
}
