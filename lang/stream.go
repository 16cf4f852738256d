package lang

import (
	"strconv"

	"github.com/ardnew/stencil/lang/token"
)

// Stream is a cursor over a token sequence. The parser consumes it from
// front to back; tokens are never modified.
type Stream struct {
	tokens  []token.Token
	current int
	source  token.Source
}

// NewStream creates a Stream over tokens read from src. A trailing
// [token.EOF] is appended when tokens does not already end with one.
func NewStream(tokens []token.Token, src token.Source) *Stream {
	if n := len(tokens); n == 0 || tokens[n-1].Kind != token.EOF {
		line := 1
		if n > 0 {
			line = tokens[n-1].Line
		}

		tokens = append(tokens, token.Token{Kind: token.EOF, Line: line})
	}

	return &Stream{tokens: tokens, source: src}
}

// Source returns the template the tokens were read from.
func (s *Stream) Source() token.Source { return s.source }

// Current returns the token under the cursor.
func (s *Stream) Current() token.Token { return s.tokens[s.current] }

// Next returns the current token and advances the cursor. The cursor never
// moves past the final EOF token.
func (s *Stream) Next() token.Token {
	t := s.tokens[s.current]
	if s.current < len(s.tokens)-1 {
		s.current++
	}

	return t
}

// Look returns the token n positions away from the cursor without moving
// it. Positions outside the sequence are clamped to its ends.
func (s *Stream) Look(n int) token.Token {
	i := min(max(s.current+n, 0), len(s.tokens)-1)

	return s.tokens[i]
}

// Test reports whether the current token matches kind and, when given, one
// of values.
func (s *Stream) Test(kind token.Kind, values ...string) bool {
	return s.Current().Test(kind, values...)
}

// NextIf advances past the current token if it matches.
func (s *Stream) NextIf(kind token.Kind, values ...string) (token.Token, bool) {
	if !s.Test(kind, values...) {
		return token.Token{}, false
	}

	return s.Next(), true
}

// IsEOF reports whether the cursor reached the end of the sequence.
func (s *Stream) IsEOF() bool { return s.Current().Kind == token.EOF }

// Expect consumes the current token if it has the given kind and, when
// value is non-empty, the given value. Otherwise it fails with an
// [ErrUnexpectedToken] error whose message is prefixed by message.
func (s *Stream) Expect(
	kind token.Kind,
	value string,
	message string,
) (token.Token, error) {
	t := s.Current()

	var ok bool
	if value == "" {
		ok = t.Test(kind)
	} else {
		ok = t.Test(kind, value)
	}

	if !ok {
		return t, newSyntaxError(
			ErrUnexpectedToken,
			expectMessage(t, kind, value, message),
			t.Line,
		)
	}

	return s.Next(), nil
}

func expectMessage(t token.Token, kind token.Kind, value, message string) string {
	msg := ""
	if message != "" {
		msg = message + ". "
	}

	msg += "Unexpected token " + strconv.Quote(t.Kind.String())

	if hasValue(t.Value) {
		msg += " of value " + strconv.Quote(t.Value)
	}

	msg += " (" + strconv.Quote(kind.String()) + " expected"

	if value != "" {
		msg += " with value " + strconv.Quote(value)
	}

	return msg + ")."
}

// hasValue reports whether a token value is worth quoting in a diagnostic.
// Empty values and "0" are omitted.
func hasValue(v string) bool { return v != "" && v != "0" }
