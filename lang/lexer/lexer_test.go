package lexer

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/stencil/lang/token"
)

func tok(kind token.Kind, value string) token.Token {
	return token.Token{Kind: kind, Value: value, Line: 1}
}

func eof() token.Token { return tok(token.EOF, "") }

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []token.Token
	}{
		{
			name:  "arithmetic",
			input: "1 + 2*3",
			want: []token.Token{
				tok(token.Number, "1"),
				tok(token.Operator, "+"),
				tok(token.Number, "2"),
				tok(token.Operator, "*"),
				tok(token.Number, "3"),
				eof(),
			},
		},
		{
			name:  "longest operator wins",
			input: "a ** b // c <=> d",
			want: []token.Token{
				tok(token.Name, "a"),
				tok(token.Operator, "**"),
				tok(token.Name, "b"),
				tok(token.Operator, "//"),
				tok(token.Name, "c"),
				tok(token.Operator, "<=>"),
				tok(token.Name, "d"),
				eof(),
			},
		},
		{
			name:  "multi-word operators collapse whitespace",
			input: "a not   in b and c is  not d",
			want: []token.Token{
				tok(token.Name, "a"),
				tok(token.Operator, "not in"),
				tok(token.Name, "b"),
				tok(token.Operator, "and"),
				tok(token.Name, "c"),
				tok(token.Operator, "is not"),
				tok(token.Name, "d"),
				eof(),
			},
		},
		{
			name:  "word operator needs delimiter",
			input: "andy or notice",
			want: []token.Token{
				tok(token.Name, "andy"),
				tok(token.Operator, "or"),
				tok(token.Name, "notice"),
				eof(),
			},
		},
		{
			name:  "word operator after dot is a name",
			input: "foo.and",
			want: []token.Token{
				tok(token.Name, "foo"),
				tok(token.Punctuation, "."),
				tok(token.Name, "and"),
				eof(),
			},
		},
		{
			name:  "bitwise operators",
			input: "a b-and b",
			want: []token.Token{
				tok(token.Name, "a"),
				tok(token.Operator, "b-and"),
				tok(token.Name, "b"),
				eof(),
			},
		},
		{
			name:  "range is not a fraction",
			input: "1..3",
			want: []token.Token{
				tok(token.Number, "1"),
				tok(token.Operator, ".."),
				tok(token.Number, "3"),
				eof(),
			},
		},
		{
			name:  "numbers",
			input: "1_000 1.5e3 2E-2 0.25",
			want: []token.Token{
				tok(token.Number, "1000"),
				tok(token.Number, "1.5e3"),
				tok(token.Number, "2E-2"),
				tok(token.Number, "0.25"),
				eof(),
			},
		},
		{
			name:  "spread",
			input: "[...a]",
			want: []token.Token{
				tok(token.Punctuation, "["),
				tok(token.Spread, "..."),
				tok(token.Name, "a"),
				tok(token.Punctuation, "]"),
				eof(),
			},
		},
		{
			name:  "strings and escapes",
			input: `'it\'s' "a\tb" ""`,
			want: []token.Token{
				tok(token.String, "it's"),
				tok(token.String, "a\tb"),
				tok(token.String, ""),
				eof(),
			},
		},
		{
			name:  "hex and octal escapes",
			input: `"\x41\101\e"`,
			want: []token.Token{
				tok(token.String, "AA\x1b"),
				eof(),
			},
		},
		{
			name:  "interpolation",
			input: `"foo #{bar} baz"`,
			want: []token.Token{
				tok(token.String, "foo "),
				tok(token.InterpolationStart, ""),
				tok(token.Name, "bar"),
				tok(token.InterpolationEnd, ""),
				tok(token.String, " baz"),
				eof(),
			},
		},
		{
			name:  "interpolation skips empty segments",
			input: `"#{a}"`,
			want: []token.Token{
				tok(token.InterpolationStart, ""),
				tok(token.Name, "a"),
				tok(token.InterpolationEnd, ""),
				eof(),
			},
		},
		{
			name:  "single quotes never interpolate",
			input: `'#{a}'`,
			want: []token.Token{
				tok(token.String, "#{a}"),
				eof(),
			},
		},
		{
			name:  "lone hash is literal",
			input: `"a#b"`,
			want: []token.Token{
				tok(token.String, "a#b"),
				eof(),
			},
		},
		{
			name:  "braces inside interpolation",
			input: `"a #{ {b: 1}|length } c"`,
			want: []token.Token{
				tok(token.String, "a "),
				tok(token.InterpolationStart, ""),
				tok(token.Punctuation, "{"),
				tok(token.Name, "b"),
				tok(token.Punctuation, ":"),
				tok(token.Number, "1"),
				tok(token.Punctuation, "}"),
				tok(token.Punctuation, "|"),
				tok(token.Name, "length"),
				tok(token.InterpolationEnd, ""),
				tok(token.String, " c"),
				eof(),
			},
		},
		{
			name:  "nested interpolation",
			input: `"a #{"b #{c}"}"`,
			want: []token.Token{
				tok(token.String, "a "),
				tok(token.InterpolationStart, ""),
				tok(token.String, "b "),
				tok(token.InterpolationStart, ""),
				tok(token.Name, "c"),
				tok(token.InterpolationEnd, ""),
				tok(token.InterpolationEnd, ""),
				eof(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("tokenize error: %v", err)
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTokenize_Lines(t *testing.T) {
	got, err := Tokenize("a\n+\r\n'x\ny'\n~ b")
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}

	want := []int{1, 2, 3, 5, 5, 5}
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(got), got)
	}

	for i, line := range want {
		if got[i].Line != line {
			t.Errorf("token %v: expected line %d", got[i], line)
		}
	}
}

func TestTokenize_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
		line  int
	}{
		{name: "unclosed parenthesis", input: "(1 + 2", msg: `Unclosed "(".`, line: 1},
		{name: "unexpected closer", input: "1)", msg: `Unexpected ")".`, line: 1},
		{name: "mismatched closer", input: "[\n1)", msg: `Unclosed "[".`, line: 1},
		{name: "unclosed string", input: "'abc", msg: `Unclosed "'".`, line: 1},
		{name: "unclosed interpolated string", input: `"a #{b}`, msg: `Unclosed """.`, line: 1},
		{name: "unclosed interpolation", input: `"a #{b"`, msg: `Unclosed """.`, line: 1},
		{name: "unexpected character", input: "a\n$", msg: `Unexpected character "$".`, line: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)

			var le *Error
			if !errors.As(err, &le) {
				t.Fatalf("expected *Error, got %v", err)
			}

			if le.Message != tt.msg || le.Line != tt.line {
				t.Errorf("expected %q at line %d, got %q at line %d",
					tt.msg, tt.line, le.Message, le.Line)
			}
		})
	}
}
