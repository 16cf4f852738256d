// Package lexer converts expression source into a line-annotated token
// sequence.
//
// Double-quoted strings containing #{ ... } segments are split by the lexer
// itself: the string is emitted as alternating [token.String] and
// [token.InterpolationStart] ... [token.InterpolationEnd] runs, with empty
// literal segments omitted. The parser folds the runs back into
// concatenation trees. Single-quoted strings never interpolate.
package lexer

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/ardnew/stencil/lang/token"
)

// Error reports a lexical failure at a source line.
type Error struct {
	Message string
	Line    int
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message + " (line " + strconv.Itoa(e.Line) + ")"
}

const punctuation = "()[]{}?:.,|"

// Operators lists every operator spelling recognised by [Tokenize]. Word
// operators made of several words match any run of whitespace between the
// words and are emitted with single spaces.
var Operators = []string{
	"=",
	"not", "-", "+",
	"or", "xor", "and", "b-or", "b-xor", "b-and",
	"==", "!=", "<=>", "<", ">", ">=", "<=",
	"not in", "in", "matches", "starts with", "ends with",
	"..", "~", "*", "/", "//", "%", "is", "is not", "**", "??",
}

// operators is [Operators] sorted longest first so the greedy scan prefers
// "is not" over "is" and "**" over "*".
var operators = func() []string {
	ops := slices.Clone(Operators)
	slices.SortStableFunc(ops, func(a, b string) int {
		return cmp.Compare(len(b), len(a))
	})

	return ops
}()

type state int

const (
	stateExpression state = iota
	stateString
	stateInterpolation
)

type bracket struct {
	open string
	line int
}

type lexer struct {
	code     string
	cursor   int
	line     int
	tokens   []token.Token
	states   []state
	brackets []bracket
}

// Tokenize splits code into tokens. The returned slice always ends with a
// [token.EOF] token.
func Tokenize(code string) ([]token.Token, error) {
	lx := &lexer{
		code:   strings.ReplaceAll(strings.ReplaceAll(code, "\r\n", "\n"), "\r", "\n"),
		line:   1,
		states: []state{stateExpression},
	}

	for {
		var (
			done bool
			err  error
		)

		switch lx.state() {
		case stateString:
			err = lx.lexString()

		case stateInterpolation:
			err = lx.lexInterpolation()

		default:
			done, err = lx.lexExpression()
		}

		if err != nil {
			return nil, err
		}

		if done {
			return lx.tokens, nil
		}
	}
}

func (lx *lexer) state() state { return lx.states[len(lx.states)-1] }

func (lx *lexer) pushState(s state) { lx.states = append(lx.states, s) }

func (lx *lexer) popState() { lx.states = lx.states[:len(lx.states)-1] }

func (lx *lexer) push(kind token.Kind, value string) {
	lx.tokens = append(lx.tokens, token.Token{
		Kind:  kind,
		Value: value,
		Line:  lx.line,
	})
}

// advance moves the cursor n bytes forward, counting newlines.
func (lx *lexer) advance(n int) {
	lx.line += strings.Count(lx.code[lx.cursor:lx.cursor+n], "\n")
	lx.cursor += n
}

func (lx *lexer) eof() bool { return lx.cursor >= len(lx.code) }

func (lx *lexer) rest() string { return lx.code[lx.cursor:] }

func (lx *lexer) fail(msg string, line int) error {
	return &Error{Message: msg, Line: line}
}

func (lx *lexer) skipSpace() {
	n := 0
	for n < len(lx.rest()) && isSpace(lx.rest()[n]) {
		n++
	}

	lx.advance(n)
}

func (lx *lexer) lexExpression() (done bool, err error) {
	lx.skipSpace()

	if lx.eof() {
		if n := len(lx.brackets); n > 0 {
			b := lx.brackets[n-1]

			return false, lx.fail("Unclosed \""+b.open+"\".", b.line)
		}

		lx.push(token.EOF, "")

		return true, nil
	}

	rest := lx.rest()

	if strings.HasPrefix(rest, "...") {
		lx.push(token.Spread, "...")
		lx.advance(3)

		return false, nil
	}

	if op, n := lx.matchOperator(); n > 0 {
		lx.push(token.Operator, op)
		lx.advance(n)

		return false, nil
	}

	if n := scanName(rest); n > 0 {
		lx.push(token.Name, rest[:n])
		lx.advance(n)

		return false, nil
	}

	if value, n := scanNumber(rest); n > 0 {
		lx.push(token.Number, value)
		lx.advance(n)

		return false, nil
	}

	c := rest[0]

	if strings.IndexByte(punctuation, c) >= 0 {
		err := lx.trackBracket(c)
		if err != nil {
			return false, err
		}

		lx.push(token.Punctuation, string(c))
		lx.advance(1)

		return false, nil
	}

	if c == '\'' || c == '"' {
		return false, lx.lexQuoted(c)
	}

	return false, lx.fail("Unexpected character \""+string(c)+"\".", lx.line)
}

func (lx *lexer) trackBracket(c byte) error {
	switch c {
	case '(', '[', '{':
		lx.brackets = append(lx.brackets, bracket{open: string(c), line: lx.line})

	case ')', ']', '}':
		n := len(lx.brackets)
		if n == 0 {
			return lx.fail("Unexpected \""+string(c)+"\".", lx.line)
		}

		b := lx.brackets[n-1]
		lx.brackets = lx.brackets[:n-1]

		if closing(b.open) != string(c) {
			return lx.fail("Unclosed \""+b.open+"\".", b.line)
		}
	}

	return nil
}

// lexQuoted consumes a quoted string that starts at the cursor. A
// double-quoted string containing an unescaped #{ switches the lexer into
// the string state instead.
func (lx *lexer) lexQuoted(quote byte) error {
	rest := lx.rest()
	i := 1
	interpolated := false

	for i < len(rest) && rest[i] != quote {
		switch {
		case rest[i] == '\\' && i+1 < len(rest):
			i += 2

			continue

		case quote == '"' && strings.HasPrefix(rest[i:], "#{"):
			interpolated = true
		}

		i++
	}

	if interpolated {
		lx.brackets = append(lx.brackets, bracket{open: `"`, line: lx.line})
		lx.advance(1)
		lx.pushState(stateString)

		return nil
	}

	if i >= len(rest) {
		return lx.fail("Unclosed \""+string(quote)+"\".", lx.line)
	}

	lx.push(token.String, unescape(rest[1:i]))
	lx.advance(i + 1)

	return nil
}

func (lx *lexer) lexString() error {
	rest := lx.rest()

	if strings.HasPrefix(rest, "#{") {
		lx.brackets = append(lx.brackets, bracket{open: "#{", line: lx.line})
		lx.push(token.InterpolationStart, "")
		lx.advance(2)
		lx.pushState(stateInterpolation)

		return nil
	}

	if n := scanStringPart(rest); n > 0 {
		lx.push(token.String, unescape(rest[:n]))
		lx.advance(n)

		return nil
	}

	if strings.HasPrefix(rest, `"`) {
		n := len(lx.brackets)
		b := lx.brackets[n-1]
		lx.brackets = lx.brackets[:n-1]

		if b.open != `"` {
			return lx.fail("Unclosed \""+b.open+"\".", b.line)
		}

		lx.advance(1)
		lx.popState()

		return nil
	}

	b := lx.brackets[len(lx.brackets)-1]

	return lx.fail("Unclosed \""+b.open+"\".", b.line)
}

func (lx *lexer) lexInterpolation() error {
	b := lx.brackets[len(lx.brackets)-1]

	n := 0
	for n < len(lx.rest()) && isSpace(lx.rest()[n]) {
		n++
	}

	if b.open == "#{" && strings.HasPrefix(lx.rest()[n:], "}") {
		lx.brackets = lx.brackets[:len(lx.brackets)-1]
		lx.advance(n)
		lx.push(token.InterpolationEnd, "")
		lx.advance(1)
		lx.popState()

		return nil
	}

	done, err := lx.lexExpression()
	if err != nil {
		return err
	}

	if done {
		return lx.fail("Unclosed \""+b.open+"\".", b.line)
	}

	return nil
}

// matchOperator returns the longest operator at the cursor and the number
// of source bytes it spans.
func (lx *lexer) matchOperator() (string, int) {
	rest := lx.rest()

	for _, op := range operators {
		n, ok := matchSpelling(rest, op)
		if !ok {
			continue
		}

		if isAlpha(op[len(op)-1]) {
			// A word operator must be followed by whitespace, a parenthesis,
			// or an opening sequence or mapping.
			if n >= len(rest) || strings.IndexByte(" \t\n()[{", rest[n]) < 0 {
				continue
			}
		}

		if isAlpha(op[0]) && lx.cursor > 0 {
			// A word operator is a name when it follows "." or "|".
			if prev := lx.code[lx.cursor-1]; prev == '.' || prev == '|' {
				continue
			}
		}

		return op, n
	}

	return "", 0
}

// matchSpelling matches op at the start of s, where each space in op
// matches a non-empty run of whitespace.
func matchSpelling(s, op string) (int, bool) {
	i := 0

	for j := 0; j < len(op); j++ {
		if op[j] == ' ' {
			k := i
			for k < len(s) && isSpace(s[k]) {
				k++
			}

			if k == i {
				return 0, false
			}

			i = k

			continue
		}

		if i >= len(s) || s[i] != op[j] {
			return 0, false
		}

		i++
	}

	return i, true
}

func scanName(s string) int {
	if s == "" || !isNameStart(s[0]) {
		return 0
	}

	n := 1
	for n < len(s) && (isNameStart(s[n]) || isDigit(s[n])) {
		n++
	}

	return n
}

// scanNumber returns the literal with digit separators removed and the
// number of bytes consumed.
func scanNumber(s string) (string, int) {
	digits := func(i int) int {
		if i >= len(s) || !isDigit(s[i]) {
			return i
		}

		for i < len(s) && (isDigit(s[i]) || (s[i] == '_' && i+1 < len(s) && isDigit(s[i+1]))) {
			i++
		}

		return i
	}

	n := digits(0)
	if n == 0 {
		return "", 0
	}

	// A fraction needs a digit after the dot so "1..3" stays a range.
	if n+1 < len(s) && s[n] == '.' && isDigit(s[n+1]) {
		n = digits(n + 1)
	}

	if n < len(s) && (s[n] == 'e' || s[n] == 'E') {
		m := n + 1
		if m < len(s) && (s[m] == '+' || s[m] == '-') {
			m++
		}

		if e := digits(m); e > m {
			n = e
		}
	}

	return strings.ReplaceAll(s[:n], "_", ""), n
}

// scanStringPart returns the length of the literal run of a double-quoted
// string before the closing quote or the next #{.
func scanStringPart(s string) int {
	i := 0

	for i < len(s) {
		switch {
		case s[i] == '\\' && i+1 < len(s):
			i += 2

			continue

		case s[i] == '"', strings.HasPrefix(s[i:], "#{"):
			return i
		}

		i++
	}

	return i
}

// unescape resolves backslash escapes the way C string literals do.
// Unknown escapes yield the escaped character itself.
func unescape(s string) string {
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}

	var sb strings.Builder

	sb.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			sb.WriteByte(s[i])

			continue
		}

		i++

		switch c := s[i]; c {
		case 'n':
			sb.WriteByte('\n')

		case 't':
			sb.WriteByte('\t')

		case 'r':
			sb.WriteByte('\r')

		case 'v':
			sb.WriteByte('\v')

		case 'f':
			sb.WriteByte('\f')

		case 'e':
			sb.WriteByte(0x1b)

		case 'a':
			sb.WriteByte('\a')

		case 'b':
			sb.WriteByte('\b')

		case 'x':
			j := i + 1
			for j < len(s) && j < i+3 && isHex(s[j]) {
				j++
			}

			if j == i+1 {
				sb.WriteByte('x')

				continue
			}

			v, _ := strconv.ParseUint(s[i+1:j], 16, 8)
			sb.WriteByte(byte(v))

			i = j - 1

		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i
			for j < len(s) && j < i+3 && s[j] >= '0' && s[j] <= '7' {
				j++
			}

			v, _ := strconv.ParseUint(s[i:j], 8, 16)
			sb.WriteByte(byte(v))

			i = j - 1

		default:
			sb.WriteByte(c)
		}
	}

	return sb.String()
}

func closing(open string) string {
	switch open {
	case "(":
		return ")"

	case "[":
		return "]"

	default:
		return "}"
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\v' || c == '\f'
}

func isAlpha(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isNameStart(c byte) bool { return isAlpha(c) || c == '_' || c >= 0x7f }
