package repl

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ardnew/stencil/lang"
)

// functionCall describes the call whose argument list holds the cursor.
type functionCall struct {
	name     string         // symbol name before the "("
	kind     completionKind // completeTop for functions
	argIndex int            // 0-based argument index at the cursor
	inCall   bool
}

func isNameRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// detectFunctionCall finds the innermost unclosed "(" before the cursor
// and the function, filter, or test name in front of it.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(max(cursor, 0), len(input))

	open, depth := -1, 0

scan:
	for i := cursor - 1; i >= 0; i-- {
		switch input[i] {
		case ')', ']', '}':
			depth++
		case '(', '[', '{':
			if depth == 0 {
				if input[i] == '(' {
					open = i
				}

				break scan
			}

			depth--
		}
	}

	if open < 0 {
		return functionCall{}
	}

	start := open
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isNameRune(r) {
			break
		}

		start -= size
	}

	name := input[start:open]
	if name == "" {
		return functionCall{}
	}

	kind := classify(input, start)
	if kind == completeMember {
		return functionCall{}
	}

	argIndex := 0
	depth = 0

	for i := open + 1; i < cursor; i++ {
		switch input[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				argIndex++
			}
		}
	}

	return functionCall{name: name, kind: kind, argIndex: argIndex, inCall: true}
}

// getSignature resolves call against the registries of env and returns
// the symbol name and its parameter list. Pattern symbols are reported by
// the name typed, so "tag_*" resolves for "tag_div".
func getSignature(env *lang.Environment, call functionCall) (name string, params []string, ok bool) {
	reg := env.Functions()

	switch call.kind {
	case completeFilter:
		reg = env.Filters()
	case completeTest:
		reg = env.Tests()
	}

	m, found := reg.Lookup(call.name)
	if !found {
		return "", nil, false
	}

	params = append(params, m.Symbol.Params...)
	if m.Symbol.Variadic {
		params = append(params, "...")
	}

	return call.name, params, true
}

// renderSignatureHint renders name(params) with the parameter at argIndex
// highlighted. A trailing "..." is highlighted for every index past the
// declared parameters.
func renderSignatureHint(name string, params []string, argIndex int) string {
	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, p := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		current := i == argIndex || p == "..." && argIndex >= i
		if current {
			b.WriteString(currentParamStyle.Render(p))
		} else {
			b.WriteString(signatureStyle.Render(p))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
