// Package lang parses template expressions into syntax trees and compiles
// the trees to expr-lang source.
//
// # Pipeline
//
//	source ──lexer──▶ tokens ──Parser──▶ *Node ──Compiler──▶ expr-lang code
//
// [Environment] wires the stages together and owns the symbol registries:
//
//	env, err := lang.NewEnvironment()
//	node, err := env.Parse(ctx, token.Source{Name: "index", Code: `user.name|upper`})
//	code, err := env.Compile(ctx, node)
//	// __filter("upper", __attr(context["user"], "name"))
//
// Package runtime executes the compiled code.
//
// # Grammar
//
// Binary operators, from loosest to tightest binding:
//
//	or                                                   10
//	xor                                                  12
//	and                                                  15
//	b-or  b-xor  b-and                                   16 17 18
//	== != <=> < > >= <= in "not in" matches
//	   "starts with" "ends with"                          20
//	..                                                   25
//	+ -                                                  30
//	~                                                    40
//	* / // %                                             60
//	is  "is not"                                         100
//	**                                     (right assoc) 200
//	??                                     (right assoc) 300
//
// Prefix operators are not (50), - and + (500). Postfix operators are
// attribute access (a.b, a.b(args)), subscripts and slices (a[b], a[1:2]),
// and filters (a|f, a|f(args)). The conditional forms a ? b : c, a ? b, and
// a ?: b bind loosest of all.
//
// Literals are numbers, strings, true, false, null (also none), sequences
// [a, b] and mappings {a: 1, "b": 2, (c): 3, d}. A trailing comma is
// allowed in both. ...x spreads x into the enclosing literal. Double-quoted
// strings interpolate #{expr} segments.
//
// # Symbols
//
// Functions, filters, and tests are resolved while parsing against the
// registries of the [Environment]. A [Symbol] name containing "*" is a
// pattern; the text matched by each "*" is passed to the callable ahead of
// the call arguments. Unknown names fail with [ErrUnknownName] and a
// "did you mean" hint computed by [Suggest].
//
// # Errors
//
// Every parse failure is a [*SyntaxError] whose Kind is one of the
// sentinel errors, so callers can test it with [errors.Is]:
//
//	var se *lang.SyntaxError
//	if errors.As(err, &se) && errors.Is(err, lang.ErrUnknownName) {
//		fmt.Println(se.Line, se.Suggestion)
//	}
package lang
