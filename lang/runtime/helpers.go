package runtime

import (
	"log/slog"
	"math"
	"reflect"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/expr-lang/expr"

	"github.com/ardnew/stencil/lang"
)

// helpers returns an expr.Function option for every name in lang.Helpers.
func (r *Runtime) helpers() []expr.Option {
	return []expr.Option{
		expr.Function("__attr", helperAttr),
		expr.Function("__bool", helperBool, new(func(any) bool)),
		expr.Function("__compare", helperCompare, new(func(any, any) int)),
		expr.Function("__concat", helperConcat, new(func(any, any) string)),
		expr.Function("__endswith", helperEndsWith, new(func(any, any) bool)),
		expr.Function("__filter", r.dispatch(r.env.Filters())),
		expr.Function("__floordiv", helperFloorDiv),
		expr.Function("__function", r.dispatch(r.env.Functions())),
		expr.Function("__in", helperIn, new(func(any, any) bool)),
		expr.Function("__map", helperMap),
		expr.Function("__matches", helperMatches, new(func(any, any) bool)),
		expr.Function("__merge", helperMerge),
		expr.Function("__range", helperRange),
		expr.Function("__startswith", helperStartsWith, new(func(any, any) bool)),
		expr.Function("__test", r.dispatch(r.env.Tests())),
	}
}

// dispatch returns a helper that calls the symbol registered under its
// first argument with the remaining arguments.
func (r *Runtime) dispatch(reg *lang.Registry) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		if len(params) == 0 {
			return nil, lang.ErrEvaluate.With(
				slog.String("kind", reg.Kind()),
				slog.String("reason", "missing symbol name"))
		}

		name, _ := params[0].(string)

		sym, ok := reg.Get(name)
		if !ok {
			return nil, lang.ErrEvaluate.With(
				slog.String("kind", reg.Kind()),
				slog.String("name", name),
				slog.String("reason", "symbol is not registered"))
		}

		out, err := sym.Callable(params[1:]...)
		if err != nil {
			return nil, lang.WrapError(err).With(
				slog.String(reg.Kind(), name))
		}

		return out, nil
	}
}

func helperAttr(params ...any) (any, error) {
	if len(params) < 2 {
		return nil, lang.ErrEvaluate.With(slog.String("helper", "__attr"))
	}

	var args []any
	if len(params) > 2 {
		args = lang.Values(params[2])
	}

	return lang.Attr(params[0], params[1], args...)
}

func helperBool(params ...any) (any, error) {
	return lang.Truthy(params[0]), nil
}

func helperCompare(params ...any) (any, error) {
	return lang.Compare(params[0], params[1]), nil
}

func helperConcat(params ...any) (any, error) {
	return lang.ToString(params[0]) + lang.ToString(params[1]), nil
}

func helperStartsWith(params ...any) (any, error) {
	return strings.HasPrefix(lang.ToString(params[0]), lang.ToString(params[1])), nil
}

func helperEndsWith(params ...any) (any, error) {
	return strings.HasSuffix(lang.ToString(params[0]), lang.ToString(params[1])), nil
}

func helperFloorDiv(params ...any) (any, error) {
	if len(params) != 2 {
		return nil, lang.ErrEvaluate.With(slog.String("helper", "__floordiv"))
	}

	d := lang.ToFloat(params[1])
	if d == 0 {
		return nil, lang.ErrEvaluate.With(slog.String("reason", "division by zero"))
	}

	return int64(math.Floor(lang.ToFloat(params[0]) / d)), nil
}

func helperRange(params ...any) (any, error) {
	if len(params) != 2 {
		return nil, lang.ErrEvaluate.With(slog.String("helper", "__range"))
	}

	return lang.Range(params[0], params[1], nil)
}

func helperMerge(params ...any) (any, error) {
	if len(params) != 2 {
		return nil, lang.ErrEvaluate.With(slog.String("helper", "__merge"))
	}

	return lang.Merge(params[0], params[1]), nil
}

// helperMap builds a mapping from alternating keys and values. Keys are
// stored in their string form.
func helperMap(params ...any) (any, error) {
	if len(params)%2 != 0 {
		return nil, lang.ErrEvaluate.With(
			slog.String("helper", "__map"),
			slog.Int("arguments", len(params)))
	}

	m := make(map[string]any, len(params)/2)
	for i := 0; i < len(params); i += 2 {
		m[lang.ToString(params[i])] = params[i+1]
	}

	return m, nil
}

// helperIn reports whether the needle is a substring of a string haystack
// or loosely equal to one of the values of a collection.
func helperIn(params ...any) (any, error) {
	needle, haystack := params[0], params[1]

	if s, ok := haystack.(string); ok {
		if lang.IsSequence(needle) || lang.IsMapping(needle) {
			return false, nil
		}

		return strings.Contains(s, lang.ToString(needle)), nil
	}

	if !lang.IsSequence(haystack) && !lang.IsMapping(haystack) {
		return false, nil
	}

	for _, v := range lang.Values(haystack) {
		if looseEqual(needle, v) {
			return true, nil
		}
	}

	return false, nil
}

func looseEqual(a, b any) bool {
	switch {
	case a == nil || b == nil:
		return lang.Truthy(a) == lang.Truthy(b)

	case isBool(a) || isBool(b):
		return lang.Truthy(a) == lang.Truthy(b)

	case isCollection(a) || isCollection(b):
		return reflect.DeepEqual(a, b)
	}

	return lang.Compare(a, b) == 0
}

func isBool(v any) bool {
	_, ok := v.(bool)

	return ok
}

func isCollection(v any) bool { return lang.IsSequence(v) || lang.IsMapping(v) }

// helperMatches matches a string against a delimited regular expression
// such as "/^a.c$/i". The pattern is compiled with regexp2, which accepts
// the backtracking constructs (lookaround, backreferences) of the source
// dialect.
func helperMatches(params ...any) (any, error) {
	re, err := compilePattern(lang.ToString(params[1]))
	if err != nil {
		return nil, err
	}

	ok, err := re.MatchString(lang.ToString(params[0]))
	if err != nil {
		return nil, lang.ErrEvaluate.Wrap(err)
	}

	return ok, nil
}

var closing = map[byte]byte{'(': ')', '{': '}', '[': ']', '<': '>'}

func compilePattern(p string) (*regexp2.Regexp, error) {
	invalid := func(reason string) error {
		return lang.ErrEvaluate.With(
			slog.String("pattern", p),
			slog.String("reason", reason))
	}

	if len(p) < 2 {
		return nil, invalid("missing delimiters")
	}

	open := p[0]
	if open == '\\' || isAlnum(open) || open == ' ' {
		return nil, invalid("delimiter must not be alphanumeric, backslash, or space")
	}

	end := open
	if c, ok := closing[open]; ok {
		end = c
	}

	i := strings.LastIndexByte(p, end)
	if i <= 0 {
		return nil, invalid("missing ending delimiter")
	}

	var opts regexp2.RegexOptions

	for _, f := range p[i+1:] {
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		case 'x':
			opts |= regexp2.IgnorePatternWhitespace
		case 'u', 'D', 'U':
		default:
			return nil, invalid("unknown modifier " + string(f))
		}
	}

	re, err := regexp2.Compile(p[1:i], opts)
	if err != nil {
		return nil, lang.ErrEvaluate.Wrap(err).With(slog.String("pattern", p))
	}

	return re, nil
}

func isAlnum(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
