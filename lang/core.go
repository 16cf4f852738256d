package lang

import (
	"log/slog"
	"math"
	"math/rand/v2"
	"net/url"
	"os"
	"reflect"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/ardnew/mung"
	"github.com/goccy/go-json"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// coreSymbols returns the functions, filters, and tests every Environment
// starts with unless [WithoutCore] is given.
func coreSymbols() [3][]Symbol {
	return [3][]Symbol{
		{
			{Name: "attribute", Callable: fnAttribute, Params: []string{"object", "attribute", "arguments"}, Defaults: map[string]any{"arguments": nil}},
			{Name: "cycle", Callable: fnCycle, Params: []string{"values", "position"}},
			{Name: "max", Callable: fnMax, Variadic: true},
			{Name: "min", Callable: fnMin, Variadic: true},
			{Name: "random", Callable: fnRandom, Params: []string{"values", "max"}, Defaults: map[string]any{"values": nil}},
			{Name: "range", Callable: fnRange, Params: []string{"low", "high", "step"}},
		},
		{
			{Name: "abs", Callable: filterAbs},
			{Name: "capitalize", Callable: filterCapitalize},
			{Name: "default", Callable: filterDefault, Params: []string{"default"}},
			{Name: "first", Callable: filterFirst},
			{Name: "join", Callable: filterJoin, Params: []string{"glue", "and"}, Defaults: map[string]any{"glue": ""}},
			{Name: "json_encode", Callable: filterJSONEncode},
			{Name: "keys", Callable: filterKeys},
			{Name: "last", Callable: filterLast},
			{Name: "length", Callable: filterLength},
			{Name: "lower", Callable: filterLower},
			{Name: "merge", Callable: filterMerge, Variadic: true},
			{Name: "nl2br", Callable: filterNl2br},
			{Name: "path_prefix", Callable: filterPathPrefix, Variadic: true},
			{Name: "replace", Callable: filterReplace, Params: []string{"from"}},
			{Name: "reverse", Callable: filterReverse},
			{Name: "round", Callable: filterRound, Params: []string{"precision", "method"}, Defaults: map[string]any{"precision": int64(0)}},
			{Name: "slice", Callable: filterSlice, Params: []string{"start", "length"}},
			{Name: "sort", Callable: filterSort},
			{Name: "split", Callable: filterSplit, Params: []string{"delimiter", "limit"}},
			{Name: "title", Callable: filterTitle},
			{Name: "trim", Callable: filterTrim, Params: []string{"characters", "side"}, Defaults: map[string]any{"characters": nil}},
			{Name: "upper", Callable: filterUpper},
			{Name: "url_encode", Callable: filterURLEncode},
		},
		{
			{Name: "defined", Callable: testDefined},
			{Name: "divisible by", Callable: testDivisibleBy, OneMandatoryArgument: true},
			{Name: "empty", Callable: testEmpty},
			{Name: "even", Callable: testEven},
			{Name: "iterable", Callable: testIterable},
			{Name: "mapping", Callable: testMapping},
			{Name: "none", Callable: testNull},
			{Name: "null", Callable: testNull},
			{Name: "odd", Callable: testOdd},
			{Name: "same as", Callable: testSameAs, OneMandatoryArgument: true},
			{Name: "sequence", Callable: testSequence},
		},
	}
}

// arg returns args[i], or def when fewer arguments were passed.
func arg(args []any, i int, def any) any {
	if i < len(args) {
		return args[i]
	}

	return def
}

func need(name string, args []any, n int) error {
	if len(args) < n {
		return ErrEvaluate.With(
			slog.String("callable", name),
			slog.Int("expected", n),
			slog.Int("got", len(args)))
	}

	return nil
}

func fnAttribute(args ...any) (any, error) {
	if err := need("attribute", args, 2); err != nil {
		return nil, err
	}

	return Attr(args[0], args[1], Values(arg(args, 2, nil))...)
}

func fnCycle(args ...any) (any, error) {
	if err := need("cycle", args, 2); err != nil {
		return nil, err
	}

	values := Values(args[0])
	if len(values) == 0 {
		return nil, nil
	}

	i := ToInt(args[1]) % int64(len(values))
	if i < 0 {
		i += int64(len(values))
	}

	return values[i], nil
}

// extreme returns the element of values (or of the single collection
// argument) that wins against all others under better.
func extreme(name string, args []any, better func(c int) bool) (any, error) {
	if err := need(name, args, 1); err != nil {
		return nil, err
	}

	values := args
	if len(args) == 1 {
		values = Values(args[0])
	}

	if len(values) == 0 {
		return nil, nil
	}

	best := values[0]
	for _, v := range values[1:] {
		if better(Compare(v, best)) {
			best = v
		}
	}

	return best, nil
}

func fnMax(args ...any) (any, error) {
	return extreme("max", args, func(c int) bool { return c > 0 })
}

func fnMin(args ...any) (any, error) {
	return extreme("min", args, func(c int) bool { return c < 0 })
}

func fnRandom(args ...any) (any, error) {
	values := arg(args, 0, nil)

	if len(args) > 1 && args[1] != nil {
		lo, hi := ToInt(values), ToInt(args[1])
		if lo > hi {
			lo, hi = hi, lo
		}

		return lo + rand.Int64N(hi-lo+1), nil
	}

	switch v := values.(type) {
	case nil:
		return rand.Int64N(math.MaxInt32), nil

	case string:
		r := []rune(v)
		if len(r) == 0 {
			return "", nil
		}

		return string(r[rand.IntN(len(r))]), nil
	}

	if IsSequence(values) || IsMapping(values) {
		vs := Values(values)
		if len(vs) == 0 {
			return nil, nil
		}

		return vs[rand.IntN(len(vs))], nil
	}

	n := ToInt(values)
	if n < 0 {
		return -rand.Int64N(-n + 1), nil
	}

	return rand.Int64N(n + 1), nil
}

// Range returns the inclusive sequence from low to high. Single-character
// strings produce a character range.
func Range(low, high, step any) ([]any, error) {
	s := ToFloat(step)
	if step == nil {
		s = 1
	}

	if s == 0 {
		return nil, ErrEvaluate.With(slog.String("reason", "range step must not be zero"))
	}

	s = math.Abs(s)

	ls, lok := low.(string)
	hs, hok := high.(string)

	if lok && hok && utf8.RuneCountInString(ls) == 1 && utf8.RuneCountInString(hs) == 1 &&
		!isNumeric(ls) {
		lr, _ := utf8.DecodeRuneInString(ls)
		hr, _ := utf8.DecodeRuneInString(hs)
		out := []any{}

		for r := lr; ; {
			out = append(out, string(r))

			next := r + rune(s)
			if lr > hr {
				next = r - rune(s)
			}

			if (lr <= hr && next > hr) || (lr > hr && next < hr) {
				return out, nil
			}

			r = next
		}
	}

	lo, hi := ToNumber(low), ToNumber(high)
	_, lf := lo.(float64)
	_, hf := hi.(float64)
	_, sf := ToNumber(step).(float64)

	a, b := ToFloat(lo), ToFloat(hi)
	out := []any{}

	for i := 0; ; i++ {
		var v float64
		if a <= b {
			v = a + float64(i)*s
			if v > b {
				break
			}
		} else {
			v = a - float64(i)*s
			if v < b {
				break
			}
		}

		if lf || hf || sf {
			out = append(out, v)
		} else {
			out = append(out, int64(v))
		}
	}

	return out, nil
}

func fnRange(args ...any) (any, error) {
	if err := need("range", args, 2); err != nil {
		return nil, err
	}

	return Range(args[0], args[1], arg(args, 2, nil))
}

func filterAbs(args ...any) (any, error) {
	switch n := ToNumber(arg(args, 0, nil)).(type) {
	case int64:
		if n < 0 {
			return -n, nil
		}

		return n, nil

	case float64:
		return math.Abs(n), nil
	}

	return int64(0), nil
}

func filterCapitalize(args ...any) (any, error) {
	s := strings.ToLower(ToString(arg(args, 0, nil)))

	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s, nil
	}

	return strings.ToUpper(string(r)) + s[n:], nil
}

func filterDefault(args ...any) (any, error) {
	v := arg(args, 0, nil)
	if Empty(v) {
		return arg(args, 1, ""), nil
	}

	return v, nil
}

func filterFirst(args ...any) (any, error) {
	v := arg(args, 0, nil)
	if s, ok := v.(string); ok {
		r, n := utf8.DecodeRuneInString(s)
		if n == 0 {
			return "", nil
		}

		return string(r), nil
	}

	vs := Values(v)
	if len(vs) == 0 {
		return nil, nil
	}

	return vs[0], nil
}

func filterLast(args ...any) (any, error) {
	v := arg(args, 0, nil)
	if s, ok := v.(string); ok {
		r, n := utf8.DecodeLastRuneInString(s)
		if n == 0 {
			return "", nil
		}

		return string(r), nil
	}

	vs := Values(v)
	if len(vs) == 0 {
		return nil, nil
	}

	return vs[len(vs)-1], nil
}

func filterJoin(args ...any) (any, error) {
	vs := Values(arg(args, 0, nil))
	glue := ToString(arg(args, 1, ""))
	and := arg(args, 2, nil)

	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = ToString(v)
	}

	if and == nil || len(parts) < 2 {
		return strings.Join(parts, glue), nil
	}

	n := len(parts) - 1

	return strings.Join(parts[:n], glue) + ToString(and) + parts[n], nil
}

func filterJSONEncode(args ...any) (any, error) {
	b, err := json.Marshal(arg(args, 0, nil))
	if err != nil {
		return nil, ErrEvaluate.Wrap(err).With(slog.String("filter", "json_encode"))
	}

	return string(b), nil
}

func filterKeys(args ...any) (any, error) {
	return Keys(arg(args, 0, nil)), nil
}

func filterLength(args ...any) (any, error) {
	return int64(Length(arg(args, 0, nil))), nil
}

func filterLower(args ...any) (any, error) {
	return strings.ToLower(ToString(arg(args, 0, nil))), nil
}

func filterUpper(args ...any) (any, error) {
	return strings.ToUpper(ToString(arg(args, 0, nil))), nil
}

// Merge combines two collections. Sequences are concatenated; a mapping
// on either side yields a mapping where later keys win.
func Merge(a, b any) any {
	if a == nil {
		a = []any{}
	}

	if b == nil {
		return a
	}

	if IsSequence(a) && IsSequence(b) {
		return append(Values(a), Values(b)...)
	}

	out := ToMap(a)
	if IsSequence(a) {
		out = make(map[string]any)
		for i, v := range Values(a) {
			out[ToString(int64(i))] = v
		}
	}

	if IsSequence(b) {
		n := int64(len(out))
		for i, v := range Values(b) {
			out[ToString(n+int64(i))] = v
		}

		return out
	}

	for k, v := range ToMap(b) {
		out[k] = v
	}

	return out
}

func filterMerge(args ...any) (any, error) {
	acc := arg(args, 0, nil)

	for _, v := range args[min(1, len(args)):] {
		if !IsSequence(v) && !IsMapping(v) && v != nil {
			return nil, ErrEvaluate.With(
				slog.String("filter", "merge"),
				slog.String("reason", "argument must be a sequence or a mapping"))
		}

		acc = Merge(acc, v)
	}

	return acc, nil
}

func filterNl2br(args ...any) (any, error) {
	s := ToString(arg(args, 0, nil))
	r := strings.NewReplacer("\r\n", "<br />\r\n", "\n", "<br />\n", "\r", "<br />\r")

	return r.Replace(s), nil
}

// filterPathPrefix prepends directories to a PATH-like list, dropping
// duplicates of the prefixed entries.
func filterPathPrefix(args ...any) (any, error) {
	subject := ToString(arg(args, 0, nil))

	var prefix []string

	for _, a := range args[min(1, len(args)):] {
		for _, v := range Values(a) {
			prefix = append(prefix, ToString(v))
		}
	}

	return mung.Make(
		mung.WithSubjectItems(subject),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
	).String(), nil
}

func filterReplace(args ...any) (any, error) {
	s := ToString(arg(args, 0, nil))
	from := arg(args, 1, nil)

	if !IsMapping(from) {
		return nil, ErrEvaluate.With(
			slog.String("filter", "replace"),
			slog.String("reason", "replacements must be a mapping"))
	}

	m := ToMap(from)
	keys := make([]string, 0, len(m))

	for k := range m {
		keys = append(keys, k)
	}

	// Longer keys first, as strtr does.
	slices.SortFunc(keys, func(a, b string) int { return len(b) - len(a) })

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		if k != "" {
			pairs = append(pairs, k, ToString(m[k]))
		}
	}

	return strings.NewReplacer(pairs...).Replace(s), nil
}

func filterReverse(args ...any) (any, error) {
	v := arg(args, 0, nil)

	if s, ok := v.(string); ok {
		r := []rune(s)
		slices.Reverse(r)

		return string(r), nil
	}

	if IsMapping(v) {
		return v, nil
	}

	vs := Values(v)
	slices.Reverse(vs)

	return vs, nil
}

func filterRound(args ...any) (any, error) {
	f := ToFloat(arg(args, 0, nil))
	p := math.Pow(10, float64(ToInt(arg(args, 1, int64(0)))))

	switch m := ToString(arg(args, 2, "common")); m {
	case "common":
		return math.Round(f*p) / p, nil

	case "ceil":
		return math.Ceil(f*p) / p, nil

	case "floor":
		return math.Floor(f*p) / p, nil

	default:
		return nil, ErrEvaluate.With(
			slog.String("filter", "round"),
			slog.String("method", m))
	}
}

// bounds resolves start and length against n the way array_slice does:
// negative values count from the end and a nil length runs to the end.
func bounds(n int, start, length any) (int, int) {
	s := int(ToInt(start))
	if s < 0 {
		s = max(n+s, 0)
	}

	s = min(s, n)

	e := n
	if length != nil {
		l := int(ToInt(length))
		if l < 0 {
			e = max(n+l, s)
		} else {
			e = min(s+l, n)
		}
	}

	return s, e
}

func filterSlice(args ...any) (any, error) {
	v := arg(args, 0, nil)
	start, length := arg(args, 1, int64(0)), arg(args, 2, nil)

	if s, ok := v.(string); ok {
		r := []rune(s)
		i, j := bounds(len(r), start, length)

		return string(r[i:j]), nil
	}

	if IsMapping(v) {
		keys := Keys(v)
		i, j := bounds(len(keys), start, length)
		m := ToMap(v)
		out := make(map[string]any, j-i)

		for _, k := range keys[i:j] {
			out[ToString(k)] = m[ToString(k)]
		}

		return out, nil
	}

	vs := Values(v)
	i, j := bounds(len(vs), start, length)

	return vs[i:j], nil
}

func filterSort(args ...any) (any, error) {
	vs := Values(arg(args, 0, nil))
	slices.SortStableFunc(vs, Compare)

	return vs, nil
}

func filterSplit(args ...any) (any, error) {
	s := ToString(arg(args, 0, nil))
	delim := ToString(arg(args, 1, ""))
	limit := arg(args, 2, nil)

	var parts []string

	switch {
	case delim == "":
		size := 1
		if limit != nil && ToInt(limit) > 1 {
			size = int(ToInt(limit))
		}

		r := []rune(s)
		for i := 0; i < len(r); i += size {
			parts = append(parts, string(r[i:min(i+size, len(r))]))
		}

	case limit == nil || ToInt(limit) == 0:
		parts = strings.Split(s, delim)

	case ToInt(limit) > 0:
		parts = strings.SplitN(s, delim, int(ToInt(limit)))

	default:
		parts = strings.Split(s, delim)
		parts = parts[:max(len(parts)+int(ToInt(limit)), 0)]
	}

	out := make([]any, len(parts))
	for i, p := range parts {
		out[i] = p
	}

	return out, nil
}

var titleCaser = cases.Title(language.Und)

func filterTitle(args ...any) (any, error) {
	return titleCaser.String(ToString(arg(args, 0, nil))), nil
}

func filterTrim(args ...any) (any, error) {
	s := ToString(arg(args, 0, nil))

	chars := " \t\n\r\x00\x0B"
	if c := arg(args, 1, nil); c != nil {
		chars = ToString(c)
	}

	switch side := ToString(arg(args, 2, "both")); side {
	case "both":
		return strings.Trim(s, chars), nil

	case "left":
		return strings.TrimLeft(s, chars), nil

	case "right":
		return strings.TrimRight(s, chars), nil

	default:
		return nil, ErrEvaluate.With(
			slog.String("filter", "trim"),
			slog.String("side", side))
	}
}

func filterURLEncode(args ...any) (any, error) {
	v := arg(args, 0, nil)

	if IsMapping(v) {
		q := url.Values{}
		for k, x := range ToMap(v) {
			q.Set(k, ToString(x))
		}

		return q.Encode(), nil
	}

	return strings.ReplaceAll(url.QueryEscape(ToString(v)), "+", "%20"), nil
}

func testDefined(args ...any) (any, error) {
	return arg(args, 0, nil) != nil, nil
}

func testDivisibleBy(args ...any) (any, error) {
	if err := need("divisible by", args, 2); err != nil {
		return nil, err
	}

	d := ToFloat(args[1])
	if d == 0 {
		return false, nil
	}

	return math.Mod(ToFloat(args[0]), d) == 0, nil
}

func testEmpty(args ...any) (any, error) {
	return Empty(arg(args, 0, nil)), nil
}

func testEven(args ...any) (any, error) {
	return ToInt(arg(args, 0, nil))%2 == 0, nil
}

func testOdd(args ...any) (any, error) {
	return ToInt(arg(args, 0, nil))%2 != 0, nil
}

func testIterable(args ...any) (any, error) {
	v := arg(args, 0, nil)

	return IsSequence(v) || IsMapping(v), nil
}

func testMapping(args ...any) (any, error) {
	return IsMapping(arg(args, 0, nil)), nil
}

func testSequence(args ...any) (any, error) {
	return IsSequence(arg(args, 0, nil)), nil
}

func testNull(args ...any) (any, error) {
	return arg(args, 0, nil) == nil, nil
}

// testSameAs compares identity: equal dynamic types and equal values.
func testSameAs(args ...any) (any, error) {
	if err := need("same as", args, 2); err != nil {
		return nil, err
	}

	a, b := args[0], args[1]
	if a == nil || b == nil {
		return a == nil && b == nil, nil
	}

	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		// Integer kinds compare by value.
		ia, aok := toInt(a)
		ib, bok := toInt(b)
		_, af := a.(float64)
		_, bf := b.(float64)

		return aok && bok && !af && !bf && ia == ib, nil
	}

	return reflect.DeepEqual(a, b), nil
}
