package lang

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// call invokes a core symbol through the registries of a fresh environment.
func call(t *testing.T, kind, name string, args ...any) any {
	t.Helper()

	env := newTestEnv(t)

	regs := map[string]*Registry{
		"function": env.Functions(),
		"filter":   env.Filters(),
		"test":     env.Tests(),
	}

	m, ok := regs[kind].Lookup(name)
	require.True(t, ok, "%s %q is not registered", kind, name)

	got, err := m.Symbol.Callable(args...)
	require.NoError(t, err)

	return got
}

func TestCoreFunctions(t *testing.T) {
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, call(t, "function", "range", 1, 3))
	assert.Equal(t, []any{int64(5), int64(3), int64(1)}, call(t, "function", "range", 5, 1, 2))
	assert.Equal(t, []any{0.0, 0.5, 1.0}, call(t, "function", "range", 0, 1, 0.5))
	assert.Equal(t, []any{"a", "b", "c"}, call(t, "function", "range", "a", "c"))
	assert.Equal(t, "b", call(t, "function", "cycle", []any{"a", "b"}, 3))
	assert.Equal(t, 9, call(t, "function", "max", 1, 9, 4))
	assert.Equal(t, int64(1), call(t, "function", "min", []any{int64(3), int64(1)}))
	assert.Equal(t, "ann", call(t, "function", "attribute", map[string]any{"n": "ann"}, "n"))

	n := call(t, "function", "random", 3, 5)
	assert.Contains(t, []any{int64(3), int64(4), int64(5)}, n)
	assert.Contains(t, []any{"x", "y"}, call(t, "function", "random", []any{"x", "y"}))
}

func TestRange_ZeroStep(t *testing.T) {
	_, err := Range(1, 3, 0)
	require.ErrorIs(t, err, ErrEvaluate)
}

func TestCoreFilters(t *testing.T) {
	tests := []struct {
		name string
		args []any
		want any
	}{
		{name: "abs", args: []any{-3}, want: int64(3)},
		{name: "capitalize", args: []any{"hELLO world"}, want: "Hello world"},
		{name: "default", args: []any{"", "x"}, want: "x"},
		{name: "default", args: []any{0, "x"}, want: 0},
		{name: "first", args: []any{[]any{1, 2}}, want: 1},
		{name: "first", args: []any{"héllo"}, want: "h"},
		{name: "last", args: []any{"héllo"}, want: "o"},
		{name: "join", args: []any{[]any{1, 2, 3}, ", ", " and "}, want: "1, 2 and 3"},
		{name: "join", args: []any{[]any{"a", "b"}}, want: "ab"},
		{name: "json_encode", args: []any{map[string]any{"a": 1}}, want: `{"a":1}`},
		{name: "keys", args: []any{map[string]any{"b": 1, "a": 2}}, want: []any{"a", "b"}},
		{name: "length", args: []any{"héllo"}, want: int64(5)},
		{name: "lower", args: []any{"ABC"}, want: "abc"},
		{name: "upper", args: []any{"abc"}, want: "ABC"},
		{name: "merge", args: []any{[]any{1}, []any{2}}, want: []any{1, 2}},
		{name: "merge", args: []any{map[string]any{"a": 1}, map[string]any{"a": 2, "b": 3}}, want: map[string]any{"a": 2, "b": 3}},
		{name: "nl2br", args: []any{"a\nb"}, want: "a<br />\nb"},
		{name: "replace", args: []any{"hello", map[string]any{"l": "L", "ll": "_"}}, want: "he_o"},
		{name: "reverse", args: []any{"abc"}, want: "cba"},
		{name: "reverse", args: []any{[]any{1, 2}}, want: []any{2, 1}},
		{name: "round", args: []any{2.5}, want: 3.0},
		{name: "round", args: []any{-2.5, int64(0), "floor"}, want: -3.0},
		{name: "slice", args: []any{"hello", 1, 3}, want: "ell"},
		{name: "slice", args: []any{[]any{1, 2, 3, 4}, -2, nil}, want: []any{3, 4}},
		{name: "slice", args: []any{[]any{1, 2, 3, 4}, 1, -1}, want: []any{2, 3}},
		{name: "sort", args: []any{[]any{3, "10", 2}}, want: []any{2, 3, "10"}},
		{name: "split", args: []any{"a,b,c", ","}, want: []any{"a", "b", "c"}},
		{name: "split", args: []any{"a,b,c", ",", 2}, want: []any{"a", "b,c"}},
		{name: "split", args: []any{"a,b,c", ",", -1}, want: []any{"a", "b"}},
		{name: "split", args: []any{"abcde", "", 2}, want: []any{"ab", "cd", "e"}},
		{name: "title", args: []any{"hello big world"}, want: "Hello Big World"},
		{name: "trim", args: []any{"  x  "}, want: "x"},
		{name: "trim", args: []any{"--x--", "-", "left"}, want: "x--"},
		{name: "url_encode", args: []any{"a b&c"}, want: "a%20b%26c"},
		{name: "url_encode", args: []any{map[string]any{"q": "a b"}}, want: "q=a+b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, call(t, "filter", tt.name, tt.args...))
		})
	}
}

func TestFilterPathPrefix(t *testing.T) {
	sep := string(os.PathListSeparator)

	got, ok := call(t, "filter", "path_prefix", "/usr/bin"+sep+"/bin", []any{"/opt/bin"}).(string)
	require.True(t, ok)

	assert.True(t, strings.HasPrefix(got, "/opt/bin"+sep), "got %q", got)
	assert.Contains(t, got, "/usr/bin")
}

func TestCoreFilters_Errors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		args []any
	}{
		{name: "replace", args: []any{"x", "not a mapping"}},
		{name: "round", args: []any{1.5, 0, "sideways"}},
		{name: "trim", args: []any{"x", nil, "middle"}},
		{name: "merge", args: []any{[]any{}, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := env.Filters().Lookup(tt.name)
			require.True(t, ok)

			_, err := m.Symbol.Callable(tt.args...)
			require.ErrorIs(t, err, ErrEvaluate)
		})
	}
}

func TestCoreTests(t *testing.T) {
	tests := []struct {
		name string
		args []any
		want bool
	}{
		{name: "defined", args: []any{1}, want: true},
		{name: "defined", args: []any{nil}, want: false},
		{name: "divisible by", args: []any{9, 3}, want: true},
		{name: "divisible by", args: []any{9, 0}, want: false},
		{name: "empty", args: []any{""}, want: true},
		{name: "empty", args: []any{0}, want: false},
		{name: "even", args: []any{4}, want: true},
		{name: "odd", args: []any{4}, want: false},
		{name: "iterable", args: []any{map[string]any{}}, want: true},
		{name: "iterable", args: []any{"abc"}, want: false},
		{name: "mapping", args: []any{[]any{}}, want: false},
		{name: "sequence", args: []any{[]any{}}, want: true},
		{name: "null", args: []any{nil}, want: true},
		{name: "none", args: []any{0}, want: false},
		{name: "same as", args: []any{1, int64(1)}, want: true},
		{name: "same as", args: []any{1, 1.0}, want: false},
		{name: "same as", args: []any{"a", "a"}, want: true},
		{name: "same as", args: []any{nil, nil}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, call(t, "test", tt.name, tt.args...))
		})
	}
}
