package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type attrUser struct {
	Name string
	age  int
}

func (u attrUser) Greet(who string) string { return "hi " + who + " from " + u.Name }

func (u *attrUser) Rename(name string) { u.Name = name }

func TestTruthy(t *testing.T) {
	tests := []struct {
		input any
		want  bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{"", false},
		{"0", false},
		{"0.0", true},
		{int64(0), false},
		{0.0, false},
		{-1, true},
		{[]any{}, false},
		{[]any{nil}, true},
		{map[string]any{}, false},
		{attrUser{}, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Truthy(tt.input), "Truthy(%#v)", tt.input)
	}
}

func TestEmpty(t *testing.T) {
	assert.True(t, Empty(nil))
	assert.True(t, Empty(""))
	assert.True(t, Empty(false))
	assert.True(t, Empty([]any{}))
	assert.True(t, Empty(map[string]int{}))
	assert.False(t, Empty(0))
	assert.False(t, Empty("0"))
	assert.False(t, Empty([]int{0}))
}

func TestToString(t *testing.T) {
	tests := []struct {
		input any
		want  string
	}{
		{nil, ""},
		{true, "1"},
		{false, ""},
		{int64(42), "42"},
		{uint8(7), "7"},
		{1.0, "1"},
		{1.5, "1.5"},
		{-0.25, "-0.25"},
		{"x", "x"},
		{[]any{1}, "Array"},
		{map[string]any{}, "Array"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ToString(tt.input), "ToString(%#v)", tt.input)
	}
}

func TestToNumber(t *testing.T) {
	assert.Equal(t, int64(12), ToNumber(" 12 "))
	assert.Equal(t, 1.5, ToNumber("1.5"))
	assert.Equal(t, int64(0), ToNumber("abc"))
	assert.Equal(t, int64(1), ToNumber(true))
	assert.Equal(t, int64(3), ToNumber(int32(3)))
	assert.Equal(t, 2.5, ToNumber(float32(2.5)))
	assert.Equal(t, int64(2), ToInt(2.9))
	assert.InDelta(t, 3.0, ToFloat("3"), 1e-9)
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b any
		want int
	}{
		{1, 2, -1},
		{2, "10", -1},
		{"10", "9", 1},
		{1.0, int64(1), 0},
		{"a", "b", -1},
		{"b", "a", 1},
		{nil, "", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Compare(tt.a, tt.b), "Compare(%#v, %#v)", tt.a, tt.b)
	}
}

func TestCollections(t *testing.T) {
	m := map[string]any{"b": 1, "a": 2}

	assert.Equal(t, []any{"a", "b"}, Keys(m))
	assert.Equal(t, []any{2, 1}, Values(m))
	assert.Equal(t, []any{0, 1}, Keys([]string{"x", "y"}))
	assert.Equal(t, []any{"x", "y"}, Values([]string{"x", "y"}))
	assert.Equal(t, []any{"h", "é"}, Values("hé"))
	assert.Equal(t, []any{5}, Values(5))
	assert.Empty(t, Values(nil))

	assert.Equal(t, 2, Length("hé"))
	assert.Equal(t, 2, Length(m))
	assert.Equal(t, 3, Length(123))
	assert.Equal(t, 0, Length(nil))

	assert.True(t, IsSequence([]int{}))
	assert.False(t, IsSequence(m))
	assert.True(t, IsMapping(m))
	assert.False(t, IsMapping(nil))

	assert.Equal(t, map[string]any{"0": "x", "1": "y"}, ToMap([]any{"x", "y"}))
	assert.Equal(t, map[string]any{"1": true}, ToMap(map[int]bool{1: true}))
}

func TestAttr(t *testing.T) {
	u := &attrUser{Name: "ann", age: 3}

	tests := []struct {
		name string
		obj  any
		key  any
		args []any
		want any
	}{
		{name: "map", obj: map[string]any{"a": 1}, key: "a", want: 1},
		{name: "missing key", obj: map[string]any{"a": 1}, key: "b", want: nil},
		{name: "integer keyed map", obj: map[int]string{1: "one"}, key: int64(1), want: "one"},
		{name: "string keyed map by number", obj: map[string]int{"1": 9}, key: 1, want: 9},
		{name: "any keyed map", obj: map[any]any{int64(2): "two"}, key: int64(2), want: "two"},
		{name: "sequence", obj: []any{"x", "y"}, key: 1, want: "y"},
		{name: "sequence by numeric string", obj: []any{"x", "y"}, key: "0", want: "x"},
		{name: "sequence out of range", obj: []any{"x"}, key: 5, want: nil},
		{name: "field", obj: u, key: "Name", want: "ann"},
		{name: "lower-case field", obj: *u, key: "name", want: "ann"},
		{name: "unexported field", obj: u, key: "age", want: nil},
		{name: "method", obj: u, key: "greet", args: []any{"bob"}, want: "hi bob from ann"},
		{name: "nil object", obj: nil, key: "a", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Attr(tt.obj, tt.key, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAttr_MethodErrors(t *testing.T) {
	u := attrUser{Name: "ann"}

	_, err := Attr(u, "greet")
	require.ErrorIs(t, err, ErrEvaluate)

	_, err = Attr(u, "greet", "a", "b")
	require.ErrorIs(t, err, ErrEvaluate)

	_, err = Attr(u, "greet", []int{1})
	require.ErrorIs(t, err, ErrEvaluate)

	p := &attrUser{}
	got, err := Attr(p, "rename", "zed")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, "zed", p.Name)
}
