package repl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		input      string
		cursor     int
		word       string
		start, end int
	}{
		{input: "user.na", cursor: 7, word: "na", start: 5, end: 7},
		{input: "user.na", cursor: 2, word: "user", start: 0, end: 4},
		{input: "a|up", cursor: 4, word: "up", start: 2, end: 4},
		{input: "a + ", cursor: 4, word: "", start: 4, end: 4},
		{input: "", cursor: 3, word: "", start: 0, end: 0},
		{input: "é + x", cursor: 2, word: "é", start: 0, end: 2},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			assert.Equal(t, tt.word, word)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestParentPath(t *testing.T) {
	tests := []struct {
		input     string
		wordStart int
		want      string
	}{
		{input: "x ~ user.address.ci", wordStart: 17, want: "user.address"},
		{input: "user.", wordStart: 5, want: "user"},
		{input: "(a).b", wordStart: 4, want: ""},
		{input: "user", wordStart: 0, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parentPath(tt.input, tt.wordStart))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		input string
		want  completionKind
	}{
		{input: "a.", want: completeMember},
		{input: "a|", want: completeFilter},
		{input: "a | ", want: completeFilter},
		{input: "a is ", want: completeTest},
		{input: "a is not ", want: completeTest},
		{input: "this ", want: completeTop},
		{input: "a + ", want: completeTop},
		{input: "", want: completeTop},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.input, len(tt.input)))
		})
	}
}

func TestComplete(t *testing.T) {
	s := newTestSession(t, map[string]any{
		"user":  map[string]any{"name": "ann", "age": 3},
		"upval": 1,
	})

	strs := func(input string, mode inputMode) []string {
		matches, _, _ := complete(s, mode, input, len(input))

		out := make([]string, len(matches))
		for i, m := range matches {
			out[i] = m.Str
		}

		return out
	}

	assert.Equal(t, "upper", strs("name|upp", modeEval)[0])
	assert.ElementsMatch(t, []string{"age", "name"}, strs("user.", modeEval))
	assert.Equal(t, []string{"name"}, strs("user.na", modeEval))
	assert.Contains(t, strs("a is ev", modeEval), "even")
	assert.Contains(t, strs("upv", modeEval), "upval")
	assert.Contains(t, strs("ran", modeEval), "range")
	assert.Contains(t, strs("sit", modeEval), "site")
	assert.Empty(t, strs("a + ", modeEval))
	assert.Empty(t, strs("missing.", modeEval))

	assert.Equal(t, "vars", strs("va", modeCtrl)[0])
	assert.Empty(t, strs("set up", modeCtrl))
	assert.Empty(t, strs("", modeCtrl))

	_, start, end := complete(s, modeEval, "user.na + 1", 7)
	assert.Equal(t, 5, start)
	assert.Equal(t, 7, end)
}
