package repl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/stencil/lang"
	"github.com/ardnew/stencil/lang/runtime"
	"github.com/ardnew/stencil/log"
)

func newTestSession(t *testing.T, vars map[string]any) *Session {
	t.Helper()

	env, err := lang.NewEnvironment()
	require.NoError(t, err)

	rt := runtime.New(env, runtime.WithGlobals(map[string]any{"site": "docs"}))

	return NewSession(rt, vars, log.Logger{})
}

func TestSession_Eval(t *testing.T) {
	s := newTestSession(t, map[string]any{"name": "ann"})

	got, err := s.Eval(t.Context(), "name|upper ~ '@' ~ site")
	require.NoError(t, err)
	assert.Equal(t, "ANN@docs", got)

	_, err = s.Eval(t.Context(), "name|uper")

	var serr *lang.SyntaxError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, templateName, serr.Source.Name)
	assert.Equal(t, "upper", serr.Suggestion)
}

func TestSession_Compile(t *testing.T) {
	s := newTestSession(t, nil)

	got, err := s.Compile(t.Context(), "a.b")
	require.NoError(t, err)
	assert.Equal(t, `__attr(context["a"], "b")`, got)
}

func TestSession_Set(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantNames []string
		wantVars  map[string]any
		wantErr   error
	}{
		{
			name:      "single",
			line:      "x = 1 + 2",
			wantNames: []string{"x"},
			wantVars:  map[string]any{"x": 3},
		},
		{
			name:      "multiple",
			line:      "a, b = 'p', 'q'",
			wantNames: []string{"a", "b"},
			wantVars:  map[string]any{"a": "p", "b": "q"},
		},
		{
			name:      "comparison on right",
			line:      "ok = 1 <= 2",
			wantNames: []string{"ok"},
			wantVars:  map[string]any{"ok": true},
		},
		{name: "count mismatch", line: "a, b = 1", wantErr: ErrAssignCount},
		{name: "no assignment", line: "a == 1", wantErr: ErrAssignment},
		{name: "missing value", line: "a =", wantErr: ErrAssignment},
		{name: "reserved", line: "true = 1", wantErr: lang.ErrInvalidAssignmentTarget},
		{name: "attribute", line: "a.b = 1", wantErr: lang.ErrInvalidAssignmentTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, nil)

			names, err := s.Set(t.Context(), tt.line)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}

				assert.Empty(t, s.Vars())

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantNames, names)
			assert.Equal(t, tt.wantVars, s.Vars())
		})
	}
}

func TestSession_Vars(t *testing.T) {
	vars := map[string]any{"a": 1}
	s := newTestSession(t, vars)

	s.Unset("a")
	assert.Equal(t, map[string]any{"a": 1}, vars, "session must not alias its input")
	assert.Empty(t, s.Vars())

	s.Replace(map[string]any{"b": 2, "site": "local"})
	assert.Equal(t, []string{"b", "site"}, s.Names())

	s.Replace(nil)
	assert.Equal(t, []string{"site"}, s.Names())
}

func TestSession_Lookup(t *testing.T) {
	s := newTestSession(t, map[string]any{
		"user": map[string]any{"address": map[string]any{"city": "Oslo"}},
		"n":    1,
	})

	tests := []struct {
		path string
		want any
		ok   bool
	}{
		{path: "user.address.city", want: "Oslo", ok: true},
		{path: "user.address", want: map[string]any{"city": "Oslo"}, ok: true},
		{path: "site", want: "docs", ok: true},
		{path: "user.missing"},
		{path: "n.x"},
		{path: ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := s.Lookup(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitAssignment(t *testing.T) {
	tests := []struct {
		line     string
		lhs, rhs string
		ok       bool
	}{
		{line: "a = 1", lhs: "a", rhs: "1", ok: true},
		{line: "a, b = x == y, 2", lhs: "a, b", rhs: "x == y, 2", ok: true},
		{line: "a == 1"},
		{line: "a != 1"},
		{line: "a >= 1"},
		{line: "= 1"},
		{line: "a ="},
		{line: "a"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			lhs, rhs, ok := splitAssignment(tt.line)
			assert.Equal(t, tt.ok, ok)

			if tt.ok {
				assert.Equal(t, tt.lhs, lhs)
				assert.Equal(t, tt.rhs, rhs)
			}
		})
	}
}

func TestFormatResult(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want string
	}{
		{name: "string", v: "a", want: `"a"`},
		{name: "number", v: 3, want: "3"},
		{name: "null", v: nil, want: "null"},
		{name: "sequence", v: []any{1, "b"}, want: `[1,"b"]`},
		{name: "mapping", v: map[string]any{"k": true}, want: `{"k":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatResult(tt.v))
		})
	}
}
