package lang

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/ardnew/stencil/lang/token"
)

func TestSyntaxError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *SyntaxError
		want string
	}{
		{
			name: "name and line",
			err:  &SyntaxError{Message: `Unexpected "x".`, Line: 3, Source: token.Source{Name: "page"}},
			want: `Unexpected "x" in "page" at line 3.`,
		},
		{
			name: "question keeps its mark",
			err:  &SyntaxError{Message: `Did you mean "y"?`, Line: 1, Source: token.Source{Name: "page"}},
			want: `Did you mean "y" in "page" at line 1?`,
		},
		{
			name: "line only",
			err:  &SyntaxError{Message: "Oops.", Line: 2},
			want: "Oops at line 2.",
		},
		{
			name: "no location",
			err:  &SyntaxError{Message: "Oops."},
			want: "Oops.",
		},
		{
			name: "no punctuation",
			err:  &SyntaxError{Message: "Oops", Line: 7},
			want: "Oops at line 7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSyntaxError_Kind(t *testing.T) {
	var err error = newSyntaxError(ErrMixedLiteralForm, "x", 1)

	if !errors.Is(err, ErrMixedLiteralForm) {
		t.Errorf("expected mixed literal form")
	}

	if errors.Is(err, ErrUnexpectedToken) {
		t.Errorf("unexpected match with another kind")
	}

	re := err.(*SyntaxError).withKind(ErrInvalidAssignmentTarget)
	if !errors.Is(re, ErrInvalidAssignmentTarget) || errors.Is(err, ErrInvalidAssignmentTarget) {
		t.Errorf("withKind must reclassify a copy")
	}
}

func TestSyntaxError_LogValue(t *testing.T) {
	err := &SyntaxError{
		Kind:       ErrUnknownName,
		Message:    "m",
		Line:       4,
		Source:     token.Source{Name: "page"},
		Suggestion: "cycle",
	}

	got := map[string]string{}
	for _, a := range err.LogValue().Group() {
		got[a.Key] = a.Value.String()
	}

	want := map[string]string{
		"error":      "m",
		"line":       "4",
		"kind":       "unknown name",
		"template":   "page",
		"suggestion": "cycle",
	}

	for k, v := range want {
		if got[k] != v {
			t.Errorf("attribute %s: expected %q, got %q", k, v, got[k])
		}
	}
}

func TestError_Is(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "sentinel", err: ErrCompile, want: true},
		{name: "with attrs", err: ErrCompile.With(slog.String("k", "v")), want: true},
		{name: "wrapped", err: ErrCompile.Wrap(cause), want: true},
		{name: "other sentinel", err: ErrEvaluate.Wrap(cause), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, ErrCompile); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}

	if !errors.Is(ErrEvaluate.Wrap(cause), cause) {
		t.Errorf("expected cause to be reachable")
	}

	if got := ErrEvaluate.Wrap(cause).Error(); got != "evaluation failed: boom" {
		t.Errorf("unexpected message %q", got)
	}
}
