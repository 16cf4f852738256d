package profile

import (
	"slices"
	"testing"
)

func TestMake(t *testing.T) {
	p := Make(WithMode("cpu"), WithPath("/tmp/x"), WithQuiet(true))

	want := Profiler{Mode: "cpu", Path: "/tmp/x", Quiet: true}
	if p != want {
		t.Errorf("expected %+v, got %+v", want, p)
	}

	if p := Make(WithMode("cpu"), WithMode("")); p.Mode != "" {
		t.Errorf("later options must win, got mode %q", p.Mode)
	}
}

func TestProfiler_Start_Disabled(t *testing.T) {
	tests := []struct {
		name string
		p    Profiler
	}{
		{name: "empty mode", p: Profiler{}},
		{name: "unknown mode", p: Profiler{Mode: "nope", Path: t.TempDir()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.p.Start()
			if _, ok := s.(ignore); !ok {
				t.Errorf("expected a no-op stopper, got %T", s)
			}

			s.Stop()
		})
	}
}

func TestModes_Sorted(t *testing.T) {
	if m := Modes(); !slices.IsSorted(m) {
		t.Errorf("modes are not sorted: %v", m)
	}
}
