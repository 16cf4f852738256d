package pkg

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
)

func TestName(t *testing.T) {
	if Name != "stencil" {
		t.Errorf("expected Name to be %q, got %q", "stencil", Name)
	}
}

func TestVersion(t *testing.T) {
	if Version == "" || strings.ContainsAny(Version, " \n") {
		t.Errorf("unexpected version %q", Version)
	}
}

func TestPrefix(t *testing.T) {
	tests := []struct {
		exe  string
		want string
	}{
		{exe: "/usr/bin/stencil", want: "stencil"},
		{exe: `C:\bin\stencil.exe`, want: "stencil"},
		{exe: "/tmp/__debug_bin123", want: Name},
		{exe: "/opt/.hidden", want: "hidden"},
		{exe: "/opt/...", want: Name},
	}

	for _, tt := range tests {
		t.Run(tt.exe, func(t *testing.T) {
			exe := filepath.FromSlash(tt.exe)
			if strings.Contains(tt.exe, `\`) && filepath.Separator != '\\' {
				exe = "stencil.exe"
			}

			if got := prefix(exe); got != tt.want {
				t.Errorf("prefix(%q) = %q, expected %q", exe, got, tt.want)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	if dir := ConfigDir(); !strings.HasPrefix(dir, xdg.ConfigHome) {
		t.Errorf("config dir %q is not under %q", dir, xdg.ConfigHome)
	}

	if dir := CacheDir(); !strings.HasPrefix(dir, xdg.CacheHome) {
		t.Errorf("cache dir %q is not under %q", dir, xdg.CacheHome)
	}

	if f := ConfigFile(); filepath.Base(f) != ConfigName {
		t.Errorf("unexpected config file %q", f)
	}
}

func TestError(t *testing.T) {
	err := ErrReadInput.Wrap(io.ErrUnexpectedEOF)

	if got, want := err.Error(), "failed to read input: unexpected EOF"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	if !errors.Is(err, ErrReadInput) {
		t.Errorf("expected wrapped error to match its sentinel")
	}

	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected wrapped error to match its cause")
	}

	if errors.Is(err, ErrInvalidVar) {
		t.Errorf("unexpected match with another sentinel")
	}

	if len(ErrReadInput) != 1 {
		t.Errorf("Wrap must not modify the sentinel")
	}

	if got := ErrInvalidVar.Wrapf("%q", "x").Error(); got != `invalid variable: "x"` {
		t.Errorf("unexpected message %q", got)
	}
}

func TestUnwrapErrors(t *testing.T) {
	inner := errors.New("inner")
	outer := errors.Join(inner, io.EOF)

	got := UnwrapErrors(outer)
	if len(got) != 3 || got[0] != inner || got[1] != io.EOF {
		t.Errorf("unexpected chain %v", got)
	}

	if UnwrapErrors(nil) != nil {
		t.Errorf("expected nil chain")
	}
}
