package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestPackageFunctions(t *testing.T) {
	original := defaultLog
	t.Cleanup(func() { defaultLog = original })

	var buf bytes.Buffer

	Config(WithOutput(&buf), WithLevel(LevelDebug), WithFormat(FormatJSON), WithPretty(false))

	tests := []struct {
		name  string
		fn    func(string, ...slog.Attr)
		level string
	}{
		{"Debug", Debug, "DEBUG"},
		{"Info", Info, "INFO"},
		{"Warn", Warn, "WARN"},
		{"Error", Error, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn("message", slog.String("key", "value"))

			out := buf.String()
			for _, want := range []string{"message", tt.level, `"key":"value"`} {
				if !strings.Contains(out, want) {
					t.Errorf("expected output to contain %q, got: %s", want, out)
				}
			}
		})
	}

	buf.Reset()
	With(slog.String("k", "v")).Info("with")

	if !strings.Contains(buf.String(), `"k":"v"`) {
		t.Errorf("expected attribute from With, got: %s", buf.String())
	}

	if Default().Level() != LevelDebug {
		t.Errorf("Config must reconfigure the default logger")
	}
}
