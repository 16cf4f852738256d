package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}

	return m
}

func TestMake_Defaults(t *testing.T) {
	l := Make(nil)

	if l.Level() != DefaultLevel {
		t.Errorf("expected level %v, got %v", DefaultLevel, l.Level())
	}

	if l.Format() != DefaultFormat {
		t.Errorf("expected format %v, got %v", DefaultFormat, l.Format())
	}

	if l.caller != DefaultCaller || l.pretty != DefaultPretty {
		t.Errorf("unexpected defaults %+v", l.config)
	}
}

func TestLogger_ZeroValue(t *testing.T) {
	var l Logger

	l.Trace("nothing")
	l.ErrorContext(context.Background(), "nothing")

	if l.Enabled(context.Background(), LevelError) {
		t.Errorf("zero logger must be disabled")
	}

	if got := l.With(slog.String("k", "v")); got.Logger != nil {
		t.Errorf("With on a zero logger must stay zero")
	}

	if l.Level() != DefaultLevel || l.Format() != DefaultFormat {
		t.Errorf("zero logger must report defaults")
	}
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithLevel(LevelTrace), WithFormat(FormatJSON), WithPretty(false))

	tests := []struct {
		fn    func(string, ...slog.Attr)
		level string
	}{
		{l.Trace, "TRACE"},
		{l.Debug, "DEBUG"},
		{l.Info, "INFO"},
		{l.Warn, "WARN"},
		{l.Error, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.fn("hello", slog.Int("n", 1))

			m := decode(t, &buf)
			if m["level"] != tt.level || m["msg"] != "hello" || m["n"] != 1.0 {
				t.Errorf("unexpected record %v", m)
			}
		})
	}
}

func TestLogger_Filter(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithLevel(LevelError), WithPretty(false))

	l.Info("dropped")
	l.Trace("dropped")

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}

	l.Error("kept")

	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("expected error record, got %q", buf.String())
	}
}

func TestLogger_Wrap(t *testing.T) {
	var first, second bytes.Buffer

	a := Make(&first, WithLevel(LevelInfo), WithPretty(false))
	b := a.Wrap(WithOutput(&second), WithFormat(FormatJSON))

	b.Info("to second")

	if first.Len() != 0 {
		t.Errorf("Wrap must not affect the original output")
	}

	if m := decode(t, &second); m["msg"] != "to second" {
		t.Errorf("unexpected record %v", m)
	}

	if a.Format() != FormatText || b.Format() != FormatJSON {
		t.Errorf("Wrap must copy the configuration")
	}

	var zero Logger
	if zero.Wrap(WithLevel(LevelInfo)).Logger == nil {
		t.Errorf("Wrap on a zero logger must build a logger")
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithLevel(LevelInfo), WithFormat(FormatJSON), WithPretty(false)).
		With(slog.String("component", "parser"))

	l.Info("parsed")

	if m := decode(t, &buf); m["component"] != "parser" {
		t.Errorf("expected persistent attribute, got %v", m)
	}
}

func TestLogger_Caller(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithLevel(LevelInfo), WithFormat(FormatJSON), WithPretty(false), WithCaller(true))
	l.Info("where")

	src, _ := decode(t, &buf)["source"].(map[string]any)
	if file, _ := src["file"].(string); !strings.HasSuffix(file, "log_test.go") {
		t.Errorf("expected caller in log_test.go, got %v", src)
	}
}

func TestLogger_TimeLayout(t *testing.T) {
	tests := []struct {
		layout string
		check  func(string) bool
	}{
		{layout: "RFC3339Nano", check: func(s string) bool { return strings.Contains(s, "T") }},
		{layout: "kitchen", check: func(s string) bool { return strings.HasSuffix(s, "M") }},
		{layout: "2006", check: func(s string) bool { return len(s) == 4 }},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			var buf bytes.Buffer

			l := Make(&buf, WithLevel(LevelInfo), WithFormat(FormatJSON),
				WithPretty(false), WithTimeLayout(tt.layout))
			l.Info("x")

			ts, _ := decode(t, &buf)["time"].(string)
			if !tt.check(ts) {
				t.Errorf("unexpected timestamp %q", ts)
			}
		})
	}

	for _, layout := range []string{"", "none", "  "} {
		var buf bytes.Buffer

		Make(&buf, WithLevel(LevelInfo), WithFormat(FormatJSON),
			WithPretty(false), WithTimeLayout(layout)).Info("x")

		if _, ok := decode(t, &buf)["time"]; ok {
			t.Errorf("layout %q: expected no timestamp", layout)
		}
	}
}

func TestLogger_Pretty(t *testing.T) {
	t.Setenv("CLICOLOR_FORCE", "0")

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer

		l := Make(&buf, WithLevel(LevelTrace), WithTimeLayout("none")).
			With(slog.String("template", "index"))
		l.Trace("parsed", slog.Int("nodes", 3), slog.Group("op", slog.String("name", "or")))

		want := "level=TRACE msg=parsed template=index nodes=3 op.name=or\n"
		if got := buf.String(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("indented", func(t *testing.T) {
		var buf bytes.Buffer

		l := Make(&buf, WithLevel(LevelInfo), WithFormat(FormatJSON), WithTimeLayout("none"))
		l.Warn("careful", slog.Bool("ok", false), slog.Any("none", nil))

		want := "{\n  level: WARN,\n  msg: careful,\n  ok: false,\n  none: null\n}\n"
		if got := buf.String(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})
}
