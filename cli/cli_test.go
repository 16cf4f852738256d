package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/stencil/log"
)

func TestLogConfig_Scan(t *testing.T) {
	t.Cleanup(func() { log.Config(log.WithDefaults(os.Stderr)) })

	tests := []struct {
		name   string
		args   []string
		level  logLevel
		format logFormat
		pretty bool
		caller bool
	}{
		{
			name:   "separate value",
			args:   []string{"--log-level", "debug", "expr"},
			level:  "debug",
			pretty: true,
		},
		{
			name:   "assigned value",
			args:   []string{"--log-format=json", "--log-level=info"},
			level:  "info",
			format: "json",
			pretty: true,
		},
		{
			name:   "negated toggle",
			args:   []string{"--no-log-pretty", "--log-caller"},
			caller: true,
		},
		{
			name:   "assigned toggle",
			args:   []string{"--log-caller=false", "--log-pretty=true"},
			pretty: true,
		},
		{
			name:   "unrelated flags",
			args:   []string{"--level", "debug", "-v", "a=1"},
			pretty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := logConfig{Pretty: true}
			f.scan(tt.args)

			assert.Equal(t, tt.level, f.Level)
			assert.Equal(t, tt.format, f.Format)
			assert.Equal(t, tt.pretty, f.Pretty)
			assert.Equal(t, tt.caller, f.Caller)
		})
	}
}

func TestRun(t *testing.T) {
	t.Cleanup(func() { log.Config(log.WithDefaults(os.Stderr)) })

	tests := []struct {
		name   string
		config string
		args   []string
		want   string
	}{
		{
			name: "default command",
			args: []string{"1 + 2"},
			want: "3\n",
		},
		{
			name: "explicit eval",
			args: []string{"eval", "-v", "name=ann", "--output=text", "name|upper"},
			want: "ANN\n",
		},
		{
			name:   "configured output",
			config: "eval:\n  output: text\n",
			args:   []string{"'a' ~ 'b'"},
			want:   "ab\n",
		},
		{
			name:   "flag overrides config",
			config: "eval:\n  output: text\n",
			args:   []string{"eval", "--output=json", "'a'"},
			want:   "\"a\"\n",
		},
		{
			name: "compile",
			args: []string{"compile", "a.b"},
			want: "__attr(context[\"a\"], \"b\")\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile := filepath.Join(t.TempDir(), "config.yaml")
			if tt.config != "" {
				require.NoError(t, os.WriteFile(configFile, []byte(tt.config), 0o600))
			}

			var out bytes.Buffer

			err := run(context.Background(), func(code int) {
				t.Fatalf("unexpected exit(%d)", code)
			}, &out, configFile, tt.args...)
			require.NoError(t, err)

			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestRun_Init(t *testing.T) {
	t.Cleanup(func() { log.Config(log.WithDefaults(os.Stderr)) })

	configFile := filepath.Join(t.TempDir(), "nested", "config.yaml")

	var out bytes.Buffer

	err := run(context.Background(), func(int) {}, &out, configFile,
		"--log-level=info", "init")
	require.NoError(t, err)

	assert.Equal(t, configFile+"\n", out.String())

	data, err := os.ReadFile(configFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "level: info")
}
