package cli

import (
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	const doc = `
log:
  level: debug
  time_layout: none
string-concat: true
eval:
  output: yaml
depth: 3
tags: [a, 1]
`

	r, err := resolve(strings.NewReader(doc))
	require.NoError(t, err)

	cfg, ok := r.(config)
	require.True(t, ok)

	assert.Equal(t, config{
		"log-level":       "debug",
		"log-time-layout": "none",
		"string-concat":   true,
		"eval-output":     "yaml",
		"depth":           "3",
		"tags":            []any{"a", "1"},
	}, cfg)
}

func TestResolve_Empty(t *testing.T) {
	r, err := resolve(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, config{}, r)
}

func TestResolve_Invalid(t *testing.T) {
	_, err := resolve(strings.NewReader("log: [unterminated"))
	require.Error(t, err)
}

func TestConfig_Resolve(t *testing.T) {
	var cli struct {
		Level string `default:"warn"`
		Eval  struct {
			Output string `default:"json"`
		} `cmd:""`
	}

	cfg := config{"level": "info", "eval-output": "text", "output": "yaml"}

	parser, err := kong.New(&cli, kong.Resolvers(cfg), kong.Exit(func(int) {}))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"eval"})
	require.NoError(t, err)

	assert.Equal(t, "info", cli.Level)
	assert.Equal(t, "text", cli.Eval.Output)
}
