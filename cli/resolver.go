package cli

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolve is a [kong.ConfigurationLoader] for YAML configuration files.
//
// Nested mappings are flattened by joining keys with "-", and "_" is
// accepted in place of "-", so these are equivalent:
//
//	log:
//	  level: debug
//
//	log-level: debug
//	log_level: debug
//
// A flag belonging to a command may also be set under the command name:
//
//	eval:
//	  system-globals: true
//
// Command-line flags override configuration values.
func resolve(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var doc map[string]any

	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	}

	cfg := make(config)
	cfg.flatten("", doc)

	return cfg, nil
}

// config implements [kong.Resolver] over a flattened YAML document.
type config map[string]any

func (c config) flatten(prefix string, m map[string]any) {
	for k, v := range m {
		key := normalize(k)
		if prefix != "" {
			key = prefix + "-" + key
		}

		if sub, ok := v.(map[string]any); ok {
			c.flatten(key, sub)

			continue
		}

		c[key] = scalar(v)
	}
}

func normalize(key string) string {
	return strings.ReplaceAll(strings.TrimSpace(key), "_", "-")
}

// scalar converts decoded YAML values to the forms kong's mappers accept.
func scalar(v any) any {
	switch v := v.(type) {
	case nil, bool, string:
		return v

	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = scalar(e)
		}

		return out

	default:
		return fmt.Sprint(v)
	}
}

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	_ *kong.Context,
	parent *kong.Path,
	flag *kong.Flag,
) (any, error) {
	name := normalize(flag.Name)

	if parent != nil && parent.Command != nil {
		if v, ok := c[normalize(parent.Command.Name)+"-"+name]; ok {
			return v, nil
		}
	}

	if v, ok := c[name]; ok {
		return v, nil
	}

	return nil, nil
}
