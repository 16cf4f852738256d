package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/stencil/log"
	"github.com/ardnew/stencil/profile"
)

const (
	configDirMode  os.FileMode = 0o700
	configFileMode os.FileMode = 0o600
)

// Init writes a configuration file holding the current global flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context, out io.Writer) error {
	ktx := kongContextFrom(ctx)
	if ktx == nil {
		panic("internal error: kong context undefined")
	}

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: configuration path undefined")
	}

	fail := ErrWriteConfig.With(slog.String("file", confPath))

	if _, err := os.Stat(confPath); err == nil && !i.Force {
		return fail.With(slog.Bool("exists", true)).Wrap(ErrFileExists)
	}

	b, err := yaml.Marshal(flagValues(ktx))
	if err != nil {
		return fail.Wrap(err)
	}

	if err := os.MkdirAll(filepath.Dir(confPath), configDirMode); err != nil {
		return fail.Wrap(err)
	}

	if err := os.WriteFile(confPath, b, configFileMode); err != nil {
		return fail.Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath))

	return writeString(out, confPath)
}

// flagValues returns the set top-level flags. Flags of a group are nested
// under the group key, so "log-level" becomes log: {level: ...}.
func flagValues(ktx *kong.Context) map[string]any {
	ignore := []string{"help", "version", profile.Tag}
	values := make(map[string]any)

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		val := configValue(ktx.FlagValue(flag))
		if val == nil {
			continue
		}

		if g := flag.Group; g != nil {
			if rest, ok := strings.CutPrefix(flag.Name, g.Key+"-"); ok {
				sub, _ := values[g.Key].(map[string]any)
				if sub == nil {
					sub = make(map[string]any)
					values[g.Key] = sub
				}

				sub[rest] = val

				continue
			}
		}

		values[flag.Name] = val
	}

	return values
}

// configValue returns v in a form suitable for YAML, or nil when v is
// empty and should be left out.
func configValue(v any) any {
	if v == nil {
		return nil
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.String:
		if rv.Len() == 0 {
			return nil
		}

		return rv.String()

	case reflect.Slice:
		if rv.Len() == 0 {
			return nil
		}

		return v

	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Int64, reflect.Uint, reflect.Uint8, reflect.Uint16,
		reflect.Uint32, reflect.Uint64, reflect.Float32, reflect.Float64:
		return v

	default:
		return fmt.Sprint(v)
	}
}
