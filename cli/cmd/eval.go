package cmd

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/stencil/lang"
	"github.com/ardnew/stencil/lang/runtime"
	"github.com/ardnew/stencil/log"
	"github.com/ardnew/stencil/pkg"
)

// Variables holds the template variables shared by eval and repl.
type Variables struct {
	Var           []string `help:"Set a variable; the value is parsed as YAML." placeholder:"NAME=VALUE" short:"v"`
	Vars          string   `help:"Read variables from a YAML or JSON file."     placeholder:"PATH"       type:"existingfile"`
	SystemGlobals bool     `help:"Expose host details (env, user, platform, ...) as variables." negatable:""`
}

// Load returns the variables of the --vars file overridden by each --var.
func (v Variables) Load() (map[string]any, error) {
	vars := make(map[string]any)

	if v.Vars != "" {
		b, err := os.ReadFile(v.Vars)
		if err != nil {
			return nil, pkg.ErrReadInput.Wrap(err)
		}

		var file map[string]any
		if err := yaml.Unmarshal(b, &file); err != nil {
			return nil, pkg.ErrDecodeVars.Wrap(err).Wrapf("%s", v.Vars)
		}

		maps.Copy(vars, file)
	}

	for _, kv := range v.Var {
		name, value, err := parseVar(kv)
		if err != nil {
			return nil, err
		}

		vars[name] = value
	}

	return vars, nil
}

// parseVar splits "name=value" and decodes value as YAML. A value that is
// not valid YAML is kept as a string.
func parseVar(kv string) (string, any, error) {
	name, raw, ok := strings.Cut(kv, "=")

	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", nil, pkg.ErrInvalidVar.Wrapf("%q", kv)
	}

	if strings.TrimSpace(raw) == "" {
		return name, raw, nil
	}

	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		return name, raw, nil
	}

	return name, value, nil
}

// Runtime returns a runtime for env honoring --system-globals.
func (v Variables) Runtime(env *lang.Environment) *runtime.Runtime {
	opts := []runtime.Option{runtime.WithLogger(log.Default())}
	if v.SystemGlobals {
		opts = append(opts, runtime.WithSystemGlobals())
	}

	return runtime.New(env, opts...)
}

// Eval compiles and evaluates an expression.
type Eval struct {
	Input     `embed:""`
	Engine    `embed:""`
	Variables `embed:""`

	Output string `default:"json" enum:"json,yaml,text" help:"Output format (${enum})." short:"o"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context, out io.Writer) error {
	src, err := e.Source(ctx)
	if err != nil {
		return err
	}

	vars, err := e.Load()
	if err != nil {
		return err
	}

	env, err := e.Environment()
	if err != nil {
		return err
	}

	result, err := e.Runtime(env).Render(ctx, src, vars)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "evaluated",
		slog.String("template", src.Name),
		slog.Int("vars", len(vars)))

	text, err := formatValue(result, e.Output)
	if err != nil {
		return err
	}

	return writeString(out, text)
}

// formatValue renders an evaluation result. The text format uses the
// string conversion of the template language.
func formatValue(v any, format string) (string, error) {
	if format == "text" {
		return lang.ToString(v), nil
	}

	return marshal(v, format)
}
