package cmd

import (
	"context"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/stencil/lang"
	"github.com/ardnew/stencil/pkg"
)

// AST prints the syntax tree of an expression, an assignment target list,
// or a macro argument list.
type AST struct {
	Input  `embed:""`
	Engine `embed:""`

	Mode   string `default:"expression" enum:"expression,assignment,arguments" help:"What the input is parsed as (${enum})." short:"m"`
	Format string `default:"text"       enum:"text,yaml,json"                   help:"Output format (${enum})."              short:"o"`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context, out io.Writer) error {
	src, err := a.Source(ctx)
	if err != nil {
		return err
	}

	env, err := a.Environment()
	if err != nil {
		return err
	}

	var nodes []*lang.Node

	switch a.Mode {
	case "assignment":
		nodes, err = env.ParseAssignment(ctx, src)

	case "arguments":
		var n *lang.Node

		n, err = env.ParseMacroArguments(ctx, src)
		nodes = []*lang.Node{n}

	default:
		var n *lang.Node

		n, err = env.Parse(ctx, src)
		nodes = []*lang.Node{n}
	}

	if err != nil {
		return err
	}

	text, err := formatNodes(nodes, a.Format)
	if err != nil {
		return err
	}

	return writeString(out, text)
}

func formatNodes(nodes []*lang.Node, format string) (string, error) {
	switch format {
	case "text":
		parts := make([]string, len(nodes))
		for i, n := range nodes {
			parts[i] = strings.TrimRight(n.String(), "\n")
		}

		return strings.Join(parts, "\n"), nil

	case "json", "yaml":
		var v any

		if len(nodes) == 1 {
			v = nodes[0].ToMap()
		} else {
			list := make([]any, len(nodes))
			for i, n := range nodes {
				list[i] = n.ToMap()
			}

			v = list
		}

		return marshal(v, format)

	default:
		return "", pkg.ErrInvalidFormat.Wrapf("%q", format)
	}
}

// marshal encodes v as indented JSON or as YAML, without a trailing
// newline.
func marshal(v any, format string) (string, error) {
	switch format {
	case "json":
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", pkg.ErrJSONMarshal.Wrap(err)
		}

		return string(b), nil

	case "yaml":
		b, err := yaml.Marshal(v)
		if err != nil {
			return "", pkg.ErrYAMLMarshal.Wrap(err)
		}

		return strings.TrimRight(string(b), "\n"), nil

	default:
		return "", pkg.ErrInvalidFormat.Wrapf("%q", format)
	}
}
