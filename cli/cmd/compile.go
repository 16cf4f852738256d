package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/stencil/log"
)

// Compile prints the expr-lang source generated for an expression.
type Compile struct {
	Input  `embed:""`
	Engine `embed:""`
}

// Run executes the compile command.
func (c *Compile) Run(ctx context.Context, out io.Writer) error {
	src, err := c.Source(ctx)
	if err != nil {
		return err
	}

	env, err := c.Environment()
	if err != nil {
		return err
	}

	code, err := env.CompileSource(ctx, src)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "compiled",
		slog.String("template", src.Name),
		slog.Int("bytes", len(code)))

	return writeString(out, code)
}
