package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/klauspost/readahead"

	"github.com/ardnew/stencil/lang"
	"github.com/ardnew/stencil/lang/token"
	"github.com/ardnew/stencil/log"
	"github.com/ardnew/stencil/pkg"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdinSource is the special --file value for reading from stdin.
const stdinSource = "-"

// Input selects the expression a command operates on.
type Input struct {
	Expr string `arg:""   help:"Expression source"                                 optional:""`
	File string `short:"f" help:"Read the expression from a file or '-' for stdin" placeholder:"PATH"`
	Name string `short:"n" help:"Template name used in diagnostics"`
}

// Source returns the expression named by in. The template name defaults to
// the base name of --file.
func (in Input) Source(ctx context.Context) (token.Source, error) {
	switch {
	case in.Expr != "" && in.File != "":
		return token.Source{}, ErrInputConflict

	case in.File == "":
		if in.Expr == "" {
			return token.Source{}, ErrNoInput
		}

		return token.Source{Name: in.Name, Code: in.Expr}, nil
	}

	name := in.Name
	if name == "" && in.File != stdinSource {
		name = filepath.Base(in.File)
	}

	code, err := readFile(ctx, in.File)
	if err != nil {
		return token.Source{}, err
	}

	return token.Source{Name: name, Code: code}, nil
}

// readFile reads path, or stdin when path is "-", through a read-ahead
// buffer.
func readFile(ctx context.Context, path string) (string, error) {
	var r io.Reader = os.Stdin

	if path != stdinSource {
		f, err := os.Open(path)
		if err != nil {
			return "", pkg.ErrReadInput.Wrap(err)
		}
		defer f.Close()

		r = f
	}

	ra := readahead.NewReader(r)
	defer ra.Close()

	b, err := io.ReadAll(ra)
	if err != nil {
		return "", pkg.ErrReadInput.Wrap(err)
	}

	log.TraceContext(ctx, "input read",
		slog.String("path", path),
		slog.Int("bytes", len(b)))

	return string(b), nil
}

// Engine holds the parser settings shared by commands.
type Engine struct {
	StringConcat bool `help:"Fold adjacent string literals into a concatenation." negatable:""`
}

// Environment returns a new environment with the core symbols.
func (e Engine) Environment() (*lang.Environment, error) {
	return lang.NewEnvironment(
		lang.WithLogger(log.Default()),
		lang.WithStringConcat(e.StringConcat),
	)
}

// writeString writes s and a trailing newline to w.
func writeString(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s+"\n"); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
