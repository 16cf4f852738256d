package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/ardnew/stencil/cli"
	"github.com/ardnew/stencil/cli/render"
	"github.com/ardnew/stencil/lang"
	"github.com/ardnew/stencil/log"
)

func main() {
	err := cli.Run(context.Background(), os.Exit, os.Args[1:]...)
	if err == nil {
		return
	}

	var se *lang.SyntaxError
	if errors.As(err, &se) {
		_ = render.Diagnostic(os.Stderr, err)
	} else {
		log.Error("run failed", slog.Any("error", err))
	}

	os.Exit(1)
}
