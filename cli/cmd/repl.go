package cmd

import (
	"context"

	"github.com/ardnew/stencil/cli/cmd/repl"
	"github.com/ardnew/stencil/log"
)

// Repl starts an interactive session. Variables set with --var and --vars
// are the initial session variables.
type Repl struct {
	Engine    `embed:""`
	Variables `embed:""`

	NoHistory bool `help:"Do not read or write the history file."`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	vars, err := r.Load()
	if err != nil {
		return err
	}

	env, err := r.Environment()
	if err != nil {
		return err
	}

	var cacheDir string
	if ktx := kongContextFrom(ctx); ktx != nil && !r.NoHistory {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	logger := log.Default()

	return repl.Run(ctx, repl.NewSession(r.Runtime(env), vars, logger), cacheDir, logger)
}
