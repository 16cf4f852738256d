package cli

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/stencil/cli/cmd"
	"github.com/ardnew/stencil/pkg"
)

// CLI is the top-level command-line interface for stencil.
type CLI struct {
	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Init    cmd.Init    `cmd:"" help:"Initialize configuration file"`
	Compile cmd.Compile `cmd:"" help:"Compile an expression to expr-lang source"`
	AST     cmd.AST     `cmd:"" help:"Print the syntax tree of an expression"     name:"ast"`
	Symbols cmd.Symbols `cmd:"" help:"List registered functions, filters, and tests"`
	Repl    cmd.Repl    `cmd:"" help:"Start an interactive session"`

	Eval cmd.Eval `cmd:"" default:"withargs" help:"Evaluate an expression"`
}

// Run executes the stencil CLI with the given context and arguments,
// writing command output to os.Stdout. The exit function is called with the
// appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	return run(ctx, exit, os.Stdout, pkg.ConfigFile(), args...)
}

func run(
	ctx context.Context,
	exit func(code int),
	stdout io.Writer,
	configFile string,
	args ...string,
) error {
	var cli CLI

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFile,
		cmd.CacheIdentifier:  pkg.CacheDir(),
		"version":            pkg.Name + " " + pkg.Version,
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Apply logger flags before kong parses, so that parse errors are
	// already logged with the requested settings.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.Writers(stdout, os.Stderr),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.BindTo(stdout, (*io.Writer)(nil)),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(resolve, configFile),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	defer cli.Log.start(ctx)()
	defer cli.Pprof.start(ctx)()

	return ktx.Run()
}
