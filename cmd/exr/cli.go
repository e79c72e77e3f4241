package main

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/exr/pkg"
)

// CLI is the top-level command-line interface for exr.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Expand Expand `cmd:"" default:"withargs" help:"Parse, resolve, and evaluate a source, writing its output"`
	Check  Check  `cmd:""                    help:"Parse and resolve a source without evaluating it"`
}

// run executes the exr CLI with the given context and arguments. The exit
// function is handed to kong, which calls it when argument parsing ends the
// program early (for example after printing help); otherwise run returns
// the command's error.
func run(ctx context.Context, exit func(code int), args ...string) error {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	vars := kong.Vars{}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups([]kong.Group{cli.Log.group(), cli.Pprof.group()}),
		kong.BindSingletonProvider(func() context.Context { return ctx }),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
			Tree:    true,
		}),
		kong.Configuration(kong.JSON, configPath(baseConfig+".json")),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ktx.Bind(cli.Log.build())

	defer cli.Pprof.start()()

	return ktx.Run(ctx, &cli)
}
