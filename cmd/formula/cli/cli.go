// Package cli implements the formula command line.
package cli

import (
	"context"
	"io"

	"github.com/alecthomas/kong"

	"github.com/labtools/formula/internal/log"
)

// CLI is the top-level command-line interface.
type CLI struct {
	LogLevel  string `default:"warn" enum:"debug,info,warn,error" help:"Set log level."  name:"log-level"`
	LogFormat string `default:"text" enum:"json,text"             help:"Set log format." name:"log-format"`

	Eval    Eval    `cmd:"" help:"Evaluate a formula."`
	Refs    Refs    `cmd:"" help:"List the variables a formula references."`
	Resolve Resolve `cmd:"" help:"Resolve the quantities of a sheet."`
}

// Run parses args and executes the selected command. Results go to stdout
// and logs to stderr. The exit function is called by kong for help and usage
// errors.
func Run(
	ctx context.Context,
	stdout, stderr io.Writer,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	parser, err := kong.New(&cli,
		kong.Name("formula"),
		kong.Description("Evaluate laboratory result formulas."),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.Writers(stdout, stderr),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger := log.Make(stderr,
		log.WithLevel(log.ParseLevel(cli.LogLevel)),
		log.WithFormat(log.ParseFormat(cli.LogFormat)),
	)
	ktx.Bind(logger)
	ktx.BindTo(stdout, (*io.Writer)(nil))

	return ktx.Run()
}
