// Command formula evaluates formulas and resolves sheets of named quantities.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/labtools/formula/cmd/formula/cli"
	"github.com/labtools/formula/internal/log"
)

func main() {
	err := cli.Run(context.Background(), os.Stdout, os.Stderr, os.Exit, os.Args[1:]...)
	if err != nil {
		log.Make(os.Stderr, log.WithFormat(log.FormatText)).Error(
			"run failed",
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
