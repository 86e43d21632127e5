// Package main provides the surveysync CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/surveysync/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands print their own diagnostics; only bare cobra errors
		// (unknown flag, wrong arg count) reach here unreported.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
