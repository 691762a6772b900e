// Package main is the entry point for the apimodel CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/apimodel/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands print their own errors; only report what they could not.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
