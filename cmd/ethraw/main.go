// Package main is the entry point for the ethraw CLI.
package main

import (
	"os"

	"github.com/nexeth/ethraw/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
