// Package main implements the chronolog binary: an append-only,
// versioned store for projects, tasks, and time tracking.
package main

import (
	"fmt"
	"os"

	"github.com/chronolog/chronolog/internal/cli"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
