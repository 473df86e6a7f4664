// Package main is the entry point for the grocer CLI.
package main

import (
	"os"

	"grocer/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
