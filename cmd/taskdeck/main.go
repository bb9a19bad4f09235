// Package main provides the entry point for the taskdeck CLI.
package main

import (
	"os"

	"github.com/randalmurphal/taskdeck/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
