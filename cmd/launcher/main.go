// Package main is the entry point for the launcher CLI/TUI.
package main

import (
	"os"

	"github.com/mediadl/launcher/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
