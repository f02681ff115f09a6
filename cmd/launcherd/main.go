// Package main is the entry point for the launcherd daemon.
package main

import (
	"os"

	"github.com/mediadl/launcher/internal/daemon/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
