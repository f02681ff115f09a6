// Package cli implements the launcher CLI commands.
package cli

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rootCmd = &cobra.Command{
	Use:   "launcher",
	Short: "Start, stop and watch the local Media Downloader server",
	Long: `launcher controls the Media Downloader server through the launcherd daemon.
Run it without arguments in a terminal to open the interactive status panel.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isTerminal() {
			return runStatus(cmd, args)
		}
		return runUI(cmd, args)
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add subcommands (alphabetical)
	rootCmd.AddCommand(autoRestartCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(uiCmd)
	rootCmd.AddCommand(versionCmd)
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
