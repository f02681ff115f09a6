package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mediadl/launcher/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive status panel",
	Args:  cobra.NoArgs,
	RunE:  runUI,
}

func runUI(cmd *cobra.Command, args []string) error {
	if !isTerminal() {
		return fmt.Errorf("the status panel needs an interactive terminal")
	}
	if err := EnsureDaemon(); err != nil {
		return err
	}
	return tui.Run()
}
