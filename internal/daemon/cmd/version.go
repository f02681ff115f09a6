package cmd

import (
	"fmt"
	"io"
	"net"
	"runtime"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mediadl/launcher/internal/buildinfo"
	"github.com/mediadl/launcher/internal/config"
	"github.com/mediadl/launcher/internal/daemon/app"
)

var (
	dStyleBrand   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "30", Dark: "45"})
	dStyleVersion = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "40"})
	dStyleLabel   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "242", Dark: "240"})
	dStyleValue   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "0", Dark: "15"})
)

var daemonVersionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Show version and where this launcher serves",
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(daemonVersionCmd)
}

// printVersion shows build info, the backend URL from settings and, when a
// launcher is running, its control endpoint from daemon.yaml.
func printVersion(w io.Writer) {
	row := func(label, value string) {
		fmt.Fprintf(w, "    %s %s\n", dStyleLabel.Render(fmt.Sprintf("%-8s", label)), dStyleValue.Render(value))
	}

	fmt.Fprintf(w, "  %s %s\n", dStyleBrand.Render("launcherd"), dStyleVersion.Render(buildinfo.Version))
	row("Commit", buildinfo.CommitHash)
	row("Built", buildinfo.BuildDate)
	row("OS/Arch", runtime.GOOS+"/"+runtime.GOARCH)

	if settings, err := config.LoadSettings(); err == nil {
		row("Backend", app.BackendURL(settings))
	}

	running, info, err := config.IsDaemonRunning()
	switch {
	case err != nil || !running || info == nil:
		row("Control", "not running")
	default:
		row("Control", fmt.Sprintf("%s (PID %d)", net.JoinHostPort(info.Host, strconv.Itoa(info.Port)), info.PID))
	}
}
