package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/mediadl/launcher/internal/api"
	"github.com/mediadl/launcher/internal/config"
	"github.com/mediadl/launcher/internal/daemon/probe"
)

var statusJSON bool

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(func(ctx context.Context, c *api.Client) error {
			res, err := c.StartServer(ctx)
			if err != nil {
				return fmt.Errorf("failed to start server: %w", err)
			}
			return printResult(res, "Server started.")
		})
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		running, _, err := config.IsDaemonRunning()
		if err != nil {
			return fmt.Errorf("failed to check daemon status: %w", err)
		}
		if !running {
			fmt.Println(styleHint.Render("Launcher is not running; nothing to stop."))
			return nil
		}
		return withDaemon(func(ctx context.Context, c *api.Client) error {
			res, err := c.StopServer(ctx)
			if err != nil {
				return fmt.Errorf("failed to stop server: %w", err)
			}
			return printResult(res, "Server stopped.")
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var autoRestartCmd = &cobra.Command{
	Use:       "auto-restart [on|off]",
	Short:     "Show or change automatic restart after a crash",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(func(ctx context.Context, c *api.Client) error {
			if len(args) == 0 {
				st, err := c.GetStatus(ctx)
				if err != nil {
					return fmt.Errorf("failed to get status: %w", err)
				}
				fmt.Printf("Auto-restart is %s.\n", onOff(st.AutoRestart))
				return nil
			}

			enabled, err := parseOnOff(args[0])
			if err != nil {
				return err
			}
			res, err := c.ToggleAutoRestart(ctx, enabled)
			if err != nil {
				return fmt.Errorf("failed to toggle auto-restart: %w", err)
			}
			return printResult(res, "")
		})
	},
}

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the server in the default browser",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(func(ctx context.Context, c *api.Client) error {
			res, err := c.OpenBrowser(ctx)
			if err != nil {
				return fmt.Errorf("failed to open browser: %w", err)
			}
			return printResult(res, "")
		})
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print status as JSON")
}

// runStatus asks launcherd for the full view. Without a daemon it probes the
// backend port directly.
func runStatus(cmd *cobra.Command, args []string) error {
	running, _, err := config.IsDaemonRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if !running {
		return printProbeOnly()
	}

	client, closeConn, err := connectDaemon()
	if err != nil {
		return err
	}
	defer closeConn()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	st, err := client.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	if statusJSON {
		return writeJSON(st)
	}
	printServerStatus(st)
	return nil
}

func printProbeOnly() error {
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	b := settings.Backend
	p := probe.New(b.Host, b.Port, settings.Supervisor.ProbeTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), 2*settings.Supervisor.ProbeTimeout)
	defer cancel()
	online := p.IsOnline(ctx)

	if statusJSON {
		return writeJSON(map[string]any{"online": online, "daemon_running": false, "address": p.Addr()})
	}
	fmt.Printf("  %s  %s\n", styleLabel.Render("Server  "), serverState(online))
	fmt.Printf("  %s  %s\n", styleLabel.Render("Address "), styleValue.Render(p.Addr()))
	fmt.Println(styleHint.Render("  Launcher daemon is not running. Start it with 'launcher daemon start'."))
	return nil
}

func printServerStatus(st *api.StatusReply) {
	row := func(label, value string) {
		fmt.Printf("  %s  %s\n", styleLabel.Render(fmt.Sprintf("%-13s", label)), value)
	}

	row("Server", serverState(st.Online))
	row("Phase", styleValue.Render(st.Phase))
	row("URL", styleValue.Render(st.URL))
	row("Keep running", styleValue.Render(yesNo(st.DesiredRun)))
	row("Auto-restart", styleValue.Render(onOff(st.AutoRestart)))
	row("Restarts", styleValue.Render(fmt.Sprintf("%d/%d", st.RestartAttempts, st.MaxRestartAttempts)))
	if st.BackendPid != 0 {
		row("Backend PID", styleValue.Render(fmt.Sprintf("%d", st.BackendPid)))
	}
	if st.LastErrorMessage != "" {
		row("Last error", styleError.Render(st.LastErrorMessage))
	}
}

// printResult reports a command outcome; failures become the command's error.
func printResult(res *api.CommandResult, fallback string) error {
	msg := res.Message
	if msg == "" {
		msg = fallback
	}
	if !res.Success {
		fmt.Fprintln(os.Stderr, styleError.Render("✗ ")+msg)
		return fmt.Errorf("%s", res.Error)
	}
	if msg != "" {
		fmt.Println(styleSuccess.Render("✓ ") + msg)
	}
	return nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func serverState(online bool) string {
	if online {
		return styleSuccess.Render("● online")
	}
	return styleError.Render("● offline")
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "enable", "enabled":
		return true, nil
	case "off", "false", "no", "disable", "disabled":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
