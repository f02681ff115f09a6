package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mediadl/launcher/internal/api"
	"github.com/mediadl/launcher/internal/buildinfo"
	"github.com/mediadl/launcher/internal/config"
)

// loadDaemonInfo is replaced in tests.
var loadDaemonInfo = config.LoadDaemonInfo

func connectDaemonCmd() tea.Cmd {
	return func() tea.Msg {
		info, err := loadDaemonInfo()
		if err != nil || info == nil {
			return DaemonUnavailableMsg{Err: fmt.Errorf("launcher not running")}
		}

		conn, err := api.Dial(info.Host, info.Port, buildinfo.UserAgent("tui"))
		if err != nil {
			return DaemonUnavailableMsg{Err: err}
		}

		return DaemonConnectedMsg{Conn: conn, Client: api.NewClient(conn)}
	}
}

func getStatusCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		st, err := client.GetStatus(ctx)
		if err != nil {
			if isConnectionLost(err) {
				return DaemonDisconnectedMsg{}
			}
			return ErrorMsg{Err: fmt.Errorf("failed to get status: %w", err)}
		}
		return StatusMsg{Status: st}
	}
}

// commandCmd runs one supervisor command. Starting can take as long as the
// runtime version check, so the deadline is generous.
func commandCmd(action string, run func(ctx context.Context) (*api.CommandResult, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		res, err := run(ctx)
		if err != nil {
			if isConnectionLost(err) {
				return DaemonDisconnectedMsg{}
			}
			return ErrorMsg{Err: fmt.Errorf("failed to %s: %w", action, err)}
		}
		return CommandResultMsg{Action: action, Result: res}
	}
}

func startServerCmd(client *api.Client) tea.Cmd {
	return commandCmd("start server", client.StartServer)
}

func stopServerCmd(client *api.Client) tea.Cmd {
	return commandCmd("stop server", client.StopServer)
}

func toggleAutoRestartCmd(client *api.Client, enabled bool) tea.Cmd {
	return commandCmd("toggle auto-restart", func(ctx context.Context) (*api.CommandResult, error) {
		return client.ToggleAutoRestart(ctx, enabled)
	})
}

func openBrowserCmd(client *api.Client) tea.Cmd {
	return commandCmd("open browser", client.OpenBrowser)
}

// watchStatusCmd streams liveness transitions into the program until ctx is
// cancelled or the stream breaks.
func watchStatusCmd(ctx context.Context, client *api.Client, program *programRef) tea.Cmd {
	return func() tea.Msg {
		w, err := client.WatchStatus(ctx, "tui-"+uuid.NewString())
		if err != nil {
			return WatchEndedMsg{}
		}
		for {
			ev, err := w.Recv()
			if err != nil {
				return WatchEndedMsg{}
			}
			program.Send(StatusEventMsg{Event: ev})
		}
	}
}

func pollStatusTick() tea.Cmd {
	return tea.Tick(2*time.Second, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

func clearErrorAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return ClearErrorMsg{}
	})
}

func clearNoticeAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return ClearNoticeMsg{}
	})
}

func reconnectTick() tea.Cmd {
	return tea.Tick(3*time.Second, func(_ time.Time) tea.Msg {
		return ReconnectMsg{}
	})
}

// isConnectionLost checks if a gRPC error indicates the server is gone.
func isConnectionLost(err error) bool {
	code := status.Code(err)
	return code == codes.Unavailable || code == codes.Canceled
}
