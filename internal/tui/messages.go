package tui

import (
	"google.golang.org/grpc"

	"github.com/mediadl/launcher/internal/api"
)

// DaemonConnectedMsg signals a successful gRPC connection.
type DaemonConnectedMsg struct {
	Conn   *grpc.ClientConn
	Client *api.Client
}

// DaemonUnavailableMsg signals launcherd could not be reached.
type DaemonUnavailableMsg struct {
	Err error
}

// DaemonDisconnectedMsg signals the daemon connection was lost.
type DaemonDisconnectedMsg struct{}

// StatusMsg carries the supervisor view from GetStatus.
type StatusMsg struct {
	Status *api.StatusReply
}

// StatusEventMsg carries one liveness transition from WatchStatus.
type StatusEventMsg struct {
	Event *api.StatusEvent
}

// WatchEndedMsg signals the status stream ended.
type WatchEndedMsg struct{}

// CommandResultMsg carries the outcome of a user command.
type CommandResultMsg struct {
	Action string
	Result *api.CommandResult
}

// ErrorMsg carries an error to display.
type ErrorMsg struct {
	Err error
}

// TickMsg is a periodic tick for polling.
type TickMsg struct{}

// ClearErrorMsg clears the error display.
type ClearErrorMsg struct{}

// ClearNoticeMsg clears the command feedback line.
type ClearNoticeMsg struct{}

// ReconnectMsg triggers a reconnection attempt.
type ReconnectMsg struct{}
