// Package api defines the launcher control service shared by launcherd and
// its clients. Messages travel as JSON over gRPC (see codec.go).
package api

import "google.golang.org/protobuf/types/known/timestamppb"

// ============================================================================
// Message Types
// ============================================================================

// Empty is the request or response of calls that carry no data.
type Empty struct{}

// CommandResult is the outcome of a user command.
type CommandResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// CheckStatusReply reports backend liveness.
type CheckStatusReply struct {
	Online bool `json:"online"`
}

// ToggleAutoRestartRequest enables or disables crash recovery.
type ToggleAutoRestartRequest struct {
	Enabled bool `json:"enabled"`
}

// SetDesiredRunRequest writes the desired-run flag.
type SetDesiredRunRequest struct {
	Run bool `json:"run"`
}

// StatusReply is the full supervisor view.
type StatusReply struct {
	Online             bool                   `json:"online"`
	Phase              string                 `json:"phase"`
	DesiredRun         bool                   `json:"desired_run"`
	AutoRestart        bool                   `json:"auto_restart"`
	RestartAttempts    int32                  `json:"restart_attempts"`
	MaxRestartAttempts int32                  `json:"max_restart_attempts"`
	LastError          string                 `json:"last_error,omitempty"`
	LastErrorMessage   string                 `json:"last_error_message,omitempty"`
	BackendPid         int32                  `json:"backend_pid,omitempty"`
	BackendStartedAt   *timestamppb.Timestamp `json:"backend_started_at,omitempty"`
	URL                string                 `json:"url"`
	DaemonVersion      string                 `json:"daemon_version"`
	DaemonPid          int32                  `json:"daemon_pid"`
	DaemonStartedAt    *timestamppb.Timestamp `json:"daemon_started_at,omitempty"`
}

// WatchStatusRequest opens a liveness change stream.
type WatchStatusRequest struct {
	ClientID string `json:"client_id,omitempty"`
}

// StatusEvent is one liveness transition.
type StatusEvent struct {
	Online bool                   `json:"online"`
	At     *timestamppb.Timestamp `json:"at,omitempty"`
}
