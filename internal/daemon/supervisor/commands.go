package supervisor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/browser"
	"github.com/rs/zerolog"

	"github.com/mediadl/launcher/internal/daemon/backend"
	"github.com/mediadl/launcher/internal/daemon/metrics"
	"github.com/mediadl/launcher/internal/logging"
)

// Result is the outcome of a user command.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`   // taxonomy code, e.g. "PortInUse"
	Message string `json:"message,omitempty"` // short human-readable text
}

func ok(msg string) Result {
	return Result{Success: true, Message: msg}
}

func fail(err error) Result {
	return Result{Success: false, Error: Code(err), Message: Message(err)}
}

// Status is a full view of the supervisor for UIs.
type Status struct {
	Online             bool
	Phase              Phase
	DesiredRun         bool
	AutoRestart        bool
	RestartAttempts    int
	MaxRestartAttempts int
	LastError          string // taxonomy code
	LastErrorMessage   string
	PID                int // 0 unless the launcher owns the backend
	BackendStartedAt   time.Time
	URL                string
}

// Commands implements the user-facing operations. Safe for concurrent use
// from RPC handlers and tray callbacks.
type Commands struct {
	state  *State
	probe  Prober
	ctrl   Controller
	obs    Observer
	url    string
	logger zerolog.Logger

	openURL func(string) error

	hookMu        sync.Mutex
	onAutoRestart func(enabled bool)
}

// NewCommands creates the command handlers. url is the backend address shown
// to users and opened by OpenBrowser.
func NewCommands(state *State, probe Prober, ctrl Controller, obs Observer, url string) *Commands {
	return &Commands{
		state:   state,
		probe:   probe,
		ctrl:    ctrl,
		obs:     obs,
		url:     url,
		logger:  logging.With("supervisor"),
		openURL: browser.OpenURL,
	}
}

func record(command string, r Result) Result {
	label := "ok"
	if !r.Success {
		label = r.Error
	}
	metrics.Commands.WithLabelValues(command, label).Inc()
	return r
}

// StartServer launches the backend and, on success, marks it desired.
// A live port fails with PortInUse without spawning.
func (c *Commands) StartServer(ctx context.Context) Result {
	if c.CheckStatus(ctx) {
		err := fmt.Errorf("%w: %s already answers", backend.ErrPortInUse, c.url)
		c.state.MarkStopped(err)
		c.logger.Warn().Err(err).Msg("Start refused")
		return record("start", fail(err))
	}

	h, err := c.ctrl.Launch(ctx)
	if err != nil {
		c.state.MarkStopped(err)
		c.logger.Error().Err(err).Str("code", Code(err)).Msg("Start failed")
		return record("start", fail(err))
	}

	c.state.MarkStarted()
	c.logger.Info().Int("pid", h.PID).Msg("Backend started")
	return record("start", ok("Server started."))
}

// StopServer terminates the backend. Whatever the outcome, the backend is no
// longer desired and the restart counter is reset.
func (c *Commands) StopServer(ctx context.Context) Result {
	err := c.ctrl.Terminate(ctx)
	c.state.MarkStopped(nil)

	switch {
	case err == nil:
		c.logger.Info().Msg("Backend stopped")
		return record("stop", ok("Server stopped."))
	case errors.Is(err, backend.ErrNoProcessRunning):
		c.logger.Info().Msg("Stop requested but no backend was running")
	default:
		c.logger.Error().Err(err).Msg("Stop failed")
	}
	return record("stop", fail(err))
}

// CheckStatus probes the backend and feeds the observation to the broadcaster.
func (c *Commands) CheckStatus(ctx context.Context) bool {
	online := c.probe.IsOnline(ctx)
	c.obs.Observe(online)
	return online
}

// SetOnAutoRestart registers a callback run after every auto-restart change,
// whichever client made it. The tray uses it to keep its checkbox in sync.
func (c *Commands) SetOnAutoRestart(fn func(enabled bool)) {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()
	c.onAutoRestart = fn
}

// ToggleAutoRestart enables or disables crash recovery.
func (c *Commands) ToggleAutoRestart(enabled bool) Result {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()
	c.state.SetAutoRestart(enabled)
	return c.autoRestartChanged(enabled)
}

// FlipAutoRestart inverts crash recovery from its current value, not from
// whatever a client last displayed.
func (c *Commands) FlipAutoRestart() (bool, Result) {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()
	enabled := c.state.FlipAutoRestart()
	return enabled, c.autoRestartChanged(enabled)
}

// autoRestartChanged must be called with hookMu held.
func (c *Commands) autoRestartChanged(enabled bool) Result {
	msg := "Auto-restart disabled"
	if enabled {
		msg = "Auto-restart enabled"
	}
	c.logger.Info().Bool("enabled", enabled).Msg(msg)
	if c.onAutoRestart != nil {
		c.onAutoRestart(enabled)
	}
	return record("toggle_auto_restart", ok(msg))
}

// AutoRestart reports whether crash recovery is enabled.
func (c *Commands) AutoRestart() bool {
	return c.state.AutoRestart()
}

// SetDesiredRun writes the desired-run flag directly.
func (c *Commands) SetDesiredRun(run bool) Result {
	c.state.SetDesiredRun(run)
	return record("set_desired_run", ok(""))
}

// OpenBrowser opens the backend URL in the default browser.
func (c *Commands) OpenBrowser() Result {
	if err := c.openURL(c.url); err != nil {
		c.logger.Warn().Err(err).Str("url", c.url).Msg("Failed to open browser")
		return record("open_browser", Result{Error: "BrowserFailure", Message: "Failed to open the browser: " + err.Error()})
	}
	return record("open_browser", ok(""))
}

// Status probes the backend and returns the combined supervisor view.
func (c *Commands) Status(ctx context.Context) Status {
	online := c.CheckStatus(ctx)
	snap := c.state.Snapshot()
	h := c.ctrl.Handle()

	st := Status{
		Online:             online,
		Phase:              PhaseOf(snap, online, h != nil),
		DesiredRun:         snap.DesiredRun,
		AutoRestart:        snap.AutoRestart,
		RestartAttempts:    snap.RestartAttempts,
		MaxRestartAttempts: snap.MaxRestartAttempts,
		LastError:          Code(snap.LastErr),
		LastErrorMessage:   Message(snap.LastErr),
		URL:                c.url,
	}
	if h != nil {
		st.PID = h.PID
		st.BackendStartedAt = h.StartedAt
	}
	return st
}
