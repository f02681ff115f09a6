// Package supervisor keeps the backend running while the user wants it to,
// restarting it after crashes under a bounded retry budget.
package supervisor

import (
	"sync"

	"github.com/mediadl/launcher/internal/daemon/metrics"
)

// Phase is the user-visible supervisor state.
type Phase string

// Supervisor phases.
const (
	PhaseStopped  Phase = "stopped"
	PhaseStarting Phase = "starting"
	PhaseRunning  Phase = "running"
	PhaseRetrying Phase = "crashed-retrying"
	PhaseGaveUp   Phase = "gave-up"
)

// State is the supervisor's mutable state. Every read-modify-write goes
// through one of the named transitions below, each under the same mutex.
type State struct {
	mu                 sync.Mutex
	desiredRun         bool
	autoRestart        bool
	restartAttempts    int
	maxRestartAttempts int
	lastErr            error
	gaveUp             bool
}

// StateSnapshot is a consistent copy of State.
type StateSnapshot struct {
	DesiredRun         bool
	AutoRestart        bool
	RestartAttempts    int
	MaxRestartAttempts int
	LastErr            error
	GaveUp             bool
}

// NewState creates the state for one launcher process. desiredRun starts false.
func NewState(autoRestart bool, maxRestartAttempts int) *State {
	if maxRestartAttempts < 0 {
		maxRestartAttempts = 0
	}
	return &State{
		autoRestart:        autoRestart,
		maxRestartAttempts: maxRestartAttempts,
	}
}

// setAttempts must be called with s.mu held.
func (s *State) setAttempts(n int) {
	s.restartAttempts = n
	metrics.RestartAttempts.Set(float64(n))
}

// MarkStarted records a successful explicit start.
func (s *State) MarkStarted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.desiredRun = true
	s.gaveUp = false
	s.lastErr = nil
	s.setAttempts(0)
}

// MarkStopped records an explicit stop or a failed start. err is kept as the
// last user-visible error; nil clears it.
func (s *State) MarkStopped(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.desiredRun = false
	s.gaveUp = false
	s.lastErr = err
	s.setAttempts(0)
}

// SetDesiredRun writes the desired-run flag directly. Any transition resets
// the restart counter.
func (s *State) SetDesiredRun(run bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.desiredRun != run {
		s.setAttempts(0)
	}
	if run {
		s.gaveUp = false
		s.lastErr = nil
	}
	s.desiredRun = run
}

// SetAutoRestart toggles automatic crash recovery. desiredRun is untouched.
func (s *State) SetAutoRestart(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoRestart = enabled
}

// FlipAutoRestart inverts the auto-restart flag and returns the new value.
func (s *State) FlipAutoRestart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoRestart = !s.autoRestart
	return s.autoRestart
}

// SetMaxRestartAttempts changes the restart cap, clamping the current counter.
func (s *State) SetMaxRestartAttempts(limit int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit < 0 {
		limit = 0
	}
	s.maxRestartAttempts = limit
	if s.restartAttempts > limit {
		s.setAttempts(limit)
	}
}

// ObserveOnline records a live observation.
func (s *State) ObserveOnline() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setAttempts(0)
}

// RestartDecision is the outcome of BeginRestart.
type RestartDecision int

// Restart decisions.
const (
	// RestartIdle: not desired; counter reset, nothing to do.
	RestartIdle RestartDecision = iota
	// RestartDisabled: desired but auto-restart is off; crash left alone.
	RestartDisabled
	// RestartLaunch: an attempt was consumed; the caller must launch.
	RestartLaunch
	// RestartGaveUp: the cap was reached; desiredRun is now false.
	RestartGaveUp
)

// BeginRestart decides, atomically, what to do about an offline backend.
// The check and increment of the counter happen under one lock so a
// concurrent stop cannot be lost. attempt is the counter after the call
// for RestartLaunch and the cap for RestartGaveUp.
func (s *State) BeginRestart() (decision RestartDecision, attempt int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case !s.desiredRun:
		s.setAttempts(0)
		return RestartIdle, 0
	case !s.autoRestart:
		return RestartDisabled, s.restartAttempts
	case s.restartAttempts < s.maxRestartAttempts:
		s.setAttempts(s.restartAttempts + 1)
		return RestartLaunch, s.restartAttempts
	default:
		s.desiredRun = false
		s.gaveUp = true
		s.lastErr = ErrRestartBudgetExhausted
		s.setAttempts(0)
		metrics.GaveUpTotal.Inc()
		return RestartGaveUp, s.maxRestartAttempts
	}
}

// DesiredRun reports whether the backend should be running.
func (s *State) DesiredRun() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.desiredRun
}

// AutoRestart reports whether crash recovery is enabled.
func (s *State) AutoRestart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoRestart
}

// Snapshot returns a consistent copy of the state.
func (s *State) Snapshot() StateSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StateSnapshot{
		DesiredRun:         s.desiredRun,
		AutoRestart:        s.autoRestart,
		RestartAttempts:    s.restartAttempts,
		MaxRestartAttempts: s.maxRestartAttempts,
		LastErr:            s.lastErr,
		GaveUp:             s.gaveUp,
	}
}

// PhaseOf derives the user-visible phase. starting is true while a backend
// the launcher spawned is alive but not yet accepting connections.
func PhaseOf(s StateSnapshot, online, starting bool) Phase {
	switch {
	case !s.DesiredRun && s.GaveUp:
		return PhaseGaveUp
	case !s.DesiredRun:
		return PhaseStopped
	case online:
		return PhaseRunning
	case starting:
		return PhaseStarting
	default:
		return PhaseRetrying
	}
}
