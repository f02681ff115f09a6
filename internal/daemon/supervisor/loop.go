package supervisor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mediadl/launcher/internal/daemon/backend"
	"github.com/mediadl/launcher/internal/logging"
)

// Prober reports backend liveness.
type Prober interface {
	IsOnline(ctx context.Context) bool
}

// Controller launches and terminates the backend.
type Controller interface {
	Launch(ctx context.Context) (*backend.Handle, error)
	Terminate(ctx context.Context) error
	Handle() *backend.Handle
}

// Observer receives every liveness observation.
type Observer interface {
	Observe(online bool) bool
}

// Timing controls the loop cadence.
type Timing struct {
	PollInterval time.Duration // between probes
	SettleDelay  time.Duration // extra pause after a launch before the next probe
	StartupGrace time.Duration // how long a spawned backend may take to bind its port
}

// Loop periodically reconciles observed liveness with the desired state.
// It implements suture.Service.
type Loop struct {
	state  *State
	probe  Prober
	ctrl   Controller
	obs    Observer
	clock  Clock
	logger zerolog.Logger

	mu     sync.Mutex
	timing Timing
}

// NewLoop creates the supervisor loop.
func NewLoop(state *State, probe Prober, ctrl Controller, obs Observer, clock Clock, timing Timing) *Loop {
	if clock == nil {
		clock = RealClock()
	}
	return &Loop{
		state:  state,
		probe:  probe,
		ctrl:   ctrl,
		obs:    obs,
		clock:  clock,
		logger: logging.With("supervisor"),
		timing: timing,
	}
}

// SetTiming replaces the loop cadence; it applies from the next tick.
func (l *Loop) SetTiming(t Timing) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.timing = t
}

func (l *Loop) getTiming() Timing {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.timing
}

// String names the service in the suture tree.
func (l *Loop) String() string {
	return "supervisor-loop"
}

// Serve runs the loop until ctx is cancelled.
func (l *Loop) Serve(ctx context.Context) error {
	l.logger.Info().Dur("poll", l.getTiming().PollInterval).Msg("Supervisor loop started")
	wait := l.getTiming().PollInterval
	for {
		select {
		case <-ctx.Done():
			l.logger.Info().Msg("Supervisor loop stopped")
			return ctx.Err()
		case <-l.clock.After(wait):
		}
		wait = l.Tick(ctx)
	}
}

// Tick runs one reconciliation pass and returns how long to wait before the
// next one.
func (l *Loop) Tick(ctx context.Context) time.Duration {
	timing := l.getTiming()

	online := l.probe.IsOnline(ctx)
	l.obs.Observe(online)

	if online {
		l.state.ObserveOnline()
		return timing.PollInterval
	}

	h := l.ctrl.Handle()
	if h != nil && l.state.DesiredRun() && l.clock.Now().Sub(h.StartedAt) < timing.StartupGrace {
		l.logger.Debug().Int("pid", h.PID).Msg("Backend still starting")
		return timing.PollInterval
	}

	decision, attempt := l.state.BeginRestart()
	switch decision {
	case RestartIdle, RestartDisabled:
		return timing.PollInterval
	case RestartGaveUp:
		l.logger.Error().Int("max_attempts", attempt).Msg("Backend keeps crashing; gave up restarting")
		return timing.PollInterval
	}

	if h != nil {
		l.logger.Warn().Int("pid", h.PID).Msg("Backend alive but not listening; killing it before restart")
		if err := l.ctrl.Terminate(ctx); err != nil {
			l.logger.Warn().Err(err).Msg("Failed to kill hung backend")
		}
	}

	l.logger.Warn().
		Int("attempt", attempt).
		Int("max_attempts", l.state.Snapshot().MaxRestartAttempts).
		Msg("Backend crashed; restarting")

	if _, err := l.ctrl.Launch(ctx); err != nil {
		l.logger.Error().Err(err).Str("code", Code(err)).Int("attempt", attempt).Msg("Restart failed")
	}
	return timing.SettleDelay + timing.PollInterval
}
