package supervisor

import (
	"errors"
	"testing"

	"github.com/mediadl/launcher/internal/daemon/backend"
)

func TestNewStateDefaults(t *testing.T) {
	s := NewState(true, 5).Snapshot()
	if s.DesiredRun || !s.AutoRestart || s.RestartAttempts != 0 || s.MaxRestartAttempts != 5 {
		t.Errorf("snapshot = %+v", s)
	}
}

func TestBeginRestartDecisions(t *testing.T) {
	s := NewState(true, 2)

	if d, _ := s.BeginRestart(); d != RestartIdle {
		t.Errorf("not desired: decision = %v, want RestartIdle", d)
	}

	s.MarkStarted()
	for want := 1; want <= 2; want++ {
		d, attempt := s.BeginRestart()
		if d != RestartLaunch || attempt != want {
			t.Fatalf("decision = %v attempt = %d, want RestartLaunch %d", d, attempt, want)
		}
	}

	d, attempt := s.BeginRestart()
	if d != RestartGaveUp || attempt != 2 {
		t.Fatalf("decision = %v attempt = %d, want RestartGaveUp 2", d, attempt)
	}
	snap := s.Snapshot()
	if snap.DesiredRun || !snap.GaveUp || !errors.Is(snap.LastErr, ErrRestartBudgetExhausted) {
		t.Errorf("after give up: %+v", snap)
	}
	if snap.RestartAttempts != 0 {
		t.Errorf("attempts = %d, want reset to 0 when desiredRun dropped", snap.RestartAttempts)
	}

	if d, _ := s.BeginRestart(); d != RestartIdle {
		t.Errorf("after give up: decision = %v, want RestartIdle", d)
	}
}

func TestBeginRestartDisabled(t *testing.T) {
	s := NewState(false, 5)
	s.MarkStarted()

	if d, _ := s.BeginRestart(); d != RestartDisabled {
		t.Errorf("decision = %v, want RestartDisabled", d)
	}
	if !s.DesiredRun() {
		t.Error("disabled auto-restart must not touch desiredRun")
	}
}

func TestSetDesiredRunResetsAttempts(t *testing.T) {
	s := NewState(true, 5)
	s.SetDesiredRun(true)
	s.BeginRestart()
	s.BeginRestart()

	s.SetDesiredRun(false)
	if got := s.Snapshot().RestartAttempts; got != 0 {
		t.Errorf("attempts = %d after desiredRun -> false", got)
	}
}

func TestMarkStoppedKeepsError(t *testing.T) {
	s := NewState(true, 5)
	s.MarkStopped(backend.ErrPortInUse)

	snap := s.Snapshot()
	if snap.DesiredRun || !errors.Is(snap.LastErr, backend.ErrPortInUse) {
		t.Errorf("snapshot = %+v", snap)
	}

	s.MarkStarted()
	if s.Snapshot().LastErr != nil {
		t.Error("successful start should clear the last error")
	}
}

func TestSetMaxRestartAttemptsClamps(t *testing.T) {
	s := NewState(true, 5)
	s.MarkStarted()
	for i := 0; i < 4; i++ {
		s.BeginRestart()
	}

	s.SetMaxRestartAttempts(2)
	snap := s.Snapshot()
	if snap.RestartAttempts != 2 || snap.MaxRestartAttempts != 2 {
		t.Errorf("snapshot = %+v, want attempts clamped to 2", snap)
	}
}

func TestPhaseOf(t *testing.T) {
	tests := []struct {
		name     string
		snap     StateSnapshot
		online   bool
		starting bool
		want     Phase
	}{
		{"stopped", StateSnapshot{}, false, false, PhaseStopped},
		{"stopped but port live", StateSnapshot{}, true, false, PhaseStopped},
		{"gave up", StateSnapshot{GaveUp: true}, false, false, PhaseGaveUp},
		{"running", StateSnapshot{DesiredRun: true}, true, false, PhaseRunning},
		{"starting", StateSnapshot{DesiredRun: true}, false, true, PhaseStarting},
		{"retrying", StateSnapshot{DesiredRun: true, RestartAttempts: 2}, false, false, PhaseRetrying},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PhaseOf(tt.snap, tt.online, tt.starting); got != tt.want {
				t.Errorf("PhaseOf() = %v, want %v", got, tt.want)
			}
		})
	}
}
