package supervisor

import (
	"context"
	"errors"
	"testing"

	"github.com/mediadl/launcher/internal/daemon/backend"
)

func TestStartServer(t *testing.T) {
	h := newHarness(true, 5)

	r := h.cmds.StartServer(context.Background())
	if !r.Success || r.Error != "" {
		t.Fatalf("StartServer() = %+v", r)
	}
	if !h.state.DesiredRun() {
		t.Error("desiredRun should be true after a successful start")
	}
}

func TestStartServerPortInUse(t *testing.T) {
	h := newHarness(true, 5)
	h.probe.online.Store(true)

	r := h.cmds.StartServer(context.Background())
	if r.Success || r.Error != "PortInUse" || r.Message == "" {
		t.Fatalf("StartServer() = %+v, want PortInUse", r)
	}
	if h.state.DesiredRun() {
		t.Error("desiredRun must not be set when the port is already live")
	}
	if launches, _ := h.ctrl.counts(); launches != 0 {
		t.Errorf("launches = %d, want 0", launches)
	}
}

func TestStartServerLaunchFailures(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{backend.ErrRuntimeNotFound, "RuntimeNotFound"},
		{backend.ErrEntryPointMissing, "EntryPointMissing"},
		{backend.ErrDependenciesMissing, "DependenciesMissing"},
		{backend.ErrSpawnFailure, "SpawnFailure"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			h := newHarness(true, 5)
			h.state.SetDesiredRun(true)
			h.ctrl.launchErr = tt.err

			r := h.cmds.StartServer(context.Background())
			if r.Success || r.Error != tt.code {
				t.Fatalf("StartServer() = %+v, want %s", r, tt.code)
			}
			if h.state.DesiredRun() {
				t.Error("desiredRun must become false on a failed start")
			}
			if st := h.cmds.Status(context.Background()); st.LastError != tt.code {
				t.Errorf("status last error = %q, want %q", st.LastError, tt.code)
			}
		})
	}
}

func TestStopServer(t *testing.T) {
	h := newHarness(true, 5)
	h.cmds.StartServer(context.Background())

	r := h.cmds.StopServer(context.Background())
	if !r.Success {
		t.Fatalf("StopServer() = %+v", r)
	}
	if h.state.DesiredRun() {
		t.Error("desiredRun should be false after stop")
	}
}

func TestStopServerNothingRunning(t *testing.T) {
	h := newHarness(true, 5)
	h.cmds.StartServer(context.Background())
	h.ctrl.terminateErr = backend.ErrNoProcessRunning

	r := h.cmds.StopServer(context.Background())
	if r.Success || r.Error != "NoProcessRunning" {
		t.Fatalf("StopServer() = %+v, want NoProcessRunning", r)
	}
	if h.state.DesiredRun() {
		t.Error("desiredRun should be false even when nothing was running")
	}
}

func TestToggleAutoRestart(t *testing.T) {
	h := newHarness(true, 5)

	if r := h.cmds.ToggleAutoRestart(false); !r.Success || r.Message != "Auto-restart disabled" {
		t.Errorf("ToggleAutoRestart(false) = %+v", r)
	}
	if h.cmds.AutoRestart() {
		t.Error("auto-restart still enabled")
	}
	if r := h.cmds.ToggleAutoRestart(true); r.Message != "Auto-restart enabled" {
		t.Errorf("ToggleAutoRestart(true) = %+v", r)
	}
}

func TestSetDesiredRun(t *testing.T) {
	h := newHarness(true, 5)

	if r := h.cmds.SetDesiredRun(true); !r.Success {
		t.Fatalf("SetDesiredRun(true) = %+v", r)
	}
	h.tick(t)
	if got := h.state.Snapshot().RestartAttempts; got != 1 {
		t.Fatalf("attempts = %d, want 1", got)
	}
	h.cmds.SetDesiredRun(false)
	if got := h.state.Snapshot().RestartAttempts; got != 0 {
		t.Errorf("attempts = %d after SetDesiredRun(false), want 0", got)
	}
}

func TestCheckStatus(t *testing.T) {
	h := newHarness(true, 5)
	if h.cmds.CheckStatus(context.Background()) {
		t.Error("offline backend reported online")
	}
	h.probe.online.Store(true)
	if !h.cmds.CheckStatus(context.Background()) {
		t.Error("online backend reported offline")
	}
	if online, _ := h.bcast.Snapshot(); !online {
		t.Error("CheckStatus should feed the broadcaster")
	}
}

func TestOpenBrowser(t *testing.T) {
	h := newHarness(true, 5)

	var opened string
	h.cmds.openURL = func(u string) error { opened = u; return nil }
	if r := h.cmds.OpenBrowser(); !r.Success || opened != "http://localhost:3000" {
		t.Errorf("OpenBrowser() = %+v, opened %q", r, opened)
	}

	h.cmds.openURL = func(string) error { return errors.New("no display") }
	if r := h.cmds.OpenBrowser(); r.Success {
		t.Error("browser failure should be reported")
	}
}

func TestStatusRunning(t *testing.T) {
	h := newHarness(false, 3)
	h.cmds.StartServer(context.Background())
	h.probe.online.Store(true)

	st := h.cmds.Status(context.Background())
	if !st.Online || st.Phase != PhaseRunning || !st.DesiredRun || st.AutoRestart || st.MaxRestartAttempts != 3 {
		t.Errorf("Status() = %+v", st)
	}
	if st.URL != "http://localhost:3000" {
		t.Errorf("URL = %q", st.URL)
	}
}

func TestFlipAutoRestartUsesCurrentState(t *testing.T) {
	h := newHarness(true, 5)

	var seen []bool
	h.cmds.SetOnAutoRestart(func(enabled bool) { seen = append(seen, enabled) })

	// Another client turns it off; the flip must turn it back on.
	h.cmds.ToggleAutoRestart(false)
	enabled, r := h.cmds.FlipAutoRestart()
	if !enabled || r.Message != "Auto-restart enabled" {
		t.Fatalf("FlipAutoRestart() = %v, %+v; want enabled", enabled, r)
	}
	if !h.cmds.AutoRestart() {
		t.Error("state should be enabled after flip")
	}

	want := []bool{false, true}
	if len(seen) != len(want) || seen[0] != want[0] || seen[1] != want[1] {
		t.Errorf("auto-restart notifications = %v, want %v", seen, want)
	}
}
