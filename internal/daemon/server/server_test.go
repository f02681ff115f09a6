package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mediadl/launcher/internal/api"
	"github.com/mediadl/launcher/internal/daemon/backend"
	"github.com/mediadl/launcher/internal/daemon/status"
	"github.com/mediadl/launcher/internal/daemon/supervisor"
)

type stubProber struct{ online atomic.Bool }

func (p *stubProber) IsOnline(context.Context) bool { return p.online.Load() }

type stubController struct{ launched atomic.Int32 }

func (c *stubController) Launch(context.Context) (*backend.Handle, error) {
	c.launched.Add(1)
	return &backend.Handle{PID: 77, StartedAt: time.Now()}, nil
}
func (c *stubController) Terminate(context.Context) error { return backend.ErrNoProcessRunning }
func (c *stubController) Handle() *backend.Handle         { return nil }

func startServer(t *testing.T) (*Server, *stubProber, *status.Broadcaster, chan struct{}) {
	t.Helper()
	probe := &stubProber{}
	bcast := status.NewBroadcaster()
	cmds := supervisor.NewCommands(supervisor.NewState(true, 5), probe, &stubController{}, bcast, "http://localhost:3000")

	shutdown := make(chan struct{}, 1)
	svc := NewLauncherService(cmds, bcast, func() { shutdown <- struct{}{} })
	srv, err := New(0, svc, []string{"http://localhost"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return srv, probe, bcast, shutdown
}

func dial(t *testing.T, srv *Server) *api.Client {
	t.Helper()
	conn, err := api.Dial(Host, srv.Port(), "test")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return api.NewClient(conn)
}

func TestGRPCCommands(t *testing.T) {
	srv, probe, _, shutdown := startServer(t)
	c := dial(t, srv)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r, err := c.StartServer(ctx)
	if err != nil {
		t.Fatalf("StartServer: %v", err)
	}
	if !r.Success {
		t.Errorf("StartServer() = %+v", r)
	}

	probe.online.Store(true)
	st, err := c.GetStatus(ctx)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if !st.Online || st.Phase != string(supervisor.PhaseRunning) || !st.DesiredRun {
		t.Errorf("GetStatus() = %+v", st)
	}
	if st.DaemonPid == 0 || st.DaemonVersion == "" {
		t.Errorf("daemon identity missing: %+v", st)
	}

	r, err = c.StopServer(ctx)
	if err != nil {
		t.Fatalf("StopServer: %v", err)
	}
	if r.Success || r.Error != "NoProcessRunning" {
		t.Errorf("StopServer() = %+v, want NoProcessRunning", r)
	}

	if err := c.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	select {
	case <-shutdown:
	case <-time.After(2 * time.Second):
		t.Error("shutdown callback not invoked")
	}
}

func TestWatchStatusStreamsTransitions(t *testing.T) {
	srv, _, bcast, _ := startServer(t)
	c := dial(t, srv)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	w, err := c.WatchStatus(ctx, "test")
	if err != nil {
		t.Fatalf("WatchStatus: %v", err)
	}
	first, err := w.Recv()
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if first.Online {
		t.Error("initial event should be offline")
	}

	bcast.Observe(true)
	ev, err := w.Recv()
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if !ev.Online || ev.At == nil {
		t.Errorf("event = %+v, want online with timestamp", ev)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _, bcast, _ := startServer(t)
	bcast.Observe(true)

	resp, err := http.Get(fmt.Sprintf("http://%s:%d/metrics", Host, srv.Port()))
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "mdlauncher_backend_online 1") {
		t.Error("metrics output missing backend_online gauge")
	}
}

func TestOriginAllowed(t *testing.T) {
	allow := originAllowed([]string{"http://localhost", "http://127.0.0.1"})
	tests := []struct {
		origin string
		want   bool
	}{
		{"http://localhost", true},
		{"http://localhost:3000", true},
		{"http://127.0.0.1:5173", true},
		{"https://evil.example", false},
		{"http://localhost.evil.example", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			if got := allow(tt.origin); got != tt.want {
				t.Errorf("originAllowed(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}

	if !originAllowed([]string{"*"})("https://anything") {
		t.Error("wildcard should admit every origin")
	}
}
