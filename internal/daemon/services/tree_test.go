package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/mediadl/launcher/internal/logging"
)

type countingService struct {
	starts atomic.Int32
	fail   bool
}

func (s *countingService) Serve(ctx context.Context) error {
	s.starts.Add(1)
	if s.fail {
		return errors.New("boom")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *countingService) String() string { return "counting" }

func TestTreeRunsAndRestartsServices(t *testing.T) {
	tree := NewTree(logging.NewSlogLogger("suture"), TreeConfig{FailureBackoff: 10 * time.Millisecond})

	steady := &countingService{}
	flaky := &countingService{fail: true}
	tree.AddSupervision(steady)
	tree.AddControl(flaky)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for flaky.starts.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if flaky.starts.Load() < 2 {
		t.Error("failing service was not restarted")
	}
	if steady.starts.Load() != 1 {
		t.Errorf("steady service started %d times, want 1", steady.starts.Load())
	}

	cancel()
	select {
	case <-errCh:
	case <-time.After(5 * time.Second):
		t.Fatal("tree did not stop")
	}
}

func TestTreeStopsOnTerminate(t *testing.T) {
	tree := NewTree(logging.NewSlogLogger("suture"), TreeConfig{})
	tree.AddControl(terminating{})

	select {
	case <-tree.ServeBackground(context.Background()):
	case <-time.After(5 * time.Second):
		t.Fatal("tree kept running after ErrTerminateSupervisorTree")
	}
}

type terminating struct{}

func (terminating) Serve(context.Context) error { return suture.ErrTerminateSupervisorTree }
