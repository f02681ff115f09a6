// Package services assembles launcherd's suture supervisor tree.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// TreeConfig holds supervisor tree configuration.
type TreeConfig struct {
	FailureThreshold float64       // failures before backoff; default 5
	FailureDecay     float64       // seconds; default 30
	FailureBackoff   time.Duration // default 15s
	ShutdownTimeout  time.Duration // default 5s
}

// Tree is the launcherd service hierarchy:
//   - supervision: the supervisor loop and the settings watcher
//   - control: the gRPC/metrics server
//
// A crash in the control layer does not stop backend supervision.
type Tree struct {
	root        *suture.Supervisor
	supervision *suture.Supervisor
	control     *suture.Supervisor
}

// NewTree creates the tree. Events are logged through logger.
func NewTree(logger *slog.Logger, cfg TreeConfig) *Tree {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.FailureDecay == 0 {
		cfg.FailureDecay = 30
	}
	if cfg.FailureBackoff == 0 {
		cfg.FailureBackoff = 15 * time.Second
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}

	handler := &sutureslog.Handler{Logger: logger}

	spec := suture.Spec{
		FailureThreshold: cfg.FailureThreshold,
		FailureDecay:     cfg.FailureDecay,
		FailureBackoff:   cfg.FailureBackoff,
		Timeout:          cfg.ShutdownTimeout,
	}
	rootSpec := spec
	rootSpec.EventHook = handler.MustHook()

	t := &Tree{
		root:        suture.New("launcherd", rootSpec),
		supervision: suture.New("supervision", spec),
		control:     suture.New("control", spec),
	}
	t.root.Add(t.supervision)
	t.root.Add(t.control)
	return t
}

// AddSupervision adds a service to the supervision layer.
func (t *Tree) AddSupervision(svc suture.Service) suture.ServiceToken {
	return t.supervision.Add(svc)
}

// AddControl adds a service to the control layer.
func (t *Tree) AddControl(svc suture.Service) suture.ServiceToken {
	return t.control.Add(svc)
}

// ServeBackground starts the tree; the channel receives its exit error.
func (t *Tree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services that ignored the shutdown timeout.
func (t *Tree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
