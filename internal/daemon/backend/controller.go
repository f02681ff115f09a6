// Package backend launches and terminates the Node.js backend server.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mediadl/launcher/internal/daemon/metrics"
	"github.com/mediadl/launcher/internal/logging"
)

// exitWait bounds how long Terminate waits for a killed child to be reaped.
const exitWait = 5 * time.Second

// Config describes where the backend lives and how to run it.
type Config struct {
	Port            int
	BaseDir         string
	EntryPoint      string // relative to BaseDir
	DependenciesDir string // relative to BaseDir
	BundledRuntime  string // directory relative to BaseDir
	SystemRuntime   string // executable name looked up in PATH
	KillByName      bool   // allow killing every process named like the runtime as a last resort
	VersionTimeout  time.Duration
	Output          io.Writer // backend stdout/stderr; nil discards
}

// PortChecker reports whether something accepts connections on the backend port.
type PortChecker interface {
	IsOnline(ctx context.Context) bool
}

// Handle identifies a backend process spawned by the Controller.
// It becomes invalid once the process exits.
type Handle struct {
	PID       int
	Runtime   string
	StartedAt time.Time

	cmd     *exec.Cmd
	done    chan struct{}
	exitErr error
}

// Done is closed when the process has exited and been reaped.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Alive reports whether the process has not exited yet.
func (h *Handle) Alive() bool {
	if h == nil {
		return false
	}
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// ExitErr returns the wait error once Done is closed.
func (h *Handle) ExitErr() error {
	<-h.done
	return h.exitErr
}

// Controller starts and stops the backend. Launches are serialized: a launch
// never overlaps another launch or a terminate.
type Controller struct {
	cfg    Config
	ports  PortChecker
	logger zerolog.Logger

	mu     sync.Mutex
	handle *Handle
	onExit func(*Handle)

	// process inspection, replaceable in tests
	findPortOwner func(ctx context.Context, port int) (int32, error)
	findByName    func(ctx context.Context, name string) ([]int32, error)
	kill          func(ctx context.Context, pid int32) error
	killTree      func(pid int) error
}

// NewController creates a controller for the given backend layout.
func NewController(cfg Config, ports PortChecker) *Controller {
	if cfg.Output == nil {
		cfg.Output = io.Discard
	}
	return &Controller{
		cfg:           cfg,
		ports:         ports,
		logger:        logging.With("backend"),
		findPortOwner: portOwner,
		findByName:    pidsByName,
		kill:          killPID,
		killTree:      killTree,
	}
}

// SetOnExit sets a callback invoked after a spawned backend exits.
func (c *Controller) SetOnExit(fn func(*Handle)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onExit = fn
}

// Handle returns the live backend handle, or nil if the controller does not own one.
func (c *Controller) Handle() *Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle.Alive() {
		return c.handle
	}
	return nil
}

// Running reports whether a backend spawned by this controller is still alive.
func (c *Controller) Running() bool {
	return c.Handle() != nil
}

// Launch validates the backend layout, checks the port is free and spawns
// the backend detached. It returns once the process has started; readiness
// is observed by later probes.
func (c *Controller) Launch(ctx context.Context) (*Handle, error) {
	h, err := c.launch(ctx)
	if err != nil {
		metrics.BackendLaunches.WithLabelValues(Code(err)).Inc()
		return nil, err
	}
	metrics.BackendLaunches.WithLabelValues("ok").Inc()
	return h, nil
}

func (c *Controller) launch(ctx context.Context) (*Handle, error) {
	rt, err := ResolveRuntime(ctx, c.cfg.BaseDir, c.cfg.BundledRuntime, c.cfg.SystemRuntime, c.cfg.VersionTimeout)
	if err != nil {
		return nil, err
	}

	entry := filepath.Join(c.cfg.BaseDir, c.cfg.EntryPoint)
	if info, err := os.Stat(entry); err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrEntryPointMissing, entry)
	}
	deps := filepath.Join(c.cfg.BaseDir, c.cfg.DependenciesDir)
	if info, err := os.Stat(deps); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrDependenciesMissing, deps)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle.Alive() {
		return nil, fmt.Errorf("%w: backend pid %d is still running", ErrPortInUse, c.handle.PID)
	}
	if c.ports.IsOnline(ctx) {
		return nil, fmt.Errorf("%w: port %d", ErrPortInUse, c.cfg.Port)
	}

	// Not CommandContext: the backend must outlive the request that started it.
	cmd := exec.Command(rt.Path, c.cfg.EntryPoint)
	cmd.Dir = c.cfg.BaseDir
	cmd.Stdout = c.cfg.Output
	cmd.Stderr = c.cfg.Output
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawnFailure, err)
	}

	h := &Handle{
		PID:       cmd.Process.Pid,
		Runtime:   rt.Path,
		StartedAt: time.Now(),
		cmd:       cmd,
		done:      make(chan struct{}),
	}
	c.handle = h
	go c.reap(h)

	c.logger.Info().
		Int("pid", h.PID).
		Str("runtime", rt.Path).
		Bool("bundled", rt.Bundled).
		Str("dir", c.cfg.BaseDir).
		Msg("Backend spawned")
	return h, nil
}

func (c *Controller) reap(h *Handle) {
	h.exitErr = h.cmd.Wait()
	close(h.done)

	c.mu.Lock()
	if c.handle == h {
		c.handle = nil
	}
	onExit := c.onExit
	c.mu.Unlock()

	ev := c.logger.Info()
	if h.exitErr != nil {
		ev = c.logger.Warn().Err(h.exitErr)
	}
	ev.Int("pid", h.PID).Dur("uptime", time.Since(h.StartedAt)).Msg("Backend exited")

	if onExit != nil {
		onExit(h)
	}
}

// Terminate stops the backend. It kills the owned child if there is one,
// otherwise whatever listens on the backend port, and as a last resort
// (when enabled) every process named like the runtime. Returns
// ErrNoProcessRunning when nothing was found.
func (c *Controller) Terminate(ctx context.Context) error {
	err := c.terminate(ctx)
	switch {
	case err == nil:
		metrics.BackendTerminations.WithLabelValues("ok").Inc()
	default:
		metrics.BackendTerminations.WithLabelValues(Code(err)).Inc()
	}
	return err
}

func (c *Controller) terminate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if h := c.handle; h.Alive() {
		return c.killOwned(ctx, h)
	}

	pid, err := c.findPortOwner(ctx, c.cfg.Port)
	if err != nil {
		c.logger.Debug().Err(err).Msg("Port owner lookup failed")
	}
	if pid > 0 {
		c.logger.Info().Int32("pid", pid).Int("port", c.cfg.Port).Msg("Killing port owner")
		if err := c.kill(ctx, pid); err != nil {
			return fmt.Errorf("%w: pid %d: %v", ErrTerminateFailed, pid, err)
		}
		return nil
	}

	if !c.cfg.KillByName {
		return ErrNoProcessRunning
	}

	name := exeName(filepath.Base(c.cfg.SystemRuntime))
	pids, err := c.findByName(ctx, name)
	if err != nil {
		return fmt.Errorf("%w: listing processes: %v", ErrTerminateFailed, err)
	}
	if len(pids) == 0 {
		return ErrNoProcessRunning
	}

	// Imprecise: this also hits unrelated processes with the same name.
	c.logger.Warn().Str("name", name).Int("count", len(pids)).Msg("Killing processes by name")
	var errs []error
	for _, pid := range pids {
		if err := c.kill(ctx, pid); err != nil {
			errs = append(errs, fmt.Errorf("pid %d: %w", pid, err))
		}
	}
	if len(errs) == len(pids) {
		return fmt.Errorf("%w: %v", ErrTerminateFailed, errors.Join(errs...))
	}
	return nil
}

// killOwned must be called with c.mu held. The reaper closes done before
// taking the lock, so waiting here cannot deadlock.
func (c *Controller) killOwned(ctx context.Context, h *Handle) error {
	c.logger.Info().Int("pid", h.PID).Msg("Killing backend")
	if err := c.killTree(h.PID); err != nil && h.Alive() {
		return fmt.Errorf("%w: pid %d: %v", ErrTerminateFailed, h.PID, err)
	}

	timer := time.NewTimer(exitWait)
	defer timer.Stop()
	select {
	case <-h.done:
	case <-timer.C:
		c.logger.Warn().Int("pid", h.PID).Msg("Backend not reaped after kill")
	case <-ctx.Done():
	}
	return nil
}

// Close kills the backend only if this controller spawned it.
func (c *Controller) Close(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h := c.handle; h.Alive() {
		_ = c.killOwned(ctx, h)
	}
}
