// Package app wires the launcher daemon together: supervisor, control
// server, settings watcher and the backend it owns.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mediadl/launcher/internal/config"
	"github.com/mediadl/launcher/internal/daemon/backend"
	"github.com/mediadl/launcher/internal/daemon/probe"
	"github.com/mediadl/launcher/internal/daemon/server"
	"github.com/mediadl/launcher/internal/daemon/services"
	"github.com/mediadl/launcher/internal/daemon/status"
	"github.com/mediadl/launcher/internal/daemon/supervisor"
	"github.com/mediadl/launcher/internal/daemon/watcher"
	"github.com/mediadl/launcher/internal/logging"
	"github.com/mediadl/launcher/internal/models"
)

// Options configures a daemon run.
type Options struct {
	// ControlPort overrides settings.control.port when non-zero.
	ControlPort int
	// StartBackend starts the backend once services are up.
	StartBackend bool
	// BackendOutput receives backend stdout/stderr. Nil opens logs/backend.log.
	BackendOutput io.Writer
	// SettingsPath enables hot reload of this file when set.
	SettingsPath string
	// OnShutdown is called when a client or the tray asks launcherd to exit.
	OnShutdown func()
}

// App is one running launcher daemon.
type App struct {
	opts   Options
	logger zerolog.Logger

	state *supervisor.State
	probe *probe.Prober
	ctrl  *backend.Controller
	bcast *status.Broadcaster
	loop  *supervisor.Loop
	cmds  *supervisor.Commands
	srv   *server.Server
	tree  *services.Tree

	backendLog *os.File

	settingsMu sync.Mutex
	settings   *models.Settings

	cancel context.CancelFunc
	done   <-chan error
}

// New builds the daemon and binds the control port. Nothing runs until Start.
func New(settings *models.Settings, opts Options) (*App, error) {
	baseDir, err := config.ResolveBaseDir(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve backend directory: %w", err)
	}

	a := &App{
		opts:     opts,
		logger:   logging.With("daemon"),
		settings: settings,
	}

	out := opts.BackendOutput
	if out == nil {
		f, err := config.OpenLogFile(config.BackendLogFileName)
		if err != nil {
			return nil, err
		}
		a.backendLog = f
		out = f
	}

	b := settings.Backend
	sup := settings.Supervisor

	a.probe = probe.New(b.Host, b.Port, sup.ProbeTimeout)
	a.ctrl = backend.NewController(backend.Config{
		Port:            b.Port,
		BaseDir:         baseDir,
		EntryPoint:      b.EntryPoint,
		DependenciesDir: b.DependenciesDir,
		BundledRuntime:  b.BundledRuntime,
		SystemRuntime:   b.SystemRuntime,
		KillByName:      b.KillByName,
		Output:          out,
	}, a.probe)
	a.bcast = status.NewBroadcaster()
	a.state = supervisor.NewState(sup.AutoRestart, sup.MaxRestartAttempts)
	a.loop = supervisor.NewLoop(a.state, a.probe, a.ctrl, a.bcast, supervisor.RealClock(), timingOf(settings))
	a.cmds = supervisor.NewCommands(a.state, a.probe, a.ctrl, a.bcast, BackendURL(settings))

	port := settings.Control.Port
	if opts.ControlPort != 0 {
		port = opts.ControlPort
	}
	svc := server.NewLauncherService(a.cmds, a.bcast, a.RequestShutdown)
	a.srv, err = server.New(port, svc, settings.Control.WebOrigins)
	if err != nil {
		a.closeLog()
		return nil, err
	}

	a.tree = services.NewTree(logging.NewSlogLogger("suture"), services.TreeConfig{})
	a.tree.AddSupervision(a.loop)
	if opts.SettingsPath != "" {
		a.tree.AddSupervision(watcher.New(filepath.Dir(opts.SettingsPath), []string{config.SettingsFileName}, a.reloadSettings))
	}
	a.tree.AddControl(a.srv)

	a.logger.Info().
		Str("backend_dir", baseDir).
		Str("backend_url", BackendURL(settings)).
		Int("max_restart_attempts", sup.MaxRestartAttempts).
		Bool("auto_restart", sup.AutoRestart).
		Msg("Launcher configured")
	return a, nil
}

// BackendURL is the address users open in a browser.
func BackendURL(s *models.Settings) string {
	host := s.Backend.Host
	if host == "127.0.0.1" || host == "0.0.0.0" || host == "" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(s.Backend.Port))
}

func timingOf(s *models.Settings) supervisor.Timing {
	return supervisor.Timing{
		PollInterval: s.Supervisor.PollInterval,
		SettleDelay:  s.Supervisor.SettleDelay,
		StartupGrace: s.Supervisor.StartupGrace,
	}
}

// Commands exposes the command handlers (tray, tests).
func (a *App) Commands() *supervisor.Commands {
	return a.cmds
}

// Broadcaster exposes the status broadcaster so the tray can subscribe.
func (a *App) Broadcaster() *status.Broadcaster {
	return a.bcast
}

// ControlPort returns the bound control port.
func (a *App) ControlPort() int {
	return a.srv.Port()
}

// Start runs the service tree, publishes daemon.yaml and optionally starts
// the backend.
func (a *App) Start(ctx context.Context) error {
	ctx, a.cancel = context.WithCancel(ctx)
	a.done = a.tree.ServeBackground(ctx)

	info := models.NewDaemonInfo(server.Host, a.srv.Port(), os.Getpid())
	if err := config.SaveDaemonInfo(info); err != nil {
		a.cancel()
		return fmt.Errorf("failed to write daemon info: %w", err)
	}
	a.logger.Info().Int("port", a.srv.Port()).Int("pid", os.Getpid()).Msg("Launcher started")

	// Initial observation so the tray reflects a backend that is already up.
	a.cmds.CheckStatus(ctx)

	if a.opts.StartBackend {
		go func() {
			r := a.cmds.StartServer(ctx)
			if !r.Success {
				a.logger.Warn().Str("code", r.Error).Msg(r.Message)
			}
		}()
	}
	return nil
}

// Done receives the service tree's exit error.
func (a *App) Done() <-chan error {
	return a.done
}

// Stop shuts services down, kills the backend this daemon spawned and
// removes daemon.yaml.
func (a *App) Stop() {
	if a.cancel != nil {
		a.cancel()
		select {
		case err := <-a.done:
			if err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Warn().Err(err).Msg("Service tree stopped with error")
			}
		case <-time.After(10 * time.Second):
			a.logger.Warn().Msg("Timed out waiting for services to stop")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.ctrl.Close(ctx)

	if err := config.RemoveDaemonInfo(); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to remove daemon info")
	}
	a.closeLog()
	a.logger.Info().Msg("Launcher stopped")
}

// RequestShutdown asks the owner of this App to exit.
func (a *App) RequestShutdown() {
	if a.opts.OnShutdown != nil {
		a.opts.OnShutdown()
	}
}

func (a *App) closeLog() {
	if a.backendLog != nil {
		_ = a.backendLog.Close()
		a.backendLog = nil
	}
}

func (a *App) reloadSettings(path string) {
	s, err := config.LoadSettingsFrom(path)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Ignoring invalid settings")
		return
	}
	a.ApplySettings(s)
}

// ApplySettings applies the live-reloadable parts of s. Backend location
// and control port changes take effect on the next launcher start.
func (a *App) ApplySettings(s *models.Settings) {
	a.settingsMu.Lock()
	prev := a.settings
	a.settings = s
	a.settingsMu.Unlock()

	a.state.SetMaxRestartAttempts(s.Supervisor.MaxRestartAttempts)
	a.loop.SetTiming(timingOf(s))
	if s.Supervisor.AutoRestart != prev.Supervisor.AutoRestart {
		a.cmds.ToggleAutoRestart(s.Supervisor.AutoRestart)
	}
	if s.Logging.Level != prev.Logging.Level {
		zerolog.SetGlobalLevel(logging.ParseLevel(s.Logging.Level))
	}
	if s.Backend != prev.Backend || s.Control.Port != prev.Control.Port {
		a.logger.Warn().Msg("Backend or control settings changed; restart the launcher to apply them")
	}
	a.logger.Info().
		Dur("poll", s.Supervisor.PollInterval).
		Int("max_restart_attempts", s.Supervisor.MaxRestartAttempts).
		Msg("Settings reloaded")
}
