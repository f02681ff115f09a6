// Package cmd implements the launcherd command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mediadl/launcher/internal/config"
	"github.com/mediadl/launcher/internal/daemon/app"
	"github.com/mediadl/launcher/internal/daemon/tray"
	"github.com/mediadl/launcher/internal/logging"
	"github.com/mediadl/launcher/internal/models"
)

var (
	foreground   bool
	controlPort  int
	startBackend bool
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "launcherd",
	Short: "Media Downloader launcher daemon",
	Long: `launcherd starts, stops and supervises the local Media Downloader server.
It shows the server status in the system tray and restarts the server if it crashes.`,
	SilenceUsage: true,
	RunE:         run,
}

// Execute runs the daemon command line.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().BoolVar(&foreground, "foreground", false, "Run in foreground (no system tray)")
	rootCmd.Flags().IntVar(&controlPort, "port", 0, "Control port (0 uses settings, then dynamic allocation)")
	rootCmd.Flags().BoolVar(&startBackend, "start", false, "Start the backend server immediately")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
}

func run(_ *cobra.Command, _ []string) error {
	if err := config.EnsureGlobalDir(); err != nil {
		return fmt.Errorf("failed to create global directory: %w", err)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	if logLevel != "" {
		settings.Logging.Level = logLevel
	}

	logFile, err := config.OpenLogFile(config.DaemonLogFileName)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logging.Init(logging.Config{
		Level:  settings.Logging.Level,
		Format: settings.Logging.Format,
		Extra:  logFile,
	})
	log := logging.With("daemon")

	release, err := config.AcquireInstanceLock()
	if err != nil {
		return err
	}
	defer release()

	running, info, err := config.IsDaemonRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if running {
		return fmt.Errorf("launcher already running on port %d (PID %d)", info.Port, info.PID)
	}

	settingsPath, err := config.GlobalSettingsFile()
	if err != nil {
		return err
	}
	opts := app.Options{
		ControlPort:  controlPort,
		StartBackend: startBackend,
		SettingsPath: settingsPath,
	}

	if foreground {
		log.Info().Msg("Running in foreground mode (no system tray)")
		return runForeground(settings, opts)
	}
	log.Info().Msg("Running in background mode (with system tray)")
	return runWithTray(settings, opts)
}

// runForeground runs the daemon without a system tray, blocking on signals.
func runForeground(settings *models.Settings, opts app.Options) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	opts.OnShutdown = stop

	a, err := app.New(settings, opts)
	if err != nil {
		return err
	}
	if err := a.Start(ctx); err != nil {
		return err
	}

	log := logging.With("daemon")
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
	case err := <-a.Done():
		log.Error().Err(err).Msg("Services stopped unexpectedly")
	}

	a.Stop()
	fmt.Println("Launcher stopped")
	return nil
}

// runWithTray runs the daemon with a system tray icon on the main goroutine.
// systray.Run must occupy the main goroutine on macOS (Cocoa requirement).
func runWithTray(settings *models.Settings, opts app.Options) error {
	opts.OnShutdown = tray.Quit

	a, err := app.New(settings, opts)
	if err != nil {
		return err
	}
	a.Broadcaster().SetOnChange(tray.SetOnline)
	a.Commands().SetOnAutoRestart(tray.SetAutoRestart)

	log := logging.With("daemon")
	var startErr error

	onStart := func() {
		if startErr = a.Start(context.Background()); startErr != nil {
			tray.Quit()
			return
		}

		go func() {
			if err := <-a.Done(); err != nil {
				log.Error().Err(err).Msg("Services stopped unexpectedly")
			}
			tray.Quit()
		}()

		// Quit tray on SIGINT/SIGTERM
		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			log.Info().Str("signal", sig.String()).Msg("Shutting down")
			tray.Quit()
		}()
	}

	onExit := func() {
		a.Stop()
		fmt.Println("Launcher stopped")
	}

	// This blocks the main goroutine until tray exits.
	tray.Run(a.TrayActions(), onStart, onExit)
	return startErr
}
