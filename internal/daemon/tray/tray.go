package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
	"github.com/rs/zerolog"

	"github.com/mediadl/launcher/internal/daemon/tray/icon"
	"github.com/mediadl/launcher/internal/logging"
)

// AppName is shown as the tray header and tooltip prefix.
const AppName = "Media Downloader"

var (
	actions Actions
	onStart func()
	onExit  func()
	logger  zerolog.Logger

	statusItem  *systray.MenuItem
	messageItem *systray.MenuItem
	startItem   *systray.MenuItem
	stopItem    *systray.MenuItem
	autoItem    *systray.MenuItem
	openItem    *systray.MenuItem
	quitItem    *systray.MenuItem

	// status applied once the menu exists
	mu     sync.Mutex
	ready  bool
	online bool
)

// Run starts the system tray. This blocks the calling goroutine (must be main).
// onStartFn is called when the tray is ready (start services here).
// onExitFn is called when the tray exits (cleanup here).
func Run(a Actions, onStartFn, onExitFn func()) {
	actions = a
	onStart = onStartFn
	onExit = onExitFn
	logger = logging.With("tray")
	systray.Run(onReady, onQuit)
}

// Quit signals the tray to exit.
func Quit() {
	systray.Quit()
}

func onReady() {
	systray.SetIcon(icon.Bytes(false))
	systray.SetTitle("")
	systray.SetTooltip(formatTooltip(false))

	header := systray.AddMenuItem(AppName, "")
	header.Disable()

	statusItem = systray.AddMenuItem(formatStatus(false), "")
	statusItem.Disable()

	messageItem = systray.AddMenuItem("", "")
	messageItem.Disable()
	messageItem.Hide()

	systray.AddSeparator()

	startItem = systray.AddMenuItem("Start server", "Start the backend server")
	stopItem = systray.AddMenuItem("Stop server", "Stop the backend server")
	autoItem = systray.AddMenuItemCheckbox("Auto-restart", "Restart the server if it crashes", actions.AutoRestart())
	openItem = systray.AddMenuItem("Open in browser", actions.URL())

	systray.AddSeparator()
	quitItem = systray.AddMenuItem("Quit", "Stop the server and exit")

	mu.Lock()
	ready = true
	current := online
	mu.Unlock()
	render(current)
	SetAutoRestart(actions.AutoRestart())

	if onStart != nil {
		onStart()
	}

	go handleClicks()
}

func onQuit() {
	if onExit != nil {
		onExit()
	}
}

func handleClicks() {
	for {
		select {
		case <-startItem.ClickedCh:
			go func() { showResult(actions.Start()) }()
		case <-stopItem.ClickedCh:
			go func() { showResult(actions.Stop()) }()
		case <-autoItem.ClickedCh:
			enabled, msg := actions.ToggleAutoRestart()
			SetAutoRestart(enabled)
			showResult(true, msg)
		case <-openItem.ClickedCh:
			go func() {
				if ok, msg := actions.OpenBrowser(); !ok {
					showResult(ok, msg)
				}
			}()
		case <-quitItem.ClickedCh:
			logger.Info().Msg("Quit requested from tray")
			actions.RequestShutdown()
			return
		}
	}
}

// SetOnline updates the icon and status line. Safe to call before the tray
// is ready and from any goroutine.
func SetOnline(isOnline bool) {
	mu.Lock()
	online = isOnline
	isReady := ready
	mu.Unlock()

	if isReady {
		render(isOnline)
	}
}

// SetAutoRestart syncs the auto-restart checkbox with the supervisor. Safe to
// call before the tray is ready and from any goroutine.
func SetAutoRestart(enabled bool) {
	mu.Lock()
	isReady := ready
	mu.Unlock()

	if !isReady {
		return
	}
	if enabled {
		autoItem.Check()
	} else {
		autoItem.Uncheck()
	}
}

func render(isOnline bool) {
	systray.SetIcon(icon.Bytes(isOnline))
	systray.SetTooltip(formatTooltip(isOnline))
	statusItem.SetTitle(formatStatus(isOnline))
	if isOnline {
		startItem.Disable()
		stopItem.Enable()
	} else {
		startItem.Enable()
	}
}

func showResult(ok bool, message string) {
	if message == "" {
		messageItem.Hide()
		return
	}
	prefix := "✓ "
	if !ok {
		prefix = "⚠ "
		logger.Warn().Str("message", message).Msg("Tray action failed")
	}
	messageItem.SetTitle(prefix + message)
	messageItem.Show()
}

func formatStatus(isOnline bool) string {
	if isOnline {
		return "● Server online"
	}
	return "○ Server offline"
}

func formatTooltip(isOnline bool) string {
	if isOnline {
		return fmt.Sprintf("%s - server online", AppName)
	}
	return fmt.Sprintf("%s - server offline", AppName)
}
