// Package tray implements the system tray icon and menu for launcherd.
package tray

// Actions is what the tray menu can do. Implementations must not block the
// tray goroutine for long; the tray calls them from a worker goroutine.
type Actions interface {
	Start() (ok bool, message string)
	Stop() (ok bool, message string)
	// ToggleAutoRestart flips the current setting and returns the new value.
	ToggleAutoRestart() (enabled bool, message string)
	AutoRestart() bool
	OpenBrowser() (ok bool, message string)
	URL() string
	RequestShutdown()
}
