package app

import (
	"context"
	"time"
)

// trayTimeout bounds one tray-initiated command.
const trayTimeout = 30 * time.Second

// TrayActions adapts the command handlers to the tray menu.
type TrayActions struct {
	app *App
}

// TrayActions returns the tray adapter for this daemon.
func (a *App) TrayActions() *TrayActions {
	return &TrayActions{app: a}
}

func (t *TrayActions) Start() (bool, string) {
	ctx, cancel := context.WithTimeout(context.Background(), trayTimeout)
	defer cancel()
	r := t.app.cmds.StartServer(ctx)
	return r.Success, r.Message
}

func (t *TrayActions) Stop() (bool, string) {
	ctx, cancel := context.WithTimeout(context.Background(), trayTimeout)
	defer cancel()
	r := t.app.cmds.StopServer(ctx)
	return r.Success, r.Message
}

func (t *TrayActions) ToggleAutoRestart() (bool, string) {
	enabled, r := t.app.cmds.FlipAutoRestart()
	return enabled, r.Message
}

func (t *TrayActions) AutoRestart() bool {
	return t.app.cmds.AutoRestart()
}

func (t *TrayActions) OpenBrowser() (bool, string) {
	r := t.app.cmds.OpenBrowser()
	return r.Success, r.Message
}

func (t *TrayActions) URL() string {
	t.app.settingsMu.Lock()
	defer t.app.settingsMu.Unlock()
	return BackendURL(t.app.settings)
}

func (t *TrayActions) RequestShutdown() {
	t.app.RequestShutdown()
}
