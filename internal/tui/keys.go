package tui

import "github.com/charmbracelet/bubbles/key"

// GlobalKeys are always active.
type GlobalKeys struct {
	Quit key.Binding
	Help key.Binding
}

var globalKeys = GlobalKeys{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
}

// ServerKeys drive the supervisor.
type ServerKeys struct {
	Start       key.Binding
	Stop        key.Binding
	AutoRestart key.Binding
	Open        key.Binding
	Refresh     key.Binding
}

var serverKeys = ServerKeys{
	Start: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "start"),
	),
	Stop: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "stop"),
	),
	AutoRestart: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "auto-restart"),
	),
	Open: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
}

// ActivityKeys scroll the activity panel.
type ActivityKeys struct {
	Up   key.Binding
	Down key.Binding
}

var activityKeys = ActivityKeys{
	Up: key.NewBinding(
		key.WithKeys("up", "k", "pgup"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j", "pgdown"),
	),
}

// ConfirmKeys for inline confirmation prompts.
type ConfirmKeys struct {
	Yes    key.Binding
	No     key.Binding
	Cancel key.Binding
}

var confirmKeys = ConfirmKeys{
	Yes: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "confirm"),
	),
	No: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "cancel"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "cancel"),
	),
}
