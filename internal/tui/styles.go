package tui

import "github.com/charmbracelet/lipgloss"

// Colors using AdaptiveColor for light/dark terminal support.
var (
	colorWhite  = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorOrange = lipgloss.AdaptiveColor{Light: "166", Dark: "208"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
)

// Layout styles.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Background(lipgloss.AdaptiveColor{Light: "235", Dark: "236"})

	panelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim)

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)
)

// Server badge styles.
var (
	badgeOnlineStyle   = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	badgeOfflineStyle  = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	badgeStartingStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	badgeRetryStyle    = lipgloss.NewStyle().Foreground(colorOrange).Bold(true)
	badgeGaveUpStyle   = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
)

// Server panel styles.
var (
	fieldLabelStyle = lipgloss.NewStyle().
			Width(14).
			Foreground(colorDim)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	toggleOnStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	toggleOffStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	errorTextStyle = lipgloss.NewStyle().
			Foreground(colorRed)
)

// Activity log styles.
var (
	activityTimeStyle = lipgloss.NewStyle().Foreground(colorDim)
	activityGoodStyle = lipgloss.NewStyle().Foreground(colorGreen)
	activityBadStyle  = lipgloss.NewStyle().Foreground(colorRed)
	activityInfoStyle = lipgloss.NewStyle().Foreground(colorWhite)
)

// Overlay styles.
var (
	overlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorWhite).
			Padding(1, 2)

	overlayTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorWhite).
				MarginBottom(1)

	overlayDimStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)

// Key hint styles for status bar.
var (
	keyStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	hintStyle = lipgloss.NewStyle().Foreground(colorDim)
)
