package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mediadl/launcher/internal/api"
)

// Supervisor phases as reported by GetStatus.
const (
	phaseStopped  = "stopped"
	phaseStarting = "starting"
	phaseRunning  = "running"
	phaseRetrying = "crashed-retrying"
	phaseGaveUp   = "gave-up"
)

const appTitle = "Media Downloader"

func renderHeader(st *api.StatusReply, spinner string, width int) string {
	dotStyle := badgeOfflineStyle
	if st != nil && st.Online {
		dotStyle = badgeOnlineStyle
	}
	left := fmt.Sprintf(" %s %s", dotStyle.Render("●"), lipgloss.NewStyle().Bold(true).Render(appTitle))
	if st != nil && st.DaemonVersion != "" {
		left += " " + hintStyle.Render("v"+st.DaemonVersion)
	}

	right := renderServerBadge(st, spinner) + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return headerStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func renderServerBadge(st *api.StatusReply, spinner string) string {
	if st == nil {
		return hintStyle.Render("● Unknown")
	}

	switch st.Phase {
	case phaseRunning:
		return badgeOnlineStyle.Render("● Online")
	case phaseStarting:
		return badgeStartingStyle.Render(spinner + " Starting")
	case phaseRetrying:
		return badgeRetryStyle.Render(fmt.Sprintf("%s Restarting %d/%d", spinner, st.RestartAttempts, st.MaxRestartAttempts))
	case phaseGaveUp:
		return badgeGaveUpStyle.Render("⚠ Gave up")
	}
	if st.Online {
		return badgeOnlineStyle.Render("● Online")
	}
	return badgeOfflineStyle.Render("● Offline")
}

// busy reports whether the spinner should animate.
func busy(st *api.StatusReply) bool {
	return st != nil && (st.Phase == phaseStarting || st.Phase == phaseRetrying)
}
