package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/mediadl/launcher/internal/api"
)

// panelLayout holds computed dimensions for the two-panel layout.
type panelLayout struct {
	leftWidth     int
	rightWidth    int
	contentHeight int
}

func computeLayout(width, height int, splitRatio float64) panelLayout {
	// Reserve: 1 line header, 1 line status bar
	contentHeight := height - 2
	if contentHeight < 1 {
		contentHeight = 1
	}

	leftWidth := int(float64(width) * splitRatio)
	rightWidth := width - leftWidth

	if leftWidth < 10 {
		leftWidth = 10
	}
	if rightWidth < 10 {
		rightWidth = 10
	}

	return panelLayout{
		leftWidth:     leftWidth,
		rightWidth:    rightWidth,
		contentHeight: contentHeight,
	}
}

// innerSize returns the content area of a bordered panel.
func innerSize(width, height int) (int, int) {
	w, h := width-2, height-3 // borders plus title line
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

func renderPanels(leftTitle, leftContent, rightTitle, rightContent string, layout panelLayout) string {
	leftInner, innerHeight := innerSize(layout.leftWidth, layout.contentHeight)
	rightInner, _ := innerSize(layout.rightWidth, layout.contentHeight)

	left := panelBorderStyle.
		Width(leftInner).
		Height(innerHeight + 1).
		Render(panelTitleStyle.Render(leftTitle) + "\n" + truncateContent(leftContent, leftInner, innerHeight))

	right := panelBorderStyle.
		Width(rightInner).
		Height(innerHeight + 1).
		Render(panelTitleStyle.Render(rightTitle) + "\n" + truncateContent(rightContent, rightInner, innerHeight))

	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

// truncateContent ensures content fits within the given dimensions.
func truncateContent(content string, width, height int) string {
	lines := strings.Split(content, "\n")

	// Limit to height
	if len(lines) > height {
		lines = lines[:height]
	}

	// Truncate long lines (ANSI-aware)
	for i, line := range lines {
		if lipgloss.Width(line) > width {
			lines[i] = ansi.Truncate(line, width, "…")
		}
	}

	return strings.Join(lines, "\n")
}

// renderServerPanel lists the supervisor fields.
func renderServerPanel(st *api.StatusReply, now time.Time) string {
	if st == nil {
		return hintStyle.Render("Waiting for status...")
	}

	onOff := func(b bool, on, off string) string {
		if b {
			return toggleOnStyle.Render(on)
		}
		return toggleOffStyle.Render(off)
	}

	rows := []string{
		field("Server", onOff(st.Online, "online", "offline")),
		field("Phase", fieldValueStyle.Render(st.Phase)),
		field("URL", fieldValueStyle.Render(st.URL)),
		field("Keep running", onOff(st.DesiredRun, "yes", "no")),
		field("Auto-restart", onOff(st.AutoRestart, "on", "off")),
		field("Restarts", fieldValueStyle.Render(fmt.Sprintf("%d/%d", st.RestartAttempts, st.MaxRestartAttempts))),
	}

	if st.BackendPid != 0 {
		pid := fmt.Sprintf("%d", st.BackendPid)
		if st.BackendStartedAt != nil {
			pid += hintStyle.Render(" up " + formatUptime(now.Sub(st.BackendStartedAt.AsTime())))
		}
		rows = append(rows, field("Backend PID", fieldValueStyle.Render(pid)))
	}

	if st.LastErrorMessage != "" {
		rows = append(rows, "", field("Last error", errorTextStyle.Render(st.LastErrorMessage)))
	}

	launcher := fmt.Sprintf("PID %d", st.DaemonPid)
	if st.DaemonStartedAt != nil {
		launcher += hintStyle.Render(" up " + formatUptime(now.Sub(st.DaemonStartedAt.AsTime())))
	}
	rows = append(rows, "", field("Launcher", fieldValueStyle.Render(launcher)))

	return strings.Join(rows, "\n")
}

func field(label, value string) string {
	return fieldLabelStyle.Render(label) + value
}

func formatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return d.Truncate(time.Second).String()
}
