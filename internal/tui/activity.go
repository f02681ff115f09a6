package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxActivityEntries = 200

// activityKind selects the color of an activity line.
type activityKind int

const (
	activityInfo activityKind = iota
	activityGood
	activityBad
)

type activityEntry struct {
	at   time.Time
	kind activityKind
	text string
}

// ActivityLog is a scrollable history of status transitions and command results.
type ActivityLog struct {
	viewport viewport.Model
	entries  []activityEntry
}

// NewActivityLog creates an empty activity log.
func NewActivityLog() *ActivityLog {
	return &ActivityLog{viewport: viewport.New(0, 0)}
}

// SetSize resizes the visible area.
func (a *ActivityLog) SetSize(width, height int) {
	a.viewport.Width = width
	a.viewport.Height = height
	a.render()
}

// Add appends an entry and scrolls to it.
func (a *ActivityLog) Add(at time.Time, kind activityKind, text string) {
	a.entries = append(a.entries, activityEntry{at: at, kind: kind, text: text})
	if len(a.entries) > maxActivityEntries {
		a.entries = a.entries[len(a.entries)-maxActivityEntries:]
	}
	a.render()
	a.viewport.GotoBottom()
}

// Len returns the number of retained entries.
func (a *ActivityLog) Len() int {
	return len(a.entries)
}

// Last returns the text of the newest entry.
func (a *ActivityLog) Last() string {
	if len(a.entries) == 0 {
		return ""
	}
	return a.entries[len(a.entries)-1].text
}

// Update forwards scroll keys to the viewport.
func (a *ActivityLog) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return cmd
}

// View renders the visible part of the log.
func (a *ActivityLog) View() string {
	if len(a.entries) == 0 {
		return hintStyle.Render("No activity yet")
	}
	return a.viewport.View()
}

func (a *ActivityLog) render() {
	lines := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		lines = append(lines, activityTimeStyle.Render(e.at.Format("15:04:05"))+" "+styleFor(e.kind).Render(e.text))
	}
	a.viewport.SetContent(strings.Join(lines, "\n"))
}

func styleFor(kind activityKind) lipgloss.Style {
	switch kind {
	case activityGood:
		return activityGoodStyle
	case activityBad:
		return activityBadStyle
	default:
		return activityInfoStyle
	}
}
