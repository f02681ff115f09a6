package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"google.golang.org/grpc"

	"github.com/mediadl/launcher/internal/api"
)

const (
	minWidth  = 60
	minHeight = 16
)

var errNotConnected = errors.New("not connected to launcher")

// Model is the root Bubbletea model for the status panel.
type Model struct {
	// gRPC connection
	conn      *grpc.ClientConn
	client    *api.Client
	connected bool

	status *api.StatusReply

	// UI state
	showHelp    bool
	confirmMode int
	splitRatio  float64
	width       int
	height      int

	// Status display
	err    error
	notice string

	activity *ActivityLog
	spinner  spinner.Model

	// Program reference for goroutine Send()
	program *programRef

	// Streaming state
	polling        bool
	watching       bool
	spinnerRunning bool
	streamCtx      context.Context
	streamCancel   context.CancelFunc

	now func() time.Time
}

// NewModel creates the initial model.
func NewModel(program *programRef) Model {
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		splitRatio:   0.45,
		activity:     NewActivityLog(),
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		program:      program,
		streamCtx:    ctx,
		streamCancel: cancel,
		now:          time.Now,
	}
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return connectDaemonCmd()
}

// Update processes messages and returns an updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	// ── Window resize ──────────────────────────────────────────────
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateDimensions()
		return m, nil

	// ── Key events ─────────────────────────────────────────────────
	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		return m, cmd

	// ── Daemon connection ──────────────────────────────────────────
	case DaemonConnectedMsg:
		m.conn = msg.Conn
		m.client = msg.Client
		m.connected = true
		m.err = nil
		m.activity.Add(m.now(), activityInfo, "Connected to launcher")
		cmds = append(cmds, getStatusCmd(m.client))
		if !m.polling {
			m.polling = true
			cmds = append(cmds, pollStatusTick())
		}
		if !m.watching && m.program != nil {
			m.watching = true
			cmds = append(cmds, watchStatusCmd(m.streamCtx, m.client, m.program))
		}
		return m, tea.Batch(cmds...)

	case DaemonUnavailableMsg:
		m.err = msg.Err
		return m, reconnectTick()

	case DaemonDisconnectedMsg:
		if !m.connected {
			return m, nil
		}
		m.connected = false
		m.client = nil
		if m.conn != nil {
			_ = m.conn.Close()
			m.conn = nil
		}
		m.activity.Add(m.now(), activityBad, "Lost connection to launcher")
		return m, reconnectTick()

	case ReconnectMsg:
		if !m.connected {
			cmds = append(cmds, connectDaemonCmd())
		}
		return m, tea.Batch(cmds...)

	// ── Status ─────────────────────────────────────────────────────
	case StatusMsg:
		prev := m.status
		m.status = msg.Status
		if prev == nil || prev.Phase != msg.Status.Phase {
			m.activity.Add(m.now(), phaseKind(msg.Status), phaseText(msg.Status))
		}
		if busy(m.status) && !m.spinnerRunning {
			m.spinnerRunning = true
			cmds = append(cmds, m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)

	case StatusEventMsg:
		if m.client != nil {
			cmds = append(cmds, getStatusCmd(m.client))
		}
		return m, tea.Batch(cmds...)

	case WatchEndedMsg:
		m.watching = false
		return m, nil

	case CommandResultMsg:
		res := msg.Result
		if res.Success {
			m.notice = res.Message
			if m.notice == "" {
				m.notice = "Done"
			}
			m.activity.Add(m.now(), activityInfo, m.notice)
			cmds = append(cmds, clearNoticeAfter(3*time.Second))
		} else {
			m.err = errors.New(res.Message)
			m.activity.Add(m.now(), activityBad, fmt.Sprintf("%s: %s", res.Error, res.Message))
			cmds = append(cmds, clearErrorAfter(5*time.Second))
		}
		if m.client != nil {
			cmds = append(cmds, getStatusCmd(m.client))
		}
		return m, tea.Batch(cmds...)

	// ── Polling tick ───────────────────────────────────────────────
	case TickMsg:
		if m.connected {
			cmds = append(cmds, getStatusCmd(m.client), pollStatusTick())
		} else {
			m.polling = false
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		if !busy(m.status) {
			m.spinnerRunning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	// ── Error handling ─────────────────────────────────────────────
	case ErrorMsg:
		m.err = msg.Err
		return m, clearErrorAfter(5 * time.Second)

	case ClearErrorMsg:
		m.err = nil
		return m, nil

	case ClearNoticeMsg:
		m.notice = ""
		return m, nil
	}

	return m, nil
}

// handleKey processes key events.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.confirmMode != confirmNone {
		return m.handleConfirmKey(msg)
	}

	if key.Matches(msg, globalKeys.Quit) {
		return m.doQuit()
	}
	if key.Matches(msg, globalKeys.Help) {
		m.showHelp = !m.showHelp
		return nil
	}
	if m.showHelp {
		if msg.String() == "esc" {
			m.showHelp = false
		}
		return nil
	}

	switch {
	case key.Matches(msg, serverKeys.Start):
		return m.withClient(startServerCmd)
	case key.Matches(msg, serverKeys.Stop):
		if !m.connected {
			return m.notConnected()
		}
		m.confirmMode = confirmStop
		return nil
	case key.Matches(msg, serverKeys.AutoRestart):
		enabled := m.status == nil || !m.status.AutoRestart
		return m.withClient(func(c *api.Client) tea.Cmd {
			return toggleAutoRestartCmd(c, enabled)
		})
	case key.Matches(msg, serverKeys.Open):
		return m.withClient(openBrowserCmd)
	case key.Matches(msg, serverKeys.Refresh):
		return m.withClient(getStatusCmd)
	case key.Matches(msg, activityKeys.Up), key.Matches(msg, activityKeys.Down):
		return m.activity.Update(msg)
	}
	return nil
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, confirmKeys.Yes):
		m.confirmMode = confirmNone
		return m.withClient(stopServerCmd)
	case key.Matches(msg, confirmKeys.No), key.Matches(msg, confirmKeys.Cancel):
		m.confirmMode = confirmNone
	}
	return nil
}

func (m *Model) withClient(build func(*api.Client) tea.Cmd) tea.Cmd {
	if !m.connected || m.client == nil {
		return m.notConnected()
	}
	return build(m.client)
}

func (m *Model) notConnected() tea.Cmd {
	m.err = errNotConnected
	return clearErrorAfter(3 * time.Second)
}

// doQuit performs clean shutdown: cancel streams, clear program ref, close connection, quit.
// The backend is left to launcherd.
func (m *Model) doQuit() tea.Cmd {
	m.streamCancel()
	if m.program != nil {
		m.program.Clear()
	}
	if m.conn != nil {
		_ = m.conn.Close()
	}
	return tea.Quit
}

func (m *Model) updateDimensions() {
	layout := computeLayout(m.width, m.height, m.splitRatio)
	w, h := innerSize(layout.rightWidth, layout.contentHeight)
	m.activity.SetSize(w, h)
}

func phaseKind(st *api.StatusReply) activityKind {
	switch st.Phase {
	case phaseRunning:
		return activityGood
	case phaseRetrying, phaseGaveUp:
		return activityBad
	}
	return activityInfo
}

func phaseText(st *api.StatusReply) string {
	switch st.Phase {
	case phaseRunning:
		return "Server online at " + st.URL
	case phaseStarting:
		return "Server starting"
	case phaseRetrying:
		return fmt.Sprintf("Server crashed, restarting (attempt %d/%d)", st.RestartAttempts, st.MaxRestartAttempts)
	case phaseGaveUp:
		msg := "Gave up restarting the server"
		if st.LastErrorMessage != "" {
			msg += ": " + st.LastErrorMessage
		}
		return msg
	case phaseStopped:
		return "Server offline"
	}
	return "Server " + st.Phase
}

// ── View ─────────────────────────────────────────────────────────

// View renders the status panel.
func (m Model) View() string {
	if m.width < minWidth || m.height < minHeight {
		sizeStr := fmt.Sprintf("%dx%d", m.width, m.height)
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(colorYellow).
			Render(lipgloss.JoinVertical(lipgloss.Center,
				"Terminal too small",
				lipgloss.NewStyle().Foreground(colorDim).Render(
					fmt.Sprintf("Need %dx%d, have ", minWidth, minHeight)+lipgloss.NewStyle().Bold(true).Render(sizeStr),
				),
			))
	}

	if !m.connected {
		lines := []string{"Connecting to launcher..."}
		if m.err != nil {
			lines = append(lines, errorTextStyle.Render(m.err.Error()), hintStyle.Render("Start it with: launcher daemon start"))
		}
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(colorDim).
			Render(lipgloss.JoinVertical(lipgloss.Center, lines...))
	}

	layout := computeLayout(m.width, m.height, m.splitRatio)
	header := renderHeader(m.status, m.spinner.View(), m.width)
	panels := renderPanels("Server", renderServerPanel(m.status, m.now()), "Activity", m.activity.View(), layout)
	statusBar := renderStatusBar(&m, m.width)

	view := lipgloss.JoinVertical(lipgloss.Left, header, panels, statusBar)

	if m.showHelp {
		view = renderOverlay(view, renderHelp(m.width), m.width, m.height)
	}
	return view
}
