// Package ui provides the Bubble Tea TUI for the commit-reveal engine.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/arb-engine/pkg/ui/components"
)

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	commitments *components.CommitmentsComponent
	executions  *components.ExecutionsComponent
	status      *components.StatusComponent

	ready    bool
	quitting bool
	width    int
	height   int

	revealsOK     uint64
	revealsFailed uint64
	lastUpdate    time.Time
	errors        []ErrorEntry
	logs          []string
}

// New creates a new TUI model.
func New() Model {
	return Model{
		commitments: components.NewCommitmentsComponent(20),
		executions:  components.NewExecutionsComponent(20),
		status:      components.NewStatusComponent(),
		logs:        make([]string, 0, 5),
		errors:      make([]ErrorEntry, 0, 3),
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "c":
			m.commitments.Clear()
			m.executions.Clear()
			return m, nil
		case "e":
			m.errors = make([]ErrorEntry, 0, 3)
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case TickMsg:
		return m, tickCmd()

	case CommitMsg:
		m.commitments.Add(components.CommitmentRow{
			Time:      msg.Timestamp.Format("15:04:05"),
			Hash:      msg.Hash,
			Committer: msg.Committer,
			Height:    msg.Height,
			Cancelled: msg.Cancelled,
		})
		m.lastUpdate = time.Now()

	case RevealMsg:
		m.executions.Add(components.ExecutionRow{
			Time:        msg.Timestamp.Format("15:04:05"),
			Hash:        msg.Hash,
			Hops:        msg.Hops,
			Success:     msg.Success,
			Profit:      msg.Profit,
			FailureCode: msg.FailureCode,
		})
		if msg.Success {
			m.revealsOK++
		} else {
			m.revealsFailed++
		}
		m.lastUpdate = time.Now()

	case HeightMsg:
		m.status.SetHeight(msg.Height)
		m.lastUpdate = time.Now()

	case EngineStatusMsg:
		m.status.Update(components.EngineStatus{
			Paused:  msg.Paused,
			Pending: msg.Pending,
			Routers: msg.Routers,
		})
		m.lastUpdate = time.Now()

	case ErrorMsg:
		m.logs = addLog(m.logs, "error", msg.Error.Error())
		m.errors = append(m.errors, ErrorEntry{
			Message:   msg.Error.Error(),
			Timestamp: time.Now(),
		})
		if len(m.errors) > 3 {
			m.errors = m.errors[len(m.errors)-3:]
		}

	case LogMsg:
		m.logs = addLog(m.logs, msg.Level, msg.Message)
	}

	return m, nil
}

// addLog adds a log message and returns the updated slice (keeps last 5).
func addLog(logs []string, level, message string) []string {
	timestamp := time.Now().Format("15:04:05")
	logLine := fmt.Sprintf("[%s] %s: %s", timestamp, level, message)
	logs = append(logs, logLine)
	if len(logs) > 5 {
		logs = logs[len(logs)-5:]
	}
	return logs
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render(" Commit-Reveal Arbitrage Engine "))
	b.WriteString("\n\n")

	b.WriteString(m.status.View())
	if m.revealsOK+m.revealsFailed > 0 {
		b.WriteString(MutedValue.Render(fmt.Sprintf("  │  Reveals: %d ok / %d failed", m.revealsOK, m.revealsFailed)))
	}
	b.WriteString("\n\n")

	left := m.commitments.View()
	right := m.executions.View()

	if m.width > 130 {
		lBox := BoxStyle.Width(m.width/2 - 2).Render(left)
		rBox := BoxStyle.Width(m.width/2 - 2).Render(right)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, lBox, rBox))
	} else {
		b.WriteString(BoxStyle.Width(m.width - 4).Render(left))
		b.WriteString("\n")
		b.WriteString(BoxStyle.Width(m.width - 4).Render(right))
	}
	b.WriteString("\n\n")

	if len(m.logs) > 0 {
		b.WriteString(MutedValue.Render(strings.Join(m.logs, "\n")))
		b.WriteString("\n\n")
	}

	if len(m.errors) > 0 {
		errorHeader := lipgloss.NewStyle().Bold(true).Foreground(ColorDanger)
		errorStyle := lipgloss.NewStyle().Foreground(ColorDanger)

		b.WriteString(errorHeader.Render("ERRORS"))
		b.WriteString(MutedValue.Render(" (e: clear)"))
		b.WriteString("\n")
		for _, err := range m.errors {
			ago := time.Since(err.Timestamp).Round(time.Second)
			b.WriteString(errorStyle.Render(fmt.Sprintf("  • %s ", err.Message)))
			b.WriteString(MutedValue.Render(fmt.Sprintf("(%s ago)", ago)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("q: quit • c: clear • e: clear errors"))

	return b.String()
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// Run starts the Bubble Tea program.
func Run() error {
	Program = tea.NewProgram(New(), tea.WithAltScreen())
	_, err := Program.Run()
	return err
}

// Send sends a message to the running program.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
}
