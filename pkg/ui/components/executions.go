package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// ExecutionRow represents a reveal outcome in the list.
type ExecutionRow struct {
	Time        string
	Hash        string
	Hops        int
	Success     bool
	Profit      string
	FailureCode string
}

// ExecutionsComponent renders the reveal executions list.
type ExecutionsComponent struct {
	rows    []ExecutionRow
	maxRows int
}

// NewExecutionsComponent creates a new executions component.
func NewExecutionsComponent(maxRows int) *ExecutionsComponent {
	return &ExecutionsComponent{
		rows:    make([]ExecutionRow, 0),
		maxRows: maxRows,
	}
}

// Add adds an execution to the list.
func (e *ExecutionsComponent) Add(row ExecutionRow) {
	e.rows = append([]ExecutionRow{row}, e.rows...)
	if len(e.rows) > e.maxRows {
		e.rows = e.rows[:e.maxRows]
	}
}

// Clear clears the list.
func (e *ExecutionsComponent) Clear() {
	e.rows = make([]ExecutionRow, 0)
}

// View renders the executions component.
func (e *ExecutionsComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	successStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	failureStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))

	result := headerStyle.Render("REVEALS") + "\n"

	if len(e.rows) == 0 {
		return result + "  No reveals yet..."
	}

	result += "┌──────────┬──────────────────┬──────┬──────────────────────────────┐\n"
	result += "│   Time   │       Hash       │ Hops │           Outcome            │\n"
	result += "├──────────┼──────────────────┼──────┼──────────────────────────────┤\n"

	for _, row := range e.rows {
		var outcome string
		if row.Success {
			outcome = successStyle.Render("✓ +" + row.Profit)
		} else {
			outcome = failureStyle.Render("✗ " + row.FailureCode)
		}
		result += fmt.Sprintf("│ %-8s │ %-16s │ %4d │ %-37s│\n",
			row.Time,
			shortHash(row.Hash),
			row.Hops,
			outcome,
		)
	}

	result += "└──────────┴──────────────────┴──────┴──────────────────────────────┘"
	return result
}
