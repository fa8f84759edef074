// Package components provides reusable TUI components.
package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// CommitmentRow represents a commitment in the list.
type CommitmentRow struct {
	Time      string
	Hash      string
	Committer string
	Height    uint64
	Cancelled bool
}

// CommitmentsComponent renders the recent commitments list.
type CommitmentsComponent struct {
	rows    []CommitmentRow
	maxRows int
}

// NewCommitmentsComponent creates a new commitments component.
func NewCommitmentsComponent(maxRows int) *CommitmentsComponent {
	return &CommitmentsComponent{
		rows:    make([]CommitmentRow, 0),
		maxRows: maxRows,
	}
}

// Add adds a commitment to the list.
func (c *CommitmentsComponent) Add(row CommitmentRow) {
	c.rows = append([]CommitmentRow{row}, c.rows...)
	if len(c.rows) > c.maxRows {
		c.rows = c.rows[:c.maxRows]
	}
}

// Clear clears the list.
func (c *CommitmentsComponent) Clear() {
	c.rows = make([]CommitmentRow, 0)
}

// View renders the commitments component.
func (c *CommitmentsComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	cancelledStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))

	result := headerStyle.Render("COMMITMENTS") + "\n"

	if len(c.rows) == 0 {
		return result + "  No commitments yet..."
	}

	result += "┌──────────┬──────────────────┬──────────┬───────────┐\n"
	result += "│   Time   │       Hash       │  Height  │  Status   │\n"
	result += "├──────────┼──────────────────┼──────────┼───────────┤\n"

	for _, row := range c.rows {
		status := activeStyle.Render("pending")
		if row.Cancelled {
			status = cancelledStyle.Render("cancelled")
		}
		result += fmt.Sprintf("│ %-8s │ %-16s │ %8d │ %-18s│\n",
			row.Time,
			shortHash(row.Hash),
			row.Height,
			status,
		)
	}

	result += "└──────────┴──────────────────┴──────────┴───────────┘"
	return result
}

// shortHash shortens a 0x hash for table display.
func shortHash(h string) string {
	if len(h) <= 16 {
		return h
	}
	return h[:10] + ".." + h[len(h)-4:]
}
