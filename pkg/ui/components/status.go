package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// EngineStatus is the engine state summary shown in the status panel.
type EngineStatus struct {
	Height  uint64
	Pending int
	Routers int
	Paused  bool
}

// StatusComponent renders the engine status panel.
type StatusComponent struct {
	status EngineStatus
}

// NewStatusComponent creates a new status component.
func NewStatusComponent() *StatusComponent {
	return &StatusComponent{}
}

// Update replaces the status.
func (s *StatusComponent) Update(status EngineStatus) {
	s.status = status
}

// SetHeight updates only the ledger height.
func (s *StatusComponent) SetHeight(h uint64) {
	s.status.Height = h
}

// View renders the status component.
func (s *StatusComponent) View() string {
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	pausedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)

	state := activeStyle.Render("● ACTIVE")
	if s.status.Paused {
		state = pausedStyle.Render("⏸ PAUSED")
	}

	return fmt.Sprintf("%s  │  Height: #%d  │  Pending: %d  │  Routers: %d",
		state, s.status.Height, s.status.Pending, s.status.Routers)
}
