// Package ui provides the Bubble Tea TUI for the commit-reveal engine.
package ui

import (
	"time"
)

// Message types for TUI updates

// CommitMsg is sent when a commitment is accepted or cancelled.
type CommitMsg struct {
	Hash      string
	Committer string
	Height    uint64
	Cancelled bool
	Timestamp time.Time
}

// RevealMsg is sent when a reveal attempt finishes.
type RevealMsg struct {
	Hash        string
	Revealer    string
	Asset       string
	Hops        int
	Success     bool
	Profit      string
	FailureCode string
	Duration    time.Duration
	Timestamp   time.Time
}

// HeightMsg is sent when the ledger height advances.
type HeightMsg struct {
	Height uint64
}

// EngineStatusMsg is sent when the engine's admin state changes.
type EngineStatusMsg struct {
	Paused  bool
	Pending int
	Routers int
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}
