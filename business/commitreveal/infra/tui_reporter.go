package infra

import (
	"context"

	"github.com/fd1az/arb-engine/business/commitreveal/domain"
	"github.com/fd1az/arb-engine/internal/asset"
	"github.com/fd1az/arb-engine/pkg/ui"
)

// TUIReporter implements Reporter for the Bubble Tea TUI. Events are
// forwarded as messages to the running program.
type TUIReporter struct {
	assets *asset.Registry
}

// NewTUIReporter creates a new TUIReporter.
func NewTUIReporter(assets *asset.Registry) *TUIReporter {
	return &TUIReporter{assets: assets}
}

// ReportCommit sends a commitment event to the TUI.
func (r *TUIReporter) ReportCommit(_ context.Context, ev domain.CommitEvent) {
	ui.Send(ui.CommitMsg{
		Hash:      ev.Hash.Hex(),
		Committer: ev.Committer.Hex(),
		Height:    ev.Height,
		Cancelled: ev.Cancelled,
		Timestamp: ev.Timestamp,
	})
}

// ReportReveal sends a reveal outcome to the TUI.
func (r *TUIReporter) ReportReveal(_ context.Context, ev domain.RevealEvent) {
	msg := ui.RevealMsg{
		Hash:        ev.Hash.Hex(),
		Revealer:    ev.Revealer.Hex(),
		Asset:       r.assets.Symbol(ev.Asset),
		Hops:        ev.Hops,
		Success:     ev.Success,
		FailureCode: ev.FailureCode,
		Duration:    ev.Duration,
		Timestamp:   ev.Timestamp,
	}
	if ev.Profit != nil {
		msg.Profit = ev.Profit.String()
	}
	ui.Send(msg)
}
