// Package infra contains infrastructure adapters for the commit-reveal
// context.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fd1az/arb-engine/business/commitreveal/domain"
	"github.com/fd1az/arb-engine/internal/asset"
)

// ConsoleReporter implements Reporter for CLI output.
type ConsoleReporter struct {
	out    io.Writer
	assets *asset.Registry
}

// NewConsoleReporter creates a new ConsoleReporter.
func NewConsoleReporter(assets *asset.Registry) *ConsoleReporter {
	return &ConsoleReporter{
		out:    os.Stdout,
		assets: assets,
	}
}

// Start initializes the console reporter.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	fmt.Fprintln(r.out, "Commit-Reveal Engine Started")
	fmt.Fprintln(r.out, "============================")
	return nil
}

// ReportCommit outputs a commitment event to the console.
func (r *ConsoleReporter) ReportCommit(_ context.Context, ev domain.CommitEvent) {
	ts := ev.Timestamp.Format("15:04:05")
	if ev.Cancelled {
		fmt.Fprintf(r.out, "[%s] CANCELLED  %s (by %s)\n", ts, ev.Hash.Hex(), ev.CancelledBy.Hex())
		return
	}
	fmt.Fprintf(r.out, "[%s] COMMITTED  %s @ height %d\n", ts, ev.Hash.Hex(), ev.Height)
}

// ReportReveal outputs a reveal outcome to the console.
func (r *ConsoleReporter) ReportReveal(_ context.Context, ev domain.RevealEvent) {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "================================================================================")
	if ev.Success {
		fmt.Fprintln(r.out, "REVEAL EXECUTED")
	} else {
		fmt.Fprintln(r.out, "REVEAL FAILED")
	}
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintf(r.out, "Hash:           %s\n", ev.Hash.Hex())
	fmt.Fprintf(r.out, "Revealer:       %s\n", ev.Revealer.Hex())
	fmt.Fprintf(r.out, "Asset:          %s\n", r.assets.Symbol(ev.Asset))
	fmt.Fprintf(r.out, "Amount In:      %s\n", ev.AmountIn)
	fmt.Fprintf(r.out, "Hops:           %d\n", ev.Hops)
	fmt.Fprintf(r.out, "Duration:       %s\n", ev.Duration.Round(time.Microsecond))
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	if ev.Success {
		fmt.Fprintf(r.out, "Profit:         %s %s\n", ev.Profit, r.assets.Symbol(ev.Asset))
	} else {
		fmt.Fprintf(r.out, "Failure:        %s\n", ev.FailureCode)
	}
	fmt.Fprintln(r.out, "================================================================================")
}

// Stop gracefully shuts down the console reporter.
func (r *ConsoleReporter) Stop() error {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "Commit-Reveal Engine Stopped")
	return nil
}
