// Package app contains the commit-reveal application services: commit
// intake, reveal execution, path validation, and profit estimation.
package app

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/arb-engine/business/commitreveal/domain"
)

// CommitStore holds pending commitments. Implementations must be safe
// for concurrent use; Consume in particular must be an atomic
// check-and-remove so two reveals of the same hash cannot both win.
type CommitStore interface {
	// Put stores a commitment. Returns COMMITMENT_ALREADY_EXISTS if the
	// hash is already present.
	Put(c domain.Commitment) error

	// Get returns the commitment for hash, if present.
	Get(hash common.Hash) (domain.Commitment, bool)

	// Consume atomically removes and returns the commitment. The second
	// return is false if the hash was absent, meaning another caller
	// already consumed or cancelled it.
	Consume(hash common.Hash) (domain.Commitment, bool)

	// Delete removes the commitment, reporting whether it was present.
	Delete(hash common.Hash) bool

	// Count returns the number of pending commitments.
	Count() int

	// All returns a snapshot of pending commitments.
	All() []domain.Commitment
}

// Reporter receives engine events for display or delivery.
type Reporter interface {
	ReportCommit(ctx context.Context, ev domain.CommitEvent)
	ReportReveal(ctx context.Context, ev domain.RevealEvent)
}

// MultiReporter fans events out to several reporters.
type MultiReporter []Reporter

func (m MultiReporter) ReportCommit(ctx context.Context, ev domain.CommitEvent) {
	for _, r := range m {
		r.ReportCommit(ctx, ev)
	}
}

func (m MultiReporter) ReportReveal(ctx context.Context, ev domain.RevealEvent) {
	for _, r := range m {
		r.ReportReveal(ctx, ev)
	}
}
