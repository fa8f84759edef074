package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Commitment is a stored commit: the hash, who placed it, and when.
// A commitment has no lifecycle flags; presence in the store means
// committed, consumption or cancellation removes it, and the same hash
// may then be committed again.
type Commitment struct {
	Hash        common.Hash
	Committer   common.Address
	Height      uint64
	CommittedAt time.Time
}

// RevealableFrom returns the first height at which the commitment may
// be revealed.
func (c Commitment) RevealableFrom(minRevealDelay uint64) uint64 {
	return c.Height + minRevealDelay
}

// ExpiresAfter returns the last height at which the commitment is still
// revealable.
func (c Commitment) ExpiresAfter(maxCommitmentAge uint64) uint64 {
	return c.Height + maxCommitmentAge
}
