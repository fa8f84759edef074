package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// CommitEvent records a commitment entering or leaving the store.
type CommitEvent struct {
	Hash      common.Hash
	Committer common.Address
	Height    uint64
	Timestamp time.Time
	// Cancelled marks a cancellation rather than a fresh commit.
	Cancelled bool
	// CancelledBy is set on cancellations; anyone may cancel, so it can
	// differ from Committer.
	CancelledBy common.Address
}

// RevealEvent records the outcome of a reveal attempt.
type RevealEvent struct {
	Hash      common.Hash
	Revealer  common.Address
	Asset     common.Address
	AmountIn  *big.Int
	Hops      int
	Timestamp time.Time
	Duration  time.Duration

	// Success means the round trip executed and cleared both profit
	// floors.
	Success bool
	// Profit is the realized profit in raw asset units when Success.
	Profit *big.Int
	// FailureCode is the error code when the reveal failed.
	FailureCode string
}
