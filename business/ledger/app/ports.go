// Package app contains application services and port definitions for the
// ledger context.
package app

import (
	"context"
	"time"
)

// HeightSource reports the current ledger height. Implementations are
// either chain-backed (infra/ethereum) or manual (tests, dev mode).
type HeightSource interface {
	Height(ctx context.Context) (uint64, error)
}

// Clock reports the current wall time used for deadline checks. Split
// from HeightSource so tests can pin time independently of height.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
