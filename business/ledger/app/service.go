package app

import (
	"context"
	"time"
)

// LedgerService exposes height and time to the rest of the application.
type LedgerService struct {
	source HeightSource
	clock  Clock
}

// NewLedgerService creates a LedgerService.
func NewLedgerService(source HeightSource, clock Clock) *LedgerService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &LedgerService{source: source, clock: clock}
}

// Height returns the current ledger height.
func (s *LedgerService) Height(ctx context.Context) (uint64, error) {
	return s.source.Height(ctx)
}

// Now returns the current time.
func (s *LedgerService) Now() time.Time {
	return s.clock.Now()
}
