package app

import (
	"context"
	"sync"
	"time"
)

// ManualLedger is an in-memory HeightSource and Clock under caller
// control. It backs deterministic tests and the dev mode where no chain
// endpoint is configured.
type ManualLedger struct {
	mu     sync.RWMutex
	height uint64
	now    time.Time
}

// NewManualLedger creates a ManualLedger at the given height, with time
// pinned to the current wall clock.
func NewManualLedger(height uint64) *ManualLedger {
	return &ManualLedger{height: height, now: time.Now()}
}

// Height implements HeightSource.
func (m *ManualLedger) Height(_ context.Context) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.height, nil
}

// Now implements Clock.
func (m *ManualLedger) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Advance moves the height forward by n blocks.
func (m *ManualLedger) Advance(n uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.height += n
}

// SetHeight pins the height.
func (m *ManualLedger) SetHeight(h uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.height = h
}

// SetTime pins the clock.
func (m *ManualLedger) SetTime(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// AdvanceTime moves the clock forward by d.
func (m *ManualLedger) AdvanceTime(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}
