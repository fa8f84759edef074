package app

import (
	"context"
	"testing"
	"time"
)

func TestManualLedger_HeightAdvance(t *testing.T) {
	ml := NewManualLedger(100)
	ctx := context.Background()

	h, err := ml.Height(ctx)
	if err != nil {
		t.Fatalf("Height() error = %v", err)
	}
	if h != 100 {
		t.Errorf("Height() = %d, want 100", h)
	}

	ml.Advance(5)
	h, _ = ml.Height(ctx)
	if h != 105 {
		t.Errorf("after Advance(5), Height() = %d, want 105", h)
	}

	ml.SetHeight(42)
	h, _ = ml.Height(ctx)
	if h != 42 {
		t.Errorf("after SetHeight(42), Height() = %d, want 42", h)
	}
}

func TestManualLedger_Time(t *testing.T) {
	ml := NewManualLedger(1)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	ml.SetTime(base)
	if got := ml.Now(); !got.Equal(base) {
		t.Errorf("Now() = %v, want %v", got, base)
	}

	ml.AdvanceTime(90 * time.Second)
	want := base.Add(90 * time.Second)
	if got := ml.Now(); !got.Equal(want) {
		t.Errorf("after AdvanceTime, Now() = %v, want %v", got, want)
	}
}

func TestLedgerService_DefaultsToSystemClock(t *testing.T) {
	svc := NewLedgerService(NewManualLedger(1), nil)

	before := time.Now()
	got := svc.Now()
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Errorf("Now() = %v, want within [%v, %v]", got, before, after)
	}
}
