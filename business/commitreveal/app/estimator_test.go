package app

import (
	"context"
	"math/big"
	"testing"

	"github.com/fd1az/arb-engine/business/commitreveal/domain"
	"github.com/fd1az/arb-engine/internal/logger"
)

func TestProfitEstimator_ProfitablePath(t *testing.T) {
	h := newHarness(t)
	est := NewProfitEstimator(h.registry, 5, logger.NewNop())
	ctx := context.Background()

	params := h.profitableParams()
	profit := est.CalculateExpectedProfit(ctx, params.Asset, params.AmountIn, params.Steps)

	if profit.Sign() <= 0 {
		t.Fatalf("expected profit = %s, want positive", profit)
	}

	// The estimate should match what execution actually realizes when
	// nothing trades in between.
	h.commitAndAge(t, params)
	res, err := h.exec.Reveal(ctx, testOwner, params)
	if err != nil {
		t.Fatalf("Reveal() error = %v", err)
	}
	if profit.Cmp(res.Profit) != 0 {
		t.Errorf("estimate %s != realized %s on a quiet book", profit, res.Profit)
	}
}

func TestProfitEstimator_NeverErrors(t *testing.T) {
	h := newHarness(t)
	est := NewProfitEstimator(h.registry, 5, logger.NewNop())
	ctx := context.Background()

	base := h.profitableParams()

	tests := []struct {
		name  string
		asset func() *domain.RevealParams
	}{
		{"unknown router", func() *domain.RevealParams {
			p := h.profitableParams()
			p.Steps[0].Router = rogueRouter
			return p
		}},
		{"open round trip", func() *domain.RevealParams {
			p := h.profitableParams()
			p.Steps[1].TokenOut = testDAI
			return p
		}},
		{"unknown pair", func() *domain.RevealParams {
			p := h.profitableParams()
			p.Steps[0].TokenOut = testDAI
			p.Steps[1].TokenIn = testDAI
			return p
		}},
		{"empty path", func() *domain.RevealParams {
			p := h.profitableParams()
			p.Steps = nil
			return p
		}},
		{"too many hops", func() *domain.RevealParams {
			// Every hop alone is quotable; only the ceiling zeroes it.
			p := h.profitableParams()
			var steps domain.SwapPath
			for i := 0; i < 3; i++ {
				steps = append(steps, p.Steps...)
			}
			p.Steps = steps
			return p
		}},
		{"zero amount", func() *domain.RevealParams {
			p := h.profitableParams()
			p.AmountIn = new(big.Int)
			return p
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.asset()
			got := est.CalculateExpectedProfit(ctx, p.Asset, p.AmountIn, p.Steps)
			if got == nil || got.Sign() != 0 {
				t.Errorf("estimate = %v, want zero", got)
			}
		})
	}

	// Losing paths estimate to zero, not negative.
	lossy := h.profitableParams()
	lossy.Steps[0].Router = base.Steps[1].Router
	lossy.Steps[1].Router = base.Steps[0].Router
	got := est.CalculateExpectedProfit(ctx, lossy.Asset, lossy.AmountIn, lossy.Steps)
	if got.Sign() != 0 {
		t.Errorf("lossy path estimate = %s, want zero", got)
	}
}
