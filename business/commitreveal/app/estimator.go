package app

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arb-engine/business/commitreveal/domain"
	executionApp "github.com/fd1az/arb-engine/business/execution/app"
	"github.com/fd1az/arb-engine/internal/logger"
)

// ProfitEstimator computes the expected profit of a path at current
// prices without moving funds. Estimation is advisory: any failure
// (unknown router, missing pool, quote error) yields a zero estimate
// rather than an error, because callers use it to rank candidate
// commits, not to gate execution.
type ProfitEstimator struct {
	registry *executionApp.RouterRegistry
	maxHops  int
	logger   logger.LoggerInterface
	tracer   trace.Tracer
}

// NewProfitEstimator creates a ProfitEstimator. maxHops is the same
// ceiling the path validator enforces; zero disables it.
func NewProfitEstimator(registry *executionApp.RouterRegistry, maxHops int, log logger.LoggerInterface) *ProfitEstimator {
	return &ProfitEstimator{
		registry: registry,
		maxHops:  maxHops,
		logger:   log,
		tracer:   otel.Tracer(tracerName),
	}
}

// CalculateExpectedProfit quotes the path hop by hop and returns the
// expected profit in raw units of asset. Never negative, never an
// error; unquotable paths estimate to zero.
func (e *ProfitEstimator) CalculateExpectedProfit(ctx context.Context, asset common.Address, amountIn *big.Int, path domain.SwapPath) *big.Int {
	ctx, span := e.tracer.Start(ctx, "commitreveal.estimate_profit")
	defer span.End()

	if amountIn == nil || amountIn.Sign() <= 0 || len(path) == 0 {
		return new(big.Int)
	}
	if e.maxHops > 0 && len(path) > e.maxHops {
		return new(big.Int)
	}
	if path.First().TokenIn != asset || path.Last().TokenOut != asset {
		return new(big.Int)
	}

	amount := new(big.Int).Set(amountIn)
	for i, step := range path {
		router, err := e.registry.Resolve(step.Router)
		if err != nil {
			e.logger.Debug(ctx, "estimate aborted, router unknown",
				"hop", i, "router", step.Router.Hex())
			return new(big.Int)
		}
		out, err := router.QuoteExactIn(ctx, step.TokenIn, step.TokenOut, amount)
		if err != nil {
			e.logger.Debug(ctx, "estimate aborted, quote failed",
				"hop", i, "router", step.Router.Hex(), "error", err)
			return new(big.Int)
		}
		amount = out
	}

	profit := new(big.Int).Sub(amount, amountIn)
	if profit.Sign() < 0 {
		return new(big.Int)
	}
	return profit
}
