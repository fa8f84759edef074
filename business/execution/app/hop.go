package app

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arb-engine/business/execution/domain"
	"github.com/fd1az/arb-engine/internal/apperror"
	"github.com/fd1az/arb-engine/internal/logger"
)

const hopTracerName = "github.com/fd1az/arb-engine/business/execution/app"

// Hop describes a single swap to execute. CurrentToken is the token
// the caller actually holds going into the hop; TokenIn must match it.
type Hop struct {
	Router       common.Address
	CurrentToken common.Address
	TokenIn      common.Address
	TokenOut     common.Address
	AmountIn     *big.Int
	AmountOutMin *big.Int
}

// HopExecutor executes one swap hop against an allow-listed router.
// Output is measured by the engine's own balance delta, not the
// router's claim, so a misbehaving router cannot under-deliver
// undetected.
type HopExecutor struct {
	ledger   *domain.TokenLedger
	registry *RouterRegistry
	account  common.Address
	logger   logger.LoggerInterface
	tracer   trace.Tracer
}

// NewHopExecutor creates a HopExecutor trading from account.
func NewHopExecutor(ledger *domain.TokenLedger, registry *RouterRegistry, account common.Address, log logger.LoggerInterface) *HopExecutor {
	return &HopExecutor{
		ledger:   ledger,
		registry: registry,
		account:  account,
		logger:   log,
		tracer:   otel.Tracer(hopTracerName),
	}
}

// Execute runs the hop and returns the amount of TokenOut actually
// delivered to the engine account.
func (e *HopExecutor) Execute(ctx context.Context, hop Hop) (*big.Int, error) {
	ctx, span := e.tracer.Start(ctx, "execution.hop",
		trace.WithAttributes(
			attribute.String("router", hop.Router.Hex()),
			attribute.String("token_in", hop.TokenIn.Hex()),
			attribute.String("token_out", hop.TokenOut.Hex()),
		))
	defer span.End()

	// Path validation already guarantees continuity; re-checking here
	// keeps a mis-validated step from spending whatever balance the
	// account happens to hold in TokenIn.
	if hop.TokenIn != hop.CurrentToken {
		return nil, apperror.New(apperror.CodeInvalidTokenContinuity,
			apperror.WithContextf("hop consumes %s, holding %s",
				hop.TokenIn.Hex(), hop.CurrentToken.Hex()))
	}

	router, err := e.registry.Resolve(hop.Router)
	if err != nil {
		return nil, err
	}

	balance := e.ledger.BalanceOf(hop.TokenIn, e.account)
	if balance.Cmp(hop.AmountIn) < 0 {
		return nil, apperror.New(apperror.CodeInsufficientBalance,
			apperror.WithContextf("token %s: have %s, need %s",
				hop.TokenIn.Hex(), balance, hop.AmountIn))
	}

	outBefore := e.ledger.BalanceOf(hop.TokenOut, e.account)

	// Exact approval for this hop only; cleared again below so a router
	// never retains spending power between hops.
	e.ledger.Approve(hop.TokenIn, e.account, hop.Router, hop.AmountIn)
	defer e.ledger.Approve(hop.TokenIn, e.account, hop.Router, new(big.Int))

	claimed, err := router.SwapExactIn(ctx, e.account, hop.TokenIn, hop.TokenOut, hop.AmountIn, hop.AmountOutMin, e.account)
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.External(apperror.CodeSwapExecutionFailed, hop.Router.Hex(), err)
	}

	outAfter := e.ledger.BalanceOf(hop.TokenOut, e.account)
	delivered := new(big.Int).Sub(outAfter, outBefore)

	if delivered.Cmp(hop.AmountOutMin) < 0 {
		return nil, apperror.New(apperror.CodeInsufficientOutputAmount,
			apperror.WithContextf("router %s: delivered %s, minimum %s",
				hop.Router.Hex(), delivered, hop.AmountOutMin))
	}

	if claimed != nil && claimed.Cmp(delivered) != 0 {
		e.logger.Warn(ctx, "router claimed output differs from delivered",
			"router", hop.Router.Hex(),
			"claimed", claimed.String(),
			"delivered", delivered.String(),
		)
	}

	span.SetAttributes(attribute.String("delivered", delivered.String()))
	return delivered, nil
}
