// Package uniswap implements a chain-priced swap venue. Prices come
// from the Uniswap V3 QuoterV2 over RPC; settlement is booked against
// the local token ledger.
package uniswap

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arb-engine/business/execution/domain"
	"github.com/fd1az/arb-engine/internal/apperror"
	"github.com/fd1az/arb-engine/internal/circuitbreaker"
	"github.com/fd1az/arb-engine/internal/logger"
)

const (
	tracerName = "uniswap"
	meterName  = "uniswap"
)

// QuoterAddress is the mainnet QuoterV2 deployment.
var QuoterAddress = common.HexToAddress("0x61fFE014bA17989E743c5F6cB21bF9697530B21e")

type routerMetrics struct {
	quotesTotal  metric.Int64Counter
	quoteLatency metric.Float64Histogram
	quoteErrors  metric.Int64Counter
	swapsTotal   metric.Int64Counter
}

// Router prices swaps against the QuoterV2 contract and settles on the
// local ledger. The venue's external inventory is off book; proceeds
// are credited to the recipient at the quoted price.
type Router struct {
	address   common.Address
	client    *ethclient.Client
	quoter    common.Address
	quoterABI abi.ABI
	feeTiers  []int
	ledger    *domain.TokenLedger

	logger logger.LoggerInterface
	cb     *circuitbreaker.CircuitBreaker[[]byte]

	tracer  trace.Tracer
	metrics *routerMetrics
}

// NewRouter creates a chain-priced router registered at address.
func NewRouter(address common.Address, client *ethclient.Client, ledger *domain.TokenLedger, log logger.LoggerInterface) (*Router, error) {
	parsedABI, err := abi.JSON(strings.NewReader(QuoterV2ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse quoter ABI: %w", err)
	}

	r := &Router{
		address:   address,
		client:    client,
		quoter:    QuoterAddress,
		quoterABI: parsedABI,
		feeTiers:  []int{FeeTier005, FeeTier030, FeeTier100},
		ledger:    ledger,
		logger:    log,
		tracer:    otel.Tracer(tracerName),
	}

	r.cb = circuitbreaker.New[[]byte](circuitbreaker.DefaultConfig("uniswap-quoter"))

	if err := r.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	return r, nil
}

func (r *Router) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	r.metrics = &routerMetrics{}

	r.metrics.quotesTotal, err = meter.Int64Counter(
		"uniswap_quotes_total",
		metric.WithDescription("Total quote requests"),
	)
	if err != nil {
		return err
	}

	r.metrics.quoteLatency, err = meter.Float64Histogram(
		"uniswap_quote_latency_ms",
		metric.WithDescription("Quote request latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	r.metrics.quoteErrors, err = meter.Int64Counter(
		"uniswap_quote_errors_total",
		metric.WithDescription("Total quote errors"),
	)
	if err != nil {
		return err
	}

	r.metrics.swapsTotal, err = meter.Int64Counter(
		"uniswap_swaps_total",
		metric.WithDescription("Total swaps settled"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Address implements app.Router.
func (r *Router) Address() common.Address { return r.address }

// QuoteExactIn implements app.Router. It tries each fee tier and keeps
// the best output.
func (r *Router) QuoteExactIn(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int) (*big.Int, error) {
	ctx, span := r.tracer.Start(ctx, "uniswap.quote_exact_in",
		trace.WithAttributes(
			attribute.String("token_in", tokenIn.Hex()),
			attribute.String("token_out", tokenOut.Hex()),
			attribute.String("amount_in", amountIn.String()),
		),
	)
	defer span.End()

	start := time.Now()
	r.metrics.quotesTotal.Add(ctx, 1)

	var best *QuoteResult
	var bestFeeTier int

	for _, feeTier := range r.feeTiers {
		quote, err := r.quoteForFeeTier(ctx, tokenIn, tokenOut, amountIn, feeTier)
		if err != nil {
			span.AddEvent("fee_tier_failed",
				trace.WithAttributes(
					attribute.Int("fee_tier", feeTier),
					attribute.String("error", err.Error()),
				),
			)
			continue
		}

		if best == nil || quote.AmountOut.Cmp(best.AmountOut) > 0 {
			best = quote
			bestFeeTier = feeTier
		}
	}

	r.metrics.quoteLatency.Record(ctx, float64(time.Since(start).Milliseconds()))

	if best == nil {
		r.metrics.quoteErrors.Add(ctx, 1)
		span.SetStatus(codes.Error, "no valid quote")
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithContext("no pool found for token pair"))
	}

	span.SetAttributes(
		attribute.String("amount_out", best.AmountOut.String()),
		attribute.Int("fee_tier", bestFeeTier),
	)
	span.SetStatus(codes.Ok, "quote received")

	r.logger.Debug(ctx, "uniswap quote",
		"token_in", tokenIn.Hex(),
		"token_out", tokenOut.Hex(),
		"amount_in", amountIn.String(),
		"amount_out", best.AmountOut.String(),
		"fee_tier", bestFeeTier,
	)

	return best.AmountOut, nil
}

// SwapExactIn implements app.Router. The input is pulled from the
// caller via allowance, the output is booked at the quoted price.
func (r *Router) SwapExactIn(ctx context.Context, caller common.Address, tokenIn, tokenOut common.Address, amountIn, amountOutMin *big.Int, recipient common.Address) (*big.Int, error) {
	ctx, span := r.tracer.Start(ctx, "uniswap.swap_exact_in")
	defer span.End()

	out, err := r.QuoteExactIn(ctx, tokenIn, tokenOut, amountIn)
	if err != nil {
		return nil, err
	}

	if out.Cmp(amountOutMin) < 0 {
		return nil, apperror.New(apperror.CodeInsufficientOutputAmount,
			apperror.WithContextf("quote %s below minimum %s", out, amountOutMin))
	}

	if err := r.ledger.TransferFrom(tokenIn, r.address, caller, r.address, amountIn); err != nil {
		return nil, err
	}
	r.ledger.Mint(tokenOut, recipient, out)

	r.metrics.swapsTotal.Add(ctx, 1)
	span.SetAttributes(attribute.String("amount_out", out.String()))

	return out, nil
}

// quoteForFeeTier calls QuoterV2.quoteExactInputSingle for a specific fee tier.
func (r *Router) quoteForFeeTier(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int, feeTier int) (*QuoteResult, error) {
	callData, err := r.quoterABI.Pack("quoteExactInputSingle", QuoteExactInputSingleParams{
		TokenIn:           tokenIn,
		TokenOut:          tokenOut,
		AmountIn:          amountIn,
		Fee:               big.NewInt(int64(feeTier)),
		SqrtPriceLimitX96: big.NewInt(0), // No price limit
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode call: %w", err)
	}

	result, err := r.cb.Execute(func() ([]byte, error) {
		return r.client.CallContract(ctx, ethereum.CallMsg{
			To:   &r.quoter,
			Data: callData,
		}, nil)
	})
	if err != nil {
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("quoter call failed for fee tier %d", feeTier)))
	}

	outputs, err := r.quoterABI.Unpack("quoteExactInputSingle", result)
	if err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}

	if len(outputs) < 4 {
		return nil, fmt.Errorf("unexpected output length: %d", len(outputs))
	}

	return &QuoteResult{
		AmountOut:               outputs[0].(*big.Int),
		SqrtPriceX96After:       outputs[1].(*big.Int),
		InitializedTicksCrossed: outputs[2].(uint32),
		GasEstimate:             outputs[3].(*big.Int),
	}, nil
}
