package app

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arb-engine/business/commitreveal/domain"
	executionApp "github.com/fd1az/arb-engine/business/execution/app"
	executionDomain "github.com/fd1az/arb-engine/business/execution/domain"
	ledgerApp "github.com/fd1az/arb-engine/business/ledger/app"
	"github.com/fd1az/arb-engine/internal/apperror"
	"github.com/fd1az/arb-engine/internal/logger"
)

// TimingConfig holds the reveal window parameters.
type TimingConfig struct {
	// MinRevealDelay is the number of blocks that must pass after the
	// commit before a reveal is accepted.
	MinRevealDelay uint64
	// MaxCommitmentAge is the number of blocks after which a commitment
	// can no longer be revealed.
	MaxCommitmentAge uint64
	// MaxDeadlineWindow bounds how far in the future a reveal deadline
	// may lie.
	MaxDeadlineWindow time.Duration
}

// RevealResult describes a successful round trip.
type RevealResult struct {
	Hash        common.Hash
	FinalAmount *big.Int
	Profit      *big.Int
	Height      uint64
	Duration    time.Duration
}

type revealMetrics struct {
	revealsTotal   metric.Int64Counter
	revealFailures metric.Int64Counter
	revealLatency  metric.Float64Histogram
	pendingCommits metric.Int64UpDownCounter
}

// RevealExecutor runs the reveal flow: match the payload to a stored
// commitment, enforce the timing windows, validate the path, consume
// the commitment, execute the hops, and apply both profit floors.
//
// The commitment is consumed before execution starts. A reveal that
// reaches execution and fails stays consumed; only token balances are
// rolled back. That ordering is what makes a commitment single-use even
// if a router calls back into Reveal mid-swap.
type RevealExecutor struct {
	store     CommitStore
	validator *PathValidator
	hops      *executionApp.HopExecutor
	tokens    *executionDomain.TokenLedger
	admin     *executionApp.AdminService
	ledger    *ledgerApp.LedgerService
	timing    TimingConfig
	reporter  Reporter
	logger    logger.LoggerInterface

	tracer  trace.Tracer
	metrics *revealMetrics
}

// NewRevealExecutor creates a RevealExecutor.
func NewRevealExecutor(
	store CommitStore,
	validator *PathValidator,
	hops *executionApp.HopExecutor,
	tokens *executionDomain.TokenLedger,
	admin *executionApp.AdminService,
	ledger *ledgerApp.LedgerService,
	timing TimingConfig,
	reporter Reporter,
	log logger.LoggerInterface,
) (*RevealExecutor, error) {
	e := &RevealExecutor{
		store:     store,
		validator: validator,
		hops:      hops,
		tokens:    tokens,
		admin:     admin,
		ledger:    ledger,
		timing:    timing,
		reporter:  reporter,
		logger:    log,
		tracer:    otel.Tracer(tracerName),
	}
	if err := e.initMetrics(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *RevealExecutor) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	e.metrics = &revealMetrics{}

	e.metrics.revealsTotal, err = meter.Int64Counter(
		"reveals_total",
		metric.WithDescription("Total successful reveals"),
	)
	if err != nil {
		return err
	}

	e.metrics.revealFailures, err = meter.Int64Counter(
		"reveal_failures_total",
		metric.WithDescription("Total failed reveal attempts"),
	)
	if err != nil {
		return err
	}

	e.metrics.revealLatency, err = meter.Float64Histogram(
		"reveal_latency_ms",
		metric.WithDescription("Reveal execution latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	e.metrics.pendingCommits, err = meter.Int64UpDownCounter(
		"commitments_pending",
		metric.WithDescription("Commitments currently awaiting reveal"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Reveal executes the trade described by params against the commitment
// matching its hash.
func (e *RevealExecutor) Reveal(ctx context.Context, revealer common.Address, params *domain.RevealParams) (*RevealResult, error) {
	start := time.Now()

	hash, err := params.Hash()
	if err != nil {
		return nil, apperror.Validation(apperror.CodeInvalidInput, err.Error())
	}

	ctx, span := e.tracer.Start(ctx, "commitreveal.reveal",
		trace.WithAttributes(
			attribute.String("hash", hash.Hex()),
			attribute.String("revealer", revealer.Hex()),
			attribute.Int("hops", len(params.Steps)),
		))
	defer span.End()

	result, err := e.reveal(ctx, revealer, hash, params, start)
	if err != nil {
		e.metrics.revealFailures.Add(ctx, 1,
			metric.WithAttributes(attribute.String("code", string(apperror.GetCode(err)))))
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	e.metrics.revealsTotal.Add(ctx, 1)
	e.metrics.revealLatency.Record(ctx, float64(time.Since(start).Milliseconds()))
	span.SetAttributes(attribute.String("profit", result.Profit.String()))
	span.SetStatus(codes.Ok, "reveal executed")
	return result, nil
}

func (e *RevealExecutor) reveal(ctx context.Context, revealer common.Address, hash common.Hash, params *domain.RevealParams, start time.Time) (*RevealResult, error) {
	if err := e.admin.RequireActive(); err != nil {
		return nil, err
	}

	c, ok := e.store.Get(hash)
	if !ok {
		return nil, apperror.NotFound(apperror.CodeCommitmentNotFound, hash.Hex())
	}
	if c.Committer != revealer {
		return nil, apperror.Unauthorized(apperror.CodeUnauthorizedRevealer, revealer.Hex())
	}

	height, err := e.ledger.Height(ctx)
	if err != nil {
		return nil, err
	}
	if height < c.RevealableFrom(e.timing.MinRevealDelay) {
		return nil, apperror.New(apperror.CodeCommitmentTooRecent,
			apperror.WithContextf("height %d, revealable from %d",
				height, c.RevealableFrom(e.timing.MinRevealDelay)))
	}
	if height > c.ExpiresAfter(e.timing.MaxCommitmentAge) {
		return nil, apperror.New(apperror.CodeCommitmentExpired,
			apperror.WithContextf("height %d, expired after %d",
				height, c.ExpiresAfter(e.timing.MaxCommitmentAge)))
	}

	// A deadline equal to the current time is still live.
	now := e.ledger.Now()
	if now.After(params.Deadline) {
		return nil, apperror.New(apperror.CodeInvalidDeadline,
			apperror.WithContextf("deadline %s already passed", params.Deadline.Format(time.RFC3339)))
	}
	if e.timing.MaxDeadlineWindow > 0 && params.Deadline.After(now.Add(e.timing.MaxDeadlineWindow)) {
		return nil, apperror.New(apperror.CodeInvalidDeadline,
			apperror.WithContextf("deadline %s exceeds the %s window",
				params.Deadline.Format(time.RFC3339), e.timing.MaxDeadlineWindow))
	}

	if err := e.validator.Validate(params.Asset, params.Steps); err != nil {
		return nil, err
	}

	// Consume before executing. From here on the commitment is spent
	// regardless of the outcome, so a reentrant reveal of the same hash
	// sees COMMITMENT_NOT_FOUND.
	if _, ok := e.store.Consume(hash); !ok {
		return nil, apperror.NotFound(apperror.CodeCommitmentNotFound, hash.Hex())
	}
	e.metrics.pendingCommits.Add(ctx, -1)

	ev := domain.RevealEvent{
		Hash:     hash,
		Revealer: revealer,
		Asset:    params.Asset,
		AmountIn: new(big.Int).Set(params.AmountIn),
		Hops:     len(params.Steps),
	}

	snapshot := e.tokens.Snapshot()

	final, err := e.executeHops(ctx, params)
	if err != nil {
		return nil, e.fail(ctx, ev, snapshot, start, err)
	}

	// Both floors apply to realized profit: the revealer's own and the
	// engine-wide minimum.
	if final.Cmp(params.AmountIn) <= 0 {
		return nil, e.fail(ctx, ev, snapshot, start, apperror.New(apperror.CodeInsufficientProfit,
			apperror.WithContextf("final %s does not exceed input %s", final, params.AmountIn)))
	}
	profit := new(big.Int).Sub(final, params.AmountIn)
	if profit.Cmp(params.MinProfit) < 0 {
		return nil, e.fail(ctx, ev, snapshot, start, apperror.New(apperror.CodeInsufficientProfit,
			apperror.WithContextf("profit %s below revealer floor %s", profit, params.MinProfit)))
	}
	if engineFloor := e.admin.MinimumProfit(); profit.Cmp(engineFloor) < 0 {
		return nil, e.fail(ctx, ev, snapshot, start, apperror.New(apperror.CodeBelowMinimumProfit,
			apperror.WithContextf("profit %s below engine floor %s", profit, engineFloor)))
	}

	ev.Success = true
	ev.Profit = profit
	ev.Timestamp = e.ledger.Now()
	ev.Duration = time.Since(start)
	e.reporter.ReportReveal(ctx, ev)

	e.logger.Info(ctx, "reveal executed",
		"hash", hash.Hex(),
		"revealer", revealer.Hex(),
		"profit", profit.String(),
		"hops", len(params.Steps),
	)

	return &RevealResult{
		Hash:        hash,
		FinalAmount: final,
		Profit:      profit,
		Height:      height,
		Duration:    time.Since(start),
	}, nil
}

// executeHops runs the path, chaining each hop's delivered output and
// output token into the next hop's input.
func (e *RevealExecutor) executeHops(ctx context.Context, params *domain.RevealParams) (*big.Int, error) {
	amount := new(big.Int).Set(params.AmountIn)
	current := params.Asset
	for _, step := range params.Steps {
		out, err := e.hops.Execute(ctx, executionApp.Hop{
			Router:       step.Router,
			CurrentToken: current,
			TokenIn:      step.TokenIn,
			TokenOut:     step.TokenOut,
			AmountIn:     amount,
			AmountOutMin: step.AmountOutMin,
		})
		if err != nil {
			return nil, err
		}
		amount = out
		current = step.TokenOut
	}
	return amount, nil
}

// fail rolls balances back to the snapshot, reports the failed reveal,
// and passes the error through. The consumed commitment is not
// restored.
func (e *RevealExecutor) fail(ctx context.Context, ev domain.RevealEvent, snapshot int, start time.Time, err error) error {
	e.tokens.RevertToSnapshot(snapshot)

	ev.Success = false
	ev.FailureCode = string(apperror.GetCode(err))
	ev.Timestamp = e.ledger.Now()
	ev.Duration = time.Since(start)
	e.reporter.ReportReveal(ctx, ev)

	e.logger.Warn(ctx, "reveal failed after consume",
		"hash", ev.Hash.Hex(),
		"code", ev.FailureCode,
	)
	return err
}
