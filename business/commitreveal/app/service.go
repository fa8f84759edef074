package app

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arb-engine/business/commitreveal/domain"
	executionApp "github.com/fd1az/arb-engine/business/execution/app"
	ledgerApp "github.com/fd1az/arb-engine/business/ledger/app"
	"github.com/fd1az/arb-engine/internal/apperror"
	"github.com/fd1az/arb-engine/internal/logger"
	"github.com/fd1az/arb-engine/internal/ratelimit"
)

const (
	tracerName = "github.com/fd1az/arb-engine/business/commitreveal/app"
	meterName  = "github.com/fd1az/arb-engine/business/commitreveal/app"
)

type commitMetrics struct {
	commitsTotal   metric.Int64Counter
	cancelsTotal   metric.Int64Counter
	batchSkipped   metric.Int64Counter
	pendingCommits metric.Int64UpDownCounter
}

// CommitService handles commitment intake: single commits, best-effort
// batches, and cancellation.
type CommitService struct {
	store    CommitStore
	ledger   *ledgerApp.LedgerService
	admin    *executionApp.AdminService
	limiter  *ratelimit.Limiter
	reporter Reporter
	logger   logger.LoggerInterface

	tracer  trace.Tracer
	metrics *commitMetrics
}

// NewCommitService creates a CommitService. limiter bounds batch
// submissions and may be nil to disable rate limiting.
func NewCommitService(store CommitStore, ledger *ledgerApp.LedgerService, admin *executionApp.AdminService, limiter *ratelimit.Limiter, reporter Reporter, log logger.LoggerInterface) (*CommitService, error) {
	s := &CommitService{
		store:    store,
		ledger:   ledger,
		admin:    admin,
		limiter:  limiter,
		reporter: reporter,
		logger:   log,
		tracer:   otel.Tracer(tracerName),
	}
	if err := s.initMetrics(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *CommitService) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	s.metrics = &commitMetrics{}

	s.metrics.commitsTotal, err = meter.Int64Counter(
		"commitments_total",
		metric.WithDescription("Total commitments accepted"),
	)
	if err != nil {
		return err
	}

	s.metrics.cancelsTotal, err = meter.Int64Counter(
		"commitment_cancels_total",
		metric.WithDescription("Total commitments cancelled"),
	)
	if err != nil {
		return err
	}

	s.metrics.batchSkipped, err = meter.Int64Counter(
		"commitment_batch_skipped_total",
		metric.WithDescription("Commitments skipped during batch intake"),
	)
	if err != nil {
		return err
	}

	s.metrics.pendingCommits, err = meter.Int64UpDownCounter(
		"commitments_pending",
		metric.WithDescription("Commitments currently awaiting reveal"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Commit stores a single commitment hash for committer at the current
// ledger height.
func (s *CommitService) Commit(ctx context.Context, committer common.Address, hash common.Hash) error {
	ctx, span := s.tracer.Start(ctx, "commitreveal.commit",
		trace.WithAttributes(attribute.String("hash", hash.Hex())))
	defer span.End()

	if err := s.admin.RequireActive(); err != nil {
		return err
	}
	if hash == (common.Hash{}) {
		return apperror.Validation(apperror.CodeInvalidInput, "zero commitment hash")
	}

	height, err := s.ledger.Height(ctx)
	if err != nil {
		return err
	}

	c := domain.Commitment{
		Hash:        hash,
		Committer:   committer,
		Height:      height,
		CommittedAt: s.ledger.Now(),
	}
	if err := s.store.Put(c); err != nil {
		return err
	}

	s.metrics.commitsTotal.Add(ctx, 1)
	s.metrics.pendingCommits.Add(ctx, 1)

	s.logger.Info(ctx, "commitment accepted",
		"hash", hash.Hex(),
		"committer", committer.Hex(),
		"height", height,
	)
	s.reporter.ReportCommit(ctx, domain.CommitEvent{
		Hash:      hash,
		Committer: committer,
		Height:    height,
		Timestamp: c.CommittedAt,
	})

	return nil
}

// BatchCommit stores a batch of hashes best-effort: collisions and zero
// hashes are skipped, everything else lands at the same height. Returns
// the number of commitments actually stored.
func (s *CommitService) BatchCommit(ctx context.Context, committer common.Address, hashes []common.Hash) (int, error) {
	ctx, span := s.tracer.Start(ctx, "commitreveal.batch_commit",
		trace.WithAttributes(attribute.Int("batch_size", len(hashes))))
	defer span.End()

	if err := s.admin.RequireActive(); err != nil {
		return 0, err
	}
	if len(hashes) == 0 {
		return 0, nil
	}
	if s.limiter != nil && !s.limiter.Allow() {
		return 0, apperror.New(apperror.CodeRateLimitExceeded,
			apperror.WithContext("batch commit rate exceeded"))
	}

	height, err := s.ledger.Height(ctx)
	if err != nil {
		return 0, err
	}
	now := s.ledger.Now()

	stored := 0
	for _, hash := range hashes {
		if hash == (common.Hash{}) {
			s.metrics.batchSkipped.Add(ctx, 1)
			continue
		}
		c := domain.Commitment{
			Hash:        hash,
			Committer:   committer,
			Height:      height,
			CommittedAt: now,
		}
		if err := s.store.Put(c); err != nil {
			s.metrics.batchSkipped.Add(ctx, 1)
			s.logger.Debug(ctx, "batch commitment skipped", "hash", hash.Hex(), "error", err)
			continue
		}
		stored++
		s.reporter.ReportCommit(ctx, domain.CommitEvent{
			Hash:      hash,
			Committer: committer,
			Height:    height,
			Timestamp: now,
		})
	}

	s.metrics.commitsTotal.Add(ctx, int64(stored))
	s.metrics.pendingCommits.Add(ctx, int64(stored))
	span.SetAttributes(attribute.Int("stored", stored))

	s.logger.Info(ctx, "batch commit processed",
		"committer", committer.Hex(),
		"submitted", len(hashes),
		"stored", stored,
	)

	return stored, nil
}

// Cancel removes a pending commitment. Any caller may cancel any
// commitment; cancellation only ever destroys the canceller's
// optionality, so restricting it buys nothing.
func (s *CommitService) Cancel(ctx context.Context, caller common.Address, hash common.Hash) error {
	ctx, span := s.tracer.Start(ctx, "commitreveal.cancel",
		trace.WithAttributes(attribute.String("hash", hash.Hex())))
	defer span.End()

	if err := s.admin.RequireActive(); err != nil {
		return err
	}

	c, ok := s.store.Consume(hash)
	if !ok {
		return apperror.NotFound(apperror.CodeCommitmentNotFound, hash.Hex())
	}

	s.metrics.cancelsTotal.Add(ctx, 1)
	s.metrics.pendingCommits.Add(ctx, -1)

	s.logger.Info(ctx, "commitment cancelled",
		"hash", hash.Hex(),
		"committer", c.Committer.Hex(),
		"cancelled_by", caller.Hex(),
	)
	s.reporter.ReportCommit(ctx, domain.CommitEvent{
		Hash:        hash,
		Committer:   c.Committer,
		Height:      c.Height,
		Timestamp:   s.ledger.Now(),
		Cancelled:   true,
		CancelledBy: caller,
	})

	return nil
}

// Pending returns the number of commitments awaiting reveal.
func (s *CommitService) Pending() int {
	return s.store.Count()
}
