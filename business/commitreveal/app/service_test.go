package app

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/arb-engine/internal/apperror"
	"github.com/fd1az/arb-engine/internal/logger"
	"github.com/fd1az/arb-engine/internal/ratelimit"
)

func hashOf(b byte) common.Hash {
	var h common.Hash
	h[31] = b
	return h
}

func TestCommitService_CommitAndDuplicate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if err := h.commits.Commit(ctx, testOwner, hashOf(1)); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if h.commits.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", h.commits.Pending())
	}

	err := h.commits.Commit(ctx, testOwner, hashOf(1))
	if !apperror.IsCode(err, apperror.CodeCommitmentAlreadyExists) {
		t.Fatalf("duplicate Commit() error = %v, want COMMITMENT_ALREADY_EXISTS", err)
	}

	// A different committer colliding on the same hash is rejected the
	// same way; first writer wins.
	err = h.commits.Commit(ctx, testEngine, hashOf(1))
	if !apperror.IsCode(err, apperror.CodeCommitmentAlreadyExists) {
		t.Fatalf("colliding Commit() error = %v, want COMMITMENT_ALREADY_EXISTS", err)
	}

	stored, ok := h.store.Get(hashOf(1))
	if !ok || stored.Committer != testOwner {
		t.Fatalf("stored committer = %v, want original committer", stored.Committer)
	}
}

func TestCommitService_ZeroHashRejected(t *testing.T) {
	h := newHarness(t)
	err := h.commits.Commit(context.Background(), testOwner, common.Hash{})
	if !apperror.IsCode(err, apperror.CodeInvalidInput) {
		t.Fatalf("Commit(zero) error = %v, want INVALID_INPUT", err)
	}
}

func TestCommitService_CommitWhilePaused(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if err := h.admin.Pause(ctx, testOwner); err != nil {
		t.Fatalf("Pause() error = %v", err)
	}

	if err := h.commits.Commit(ctx, testOwner, hashOf(2)); !apperror.IsCode(err, apperror.CodeEnginePaused) {
		t.Fatalf("Commit() while paused = %v, want ENGINE_PAUSED", err)
	}
	if _, err := h.commits.BatchCommit(ctx, testOwner, []common.Hash{hashOf(3)}); !apperror.IsCode(err, apperror.CodeEnginePaused) {
		t.Fatalf("BatchCommit() while paused = %v, want ENGINE_PAUSED", err)
	}
}

func TestBatchCommit_PartialSuccess(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// Duplicate inside the batch: only the first instance lands.
	stored, err := h.commits.BatchCommit(ctx, testOwner, []common.Hash{hashOf(1), hashOf(2), hashOf(1)})
	if err != nil {
		t.Fatalf("BatchCommit() error = %v", err)
	}
	if stored != 2 {
		t.Fatalf("BatchCommit() stored = %d, want 2", stored)
	}
	if h.commits.Pending() != 2 {
		t.Fatalf("Pending() = %d, want 2", h.commits.Pending())
	}

	// A second batch colliding with stored hashes skips them.
	stored, err = h.commits.BatchCommit(ctx, testOwner, []common.Hash{hashOf(2), hashOf(3), {}})
	if err != nil {
		t.Fatalf("BatchCommit() error = %v", err)
	}
	if stored != 1 {
		t.Fatalf("second BatchCommit() stored = %d, want 1", stored)
	}
}

func TestBatchCommit_EmptyBatch(t *testing.T) {
	h := newHarness(t)
	stored, err := h.commits.BatchCommit(context.Background(), testOwner, nil)
	if err != nil {
		t.Fatalf("BatchCommit(nil) error = %v", err)
	}
	if stored != 0 {
		t.Fatalf("BatchCommit(nil) stored = %d, want 0", stored)
	}
}

func TestBatchCommit_RateLimited(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	limited, err := NewCommitService(h.store, h.ledger, h.admin, ratelimit.New(1), h.reporter, logger.NewNop())
	if err != nil {
		t.Fatalf("NewCommitService() error = %v", err)
	}

	if _, err := limited.BatchCommit(ctx, testOwner, []common.Hash{hashOf(10)}); err != nil {
		t.Fatalf("first batch error = %v", err)
	}
	_, err = limited.BatchCommit(ctx, testOwner, []common.Hash{hashOf(11)})
	if !apperror.IsCode(err, apperror.CodeRateLimitExceeded) {
		t.Fatalf("second batch error = %v, want RATE_LIMIT_EXCEEDED", err)
	}
}

// Anyone may cancel any commitment, not just its committer.
func TestCancelCommit_AnyCaller(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if err := h.commits.Commit(ctx, testOwner, hashOf(7)); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	if err := h.commits.Cancel(ctx, testEngine, hashOf(7)); err != nil {
		t.Fatalf("Cancel() by non-committer error = %v", err)
	}
	if h.commits.Pending() != 0 {
		t.Fatalf("Pending() = %d after cancel, want 0", h.commits.Pending())
	}

	if err := h.commits.Cancel(ctx, testEngine, hashOf(7)); !apperror.IsCode(err, apperror.CodeCommitmentNotFound) {
		t.Fatalf("double Cancel() error = %v, want COMMITMENT_NOT_FOUND", err)
	}
}

// After cancellation the same hash is committable again.
func TestCancelCommit_FreesHash(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if err := h.commits.Commit(ctx, testOwner, hashOf(9)); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if err := h.commits.Cancel(ctx, testOwner, hashOf(9)); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if err := h.commits.Commit(ctx, testOwner, hashOf(9)); err != nil {
		t.Fatalf("re-Commit() after cancel error = %v", err)
	}
}

func TestCommitService_ReportsEvents(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if err := h.commits.Commit(ctx, testOwner, hashOf(4)); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if err := h.commits.Cancel(ctx, testEngine, hashOf(4)); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	h.reporter.mu.Lock()
	defer h.reporter.mu.Unlock()
	if len(h.reporter.commits) != 2 {
		t.Fatalf("commit events = %d, want 2", len(h.reporter.commits))
	}
	if h.reporter.commits[0].Cancelled {
		t.Error("first event should be a commit, not a cancellation")
	}
	last := h.reporter.commits[1]
	if !last.Cancelled || last.CancelledBy != testEngine || last.Committer != testOwner {
		t.Errorf("cancellation event = %+v, want cancelled by engine account", last)
	}
}
