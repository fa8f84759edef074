package app

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/arb-engine/internal/apperror"
)

func TestReveal_ProfitableRoundTrip(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	params := h.profitableParams()
	h.commitAndAge(t, params)

	res, err := h.exec.Reveal(ctx, testOwner, params)
	if err != nil {
		t.Fatalf("Reveal() error = %v", err)
	}

	if res.Profit.Cmp(params.MinProfit) < 0 {
		t.Errorf("profit %s below the revealer floor %s", res.Profit, params.MinProfit)
	}
	if res.FinalAmount.Cmp(params.AmountIn) <= 0 {
		t.Errorf("final %s does not exceed input %s", res.FinalAmount, params.AmountIn)
	}

	// The engine account ends holding input plus profit in WETH and no
	// stranded USDC.
	wantWETH := new(big.Int).Add(params.AmountIn, res.Profit)
	if bal := h.tokens.BalanceOf(testWETH, testEngine); bal.Cmp(wantWETH) != 0 {
		t.Errorf("engine WETH = %s, want %s", bal, wantWETH)
	}
	if bal := h.tokens.BalanceOf(testUSDC, testEngine); bal.Sign() != 0 {
		t.Errorf("engine USDC = %s, want 0", bal)
	}

	if h.commits.Pending() != 0 {
		t.Errorf("Pending() = %d after reveal, want 0", h.commits.Pending())
	}

	ev := h.reporter.lastReveal(t)
	if !ev.Success || ev.Profit.Cmp(res.Profit) != 0 {
		t.Errorf("reveal event = %+v, want success with profit %s", ev, res.Profit)
	}
}

func TestReveal_SingleUse(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	params := h.profitableParams()
	h.commitAndAge(t, params)

	if _, err := h.exec.Reveal(ctx, testOwner, params); err != nil {
		t.Fatalf("first Reveal() error = %v", err)
	}

	_, err := h.exec.Reveal(ctx, testOwner, params)
	if !apperror.IsCode(err, apperror.CodeCommitmentNotFound) {
		t.Fatalf("second Reveal() error = %v, want COMMITMENT_NOT_FOUND", err)
	}
}

// After a reveal consumes the hash, the same hash may be committed
// again.
func TestReveal_FreesHashForRecommit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	params := h.profitableParams()
	h.commitAndAge(t, params)

	if _, err := h.exec.Reveal(ctx, testOwner, params); err != nil {
		t.Fatalf("Reveal() error = %v", err)
	}

	hash, _ := params.Hash()
	if err := h.commits.Commit(ctx, testOwner, hash); err != nil {
		t.Fatalf("re-Commit() after reveal error = %v", err)
	}
}

func TestReveal_UnknownCommitment(t *testing.T) {
	h := newHarness(t)

	params := h.profitableParams()
	h.tokens.Mint(testWETH, testEngine, params.AmountIn)

	_, err := h.exec.Reveal(context.Background(), testOwner, params)
	if !apperror.IsCode(err, apperror.CodeCommitmentNotFound) {
		t.Fatalf("Reveal() error = %v, want COMMITMENT_NOT_FOUND", err)
	}
}

// A changed salt produces a different hash, so the reveal cannot be
// matched to the stored commitment.
func TestReveal_WrongSalt(t *testing.T) {
	h := newHarness(t)

	params := h.profitableParams()
	h.commitAndAge(t, params)

	params.Salt[0] ^= 0xFF
	_, err := h.exec.Reveal(context.Background(), testOwner, params)
	if !apperror.IsCode(err, apperror.CodeCommitmentNotFound) {
		t.Fatalf("Reveal() with altered salt = %v, want COMMITMENT_NOT_FOUND", err)
	}
}

func TestReveal_UnauthorizedRevealer(t *testing.T) {
	h := newHarness(t)

	params := h.profitableParams()
	h.commitAndAge(t, params)

	_, err := h.exec.Reveal(context.Background(), testEngine, params)
	if !apperror.IsCode(err, apperror.CodeUnauthorizedRevealer) {
		t.Fatalf("Reveal() by non-committer = %v, want UNAUTHORIZED_REVEALER", err)
	}

	// The commitment survives the rejected attempt.
	if h.commits.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", h.commits.Pending())
	}
}

func TestReveal_TimingWindows(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	params := h.profitableParams()
	h.tokens.Mint(testWETH, testEngine, params.AmountIn)
	hash, _ := params.Hash()
	if err := h.commits.Commit(ctx, testOwner, hash); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	// Same block as the commit: one short of the reveal delay.
	_, err := h.exec.Reveal(ctx, testOwner, params)
	if !apperror.IsCode(err, apperror.CodeCommitmentTooRecent) {
		t.Fatalf("Reveal() in commit block = %v, want COMMITMENT_TOO_RECENT", err)
	}

	// Exactly at commit height + delay the window opens.
	h.chain.Advance(minRevealDelay)
	if _, err := h.exec.Reveal(ctx, testOwner, params); err != nil {
		t.Fatalf("Reveal() at window open = %v", err)
	}
}

func TestReveal_Expired(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	params := h.profitableParams()
	h.commitAndAge(t, params)

	// Push past commit height + max age.
	h.chain.Advance(maxCommitmentAge)

	_, err := h.exec.Reveal(ctx, testOwner, params)
	if !apperror.IsCode(err, apperror.CodeCommitmentExpired) {
		t.Fatalf("Reveal() past max age = %v, want COMMITMENT_EXPIRED", err)
	}
}

func TestReveal_DeadlineChecks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	t.Run("passed", func(t *testing.T) {
		params := h.profitableParams()
		params.Deadline = h.ledger.Now().Add(-time.Second)
		h.commitAndAge(t, params)

		_, err := h.exec.Reveal(ctx, testOwner, params)
		if !apperror.IsCode(err, apperror.CodeInvalidDeadline) {
			t.Fatalf("Reveal() past deadline = %v, want INVALID_DEADLINE", err)
		}
	})

	t.Run("exactly now", func(t *testing.T) {
		// The deadline is inclusive: a reveal at the deadline instant
		// still executes.
		params := h.profitableParams()
		params.Deadline = h.ledger.Now()
		params.Salt[1] = 7
		h.commitAndAge(t, params)

		if _, err := h.exec.Reveal(ctx, testOwner, params); err != nil {
			t.Fatalf("Reveal() at deadline instant = %v, want success", err)
		}
	})

	t.Run("too far out", func(t *testing.T) {
		params := h.profitableParams()
		params.Deadline = h.ledger.Now().Add(31 * time.Minute)
		params.Salt[1] = 99
		h.commitAndAge(t, params)

		_, err := h.exec.Reveal(ctx, testOwner, params)
		if !apperror.IsCode(err, apperror.CodeInvalidDeadline) {
			t.Fatalf("Reveal() with distant deadline = %v, want INVALID_DEADLINE", err)
		}
	})
}

func TestReveal_WhilePaused(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	params := h.profitableParams()
	h.commitAndAge(t, params)

	if err := h.admin.Pause(ctx, testOwner); err != nil {
		t.Fatalf("Pause() error = %v", err)
	}
	_, err := h.exec.Reveal(ctx, testOwner, params)
	if !apperror.IsCode(err, apperror.CodeEnginePaused) {
		t.Fatalf("Reveal() while paused = %v, want ENGINE_PAUSED", err)
	}

	// Unpausing makes the same commitment revealable again.
	if err := h.admin.Unpause(ctx, testOwner); err != nil {
		t.Fatalf("Unpause() error = %v", err)
	}
	if _, err := h.exec.Reveal(ctx, testOwner, params); err != nil {
		t.Fatalf("Reveal() after unpause = %v", err)
	}
}

// A hop failure after the commitment is consumed rolls balances back
// but leaves the commitment spent.
func TestReveal_FailureRevertsBalancesKeepsConsumed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	params := h.profitableParams()
	// Demand more than the venues can deliver so the final hop fails
	// its slippage floor.
	params.Steps[1].AmountOutMin = new(big.Int).Mul(big.NewInt(2), big.NewInt(1e18))
	h.commitAndAge(t, params)

	before := h.tokens.BalanceOf(testWETH, testEngine)

	_, err := h.exec.Reveal(ctx, testOwner, params)
	if !apperror.IsCode(err, apperror.CodeInsufficientOutputAmount) {
		t.Fatalf("Reveal() error = %v, want INSUFFICIENT_OUTPUT_AMOUNT", err)
	}

	if bal := h.tokens.BalanceOf(testWETH, testEngine); bal.Cmp(before) != 0 {
		t.Errorf("engine WETH = %s after failed reveal, want %s restored", bal, before)
	}
	if bal := h.tokens.BalanceOf(testUSDC, testEngine); bal.Sign() != 0 {
		t.Errorf("engine USDC = %s after failed reveal, want 0", bal)
	}

	// Consumed: retrying the same reveal finds nothing.
	_, err = h.exec.Reveal(ctx, testOwner, params)
	if !apperror.IsCode(err, apperror.CodeCommitmentNotFound) {
		t.Fatalf("retry Reveal() error = %v, want COMMITMENT_NOT_FOUND", err)
	}

	ev := h.reporter.lastReveal(t)
	if ev.Success || ev.FailureCode != string(apperror.CodeInsufficientOutputAmount) {
		t.Errorf("failure event = %+v, want INSUFFICIENT_OUTPUT_AMOUNT", ev)
	}
}

func TestReveal_ProfitFloors(t *testing.T) {
	t.Run("revealer floor", func(t *testing.T) {
		h := newHarness(t)
		params := h.profitableParams()
		// The trade clears a few percent; demand an absurd floor.
		params.MinProfit = new(big.Int).Mul(big.NewInt(1), big.NewInt(1e18))
		h.commitAndAge(t, params)

		before := h.tokens.BalanceOf(testWETH, testEngine)
		_, err := h.exec.Reveal(context.Background(), testOwner, params)
		if !apperror.IsCode(err, apperror.CodeInsufficientProfit) {
			t.Fatalf("Reveal() error = %v, want INSUFFICIENT_PROFIT", err)
		}
		if bal := h.tokens.BalanceOf(testWETH, testEngine); bal.Cmp(before) != 0 {
			t.Errorf("balances not restored after profit failure")
		}
	})

	t.Run("engine floor", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()

		// Raise the engine-wide floor above what the trade can deliver
		// while keeping the revealer's own floor low.
		if err := h.admin.SetMinimumProfit(ctx, testOwner, new(big.Int).Mul(big.NewInt(1), big.NewInt(1e18))); err != nil {
			t.Fatalf("SetMinimumProfit() error = %v", err)
		}

		params := h.profitableParams()
		params.MinProfit = big.NewInt(1)
		h.commitAndAge(t, params)

		_, err := h.exec.Reveal(ctx, testOwner, params)
		if !apperror.IsCode(err, apperror.CodeBelowMinimumProfit) {
			t.Fatalf("Reveal() error = %v, want BELOW_MINIMUM_PROFIT", err)
		}
	})

	t.Run("round trip at a loss", func(t *testing.T) {
		h := newHarness(t)

		// Trade against the gap: buy where expensive, sell where cheap.
		params := h.profitableParams()
		params.Steps[0].Router = testRouterB
		params.Steps[1].Router = testRouterA
		params.Steps[0].AmountOutMin = big.NewInt(1)
		params.Steps[1].AmountOutMin = big.NewInt(1)
		params.MinProfit = big.NewInt(1)
		h.commitAndAge(t, params)

		_, err := h.exec.Reveal(context.Background(), testOwner, params)
		if !apperror.IsCode(err, apperror.CodeInsufficientProfit) {
			t.Fatalf("Reveal() error = %v, want INSUFFICIENT_PROFIT", err)
		}
	})
}

// A router that reenters Reveal mid-swap finds the commitment already
// consumed.
func TestReveal_ReentrancyGuard(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	params := h.profitableParams()
	h.commitAndAge(t, params)

	var innerErr error
	var reentered bool
	h.routerA.OnSwap = func(ctx context.Context, _, _ common.Address, _ *big.Int) {
		if reentered {
			return
		}
		reentered = true
		_, innerErr = h.exec.Reveal(ctx, testOwner, params)
	}

	if _, err := h.exec.Reveal(ctx, testOwner, params); err != nil {
		t.Fatalf("outer Reveal() error = %v", err)
	}

	if !reentered {
		t.Fatal("reentrant hook did not run")
	}
	if !apperror.IsCode(innerErr, apperror.CodeCommitmentNotFound) {
		t.Fatalf("inner Reveal() error = %v, want COMMITMENT_NOT_FOUND", innerErr)
	}
}

func TestReveal_PathValidationPrecedesConsume(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	params := h.profitableParams()
	params.Steps[1].Router = rogueRouter
	h.commitAndAge(t, params)

	_, err := h.exec.Reveal(ctx, testOwner, params)
	if !apperror.IsCode(err, apperror.CodeRouterNotApproved) {
		t.Fatalf("Reveal() error = %v, want ROUTER_NOT_APPROVED", err)
	}

	// Validation failures leave the commitment intact.
	if h.commits.Pending() != 1 {
		t.Fatalf("Pending() = %d after validation failure, want 1", h.commits.Pending())
	}
}
