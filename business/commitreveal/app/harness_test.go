package app

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/fd1az/arb-engine/business/commitreveal/domain"
	"github.com/fd1az/arb-engine/business/commitreveal/infra/memory"
	executionApp "github.com/fd1az/arb-engine/business/execution/app"
	executionDomain "github.com/fd1az/arb-engine/business/execution/domain"
	"github.com/fd1az/arb-engine/business/execution/infra/amm"
	ledgerApp "github.com/fd1az/arb-engine/business/ledger/app"
	"github.com/fd1az/arb-engine/internal/logger"
)

// recordingReporter captures events for assertions.
type recordingReporter struct {
	mu      sync.Mutex
	commits []domain.CommitEvent
	reveals []domain.RevealEvent
}

func (r *recordingReporter) ReportCommit(_ context.Context, ev domain.CommitEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commits = append(r.commits, ev)
}

func (r *recordingReporter) ReportReveal(_ context.Context, ev domain.RevealEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reveals = append(r.reveals, ev)
}

func (r *recordingReporter) lastReveal(t *testing.T) domain.RevealEvent {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.reveals) == 0 {
		t.Fatal("no reveal events recorded")
	}
	return r.reveals[len(r.reveals)-1]
}

// harness wires a full engine against two local venues with a price
// gap: WETH is cheaper on venue B, so WETH -> USDC on A -> WETH on B
// closes profitably.
type harness struct {
	chain    *ledgerApp.ManualLedger
	ledger   *ledgerApp.LedgerService
	tokens   *executionDomain.TokenLedger
	admin    *executionApp.AdminService
	registry *executionApp.RouterRegistry
	store    *memory.Store
	commits  *CommitService
	exec     *RevealExecutor
	reporter *recordingReporter
	routerA  *amm.Router
	routerB  *amm.Router
}

const (
	minRevealDelay   = 1
	maxCommitmentAge = 10
)

func newHarness(t *testing.T) *harness {
	t.Helper()

	chain := ledgerApp.NewManualLedger(100)
	chain.SetTime(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	ledger := ledgerApp.NewLedgerService(chain, chain)

	tokens := executionDomain.NewTokenLedger()
	admin := executionApp.NewAdminService(testOwner, testEngine, big.NewInt(1e15), tokens, logger.NewNop())
	registry := executionApp.NewRouterRegistry(admin, logger.NewNop())
	hops := executionApp.NewHopExecutor(tokens, registry, testEngine, logger.NewNop())

	routerA := amm.NewRouter(testRouterA, tokens)
	routerA.AddLiquidity(testWETH, testUSDC,
		new(big.Int).Mul(big.NewInt(1000), big.NewInt(1e18)),
		new(big.Int).Mul(big.NewInt(3_000_000), big.NewInt(1e6)),
	)
	routerB := amm.NewRouter(testRouterB, tokens)
	routerB.AddLiquidity(testWETH, testUSDC,
		new(big.Int).Mul(big.NewInt(1000), big.NewInt(1e18)),
		new(big.Int).Mul(big.NewInt(2_800_000), big.NewInt(1e6)),
	)

	ctx := context.Background()
	for _, r := range []*amm.Router{routerA, routerB} {
		if err := registry.Add(ctx, testOwner, r); err != nil {
			t.Fatalf("registry Add() error = %v", err)
		}
	}

	store := memory.NewStore()
	reporter := &recordingReporter{}

	commits, err := NewCommitService(store, ledger, admin, nil, reporter, logger.NewNop())
	if err != nil {
		t.Fatalf("NewCommitService() error = %v", err)
	}

	validator := NewPathValidator(registry, 1, 5)
	exec, err := NewRevealExecutor(store, validator, hops, tokens, admin, ledger, TimingConfig{
		MinRevealDelay:    minRevealDelay,
		MaxCommitmentAge:  maxCommitmentAge,
		MaxDeadlineWindow: 30 * time.Minute,
	}, reporter, logger.NewNop())
	if err != nil {
		t.Fatalf("NewRevealExecutor() error = %v", err)
	}

	return &harness{
		chain:    chain,
		ledger:   ledger,
		tokens:   tokens,
		admin:    admin,
		registry: registry,
		store:    store,
		commits:  commits,
		exec:     exec,
		reporter: reporter,
		routerA:  routerA,
		routerB:  routerB,
	}
}

// profitableParams builds the canonical two-hop round trip across the
// harness venues.
func (h *harness) profitableParams() *domain.RevealParams {
	return &domain.RevealParams{
		Asset:    testWETH,
		AmountIn: big.NewInt(1e18),
		Steps: domain.SwapPath{
			{Router: testRouterA, TokenIn: testWETH, TokenOut: testUSDC, AmountOutMin: big.NewInt(2_900_000_000)},
			{Router: testRouterB, TokenIn: testUSDC, TokenOut: testWETH, AmountOutMin: big.NewInt(1_010_000_000_000_000_000)},
		},
		MinProfit: big.NewInt(1e16),
		Deadline:  h.ledger.Now().Add(10 * time.Minute),
		Salt:      [32]byte{42},
	}
}

// commitAndAge funds the engine, commits the params hash, and advances
// the chain past the reveal delay.
func (h *harness) commitAndAge(t *testing.T, params *domain.RevealParams) {
	t.Helper()
	h.tokens.Mint(testWETH, testEngine, params.AmountIn)

	hash, err := params.Hash()
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if err := h.commits.Commit(context.Background(), testOwner, hash); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	h.chain.Advance(minRevealDelay)
}
