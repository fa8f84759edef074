package amm

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/arb-engine/business/execution/domain"
	"github.com/fd1az/arb-engine/internal/apperror"
)

var (
	weth   = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	usdc   = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	venue  = common.HexToAddress("0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D")
	trader = common.HexToAddress("0x00000000000000000000000000000000000000EE")
)

func newVenue(t *testing.T) (*Router, *domain.TokenLedger) {
	t.Helper()
	ledger := domain.NewTokenLedger()
	r := NewRouter(venue, ledger)
	r.AddLiquidity(weth, usdc,
		new(big.Int).Mul(big.NewInt(100), big.NewInt(1e18)),
		new(big.Int).Mul(big.NewInt(300_000), big.NewInt(1e6)),
	)
	return r, ledger
}

func TestRouter_QuoteExactIn(t *testing.T) {
	r, _ := newVenue(t)
	ctx := context.Background()

	// 1 WETH into a 100 / 300k pool at 0.3% fee.
	out, err := r.QuoteExactIn(ctx, weth, usdc, big.NewInt(1e18))
	if err != nil {
		t.Fatalf("QuoteExactIn() error = %v", err)
	}

	// x*y=k with fee: 300000e6 * 0.997e18 / (100e18 + 0.997e18)
	if out.Cmp(big.NewInt(2950e6)) < 0 || out.Cmp(big.NewInt(2970e6)) > 0 {
		t.Errorf("quote = %s, want ~2961 USDC", out)
	}

	// Larger trades get worse prices.
	bigOut, err := r.QuoteExactIn(ctx, weth, usdc, new(big.Int).Mul(big.NewInt(10), big.NewInt(1e18)))
	if err != nil {
		t.Fatalf("QuoteExactIn() error = %v", err)
	}
	perUnit := new(big.Int).Div(bigOut, big.NewInt(10))
	if perUnit.Cmp(out) >= 0 {
		t.Errorf("10 WETH per-unit price %s not worse than 1 WETH price %s", perUnit, out)
	}
}

func TestRouter_SwapMovesReservesAndFunds(t *testing.T) {
	r, ledger := newVenue(t)
	ctx := context.Background()

	amountIn := big.NewInt(1e18)
	ledger.Mint(weth, trader, amountIn)
	ledger.Approve(weth, trader, venue, amountIn)

	quote, _ := r.QuoteExactIn(ctx, weth, usdc, amountIn)

	out, err := r.SwapExactIn(ctx, trader, weth, usdc, amountIn, quote, trader)
	if err != nil {
		t.Fatalf("SwapExactIn() error = %v", err)
	}
	if out.Cmp(quote) != 0 {
		t.Errorf("swap output %s != quote %s", out, quote)
	}

	if bal := ledger.BalanceOf(usdc, trader); bal.Cmp(quote) != 0 {
		t.Errorf("trader USDC = %s, want %s", bal, quote)
	}
	if bal := ledger.BalanceOf(weth, trader); bal.Sign() != 0 {
		t.Errorf("trader WETH = %s, want 0", bal)
	}

	// Price moved against the same direction.
	second, _ := r.QuoteExactIn(ctx, weth, usdc, amountIn)
	if second.Cmp(quote) >= 0 {
		t.Errorf("second quote %s not worse than first %s", second, quote)
	}
}

func TestRouter_SwapWithoutAllowance(t *testing.T) {
	r, ledger := newVenue(t)
	ledger.Mint(weth, trader, big.NewInt(1e18))

	_, err := r.SwapExactIn(context.Background(), trader, weth, usdc, big.NewInt(1e18), big.NewInt(1), trader)
	if !apperror.IsCode(err, apperror.CodeInsufficientAllowance) {
		t.Fatalf("SwapExactIn() error = %v, want INSUFFICIENT_ALLOWANCE", err)
	}
}

func TestRouter_HonorsMinOut(t *testing.T) {
	r, ledger := newVenue(t)
	ctx := context.Background()

	amountIn := big.NewInt(1e18)
	ledger.Mint(weth, trader, amountIn)
	ledger.Approve(weth, trader, venue, amountIn)

	quote, _ := r.QuoteExactIn(ctx, weth, usdc, amountIn)
	tooMuch := new(big.Int).Add(quote, big.NewInt(1))

	_, err := r.SwapExactIn(ctx, trader, weth, usdc, amountIn, tooMuch, trader)
	if !apperror.IsCode(err, apperror.CodeInsufficientOutputAmount) {
		t.Fatalf("SwapExactIn() error = %v, want INSUFFICIENT_OUTPUT_AMOUNT", err)
	}
}

func TestRouter_UnknownPair(t *testing.T) {
	r, _ := newVenue(t)
	dai := common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")

	_, err := r.QuoteExactIn(context.Background(), weth, dai, big.NewInt(1e18))
	if !apperror.IsCode(err, apperror.CodeNotFound) {
		t.Fatalf("QuoteExactIn() error = %v, want NOT_FOUND", err)
	}
}
