// Package amm provides an in-process constant-product swap venue. It is
// the default router implementation for local execution and the harness
// for adversarial router behavior in tests.
package amm

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/arb-engine/business/execution/domain"
	"github.com/fd1az/arb-engine/internal/apperror"
)

const defaultFeeBps = 30 // 0.30%, the classic v2 fee

type pairKey struct {
	lo, hi common.Address
}

func keyFor(a, b common.Address) pairKey {
	if a.Cmp(b) > 0 {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

type pool struct {
	reserves map[common.Address]*big.Int
}

// Router is a constant-product market maker settling against the token
// ledger. Behavior knobs (fault injection, swap hooks) exist so the
// engine's defenses can be exercised against misbehaving venues.
type Router struct {
	address common.Address
	ledger  *domain.TokenLedger
	feeBps  int64

	mu    sync.Mutex
	pools map[pairKey]*pool

	// OnSwap, when set, runs after funds are pulled and before proceeds
	// are delivered. Reentrancy drills hang reveal attempts off it.
	OnSwap func(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int)

	// ShortChangeBps shaves the delivered output by the given basis
	// points while still claiming the full amount.
	ShortChangeBps int64

	// SkipMinOutCheck makes the router ignore amountOutMin, modeling a
	// venue that does not honor slippage bounds.
	SkipMinOutCheck bool
}

// NewRouter creates a router at the given ledger address.
func NewRouter(address common.Address, ledger *domain.TokenLedger) *Router {
	return &Router{
		address: address,
		ledger:  ledger,
		feeBps:  defaultFeeBps,
		pools:   make(map[pairKey]*pool),
	}
}

// Address implements app.Router.
func (r *Router) Address() common.Address { return r.address }

// SetFeeBps overrides the swap fee.
func (r *Router) SetFeeBps(bps int64) { r.feeBps = bps }

// AddLiquidity seeds the pair's reserves. The backing tokens are minted
// to the router's ledger address so settlement balances.
func (r *Router) AddLiquidity(tokenA, tokenB common.Address, reserveA, reserveB *big.Int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := keyFor(tokenA, tokenB)
	p, ok := r.pools[k]
	if !ok {
		p = &pool{reserves: make(map[common.Address]*big.Int)}
		r.pools[k] = p
	}

	for token, amt := range map[common.Address]*big.Int{tokenA: reserveA, tokenB: reserveB} {
		cur, ok := p.reserves[token]
		if !ok {
			cur = new(big.Int)
		}
		p.reserves[token] = new(big.Int).Add(cur, amt)
		r.ledger.Mint(token, r.address, amt)
	}
}

// QuoteExactIn implements app.Router.
func (r *Router) QuoteExactIn(_ context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int) (*big.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.quote(tokenIn, tokenOut, amountIn)
}

// SwapExactIn implements app.Router.
func (r *Router) SwapExactIn(ctx context.Context, caller common.Address, tokenIn, tokenOut common.Address, amountIn, amountOutMin *big.Int, recipient common.Address) (*big.Int, error) {
	r.mu.Lock()
	out, err := r.quote(tokenIn, tokenOut, amountIn)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if err := r.ledger.TransferFrom(tokenIn, r.address, caller, r.address, amountIn); err != nil {
		return nil, err
	}

	if r.OnSwap != nil {
		r.OnSwap(ctx, tokenIn, tokenOut, amountIn)
	}

	delivered := out
	if r.ShortChangeBps > 0 {
		shave := new(big.Int).Mul(out, big.NewInt(r.ShortChangeBps))
		shave.Div(shave, big.NewInt(10000))
		delivered = new(big.Int).Sub(out, shave)
	}

	if !r.SkipMinOutCheck && delivered.Cmp(amountOutMin) < 0 {
		return nil, apperror.New(apperror.CodeInsufficientOutputAmount,
			apperror.WithContextf("quote %s below minimum %s", delivered, amountOutMin))
	}

	if err := r.ledger.Transfer(tokenOut, r.address, recipient, delivered); err != nil {
		return nil, err
	}

	r.mu.Lock()
	k := keyFor(tokenIn, tokenOut)
	p := r.pools[k]
	p.reserves[tokenIn] = new(big.Int).Add(p.reserves[tokenIn], amountIn)
	p.reserves[tokenOut] = new(big.Int).Sub(p.reserves[tokenOut], delivered)
	r.mu.Unlock()

	// Claim the full quote even when short-changing.
	return out, nil
}

// quote applies the x*y=k formula with the fee on input. Caller holds
// the lock.
func (r *Router) quote(tokenIn, tokenOut common.Address, amountIn *big.Int) (*big.Int, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, apperror.Validation(apperror.CodeInvalidInput, "amountIn must be positive")
	}

	p, ok := r.pools[keyFor(tokenIn, tokenOut)]
	if !ok {
		return nil, apperror.NotFound(apperror.CodeNotFound,
			"no pool for "+tokenIn.Hex()+"/"+tokenOut.Hex())
	}

	reserveIn, okIn := p.reserves[tokenIn]
	reserveOut, okOut := p.reserves[tokenOut]
	if !okIn || !okOut || reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
		return nil, apperror.New(apperror.CodeSwapExecutionFailed,
			apperror.WithContext("pool has no liquidity"))
	}

	feeMul := big.NewInt(10000 - r.feeBps)
	inWithFee := new(big.Int).Mul(amountIn, feeMul)

	num := new(big.Int).Mul(inWithFee, reserveOut)
	den := new(big.Int).Mul(reserveIn, big.NewInt(10000))
	den.Add(den, inWithFee)

	return num.Div(num, den), nil
}
