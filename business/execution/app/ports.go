// Package app contains application services for the execution context:
// router administration, the allow-list, and single-hop execution.
package app

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Router is a swap venue the engine can trade against. Implementations
// pull tokenIn from the caller's ledger balance via allowance and credit
// tokenOut to the recipient.
type Router interface {
	// Address identifies the router on the ledger.
	Address() common.Address

	// SwapExactIn swaps exactly amountIn of tokenIn for at least
	// amountOutMin of tokenOut, crediting the proceeds to recipient.
	// Returns the amount of tokenOut delivered.
	SwapExactIn(ctx context.Context, caller common.Address, tokenIn, tokenOut common.Address, amountIn, amountOutMin *big.Int, recipient common.Address) (*big.Int, error)

	// QuoteExactIn returns the amount of tokenOut amountIn would buy at
	// current prices, without moving funds.
	QuoteExactIn(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int) (*big.Int, error)
}
