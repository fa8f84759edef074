// Package asset provides a type-safe model for ERC20-style tokens.
// The engine core computes on *big.Int raw units; decimal.Decimal is
// used only at boundaries (config parsing, display).
package asset

import "github.com/ethereum/go-ethereum/common"

// Asset describes a token. Identity is the contract address; the symbol
// is display metadata only.
type Asset struct {
	address  common.Address
	symbol   string
	decimals uint8
}

// New creates an Asset.
func New(address common.Address, symbol string, decimals uint8) *Asset {
	if symbol == "" {
		panic("asset: empty symbol")
	}
	if decimals > 30 {
		panic("asset: suspicious decimals (>30)")
	}

	return &Asset{
		address:  address,
		symbol:   symbol,
		decimals: decimals,
	}
}

// Address returns the token contract address.
func (a *Asset) Address() common.Address {
	return a.address
}

// Symbol returns the ticker symbol (e.g., "WETH", "USDC").
func (a *Asset) Symbol() string {
	return a.symbol
}

// Decimals returns the number of decimal places.
func (a *Asset) Decimals() uint8 {
	return a.decimals
}

// String returns a human-readable representation.
func (a *Asset) String() string {
	return a.symbol
}

// Equals compares two Assets by address.
func (a *Asset) Equals(other *Asset) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.address == other.address
}
