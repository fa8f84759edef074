package asset

import "github.com/ethereum/go-ethereum/common"

// Well-known mainnet token addresses.
var (
	WETHAddress = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	USDCAddress = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	USDTAddress = common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	DAIAddress  = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
	WBTCAddress = common.HexToAddress("0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599")
)

// DefaultRegistry returns a registry pre-populated with common mainnet
// tokens.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(New(WETHAddress, "WETH", 18))
	r.Register(New(USDCAddress, "USDC", 6))
	r.Register(New(USDTAddress, "USDT", 6))
	r.Register(New(DAIAddress, "DAI", 18))
	r.Register(New(WBTCAddress, "WBTC", 8))
	return r
}
