// Package domain contains the core domain types for the commit-reveal
// context: swap paths, reveal payloads, and commitment records.
package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// SwapStep is one hop of a swap path. Field names line up with the ABI
// tuple used for commitment hashing.
type SwapStep struct {
	Router       common.Address
	TokenIn      common.Address
	TokenOut     common.Address
	AmountOutMin *big.Int
}

// SwapPath is an ordered sequence of hops. Structural validity (length
// bounds, continuity, round-trip closure) is enforced by the reveal
// validator, not here; a path is plain data until it reaches the engine.
type SwapPath []SwapStep

// First returns the first hop. Panics on an empty path.
func (p SwapPath) First() SwapStep { return p[0] }

// Last returns the final hop. Panics on an empty path.
func (p SwapPath) Last() SwapStep { return p[len(p)-1] }

// Tokens returns the token sequence the path traverses, starting with
// the first hop's input.
func (p SwapPath) Tokens() []common.Address {
	if len(p) == 0 {
		return nil
	}
	out := make([]common.Address, 0, len(p)+1)
	out = append(out, p[0].TokenIn)
	for _, s := range p {
		out = append(out, s.TokenOut)
	}
	return out
}

// Routers returns the distinct routers the path touches, in first-use
// order.
func (p SwapPath) Routers() []common.Address {
	seen := make(map[common.Address]struct{}, len(p))
	out := make([]common.Address, 0, len(p))
	for _, s := range p {
		if _, ok := seen[s.Router]; ok {
			continue
		}
		seen[s.Router] = struct{}{}
		out = append(out, s.Router)
	}
	return out
}
