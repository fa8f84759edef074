package domain

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// RevealParams is the full trade description whose hash was committed.
// Every field participates in the hash; changing any of them after
// commit produces a different hash and the reveal will not match.
type RevealParams struct {
	// Asset is the round-trip asset the trade starts and ends in.
	Asset common.Address
	// AmountIn is the input amount in raw asset units.
	AmountIn *big.Int
	// Steps is the swap path.
	Steps SwapPath
	// MinProfit is the revealer's own profit floor in raw asset units.
	MinProfit *big.Int
	// Deadline is the wall-clock expiry of the reveal.
	Deadline time.Time
	// Salt blinds the hash so identical trades commit to different
	// values.
	Salt [32]byte
}

// hashArgs is the ABI schema the commitment hash is computed over:
// (address, uint256, (address,address,address,uint256)[], uint256,
// uint256, bytes32).
var hashArgs abi.Arguments

func init() {
	addressTy, err := abi.NewType("address", "", nil)
	if err != nil {
		panic(err)
	}
	uint256Ty, err := abi.NewType("uint256", "", nil)
	if err != nil {
		panic(err)
	}
	bytes32Ty, err := abi.NewType("bytes32", "", nil)
	if err != nil {
		panic(err)
	}
	stepsTy, err := abi.NewType("tuple[]", "", []abi.ArgumentMarshaling{
		{Name: "router", Type: "address"},
		{Name: "tokenIn", Type: "address"},
		{Name: "tokenOut", Type: "address"},
		{Name: "amountOutMin", Type: "uint256"},
	})
	if err != nil {
		panic(err)
	}

	hashArgs = abi.Arguments{
		{Type: addressTy},
		{Type: uint256Ty},
		{Type: stepsTy},
		{Type: uint256Ty},
		{Type: uint256Ty},
		{Type: bytes32Ty},
	}
}

// Hash computes the keccak256 commitment hash over the ABI encoding of
// the params. The deadline is encoded as a unix timestamp.
func (p *RevealParams) Hash() (common.Hash, error) {
	if p.AmountIn == nil || p.MinProfit == nil {
		return common.Hash{}, fmt.Errorf("amount fields must be set")
	}

	steps := make([]SwapStep, len(p.Steps))
	copy(steps, p.Steps)
	for i := range steps {
		if steps[i].AmountOutMin == nil {
			steps[i].AmountOutMin = new(big.Int)
		}
	}

	packed, err := hashArgs.Pack(
		p.Asset,
		p.AmountIn,
		steps,
		p.MinProfit,
		big.NewInt(p.Deadline.Unix()),
		p.Salt,
	)
	if err != nil {
		return common.Hash{}, fmt.Errorf("pack reveal params: %w", err)
	}

	return crypto.Keccak256Hash(packed), nil
}
