package app

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/arb-engine/business/commitreveal/domain"
	executionApp "github.com/fd1az/arb-engine/business/execution/app"
	"github.com/fd1az/arb-engine/internal/apperror"
)

// PathValidator checks the structural validity of a swap path against
// the router allow-list. Checks run in a fixed order so callers get a
// stable first error: emptiness, length bounds, start asset, per-hop
// checks, round-trip closure.
type PathValidator struct {
	registry *executionApp.RouterRegistry
	minHops  int
	maxHops  int // 0 disables the upper bound
}

// NewPathValidator creates a validator bound to the allow-list.
func NewPathValidator(registry *executionApp.RouterRegistry, minHops, maxHops int) *PathValidator {
	if minHops < 1 {
		minHops = 1
	}
	return &PathValidator{registry: registry, minHops: minHops, maxHops: maxHops}
}

// Validate checks the path for a trade starting and ending in asset.
func (v *PathValidator) Validate(asset common.Address, path domain.SwapPath) error {
	if len(path) == 0 {
		return apperror.New(apperror.CodeEmptySwapPath)
	}

	if v.maxHops > 0 && len(path) > v.maxHops {
		return apperror.New(apperror.CodePathTooLong,
			apperror.WithContextf("%d hops, maximum %d", len(path), v.maxHops))
	}
	if len(path) < v.minHops {
		return apperror.New(apperror.CodeInvalidSwapPath,
			apperror.WithContextf("%d hops, minimum %d", len(path), v.minHops))
	}

	if path.First().TokenIn != asset {
		return apperror.New(apperror.CodeSwapPathAssetMismatch,
			apperror.WithContextf("path starts at %s, trade asset is %s",
				path.First().TokenIn.Hex(), asset.Hex()))
	}

	// Paths typically reuse one router, so cache the last lookup.
	var lastRouter common.Address
	var lastApproved bool

	for i, step := range path {
		if step.Router != lastRouter || !lastApproved {
			if !v.registry.Approved(step.Router) {
				return apperror.New(apperror.CodeRouterNotApproved,
					apperror.WithContextf("hop %d router %s", i, step.Router.Hex()))
			}
			lastRouter = step.Router
			lastApproved = true
		}

		if i > 0 && step.TokenIn != path[i-1].TokenOut {
			return apperror.New(apperror.CodeInvalidTokenContinuity,
				apperror.WithContextf("hop %d consumes %s but hop %d produced %s",
					i, step.TokenIn.Hex(), i-1, path[i-1].TokenOut.Hex()))
		}

		if step.AmountOutMin == nil || step.AmountOutMin.Sign() <= 0 {
			return apperror.New(apperror.CodeInsufficientSlippageProtection,
				apperror.WithContextf("hop %d has no minimum output", i))
		}
	}

	if path.Last().TokenOut != asset {
		return apperror.New(apperror.CodePathDoesNotReturnToAsset,
			apperror.WithContextf("path ends at %s, trade asset is %s",
				path.Last().TokenOut.Hex(), asset.Hex()))
	}

	return nil
}
