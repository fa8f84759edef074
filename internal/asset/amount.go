package asset

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrNilAsset        = errors.New("asset: nil asset")
	ErrNilRaw          = errors.New("asset: nil raw value")
	ErrNegativeAmount  = errors.New("asset: negative amount")
	ErrAssetMismatch   = errors.New("asset: cannot operate on different assets")
	ErrNegativeResult  = errors.New("asset: operation would result in negative amount")
	ErrTooManyDecimals = errors.New("asset: too many decimal places for asset")
)

// Amount is an immutable value object representing a quantity of an
// asset. The raw value is always in the smallest unit (wei).
type Amount struct {
	raw   *big.Int
	asset *Asset
}

// NewAmount creates an Amount from a raw big.Int value.
func NewAmount(asset *Asset, raw *big.Int) Amount {
	if asset == nil {
		panic(ErrNilAsset)
	}
	if raw == nil {
		panic(ErrNilRaw)
	}
	if raw.Sign() < 0 {
		panic(ErrNegativeAmount)
	}

	return Amount{
		raw:   new(big.Int).Set(raw), // defensive copy
		asset: asset,
	}
}

// Zero creates a zero Amount for the given asset.
func Zero(asset *Asset) Amount {
	return NewAmount(asset, big.NewInt(0))
}

// Raw returns a copy of the raw big.Int value.
func (a Amount) Raw() *big.Int {
	if a.raw == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(a.raw)
}

// Asset returns the asset this amount is denominated in.
func (a Amount) Asset() *Asset {
	return a.asset
}

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool {
	return a.raw == nil || a.raw.Sign() == 0
}

// IsPositive returns true if the amount is greater than zero.
func (a Amount) IsPositive() bool {
	return a.raw != nil && a.raw.Sign() > 0
}

// Add adds two amounts of the same asset.
func (a Amount) Add(b Amount) (Amount, error) {
	if err := a.checkSameAsset(b); err != nil {
		return Amount{}, err
	}
	return NewAmount(a.asset, new(big.Int).Add(a.raw, b.raw)), nil
}

// Sub subtracts b from a (same asset only).
func (a Amount) Sub(b Amount) (Amount, error) {
	if err := a.checkSameAsset(b); err != nil {
		return Amount{}, err
	}
	if a.raw.Cmp(b.raw) < 0 {
		return Amount{}, ErrNegativeResult
	}
	return NewAmount(a.asset, new(big.Int).Sub(a.raw, b.raw)), nil
}

// Cmp compares two amounts of the same asset.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func (a Amount) Cmp(b Amount) (int, error) {
	if err := a.checkSameAsset(b); err != nil {
		return 0, err
	}
	return a.raw.Cmp(b.raw), nil
}

// Equals returns true if both amounts are equal (same asset and value).
func (a Amount) Equals(b Amount) bool {
	if !a.asset.Equals(b.asset) {
		return false
	}
	return a.raw.Cmp(b.raw) == 0
}

// ToDecimal converts the amount to decimal.Decimal for display.
// Boundary function: use only for UI/display, not calculations.
func (a Amount) ToDecimal() decimal.Decimal {
	if a.raw == nil || a.asset == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(a.raw, -int32(a.asset.Decimals()))
}

// ParseDecimal creates an Amount from a decimal value.
// Boundary function: use for parsing config and user input.
func ParseDecimal(asset *Asset, d decimal.Decimal) (Amount, error) {
	if asset == nil {
		return Amount{}, ErrNilAsset
	}
	if d.IsNegative() {
		return Amount{}, ErrNegativeAmount
	}

	scaled := d.Shift(int32(asset.Decimals()))
	if !scaled.Equal(scaled.Truncate(0)) {
		return Amount{}, ErrTooManyDecimals
	}

	return NewAmount(asset, scaled.BigInt()), nil
}

// ParseString creates an Amount from a string decimal value.
func ParseString(asset *Asset, s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("asset: invalid decimal string: %w", err)
	}
	return ParseDecimal(asset, d)
}

// String returns a human-readable representation (e.g., "1.5 WETH").
func (a Amount) String() string {
	if a.asset == nil {
		return "0 ???"
	}
	return fmt.Sprintf("%s %s", a.ToDecimal().String(), a.asset.Symbol())
}

func (a Amount) checkSameAsset(b Amount) error {
	if a.asset == nil || b.asset == nil {
		return ErrNilAsset
	}
	if !a.asset.Equals(b.asset) {
		return fmt.Errorf("%w: %s vs %s", ErrAssetMismatch, a.asset.Symbol(), b.asset.Symbol())
	}
	return nil
}

// FormatRaw renders a raw value in the asset's display units. Nil-safe;
// intended for logging amounts that live outside an Amount.
func FormatRaw(asset *Asset, raw *big.Int) string {
	if asset == nil || raw == nil {
		return "0"
	}
	return decimal.NewFromBigInt(raw, -int32(asset.Decimals())).String()
}
