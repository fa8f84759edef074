package asset

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

func testWETH() *Asset {
	return New(WETHAddress, "WETH", 18)
}

func testUSDC() *Asset {
	return New(USDCAddress, "USDC", 6)
}

func TestNewAmount_DefensiveCopy(t *testing.T) {
	raw := big.NewInt(1000)
	a := NewAmount(testWETH(), raw)

	raw.SetInt64(9999)

	if a.Raw().Int64() != 1000 {
		t.Errorf("Amount mutated through caller's big.Int: got %s", a.Raw())
	}
}

func TestAmount_AddSub(t *testing.T) {
	weth := testWETH()
	a := NewAmount(weth, big.NewInt(1500))
	b := NewAmount(weth, big.NewInt(500))

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if sum.Raw().Int64() != 2000 {
		t.Errorf("Add = %s, want 2000", sum.Raw())
	}

	diff, err := a.Sub(b)
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	if diff.Raw().Int64() != 1000 {
		t.Errorf("Sub = %s, want 1000", diff.Raw())
	}

	if _, err := b.Sub(a); err != ErrNegativeResult {
		t.Errorf("Sub underflow = %v, want ErrNegativeResult", err)
	}
}

func TestAmount_AssetMismatch(t *testing.T) {
	a := NewAmount(testWETH(), big.NewInt(1))
	b := NewAmount(testUSDC(), big.NewInt(1))

	if _, err := a.Add(b); err == nil {
		t.Error("Add across assets should fail")
	}
	if _, err := a.Cmp(b); err == nil {
		t.Error("Cmp across assets should fail")
	}
}

func TestParseString(t *testing.T) {
	tests := []struct {
		name    string
		asset   *Asset
		input   string
		wantRaw string
		wantErr bool
	}{
		{"one_eth", testWETH(), "1", "1000000000000000000", false},
		{"fractional_eth", testWETH(), "0.005", "5000000000000000", false},
		{"usdc_six_decimals", testUSDC(), "1000.25", "1000250000", false},
		{"too_many_decimals", testUSDC(), "0.0000001", "", true},
		{"negative", testWETH(), "-1", "", true},
		{"garbage", testWETH(), "one", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseString(tt.asset, tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseString(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseString(%q): %v", tt.input, err)
			}
			want, _ := new(big.Int).SetString(tt.wantRaw, 10)
			if got.Raw().Cmp(want) != 0 {
				t.Errorf("ParseString(%q) = %s, want %s", tt.input, got.Raw(), want)
			}
		})
	}
}

func TestToDecimal_RoundTrip(t *testing.T) {
	weth := testWETH()
	in := decimal.RequireFromString("1.2345")

	amt, err := ParseDecimal(weth, in)
	if err != nil {
		t.Fatalf("ParseDecimal: %v", err)
	}
	if !amt.ToDecimal().Equal(in) {
		t.Errorf("round trip = %s, want %s", amt.ToDecimal(), in)
	}
}

func TestRegistry_Symbol(t *testing.T) {
	r := DefaultRegistry()

	if got := r.Symbol(WETHAddress); got != "WETH" {
		t.Errorf("Symbol(WETH) = %q", got)
	}

	unknown := common.HexToAddress("0x1111111111111111111111111111111111111111")
	got := r.Symbol(unknown)
	if got == "" || len(got) >= len(unknown.Hex()) {
		t.Errorf("Symbol(unknown) should be shortened hex, got %q", got)
	}
}
