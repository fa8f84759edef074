package domain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/arb-engine/internal/apperror"
)

var (
	tokenA = common.HexToAddress("0xAAAA000000000000000000000000000000000001")
	tokenB = common.HexToAddress("0xBBBB000000000000000000000000000000000002")
	alice  = common.HexToAddress("0x1000000000000000000000000000000000000001")
	bob    = common.HexToAddress("0x2000000000000000000000000000000000000002")
)

func TestTokenLedger_TransferMovesBalance(t *testing.T) {
	l := NewTokenLedger()
	l.Mint(tokenA, alice, big.NewInt(100))

	if err := l.Transfer(tokenA, alice, bob, big.NewInt(30)); err != nil {
		t.Fatalf("Transfer() error = %v", err)
	}

	if got := l.BalanceOf(tokenA, alice); got.Cmp(big.NewInt(70)) != 0 {
		t.Errorf("alice balance = %s, want 70", got)
	}
	if got := l.BalanceOf(tokenA, bob); got.Cmp(big.NewInt(30)) != 0 {
		t.Errorf("bob balance = %s, want 30", got)
	}
}

func TestTokenLedger_TransferInsufficientBalance(t *testing.T) {
	l := NewTokenLedger()
	l.Mint(tokenA, alice, big.NewInt(10))

	err := l.Transfer(tokenA, alice, bob, big.NewInt(11))
	if !apperror.IsCode(err, apperror.CodeInsufficientBalance) {
		t.Fatalf("Transfer() error = %v, want INSUFFICIENT_BALANCE", err)
	}

	// Failed transfer must leave balances untouched.
	if got := l.BalanceOf(tokenA, alice); got.Cmp(big.NewInt(10)) != 0 {
		t.Errorf("alice balance = %s, want 10", got)
	}
}

func TestTokenLedger_TransferFromConsumesAllowance(t *testing.T) {
	l := NewTokenLedger()
	l.Mint(tokenA, alice, big.NewInt(100))
	l.Approve(tokenA, alice, bob, big.NewInt(50))

	if err := l.TransferFrom(tokenA, bob, alice, bob, big.NewInt(40)); err != nil {
		t.Fatalf("TransferFrom() error = %v", err)
	}

	if got := l.Allowance(tokenA, alice, bob); got.Cmp(big.NewInt(10)) != 0 {
		t.Errorf("remaining allowance = %s, want 10", got)
	}

	err := l.TransferFrom(tokenA, bob, alice, bob, big.NewInt(11))
	if !apperror.IsCode(err, apperror.CodeInsufficientAllowance) {
		t.Fatalf("TransferFrom() error = %v, want INSUFFICIENT_ALLOWANCE", err)
	}
}

func TestTokenLedger_SnapshotRevert(t *testing.T) {
	l := NewTokenLedger()
	l.Mint(tokenA, alice, big.NewInt(100))
	l.Mint(tokenB, bob, big.NewInt(200))

	snap := l.Snapshot()

	if err := l.Transfer(tokenA, alice, bob, big.NewInt(60)); err != nil {
		t.Fatalf("Transfer() error = %v", err)
	}
	l.Approve(tokenA, alice, bob, big.NewInt(5))
	l.Mint(tokenB, alice, big.NewInt(7))

	l.RevertToSnapshot(snap)

	if got := l.BalanceOf(tokenA, alice); got.Cmp(big.NewInt(100)) != 0 {
		t.Errorf("alice tokenA balance = %s, want 100", got)
	}
	if got := l.BalanceOf(tokenA, bob); got.Sign() != 0 {
		t.Errorf("bob tokenA balance = %s, want 0", got)
	}
	if got := l.BalanceOf(tokenB, alice); got.Sign() != 0 {
		t.Errorf("alice tokenB balance = %s, want 0", got)
	}
	if got := l.Allowance(tokenA, alice, bob); got.Sign() != 0 {
		t.Errorf("allowance after revert = %s, want 0", got)
	}
	if got := l.BalanceOf(tokenB, bob); got.Cmp(big.NewInt(200)) != 0 {
		t.Errorf("bob tokenB balance = %s, want 200", got)
	}
}

func TestTokenLedger_NestedSnapshots(t *testing.T) {
	l := NewTokenLedger()
	l.Mint(tokenA, alice, big.NewInt(10))

	outer := l.Snapshot()
	l.Mint(tokenA, alice, big.NewInt(10)) // 20

	inner := l.Snapshot()
	l.Mint(tokenA, alice, big.NewInt(10)) // 30

	l.RevertToSnapshot(inner)
	if got := l.BalanceOf(tokenA, alice); got.Cmp(big.NewInt(20)) != 0 {
		t.Fatalf("after inner revert balance = %s, want 20", got)
	}

	l.RevertToSnapshot(outer)
	if got := l.BalanceOf(tokenA, alice); got.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("after outer revert balance = %s, want 10", got)
	}
}

func TestTokenLedger_BurnAndZeroAmounts(t *testing.T) {
	l := NewTokenLedger()
	l.Mint(tokenA, alice, big.NewInt(50))

	if err := l.Burn(tokenA, alice, big.NewInt(20)); err != nil {
		t.Fatalf("Burn() error = %v", err)
	}
	if got := l.BalanceOf(tokenA, alice); got.Cmp(big.NewInt(30)) != 0 {
		t.Errorf("balance after burn = %s, want 30", got)
	}

	if err := l.Burn(tokenA, alice, big.NewInt(31)); !apperror.IsCode(err, apperror.CodeInsufficientBalance) {
		t.Fatalf("Burn() error = %v, want INSUFFICIENT_BALANCE", err)
	}

	// Zero-amount operations are no-ops.
	l.Mint(tokenA, alice, big.NewInt(0))
	if err := l.Transfer(tokenA, alice, bob, big.NewInt(0)); err != nil {
		t.Fatalf("zero Transfer() error = %v", err)
	}
}
