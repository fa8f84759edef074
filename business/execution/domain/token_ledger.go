// Package domain contains the core domain types for the execution context.
package domain

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/arb-engine/internal/apperror"
)

// TokenLedger tracks token balances and allowances for every holder the
// engine interacts with. All mutations are journaled so a failed
// multi-hop execution can be rolled back to the state it started from.
type TokenLedger struct {
	mu sync.Mutex

	// balances[token][holder]
	balances map[common.Address]map[common.Address]*big.Int
	// allowances[token][owner][spender]
	allowances map[common.Address]map[common.Address]map[common.Address]*big.Int

	journal        []journalEntry
	validRevisions []revision
	nextRevisionID int
}

type revision struct {
	id           int
	journalIndex int
}

type journalEntry interface {
	revert(l *TokenLedger)
}

type balanceChange struct {
	token, holder common.Address
	prev          *big.Int // nil means the entry did not exist
}

func (c balanceChange) revert(l *TokenLedger) {
	l.setBalance(c.token, c.holder, c.prev)
}

type allowanceChange struct {
	token, owner, spender common.Address
	prev                  *big.Int
}

func (c allowanceChange) revert(l *TokenLedger) {
	l.setAllowance(c.token, c.owner, c.spender, c.prev)
}

// NewTokenLedger creates an empty ledger.
func NewTokenLedger() *TokenLedger {
	return &TokenLedger{
		balances:   make(map[common.Address]map[common.Address]*big.Int),
		allowances: make(map[common.Address]map[common.Address]map[common.Address]*big.Int),
	}
}

// Snapshot marks the current state and returns an identifier for
// RevertToSnapshot. Snapshots nest.
func (l *TokenLedger) Snapshot() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextRevisionID
	l.nextRevisionID++
	l.validRevisions = append(l.validRevisions, revision{id, len(l.journal)})
	return id
}

// RevertToSnapshot undoes every mutation recorded since the snapshot
// was taken. Reverting an unknown or already-reverted snapshot panics;
// that is a programming error, not a runtime condition.
func (l *TokenLedger) RevertToSnapshot(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := -1
	for i, rev := range l.validRevisions {
		if rev.id == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		panic("token ledger: revert to unknown snapshot")
	}

	target := l.validRevisions[idx].journalIndex
	for i := len(l.journal) - 1; i >= target; i-- {
		l.journal[i].revert(l)
	}
	l.journal = l.journal[:target]
	l.validRevisions = l.validRevisions[:idx]
}

// BalanceOf returns the holder's balance of token. Absent entries read
// as zero.
func (l *TokenLedger) BalanceOf(token, holder common.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.balance(token, holder))
}

// Allowance returns what spender may move out of owner's token balance.
func (l *TokenLedger) Allowance(token, owner, spender common.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.allowance(token, owner, spender))
}

// Mint credits amount of token to holder. Used for funding accounts and
// by simulated pools paying out swap proceeds.
func (l *TokenLedger) Mint(token, holder common.Address, amount *big.Int) {
	if amount.Sign() <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	next := new(big.Int).Add(l.balance(token, holder), amount)
	l.journalBalance(token, holder)
	l.setBalance(token, holder, next)
}

// Burn debits amount of token from holder.
func (l *TokenLedger) Burn(token, holder common.Address, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	bal := l.balance(token, holder)
	if bal.Cmp(amount) < 0 {
		return apperror.New(apperror.CodeInsufficientBalance,
			apperror.WithContextf("token %s holder %s: have %s, need %s",
				token.Hex(), holder.Hex(), bal, amount))
	}
	l.journalBalance(token, holder)
	l.setBalance(token, holder, new(big.Int).Sub(bal, amount))
	return nil
}

// Transfer moves amount of token from one holder to another.
func (l *TokenLedger) Transfer(token, from, to common.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return apperror.Validation(apperror.CodeInvalidInput, "negative transfer amount")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.transfer(token, from, to, amount)
}

// Approve sets spender's allowance over owner's token balance.
func (l *TokenLedger) Approve(token, owner, spender common.Address, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.journalAllowance(token, owner, spender)
	l.setAllowance(token, owner, spender, new(big.Int).Set(amount))
}

// TransferFrom moves amount of token from owner to recipient on behalf
// of spender, consuming allowance.
func (l *TokenLedger) TransferFrom(token, spender, owner, to common.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return apperror.Validation(apperror.CodeInvalidInput, "negative transfer amount")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	allowed := l.allowance(token, owner, spender)
	if allowed.Cmp(amount) < 0 {
		return apperror.New(apperror.CodeInsufficientAllowance,
			apperror.WithContextf("token %s owner %s spender %s: allowed %s, need %s",
				token.Hex(), owner.Hex(), spender.Hex(), allowed, amount))
	}

	if err := l.transfer(token, owner, to, amount); err != nil {
		return err
	}

	l.journalAllowance(token, owner, spender)
	l.setAllowance(token, owner, spender, new(big.Int).Sub(allowed, amount))
	return nil
}

// internal helpers, caller holds the lock

func (l *TokenLedger) transfer(token, from, to common.Address, amount *big.Int) error {
	fromBal := l.balance(token, from)
	if fromBal.Cmp(amount) < 0 {
		return apperror.New(apperror.CodeInsufficientBalance,
			apperror.WithContextf("token %s holder %s: have %s, need %s",
				token.Hex(), from.Hex(), fromBal, amount))
	}

	l.journalBalance(token, from)
	l.setBalance(token, from, new(big.Int).Sub(fromBal, amount))

	toBal := l.balance(token, to)
	l.journalBalance(token, to)
	l.setBalance(token, to, new(big.Int).Add(toBal, amount))

	return nil
}

func (l *TokenLedger) balance(token, holder common.Address) *big.Int {
	if m, ok := l.balances[token]; ok {
		if b, ok := m[holder]; ok {
			return b
		}
	}
	return new(big.Int)
}

func (l *TokenLedger) setBalance(token, holder common.Address, v *big.Int) {
	m, ok := l.balances[token]
	if !ok {
		if v == nil {
			return
		}
		m = make(map[common.Address]*big.Int)
		l.balances[token] = m
	}
	if v == nil {
		delete(m, holder)
		return
	}
	m[holder] = v
}

func (l *TokenLedger) journalBalance(token, holder common.Address) {
	var prev *big.Int
	if m, ok := l.balances[token]; ok {
		if b, ok := m[holder]; ok {
			prev = new(big.Int).Set(b)
		}
	}
	l.journal = append(l.journal, balanceChange{token: token, holder: holder, prev: prev})
}

func (l *TokenLedger) allowance(token, owner, spender common.Address) *big.Int {
	if byOwner, ok := l.allowances[token]; ok {
		if bySpender, ok := byOwner[owner]; ok {
			if a, ok := bySpender[spender]; ok {
				return a
			}
		}
	}
	return new(big.Int)
}

func (l *TokenLedger) setAllowance(token, owner, spender common.Address, v *big.Int) {
	byOwner, ok := l.allowances[token]
	if !ok {
		if v == nil {
			return
		}
		byOwner = make(map[common.Address]map[common.Address]*big.Int)
		l.allowances[token] = byOwner
	}
	bySpender, ok := byOwner[owner]
	if !ok {
		if v == nil {
			return
		}
		bySpender = make(map[common.Address]*big.Int)
		byOwner[owner] = bySpender
	}
	if v == nil {
		delete(bySpender, spender)
		return
	}
	bySpender[spender] = v
}

func (l *TokenLedger) journalAllowance(token, owner, spender common.Address) {
	var prev *big.Int
	if byOwner, ok := l.allowances[token]; ok {
		if bySpender, ok := byOwner[owner]; ok {
			if a, ok := bySpender[spender]; ok {
				prev = new(big.Int).Set(a)
			}
		}
	}
	l.journal = append(l.journal, allowanceChange{token: token, owner: owner, spender: spender, prev: prev})
}
