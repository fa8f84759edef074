package app

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/arb-engine/business/execution/domain"
	"github.com/fd1az/arb-engine/internal/apperror"
	"github.com/fd1az/arb-engine/internal/logger"
)

// AdminService gates the owner-only operations: pausing, the engine-wide
// profit floor, and emergency withdrawal of the engine account.
type AdminService struct {
	owner   common.Address
	account common.Address
	ledger  *domain.TokenLedger
	logger  logger.LoggerInterface

	mu            sync.RWMutex
	paused        bool
	minimumProfit *big.Int
}

// NewAdminService creates an AdminService. minimumProfit is in raw base
// asset units.
func NewAdminService(owner, account common.Address, minimumProfit *big.Int, ledger *domain.TokenLedger, log logger.LoggerInterface) *AdminService {
	if minimumProfit == nil {
		minimumProfit = new(big.Int)
	}
	return &AdminService{
		owner:         owner,
		account:       account,
		ledger:        ledger,
		logger:        log,
		minimumProfit: new(big.Int).Set(minimumProfit),
	}
}

// Owner returns the administration address.
func (s *AdminService) Owner() common.Address { return s.owner }

// Account returns the engine's own ledger address.
func (s *AdminService) Account() common.Address { return s.account }

// Paused reports whether the engine is accepting commits and reveals.
func (s *AdminService) Paused() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paused
}

// MinimumProfit returns the engine-wide profit floor in raw base asset
// units.
func (s *AdminService) MinimumProfit() *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return new(big.Int).Set(s.minimumProfit)
}

// Pause stops commit and reveal processing. Owner only.
func (s *AdminService) Pause(ctx context.Context, caller common.Address) error {
	if err := s.RequireOwner(caller); err != nil {
		return err
	}
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
	s.logger.Warn(ctx, "engine paused", "caller", caller.Hex())
	return nil
}

// Unpause resumes commit and reveal processing. Owner only.
func (s *AdminService) Unpause(ctx context.Context, caller common.Address) error {
	if err := s.RequireOwner(caller); err != nil {
		return err
	}
	s.mu.Lock()
	s.paused = false
	s.mu.Unlock()
	s.logger.Info(ctx, "engine unpaused", "caller", caller.Hex())
	return nil
}

// SetMinimumProfit updates the engine-wide profit floor. Owner only.
func (s *AdminService) SetMinimumProfit(ctx context.Context, caller common.Address, v *big.Int) error {
	if err := s.RequireOwner(caller); err != nil {
		return err
	}
	if v == nil || v.Sign() < 0 {
		return apperror.Validation(apperror.CodeInvalidInput, "minimum profit must not be negative")
	}
	s.mu.Lock()
	s.minimumProfit = new(big.Int).Set(v)
	s.mu.Unlock()
	s.logger.Info(ctx, "minimum profit updated", "caller", caller.Hex(), "minimum_profit", v.String())
	return nil
}

// EmergencyWithdraw moves the engine account's entire balance of token
// to the destination. Owner only; works while paused.
func (s *AdminService) EmergencyWithdraw(ctx context.Context, caller common.Address, token, to common.Address) (*big.Int, error) {
	if err := s.RequireOwner(caller); err != nil {
		return nil, err
	}

	balance := s.ledger.BalanceOf(token, s.account)
	if balance.Sign() == 0 {
		return new(big.Int), nil
	}

	if err := s.ledger.Transfer(token, s.account, to, balance); err != nil {
		return nil, err
	}

	s.logger.Warn(ctx, "emergency withdrawal",
		"caller", caller.Hex(),
		"token", token.Hex(),
		"to", to.Hex(),
		"amount", balance.String(),
	)
	return balance, nil
}

// RequireOwner returns OWNER_ONLY unless caller is the owner.
func (s *AdminService) RequireOwner(caller common.Address) error {
	if caller != s.owner {
		return apperror.Unauthorized(apperror.CodeOwnerOnly, caller.Hex())
	}
	return nil
}

// RequireActive returns ENGINE_PAUSED while the engine is paused.
func (s *AdminService) RequireActive() error {
	if s.Paused() {
		return apperror.New(apperror.CodeEnginePaused)
	}
	return nil
}
