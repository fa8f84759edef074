package app

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/arb-engine/internal/apperror"
	"github.com/fd1az/arb-engine/internal/logger"
)

// RouterRegistry is the router allow-list. Only routers registered here
// may appear in a swap path.
type RouterRegistry struct {
	admin  *AdminService
	logger logger.LoggerInterface

	mu      sync.RWMutex
	routers map[common.Address]Router
}

// NewRouterRegistry creates an empty registry gated by admin.
func NewRouterRegistry(admin *AdminService, log logger.LoggerInterface) *RouterRegistry {
	return &RouterRegistry{
		admin:   admin,
		logger:  log,
		routers: make(map[common.Address]Router),
	}
}

// Approved reports whether the address is on the allow-list.
func (r *RouterRegistry) Approved(addr common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.routers[addr]
	return ok
}

// Resolve returns the router registered at addr.
func (r *RouterRegistry) Resolve(addr common.Address) (Router, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	router, ok := r.routers[addr]
	if !ok {
		return nil, apperror.New(apperror.CodeRouterNotApproved,
			apperror.WithContext(addr.Hex()))
	}
	return router, nil
}

// Add registers a router on the allow-list. Owner only.
func (r *RouterRegistry) Add(ctx context.Context, caller common.Address, router Router) error {
	if err := r.admin.RequireOwner(caller); err != nil {
		return err
	}

	addr := router.Address()
	r.mu.Lock()
	r.routers[addr] = router
	r.mu.Unlock()

	r.logger.Info(ctx, "router approved", "router", addr.Hex())
	return nil
}

// Remove drops a router from the allow-list. Owner only. Existing
// commitments referencing it will fail reveal validation.
func (r *RouterRegistry) Remove(ctx context.Context, caller common.Address, addr common.Address) error {
	if err := r.admin.RequireOwner(caller); err != nil {
		return err
	}

	r.mu.Lock()
	delete(r.routers, addr)
	r.mu.Unlock()

	r.logger.Info(ctx, "router removed", "router", addr.Hex())
	return nil
}

// Addresses returns the current allow-list.
func (r *RouterRegistry) Addresses() []common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]common.Address, 0, len(r.routers))
	for addr := range r.routers {
		out = append(out, addr)
	}
	return out
}
