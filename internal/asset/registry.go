package asset

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Registry is a thread-safe registry of known assets, keyed by address.
type Registry struct {
	byAddress map[common.Address]*Asset
	bySymbol  map[string]*Asset
	mu        sync.RWMutex
}

// NewRegistry creates a new empty asset registry.
func NewRegistry() *Registry {
	return &Registry{
		byAddress: make(map[common.Address]*Asset),
		bySymbol:  make(map[string]*Asset),
	}
}

// Register adds an asset to the registry.
// Panics if an asset with the same address is already registered.
func (r *Registry) Register(a *Asset) {
	if a == nil {
		panic("asset: cannot register nil asset")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byAddress[a.Address()]; exists {
		panic(fmt.Sprintf("asset: %s already registered", a.Address().Hex()))
	}

	r.byAddress[a.Address()] = a
	r.bySymbol[a.Symbol()] = a
}

// Get retrieves an asset by address.
func (r *Registry) Get(address common.Address) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byAddress[address]
	return a, ok
}

// GetBySymbol retrieves an asset by symbol.
func (r *Registry) GetBySymbol(symbol string) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.bySymbol[symbol]
	return a, ok
}

// Symbol returns the symbol for an address, or a shortened hex form for
// unknown tokens. Display helper for logs and the TUI.
func (r *Registry) Symbol(address common.Address) string {
	if a, ok := r.Get(address); ok {
		return a.Symbol()
	}
	hex := address.Hex()
	return hex[:6] + ".." + hex[len(hex)-4:]
}

// All returns all registered assets.
func (r *Registry) All() []*Asset {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Asset, 0, len(r.byAddress))
	for _, a := range r.byAddress {
		result = append(result, a)
	}
	return result
}

// Count returns the number of registered assets.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byAddress)
}
