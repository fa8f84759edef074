// Package di provides a small string-keyed service container with
// type-safe generic tokens. Factories are lazy singletons: the first
// resolution runs the factory, later resolutions return the cached value.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry is the read side of the container.
type ServiceRegistry interface {
	// Get resolves a service by name, running its factory if needed.
	// Panics if the name is unknown.
	Get(name string) any
	// Has reports whether a service is registered under name.
	Has(name string) bool
}

// Container is the full container interface used during module registration.
type Container interface {
	ServiceRegistry
	// Register stores a ready-made value under name.
	Register(name string, value any)
	// RegisterFactory stores a lazy factory under name.
	RegisterFactory(name string, factory func(ServiceRegistry) any)
}

type container struct {
	mu        sync.Mutex
	values    map[string]any
	factories map[string]func(ServiceRegistry) any
}

// NewContainer creates an empty container.
func NewContainer() Container {
	return &container{
		values:    make(map[string]any),
		factories: make(map[string]func(ServiceRegistry) any),
	}
}

func (c *container) Register(name string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[name] = value
}

func (c *container) RegisterFactory(name string, factory func(ServiceRegistry) any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.factories[name]; dup {
		panic(fmt.Sprintf("di: factory %q registered twice", name))
	}
	c.factories[name] = factory
}

func (c *container) Get(name string) any {
	c.mu.Lock()
	if v, ok := c.values[name]; ok {
		c.mu.Unlock()
		return v
	}
	factory, ok := c.factories[name]
	c.mu.Unlock()

	if !ok {
		panic(fmt.Sprintf("di: unknown service %q", name))
	}

	// Run the factory outside the lock so factories can resolve
	// their own dependencies.
	v := factory(c)

	c.mu.Lock()
	c.values[name] = v
	c.mu.Unlock()
	return v
}

func (c *container) Has(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, v := c.values[name]
	_, f := c.factories[name]
	return v || f
}

// Token is a typed handle for a registered service.
type Token[T any] struct {
	name string
}

// NewToken creates a typed token with a unique name.
func NewToken[T any](name string) Token[T] {
	return Token[T]{name: name}
}

// Name returns the token's registry key.
func (t Token[T]) Name() string { return t.name }

// RegisterToken registers a typed factory for the token.
func RegisterToken[T any](c Container, t Token[T], factory func(ServiceRegistry) T) {
	c.RegisterFactory(t.name, func(sr ServiceRegistry) any {
		return factory(sr)
	})
}

// GetToken resolves a token to its typed value.
func GetToken[T any](sr ServiceRegistry, t Token[T]) T {
	v, ok := sr.Get(t.name).(T)
	if !ok {
		panic(fmt.Sprintf("di: service %q has unexpected type", t.name))
	}
	return v
}
