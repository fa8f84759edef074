// Package circuitbreaker wraps sony/gobreaker with typed results and
// defaults tuned for RPC-style dependencies.
package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/fd1az/arb-engine/internal/apperror"
)

// Config holds circuit breaker settings.
type Config struct {
	Name        string
	MaxRequests uint32        // allowed while half-open
	Interval    time.Duration // closed-state count reset interval
	Timeout     time.Duration // open -> half-open transition
	// FailureThreshold is the consecutive-failure count that trips the breaker.
	FailureThreshold uint32
	OnStateChange    func(name string, from, to gobreaker.State)
}

// DefaultConfig returns settings suitable for an RPC endpoint.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      1,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// CircuitBreaker is a typed wrapper over gobreaker.
type CircuitBreaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// New creates a circuit breaker from the given config.
func New[T any](cfg Config) *CircuitBreaker[T] {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	}
	if cfg.OnStateChange != nil {
		settings.OnStateChange = cfg.OnStateChange
	}

	return &CircuitBreaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

// Execute runs fn through the breaker. An open breaker yields a
// CIRCUIT_OPEN AppError instead of calling fn.
func (c *CircuitBreaker[T]) Execute(fn func() (T, error)) (T, error) {
	result, err := c.cb.Execute(fn)
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		var zero T
		return zero, apperror.External(apperror.CodeCircuitOpen, c.cb.Name(), err)
	}
	return result, err
}

// State returns the current breaker state.
func (c *CircuitBreaker[T]) State() gobreaker.State {
	return c.cb.State()
}
