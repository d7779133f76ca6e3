package conn

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
)

// RetryConfig configures exponential backoff for connection establishment.
// Only dialing is ever retried; a dispatched build is never re-run.
type RetryConfig struct {
	InitialInterval     time.Duration // Initial retry interval (default 100ms)
	MaxInterval         time.Duration // Maximum retry interval (default 5s)
	MaxElapsedTime      time.Duration // Maximum total retry time (default 30s)
	Multiplier          float64       // Backoff multiplier (default 2.0)
	RandomizationFactor float64       // Jitter factor (default 0.5)
}

// DefaultRetryConfig returns the default dial retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		InitialInterval:     100 * time.Millisecond,
		MaxInterval:         5 * time.Second,
		MaxElapsedTime:      30 * time.Second,
		Multiplier:          2.0,
		RandomizationFactor: 0.5,
	}
}

// DialFunc performs a single connection attempt.
type DialFunc func(ctx context.Context) (Connection, error)

// RetryingConnector wraps a dial function with exponential backoff and a
// circuit breaker. The breaker trips after repeated consecutive dial
// failures so a dead backend fails fast instead of burning the full backoff
// budget on every run.
type RetryingConnector struct {
	name    string
	dial    DialFunc
	cfg     RetryConfig
	breaker *gobreaker.CircuitBreaker
}

// NewRetryingConnector creates a connector for the named backend.
func NewRetryingConnector(name string, dial DialFunc, cfg RetryConfig) *RetryingConnector {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1, // One probe dial in half-open state
		Interval:    0, // Don't clear counts automatically
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("Connector %q circuit breaker: %s -> %s", name, from, to)
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation is not a backend fault.
			if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return true
			}
			return false
		},
	})

	return &RetryingConnector{
		name:    name,
		dial:    dial,
		cfg:     cfg,
		breaker: breaker,
	}
}

// DisplayName returns the backend name without dialing.
func (c *RetryingConnector) DisplayName() string { return c.name }

// Connect dials the backend, retrying transient failures with exponential
// backoff until the retry budget is exhausted or the context is cancelled.
func (c *RetryingConnector) Connect(ctx context.Context) (Connection, error) {
	var connection Connection

	operation := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}

		result, err := c.breaker.Execute(func() (interface{}, error) {
			return c.dial(ctx)
		})
		if err != nil {
			// Open circuit won't recover within this attempt's budget.
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(err)
			}
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}

		connection = result.(Connection)
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.cfg.InitialInterval
	policy.MaxInterval = c.cfg.MaxInterval
	policy.MaxElapsedTime = c.cfg.MaxElapsedTime
	policy.Multiplier = c.cfg.Multiplier
	policy.RandomizationFactor = c.cfg.RandomizationFactor

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, err
	}
	return connection, nil
}
