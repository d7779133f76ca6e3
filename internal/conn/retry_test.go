package conn

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// stubConnection is a do-nothing connection for dial tests.
type stubConnection struct{ name string }

func (s *stubConnection) DisplayName() string            { return s.name }
func (s *stubConnection) Run(params BuildParameters) error { return nil }
func (s *stubConnection) Close() error                   { return nil }

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		InitialInterval:     time.Millisecond,
		MaxInterval:         5 * time.Millisecond,
		MaxElapsedTime:      250 * time.Millisecond,
		Multiplier:          2.0,
		RandomizationFactor: 0,
	}
}

func TestRetryingConnector_DisplayNameWithoutDialing(t *testing.T) {
	dialed := atomic.Bool{}
	c := NewRetryingConnector("test backend", func(ctx context.Context) (Connection, error) {
		dialed.Store(true)
		return &stubConnection{}, nil
	}, fastRetryConfig())

	if got := c.DisplayName(); got != "test backend" {
		t.Errorf("expected display name %q, got %q", "test backend", got)
	}
	if dialed.Load() {
		t.Error("DisplayName must not dial")
	}
}

func TestRetryingConnector_SucceedsFirstAttempt(t *testing.T) {
	var attempts atomic.Int32
	c := NewRetryingConnector("test backend", func(ctx context.Context) (Connection, error) {
		attempts.Add(1)
		return &stubConnection{name: "test backend"}, nil
	}, fastRetryConfig())

	connection, err := c.Connect(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if connection == nil {
		t.Fatal("expected a connection")
	}
	if attempts.Load() != 1 {
		t.Errorf("expected 1 dial attempt, got %d", attempts.Load())
	}
}

func TestRetryingConnector_RetriesTransientFailures(t *testing.T) {
	var attempts atomic.Int32
	c := NewRetryingConnector("test backend", func(ctx context.Context) (Connection, error) {
		if attempts.Add(1) < 3 {
			return nil, errors.New("backend not up yet")
		}
		return &stubConnection{}, nil
	}, fastRetryConfig())

	connection, err := c.Connect(context.Background())
	if err != nil {
		t.Fatalf("expected eventual success, got: %v", err)
	}
	if connection == nil {
		t.Fatal("expected a connection")
	}
	if attempts.Load() != 3 {
		t.Errorf("expected 3 dial attempts, got %d", attempts.Load())
	}
}

func TestRetryingConnector_GivesUpAfterBudget(t *testing.T) {
	dialErr := errors.New("connection refused")
	c := NewRetryingConnector("test backend", func(ctx context.Context) (Connection, error) {
		return nil, dialErr
	}, fastRetryConfig())

	_, err := c.Connect(context.Background())
	if err == nil {
		t.Fatal("expected error after exhausting retry budget")
	}
}

func TestRetryingConnector_ContextCancellationStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewRetryingConnector("test backend", func(ctx context.Context) (Connection, error) {
		return nil, errors.New("unreachable")
	}, fastRetryConfig())

	start := time.Now()
	_, err := c.Connect(ctx)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("cancelled connect took %v, expected immediate return", elapsed)
	}
}
