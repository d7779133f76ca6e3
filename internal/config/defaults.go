package config

import (
	"time"

	"github.com/anvilbuild/anvil/internal/conn"
	"github.com/anvilbuild/anvil/internal/engine"
)

// DefaultConfig returns the built-in configuration: the embedded engine as
// the only backend, reading anvil.yaml from the working directory.
func DefaultConfig() *AnvilConfig {
	return &AnvilConfig{
		DefaultBackend: "embedded",
		BuildFile:      "anvil.yaml",
		Concurrency:    engine.DefaultConcurrency,
		Backends: map[string]BackendConfig{
			"embedded": {
				DisplayName: "Anvil embedded engine",
			},
		},
	}
}

// RetryConfig converts the tunables into connection dial settings, falling
// back to the dialing defaults for any unset field.
func (c *AnvilConfig) RetryConfig() conn.RetryConfig {
	rc := conn.DefaultRetryConfig()
	if c.Retry.InitialIntervalMS > 0 {
		rc.InitialInterval = time.Duration(c.Retry.InitialIntervalMS) * time.Millisecond
	}
	if c.Retry.MaxIntervalMS > 0 {
		rc.MaxInterval = time.Duration(c.Retry.MaxIntervalMS) * time.Millisecond
	}
	if c.Retry.MaxElapsedTimeMS > 0 {
		rc.MaxElapsedTime = time.Duration(c.Retry.MaxElapsedTimeMS) * time.Millisecond
	}
	if c.Retry.Multiplier > 0 {
		rc.Multiplier = c.Retry.Multiplier
	}
	return rc
}
