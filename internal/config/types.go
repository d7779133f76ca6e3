package config

// BackendConfig describes one build backend Anvil can dispatch to.
// Backends are named so projects can override individual entries without
// restating the whole map.
type BackendConfig struct {
	DisplayName string   `json:"display_name,omitempty"` // Shown in failure messages; defaults to the map key
	BuildFile   string   `json:"build_file,omitempty"`   // Build definition path for the embedded engine
	RuntimeHome string   `json:"runtime_home,omitempty"` // Runtime installation the backend should use
	RuntimeArgs []string `json:"runtime_args,omitempty"` // Default runtime process arguments
}

// RetryConfig tunes connection dialing backoff. Durations are milliseconds
// so config files stay plain numbers.
type RetryConfig struct {
	InitialIntervalMS int     `json:"initial_interval_ms,omitempty"`
	MaxIntervalMS     int     `json:"max_interval_ms,omitempty"`
	MaxElapsedTimeMS  int     `json:"max_elapsed_time_ms,omitempty"`
	Multiplier        float64 `json:"multiplier,omitempty"`
}

// AnvilConfig is the top-level configuration.
type AnvilConfig struct {
	DefaultBackend string                   `json:"default_backend,omitempty"`
	BuildFile      string                   `json:"build_file,omitempty"`
	Concurrency    int                      `json:"concurrency,omitempty"`
	TUI            *bool                    `json:"tui,omitempty"` // Pointer so an explicit false survives merging
	Retry          RetryConfig              `json:"retry,omitempty"`
	Backends       map[string]BackendConfig `json:"backends,omitempty"`
}

// TUIEnabled reports whether the progress TUI should render.
func (c *AnvilConfig) TUIEnabled() bool {
	return c.TUI == nil || *c.TUI
}
