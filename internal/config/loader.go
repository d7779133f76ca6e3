package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Load reads and merges configuration from global and project paths.
// Order of precedence (highest to lowest): project config, global config,
// defaults. Missing files are not errors; malformed JSON is.
func Load(globalPath, projectPath string) (*AnvilConfig, error) {
	cfg := DefaultConfig()

	if globalPath != "" {
		if err := mergeConfigFile(cfg, globalPath); err != nil {
			return nil, fmt.Errorf("loading global config: %w", err)
		}
	}

	if projectPath != "" {
		if err := mergeConfigFile(cfg, projectPath); err != nil {
			return nil, fmt.Errorf("loading project config: %w", err)
		}
	}

	return cfg, nil
}

// LoadDefault loads configuration from conventional paths.
// Global: ~/.anvil/config.json
// Project: .anvil/config.json (relative to cwd)
func LoadDefault() (*AnvilConfig, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting home directory: %w", err)
	}

	globalPath := filepath.Join(homeDir, ".anvil", "config.json")
	projectPath := filepath.Join(".anvil", "config.json")

	return Load(globalPath, projectPath)
}

// mergeConfigFile reads a JSON config file and merges it into the base
// config. Missing files are silently skipped.
func mergeConfigFile(base *AnvilConfig, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var loaded AnvilConfig
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	// Scalars override only when the file set them.
	if loaded.DefaultBackend != "" {
		base.DefaultBackend = loaded.DefaultBackend
	}
	if loaded.BuildFile != "" {
		base.BuildFile = loaded.BuildFile
	}
	if loaded.Concurrency > 0 {
		base.Concurrency = loaded.Concurrency
	}
	if loaded.TUI != nil {
		base.TUI = loaded.TUI
	}

	if loaded.Retry.InitialIntervalMS > 0 {
		base.Retry.InitialIntervalMS = loaded.Retry.InitialIntervalMS
	}
	if loaded.Retry.MaxIntervalMS > 0 {
		base.Retry.MaxIntervalMS = loaded.Retry.MaxIntervalMS
	}
	if loaded.Retry.MaxElapsedTimeMS > 0 {
		base.Retry.MaxElapsedTimeMS = loaded.Retry.MaxElapsedTimeMS
	}
	if loaded.Retry.Multiplier > 0 {
		base.Retry.Multiplier = loaded.Retry.Multiplier
	}

	// Backends merge by key so a project can override one entry.
	for key, backend := range loaded.Backends {
		base.Backends[key] = backend
	}

	return nil
}
