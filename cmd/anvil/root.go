package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anvilbuild/anvil/internal/config"
)

// Version is the current release.
const Version = "0.1.0"

var (
	flagBuildFile string
	flagBackend   string
)

var rootCmd = &cobra.Command{
	Use:     "anvil",
	Short:   "Anvil build tool",
	Long:    `Anvil runs task graphs defined in a YAML build file, locally or against a configured backend.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagBuildFile, "build-file", "f", "", "build definition file (default from config, anvil.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "backend to dispatch to (default from config)")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadSetup resolves config plus the effective build file and backend.
func loadSetup() (*config.AnvilConfig, string, config.BackendConfig, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, "", config.BackendConfig{}, err
	}

	backendName := cfg.DefaultBackend
	if flagBackend != "" {
		backendName = flagBackend
	}
	backend, ok := cfg.Backends[backendName]
	if !ok {
		return nil, "", config.BackendConfig{}, fmt.Errorf("unknown backend %q", backendName)
	}
	if backend.DisplayName == "" {
		backend.DisplayName = backendName
	}

	buildFile := cfg.BuildFile
	if backend.BuildFile != "" {
		buildFile = backend.BuildFile
	}
	if flagBuildFile != "" {
		buildFile = flagBuildFile
	}

	return cfg, buildFile, backend, nil
}
