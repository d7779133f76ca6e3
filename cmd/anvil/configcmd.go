package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/anvilbuild/anvil/internal/config"
)

var configInitGlobal bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Anvil configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		path := filepath.Join(".anvil", "config.json")
		if configInitGlobal {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("getting home directory: %w", err)
			}
			path = filepath.Join(homeDir, ".anvil", "config.json")
		}

		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s", path)
		}

		if err := config.Save(config.DefaultConfig(), path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitGlobal, "global", false, "write the global config instead of the project config")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
