package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anvilbuild/anvil/internal/engine"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List tasks and groups in the build file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		_, buildFile, _, err := loadSetup()
		if err != nil {
			return err
		}
		def, err := engine.LoadDefinition(buildFile)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Project: %s\n\n", def.Project)

		fmt.Fprintln(out, "Tasks:")
		for _, task := range def.Tasks {
			if task.Description != "" {
				fmt.Fprintf(out, "  %-20s %s\n", task.Path, task.Description)
			} else {
				fmt.Fprintf(out, "  %s\n", task.Path)
			}
		}

		if len(def.Groups) > 0 {
			names := make([]string, 0, len(def.Groups))
			for name := range def.Groups {
				names = append(names, name)
			}
			sort.Strings(names)

			fmt.Fprintln(out, "\nGroups:")
			for _, name := range names {
				fmt.Fprintf(out, "  %-20s %s\n", name, strings.Join(def.Groups[name], " "))
			}
		}

		if len(def.Defaults) > 0 {
			fmt.Fprintf(out, "\nDefault targets: %s\n", strings.Join(def.Defaults, " "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tasksCmd)
}
