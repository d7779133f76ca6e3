package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/anvilbuild/anvil/internal/conn"
	"github.com/anvilbuild/anvil/internal/engine"
	"github.com/anvilbuild/anvil/internal/events"
	"github.com/anvilbuild/anvil/internal/executor"
	"github.com/anvilbuild/anvil/internal/launch"
	"github.com/anvilbuild/anvil/internal/target"
	"github.com/anvilbuild/anvil/internal/tui"
)

var (
	runGroups      []string
	runConcurrency int
	runPlain       bool
	runRuntimeHome string
	runRuntimeArgs []string
	runBuildArgs   []string
)

var runCmd = &cobra.Command{
	Use:   "run [targets...]",
	Short: "Execute build targets",
	Long: `Execute the named targets and their dependencies. With no targets,
the build file's default targets run (or every task when none are declared).`,
	Example: `  # Run the default targets
  anvil run

  # Run specific tasks
  anvil run :test :lint

  # Run a named task group
  anvil run --group checks

  # Plain output without the progress view
  anvil run --plain :build`,
	RunE: runBuild,
}

func init() {
	runCmd.Flags().StringSliceVarP(&runGroups, "group", "g", nil, "task group to run (repeatable)")
	runCmd.Flags().IntVarP(&runConcurrency, "concurrency", "c", 0, "maximum parallel tasks (default from config)")
	runCmd.Flags().BoolVar(&runPlain, "plain", false, "plain log output instead of the progress view")
	runCmd.Flags().StringVar(&runRuntimeHome, "runtime-home", "", "runtime installation for the build")
	runCmd.Flags().StringArrayVar(&runRuntimeArgs, "runtime-arg", nil, "runtime process argument (repeatable)")
	runCmd.Flags().StringArrayVar(&runBuildArgs, "build-arg", nil, "build argument (repeatable)")
	rootCmd.AddCommand(runCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, buildFile, backend, err := loadSetup()
	if err != nil {
		return err
	}

	concurrency := cfg.Concurrency
	if runConcurrency > 0 {
		concurrency = runConcurrency
	}

	pm := engine.NewProcessManager()
	connector := conn.NewRetryingConnector(
		backend.DisplayName,
		engine.Dial(buildFile, concurrency, pm),
		cfg.RetryConfig(),
	)
	exec := executor.NewConnectionExecutor(connector, executor.DefaultMaxInFlight)
	launcher := launch.NewBuildLauncher(exec, exec.BackendName)

	if err := selectTargets(launcher, buildFile, args); err != nil {
		return err
	}

	if runRuntimeHome != "" {
		launcher.SetRuntimeHome(runRuntimeHome)
	} else if backend.RuntimeHome != "" {
		launcher.SetRuntimeHome(backend.RuntimeHome)
	}
	// Only set when flags were given, so backend defaults stay in force.
	if cmd.Flags().Changed("runtime-arg") {
		launcher.SetRuntimeArgs(runRuntimeArgs...)
	} else if backend.RuntimeArgs != nil {
		launcher.SetRuntimeArgs(backend.RuntimeArgs...)
	}
	if cmd.Flags().Changed("build-arg") {
		launcher.SetBuildArgs(runBuildArgs...)
	}

	if runPlain || !cfg.TUIEnabled() {
		return runPlainBuild(ctx, launcher, pm)
	}
	return runTUIBuild(ctx, launcher, pm)
}

// selectTargets applies the requested targets to the launcher: literal task
// paths, or group selectors mixed with tasks when --group is given.
func selectTargets(launcher *launch.BuildLauncher, buildFile string, args []string) error {
	if len(runGroups) == 0 {
		launcher.ForTasks(target.Paths(args)...)
		return nil
	}

	// Group names resolve against the build definition.
	def, err := engine.LoadDefinition(buildFile)
	if err != nil {
		return err
	}

	var selectors []target.Selector
	for _, name := range runGroups {
		group, err := def.GroupSelector(name)
		if err != nil {
			return err
		}
		selectors = append(selectors, group)
	}
	for _, path := range target.Paths(args) {
		selectors = append(selectors, target.Task{Path: path})
	}
	return launcher.ForLaunchables(selectors...)
}

// runPlainBuild executes the build synchronously with direct stream output.
func runPlainBuild(ctx context.Context, launcher *launch.BuildLauncher, pm *engine.ProcessManager) error {
	launcher.SetStandardOutput(os.Stdout)
	launcher.SetStandardError(os.Stderr)

	done := make(chan error, 1)
	go func() {
		done <- launcher.Run()
	}()

	select {
	case err := <-done:
		if err != nil {
			reportFailure(err)
			return err
		}
		fmt.Println("BUILD SUCCESSFUL")
		return nil
	case <-ctx.Done():
		stopBuild(pm)
		return ctx.Err()
	}
}

// runTUIBuild executes the build behind the progress view. Task output is
// carried by events, so the raw streams are discarded.
func runTUIBuild(ctx context.Context, launcher *launch.BuildLauncher, pm *engine.ProcessManager) error {
	bus := events.NewEventBus()
	defer bus.Close()

	launcher.SetStandardOutput(io.Discard)
	launcher.SetStandardError(io.Discard)
	launcher.AddProgressListener(bus.Listener())

	p := tea.NewProgram(tui.New(bus), tea.WithAltScreen())

	buildDone := make(chan error, 1)
	go func() {
		err := launcher.Run()
		buildDone <- err
		// Covers failures before any build event, like an unreadable
		// build file: the view has nothing to quit on otherwise.
		p.Quit()
	}()

	uiDone := make(chan error, 1)
	go func() {
		_, err := p.Run()
		uiDone <- err
	}()

	select {
	case err := <-uiDone:
		if err != nil {
			return fmt.Errorf("progress view: %w", err)
		}
	case <-ctx.Done():
		stop := ctx.Err()
		stopBuild(pm)
		p.Quit()
		select {
		case <-uiDone:
		case <-time.After(10 * time.Second):
			log.Println("WARNING: progress view did not shut down in time")
		}
		return stop
	}

	// Quitting the view does not cancel the build; wait for its result.
	select {
	case err := <-buildDone:
		if err != nil {
			reportFailure(err)
			return err
		}
		fmt.Println("BUILD SUCCESSFUL")
		return nil
	case <-ctx.Done():
		stopBuild(pm)
		return ctx.Err()
	}
}

func stopBuild(pm *engine.ProcessManager) {
	log.Println("Shutdown signal received, cleaning up...")
	if err := pm.KillAll(); err != nil {
		log.Printf("ERROR: killing build processes: %v", err)
	}
}

// reportFailure prints the failure and its cause chain.
func reportFailure(err error) {
	fmt.Fprintf(os.Stderr, "BUILD FAILED: %v\n", err)
	var buildErr *launch.BuildError
	if errors.As(err, &buildErr) {
		if cause := errors.Unwrap(buildErr); cause != nil {
			fmt.Fprintf(os.Stderr, "Caused by: %v\n", cause)
		}
	}
}
