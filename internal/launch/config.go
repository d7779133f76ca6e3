package launch

import (
	"io"

	"github.com/anvilbuild/anvil/internal/events"
	"github.com/anvilbuild/anvil/internal/target"
)

// selectionMode tags which target-selection entry point is active. The two
// modes are mutually exclusive: whichever setter ran last wins outright.
type selectionMode int

const (
	selectNone selectionMode = iota
	selectTasks
	selectLaunchables
)

// OperationConfig accumulates the settings for one build invocation. It is
// a plain mutable builder owned by a single caller goroutine; concurrent
// mutation is not synchronized here. A run call reads it once into an
// immutable Snapshot, after which further mutation cannot reach the backend.
type OperationConfig struct {
	mode      selectionMode
	resolved  []target.Path     // resolver output for the active selection
	selectors []target.Selector // retained originals when mode == selectLaunchables

	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader

	runtimeHome string
	runtimeArgs []string
	buildArgs   []string

	listeners []events.Listener
}

// ForTasks selects literal task paths. Replaces any previous selection,
// including one made through ForLaunchables.
func (c *OperationConfig) ForTasks(tasks ...target.Path) {
	c.mode = selectTasks
	c.resolved = target.ResolveTasks(tasks)
	c.selectors = nil
}

// ForLaunchables selects targets through selectors, which are validated and
// resolved eagerly: an unsupported selector kind returns a
// *target.ConfigurationError and leaves the previous selection untouched.
func (c *OperationConfig) ForLaunchables(selectors ...target.Selector) error {
	resolved, err := target.ResolveSelectors(selectors)
	if err != nil {
		return err
	}

	c.mode = selectLaunchables
	c.resolved = resolved
	c.selectors = append([]target.Selector(nil), selectors...)
	return nil
}

// SetStandardOutput binds the build's standard output. Nil (the default)
// means the backend's own default stream.
func (c *OperationConfig) SetStandardOutput(w io.Writer) { c.stdout = w }

// SetStandardError binds the build's standard error stream.
func (c *OperationConfig) SetStandardError(w io.Writer) { c.stderr = w }

// SetStandardInput binds the build's standard input.
func (c *OperationConfig) SetStandardInput(r io.Reader) { c.stdin = r }

// SetRuntimeHome overrides the runtime installation the backend executes
// with. Empty string means the backend default.
func (c *OperationConfig) SetRuntimeHome(dir string) { c.runtimeHome = dir }

// SetRuntimeArgs sets runtime arguments. Calling it with no arguments sets
// an explicit empty list, which is distinct from never calling it (nil,
// meaning backend default).
func (c *OperationConfig) SetRuntimeArgs(args ...string) {
	c.runtimeArgs = append([]string{}, args...)
}

// SetBuildArgs sets build arguments, with the same nil-versus-empty
// semantics as SetRuntimeArgs.
func (c *OperationConfig) SetBuildArgs(args ...string) {
	c.buildArgs = append([]string{}, args...)
}

// AddProgressListener registers a listener for build progress events.
// Listeners are invoked on backend-owned goroutines.
func (c *OperationConfig) AddProgressListener(l events.Listener) {
	if l != nil {
		c.listeners = append(c.listeners, l)
	}
}

// snapshot freezes the current configuration. The snapshot shares nothing
// mutable with the builder except the caller-owned stream handles.
func (c *OperationConfig) snapshot() Snapshot {
	targets := make([]target.Path, len(c.resolved))
	copy(targets, c.resolved)

	var runtimeArgs, buildArgs []string
	if c.runtimeArgs != nil {
		runtimeArgs = append([]string{}, c.runtimeArgs...)
	}
	if c.buildArgs != nil {
		buildArgs = append([]string{}, c.buildArgs...)
	}

	return Snapshot{
		targets:     targets,
		stdout:      c.stdout,
		stderr:      c.stderr,
		stdin:       c.stdin,
		runtimeHome: c.runtimeHome,
		runtimeArgs: runtimeArgs,
		buildArgs:   buildArgs,
		progress:    compositeListener(append([]events.Listener(nil), c.listeners...)),
	}
}
