package engine

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anvilbuild/anvil/internal/conn"
	"github.com/anvilbuild/anvil/internal/events"
	"github.com/anvilbuild/anvil/internal/target"
)

// DefaultConcurrency bounds parallel task execution when no limit is given.
const DefaultConcurrency = 4

// Connection is the embedded engine's implementation of conn.Connection.
// Each Run executes one build against the loaded definition.
type Connection struct {
	def         *Definition
	concurrency int
	pm          *ProcessManager

	// exec overrides subprocess execution in tests. Nil selects the real
	// command runner.
	exec execFunc
}

// NewConnection creates a connection over a parsed build definition.
func NewConnection(def *Definition, concurrency int, pm *ProcessManager) *Connection {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Connection{def: def, concurrency: concurrency, pm: pm}
}

// Dial returns a dial function loading the build file on every attempt, so
// a connector retry picks up a build file that appears late.
func Dial(buildFile string, concurrency int, pm *ProcessManager) conn.DialFunc {
	return func(ctx context.Context) (conn.Connection, error) {
		def, err := LoadDefinition(buildFile)
		if err != nil {
			return nil, err
		}
		return NewConnection(def, concurrency, pm), nil
	}
}

// DisplayName identifies this backend in user-facing failure messages.
func (c *Connection) DisplayName() string {
	return fmt.Sprintf("Anvil embedded engine (project %s)", c.def.Project)
}

// Run executes one build synchronously. An empty target list selects the
// definition's default targets, or every task when no defaults are declared.
// Nil stream handles inherit the process's own streams.
func (c *Connection) Run(params conn.BuildParameters) error {
	targets := params.Targets
	if len(targets) == 0 {
		if len(c.def.Defaults) > 0 {
			targets = target.Paths(c.def.Defaults)
		} else {
			for _, t := range c.def.Tasks {
				targets = append(targets, target.Path(t.Path))
			}
		}
	}

	graph, err := BuildGraph(c.def, targets)
	if err != nil {
		return err
	}
	if _, err := graph.Validate(); err != nil {
		return err
	}

	stdout := params.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := params.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	env := os.Environ()
	if params.RuntimeHome != "" {
		env = append(env, "ANVIL_RUNTIME_HOME="+params.RuntimeHome)
	}
	if params.RuntimeArgs != nil {
		env = append(env, "ANVIL_RUNTIME_OPTS="+strings.Join(params.RuntimeArgs, " "))
	}
	if params.BuildArgs != nil {
		env = append(env, "ANVIL_BUILD_ARGS="+strings.Join(params.BuildArgs, " "))
	}

	run := c.exec
	if run == nil {
		run = commandExec(c.pm, params.Stdin)
	}

	onProgress := params.OnProgress
	if onProgress == nil {
		onProgress = func(events.Event) {}
	}

	buildID := uuid.NewString()
	r := &runner{
		graph:       graph,
		concurrency: c.concurrency,
		exec:        run,
		locks:       newOutputLocks(),
		buildID:     buildID,
		env:         env,
		stdout:      stdout,
		stderr:      stderr,
		onProgress:  onProgress,
	}

	start := time.Now()
	onProgress(events.BuildStartedEvent{
		ID:        buildID,
		Targets:   targets,
		Timestamp: start,
	})

	runErr := r.Run(context.Background())

	onProgress(events.BuildFinishedEvent{
		ID:        buildID,
		Err:       runErr,
		Duration:  time.Since(start),
		Timestamp: time.Now(),
	})

	return runErr
}

// Close releases nothing: the embedded engine holds no connection state.
func (c *Connection) Close() error { return nil }
