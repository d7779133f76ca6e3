// Package launch implements the client-side dispatch layer of Anvil's
// remote-invocation surface: a build launcher that configures one build,
// snapshots the configuration, and submits it to an asynchronous executor,
// reporting completion either through a caller-supplied handler or by
// blocking the calling goroutine.
package launch

import (
	"errors"
	"sync/atomic"

	"github.com/anvilbuild/anvil/internal/conn"
	"github.com/anvilbuild/anvil/internal/executor"
)

// ErrLauncherConsumed is returned by a run call on a launcher that already
// dispatched. Launchers are single-use; create one per invocation.
var ErrLauncherConsumed = errors.New("build launcher already ran, create a new launcher per invocation")

// BuildLauncher configures and dispatches a single build against an
// execution backend. The embedded OperationConfig provides the setters;
// Run and RunAsync share one dispatch path and differ only in how the
// outcome reaches the caller.
//
// A launcher is single-use: the first run call (either mode) consumes it,
// and later run calls fail synchronously without dispatching anything.
type BuildLauncher struct {
	OperationConfig

	exec executor.AsyncExecutor

	// backendName resolves the backend's display name for failure messages.
	// Called lazily, never at construction time.
	backendName func() string

	consumed atomic.Bool
}

// NewBuildLauncher creates a launcher dispatching through exec. backendName
// supplies the backend's display name for failure messages.
func NewBuildLauncher(exec executor.AsyncExecutor, backendName func() string) *BuildLauncher {
	return &BuildLauncher{exec: exec, backendName: backendName}
}

// RunAsync dispatches the configured build and returns immediately. The
// handler's OnComplete or OnFailure fires later, exactly once, on an
// executor goroutine. The only synchronous errors are misuse: a nil handler
// or a consumed launcher.
func (l *BuildLauncher) RunAsync(handler ResultHandler) error {
	if handler == nil {
		return errors.New("nil result handler")
	}
	if !l.consumed.CompareAndSwap(false, true) {
		return ErrLauncherConsumed
	}

	l.dispatch(handler)
	return nil
}

// Run dispatches the configured build and blocks the calling goroutine
// until the backend reports the outcome. A backend failure is re-raised
// here as a *BuildError whose cause chain is the original backend error.
func (l *BuildLauncher) Run() error {
	if !l.consumed.CompareAndSwap(false, true) {
		return ErrLauncherConsumed
	}

	return invokeAndWait(l.dispatch)
}

// dispatch is the single submission path shared by both run modes: snapshot
// the configuration, build the backend action, hand it to the executor with
// the translating adapter.
func (l *BuildLauncher) dispatch(handler ResultHandler) {
	snap := l.snapshot()

	action := func(c conn.Connection) (interface{}, error) {
		return nil, c.Run(snap.Parameters())
	}

	l.exec.Submit(action, newResultAdapter(handler, l.backendName))
}
