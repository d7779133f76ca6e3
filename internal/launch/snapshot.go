package launch

import (
	"io"

	"github.com/anvilbuild/anvil/internal/conn"
	"github.com/anvilbuild/anvil/internal/events"
	"github.com/anvilbuild/anvil/internal/target"
)

// Snapshot is the immutable copy of an OperationConfig taken at dispatch
// time. The backend only ever sees a snapshot, so mutating the builder after
// a run call cannot race with the dispatched build.
type Snapshot struct {
	targets     []target.Path
	stdout      io.Writer
	stderr      io.Writer
	stdin       io.Reader
	runtimeHome string
	runtimeArgs []string
	buildArgs   []string
	progress    events.Listener
}

// Targets returns the resolved target sequence. Empty (never nil) when no
// selection was configured.
func (s Snapshot) Targets() []target.Path { return s.targets }

// Parameters shapes the snapshot into the backend parameter bag. Nil stream
// and argument fields pass through as nil; OnProgress is always non-nil.
func (s Snapshot) Parameters() conn.BuildParameters {
	return conn.BuildParameters{
		Targets:     s.targets,
		Stdout:      s.stdout,
		Stderr:      s.stderr,
		Stdin:       s.stdin,
		RuntimeHome: s.runtimeHome,
		RuntimeArgs: s.runtimeArgs,
		BuildArgs:   s.buildArgs,
		OnProgress:  s.progress,
	}
}

// compositeListener fans one event out to every registered listener. With no
// listeners it is still a valid no-op sink, which keeps the progress hook
// non-nil all the way to the backend.
func compositeListener(listeners []events.Listener) events.Listener {
	return func(e events.Event) {
		for _, l := range listeners {
			l(e)
		}
	}
}
