package conn

import (
	"context"
	"io"

	"github.com/anvilbuild/anvil/internal/events"
	"github.com/anvilbuild/anvil/internal/target"
)

// Connection is the boundary to an execution backend: something that can run
// a build synchronously on the calling goroutine and report failure by
// returning an error. Implementations decide what "run" means (an in-process
// engine, a daemon over a socket); the dispatch layer treats them uniformly.
type Connection interface {
	// DisplayName returns a human-readable identity for this backend,
	// suitable for embedding in user-facing failure messages.
	DisplayName() string

	// Run executes the build described by params. It blocks until the build
	// finishes and returns nil on success or the failure cause.
	Run(params BuildParameters) error

	// Close releases any resources held by the connection.
	Close() error
}

// BuildParameters is the immutable parameter bag a dispatch hands to the
// backend. Nil stream handles and nil argument lists mean "inherit the
// backend's default" and must never be replaced with empty values.
// OnProgress is always non-nil.
type BuildParameters struct {
	// Targets is the resolved task sequence to execute. An empty (non-nil)
	// sequence asks the backend for its default targets.
	Targets []target.Path

	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	// RuntimeHome overrides the runtime installation the backend executes
	// with. Empty means the backend's own default.
	RuntimeHome string

	// RuntimeArgs and BuildArgs are nil when the caller did not set them.
	RuntimeArgs []string
	BuildArgs   []string

	// OnProgress receives build progress events. Never nil: when the caller
	// registered no listeners this is a no-op sink.
	OnProgress events.Listener
}

// Connector establishes connections to one execution backend. DisplayName
// must be answerable without a live connection, since failures can occur
// before or while dialing.
type Connector interface {
	DisplayName() string
	Connect(ctx context.Context) (Connection, error)
}
