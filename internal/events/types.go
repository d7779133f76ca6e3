package events

import (
	"time"

	"github.com/anvilbuild/anvil/internal/target"
)

// Event is the base interface for build progress events.
type Event interface {
	EventType() string
	BuildID() string
}

// Listener receives progress events for a single build. Listeners may be
// invoked from backend-owned goroutines and must not block.
type Listener func(Event)

// Topic constants
const (
	TopicBuild = "build"
	TopicTask  = "task"
)

// Event type constants
const (
	EventTypeBuildStarted  = "build.started"
	EventTypeBuildFinished = "build.finished"
	EventTypeTaskStarted   = "task.started"
	EventTypeTaskOutput    = "task.output"
	EventTypeTaskFinished  = "task.finished"
)

// BuildStartedEvent is published when the backend begins executing a build.
type BuildStartedEvent struct {
	ID        string
	Targets   []target.Path
	Timestamp time.Time
}

func (e BuildStartedEvent) EventType() string { return EventTypeBuildStarted }
func (e BuildStartedEvent) BuildID() string   { return e.ID }

// BuildFinishedEvent is published when the backend finishes a build,
// successfully or not. Err is nil on success.
type BuildFinishedEvent struct {
	ID        string
	Err       error
	Duration  time.Duration
	Timestamp time.Time
}

func (e BuildFinishedEvent) EventType() string { return EventTypeBuildFinished }
func (e BuildFinishedEvent) BuildID() string   { return e.ID }

// TaskStartedEvent is published when a task begins execution.
type TaskStartedEvent struct {
	ID        string
	Path      target.Path
	Timestamp time.Time
}

func (e TaskStartedEvent) EventType() string { return EventTypeTaskStarted }
func (e TaskStartedEvent) BuildID() string   { return e.ID }

// TaskOutputEvent is published for each line a task writes to its stdout
// or stderr stream.
type TaskOutputEvent struct {
	ID        string
	Path      target.Path
	Line      string
	Stderr    bool
	Timestamp time.Time
}

func (e TaskOutputEvent) EventType() string { return EventTypeTaskOutput }
func (e TaskOutputEvent) BuildID() string   { return e.ID }

// TaskFinishedEvent is published when a task finishes. Err is nil on success.
type TaskFinishedEvent struct {
	ID        string
	Path      target.Path
	Err       error
	Duration  time.Duration
	Timestamp time.Time
}

func (e TaskFinishedEvent) EventType() string { return EventTypeTaskFinished }
func (e TaskFinishedEvent) BuildID() string   { return e.ID }

// TopicFor routes an event to its bus topic.
func TopicFor(e Event) string {
	switch e.(type) {
	case TaskStartedEvent, TaskOutputEvent, TaskFinishedEvent:
		return TopicTask
	default:
		return TopicBuild
	}
}
