package engine

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/anvilbuild/anvil/internal/events"
	"github.com/anvilbuild/anvil/internal/target"
)

// execFunc runs one task's command, streaming output lines through onLine.
// Injected so tests can run graphs without spawning real subprocesses.
type execFunc func(ctx context.Context, task TaskDef, env []string, onLine func(line string, stderr bool)) error

// commandExec is the production execFunc: a tracked subprocess per task
// with line-streamed output.
func commandExec(pm *ProcessManager, stdin io.Reader) execFunc {
	return func(ctx context.Context, task TaskDef, env []string, onLine func(line string, stderr bool)) error {
		cmd := newCommand(ctx, task.Command, task.Args...)
		cmd.Env = env
		cmd.Stdin = stdin
		return streamCommand(cmd, pm, onLine)
	}
}

// runner executes one build's task graph in dependency waves with bounded
// concurrency. Tasks inside a wave are independent of each other; tasks
// sharing a declared output still serialize through the output locks.
type runner struct {
	graph       *Graph
	concurrency int
	exec        execFunc
	locks       *outputLocks

	buildID    string
	env        []string
	stdout     io.Writer
	stderr     io.Writer
	onProgress events.Listener
}

// Run executes the graph until no task is eligible, then reports the first
// failure, if any. A failed task skips its dependents but does not stop
// unrelated tasks from running.
func (r *runner) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		eligible := r.graph.Eligible()
		if len(eligible) == 0 {
			break
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.concurrency)
		for _, task := range eligible {
			t := task
			g.Go(func() error {
				r.runTask(gctx, t)
				return nil // Task outcomes live in the graph, not the group.
			})
		}
		_ = g.Wait()
	}

	if path, err := r.graph.FirstFailure(); err != nil {
		return fmt.Errorf("task %s failed: %w", path, err)
	}
	return nil
}

// runTask executes a single task and records its outcome in the graph.
func (r *runner) runTask(ctx context.Context, task TaskDef) {
	if err := r.graph.MarkRunning(task.Path); err != nil {
		log.Printf("ERROR: failed to mark task %q running: %v", task.Path, err)
		return
	}

	start := time.Now()
	r.onProgress(events.TaskStartedEvent{
		ID:        r.buildID,
		Path:      target.Path(task.Path),
		Timestamp: start,
	})

	r.locks.lockAll(task.Outputs)
	err := r.exec(ctx, task, r.env, func(line string, stderr bool) {
		w := r.stdout
		if stderr {
			w = r.stderr
		}
		fmt.Fprintln(w, line)

		r.onProgress(events.TaskOutputEvent{
			ID:        r.buildID,
			Path:      target.Path(task.Path),
			Line:      line,
			Stderr:    stderr,
			Timestamp: time.Now(),
		})
	})
	r.locks.unlockAll(task.Outputs)

	if err != nil {
		if markErr := r.graph.MarkFailed(task.Path, err); markErr != nil {
			log.Printf("ERROR: failed to mark task %q failed: %v", task.Path, markErr)
		}
	} else {
		if markErr := r.graph.MarkCompleted(task.Path); markErr != nil {
			log.Printf("ERROR: failed to mark task %q completed: %v", task.Path, markErr)
		}
	}

	r.onProgress(events.TaskFinishedEvent{
		ID:        r.buildID,
		Path:      target.Path(task.Path),
		Err:       err,
		Duration:  time.Since(start),
		Timestamp: time.Now(),
	})
}
