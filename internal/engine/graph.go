package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gammazero/toposort"

	"github.com/anvilbuild/anvil/internal/target"
)

// TaskStatus tracks a task through one build.
type TaskStatus int

const (
	StatusPending TaskStatus = iota
	StatusRunning
	StatusCompleted
	StatusFailed
	StatusSkipped // a dependency failed, so the task never ran
)

// taskNode is one task's definition plus its execution state.
type taskNode struct {
	def    TaskDef
	status TaskStatus
	err    error
}

// Graph is the dependency graph for one build: the requested targets plus
// their transitive dependencies, with per-task status tracking. Safe for
// concurrent use by the runner's worker goroutines.
type Graph struct {
	mu         sync.RWMutex
	nodes      map[string]*taskNode
	dependents map[string][]string // task path -> tasks depending on it
}

// BuildGraph selects the requested targets and their transitive
// dependencies out of the definition. An unknown target is an error.
func BuildGraph(def *Definition, targets []target.Path) (*Graph, error) {
	g := &Graph{
		nodes:      make(map[string]*taskNode),
		dependents: make(map[string][]string),
	}

	// Walk the dependency closure of the requested targets.
	var pending []string
	for _, p := range targets {
		pending = append(pending, string(p))
	}
	for len(pending) > 0 {
		path := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		if _, done := g.nodes[path]; done {
			continue
		}
		td, ok := def.Task(path)
		if !ok {
			return nil, fmt.Errorf("unknown task %q", path)
		}
		g.nodes[path] = &taskNode{def: td}
		pending = append(pending, td.DependsOn...)
	}

	for path, node := range g.nodes {
		for _, dep := range node.def.DependsOn {
			g.dependents[dep] = append(g.dependents[dep], path)
		}
	}

	return g, nil
}

// Validate runs a topological sort over the selected tasks, rejecting
// cycles. Returns an execution-compatible ordering of task paths.
func (g *Graph) Validate() ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var edges []toposort.Edge
	for path, node := range g.nodes {
		if len(node.def.DependsOn) == 0 {
			// No dependencies: anchor to nil so the sort still includes it.
			edges = append(edges, toposort.Edge{nil, path})
			continue
		}
		for _, dep := range node.def.DependsOn {
			edges = append(edges, toposort.Edge{dep, path})
		}
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("task graph contains a cycle: %w", err)
	}

	order := make([]string, 0, len(g.nodes))
	for _, id := range sorted {
		if id != nil {
			order = append(order, id.(string))
		}
	}
	return order, nil
}

// Eligible returns pending tasks whose dependencies have all completed,
// sorted by path for deterministic wave composition.
func (g *Graph) Eligible() []TaskDef {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var eligible []TaskDef
	for _, node := range g.nodes {
		if node.status != StatusPending {
			continue
		}
		ready := true
		for _, dep := range node.def.DependsOn {
			if g.nodes[dep].status != StatusCompleted {
				ready = false
				break
			}
		}
		if ready {
			eligible = append(eligible, node.def)
		}
	}

	sort.Slice(eligible, func(i, j int) bool { return eligible[i].Path < eligible[j].Path })
	return eligible
}

// MarkRunning transitions a task to running.
func (g *Graph) MarkRunning(path string) error {
	return g.transition(path, StatusPending, StatusRunning, nil)
}

// MarkCompleted transitions a task to completed.
func (g *Graph) MarkCompleted(path string) error {
	return g.transition(path, StatusRunning, StatusCompleted, nil)
}

// MarkFailed transitions a task to failed and marks every transitive
// dependent as skipped.
func (g *Graph) MarkFailed(path string, taskErr error) error {
	if err := g.transition(path, StatusRunning, StatusFailed, taskErr); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.skipDependentsLocked(path)
	return nil
}

func (g *Graph) skipDependentsLocked(path string) {
	for _, dep := range g.dependents[path] {
		node := g.nodes[dep]
		if node.status == StatusPending {
			node.status = StatusSkipped
			g.skipDependentsLocked(dep)
		}
	}
}

func (g *Graph) transition(path string, from, to TaskStatus, taskErr error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	node, ok := g.nodes[path]
	if !ok {
		return fmt.Errorf("task %q not in graph", path)
	}
	if node.status != from {
		return fmt.Errorf("task %q: invalid transition %d -> %d", path, node.status, to)
	}
	node.status = to
	node.err = taskErr
	return nil
}

// Status returns a task's current status.
func (g *Graph) Status(path string) (TaskStatus, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	node, ok := g.nodes[path]
	if !ok {
		return 0, false
	}
	return node.status, true
}

// Len returns the number of selected tasks.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Failures returns the paths and errors of every failed task.
func (g *Graph) Failures() map[string]error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	failures := make(map[string]error)
	for path, node := range g.nodes {
		if node.status == StatusFailed {
			failures[path] = node.err
		}
	}
	return failures
}

// FirstFailure returns one failed task's path and error, preferring the
// lexicographically smallest path for stable messages.
func (g *Graph) FirstFailure() (string, error) {
	failures := g.Failures()
	if len(failures) == 0 {
		return "", nil
	}
	paths := make([]string, 0, len(failures))
	for p := range failures {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths[0], failures[paths[0]]
}
