package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/anvilbuild/anvil/internal/target"
)

func diamondDefinition(t *testing.T) *Definition {
	t.Helper()
	def, err := ParseDefinition([]byte(sampleBuildFile))
	if err != nil {
		t.Fatal(err)
	}
	return def
}

func TestBuildGraph_TransitiveClosure(t *testing.T) {
	def := diamondDefinition(t)

	g, err := BuildGraph(def, []target.Path{":build"})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	// :build pulls in :test, :lint and :compile.
	if g.Len() != 4 {
		t.Errorf("expected 4 tasks in graph, got %d", g.Len())
	}
	for _, path := range []string{":compile", ":test", ":lint", ":build"} {
		if _, ok := g.Status(path); !ok {
			t.Errorf("expected %s in graph", path)
		}
	}
}

func TestBuildGraph_SubsetSelection(t *testing.T) {
	def := diamondDefinition(t)

	g, err := BuildGraph(def, []target.Path{":lint"})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if g.Len() != 1 {
		t.Errorf("expected only :lint in graph, got %d tasks", g.Len())
	}
}

func TestBuildGraph_UnknownTarget(t *testing.T) {
	def := diamondDefinition(t)

	_, err := BuildGraph(def, []target.Path{":ghost"})
	if err == nil {
		t.Fatal("expected error for unknown target")
	}
	if !strings.Contains(err.Error(), ":ghost") {
		t.Errorf("expected error to name the task, got: %v", err)
	}
}

func TestValidate_TopologicalOrder(t *testing.T) {
	def := diamondDefinition(t)
	g, err := BuildGraph(def, []target.Path{":build"})
	if err != nil {
		t.Fatal(err)
	}

	order, err := g.Validate()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(order) != 4 {
		t.Fatalf("expected 4 tasks in order, got %d", len(order))
	}

	pos := make(map[string]int)
	for i, path := range order {
		pos[path] = i
	}
	if pos[":compile"] > pos[":test"] {
		t.Error("expected :compile before :test")
	}
	if pos[":test"] > pos[":build"] {
		t.Error("expected :test before :build")
	}
	if pos[":lint"] > pos[":build"] {
		t.Error("expected :lint before :build")
	}
}

func TestValidate_RejectsCycle(t *testing.T) {
	def := &Definition{
		Project: "p",
		Tasks: []TaskDef{
			{Path: ":a", Command: "true", DependsOn: []string{":b"}},
			{Path: ":b", Command: "true", DependsOn: []string{":a"}},
		},
	}

	g, err := BuildGraph(def, []target.Path{":a"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Validate(); err == nil {
		t.Fatal("expected cycle error")
	}
}

func TestEligible_WaveProgression(t *testing.T) {
	def := diamondDefinition(t)
	g, err := BuildGraph(def, []target.Path{":build"})
	if err != nil {
		t.Fatal(err)
	}

	// First wave: no dependencies.
	wave := g.Eligible()
	if len(wave) != 2 || wave[0].Path != ":compile" || wave[1].Path != ":lint" {
		t.Fatalf("unexpected first wave: %v", wave)
	}

	for _, td := range wave {
		if err := g.MarkRunning(td.Path); err != nil {
			t.Fatal(err)
		}
		if err := g.MarkCompleted(td.Path); err != nil {
			t.Fatal(err)
		}
	}

	// Second wave: :test unblocked by :compile.
	wave = g.Eligible()
	if len(wave) != 1 || wave[0].Path != ":test" {
		t.Fatalf("unexpected second wave: %v", wave)
	}
}

func TestMarkFailed_SkipsTransitiveDependents(t *testing.T) {
	def := diamondDefinition(t)
	g, err := BuildGraph(def, []target.Path{":build"})
	if err != nil {
		t.Fatal(err)
	}

	taskErr := errors.New("compile broke")
	if err := g.MarkRunning(":compile"); err != nil {
		t.Fatal(err)
	}
	if err := g.MarkFailed(":compile", taskErr); err != nil {
		t.Fatal(err)
	}

	if status, _ := g.Status(":test"); status != StatusSkipped {
		t.Errorf("expected :test skipped, got %d", status)
	}
	if status, _ := g.Status(":build"); status != StatusSkipped {
		t.Errorf("expected :build skipped, got %d", status)
	}
	// :lint does not depend on :compile and stays runnable.
	if status, _ := g.Status(":lint"); status != StatusPending {
		t.Errorf("expected :lint pending, got %d", status)
	}

	path, cause := g.FirstFailure()
	if path != ":compile" {
		t.Errorf("expected first failure :compile, got %q", path)
	}
	if !errors.Is(cause, taskErr) {
		t.Errorf("expected original task error, got: %v", cause)
	}
}

func TestTransition_Guards(t *testing.T) {
	def := diamondDefinition(t)
	g, err := BuildGraph(def, []target.Path{":lint"})
	if err != nil {
		t.Fatal(err)
	}

	// Completing a task that never started is invalid.
	if err := g.MarkCompleted(":lint"); err == nil {
		t.Error("expected error completing a pending task")
	}
	if err := g.MarkRunning(":ghost"); err == nil {
		t.Error("expected error for task outside the graph")
	}
}
