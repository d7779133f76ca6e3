package launch

import (
	"bytes"
	"errors"
	"testing"

	"github.com/anvilbuild/anvil/internal/events"
	"github.com/anvilbuild/anvil/internal/target"
)

// unsupportedSelector is a selector kind the resolver rejects.
type unsupportedSelector struct{}

func (unsupportedSelector) SelectorName() string { return "everything" }

func TestOperationConfig_NoSelectionResolvesEmpty(t *testing.T) {
	var cfg OperationConfig

	snap := cfg.snapshot()
	if snap.Targets() == nil {
		t.Fatal("expected empty non-nil target sequence")
	}
	if len(snap.Targets()) != 0 {
		t.Errorf("expected no targets, got %v", snap.Targets())
	}
}

func TestOperationConfig_ForTasksKeepsLiteralOrder(t *testing.T) {
	var cfg OperationConfig
	cfg.ForTasks(":task1", ":task2", ":task1")

	want := []target.Path{":task1", ":task2", ":task1"}
	got := cfg.snapshot().Targets()
	if len(got) != len(want) {
		t.Fatalf("expected %d targets, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestOperationConfig_LastSelectionWins(t *testing.T) {
	var cfg OperationConfig

	cfg.ForTasks(":literal")
	if err := cfg.ForLaunchables(target.Task{Path: ":selected"}); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	got := cfg.snapshot().Targets()
	if len(got) != 1 || got[0] != ":selected" {
		t.Errorf("expected selector selection to replace tasks, got %v", got)
	}

	// And back again.
	cfg.ForTasks(":literal2")
	got = cfg.snapshot().Targets()
	if len(got) != 1 || got[0] != ":literal2" {
		t.Errorf("expected task selection to replace selectors, got %v", got)
	}
}

func TestOperationConfig_RejectedSelectorLeavesSelectionUnchanged(t *testing.T) {
	var cfg OperationConfig
	cfg.ForTasks(":keep")

	err := cfg.ForLaunchables(target.Task{Path: ":new"}, unsupportedSelector{})
	if err == nil {
		t.Fatal("expected error for unsupported selector")
	}
	var cfgErr *target.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *target.ConfigurationError, got %T", err)
	}

	got := cfg.snapshot().Targets()
	if len(got) != 1 || got[0] != ":keep" {
		t.Errorf("expected previous selection retained, got %v", got)
	}
}

func TestOperationConfig_NullPreservation(t *testing.T) {
	var cfg OperationConfig
	params := cfg.snapshot().Parameters()

	if params.Stdout != nil || params.Stderr != nil || params.Stdin != nil {
		t.Error("expected unset streams to stay nil")
	}
	if params.RuntimeArgs != nil {
		t.Errorf("expected unset runtime args to stay nil, got %v", params.RuntimeArgs)
	}
	if params.BuildArgs != nil {
		t.Errorf("expected unset build args to stay nil, got %v", params.BuildArgs)
	}
	if params.RuntimeHome != "" {
		t.Errorf("expected unset runtime home empty, got %q", params.RuntimeHome)
	}
}

func TestOperationConfig_ExplicitEmptyArgsAreNotNil(t *testing.T) {
	var cfg OperationConfig
	cfg.SetRuntimeArgs()
	cfg.SetBuildArgs()

	params := cfg.snapshot().Parameters()
	if params.RuntimeArgs == nil {
		t.Error("explicitly set empty runtime args must not collapse to nil")
	}
	if params.BuildArgs == nil {
		t.Error("explicitly set empty build args must not collapse to nil")
	}
}

func TestOperationConfig_StreamsPassThroughVerbatim(t *testing.T) {
	var out, errOut bytes.Buffer
	in := bytes.NewBufferString("stdin")

	var cfg OperationConfig
	cfg.SetStandardOutput(&out)
	cfg.SetStandardError(&errOut)
	cfg.SetStandardInput(in)
	cfg.SetRuntimeHome("/opt/runtime")
	cfg.SetRuntimeArgs("-Xmx1g")
	cfg.SetBuildArgs("--offline")

	params := cfg.snapshot().Parameters()
	if params.Stdout != &out || params.Stderr != &errOut || params.Stdin != in {
		t.Error("expected stream handles passed through unchanged")
	}
	if params.RuntimeHome != "/opt/runtime" {
		t.Errorf("expected runtime home passed through, got %q", params.RuntimeHome)
	}
	if len(params.RuntimeArgs) != 1 || params.RuntimeArgs[0] != "-Xmx1g" {
		t.Errorf("unexpected runtime args: %v", params.RuntimeArgs)
	}
	if len(params.BuildArgs) != 1 || params.BuildArgs[0] != "--offline" {
		t.Errorf("unexpected build args: %v", params.BuildArgs)
	}
}

func TestOperationConfig_ProgressHookAlwaysPopulated(t *testing.T) {
	var cfg OperationConfig

	params := cfg.snapshot().Parameters()
	if params.OnProgress == nil {
		t.Fatal("expected non-nil progress hook with zero listeners")
	}
	// Must be callable without listeners.
	params.OnProgress(events.BuildStartedEvent{ID: "b1"})
}

func TestOperationConfig_ProgressListenersAllReceive(t *testing.T) {
	var cfg OperationConfig

	var first, second int
	cfg.AddProgressListener(func(events.Event) { first++ })
	cfg.AddProgressListener(func(events.Event) { second++ })

	params := cfg.snapshot().Parameters()
	params.OnProgress(events.BuildStartedEvent{ID: "b1"})

	if first != 1 || second != 1 {
		t.Errorf("expected both listeners invoked once, got %d and %d", first, second)
	}
}

func TestOperationConfig_SnapshotImmuneToLaterMutation(t *testing.T) {
	var cfg OperationConfig
	cfg.ForTasks(":original")

	snap := cfg.snapshot()
	cfg.ForTasks(":mutated")
	cfg.SetRuntimeArgs("-Dnew")

	if got := snap.Targets(); len(got) != 1 || got[0] != ":original" {
		t.Errorf("snapshot observed later mutation: %v", got)
	}
	if snap.Parameters().RuntimeArgs != nil {
		t.Error("snapshot observed later runtime arg mutation")
	}
}
