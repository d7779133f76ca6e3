package engine

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestStreamCommand_SeparatesStreams(t *testing.T) {
	cmd := newCommand(context.Background(), "sh", "-c", "echo building; echo warning >&2; echo done")
	pm := NewProcessManager()

	var mu sync.Mutex
	var stdoutLines, stderrLines []string
	err := streamCommand(cmd, pm, func(line string, stderr bool) {
		mu.Lock()
		defer mu.Unlock()
		if stderr {
			stderrLines = append(stderrLines, line)
		} else {
			stdoutLines = append(stdoutLines, line)
		}
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(stdoutLines) != 2 || stdoutLines[0] != "building" || stdoutLines[1] != "done" {
		t.Errorf("unexpected stdout lines: %v", stdoutLines)
	}
	if len(stderrLines) != 1 || stderrLines[0] != "warning" {
		t.Errorf("unexpected stderr lines: %v", stderrLines)
	}
	if pm.Count() != 0 {
		t.Errorf("expected process untracked after exit, got %d", pm.Count())
	}
}

func TestStreamCommand_NonZeroExit(t *testing.T) {
	cmd := newCommand(context.Background(), "sh", "-c", "exit 3")
	pm := NewProcessManager()

	err := streamCommand(cmd, pm, func(string, bool) {})
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if !strings.Contains(err.Error(), "command failed") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStreamCommand_MissingBinary(t *testing.T) {
	cmd := newCommand(context.Background(), "definitely-not-a-real-binary-xyz")
	pm := NewProcessManager()

	if err := streamCommand(cmd, pm, func(string, bool) {}); err == nil {
		t.Fatal("expected error for missing binary")
	}
	if pm.Count() != 0 {
		t.Errorf("expected nothing tracked after start failure, got %d", pm.Count())
	}
}

func TestProcessManager_KillAll(t *testing.T) {
	pm := NewProcessManager()

	cmd := newCommand(context.Background(), "sleep", "60")
	if err := cmd.Start(); err != nil {
		t.Fatalf("failed to start subprocess: %v", err)
	}
	pm.Track(cmd)

	if count := pm.Count(); count != 1 {
		t.Errorf("expected 1 tracked process, got %d", count)
	}

	if err := pm.KillAll(); err != nil {
		t.Errorf("KillAll failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Error("expected killed process to report a non-zero exit")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("process did not terminate after KillAll")
	}
}
