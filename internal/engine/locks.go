package engine

import (
	"sort"
	"sync"
)

// outputLocks provides per-output mutual exclusion for concurrent task
// execution. Keyed mutex pattern: each declared output path gets its own
// mutex, so tasks writing different outputs run concurrently while tasks
// sharing an output serialize.
type outputLocks struct {
	mu    sync.Mutex             // Guards the locks map itself
	locks map[string]*sync.Mutex // Per-output mutexes
}

func newOutputLocks() *outputLocks {
	return &outputLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

// lock acquires the mutex for one output path, creating it on first use.
func (o *outputLocks) lock(output string) {
	o.mu.Lock()
	m, exists := o.locks[output]
	if !exists {
		m = &sync.Mutex{}
		o.locks[output] = m
	}
	o.mu.Unlock()

	// Acquire outside the manager lock to avoid contention.
	m.Lock()
}

// unlock releases the mutex for one output path.
func (o *outputLocks) unlock(output string) {
	o.mu.Lock()
	m, exists := o.locks[output]
	o.mu.Unlock()

	if exists {
		m.Unlock()
	}
}

// lockAll acquires every output in sorted order. Sorting before acquiring
// is what prevents deadlock between tasks sharing overlapping output sets.
func (o *outputLocks) lockAll(outputs []string) {
	if len(outputs) == 0 {
		return
	}

	sorted := make([]string, len(outputs))
	copy(sorted, outputs)
	sort.Strings(sorted)

	for _, out := range sorted {
		o.lock(out)
	}
}

// unlockAll releases in reverse sorted order, symmetric with lockAll.
func (o *outputLocks) unlockAll(outputs []string) {
	if len(outputs) == 0 {
		return
	}

	sorted := make([]string, len(outputs))
	copy(sorted, outputs)
	sort.Strings(sorted)

	for i := len(sorted) - 1; i >= 0; i-- {
		o.unlock(sorted[i])
	}
}
