// Package executor provides the asynchronous dispatch boundary between the
// launch layer and an execution backend. Submissions return immediately;
// the submitted action runs on an executor-owned goroutine against a live
// connection, and its outcome is routed to exactly one callback method.
package executor

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/anvilbuild/anvil/internal/conn"
)

// Action is the unit of work a dispatch submits: it issues a build request
// against a live connection and returns the backend's result, or an error.
type Action func(c conn.Connection) (interface{}, error)

// Callback is the low-level completion interface invoked by the executor on
// one of its own goroutines. Exactly one of the two methods is invoked,
// exactly once, per submitted action.
type Callback interface {
	OnComplete(result interface{})
	OnFailure(err error)
}

// AsyncExecutor accepts (action, callback) pairs and returns to the caller
// before the action runs.
type AsyncExecutor interface {
	Submit(action Action, cb Callback)
}

// DefaultMaxInFlight bounds concurrent dispatches when no limit is given.
const DefaultMaxInFlight = 4

// ConnectionExecutor runs each submitted action against a freshly dialed
// connection from its Connector, bounding the number of in-flight dispatches
// with a weighted semaphore. Every failure path, including a panicking
// action, funnels into the callback's OnFailure.
type ConnectionExecutor struct {
	connector conn.Connector
	sem       *semaphore.Weighted
	wg        sync.WaitGroup
}

// NewConnectionExecutor creates an executor dispatching through the given
// connector. maxInFlight <= 0 selects DefaultMaxInFlight.
func NewConnectionExecutor(connector conn.Connector, maxInFlight int) *ConnectionExecutor {
	if maxInFlight <= 0 {
		maxInFlight = DefaultMaxInFlight
	}
	return &ConnectionExecutor{
		connector: connector,
		sem:       semaphore.NewWeighted(int64(maxInFlight)),
	}
}

// BackendName returns the display name of the backend this executor
// dispatches to. Available without a live connection.
func (e *ConnectionExecutor) BackendName() string {
	return e.connector.DisplayName()
}

// Submit schedules the action and returns immediately. The callback fires
// later, on an executor goroutine.
func (e *ConnectionExecutor) Submit(action Action, cb Callback) {
	dispatchID := uuid.NewString()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.dispatch(dispatchID, action, cb)
	}()
}

// Wait blocks until every in-flight dispatch has invoked its callback.
func (e *ConnectionExecutor) Wait() {
	e.wg.Wait()
}

// dispatch performs one submission end to end: acquire a slot, dial, run
// the action, route the outcome.
func (e *ConnectionExecutor) dispatch(dispatchID string, action Action, cb Callback) {
	if err := e.sem.Acquire(context.Background(), 1); err != nil {
		cb.OnFailure(fmt.Errorf("acquiring dispatch slot: %w", err))
		return
	}
	defer e.sem.Release(1)

	connection, err := e.connector.Connect(context.Background())
	if err != nil {
		cb.OnFailure(fmt.Errorf("connecting to %s: %w", e.connector.DisplayName(), err))
		return
	}
	defer func() {
		if cerr := connection.Close(); cerr != nil {
			log.Printf("WARNING: dispatch %s: closing connection: %v", dispatchID, cerr)
		}
	}()

	result, err := runAction(action, connection)
	if err != nil {
		cb.OnFailure(err)
		return
	}
	cb.OnComplete(result)
}

// runAction invokes the action, converting a panic into an error so the
// outcome still reaches the callback exactly once. The recovery deliberately
// does not extend to the callback itself: failures inside caller-supplied
// handlers are the caller's problem.
func runAction(action Action, c conn.Connection) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("build action panicked: %v", r)
		}
	}()
	return action(c)
}
