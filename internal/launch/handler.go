package launch

// ResultHandler is the caller's completion interface for a non-blocking run.
// Exactly one of the two methods is invoked, exactly once, per run, on a
// goroutine owned by the executor (not the one that called the run method).
type ResultHandler interface {
	// OnComplete is invoked when the build finishes successfully.
	OnComplete()

	// OnFailure is invoked with a *BuildError when the build fails.
	OnFailure(err error)
}

// resultAdapter bridges the executor's low-level callback to the caller's
// ResultHandler, translating every backend failure into a BuildError. It is
// pure translation: no synchronization, no state beyond its two fields.
type resultAdapter struct {
	handler ResultHandler

	// backendName is resolved lazily, at failure time, because the backend
	// may not have a stable identity when the adapter is constructed.
	backendName func() string
}

func newResultAdapter(handler ResultHandler, backendName func() string) *resultAdapter {
	return &resultAdapter{handler: handler, backendName: backendName}
}

// OnComplete discards the (void) backend result and notifies the handler.
func (a *resultAdapter) OnComplete(result interface{}) {
	a.handler.OnComplete()
}

// OnFailure wraps the cause in a BuildError naming the backend.
func (a *resultAdapter) OnFailure(err error) {
	a.handler.OnFailure(&BuildError{Backend: a.backendName(), cause: err})
}
