package launch

// blockingHandler converts the callback contract into a thread-blocking
// wait. It is single-use: one channel close, one outcome slot, owned by one
// run call and never reused.
type blockingHandler struct {
	done    chan struct{}
	failure error
}

func newBlockingHandler() *blockingHandler {
	return &blockingHandler{done: make(chan struct{})}
}

func (h *blockingHandler) OnComplete() {
	close(h.done)
}

func (h *blockingHandler) OnFailure(err error) {
	// The write is ordered before the close, so the goroutine blocked in
	// wait observes it.
	h.failure = err
	close(h.done)
}

// wait parks the calling goroutine until the outcome arrives. There is no
// timeout here: if the backend never calls back, this blocks forever, and
// any timeout policy belongs to the executor.
func (h *blockingHandler) wait() error {
	<-h.done
	return h.failure
}

// invokeAndWait runs a non-blocking dispatch against a private blocking
// handler and suspends until the backend's callback releases it. On failure
// the received error (a *BuildError with its cause chain intact) is returned
// synchronously.
func invokeAndWait(dispatch func(ResultHandler)) error {
	h := newBlockingHandler()
	dispatch(h)
	return h.wait()
}
