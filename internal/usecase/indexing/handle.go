package indexing

import "context"

// Handle tracks the completion of one queued indexing task.
type Handle struct {
	done chan struct{}
	err  error
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

// Done is closed once the task has been processed.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Err returns the task outcome. Only valid after Done is closed.
func (h *Handle) Err() error { return h.err }

// Wait blocks until the task completes or ctx expires.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// complete must be called exactly once, by the worker that processed the task.
func (h *Handle) complete(err error) {
	h.err = err
	close(h.done)
}
