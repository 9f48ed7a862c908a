package evloop

import "sync/atomic"

// Handle is a one-shot resource closed asynchronously with a callback
// before its memory is reclaimed, per §4.G's two-phase teardown rule: the
// core must never free a handle synchronously from within its own
// callback. Stop marks intent, CloseWithCallback performs the actual
// close on the loop goroutine and only then invokes done, at which point
// the caller may release anything the handle referenced.
//
// Grounded on the teacher's graceful Server.Shutdown (set the shutdown
// flag, close the listener, then wg.Wait for in-flight work) generalized
// into a reusable primitive instead of being inlined in one place.
type Handle struct {
	loop    *Loop
	stopped atomic.Bool
	closeFn func()
}

// NewHandle wraps closeFn — the resource's actual teardown logic (closing
// a socket, releasing a buffer) — in a two-phase handle bound to loop.
func (l *Loop) NewHandle(closeFn func()) *Handle {
	return &Handle{loop: l, closeFn: closeFn}
}

// Stop marks the handle as no longer accepting new work. It does not, by
// itself, close anything — callers combine Stop with CloseWithCallback.
func (h *Handle) Stop() {
	h.stopped.Store(true)
}

// Stopped reports whether Stop has been called.
func (h *Handle) Stopped() bool {
	return h.stopped.Load()
}

// CloseWithCallback runs the handle's close logic on the loop goroutine,
// then invokes done. done is only called after closeFn has fully run, so
// it is always safe for done to free memory the handle referenced.
func (h *Handle) CloseWithCallback(done func()) {
	_ = h.loop.Submit(func() {
		if h.closeFn != nil {
			h.closeFn()
		}
		if done != nil {
			done()
		}
	})
}
