// Package coordination implements component F: cooperative coordination
// built entirely on callback dispatch through an evloop.Loop — no
// goroutine blocks waiting on another, and no operation here performs
// stack-unwinding or non-local control transfer. Every combinator
// (all/any/race/retry_with_backoff/timeout/cancel_all) is a small state
// machine driven by Completion.Resolve and Completion.OnDone.
//
// Grounded on the Submit-driven continuation style of the inprocgrpc
// adapter's client-stream loop, generalized from one fixed pipeline into
// reusable combinators over an arbitrary number of pending operations.
package coordination

import "sync"

// Completion is a one-shot, loop-affine future: it resolves at most once,
// and every registered continuation runs on its own Loop — never
// synchronously inside Resolve's caller.
type Completion struct {
	loop Loop

	mu       sync.Mutex
	resolved bool
	value    any
	err      error
	onDone   []func(value any, err error)
}

// Loop is the subset of evloop.Loop a Completion needs: enough to submit
// a continuation, decoupled so this package does not import evloop
// directly and tests can use a trivial stub.
type Loop interface {
	Submit(f func()) error
}

// NewCompletion creates an unresolved Completion bound to loop.
func NewCompletion(loop Loop) *Completion {
	return &Completion{loop: loop}
}

// Resolve settles the completion with value/err. Only the first call has
// an effect; later calls are silently ignored, which is what lets
// cancel_all and timeout races against a real response coexist safely.
func (c *Completion) Resolve(value any, err error) {
	c.mu.Lock()
	if c.resolved {
		c.mu.Unlock()
		return
	}
	c.resolved = true
	c.value, c.err = value, err
	cbs := c.onDone
	c.onDone = nil
	c.mu.Unlock()

	for _, cb := range cbs {
		cb := cb
		_ = c.loop.Submit(func() { cb(value, err) })
	}
}

// OnDone registers cb to run, on the loop, once the completion resolves.
// If it has already resolved, cb is scheduled immediately instead of
// running inline, so callers never observe a synchronous callback from
// their own call to OnDone.
func (c *Completion) OnDone(cb func(value any, err error)) {
	c.mu.Lock()
	if c.resolved {
		value, err := c.value, c.err
		c.mu.Unlock()
		_ = c.loop.Submit(func() { cb(value, err) })
		return
	}
	c.onDone = append(c.onDone, cb)
	c.mu.Unlock()
}

// Resolved reports whether Resolve has already run, without blocking.
func (c *Completion) Resolved() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolved
}

// Await is the primitive every combinator in this package is built from:
// it registers a continuation against c without blocking the calling
// goroutine, which is never obligated to unwind its own stack waiting.
func Await(c *Completion, cb func(value any, err error)) {
	c.OnDone(cb)
}
