// Package evloop provides the loop-integrated primitives of component G:
// a single-threaded cooperative event loop, millisecond-resolution timers,
// cross-goroutine async wakeup, and two-phase handle teardown.
//
// Go has no native single-threaded event loop, so Loop is realized as one
// dedicated goroutine draining a task queue — every Submit'd callback, every
// timer fire, and every wakeup-triggered continuation runs serialized on
// that one goroutine, which is what §5's "single-threaded cooperative"
// model actually requires: no two callbacks ever run concurrently with each
// other for a given Loop.
//
// Grounded on the pack's in-process gRPC adapter
// (other_examples/.../inprocgrpc/clientstreamadapter.go), whose
// `loop.Submit(func(){ ... })` + channel-select pattern is the idiomatic Go
// shape for "schedule a callback on the loop thread, then wait for it".
package evloop

import (
	"errors"
	"sync"
	"sync/atomic"
)

var ErrLoopClosed = errors.New("evloop: loop is closed")

// Loop is a single-goroutine task dispatcher. The zero value is not usable;
// construct with New.
type Loop struct {
	tasks  chan func()
	closed atomic.Bool
	wg     sync.WaitGroup
}

// New creates a Loop and starts its dispatch goroutine immediately.
func New() *Loop {
	l := &Loop{tasks: make(chan func(), 256)}
	l.wg.Add(1)
	go l.run()
	return l
}

func (l *Loop) run() {
	defer l.wg.Done()
	for f := range l.tasks {
		f()
	}
}

// Submit schedules f to run on the loop goroutine. It never blocks the
// caller waiting for f to run — it only blocks if the internal queue is
// momentarily full, applying natural backpressure to a loop that is
// falling behind.
func (l *Loop) Submit(f func()) error {
	if l.closed.Load() {
		return ErrLoopClosed
	}
	l.tasks <- f
	return nil
}

// Stop closes the loop. Pending tasks already queued still run; no new
// Submit calls are accepted afterward. Stop is idempotent.
func (l *Loop) Stop() {
	if l.closed.CompareAndSwap(false, true) {
		close(l.tasks)
	}
}

// Wait blocks until the dispatch goroutine has drained every queued task
// and exited, i.e. until some time after Stop has been called.
func (l *Loop) Wait() {
	l.wg.Wait()
}
