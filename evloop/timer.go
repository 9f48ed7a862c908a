package evloop

import "time"

// Timer is a millisecond-resolution, loop-integrated timer: its callback
// is always delivered through Loop.Submit, so it runs serialized with
// every other callback on the loop rather than on the Go runtime's own
// timer goroutine.
type Timer struct {
	loop *Loop
	t    *time.Timer
}

// AfterFunc schedules f to run on the loop after d has elapsed.
func (l *Loop) AfterFunc(d time.Duration, f func()) *Timer {
	tm := &Timer{loop: l}
	tm.t = time.AfterFunc(d, func() {
		_ = l.Submit(f)
	})
	return tm
}

// Stop cancels the timer. It returns false if the timer already fired or
// was already stopped.
func (tm *Timer) Stop() bool {
	return tm.t.Stop()
}

// Reset reschedules the timer to fire after d from now.
func (tm *Timer) Reset(d time.Duration) bool {
	return tm.t.Reset(d)
}
