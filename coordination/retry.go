package coordination

import (
	"math"
	"time"
)

// RetryWithBackoff repeatedly invokes op until it succeeds or maxAttempts
// is reached, scaling the delay between attempts by multiplier^attempt
// starting from initialDelay. It is fully asynchronous: op's (attempt-
// indexed) Completion is awaited via callback, never polled or blocked
// on, and RetryWithBackoff itself returns its own Completion immediately
// — there is no synchronous/pumped variant, since every caller observed
// in the corpus drives retries from a callback already running on the
// loop. The delay itself is slept in a throwaway goroutine and handed
// back to the loop with Submit, so the loop goroutine is never blocked
// waiting on a timer.
func RetryWithBackoff(loop Loop, maxAttempts int, initialDelay time.Duration, multiplier float64, op func(attempt int) *Completion) *Completion {
	out := NewCompletion(loop)

	var tryAttempt func(attempt int)
	tryAttempt = func(attempt int) {
		Await(op(attempt), func(value any, err error) {
			if err == nil {
				out.Resolve(value, nil)
				return
			}
			next := attempt + 1
			if next >= maxAttempts {
				out.Resolve(value, err)
				return
			}
			scale := math.Pow(multiplier, float64(attempt))
			delay := time.Duration(float64(initialDelay) * scale)
			go func() {
				time.Sleep(delay)
				_ = loop.Submit(func() { tryAttempt(next) })
			}()
		})
	}
	tryAttempt(0)
	return out
}
