package coordination

import (
	"time"

	"rpcfabric/rpcerr"
)

// Timeout resolves the same way c does, unless d elapses first, in which
// case it resolves with rpcerr.Timeout. Whichever happens first wins — c
// resolving late has no further effect, since Completion.Resolve is
// idempotent.
func Timeout(loop Loop, c *Completion, d time.Duration) *Completion {
	out := NewCompletion(loop)

	timer := time.AfterFunc(d, func() {
		_ = loop.Submit(func() {
			out.Resolve(nil, rpcerr.New(rpcerr.Timeout, "coordination: deadline elapsed"))
		})
	})
	Await(c, func(value any, err error) {
		timer.Stop()
		out.Resolve(value, err)
	})
	return out
}
