package coordination

import "rpcfabric/rpcerr"

// CancelAll resolves every completion in cs that has not yet settled with
// rpcerr.Cancelled. Completions that already resolved are left untouched —
// Resolve only ever takes effect once.
func CancelAll(cs []*Completion) {
	for _, c := range cs {
		c.Resolve(nil, rpcerr.New(rpcerr.Cancelled, "coordination: cancelled"))
	}
}
