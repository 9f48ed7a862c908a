package server

import (
	"log"
	"runtime"
)

// DebugLeakCheck enables unanswered-request detection. Off by default —
// the finalizer machinery below has a real GC cost, so production builds
// leave it false and only debug/test builds opt in.
var DebugLeakCheck = false

// requestGuard wraps a request's MID for the lifetime of its handling. If
// DebugLeakCheck is set and the guard is garbage collected before answered
// is marked true, its finalizer logs a leak: a request that was decoded
// but never produced a response frame.
type requestGuard struct {
	mid      uint32
	answered bool
}

func newRequestGuard(mid uint32) *requestGuard {
	if !DebugLeakCheck {
		return nil
	}
	g := &requestGuard{mid: mid}
	runtime.SetFinalizer(g, func(g *requestGuard) {
		if !g.answered {
			log.Printf("server: leak detected, request mid=%d was never answered", g.mid)
		}
	})
	return g
}

func (g *requestGuard) markAnswered() {
	if g == nil {
		return
	}
	g.answered = true
	runtime.SetFinalizer(g, nil)
}
