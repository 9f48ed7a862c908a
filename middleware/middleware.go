// Package middleware implements the onion-model chain that wraps the
// dispatcher's business handler with cross-cutting concerns (logging,
// per-call timeout, rate limiting, retry) without the handler itself
// knowing they exist.
//
// Onion model execution order:
//
//	Chain(A, B, C)(handler)  →  A(B(C(handler)))
//
//	Request:   A.before → B.before → C.before → handler
//	Response:  handler → C.after → B.after → A.after
package middleware

import (
	"context"

	"rpcfabric/wire"
)

// HandlerFunc is the signature shared by the business handler and every
// middleware-wrapped handler around it.
type HandlerFunc func(ctx context.Context, req *wire.Request) *wire.Response

// Middleware takes a handler and returns a new handler wrapping it — the
// decorator pattern, one layer per cross-cutting concern.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes middlewares into one, built right to left so the first
// middleware listed is the outermost layer (runs first on the way in,
// last on the way out).
func Chain(middlewares ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
