package middleware

import (
	"context"
	"log"
	"time"

	"rpcfabric/wire"
)

// LoggingMiddleware records the method, duration, and error code of every
// dispatched request.
func LoggingMiddleware() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *wire.Request) *wire.Response {
			start := time.Now()
			resp := next(ctx, req)
			log.Printf("method=%s mid=%d duration=%s errorCode=%d", req.Method, req.MID, time.Since(start), resp.ErrorCode)
			return resp
		}
	}
}
