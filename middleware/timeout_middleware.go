package middleware

import (
	"context"
	"time"

	"rpcfabric/rpcerr"
	"rpcfabric/wire"
)

// TimeoutMiddleware bounds how long the handler chain below it may run
// before the caller gives up waiting. The handler goroutine itself is not
// cancelled — callers that need true cancellation must watch ctx.Done.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *wire.Request) *wire.Response {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			done := make(chan *wire.Response, 1)
			go func() {
				done <- next(ctx, req)
			}()

			select {
			case resp := <-done:
				return resp
			case <-ctx.Done():
				return &wire.Response{MID: req.MID, Status: 1, ErrorCode: int32(rpcerr.Timeout)}
			}
		}
	}
}
