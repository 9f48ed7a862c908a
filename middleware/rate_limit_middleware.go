package middleware

import (
	"context"

	"golang.org/x/time/rate"

	"rpcfabric/rpcerr"
	"rpcfabric/wire"
)

// RateLimitMiddleware enforces a token-bucket ceiling on dispatched
// requests: r tokens refill per second, up to burst. The limiter is
// created once in the outer closure and shared across every request —
// creating it per-request would hand every call a fresh bucket and defeat
// the limit entirely.
func RateLimitMiddleware(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *wire.Request) *wire.Response {
			if !limiter.Allow() {
				return &wire.Response{MID: req.MID, Status: 1, ErrorCode: int32(rpcerr.RateLimited)}
			}
			return next(ctx, req)
		}
	}
}
