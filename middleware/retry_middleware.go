package middleware

import (
	"context"
	"log"
	"time"

	"rpcfabric/rpcerr"
	"rpcfabric/wire"
)

// RetryMiddleware re-invokes the handler chain below it when the response
// carries a retryable error code, backing off exponentially between
// attempts. This is a business-level retry (the handler ran and failed);
// it is a distinct concern from the client multiplexer's own transport-
// failure retry counter, which never sees or retries application errors.
func RetryMiddleware(maxRetries int, baseDelay time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *wire.Request) *wire.Response {
			resp := next(ctx, req)
			for i := 0; i < maxRetries; i++ {
				if !retryable(resp) {
					return resp
				}
				log.Printf("retry attempt %d for %s after error code %d", i+1, req.Method, resp.ErrorCode)
				time.Sleep(baseDelay * time.Duration(uint(1)<<uint(i)))
				resp = next(ctx, req)
			}
			return resp
		}
	}
}

func retryable(resp *wire.Response) bool {
	if resp == nil || resp.Status == 0 {
		return false
	}
	switch rpcerr.Code(resp.ErrorCode) {
	case rpcerr.Timeout, rpcerr.NotConnected:
		return true
	default:
		return false
	}
}
