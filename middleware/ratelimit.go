package middleware

import (
	"context"

	"golang.org/x/time/rate"

	"ipcrpc/wire"
)

// RateLimit creates a token-bucket rate limiter over command dispatch: r is
// the refill rate in tokens per second, burst is the bucket size. A rejected
// request short-circuits the chain with an ERROR_UNCATEGORISED reply rather
// than being silently dropped — the service loop still owes its peer a
// reply (spec.md §4.4's FSM has no "skip the send" transition).
//
// Grounded on middleware/rate_limit_middleware.go. The limiter is built once
// in the outer closure, shared across every request through this
// middleware instance; building it per-request would hand every call a
// fresh, full bucket and defeat the point of the limiter.
func RateLimit(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) *Reply {
			if !limiter.Allow() {
				return &Reply{
					OK:      false,
					Code:    wire.CodeUncategorised,
					Message: "rate limit exceeded",
				}
			}
			return next(ctx, req)
		}
	}
}
