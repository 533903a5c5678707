package middleware

import (
	"context"
	"log"
	"time"
)

// LoggingMiddleware records the command, duration, and any error for each
// dispatched call. It captures the start time before calling next and logs
// the elapsed time after next returns.
//
// Grounded on middleware/logging_middleware.go, retyped to Request/Reply.
func LoggingMiddleware() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) *Reply {
			start := time.Now()

			reply := next(ctx, req)

			duration := time.Since(start)
			log.Printf("command: %s, duration: %s", req.Command, duration)
			if !reply.OK {
				log.Printf("command %s failed: %s: %s", req.Command, reply.Code, reply.Message)
			}
			return reply
		}
	}
}
