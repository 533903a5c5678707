// Package middleware implements the onion-model middleware chain for
// command dispatch, used by service.Service (logging, rate limiting).
// Client-side retry is not a middleware here; it is client.WithRetry.
//
// Grounded verbatim on middleware/middleware.go's Chain/HandlerFunc in the
// teacher repository, retyped from *message.RPCMessage to the Request/Reply
// pair this spec's commands actually exchange.
package middleware

import "context"

// Request is the dispatch-time view of an incoming command call.
type Request struct {
	Command   string
	Arguments []string
}

// Reply is the dispatch-time view of a command's outcome: either a success
// carrying result strings, or a classified failure carrying a wire error
// code and message.
type Reply struct {
	OK      bool
	Results []string
	Code    string
	Message string
}

// HandlerFunc is the function signature for dispatch handlers. Both the
// business dispatch and middleware-wrapped handlers share this signature.
type HandlerFunc func(ctx context.Context, req *Request) *Reply

// Middleware takes a handler and returns a new handler wrapping it.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes multiple middlewares into one, built right-to-left so the
// first middleware in the argument list is the outermost layer.
//
//	chain := Chain(LoggingMiddleware(), RateLimit(r, burst))
//	handler := chain(dispatch)
//	// Execution: Logging.before → RateLimit.before → dispatch →
//	//            RateLimit.after → Logging.after
func Chain(middlewares ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
