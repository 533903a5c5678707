package client

import (
	"context"
	"errors"
	"log"
	"time"
)

// CallFunc matches Client.Call's signature, letting WithRetry wrap either a
// *Client or a stub in tests.
type CallFunc func(ctx context.Context, endpoint, command string, arguments []string) ([]string, error)

// WithRetry wraps call with exponential backoff, retrying only faults a
// second attempt could plausibly fix: a receive timeout or a dial failure
// (both Fault.Transient). A KindUnknownCommand or KindServiceError reply is
// the service answering correctly that the call itself is wrong, retrying
// won't change that, so it returns immediately.
//
// Grounded on middleware/retry_middleware.go's maxRetries/baseDelay
// exponential-backoff shape, moved from the service-side middleware chain to
// the client: a timed-out or connection-refused call is the caller's
// decision to retry, not something a service handler should reason about
// (the service already replied exactly once, or didn't, per spec.md §4.4's
// strict alternation — there's nothing left server-side to retry).
func WithRetry(call CallFunc, maxRetries int, baseDelay time.Duration) CallFunc {
	return func(ctx context.Context, endpoint, command string, arguments []string) ([]string, error) {
		results, err := call(ctx, endpoint, command, arguments)
		for attempt := 0; err != nil && attempt < maxRetries && retryable(err); attempt++ {
			log.Printf("retry attempt %d for %s due to: %s", attempt+1, command, err)
			select {
			case <-ctx.Done():
				return nil, err
			case <-time.After(baseDelay * (1 << attempt)):
			}
			results, err = call(ctx, endpoint, command, arguments)
		}
		return results, err
	}
}

func retryable(err error) bool {
	var fault *Fault
	if !errors.As(err, &fault) {
		return false
	}
	return fault.Transient
}
