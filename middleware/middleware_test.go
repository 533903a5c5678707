package middleware

import (
	"context"
	"testing"
)

func echoHandler(ctx context.Context, req *Request) *Reply {
	return &Reply{OK: true, Results: req.Arguments}
}

func TestLogging(t *testing.T) {
	handler := LoggingMiddleware()(echoHandler)

	reply := handler(context.Background(), &Request{Command: "echo", Arguments: []string{"a"}})
	if reply == nil || !reply.OK {
		t.Fatalf("expected successful reply, got %+v", reply)
	}
}

func TestRateLimitAllowsBurstThenRejects(t *testing.T) {
	// rate=1/sec, burst=2: the first two calls pass immediately, the third
	// is rejected.
	handler := RateLimit(1, 2)(echoHandler)
	req := &Request{Command: "echo"}

	for i := 0; i < 2; i++ {
		reply := handler(context.Background(), req)
		if !reply.OK {
			t.Fatalf("request %d should pass, got: %+v", i, reply)
		}
	}

	reply := handler(context.Background(), req)
	if reply.OK || reply.Message != "rate limit exceeded" {
		t.Fatalf("request 3 should be rate limited, got: %+v", reply)
	}
}

func TestChainPreservesOrder(t *testing.T) {
	var order []string
	track := func(name string) Middleware {
		return func(next HandlerFunc) HandlerFunc {
			return func(ctx context.Context, req *Request) *Reply {
				order = append(order, name+":before")
				reply := next(ctx, req)
				order = append(order, name+":after")
				return reply
			}
		}
	}

	chained := Chain(track("A"), track("B"))
	handler := chained(echoHandler)
	handler(context.Background(), &Request{Command: "echo"})

	expected := []string{"A:before", "B:before", "B:after", "A:after"}
	if len(order) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, order)
	}
	for i, name := range expected {
		if order[i] != name {
			t.Fatalf("expected %v, got %v", expected, order)
		}
	}
}
