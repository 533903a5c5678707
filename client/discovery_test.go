package client

import (
	"context"
	"testing"

	"ipcrpc/discovery"
	"ipcrpc/loadbalance"
)

func TestDiscoveringClientCallsDiscoveredInstance(t *testing.T) {
	addr, stop := startService(t, nil)
	defer stop()

	reg := discovery.NewMockRegistry()
	reg.Register("echosvc", discovery.Instance{Addr: addr, Weight: 1}, 10)

	dc := NewDiscoveringClient(New("tcp"), reg, &loadbalance.RoundRobinBalancer{})
	results, err := dc.Call(context.Background(), "echosvc", "list", nil)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if len(results) == 0 {
		t.Fatalf("expected a non-empty command list")
	}
}

func TestDiscoveringClientNoInstances(t *testing.T) {
	reg := discovery.NewMockRegistry()
	dc := NewDiscoveringClient(New("tcp"), reg, &loadbalance.RoundRobinBalancer{})

	_, err := dc.Call(context.Background(), "missing", "list", nil)
	if err == nil {
		t.Fatal("expected an error for an undiscoverable service")
	}
}

func TestDiscoveringClientConsistentHashKeysOnCommand(t *testing.T) {
	addrA, stopA := startService(t, nil)
	defer stopA()
	addrB, stopB := startService(t, nil)
	defer stopB()

	reg := discovery.NewMockRegistry()
	reg.Register("echosvc", discovery.Instance{Addr: addrA}, 10)
	reg.Register("echosvc", discovery.Instance{Addr: addrB}, 10)

	dc := NewDiscoveringClient(New("tcp"), reg, loadbalance.NewConsistentHashBalancer())

	_, err1 := dc.Call(context.Background(), "echosvc", "list", nil)
	_, err2 := dc.Call(context.Background(), "echosvc", "list", nil)
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
}
