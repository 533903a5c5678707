package discovery

import "testing"

func TestMockRegistryRegisterThenDiscover(t *testing.T) {
	reg := NewMockRegistry()
	reg.Register("echo", Instance{Addr: "127.0.0.1:9001", Weight: 1}, 10)
	reg.Register("echo", Instance{Addr: "127.0.0.1:9002", Weight: 2}, 10)

	instances, err := reg.Discover("echo")
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(instances) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(instances))
	}
}

func TestMockRegistryDeregister(t *testing.T) {
	reg := NewMockRegistry()
	reg.Register("echo", Instance{Addr: "127.0.0.1:9001"}, 10)
	reg.Register("echo", Instance{Addr: "127.0.0.1:9002"}, 10)

	if err := reg.Deregister("echo", "127.0.0.1:9001"); err != nil {
		t.Fatalf("deregister: %v", err)
	}

	instances, _ := reg.Discover("echo")
	if len(instances) != 1 || instances[0].Addr != "127.0.0.1:9002" {
		t.Fatalf("unexpected instances: %v", instances)
	}
}

func TestMockRegistryDiscoverUnknownNameIsEmpty(t *testing.T) {
	reg := NewMockRegistry()
	instances, err := reg.Discover("nothing")
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(instances) != 0 {
		t.Fatalf("expected no instances, got %v", instances)
	}
}
