package command

import (
	"testing"

	"ipcrpc/metadata"
)

func echoEntry() Entry {
	return Entry{
		Handler: func(args []string) ([]string, error) { return args, nil },
		Metadata: metadata.Metadata{
			Name:      "echo",
			Timeout:   metadata.Default,
			Arguments: metadata.VariableLength(metadata.Argument{Name: "x", Description: "any"}),
		},
	}
}

func TestRegisterThenNamesContainsCommand(t *testing.T) {
	r := NewRegistry()
	r.Register("echo", echoEntry())

	names := r.Names()
	if len(names) != 1 || names[0] != "echo" {
		t.Fatalf("expected [echo], got %v", names)
	}
}

func TestReRegisterDoesNotDuplicate(t *testing.T) {
	r := NewRegistry()
	r.Register("echo", echoEntry())
	r.Register("echo", echoEntry())

	names := r.Names()
	if len(names) != 1 {
		t.Fatalf("expected 1 name after re-registration, got %d: %v", len(names), names)
	}
}

func TestNamesPreservesInsertionOrder(t *testing.T) {
	r := NewRegistry()
	r.Register("b", echoEntry())
	r.Register("a", echoEntry())
	r.Register("c", echoEntry())

	names := r.Names()
	expected := []string{"b", "a", "c"}
	for i, name := range expected {
		if names[i] != name {
			t.Fatalf("expected order %v, got %v", expected, names)
		}
	}
}

func TestGetMiss(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Get("nope"); ok {
		t.Fatalf("expected miss for unregistered command")
	}
}
