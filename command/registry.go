// Package command implements the name → {handler, metadata} registry owned
// by a service.Service.
//
// Grounded on registry/registry.go's shape in the teacher repository (a
// small, single-purpose registry type with an explicit constructor and
// accessor methods) even though that file's own domain — etcd-backed service
// discovery — is unrelated; command.Registry is the command-dispatch
// counterpart spec.md §3–4.3 calls for.
package command

import "ipcrpc/metadata"

// Handler is invoked synchronously by the service loop with the request's
// argument list and returns the reply's result strings, or an error.
type Handler func(arguments []string) ([]string, error)

// Entry is a registered command: its handler and its metadata record.
type Entry struct {
	Handler  Handler
	Metadata metadata.Metadata
}

// Registry maps command names to entries. The zero value is not usable;
// construct with NewRegistry.
type Registry struct {
	entries map[string]Entry
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register inserts or replaces the entry for name. Replacing an existing
// name does not change its position in Names().
//
// Precondition (not enforced, per spec.md §3: "implementers MAY assert;
// source does not but callers always obey"): entry.Metadata.Name == name.
func (r *Registry) Register(name string, entry Entry) {
	if _, exists := r.entries[name]; !exists {
		r.order = append(r.order, name)
	}
	r.entries[name] = entry
}

// Get looks up a command by name. ok is false if no such command is
// registered.
func (r *Registry) Get(name string) (Entry, bool) {
	entry, ok := r.entries[name]
	return entry, ok
}

// Names returns all registered command names in insertion order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}
