// Package discovery lets multiple replicas of a service register themselves
// under a shared name so clients can find a live endpoint instead of
// hardcoding one. This is SPEC_FULL.md §12's domain-stack addition: spec.md
// itself addresses exactly one service endpoint per client.Call, and nothing
// here changes that contract — Discover just produces the address Call then
// dials fresh, per spec.md §4.5.
package discovery

// Instance is one running replica of a named service.
//
// Grounded on registry/registry.go's ServiceInstance, renamed to avoid
// colliding with this package's own Registry type and kept at the same
// three fields: Addr drives dialing, Weight feeds
// loadbalance.WeightedRandomBalancer, Version supports canary-style
// filtering a caller may layer on top.
type Instance struct {
	Addr    string
	Weight  int
	Version string
}

// Registry is the service discovery interface: register a replica, remove
// it, list the current replicas of a name, and watch for changes.
//
// Grounded verbatim on registry/registry.go's Registry interface shape.
type Registry interface {
	Register(name string, instance Instance, ttlSeconds int64) error
	Deregister(name string, addr string) error
	Discover(name string) ([]Instance, error)
	Watch(name string) <-chan []Instance
}
