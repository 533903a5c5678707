// Package loadbalance provides strategies for picking one discovery.Instance
// out of the replicas client.Call's caller discovered for a named service.
//
// Three strategies, unchanged from the teacher:
//   - RoundRobin:     stateless replicas, equal capacity
//   - WeightedRandom: heterogeneous replicas
//   - ConsistentHash: affinity by key (wired to the command name, see
//     consistent_hash.go)
package loadbalance

import "ipcrpc/discovery"

// Balancer is the interface for load balancing strategies.
type Balancer interface {
	// Pick selects one instance from the available list. Called on every
	// call — must be goroutine-safe.
	Pick(instances []discovery.Instance) (*discovery.Instance, error)

	// Name returns the strategy name (for logging/debugging).
	Name() string
}
