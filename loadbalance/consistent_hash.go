package loadbalance

import (
	"fmt"
	"hash/crc32"
	"sort"

	"ipcrpc/discovery"
)

// ConsistentHashBalancer maps keys to instances using a hash ring: the same
// key always maps to the same instance until the ring changes. Wired in
// this module to key on the command name being called (client.DiscoveringClient's
// call site), so repeated calls to the same command land on the same replica —
// useful if a command's handler keeps per-command local state or a cache.
//
// Virtual nodes: each instance gets 100 positions on the ring so three
// instances don't cluster unevenly.
type ConsistentHashBalancer struct {
	replicas int
	ring     []uint32
	nodes    map[uint32]*discovery.Instance
}

// NewConsistentHashBalancer creates a hash ring with 100 virtual nodes per
// instance.
func NewConsistentHashBalancer() *ConsistentHashBalancer {
	return &ConsistentHashBalancer{
		replicas: 100,
		nodes:    make(map[uint32]*discovery.Instance),
	}
}

// Add places an instance onto the hash ring with its virtual nodes.
func (b *ConsistentHashBalancer) Add(instance *discovery.Instance) {
	for i := 0; i < b.replicas; i++ {
		key := fmt.Sprintf("%s#%d", instance.Addr, i)
		hash := crc32.ChecksumIEEE([]byte(key))
		b.ring = append(b.ring, hash)
		b.nodes[hash] = instance
	}
	sort.Slice(b.ring, func(i, j int) bool { return b.ring[i] < b.ring[j] })
}

// Pick finds the instance responsible for key by hashing it and
// binary-searching for the first ring position at or past that hash,
// wrapping around to the first position past the end (ring property).
//
// Pick takes a string key rather than an instance list: consistent hashing
// is key-based, so it doesn't implement the Balancer interface directly.
func (b *ConsistentHashBalancer) Pick(key string) (*discovery.Instance, error) {
	if len(b.ring) == 0 {
		return nil, fmt.Errorf("no instances available")
	}

	hash := crc32.ChecksumIEEE([]byte(key))
	idx := sort.Search(len(b.ring), func(i int) bool { return b.ring[i] >= hash })
	if idx == len(b.ring) {
		idx = 0
	}
	return b.nodes[b.ring[idx]], nil
}

func (b *ConsistentHashBalancer) Name() string {
	return "ConsistentHash"
}
