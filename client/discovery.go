package client

import (
	"context"
	"fmt"

	"ipcrpc/discovery"
	"ipcrpc/loadbalance"
)

// DiscoveringClient resolves a service name to a live endpoint via a
// discovery.Registry and a loadbalance.Balancer before delegating to a
// Client, rather than requiring callers to hardcode an address.
type DiscoveringClient struct {
	client   *Client
	registry discovery.Registry
	balancer loadbalance.Balancer
}

// NewDiscoveringClient builds a DiscoveringClient over the given registry
// and balancer.
func NewDiscoveringClient(client *Client, registry discovery.Registry, balancer loadbalance.Balancer) *DiscoveringClient {
	return &DiscoveringClient{client: client, registry: registry, balancer: balancer}
}

// Call discovers instances of name, picks one, and calls command on it.
//
// When balancer is a *loadbalance.ConsistentHashBalancer, Pick is keyed on
// the command name rather than the (instances) slice: repeated calls to the
// same command land on the same replica, which is the one concrete use the
// teacher's consistent-hash strategy never wired to an actual call site.
func (d *DiscoveringClient) Call(ctx context.Context, name, command string, arguments []string) ([]string, error) {
	instances, err := d.registry.Discover(name)
	if err != nil {
		return nil, fmt.Errorf("discovering %s: %w", name, err)
	}
	if len(instances) == 0 {
		return nil, fmt.Errorf("no instances registered for %s", name)
	}

	instance, err := d.pick(instances, command)
	if err != nil {
		return nil, fmt.Errorf("picking an instance of %s: %w", name, err)
	}

	return d.client.Call(ctx, instance.Addr, command, arguments)
}

func (d *DiscoveringClient) pick(instances []discovery.Instance, command string) (*discovery.Instance, error) {
	if hashBalancer, ok := d.balancer.(*loadbalance.ConsistentHashBalancer); ok {
		for i := range instances {
			hashBalancer.Add(&instances[i])
		}
		return hashBalancer.Pick(command)
	}
	return d.balancer.Pick(instances)
}
