package discovery

import (
	"context"
	"encoding/json"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// keyPrefix namespaces this module's entries in a shared etcd cluster.
const keyPrefix = "/ipcrpc/"

// EtcdRegistry implements Registry on top of etcd v3's lease/watch
// primitives: a TTL lease backs each registration, so a crashed replica's
// entry expires on its own rather than leaving a dangling address for
// clients to dial into a dead socket.
//
// Grounded on registry/etcd_registry.go, retyped from ServiceInstance to
// Instance and renamed from the mini-rpc key prefix to this module's.
type EtcdRegistry struct {
	client *clientv3.Client
}

// NewEtcdRegistry connects to the given etcd endpoints.
func NewEtcdRegistry(endpoints []string) (*EtcdRegistry, error) {
	c, err := clientv3.New(clientv3.Config{Endpoints: endpoints})
	if err != nil {
		return nil, err
	}
	return &EtcdRegistry{client: c}, nil
}

// Register puts instance under a TTL lease and starts the background
// KeepAlive that renews it; leaseID is kept local (not stored on the
// struct) so one EtcdRegistry can register several instances concurrently
// without one lease clobbering another's renewal loop.
func (r *EtcdRegistry) Register(name string, instance Instance, ttlSeconds int64) error {
	ctx := context.TODO()

	lease, err := r.client.Grant(ctx, ttlSeconds)
	if err != nil {
		return err
	}

	val, err := json.Marshal(instance)
	if err != nil {
		return err
	}

	if _, err := r.client.Put(ctx, keyPrefix+name+"/"+instance.Addr, string(val), clientv3.WithLease(lease.ID)); err != nil {
		return err
	}

	ch, err := r.client.KeepAlive(ctx, lease.ID)
	if err != nil {
		return err
	}
	go func() {
		for range ch {
		}
	}()
	return nil
}

// Deregister removes one instance's key immediately, ahead of its lease
// expiring; call this during graceful shutdown, before closing the
// listener, so in-flight Discover calls stop returning the shutting-down
// address right away rather than waiting out the TTL.
func (r *EtcdRegistry) Deregister(name string, addr string) error {
	_, err := r.client.Delete(context.TODO(), keyPrefix+name+"/"+addr)
	return err
}

// Discover lists every live instance currently registered under name.
func (r *EtcdRegistry) Discover(name string) ([]Instance, error) {
	resp, err := r.client.Get(context.TODO(), keyPrefix+name+"/", clientv3.WithPrefix())
	if err != nil {
		return nil, err
	}

	instances := make([]Instance, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var instance Instance
		if err := json.Unmarshal(kv.Value, &instance); err != nil {
			continue
		}
		instances = append(instances, instance)
	}
	return instances, nil
}

// Watch re-fetches the full instance list on every prefix change and
// publishes it, rather than trying to apply individual put/delete events —
// simpler, and the lists involved are small.
func (r *EtcdRegistry) Watch(name string) <-chan []Instance {
	ch := make(chan []Instance, 1)
	prefix := keyPrefix + name + "/"

	go func() {
		watchChan := r.client.Watch(context.TODO(), prefix, clientv3.WithPrefix())
		for range watchChan {
			instances, err := r.Discover(name)
			if err != nil {
				continue
			}
			ch <- instances
		}
	}()

	return ch
}
