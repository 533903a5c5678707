// Command ipcctl is a generic CLI client for an ipcrpc service: it can
// probe a command's metadata, list a service's commands, or invoke any
// command with string arguments, dialing either a fixed endpoint or a
// service name resolved through etcd discovery and a load balancer.
//
// Grounded on cmd/odata-mcp/main.go's cobra+viper+godotenv wiring (the
// teacher repository has no cmd/ of its own).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ipcrpc/client"
	"ipcrpc/config"
	"ipcrpc/discovery"
	"ipcrpc/loadbalance"
)

var rootCmd = &cobra.Command{
	Use:   "ipcctl <command> [arguments...]",
	Short: "Invoke a command against an ipcrpc service",
	Args:  cobra.MinimumNArgs(1),
	RunE:  run,
}

func init() {
	defaults := config.Default()

	rootCmd.Flags().String("network", defaults.Network, "dial network")
	rootCmd.Flags().String("endpoint", defaults.Endpoint, "fixed service address; ignored if etcd-endpoints is set")
	rootCmd.Flags().String("service-name", defaults.ServiceName, "service name to resolve via etcd discovery")
	rootCmd.Flags().StringSlice("etcd-endpoints", nil, "etcd endpoints; non-empty resolves service-name instead of dialing endpoint directly")
	rootCmd.Flags().String("balancer", defaults.Balancer, "load balancing strategy when using etcd discovery: round-robin, weighted-random, consistent-hash")
	rootCmd.Flags().Int("retry-attempts", defaults.RetryAttempts, "client-side retries of transient failures; <= 0 disables retrying")
	rootCmd.Flags().Int64("retry-base-delay-millis", defaults.RetryBaseDelayMillis, "base exponential-backoff delay between retries")
	rootCmd.Flags().Bool("verbose", defaults.Verbose, "accepted but not read; log output is the same either way")
}

func newBalancer(name string) (loadbalance.Balancer, error) {
	switch name {
	case "round-robin":
		return &loadbalance.RoundRobinBalancer{}, nil
	case "weighted-random":
		return &loadbalance.WeightedRandomBalancer{}, nil
	case "consistent-hash":
		return loadbalance.NewConsistentHashBalancer(), nil
	default:
		return nil, fmt.Errorf("unknown balancer %q", name)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	command := args[0]
	arguments := args[1:]

	c := client.New(cfg.Network)
	call := client.CallFunc(c.Call)
	if cfg.RetryAttempts > 0 {
		call = client.WithRetry(call, cfg.RetryAttempts, time.Duration(cfg.RetryBaseDelayMillis)*time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var results []string
	if cfg.UsesDiscovery() {
		registry, err := discovery.NewEtcdRegistry(cfg.EtcdEndpoints)
		if err != nil {
			return fmt.Errorf("connecting to etcd: %w", err)
		}
		balancer, err := newBalancer(cfg.Balancer)
		if err != nil {
			return err
		}
		discovering := client.NewDiscoveringClient(c, registry, balancer)
		discoveringCall := client.CallFunc(discovering.Call)
		if cfg.RetryAttempts > 0 {
			discoveringCall = client.WithRetry(discoveringCall, cfg.RetryAttempts, time.Duration(cfg.RetryBaseDelayMillis)*time.Millisecond)
		}
		results, err = discoveringCall(ctx, cfg.ServiceName, command, arguments)
		if err != nil {
			return err
		}
	} else {
		results, err = call(ctx, cfg.Endpoint, command, arguments)
		if err != nil {
			return err
		}
	}

	for _, result := range results {
		fmt.Println(result)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
