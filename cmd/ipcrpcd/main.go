// Command ipcrpcd runs a single ipcrpc service endpoint: it accepts
// connections, serves the built-in describe/list/help/metadata commands
// plus the echo command registered in run, and optionally registers
// itself with etcd for discovery by ipcctl or a DiscoveringClient.
//
// Grounded on cmd/odata-mcp/main.go's cobra+viper+godotenv wiring (the
// teacher repository has no cmd/ of its own): flags are bound through
// config.Load so every Config setting is also reachable via an IPCRPC_* env
// var or a .env file. --description is not part of Config and is read from
// the command line only.
package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ipcrpc/config"
	"ipcrpc/discovery"
	"ipcrpc/metadata"
	"ipcrpc/middleware"
	"ipcrpc/service"
)

var description string

var rootCmd = &cobra.Command{
	Use:   "ipcrpcd",
	Short: "Run an ipcrpc service endpoint",
	RunE:  run,
}

func init() {
	defaults := config.Default()

	rootCmd.Flags().String("listen", defaults.Listen, "bind address (host:port)")
	rootCmd.Flags().String("network", defaults.Network, "dial/listen network")
	rootCmd.Flags().String("service-name", defaults.ServiceName, "name this replica registers under in etcd")
	rootCmd.Flags().StringSlice("etcd-endpoints", nil, "etcd endpoints; non-empty turns on discovery registration")
	rootCmd.Flags().Int64("registration-ttl-seconds", defaults.RegistrationTTLSeconds, "etcd lease TTL for this replica's registration")
	rootCmd.Flags().Float64("rate-limit-per-second", defaults.RateLimitPerSecond, "token bucket refill rate; <= 0 disables rate limiting")
	rootCmd.Flags().Int("rate-limit-burst", defaults.RateLimitBurst, "token bucket burst size")
	rootCmd.Flags().Bool("verbose", defaults.Verbose, "accepted but not read; log output is the same either way")
	rootCmd.Flags().StringVar(&description, "description", "An ipcrpc service.", "description returned by the describe command")
}

type descriptor struct {
	name        string
	description string
}

func (d descriptor) Name() string        { return d.name }
func (d descriptor) Description() string { return d.description }

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	svc := service.New(descriptor{name: cfg.ServiceName, description: description})

	svc.Use(middleware.LoggingMiddleware())
	if cfg.RateLimitEnabled() {
		svc.Use(middleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
	}

	svc.Register("echo",
		func(arguments []string) ([]string, error) { return arguments, nil },
		metadata.Metadata{
			Name:        "echo",
			Description: "Returns its arguments unchanged.",
			Timeout:     metadata.Default,
			Arguments:   metadata.VariableLength(metadata.Argument{Name: "value", Description: "a string to echo back"}),
			Returns:     "The arguments, unchanged.",
			Errors:      "None",
		})

	listener, err := net.Listen(cfg.Network, cfg.Listen)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Listen, err)
	}

	// listener.Addr() reports the address actually bound, which differs
	// from cfg.Listen whenever the port is ephemeral (":0").
	addr := listener.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.UsesDiscovery() {
		registry, err := discovery.NewEtcdRegistry(cfg.EtcdEndpoints)
		if err != nil {
			return fmt.Errorf("connecting to etcd: %w", err)
		}
		instance := discovery.Instance{Addr: addr, Weight: 1}
		if err := registry.Register(cfg.ServiceName, instance, cfg.RegistrationTTLSeconds); err != nil {
			return fmt.Errorf("registering with etcd: %w", err)
		}
		defer registry.Deregister(cfg.ServiceName, addr)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
		listener.Close()
	}()

	log.Printf("%s listening on %s (%s)", cfg.ServiceName, addr, cfg.Network)
	return svc.Run(ctx, listener)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
