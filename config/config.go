// Package config holds the ipcrpcd/ipcctl configuration, populated from
// flags, environment variables (prefix IPCRPC_), and an optional .env file.
//
// Grounded on cmd/odata-mcp/main.go's and internal/config/config.go's
// pattern from the vinchacho-odata_mcp_go example (the teacher repo has no
// config layer of its own to follow): a plain struct with `mapstructure`
// tags, populated by binding cobra flags into viper and unmarshalling, with
// godotenv loading a .env file ahead of flag parsing.
package config

// Config holds the settings shared by the service daemon and its CLI
// client.
type Config struct {
	// Listen is the service's bind address ("host:port").
	Listen string `mapstructure:"listen"`

	// Network is the transport's dial/listen network, "tcp" for the
	// reference transport.
	Network string `mapstructure:"network"`

	// ServiceName is the name this process's replica registers itself
	// under in EtcdEndpoints, and the name a discovering client looks up.
	ServiceName string `mapstructure:"service-name"`

	// EtcdEndpoints, when non-empty, turns on etcd-backed service
	// discovery (discovery.EtcdRegistry): ipcctl resolves ServiceName
	// instead of dialing the fixed Endpoint, and ipcrpcd still binds Listen
	// and registers that bound address.
	EtcdEndpoints []string `mapstructure:"etcd-endpoints"`

	// RegistrationTTLSeconds is the etcd lease TTL for this replica's
	// registration.
	RegistrationTTLSeconds int64 `mapstructure:"registration-ttl-seconds"`

	// RateLimitPerSecond and RateLimitBurst configure the service's
	// request-rate middleware; RateLimitPerSecond <= 0 disables it.
	RateLimitPerSecond float64 `mapstructure:"rate-limit-per-second"`
	RateLimitBurst     int     `mapstructure:"rate-limit-burst"`

	// Endpoint is the fixed address an ipcctl invocation without etcd
	// discovery dials directly.
	Endpoint string `mapstructure:"endpoint"`

	// Balancer selects the load-balancing strategy ipcctl uses when
	// EtcdEndpoints is set: "round-robin", "weighted-random", or
	// "consistent-hash".
	Balancer string `mapstructure:"balancer"`

	// RetryAttempts and RetryBaseDelayMillis configure ipcctl's client-side
	// retry of transient failures (client.WithRetry); RetryAttempts <= 0
	// disables retrying.
	RetryAttempts        int   `mapstructure:"retry-attempts"`
	RetryBaseDelayMillis int64 `mapstructure:"retry-base-delay-millis"`

	Verbose bool `mapstructure:"verbose"`
}

// Default returns the configuration's zero-value-safe defaults, applied
// before flags/env/file are layered on top.
func Default() *Config {
	return &Config{
		Listen:                 "127.0.0.1:9090",
		Network:                "tcp",
		ServiceName:            "ipcrpcd",
		RegistrationTTLSeconds: 10,
		RateLimitPerSecond:     0,
		RateLimitBurst:         0,
		Endpoint:               "127.0.0.1:9090",
		Balancer:               "round-robin",
		RetryAttempts:          0,
		RetryBaseDelayMillis:   100,
	}
}

// UsesDiscovery reports whether this Config is wired to etcd-backed service
// discovery rather than a fixed endpoint.
func (c *Config) UsesDiscovery() bool {
	return len(c.EtcdEndpoints) > 0
}

// RateLimitEnabled reports whether the service should install the
// rate-limiting middleware.
func (c *Config) RateLimitEnabled() bool {
	return c.RateLimitPerSecond > 0
}
