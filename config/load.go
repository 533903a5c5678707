package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Load reads a .env file if present (silently ignored if missing), binds
// flags into viper so every setting can also be supplied via an IPCRPC_*
// environment variable, and unmarshals the result over Default().
//
// Grounded on cmd/odata-mcp/main.go's init(): godotenv.Load() before flag
// binding, viper.SetEnvKeyReplacer + AutomaticEnv + SetEnvPrefix for the
// flag/env merge.
func Load(flags *pflag.FlagSet) (*Config, error) {
	godotenv.Load()

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	viper.SetEnvPrefix("IPCRPC")

	if err := viper.BindPFlags(flags); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
