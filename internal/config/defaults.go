package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default genesis identity used by local development setups. Production
// deployments must override both values.
const (
	defaultLedgerID  = "0000000000000000000000000000000000000001"
	defaultRootOwner = "0000000000000000000000000000000000000002"
)

// setDefaults installs the default value for every configuration key.
func setDefaults(v *viper.Viper) {
	// Node section
	v.SetDefault("node.ledger_id", defaultLedgerID)
	v.SetDefault("node.root_owner", defaultRootOwner)
	v.SetDefault("node.fee_recipient", "")
	v.SetDefault("node.fee_rate_bps", 100)

	// Server section
	v.SetDefault("server.rpc_address", "127.0.0.1:5005")
	v.SetDefault("server.grpc_address", "127.0.0.1:50051")
	v.SetDefault("server.metrics_address", "127.0.0.1:9090")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	// Storage section
	v.SetDefault("storage.backend", "pebble")
	v.SetDefault("storage.path", "voucherd-data")

	// Audit section
	v.SetDefault("audit.driver", "sqlite")
	v.SetDefault("audit.path", "audit.db")
	v.SetDefault("audit.port", 5432)
	v.SetDefault("audit.ssl_mode", "disable")
	v.SetDefault("audit.compression_threshold", 1024)
}

// DefaultConfig returns a configuration populated with defaults only.
func DefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		// Defaults are static and always unmarshal.
		panic(err)
	}
	return &config
}
