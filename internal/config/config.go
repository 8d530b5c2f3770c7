package config

import (
	"fmt"
	"time"

	"github.com/hbkwon/voucherd/internal/core/types"
	"github.com/hbkwon/voucherd/internal/storage/auditdb"
)

// Config represents the complete voucherd configuration.
// This mirrors the structure of voucherd.toml.
type Config struct {
	Node    NodeConfig     `toml:"node" mapstructure:"node"`
	Server  ServerConfig   `toml:"server" mapstructure:"server"`
	Storage StorageConfig  `toml:"storage" mapstructure:"storage"`
	Audit   auditdb.Config `toml:"audit" mapstructure:"audit"`

	configPath string `toml:"-" mapstructure:"-"`
}

// NodeConfig identifies the ledger instance and its genesis parameters.
type NodeConfig struct {
	// LedgerID is the hex-encoded 20-byte identity mixed into every
	// signed payload. Two nodes with different ids reject each other's
	// signatures.
	LedgerID string `toml:"ledger_id" mapstructure:"ledger_id"`

	// RootOwner is the hex-encoded account that holds the permanent
	// administrative role.
	RootOwner string `toml:"root_owner" mapstructure:"root_owner"`

	// FeeRecipient receives issuance and settlement fees. Defaults to
	// the root owner when empty.
	FeeRecipient string `toml:"fee_recipient" mapstructure:"fee_recipient"`

	// FeeRateBps is the genesis fee rate in basis points.
	FeeRateBps uint64 `toml:"fee_rate_bps" mapstructure:"fee_rate_bps"`
}

// ServerConfig holds the listen addresses of the exposed surfaces.
type ServerConfig struct {
	RPCAddress     string        `toml:"rpc_address" mapstructure:"rpc_address"`
	GRPCAddress    string        `toml:"grpc_address" mapstructure:"grpc_address"`
	MetricsAddress string        `toml:"metrics_address" mapstructure:"metrics_address"`
	ReadTimeout    time.Duration `toml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `toml:"write_timeout" mapstructure:"write_timeout"`
}

// StorageConfig selects the key-value backend holding ledger state.
type StorageConfig struct {
	// Backend is one of "pebble", "leveldb" or "memory".
	Backend string `toml:"backend" mapstructure:"backend"`
	Path    string `toml:"path" mapstructure:"path"`
}

// GetConfigPath returns the path of the file the configuration was loaded
// from, or an empty string when built from defaults only.
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// LedgerID parses the configured ledger identity.
func (n *NodeConfig) ParseLedgerID() (types.LedgerID, error) {
	return types.ParseLedgerID(n.LedgerID)
}

// ParseRootOwner parses the configured root owner account.
func (n *NodeConfig) ParseRootOwner() (types.AccountID, error) {
	return types.ParseAccountID(n.RootOwner)
}

// ParseFeeRecipient parses the configured fee recipient, falling back to
// the root owner when unset.
func (n *NodeConfig) ParseFeeRecipient() (types.AccountID, error) {
	if n.FeeRecipient == "" {
		return n.ParseRootOwner()
	}
	return types.ParseAccountID(n.FeeRecipient)
}

// Validate checks the node section.
func (n *NodeConfig) Validate() error {
	if _, err := n.ParseLedgerID(); err != nil {
		return fmt.Errorf("invalid ledger_id %q: %w", n.LedgerID, err)
	}
	if _, err := n.ParseRootOwner(); err != nil {
		return fmt.Errorf("invalid root_owner %q: %w", n.RootOwner, err)
	}
	if _, err := n.ParseFeeRecipient(); err != nil {
		return fmt.Errorf("invalid fee_recipient %q: %w", n.FeeRecipient, err)
	}
	if n.FeeRateBps > 1000 {
		return fmt.Errorf("fee_rate_bps %d exceeds maximum of 1000", n.FeeRateBps)
	}
	return nil
}

// Validate checks the server section.
func (s *ServerConfig) Validate() error {
	if s.RPCAddress == "" {
		return fmt.Errorf("rpc_address cannot be empty")
	}
	if s.ReadTimeout < 0 || s.WriteTimeout < 0 {
		return fmt.Errorf("timeouts must be non-negative")
	}
	return nil
}

// Validate checks the storage section.
func (s *StorageConfig) Validate() error {
	switch s.Backend {
	case "pebble", "leveldb", "memory":
	default:
		return fmt.Errorf("unsupported storage backend %q", s.Backend)
	}
	if s.Backend != "memory" && s.Path == "" {
		return fmt.Errorf("storage path is required for backend %q", s.Backend)
	}
	return nil
}

// ValidateConfig performs validation on the complete configuration.
func ValidateConfig(config *Config) error {
	if err := config.Node.Validate(); err != nil {
		return fmt.Errorf("node config validation failed: %w", err)
	}
	if err := config.Server.Validate(); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}
	if err := config.Storage.Validate(); err != nil {
		return fmt.Errorf("storage config validation failed: %w", err)
	}
	if err := config.Audit.Validate(); err != nil {
		return fmt.Errorf("audit config validation failed: %w", err)
	}
	return nil
}
