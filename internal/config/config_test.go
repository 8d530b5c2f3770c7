package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, ValidateConfig(cfg))

	assert.Equal(t, "pebble", cfg.Storage.Backend)
	assert.Equal(t, "127.0.0.1:5005", cfg.Server.RPCAddress)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)

	// The default fee recipient falls back to the root owner.
	root, err := cfg.Node.ParseRootOwner()
	require.NoError(t, err)
	recipient, err := cfg.Node.ParseFeeRecipient()
	require.NoError(t, err)
	assert.Equal(t, root, recipient)
}

func TestLoadConfigWithoutFile(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "", cfg.GetConfigPath())
	assert.Equal(t, "voucherd-data", cfg.Storage.Path)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voucherd.toml")
	content := `
[node]
ledger_id = "00000000000000000000000000000000000000aa"
root_owner = "00000000000000000000000000000000000000bb"
fee_rate_bps = 250

[server]
rpc_address = "0.0.0.0:6006"

[storage]
backend = "leveldb"
path = "/tmp/voucherd-test"

[audit]
driver = "sqlite"
path = "/tmp/voucherd-test/audit.db"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.GetConfigPath())
	assert.Equal(t, uint64(250), cfg.Node.FeeRateBps)
	assert.Equal(t, "0.0.0.0:6006", cfg.Server.RPCAddress)
	assert.Equal(t, "leveldb", cfg.Storage.Backend)

	// File values override only the keys they set.
	assert.Equal(t, "127.0.0.1:50051", cfg.Server.GRPCAddress)

	id, err := cfg.Node.ParseLedgerID()
	require.NoError(t, err)
	assert.Equal(t, byte(0xaa), id[19])
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("VOUCHERD_STORAGE_BACKEND", "memory")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Backend)
}

func TestNodeValidation(t *testing.T) {
	cfg := DefaultConfig()

	cfg.Node.FeeRateBps = 1001
	require.Error(t, cfg.Node.Validate())
	cfg.Node.FeeRateBps = 1000
	require.NoError(t, cfg.Node.Validate())

	cfg.Node.RootOwner = "zz"
	require.Error(t, cfg.Node.Validate())
}

func TestStorageValidation(t *testing.T) {
	s := StorageConfig{Backend: "bolt", Path: "x"}
	require.Error(t, s.Validate())

	s = StorageConfig{Backend: "pebble"}
	require.Error(t, s.Validate(), "non-memory backends need a path")

	s = StorageConfig{Backend: "memory"}
	require.NoError(t, s.Validate())
}

func TestServerValidation(t *testing.T) {
	s := ServerConfig{RPCAddress: ""}
	require.Error(t, s.Validate())

	s = ServerConfig{RPCAddress: "127.0.0.1:5005", ReadTimeout: -time.Second}
	require.Error(t, s.Validate())
}
