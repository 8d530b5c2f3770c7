// Package auditdb persists the audit journal in a relational database,
// with sqlite for single-node deployments and postgres for shared ones.
package auditdb

import (
	"fmt"
	"strings"
)

// Driver names accepted in configuration.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects and parametrizes the journal database.
type Config struct {
	Driver string `toml:"driver" mapstructure:"driver"`

	// Path is the database file for the sqlite driver.
	Path string `toml:"path" mapstructure:"path"`

	// Postgres connection parameters.
	Host     string `toml:"host" mapstructure:"host"`
	Port     int    `toml:"port" mapstructure:"port"`
	User     string `toml:"user" mapstructure:"user"`
	Password string `toml:"password" mapstructure:"password"`
	Database string `toml:"database" mapstructure:"database"`
	SSLMode  string `toml:"ssl_mode" mapstructure:"ssl_mode"`

	// CompressionThreshold is the payload size in bytes above which event
	// payloads are lz4-compressed. Zero disables compression.
	CompressionThreshold int `toml:"compression_threshold" mapstructure:"compression_threshold"`
}

// DefaultConfig returns a sqlite journal beside the state database.
func DefaultConfig() Config {
	return Config{
		Driver:               DriverSQLite,
		Path:                 "audit.db",
		SSLMode:              "disable",
		CompressionThreshold: 1024,
	}
}

// Validate checks the configuration for the selected driver.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Driver) {
	case DriverSQLite, "sqlite3":
		c.Driver = DriverSQLite
		if c.Path == "" {
			return fmt.Errorf("audit: sqlite driver requires a path")
		}
	case DriverPostgres, "pq":
		c.Driver = DriverPostgres
		if c.Host == "" || c.Database == "" {
			return fmt.Errorf("audit: postgres driver requires host and database")
		}
		if c.Port == 0 {
			c.Port = 5432
		}
		if c.SSLMode == "" {
			c.SSLMode = "disable"
		}
	default:
		return fmt.Errorf("audit: unknown driver %q", c.Driver)
	}
	if c.CompressionThreshold < 0 {
		return fmt.Errorf("audit: compression_threshold must be non-negative")
	}
	return nil
}

// DSN builds the driver-specific connection string.
func (c *Config) DSN() string {
	switch c.Driver {
	case DriverPostgres:
		parts := []string{
			fmt.Sprintf("host=%s", c.Host),
			fmt.Sprintf("port=%d", c.Port),
			fmt.Sprintf("dbname=%s", c.Database),
			fmt.Sprintf("sslmode=%s", c.SSLMode),
		}
		if c.User != "" {
			parts = append(parts, fmt.Sprintf("user=%s", c.User))
		}
		if c.Password != "" {
			parts = append(parts, fmt.Sprintf("password=%s", c.Password))
		}
		return strings.Join(parts, " ")
	default:
		return c.Path
	}
}
