// Package config provides project configuration for the lazyrel CLI:
// the target database, output preferences, and dialect overrides. It is
// decoupled from command wiring so tests can load configs directly.
package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/lazyrel/pkg/adapter"
	"github.com/leapstack-labs/lazyrel/pkg/dialect"
)

// TargetConfig holds database target configuration.
type TargetConfig struct {
	Type string `koanf:"type"` // duckdb, postgres, sqlite

	// File-based databases (DuckDB, SQLite)
	Path string `koanf:"path"` // file path or ":memory:"

	// Network databases
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Database string `koanf:"database"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	// Common
	Schema string `koanf:"schema"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`
}

// Config is the top-level CLI configuration.
type Config struct {
	Target TargetConfig `koanf:"target"`

	// DialectOverrides is an optional YAML file with function-map overrides
	// applied on top of the target's builtin dialect.
	DialectOverrides string `koanf:"dialect_overrides"`

	// Output is the default rendering format: table, json, csv, md.
	Output string `koanf:"output"`

	Verbose bool `koanf:"verbose"`
}

// ToAdapterConfig converts the target to an adapter.Config.
func (t *TargetConfig) ToAdapterConfig() adapter.Config {
	return adapter.Config{
		Type:     t.Type,
		Path:     t.Path,
		Host:     t.Host,
		Port:     t.Port,
		Database: t.Database,
		Username: t.User,
		Password: t.Password,
		Schema:   t.Schema,
		Options:  t.Options,
	}
}

// Validate checks the configuration against the adapter and dialect
// registries.
func (c *Config) Validate() error {
	if c.Target.Type == "" {
		return fmt.Errorf("target type is required")
	}
	if !adapter.IsRegistered(c.Target.Type) {
		return fmt.Errorf("unknown target type %q (available: %s)",
			c.Target.Type, strings.Join(adapter.ListAdapters(), ", "))
	}
	if _, ok := dialect.Get(c.Target.Type); !ok {
		return fmt.Errorf("no dialect registered for target type %q", c.Target.Type)
	}
	switch c.Output {
	case "", "table", "json", "csv", "md", "markdown":
	default:
		return fmt.Errorf("unknown output format %q", c.Output)
	}
	return nil
}

// ResolveDialect returns the dialect for the target type with any configured
// overrides applied.
func (c *Config) ResolveDialect() (*dialect.Dialect, error) {
	d, ok := dialect.Get(c.Target.Type)
	if !ok {
		return nil, fmt.Errorf("no dialect registered for target type %q", c.Target.Type)
	}
	if c.DialectOverrides == "" {
		return d, nil
	}
	return dialect.LoadOverrides(d, c.DialectOverrides)
}
