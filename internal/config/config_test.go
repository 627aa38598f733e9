package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/lazyrel/pkg/dialect"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lazyrel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""), nil)
	require.NoError(t, err)

	assert.Equal(t, "duckdb", cfg.Target.Type)
	assert.Equal(t, ":memory:", cfg.Target.Path)
	assert.Equal(t, "table", cfg.Output)
	assert.False(t, cfg.Verbose)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
target:
  type: sqlite
  path: /tmp/analytics.db
output: json
`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Target.Type)
	assert.Equal(t, "/tmp/analytics.db", cfg.Target.Path)
	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, path, ConfigFileUsed())
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "target:\n  type: duckdb\n")
	t.Setenv("LAZYREL_TARGET__TYPE", "sqlite")
	t.Setenv("LAZYREL_OUTPUT", "csv")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Target.Type)
	assert.Equal(t, "csv", cfg.Output)
}

func TestFlagsOverrideEnv(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv("LAZYREL_OUTPUT", "csv")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("target", "", "")
	flags.String("output", "", "")
	require.NoError(t, flags.Parse([]string{"--output=md", "--target=sqlite"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "md", cfg.Output)
	assert.Equal(t, "sqlite", cfg.Target.Type)
}

func TestUnchangedFlagsDoNotOverride(t *testing.T) {
	path := writeConfig(t, "output: json\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", "table", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output, "flag defaults must not mask the file value")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		errMsg string
	}{
		{
			name:   "missing target type",
			cfg:    Config{},
			errMsg: "target type is required",
		},
		{
			name:   "unknown target type",
			cfg:    Config{Target: TargetConfig{Type: "oracle"}},
			errMsg: "unknown target type",
		},
		{
			name:   "unknown output format",
			cfg:    Config{Target: TargetConfig{Type: "duckdb"}, Output: "xml"},
			errMsg: "unknown output format",
		},
		{
			name: "valid",
			cfg:  Config{Target: TargetConfig{Type: "duckdb"}, Output: "table"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			}
		})
	}
}

func TestToAdapterConfig(t *testing.T) {
	target := TargetConfig{
		Type:     "postgres",
		Host:     "db.internal",
		Port:     5432,
		Database: "warehouse",
		User:     "svc",
		Password: "secret",
		Schema:   "analytics",
	}

	ac := target.ToAdapterConfig()
	assert.Equal(t, "postgres", ac.Type)
	assert.Equal(t, "db.internal", ac.Host)
	assert.Equal(t, 5432, ac.Port)
	assert.Equal(t, "warehouse", ac.Database)
	assert.Equal(t, "svc", ac.Username)
	assert.Equal(t, "analytics", ac.Schema)
}

func TestResolveDialect(t *testing.T) {
	cfg := Config{Target: TargetConfig{Type: "sqlite"}}
	d, err := cfg.ResolveDialect()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name)

	_, ok := d.FunctionFor("median")
	assert.False(t, ok)
}

func TestResolveDialectWithOverrides(t *testing.T) {
	overrides := filepath.Join(t.TempDir(), "functions.yml")
	content := "functions:\n  median:\n    sql_name: MEDIAN\n    kind: aggregate\n"
	require.NoError(t, os.WriteFile(overrides, []byte(content), 0o644))

	cfg := Config{
		Target:           TargetConfig{Type: "sqlite"},
		DialectOverrides: overrides,
	}
	d, err := cfg.ResolveDialect()
	require.NoError(t, err)

	f, ok := d.FunctionFor("median")
	require.True(t, ok)
	assert.Equal(t, "MEDIAN", f.SQLName)

	// The registered builtin is untouched.
	builtin, _ := dialect.Get("sqlite")
	_, ok = builtin.FunctionFor("median")
	assert.False(t, ok)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := writeConfig(t, "target:\n  type: oracle\n")
	_, err := Load(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown target type")
}
