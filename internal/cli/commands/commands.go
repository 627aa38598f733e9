// Package commands implements the lazyrel subcommands.
package commands

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/lazyrel/internal/config"
	"github.com/leapstack-labs/lazyrel/pkg/adapter"
	"github.com/leapstack-labs/lazyrel/pkg/dialect"
)

type configKey struct{}
type loggerKey struct{}

// WithConfig stores the loaded config in the context.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// WithLogger stores the logger in the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// ConfigFrom retrieves the config from the context, falling back to defaults.
func ConfigFrom(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return &config.Config{
		Target: config.TargetConfig{Type: "duckdb", Path: ":memory:"},
		Output: config.DefaultOutput,
	}
}

// LoggerFrom retrieves the logger from the context; nil-safe for callers.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// openTarget connects an adapter for the configured target and resolves its
// dialect. The caller owns the returned adapter and must Close it.
func openTarget(ctx context.Context, cfg *config.Config) (adapter.Adapter, *dialect.Dialect, error) {
	db, err := adapter.New(cfg.Target.ToAdapterConfig(), LoggerFrom(ctx))
	if err != nil {
		return nil, nil, err
	}
	if err := db.Connect(ctx, cfg.Target.ToAdapterConfig()); err != nil {
		return nil, nil, err
	}
	d, err := cfg.ResolveDialect()
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, d, nil
}
