package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver

	"github.com/leapstack-labs/lazyrel/pkg/dialect"
)

func init() {
	Register("postgres", func(logger *slog.Logger) Adapter {
		return NewPostgresAdapter(logger)
	})
}

// PostgresAdapter implements the Adapter interface for PostgreSQL using the
// pgx stdlib driver.
type PostgresAdapter struct {
	BaseSQLAdapter
}

// NewPostgresAdapter creates a new Postgres adapter instance.
func NewPostgresAdapter(logger *slog.Logger) *PostgresAdapter {
	return &PostgresAdapter{BaseSQLAdapter{Logger: logger, Dialect: dialect.Postgres}}
}

// Connect establishes a connection to PostgreSQL.
func (a *PostgresAdapter) Connect(ctx context.Context, cfg Config) error {
	db, err := sql.Open("pgx", postgresDSN(cfg))
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	a.DB = db
	a.Cfg = cfg

	return nil
}

// ListTables lists tables in the default schema.
func (a *PostgresAdapter) ListTables(ctx context.Context) ([]string, error) {
	return a.ListTablesCommon(ctx)
}

// TableColumns returns the ordered column names of a table.
func (a *PostgresAdapter) TableColumns(ctx context.Context, table string) ([]string, error) {
	return a.TableColumnsCommon(ctx, table)
}

// DialectName returns "postgres".
func (a *PostgresAdapter) DialectName() string { return "postgres" }

func postgresDSN(cfg Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", host, port),
		Path:   "/" + cfg.Database,
	}
	if cfg.Username != "" {
		if cfg.Password != "" {
			u.User = url.UserPassword(cfg.Username, cfg.Password)
		} else {
			u.User = url.User(cfg.Username)
		}
	}

	q := u.Query()
	for k, v := range cfg.Options {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

var _ Adapter = (*PostgresAdapter)(nil)
