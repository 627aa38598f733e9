package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver

	"github.com/leapstack-labs/lazyrel/pkg/dialect"
)

func init() {
	Register("duckdb", func(logger *slog.Logger) Adapter {
		return NewDuckDBAdapter(logger)
	})
}

// DuckDBAdapter implements the Adapter interface for DuckDB.
type DuckDBAdapter struct {
	BaseSQLAdapter
}

// NewDuckDBAdapter creates a new DuckDB adapter instance.
func NewDuckDBAdapter(logger *slog.Logger) *DuckDBAdapter {
	return &DuckDBAdapter{BaseSQLAdapter{Logger: logger, Dialect: dialect.DuckDB}}
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" as the path for an in-memory database.
func (a *DuckDBAdapter) Connect(ctx context.Context, cfg Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	a.DB = db
	a.Cfg = cfg

	return nil
}

// ListTables lists tables in the default schema.
func (a *DuckDBAdapter) ListTables(ctx context.Context) ([]string, error) {
	return a.ListTablesCommon(ctx)
}

// TableColumns returns the ordered column names of a table.
func (a *DuckDBAdapter) TableColumns(ctx context.Context, table string) ([]string, error) {
	return a.TableColumnsCommon(ctx, table)
}

// LoadCSV loads data from a CSV file into a table.
// DuckDB infers the schema from the CSV file.
func (a *DuckDBAdapter) LoadCSV(ctx context.Context, tableName string, filePath string) error {
	if a.DB == nil {
		return fmt.Errorf("database connection not established")
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	query := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv_auto(%s, header=true)",
		a.Dialect.QuoteIdent(tableName),
		a.Dialect.QuoteString(absPath),
	)

	if err := a.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to load CSV: %w", err)
	}

	return nil
}

// DialectName returns "duckdb".
func (a *DuckDBAdapter) DialectName() string { return "duckdb" }

// Ensure DuckDBAdapter implements the adapter interfaces
var (
	_ Adapter   = (*DuckDBAdapter)(nil)
	_ CSVLoader = (*DuckDBAdapter)(nil)
)
