// Package adapter provides the database connection collaborator: a common
// interface over DuckDB, Postgres and SQLite plus a registry keyed by adapter
// type. The lazy relation builder and compiler never touch this package; only
// pkg/bridge and the CLI do.
package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Config holds the configuration for connecting to a database.
type Config struct {
	// Type specifies the database type (e.g., "duckdb", "postgres", "sqlite")
	Type string

	// Path is the file path for file-based databases (DuckDB, SQLite).
	// Use ":memory:" for in-memory databases.
	Path string

	// Host is the hostname for network-based databases
	Host string

	// Port is the port number for network-based databases
	Port int

	// Database is the database name
	Database string

	// Username for authentication
	Username string

	// Password for authentication
	Password string

	// Schema is the default schema to use
	Schema string

	// Options contains additional driver-specific options
	Options map[string]string
}

// Rows wraps sql.Rows to provide a consistent interface across adapters.
type Rows struct {
	*sql.Rows
}

// Adapter defines the interface that all database adapters must implement.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// Exec executes a SQL statement that doesn't return rows.
	Exec(ctx context.Context, sql string) error

	// Query executes a SQL statement that returns rows.
	Query(ctx context.Context, sql string) (*Rows, error)

	// WriteTable creates a table with the given columns and inserts the rows.
	// An existing table of the same name is replaced.
	WriteTable(ctx context.Context, name string, columns []string, rows [][]any) error

	// ListTables returns the table names visible in the default schema.
	ListTables(ctx context.Context) ([]string, error)

	// TableColumns returns the ordered column names of a table.
	TableColumns(ctx context.Context, table string) ([]string, error)

	// DialectName returns the SQL dialect name for this adapter
	// (e.g., "duckdb", "postgres", "sqlite").
	DialectName() string
}

// CSVLoader is implemented by adapters that can bulk-load CSV files
// (currently DuckDB via read_csv_auto).
type CSVLoader interface {
	LoadCSV(ctx context.Context, tableName string, filePath string) error
}

// UnknownAdapterError reports a Config.Type with no registered factory.
type UnknownAdapterError struct {
	Type      string
	Available []string
}

func (e *UnknownAdapterError) Error() string {
	return fmt.Sprintf("unknown adapter type %q (available: %s)",
		e.Type, strings.Join(e.Available, ", "))
}

// TempTableName returns a unique staging table name with the given prefix.
// Temporary tables created through WriteTable under these names are dropped
// by the database when the connection closes, not by this layer.
func TempTableName(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s_tmp_%s", prefix, id)
}
