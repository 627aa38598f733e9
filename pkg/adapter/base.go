package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/lazyrel/pkg/dialect"
)

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Close, Exec, Query, WriteTable and metadata implementations.
type BaseSQLAdapter struct {
	DB      *sql.DB
	Cfg     Config
	Logger  *slog.Logger
	Dialect *dialect.Dialect
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		return b.DB.Close()
	}
	return nil
}

// Exec executes a SQL statement that doesn't return rows.
func (b *BaseSQLAdapter) Exec(ctx context.Context, sqlStr string) error {
	if b.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	_, err := b.DB.ExecContext(ctx, sqlStr)
	if err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Query executes a SQL statement that returns rows.
func (b *BaseSQLAdapter) Query(ctx context.Context, sqlStr string) (*Rows, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	//nolint:rowserrcheck // rows.Err() must be checked by caller after iteration completes
	rows, err := b.DB.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &Rows{Rows: rows}, nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// WriteTable creates a table matching the column list and inserts the rows
// inside a single transaction. Column types are inferred from the first
// non-nil value in each column; columns with only nil values become TEXT.
func (b *BaseSQLAdapter) WriteTable(ctx context.Context, name string, columns []string, rows [][]any) error {
	if b.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	if len(columns) == 0 {
		return fmt.Errorf("write table %s: at least one column is required", name)
	}

	d := b.Dialect
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = d.QuoteIdent(col) + " " + inferSQLType(rows, i)
	}

	if err := b.Exec(ctx, "DROP TABLE IF EXISTS "+d.QuoteIdent(name)); err != nil {
		return fmt.Errorf("failed to replace table %s: %w", name, err)
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", d.QuoteIdent(name), strings.Join(defs, ", "))
	if err := b.Exec(ctx, create); err != nil {
		return fmt.Errorf("failed to create table %s: %w", name, err)
	}

	if len(rows) == 0 {
		return nil
	}

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = d.QuoteIdent(col)
		placeholders[i] = d.FormatPlaceholder(i + 1)
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QuoteIdent(name), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))

	tx, err := b.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin insert transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range rows {
		if len(row) != len(columns) {
			_ = tx.Rollback()
			return fmt.Errorf("write table %s: row has %d values, want %d", name, len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert into %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit insert transaction: %w", err)
	}

	if b.Logger != nil {
		b.Logger.Debug("wrote table", "table", name, "rows", len(rows))
	}
	return nil
}

// ListTablesCommon lists tables in the default schema via information_schema.
func (b *BaseSQLAdapter) ListTablesCommon(ctx context.Context) ([]string, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	query := fmt.Sprintf(
		"SELECT table_name FROM information_schema.tables WHERE table_schema = %s ORDER BY table_name",
		b.Dialect.FormatPlaceholder(1))

	rows, err := b.DB.QueryContext(ctx, query, b.schema())
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}
	return names, nil
}

// TableColumnsCommon returns the ordered column names of a table via
// information_schema.
func (b *BaseSQLAdapter) TableColumnsCommon(ctx context.Context, table string) ([]string, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	schema := b.schema()
	name := table
	if parts := strings.Split(table, "."); len(parts) == 2 {
		schema = parts[0]
		name = parts[1]
	}

	query := fmt.Sprintf(
		"SELECT column_name FROM information_schema.columns WHERE table_schema = %s AND table_name = %s ORDER BY ordinal_position",
		b.Dialect.FormatPlaceholder(1), b.Dialect.FormatPlaceholder(2))

	rows, err := b.DB.QueryContext(ctx, query, schema, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []string
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return nil, fmt.Errorf("failed to scan column name: %w", err)
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}
	return columns, nil
}

func (b *BaseSQLAdapter) schema() string {
	if b.Cfg.Schema != "" {
		return b.Cfg.Schema
	}
	return b.Dialect.DefaultSchema
}

func inferSQLType(rows [][]any, col int) string {
	for _, row := range rows {
		if col >= len(row) || row[col] == nil {
			continue
		}
		switch row[col].(type) {
		case int, int32, int64:
			return "BIGINT"
		case float32, float64:
			return "DOUBLE PRECISION"
		case bool:
			return "BOOLEAN"
		default:
			return "TEXT"
		}
	}
	return "TEXT"
}
