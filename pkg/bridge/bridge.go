// Package bridge connects compiled queries to a database adapter. Materialize
// is the only operation in the library that performs I/O: it compiles a lazy
// relation, runs the SQL through the adapter, and scans the result into an
// in-memory Table. There are no retries and no internal timeout; callers own
// cancellation through the context.
package bridge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/lazyrel/pkg/adapter"
	"github.com/leapstack-labs/lazyrel/pkg/compile"
	"github.com/leapstack-labs/lazyrel/pkg/dialect"
	"github.com/leapstack-labs/lazyrel/pkg/rel"
)

// ExecutionError reports a failed query execution. It carries the generated
// SQL for diagnosis and wraps the adapter's error.
type ExecutionError struct {
	SQL string
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("query execution failed: %v (sql: %s)", e.Err, e.SQL)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Bridge binds an adapter and a dialect for materializing lazy relations.
// It holds the connection reference but never manages its lifecycle; the
// caller connects and closes the adapter.
type Bridge struct {
	db     adapter.Adapter
	dia    *dialect.Dialect
	logger *slog.Logger
}

// New creates a Bridge over a connected adapter. A nil logger discards debug
// output.
func New(db adapter.Adapter, d *dialect.Dialect, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Bridge{db: db, dia: d, logger: logger}
}

// Dialect returns the dialect the bridge compiles for.
func (b *Bridge) Dialect() *dialect.Dialect { return b.dia }

// From returns a root relation over a table, with its schema discovered
// through the adapter's metadata call.
func (b *Bridge) From(ctx context.Context, table string) (*rel.Relation, error) {
	columns, err := b.db.TableColumns(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to discover schema for %s: %w", table, err)
	}
	return rel.Table(table, columns...), nil
}

// Materialize compiles the relation and executes it, returning the rows as an
// in-memory Table. Execution failures are reported as *ExecutionError with
// the generated SQL attached.
func (b *Bridge) Materialize(ctx context.Context, r *rel.Relation) (*Table, error) {
	q, err := compile.Compile(r, b.dia)
	if err != nil {
		return nil, err
	}
	return b.run(ctx, q)
}

// MaterializeSQL compiles the relation and executes the SQL it would emit,
// returning both. It exists for callers that want the compiled text alongside
// the rows.
func (b *Bridge) MaterializeSQL(ctx context.Context, r *rel.Relation) (*compile.Query, *Table, error) {
	q, err := compile.Compile(r, b.dia)
	if err != nil {
		return nil, nil, err
	}
	tbl, err := b.run(ctx, q)
	if err != nil {
		return q, nil, err
	}
	return q, tbl, nil
}

func (b *Bridge) run(ctx context.Context, q *compile.Query) (*Table, error) {
	b.logger.Debug("materializing relation", "sql", q.SQL)

	rows, err := b.db.Query(ctx, q.SQL)
	if err != nil {
		return nil, &ExecutionError{SQL: q.SQL, Err: err}
	}
	defer func() { _ = rows.Close() }()

	tbl, err := scanTable(rows, q.Columns)
	if err != nil {
		return nil, &ExecutionError{SQL: q.SQL, Err: err}
	}
	return tbl, nil
}

// Scan reads an adapter result set into a Table, taking column names from
// the result set itself. Materialize uses the compiled column list instead;
// Scan exists for raw SQL paths (the query command).
func Scan(rows *adapter.Rows) (*Table, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}
	return scanTable(rows, columns)
}

func scanTable(rows *adapter.Rows, columns []string) (*Table, error) {
	tbl := &Table{Columns: append([]string(nil), columns...)}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			// []byte results read more naturally as strings
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		tbl.Rows = append(tbl.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return tbl, nil
}
