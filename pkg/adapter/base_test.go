package adapter

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/lazyrel/pkg/dialect"
)

func TestBaseSQLAdapter_Close(t *testing.T) {
	t.Run("close with nil DB", func(t *testing.T) {
		base := &BaseSQLAdapter{}
		assert.NoError(t, base.Close())
	})

	t.Run("close with open DB", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		mock.ExpectClose()

		base := &BaseSQLAdapter{DB: db}
		assert.NoError(t, base.Close())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBaseSQLAdapter_Exec(t *testing.T) {
	tests := []struct {
		name      string
		setupDB   bool
		setupMock func(mock sqlmock.Sqlmock)
		sql       string
		expectErr bool
		errMsg    string
	}{
		{
			name:      "exec without connection",
			setupDB:   false,
			sql:       "SELECT 1",
			expectErr: true,
			errMsg:    "database connection not established",
		},
		{
			name:    "exec success",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE users").WillReturnResult(sqlmock.NewResult(0, 0))
			},
			sql:       "CREATE TABLE users (id INT)",
			expectErr: false,
		},
		{
			name:    "exec with error",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INVALID SQL").WillReturnError(assert.AnError)
			},
			sql:       "INVALID SQL",
			expectErr: true,
			errMsg:    "failed to execute SQL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			base := &BaseSQLAdapter{}

			if tt.setupDB {
				db, mock, err := sqlmock.New()
				require.NoError(t, err)
				defer func() { _ = db.Close() }()

				if tt.setupMock != nil {
					tt.setupMock(mock)
				}
				base.DB = db
			}

			err := base.Exec(ctx, tt.sql)
			if tt.expectErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBaseSQLAdapter_Query(t *testing.T) {
	t.Run("query without connection", func(t *testing.T) {
		base := &BaseSQLAdapter{}
		_, err := base.Query(context.Background(), "SELECT 1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database connection not established")
	})

	t.Run("query success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery("SELECT id FROM users").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))

		base := &BaseSQLAdapter{DB: db}
		rows, err := base.Query(context.Background(), "SELECT id FROM users")
		require.NoError(t, err)
		defer func() { _ = rows.Close() }()

		var ids []int
		for rows.Next() {
			var id int
			require.NoError(t, rows.Scan(&id))
			ids = append(ids, id)
		}
		require.NoError(t, rows.Err())
		assert.Equal(t, []int{1, 2}, ids)
	})

	t.Run("query error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery("SELECT boom").WillReturnError(assert.AnError)

		base := &BaseSQLAdapter{DB: db}
		_, err = base.Query(context.Background(), "SELECT boom")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to execute query")
	})
}

func TestBaseSQLAdapter_WriteTable(t *testing.T) {
	newBase := func(t *testing.T) (*BaseSQLAdapter, sqlmock.Sqlmock) {
		t.Helper()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		return &BaseSQLAdapter{DB: db, Dialect: dialect.DuckDB}, mock
	}

	t.Run("replaces table and inserts rows", func(t *testing.T) {
		base, mock := newBase(t)

		mock.ExpectExec("DROP TABLE IF EXISTS sales").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`CREATE TABLE sales \(id BIGINT, region TEXT, amount DOUBLE PRECISION, open BOOLEAN\)`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectBegin()
		prep := mock.ExpectPrepare("INSERT INTO sales")
		prep.ExpectExec().WithArgs(int64(1), "emea", 10.5, true).WillReturnResult(sqlmock.NewResult(1, 1))
		prep.ExpectExec().WithArgs(int64(2), "apac", 7.25, false).WillReturnResult(sqlmock.NewResult(2, 1))
		mock.ExpectCommit()

		err := base.WriteTable(context.Background(), "sales",
			[]string{"id", "region", "amount", "open"},
			[][]any{
				{int64(1), "emea", 10.5, true},
				{int64(2), "apac", 7.25, false},
			})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty rows creates table only", func(t *testing.T) {
		base, mock := newBase(t)

		mock.ExpectExec("DROP TABLE IF EXISTS empty").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`CREATE TABLE empty \(id TEXT\)`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := base.WriteTable(context.Background(), "empty", []string{"id"}, nil)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ragged row rolls back", func(t *testing.T) {
		base, mock := newBase(t)

		mock.ExpectExec("DROP TABLE IF EXISTS t").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE TABLE t").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectBegin()
		mock.ExpectPrepare("INSERT INTO t")
		mock.ExpectRollback()

		err := base.WriteTable(context.Background(), "t",
			[]string{"a", "b"}, [][]any{{int64(1)}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "row has 1 values, want 2")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no columns", func(t *testing.T) {
		base, _ := newBase(t)
		err := base.WriteTable(context.Background(), "t", nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one column")
	})

	t.Run("postgres placeholders", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		base := &BaseSQLAdapter{DB: db, Dialect: dialect.Postgres}

		mock.ExpectExec("DROP TABLE IF EXISTS t").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE TABLE t (a BIGINT)").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectBegin()
		prep := mock.ExpectPrepare("INSERT INTO t (a) VALUES ($1)")
		prep.ExpectExec().WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		err = base.WriteTable(context.Background(), "t", []string{"a"}, [][]any{{int64(7)}})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBaseSQLAdapter_ListTablesCommon(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	base := &BaseSQLAdapter{DB: db, Dialect: dialect.DuckDB}

	mock.ExpectQuery("SELECT table_name FROM information_schema.tables").
		WithArgs("main").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("diamonds").AddRow("orders"))

	tables, err := base.ListTablesCommon(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"diamonds", "orders"}, tables)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBaseSQLAdapter_TableColumnsCommon(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		base := &BaseSQLAdapter{DB: db, Dialect: dialect.DuckDB}

		mock.ExpectQuery("SELECT column_name FROM information_schema.columns").
			WithArgs("main", "diamonds").
			WillReturnRows(sqlmock.NewRows([]string{"column_name"}).
				AddRow("carat").AddRow("cut").AddRow("price"))

		cols, err := base.TableColumnsCommon(context.Background(), "diamonds")
		require.NoError(t, err)
		assert.Equal(t, []string{"carat", "cut", "price"}, cols)
	})

	t.Run("schema-qualified name", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		base := &BaseSQLAdapter{DB: db, Dialect: dialect.DuckDB}

		mock.ExpectQuery("SELECT column_name FROM information_schema.columns").
			WithArgs("analytics", "facts").
			WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("id"))

		cols, err := base.TableColumnsCommon(context.Background(), "analytics.facts")
		require.NoError(t, err)
		assert.Equal(t, []string{"id"}, cols)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		base := &BaseSQLAdapter{DB: db, Dialect: dialect.DuckDB}

		mock.ExpectQuery("SELECT column_name FROM information_schema.columns").
			WithArgs("main", "absent").
			WillReturnRows(sqlmock.NewRows([]string{"column_name"}))

		_, err = base.TableColumnsCommon(context.Background(), "absent")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "table absent not found")
	})
}

func TestInferSQLType(t *testing.T) {
	rows := [][]any{
		{nil, nil, nil, nil, nil},
		{int64(1), 1.5, true, "x", nil},
	}

	assert.Equal(t, "BIGINT", inferSQLType(rows, 0))
	assert.Equal(t, "DOUBLE PRECISION", inferSQLType(rows, 1))
	assert.Equal(t, "BOOLEAN", inferSQLType(rows, 2))
	assert.Equal(t, "TEXT", inferSQLType(rows, 3))
	assert.Equal(t, "TEXT", inferSQLType(rows, 4), "all-nil column defaults to TEXT")
}
