package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/leapstack-labs/lazyrel/pkg/adapter"
	"github.com/leapstack-labs/lazyrel/pkg/bridge"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format string
	Input  string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run SQL against the target database",
		Long: `Run a SQL query against the configured target database.

When invoked without arguments on a terminal, enters interactive REPL mode.`,
		Example: `  # Execute SQL directly
  lazyrel query "SELECT * FROM diamonds LIMIT 5"

  # Read SQL from a file
  lazyrel query -i report.sql

  # Output as JSON
  lazyrel query "SELECT count(*) AS n FROM diamonds" --format json

  # Interactive mode
  lazyrel query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	ctx := cmd.Context()
	cfg := ConfigFrom(ctx)

	db, _, err := openTarget(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	format := opts.Format
	if format == "" {
		format = cfg.Output
	}

	var sqlQuery string
	switch {
	case len(args) > 0:
		sqlQuery = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlQuery = string(content)
	case !isTerminal(os.Stdin):
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlQuery = string(content)
	default:
		return runQueryREPL(cmd, db, format)
	}

	return executeAndRender(ctx, cmd.OutOrStdout(), db, sqlQuery, format)
}

func executeAndRender(ctx context.Context, w io.Writer, db adapter.Adapter, sqlQuery, format string) error {
	rows, err := db.Query(ctx, strings.TrimSpace(sqlQuery))
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	tbl, err := bridge.Scan(rows)
	if err != nil {
		return err
	}
	return tbl.Render(w, format)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
