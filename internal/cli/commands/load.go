package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/lazyrel/pkg/adapter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewLoadCommand creates the load command.
func NewLoadCommand() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "load FILE...",
		Short: "Load CSV files into the target database",
		Long: `Load one or more CSV files into the target database. Each file becomes a
table named after its basename (sales.csv -> sales). Requires a target
whose adapter can bulk-load CSV (DuckDB).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := ConfigFrom(ctx)
			logger := LoggerFrom(ctx)

			db, _, err := openTarget(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			loader, ok := db.(adapter.CSVLoader)
			if !ok {
				return fmt.Errorf("target type %q cannot bulk-load CSV files", cfg.Target.Type)
			}

			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(concurrency)
			for _, path := range args {
				table := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				g.Go(func() error {
					logger.Debug("loading csv", "table", table, "path", path)
					if err := loader.LoadCSV(gctx, table, path); err != nil {
						return fmt.Errorf("failed to load %s: %w", path, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Loaded %s -> %s\n", path, table)
					return nil
				})
			}
			return g.Wait()
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Maximum concurrent loads")

	return cmd
}
