package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/healthjoin/internal/store"
)

func newLoadCmd(a *app) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Join the tables and store the run in a database",
		Long: `Builds the combined table and stores it as one run in PostgreSQL
(DATABASE_URL) or a local SQLite file (SQLITE_PATH). No CSV is written.

Example:
  healthjoin load --target sqlite --year 2021`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLoad(cmd, target)
		},
	}

	cmd.Flags().StringVar(&target, "target", store.TargetSQLite, "database to load into: postgres or sqlite")
	return cmd
}

func (a *app) runLoad(cmd *cobra.Command, target string) error {
	ctx := cmd.Context()

	svc, err := a.service()
	if err != nil {
		return err
	}

	res, err := svc.Build(ctx)
	if err != nil {
		return err
	}

	saver, err := store.Open(ctx, target, a.cfg.Database)
	if err != nil {
		return fmt.Errorf("open %s store: %w", target, err)
	}
	defer saver.Close()

	id, err := saver.SaveRun(ctx, res)
	if err != nil {
		return err
	}

	stored, err := saver.LatestRows(ctx, res.Year)
	if err != nil {
		return fmt.Errorf("read back run %d: %w", id, err)
	}
	if len(stored) != len(res.Rows) {
		return fmt.Errorf("run %d: stored %d rows, expected %d", id, len(stored), len(res.Rows))
	}

	slog.Info("run loaded",
		"target", target,
		"id", id,
		"run_id", res.RunID,
		"year", res.Year,
		"rows", len(stored),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Stored run %d (%d rows) in %s\n", id, len(stored), target)
	return nil
}
