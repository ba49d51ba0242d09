// Package store persists join runs to PostgreSQL (pgx) or a local SQLite file.
//
// Both backends share one layout: a join_runs row per run and one
// combined_rows row per output record, in output order. Output values are
// stored as the same text the CSV carries; numeric columns hold a parsed copy
// when the text is a plain number and NULL otherwise.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/healthjoin/internal/config"
	"github.com/JonMunkholm/healthjoin/internal/core"
)

// Saver persists join results and reads them back.
type Saver interface {
	// SaveRun stores res and its rows atomically and returns the run's row ID.
	SaveRun(ctx context.Context, res *core.Result) (int64, error)

	// LatestRows returns the rows of the most recent run stored for year,
	// in output order. It returns ErrNoRun if no run exists.
	LatestRows(ctx context.Context, year string) ([]core.OutputRow, error)

	Close() error
}

// Load targets.
const (
	TargetPostgres = "postgres"
	TargetSQLite   = "sqlite"
)

// ErrNoRun is returned by LatestRows when nothing has been stored for a year.
var ErrNoRun = errors.New("no stored run for year")

// ErrNoDatabaseURL is returned when the postgres target has no connection string.
var ErrNoDatabaseURL = errors.New("database URL is not configured")

// Open returns the Saver for target, with its schema in place.
func Open(ctx context.Context, target string, cfg config.DatabaseConfig) (Saver, error) {
	switch target {
	case TargetPostgres:
		pg, err := OpenPostgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case TargetSQLite:
		lite, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return lite, nil
	default:
		return nil, fmt.Errorf("unknown load target %q (want %s or %s)", target, TargetPostgres, TargetSQLite)
	}
}

// checkResult rejects results that cannot be stored.
func checkResult(res *core.Result) error {
	if res == nil {
		return errors.New("nil result")
	}
	if res.RunID == "" {
		return errors.New("result has no run ID")
	}
	if res.Year == "" {
		return errors.New("result has no year")
	}
	return nil
}
