package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/healthjoin/internal/config"
	"github.com/JonMunkholm/healthjoin/internal/core"
	"github.com/JonMunkholm/healthjoin/internal/logging"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS join_runs (
	id          BIGSERIAL PRIMARY KEY,
	run_id      UUID NOT NULL UNIQUE,
	year        TEXT NOT NULL,
	row_count   INTEGER NOT NULL,
	life_rows   INTEGER NOT NULL,
	health_rows INTEGER NOT NULL,
	replaced    INTEGER NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_join_runs_year ON join_runs (year, id DESC);

CREATE TABLE IF NOT EXISTS combined_rows (
	run_id                 BIGINT NOT NULL REFERENCES join_runs (id) ON DELETE CASCADE,
	position               INTEGER NOT NULL,
	entity                 TEXT NOT NULL,
	code                   TEXT NOT NULL,
	year                   TEXT NOT NULL,
	life_expectancy        TEXT NOT NULL,
	health_expenditure     TEXT NOT NULL,
	life_expectancy_num    NUMERIC,
	health_expenditure_num NUMERIC,
	PRIMARY KEY (run_id, position)
);
`

// combinedColumns is the CopyFrom column order for combined_rows.
var combinedColumns = []string{
	"run_id", "position", "entity", "code", "year",
	"life_expectancy", "health_expenditure",
	"life_expectancy_num", "health_expenditure_num",
}

// Postgres stores runs in PostgreSQL through a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects using cfg, verifies the connection and ensures the
// schema exists.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (*Postgres, error) {
	if cfg.URL == "" {
		return nil, ErrNoDatabaseURL
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}

	p := &Postgres{pool: pool}
	if err := p.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// EnsureSchema creates the run tables if they do not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, pgSchema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveRun inserts the run header and bulk-copies its rows in one transaction.
func (p *Postgres) SaveRun(ctx context.Context, res *core.Result) (int64, error) {
	if err := checkResult(res); err != nil {
		return 0, err
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO join_runs (run_id, year, row_count, life_rows, health_rows, replaced)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		ToPgUUID(res.RunID), res.Year, len(res.Rows), res.LifeRows, res.HealthRows, res.Replaced,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	copied, err := tx.CopyFrom(ctx,
		pgx.Identifier{"combined_rows"},
		combinedColumns,
		pgx.CopyFromSlice(len(res.Rows), func(i int) ([]any, error) {
			r := res.Rows[i]
			return []any{
				id, int32(i), r.Entity, r.Code, r.Year,
				r.LifeExpectancy, r.HealthExpenditure,
				ToPgNumeric(r.LifeExpectancy), ToPgNumeric(r.HealthExpenditure),
			}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy rows: %w", err)
	}
	if copied != int64(len(res.Rows)) {
		return 0, fmt.Errorf("copy rows: copied %d of %d", copied, len(res.Rows))
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	logging.FromContext(logging.ContextWithRunID(ctx, res.RunID)).Info("run stored",
		"target", TargetPostgres,
		"id", id,
		"rows", copied,
	)
	return id, nil
}

// LatestRows returns the rows of the newest run for year.
func (p *Postgres) LatestRows(ctx context.Context, year string) ([]core.OutputRow, error) {
	var id int64
	err := p.pool.QueryRow(ctx,
		`SELECT id FROM join_runs WHERE year = $1 ORDER BY id DESC LIMIT 1`, year,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoRun
	}
	if err != nil {
		return nil, fmt.Errorf("find latest run: %w", err)
	}

	rows, err := p.pool.Query(ctx, `
		SELECT entity, code, year, life_expectancy, health_expenditure
		FROM combined_rows
		WHERE run_id = $1
		ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.OutputRow, error) {
		var r core.OutputRow
		err := row.Scan(&r.Entity, &r.Code, &r.Year, &r.LifeExpectancy, &r.HealthExpenditure)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan rows: %w", err)
	}
	return out, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
