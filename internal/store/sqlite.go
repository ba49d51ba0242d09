package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/JonMunkholm/healthjoin/internal/core"
	"github.com/JonMunkholm/healthjoin/internal/logging"
)

var sqliteSchema = []string{
	`PRAGMA foreign_keys = ON`,
	`CREATE TABLE IF NOT EXISTS join_runs (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id      TEXT NOT NULL UNIQUE,
		year        TEXT NOT NULL,
		row_count   INTEGER NOT NULL,
		life_rows   INTEGER NOT NULL,
		health_rows INTEGER NOT NULL,
		replaced    INTEGER NOT NULL,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_join_runs_year ON join_runs (year, id DESC)`,
	`CREATE TABLE IF NOT EXISTS combined_rows (
		run_id                 INTEGER NOT NULL REFERENCES join_runs (id) ON DELETE CASCADE,
		position               INTEGER NOT NULL,
		entity                 TEXT NOT NULL,
		code                   TEXT NOT NULL,
		year                   TEXT NOT NULL,
		life_expectancy        TEXT NOT NULL,
		health_expenditure     TEXT NOT NULL,
		life_expectancy_num    REAL,
		health_expenditure_num REAL,
		PRIMARY KEY (run_id, position)
	)`,
}

// SQLite stores runs in a local SQLite database file.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (or creates) the database at path and ensures the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps the foreign_keys pragma in effect for every statement.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db, path: path}
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the run tables if they do not exist.
func (s *SQLite) EnsureSchema(ctx context.Context) error {
	for _, stmt := range sqliteSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// SaveRun inserts the run header and its rows in one transaction.
func (s *SQLite) SaveRun(ctx context.Context, res *core.Result) (int64, error) {
	if err := checkResult(res); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // No-op if already committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO join_runs (run_id, year, row_count, life_rows, health_rows, replaced)
		VALUES (?, ?, ?, ?, ?, ?)`,
		res.RunID, res.Year, len(res.Rows), res.LifeRows, res.HealthRows, res.Replaced,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO combined_rows (
			run_id, position, entity, code, year,
			life_expectancy, health_expenditure,
			life_expectancy_num, health_expenditure_num
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare rows: %w", err)
	}
	defer stmt.Close()

	for i, r := range res.Rows {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		_, err := stmt.ExecContext(ctx,
			id, i, r.Entity, r.Code, r.Year,
			r.LifeExpectancy, r.HealthExpenditure,
			ToNullFloat(r.LifeExpectancy), ToNullFloat(r.HealthExpenditure),
		)
		if err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	logging.FromContext(logging.ContextWithRunID(ctx, res.RunID)).Info("run stored",
		"target", TargetSQLite,
		"path", s.path,
		"id", id,
		"rows", len(res.Rows),
	)
	return id, nil
}

// LatestRows returns the rows of the newest run for year.
func (s *SQLite) LatestRows(ctx context.Context, year string) ([]core.OutputRow, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM join_runs WHERE year = ? ORDER BY id DESC LIMIT 1`, year,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRun
	}
	if err != nil {
		return nil, fmt.Errorf("find latest run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT entity, code, year, life_expectancy, health_expenditure
		FROM combined_rows
		WHERE run_id = ?
		ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	out := make([]core.OutputRow, 0)
	for rows.Next() {
		var r core.OutputRow
		if err := rows.Scan(&r.Entity, &r.Code, &r.Year, &r.LifeExpectancy, &r.HealthExpenditure); err != nil {
			return nil, fmt.Errorf("scan rows: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan rows: %w", err)
	}
	return out, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
