package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/healthjoin/internal/logging"
)

// Options configures a Service.
type Options struct {
	Year  string
	Paths Paths
}

// Service runs the join pipeline against files on disk.
type Service struct {
	opts Options
}

// NewService creates a new Service instance.
func NewService(opts Options) (*Service, error) {
	if opts.Year == "" {
		return nil, fmt.Errorf("target year is required")
	}
	if opts.Paths.Life == "" || opts.Paths.Health == "" {
		return nil, fmt.Errorf("life and health input paths are required")
	}
	return &Service{opts: opts}, nil
}

// Options returns the service configuration.
func (s *Service) Options() Options {
	return s.opts
}

// Build reads both inputs to completion and joins them. Nothing is written.
func (s *Service) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	runID := uuid.New().String()
	ctx = logging.ContextWithRunID(ctx, runID)
	logger := logging.FromContext(ctx)

	life, err := readSource(ctx, s.opts.Paths.Life, MustGet(SourceLife))
	if err != nil {
		return nil, err
	}
	health, err := readSource(ctx, s.opts.Paths.Health, MustGet(SourceHealth))
	if err != nil {
		return nil, err
	}

	res, err := combineTables(life, health, s.opts.Year)
	if err != nil {
		return nil, err
	}
	res.RunID = runID
	res.Duration = time.Since(start)

	logger.Debug("join complete",
		"year", res.Year,
		"life_rows", res.LifeRows,
		"health_rows", res.HealthRows,
		"index_size", res.IndexSize,
		"replaced", res.Replaced,
		"rows", len(res.Rows),
	)
	return res, nil
}

// Run builds the result and writes it to the configured output path.
// The output file appears only once it is complete.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	if s.opts.Paths.Output == "" {
		return nil, fmt.Errorf("output path is required")
	}

	res, err := s.Build(ctx)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run cancelled before write: %w", err)
	}

	if err := WriteFileAtomic(s.opts.Paths.Output, func(w io.Writer) error {
		return WriteCombined(w, res.Rows)
	}); err != nil {
		return nil, err
	}
	res.OutputPath = s.opts.Paths.Output

	logging.FromContext(logging.ContextWithRunID(ctx, res.RunID)).Info("wrote combined table",
		"rows", len(res.Rows),
		"path", res.OutputPath,
		"year", res.Year,
	)
	return res, nil
}

// Combine joins two source tables read from life and health.
// Both are read to completion before any join logic runs.
func Combine(life, health io.Reader, year string) (*Result, error) {
	lifeTable, err := ReadTable(life, MustGet(SourceLife))
	if err != nil {
		return nil, err
	}
	healthTable, err := ReadTable(health, MustGet(SourceHealth))
	if err != nil {
		return nil, err
	}
	return combineTables(lifeTable, healthTable, year)
}

func combineTables(life, health *Table, year string) (*Result, error) {
	ix, err := BuildLifeIndex(life.Rows, year)
	if err != nil {
		return nil, err
	}

	rows, err := JoinAndFilter(health.Rows, ix, year)
	if err != nil {
		return nil, err
	}
	SortRows(rows)

	return &Result{
		Year:       year,
		Rows:       rows,
		LifeRows:   len(life.Rows),
		HealthRows: len(health.Rows),
		IndexSize:  ix.Len(),
		Replaced:   ix.Replaced(),
	}, nil
}

// readSource opens path, reads the whole table and releases the handle
// before returning.
func readSource(ctx context.Context, path string, def SourceDefinition) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	table, bytesRead, err := decodeTable(f, def)
	if err != nil {
		if IsSchemaError(err) {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}

	logging.WithFields(ctx, "source", def.Info.Key, "path", path).Debug("source read",
		"rows", len(table.Rows),
		"bytes", bytesRead,
	)
	return table, nil
}
