package core

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteCombined writes the output header followed by one record per row.
// Fields containing a comma, a quote or a line break are quoted with embedded
// quotes doubled; every other field is written as is. Records end with CRLF.
func WriteCombined(w io.Writer, rows []OutputRow) error {
	rw := newRecordWriter(w)

	rw.Write(OutputHeader())
	for _, row := range rows {
		rw.Write(row.Record())
	}
	return rw.Flush()
}

// ReadCombined parses a table produced by WriteCombined. The header must be
// exactly OutputHeader.
func ReadCombined(r io.Reader) ([]OutputRow, error) {
	rr := newRecordReader(r)
	width := len(OutputHeader())

	header, line, err := rr.Read()
	if err == io.EOF {
		return nil, &SchemaError{Table: "combined", Reason: "empty file: no header row"}
	}
	if err != nil {
		return nil, fmt.Errorf("invalid csv in combined table: %w", err)
	}
	if len(header) != width {
		return nil, fmt.Errorf("invalid csv in combined table: %w", &CSVError{Line: line, Err: ErrFieldCount})
	}
	for i, want := range OutputHeader() {
		if header[i] != want {
			return nil, &SchemaError{Table: "combined", Reason: fmt.Sprintf("column %d is %q, want %q", i+1, header[i], want)}
		}
	}

	rows := make([]OutputRow, 0)
	for {
		rec, line, err := rr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid csv in combined table: %w", err)
		}
		if len(rec) != width {
			return nil, fmt.Errorf("invalid csv in combined table: %w", &CSVError{Line: line, Err: ErrFieldCount})
		}
		rows = append(rows, OutputRow{
			Entity:            rec[0],
			Code:              rec[1],
			Year:              rec[2],
			LifeExpectancy:    rec[3],
			HealthExpenditure: rec[4],
		})
	}
	return rows, nil
}

// WriteFileAtomic writes path through a temporary file in the same directory
// and renames it into place only after fn, fsync and close all succeed. On
// any failure the temporary file is removed and path is left untouched.
func WriteFileAtomic(path string, fn func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err = fn(tmp); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err = tmp.Sync(); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err = tmp.Close(); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err = os.Rename(tmpName, path); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}
