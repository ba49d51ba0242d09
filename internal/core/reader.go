package core

import (
	"errors"
	"fmt"
	"io"
)

// Row is one record of a source table, keyed by header-derived column names.
type Row struct {
	Table  string
	Line   int // 1-based CSV line of the record
	Fields map[string]string
}

// Get returns the value of column. A row that does not carry the column
// fails with a *SchemaError rather than yielding a default.
func (r Row) Get(column string) (string, error) {
	v, ok := r.Fields[column]
	if !ok {
		return "", &SchemaError{Table: r.Table, Line: r.Line, Columns: []string{column}}
	}
	return v, nil
}

// Table is a fully read source table.
type Table struct {
	Header []string
	Rows   []Row
}

// ReadTable reads a whole source table from r and validates its header
// against def. Values are kept exactly as parsed.
func ReadTable(r io.Reader, def SourceDefinition) (*Table, error) {
	table, _, err := decodeTable(r, def)
	return table, err
}

// decodeTable applies the input policy shared by every source (BOM skip,
// strict UTF-8) and parses the table. It also returns the raw bytes consumed.
func decodeTable(r io.Reader, def SourceDefinition) (*Table, int64, error) {
	src, counter := WrapSource(r)
	table, err := readTable(src, def)
	return table, counter.BytesRead, err
}

func readTable(r io.Reader, def SourceDefinition) (*Table, error) {
	rr := newRecordReader(r)

	header, _, err := rr.Read()
	if err == io.EOF {
		return nil, &SchemaError{Table: def.Info.Key, Reason: "empty file: no header row"}
	}
	if err != nil {
		return nil, classifyReadError(def.Info.Key, err)
	}

	if _, err := ValidateHeaders(def.Info.Key, header, def.FieldSpecs); err != nil {
		return nil, err
	}

	table := &Table{Header: header}
	for {
		rec, line, err := rr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, classifyReadError(def.Info.Key, err)
		}

		fields := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(rec) {
				fields[h] = rec[i]
			}
		}
		table.Rows = append(table.Rows, Row{Table: def.Info.Key, Line: line, Fields: fields})
	}

	return table, nil
}

// classifyReadError keeps encoding failures recognizable and labels CSV
// syntax errors with the table they came from.
func classifyReadError(table string, err error) error {
	if errors.Is(err, ErrInvalidUTF8) {
		return fmt.Errorf("%s table: %w", table, ErrInvalidUTF8)
	}
	var ce *CSVError
	if errors.As(err, &ce) {
		return fmt.Errorf("invalid csv in %s table: %w", table, err)
	}
	return err
}
