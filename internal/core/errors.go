package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidUTF8 is returned when an input contains bytes that are not valid UTF-8.
var ErrInvalidUTF8 = errors.New("encoding error: input is not valid UTF-8")

// SchemaError reports a source table that does not carry an expected column.
// It is distinct from the silent filtering of rows by year or code.
type SchemaError struct {
	Table   string   // Source key, e.g. "life"
	Line    int      // 1-based CSV line, 0 when the header itself is at fault
	Columns []string // Missing column(s)
	Reason  string   // Optional detail
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("schema error")
	if e.Table != "" {
		fmt.Fprintf(&b, " in %s table", e.Table)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	if len(e.Columns) > 0 {
		fmt.Fprintf(&b, ": missing required column %s", quoteAll(e.Columns))
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

// IOError reports a failure to open, read, or write one of the run's files.
type IOError struct {
	Op   string // "open", "read", "write"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// IsSchemaError reports whether err is or wraps a *SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// IsIOError reports whether err is or wraps an *IOError.
func IsIOError(err error) bool {
	var ie *IOError
	return errors.As(err, &ie)
}

func quoteAll(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	return strings.Join(quoted, ", ")
}
