package store

// convert.go maps output text to database values.
//
// Output values are never altered, so these conversions only feed the
// secondary numeric columns. Anything that is not a plain decimal number
// becomes NULL rather than an error.

import (
	"database/sql"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// numericRegex validates that a string is a valid numeric format.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// numericText returns s trimmed when it is a plain number.
func numericText(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || !numericRegex.MatchString(s) {
		return "", false
	}
	return s, true
}

// ToPgNumeric converts a string to pgtype.Numeric.
// Returns invalid for empty or non-numeric input.
func ToPgNumeric(s string) pgtype.Numeric {
	s, ok := numericText(s)
	if !ok {
		return pgtype.Numeric{Valid: false}
	}

	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		return pgtype.Numeric{Valid: false}
	}
	return n
}

// ToNullFloat converts a string to sql.NullFloat64 for SQLite REAL columns.
func ToNullFloat(s string) sql.NullFloat64 {
	s, ok := numericText(s)
	if !ok {
		return sql.NullFloat64{}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

// ToPgUUID converts a string to pgtype.UUID.
// Returns invalid if the string is empty or not a valid UUID.
func ToPgUUID(s string) pgtype.UUID {
	if s == "" {
		return pgtype.UUID{Valid: false}
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}
}
