// Package core joins the life expectancy and healthcare expenditure tables.
// This package has no transport dependencies and can be used by any frontend.
package core

import (
	"time"
)

// Source column names. These must match the CSV headers exactly.
const (
	ColEntity = "Entity"
	ColCode   = "Code"
	ColYear   = "Year"

	// LifeExpectancyColumn is the value column of the life table.
	LifeExpectancyColumn = "Life expectancy at birth, totals, period"

	// HealthExpenditureColumn is the value column of the health table.
	HealthExpenditureColumn = "Current health expenditure (CHE) as percentage of gross domestic product (GDP) (%)"
)

// Output column names, in output order.
const (
	OutEntity            = "Entity"
	OutCode              = "Code"
	OutYear              = "Year"
	OutLifeExpectancy    = "Life expectancy at birth (years)"
	OutHealthExpenditure = "Healthcare expenditure (% of GDP)"
)

// DefaultYear is the target year used when none is configured.
const DefaultYear = "2022"

// OutputHeader returns the five output column names in their fixed order.
func OutputHeader() []string {
	return []string{OutEntity, OutCode, OutYear, OutLifeExpectancy, OutHealthExpenditure}
}

// FieldType represents the expected data type for a CSV field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldNumeric
)

// FieldSpec defines a single column a source table must carry.
type FieldSpec struct {
	Name     string    // Column header name (must match CSV exactly)
	Type     FieldType // Informational; values are never coerced
	Required bool      // Column must exist in CSV header
}

// SourceInfo contains display and location information about a source table.
type SourceInfo struct {
	Key       string // Unique identifier: "life", "health"
	Label     string // Display name
	Directory string // Dataset folder under <base>/data
	File      string // CSV file name inside Directory
	Value     string // Name of the value column copied into the output
}

// SourceDefinition contains everything needed to read a source table.
type SourceDefinition struct {
	Info       SourceInfo
	FieldSpecs []FieldSpec
}

// Required returns the names of all required columns.
func (d SourceDefinition) Required() []string {
	var cols []string
	for _, spec := range d.FieldSpecs {
		if spec.Required {
			cols = append(cols, spec.Name)
		}
	}
	return cols
}

// OutputRow is one joined record. All values are text, copied verbatim.
type OutputRow struct {
	Entity            string `json:"entity"`
	Code              string `json:"code"`
	Year              string `json:"year"`
	LifeExpectancy    string `json:"lifeExpectancy"`
	HealthExpenditure string `json:"healthExpenditure"`
}

// Record returns the row values in OutputHeader order.
func (r OutputRow) Record() []string {
	return []string{r.Entity, r.Code, r.Year, r.LifeExpectancy, r.HealthExpenditure}
}

// Paths locates the two inputs and the output of a run.
type Paths struct {
	Life   string
	Health string
	Output string
}

// Result contains the outcome of a join run.
type Result struct {
	RunID      string
	Year       string
	Rows       []OutputRow
	LifeRows   int // Data rows read from the life table
	HealthRows int // Data rows read from the health table
	IndexSize  int // Distinct codes in the life index
	Replaced   int // Life rows overwritten by a later row with the same code
	OutputPath string
	Duration   time.Duration
}

// Empty reports whether no rows survived the filter and join.
// An empty result is valid and serializes to a header-only table.
func (r *Result) Empty() bool {
	return r == nil || len(r.Rows) == 0
}
