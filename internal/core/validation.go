package core

// validation.go enforces the strict schema of the source tables.
//
// Validation happens at two levels:
//  1. Header validation: every required column must be present, by exact name
//  2. Cell access: a row that is too short to carry a column fails on access
//
// Both report a *SchemaError. Neither substitutes a default value.

// HeaderIndex maps exact column names to their position in the CSV row.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
// When a header name repeats, the last position wins, as with map-based readers.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		idx[h] = i
	}
	return idx
}

// ValidateHeaders checks that all required columns exist in the CSV header.
// Returns the header index, or a *SchemaError listing every missing column.
func ValidateHeaders(table string, header []string, specs []FieldSpec) (HeaderIndex, error) {
	idx := MakeHeaderIndex(header)
	var missing []string

	for _, spec := range specs {
		if !spec.Required {
			continue
		}
		if _, ok := idx[spec.Name]; !ok {
			missing = append(missing, spec.Name)
		}
	}

	if len(missing) > 0 {
		return nil, &SchemaError{Table: table, Columns: missing}
	}

	return idx, nil
}
