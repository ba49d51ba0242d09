package core

import (
	"sort"
)

// LifeIndex maps a country code to the life-table row for the target year.
//
// Duplicate policy: last write wins. When several qualifying rows share a
// code, the one appearing latest in the life table replaces the earlier
// ones. Replacements are counted but are not an error and are not reported
// as warnings.
type LifeIndex struct {
	year     string
	rows     map[string]Row
	replaced int
}

// Lookup returns the indexed row for code.
func (ix *LifeIndex) Lookup(code string) (Row, bool) {
	row, ok := ix.rows[code]
	return row, ok
}

// Len returns the number of distinct codes in the index.
func (ix *LifeIndex) Len() int {
	return len(ix.rows)
}

// Replaced returns how many rows were overwritten under the last-write-wins policy.
func (ix *LifeIndex) Replaced() int {
	return ix.replaced
}

// Year returns the target year the index was built for.
func (ix *LifeIndex) Year() string {
	return ix.year
}

// putLastWriteWins stores row under code, replacing any earlier row.
func (ix *LifeIndex) putLastWriteWins(code string, row Row) {
	if _, exists := ix.rows[code]; exists {
		ix.replaced++
	}
	ix.rows[code] = row
}

// BuildLifeIndex indexes life rows whose Year equals year and whose Code is
// non-empty. Every row must carry Year and Code; qualifying rows must also
// carry Entity and the life expectancy column. A missing column fails the
// whole build with a *SchemaError.
func BuildLifeIndex(lifeRows []Row, year string) (*LifeIndex, error) {
	ix := &LifeIndex{
		year: year,
		rows: make(map[string]Row),
	}

	for _, row := range lifeRows {
		rowYear, err := row.Get(ColYear)
		if err != nil {
			return nil, err
		}
		code, err := row.Get(ColCode)
		if err != nil {
			return nil, err
		}
		if rowYear != year || code == "" {
			continue
		}

		if _, err := row.Get(ColEntity); err != nil {
			return nil, err
		}
		if _, err := row.Get(LifeExpectancyColumn); err != nil {
			return nil, err
		}

		ix.putLastWriteWins(code, row)
	}

	return ix, nil
}

// JoinAndFilter walks the health rows in order and emits one OutputRow for
// every row whose Year equals year and whose non-empty Code is present in
// the index. The health table drives iteration; life rows without a
// matching health row never appear.
func JoinAndFilter(healthRows []Row, ix *LifeIndex, year string) ([]OutputRow, error) {
	out := make([]OutputRow, 0)

	for _, row := range healthRows {
		rowYear, err := row.Get(ColYear)
		if err != nil {
			return nil, err
		}
		code, err := row.Get(ColCode)
		if err != nil {
			return nil, err
		}
		if rowYear != year || code == "" {
			continue
		}

		life, ok := ix.Lookup(code)
		if !ok {
			continue
		}

		joined, err := joinRow(life, row, code, year)
		if err != nil {
			return nil, err
		}
		out = append(out, joined)
	}

	return out, nil
}

// joinRow builds the output record. Entity prefers the life table name and
// falls back to the health table name when the former is empty.
func joinRow(life, health Row, code, year string) (OutputRow, error) {
	entity, err := life.Get(ColEntity)
	if err != nil {
		return OutputRow{}, err
	}
	if entity == "" {
		if entity, err = health.Get(ColEntity); err != nil {
			return OutputRow{}, err
		}
	}

	expectancy, err := life.Get(LifeExpectancyColumn)
	if err != nil {
		return OutputRow{}, err
	}
	expenditure, err := health.Get(HealthExpenditureColumn)
	if err != nil {
		return OutputRow{}, err
	}

	return OutputRow{
		Entity:            entity,
		Code:              code,
		Year:              year,
		LifeExpectancy:    expectancy,
		HealthExpenditure: expenditure,
	}, nil
}

// SortRows orders rows by Entity using byte-wise string comparison.
// The sort is stable: rows with equal Entity keep their relative order.
func SortRows(rows []OutputRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Entity < rows[j].Entity
	})
}
