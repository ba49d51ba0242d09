package core

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// DefaultBins is the histogram bin count used when none is requested.
const DefaultBins = 20

// MaxBins bounds the bin count a caller may request.
const MaxBins = 200

// Summary describes the numeric content of a combined table: how many rows
// can be plotted and the distribution of each value column.
type Summary struct {
	Year       string      `json:"year"`
	Rows       int         `json:"rows"`
	Points     int         `json:"points"` // Rows where both values are numeric
	Histograms []Histogram `json:"histograms"`
}

// Histogram bins the numeric values of one output column into equal-width
// buckets spanning [Min, Max]. Every bin is half-open except the last, which
// also includes Max.
type Histogram struct {
	Column  string  `json:"column"`
	Count   int     `json:"count"`   // Numeric values binned
	Dropped int     `json:"dropped"` // Rows whose value is empty or not a number
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Bins    []Bin   `json:"bins"`
}

// Bin is one histogram bucket with the countries that fall in it.
type Bin struct {
	Lo        float64  `json:"lo"`
	Hi        float64  `json:"hi"`
	Count     int      `json:"count"`
	Countries []string `json:"countries"` // Sorted, de-duplicated names
}

// ParseValue reads an output value as a number. Empty text, NaN, infinities
// and anything strconv cannot parse are not numbers.
func ParseValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Summarize computes the plottable row count and one histogram per value
// column with the given number of bins.
func Summarize(res *Result, bins int) (*Summary, error) {
	if bins < 1 || bins > MaxBins {
		return nil, fmt.Errorf("bin count %d out of range 1-%d", bins, MaxBins)
	}

	s := &Summary{Year: res.Year, Rows: len(res.Rows)}
	for _, row := range res.Rows {
		_, okLife := ParseValue(row.LifeExpectancy)
		_, okHealth := ParseValue(row.HealthExpenditure)
		if okLife && okHealth {
			s.Points++
		}
	}

	s.Histograms = []Histogram{
		BuildHistogram(OutLifeExpectancy, res.Rows, func(r OutputRow) string { return r.LifeExpectancy }, bins),
		BuildHistogram(OutHealthExpenditure, res.Rows, func(r OutputRow) string { return r.HealthExpenditure }, bins),
	}
	return s, nil
}

type binValue struct {
	name  string
	value float64
}

// BuildHistogram bins the numeric values value(row) of rows. A row is named
// by its Entity, or its Code when the Entity is empty. With no numeric values
// the histogram has no bins; when all values are equal there is one bin.
func BuildHistogram(column string, rows []OutputRow, value func(OutputRow) string, bins int) Histogram {
	h := Histogram{Column: column, Bins: []Bin{}}

	values := make([]binValue, 0, len(rows))
	for _, row := range rows {
		v, ok := ParseValue(value(row))
		if !ok {
			h.Dropped++
			continue
		}
		name := row.Entity
		if name == "" {
			name = row.Code
		}
		values = append(values, binValue{name: name, value: v})
	}

	h.Count = len(values)
	if h.Count == 0 {
		return h
	}

	h.Min, h.Max = values[0].value, values[0].value
	for _, v := range values[1:] {
		h.Min = math.Min(h.Min, v.value)
		h.Max = math.Max(h.Max, v.value)
	}

	if h.Min == h.Max {
		bins = 1
	}
	width := (h.Max - h.Min) / float64(bins)

	edges := make([]float64, bins+1)
	for i := range edges {
		edges[i] = h.Min + float64(i)*width
	}
	edges[bins] = h.Max

	h.Bins = make([]Bin, bins)
	names := make([]map[string]struct{}, bins)
	for i := range h.Bins {
		h.Bins[i] = Bin{Lo: edges[i], Hi: edges[i+1], Countries: []string{}}
		names[i] = make(map[string]struct{})
	}

	for _, v := range values {
		i := binIndex(v.value, edges)
		h.Bins[i].Count++
		names[i][v.name] = struct{}{}
	}

	for i := range h.Bins {
		for name := range names[i] {
			h.Bins[i].Countries = append(h.Bins[i].Countries, name)
		}
		sort.Strings(h.Bins[i].Countries)
	}
	return h
}

// binIndex returns the bin holding v: edges[i] <= v < edges[i+1], with the
// last bin closed on the right.
func binIndex(v float64, edges []float64) int {
	last := len(edges) - 2
	if last <= 0 || v >= edges[last] {
		return max(last, 0)
	}
	// First edge strictly greater than v, minus one
	return sort.Search(len(edges), func(i int) bool { return edges[i] > v }) - 1
}
