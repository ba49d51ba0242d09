package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func lifeValue(r OutputRow) string { return r.LifeExpectancy }

func TestParseValue(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"80.1", 80.1, true},
		{" 9.5 ", 9.5, true},
		{"-3", -3, true},
		{"1e2", 100, true},
		{"", 0, false},
		{"n/a", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"1,5", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseValue(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseValue(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestBuildHistogram(t *testing.T) {
	rows := []OutputRow{
		{Entity: "Chad", Code: "TCD", LifeExpectancy: "0"},
		{Entity: "Brazil", Code: "BRA", LifeExpectancy: "2"},
		{Entity: "Austria", Code: "AUT", LifeExpectancy: "4.5"},
		{Entity: "Denmark", Code: "DNK", LifeExpectancy: "10"},
		{Entity: "", Code: "GGG", LifeExpectancy: "10"},
		{Entity: "Nowhere", Code: "NWH", LifeExpectancy: "n/a"},
		{Entity: "Blank", Code: "BLK", LifeExpectancy: ""},
	}

	got := BuildHistogram(OutLifeExpectancy, rows, lifeValue, 5)

	want := Histogram{
		Column:  OutLifeExpectancy,
		Count:   5,
		Dropped: 2,
		Min:     0,
		Max:     10,
		Bins: []Bin{
			{Lo: 0, Hi: 2, Count: 1, Countries: []string{"Chad"}},
			{Lo: 2, Hi: 4, Count: 1, Countries: []string{"Brazil"}},
			{Lo: 4, Hi: 6, Count: 1, Countries: []string{"Austria"}},
			{Lo: 6, Hi: 8, Count: 0, Countries: []string{}},
			{Lo: 8, Hi: 10, Count: 2, Countries: []string{"Denmark", "GGG"}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("histogram mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildHistogram_EdgeCases(t *testing.T) {
	t.Run("no numeric values", func(t *testing.T) {
		got := BuildHistogram("x", []OutputRow{{Entity: "A", LifeExpectancy: "-"}}, lifeValue, DefaultBins)
		if got.Count != 0 || got.Dropped != 1 || len(got.Bins) != 0 {
			t.Errorf("got %+v, want no bins and one dropped row", got)
		}
	})

	t.Run("all values equal", func(t *testing.T) {
		rows := []OutputRow{
			{Entity: "B", LifeExpectancy: "7"},
			{Entity: "A", LifeExpectancy: "7.0"},
		}
		got := BuildHistogram("x", rows, lifeValue, DefaultBins)

		want := []Bin{{Lo: 7, Hi: 7, Count: 2, Countries: []string{"A", "B"}}}
		if diff := cmp.Diff(want, got.Bins); diff != "" {
			t.Errorf("bins mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("duplicate names are listed once", func(t *testing.T) {
		rows := []OutputRow{
			{Entity: "A", LifeExpectancy: "1"},
			{Entity: "A", LifeExpectancy: "1.5"},
			{Entity: "B", LifeExpectancy: "3"},
		}
		got := BuildHistogram("x", rows, lifeValue, 2)

		if got.Bins[0].Count != 2 {
			t.Errorf("first bin count = %d, want 2", got.Bins[0].Count)
		}
		if diff := cmp.Diff([]string{"A"}, got.Bins[0].Countries); diff != "" {
			t.Errorf("countries mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("every value lands in exactly one bin", func(t *testing.T) {
		var rows []OutputRow
		for _, v := range []string{"0.1", "0.2", "0.3", "0.7", "0.9", "1.3", "2.9"} {
			rows = append(rows, OutputRow{Entity: v, LifeExpectancy: v})
		}
		got := BuildHistogram("x", rows, lifeValue, 7)

		total := 0
		for i, b := range got.Bins {
			total += b.Count
			if i > 0 && b.Lo != got.Bins[i-1].Hi {
				t.Errorf("bin %d starts at %v, previous ends at %v", i, b.Lo, got.Bins[i-1].Hi)
			}
		}
		if total != len(rows) {
			t.Errorf("binned %d values, want %d", total, len(rows))
		}
		if got.Bins[len(got.Bins)-1].Hi != 2.9 {
			t.Errorf("last bin ends at %v, want the maximum 2.9", got.Bins[len(got.Bins)-1].Hi)
		}
	})
}

func TestSummarize(t *testing.T) {
	res := &Result{
		Year: "2022",
		Rows: []OutputRow{
			{Entity: "A", Code: "AAA", Year: "2022", LifeExpectancy: "80", HealthExpenditure: "9"},
			{Entity: "B", Code: "BBB", Year: "2022", LifeExpectancy: "70", HealthExpenditure: ""},
			{Entity: "C", Code: "CCC", Year: "2022", LifeExpectancy: "x", HealthExpenditure: "4"},
		},
	}

	s, err := Summarize(res, DefaultBins)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if s.Year != "2022" || s.Rows != 3 || s.Points != 1 {
		t.Errorf("summary = year %q rows %d points %d; want 2022, 3, 1", s.Year, s.Rows, s.Points)
	}
	if len(s.Histograms) != 2 {
		t.Fatalf("got %d histograms, want 2", len(s.Histograms))
	}

	life, health := s.Histograms[0], s.Histograms[1]
	if life.Column != OutLifeExpectancy || life.Count != 2 || life.Min != 70 || life.Max != 80 {
		t.Errorf("life histogram = %+v", life)
	}
	if len(life.Bins) != DefaultBins {
		t.Errorf("life histogram has %d bins, want %d", len(life.Bins), DefaultBins)
	}
	if health.Column != OutHealthExpenditure || health.Count != 2 || health.Dropped != 1 {
		t.Errorf("health histogram = %+v", health)
	}
}

func TestSummarize_BinRange(t *testing.T) {
	for _, bins := range []int{0, -1, MaxBins + 1} {
		if _, err := Summarize(&Result{}, bins); err == nil {
			t.Errorf("Summarize(bins=%d) expected error", bins)
		}
	}
}
