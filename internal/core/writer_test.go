package core

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWriteCombined_Golden(t *testing.T) {
	rows := []OutputRow{
		{Entity: "Country A", Code: "AAA", Year: "2022", LifeExpectancy: "80.1", HealthExpenditure: "9.5"},
	}

	var buf bytes.Buffer
	if err := WriteCombined(&buf, rows); err != nil {
		t.Fatalf("WriteCombined() error = %v", err)
	}

	want := "Entity,Code,Year,Life expectancy at birth (years),Healthcare expenditure (% of GDP)\r\n" +
		"Country A,AAA,2022,80.1,9.5\r\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCombined_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCombined(&buf, nil); err != nil {
		t.Fatalf("WriteCombined() error = %v", err)
	}

	want := "Entity,Code,Year,Life expectancy at birth (years),Healthcare expenditure (% of GDP)\r\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestWriteCombined_Escaping(t *testing.T) {
	rows := []OutputRow{
		{Entity: "Korea, South", Code: "KOR", Year: "2022", LifeExpectancy: "83.7", HealthExpenditure: "9.7"},
		{Entity: `The "Islands"`, Code: "ISL", Year: "2022", LifeExpectancy: "", HealthExpenditure: "x"},
		{Entity: "Carriage\rReturn", Code: "CRR", Year: "2022", LifeExpectancy: "1", HealthExpenditure: "2"},
		{Entity: "Both\r\nEnds", Code: "BTH", Year: "2022", LifeExpectancy: "3", HealthExpenditure: "4"},
	}

	var buf bytes.Buffer
	if err := WriteCombined(&buf, rows); err != nil {
		t.Fatalf("WriteCombined() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		`"Korea, South",KOR`,
		`"The ""Islands""",ISL,2022,,x`,
		"\"Carriage\rReturn\",CRR",
		"\"Both\r\nEnds\",BTH",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not contain %q", out, want)
		}
	}
}

// Only a comma, a quote, CR or LF forces quoting. Leading whitespace and
// backslashes are written bare.
func TestWriteCombined_MinimalQuotingGolden(t *testing.T) {
	rows := []OutputRow{
		{Entity: "Korea, South", Code: "KOR", Year: "2022", LifeExpectancy: "83.7", HealthExpenditure: "9.7"},
		{Entity: `Cote d"Ivoire`, Code: "CIV", Year: "2022", LifeExpectancy: "60.1", HealthExpenditure: "3.4"},
		{Entity: "Line\nBreak", Code: "LNB", Year: "2022", LifeExpectancy: "3", HealthExpenditure: "4"},
		{Entity: "Carriage\rReturn", Code: "CRR", Year: "2022", LifeExpectancy: "5", HealthExpenditure: "6"},
		{Entity: "Both\r\nEnds", Code: "BTH", Year: "2022", LifeExpectancy: "7", HealthExpenditure: "8"},
		{Entity: " padded ", Code: "PAD", Year: "2022", LifeExpectancy: "\t9", HealthExpenditure: `\.`},
		{Entity: "", Code: "EMP", Year: "2022", LifeExpectancy: "", HealthExpenditure: ""},
	}

	var buf bytes.Buffer
	if err := WriteCombined(&buf, rows); err != nil {
		t.Fatalf("WriteCombined() error = %v", err)
	}

	want := "Entity,Code,Year,Life expectancy at birth (years),Healthcare expenditure (% of GDP)\r\n" +
		"\"Korea, South\",KOR,2022,83.7,9.7\r\n" +
		"\"Cote d\"\"Ivoire\",CIV,2022,60.1,3.4\r\n" +
		"\"Line\nBreak\",LNB,2022,3,4\r\n" +
		"\"Carriage\rReturn\",CRR,2022,5,6\r\n" +
		"\"Both\r\nEnds\",BTH,2022,7,8\r\n" +
		" padded ,PAD,2022,\t9,\\.\r\n" +
		",EMP,2022,,\r\n"
	if diff := cmp.Diff([]byte(want), buf.Bytes()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCombined_RoundTrip(t *testing.T) {
	rows := []OutputRow{
		{Entity: "Korea, South", Code: "KOR", Year: "2022", LifeExpectancy: "83.7", HealthExpenditure: "9.7"},
		{Entity: `Quote "here"`, Code: "QQQ", Year: "2022", LifeExpectancy: "1", HealthExpenditure: "2"},
		{Entity: "Line\nBreak", Code: "LNB", Year: "2022", LifeExpectancy: "3", HealthExpenditure: "4"},
		{Entity: "Country\rA", Code: "AAA", Year: "2022", LifeExpectancy: "80.1", HealthExpenditure: "9.5"},
		{Entity: "Both\r\nEnds", Code: "BTH", Year: "2022", LifeExpectancy: "\r", HealthExpenditure: "\r\n"},
		{Entity: " padded ", Code: "PAD", Year: "2022", LifeExpectancy: " 5 ", HealthExpenditure: ""},
		{Entity: "Åland", Code: "ALA", Year: "2022", LifeExpectancy: "82", HealthExpenditure: "n/a"},
		{Entity: `Cote d"Ivoire`, Code: "CIV", Year: "2022", LifeExpectancy: `\.`, HealthExpenditure: "\t1"},
	}

	var buf bytes.Buffer
	if err := WriteCombined(&buf, rows); err != nil {
		t.Fatalf("WriteCombined() error = %v", err)
	}

	got, err := ReadCombined(&buf)
	if err != nil {
		t.Fatalf("ReadCombined() error = %v", err)
	}
	if diff := cmp.Diff(rows, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

// A carriage return read from a source survives the join and the output.
func TestCombine_CarriageReturnSurvivesOutput(t *testing.T) {
	life := lifeHeader + "\r\n\"Country\rA\",AAA,2022,80.1\r\n"
	health := healthHeader + "\r\nCountry A,AAA,2022,9.5\r\n"

	res, err := Combine(strings.NewReader(life), strings.NewReader(health), "2022")
	if err != nil {
		t.Fatalf("Combine() error = %v", err)
	}
	if len(res.Rows) != 1 || res.Rows[0].Entity != "Country\rA" {
		t.Fatalf("rows = %+v, want one row with entity %q", res.Rows, "Country\rA")
	}

	var buf bytes.Buffer
	if err := WriteCombined(&buf, res.Rows); err != nil {
		t.Fatalf("WriteCombined() error = %v", err)
	}
	back, err := ReadCombined(&buf)
	if err != nil {
		t.Fatalf("ReadCombined() error = %v", err)
	}
	if diff := cmp.Diff(res.Rows, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCombined_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"wrong header", "Entity,Code,Year,Life,Health\r\n"},
		{"wrong width", "Entity,Code,Year\r\n"},
		{"short data row", "Entity,Code,Year,Life expectancy at birth (years),Healthcare expenditure (% of GDP)\r\nA,AAA\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadCombined(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "combined_2022.csv")

	err := WriteFileAtomic(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "hello")
		return err
	})
	if err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("content = %q, want %q", data, "hello")
	}
	assertOnlyFile(t, filepath.Dir(path), "combined_2022.csv")
}

func TestWriteFileAtomic_FailureKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "combined_2022.csv")
	if err := os.WriteFile(path, []byte("previous"), 0o644); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := WriteFileAtomic(path, func(w io.Writer) error {
		io.WriteString(w, "partial")
		return boom
	})

	var ioe *IOError
	if !errors.As(err, &ioe) || ioe.Op != "write" {
		t.Fatalf("error = %v, want *IOError with op write", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("error should wrap the writer failure: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "previous" {
		t.Errorf("existing output = %q, want it untouched", data)
	}
	assertOnlyFile(t, dir, "combined_2022.csv")
}

func TestWriteFileAtomic_FailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "combined_2022.csv")

	_ = WriteFileAtomic(path, func(w io.Writer) error {
		return errors.New("boom")
	})

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("directory not empty after failed write: %v", entries)
	}
}

func TestWriteFileAtomic_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combined_2022.csv")
	rows := []OutputRow{{Entity: "A", Code: "AAA", Year: "2022", LifeExpectancy: "1", HealthExpenditure: "2"}}

	var contents [2][]byte
	for i := range contents {
		err := WriteFileAtomic(path, func(w io.Writer) error { return WriteCombined(w, rows) })
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		contents[i], _ = os.ReadFile(path)
	}
	if !bytes.Equal(contents[0], contents[1]) {
		t.Errorf("outputs differ:\n%q\n%q", contents[0], contents[1])
	}
}

func assertOnlyFile(t *testing.T, dir, name string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != name {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory entries = %v, want only %q", names, name)
	}
}
