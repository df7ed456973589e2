package output

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/planwise/retirecast/internal/projection"
)

func sampleSnapshots() []projection.Snapshot {
	return []projection.Snapshot{
		{Year: 2026, Age: 55, Assets: 100000, Income: 50000, Expense: 30000, Tax: 5000, Delta: 15000},
		{Year: 2027, Age: 56, Assets: 121500.50, Dividends: 1200.25, Income: 51000, Expense: 30600, Tax: 5100, Delta: 15300},
	}
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

func TestPrettyFormat(t *testing.T) {
	out := captureStdout(t, func() { PrettyFormat(sampleSnapshots()) })

	if !strings.Contains(out, "Year | Age | Net Worth") {
		t.Errorf("PrettyFormat missing header, got:\n%s", out)
	}
	// The English printer groups thousands.
	if !strings.Contains(out, "$100,000.00") {
		t.Errorf("PrettyFormat missing grouped net worth, got:\n%s", out)
	}
	if !strings.Contains(out, "2027") {
		t.Errorf("PrettyFormat missing second year, got:\n%s", out)
	}
}

func TestCsvString(t *testing.T) {
	csv := CsvString(sampleSnapshots())
	lines := strings.Split(strings.TrimSpace(csv), "\n")

	if len(lines) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != `"year","age","net worth","dividends","income","expenses","tax","sales","gains","delta"` {
		t.Errorf("Unexpected header: %s", lines[0])
	}
	for _, element := range []string{`"2026"`, `"55"`, `"100000.00"`, `"121500.50"`, `"1200.25"`} {
		if !strings.Contains(csv, element) {
			t.Errorf("CsvString missing %s in:\n%s", element, csv)
		}
	}
}

func TestCsvFormatMatchesCsvString(t *testing.T) {
	snapshots := sampleSnapshots()
	expected := CsvString(snapshots)

	out := captureStdout(t, func() { CsvFormat(snapshots) })

	if strings.TrimSpace(out) != strings.TrimSpace(expected) {
		t.Fatalf("CsvFormat and CsvString output mismatch\nCsvFormat:\n%s\nCsvString:\n%s", out, expected)
	}
}

func TestCsvStringEmptyProjection(t *testing.T) {
	csv := CsvString(nil)
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected header only, got %d lines", len(lines))
	}
}
