package taxes

import (
	"testing"

	"github.com/planwise/retirecast/pkg/constants"
	"github.com/planwise/retirecast/pkg/mathutil"
)

func federalIncomeTable() Table {
	return Table{
		ID:   1,
		Name: "US income",
		Kind: KindIncome,
		Rates: []Rate{
			{ID: 1, RatePct: 10, Min: 0, Max: 20000},
			{ID: 2, RatePct: 12, Min: 20000, Max: 89450},
			{ID: 3, RatePct: 22, Min: 89450, Max: 190750},
			{ID: 4, RatePct: 24, Min: 190750},
		},
	}
}

func TestTableTax(t *testing.T) {
	table := federalIncomeTable()

	tests := []struct {
		name     string
		amount   float64
		expected float64
	}{
		{"Zero income no bracket", 0, 0},
		{"First bracket", 10000, 1000},
		{"Boundary resolves to lower bracket", 20000, 2000},
		{"Just over boundary", 20000.01, 2400.0012},
		{"Middle bracket", 50000, 6000},
		{"Unbounded top bracket", 500000, 120000},
		{"Negative amount no bracket", -5000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := table.Tax(tt.amount)
			if !mathutil.WithinTolerance(got, tt.expected, constants.CurrencyTolerance) {
				t.Errorf("Tax(%v) = %v, expected %v", tt.amount, got, tt.expected)
			}
		})
	}
}

func TestTableTaxNoMatch(t *testing.T) {
	// A table with a gap: no bracket covers (100, 200].
	table := Table{
		Kind: KindIncome,
		Rates: []Rate{
			{RatePct: 10, Min: 0, Max: 100},
			{RatePct: 20, Min: 200, Max: 300},
		},
	}
	if got := table.Tax(150); got != 0 {
		t.Errorf("Tax(150) = %v, expected 0 for uncovered amount", got)
	}
}

func TestComputeStacksTables(t *testing.T) {
	tables := []Table{
		federalIncomeTable(),
		{
			ID:   2,
			Name: "CA income",
			Kind: KindIncome,
			Rates: []Rate{
				{ID: 1, RatePct: 1, Min: 0, Max: 20197},
				{ID: 2, RatePct: 2, Min: 20197, Max: 47883},
			},
		},
		{
			ID:   3,
			Name: "US gains",
			Kind: KindGains,
			Rates: []Rate{
				{ID: 1, RatePct: 0, Min: 0, Max: 44625},
				{ID: 2, RatePct: 15, Min: 44625},
			},
		},
	}

	// 30000 income hits 12% federal and 2% state; 50000 gains hit 15%.
	got := Compute(tables, 30000, 50000)
	expected := 3600.0 + 600.0 + 7500.0
	if !mathutil.WithinTolerance(got, expected, constants.CurrencyTolerance) {
		t.Errorf("Compute() = %v, expected %v", got, expected)
	}
}

func TestComputeEmptyTables(t *testing.T) {
	if got := Compute(nil, 100000, 100000); got != 0 {
		t.Errorf("Compute(nil) = %v, expected 0", got)
	}
}

// Tax must be non-decreasing in income for a contiguous bracket table.
func TestTaxMonotonicity(t *testing.T) {
	table := federalIncomeTable()
	prev := 0.0
	for amount := 0.0; amount <= 300000; amount += 500 {
		got := table.Tax(amount)
		if got < prev-constants.CurrencyTolerance {
			t.Fatalf("Tax(%v) = %v dropped below Tax at previous amount %v", amount, got, prev)
		}
		prev = got
	}
}
