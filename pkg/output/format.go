// Package output provides utilities for formatting and displaying
// projection results.
package output

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/planwise/retirecast/internal/projection"
)

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(snapshots []projection.Snapshot) {
	p := message.NewPrinter(language.English)
	fmt.Printf("Year | Age | Net Worth       | Income        | Expenses      | Tax           | Delta\n")
	fmt.Printf("____ | ___ | _______________ | _____________ | _____________ | _____________ | _____________\n")
	for _, snap := range snapshots {
		_, _ = p.Printf("%d | %3d | $%.2f | $%.2f | $%.2f | $%.2f | $%.2f\n",
			snap.Year, snap.Age, snap.Assets, snap.Income, snap.Expense, snap.Tax, snap.Delta)
	}
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(snapshots []projection.Snapshot) {
	fmt.Print(CsvString(snapshots))
}

// CsvString renders the projection as CSV, one row per year.
func CsvString(snapshots []projection.Snapshot) string {
	var b strings.Builder
	b.WriteString(`"year","age","net worth","dividends","income","expenses","tax","sales","gains","delta"`)
	b.WriteString("\n")
	for _, snap := range snapshots {
		fmt.Fprintf(&b, `"%d","%d","%.2f","%.2f","%.2f","%.2f","%.2f","%.2f","%.2f","%.2f"`,
			snap.Year, snap.Age, snap.Assets, snap.Dividends, snap.Income,
			snap.Expense, snap.Tax, snap.Sales, snap.Gains, snap.Delta)
		b.WriteString("\n")
	}
	return b.String()
}
