// Package taxes implements marginal tax bracket lookup across multiple
// jurisdiction tables.
package taxes

import (
	"github.com/planwise/retirecast/pkg/mathutil"
)

// Kind distinguishes which amount a table applies to.
type Kind string

const (
	// KindIncome tables apply to ordinary income.
	KindIncome Kind = "income"
	// KindGains tables apply to realized capital gains.
	KindGains Kind = "gains"
)

// Rate is one marginal bracket covering the half-open interval (Min, Max].
// A zero Min bounds at zero and a zero Max is unbounded above.
type Rate struct {
	ID      int
	RatePct float64
	Min     float64
	Max     float64
}

// Table is one jurisdiction's ordered set of brackets, e.g. federal income
// or state income. Bracket ranges are a caller-maintained invariant; the
// resolver only looks up the matching rate.
type Table struct {
	ID    int
	Name  string
	Kind  Kind
	Rates []Rate
}

// Contains reports whether amount falls in the rate's (Min, Max] interval.
// Min is exclusive and Max inclusive so an amount exactly on a bracket
// boundary resolves to the lower bracket.
func (r Rate) Contains(amount float64) bool {
	if amount <= r.Min {
		return false
	}
	if r.Max != 0 && amount > r.Max {
		return false
	}
	return true
}

// Tax returns the tax owed by the table for the given amount. The whole
// amount is taxed at the single matching bracket's rate; no matching bracket
// contributes zero rather than failing.
func (t Table) Tax(amount float64) float64 {
	for _, rate := range t.Rates {
		if rate.Contains(amount) {
			return mathutil.PercentOf(amount, rate.RatePct)
		}
	}
	return 0
}

// Compute totals the tax owed across all tables. Income tables tax the
// ordinary income amount and gains tables tax the capital gains amount;
// multiple tables of the same kind stack (e.g. federal plus state income).
func Compute(tables []Table, income, gains float64) float64 {
	total := 0.0
	for _, table := range tables {
		amount := income
		if table.Kind == KindGains {
			amount = gains
		}
		total += table.Tax(amount)
	}
	return total
}
