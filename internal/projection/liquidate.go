package projection

import (
	"math"
	"sort"

	"github.com/planwise/retirecast/internal/config"
	"github.com/planwise/retirecast/pkg/mathutil"
)

// unsetPriority is where zero/unset priorities sort: after every explicit
// priority, so unprioritized assets are preserved longest.
const unsetPriority = math.MaxInt

func sortPriority(priority int) int {
	if priority <= 0 {
		return unsetPriority
	}
	return priority
}

// liquidationOrder returns the accounts as pointers sorted for liquidation:
// ascending priority, unset last, ties in declaration order.
func liquidationOrder(accounts []AccountYear) []*AccountYear {
	ordered := make([]*AccountYear, len(accounts))
	for i := range accounts {
		ordered[i] = &accounts[i]
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return sortPriority(ordered[i].Priority) < sortPriority(ordered[j].Priority)
	})
	return ordered
}

// investmentOrder returns an account's investments sorted the same way.
func investmentOrder(acct *AccountYear) []*InvestmentYear {
	ordered := make([]*InvestmentYear, len(acct.Investments))
	for i := range acct.Investments {
		ordered[i] = &acct.Investments[i]
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return sortPriority(ordered[i].Priority) < sortPriority(ordered[j].Priority)
	})
	return ordered
}

// allocator walks the profile's assets in liquidation order, one sale at a
// time, so the caller can re-resolve taxes between sales.
type allocator struct {
	accounts []*AccountYear
	invs     []*InvestmentYear
	ai       int
	started  bool
}

func newAllocator(accounts []AccountYear) *allocator {
	return &allocator{accounts: liquidationOrder(accounts)}
}

// sellNext sells up to need from the current asset and reports whether a
// sale happened. It stays on an asset until it is depleted, then moves to
// the next investment or account; false means every asset is exhausted.
func (al *allocator) sellNext(need float64, totals *yearTotals, log *[]Transaction) bool {
	for al.ai < len(al.accounts) {
		acct := al.accounts[al.ai]
		if !al.started {
			al.invs = investmentOrder(acct)
			al.started = true
		}

		if len(acct.Investments) == 0 {
			if proceeds := mathutil.Min(need, acct.Value); mathutil.IsPositive(proceeds) {
				recordSale(acct, nil, proceeds, 0, totals, log)
				return true
			}
		} else {
			for len(al.invs) > 0 {
				inv := al.invs[0]
				proceeds, shares := sellShares(inv, need)
				if proceeds > 0 {
					recordSale(acct, inv, proceeds, shares, totals, log)
					return true
				}
				al.invs = al.invs[1:]
			}
		}

		al.ai++
		al.started = false
	}
	return false
}

// sellFromAccount liquidates assets within a single account, in investment
// priority order, until amount is raised or the account is empty. Returns
// the amount still needed. Used for forced distributions, which target one
// account regardless of the cross-account priority order.
func sellFromAccount(acct *AccountYear, amount float64, totals *yearTotals, log *[]Transaction) float64 {
	remaining := amount

	if len(acct.Investments) == 0 {
		if proceeds := mathutil.Min(remaining, acct.Value); mathutil.IsPositive(proceeds) {
			recordSale(acct, nil, proceeds, 0, totals, log)
			remaining -= proceeds
		}
		return clampZero(remaining)
	}

	for _, inv := range investmentOrder(acct) {
		if !mathutil.IsPositive(remaining) {
			break
		}
		proceeds, shares := sellShares(inv, remaining)
		if proceeds <= 0 {
			continue
		}
		recordSale(acct, inv, proceeds, shares, totals, log)
		remaining -= proceeds
	}
	return clampZero(remaining)
}

// sellShares sells whole shares covering up to need from one investment.
// Share count always rounds up, so realized proceeds may slightly exceed the
// requested amount; value and shares are clamped to never go negative.
func sellShares(inv *InvestmentYear, need float64) (float64, int) {
	if inv.Shares <= 0 || !mathutil.IsPositive(inv.Value) {
		return 0, 0
	}

	shareValue := inv.Value / float64(inv.Shares)
	want := mathutil.Min(need, inv.Value)
	shares := int(math.Ceil(want / shareValue))
	if shares > inv.Shares {
		shares = inv.Shares
	}
	if shares <= 0 {
		return 0, 0
	}

	proceeds := float64(shares) * shareValue
	inv.Shares -= shares
	inv.Value = clampZero(inv.Value - proceeds)
	return proceeds, shares
}

// recordSale applies one sale's bookkeeping: account and running totals,
// the tax character keyed by account kind, and the transaction log entry.
func recordSale(acct *AccountYear, inv *InvestmentYear, proceeds float64, shares int, totals *yearTotals, log *[]Transaction) {
	acct.Value = clampZero(acct.Value - proceeds)
	acct.Sales += proceeds
	totals.sales += proceeds

	caps := config.KindCapabilities(acct.Kind)
	switch {
	case caps.SaleTaxedAsIncome:
		totals.saleIncome += proceeds
	case caps.SaleRealizesGains:
		gain := saleGain(acct, inv, proceeds, shares)
		acct.Gains += gain
		totals.gains += gain
	}

	name := acct.Name
	if inv != nil {
		name = inv.Name
	}
	*log = append(*log, Transaction{
		Account: acct.Name,
		Name:    name,
		Kind:    TransactionSold,
		Shares:  shares,
		Value:   proceeds,
	})
}

// saleGain computes the capital gain realized by a sale. Investments use
// exact per-share cost basis; bare-value accounts estimate the gain as the
// sold fraction of the account's appreciation over its original principal.
func saleGain(acct *AccountYear, inv *InvestmentYear, proceeds float64, shares int) float64 {
	if inv != nil {
		return proceeds - inv.CostBasisPerShare*float64(shares)
	}
	valueBefore := acct.Value + proceeds
	if valueBefore <= 0 {
		return 0
	}
	return (valueBefore - acct.OriginalValue) * (proceeds / valueBefore)
}

func clampZero(val float64) float64 {
	if val < 0 {
		return 0
	}
	return val
}
