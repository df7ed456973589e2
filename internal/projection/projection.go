// Package projection implements the yearly projection engine: the algorithm
// that takes a snapshot of financial state and iteratively derives each
// subsequent year's state until the terminal age is reached.
package projection

import (
	"fmt"
	"time"

	"github.com/planwise/retirecast/internal/config"
	"github.com/planwise/retirecast/pkg/constants"
	"github.com/planwise/retirecast/pkg/datetime"
	"github.com/planwise/retirecast/pkg/mathutil"
	"github.com/planwise/retirecast/pkg/quotes"
	"github.com/planwise/retirecast/pkg/taxes"
	"go.uber.org/zap"
)

// Project computes the full snapshot sequence for a profile, starting from
// the current calendar year. It is a pure function of its inputs: repeated
// calls on the same profile yield identical sequences, and distinct profiles
// may be projected concurrently.
func Project(logger *zap.Logger, profile config.Profile, prices quotes.PriceMap) ([]Snapshot, error) {
	return ProjectFrom(logger, profile, prices, time.Now().Year())
}

// ProjectFrom computes the snapshot sequence with a fixed start year, for
// reproducible runs and testing.
func ProjectFrom(logger *zap.Logger, profile config.Profile, prices quotes.PriceMap, startYear int) ([]Snapshot, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}

	p := &projector{
		logger:   logger,
		profile:  profile,
		divisors: profile.RMDDivisors(),
	}

	years := profile.General.TerminalAge - profile.General.CurrentAge
	snapshots := make([]Snapshot, 0, years+1)

	current := p.initialYear(prices, startYear)
	snapshots = append(snapshots, current)

	for current.Age < profile.General.TerminalAge {
		current = p.step(current)
		snapshots = append(snapshots, current)
	}

	logger.Debug(fmt.Sprintf("projected %d years", len(snapshots)),
		zap.String("op", "projection.ProjectFrom"),
		zap.Int("startYear", startYear),
	)

	return snapshots, nil
}

type projector struct {
	logger   *zap.Logger
	profile  config.Profile
	divisors map[int]float64
}

// initialYear builds year zero directly from the profile's current balances;
// no growth, taxes are informational, and no shortfall resolution runs.
func (p *projector) initialYear(prices quotes.PriceMap, year int) Snapshot {
	snap := Snapshot{
		Year: year,
		Age:  p.profile.General.CurrentAge,
	}

	for _, account := range p.profile.Accounts {
		caps := config.KindCapabilities(account.Kind)
		ay := AccountYear{
			ID:            account.ID,
			Name:          account.Name,
			Kind:          account.Kind,
			Priority:      account.Priority,
			Deposit:       account.Deposit,
			ReturnPct:     account.ReturnPct,
			DividendPct:   account.DividendPct,
			OriginalValue: account.Value,
			Value:         account.Value,
		}

		for _, investment := range account.Investments {
			price := investment.Price
			if quote, ok := prices[investment.Name]; ok && quote.Price > 0 {
				price = quote.Price
			}
			value := float64(investment.Shares) * price
			iy := InvestmentYear{
				ID:                investment.ID,
				Name:              investment.Name,
				Priority:          investment.Priority,
				Deposit:           investment.Deposit,
				ReturnPct:         investment.ReturnPct,
				DividendPct:       investment.DividendPct,
				Price:             price,
				CostBasisPerShare: costBasisPerShare(investment.Basis, investment.Shares),
				Shares:            investment.Shares,
				Value:             value,
			}
			if !caps.ReinvestDividends {
				iy.Dividends = mathutil.PercentOf(value, investment.DividendPct)
			}
			ay.Investments = append(ay.Investments, iy)
			ay.Value += value
			ay.Dividends += iy.Dividends
		}

		if !account.InvestmentBacked() && !caps.ReinvestDividends {
			ay.Dividends = mathutil.PercentOf(account.Value, account.DividendPct)
		}

		snap.Accounts = append(snap.Accounts, ay)
		snap.Assets += ay.Value
		snap.Dividends += ay.Dividends
	}

	flowIncome := 0.0
	for _, income := range p.profile.Incomes {
		value := 0.0
		if datetime.ActiveInYear(year, income.Start, income.Stop) {
			value = income.Value
		}
		snap.Incomes = append(snap.Incomes, FlowYear{ID: income.ID, Name: income.Name, Value: value})
		flowIncome += value
	}

	for _, expense := range p.profile.Expenses {
		value := 0.0
		if datetime.ActiveInYear(year, expense.Start, expense.Stop) &&
			datetime.RecursInYear(year, expense.Frequency, expense.Start) {
			value = expense.Value
		}
		snap.Expenses = append(snap.Expenses, FlowYear{ID: expense.ID, Name: expense.Name, Value: value})
		snap.Expense += value
	}

	snap.Income = flowIncome + snap.Dividends
	snap.Tax = taxes.Compute(p.profile.Taxes, snap.Income, 0)

	return snap
}

// step derives the next year's snapshot from the prior one: accrue growth
// and dividends, force RMDs, advance cash flows, compute tax, then resolve
// the shortfall or surplus.
func (p *projector) step(prior Snapshot) Snapshot {
	year := prior.Year + 1
	age := prior.Age + 1

	totals := &yearTotals{}
	var transactions []Transaction

	accounts := make([]AccountYear, len(prior.Accounts))
	for i := range prior.Accounts {
		accounts[i] = accrueAccount(prior.Accounts[i])
		totals.dividends += accounts[i].Dividends
	}

	p.applyRMDs(age, accounts, totals, &transactions)

	incomes := nextIncomes(p.profile.Incomes, prior.Incomes, year, p.profile.General.InflationPct)
	expenses := nextExpenses(p.profile.Expenses, prior.Expenses, year, p.profile.General.InflationPct)
	for _, flow := range incomes {
		totals.flowIncome += flow.Value
	}
	expense := 0.0
	for _, flow := range expenses {
		expense += flow.Value
	}

	tax := taxes.Compute(p.profile.Taxes, totals.income(), totals.gains)
	delta := totals.income() + totals.sales - (tax + expense)

	switch {
	case mathutil.IsNegative(delta):
		tax = p.coverShortfall(accounts, expense, totals, &transactions)
	case mathutil.IsPositive(delta):
		if !depositSurplus(accounts, delta, &transactions) {
			p.logger.Debug("no deposit target; surplus not reinvested",
				zap.String("op", "projection.step"),
				zap.Int("year", year),
				zap.Float64("surplus", delta),
			)
		}
	}

	next := Snapshot{
		Year:         year,
		Age:          age,
		Accounts:     accounts,
		Incomes:      incomes,
		Expenses:     expenses,
		Dividends:    totals.dividends,
		Income:       totals.income(),
		Expense:      expense,
		Tax:          tax,
		Sales:        totals.sales,
		Gains:        totals.gains,
		Delta:        delta,
		Transactions: transactions,
	}
	for i := range accounts {
		next.Assets += accounts[i].Value
	}

	return next
}

// coverShortfall liquidates assets in priority order until income plus sales
// covers tax plus expense, re-resolving tax after every sale since sale
// proceeds change taxable income and gains. Exhausting all assets leaves the
// remainder unpaid; the simulation continues. Returns the final tax.
func (p *projector) coverShortfall(accounts []AccountYear, expense float64, totals *yearTotals, log *[]Transaction) float64 {
	al := newAllocator(accounts)
	for {
		tax := taxes.Compute(p.profile.Taxes, totals.income(), totals.gains)
		delta := totals.income() + totals.sales - (tax + expense)
		if !mathutil.IsNegative(delta) {
			return tax
		}
		if !al.sellNext(-delta, totals, log) {
			p.logger.Debug("assets exhausted with shortfall unpaid",
				zap.String("op", "projection.coverShortfall"),
				zap.Float64("shortfall", -delta),
			)
			return tax
		}
	}
}

// applyRMDs forces the required minimum distribution from every account
// subject to one, for ages strictly past the threshold with an exact-age
// divisor entry. Ages missing from the table are skipped silently.
func (p *projector) applyRMDs(age int, accounts []AccountYear, totals *yearTotals, log *[]Transaction) {
	if age <= constants.RMDAgeThreshold {
		return
	}
	divisor, ok := p.divisors[age]
	if !ok || divisor <= 0 {
		return
	}

	for i := range accounts {
		acct := &accounts[i]
		if !config.KindCapabilities(acct.Kind).SubjectToRMD {
			continue
		}
		forced := acct.Value / divisor
		if !mathutil.IsPositive(forced) {
			continue
		}
		sellFromAccount(acct, forced, totals, log)
		p.logger.Debug(fmt.Sprintf("forced distribution from %s", acct.Name),
			zap.String("op", "projection.applyRMDs"),
			zap.Int("age", age),
			zap.Float64("amount", forced),
		)
	}
}

// accrueAccount applies one year of growth and dividends to an account.
// Dividend-reinvesting kinds fold dividends back into the balance and report
// zero dividend income; others report dividends as taxable and grow by
// return only.
func accrueAccount(prior AccountYear) AccountYear {
	next := prior
	next.Dividends = 0
	next.Sales = 0
	next.Gains = 0
	caps := config.KindCapabilities(prior.Kind)

	if len(prior.Investments) > 0 {
		next.Value = 0
		next.Investments = make([]InvestmentYear, len(prior.Investments))
		for i, pi := range prior.Investments {
			ni := pi
			dividends := mathutil.PercentOf(pi.Value, pi.DividendPct)
			ni.Value = mathutil.GrowByPercent(pi.Value, pi.ReturnPct)
			if caps.ReinvestDividends {
				ni.Value += dividends
				ni.Dividends = 0
			} else {
				ni.Dividends = dividends
			}
			next.Investments[i] = ni
			next.Value += ni.Value
			next.Dividends += ni.Dividends
		}
		return next
	}

	dividends := mathutil.PercentOf(prior.Value, prior.DividendPct)
	next.Value = mathutil.GrowByPercent(prior.Value, prior.ReturnPct)
	if caps.ReinvestDividends {
		next.Value += dividends
	} else {
		next.Dividends = dividends
	}
	return next
}

// nextIncomes advances income flows one year. A flow already active carries
// its prior value forward grown by inflation; one newly active starts at its
// nominal value, so inflation compounds only across contiguous active years.
func nextIncomes(defs []config.Income, prior []FlowYear, year int, inflationPct float64) []FlowYear {
	flows := make([]FlowYear, len(defs))
	for i, def := range defs {
		value := 0.0
		if datetime.ActiveInYear(year, def.Start, def.Stop) {
			if prior[i].Value != 0 {
				value = mathutil.GrowByPercent(prior[i].Value, inflationPct)
			} else {
				value = def.Value
			}
		}
		flows[i] = FlowYear{ID: def.ID, Name: def.Name, Value: value}
	}
	return flows
}

// nextExpenses advances expense flows one year, additionally gating on the
// recurrence phase for expenses charged every N years.
func nextExpenses(defs []config.Expense, prior []FlowYear, year int, inflationPct float64) []FlowYear {
	flows := make([]FlowYear, len(defs))
	for i, def := range defs {
		value := 0.0
		if datetime.ActiveInYear(year, def.Start, def.Stop) &&
			datetime.RecursInYear(year, def.Frequency, def.Start) {
			if prior[i].Value != 0 {
				value = mathutil.GrowByPercent(prior[i].Value, inflationPct)
			} else {
				value = def.Value
			}
		}
		flows[i] = FlowYear{ID: def.ID, Name: def.Name, Value: value}
	}
	return flows
}

// yearTotals accumulates the running tax-relevant aggregates for one year.
type yearTotals struct {
	flowIncome float64
	dividends  float64
	saleIncome float64
	gains      float64
	sales      float64
}

// income is the taxable ordinary income: cash flows, non-qualified
// dividends, and sale proceeds from income-taxed account kinds.
func (t *yearTotals) income() float64 {
	return t.flowIncome + t.dividends + t.saleIncome
}

// costBasisPerShare is the exact per-share cost of the original lot. Zero
// when basis or shares are unset, which makes the whole sale a gain.
func costBasisPerShare(basis float64, shares int) float64 {
	if shares <= 0 || basis <= 0 {
		return 0
	}
	return basis / float64(shares)
}
