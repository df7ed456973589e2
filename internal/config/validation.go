package config

import (
	"fmt"

	"github.com/planwise/retirecast/pkg/datetime"
	"github.com/planwise/retirecast/pkg/taxes"
)

// Validate checks the profile for structural corruption and returns the
// first error found. These are fail-fast conditions: the projection engine
// assumes a profile that passes Validate and never re-checks them.
func (p *Profile) Validate() error {
	if p.General.TerminalAge <= p.General.CurrentAge {
		return fmt.Errorf("terminal age %d must exceed current age %d",
			p.General.TerminalAge, p.General.CurrentAge)
	}

	accountIDs := make(map[int]struct{})
	for _, account := range p.Accounts {
		if _, ok := accountIDs[account.ID]; ok {
			return fmt.Errorf("duplicate account id %d (%s)", account.ID, account.Name)
		}
		accountIDs[account.ID] = struct{}{}

		if !KnownKind(account.Kind) {
			return fmt.Errorf("account %s has unknown kind %q", account.Name, account.Kind)
		}

		if account.InvestmentBacked() && account.Value != 0 {
			return fmt.Errorf("account %s sets both a direct value and investments; the modes are exclusive", account.Name)
		}

		investmentIDs := make(map[int]struct{})
		for _, investment := range account.Investments {
			if _, ok := investmentIDs[investment.ID]; ok {
				return fmt.Errorf("duplicate investment id %d (%s) in account %s",
					investment.ID, investment.Name, account.Name)
			}
			investmentIDs[investment.ID] = struct{}{}

			if investment.Shares < 0 {
				return fmt.Errorf("investment %s in account %s has negative shares",
					investment.Name, account.Name)
			}
		}
	}

	if err := validateFlowIDs("income", incomeIDs(p.Incomes)); err != nil {
		return err
	}
	if err := validateFlowIDs("expense", expenseIDs(p.Expenses)); err != nil {
		return err
	}

	tableIDs := make(map[int]struct{})
	for _, table := range p.Taxes {
		if _, ok := tableIDs[table.ID]; ok {
			return fmt.Errorf("duplicate tax table id %d (%s)", table.ID, table.Name)
		}
		tableIDs[table.ID] = struct{}{}

		if table.Kind != taxes.KindIncome && table.Kind != taxes.KindGains {
			return fmt.Errorf("tax table %s has unknown kind %q", table.Name, table.Kind)
		}
		for _, rate := range table.Rates {
			if rate.Max != 0 && rate.Max < rate.Min {
				return fmt.Errorf("tax table %s rate %d has max %v below min %v",
					table.Name, rate.ID, rate.Max, rate.Min)
			}
		}
	}

	for _, rule := range p.RMDs {
		if rule.DistributionDivisor <= 0 {
			return fmt.Errorf("RMD rule for age %d has non-positive divisor %v",
				rule.Age, rule.DistributionDivisor)
		}
	}

	return nil
}

func validateFlowIDs(kind string, ids []int) error {
	seen := make(map[int]struct{})
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("duplicate %s id %d", kind, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func incomeIDs(incomes []Income) []int {
	ids := make([]int, len(incomes))
	for i, income := range incomes {
		ids[i] = income.ID
	}
	return ids
}

func expenseIDs(expenses []Expense) []int {
	ids := make([]int, len(expenses))
	for i, expense := range expenses {
		ids[i] = expense.ID
	}
	return ids
}

// ValidateProfile performs soft validation and returns warnings for
// conditions that are legal but probably not what the user wants.
func (p *Profile) ValidateProfile(startYear int) []string {
	var warnings []string

	horizon := startYear + (p.General.TerminalAge - p.General.CurrentAge)
	for _, income := range p.Incomes {
		if year := datetime.Year(income.Start); year > horizon {
			warnings = append(warnings, fmt.Sprintf(
				"Income '%s' starts in %d, after the projection ends in %d", income.Name, year, horizon))
		}
	}
	for _, expense := range p.Expenses {
		if year := datetime.Year(expense.Start); year > horizon {
			warnings = append(warnings, fmt.Sprintf(
				"Expense '%s' starts in %d, after the projection ends in %d", expense.Name, year, horizon))
		}
	}

	depositAccounts := 0
	for _, account := range p.Accounts {
		if account.Deposit {
			depositAccounts++
			depositInvestments := 0
			for _, investment := range account.Investments {
				if investment.Deposit {
					depositInvestments++
				}
			}
			if account.InvestmentBacked() && depositInvestments == 0 {
				warnings = append(warnings, fmt.Sprintf(
					"Account '%s' is the deposit target but none of its investments is flagged deposit", account.Name))
			}
			if depositInvestments > 1 {
				warnings = append(warnings, fmt.Sprintf(
					"Account '%s' flags %d investments for deposit; only the first is used", account.Name, depositInvestments))
			}
		}
	}
	if depositAccounts == 0 && len(p.Incomes) > 0 {
		warnings = append(warnings, "No account is flagged for deposit; surplus income will not be reinvested")
	}
	if depositAccounts > 1 {
		warnings = append(warnings, fmt.Sprintf(
			"%d accounts are flagged for deposit; only the first is used", depositAccounts))
	}

	if len(p.RMDs) == 0 {
		for _, account := range p.Accounts {
			if KindCapabilities(account.Kind).SubjectToRMD {
				warnings = append(warnings, fmt.Sprintf(
					"Account '%s' is subject to required minimum distributions but no RMD table is configured", account.Name))
				break
			}
		}
	}

	return warnings
}
