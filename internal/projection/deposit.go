package projection

import (
	"math"

	"github.com/planwise/retirecast/pkg/constants"
)

// depositSurplus adds a positive cash-flow surplus to the account flagged as
// the deposit target and, within it, the deposit-flagged investment.
// Cash-equivalent holdings priced at the $1 NAV convention also gain shares
// 1:1 with the deposited amount. Reports whether a deposit happened; with no
// target the surplus is simply not reinvested.
func depositSurplus(accounts []AccountYear, surplus float64, log *[]Transaction) bool {
	for i := range accounts {
		acct := &accounts[i]
		if !acct.Deposit {
			continue
		}

		if len(acct.Investments) == 0 {
			acct.Value += surplus
			*log = append(*log, Transaction{
				Account: acct.Name,
				Name:    acct.Name,
				Kind:    TransactionBought,
				Value:   surplus,
			})
			return true
		}

		for j := range acct.Investments {
			inv := &acct.Investments[j]
			if !inv.Deposit {
				continue
			}
			shares := 0
			if inv.Price == constants.CashUnitPrice {
				shares = int(math.Round(surplus))
				inv.Shares += shares
			}
			inv.Value += surplus
			acct.Value += surplus
			*log = append(*log, Transaction{
				Account: acct.Name,
				Name:    inv.Name,
				Kind:    TransactionBought,
				Shares:  shares,
				Value:   surplus,
			})
			return true
		}

		// Account flagged but no investment target inside it.
		return false
	}
	return false
}
