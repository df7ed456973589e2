package projection

import (
	"github.com/planwise/retirecast/internal/config"
)

// TransactionKind labels a transaction as a purchase or a sale.
type TransactionKind string

const (
	// TransactionBought records a deposit purchase.
	TransactionBought TransactionKind = "bought"
	// TransactionSold records a liquidation sale.
	TransactionSold TransactionKind = "sold"
)

// Transaction is one forced sale or surplus purchase generated during a
// projected year.
type Transaction struct {
	Account string
	Name    string
	Kind    TransactionKind
	Shares  int
	Value   float64
}

// InvestmentYear is one investment's state for a projected year. The static
// definition fields are carried alongside the running state so a snapshot is
// self-contained.
type InvestmentYear struct {
	ID                int
	Name              string
	Priority          int
	Deposit           bool
	ReturnPct         float64
	DividendPct       float64
	Price             float64
	CostBasisPerShare float64
	Shares            int
	Value             float64
	Dividends         float64
}

// AccountYear is one account's state for a projected year. Value-based
// accounts have no Investments and track OriginalValue as the principal for
// proportional gain estimates.
type AccountYear struct {
	ID            int
	Name          string
	Kind          config.AccountKind
	Priority      int
	Deposit       bool
	ReturnPct     float64
	DividendPct   float64
	OriginalValue float64
	Value         float64
	Dividends     float64
	Sales         float64
	Gains         float64
	Investments   []InvestmentYear
}

// FlowYear is one income or expense's value for a projected year. A zero
// value means the flow is inactive that year.
type FlowYear struct {
	ID    int
	Name  string
	Value float64
}

// Snapshot is the complete financial state for one simulated year. Snapshots
// are immutable once emitted; each year's state is derived from a copy of
// the prior year's.
type Snapshot struct {
	Year         int
	Age          int
	Accounts     []AccountYear
	Incomes      []FlowYear
	Expenses     []FlowYear
	Assets       float64
	Dividends    float64
	Income       float64
	Expense      float64
	Tax          float64
	Sales        float64
	Gains        float64
	Delta        float64
	Transactions []Transaction
}

// Account returns the account state with the given id, or nil.
func (s *Snapshot) Account(id int) *AccountYear {
	for i := range s.Accounts {
		if s.Accounts[i].ID == id {
			return &s.Accounts[i]
		}
	}
	return nil
}

// Investment returns the investment state with the given id, or nil.
func (a *AccountYear) Investment(id int) *InvestmentYear {
	for i := range a.Investments {
		if a.Investments[i].ID == id {
			return &a.Investments[i]
		}
	}
	return nil
}
