package projection

import (
	"testing"

	"github.com/planwise/retirecast/internal/config"
	"github.com/planwise/retirecast/pkg/constants"
	"github.com/planwise/retirecast/pkg/mathutil"
)

func TestSellSharesRoundsUp(t *testing.T) {
	inv := InvestmentYear{Name: "VTI", Shares: 100, Value: 1000}

	proceeds, shares := sellShares(&inv, 95)
	if shares != 10 {
		t.Errorf("Expected 10 shares sold (ceil of 9.5), got %d", shares)
	}
	if !mathutil.WithinTolerance(proceeds, 100, constants.CurrencyTolerance) {
		t.Errorf("Expected proceeds 100, got %v", proceeds)
	}
	if inv.Shares != 90 || !mathutil.WithinTolerance(inv.Value, 900, constants.CurrencyTolerance) {
		t.Errorf("Unexpected remaining state: %d shares, %v value", inv.Shares, inv.Value)
	}
}

func TestSellSharesNeverOversells(t *testing.T) {
	inv := InvestmentYear{Name: "VTI", Shares: 3, Value: 30}

	proceeds, shares := sellShares(&inv, 1000)
	if shares != 3 {
		t.Errorf("Expected all 3 shares sold, got %d", shares)
	}
	if !mathutil.WithinTolerance(proceeds, 30, constants.CurrencyTolerance) {
		t.Errorf("Expected proceeds 30, got %v", proceeds)
	}
	if inv.Shares != 0 || inv.Value != 0 {
		t.Errorf("Expected empty investment, got %d shares, %v value", inv.Shares, inv.Value)
	}

	// Selling from an empty investment produces nothing.
	if proceeds, shares := sellShares(&inv, 10); proceeds != 0 || shares != 0 {
		t.Errorf("Expected no sale from empty investment, got %v/%d", proceeds, shares)
	}
}

func TestLiquidationOrderUnsetPriorityLast(t *testing.T) {
	accounts := []AccountYear{
		{ID: 1, Name: "unset", Priority: 0},
		{ID: 2, Name: "second", Priority: 2},
		{ID: 3, Name: "first", Priority: 1},
		{ID: 4, Name: "also unset", Priority: 0},
	}

	ordered := liquidationOrder(accounts)
	expected := []string{"first", "second", "unset", "also unset"}
	for i, name := range expected {
		if ordered[i].Name != name {
			t.Errorf("Position %d: expected %s, got %s", i, name, ordered[i].Name)
		}
	}
}

func TestAllocatorWalksAccountsInOrder(t *testing.T) {
	accounts := []AccountYear{
		{ID: 1, Name: "keep", Kind: config.KindVUL, Priority: 2, Value: 1000},
		{ID: 2, Name: "sell first", Kind: config.KindVUL, Priority: 1, Value: 300},
	}

	al := newAllocator(accounts)
	totals := &yearTotals{}
	var log []Transaction

	// First sale drains the priority-1 account, then sales move on.
	if !al.sellNext(500, totals, &log) {
		t.Fatal("Expected a sale")
	}
	if accounts[1].Value != 0 {
		t.Errorf("Expected priority-1 account drained, got %v", accounts[1].Value)
	}
	if accounts[0].Value != 1000 {
		t.Errorf("Expected priority-2 account untouched, got %v", accounts[0].Value)
	}

	if !al.sellNext(200, totals, &log) {
		t.Fatal("Expected a sale from the second account")
	}
	if !mathutil.WithinTolerance(accounts[0].Value, 800, constants.CurrencyTolerance) {
		t.Errorf("Expected 200 sold from second account, got %v", accounts[0].Value)
	}

	if !mathutil.WithinTolerance(totals.sales, 500, constants.CurrencyTolerance) {
		t.Errorf("Expected total sales 500, got %v", totals.sales)
	}
	if len(log) != 2 {
		t.Errorf("Expected 2 transactions, got %d", len(log))
	}
}

func TestAllocatorExhaustsAllAssets(t *testing.T) {
	accounts := []AccountYear{
		{ID: 1, Name: "small", Kind: config.KindVUL, Priority: 1, Value: 100},
	}

	al := newAllocator(accounts)
	totals := &yearTotals{}
	var log []Transaction

	if !al.sellNext(1000, totals, &log) {
		t.Fatal("Expected a sale")
	}
	if al.sellNext(900, totals, &log) {
		t.Error("Expected exhaustion after draining every asset")
	}
}

func TestRecordSaleTaxCharacter(t *testing.T) {
	tests := []struct {
		name           string
		kind           config.AccountKind
		wantSaleIncome float64
		wantGains      float64
	}{
		{"IRA sale is ordinary income", config.KindIRA, 1000, 0},
		{"Pension sale is ordinary income", config.KindPension, 1000, 0},
		{"VUL sale is basis return", config.KindVUL, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acct := AccountYear{Name: "acct", Kind: tt.kind, Value: 5000}
			totals := &yearTotals{}
			var log []Transaction

			recordSale(&acct, nil, 1000, 0, totals, &log)

			if !mathutil.WithinTolerance(totals.saleIncome, tt.wantSaleIncome, constants.CurrencyTolerance) {
				t.Errorf("saleIncome = %v, expected %v", totals.saleIncome, tt.wantSaleIncome)
			}
			if !mathutil.WithinTolerance(totals.gains, tt.wantGains, constants.CurrencyTolerance) {
				t.Errorf("gains = %v, expected %v", totals.gains, tt.wantGains)
			}
			if !mathutil.WithinTolerance(acct.Value, 4000, constants.CurrencyTolerance) {
				t.Errorf("account value = %v, expected 4000", acct.Value)
			}
		})
	}
}

func TestBrokerageGainAgainstCostBasis(t *testing.T) {
	acct := AccountYear{Name: "taxable", Kind: config.KindBrokerage, Value: 30000}
	inv := InvestmentYear{Name: "VTI", Shares: 100, Value: 30000, CostBasisPerShare: 150}
	totals := &yearTotals{}
	var log []Transaction

	proceeds, shares := sellShares(&inv, 6000)
	recordSale(&acct, &inv, proceeds, shares, totals, &log)

	// 20 shares at 300 each against 150 basis: gain 3000.
	if shares != 20 {
		t.Fatalf("Expected 20 shares sold, got %d", shares)
	}
	if !mathutil.WithinTolerance(totals.gains, 3000, constants.CurrencyTolerance) {
		t.Errorf("Expected gain 3000, got %v", totals.gains)
	}
}

func TestBrokerageGainProportionalEstimate(t *testing.T) {
	acct := AccountYear{Name: "taxable", Kind: config.KindBrokerage, OriginalValue: 100000, Value: 105000}
	totals := &yearTotals{}
	var log []Transaction

	recordSale(&acct, nil, 10000, 0, totals, &log)

	expected := 5000.0 * (10000.0 / 105000.0)
	if !mathutil.WithinTolerance(totals.gains, expected, constants.CurrencyTolerance) {
		t.Errorf("Expected gain %.2f, got %v", expected, totals.gains)
	}
}

func TestSellFromAccountReturnsRemainder(t *testing.T) {
	acct := AccountYear{Name: "savings", Kind: config.KindVUL, Value: 800}
	totals := &yearTotals{}
	var log []Transaction

	remaining := sellFromAccount(&acct, 1000, totals, &log)
	if !mathutil.WithinTolerance(remaining, 200, constants.CurrencyTolerance) {
		t.Errorf("Expected remainder 200, got %v", remaining)
	}
	if acct.Value != 0 {
		t.Errorf("Expected account drained, got %v", acct.Value)
	}
}

func TestSellFromAccountInvestmentPriority(t *testing.T) {
	acct := AccountYear{
		Name: "retirement", Kind: config.KindIRA,
		Value: 3000,
		Investments: []InvestmentYear{
			{ID: 1, Name: "VTI", Priority: 0, Shares: 10, Value: 2000},
			{ID: 2, Name: "bonds", Priority: 1, Shares: 10, Value: 1000},
		},
	}
	totals := &yearTotals{}
	var log []Transaction

	remaining := sellFromAccount(&acct, 500, totals, &log)
	if remaining != 0 {
		t.Fatalf("Expected no remainder, got %v", remaining)
	}

	// Priority 1 sells before unset priority.
	if acct.Investments[0].Shares != 10 {
		t.Errorf("Expected unset-priority VTI untouched, got %d shares", acct.Investments[0].Shares)
	}
	if acct.Investments[1].Shares != 5 {
		t.Errorf("Expected 5 bond shares sold, got %d remaining", 10-acct.Investments[1].Shares)
	}
}
