package config

// AccountKind determines how dividends are reinvested and how withdrawals
// are taxed.
type AccountKind string

// The supported account kinds.
const (
	KindIRA       AccountKind = "IRA"
	Kind401k      AccountKind = "401k"
	KindRothIRA   AccountKind = "Roth IRA"
	KindRoth401k  AccountKind = "Roth 401k"
	KindVUL       AccountKind = "VUL"
	KindBrokerage AccountKind = "brokerage"
	KindPension   AccountKind = "pension"
)

// Capabilities describes the tax treatment of an account kind. All kind
// behavior dispatch goes through this single table so the four predicates
// cannot drift apart.
type Capabilities struct {
	// ReinvestDividends folds dividends back into the balance tax-deferred
	// instead of counting them as taxable income for the year.
	ReinvestDividends bool
	// SaleTaxedAsIncome counts the full proceeds of a sale as ordinary income.
	SaleTaxedAsIncome bool
	// SaleRealizesGains records a capital gain against cost basis on sale.
	SaleRealizesGains bool
	// SubjectToRMD forces minimum distributions past the threshold age.
	SubjectToRMD bool
}

var kindCapabilities = map[AccountKind]Capabilities{
	KindIRA:       {ReinvestDividends: true, SaleTaxedAsIncome: true, SubjectToRMD: true},
	Kind401k:      {ReinvestDividends: true, SaleTaxedAsIncome: true, SubjectToRMD: true},
	KindRothIRA:   {ReinvestDividends: true, SaleTaxedAsIncome: true},
	KindRoth401k:  {ReinvestDividends: true},
	KindVUL:       {},
	KindBrokerage: {SaleRealizesGains: true},
	KindPension:   {SaleTaxedAsIncome: true},
}

// KindCapabilities returns the tax treatment for an account kind. Unknown
// kinds get the zero treatment: taxable dividends and untaxed sales.
func KindCapabilities(kind AccountKind) Capabilities {
	return kindCapabilities[kind]
}

// KnownKind reports whether kind is one of the supported account kinds.
func KnownKind(kind AccountKind) bool {
	_, ok := kindCapabilities[kind]
	return ok
}
