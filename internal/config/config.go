// Package config defines the financial profile data structures and includes
// functions for loading and validating profiles.
package config

import (
	"fmt"
	"io"

	"github.com/planwise/retirecast/pkg/constants"
	"github.com/planwise/retirecast/pkg/taxes"
	"github.com/spf13/viper"
)

// Profile holds one person's complete financial picture: simulation
// parameters, accounts with their investments, cash flows, tax tables, and
// the RMD divisor table. It is the sole input to the projection engine.
type Profile struct {
	General  General
	Accounts []Account
	Incomes  []Income
	Expenses []Expense
	Taxes    []taxes.Table
	RMDs     []RMDRule
	Logging  LoggingConfig `yaml:"logging,omitempty"`
	Output   OutputConfig  `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// General holds the process-wide simulation parameters.
type General struct {
	InflationPct float64
	CurrentAge   int
	TerminalAge  int
}

// Account is a single financial account. Either Value/ReturnPct/DividendPct
// are set directly (value-based mode) or Investments are populated
// (investment-backed mode); Validate enforces the two modes as exclusive.
type Account struct {
	ID          int
	Name        string
	Kind        AccountKind
	Value       float64
	ReturnPct   float64
	DividendPct float64
	Priority    int
	Deposit     bool
	Investments []Investment
}

// InvestmentBacked reports whether the account models individual holdings
// rather than a single account-level value.
func (a Account) InvestmentBacked() bool {
	return len(a.Investments) > 0
}

// Investment is a single holding owned by an account. Name is a ticker
// symbol or the literal "cash"; Shares are whole shares only.
type Investment struct {
	ID          int
	Name        string
	Shares      int
	Basis       float64
	Price       float64
	DividendPct float64
	ReturnPct   float64
	Priority    int
	Deposit     bool
	AssetClass  string
}

// Income is a yearly cash inflow active between its optional start and stop
// dates (ISO form, e.g. 2030-06-15).
type Income struct {
	ID    int
	Name  string
	Value float64
	Start string
	Stop  string
}

// Expense is a yearly cash outflow. Frequency is the number of years between
// occurrences; zero or one means every year.
type Expense struct {
	ID        int
	Name      string
	Value     float64
	Start     string
	Stop      string
	Frequency int
}

// RMDRule maps an exact age to its IRS distribution divisor. The table is
// sparse; ages without an entry force no distribution.
type RMDRule struct {
	Age                 int
	DistributionDivisor float64
}

// LoadProfile takes a file path as input and loads the YAML-formatted
// profile there.
func LoadProfile(profilePath string) (*Profile, error) {
	v := viper.New()
	v.SetConfigFile(profilePath)
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading profile file, %s", err)
	}

	return unmarshalProfile(v)
}

// LoadProfileFromReader loads a YAML-formatted profile from the given reader.
func LoadProfileFromReader(r io.Reader) (*Profile, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading profile data, %s", err)
	}

	return unmarshalProfile(v)
}

func unmarshalProfile(v *viper.Viper) (*Profile, error) {
	var profile Profile
	if err := v.Unmarshal(&profile); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	profile.ApplyDefaults()
	return &profile, nil
}

// ApplyDefaults fills in defaulted fields after decoding.
func (p *Profile) ApplyDefaults() {
	for i := range p.Expenses {
		if p.Expenses[i].Frequency <= 0 {
			p.Expenses[i].Frequency = constants.DefaultExpenseFrequency
		}
	}
}

// RMDDivisors returns the RMD table as an age-keyed lookup map.
func (p *Profile) RMDDivisors() map[int]float64 {
	divisors := make(map[int]float64, len(p.RMDs))
	for _, rule := range p.RMDs {
		divisors[rule.Age] = rule.DistributionDivisor
	}
	return divisors
}

// Symbols returns the distinct investment ticker symbols in the profile,
// excluding plain cash holdings, for use with the quote service.
func (p *Profile) Symbols() []string {
	seen := make(map[string]struct{})
	var symbols []string
	for _, account := range p.Accounts {
		for _, investment := range account.Investments {
			if investment.Name == "" || investment.Name == constants.CashSymbol {
				continue
			}
			if _, ok := seen[investment.Name]; ok {
				continue
			}
			seen[investment.Name] = struct{}{}
			symbols = append(symbols, investment.Name)
		}
	}
	return symbols
}
