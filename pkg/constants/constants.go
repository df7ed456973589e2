// Package constants provides shared constants for retirecast.
package constants

// DateLayout is the format expected for start/stop dates in profiles.
const DateLayout = "2006-01-02"

// Financial constants
const (
	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// DefaultExpenseFrequency is the default recurrence for expenses (every year)
	DefaultExpenseFrequency = 1

	// RMDAgeThreshold is the age boundary for required minimum distributions;
	// they apply in years where the account holder is strictly older.
	RMDAgeThreshold = 72

	// CashUnitPrice is the fixed $1/share net asset value convention used to
	// recognize cash-equivalent investments.
	CashUnitPrice = 1.0

	// CashSymbol is the investment name used for plain cash holdings; it is
	// never sent to the quote service.
	CashSymbol = "cash"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultProfileFile is the default profile file name
	DefaultProfileFile = "profile.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML profiles (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)

// Quote service constants
const (
	// QuoteAPIKeyEnv is the environment variable consulted for the quote
	// service API key when the flag is not set.
	QuoteAPIKeyEnv = "RETIRECAST_QUOTE_API_KEY"
)
