// Package constants provides shared constants for the loan-schedule application.
package constants

import "time"

// Financial constants
const (
	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencySymbol prefixes formatted amounts.
	CurrencySymbol = "₹"

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PeriodCountTolerance is how far term * payments-per-year may sit from a
	// whole number before the term is rejected.
	PeriodCountTolerance = 1e-9

	// MaxTotalPeriods bounds the length of a single schedule.
	MaxTotalPeriods = 6000
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix prefixes environment overrides, e.g. LOAN_SCHEDULE_SUGGESTIONS_APIKEY.
	EnvPrefix = "LOAN_SCHEDULE"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxRequestSizeBytes is the default maximum JSON request body size (64 KB)
	DefaultMaxRequestSizeBytes int64 = 64 * 1024

	// DefaultRateLimitRequests is the number of suggestion requests allowed per window per client
	DefaultRateLimitRequests = 5

	// DefaultRateLimitWindow is the refill window of the suggestion rate limiter
	DefaultRateLimitWindow = time.Minute
)

// Suggestion service defaults
const (
	// DefaultSuggestionModel is the text-generation model used for prepayment suggestions
	DefaultSuggestionModel = "gemini-2.5-flash-preview-05-20"

	// DefaultSuggestionTimeout bounds one upstream suggestion call
	DefaultSuggestionTimeout = 30 * time.Second

	// DefaultSuggestionMaxInFlight is the number of concurrent upstream suggestion calls
	DefaultSuggestionMaxInFlight = 1

	// DefaultSuggestionCacheTTL is how long a generated suggestion is reused
	DefaultSuggestionCacheTTL = 24 * time.Hour
)

// Cache backends
const (
	CacheBackendNone   = "none"
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)
