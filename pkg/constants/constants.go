// Package constants provides shared constants for the covsim engine.
package constants

// DateTimeLayout is the month format used for closing and maturity dates in
// deal files and is also the output date format.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// PercentageMultiplier converts between human percentages and fractions
	PercentageMultiplier = 100.0

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PrincipalConservationTolerance is the relative tolerance within which the
	// sum of scheduled principal payments must equal the original principal
	PrincipalConservationTolerance = 1e-6
)

// Capacity sizing constants. The safety buffer and floor DSCR are deliberately
// named configuration defaults rather than literals scattered through the
// analyzer; callers may override them via capacity.Params.
const (
	// DefaultSafetyBuffer scales the target DSCR when sizing "safe" debt
	DefaultSafetyBuffer = 1.20

	// DefaultFloorDSCR is the minimum coverage used for "aggressive" sizing
	// and the decline threshold in the recommendation machine
	DefaultFloorDSCR = 1.10

	// DefaultMaxTenorExtension bounds the tenor search when proposing an
	// extended-tenor alternative structure (years)
	DefaultMaxTenorExtension = 5

	// DefaultSubordinatedSpread is the rate premium applied to the
	// subordinated slice of a rebalanced-mix alternative
	DefaultSubordinatedSpread = 0.03

	// DefaultTargetDSCR sizes capacity when neither the deal's capacity
	// section nor its covenants provide a coverage target
	DefaultTargetDSCR = 1.25
)

// Valuation defaults applied during deal normalization
const (
	// DefaultDebtWeight is the target capital-structure debt weight assumed
	// when a deal file provides none
	DefaultDebtWeight = 0.40

	// DefaultEquityWeight is the equity-side counterpart of DefaultDebtWeight
	DefaultEquityWeight = 0.60
)

// Covenant evaluation constants
const (
	// MarginalCushion classifies a passing covenant as "marginal" when the
	// actual value sits within this fraction of its threshold
	MarginalCushion = 0.10
)

// Stress testing constants
const (
	// MaxRunwayMonths caps the reported liquidity runway
	MaxRunwayMonths = 36.0

	// BurnVolatilityCap bounds the historical haircut applied to runway
	BurnVolatilityCap = 3.0

	// BalloonWarningPct is the balloon share of principal above which deal
	// validation emits an advisory warning
	BalloonWarningPct = 0.50
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatSummary is the condensed single-screen output format
	OutputFormatSummary = "summary"
)

// Configuration file constants
const (
	// DefaultDealFile is the default deal file name
	DefaultDealFile = "deal.yaml"

	// DefaultCurrency is assumed when a deal file omits the currency code
	DefaultCurrency = "USD"
)
