// Package validation provides deal dating validation utilities.
package validation

import (
	"fmt"

	"github.com/lenderkit/covsim/pkg/datetime"
)

// ValidateMaturityHorizon checks if a tranche matures after the projection horizon
func ValidateMaturityHorizon(trancheName, startDate, horizonEnd string, tenorYears int) (string, error) {
	maturityDate, err := datetime.AddYears(startDate, tenorYears)
	if err != nil {
		return "", err
	}

	late, err := datetime.DateBeforeDate(horizonEnd, maturityDate)
	if err != nil {
		return "", err
	}
	if late {
		return fmt.Sprintf("Tranche '%s' matures after the projection horizon (%s > %s) - principal will be outstanding at horizon end",
			trancheName, maturityDate, horizonEnd), nil
	}

	return "", nil
}

// ValidateTrancheDates checks if a tranche draws inside the projection window
func ValidateTrancheDates(trancheName, startDate, closingDate, horizonEnd string) []string {
	var warnings []string

	if early, err := datetime.DateBeforeDate(startDate, closingDate); err == nil && early {
		warnings = append(warnings, fmt.Sprintf("Tranche '%s' is drawn before the closing date (%s < %s)",
			trancheName, startDate, closingDate))
	}

	if inside, err := datetime.DateBeforeDate(startDate, horizonEnd); err == nil && !inside {
		warnings = append(warnings, fmt.Sprintf("Tranche '%s' is drawn at or after the projection horizon ends (%s >= %s)",
			trancheName, startDate, horizonEnd))
	}

	return warnings
}

// DealValidator performs dating cross-checks across the whole debt stack
type DealValidator struct {
	ClosingDate  string
	HorizonYears int
	Tranches     []TrancheTerms
}

type TrancheTerms struct {
	Name       string
	StartDate  string
	TenorYears int
}

// ValidateAll validates the stack's dating against the projection window and
// returns warnings
func (dv *DealValidator) ValidateAll() []string {
	var warnings []string

	horizonEnd, err := datetime.AddYears(dv.ClosingDate, dv.HorizonYears)
	if err != nil {
		return warnings
	}

	for _, tranche := range dv.Tranches {
		start := tranche.StartDate
		if start == "" {
			start = dv.ClosingDate
		}

		dateWarnings := ValidateTrancheDates(tranche.Name, start, dv.ClosingDate, horizonEnd)
		warnings = append(warnings, dateWarnings...)

		warning, err := ValidateMaturityHorizon(tranche.Name, start, horizonEnd, tranche.TenorYears)
		if err == nil && warning != "" {
			warnings = append(warnings, warning)
		}
	}

	return warnings
}
