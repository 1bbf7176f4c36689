// Package fincalc provides the shared financial math used across the engine:
// annuity factors, discounting, IRR, cost of capital, and series statistics.
// All rates are fractional (0.10 means 10%); percent-to-fraction conversion
// happens once at the configuration boundary, never here.
package fincalc

import "math"

// PaymentFactor returns the level annuity payment factor
// f = r(1+r)^n / ((1+r)^n - 1) for a fractional annual rate and a tenor in
// years. Annual debt service on a fully-amortizing loan is principal * f.
func PaymentFactor(rate float64, years int) float64 {
	if years <= 0 {
		return 0
	}
	if rate == 0 {
		// For zero interest the level payment is simply principal / years.
		return 1 / float64(years)
	}

	power := math.Pow(1.0+rate, float64(years))
	return rate * power / (power - 1.0)
}

// AnnualDebtService returns the level annual payment that fully amortizes
// principal over the tenor at the given fractional rate.
func AnnualDebtService(principal, rate float64, years int) float64 {
	return principal * PaymentFactor(rate, years)
}
