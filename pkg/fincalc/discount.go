package fincalc

import "math"

// PresentValue discounts a single cash flow received after the given number
// of whole periods: PV = CF / (1+r)^t.
func PresentValue(cashFlow, rate float64, periods int) float64 {
	if periods < 0 {
		return 0
	}
	return cashFlow / math.Pow(1.0+rate, float64(periods))
}

// NPV discounts a series of end-of-period cash flows: Σ CF_t / (1+r)^t with
// the first element treated as arriving at the end of period 1.
func NPV(cashFlows []float64, rate float64) float64 {
	var pv float64
	for t, cf := range cashFlows {
		pv += cf / math.Pow(1.0+rate, float64(t+1))
	}
	return pv
}

// TerminalValuePerpetuity returns the Gordon-growth terminal value
// TV = CF × (1+g) / (r - g). The discount rate must exceed the growth rate;
// a non-positive spread returns 0 and is expected to be caught by upstream
// validation.
func TerminalValuePerpetuity(finalCashFlow, rate, growth float64) float64 {
	if rate <= growth {
		return 0
	}
	return finalCashFlow * (1.0 + growth) / (rate - growth)
}

// TerminalValueExitMultiple returns the exit-multiple terminal value applied
// to terminal-year EBITDA.
func TerminalValueExitMultiple(terminalEBITDA, multiple float64) float64 {
	return terminalEBITDA * multiple
}
