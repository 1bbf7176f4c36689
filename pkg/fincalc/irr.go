package fincalc

import "math"

const (
	irrTolerance     = 1e-7
	irrMaxIterations = 100
	irrBracketLower  = -0.99
	irrBracketUpper  = 10.0
)

// IRR solves for the internal rate of return of a cash-flow stream where
// index 0 is the initial (time-zero) flow. It tries Newton's method first and
// falls back to bisection over [-99%, 1000%]. The second return value reports
// whether a root was found; streams without a sign change have no IRR and
// return (0, false), never NaN.
func IRR(cashFlows []float64) (float64, bool) {
	if !hasSignChange(cashFlows) {
		return 0, false
	}

	if rate, ok := irrNewton(cashFlows); ok {
		return rate, true
	}
	return irrBisection(cashFlows)
}

// npvAtTimeZero values the stream with index 0 undiscounted.
func npvAtTimeZero(cashFlows []float64, rate float64) float64 {
	var pv float64
	for t, cf := range cashFlows {
		pv += cf / math.Pow(1.0+rate, float64(t))
	}
	return pv
}

func npvDerivative(cashFlows []float64, rate float64) float64 {
	var d float64
	for t, cf := range cashFlows {
		if t == 0 {
			continue
		}
		d -= float64(t) * cf / math.Pow(1.0+rate, float64(t+1))
	}
	return d
}

func hasSignChange(cashFlows []float64) bool {
	var hasNegative, hasPositive bool
	for _, cf := range cashFlows {
		if cf < 0 {
			hasNegative = true
		}
		if cf > 0 {
			hasPositive = true
		}
	}
	return hasNegative && hasPositive
}

func irrNewton(cashFlows []float64) (float64, bool) {
	rate := 0.1
	for i := 0; i < irrMaxIterations; i++ {
		value := npvAtTimeZero(cashFlows, rate)
		derivative := npvDerivative(cashFlows, rate)
		if derivative == 0 || math.IsNaN(derivative) {
			return 0, false
		}

		next := rate - value/derivative
		if math.IsNaN(next) || next <= irrBracketLower || next >= irrBracketUpper {
			return 0, false
		}
		if math.Abs(next-rate) <= irrTolerance {
			return next, true
		}
		rate = next
	}
	return 0, false
}

func irrBisection(cashFlows []float64) (float64, bool) {
	lower := irrBracketLower
	upper := irrBracketUpper

	lowerValue := npvAtTimeZero(cashFlows, lower)
	upperValue := npvAtTimeZero(cashFlows, upper)
	if lowerValue*upperValue > 0 {
		return 0, false
	}

	iterations := 0
	for iterations < irrMaxIterations && math.Abs(upper-lower) > irrTolerance {
		mid := lower + (upper-lower)/2
		midValue := npvAtTimeZero(cashFlows, mid)
		iterations++
		if midValue == 0 {
			return mid, true
		}
		if lowerValue*midValue < 0 {
			upper = mid
		} else {
			lower = mid
			lowerValue = midValue
		}
	}
	return lower + (upper-lower)/2, true
}
