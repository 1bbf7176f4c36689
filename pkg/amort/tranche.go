// Package amort builds per-tranche amortization schedules and aggregates
// multi-tranche debt stacks into a single annual debt-service series.
package amort

import (
	"github.com/lenderkit/covsim/pkg/datetime"
)

// AmortizationMode selects how principal retires over the tenor.
type AmortizationMode string

const (
	// ModeAmortizing retires principal on a level annuity payment over the
	// non-interest-only years.
	ModeAmortizing AmortizationMode = "amortizing"
	// ModeInterestOnly pays interest each year with the full principal due at
	// maturity.
	ModeInterestOnly AmortizationMode = "interest-only"
	// ModeBullet pays interest each year with the full principal due at
	// maturity.
	ModeBullet AmortizationMode = "bullet"
	// ModeBalloon amortizes the non-balloon portion on a level annuity and
	// adds the balloon to the final year.
	ModeBalloon AmortizationMode = "balloon"
	// ModeCustom retires principal per a four-bucket percentage profile
	// expanded across the non-interest-only years.
	ModeCustom AmortizationMode = "custom"
)

// DayCount selects the day-count convention used to scale the nominal rate.
type DayCount string

const (
	DayCount30360     DayCount = "30/360"
	DayCountActual360 DayCount = "Actual/360"
	DayCountActual365 DayCount = "Actual/365"
)

// CustomBucketCount is the required length of a custom amortization profile.
const CustomBucketCount = 4

// DebtTranche is one layer of a debt stack with its own rate, tenor,
// seniority, and amortization terms. Rates are fractional.
type DebtTranche struct {
	Name              string
	Principal         float64
	Rate              float64
	DayCount          DayCount
	TenorYears        int
	InterestOnlyYears int
	Mode              AmortizationMode
	// BalloonPct is the fraction of principal due as a lump sum at maturity.
	// It only takes effect when Mode is ModeBalloon and BalloonEnabled is set;
	// a non-zero percentage alone never triggers a balloon.
	BalloonPct      float64
	BalloonEnabled  bool
	CustomIntervals []float64
	Seniority       int
	StartDate       string
}

// EffectiveRate returns the nominal rate scaled by the day-count convention.
// Actual/360 accrues 365 days of interest on a 360-day base; the other
// conventions leave the nominal rate unchanged on annual periods.
func (t DebtTranche) EffectiveRate() float64 {
	if t.DayCount == DayCountActual360 {
		return t.Rate * 365.0 / 360.0
	}
	return t.Rate
}

// BalloonAmount returns the lump-sum principal due at maturity, or 0 when the
// tranche is not an enabled balloon structure.
func (t DebtTranche) BalloonAmount() float64 {
	if t.Mode != ModeBalloon || !t.BalloonEnabled {
		return 0
	}
	return t.Principal * t.BalloonPct
}

// MaturityDate returns the tranche maturity as StartDate plus the tenor.
func (t DebtTranche) MaturityDate() (string, error) {
	return datetime.AddYears(t.StartDate, t.TenorYears)
}

// DebtStack is an ordered list of tranches, senior first.
type DebtStack struct {
	Tranches []DebtTranche
}

// TotalPrincipal returns the summed principal across tranches.
func (s DebtStack) TotalPrincipal() float64 {
	var total float64
	for _, t := range s.Tranches {
		total += t.Principal
	}
	return total
}

// MaxTenorYears returns the longest tranche tenor in the stack.
func (s DebtStack) MaxTenorYears() int {
	max := 0
	for _, t := range s.Tranches {
		if t.TenorYears > max {
			max = t.TenorYears
		}
	}
	return max
}

// BlendedRate returns the principal-weighted average rate at origination.
func (s DebtStack) BlendedRate() float64 {
	total := s.TotalPrincipal()
	if total == 0 {
		return 0
	}
	var weighted float64
	for _, t := range s.Tranches {
		weighted += t.Principal * t.Rate
	}
	return weighted / total
}

// BalloonSchedule returns the total balloon principal due per maturity year.
// Years without an enabled balloon are absent from the map.
func (s DebtStack) BalloonSchedule() map[int]float64 {
	balloons := make(map[int]float64)
	for _, t := range s.Tranches {
		if amount := t.BalloonAmount(); amount > 0 {
			balloons[t.TenorYears] += amount
		}
	}
	return balloons
}
