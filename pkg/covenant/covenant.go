// Package covenant evaluates projected credit ratios against contractual
// thresholds, classifying each debt-bearing year as breaching, marginal, or
// compliant per covenant.
package covenant

import (
	"github.com/lenderkit/covsim/pkg/constants"
	"github.com/lenderkit/covsim/pkg/projection"
)

// Kind identifies a covenant metric.
type Kind string

const (
	KindDSCR     Kind = "DSCR"
	KindICR      Kind = "ICR"
	KindLeverage Kind = "NetDebtToEBITDA"
	KindLTV      Kind = "LTV"
)

// Direction is the safe side of a threshold.
type Direction string

const (
	// DirectionAtLeast marks higher-is-safer covenants (DSCR, ICR).
	DirectionAtLeast Direction = ">="
	// DirectionAtMost marks lower-is-safer covenants (leverage, LTV).
	DirectionAtMost Direction = "<="
)

// CovenantSet holds the contractual thresholds. A zero threshold means the
// covenant is not part of the package and is never evaluated. The set is
// static per run: evaluated, never mutated.
type CovenantSet struct {
	MinDSCR            float64
	TargetICR          float64
	MaxNetDebtToEBITDA float64
	MaxLTV             float64
}

// BreachRecord captures one covenant test in one year. Cushion is the signed
// distance to the threshold on the safe side: negative means breached.
type BreachRecord struct {
	Year      int
	Covenant  Kind
	Actual    float64
	Threshold float64
	Direction Direction
	Cushion   float64
}

// Report is the outcome of evaluating a covenant set against a projection.
// Marginal records are passing years within 10% of their threshold; they are
// informational and carry no pass/fail weight.
type Report struct {
	Breaches       []BreachRecord
	Marginal       []BreachRecord
	YearsEvaluated int
	Compliant      bool
}

// BreachCount returns the number of breach records.
func (r Report) BreachCount() int {
	return len(r.Breaches)
}

// HasBreach reports whether any year breached the given covenant.
func (r Report) HasBreach(kind Kind) bool {
	for _, b := range r.Breaches {
		if b.Covenant == kind {
			return true
		}
	}
	return false
}

// WorstBreach returns the breach with the largest relative shortfall, or
// false when the report is compliant.
func (r Report) WorstBreach() (BreachRecord, bool) {
	if len(r.Breaches) == 0 {
		return BreachRecord{}, false
	}
	worst := r.Breaches[0]
	worstShortfall := relativeShortfall(worst)
	for _, b := range r.Breaches[1:] {
		if shortfall := relativeShortfall(b); shortfall > worstShortfall {
			worst = b
			worstShortfall = shortfall
		}
	}
	return worst, true
}

func relativeShortfall(b BreachRecord) float64 {
	if b.Threshold == 0 {
		return 0
	}
	return -b.Cushion / b.Threshold
}

// Evaluate tests every debt-bearing projection year against the covenant set.
// Years without debt are excluded from evaluation entirely rather than
// counted as passes, and ratios flagged not-applicable are never tested.
func Evaluate(years []projection.Year, set CovenantSet) Report {
	var report Report

	for _, y := range years {
		if !y.DebtBearing() {
			continue
		}
		report.YearsEvaluated++

		if set.MinDSCR > 0 && y.DSCR.OK {
			report.recordAtLeast(y.Year, KindDSCR, y.DSCR.Value, set.MinDSCR)
		}
		if set.TargetICR > 0 && y.ICR.OK {
			report.recordAtLeast(y.Year, KindICR, y.ICR.Value, set.TargetICR)
		}
		if set.MaxNetDebtToEBITDA > 0 && y.Leverage.OK {
			report.recordAtMost(y.Year, KindLeverage, y.Leverage.Value, set.MaxNetDebtToEBITDA)
		}
		if set.MaxLTV > 0 && y.LTV.OK {
			report.recordAtMost(y.Year, KindLTV, y.LTV.Value, set.MaxLTV)
		}
	}

	report.Compliant = len(report.Breaches) == 0
	return report
}

func (r *Report) recordAtLeast(year int, kind Kind, actual, threshold float64) {
	record := BreachRecord{
		Year:      year,
		Covenant:  kind,
		Actual:    actual,
		Threshold: threshold,
		Direction: DirectionAtLeast,
		Cushion:   actual - threshold,
	}
	switch {
	case actual < threshold:
		r.Breaches = append(r.Breaches, record)
	case actual < threshold*(1+constants.MarginalCushion):
		r.Marginal = append(r.Marginal, record)
	}
}

func (r *Report) recordAtMost(year int, kind Kind, actual, threshold float64) {
	record := BreachRecord{
		Year:      year,
		Covenant:  kind,
		Actual:    actual,
		Threshold: threshold,
		Direction: DirectionAtMost,
		Cushion:   threshold - actual,
	}
	switch {
	case actual > threshold:
		r.Breaches = append(r.Breaches, record)
	case actual > threshold*(1-constants.MarginalCushion):
		r.Marginal = append(r.Marginal, record)
	}
}
