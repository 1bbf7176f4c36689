package stress

import (
	"github.com/lenderkit/covsim/pkg/amort"
	"github.com/lenderkit/covsim/pkg/capacity"
	"github.com/lenderkit/covsim/pkg/projection"
)

// Refinancing classification thresholds. Coverage is cumulative free cash
// flow through the balloon year as a fraction of the balloon amount.
const (
	refiCoverageLow      = 1.00
	refiCoverageModerate = 0.60
	refiCoverageElevated = 0.30

	// refiLeverageBump and refiDSCRBump worsen the classification one level
	// when stressed leverage exceeds, or stressed coverage falls below, them.
	refiLeverageBump = 4.0
	refiDSCRBump     = 1.0
)

// RefinancingAssessment grades the take-out risk on the largest balloon
// maturity in the stack. Applicable is false when no tranche carries an
// enabled balloon.
type RefinancingAssessment struct {
	Applicable    bool
	BalloonYear   int
	BalloonAmount float64
	CumulativeFCF float64
	Coverage      float64
	Risk          capacity.RiskLevel
}

// assessRefinancing compares free cash flow accumulated through the balloon
// year against the balloon amount, then worsens the classification for high
// stressed leverage, sub-1x stressed coverage, or shut take-out markets.
func assessRefinancing(stack amort.DebtStack, years []projection.Year, stats projection.CreditStats, marketsShut bool) RefinancingAssessment {
	balloons := stack.BalloonSchedule()
	if len(balloons) == 0 {
		return RefinancingAssessment{}
	}

	balloonYear, balloonAmount := 0, 0.0
	for year, amount := range balloons {
		if amount > balloonAmount {
			balloonYear, balloonAmount = year, amount
		}
	}

	cumulative := 0.0
	for _, y := range years {
		if y.Year > balloonYear {
			break
		}
		cumulative += y.FreeCashFlow
	}

	coverage := 0.0
	if balloonAmount > 0 {
		coverage = cumulative / balloonAmount
	}

	risk := capacity.RiskHigh
	switch {
	case coverage >= refiCoverageLow:
		risk = capacity.RiskLow
	case coverage >= refiCoverageModerate:
		risk = capacity.RiskModerate
	case coverage >= refiCoverageElevated:
		risk = capacity.RiskElevated
	}

	if stats.MaxLeverage.OK && stats.MaxLeverage.Value > refiLeverageBump {
		risk = bumpRisk(risk)
	}
	if stats.MinDSCR.OK && stats.MinDSCR.Value < refiDSCRBump {
		risk = bumpRisk(risk)
	}
	if marketsShut {
		risk = bumpRisk(risk)
	}

	return RefinancingAssessment{
		Applicable:    true,
		BalloonYear:   balloonYear,
		BalloonAmount: balloonAmount,
		CumulativeFCF: cumulative,
		Coverage:      coverage,
		Risk:          risk,
	}
}

func bumpRisk(level capacity.RiskLevel) capacity.RiskLevel {
	switch level {
	case capacity.RiskLow:
		return capacity.RiskModerate
	case capacity.RiskModerate:
		return capacity.RiskElevated
	default:
		return capacity.RiskHigh
	}
}
