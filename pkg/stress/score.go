package stress

import (
	"github.com/lenderkit/covsim/pkg/capacity"
	"github.com/lenderkit/covsim/pkg/covenant"
	"github.com/lenderkit/covsim/pkg/mathutil"
	"github.com/lenderkit/covsim/pkg/projection"
)

// Composite score weights and level cutoffs. The maximum attainable total is
// 10: 3.5 from breaches, 3 from runway, 2 from thin interest coverage, 1.5
// from historical burn volatility.
const (
	breachBasePoints    = 2.0
	breachSeverityScale = 5.0
	breachSeverityCap   = 1.5

	runwayComfortableMonths = 24.0
	runwayTightMonths       = 12.0
	runwayCriticalMonths    = 6.0

	icrComfortable = 3.0
	icrAdequate    = 2.0
	icrThin        = 1.5

	volatilityPointsCap = 1.5

	scoreLowMax      = 2.0
	scoreModerateMax = 4.5
	scoreElevatedMax = 7.0
)

// RiskScore is the weighted composite for one scenario. Component points are
// retained so a report can show what drove the level.
type RiskScore struct {
	BreachPoints     float64
	RunwayPoints     float64
	CoveragePoints   float64
	VolatilityPoints float64
	Total            float64
	Level            capacity.RiskLevel
}

// compositeScore weighs breach presence and severity, the liquidity runway
// band, the worst interest-coverage cushion, and historical burn volatility,
// then maps the total to a level via fixed cutoffs.
func compositeScore(report covenant.Report, stats projection.CreditStats, runwayMonths float64, hist *HistoricalContext) RiskScore {
	var score RiskScore

	if report.BreachCount() > 0 {
		score.BreachPoints = breachBasePoints
		if worst, ok := report.WorstBreach(); ok && worst.Threshold > 0 {
			shortfall := -worst.Cushion / worst.Threshold
			score.BreachPoints += mathutil.Min(breachSeverityCap, shortfall*breachSeverityScale)
		}
	}

	switch {
	case runwayMonths >= runwayComfortableMonths:
		score.RunwayPoints = 0
	case runwayMonths >= runwayTightMonths:
		score.RunwayPoints = 1
	case runwayMonths >= runwayCriticalMonths:
		score.RunwayPoints = 2
	default:
		score.RunwayPoints = 3
	}

	switch {
	case !stats.MinICR.OK:
		score.CoveragePoints = 0
	case stats.MinICR.Value >= icrComfortable:
		score.CoveragePoints = 0
	case stats.MinICR.Value >= icrAdequate:
		score.CoveragePoints = 0.5
	case stats.MinICR.Value >= icrThin:
		score.CoveragePoints = 1
	default:
		score.CoveragePoints = 2
	}

	score.VolatilityPoints = mathutil.Min(volatilityPointsCap, hist.BurnVolatilityMultiplier()-1.0)

	score.Total = score.BreachPoints + score.RunwayPoints + score.CoveragePoints + score.VolatilityPoints

	switch {
	case score.Total < scoreLowMax:
		score.Level = capacity.RiskLow
	case score.Total < scoreModerateMax:
		score.Level = capacity.RiskModerate
	case score.Total < scoreElevatedMax:
		score.Level = capacity.RiskElevated
	default:
		score.Level = capacity.RiskHigh
	}

	return score
}
