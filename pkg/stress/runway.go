package stress

import (
	"math"

	"github.com/lenderkit/covsim/pkg/constants"
	"github.com/lenderkit/covsim/pkg/fincalc"
	"github.com/lenderkit/covsim/pkg/mathutil"
	"github.com/lenderkit/covsim/pkg/projection"
)

// HistoricalContext carries observed annual operating cash flows from the
// borrower's history. The volatility derived from them haircuts the liquidity
// runway and feeds the composite score; a nil context means no history.
type HistoricalContext struct {
	AnnualCashFlows []float64
}

// BurnVolatilityMultiplier is 1 plus the coefficient of variation of the
// historical cash flows, clamped to [1, constants.BurnVolatilityCap]. Fewer
// than two observations carry no volatility signal and return the neutral 1.
func (h *HistoricalContext) BurnVolatilityMultiplier() float64 {
	if h == nil || len(h.AnnualCashFlows) < 2 {
		return 1.0
	}
	mean := fincalc.Mean(h.AnnualCashFlows)
	if mathutil.IsZero(mean) {
		return constants.BurnVolatilityCap
	}
	cv := fincalc.StdDev(h.AnnualCashFlows) / math.Abs(mean)
	return mathutil.Clamp(1.0+cv, 1.0, constants.BurnVolatilityCap)
}

// liquidityRunway estimates months of cash cover under the scenario's burn
// rate, from average annual operating cash flow before debt service. A
// cash-generative projection reports the capped maximum; a cash-burning one
// divides opening cash by the monthly burn, scaled by the scenario severity
// factor and haircut by historical burn volatility.
func liquidityRunway(years []projection.Year, openingCash float64, sc Scenario, hist *HistoricalContext) float64 {
	if len(years) == 0 {
		return 0
	}

	flows := make([]float64, len(years))
	for i, y := range years {
		flows[i] = y.CFADS
	}
	if fincalc.Mean(flows) >= 0 {
		return constants.MaxRunwayMonths
	}

	monthlyBurn := -fincalc.Mean(flows) / constants.MonthsPerYear
	runway := openingCash / monthlyBurn

	severity := sc.SeverityFactor
	if severity <= 0 {
		severity = 1.0
	}
	runway = runway * severity / hist.BurnVolatilityMultiplier()

	return mathutil.Clamp(runway, 0, constants.MaxRunwayMonths)
}
