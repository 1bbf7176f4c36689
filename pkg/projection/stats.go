package projection

import (
	"github.com/lenderkit/covsim/pkg/fincalc"
	"github.com/lenderkit/covsim/pkg/mathutil"
)

// CreditStats summarizes the credit profile across the projection. Ratio
// aggregates only cover years where the underlying ratio was applicable; when
// no year qualifies the aggregate itself is not applicable.
type CreditStats struct {
	AvgDSCR           Ratio
	MinDSCR           Ratio
	AvgICR            Ratio
	MinICR            Ratio
	AvgLeverage       Ratio
	MaxLeverage       Ratio
	AvgCashConversion float64
	CumulativeFCF     float64
	YearsWithDebt     int
}

// ComputeStats derives summary credit statistics from a projection series.
func ComputeStats(years []Year) CreditStats {
	var stats CreditStats

	var dscrs, icrs, leverages, conversions, fcfs []float64
	for _, y := range years {
		if y.DSCR.OK {
			dscrs = append(dscrs, y.DSCR.Value)
		}
		if y.ICR.OK {
			icrs = append(icrs, y.ICR.Value)
		}
		if y.Leverage.OK {
			leverages = append(leverages, y.Leverage.Value)
		}
		if mathutil.IsPositive(y.EBITDA) {
			conversions = append(conversions, y.CFADS/y.EBITDA)
		}
		if y.DebtBearing() {
			stats.YearsWithDebt++
		}
		fcfs = append(fcfs, y.FreeCashFlow)
	}

	if len(dscrs) > 0 {
		stats.AvgDSCR = Ratio{Value: fincalc.Mean(dscrs), OK: true}
		stats.MinDSCR = Ratio{Value: fincalc.Min(dscrs), OK: true}
	}
	if len(icrs) > 0 {
		stats.AvgICR = Ratio{Value: fincalc.Mean(icrs), OK: true}
		stats.MinICR = Ratio{Value: fincalc.Min(icrs), OK: true}
	}
	if len(leverages) > 0 {
		stats.AvgLeverage = Ratio{Value: fincalc.Mean(leverages), OK: true}
		stats.MaxLeverage = Ratio{Value: fincalc.Max(leverages), OK: true}
	}
	stats.AvgCashConversion = fincalc.Mean(conversions)
	stats.CumulativeFCF = fincalc.Sum(fcfs)

	return stats
}
