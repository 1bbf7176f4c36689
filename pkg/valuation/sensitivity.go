package valuation

import (
	"github.com/lenderkit/covsim/pkg/fincalc"
	"github.com/lenderkit/covsim/pkg/projection"
)

const (
	defaultWACCStep   = 0.01
	defaultGrowthStep = 0.005

	// sensitivityHalfWidth steps on each side of the base value give a
	// (2n+1) x (2n+1) grid.
	sensitivityHalfWidth = 2
)

// SensitivityGrid holds equity values across a WACC x terminal-growth grid.
// Rows follow WACCAxis, columns GrowthAxis. The grid always uses a
// perpetuity terminal value, since terminal growth is one of its axes;
// degenerate cells (WACC at or below growth, or non-positive) hold zero.
type SensitivityGrid struct {
	WACCAxis     []float64
	GrowthAxis   []float64
	EquityValues [][]float64
}

func sensitivityGrid(years []projection.Year, params Params, baseWACC float64) SensitivityGrid {
	size := 2*sensitivityHalfWidth + 1
	grid := SensitivityGrid{
		WACCAxis:     make([]float64, size),
		GrowthAxis:   make([]float64, size),
		EquityValues: make([][]float64, size),
	}

	for i := 0; i < size; i++ {
		offset := float64(i - sensitivityHalfWidth)
		grid.WACCAxis[i] = baseWACC + offset*params.WACCStep
		grid.GrowthAxis[i] = params.TerminalGrowth + offset*params.GrowthStep
	}

	flows := make([]float64, len(years))
	for i, y := range years {
		flows[i] = y.CFADS
	}

	for i, wacc := range grid.WACCAxis {
		row := make([]float64, size)
		for j, growth := range grid.GrowthAxis {
			row[j] = equityValueAt(flows, params.OpeningNetDebt, wacc, growth)
		}
		grid.EquityValues[i] = row
	}

	return grid
}

// equityValueAt recomputes equity value for one grid cell, holding the
// projected flows and net debt fixed.
func equityValueAt(flows []float64, openingNetDebt, wacc, growth float64) float64 {
	if wacc <= 0 || wacc <= growth {
		return 0
	}

	value := fincalc.NPV(flows, wacc)

	terminal := fincalc.TerminalValuePerpetuity(flows[len(flows)-1], wacc, growth)
	value += fincalc.PresentValue(terminal, wacc, len(flows))

	return value - openingNetDebt
}
