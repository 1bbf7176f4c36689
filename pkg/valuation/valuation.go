// Package valuation discounts the projected cash flows to enterprise and
// equity value, with a CAPM-derived WACC, a perpetuity-growth or
// exit-multiple terminal value, IRR/MOIC on the equity holder's stream, and
// a WACC x terminal-growth sensitivity grid.
//
// Enterprise value discounts operating cash flow before debt service at
// WACC; the interest tax shield lives in the after-tax cost of debt, not in
// the flows. IRR and MOIC use the levered free cash flow stream instead.
package valuation

import (
	"fmt"
	"math"

	"github.com/lenderkit/covsim/pkg/fincalc"
	"github.com/lenderkit/covsim/pkg/projection"
	"go.uber.org/zap"
)

// weightTolerance is how far the capital-structure weights may drift from
// summing to exactly 1 before the inputs are rejected.
const weightTolerance = 1e-6

// Params drive the valuation. ExitMultiple > 0 selects an exit-multiple
// terminal value on terminal EBITDA; otherwise the terminal value is a
// perpetuity growing at TerminalGrowth. A zero EquityOutlay derives the
// outlay from the computed equity value, so IRR reads as the return on
// buying at appraised value.
type Params struct {
	RiskFreeRate      float64
	Beta              float64
	MarketRiskPremium float64
	CostOfDebt        float64
	TaxRate           float64
	DebtWeight        float64
	EquityWeight      float64
	TerminalGrowth    float64
	ExitMultiple      float64
	OpeningNetDebt    float64
	EquityOutlay      float64
	WACCStep          float64
	GrowthStep        float64
}

func (p Params) withDefaults() Params {
	if p.WACCStep == 0 {
		p.WACCStep = defaultWACCStep
	}
	if p.GrowthStep == 0 {
		p.GrowthStep = defaultGrowthStep
	}
	return p
}

// Result is the valuation outcome. IRR and MOIC use the Ratio sentinel: an
// equity stream with no sign change has no IRR, and a non-positive outlay
// has no multiple.
type Result struct {
	CostOfEquity       float64
	AfterTaxCostOfDebt float64
	WACC               float64
	TerminalValue      float64
	PVTerminal         float64
	DiscountedFCF      []float64
	EnterpriseValue    float64
	OpeningNetDebt     float64
	EquityValue        float64
	EquityCashFlows    []float64
	IRR                projection.Ratio
	MOIC               projection.Ratio
	Sensitivity        SensitivityGrid
}

// Run values the projected deal.
func Run(logger *zap.Logger, years []projection.Year, params Params) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	params = params.withDefaults()

	if len(years) == 0 {
		return Result{}, fmt.Errorf("valuation requires at least one projected year")
	}
	if math.Abs(params.DebtWeight+params.EquityWeight-1.0) > weightTolerance {
		return Result{}, fmt.Errorf("capital structure weights must sum to 1, got %.4f",
			params.DebtWeight+params.EquityWeight)
	}
	if params.EquityOutlay < 0 {
		return Result{}, fmt.Errorf("equity outlay must be non-negative, got %.2f", params.EquityOutlay)
	}

	costOfEquity := fincalc.CostOfEquityCAPM(params.RiskFreeRate, params.Beta, params.MarketRiskPremium)
	wacc := fincalc.WACC(params.CostOfDebt, params.TaxRate, params.DebtWeight, costOfEquity, params.EquityWeight)
	if wacc <= 0 {
		return Result{}, fmt.Errorf("derived WACC %.4f must be positive", wacc)
	}

	perpetuity := params.ExitMultiple <= 0
	if perpetuity && wacc <= params.TerminalGrowth {
		return Result{}, fmt.Errorf("WACC %.4f must exceed terminal growth %.4f for a perpetuity terminal value",
			wacc, params.TerminalGrowth)
	}

	final := years[len(years)-1]
	var terminal float64
	if perpetuity {
		terminal = fincalc.TerminalValuePerpetuity(final.CFADS, wacc, params.TerminalGrowth)
	} else {
		terminal = fincalc.TerminalValueExitMultiple(final.EBITDA, params.ExitMultiple)
	}

	discounted := make([]float64, len(years))
	for i, y := range years {
		discounted[i] = fincalc.PresentValue(y.CFADS, wacc, i+1)
	}
	pvTerminal := fincalc.PresentValue(terminal, wacc, len(years))
	enterprise := fincalc.Sum(discounted) + pvTerminal
	equity := enterprise - params.OpeningNetDebt

	outlay := params.EquityOutlay
	if outlay == 0 {
		outlay = equity
	}
	stream := equityCashFlows(years, outlay, terminal)

	result := Result{
		CostOfEquity:       costOfEquity,
		AfterTaxCostOfDebt: fincalc.AfterTaxCostOfDebt(params.CostOfDebt, params.TaxRate),
		WACC:               wacc,
		TerminalValue:      terminal,
		PVTerminal:         pvTerminal,
		DiscountedFCF:      discounted,
		EnterpriseValue:    enterprise,
		OpeningNetDebt:     params.OpeningNetDebt,
		EquityValue:        equity,
		EquityCashFlows:    stream,
		Sensitivity:        sensitivityGrid(years, params, wacc),
	}

	if irr, ok := fincalc.IRR(stream); ok {
		result.IRR = projection.Ratio{Value: irr, OK: true}
	}
	if outlay > 0 {
		result.MOIC = projection.Ratio{Value: fincalc.Sum(stream[1:]) / outlay, OK: true}
	}

	logger.Debug(fmt.Sprintf("valuation: enterprise %.0f, equity %.0f at WACC %.4f", enterprise, equity, wacc),
		zap.String("op", "valuation.Run"),
	)

	return result, nil
}

// equityCashFlows assembles the equity holder's stream: the outlay at t0,
// levered free cash flow for each projected year, and the terminal equity
// (terminal value less ending net debt) added to the final year.
func equityCashFlows(years []projection.Year, outlay, terminalValue float64) []float64 {
	stream := make([]float64, 0, len(years)+1)
	stream = append(stream, -outlay)
	for _, y := range years {
		stream = append(stream, y.FreeCashFlow)
	}
	stream[len(stream)-1] += terminalValue - years[len(years)-1].NetDebt
	return stream
}
