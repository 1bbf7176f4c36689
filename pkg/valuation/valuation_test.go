package valuation

import (
	"math"
	"testing"

	"github.com/lenderkit/covsim/pkg/projection"
)

// valuationYears is a compact three-year projection with round numbers:
// operating cash flow (CFADS) 3.0M/3.2M/3.4M, levered FCF 0.4M/0.6M/0.8M,
// net debt paying down to 2M by the final year.
func valuationYears() []projection.Year {
	return []projection.Year{
		{Year: 1, CFADS: 3000000, FreeCashFlow: 400000, EBITDA: 5000000, NetDebt: 6000000},
		{Year: 2, CFADS: 3200000, FreeCashFlow: 600000, EBITDA: 5200000, NetDebt: 4000000},
		{Year: 3, CFADS: 3400000, FreeCashFlow: 800000, EBITDA: 5500000, NetDebt: 2000000},
	}
}

// baseParams: cost of equity = 0.06 + 1.1*0.055 = 0.1205, after-tax cost of
// debt = 0.10*0.75 = 0.075, WACC = 0.4*0.075 + 0.6*0.1205 = 0.1023.
func baseParams() Params {
	return Params{
		RiskFreeRate:      0.06,
		Beta:              1.1,
		MarketRiskPremium: 0.055,
		CostOfDebt:        0.10,
		TaxRate:           0.25,
		DebtWeight:        0.40,
		EquityWeight:      0.60,
		TerminalGrowth:    0.02,
		OpeningNetDebt:    9000000,
	}
}

func TestRunPerpetuityValuation(t *testing.T) {
	result, err := Run(nil, valuationYears(), baseParams())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if math.Abs(result.CostOfEquity-0.1205) > 1e-9 {
		t.Errorf("expected cost of equity 0.1205, got %f", result.CostOfEquity)
	}
	if math.Abs(result.AfterTaxCostOfDebt-0.075) > 1e-9 {
		t.Errorf("expected after-tax cost of debt 0.075, got %f", result.AfterTaxCostOfDebt)
	}
	if math.Abs(result.WACC-0.1023) > 1e-9 {
		t.Errorf("expected WACC 0.1023, got %f", result.WACC)
	}

	// TV = 3.4M * 1.02 / (0.1023 - 0.02) = 3,468,000 / 0.0823
	if math.Abs(result.TerminalValue-42138517.6) > 5 {
		t.Errorf("expected terminal value ~42,138,518, got %.2f", result.TerminalValue)
	}

	if len(result.DiscountedFCF) != 3 {
		t.Fatalf("expected 3 discounted flows, got %d", len(result.DiscountedFCF))
	}
	// 3,000,000 / 1.1023
	if math.Abs(result.DiscountedFCF[0]-2721582.1) > 1 {
		t.Errorf("expected year-1 PV ~2,721,582, got %.2f", result.DiscountedFCF[0])
	}

	if math.Abs(result.EnterpriseValue-39355228) > 50 {
		t.Errorf("expected enterprise value ~39,355,228, got %.2f", result.EnterpriseValue)
	}
	if math.Abs(result.EquityValue-30355228) > 50 {
		t.Errorf("expected equity value ~30,355,228, got %.2f", result.EquityValue)
	}

	// The bridge holds exactly: EV = sum(PV of flows) + PV(TV), equity = EV - net debt.
	pvSum := 0.0
	for _, pv := range result.DiscountedFCF {
		pvSum += pv
	}
	if math.Abs(result.EnterpriseValue-(pvSum+result.PVTerminal)) > 1e-6 {
		t.Errorf("enterprise value does not equal PV sum plus PV of terminal")
	}
	if math.Abs(result.EquityValue-(result.EnterpriseValue-9000000)) > 1e-6 {
		t.Errorf("equity value does not equal enterprise value less opening net debt")
	}
}

func TestRunEquityStream(t *testing.T) {
	result, err := Run(nil, valuationYears(), baseParams())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.EquityCashFlows) != 4 {
		t.Fatalf("expected 4 equity flows, got %d", len(result.EquityCashFlows))
	}
	// Outlay defaults to the appraised equity value.
	if math.Abs(result.EquityCashFlows[0]+result.EquityValue) > 1e-6 {
		t.Errorf("expected t0 outflow of the equity value, got %.2f", result.EquityCashFlows[0])
	}
	if result.EquityCashFlows[1] != 400000 || result.EquityCashFlows[2] != 600000 {
		t.Errorf("intermediate flows should be the levered FCF, got %v", result.EquityCashFlows[1:3])
	}
	// Final year: 800,000 FCF + (TV - 2M ending net debt).
	if math.Abs(result.EquityCashFlows[3]-40938517.6) > 10 {
		t.Errorf("expected final equity flow ~40,938,518, got %.2f", result.EquityCashFlows[3])
	}

	if !result.IRR.OK {
		t.Fatal("expected an IRR solution")
	}
	if math.Abs(result.IRR.Value-0.1152) > 0.002 {
		t.Errorf("expected IRR ~11.5%%, got %f", result.IRR.Value)
	}

	if !result.MOIC.OK {
		t.Fatal("expected a MOIC")
	}
	// (0.4M + 0.6M + 40.94M) / 30.36M
	if math.Abs(result.MOIC.Value-1.3816) > 0.001 {
		t.Errorf("expected MOIC ~1.38x, got %f", result.MOIC.Value)
	}
}

func TestRunExitMultipleTerminal(t *testing.T) {
	params := baseParams()
	params.ExitMultiple = 6.0

	result, err := Run(nil, valuationYears(), params)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// 6x terminal EBITDA of 5.5M.
	if math.Abs(result.TerminalValue-33000000) > 1e-6 {
		t.Errorf("expected terminal value 33,000,000, got %.2f", result.TerminalValue)
	}
}

func TestRunSensitivityGrid(t *testing.T) {
	result, err := Run(nil, valuationYears(), baseParams())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	grid := result.Sensitivity
	if len(grid.WACCAxis) != 5 || len(grid.GrowthAxis) != 5 || len(grid.EquityValues) != 5 {
		t.Fatalf("expected a 5x5 grid, got %dx%d", len(grid.WACCAxis), len(grid.GrowthAxis))
	}

	if math.Abs(grid.WACCAxis[0]-0.0823) > 1e-9 || math.Abs(grid.WACCAxis[4]-0.1223) > 1e-9 {
		t.Errorf("unexpected WACC axis %v", grid.WACCAxis)
	}
	if math.Abs(grid.GrowthAxis[0]-0.01) > 1e-9 || math.Abs(grid.GrowthAxis[4]-0.03) > 1e-9 {
		t.Errorf("unexpected growth axis %v", grid.GrowthAxis)
	}

	// Center cell repeats the base case.
	if math.Abs(grid.EquityValues[2][2]-result.EquityValue) > 1 {
		t.Errorf("expected center cell %.2f, got %.2f", result.EquityValue, grid.EquityValues[2][2])
	}

	// Equity falls as WACC rises and rises with terminal growth.
	if grid.EquityValues[1][2] <= grid.EquityValues[3][2] {
		t.Errorf("expected equity to fall as WACC rises")
	}
	if grid.EquityValues[2][3] <= grid.EquityValues[2][1] {
		t.Errorf("expected equity to rise with terminal growth")
	}
}

func TestRunSensitivityDegenerateCells(t *testing.T) {
	params := Params{
		RiskFreeRate:      0.01,
		Beta:              0.5,
		MarketRiskPremium: 0.04,
		EquityWeight:      1.0,
		TerminalGrowth:    0.025,
	}

	result, err := Run(nil, valuationYears(), params)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	grid := result.Sensitivity
	// WACC axis runs 0.01..0.05; the low-WACC cells sit at or below growth.
	if grid.EquityValues[0][0] != 0 {
		t.Errorf("expected zero for a WACC at or below growth, got %.2f", grid.EquityValues[0][0])
	}
	if grid.EquityValues[4][0] <= 0 {
		t.Errorf("expected a positive equity value at WACC 0.05 / growth 0.015, got %.2f", grid.EquityValues[4][0])
	}
}

func TestRunNoIRRWithoutSignChange(t *testing.T) {
	years := []projection.Year{
		{Year: 1, CFADS: 100000, FreeCashFlow: -50000, EBITDA: 200000, NetDebt: 10000000},
	}
	params := Params{
		RiskFreeRate:      0.06,
		Beta:              1.0,
		MarketRiskPremium: 0.05,
		EquityWeight:      1.0,
	}

	result, err := Run(nil, years, params)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.IRR.OK {
		t.Errorf("expected no IRR for an all-negative equity stream, got %f", result.IRR.Value)
	}
	if result.IRR.Value != 0 {
		t.Errorf("sentinel IRR should be zero-valued, got %f", result.IRR.Value)
	}
}

func TestRunInputValidation(t *testing.T) {
	tests := []struct {
		name   string
		years  []projection.Year
		mutate func(*Params)
	}{
		{
			name:   "No projected years",
			years:  nil,
			mutate: func(p *Params) {},
		},
		{
			name:   "Weights do not sum to one",
			years:  valuationYears(),
			mutate: func(p *Params) { p.DebtWeight = 0.5; p.EquityWeight = 0.3 },
		},
		{
			name:   "Negative equity outlay",
			years:  valuationYears(),
			mutate: func(p *Params) { p.EquityOutlay = -1 },
		},
		{
			name:   "WACC at or below terminal growth",
			years:  valuationYears(),
			mutate: func(p *Params) { p.TerminalGrowth = 0.15 },
		},
		{
			name:  "Non-positive WACC",
			years: valuationYears(),
			mutate: func(p *Params) {
				p.RiskFreeRate = -0.5
				p.Beta = 0
				p.DebtWeight = 0
				p.EquityWeight = 1.0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := baseParams()
			tt.mutate(&params)
			if _, err := Run(nil, tt.years, params); err == nil {
				t.Errorf("expected an error")
			}
		})
	}
}
