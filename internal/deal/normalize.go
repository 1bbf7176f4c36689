package deal

import (
	"fmt"
	"time"

	"github.com/lenderkit/covsim/pkg/amort"
	"github.com/lenderkit/covsim/pkg/constants"
	"github.com/lenderkit/covsim/pkg/stress"
)

// Normalize applies every deal-file default and converts the file's human
// percentages into the fractions the engine computes with. All defaulting
// happens here, in one place; the pipeline packages never fall back on
// their own.
func (d *Deal) Normalize() error {
	return d.NormalizeWithFixedTime(time.Now())
}

// NormalizeWithFixedTime normalizes the deal using a fixed time for the
// closing-date default. It is idempotent; a second call is a no-op so the
// percentage conversion can never run twice.
func (d *Deal) NormalizeWithFixedTime(fixedTime time.Time) error {
	if d.normalized {
		return nil
	}

	if d.Currency == "" {
		d.Currency = constants.DefaultCurrency
	}
	if d.ClosingDate == "" {
		d.ClosingDate = fixedTime.Format(DateTimeLayout)
	}
	if _, err := time.Parse(DateTimeLayout, d.ClosingDate); err != nil {
		return fmt.Errorf("invalid closing date %q, %s", d.ClosingDate, err)
	}

	d.normalizeAssumptions()
	d.normalizeTranches()
	d.Covenants.MaxLTV /= constants.PercentageMultiplier

	// Stack-derived defaults need the tranche rates already converted.
	stack := d.DebtStack()
	if d.Assumptions.HorizonYears == 0 {
		d.Assumptions.HorizonYears = stack.MaxTenorYears()
	}
	d.normalizeCapacity(stack.BlendedRate(), stack.MaxTenorYears())
	d.normalizeValuation(stack.BlendedRate(), stack.TotalPrincipal())
	d.normalizeScenarios()

	d.normalized = true
	return nil
}

func (d *Deal) normalizeAssumptions() {
	a := &d.Assumptions
	a.RevenueGrowth /= constants.PercentageMultiplier
	a.COGSPct /= constants.PercentageMultiplier
	a.OpExPct /= constants.PercentageMultiplier
	a.WorkingCapitalPct /= constants.PercentageMultiplier
	a.CapexPct /= constants.PercentageMultiplier
	a.DepreciationPct /= constants.PercentageMultiplier
	a.TaxRate /= constants.PercentageMultiplier
	if a.DepreciationPct == 0 {
		a.DepreciationPct = a.CapexPct
	}
}

func (d *Deal) normalizeTranches() {
	for i := range d.Tranches {
		t := &d.Tranches[i]
		t.Rate /= constants.PercentageMultiplier
		t.BalloonPct /= constants.PercentageMultiplier
		if t.Mode == "" {
			t.Mode = string(amort.ModeAmortizing)
		}
		if t.DayCount == "" {
			t.DayCount = string(amort.DayCount30360)
		}
		if t.StartDate == "" {
			t.StartDate = d.ClosingDate
		}
		if t.Seniority == 0 {
			t.Seniority = i + 1
		}
	}
}

func (d *Deal) normalizeCapacity(blendedRate float64, maxTenor int) {
	c := &d.Capacity
	c.Rate /= constants.PercentageMultiplier
	c.SubordinatedSpread /= constants.PercentageMultiplier
	if c.TargetDSCR == 0 {
		if d.Covenants.MinDSCR > 0 {
			c.TargetDSCR = d.Covenants.MinDSCR
		} else {
			c.TargetDSCR = constants.DefaultTargetDSCR
		}
	}
	if c.SafetyBuffer == 0 {
		c.SafetyBuffer = constants.DefaultSafetyBuffer
	}
	if c.FloorDSCR == 0 {
		c.FloorDSCR = constants.DefaultFloorDSCR
	}
	if c.Rate == 0 {
		c.Rate = blendedRate
	}
	if c.TenorYears == 0 {
		c.TenorYears = maxTenor
	}
	if c.MaxTenorExtension == 0 {
		c.MaxTenorExtension = constants.DefaultMaxTenorExtension
	}
	if c.SubordinatedSpread == 0 {
		c.SubordinatedSpread = constants.DefaultSubordinatedSpread
	}
}

func (d *Deal) normalizeValuation(blendedRate, totalPrincipal float64) {
	v := &d.Valuation
	v.RiskFreeRate /= constants.PercentageMultiplier
	v.MarketRiskPremium /= constants.PercentageMultiplier
	v.CostOfDebt /= constants.PercentageMultiplier
	v.TaxRate /= constants.PercentageMultiplier
	v.DebtWeight /= constants.PercentageMultiplier
	v.EquityWeight /= constants.PercentageMultiplier
	v.TerminalGrowth /= constants.PercentageMultiplier
	v.WACCStep /= constants.PercentageMultiplier
	v.GrowthStep /= constants.PercentageMultiplier
	if v.TaxRate == 0 {
		v.TaxRate = d.Assumptions.TaxRate
	}
	if v.CostOfDebt == 0 {
		v.CostOfDebt = blendedRate
	}
	if v.DebtWeight == 0 && v.EquityWeight == 0 {
		v.DebtWeight = constants.DefaultDebtWeight
		v.EquityWeight = constants.DefaultEquityWeight
	}
	if v.OpeningNetDebt == 0 {
		v.OpeningNetDebt = totalPrincipal - d.Opening.Cash
	}
}

func (d *Deal) normalizeScenarios() {
	for i := range d.Scenarios {
		s := &d.Scenarios[i]
		s.RevenueShock /= constants.PercentageMultiplier
		s.COGSShock /= constants.PercentageMultiplier
		s.OpExShock /= constants.PercentageMultiplier
		s.RateShock /= constants.PercentageMultiplier
		s.WCShock /= constants.PercentageMultiplier
	}
	if len(d.Scenarios) == 0 {
		d.Scenarios = stress.DefaultScenarios()
	}
}
