package amort

import (
	"math"
	"testing"
)

func TestEffectiveRate(t *testing.T) {
	tests := []struct {
		name     string
		rate     float64
		dayCount DayCount
		expected float64
	}{
		{"30/360 unchanged", 0.10, DayCount30360, 0.10},
		{"Actual/365 unchanged", 0.10, DayCountActual365, 0.10},
		{"Actual/360 scaled up", 0.09, DayCountActual360, 0.09 * 365.0 / 360.0},
		{"Empty convention unchanged", 0.10, "", 0.10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tranche := DebtTranche{Rate: tt.rate, DayCount: tt.dayCount}
			result := tranche.EffectiveRate()
			if math.Abs(result-tt.expected) > 1e-12 {
				t.Errorf("EffectiveRate() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestBalloonAmountGating(t *testing.T) {
	tests := []struct {
		name     string
		mode     AmortizationMode
		pct      float64
		enabled  bool
		expected float64
	}{
		{"Balloon mode with flag", ModeBalloon, 0.40, true, 4000000},
		{"Balloon mode without flag", ModeBalloon, 0.40, false, 0},
		{"Percentage set but amortizing mode", ModeAmortizing, 0.40, true, 0},
		{"Balloon mode zero percentage", ModeBalloon, 0.0, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tranche := DebtTranche{
				Principal:      10000000,
				Mode:           tt.mode,
				BalloonPct:     tt.pct,
				BalloonEnabled: tt.enabled,
			}
			result := tranche.BalloonAmount()
			if math.Abs(result-tt.expected) > 0.01 {
				t.Errorf("BalloonAmount() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestMaturityDate(t *testing.T) {
	tranche := DebtTranche{StartDate: "2026-03", TenorYears: 5}
	maturity, err := tranche.MaturityDate()
	if err != nil {
		t.Fatalf("MaturityDate() returned error: %v", err)
	}
	if maturity != "2031-03" {
		t.Errorf("MaturityDate() = %v, expected 2031-03", maturity)
	}
}

func TestStackTotals(t *testing.T) {
	stack := DebtStack{Tranches: []DebtTranche{
		{Name: "senior", Principal: 6000000, Rate: 0.08, TenorYears: 3},
		{Name: "mezzanine", Principal: 4000000, Rate: 0.12, TenorYears: 5},
	}}

	if got := stack.TotalPrincipal(); math.Abs(got-10000000) > 0.01 {
		t.Errorf("TotalPrincipal() = %v, expected 10000000", got)
	}
	if got := stack.MaxTenorYears(); got != 5 {
		t.Errorf("MaxTenorYears() = %v, expected 5", got)
	}
	if got := stack.BlendedRate(); math.Abs(got-0.096) > 1e-9 {
		t.Errorf("BlendedRate() = %v, expected 0.096", got)
	}
}

func TestBlendedRateEmptyStack(t *testing.T) {
	if got := (DebtStack{}).BlendedRate(); got != 0 {
		t.Errorf("BlendedRate() of empty stack = %v, expected 0", got)
	}
}

func TestBalloonSchedule(t *testing.T) {
	stack := DebtStack{Tranches: []DebtTranche{
		{Name: "a", Principal: 10000000, Mode: ModeBalloon, BalloonPct: 0.40, BalloonEnabled: true, TenorYears: 5},
		{Name: "b", Principal: 5000000, Mode: ModeBalloon, BalloonPct: 0.20, BalloonEnabled: true, TenorYears: 5},
		{Name: "c", Principal: 3000000, Mode: ModeAmortizing, TenorYears: 4},
	}}

	balloons := stack.BalloonSchedule()
	if len(balloons) != 1 {
		t.Fatalf("BalloonSchedule() has %d years, expected 1", len(balloons))
	}
	if math.Abs(balloons[5]-5000000) > 0.01 {
		t.Errorf("balloon due year 5 = %v, expected 5000000", balloons[5])
	}
}
