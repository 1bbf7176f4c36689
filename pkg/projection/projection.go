// Package projection builds the annual income-statement, cash-flow, and
// balance-sheet series that every downstream credit component consumes.
// Nothing downstream re-derives revenue or EBITDA; this package is the single
// source of truth for the projected financials.
package projection

import (
	"fmt"
	"math"

	"github.com/lenderkit/covsim/pkg/amort"
	"github.com/lenderkit/covsim/pkg/mathutil"
	"go.uber.org/zap"
)

// FinancialAssumptions drives the projection. Percentages are fractional and
// immutable per run; scenario shocks construct a new value rather than
// mutating one in place.
type FinancialAssumptions struct {
	BaseRevenue       float64
	RevenueGrowth     float64
	COGSPct           float64
	OpExPct           float64
	WorkingCapitalPct float64
	CapexPct          float64
	DepreciationPct   float64
	TaxRate           float64
	CollateralValue   float64
	HorizonYears      int
}

// BalanceSheetSeed is the opening balance-sheet position.
type BalanceSheetSeed struct {
	OpeningCash           float64
	OpeningWorkingCapital float64
	OpeningPPE            float64
}

// Ratio is a credit ratio with an explicit applicability flag. OK is false
// when the ratio is undefined for the year (no debt service, no interest, no
// collateral); callers must treat such years as "not applicable" rather than
// reading Value.
type Ratio struct {
	Value float64
	OK    bool
}

// TrancheYear is one tranche's contribution to a projection year.
type TrancheYear struct {
	Name          string
	Interest      float64
	Principal     float64
	EndingBalance float64
}

// Year is one fully-derived projection year. Produced once per run and never
// mutated afterwards.
type Year struct {
	Year int

	Revenue     float64
	COGS        float64
	GrossProfit float64
	OpEx        float64
	EBITDA      float64
	DandA       float64
	EBIT        float64
	Interest    float64
	Tax         float64
	NetIncome   float64

	Capex               float64
	WorkingCapital      float64
	WorkingCapitalDelta float64
	// CFADS is operating cash flow before debt service:
	// EBITDA - capex - ΔWC - tax.
	CFADS         float64
	PrincipalPaid float64
	DebtService   float64
	FreeCashFlow  float64

	DebtBalance float64
	CashBalance float64
	PPE         float64
	NetDebt     float64

	Tranches []TrancheYear

	DSCR     Ratio
	ICR      Ratio
	Leverage Ratio
	LTV      Ratio
}

// DebtBearing reports whether the year carries debt for covenant purposes.
func (y Year) DebtBearing() bool {
	return mathutil.IsPositive(y.DebtBalance) || mathutil.IsPositive(y.DebtService)
}

// Build derives the full projection series. The debt series comes from
// amort.Aggregate; the per-tranche schedules are carried through so reports
// can show each layer's interest, principal, and balance by year.
func Build(logger *zap.Logger, assumptions FinancialAssumptions, seed BalanceSheetSeed,
	schedules []amort.Schedule, debt []amort.AggregateYear) ([]Year, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if assumptions.HorizonYears <= 0 {
		return nil, fmt.Errorf("projection horizon must be positive, got %d", assumptions.HorizonYears)
	}

	years := make([]Year, 0, assumptions.HorizonYears)
	revenue := assumptions.BaseRevenue
	priorWC := seed.OpeningWorkingCapital
	cash := seed.OpeningCash
	ppe := seed.OpeningPPE

	for index := 1; index <= assumptions.HorizonYears; index++ {
		if index > 1 {
			revenue *= 1 + assumptions.RevenueGrowth
		}

		cogs := revenue * assumptions.COGSPct
		grossProfit := revenue - cogs
		opex := revenue * assumptions.OpExPct
		ebitda := grossProfit - opex
		da := revenue * assumptions.DepreciationPct
		ebit := ebitda - da

		var debtYear amort.AggregateYear
		if index-1 < len(debt) {
			debtYear = debt[index-1]
		}

		ebt := ebit - debtYear.Interest
		tax := math.Max(0, ebt*assumptions.TaxRate)
		netIncome := ebt - tax

		capex := revenue * assumptions.CapexPct
		wc := revenue * assumptions.WorkingCapitalPct
		wcDelta := wc - priorWC
		cfads := ebitda - capex - wcDelta - tax
		fcf := cfads - debtYear.TotalDebtService
		cash += fcf
		ppe += capex - da

		year := Year{
			Year:                index,
			Revenue:             revenue,
			COGS:                cogs,
			GrossProfit:         grossProfit,
			OpEx:                opex,
			EBITDA:              ebitda,
			DandA:               da,
			EBIT:                ebit,
			Interest:            debtYear.Interest,
			Tax:                 tax,
			NetIncome:           netIncome,
			Capex:               capex,
			WorkingCapital:      wc,
			WorkingCapitalDelta: wcDelta,
			CFADS:               cfads,
			PrincipalPaid:       debtYear.Principal,
			DebtService:         debtYear.TotalDebtService,
			FreeCashFlow:        fcf,
			DebtBalance:         debtYear.EndingBalance,
			CashBalance:         cash,
			PPE:                 ppe,
			NetDebt:             debtYear.EndingBalance - cash,
			Tranches:            trancheRows(schedules, index),
		}
		year.DSCR, year.ICR, year.Leverage, year.LTV = deriveRatios(year, assumptions.CollateralValue)

		years = append(years, year)
		priorWC = wc
	}

	logger.Debug(fmt.Sprintf("built %d-year projection", len(years)),
		zap.String("op", "projection.Build"),
		zap.Float64("yearOneEBITDA", years[0].EBITDA),
		zap.Float64("endingCash", years[len(years)-1].CashBalance),
	)

	return years, nil
}

// deriveRatios computes the year's credit ratios, returning the explicit
// not-applicable sentinel instead of dividing by zero.
func deriveRatios(y Year, collateralValue float64) (dscr, icr, leverage, ltv Ratio) {
	if mathutil.IsPositive(y.DebtService) {
		dscr = Ratio{Value: y.CFADS / y.DebtService, OK: true}
	}
	if mathutil.IsPositive(y.Interest) {
		icr = Ratio{Value: y.EBITDA / y.Interest, OK: true}
	}
	if mathutil.IsPositive(y.DebtBalance) && mathutil.IsPositive(y.EBITDA) {
		leverage = Ratio{Value: y.NetDebt / y.EBITDA, OK: true}
	}
	if mathutil.IsPositive(y.DebtBalance) && collateralValue > 0 {
		ltv = Ratio{Value: y.DebtBalance / collateralValue, OK: true}
	}
	return dscr, icr, leverage, ltv
}

func trancheRows(schedules []amort.Schedule, year int) []TrancheYear {
	if len(schedules) == 0 {
		return nil
	}
	rows := make([]TrancheYear, 0, len(schedules))
	for _, s := range schedules {
		if year-1 >= len(s.Periods) {
			continue
		}
		p := s.Periods[year-1]
		rows = append(rows, TrancheYear{
			Name:          s.TrancheName,
			Interest:      p.Interest,
			Principal:     p.Principal,
			EndingBalance: p.EndingBalance,
		})
	}
	return rows
}
