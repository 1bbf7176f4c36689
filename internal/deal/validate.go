package deal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lenderkit/covsim/pkg/amort"
	"github.com/lenderkit/covsim/pkg/constants"
	"github.com/lenderkit/covsim/pkg/fincalc"
	"github.com/lenderkit/covsim/pkg/mathutil"
	"github.com/lenderkit/covsim/pkg/validation"
)

// FieldError is one blocking validation failure tied to a deal-file field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationResult separates blocking errors from advisory warnings. Errors
// stop a run; warnings are logged and carried alongside the results.
type ValidationResult struct {
	Errors   []FieldError
	Warnings []string
}

// Valid reports whether the deal can run.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Validate checks a normalized deal. Structural rules come from the struct's
// validator tags; cross-field rules and advisory warnings are applied on
// top. Call Normalize first so percentages are in engine fractions.
func (d *Deal) Validate() ValidationResult {
	var result ValidationResult

	validate := validator.New()
	if err := validate.Struct(d); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			for _, fe := range fieldErrors {
				result.Errors = append(result.Errors, FieldError{
					Field:   strings.TrimPrefix(fe.Namespace(), "Deal."),
					Message: ruleMessage(fe),
				})
			}
		} else {
			result.Errors = append(result.Errors, FieldError{Field: "Deal", Message: err.Error()})
		}
	}

	d.checkOperatingModel(&result)
	d.checkTranches(&result)
	d.checkDating(&result)
	d.checkCapacity(&result)
	d.checkValuation(&result)
	d.checkScenarios(&result)
	d.checkHistorical(&result)

	return result
}

func ruleMessage(fe validator.FieldError) string {
	rule := fe.Tag()
	if fe.Param() != "" {
		rule += "=" + fe.Param()
	}
	return fmt.Sprintf("value %v violates rule %s", fe.Value(), rule)
}

func (d *Deal) checkOperatingModel(result *ValidationResult) {
	a := d.Assumptions
	costShare := a.COGSPct + a.OpExPct
	if costShare >= 1.0 {
		result.Errors = append(result.Errors, FieldError{
			Field: "Assumptions",
			Message: fmt.Sprintf("combined COGS and OpEx of %.0f%% of revenue leaves no operating margin",
				costShare*constants.PercentageMultiplier),
		})
		return
	}

	margin := 1.0 - costShare
	if margin < 0.05 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("EBITDA margin of %.1f%% leaves little room for underperformance", margin*constants.PercentageMultiplier))
	}
	if margin > 0.60 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("EBITDA margin of %.0f%% is unusually high; confirm the cost assumptions", margin*constants.PercentageMultiplier))
	}
	if a.RevenueGrowth > 0.50 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("revenue growth of %.0f%% per year is rarely sustained over a full tenor", a.RevenueGrowth*constants.PercentageMultiplier))
	}
}

func (d *Deal) checkTranches(result *ValidationResult) {
	seen := make(map[string]bool)
	for i, t := range d.Tranches {
		if seen[t.Name] {
			result.Errors = append(result.Errors, FieldError{
				Field:   fmt.Sprintf("Tranches[%d].Name", i),
				Message: fmt.Sprintf("duplicate tranche name %q", t.Name),
			})
		}
		seen[t.Name] = true

		if t.TenorYears > 0 && t.InterestOnlyYears >= t.TenorYears {
			result.Errors = append(result.Errors, FieldError{
				Field: fmt.Sprintf("Tranches[%d].InterestOnlyYears", i),
				Message: fmt.Sprintf("interest-only period of %d years must be shorter than the %d-year tenor",
					t.InterestOnlyYears, t.TenorYears),
			})
		}

		if t.StartDate != "" {
			if _, err := time.Parse(DateTimeLayout, t.StartDate); err != nil {
				result.Errors = append(result.Errors, FieldError{
					Field:   fmt.Sprintf("Tranches[%d].StartDate", i),
					Message: fmt.Sprintf("invalid start date %q, expected %s", t.StartDate, DateTimeLayout),
				})
			}
		}

		d.checkBalloon(t, result)
		d.checkCustomProfile(i, t, result)
	}
}

func (d *Deal) checkBalloon(t Tranche, result *ValidationResult) {
	balloonMode := t.Mode == string(amort.ModeBalloon)
	switch {
	case t.BalloonPct > 0 && !(balloonMode && t.BalloonEnabled):
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("tranche %q sets a balloon percentage but balloon repayment is not enabled; it will be ignored", t.Name))
	case balloonMode && t.BalloonEnabled && t.BalloonPct == 0:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("tranche %q enables balloon repayment with a zero balloon percentage; it amortizes as a plain annuity", t.Name))
	case balloonMode && t.BalloonEnabled && t.BalloonPct > constants.BalloonWarningPct:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("tranche %q defers %.0f%% of principal to maturity; balloons above %.0f%% concentrate refinancing risk",
				t.Name, t.BalloonPct*constants.PercentageMultiplier,
				constants.BalloonWarningPct*constants.PercentageMultiplier))
	}
}

func (d *Deal) checkCustomProfile(i int, t Tranche, result *ValidationResult) {
	if t.Mode != string(amort.ModeCustom) {
		return
	}
	if len(t.CustomIntervals) != amort.CustomBucketCount {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("tranche %q needs %d custom amortization buckets, got %d; annuity amortization will be used",
				t.Name, amort.CustomBucketCount, len(t.CustomIntervals)))
		return
	}
	var sum float64
	for bucket, pct := range t.CustomIntervals {
		if pct < 0 {
			result.Errors = append(result.Errors, FieldError{
				Field:   fmt.Sprintf("Tranches[%d].CustomIntervals", i),
				Message: fmt.Sprintf("custom amortization bucket %d is %.1f%%; buckets must be non-negative", bucket+1, pct),
			})
		}
		sum += pct
	}
	if !mathutil.WithinTolerance(sum, 100.0, 1.0) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("tranche %q custom amortization buckets sum to %.1f%%; the schedule still repays exactly 100%% of principal",
				t.Name, sum))
	}
}

func (d *Deal) checkDating(result *ValidationResult) {
	terms := make([]validation.TrancheTerms, 0, len(d.Tranches))
	for _, t := range d.Tranches {
		terms = append(terms, validation.TrancheTerms{
			Name:       t.Name,
			StartDate:  t.StartDate,
			TenorYears: t.TenorYears,
		})
	}

	dealValidator := validation.DealValidator{
		ClosingDate:  d.ClosingDate,
		HorizonYears: d.Assumptions.HorizonYears,
		Tranches:     terms,
	}
	result.Warnings = append(result.Warnings, dealValidator.ValidateAll()...)
}

func (d *Deal) checkCapacity(result *ValidationResult) {
	c := d.Capacity
	if c.FloorDSCR > 0 && c.TargetDSCR > 0 && c.FloorDSCR > c.TargetDSCR {
		result.Errors = append(result.Errors, FieldError{
			Field:   "Capacity.FloorDSCR",
			Message: fmt.Sprintf("floor DSCR of %.2fx exceeds the target DSCR of %.2fx", c.FloorDSCR, c.TargetDSCR),
		})
	}
	if c.TargetDSCR > 0 && c.TargetDSCR < 1.0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("target DSCR of %.2fx is below break-even coverage", c.TargetDSCR))
	}
}

func (d *Deal) checkValuation(result *ValidationResult) {
	v := d.Valuation
	weightSum := v.DebtWeight + v.EquityWeight
	if !mathutil.WithinTolerance(weightSum, 1.0, 1e-6) {
		result.Errors = append(result.Errors, FieldError{
			Field: "Valuation.DebtWeight",
			Message: fmt.Sprintf("capital-structure weights must sum to 100%%, got %.1f%%",
				weightSum*constants.PercentageMultiplier),
		})
		return
	}

	costOfEquity := fincalc.CostOfEquityCAPM(v.RiskFreeRate, v.Beta, v.MarketRiskPremium)
	wacc := fincalc.WACC(v.CostOfDebt, v.TaxRate, v.DebtWeight, costOfEquity, v.EquityWeight)
	if wacc <= 0 {
		result.Errors = append(result.Errors, FieldError{
			Field:   "Valuation",
			Message: fmt.Sprintf("discount rate must be positive, computed WACC is %.2f%%", wacc*constants.PercentageMultiplier),
		})
		return
	}
	if v.ExitMultiple == 0 && wacc <= v.TerminalGrowth {
		result.Errors = append(result.Errors, FieldError{
			Field: "Valuation.TerminalGrowth",
			Message: fmt.Sprintf("terminal growth of %.2f%% must stay below the WACC of %.2f%% for a perpetuity terminal value",
				v.TerminalGrowth*constants.PercentageMultiplier, wacc*constants.PercentageMultiplier),
		})
	}
}

func (d *Deal) checkScenarios(result *ValidationResult) {
	seen := make(map[string]bool)
	for i, s := range d.Scenarios {
		if s.Name == "" {
			result.Errors = append(result.Errors, FieldError{
				Field:   fmt.Sprintf("Scenarios[%d].Name", i),
				Message: "scenario name is required",
			})
			continue
		}
		if seen[s.Name] {
			result.Errors = append(result.Errors, FieldError{
				Field:   fmt.Sprintf("Scenarios[%d].Name", i),
				Message: fmt.Sprintf("duplicate scenario name %q", s.Name),
			})
		}
		seen[s.Name] = true

		if s.RevenueShock < -1.0 {
			result.Errors = append(result.Errors, FieldError{
				Field: fmt.Sprintf("Scenarios[%d].RevenueShock", i),
				Message: fmt.Sprintf("revenue shock of %.0f%% removes more than all revenue",
					s.RevenueShock*constants.PercentageMultiplier),
			})
		}
	}
}

func (d *Deal) checkHistorical(result *ValidationResult) {
	hist := d.HistoricalContext()
	if hist == nil || len(hist.AnnualCashFlows) < 2 {
		return
	}
	if hist.BurnVolatilityMultiplier() >= constants.BurnVolatilityCap {
		result.Warnings = append(result.Warnings,
			"historical cash flows are highly volatile; stressed runway estimates will be discounted accordingly")
	}
}
