// Package report renders engine results as human-readable terminal output.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lenderkit/covsim/internal/engine"
	"github.com/lenderkit/covsim/pkg/covenant"
	"github.com/lenderkit/covsim/pkg/mathutil"
	"github.com/lenderkit/covsim/pkg/projection"
	"github.com/lenderkit/covsim/pkg/stress"
	"github.com/lenderkit/covsim/pkg/valuation"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs the full credit analysis as a human-readable report.
func PrettyFormat(result *engine.RunResult) {
	fmt.Print(PrettyString(result))
}

// PrettyString renders the full report: projection table, amortization
// schedules, covenant report, capacity sizing with alternatives, the stress
// suite, and the valuation.
func PrettyString(result *engine.RunResult) string {
	if result == nil {
		return ""
	}
	p := message.NewPrinter(language.English)
	var b strings.Builder

	fmt.Fprintf(&b, "--- Credit analysis for %s (%s, closing %s) ---\n",
		result.Deal, result.Currency, result.ClosingDate)

	writeProjection(&b, p, result.Projection.Years)
	writeSchedules(&b, p, result)
	writeCovenants(&b, result.Projection.Covenants)
	writeCapacity(&b, p, result.Capacity)
	writeStress(&b, result.Stress)
	writeValuation(&b, p, result.Valuation)

	return b.String()
}

func writeProjection(b *strings.Builder, p *message.Printer, years []projection.Year) {
	fmt.Fprintf(b, "\nProjection\n")
	fmt.Fprintf(b, "Year | Revenue | EBITDA | CFADS | Debt Service | FCF | DSCR | ICR | Leverage | LTV\n")
	fmt.Fprintf(b, "____ | _______ | ______ | _____ | ____________ | ___ | ____ | ___ | ________ | ___\n")
	for _, y := range years {
		fmt.Fprintf(b, "%4d | %s | %s | %s | %s | %s | %s | %s | %s | %s\n",
			y.Year, money(p, y.Revenue), money(p, y.EBITDA), money(p, y.CFADS),
			money(p, y.DebtService), money(p, y.FreeCashFlow),
			ratio(y.DSCR), ratio(y.ICR), ratio(y.Leverage), percent(y.LTV))
	}
}

func writeSchedules(b *strings.Builder, p *message.Printer, result *engine.RunResult) {
	for _, s := range result.Projection.Schedules {
		if s.Maturity != "" {
			fmt.Fprintf(b, "\nAmortization: %s (matures %s)\n", s.TrancheName, s.Maturity)
		} else {
			fmt.Fprintf(b, "\nAmortization: %s\n", s.TrancheName)
		}
		fmt.Fprintf(b, "Year | Opening | Interest | Principal | Service | Closing\n")
		fmt.Fprintf(b, "____ | _______ | ________ | _________ | _______ | _______\n")
		for _, period := range s.Periods {
			fmt.Fprintf(b, "%4d | %s | %s | %s | %s | %s\n",
				period.Year, money(p, period.BeginningBalance), money(p, period.Interest),
				money(p, period.Principal), money(p, period.DebtService), money(p, period.EndingBalance))
		}
	}
}

func writeCovenants(b *strings.Builder, report covenant.Report) {
	fmt.Fprintf(b, "\nCovenants (%d years evaluated)\n", report.YearsEvaluated)
	if report.Compliant {
		fmt.Fprintf(b, "Status: COMPLIANT (%d marginal)\n", len(report.Marginal))
	} else {
		fmt.Fprintf(b, "Status: BREACH (%d breaches, %d marginal)\n",
			report.BreachCount(), len(report.Marginal))
	}
	for _, breach := range report.Breaches {
		fmt.Fprintf(b, "Year %d: %s %.2f vs %s %.2f (cushion %+.2f)\n",
			breach.Year, breach.Covenant, breach.Actual, breach.Direction, breach.Threshold, breach.Cushion)
	}
	for _, marginal := range report.Marginal {
		fmt.Fprintf(b, "Year %d: %s %.2f is marginal against %s %.2f\n",
			marginal.Year, marginal.Covenant, marginal.Actual, marginal.Direction, marginal.Threshold)
	}
}

func writeCapacity(b *strings.Builder, p *message.Printer, result engine.CapacityResult) {
	analysis := result.Analysis
	fmt.Fprintf(b, "\nDebt capacity (EBITDA %s)\n", money(p, analysis.EBITDA))
	fmt.Fprintf(b, "Max sustainable : %s\n", money(p, analysis.MaxSustainableDebt))
	fmt.Fprintf(b, "Safe (buffered) : %s\n", money(p, analysis.SafeDebt))
	fmt.Fprintf(b, "Aggressive      : %s\n", money(p, analysis.AggressiveDebt))
	fmt.Fprintf(b, "Requested       : %s (%.1f%% of max, implied DSCR %.2fx)\n",
		money(p, analysis.RequestedDebt), analysis.UtilizationPct, analysis.ImpliedDSCR)
	if analysis.AvailableCapacity < 0 {
		fmt.Fprintf(b, "Excess debt     : %s\n", money(p, -analysis.AvailableCapacity))
	} else {
		fmt.Fprintf(b, "Headroom        : %s\n", money(p, analysis.AvailableCapacity))
	}
	fmt.Fprintf(b, "Recommendation  : %s (risk %s)\n", analysis.Recommendation, analysis.RiskLevel)

	if len(result.Alternatives) == 0 {
		return
	}
	fmt.Fprintf(b, "\nAlternative structures\n")
	fmt.Fprintf(b, "Structure | Total | Senior | Subordinated | Tenor | Rate | Service | DSCR\n")
	fmt.Fprintf(b, "_________ | _____ | ______ | ____________ | _____ | ____ | _______ | ____\n")
	for _, alt := range result.Alternatives {
		fmt.Fprintf(b, "%s | %s | %s | %s | %dy | %.2f%% | %s | %.2fx\n",
			alt.Name, money(p, alt.TotalDebt), money(p, alt.SeniorDebt), money(p, alt.SubordinatedDebt),
			alt.TenorYears, alt.BlendedRate*100, money(p, alt.AnnualDebtService), alt.ImpliedDSCR)
	}
}

func writeStress(b *strings.Builder, suite map[string]stress.Result) {
	if len(suite) == 0 {
		return
	}
	fmt.Fprintf(b, "\nStress scenarios\n")
	fmt.Fprintf(b, "Scenario | Breaches | Min DSCR | Runway | Refinancing | Score | Risk\n")
	fmt.Fprintf(b, "________ | ________ | ________ | ______ | ___________ | _____ | ____\n")
	for _, name := range sortedScenarioNames(suite) {
		res := suite[name]
		if res.Failed {
			fmt.Fprintf(b, "%s | failed: %s\n", name, res.FailureReason)
			continue
		}
		refinancing := "n/a"
		if res.Refinancing.Applicable {
			refinancing = fmt.Sprintf("%s (%.0f%% covered)", res.Refinancing.Risk, res.Refinancing.Coverage*100)
		}
		fmt.Fprintf(b, "%s | %d | %s | %.1f mo | %s | %.1f | %s\n",
			name, res.Covenants.BreachCount(), ratio(res.Stats.MinDSCR),
			res.RunwayMonths, refinancing, res.Score.Total, res.Score.Level)
	}
}

func writeValuation(b *strings.Builder, p *message.Printer, result valuation.Result) {
	fmt.Fprintf(b, "\nValuation\n")
	fmt.Fprintf(b, "Cost of equity   : %.2f%% (WACC %.2f%%, after-tax debt %.2f%%)\n",
		result.CostOfEquity*100, result.WACC*100, result.AfterTaxCostOfDebt*100)
	fmt.Fprintf(b, "Enterprise value : %s\n", money(p, result.EnterpriseValue))
	fmt.Fprintf(b, "Net debt         : %s\n", money(p, result.OpeningNetDebt))
	fmt.Fprintf(b, "Equity value     : %s\n", money(p, result.EquityValue))
	fmt.Fprintf(b, "Equity IRR       : %s   MOIC: %s\n", percent(result.IRR), ratio(result.MOIC))

	grid := result.Sensitivity
	if len(grid.WACCAxis) == 0 {
		return
	}
	fmt.Fprintf(b, "\nEquity value sensitivity (WACC rows, terminal growth columns)\n")
	fmt.Fprintf(b, "%12s", "")
	for _, growth := range grid.GrowthAxis {
		fmt.Fprintf(b, " | g=%.2f%%", growth*100)
	}
	fmt.Fprintf(b, "\n")
	for i, wacc := range grid.WACCAxis {
		fmt.Fprintf(b, "WACC %6.2f%%", wacc*100)
		for _, value := range grid.EquityValues[i] {
			fmt.Fprintf(b, " | %s", money(p, value))
		}
		fmt.Fprintf(b, "\n")
	}
}

// sortedScenarioNames returns the suite's keys in lexical order so the table
// is stable run to run.
func sortedScenarioNames(suite map[string]stress.Result) []string {
	names := make([]string, 0, len(suite))
	for name := range suite {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// money renders a currency amount with locale thousands grouping.
func money(p *message.Printer, v float64) string {
	return p.Sprintf("%.0f", mathutil.Round(v))
}

// ratio renders a credit ratio, or the not-applicable sentinel.
func ratio(r projection.Ratio) string {
	if !r.OK {
		return "n/a"
	}
	return fmt.Sprintf("%.2fx", r.Value)
}

// percent renders a fractional ratio as a percentage, or the not-applicable
// sentinel.
func percent(r projection.Ratio) string {
	if !r.OK {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", r.Value*100)
}
