package report

import (
	"fmt"
	"strings"

	"github.com/lenderkit/covsim/internal/engine"
	"github.com/lenderkit/covsim/pkg/stress"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// SummaryFormat outputs the condensed single-screen verdict.
func SummaryFormat(result *engine.RunResult) {
	fmt.Print(SummaryString(result))
}

// SummaryString renders one headline line per pipeline stage: covenant
// status, capacity verdict, the worst stress scenario, and the valuation.
func SummaryString(result *engine.RunResult) string {
	if result == nil {
		return ""
	}
	p := message.NewPrinter(language.English)
	var b strings.Builder

	fmt.Fprintf(&b, "Deal: %s (%s, closing %s)\n", result.Deal, result.Currency, result.ClosingDate)

	report := result.Projection.Covenants
	if report.Compliant {
		fmt.Fprintf(&b, "Covenants: COMPLIANT over %d years (%d marginal)\n",
			report.YearsEvaluated, len(report.Marginal))
	} else if worst, ok := report.WorstBreach(); ok {
		fmt.Fprintf(&b, "Covenants: BREACH, %d records, worst %s %.2f vs %s %.2f in year %d\n",
			report.BreachCount(), worst.Covenant, worst.Actual, worst.Direction, worst.Threshold, worst.Year)
	}

	analysis := result.Capacity.Analysis
	fmt.Fprintf(&b, "Capacity: %s, requested %s against %s max (%.1f%% used)\n",
		analysis.Recommendation, money(p, analysis.RequestedDebt),
		money(p, analysis.MaxSustainableDebt), analysis.UtilizationPct)

	if name, worst, ok := worstScenario(result.Stress); ok {
		fmt.Fprintf(&b, "Stress: worst scenario %q at %s (score %.1f, runway %.1f mo)\n",
			name, worst.Score.Level, worst.Score.Total, worst.RunwayMonths)
	}

	valuationResult := result.Valuation
	fmt.Fprintf(&b, "Valuation: equity %s at WACC %.2f%% (IRR %s, MOIC %s)\n",
		money(p, valuationResult.EquityValue), valuationResult.WACC*100,
		percent(valuationResult.IRR), ratio(valuationResult.MOIC))

	return b.String()
}

// worstScenario picks the highest-scoring non-failed scenario, breaking
// score ties lexically so the summary is stable run to run.
func worstScenario(suite map[string]stress.Result) (string, stress.Result, bool) {
	var (
		worstName string
		worst     stress.Result
		found     bool
	)
	for _, name := range sortedScenarioNames(suite) {
		res := suite[name]
		if res.Failed {
			continue
		}
		if !found || res.Score.Total > worst.Score.Total {
			worstName, worst, found = name, res, true
		}
	}
	return worstName, worst, found
}
