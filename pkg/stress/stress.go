// Package stress re-runs the projection pipeline under named shock scenarios
// and grades each outcome: covenant compliance under stress, liquidity
// runway, refinancing risk on balloon maturities, and a composite risk score.
// Scenarios are declarative data; the runner is generic over any scenario
// table and evaluates the table in parallel, one independent pipeline run per
// scenario.
package stress

import (
	"fmt"
	"sync"

	"github.com/lenderkit/covsim/pkg/amort"
	"github.com/lenderkit/covsim/pkg/covenant"
	"github.com/lenderkit/covsim/pkg/mathutil"
	"github.com/lenderkit/covsim/pkg/projection"
	"go.uber.org/zap"
)

// maxCostPct caps shocked cost ratios; a scenario may squeeze margins but
// cannot push COGS or OpEx alone past 95% of revenue.
const maxCostPct = 0.95

// defaultWorkers is the pool size when the caller does not override it.
const defaultWorkers = 4

// Scenario is one named shock set. Shocks are additive deltas on the
// fractional drivers except RevenueShock, which scales base revenue
// (revenue × (1 + shock)). SeverityFactor scales the liquidity runway; 1.0
// (or zero, which normalizes to 1.0) is neutral and values below 1 shorten
// it. RefinancingStress marks take-out markets as shut for the scenario,
// worsening the refinancing classification one level.
type Scenario struct {
	Name              string
	Description       string
	RevenueShock      float64
	COGSShock         float64
	OpExShock         float64
	RateShock         float64
	WCShock           float64
	SeverityFactor    float64
	RefinancingStress bool
}

// DefaultScenarios is the standard lender stress table applied when a deal
// file configures none.
func DefaultScenarios() []Scenario {
	return []Scenario{
		{
			Name:        "Base",
			Description: "Base case, no shocks applied",
		},
		{
			Name:         "Revenue -10%",
			Description:  "Moderate demand contraction",
			RevenueShock: -0.10,
		},
		{
			Name:           "Revenue -25%",
			Description:    "Severe demand contraction",
			RevenueShock:   -0.25,
			SeverityFactor: 0.85,
		},
		{
			Name:        "Margin squeeze",
			Description: "Input costs up 5 points, overhead up 3 points",
			COGSShock:   0.05,
			OpExShock:   0.03,
		},
		{
			Name:        "Rate +300bps",
			Description: "Floating-rate reset across the stack",
			RateShock:   0.03,
		},
		{
			Name:              "Combined downside",
			Description:       "Demand, margin, rate and working-capital shocks together",
			RevenueShock:      -0.15,
			COGSShock:         0.03,
			RateShock:         0.02,
			WCShock:           0.02,
			SeverityFactor:    0.75,
			RefinancingStress: true,
		},
	}
}

// Inputs is the base deal state every scenario starts from. Nothing in it is
// mutated; each scenario derives shocked copies.
type Inputs struct {
	Assumptions projection.FinancialAssumptions
	Seed        projection.BalanceSheetSeed
	Stack       amort.DebtStack
	Covenants   covenant.CovenantSet
}

// Result is one scenario's outcome. Failed results carry only the scenario
// and the reason; their numeric fields are zero.
type Result struct {
	Scenario      Scenario
	Years         []projection.Year
	Stats         projection.CreditStats
	Covenants     covenant.Report
	RunwayMonths  float64
	Refinancing   RefinancingAssessment
	Score         RiskScore
	Failed        bool
	FailureReason string
}

// Runner evaluates scenario tables against a base deal.
type Runner struct {
	logger  *zap.Logger
	workers int
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers overrides the worker-pool size.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// NewRunner creates a stress runner.
func NewRunner(logger *zap.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{
		logger:  logger,
		workers: defaultWorkers,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunSuite evaluates every scenario against the base inputs and gathers the
// results by scenario name. Scenario runs are independent: each gets its own
// shocked copies of the assumptions and stack, and a failure in one run is
// flagged on that result without aborting the batch.
func (r *Runner) RunSuite(inputs Inputs, scenarios []Scenario, hist *HistoricalContext) (map[string]Result, error) {
	if len(scenarios) == 0 {
		return map[string]Result{}, nil
	}

	seen := make(map[string]bool, len(scenarios))
	for _, sc := range scenarios {
		if sc.Name == "" {
			return nil, fmt.Errorf("stress scenario with empty name")
		}
		if seen[sc.Name] {
			return nil, fmt.Errorf("duplicate stress scenario name %q", sc.Name)
		}
		seen[sc.Name] = true
	}

	jobs := make(chan Scenario, len(scenarios))
	results := make(chan Result, len(scenarios))

	workers := r.workers
	if len(scenarios) < workers {
		workers = len(scenarios)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sc := range jobs {
				results <- r.runScenario(inputs, sc, hist)
			}
		}()
	}

	for _, sc := range scenarios {
		jobs <- sc
	}
	close(jobs)

	wg.Wait()
	close(results)

	suite := make(map[string]Result, len(scenarios))
	for res := range results {
		suite[res.Scenario.Name] = res
	}

	r.logger.Debug(fmt.Sprintf("stress suite completed across %d scenarios", len(scenarios)),
		zap.String("op", "stress.RunSuite"),
	)

	return suite, nil
}

// runScenario executes the full pipeline for one scenario. A panic inside
// the pipeline is confined to this scenario's result.
func (r *Runner) runScenario(inputs Inputs, sc Scenario, hist *HistoricalContext) (result Result) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error(fmt.Sprintf("scenario %s panicked: %v", sc.Name, p),
				zap.String("op", "stress.runScenario"),
			)
			result = Result{Scenario: sc, Failed: true, FailureReason: fmt.Sprintf("%v", p)}
		}
	}()

	shockedAssumptions := applyScenario(inputs.Assumptions, sc)
	shockedStack := shockStack(inputs.Stack, sc.RateShock)

	schedules, aggregate, err := amort.NewBuilder(r.logger).BuildStack(shockedStack, shockedAssumptions.HorizonYears)
	if err != nil {
		return Result{Scenario: sc, Failed: true, FailureReason: err.Error()}
	}

	years, err := projection.Build(r.logger, shockedAssumptions, inputs.Seed, schedules, aggregate)
	if err != nil {
		return Result{Scenario: sc, Failed: true, FailureReason: err.Error()}
	}

	report := covenant.Evaluate(years, inputs.Covenants)
	stats := projection.ComputeStats(years)
	runway := liquidityRunway(years, inputs.Seed.OpeningCash, sc, hist)
	refinancing := assessRefinancing(shockedStack, years, stats, sc.RefinancingStress)

	return Result{
		Scenario:     sc,
		Years:        years,
		Stats:        stats,
		Covenants:    report,
		RunwayMonths: runway,
		Refinancing:  refinancing,
		Score:        compositeScore(report, stats, runway, hist),
	}
}

// applyScenario derives the shocked assumptions as a new value. Cost ratios
// are clamped to [0, maxCostPct], working capital to non-negative; a
// zero-shock scenario reproduces the base assumptions exactly.
func applyScenario(base projection.FinancialAssumptions, sc Scenario) projection.FinancialAssumptions {
	shocked := base
	shocked.BaseRevenue = base.BaseRevenue * (1.0 + sc.RevenueShock)
	shocked.COGSPct = mathutil.Clamp(base.COGSPct+sc.COGSShock, 0, maxCostPct)
	shocked.OpExPct = mathutil.Clamp(base.OpExPct+sc.OpExShock, 0, maxCostPct)
	shocked.WorkingCapitalPct = mathutil.Max(0, base.WorkingCapitalPct+sc.WCShock)
	return shocked
}

// shockStack applies a parallel rate shift to every tranche, flooring the
// shocked rate at zero. The input stack is never modified.
func shockStack(stack amort.DebtStack, rateShock float64) amort.DebtStack {
	if rateShock == 0 {
		return stack
	}
	shocked := amort.DebtStack{Tranches: make([]amort.DebtTranche, len(stack.Tranches))}
	for i, tranche := range stack.Tranches {
		tranche.Rate = mathutil.Max(0, tranche.Rate+rateShock)
		shocked.Tranches[i] = tranche
	}
	return shocked
}
