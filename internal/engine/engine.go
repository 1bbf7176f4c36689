// Package engine is the façade over the credit-analysis pipeline. It runs
// amortization, projection, covenant evaluation, capacity sizing, stress
// testing, and valuation in dependency order against one deal, and owns no
// state beyond an optional memoization slot; every run is a pure function of
// the deal inputs.
package engine

import (
	"fmt"
	"sync"

	"github.com/lenderkit/covsim/internal/deal"
	"github.com/lenderkit/covsim/pkg/amort"
	"github.com/lenderkit/covsim/pkg/capacity"
	"github.com/lenderkit/covsim/pkg/covenant"
	"github.com/lenderkit/covsim/pkg/projection"
	"github.com/lenderkit/covsim/pkg/stress"
	"github.com/lenderkit/covsim/pkg/valuation"
	"go.uber.org/zap"
)

// ProjectionResult bundles one projection run: the annual series, the
// per-tranche schedules behind it, summary credit statistics, and the
// covenant report.
type ProjectionResult struct {
	Years     []projection.Year
	Schedules []amort.Schedule
	Stats     projection.CreditStats
	Covenants covenant.Report
}

// CapacityResult pairs the sizing outcome with the alternative structures.
type CapacityResult struct {
	Analysis     capacity.Result
	Alternatives []capacity.Alternative
}

// RunResult is the full pipeline output for one deal.
type RunResult struct {
	Deal        string
	Currency    string
	ClosingDate string
	Projection  ProjectionResult
	Capacity    CapacityResult
	Stress      map[string]stress.Result
	Valuation   valuation.Result
}

// Event notifies a subscriber that a run completed. Cached marks results
// served from the memoization slot rather than recomputed.
type Event struct {
	Deal   string
	Cached bool
	Result *RunResult
}

// Subscriber receives an Event after each successful Run. Registration is
// explicit per Engine; there is no global broadcast.
type Subscriber func(Event)

// Engine executes the pipeline. Safe for concurrent use; the memoization
// slot is the only shared state and it is guarded.
type Engine struct {
	logger     *zap.Logger
	memoize    bool
	subscriber Subscriber

	mu      sync.Mutex
	lastKey string
	lastRun *RunResult
}

// Option configures an Engine.
type Option func(*Engine)

// WithMemoization enables the single-slot result cache: a Run whose inputs
// hash identically to the previous run returns the cached result instead of
// recomputing. Any input change invalidates the slot.
func WithMemoization() Option {
	return func(e *Engine) {
		e.memoize = true
	}
}

// WithSubscriber registers fn to be invoked after each successful Run.
func WithSubscriber(fn Subscriber) Option {
	return func(e *Engine) {
		e.subscriber = fn
	}
}

// New creates an Engine.
func New(logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunProjection builds the debt schedules, derives the annual projection,
// and evaluates the covenant package against it.
func (e *Engine) RunProjection(assumptions projection.FinancialAssumptions, seed projection.BalanceSheetSeed,
	stack amort.DebtStack, covenants covenant.CovenantSet) (ProjectionResult, error) {

	schedules, aggregate, err := amort.NewBuilder(e.logger).BuildStack(stack, assumptions.HorizonYears)
	if err != nil {
		return ProjectionResult{}, fmt.Errorf("building debt schedules: %w", err)
	}

	years, err := projection.Build(e.logger, assumptions, seed, schedules, aggregate)
	if err != nil {
		return ProjectionResult{}, fmt.Errorf("building projection: %w", err)
	}

	return ProjectionResult{
		Years:     years,
		Schedules: schedules,
		Stats:     projection.ComputeStats(years),
		Covenants: covenant.Evaluate(years, covenants),
	}, nil
}

// RunScenario is the scenario-shocked projection variant: the shock set is
// applied to the base inputs and the same pipeline runs, returning the
// scenario's full stress result.
func (e *Engine) RunScenario(assumptions projection.FinancialAssumptions, seed projection.BalanceSheetSeed,
	stack amort.DebtStack, covenants covenant.CovenantSet, sc stress.Scenario,
	hist *stress.HistoricalContext) (stress.Result, error) {

	suite, err := e.RunStressSuite(assumptions, seed, stack, covenants, []stress.Scenario{sc}, hist)
	if err != nil {
		return stress.Result{}, err
	}

	result, ok := suite[sc.Name]
	if !ok {
		return stress.Result{}, fmt.Errorf("scenario %q produced no result", sc.Name)
	}
	if result.Failed {
		return result, fmt.Errorf("scenario %q failed: %s", sc.Name, result.FailureReason)
	}
	return result, nil
}

// AnalyzeDebtCapacity sizes sustainable debt against the projection and
// proposes alternative structures. Sizing uses the first projected year's
// EBITDA as the current-earnings basis and reads the requested debt off the
// schedules' opening balances, so it always sizes the stack that was
// actually run.
func (e *Engine) AnalyzeDebtCapacity(assumptions projection.FinancialAssumptions, proj ProjectionResult,
	covenants covenant.CovenantSet, params capacity.Params) (CapacityResult, error) {

	if len(proj.Years) == 0 {
		return CapacityResult{}, fmt.Errorf("capacity analysis requires a non-empty projection")
	}

	input := capacity.Input{
		EBITDA:          proj.Years[0].EBITDA,
		RequestedDebt:   openingDebt(proj.Schedules),
		CollateralValue: assumptions.CollateralValue,
		Covenants:       covenants,
		Report:          proj.Covenants,
		Params:          params,
	}

	analysis, err := capacity.Analyze(e.logger, input)
	if err != nil {
		return CapacityResult{}, fmt.Errorf("sizing debt capacity: %w", err)
	}

	return CapacityResult{
		Analysis:     analysis,
		Alternatives: capacity.Alternatives(input, analysis),
	}, nil
}

// RunStressSuite evaluates the scenario table against the base deal state,
// gathering results by scenario name.
func (e *Engine) RunStressSuite(assumptions projection.FinancialAssumptions, seed projection.BalanceSheetSeed,
	stack amort.DebtStack, covenants covenant.CovenantSet, scenarios []stress.Scenario,
	hist *stress.HistoricalContext) (map[string]stress.Result, error) {

	inputs := stress.Inputs{
		Assumptions: assumptions,
		Seed:        seed,
		Stack:       stack,
		Covenants:   covenants,
	}

	suite, err := stress.NewRunner(e.logger).RunSuite(inputs, scenarios, hist)
	if err != nil {
		return nil, fmt.Errorf("running stress suite: %w", err)
	}
	return suite, nil
}

// RunValuation discounts the projected cash flows to enterprise and equity
// value.
func (e *Engine) RunValuation(proj ProjectionResult, params valuation.Params) (valuation.Result, error) {
	result, err := valuation.Run(e.logger, proj.Years, params)
	if err != nil {
		return valuation.Result{}, fmt.Errorf("running valuation: %w", err)
	}
	return result, nil
}

// Run executes the full pipeline for a deal: normalization, projection with
// covenant evaluation, capacity sizing, the stress suite, and valuation.
// With memoization enabled, identical inputs return the cached result;
// callers treat results as read-only.
func (e *Engine) Run(d *deal.Deal) (*RunResult, error) {
	if err := d.Normalize(); err != nil {
		return nil, err
	}

	var key string
	if e.memoize {
		var err error
		key, err = runKey(d)
		if err != nil {
			return nil, err
		}
		if cached := e.cachedRun(key); cached != nil {
			e.logger.Debug(fmt.Sprintf("serving memoized run for deal %s", d.Name),
				zap.String("op", "engine.Run"),
				zap.String("key", key[:8]),
			)
			e.notify(Event{Deal: d.Name, Cached: true, Result: cached})
			return cached, nil
		}
	}

	proj, err := e.RunProjection(d.FinancialAssumptions(), d.BalanceSheetSeed(), d.DebtStack(), d.CovenantSet())
	if err != nil {
		return nil, err
	}

	capacityResult, err := e.AnalyzeDebtCapacity(d.FinancialAssumptions(), proj, d.CovenantSet(), d.CapacityParams())
	if err != nil {
		return nil, err
	}

	suite, err := e.RunStressSuite(d.FinancialAssumptions(), d.BalanceSheetSeed(), d.DebtStack(), d.CovenantSet(),
		d.StressScenarios(), d.HistoricalContext())
	if err != nil {
		return nil, err
	}

	valuationResult, err := e.RunValuation(proj, d.ValuationParams())
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		Deal:        d.Name,
		Currency:    d.Currency,
		ClosingDate: d.ClosingDate,
		Projection:  proj,
		Capacity:    capacityResult,
		Stress:      suite,
		Valuation:   valuationResult,
	}

	if e.memoize {
		e.storeRun(key, result)
	}

	e.logger.Debug(fmt.Sprintf("completed run for deal %s", d.Name),
		zap.String("op", "engine.Run"),
		zap.Int("projectionYears", len(proj.Years)),
		zap.Int("scenarios", len(suite)),
	)

	e.notify(Event{Deal: d.Name, Result: result})
	return result, nil
}

func (e *Engine) notify(ev Event) {
	if e.subscriber != nil {
		e.subscriber(ev)
	}
}

// openingDebt is the stack's total principal at close, read off the
// schedules' first-year opening balances.
func openingDebt(schedules []amort.Schedule) float64 {
	total := 0.0
	for _, s := range schedules {
		if len(s.Periods) > 0 {
			total += s.Periods[0].BeginningBalance
		}
	}
	return total
}
