package stress

import (
	"testing"

	"github.com/lenderkit/covsim/pkg/amort"
	"github.com/lenderkit/covsim/pkg/covenant"
	"github.com/lenderkit/covsim/pkg/projection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// baseInputs is the worked deal used across packages: 20M revenue growing 5%,
// a 10M senior term loan at 10% over 5 years, standard covenant package.
func baseInputs() Inputs {
	return Inputs{
		Assumptions: projection.FinancialAssumptions{
			BaseRevenue:       20000000,
			RevenueGrowth:     0.05,
			COGSPct:           0.45,
			OpExPct:           0.30,
			WorkingCapitalPct: 0.10,
			CapexPct:          0.05,
			DepreciationPct:   0.05,
			TaxRate:           0.25,
			CollateralValue:   15000000,
			HorizonYears:      5,
		},
		Seed: projection.BalanceSheetSeed{
			OpeningCash:           1000000,
			OpeningWorkingCapital: 1900000,
			OpeningPPE:            8000000,
		},
		Stack: amort.DebtStack{Tranches: []amort.DebtTranche{{
			Name:       "Senior Term Loan",
			Principal:  10000000,
			Rate:       0.10,
			DayCount:   amort.DayCount30360,
			TenorYears: 5,
			Mode:       amort.ModeAmortizing,
			Seniority:  1,
		}}},
		Covenants: covenant.CovenantSet{
			MinDSCR:            1.25,
			TargetICR:          2.5,
			MaxNetDebtToEBITDA: 3.5,
			MaxLTV:             0.80,
		},
	}
}

func TestRunSuite_ZeroShockReproducesBase(t *testing.T) {
	inputs := baseInputs()

	schedules, aggregate, err := amort.NewBuilder(nil).BuildStack(inputs.Stack, inputs.Assumptions.HorizonYears)
	require.NoError(t, err)
	baseYears, err := projection.Build(nil, inputs.Assumptions, inputs.Seed, schedules, aggregate)
	require.NoError(t, err)

	suite, err := NewRunner(nil).RunSuite(inputs, []Scenario{{Name: "Base"}}, nil)
	require.NoError(t, err)

	result := suite["Base"]
	assert.False(t, result.Failed)
	assert.Equal(t, baseYears, result.Years, "a zero-shock scenario must reproduce the base projection exactly")
}

func TestRunSuite_ScenariosAreIndependent(t *testing.T) {
	inputs := baseInputs()
	scenarios := []Scenario{
		{Name: "Base"},
		{Name: "Revenue -10%", RevenueShock: -0.10},
		{Name: "Rate +300bps", RateShock: 0.03},
	}

	suite, err := NewRunner(nil, WithWorkers(3)).RunSuite(inputs, scenarios, nil)
	require.NoError(t, err)
	require.Len(t, suite, 3)

	for name, result := range suite {
		assert.Equal(t, name, result.Scenario.Name)
		assert.False(t, result.Failed)
	}

	assert.InDelta(t, 20000000, suite["Base"].Years[0].Revenue, 0.01)
	assert.InDelta(t, 18000000, suite["Revenue -10%"].Years[0].Revenue, 0.01)
	assert.InDelta(t, 20000000, suite["Rate +300bps"].Years[0].Revenue, 0.01, "rate shock leaves revenue alone")

	assert.InDelta(t, 1000000, suite["Base"].Years[0].Interest, 0.01)
	assert.InDelta(t, 1300000, suite["Rate +300bps"].Years[0].Interest, 0.01, "13% on the 10M opening balance")
}

func TestRunSuite_RejectsBadScenarioTables(t *testing.T) {
	inputs := baseInputs()
	runner := NewRunner(nil)

	_, err := runner.RunSuite(inputs, []Scenario{{Name: "X"}, {Name: "X"}}, nil)
	assert.Error(t, err)

	_, err = runner.RunSuite(inputs, []Scenario{{Name: ""}}, nil)
	assert.Error(t, err)

	suite, err := runner.RunSuite(inputs, nil, nil)
	assert.NoError(t, err)
	assert.Empty(t, suite)
}

func TestRunSuite_FlagsFailedScenarioWithoutAborting(t *testing.T) {
	inputs := baseInputs()
	inputs.Assumptions.HorizonYears = 0

	suite, err := NewRunner(nil).RunSuite(inputs, []Scenario{{Name: "Base"}, {Name: "Down"}}, nil)
	require.NoError(t, err)
	require.Len(t, suite, 2)

	for _, result := range suite {
		assert.True(t, result.Failed)
		assert.NotEmpty(t, result.FailureReason)
		assert.Empty(t, result.Years)
	}
}

func TestRunSuite_CombinedDownsideDegradesCredit(t *testing.T) {
	inputs := baseInputs()
	scenarios := []Scenario{
		{Name: "Base"},
		{
			Name:           "Combined downside",
			RevenueShock:   -0.15,
			COGSShock:      0.03,
			RateShock:      0.02,
			WCShock:        0.02,
			SeverityFactor: 0.75,
		},
	}

	suite, err := NewRunner(nil).RunSuite(inputs, scenarios, nil)
	require.NoError(t, err)

	base, stressed := suite["Base"], suite["Combined downside"]
	require.False(t, base.Failed)
	require.False(t, stressed.Failed)

	assert.Less(t, stressed.Stats.MinDSCR.Value, base.Stats.MinDSCR.Value)
	assert.GreaterOrEqual(t, stressed.Covenants.BreachCount(), base.Covenants.BreachCount())
	assert.GreaterOrEqual(t, stressed.Score.Total, base.Score.Total)
	assert.LessOrEqual(t, stressed.RunwayMonths, base.RunwayMonths)
}

func TestDefaultScenarios_NamesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, sc := range DefaultScenarios() {
		assert.False(t, seen[sc.Name], "duplicate scenario %q", sc.Name)
		seen[sc.Name] = true
	}
	assert.True(t, seen["Base"])
	assert.True(t, seen["Combined downside"])
}

func TestApplyScenario_ClampsShockedDrivers(t *testing.T) {
	base := baseInputs().Assumptions

	shocked := applyScenario(base, Scenario{
		RevenueShock: -0.10,
		COGSShock:    0.60,
		OpExShock:    -0.40,
		WCShock:      -0.25,
	})

	assert.InDelta(t, 18000000, shocked.BaseRevenue, 1e-6)
	assert.Equal(t, 0.95, shocked.COGSPct, "cost ratio capped")
	assert.Equal(t, 0.0, shocked.OpExPct, "cost ratio floored at zero")
	assert.Equal(t, 0.0, shocked.WorkingCapitalPct)
	assert.Equal(t, base.TaxRate, shocked.TaxRate, "unshocked drivers pass through")
	assert.Equal(t, 0.45, base.COGSPct, "base assumptions are untouched")
}

func TestShockStack_FloorsRatesAtZero(t *testing.T) {
	stack := baseInputs().Stack

	shocked := shockStack(stack, -0.15)
	assert.Equal(t, 0.0, shocked.Tranches[0].Rate)
	assert.Equal(t, 0.10, stack.Tranches[0].Rate, "input stack is untouched")

	raised := shockStack(stack, 0.03)
	assert.InDelta(t, 0.13, raised.Tranches[0].Rate, 1e-12)
	assert.Equal(t, stack.Tranches[0].Name, raised.Tranches[0].Name)
}
