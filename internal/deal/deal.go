// Package deal defines the data structures related to a deal file and
// includes functions for loading, normalizing, and validating the deal.
package deal

import (
	"fmt"

	"github.com/lenderkit/covsim/pkg/amort"
	"github.com/lenderkit/covsim/pkg/capacity"
	"github.com/lenderkit/covsim/pkg/constants"
	"github.com/lenderkit/covsim/pkg/covenant"
	"github.com/lenderkit/covsim/pkg/projection"
	"github.com/lenderkit/covsim/pkg/stress"
	"github.com/lenderkit/covsim/pkg/valuation"
	"github.com/spf13/viper"
)

// DateTimeLayout is the format expected in deal files and is also the output
// date format.
const DateTimeLayout = constants.DateTimeLayout

// Deal holds everything the engine needs for one credit analysis: the
// borrower's operating assumptions, the proposed debt stack, covenant
// thresholds, and the sizing, stress, and valuation settings. Percentage
// fields are written as human percentages in the file (10 means 10%);
// Normalize converts them to engine fractions exactly once.
type Deal struct {
	Name        string
	Currency    string
	ClosingDate string

	Assumptions Assumptions
	Opening     OpeningBalances
	Tranches    []Tranche `validate:"required,min=1,dive"`
	Covenants   Covenants
	Capacity    CapacitySettings
	Valuation   ValuationSettings
	Scenarios   []stress.Scenario
	Historical  HistoricalData

	Logging LoggingConfig `yaml:"logging,omitempty"`
	Output  OutputConfig  `yaml:"output,omitempty"`

	normalized bool
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, summary
}

// Assumptions holds the borrower's operating drivers. The percentage fields
// are fractions of revenue after Normalize.
type Assumptions struct {
	BaseRevenue       float64 `validate:"gt=0"`
	RevenueGrowth     float64
	COGSPct           float64 `validate:"gte=0"`
	OpExPct           float64 `validate:"gte=0"`
	WorkingCapitalPct float64 `validate:"gte=0"`
	CapexPct          float64 `validate:"gte=0"`
	// DepreciationPct defaults to CapexPct (steady-state reinvestment) when
	// the deal file leaves it unset.
	DepreciationPct float64 `validate:"gte=0"`
	TaxRate         float64 `validate:"gte=0,lte=1"`
	CollateralValue float64 `validate:"gte=0"`
	// HorizonYears defaults to the longest tranche tenor when unset.
	HorizonYears int `validate:"gte=0"`
}

// OpeningBalances seeds the balance sheet at close.
type OpeningBalances struct {
	Cash           float64 `validate:"gte=0"`
	WorkingCapital float64
	PPE            float64 `validate:"gte=0"`
}

// Tranche is one debt layer as written in the deal file. Rate and BalloonPct
// are percentages in the file; CustomIntervals stay percentage buckets all
// the way into the schedule builder.
type Tranche struct {
	Name              string  `validate:"required"`
	Principal         float64 `validate:"gt=0"`
	Rate              float64 `validate:"gte=0"`
	DayCount          string  `validate:"omitempty,oneof=30/360 Actual/360 Actual/365"`
	TenorYears        int     `validate:"gt=0"`
	InterestOnlyYears int     `validate:"gte=0"`
	Mode              string  `validate:"omitempty,oneof=amortizing interest-only bullet balloon custom"`
	BalloonPct        float64 `validate:"gte=0,lte=1"`
	BalloonEnabled    bool
	CustomIntervals   []float64
	// Seniority defaults to the tranche's position in the file, senior first.
	Seniority int `validate:"gte=0"`
	// StartDate defaults to the deal's closing date.
	StartDate string
}

// Covenants carries the facility's financial covenants. A zero threshold
// means the covenant is not set. MaxLTV is a percentage in the deal file.
type Covenants struct {
	MinDSCR            float64 `validate:"gte=0"`
	TargetICR          float64 `validate:"gte=0"`
	MaxNetDebtToEBITDA float64 `validate:"gte=0"`
	MaxLTV             float64 `validate:"gte=0"`
}

// CapacitySettings parameterizes debt-capacity sizing. Rate and
// SubordinatedSpread are percentages in the deal file; unset fields pick up
// the canonical defaults during Normalize.
type CapacitySettings struct {
	TargetDSCR         float64 `validate:"gte=0"`
	SafetyBuffer       float64 `validate:"gte=0"`
	FloorDSCR          float64 `validate:"gte=0"`
	Rate               float64 `validate:"gte=0"`
	TenorYears         int     `validate:"gte=0"`
	MaxTenorExtension  int     `validate:"gte=0"`
	SubordinatedSpread float64 `validate:"gte=0"`
}

// ValuationSettings drives the DCF. Rates, weights, terminal growth, and the
// sensitivity grid steps are percentages in the deal file; Beta, the exit
// multiple, and the currency amounts are not converted.
type ValuationSettings struct {
	RiskFreeRate      float64 `validate:"gte=0"`
	Beta              float64 `validate:"gte=0"`
	MarketRiskPremium float64 `validate:"gte=0"`
	CostOfDebt        float64 `validate:"gte=0"`
	TaxRate           float64 `validate:"gte=0,lte=1"`
	DebtWeight        float64 `validate:"gte=0"`
	EquityWeight      float64 `validate:"gte=0"`
	TerminalGrowth    float64
	ExitMultiple      float64 `validate:"gte=0"`
	// OpeningNetDebt derives from the stack principal minus opening cash
	// when left unset.
	OpeningNetDebt float64
	EquityOutlay   float64 `validate:"gte=0"`
	WACCStep       float64 `validate:"gte=0"`
	GrowthStep     float64 `validate:"gte=0"`
}

// HistoricalData carries optional trailing actuals used for burn-volatility
// scaling in stress runs.
type HistoricalData struct {
	AnnualCashFlows []float64
}

// LoadDeal takes a file path as input and loads the YAML-formatted deal
// there.
func LoadDeal(dealPath string) (*Deal, error) {
	viper.SetConfigFile(dealPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading deal file, %s", err)
	}

	var deal Deal
	err := viper.Unmarshal(&deal)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &deal, nil
}

// FinancialAssumptions returns the engine-ready projection drivers. The deal
// must be normalized first.
func (d *Deal) FinancialAssumptions() projection.FinancialAssumptions {
	return projection.FinancialAssumptions{
		BaseRevenue:       d.Assumptions.BaseRevenue,
		RevenueGrowth:     d.Assumptions.RevenueGrowth,
		COGSPct:           d.Assumptions.COGSPct,
		OpExPct:           d.Assumptions.OpExPct,
		WorkingCapitalPct: d.Assumptions.WorkingCapitalPct,
		CapexPct:          d.Assumptions.CapexPct,
		DepreciationPct:   d.Assumptions.DepreciationPct,
		TaxRate:           d.Assumptions.TaxRate,
		CollateralValue:   d.Assumptions.CollateralValue,
		HorizonYears:      d.Assumptions.HorizonYears,
	}
}

// BalanceSheetSeed returns the opening balance-sheet position.
func (d *Deal) BalanceSheetSeed() projection.BalanceSheetSeed {
	return projection.BalanceSheetSeed{
		OpeningCash:           d.Opening.Cash,
		OpeningWorkingCapital: d.Opening.WorkingCapital,
		OpeningPPE:            d.Opening.PPE,
	}
}

// DebtStack converts the deal tranches into the schedule builder's stack.
func (d *Deal) DebtStack() amort.DebtStack {
	tranches := make([]amort.DebtTranche, 0, len(d.Tranches))
	for _, t := range d.Tranches {
		tranches = append(tranches, amort.DebtTranche{
			Name:              t.Name,
			Principal:         t.Principal,
			Rate:              t.Rate,
			DayCount:          amort.DayCount(t.DayCount),
			TenorYears:        t.TenorYears,
			InterestOnlyYears: t.InterestOnlyYears,
			Mode:              amort.AmortizationMode(t.Mode),
			BalloonPct:        t.BalloonPct,
			BalloonEnabled:    t.BalloonEnabled,
			CustomIntervals:   t.CustomIntervals,
			Seniority:         t.Seniority,
			StartDate:         t.StartDate,
		})
	}
	return amort.DebtStack{Tranches: tranches}
}

// CovenantSet returns the covenant thresholds for the evaluator.
func (d *Deal) CovenantSet() covenant.CovenantSet {
	return covenant.CovenantSet{
		MinDSCR:            d.Covenants.MinDSCR,
		TargetICR:          d.Covenants.TargetICR,
		MaxNetDebtToEBITDA: d.Covenants.MaxNetDebtToEBITDA,
		MaxLTV:             d.Covenants.MaxLTV,
	}
}

// CapacityParams returns the sizing parameters for the capacity analyzer.
func (d *Deal) CapacityParams() capacity.Params {
	return capacity.Params{
		TargetDSCR:         d.Capacity.TargetDSCR,
		SafetyBuffer:       d.Capacity.SafetyBuffer,
		FloorDSCR:          d.Capacity.FloorDSCR,
		Rate:               d.Capacity.Rate,
		TenorYears:         d.Capacity.TenorYears,
		MaxTenorExtension:  d.Capacity.MaxTenorExtension,
		SubordinatedSpread: d.Capacity.SubordinatedSpread,
	}
}

// ValuationParams returns the DCF parameters for the valuation module.
func (d *Deal) ValuationParams() valuation.Params {
	return valuation.Params{
		RiskFreeRate:      d.Valuation.RiskFreeRate,
		Beta:              d.Valuation.Beta,
		MarketRiskPremium: d.Valuation.MarketRiskPremium,
		CostOfDebt:        d.Valuation.CostOfDebt,
		TaxRate:           d.Valuation.TaxRate,
		DebtWeight:        d.Valuation.DebtWeight,
		EquityWeight:      d.Valuation.EquityWeight,
		TerminalGrowth:    d.Valuation.TerminalGrowth,
		ExitMultiple:      d.Valuation.ExitMultiple,
		OpeningNetDebt:    d.Valuation.OpeningNetDebt,
		EquityOutlay:      d.Valuation.EquityOutlay,
		WACCStep:          d.Valuation.WACCStep,
		GrowthStep:        d.Valuation.GrowthStep,
	}
}

// StressScenarios returns the scenario table for the stress engine.
func (d *Deal) StressScenarios() []stress.Scenario {
	return d.Scenarios
}

// HistoricalContext returns the historical cash-flow context, or nil when
// the deal file carries no trailing actuals.
func (d *Deal) HistoricalContext() *stress.HistoricalContext {
	if len(d.Historical.AnnualCashFlows) == 0 {
		return nil
	}
	return &stress.HistoricalContext{AnnualCashFlows: d.Historical.AnnualCashFlows}
}
