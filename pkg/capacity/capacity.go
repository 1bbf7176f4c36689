// Package capacity sizes maximum sustainable debt by inverting the annuity
// formula against EBITDA and covenant targets, and recommends an action on
// the requested structure. It reports on the request; it never modifies it.
package capacity

import (
	"fmt"

	"github.com/lenderkit/covsim/pkg/constants"
	"github.com/lenderkit/covsim/pkg/covenant"
	"github.com/lenderkit/covsim/pkg/fincalc"
	"github.com/lenderkit/covsim/pkg/mathutil"
	"go.uber.org/zap"
)

// Recommendation is the analyzer's verdict on the requested debt level.
type Recommendation string

const (
	Approve               Recommendation = "APPROVE"
	ApproveWithConditions Recommendation = "APPROVE WITH CONDITIONS"
	ReduceDebt            Recommendation = "REDUCE DEBT"
	Decline               Recommendation = "DECLINE"
)

// RiskLevel is the coarse risk classification used across capacity and
// stress reporting.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskElevated RiskLevel = "ELEVATED"
	RiskHigh     RiskLevel = "HIGH"
)

// Params are the sizing knobs. SafetyBuffer and FloorDSCR are explicit,
// named values precisely because the source of this engine carried two
// diverging literal constants; zero values pick up the canonical defaults.
type Params struct {
	TargetDSCR         float64
	SafetyBuffer       float64
	FloorDSCR          float64
	Rate               float64
	TenorYears         int
	MaxTenorExtension  int
	SubordinatedSpread float64
}

func (p Params) withDefaults() Params {
	if p.SafetyBuffer == 0 {
		p.SafetyBuffer = constants.DefaultSafetyBuffer
	}
	if p.FloorDSCR == 0 {
		p.FloorDSCR = constants.DefaultFloorDSCR
	}
	if p.MaxTenorExtension == 0 {
		p.MaxTenorExtension = constants.DefaultMaxTenorExtension
	}
	if p.SubordinatedSpread == 0 {
		p.SubordinatedSpread = constants.DefaultSubordinatedSpread
	}
	return p
}

// Input bundles what the analyzer needs: the borrower's debt-capacity-basis
// EBITDA, the requested debt, the covenant package, and the covenant report
// from the base projection.
type Input struct {
	EBITDA          float64
	RequestedDebt   float64
	CollateralValue float64
	Covenants       covenant.CovenantSet
	Report          covenant.Report
	Params          Params
}

// Result is the sizing outcome. ImpliedDSCR is annuity-implied: EBITDA over
// the level annual payment on the requested debt. AvailableCapacity is
// signed; below zero it measures how far the request exceeds max capacity.
type Result struct {
	EBITDA             float64
	MaxSustainableDebt float64
	SafeDebt           float64
	AggressiveDebt     float64
	RequestedDebt      float64
	AvailableCapacity  float64
	UtilizationPct     float64
	ImpliedDSCR        float64
	Leverage           float64
	LTV                float64
	Recommendation     Recommendation
	RiskLevel          RiskLevel
}

// Analyze sizes sustainable debt and classifies the request.
//
// The level annuity payment factor f = r(1+r)^n/((1+r)^n-1) converts a debt
// level to annual debt service; inverting it at a coverage target gives
// MaxSustainableDebt = EBITDA / (f × targetDSCR). SafeDebt tightens the
// target by the safety buffer; AggressiveDebt relaxes it to the floor DSCR.
func Analyze(logger *zap.Logger, input Input) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	params := input.Params.withDefaults()
	if input.EBITDA <= 0 {
		return Result{}, fmt.Errorf("capacity analysis requires positive EBITDA, got %.2f", input.EBITDA)
	}
	if params.TargetDSCR <= 0 {
		return Result{}, fmt.Errorf("target DSCR must be positive, got %.2f", params.TargetDSCR)
	}
	if params.TenorYears <= 0 {
		return Result{}, fmt.Errorf("tenor must be positive, got %d", params.TenorYears)
	}
	if params.Rate < 0 {
		return Result{}, fmt.Errorf("rate must be non-negative, got %.4f", params.Rate)
	}

	factor := fincalc.PaymentFactor(params.Rate, params.TenorYears)

	result := Result{
		EBITDA:             input.EBITDA,
		RequestedDebt:      input.RequestedDebt,
		MaxSustainableDebt: input.EBITDA / (factor * params.TargetDSCR),
		SafeDebt:           input.EBITDA / (factor * params.TargetDSCR * params.SafetyBuffer),
		AggressiveDebt:     input.EBITDA / (factor * params.FloorDSCR),
	}
	result.AvailableCapacity = result.MaxSustainableDebt - input.RequestedDebt
	result.UtilizationPct = mathutil.CalculatePercentage(input.RequestedDebt, result.MaxSustainableDebt)

	if input.RequestedDebt > 0 {
		result.ImpliedDSCR = input.EBITDA / (input.RequestedDebt * factor)
		result.Leverage = input.RequestedDebt / input.EBITDA
	}
	if input.CollateralValue > 0 {
		result.LTV = input.RequestedDebt / input.CollateralValue
	}

	result.Recommendation, result.RiskLevel = recommend(input, params, result)

	logger.Debug(fmt.Sprintf("debt capacity: max %.0f vs request %.0f", result.MaxSustainableDebt, input.RequestedDebt),
		zap.String("op", "capacity.Analyze"),
		zap.Float64("impliedDSCR", result.ImpliedDSCR),
		zap.String("recommendation", string(result.Recommendation)),
	)

	return result, nil
}

// recommend applies the recommendation state machine. Hard leverage/LTV
// limits and a coverage floor drive DECLINE; exceeding max capacity or any
// projected breach drives REDUCE DEBT; the safe..max band or marginal
// covenants drive APPROVE WITH CONDITIONS.
func recommend(input Input, params Params, result Result) (Recommendation, RiskLevel) {
	hardLimitExceeded :=
		(input.Covenants.MaxNetDebtToEBITDA > 0 && result.Leverage > input.Covenants.MaxNetDebtToEBITDA) ||
			(input.Covenants.MaxLTV > 0 && result.LTV > input.Covenants.MaxLTV)

	switch {
	case input.RequestedDebt > 0 && result.ImpliedDSCR < params.FloorDSCR:
		return Decline, RiskHigh
	case hardLimitExceeded:
		return Decline, RiskHigh
	case input.RequestedDebt > result.MaxSustainableDebt:
		return ReduceDebt, RiskElevated
	case input.Report.BreachCount() > 0:
		return ReduceDebt, RiskElevated
	case input.RequestedDebt > result.SafeDebt:
		return ApproveWithConditions, RiskModerate
	case len(input.Report.Marginal) > 0:
		return ApproveWithConditions, RiskModerate
	default:
		return Approve, RiskLow
	}
}
