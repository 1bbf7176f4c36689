package capacity

import (
	"fmt"

	"github.com/lenderkit/covsim/pkg/fincalc"
	"github.com/lenderkit/covsim/pkg/mathutil"
)

// Alternative is a candidate restructuring of the requested debt. Single
// tranche structures leave SubordinatedDebt at zero.
type Alternative struct {
	Name              string
	Description       string
	TotalDebt         float64
	SeniorDebt        float64
	SubordinatedDebt  float64
	TenorYears        int
	BlendedRate       float64
	AnnualDebtService float64
	ImpliedDSCR       float64
	Leverage          float64
	LTV               float64
}

// Alternatives proposes three restructurings of the request: principal
// sized down to the safe level, the same principal over a longer tenor, and
// a senior/subordinated split with the excess priced at a spread. The list
// is advisory; callers decide whether any of them clears their covenants.
func Alternatives(input Input, result Result) []Alternative {
	params := input.Params.withDefaults()
	if input.RequestedDebt <= 0 {
		return nil
	}

	return []Alternative{
		reducedPrincipal(input, params, result),
		extendedTenor(input, params),
		seniorSubSplit(input, params, result),
	}
}

func reducedPrincipal(input Input, params Params, result Result) Alternative {
	factor := fincalc.PaymentFactor(params.Rate, params.TenorYears)
	alt := Alternative{
		Name: "Reduced principal",
		Description: fmt.Sprintf("Size the facility to the safety-buffered level of %.0f (%.0f below request)",
			result.SafeDebt, input.RequestedDebt-result.SafeDebt),
		TotalDebt:         result.SafeDebt,
		SeniorDebt:        result.SafeDebt,
		TenorYears:        params.TenorYears,
		BlendedRate:       params.Rate,
		AnnualDebtService: result.SafeDebt * factor,
	}
	fillRatios(&alt, input)
	return alt
}

// extendedTenor keeps the requested principal and stretches the tenor one
// year at a time, stopping at the first extension whose implied DSCR clears
// the target. When even the maximum extension falls short it is still
// returned, with the DSCR it achieves.
func extendedTenor(input Input, params Params) Alternative {
	tenor := params.TenorYears
	for ext := 1; ext <= params.MaxTenorExtension; ext++ {
		tenor = params.TenorYears + ext
		dscr := input.EBITDA / (input.RequestedDebt * fincalc.PaymentFactor(params.Rate, tenor))
		if dscr >= params.TargetDSCR {
			break
		}
	}

	alt := Alternative{
		Name: "Extended tenor",
		Description: fmt.Sprintf("Keep the requested %.0f and extend the tenor from %d to %d years",
			input.RequestedDebt, params.TenorYears, tenor),
		TotalDebt:         input.RequestedDebt,
		SeniorDebt:        input.RequestedDebt,
		TenorYears:        tenor,
		BlendedRate:       params.Rate,
		AnnualDebtService: input.RequestedDebt * fincalc.PaymentFactor(params.Rate, tenor),
	}
	fillRatios(&alt, input)
	return alt
}

func seniorSubSplit(input Input, params Params, result Result) Alternative {
	senior := mathutil.Min(input.RequestedDebt, result.SafeDebt)
	sub := input.RequestedDebt - senior
	subRate := params.Rate + params.SubordinatedSpread

	service := senior*fincalc.PaymentFactor(params.Rate, params.TenorYears) +
		sub*fincalc.PaymentFactor(subRate, params.TenorYears)

	alt := Alternative{
		Name: "Senior/subordinated split",
		Description: fmt.Sprintf("Fund %.0f senior at %.2f%% and %.0f subordinated at %.2f%%",
			senior, params.Rate*100, sub, subRate*100),
		TotalDebt:         input.RequestedDebt,
		SeniorDebt:        senior,
		SubordinatedDebt:  sub,
		TenorYears:        params.TenorYears,
		BlendedRate:       (senior*params.Rate + sub*subRate) / input.RequestedDebt,
		AnnualDebtService: service,
	}
	fillRatios(&alt, input)
	return alt
}

func fillRatios(alt *Alternative, input Input) {
	if alt.AnnualDebtService > 0 {
		alt.ImpliedDSCR = input.EBITDA / alt.AnnualDebtService
	}
	if input.EBITDA > 0 {
		alt.Leverage = alt.TotalDebt / input.EBITDA
	}
	if input.CollateralValue > 0 {
		alt.LTV = alt.TotalDebt / input.CollateralValue
	}
}
