package fincalc

// CostOfEquityCAPM returns the required return on equity under CAPM:
// r_e = r_f + β × MRP.
func CostOfEquityCAPM(riskFreeRate, beta, marketRiskPremium float64) float64 {
	return riskFreeRate + beta*marketRiskPremium
}

// AfterTaxCostOfDebt returns the tax-shielded cost of debt r_d × (1 - T).
func AfterTaxCostOfDebt(costOfDebt, taxRate float64) float64 {
	return costOfDebt * (1.0 - taxRate)
}

// WACC returns the weighted average cost of capital
// r_d × (1 - T) × (D/V) + r_e × (E/V). Weights are the target capital
// structure, not the projected one.
func WACC(costOfDebt, taxRate, debtWeight, costOfEquity, equityWeight float64) float64 {
	return AfterTaxCostOfDebt(costOfDebt, taxRate)*debtWeight + costOfEquity*equityWeight
}
