package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/lenderkit/covsim/internal/deal"
	"github.com/lenderkit/covsim/pkg/amort"
	"github.com/lenderkit/covsim/pkg/capacity"
	"github.com/lenderkit/covsim/pkg/covenant"
	"github.com/lenderkit/covsim/pkg/projection"
	"github.com/lenderkit/covsim/pkg/stress"
	"github.com/lenderkit/covsim/pkg/valuation"
)

// runKeyInputs gathers every input the pipeline reads, in one struct for
// hashing. encoding/json writes struct fields in declaration order, so
// identical inputs always serialize to identical bytes.
type runKeyInputs struct {
	Assumptions projection.FinancialAssumptions
	Seed        projection.BalanceSheetSeed
	Stack       amort.DebtStack
	Covenants   covenant.CovenantSet
	Capacity    capacity.Params
	Valuation   valuation.Params
	Scenarios   []stress.Scenario
	Historical  []float64
}

// runKey creates a deterministic hash of the deal's engine-facing inputs.
// Logging and output settings stay out of the key; they do not affect any
// number the pipeline produces.
func runKey(d *deal.Deal) (string, error) {
	inputs := runKeyInputs{
		Assumptions: d.FinancialAssumptions(),
		Seed:        d.BalanceSheetSeed(),
		Stack:       d.DebtStack(),
		Covenants:   d.CovenantSet(),
		Capacity:    d.CapacityParams(),
		Valuation:   d.ValuationParams(),
		Scenarios:   d.StressScenarios(),
		Historical:  d.Historical.AnnualCashFlows,
	}

	data, err := json.Marshal(inputs)
	if err != nil {
		return "", fmt.Errorf("serializing run key: %w", err)
	}

	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:16]), nil
}

// cachedRun returns the memoized result when key matches the slot, nil
// otherwise.
func (e *Engine) cachedRun(key string) *RunResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastKey == key && e.lastRun != nil {
		return e.lastRun
	}
	return nil
}

// storeRun replaces the memoization slot.
func (e *Engine) storeRun(key string, result *RunResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastKey = key
	e.lastRun = result
}
