package amort

// AggregateYear is one year of the stack-level debt-service series.
type AggregateYear struct {
	Year             int
	Interest         float64
	Principal        float64
	TotalDebtService float64
	EndingBalance    float64
}

// Aggregate reduces tranche schedules of possibly different lengths into a
// single per-year series covering the longest schedule. Matured tranches
// contribute zero. Pure: no inputs are modified.
func Aggregate(schedules []Schedule) []AggregateYear {
	maxLen := 0
	for _, s := range schedules {
		if len(s.Periods) > maxLen {
			maxLen = len(s.Periods)
		}
	}

	out := make([]AggregateYear, maxLen)
	for i := range out {
		out[i].Year = i + 1
	}
	for _, s := range schedules {
		for i, p := range s.Periods {
			out[i].Interest += p.Interest
			out[i].Principal += p.Principal
			out[i].TotalDebtService += p.DebtService
			out[i].EndingBalance += p.EndingBalance
		}
	}
	return out
}

// BuildStack builds every tranche schedule in the stack over the given
// horizon and returns both the per-tranche schedules and their aggregate.
func (b *Builder) BuildStack(stack DebtStack, horizonYears int) ([]Schedule, []AggregateYear, error) {
	schedules := make([]Schedule, 0, len(stack.Tranches))
	for _, tranche := range stack.Tranches {
		schedule, err := b.Build(tranche, horizonYears)
		if err != nil {
			return nil, nil, err
		}
		schedules = append(schedules, schedule)
	}
	return schedules, Aggregate(schedules), nil
}
