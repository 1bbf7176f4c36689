package amort

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/lenderkit/covsim/pkg/fincalc"
)

// Period holds one year of a tranche schedule.
type Period struct {
	Year             int
	BeginningBalance float64
	Interest         float64
	Principal        float64
	DebtService      float64
	EndingBalance    float64
}

// Schedule is the ordered per-year payment sequence for a single tranche.
// Maturity is empty when the tranche carries no start date.
type Schedule struct {
	TrancheName string
	Maturity    string
	Periods     []Period
}

// Builder generates amortization schedules for debt tranches.
type Builder struct {
	logger *zap.Logger
}

// NewBuilder creates a new schedule builder.
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger}
}

// Build produces the tranche's annual schedule. The schedule always covers
// the full tenor so principal conservation holds; when horizonYears exceeds
// the tenor the matured years are padded with zero rows so stacks of mixed
// tenors align year by year.
func (b *Builder) Build(tranche DebtTranche, horizonYears int) (Schedule, error) {
	if tranche.TenorYears <= 0 {
		return Schedule{}, fmt.Errorf("tranche %s: tenor must be positive, got %d",
			tranche.Name, tranche.TenorYears)
	}

	var maturity string
	if tranche.StartDate != "" {
		m, err := tranche.MaturityDate()
		if err != nil {
			return Schedule{}, fmt.Errorf("tranche %s: %s", tranche.Name, err)
		}
		maturity = m
	}

	mode := tranche.Mode
	if mode == "" {
		mode = ModeAmortizing
	}
	if mode == ModeCustom && len(tranche.CustomIntervals) != CustomBucketCount {
		b.logger.Warn(fmt.Sprintf("tranche %s: custom profile needs %d buckets, got %d; falling back to annuity amortization",
			tranche.Name, CustomBucketCount, len(tranche.CustomIntervals)),
			zap.String("op", "amort.Build"),
		)
		mode = ModeAmortizing
	}

	stream := principalStream(tranche, mode)
	rate := tranche.EffectiveRate()

	years := tranche.TenorYears
	if horizonYears > years {
		years = horizonYears
	}

	periods := make([]Period, 0, years)
	balance := tranche.Principal
	for year := 1; year <= years; year++ {
		if year > tranche.TenorYears {
			periods = append(periods, Period{Year: year})
			continue
		}

		beginning := balance
		interest := beginning * rate
		principal := stream[year-1]
		switch {
		case year == tranche.TenorYears:
			// Retire whatever remains at maturity so the ending balance is
			// exactly zero rather than accumulated float residue.
			principal = beginning
		case principal > beginning:
			// A front-loaded custom profile exhausts the balance early; later
			// buckets pay only what remains.
			principal = beginning
		case principal < 0:
			// Negative custom buckets pay nothing; retired principal is never
			// drawn back.
			principal = 0
		}

		ending := math.Max(0, beginning-principal)
		periods = append(periods, Period{
			Year:             year,
			BeginningBalance: beginning,
			Interest:         interest,
			Principal:        principal,
			DebtService:      interest + principal,
			EndingBalance:    ending,
		})
		balance = ending
	}

	b.logger.Debug(fmt.Sprintf("built %s schedule for tranche %s", mode, tranche.Name),
		zap.String("op", "amort.Build"),
		zap.Int("tenorYears", tranche.TenorYears),
		zap.Float64("yearOneDebtService", periods[0].DebtService),
	)

	return Schedule{TrancheName: tranche.Name, Maturity: maturity, Periods: periods}, nil
}

// principalStream returns the scheduled principal payment for years 1..tenor
// before the maturity-year snap to the remaining balance.
func principalStream(tranche DebtTranche, mode AmortizationMode) []float64 {
	tenor := tranche.TenorYears
	stream := make([]float64, tenor)

	switch mode {
	case ModeBullet, ModeInterestOnly:
		stream[tenor-1] = tranche.Principal
		return stream
	case ModeCustom:
		profile := expandCustomProfile(tranche.CustomIntervals, tenor, tranche.InterestOnlyYears)
		for i, pct := range profile {
			stream[i] = tranche.Principal * pct / 100.0
		}
		return stream
	}

	// Amortizing and balloon: level annuity service on the non-balloon portion
	// across the non-interest-only years, so principal rises as interest falls
	// while the annual payment stays constant. The balloon portion rides
	// untouched to maturity.
	amortYears := tenor - tranche.InterestOnlyYears
	if amortYears <= 0 {
		stream[tenor-1] = tranche.Principal
		return stream
	}

	rate := tranche.EffectiveRate()
	balloon := tranche.BalloonAmount()
	payment := fincalc.AnnualDebtService(tranche.Principal-balloon, rate, amortYears)
	balance := tranche.Principal - balloon
	for i := tranche.InterestOnlyYears; i < tenor; i++ {
		principal := payment - balance*rate
		if principal > balance {
			principal = balance
		}
		stream[i] = principal
		balance -= principal
	}
	stream[tenor-1] += balloon
	return stream
}

// expandCustomProfile spreads four bucket percentages across the
// non-interest-only years: interest-only years get 0%, the remaining years
// are split into four equal-length buckets with remainder years going to the
// earlier buckets, and each bucket's percentage is divided evenly across its
// years. Any rounding residual lands on the last amortizing year so the
// stream sums to exactly 100%.
func expandCustomProfile(intervals []float64, tenor, interestOnlyYears int) []float64 {
	stream := make([]float64, tenor)
	amortYears := tenor - interestOnlyYears
	if amortYears <= 0 {
		stream[tenor-1] = 100.0
		return stream
	}

	baseLen := amortYears / CustomBucketCount
	extra := amortYears % CustomBucketCount

	yearIdx := interestOnlyYears
	for bucket := 0; bucket < CustomBucketCount; bucket++ {
		bucketLen := baseLen
		if bucket < extra {
			bucketLen++
		}
		if bucketLen == 0 {
			continue
		}
		perYear := intervals[bucket] / float64(bucketLen)
		for i := 0; i < bucketLen; i++ {
			stream[yearIdx] = perYear
			yearIdx++
		}
	}

	var sum float64
	for _, pct := range stream {
		sum += pct
	}
	stream[tenor-1] += 100.0 - sum
	return stream
}
