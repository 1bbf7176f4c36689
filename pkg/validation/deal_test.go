package validation

import (
	"testing"
)

func TestValidateMaturityHorizon(t *testing.T) {
	tests := []struct {
		name        string
		trancheName string
		startDate   string
		horizonEnd  string
		tenorYears  int
		expectWarn  bool
		expectError bool
	}{
		{
			name:        "Tranche matures before horizon",
			trancheName: "Short Facility",
			startDate:   "2026-01",
			horizonEnd:  "2031-01",
			tenorYears:  3,
			expectWarn:  false,
			expectError: false,
		},
		{
			name:        "Tranche matures after horizon",
			trancheName: "Long Facility",
			startDate:   "2026-01",
			horizonEnd:  "2029-01",
			tenorYears:  5,
			expectWarn:  true,
			expectError: false,
		},
		{
			name:        "Tranche matures exactly at horizon end",
			trancheName: "Exact Facility",
			startDate:   "2026-01",
			horizonEnd:  "2031-01",
			tenorYears:  5,
			expectWarn:  false,
			expectError: false,
		},
		{
			name:        "Invalid start date",
			trancheName: "Invalid Facility",
			startDate:   "invalid-date",
			horizonEnd:  "2031-01",
			tenorYears:  5,
			expectWarn:  false,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warning, err := ValidateMaturityHorizon(tt.trancheName, tt.startDate, tt.horizonEnd, tt.tenorYears)

			if tt.expectError {
				if err == nil {
					t.Errorf("ValidateMaturityHorizon() expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("ValidateMaturityHorizon() unexpected error = %v", err)
				return
			}

			hasWarning := warning != ""
			if hasWarning != tt.expectWarn {
				t.Errorf("ValidateMaturityHorizon() warning = %t, expected %t", hasWarning, tt.expectWarn)
			}

			if hasWarning {
				t.Logf("Warning: %s", warning)
			}
		})
	}
}

func TestValidateTrancheDates(t *testing.T) {
	tests := []struct {
		name            string
		trancheName     string
		startDate       string
		closingDate     string
		horizonEnd      string
		expectWarnCount int
	}{
		{
			name:            "Drawn at closing",
			trancheName:     "Term Loan",
			startDate:       "2026-01",
			closingDate:     "2026-01",
			horizonEnd:      "2031-01",
			expectWarnCount: 0,
		},
		{
			name:            "Delayed draw within horizon",
			trancheName:     "Delayed Facility",
			startDate:       "2027-06",
			closingDate:     "2026-01",
			horizonEnd:      "2031-01",
			expectWarnCount: 0,
		},
		{
			name:            "Drawn before closing",
			trancheName:     "Early Facility",
			startDate:       "2025-06",
			closingDate:     "2026-01",
			horizonEnd:      "2031-01",
			expectWarnCount: 1,
		},
		{
			name:            "Drawn exactly at horizon end",
			trancheName:     "Late Facility",
			startDate:       "2031-01",
			closingDate:     "2026-01",
			horizonEnd:      "2031-01",
			expectWarnCount: 1,
		},
		{
			name:            "Drawn after horizon end",
			trancheName:     "Never Facility",
			startDate:       "2032-01",
			closingDate:     "2026-01",
			horizonEnd:      "2031-01",
			expectWarnCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := ValidateTrancheDates(tt.trancheName, tt.startDate, tt.closingDate, tt.horizonEnd)

			if len(warnings) != tt.expectWarnCount {
				t.Errorf("ValidateTrancheDates() returned %d warnings, expected %d",
					len(warnings), tt.expectWarnCount)
			}

			for _, warning := range warnings {
				t.Logf("Warning: %s", warning)
			}
		})
	}
}

func TestDealValidator_ValidateAll(t *testing.T) {
	tests := []struct {
		name            string
		validator       DealValidator
		expectWarnCount int
	}{
		{
			name: "Stack inside the projection window",
			validator: DealValidator{
				ClosingDate:  "2026-01",
				HorizonYears: 5,
				Tranches: []TrancheTerms{
					{
						Name:       "Senior term loan",
						StartDate:  "2026-01",
						TenorYears: 5,
					},
					{
						Name:       "Mezzanine note",
						StartDate:  "2026-01",
						TenorYears: 3,
					},
				},
			},
			expectWarnCount: 0,
		},
		{
			name: "Stack extending past the horizon",
			validator: DealValidator{
				ClosingDate:  "2026-01",
				HorizonYears: 3,
				Tranches: []TrancheTerms{
					{
						Name:       "Term loan",
						StartDate:  "2026-01",
						TenorYears: 5, // matures 2031-01, past 2029-01
					},
					{
						Name:       "Bridge note",
						StartDate:  "2025-01", // drawn before closing
						TenorYears: 3,
					},
				},
			},
			expectWarnCount: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := tt.validator.ValidateAll()

			if len(warnings) != tt.expectWarnCount {
				t.Errorf("ValidateAll() returned %d warnings, expected %d",
					len(warnings), tt.expectWarnCount)
			}

			for i, warning := range warnings {
				t.Logf("Warning %d: %s", i+1, warning)
			}
		})
	}
}

func TestDealValidator_EmptyStartDateDefaultsToClosing(t *testing.T) {
	validator := DealValidator{
		ClosingDate:  "2026-01",
		HorizonYears: 3,
		Tranches: []TrancheTerms{
			{
				Name:       "Undated tranche",
				StartDate:  "",
				TenorYears: 5,
			},
		},
	}

	warnings := validator.ValidateAll()

	// Start falls back to the closing date, so the only warning is the
	// maturity past the horizon.
	if len(warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %d: %v", len(warnings), warnings)
	}
}

func TestDealValidator_EmptyStack(t *testing.T) {
	validator := DealValidator{
		ClosingDate:  "2026-01",
		HorizonYears: 5,
		Tranches:     []TrancheTerms{},
	}

	warnings := validator.ValidateAll()

	if len(warnings) != 0 {
		t.Errorf("Expected no warnings for empty stack, got %d", len(warnings))
	}
}
