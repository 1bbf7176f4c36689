package datetime

import "testing"

func TestAddYears(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		years    int
		expected string
	}{
		{"Five year maturity", "2026-03", 5, "2031-03"},
		{"Zero years", "2026-03", 0, "2026-03"},
		{"Seven year maturity", "2025-12", 7, "2032-12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := AddYears(tt.date, tt.years)
			if err != nil {
				t.Fatalf("AddYears(%v, %v) returned error: %v", tt.date, tt.years, err)
			}
			if result != tt.expected {
				t.Errorf("AddYears(%v, %v) = %v, expected %v", tt.date, tt.years, result, tt.expected)
			}
		})
	}
}

func TestDateBeforeDate(t *testing.T) {
	tests := []struct {
		name     string
		first    string
		second   string
		expected bool
	}{
		{"Strictly before", "2026-01", "2026-02", true},
		{"Equal dates", "2026-01", "2026-01", false},
		{"After", "2026-03", "2026-01", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := DateBeforeDate(tt.first, tt.second)
			if err != nil {
				t.Fatalf("DateBeforeDate(%v, %v) returned error: %v", tt.first, tt.second, err)
			}
			if result != tt.expected {
				t.Errorf("DateBeforeDate(%v, %v) = %v, expected %v", tt.first, tt.second, result, tt.expected)
			}
		})
	}
}

func TestAddYearsInvalid(t *testing.T) {
	if _, err := AddYears("not-a-date", 1); err == nil {
		t.Error("AddYears with invalid date should return error")
	}
}

func TestDateBeforeDateInvalid(t *testing.T) {
	if _, err := DateBeforeDate("garbage", "2026-01"); err == nil {
		t.Error("DateBeforeDate with invalid first date should return error")
	}
	if _, err := DateBeforeDate("2026-01", "garbage"); err == nil {
		t.Error("DateBeforeDate with invalid second date should return error")
	}
}
