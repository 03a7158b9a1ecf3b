package forecast

import (
	"testing"

	"github.com/cmlops/cmlwatch/pkg/models"
)

// --- RemainingLife tests ---

func TestRemainingLife(t *testing.T) {
	tests := []struct {
		name         string
		thickness    float64
		rate         float64
		minThickness float64
		expected     float64
	}{
		{
			name:      "simple division",
			thickness: 10.0, rate: 0.5, minThickness: 3.0,
			expected: 14.0,
		},
		{
			name:      "clamped to design ceiling",
			thickness: 10.0, rate: 0.10, minThickness: 3.0,
			expected: 50.0, // unclamped would be 70
		},
		{
			name:      "zero corrosion means non-degrading",
			thickness: 10.0, rate: 0.0, minThickness: 3.0,
			expected: 50.0,
		},
		{
			name:      "thickness at minimum is end of life",
			thickness: 3.0, rate: 0.2, minThickness: 3.0,
			expected: 0.0,
		},
		{
			name:      "thickness below minimum never negative",
			thickness: 2.5, rate: 0.2, minThickness: 3.0,
			expected: 0.0,
		},
		{
			name:      "exactly at ceiling",
			thickness: 8.0, rate: 0.1, minThickness: 3.0,
			expected: 50.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RemainingLife(tt.thickness, tt.rate, tt.minThickness)
			if got != tt.expected {
				t.Errorf("RemainingLife(%g, %g, %g) = %g, want %g",
					tt.thickness, tt.rate, tt.minThickness, got, tt.expected)
			}
		})
	}
}

func TestRemainingLife_NonIncreasingInRate(t *testing.T) {
	prev := RemainingLife(10.0, 0.01, 3.0)
	for _, rate := range []float64{0.05, 0.1, 0.5, 1.0, 2.0, 5.0} {
		got := RemainingLife(10.0, rate, 3.0)
		if got > prev {
			t.Errorf("remaining life increased from %g to %g as rate rose to %g", prev, got, rate)
		}
		prev = got
	}
}

// --- InspectionIntervalMonths tests ---

func TestInspectionIntervalMonths(t *testing.T) {
	tests := []struct {
		name          string
		remainingLife float64
		safetyFactor  float64
		expected      int
	}{
		{
			name:          "clamped to ceiling for long-lived assets",
			remainingLife: 50.0, safetyFactor: 1.5,
			expected: 72,
		},
		{
			name:          "clamped to floor for short-lived assets",
			remainingLife: 1.0, safetyFactor: 1.5,
			expected: 12,
		},
		{
			name:          "within bounds",
			remainingLife: 6.0, safetyFactor: 1.5, // 4 years
			expected: 48,
		},
		{
			name:          "truncates partial months",
			remainingLife: 5.0, safetyFactor: 1.5, // 3.333 years = 40 months
			expected: 40,
		},
		{
			name:          "zero remaining life still gets the floor",
			remainingLife: 0.0, safetyFactor: 1.5,
			expected: 12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InspectionIntervalMonths(tt.remainingLife, tt.safetyFactor, 12, 72)
			if got != tt.expected {
				t.Errorf("InspectionIntervalMonths(%g, %g, 12, 72) = %d, want %d",
					tt.remainingLife, tt.safetyFactor, got, tt.expected)
			}
		})
	}
}

func TestInspectionIntervalMonths_NonIncreasingInRate(t *testing.T) {
	// Fixed thickness and safety factor: a faster-corroding asset is never
	// inspected less often.
	prev := 73
	for _, rate := range []float64{0.0, 0.05, 0.1, 0.5, 1.0, 5.0} {
		life := RemainingLife(10.0, rate, 3.0)
		got := InspectionIntervalMonths(life, 1.5, 12, 72)
		if got > prev {
			t.Errorf("interval increased to %d months at rate %g", got, rate)
		}
		prev = got
	}
}

// --- RiskLevel tests ---

func TestRiskLevel(t *testing.T) {
	tests := []struct {
		name          string
		remainingLife float64
		expected      models.RiskLevel
	}{
		{"well below two years", 0.5, models.RiskCritical},
		{"just below two years", 1.999, models.RiskCritical},
		{"exactly two years is high not critical", 2.0, models.RiskHigh},
		{"just below five years", 4.999, models.RiskHigh},
		{"exactly five years is medium", 5.0, models.RiskMedium},
		{"just below ten years", 9.999, models.RiskMedium},
		{"exactly ten years is low", 10.0, models.RiskLow},
		{"long remaining life", 50.0, models.RiskLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RiskLevel(tt.remainingLife, 0.1, 10.0)
			if got != tt.expected {
				t.Errorf("RiskLevel(%g) = %s, want %s", tt.remainingLife, got, tt.expected)
			}
		})
	}
}

func TestRiskLevel_IgnoresRateAndThickness(t *testing.T) {
	// The canonical ladder is remaining-life-only; the extra parameters
	// must not change the classification.
	a := RiskLevel(3.0, 0.01, 40.0)
	b := RiskLevel(3.0, 4.99, 0.5)
	if a != b {
		t.Errorf("classification varied with rate/thickness: %s vs %s", a, b)
	}
}
