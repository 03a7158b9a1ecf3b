// Package forecast implements the remaining-life forecasting and
// risk-classification engine for CML records.
package forecast

import (
	"github.com/cmlops/cmlwatch/pkg/models"
)

// MaxLifeYears is the design ceiling on reported remaining life. No CML is
// ever reported as lasting longer than this, even when the arithmetic says
// otherwise.
const MaxLifeYears = 50.0

// Remaining-life thresholds for the risk ladder, strict less-than.
const (
	criticalBelowYears = 2.0
	highBelowYears     = 5.0
	mediumBelowYears   = 10.0
)

// RemainingLife returns the projected years until thickness reaches
// minThickness at the given corrosion rate, clamped to [0, MaxLifeYears].
// A rate of zero (or below) means effectively non-degrading within the
// planning horizon and returns MaxLifeYears; callers that consider a
// negative rate a data fault must reject it before calling.
func RemainingLife(thickness, rate, minThickness float64) float64 {
	if rate <= 0 {
		return MaxLifeYears
	}
	life := (thickness - minThickness) / rate
	if life < 0 {
		return 0
	}
	if life > MaxLifeYears {
		return MaxLifeYears
	}
	return life
}

// InspectionIntervalMonths converts remaining life into a recommended
// inspection cadence: remaining life divided by the safety factor, in
// months, clamped to [minMonths, maxMonths]. The cadence never exceeds the
// ceiling even for near-zero-corrosion assets, and is never scheduled
// impossibly soon.
func InspectionIntervalMonths(remainingLifeYears, safetyFactor float64, minMonths, maxMonths int) int {
	intervalYears := remainingLifeYears / safetyFactor
	months := int(intervalYears * 12)
	if months < minMonths {
		return minMonths
	}
	if months > maxMonths {
		return maxMonths
	}
	return months
}

// RiskLevel classifies remaining life into a coarse urgency tier. The
// ladder is strict less-than on remaining life alone; rate and thickness
// are accepted for future refinement but not consulted.
func RiskLevel(remainingLifeYears, rate, thickness float64) models.RiskLevel {
	switch {
	case remainingLifeYears < criticalBelowYears:
		return models.RiskCritical
	case remainingLifeYears < highBelowYears:
		return models.RiskHigh
	case remainingLifeYears < mediumBelowYears:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}
