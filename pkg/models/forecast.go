package models

import "time"

// RiskLevel is the coarse urgency tier derived from remaining life.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// Forecast is the derived remaining-life projection for one CML record.
// Immutable once computed; not persisted.
type Forecast struct {
	IDNumber                    string    `json:"id_number"`
	RemainingLifeYears          float64   `json:"remaining_life_years"`
	InspectionIntervalMonths    int       `json:"recommended_inspection_interval_months"`
	NextInspectionDate          time.Time `json:"next_inspection_date"`
	EstimatedThicknessAtNextMM  float64   `json:"estimated_thickness_at_next_inspection"`
	RiskLevel                   RiskLevel `json:"risk_level"`
}

// ForecastSummary aggregates a batch of forecasts for dashboard rendering.
// Always renderable: an empty batch yields zero counts and a 0.0 mean.
type ForecastSummary struct {
	TotalCMLs              int               `json:"total_cmls"`
	MeanRemainingLifeYears float64           `json:"mean_remaining_life_years"`
	RiskCounts             map[RiskLevel]int `json:"risk_counts"`
	DueWithin12Months      int               `json:"due_within_12_months"`
}

// RowError reports a single failed row in a batch operation, with the
// offending field named so callers can react programmatically.
type RowError struct {
	Row      int    `json:"row"`
	IDNumber string `json:"id_number,omitempty"`
	Field    string `json:"field"`
	Message  string `json:"message"`
}
