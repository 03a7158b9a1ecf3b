package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cmlops/cmlwatch/pkg/models"
)

// Params configures a Forecaster. Zero values are replaced by defaults.
type Params struct {
	MinimumThicknessMM float64 // minimum safe wall thickness, default 3.0
	SafetyFactor       float64 // margin between predicted failure and next check, default 1.5
	MinIntervalMonths  int     // default 12
	MaxIntervalMonths  int     // default 72
}

func (p Params) withDefaults() Params {
	if p.MinimumThicknessMM == 0 {
		p.MinimumThicknessMM = 3.0
	}
	if p.SafetyFactor == 0 {
		p.SafetyFactor = 1.5
	}
	if p.MinIntervalMonths == 0 {
		p.MinIntervalMonths = 12
	}
	if p.MaxIntervalMonths == 0 {
		p.MaxIntervalMonths = 72
	}
	return p
}

// Forecaster computes remaining-life forecasts for CML records. Construct
// once and share; it is immutable after construction and safe for
// concurrent use.
type Forecaster struct {
	params Params
	now    func() time.Time
}

// New creates a Forecaster with the given params.
func New(params Params) *Forecaster {
	return &Forecaster{params: params.withDefaults(), now: time.Now}
}

// NewWithClock creates a Forecaster with an injected clock for tests.
func NewWithClock(params Params, now func() time.Time) *Forecaster {
	return &Forecaster{params: params.withDefaults(), now: now}
}

// Params returns the effective configuration.
func (f *Forecaster) Params() Params {
	return f.params
}

// validate rejects the one input class that must fail a record: a
// non-finite or non-positive thickness, or a non-finite or negative
// corrosion rate. A missing inspection date is recovered elsewhere and is
// never an error.
func validate(rec models.CMLRecord) (field, msg string) {
	switch {
	case math.IsNaN(rec.ThicknessMM) || math.IsInf(rec.ThicknessMM, 0):
		return "thickness_mm", "thickness must be a finite number"
	case rec.ThicknessMM <= 0:
		return "thickness_mm", fmt.Sprintf("thickness must be positive, got %g", rec.ThicknessMM)
	case math.IsNaN(rec.AverageCorrosionRate) || math.IsInf(rec.AverageCorrosionRate, 0):
		return "average_corrosion_rate", "corrosion rate must be a finite number"
	case rec.AverageCorrosionRate < 0:
		return "average_corrosion_rate", fmt.Sprintf("corrosion rate must not be negative, got %g", rec.AverageCorrosionRate)
	}
	return "", ""
}

// Single forecasts one CML record. The as-of timestamp is the record's
// last inspection date when present, otherwise now.
func (f *Forecaster) Single(rec models.CMLRecord) (models.Forecast, error) {
	if field, msg := validate(rec); field != "" {
		return models.Forecast{}, &RecordError{IDNumber: rec.IDNumber, Field: field, Message: msg}
	}

	asOf := f.now()
	if rec.LastInspectionDate != nil {
		asOf = *rec.LastInspectionDate
	}

	life := RemainingLife(rec.ThicknessMM, rec.AverageCorrosionRate, f.params.MinimumThicknessMM)
	months := InspectionIntervalMonths(life, f.params.SafetyFactor, f.params.MinIntervalMonths, f.params.MaxIntervalMonths)
	intervalYears := float64(months) / 12.0

	return models.Forecast{
		IDNumber:                   rec.IDNumber,
		RemainingLifeYears:         round1(life),
		InspectionIntervalMonths:   months,
		NextInspectionDate:         asOf.AddDate(0, months, 0),
		EstimatedThicknessAtNextMM: round2(rec.ThicknessMM - rec.AverageCorrosionRate*intervalYears),
		RiskLevel:                  RiskLevel(life, rec.AverageCorrosionRate, rec.ThicknessMM),
	}, nil
}

// Batch forecasts records row-wise, preserving input order among the
// successes. Invalid rows are collected as RowErrors rather than aborting
// the batch; an empty input yields empty results and no error.
func (f *Forecaster) Batch(recs []models.CMLRecord) ([]models.Forecast, []models.RowError) {
	forecasts := make([]models.Forecast, 0, len(recs))
	var rowErrs []models.RowError

	for i, rec := range recs {
		fc, err := f.Single(rec)
		if err != nil {
			var re *RecordError
			if errors.As(err, &re) {
				rowErrs = append(rowErrs, models.RowError{
					Row:      i,
					IDNumber: re.IDNumber,
					Field:    re.Field,
					Message:  re.Message,
				})
			} else {
				rowErrs = append(rowErrs, models.RowError{Row: i, IDNumber: rec.IDNumber, Message: err.Error()})
			}
			continue
		}
		forecasts = append(forecasts, fc)
	}
	return forecasts, rowErrs
}

// Summarize aggregates computed forecasts. An empty input produces zero
// counts and a 0.0 mean so the summary is always renderable.
func (f *Forecaster) Summarize(forecasts []models.Forecast) models.ForecastSummary {
	summary := models.ForecastSummary{
		TotalCMLs: len(forecasts),
		RiskCounts: map[models.RiskLevel]int{
			models.RiskLow:      0,
			models.RiskMedium:   0,
			models.RiskHigh:     0,
			models.RiskCritical: 0,
		},
	}
	if len(forecasts) == 0 {
		return summary
	}

	horizon := f.now().AddDate(0, 12, 0)
	var totalLife float64
	for _, fc := range forecasts {
		totalLife += fc.RemainingLifeYears
		summary.RiskCounts[fc.RiskLevel]++
		if !fc.NextInspectionDate.After(horizon) {
			summary.DueWithin12Months++
		}
	}
	summary.MeanRemainingLifeYears = round1(totalLife / float64(len(forecasts)))
	return summary
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
