// Package handler contains the HTTP handlers for the CMLWatch API.
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cmlops/cmlwatch/internal/api/response"
	"github.com/cmlops/cmlwatch/pkg/models"
)

// Forecaster is the interface the forecast handler depends on.
type Forecaster interface {
	Batch(recs []models.CMLRecord) ([]models.Forecast, []models.RowError)
	Summarize(forecasts []models.Forecast) models.ForecastSummary
}

const maxBatchRecords = 10000

// Date layouts accepted on the wire, tried in order.
var requestDateLayouts = []string{"2006-01-02", time.RFC3339}

type forecastRecordRequest struct {
	IDNumber             string   `json:"id_number"`
	ThicknessMM          *float64 `json:"thickness_mm"`
	AverageCorrosionRate *float64 `json:"average_corrosion_rate"`
	Commodity            string   `json:"commodity"`
	FeatureType          string   `json:"feature_type"`
	CMLShape             string   `json:"cml_shape"`
	LastInspectionDate   string   `json:"last_inspection_date"`
}

type forecastRequest struct {
	Records []forecastRecordRequest `json:"records"`
}

type forecastResponse struct {
	Forecasts []models.Forecast      `json:"forecasts"`
	RowErrors []models.RowError      `json:"row_errors"`
	Summary   models.ForecastSummary `json:"summary"`
}

// NewForecastHandler returns an http.HandlerFunc for POST /api/v1/forecasts.
// Invalid rows are reported per-row alongside the successful forecasts;
// only a malformed request body fails the whole call.
func NewForecastHandler(fc Forecaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req forecastRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if len(req.Records) > maxBatchRecords {
			response.ValidationError(w, "records", "too many records in one batch")
			return
		}

		records := make([]models.CMLRecord, 0, len(req.Records))
		reqRow := make([]int, 0, len(req.Records)) // record index -> request row
		var rowErrs []models.RowError
		for i, rr := range req.Records {
			// Missing numeric fields are a per-row data-quality fault, not
			// a request-level one: collect and keep going.
			if rr.ThicknessMM == nil {
				rowErrs = append(rowErrs, models.RowError{
					Row: i, IDNumber: rr.IDNumber, Field: "thickness_mm", Message: "field is required",
				})
				continue
			}
			if rr.AverageCorrosionRate == nil {
				rowErrs = append(rowErrs, models.RowError{
					Row: i, IDNumber: rr.IDNumber, Field: "average_corrosion_rate", Message: "field is required",
				})
				continue
			}
			records = append(records, models.CMLRecord{
				IDNumber:             rr.IDNumber,
				ThicknessMM:          *rr.ThicknessMM,
				AverageCorrosionRate: *rr.AverageCorrosionRate,
				Commodity:            rr.Commodity,
				FeatureType:          rr.FeatureType,
				CMLShape:             rr.CMLShape,
				LastInspectionDate:   parseRequestDate(rr.LastInspectionDate),
			})
			reqRow = append(reqRow, i)
		}

		forecasts, batchErrs := fc.Batch(records)
		for _, be := range batchErrs {
			be.Row = reqRow[be.Row]
			rowErrs = append(rowErrs, be)
		}

		response.JSON(w, forecastResponse{
			Forecasts: forecasts,
			RowErrors: rowErrsOrEmpty(rowErrs),
			Summary:   fc.Summarize(forecasts),
		})
	}
}

// parseRequestDate parses an optional inspection date. An unparseable
// date is treated as absent; the forecaster falls back to now.
func parseRequestDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range requestDateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return &ts
		}
	}
	return nil
}

func rowErrsOrEmpty(errs []models.RowError) []models.RowError {
	if errs == nil {
		return []models.RowError{}
	}
	return errs
}
