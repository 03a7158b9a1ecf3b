package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cmlops/cmlwatch/internal/api/response"
	"github.com/cmlops/cmlwatch/internal/override"
	"github.com/cmlops/cmlwatch/internal/store"
	"github.com/cmlops/cmlwatch/pkg/models"
	"github.com/go-chi/chi/v5"
)

// OverrideService is the interface the override handlers depend on.
type OverrideService interface {
	Add(ctx context.Context, params override.AddParams) (*models.Override, error)
	Get(ctx context.Context, idNumber string) (*models.Override, error)
	List(ctx context.Context) ([]*models.Override, error)
	Statistics(ctx context.Context) (*models.OverrideStatistics, error)
	Apply(ctx context.Context, predictions []models.Prediction) ([]models.ReviewedPrediction, error)
}

type addOverrideRequest struct {
	IDNumber            string   `json:"id_number"`
	Decision            string   `json:"decision"`
	Reason              string   `json:"reason"`
	Author              string   `json:"author"`
	OriginalPrediction  *string  `json:"original_prediction"`
	OriginalProbability *float64 `json:"original_probability"`
}

// NewAddOverrideHandler returns an http.HandlerFunc for POST /api/v1/overrides.
func NewAddOverrideHandler(svc OverrideService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addOverrideRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		o, err := svc.Add(r.Context(), override.AddParams{
			IDNumber:            req.IDNumber,
			Decision:            req.Decision,
			Reason:              req.Reason,
			Author:              req.Author,
			OriginalPrediction:  req.OriginalPrediction,
			OriginalProbability: req.OriginalProbability,
		})
		if err != nil {
			switch {
			case errors.Is(err, override.ErrMissingIDNumber):
				response.ValidationError(w, "id_number", err.Error())
			case errors.Is(err, override.ErrInvalidDecision):
				response.ValidationError(w, "decision", err.Error())
			case errors.Is(err, override.ErrReasonTooShort):
				response.ValidationError(w, "reason", err.Error())
			case errors.Is(err, override.ErrMissingAuthor):
				response.ValidationError(w, "author", err.Error())
			default:
				response.Error(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE",
					"Failed to persist override", nil)
			}
			return
		}

		response.Created(w, o)
	}
}

// NewGetOverrideHandler returns an http.HandlerFunc for
// GET /api/v1/overrides/{idNumber}. Duplicate appends for the same CML
// resolve to the most recent record.
func NewGetOverrideHandler(svc OverrideService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idNumber := chi.URLParam(r, "idNumber")

		o, err := svc.Get(r.Context(), idNumber)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND",
					"No override found for "+idNumber, nil)
				return
			}
			response.Error(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE",
				"Failed to read override", nil)
			return
		}

		response.JSON(w, o)
	}
}

// NewListOverridesHandler returns an http.HandlerFunc for GET /api/v1/overrides.
func NewListOverridesHandler(svc OverrideService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		overrides, err := svc.List(r.Context())
		if err != nil {
			response.Error(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE",
				"Failed to list overrides", nil)
			return
		}
		if overrides == nil {
			overrides = []*models.Override{}
		}
		response.JSON(w, overrides)
	}
}

// NewOverrideStatisticsHandler returns an http.HandlerFunc for
// GET /api/v1/overrides/statistics.
func NewOverrideStatisticsHandler(svc OverrideService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Statistics(r.Context())
		if err != nil {
			response.Error(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE",
				"Failed to compute override statistics", nil)
			return
		}
		response.JSON(w, stats)
	}
}
