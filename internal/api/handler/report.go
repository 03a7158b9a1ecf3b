package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cmlops/cmlwatch/internal/api/response"
	"github.com/cmlops/cmlwatch/internal/report"
	"github.com/cmlops/cmlwatch/pkg/models"
)

type eliminationReportRequest struct {
	Predictions []models.Prediction `json:"predictions"`
}

// NewEliminationReportHandler returns an http.HandlerFunc for
// POST /api/v1/reports/elimination. Stored SME overrides are applied to
// the supplied predictions before aggregation, so the report reflects
// final decisions while keeping model output as provenance.
func NewEliminationReportHandler(svc OverrideService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req eliminationReportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		for i, p := range req.Predictions {
			if p.IDNumber == "" {
				response.ValidationError(w, "predictions", "prediction at index "+strconv.Itoa(i)+" is missing id_number")
				return
			}
			if p.Recommendation != models.DecisionKeep && p.Recommendation != models.DecisionEliminate {
				response.ValidationError(w, "predictions",
					"prediction for "+p.IDNumber+" has invalid recommendation "+p.Recommendation)
				return
			}
		}

		reviewed, err := svc.Apply(r.Context(), req.Predictions)
		if err != nil {
			response.Error(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE",
				"Failed to apply overrides", nil)
			return
		}

		response.JSON(w, eliminationReportResponse{
			Report:      report.Build(reviewed),
			Predictions: reviewed,
		})
	}
}

type eliminationReportResponse struct {
	Report      report.Report               `json:"report"`
	Predictions []models.ReviewedPrediction `json:"predictions"`
}
