package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/cmlops/cmlwatch/internal/api/response"
	"github.com/cmlops/cmlwatch/internal/dataset"
	"github.com/cmlops/cmlwatch/pkg/models"
)

const maxUploadBytes = 50 << 20 // 50 MiB

// NewValidateDatasetHandler returns an http.HandlerFunc for
// POST /api/v1/datasets/validate. It accepts a multipart CSV upload and
// returns parse errors, data-quality warnings, and dataset statistics.
func NewValidateDatasetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

		file, header, err := r.FormFile("file")
		if err != nil {
			response.ValidationError(w, "file", "multipart field 'file' is required")
			return
		}
		defer file.Close()

		if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".csv" {
			response.ValidationError(w, "file", "unsupported file format "+ext+", expected .csv")
			return
		}

		records, rowErrs, err := dataset.ReadCSV(file)
		if err != nil {
			var missing *dataset.MissingColumnsError
			if errors.As(err, &missing) {
				response.Error(w, http.StatusBadRequest, "MISSING_COLUMNS",
					missing.Error(), map[string]any{"missing_columns": missing.Missing})
				return
			}
			response.Error(w, http.StatusBadRequest, "INVALID_FILE",
				"Failed to parse CSV file", map[string]string{"detail": err.Error()})
			return
		}

		response.JSON(w, validateDatasetResponse{
			Filename:   header.Filename,
			Rows:       len(records),
			RowErrors:  rowErrsOrEmpty(rowErrs),
			Validation: dataset.Validate(records),
		})
	}
}

type validateDatasetResponse struct {
	Filename   string                   `json:"filename"`
	Rows       int                      `json:"rows"`
	RowErrors  []models.RowError        `json:"row_errors"`
	Validation dataset.ValidationResult `json:"validation"`
}
