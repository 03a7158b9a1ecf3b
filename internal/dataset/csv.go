// Package dataset parses and validates uploaded CML datasets.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cmlops/cmlwatch/pkg/models"
)

// Columns the forecasting pipeline needs. Categorical descriptors are
// carried through when present but are not required.
var requiredColumns = []string{"id_number", "thickness_mm", "average_corrosion_rate"}

// Date layouts accepted for last_inspection_date, tried in order.
var dateLayouts = []string{"2006-01-02", time.RFC3339, "02/01/2006"}

// MissingColumnsError reports required columns absent from the header.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// ReadCSV parses a CSV stream into CML records. The header row is
// required; required columns must be present or the whole read fails with
// a MissingColumnsError. Rows with unparseable numeric fields are
// collected as RowErrors rather than aborting the read. A malformed date
// never fails a row; the field is left unset and recovered downstream.
func ReadCSV(r io.Reader) ([]models.CMLRecord, []models.RowError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("csv has no header row")
	}

	idx := make(map[string]int, len(rows[0]))
	for i, col := range rows[0] {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, nil, &MissingColumnsError{Missing: missing}
	}

	records := make([]models.CMLRecord, 0, len(rows)-1)
	var rowErrs []models.RowError

	for i, row := range rows[1:] {
		rec, rowErr := parseRow(row, idx, i)
		if rowErr != nil {
			rowErrs = append(rowErrs, *rowErr)
			continue
		}
		records = append(records, rec)
	}
	return records, rowErrs, nil
}

func parseRow(row []string, idx map[string]int, rowNum int) (models.CMLRecord, *models.RowError) {
	field := func(name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rec := models.CMLRecord{
		IDNumber:    field("id_number"),
		Commodity:   field("commodity"),
		FeatureType: field("feature_type"),
		CMLShape:    field("cml_shape"),
	}

	thickness, err := strconv.ParseFloat(field("thickness_mm"), 64)
	if err != nil {
		return rec, &models.RowError{
			Row: rowNum, IDNumber: rec.IDNumber, Field: "thickness_mm",
			Message: fmt.Sprintf("not a number: %q", field("thickness_mm")),
		}
	}
	rec.ThicknessMM = thickness

	rate, err := strconv.ParseFloat(field("average_corrosion_rate"), 64)
	if err != nil {
		return rec, &models.RowError{
			Row: rowNum, IDNumber: rec.IDNumber, Field: "average_corrosion_rate",
			Message: fmt.Sprintf("not a number: %q", field("average_corrosion_rate")),
		}
	}
	rec.AverageCorrosionRate = rate

	if raw := field("last_inspection_date"); raw != "" {
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, raw); err == nil {
				rec.LastInspectionDate = &ts
				break
			}
		}
	}
	return rec, nil
}

// ValidationResult is the outcome of dataset quality checks. Errors make
// the dataset unusable; warnings flag unusual but scoreable data.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Stats    Stats    `json:"stats"`
}

// Stats describes a parsed dataset.
type Stats struct {
	TotalRecords            int            `json:"total_records"`
	UniqueCMLs              int            `json:"unique_cmls"`
	AvgCorrosionRate        float64        `json:"avg_corrosion_rate"`
	AvgThickness            float64        `json:"avg_thickness"`
	CommodityDistribution   map[string]int `json:"commodity_distribution"`
	FeatureTypeDistribution map[string]int `json:"feature_type_distribution"`
}

// Expected physical ranges. Values outside them are flagged as warnings,
// not rejected: the forecaster tolerates them and the ranges encode
// expectation, not possibility.
const (
	maxExpectedRate      = 5.0
	maxExpectedThickness = 50.0
)

// Validate runs data-quality checks over parsed records.
func Validate(records []models.CMLRecord) ValidationResult {
	result := ValidationResult{
		Valid:    true,
		Errors:   []string{},
		Warnings: []string{},
		Stats: Stats{
			CommodityDistribution:   map[string]int{},
			FeatureTypeDistribution: map[string]int{},
		},
	}
	if len(records) == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "dataset contains no records")
		return result
	}

	seen := make(map[string]bool, len(records))
	var dupes []string
	var rateOutOfRange, thicknessOutOfRange int
	var totalRate, totalThickness float64

	for _, rec := range records {
		if seen[rec.IDNumber] {
			dupes = append(dupes, rec.IDNumber)
		}
		seen[rec.IDNumber] = true

		if rec.AverageCorrosionRate < 0 || rec.AverageCorrosionRate > maxExpectedRate {
			rateOutOfRange++
		}
		if rec.ThicknessMM <= 0 || rec.ThicknessMM > maxExpectedThickness {
			thicknessOutOfRange++
		}
		totalRate += rec.AverageCorrosionRate
		totalThickness += rec.ThicknessMM

		if rec.Commodity != "" {
			result.Stats.CommodityDistribution[rec.Commodity]++
		}
		if rec.FeatureType != "" {
			result.Stats.FeatureTypeDistribution[rec.FeatureType]++
		}
	}

	if len(dupes) > 0 {
		if len(dupes) > 5 {
			dupes = dupes[:5]
		}
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("duplicate CML ids found: %s", strings.Join(dupes, ", ")))
	}
	if rateOutOfRange > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d records with unusual corrosion rates (expected 0-%g mm/year)", rateOutOfRange, maxExpectedRate))
	}
	if thicknessOutOfRange > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d records with unusual thickness (expected 0-%g mm)", thicknessOutOfRange, maxExpectedThickness))
	}

	n := float64(len(records))
	result.Stats.TotalRecords = len(records)
	result.Stats.UniqueCMLs = len(seen)
	result.Stats.AvgCorrosionRate = round3(totalRate / n)
	result.Stats.AvgThickness = round3(totalThickness / n)
	return result
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
