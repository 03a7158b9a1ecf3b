package dataset_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cmlops/cmlwatch/internal/dataset"
	"github.com/cmlops/cmlwatch/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `id_number,thickness_mm,average_corrosion_rate,commodity,feature_type,cml_shape,last_inspection_date
CML-001,9.5,0.12,Crude Oil,Pipe,Both,2023-06-15
CML-002,8.0,0.18,Gas,Elbow,Internal,
CML-003,12.0,0.05,Crude Oil,Tee,External,2024-01-10
`

func TestReadCSV_ParsesRecords(t *testing.T) {
	records, rowErrs, err := dataset.ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Empty(t, rowErrs)
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, "CML-001", first.IDNumber)
	assert.Equal(t, 9.5, first.ThicknessMM)
	assert.Equal(t, 0.12, first.AverageCorrosionRate)
	assert.Equal(t, "Crude Oil", first.Commodity)
	assert.Equal(t, "Pipe", first.FeatureType)
	require.NotNil(t, first.LastInspectionDate)
	assert.Equal(t, time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC), *first.LastInspectionDate)

	// Empty date column stays unset, not an error.
	assert.Nil(t, records[1].LastInspectionDate)
}

func TestReadCSV_MissingRequiredColumns(t *testing.T) {
	csv := "id_number,commodity\nCML-001,Crude Oil\n"

	_, _, err := dataset.ReadCSV(strings.NewReader(csv))
	require.Error(t, err)

	var missing *dataset.MissingColumnsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"thickness_mm", "average_corrosion_rate"}, missing.Missing)
}

func TestReadCSV_BadNumericCellIsRowError(t *testing.T) {
	csv := `id_number,thickness_mm,average_corrosion_rate
CML-001,9.5,0.12
CML-002,not-a-number,0.18
CML-003,12.0,bogus
`
	records, rowErrs, err := dataset.ReadCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Len(t, rowErrs, 2)

	assert.Equal(t, 1, rowErrs[0].Row)
	assert.Equal(t, "CML-002", rowErrs[0].IDNumber)
	assert.Equal(t, "thickness_mm", rowErrs[0].Field)
	assert.Equal(t, "average_corrosion_rate", rowErrs[1].Field)
}

func TestReadCSV_MalformedDateIsNotAnError(t *testing.T) {
	csv := `id_number,thickness_mm,average_corrosion_rate,last_inspection_date
CML-001,9.5,0.12,garbage-date
`
	records, rowErrs, err := dataset.ReadCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Empty(t, rowErrs)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].LastInspectionDate)
}

func TestReadCSV_EmptyInput(t *testing.T) {
	_, _, err := dataset.ReadCSV(strings.NewReader(""))
	require.Error(t, err)
}

// --- Validate ---

func TestValidate_CleanDataset(t *testing.T) {
	records := []models.CMLRecord{
		{IDNumber: "CML-001", ThicknessMM: 10.0, AverageCorrosionRate: 0.1, Commodity: "Crude Oil", FeatureType: "Pipe"},
		{IDNumber: "CML-002", ThicknessMM: 8.0, AverageCorrosionRate: 0.3, Commodity: "Gas", FeatureType: "Elbow"},
	}

	result := dataset.Validate(records)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, 2, result.Stats.TotalRecords)
	assert.Equal(t, 2, result.Stats.UniqueCMLs)
	assert.Equal(t, 0.2, result.Stats.AvgCorrosionRate)
	assert.Equal(t, 9.0, result.Stats.AvgThickness)
	assert.Equal(t, 1, result.Stats.CommodityDistribution["Crude Oil"])
	assert.Equal(t, 1, result.Stats.FeatureTypeDistribution["Elbow"])
}

func TestValidate_WarnsOnDuplicatesAndRanges(t *testing.T) {
	records := []models.CMLRecord{
		{IDNumber: "CML-001", ThicknessMM: 10.0, AverageCorrosionRate: 0.1},
		{IDNumber: "CML-001", ThicknessMM: 9.0, AverageCorrosionRate: 0.2},
		{IDNumber: "CML-002", ThicknessMM: 60.0, AverageCorrosionRate: 7.5},
	}

	result := dataset.Validate(records)
	assert.True(t, result.Valid, "warnings must not invalidate the dataset")
	require.Len(t, result.Warnings, 3)
	assert.Contains(t, result.Warnings[0], "CML-001")
	assert.Contains(t, result.Warnings[1], "corrosion rates")
	assert.Contains(t, result.Warnings[2], "thickness")
	assert.Equal(t, 2, result.Stats.UniqueCMLs)
}

func TestValidate_EmptyDataset(t *testing.T) {
	result := dataset.Validate(nil)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "no records")
}
