package models

import "time"

// CMLRecord is a single Condition Monitoring Location inspection point.
// IDNumber is not guaranteed unique across a dataset; duplicates are
// tolerated and scored independently.
type CMLRecord struct {
	IDNumber             string     `json:"id_number"`
	ThicknessMM          float64    `json:"thickness_mm"`
	AverageCorrosionRate float64    `json:"average_corrosion_rate"`
	Commodity            string     `json:"commodity,omitempty"`
	FeatureType          string     `json:"feature_type,omitempty"`
	CMLShape             string     `json:"cml_shape,omitempty"`
	LastInspectionDate   *time.Time `json:"last_inspection_date,omitempty"`
}
