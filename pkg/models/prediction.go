package models

// Prediction is a model recommendation for one CML, supplied by the caller
// alongside the record fields the reporting layer groups on. The scoring
// model itself lives outside this service.
type Prediction struct {
	IDNumber               string  `json:"id_number"`
	Recommendation         string  `json:"recommendation"` // KEEP or ELIMINATE
	EliminationProbability float64 `json:"elimination_probability"`
	ConfidenceLevel        string  `json:"confidence_level,omitempty"` // LOW, MEDIUM, HIGH
	Commodity              string  `json:"commodity,omitempty"`
	FeatureType            string  `json:"feature_type,omitempty"`
	AverageCorrosionRate   float64 `json:"average_corrosion_rate,omitempty"`
	ThicknessMM            float64 `json:"thickness_mm,omitempty"`
}

// ReviewedPrediction is a Prediction after the override ledger has been
// consulted. The model's recommendation is preserved as provenance; the
// human decision, when present, wins.
type ReviewedPrediction struct {
	Prediction
	FinalDecision  string `json:"final_decision"`
	Overridden     bool   `json:"overridden"`
	OverrideAuthor string `json:"override_author,omitempty"`
	OverrideReason string `json:"override_reason,omitempty"`
}
