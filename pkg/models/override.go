package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	DecisionKeep      = "KEEP"
	DecisionEliminate = "ELIMINATE"
)

// Override is one SME decision for a CML. Records are append-only: the
// ledger may hold several for the same id_number, and lookups return the
// most recently appended one.
type Override struct {
	ID                  uuid.UUID `db:"id"                   json:"id"`
	IDNumber            string    `db:"id_number"            json:"id_number"`
	Decision            string    `db:"decision"             json:"decision"`
	Reason              string    `db:"reason"               json:"reason"`
	Author              string    `db:"author"               json:"author"`
	OriginalPrediction  *string   `db:"original_prediction"  json:"original_prediction,omitempty"`
	OriginalProbability *float64  `db:"original_probability" json:"original_probability,omitempty"`
	CreatedAt           time.Time `db:"created_at"           json:"created_at"`
}

// OverrideStatistics is the read-side aggregate over all stored overrides.
type OverrideStatistics struct {
	Total          int `json:"total"`
	KeepCount      int `json:"keep_count"`
	EliminateCount int `json:"eliminate_count"`
}
