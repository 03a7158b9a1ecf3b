// Package report aggregates reviewed predictions into the elimination
// report consumed by the dashboard.
package report

import (
	"math"
	"sort"

	"github.com/cmlops/cmlwatch/pkg/models"
)

const topCandidateLimit = 20

// Marginal cases sit in the band where the model is close to undecided.
const (
	marginalLow  = 0.4
	marginalHigh = 0.6
)

// Summary is the headline numbers of an elimination report.
type Summary struct {
	TotalCMLs               int     `json:"total_cmls"`
	RecommendedEliminations int     `json:"recommended_eliminations"`
	RecommendedKeep         int     `json:"recommended_keep"`
	EliminationRatePercent  float64 `json:"elimination_rate"`
}

// Candidate is one top elimination candidate row.
type Candidate struct {
	IDNumber               string  `json:"id_number"`
	EliminationProbability float64 `json:"elimination_probability"`
	ConfidenceLevel        string  `json:"confidence_level,omitempty"`
	AverageCorrosionRate   float64 `json:"average_corrosion_rate"`
	ThicknessMM            float64 `json:"thickness_mm"`
}

// MarginalCase is a prediction the model is nearly undecided on.
type MarginalCase struct {
	IDNumber               string  `json:"id_number"`
	EliminationProbability float64 `json:"elimination_probability"`
	FinalDecision          string  `json:"final_decision"`
}

// Report is the full elimination report.
type Report struct {
	Summary                Summary        `json:"summary"`
	ConfidenceDistribution map[string]int `json:"confidence_distribution"`
	EliminationByCommodity map[string]int `json:"elimination_by_commodity"`
	EliminationByFeature   map[string]int `json:"elimination_by_feature"`
	TopCandidates          []Candidate    `json:"top_elimination_candidates"`
	MarginalCases          []MarginalCase `json:"marginal_cases"`
	OverriddenCount        int            `json:"overridden_count"`
}

// Build aggregates reviewed predictions into a Report. Decisions reflect
// the final (override-applied) decision, not the raw model output. An
// empty input yields a zeroed, renderable report.
func Build(reviewed []models.ReviewedPrediction) Report {
	r := Report{
		ConfidenceDistribution: map[string]int{},
		EliminationByCommodity: map[string]int{},
		EliminationByFeature:   map[string]int{},
		TopCandidates:          []Candidate{},
		MarginalCases:          []MarginalCase{},
	}
	r.Summary.TotalCMLs = len(reviewed)
	if len(reviewed) == 0 {
		return r
	}

	var eliminations []models.ReviewedPrediction
	for _, rp := range reviewed {
		if rp.ConfidenceLevel != "" {
			r.ConfidenceDistribution[rp.ConfidenceLevel]++
		}
		if rp.Overridden {
			r.OverriddenCount++
		}

		if rp.FinalDecision == models.DecisionEliminate {
			eliminations = append(eliminations, rp)
			if rp.Commodity != "" {
				r.EliminationByCommodity[rp.Commodity]++
			}
			if rp.FeatureType != "" {
				r.EliminationByFeature[rp.FeatureType]++
			}
		}

		if rp.EliminationProbability > marginalLow && rp.EliminationProbability < marginalHigh {
			r.MarginalCases = append(r.MarginalCases, MarginalCase{
				IDNumber:               rp.IDNumber,
				EliminationProbability: rp.EliminationProbability,
				FinalDecision:          rp.FinalDecision,
			})
		}
	}

	r.Summary.RecommendedEliminations = len(eliminations)
	r.Summary.RecommendedKeep = len(reviewed) - len(eliminations)
	r.Summary.EliminationRatePercent = round1(float64(len(eliminations)) / float64(len(reviewed)) * 100)

	sort.SliceStable(eliminations, func(i, j int) bool {
		return eliminations[i].EliminationProbability > eliminations[j].EliminationProbability
	})
	for i, rp := range eliminations {
		if i == topCandidateLimit {
			break
		}
		r.TopCandidates = append(r.TopCandidates, Candidate{
			IDNumber:               rp.IDNumber,
			EliminationProbability: rp.EliminationProbability,
			ConfidenceLevel:        rp.ConfidenceLevel,
			AverageCorrosionRate:   rp.AverageCorrosionRate,
			ThicknessMM:            rp.ThicknessMM,
		})
	}
	return r
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
