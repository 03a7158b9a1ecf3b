// Package override implements the SME override ledger: append-only human
// decisions layered on top of model recommendations.
package override

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlops/cmlwatch/internal/cache"
	"github.com/cmlops/cmlwatch/internal/store"
	"github.com/cmlops/cmlwatch/pkg/models"
	"github.com/google/uuid"
)

const minReasonLength = 10

const statsCacheTTL = 30 * time.Second

var (
	ErrInvalidDecision = errors.New("decision must be KEEP or ELIMINATE")
	ErrReasonTooShort  = fmt.Errorf("reason must be at least %d characters", minReasonLength)
	ErrMissingAuthor   = errors.New("author is required")
	ErrMissingIDNumber = errors.New("id_number is required")
)

// AddParams are the inputs for recording a new override.
type AddParams struct {
	IDNumber            string
	Decision            string
	Reason              string
	Author              string
	OriginalPrediction  *string
	OriginalProbability *float64
}

// Service validates and records SME overrides and merges them into model
// predictions. Statistics reads are cached briefly; the ledger itself is
// always the source of truth.
type Service struct {
	store store.Store
	cache cache.Cache
	now   func() time.Time
}

// NewService creates an override Service.
func NewService(st store.Store, ca cache.Cache) *Service {
	return &Service{store: st, cache: ca, now: time.Now}
}

// NewServiceWithClock creates a Service with an injected clock for tests.
func NewServiceWithClock(st store.Store, ca cache.Cache, now func() time.Time) *Service {
	return &Service{store: st, cache: ca, now: now}
}

// Add validates and appends a new override. Validation failures leave the
// ledger untouched; a store failure is surfaced, never swallowed.
func (s *Service) Add(ctx context.Context, params AddParams) (*models.Override, error) {
	if err := validate(params); err != nil {
		return nil, err
	}

	o := &models.Override{
		ID:                  uuid.New(),
		IDNumber:            params.IDNumber,
		Decision:            params.Decision,
		Reason:              params.Reason,
		Author:              params.Author,
		OriginalPrediction:  params.OriginalPrediction,
		OriginalProbability: params.OriginalProbability,
		CreatedAt:           s.now().UTC(),
	}

	if err := s.store.CreateOverride(ctx, o); err != nil {
		return nil, fmt.Errorf("append override: %w", err)
	}

	// The cached statistics are stale now; drop them.
	if s.cache != nil {
		if err := s.cache.Delete(ctx, cache.OverrideStatsKey()); err != nil {
			slog.Warn("failed to invalidate override statistics cache", "error", err)
		}
	}

	return o, nil
}

func validate(params AddParams) error {
	if params.IDNumber == "" {
		return ErrMissingIDNumber
	}
	if params.Decision != models.DecisionKeep && params.Decision != models.DecisionEliminate {
		return fmt.Errorf("%w: got %q", ErrInvalidDecision, params.Decision)
	}
	if len(params.Reason) < minReasonLength {
		return ErrReasonTooShort
	}
	if params.Author == "" {
		return ErrMissingAuthor
	}
	return nil
}

// Get returns the most recently appended override for a CML, or
// store.ErrNotFound when none exists.
func (s *Service) Get(ctx context.Context, idNumber string) (*models.Override, error) {
	return s.store.GetLatestOverride(ctx, idNumber)
}

// List returns all overrides in append order.
func (s *Service) List(ctx context.Context) ([]*models.Override, error) {
	return s.store.ListOverrides(ctx)
}

// Statistics returns the read-side aggregate over all stored overrides,
// served from cache when fresh.
func (s *Service) Statistics(ctx context.Context) (*models.OverrideStatistics, error) {
	if s.cache != nil {
		if raw, ok, err := s.cache.Get(ctx, cache.OverrideStatsKey()); err == nil && ok {
			var stats models.OverrideStatistics
			if err := json.Unmarshal(raw, &stats); err == nil {
				return &stats, nil
			}
		}
	}

	stats, err := s.store.OverrideStatistics(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, cache.OverrideStatsKey(), raw, statsCacheTTL); err != nil {
				slog.Warn("failed to cache override statistics", "error", err)
			}
		}
	}
	return stats, nil
}

// Apply merges stored overrides into model predictions. Where an override
// exists the human decision becomes final; the model's recommendation is
// preserved on the output as provenance. Predictions without an override
// pass through with the model recommendation as the final decision.
func (s *Service) Apply(ctx context.Context, predictions []models.Prediction) ([]models.ReviewedPrediction, error) {
	ids := make([]string, 0, len(predictions))
	for _, p := range predictions {
		ids = append(ids, p.IDNumber)
	}

	overrides, err := s.store.GetLatestOverrides(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}

	reviewed := make([]models.ReviewedPrediction, 0, len(predictions))
	for _, p := range predictions {
		rp := models.ReviewedPrediction{
			Prediction:    p,
			FinalDecision: p.Recommendation,
		}
		if o, ok := overrides[p.IDNumber]; ok {
			rp.FinalDecision = o.Decision
			rp.Overridden = true
			rp.OverrideAuthor = o.Author
			rp.OverrideReason = o.Reason
		}
		reviewed = append(reviewed, rp)
	}
	return reviewed, nil
}
