package store

import (
	"context"
	"errors"

	"github.com/cmlops/cmlwatch/pkg/models"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID) error

	// The override ledger is append-only: CreateOverride never updates or
	// deletes prior rows, and GetLatestOverride resolves duplicate
	// id_numbers by returning the most recently appended record.
	CreateOverride(ctx context.Context, o *models.Override) error
	GetLatestOverride(ctx context.Context, idNumber string) (*models.Override, error)
	GetLatestOverrides(ctx context.Context, idNumbers []string) (map[string]*models.Override, error)
	ListOverrides(ctx context.Context) ([]*models.Override, error)
	OverrideStatistics(ctx context.Context) (*models.OverrideStatistics, error)
}
