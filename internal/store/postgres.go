package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlops/cmlwatch/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- API Keys ---

func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE key_prefix = $1 AND deleted_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, name, key_hash, key_prefix, scopes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		key.ID, key.Name, key.KeyHash, key.KeyPrefix, key.Scopes, key.CreatedAt, key.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAPIKeys(ctx context.Context) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE deleted_at IS NULL ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Override ledger ---

func (s *PostgresStore) CreateOverride(ctx context.Context, o *models.Override) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO overrides (id, id_number, decision, reason, author, original_prediction, original_probability, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		o.ID, o.IDNumber, o.Decision, o.Reason, o.Author, o.OriginalPrediction, o.OriginalProbability, o.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create override: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetLatestOverride(ctx context.Context, idNumber string) (*models.Override, error) {
	var o models.Override
	err := s.pool.QueryRow(ctx,
		`SELECT id, id_number, decision, reason, author, original_prediction, original_probability, created_at
		 FROM overrides WHERE id_number = $1 ORDER BY created_at DESC, id DESC LIMIT 1`, idNumber,
	).Scan(&o.ID, &o.IDNumber, &o.Decision, &o.Reason, &o.Author,
		&o.OriginalPrediction, &o.OriginalProbability, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get latest override: %w", err)
	}
	return &o, nil
}

func (s *PostgresStore) GetLatestOverrides(ctx context.Context, idNumbers []string) (map[string]*models.Override, error) {
	if len(idNumbers) == 0 {
		return map[string]*models.Override{}, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT ON (id_number)
		        id, id_number, decision, reason, author, original_prediction, original_probability, created_at
		 FROM overrides WHERE id_number = ANY($1)
		 ORDER BY id_number, created_at DESC, id DESC`, idNumbers)
	if err != nil {
		return nil, fmt.Errorf("get latest overrides: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*models.Override)
	for rows.Next() {
		var o models.Override
		if err := rows.Scan(&o.ID, &o.IDNumber, &o.Decision, &o.Reason, &o.Author,
			&o.OriginalPrediction, &o.OriginalProbability, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		out[o.IDNumber] = &o
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListOverrides(ctx context.Context) ([]*models.Override, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, id_number, decision, reason, author, original_prediction, original_probability, created_at
		 FROM overrides ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	defer rows.Close()

	var overrides []*models.Override
	for rows.Next() {
		var o models.Override
		if err := rows.Scan(&o.ID, &o.IDNumber, &o.Decision, &o.Reason, &o.Author,
			&o.OriginalPrediction, &o.OriginalProbability, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		overrides = append(overrides, &o)
	}
	return overrides, rows.Err()
}

func (s *PostgresStore) OverrideStatistics(ctx context.Context) (*models.OverrideStatistics, error) {
	var stats models.OverrideStatistics
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE decision = 'KEEP'),
		        COUNT(*) FILTER (WHERE decision = 'ELIMINATE')
		 FROM overrides`,
	).Scan(&stats.Total, &stats.KeepCount, &stats.EliminateCount)
	if err != nil {
		return nil, fmt.Errorf("override statistics: %w", err)
	}
	return &stats, nil
}

// isDuplicateKeyError reports whether err is a Postgres unique violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
