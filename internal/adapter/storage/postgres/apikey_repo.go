package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wallet-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// APIKeyRepo implements ports.APIKeyRepository. Permissions are stored as a
// text array.
type APIKeyRepo struct {
	pool Pool
}

// NewAPIKeyRepo creates a new APIKeyRepo.
func NewAPIKeyRepo(pool Pool) *APIKeyRepo {
	return &APIKeyRepo{pool: pool}
}

// Create inserts a new API key.
func (r *APIKeyRepo) Create(ctx context.Context, k *domain.APIKey) error {
	query := `INSERT INTO api_keys (id, user_id, name, secret_hash, permissions, expires_at, revoked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		k.ID, k.UserID, k.Name, k.SecretHash, permissionsToStrings(k.Permissions),
		k.ExpiresAt, k.Revoked, k.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert api key: %w", err)
	}
	return nil
}

// GetByID fetches an API key by UUID.
func (r *APIKeyRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.APIKey, error) {
	query := `SELECT id, user_id, name, secret_hash, permissions, expires_at, revoked, created_at
		FROM api_keys WHERE id = $1`

	return scanAPIKey(r.pool.QueryRow(ctx, query, id))
}

// ListByUser returns all of a user's keys, newest first.
func (r *APIKeyRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.APIKey, error) {
	query := `SELECT id, user_id, name, secret_hash, permissions, expires_at, revoked, created_at
		FROM api_keys WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []domain.APIKey
	for rows.Next() {
		k := domain.APIKey{}
		var perms []string
		err := rows.Scan(&k.ID, &k.UserID, &k.Name, &k.SecretHash, &perms, &k.ExpiresAt, &k.Revoked, &k.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan api key row: %w", err)
		}
		k.Permissions = stringsToPermissions(perms)
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate api key rows: %w", err)
	}
	return keys, nil
}

// CountActive counts unrevoked, unexpired keys for the per-user limit.
func (r *APIKeyRepo) CountActive(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM api_keys WHERE user_id = $1 AND revoked = FALSE AND expires_at > $2`

	var count int64
	if err := r.pool.QueryRow(ctx, query, userID, now).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active api keys: %w", err)
	}
	return count, nil
}

// Revoke marks a key revoked. Revocation is permanent.
func (r *APIKeyRepo) Revoke(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE api_keys SET revoked = TRUE WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("api key not found: %s", id)
	}
	return nil
}

func scanAPIKey(row pgx.Row) (*domain.APIKey, error) {
	k := &domain.APIKey{}
	var perms []string
	err := row.Scan(&k.ID, &k.UserID, &k.Name, &k.SecretHash, &perms, &k.ExpiresAt, &k.Revoked, &k.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan api key: %w", err)
	}
	k.Permissions = stringsToPermissions(perms)
	return k, nil
}

func permissionsToStrings(perms []domain.Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}

func stringsToPermissions(perms []string) []domain.Permission {
	out := make([]domain.Permission, len(perms))
	for i, p := range perms {
		out[i] = domain.Permission(p)
	}
	return out
}
