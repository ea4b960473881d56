package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"wallet-backend/internal/core/domain"
	"wallet-backend/internal/core/ports"
	"wallet-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const apiKeyPrefix = "sk_live_"

// APIKeyServiceImpl implements ports.APIKeyService. Raw keys have the form
// sk_live_<key-id-hex>_<secret>; the key ID is embedded so validation can
// find the stored hash without scanning every key.
type APIKeyServiceImpl struct {
	keyRepo ports.APIKeyRepository
	hashSvc ports.HashService
	log     zerolog.Logger
}

// NewAPIKeyService creates a new APIKeyServiceImpl.
func NewAPIKeyService(keyRepo ports.APIKeyRepository, hashSvc ports.HashService, log zerolog.Logger) *APIKeyServiceImpl {
	return &APIKeyServiceImpl{
		keyRepo: keyRepo,
		hashSvc: hashSvc,
		log:     log,
	}
}

// Create issues a new API key. The raw key is returned exactly once; only its
// Argon2id hash is stored.
func (s *APIKeyServiceImpl) Create(ctx context.Context, userID uuid.UUID, name string, permissions []string, expiry string) (*ports.APIKeyMaterial, error) {
	perms, err := parsePermissions(permissions)
	if err != nil {
		return nil, err
	}

	expiresAt, err := resolveExpiry(expiry, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	active, err := s.keyRepo.CountActive(ctx, userID, time.Now().UTC())
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count active keys: %w", err))
	}
	if active >= domain.MaxActiveAPIKeys {
		return nil, apperror.ErrAPIKeyLimit()
	}

	return s.issue(ctx, userID, name, perms, expiresAt)
}

// Rollover replaces an expired key with a fresh one carrying the same name
// and permissions. The old key must already be expired.
func (s *APIKeyServiceImpl) Rollover(ctx context.Context, userID, keyID uuid.UUID, expiry string) (*ports.APIKeyMaterial, error) {
	old, err := s.keyRepo.GetByID(ctx, keyID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get key: %w", err))
	}
	if old == nil || old.UserID != userID {
		return nil, apperror.ErrNotFound("API key")
	}
	if old.Revoked {
		return nil, apperror.ErrAPIKeyRevoked()
	}

	now := time.Now().UTC()
	if now.Before(old.ExpiresAt) {
		return nil, apperror.ErrAPIKeyNotExpired()
	}

	expiresAt, err := resolveExpiry(expiry, now)
	if err != nil {
		return nil, err
	}

	return s.issue(ctx, userID, old.Name, old.Permissions, expiresAt)
}

// Revoke permanently disables a key owned by the caller.
func (s *APIKeyServiceImpl) Revoke(ctx context.Context, userID, keyID uuid.UUID) error {
	key, err := s.keyRepo.GetByID(ctx, keyID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get key: %w", err))
	}
	if key == nil || key.UserID != userID {
		return apperror.ErrNotFound("API key")
	}

	if err := s.keyRepo.Revoke(ctx, keyID); err != nil {
		return apperror.InternalError(fmt.Errorf("revoke key: %w", err))
	}

	s.log.Info().Str("key_id", keyID.String()).Str("user_id", userID.String()).Msg("API key revoked")
	return nil
}

// List returns all of the caller's keys, hashes excluded by the domain type.
func (s *APIKeyServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]domain.APIKey, error) {
	keys, err := s.keyRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list keys: %w", err))
	}
	return keys, nil
}

// Validate resolves a raw API key to its stored record, checking the embedded
// key ID, revocation, expiry and the Argon2id hash.
func (s *APIKeyServiceImpl) Validate(ctx context.Context, rawKey string) (*domain.APIKey, error) {
	keyID, secret, err := splitRawKey(rawKey)
	if err != nil {
		return nil, apperror.ErrInvalidAPIKey()
	}

	key, err := s.keyRepo.GetByID(ctx, keyID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get key: %w", err))
	}
	if key == nil {
		return nil, apperror.ErrInvalidAPIKey()
	}
	if key.Revoked {
		return nil, apperror.ErrAPIKeyRevoked()
	}
	if time.Now().UTC().After(key.ExpiresAt) {
		return nil, apperror.ErrAPIKeyExpired()
	}

	match, err := s.hashSvc.Verify(secret, key.SecretHash)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("verify key: %w", err))
	}
	if !match {
		return nil, apperror.ErrInvalidAPIKey()
	}

	return key, nil
}

// issue generates, hashes and persists a key.
func (s *APIKeyServiceImpl) issue(ctx context.Context, userID uuid.UUID, name string, perms []domain.Permission, expiresAt time.Time) (*ports.APIKeyMaterial, error) {
	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate secret: %w", err))
	}
	secret := hex.EncodeToString(secretBytes)

	secretHash, err := s.hashSvc.Hash(secret)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash secret: %w", err))
	}

	keyID := uuid.New()
	key := &domain.APIKey{
		ID:          keyID,
		UserID:      userID,
		Name:        name,
		SecretHash:  secretHash,
		Permissions: perms,
		ExpiresAt:   expiresAt,
		Revoked:     false,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.keyRepo.Create(ctx, key); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create key: %w", err))
	}

	rawKey := apiKeyPrefix + hex.EncodeToString(keyID[:]) + "_" + secret

	s.log.Info().
		Str("key_id", keyID.String()).
		Str("user_id", userID.String()).
		Time("expires_at", expiresAt).
		Msg("API key issued")

	return &ports.APIKeyMaterial{
		ID:        keyID,
		Key:       rawKey,
		ExpiresAt: expiresAt,
	}, nil
}

// splitRawKey extracts the embedded key ID and the secret from a raw key.
func splitRawKey(rawKey string) (uuid.UUID, string, error) {
	if !strings.HasPrefix(rawKey, apiKeyPrefix) {
		return uuid.Nil, "", fmt.Errorf("missing key prefix")
	}
	rest := strings.TrimPrefix(rawKey, apiKeyPrefix)
	parts := strings.SplitN(rest, "_", 2)
	if len(parts) != 2 || parts[1] == "" {
		return uuid.Nil, "", fmt.Errorf("malformed key")
	}

	idBytes, err := hex.DecodeString(parts[0])
	if err != nil || len(idBytes) != 16 {
		return uuid.Nil, "", fmt.Errorf("malformed key ID")
	}
	keyID, err := uuid.FromBytes(idBytes)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("malformed key ID: %w", err)
	}
	return keyID, parts[1], nil
}

// parsePermissions validates and converts requested permission names.
func parsePermissions(names []string) ([]domain.Permission, error) {
	if len(names) == 0 {
		return nil, apperror.Validation("at least one permission is required")
	}
	perms := make([]domain.Permission, 0, len(names))
	seen := make(map[domain.Permission]bool, len(names))
	for _, name := range names {
		p := domain.Permission(name)
		valid := false
		for _, vp := range domain.ValidPermissions {
			if vp == p {
				valid = true
				break
			}
		}
		if !valid {
			return nil, apperror.Validation(fmt.Sprintf("unknown permission: %s", name))
		}
		if !seen[p] {
			seen[p] = true
			perms = append(perms, p)
		}
	}
	return perms, nil
}

// resolveExpiry maps an expiry code (1H, 1D, 1M, 1Y) to an absolute time.
func resolveExpiry(expiry string, now time.Time) (time.Time, error) {
	switch strings.ToUpper(expiry) {
	case "1H":
		return now.Add(time.Hour), nil
	case "1D":
		return now.AddDate(0, 0, 1), nil
	case "1M":
		return now.AddDate(0, 1, 0), nil
	case "1Y":
		return now.AddDate(1, 0, 0), nil
	default:
		return time.Time{}, apperror.Validation("expiry must be one of 1H, 1D, 1M, 1Y")
	}
}
