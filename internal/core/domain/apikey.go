package domain

import (
	"time"

	"github.com/google/uuid"
)

// Permission names an action an API key may perform.
type Permission string

const (
	PermissionDeposit  Permission = "deposit"
	PermissionTransfer Permission = "transfer"
	PermissionRead     Permission = "read"
)

// ValidPermissions lists every permission an API key may carry.
var ValidPermissions = []Permission{PermissionDeposit, PermissionTransfer, PermissionRead}

// MaxActiveAPIKeys caps the number of unrevoked, unexpired keys per user.
const MaxActiveAPIKeys = 5

// APIKey is a permission-scoped credential. The raw key embeds the key ID for
// lookup; only the Argon2id hash of the secret half is stored.
type APIKey struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	Name        string       `json:"name"`
	SecretHash  string       `json:"-"`
	Permissions []Permission `json:"permissions"`
	ExpiresAt   time.Time    `json:"expires_at"`
	Revoked     bool         `json:"revoked"`
	CreatedAt   time.Time    `json:"created_at"`
}

// IsActive returns true if the key is neither revoked nor expired.
func (k *APIKey) IsActive(now time.Time) bool {
	return !k.Revoked && k.ExpiresAt.After(now)
}

// HasPermission reports whether the key grants the given action.
func (k *APIKey) HasPermission(p Permission) bool {
	for _, have := range k.Permissions {
		if have == p {
			return true
		}
	}
	return false
}
