package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records one authenticated request against the wallet API.
type AuditLog struct {
	ID         uuid.UUID  `json:"id"`
	UserID     *uuid.UUID `json:"user_id,omitempty"` // nil for unauthenticated paths (webhook)
	Action     string     `json:"action"`            // e.g. "wallet.transfer"
	Method     string     `json:"method"`
	Path       string     `json:"path"`
	HTTPStatus int        `json:"http_status"`
	ClientIP   string     `json:"client_ip"`
	CreatedAt  time.Time  `json:"created_at"`
}
