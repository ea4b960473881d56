package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account holder onboarded through Google OAuth.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	GoogleID  string    `json:"-"` // Subject claim from the identity provider
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
