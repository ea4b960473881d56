package domain

import (
	"time"

	"github.com/google/uuid"
)

// WalletNumberLength is the fixed length of the externally shareable wallet number.
const WalletNumberLength = 13

// Wallet holds a user's funds. Balance is stored in integer minor units
// (1/100 of a major unit) and is only ever mutated inside a database
// transaction that holds the wallet row lock.
type Wallet struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	WalletNumber string    `json:"wallet_number"` // 13 digits, globally unique
	Balance      int64     `json:"balance"`       // Minor units, never negative
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
