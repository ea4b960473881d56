package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType represents the kind of money movement.
type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "deposit"
	TransactionTypeTransferOut TransactionType = "transfer_out"
	TransactionTypeTransferIn  TransactionType = "transfer_in"
)

// TransactionStatus represents the lifecycle state of a transaction.
// Deposits start pending and are resolved by webhook reconciliation;
// transfers are created already terminal because they complete synchronously.
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// Transaction is an immutable journal entry for a balance-affecting event.
// Reference is globally unique and doubles as the idempotency key.
type Transaction struct {
	ID                    uuid.UUID         `json:"id"`
	Reference             string            `json:"reference"`
	WalletID              uuid.UUID         `json:"wallet_id"`
	Type                  TransactionType   `json:"type"`
	Amount                int64             `json:"amount"` // Minor units, always positive
	Status                TransactionStatus `json:"status"`
	RecipientWalletNumber *string           `json:"recipient_wallet_number,omitempty"`
	Metadata              *string           `json:"metadata,omitempty"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
}

// IsTerminal returns true once the transaction has reached a final state.
// Terminal transactions are never re-entered; duplicate webhook deliveries
// for a terminal deposit are a no-op.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusSuccess || t.Status == TransactionStatusFailed
}
