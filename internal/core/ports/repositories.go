package ports

import (
	"context"
	"time"

	"wallet-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error)
}

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx lock the wallet row and are only legal inside an
// atomic unit owned by the caller.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	GetByWalletNumber(ctx context.Context, walletNumber string) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance int64) error
	WalletNumberExists(ctx context.Context, walletNumber string) (bool, error)
}

// TransactionRepository defines persistence operations for the journal.
type TransactionRepository interface {
	// Create inserts outside any caller-owned transaction. Used for pending
	// deposit rows, which must survive a failed gateway call.
	Create(ctx context.Context, txn *domain.Transaction) error
	// CreateInTx inserts within the caller's atomic unit (transfer legs).
	CreateInTx(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error
	GetByReference(ctx context.Context, reference string) (*domain.Transaction, error)
	// GetByReferenceForUpdate locks the transaction row so concurrent webhook
	// deliveries for the same reference serialize on it.
	GetByReferenceForUpdate(ctx context.Context, tx pgx.Tx, reference string) (*domain.Transaction, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus) error
	// ListByWallet returns the wallet's journal, most recent first.
	ListByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error)
	ReferenceExists(ctx context.Context, reference string) (bool, error)
}

// APIKeyRepository defines persistence for API keys.
type APIKeyRepository interface {
	Create(ctx context.Context, key *domain.APIKey) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.APIKey, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.APIKey, error)
	CountActive(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error)
	Revoke(ctx context.Context, id uuid.UUID) error
}

// AuditRepository persists request audit rows.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}

// DBTransactor provides database transaction management. A pgx.Tx returned by
// Begin is the atomic unit of every ledger mutation.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
