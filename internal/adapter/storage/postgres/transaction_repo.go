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

const transactionColumns = `id, reference, wallet_id, type, amount, status,
		recipient_wallet_number, metadata, created_at, updated_at`

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a transaction outside any caller-owned database transaction.
// Used for pending deposit rows, which must survive a failed gateway call.
func (r *TransactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	if _, err := r.pool.Exec(ctx, insertTransactionSQL, insertTransactionArgs(t)...); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// CreateInTx inserts a transaction within the caller's atomic unit.
func (r *TransactionRepo) CreateInTx(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	if _, err := tx.Exec(ctx, insertTransactionSQL, insertTransactionArgs(t)...); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

const insertTransactionSQL = `INSERT INTO transactions (id, reference, wallet_id, type, amount, status,
		recipient_wallet_number, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

func insertTransactionArgs(t *domain.Transaction) []any {
	return []any{
		t.ID, t.Reference, t.WalletID, t.Type, t.Amount, t.Status,
		t.RecipientWalletNumber, t.Metadata, t.CreatedAt, t.UpdatedAt,
	}
}

// GetByReference fetches a transaction by its unique reference (non-locking).
func (r *TransactionRepo) GetByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE reference = $1`

	return scanTransaction(r.pool.QueryRow(ctx, query, reference))
}

// GetByReferenceForUpdate fetches a transaction by reference with a
// pessimistic row lock, so concurrent webhook deliveries for the same
// reference serialize before reading its status.
// This MUST be called within a transaction.
func (r *TransactionRepo) GetByReferenceForUpdate(ctx context.Context, tx pgx.Tx, reference string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE reference = $1 FOR UPDATE`

	return scanTransaction(tx.QueryRow(ctx, query, reference))
}

// UpdateStatus moves a transaction to a new status within a database
// transaction. Status transitions are one-way; the caller checks terminality
// under the row lock before calling.
func (r *TransactionRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus) error {
	query := `UPDATE transactions SET status = $1, updated_at = $2 WHERE id = $3`

	tag, err := tx.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction not found: %s", id)
	}
	return nil
}

// ListByWallet returns a wallet's journal, most recent first.
func (r *TransactionRepo) ListByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE wallet_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		err := rows.Scan(
			&t.ID, &t.Reference, &t.WalletID, &t.Type, &t.Amount, &t.Status,
			&t.RecipientWalletNumber, &t.Metadata, &t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}

// ReferenceExists reports whether a reference is already present in the journal.
func (r *TransactionRepo) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM transactions WHERE reference = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, reference).Scan(&exists); err != nil {
		return false, fmt.Errorf("check reference: %w", err)
	}
	return exists, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(
		&t.ID, &t.Reference, &t.WalletID, &t.Type, &t.Amount, &t.Status,
		&t.RecipientWalletNumber, &t.Metadata, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}
