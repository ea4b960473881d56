package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"wallet-backend/internal/core/domain"
	"wallet-backend/internal/core/ports"
	"wallet-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	depositRefPrefix     = "DEP-"
	transferOutRefPrefix = "TRF-"
	transferInRefPrefix  = "TRF-IN-"

	// How many fresh references to try before giving up on a collision.
	maxReferenceAttempts = 3

	webhookDedupTTL = 24 * time.Hour
)

// WalletServiceImpl implements ports.WalletService.
type WalletServiceImpl struct {
	walletRepo ports.WalletRepository
	txRepo     ports.TransactionRepository
	userRepo   ports.UserRepository
	gateway    ports.PaymentGateway
	dedupCache ports.EventDedupCache
	transactor ports.DBTransactor
	minDeposit int64 // Minor units
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl. minDeposit is the minimum
// deposit amount in minor units.
func NewWalletService(
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	userRepo ports.UserRepository,
	gateway ports.PaymentGateway,
	dedupCache ports.EventDedupCache,
	transactor ports.DBTransactor,
	minDeposit int64,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo: walletRepo,
		txRepo:     txRepo,
		userRepo:   userRepo,
		gateway:    gateway,
		dedupCache: dedupCache,
		transactor: transactor,
		minDeposit: minDeposit,
		log:        log,
	}
}

// GetBalance returns the user's wallet balance in minor units.
func (s *WalletServiceImpl) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return 0, apperror.ErrNotFound("wallet")
	}
	return wallet.Balance, nil
}

// InitializeDeposit records a pending deposit and opens a gateway checkout.
// The pending row is written before the gateway call and outside any database
// transaction: if the gateway call fails, the row remains for later
// reconciliation and the webhook can still resolve it.
func (s *WalletServiceImpl) InitializeDeposit(ctx context.Context, userID uuid.UUID, amount int64) (*ports.DepositIntent, error) {
	if amount < s.minDeposit {
		return nil, apperror.ErrInvalidAmount()
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("user")
	}

	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	reference, err := s.freshReference(ctx, depositRefPrefix)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:        uuid.New(),
		Reference: reference,
		WalletID:  wallet.ID,
		Type:      domain.TransactionTypeDeposit,
		Amount:    amount,
		Status:    domain.TransactionStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.txRepo.Create(ctx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create pending deposit: %w", err))
	}

	session, err := s.gateway.InitializeTransaction(ctx, user.Email, amount, reference)
	if err != nil {
		s.log.Warn().Err(err).Str("reference", reference).Msg("gateway initialize failed, pending deposit kept")
		return nil, apperror.ErrGateway(err)
	}

	s.log.Info().
		Str("reference", reference).
		Str("wallet_id", wallet.ID.String()).
		Int64("amount", amount).
		Msg("deposit initialized")

	return &ports.DepositIntent{
		Reference:        reference,
		AuthorizationURL: session.AuthorizationURL,
	}, nil
}

// HandleGatewayEvent reconciles a verified provider event against the journal.
// An event for a reference this service never issued is rejected; redeliveries
// for already-terminal transactions are a no-op.
func (s *WalletServiceImpl) HandleGatewayEvent(ctx context.Context, event ports.WebhookEvent) error {
	if event.Kind != ports.EventChargeSuccess && event.Kind != ports.EventChargeFailed {
		s.log.Debug().Str("kind", event.Kind).Msg("ignoring unhandled gateway event kind")
		return nil
	}

	// Redis fast path. Best-effort: a cache miss or error falls through to the
	// authoritative row lock below.
	seen, err := s.dedupCache.Seen(ctx, event.Reference)
	if err != nil {
		s.log.Warn().Err(err).Str("reference", event.Reference).Msg("dedup cache check failed, falling through to DB")
	}
	if seen {
		return nil
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	txn, err := s.txRepo.GetByReferenceForUpdate(ctx, dbTx, event.Reference)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock transaction: %w", err))
	}
	if txn == nil {
		s.log.Warn().Str("reference", event.Reference).Msg("gateway event for unknown reference")
		return apperror.ErrNotFound("transaction")
	}
	if txn.IsTerminal() {
		return nil
	}

	if event.Kind == ports.EventChargeSuccess && event.Outcome == ports.OutcomeSuccess {
		if event.Amount != txn.Amount {
			s.log.Error().
				Str("reference", event.Reference).
				Int64("expected", txn.Amount).
				Int64("reported", event.Amount).
				Msg("gateway reported amount does not match journal, leaving pending")
			return apperror.ErrAmountMismatch()
		}

		wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, txn.WalletID)
		if err != nil {
			return apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
		}
		if wallet == nil {
			return apperror.ErrNotFound("wallet")
		}

		if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, wallet.Balance+txn.Amount); err != nil {
			return apperror.InternalError(fmt.Errorf("credit wallet: %w", err))
		}
		if err := s.txRepo.UpdateStatus(ctx, dbTx, txn.ID, domain.TransactionStatusSuccess); err != nil {
			return apperror.InternalError(fmt.Errorf("mark deposit success: %w", err))
		}
	} else {
		if err := s.txRepo.UpdateStatus(ctx, dbTx, txn.ID, domain.TransactionStatusFailed); err != nil {
			return apperror.InternalError(fmt.Errorf("mark deposit failed: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	// Mark only after commit so a crash in between replays safely.
	if err := s.dedupCache.MarkProcessed(ctx, event.Reference, webhookDedupTTL); err != nil {
		s.log.Warn().Err(err).Str("reference", event.Reference).Msg("failed to mark event processed in cache")
	}

	s.log.Info().
		Str("reference", event.Reference).
		Str("kind", event.Kind).
		Msg("gateway event reconciled")

	return nil
}

// GetDepositStatus reports the state of the caller's own deposit.
func (s *WalletServiceImpl) GetDepositStatus(ctx context.Context, userID uuid.UUID, reference string) (*ports.DepositStatus, error) {
	txn, err := s.txRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get transaction: %w", err))
	}
	if txn == nil {
		return nil, apperror.ErrNotFound("transaction")
	}

	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil || wallet.ID != txn.WalletID {
		// Do not reveal that the reference exists at all.
		return nil, apperror.ErrNotFound("transaction")
	}

	return &ports.DepositStatus{
		Reference: txn.Reference,
		Status:    txn.Status,
		Amount:    txn.Amount,
	}, nil
}

// Transfer moves funds between two wallets atomically, writing both journal
// legs in the same database transaction as the balance updates.
func (s *WalletServiceImpl) Transfer(ctx context.Context, req ports.TransferRequest) (*ports.TransferResult, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	sender, err := s.walletRepo.GetByUserID(ctx, req.UserID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get sender wallet: %w", err))
	}
	if sender == nil {
		return nil, apperror.ErrNotFound("wallet")
	}
	if sender.WalletNumber == req.RecipientWalletNumber {
		return nil, apperror.ErrSelfTransfer()
	}

	recipient, err := s.walletRepo.GetByWalletNumber(ctx, req.RecipientWalletNumber)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get recipient wallet: %w", err))
	}
	if recipient == nil {
		return nil, apperror.ErrNotFound("recipient wallet")
	}

	// Cheap pre-check; the decisive one happens under the row lock.
	if sender.Balance < req.Amount {
		return nil, apperror.ErrInsufficientFunds()
	}

	var outRef string
	usedCallerKey := req.IdempotencyKey != nil && *req.IdempotencyKey != ""
	if usedCallerKey {
		outRef = transferOutRefPrefix + *req.IdempotencyKey
		prior, err := s.txRepo.GetByReference(ctx, outRef)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("idempotency check: %w", err))
		}
		if prior != nil {
			if prior.WalletID != sender.ID {
				return nil, apperror.ErrDuplicateReference()
			}
			return &ports.TransferResult{Status: string(prior.Status), Reference: prior.Reference}, nil
		}
	} else {
		outRef, err = s.freshReference(ctx, transferOutRefPrefix)
		if err != nil {
			return nil, err
		}
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock both wallets in a fixed order so two opposing transfers cannot
	// deadlock each other.
	firstID, secondID := sender.ID, recipient.ID
	if bytes.Compare(secondID[:], firstID[:]) < 0 {
		firstID, secondID = secondID, firstID
	}

	locked := make(map[uuid.UUID]*domain.Wallet, 2)
	for _, id := range []uuid.UUID{firstID, secondID} {
		w, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, id)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
		}
		if w == nil {
			return nil, apperror.ErrNotFound("wallet")
		}
		locked[id] = w
	}
	sender, recipient = locked[sender.ID], locked[recipient.ID]

	// Re-verify under the lock; a concurrent transfer may have spent it.
	if sender.Balance < req.Amount {
		return nil, apperror.ErrInsufficientFunds()
	}

	if err := s.walletRepo.UpdateBalance(ctx, dbTx, sender.ID, sender.Balance-req.Amount); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("debit sender: %w", err))
	}
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, recipient.ID, recipient.Balance+req.Amount); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("credit recipient: %w", err))
	}

	now := time.Now().UTC()
	outLeg := &domain.Transaction{
		ID:                    uuid.New(),
		Reference:             outRef,
		WalletID:              sender.ID,
		Type:                  domain.TransactionTypeTransferOut,
		Amount:                req.Amount,
		Status:                domain.TransactionStatusSuccess,
		RecipientWalletNumber: &recipient.WalletNumber,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := s.txRepo.CreateInTx(ctx, dbTx, outLeg); err != nil {
		// A concurrent replay of the same idempotency key can slip past the
		// pre-check; the unique reference index is the arbiter. Roll back and
		// hand the loser the winner's result.
		if usedCallerKey {
			dbTx.Rollback(ctx) //nolint:errcheck
			prior, lookupErr := s.txRepo.GetByReference(ctx, outRef)
			if lookupErr == nil && prior != nil && prior.WalletID == sender.ID {
				return &ports.TransferResult{Status: string(prior.Status), Reference: prior.Reference}, nil
			}
		}
		return nil, apperror.InternalError(fmt.Errorf("create transfer_out leg: %w", err))
	}

	inMeta := fmt.Sprintf(`{"from":%q}`, sender.WalletNumber)
	inLeg := &domain.Transaction{
		ID:        uuid.New(),
		Reference: transferInRefPrefix + uuid.New().String(),
		WalletID:  recipient.ID,
		Type:      domain.TransactionTypeTransferIn,
		Amount:    req.Amount,
		Status:    domain.TransactionStatusSuccess,
		Metadata:  &inMeta,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.txRepo.CreateInTx(ctx, dbTx, inLeg); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create transfer_in leg: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("reference", outRef).
		Str("sender_wallet", sender.WalletNumber).
		Str("recipient_wallet", recipient.WalletNumber).
		Int64("amount", req.Amount).
		Msg("transfer completed")

	return &ports.TransferResult{
		Status:    string(domain.TransactionStatusSuccess),
		Reference: outRef,
	}, nil
}

// ListTransactions returns the caller's journal, most recent first.
func (s *WalletServiceImpl) ListTransactions(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	txns, err := s.txRepo.ListByWallet(ctx, wallet.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return txns, nil
}

// LookupWallet resolves a wallet number to its owner's display name so a
// sender can confirm the recipient before transferring.
func (s *WalletServiceImpl) LookupWallet(ctx context.Context, walletNumber string) (*ports.WalletOwner, error) {
	wallet, err := s.walletRepo.GetByWalletNumber(ctx, walletNumber)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	owner, err := s.userRepo.GetByID(ctx, wallet.UserID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get owner: %w", err))
	}
	if owner == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	return &ports.WalletOwner{
		WalletNumber: wallet.WalletNumber,
		OwnerName:    maskName(owner.Name),
	}, nil
}

// maskName reduces a display name to the first name plus initials, so a
// lookup confirms the recipient without exposing their full identity.
func maskName(name string) string {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return ""
	}
	masked := parts[0]
	for _, p := range parts[1:] {
		r := []rune(p)
		masked += " " + string(r[0]) + "."
	}
	return masked
}

// freshReference generates a prefixed UUID reference, retrying on the
// unlikely collision.
func (s *WalletServiceImpl) freshReference(ctx context.Context, prefix string) (string, error) {
	for i := 0; i < maxReferenceAttempts; i++ {
		ref := prefix + uuid.New().String()
		exists, err := s.txRepo.ReferenceExists(ctx, ref)
		if err != nil {
			return "", apperror.InternalError(fmt.Errorf("check reference: %w", err))
		}
		if !exists {
			return ref, nil
		}
	}
	return "", apperror.ErrDuplicateReference()
}
