package ports

import (
	"context"
	"time"

	"wallet-backend/internal/core/domain"

	"github.com/google/uuid"
)

// --- Payment gateway (Paystack) ---

// CheckoutSession is the handle returned by the gateway for a new checkout.
type CheckoutSession struct {
	Reference        string
	AuthorizationURL string
	AccessCode       string
}

// VerifyResult is the gateway's out-of-band view of a transaction. Amount is
// in minor units as reported by the provider.
type VerifyResult struct {
	Status string
	Amount int64
}

// PaymentGateway abstracts the external payment provider.
type PaymentGateway interface {
	// InitializeTransaction creates a checkout for amount (minor units).
	InitializeTransaction(ctx context.Context, email string, amount int64, reference string) (*CheckoutSession, error)
	// VerifyTransaction polls the provider for a reference's status. Not part
	// of the credit path; used for out-of-band reconciliation sweeps.
	VerifyTransaction(ctx context.Context, reference string) (*VerifyResult, error)
	// VerifySignature checks the webhook HMAC over the exact raw body bytes.
	VerifySignature(payload []byte, signature string) bool
}

// Webhook event kinds and outcomes as delivered by the provider.
const (
	EventChargeSuccess = "charge.success"
	EventChargeFailed  = "charge.failed"

	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// WebhookEvent is the provider-delivered payment event, already parsed.
// Signature verification happens earlier, on the raw bytes.
type WebhookEvent struct {
	Kind      string
	Reference string
	Amount    int64 // Minor units as reported by the provider
	Outcome   string
}

// --- Wallet (ledger core) ---

// DepositIntent is the result of initializing a deposit.
type DepositIntent struct {
	Reference        string
	AuthorizationURL string
}

// DepositStatus reports a deposit transaction's current state.
type DepositStatus struct {
	Reference string
	Status    domain.TransactionStatus
	Amount    int64
}

// TransferRequest holds validated input for a wallet-to-wallet transfer.
// IdempotencyKey, when set, becomes the sender-side reference; replaying the
// same key returns the original result instead of moving funds twice.
type TransferRequest struct {
	UserID                uuid.UUID
	RecipientWalletNumber string
	Amount                int64
	IdempotencyKey        *string
}

// TransferResult is the caller-visible outcome of a completed transfer.
type TransferResult struct {
	Status    string
	Reference string
}

// WalletOwner is the public view of a wallet returned by lookup.
type WalletOwner struct {
	WalletNumber string
	OwnerName    string // Masked
}

// WalletService is the ledger core: balance reads, deposit initiation,
// webhook reconciliation, transfers and journal queries.
type WalletService interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (int64, error)
	InitializeDeposit(ctx context.Context, userID uuid.UUID, amount int64) (*DepositIntent, error)
	HandleGatewayEvent(ctx context.Context, event WebhookEvent) error
	GetDepositStatus(ctx context.Context, userID uuid.UUID, reference string) (*DepositStatus, error)
	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)
	ListTransactions(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error)
	LookupWallet(ctx context.Context, walletNumber string) (*WalletOwner, error)
}

// --- Authentication collaborators ---

// GoogleProfile is the verified identity the OAuth layer hands us.
type GoogleProfile struct {
	GoogleID string
	Email    string
	Name     string
}

// AuthResult bundles the session token with the resolved user.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// AuthService onboards and authenticates users. The wallet is created exactly
// once, on first login.
type AuthService interface {
	LoginWithGoogle(ctx context.Context, profile GoogleProfile) (*AuthResult, error)
}

// IdentityVerifier validates an external OAuth assertion (a Google ID token)
// and returns the verified profile.
type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*GoogleProfile, error)
}

// TokenService handles JWT session tokens.
type TokenService interface {
	Generate(userID uuid.UUID, email string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID uuid.UUID
	Email  string
}

// HashService handles API-key secret hashing (Argon2id).
type HashService interface {
	Hash(secret string) (string, error)
	Verify(secret string, hash string) (bool, error)
}

// APIKeyMaterial carries the raw key shown exactly once at creation.
type APIKeyMaterial struct {
	ID        uuid.UUID
	Key       string
	ExpiresAt time.Time
}

// APIKeyService manages permission-scoped API keys.
type APIKeyService interface {
	Create(ctx context.Context, userID uuid.UUID, name string, permissions []string, expiry string) (*APIKeyMaterial, error)
	Rollover(ctx context.Context, userID, keyID uuid.UUID, expiry string) (*APIKeyMaterial, error)
	Revoke(ctx context.Context, userID, keyID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]domain.APIKey, error)
	Validate(ctx context.Context, rawKey string) (*domain.APIKey, error)
}

// AuditService records request audit entries (best-effort, never blocks the
// response path).
type AuditService interface {
	Record(ctx context.Context, entry *domain.AuditLog)
}

// EventDedupCache is the Redis fast path for webhook deduplication. The
// authoritative idempotency check is the locked transaction row; the cache
// only short-circuits obvious redeliveries.
type EventDedupCache interface {
	Seen(ctx context.Context, reference string) (bool, error)
	MarkProcessed(ctx context.Context, reference string, ttl time.Duration) error
}
