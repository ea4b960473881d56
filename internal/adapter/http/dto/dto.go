package dto

// GoogleLoginRequest is the request body for Google sign-in.
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string       `json:"token"`
	Expiry int64        `json:"expiry"` // Unix timestamp
	User   UserResponse `json:"user"`
}

// DepositRequest is the request body for initializing a deposit.
// Amount is in minor units.
type DepositRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// DepositResponse is the response for a successfully initialized deposit.
type DepositResponse struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
}

// DepositStatusResponse reports the state of a deposit.
type DepositStatusResponse struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
}

// BalanceResponse is the response for a balance query. Balance is in minor
// units.
type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

// TransferRequest is the request body for a wallet-to-wallet transfer.
type TransferRequest struct {
	RecipientWalletNumber string  `json:"recipient_wallet_number" binding:"required,wallet_number"`
	Amount                int64   `json:"amount" binding:"required,gt=0"`
	IdempotencyKey        *string `json:"idempotency_key,omitempty" binding:"omitempty,safe_id,max=64"`
}

// TransferResponse is the response for a completed transfer.
type TransferResponse struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
}

// TransactionResponse is one journal entry.
type TransactionResponse struct {
	ID                    string  `json:"id"`
	Reference             string  `json:"reference"`
	Type                  string  `json:"type"`
	Amount                int64   `json:"amount"`
	Status                string  `json:"status"`
	RecipientWalletNumber *string `json:"recipient_wallet_number,omitempty"`
	Metadata              *string `json:"metadata,omitempty"`
	CreatedAt             string  `json:"created_at"`
}

// TransactionListResponse wraps the journal listing.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Total int                   `json:"total"`
}

// WalletLookupResponse is the public view of a wallet for transfer
// confirmation.
type WalletLookupResponse struct {
	WalletNumber string `json:"wallet_number"`
	OwnerName    string `json:"owner_name"`
}

// CreateAPIKeyRequest is the request body for issuing an API key.
type CreateAPIKeyRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=100"`
	Permissions []string `json:"permissions" binding:"required,min=1"`
	Expiry      string   `json:"expiry" binding:"required"`
}

// RolloverAPIKeyRequest is the request body for rolling over an expired key.
type RolloverAPIKeyRequest struct {
	Expiry string `json:"expiry" binding:"required"`
}

// APIKeyMaterialResponse carries the raw key, shown exactly once.
type APIKeyMaterialResponse struct {
	ID        string `json:"id"`
	Key       string `json:"key"`
	ExpiresAt string `json:"expires_at"`
}

// APIKeyResponse is the listing view of a key. The secret is never included.
type APIKeyResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
	ExpiresAt   string   `json:"expires_at"`
	Revoked     bool     `json:"revoked"`
	CreatedAt   string   `json:"created_at"`
}
