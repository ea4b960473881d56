package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Ledger & Wallet (WAL) ----

func ErrInvalidAmount() *AppError {
	return New("WAL_001", "Invalid amount", http.StatusBadRequest)
}

func ErrInsufficientFunds() *AppError {
	return New("WAL_002", "Insufficient balance in wallet", http.StatusPaymentRequired)
}

func ErrSelfTransfer() *AppError {
	return New("WAL_003", "Cannot transfer to your own wallet", http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("WAL_004", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrDuplicateReference() *AppError {
	return New("WAL_005", "Duplicate transaction reference", http.StatusConflict)
}

func ErrAmountMismatch() *AppError {
	return New("WAL_006", "Reported amount does not match transaction amount", http.StatusUnprocessableEntity)
}

func ErrForbidden(message string) *AppError {
	return New("WAL_007", message, http.StatusForbidden)
}

// Validation returns a request-validation error.
func Validation(message string) *AppError {
	return New("WAL_001", message, http.StatusBadRequest)
}

// ---- Payment gateway (GW) ----

// ErrGateway wraps a failed or timed-out gateway call. No ledger mutation has
// occurred when it is returned, so the caller may retry.
func ErrGateway(err error) *AppError {
	return Wrap("GW_001", "Payment gateway request failed", http.StatusBadGateway, err)
}

func ErrInvalidSignature() *AppError {
	return New("GW_002", "Invalid webhook signature", http.StatusBadRequest)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrInvalidAPIKey() *AppError {
	return New("AUTH_002", "Invalid API key", http.StatusUnauthorized)
}

func ErrAPIKeyRevoked() *AppError {
	return New("AUTH_003", "API key has been revoked", http.StatusForbidden)
}

func ErrAPIKeyExpired() *AppError {
	return New("AUTH_004", "API key has expired", http.StatusForbidden)
}

func ErrPermissionDenied(permission string) *AppError {
	return New("AUTH_005", fmt.Sprintf("Missing required permission: %s", permission), http.StatusForbidden)
}

// ---- API key management (KEY) ----

func ErrAPIKeyLimit() *AppError {
	return New("KEY_001", fmt.Sprintf("Maximum of %d active API keys allowed", 5), http.StatusForbidden)
}

func ErrAPIKeyNotExpired() *AppError {
	return New("KEY_002", "API key must be expired to rollover", http.StatusBadRequest)
}

// ---- Rate limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & infrastructure (SYS) ----

// InternalError wraps an internal failure (including an atomic unit that
// could not commit). Full rollback is guaranteed, so retrying is safe.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
