package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"wallet-backend/internal/adapter/http/dto"
	"wallet-backend/internal/adapter/http/middleware"
	"wallet-backend/internal/core/domain"
	"wallet-backend/internal/core/ports"
	"wallet-backend/pkg/apperror"
	"wallet-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HeaderPaystackSignature carries the HMAC-SHA512 of the raw webhook body.
const HeaderPaystackSignature = "x-paystack-signature"

// WalletHandler handles wallet and ledger endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
	gateway   ports.PaymentGateway
	log       zerolog.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService, gateway ports.PaymentGateway, log zerolog.Logger) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc, gateway: gateway, log: log}
}

// GetBalance handles GET /api/v1/wallet/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	balance, err := h.walletSvc.GetBalance(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{Balance: balance})
}

// InitializeDeposit handles POST /api/v1/wallet/deposit.
func (h *WalletHandler) InitializeDeposit(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	intent, err := h.walletSvc.InitializeDeposit(c.Request.Context(), userID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.DepositResponse{
		Reference:        intent.Reference,
		AuthorizationURL: intent.AuthorizationURL,
	})
}

// paystackWebhook mirrors the provider's event envelope.
type paystackWebhook struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		Status    string `json:"status"`
	} `json:"data"`
}

// HandleWebhook handles POST /api/v1/wallet/paystack/webhook. The signature
// is verified over the raw body bytes before any parsing.
func (h *WalletHandler) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, apperror.Validation("cannot read request body"))
		return
	}

	signature := c.GetHeader(HeaderPaystackSignature)
	if signature == "" || !h.gateway.VerifySignature(body, signature) {
		h.log.Warn().Str("client_ip", c.ClientIP()).Msg("webhook signature verification failed")
		response.Error(c, apperror.ErrInvalidSignature())
		return
	}

	var payload paystackWebhook
	if err := json.Unmarshal(body, &payload); err != nil {
		response.Error(c, apperror.Validation("malformed webhook payload"))
		return
	}

	err = h.walletSvc.HandleGatewayEvent(c.Request.Context(), ports.WebhookEvent{
		Kind:      payload.Event,
		Reference: payload.Data.Reference,
		Amount:    payload.Data.Amount,
		Outcome:   payload.Data.Status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	// The provider only needs an acknowledgement.
	c.JSON(http.StatusOK, gin.H{"status": true})
}

// GetDepositStatus handles GET /api/v1/wallet/deposit/:reference/status.
func (h *WalletHandler) GetDepositStatus(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	status, err := h.walletSvc.GetDepositStatus(c.Request.Context(), userID, c.Param("reference"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.DepositStatusResponse{
		Reference: status.Reference,
		Status:    string(status.Status),
		Amount:    status.Amount,
	})
}

// Transfer handles POST /api/v1/wallet/transfer.
func (h *WalletHandler) Transfer(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.walletSvc.Transfer(c.Request.Context(), ports.TransferRequest{
		UserID:                userID,
		RecipientWalletNumber: req.RecipientWalletNumber,
		Amount:                req.Amount,
		IdempotencyKey:        req.IdempotencyKey,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.TransferResponse{
		Status:    result.Status,
		Reference: result.Reference,
	})
}

// ListTransactions handles GET /api/v1/wallet/transactions.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	txns, err := h.walletSvc.ListTransactions(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, toTransactionResponse(&txns[i]))
	}

	response.OK(c, dto.TransactionListResponse{Items: items, Total: len(items)})
}

// LookupWallet handles GET /api/v1/wallet/:wallet_number/lookup.
func (h *WalletHandler) LookupWallet(c *gin.Context) {
	owner, err := h.walletSvc.LookupWallet(c.Request.Context(), c.Param("wallet_number"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.WalletLookupResponse{
		WalletNumber: owner.WalletNumber,
		OwnerName:    owner.OwnerName,
	})
}

// callerID extracts the authenticated user ID set by the auth middleware.
func callerID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get(middleware.CtxUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := raw.(uuid.UUID)
	return id, ok
}

// toTransactionResponse converts domain.Transaction to DTO.
func toTransactionResponse(tx *domain.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:                    tx.ID.String(),
		Reference:             tx.Reference,
		Type:                  string(tx.Type),
		Amount:                tx.Amount,
		Status:                string(tx.Status),
		RecipientWalletNumber: tx.RecipientWalletNumber,
		Metadata:              tx.Metadata,
		CreatedAt:             tx.CreatedAt.Format(time.RFC3339),
	}
}
