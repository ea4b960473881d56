package handler

import (
	"time"

	"wallet-backend/internal/adapter/http/dto"
	"wallet-backend/internal/core/ports"
	"wallet-backend/pkg/apperror"
	"wallet-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// APIKeyHandler handles API key management endpoints.
type APIKeyHandler struct {
	keySvc ports.APIKeyService
}

// NewAPIKeyHandler creates a new APIKeyHandler.
func NewAPIKeyHandler(keySvc ports.APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{keySvc: keySvc}
}

// Create handles POST /api/v1/keys.
func (h *APIKeyHandler) Create(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CreateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	material, err := h.keySvc.Create(c.Request.Context(), userID, req.Name, req.Permissions, req.Expiry)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toKeyMaterialResponse(material))
}

// List handles GET /api/v1/keys.
func (h *APIKeyHandler) List(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	keys, err := h.keySvc.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.APIKeyResponse, 0, len(keys))
	for i := range keys {
		k := &keys[i]
		perms := make([]string, 0, len(k.Permissions))
		for _, p := range k.Permissions {
			perms = append(perms, string(p))
		}
		items = append(items, dto.APIKeyResponse{
			ID:          k.ID.String(),
			Name:        k.Name,
			Permissions: perms,
			ExpiresAt:   k.ExpiresAt.Format(time.RFC3339),
			Revoked:     k.Revoked,
			CreatedAt:   k.CreatedAt.Format(time.RFC3339),
		})
	}

	response.OK(c, items)
}

// Revoke handles DELETE /api/v1/keys/:id.
func (h *APIKeyHandler) Revoke(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid key ID"))
		return
	}

	if err := h.keySvc.Revoke(c.Request.Context(), userID, keyID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"revoked": true})
}

// Rollover handles POST /api/v1/keys/:id/rollover.
func (h *APIKeyHandler) Rollover(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid key ID"))
		return
	}

	var req dto.RolloverAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	material, err := h.keySvc.Rollover(c.Request.Context(), userID, keyID, req.Expiry)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toKeyMaterialResponse(material))
}

func toKeyMaterialResponse(m *ports.APIKeyMaterial) dto.APIKeyMaterialResponse {
	return dto.APIKeyMaterialResponse{
		ID:        m.ID.String(),
		Key:       m.Key,
		ExpiresAt: m.ExpiresAt.Format(time.RFC3339),
	}
}
