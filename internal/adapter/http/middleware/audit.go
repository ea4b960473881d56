package middleware

import (
	"time"

	"wallet-backend/internal/core/domain"
	"wallet-backend/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog creates an audit middleware that records successful write
// operations after the response is sent.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only audit successful write operations (status 2xx)
		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method == "GET" || c.Request.Method == "HEAD" || c.Request.Method == "OPTIONS" {
			return
		}

		action := mapRouteToAction(c.FullPath(), c.Request.Method)
		if action == "" {
			return
		}

		var userID *uuid.UUID
		if uid, exists := c.Get(CtxUserID); exists {
			if id, ok := uid.(uuid.UUID); ok {
				userID = &id
			}
		}

		auditSvc.Record(c.Request.Context(), &domain.AuditLog{
			ID:         uuid.New(),
			UserID:     userID,
			Action:     action,
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			HTTPStatus: c.Writer.Status(),
			ClientIP:   c.ClientIP(),
			CreatedAt:  time.Now().UTC(),
		})
	}
}

func mapRouteToAction(route, method string) string {
	switch {
	case route == "/api/v1/auth/google" && method == "POST":
		return "login"
	case route == "/api/v1/wallet/deposit" && method == "POST":
		return "deposit_initialize"
	case route == "/api/v1/wallet/transfer" && method == "POST":
		return "transfer"
	case route == "/api/v1/keys" && method == "POST":
		return "key_create"
	case route == "/api/v1/keys/:id" && method == "DELETE":
		return "key_revoke"
	case route == "/api/v1/keys/:id/rollover" && method == "POST":
		return "key_rollover"
	}
	return ""
}
