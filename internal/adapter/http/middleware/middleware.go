package middleware

import (
	"net/http"
	"strings"
	"time"

	"wallet-backend/internal/core/domain"
	"wallet-backend/internal/core/ports"
	"wallet-backend/pkg/apperror"
	"wallet-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	// HeaderAPIKey carries a machine credential as an alternative to a
	// Bearer session token.
	HeaderAPIKey = "X-API-Key"

	// Context keys
	CtxUserID     = "user_id"
	CtxUserEmail  = "user_email"
	CtxAuthMethod = "auth_method"
	CtxAPIKey     = "api_key"

	// Auth method values
	AuthMethodJWT    = "jwt"
	AuthMethodAPIKey = "api_key"
)

// Authenticate accepts either a Bearer session token or an API key. An API
// key, when present, takes precedence. Sessions carry every permission; keys
// carry only the permissions they were issued with.
func Authenticate(tokenSvc ports.TokenService, apiKeySvc ports.APIKeyService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rawKey := c.GetHeader(HeaderAPIKey); rawKey != "" {
			key, err := apiKeySvc.Validate(c.Request.Context(), rawKey)
			if err != nil {
				response.Error(c, err)
				c.Abort()
				return
			}
			c.Set(CtxUserID, key.UserID)
			c.Set(CtxAuthMethod, AuthMethodAPIKey)
			c.Set(CtxAPIKey, key)
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		claims, err := tokenSvc.Validate(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			log.Debug().Err(err).Msg("token validation failed")
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUserEmail, claims.Email)
		c.Set(CtxAuthMethod, AuthMethodJWT)
		c.Next()
	}
}

// SessionOnly restricts a route to Bearer-session callers. API key
// management itself must never be reachable with an API key.
func SessionOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxAuthMethod) != AuthMethodJWT {
			response.Error(c, apperror.ErrForbidden("This endpoint requires a session token"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePermission enforces a permission on API-key callers. Session
// callers pass unconditionally.
func RequirePermission(perm domain.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxAuthMethod) != AuthMethodAPIKey {
			c.Next()
			return
		}

		raw, ok := c.Get(CtxAPIKey)
		key, castOK := raw.(*domain.APIKey)
		if !ok || !castOK || !key.HasPermission(perm) {
			response.Error(c, apperror.ErrPermissionDenied(string(perm)))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error_code": "SYS_001",
					"message":    "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// MaxBodySize returns middleware that limits the request body size.
// Once the limit is exceeded the reader returns an error and the
// request is rejected with 413 Payload Too Large.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
