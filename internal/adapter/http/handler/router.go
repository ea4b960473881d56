package handler

import (
	"wallet-backend/internal/adapter/http/middleware"
	redisStore "wallet-backend/internal/adapter/storage/redis"
	"wallet-backend/internal/core/domain"
	"wallet-backend/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	WalletSvc      ports.WalletService
	APIKeySvc      ports.APIKeyService
	TokenSvc       ports.TokenService
	Verifier       ports.IdentityVerifier
	Gateway        ports.PaymentGateway
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc, deps.Verifier)
	auth := v1.Group("/auth")
	{
		auth.POST("/google", rl("auth_google"), authHandler.LoginWithGoogle)
	}

	walletHandler := NewWalletHandler(deps.WalletSvc, deps.Gateway, deps.Logger)

	// Provider webhook: authenticated by its HMAC signature, not by a caller
	// credential.
	v1.POST("/wallet/paystack/webhook", rl("webhook"), walletHandler.HandleWebhook)

	// --- Authenticated routes (session token or API key) ---
	authn := middleware.Authenticate(deps.TokenSvc, deps.APIKeySvc, deps.Logger)

	wallet := v1.Group("/wallet", authn)
	{
		wallet.GET("/balance", rl("wallet_read"), middleware.RequirePermission(domain.PermissionRead), walletHandler.GetBalance)
		wallet.POST("/deposit", rl("deposit"), middleware.RequirePermission(domain.PermissionDeposit), walletHandler.InitializeDeposit)
		wallet.GET("/deposit/:reference/status", rl("wallet_read"), middleware.RequirePermission(domain.PermissionRead), walletHandler.GetDepositStatus)
		wallet.POST("/transfer", rl("transfer"), middleware.RequirePermission(domain.PermissionTransfer), walletHandler.Transfer)
		wallet.GET("/transactions", rl("wallet_read"), middleware.RequirePermission(domain.PermissionRead), walletHandler.ListTransactions)
		wallet.GET("/:wallet_number/lookup", rl("wallet_read"), middleware.RequirePermission(domain.PermissionRead), walletHandler.LookupWallet)
	}

	// --- API key management (session token only) ---
	keyHandler := NewAPIKeyHandler(deps.APIKeySvc)
	keys := v1.Group("/keys", authn, middleware.SessionOnly())
	{
		keys.POST("", rl("keys"), keyHandler.Create)
		keys.GET("", rl("keys"), keyHandler.List)
		keys.DELETE("/:id", rl("keys"), keyHandler.Revoke)
		keys.POST("/:id/rollover", rl("keys"), keyHandler.Rollover)
	}

	return r
}
