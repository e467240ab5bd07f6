package handler

import (
	"crypto-payment-gateway/internal/adapter/http/middleware"
	redisStore "crypto-payment-gateway/internal/adapter/storage/redis"
	"crypto-payment-gateway/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	WalletSvc      ports.WalletService
	TransactionSvc ports.TransactionService
	CurrencySvc    ports.CurrencyService
	MerchantSvc    ports.MerchantService // nil = merchant self-service disabled
	TokenSvc       ports.TokenService
	SigSvc         ports.SignatureService
	NonceStore     ports.NonceStore
	WatcherCfg     middleware.WatcherHMACConfig
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
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- JWT-authenticated routes (merchant API) ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	walletHandler := NewWalletHandler(deps.WalletSvc)
	txHandler := NewTransactionHandler(deps.TransactionSvc)
	currencyHandler := NewCurrencyHandler(deps.CurrencySvc)

	wallets := v1.Group("/wallets", jwtAuth)
	{
		wallets.POST("", rl("wallets"), walletHandler.Create)
		wallets.GET("", rl("wallets"), walletHandler.List)
		wallets.GET("/:id", rl("wallets"), walletHandler.Get)
	}

	transactions := v1.Group("/transactions", jwtAuth)
	{
		transactions.POST("", rl("transactions"), txHandler.Create)
		transactions.GET("", rl("transactions"), txHandler.List)
		transactions.GET("/:id", rl("transactions"), txHandler.Get)
	}

	currencies := v1.Group("/currencies")
	{
		currencies.GET("", rl("currencies"), currencyHandler.ListNetworks)
		currencies.POST("/convert", jwtAuth, rl("currencies"), currencyHandler.Convert)
		currencies.PUT("/rates", jwtAuth, rl("currencies"), currencyHandler.UpsertRate)
	}

	// --- HMAC-authenticated callback (chain watcher) ---
	watcherAuth := middleware.WatcherHMAC(deps.WatcherCfg, deps.SigSvc, deps.NonceStore, deps.Logger)
	settlementHandler := NewSettlementHandler(deps.TransactionSvc)
	internal := v1.Group("/internal", watcherAuth)
	{
		internal.POST("/settlements", rl("settlements"), settlementHandler.Settle)
	}

	// --- Merchant self-service (JWT-authenticated) ---
	if deps.MerchantSvc != nil {
		merchantHandler := NewMerchantHandler(deps.MerchantSvc)
		merchants := v1.Group("/merchants/me", jwtAuth)
		{
			merchants.GET("", rl("merchants"), merchantHandler.GetProfile)
			merchants.PATCH("/status", rl("merchants"), merchantHandler.UpdateStatus)
		}
	}

	return r
}
