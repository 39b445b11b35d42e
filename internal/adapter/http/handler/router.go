package handler

import (
	"trading-wallet/internal/adapter/http/middleware"
	redisStore "trading-wallet/internal/adapter/storage/redis"
	"trading-wallet/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	WalletSvc      ports.WalletService
	BankSvc        ports.BankAccountService
	TradeSvc       ports.TradeService // nil = trade proxy disabled
	JWTSecret      string
	InternalKey    string
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

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

	jwtAuth := middleware.JWTAuth(deps.JWTSecret, deps.Logger)
	internalAuth := middleware.InternalAuth(deps.InternalKey, deps.Logger)

	// --- Wallet routes (JWT-authenticated) ---
	walletHandler := NewWalletHandler(deps.WalletSvc)
	bankHandler := NewBankAccountHandler(deps.BankSvc)

	wallet := v1.Group("/wallet", jwtAuth)
	{
		wallet.GET("/balance", rl("wallet_read"), walletHandler.GetBalance)
		wallet.GET("/transactions", rl("wallet_read"), walletHandler.ListTransactions)
		wallet.POST("/deposit", rl("wallet_mutate"), walletHandler.Deposit)
		wallet.POST("/withdraw", rl("wallet_mutate"), walletHandler.Withdraw)
		wallet.GET("/bank-details", rl("bank_details"), bankHandler.GetDetails)
		wallet.PUT("/bank-details", rl("bank_details"), bankHandler.SaveDetails)
	}

	// --- Internal settlement routes (shared-key authenticated) ---
	adminHandler := NewAdminHandler(deps.WalletSvc)
	admin := v1.Group("/admin", internalAuth)
	{
		admin.POST("/wallet/adjust", rl("admin_adjust"), adminHandler.Adjust)
	}

	// --- Trade proxy routes (JWT-authenticated) ---
	if deps.TradeSvc != nil {
		tradeHandler := NewTradeHandler(deps.TradeSvc)
		trades := v1.Group("/trades", jwtAuth)
		{
			trades.POST("", rl("trades"), tradeHandler.Execute)
			trades.GET("/fills", rl("trades"), tradeHandler.ListFills)
			trades.GET("/fills/by-reference/:reference", rl("trades"), tradeHandler.GetFillByReference)
		}
	}

	return r
}
