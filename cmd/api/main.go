package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trading-wallet/config"
	tradeGateway "trading-wallet/internal/adapter/gateway/trade"
	httpHandler "trading-wallet/internal/adapter/http/handler"
	pgStorage "trading-wallet/internal/adapter/storage/postgres"
	redisStorage "trading-wallet/internal/adapter/storage/redis"
	"trading-wallet/internal/core/ports"
	"trading-wallet/internal/service"
	"trading-wallet/pkg/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Trading Wallet Service")

	ctx := context.Background()

	// Run database migrations
	if err := runMigrations(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	accountRepo := pgStorage.NewAccountRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	bankRepo := pgStorage.NewBankAccountRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	idempotencyCache := redisStorage.NewIdempotencyCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize business services
	walletSvc := service.NewWalletService(accountRepo, txRepo, bankRepo, idempotencyCache, transactor, log)
	bankSvc := service.NewBankAccountService(bankRepo, log)

	// Trade executor proxy (optional; enabled when a base URL is configured)
	var tradeSvc ports.TradeService
	if cfg.Trade.BaseURL != "" {
		gw := tradeGateway.NewClient(tradeGateway.Config{
			BaseURL:     cfg.Trade.BaseURL,
			InternalKey: cfg.Trade.InternalKey,
			Timeout:     cfg.Trade.Timeout,
		}, log)
		tradeSvc = service.NewTradeService(gw, log)
		log.Info().Str("base_url", cfg.Trade.BaseURL).Msg("Trade executor proxy enabled")
	} else {
		log.Warn().Msg("Trade executor base URL not configured, trade routes disabled")
	}

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthChecker(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		WalletSvc:      walletSvc,
		BankSvc:        bankSvc,
		TradeSvc:       tradeSvc,
		JWTSecret:      cfg.Auth.JWTSecret,
		InternalKey:    cfg.Auth.InternalKey,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// runMigrations applies pending schema migrations before the pool opens.
func runMigrations(cfg *config.Config, log zerolog.Logger) error {
	m, err := migrate.New("file://"+cfg.Database.MigrationsPath, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Msg("Database schema up to date")
			return nil
		}
		return fmt.Errorf("applying migrations: %w", err)
	}

	log.Info().Msg("Database migrations applied")
	return nil
}
