package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpAdapter "github.com/lcbank/backend/internal/adapter/http"
	"github.com/lcbank/backend/internal/adapter/http/handler"
	postgresRepo "github.com/lcbank/backend/internal/adapter/repository/postgres"
	redisRepo "github.com/lcbank/backend/internal/adapter/repository/redis"
	"github.com/lcbank/backend/internal/alerter"
	"github.com/lcbank/backend/internal/infrastructure/auth"
	"github.com/lcbank/backend/internal/infrastructure/config"
	"github.com/lcbank/backend/internal/infrastructure/logger"
	"github.com/lcbank/backend/internal/infrastructure/metrics"
	"github.com/lcbank/backend/internal/infrastructure/postgres"
	"github.com/lcbank/backend/internal/infrastructure/redis"
	"github.com/lcbank/backend/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	ctx := context.Background()

	// PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	txRepo := postgresRepo.NewTransactionRepository(pool)
	loanRepo := postgresRepo.NewLoanRepository(pool)
	retrier := postgresRepo.NewRetrier(log)
	idGen := postgresRepo.NewULIDGenerator()
	balanceCache := redisRepo.NewBalanceCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Use cases
	m := metrics.New()
	ledgerUC := usecase.NewLedgerUseCase(txManager, txRepo, accountRepo, balanceCache, retrier, idGen, m)
	loanUC := usecase.NewLoanUseCase(txManager, loanRepo, accountRepo, ledgerUC, idGen, m)
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, txRepo, loanRepo, ledgerUC, idGen)
	alertUC := usecase.NewAlertUseCase(loanRepo, accountRepo, ledgerUC)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)

	// Background sweep and alert broadcast
	worker := alerter.New(loanUC, alertUC, log, alerter.Config{
		SweepInterval: cfg.SweepInterval,
		AlertInterval: cfg.AlertInterval,
	})
	worker.Subscribe(alerter.NewLogSubscriber(log))
	if err := worker.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start alerter")
	}
	defer worker.Stop()

	// Router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AuthHandler:      handler.NewAuthHandler(accountUC, jwtManager),
		AccountHandler:   handler.NewAccountHandler(accountUC, ledgerUC),
		LedgerHandler:    handler.NewLedgerHandler(ledgerUC),
		LoanHandler:      handler.NewLoanHandler(loanUC),
		AlertHandler:     handler.NewAlertHandler(alertUC),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		JWTManager:       jwtManager,
		IdempotencyStore: idempotencyStore,
		Logger:           log,
		RateLimitRPS:     cfg.RateLimitRPS,
		RateLimitBurst:   cfg.RateLimitBurst,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
