package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/lcbank/backend/internal/adapter/http/handler"
	"github.com/lcbank/backend/internal/adapter/http/middleware"
	"github.com/lcbank/backend/internal/infrastructure/auth"
	"github.com/lcbank/backend/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AuthHandler    *handler.AuthHandler
	AccountHandler *handler.AccountHandler
	LedgerHandler  *handler.LedgerHandler
	LoanHandler    *handler.LoanHandler
	AlertHandler   *handler.AlertHandler
	HealthHandler  *handler.HealthHandler

	JWTManager       *auth.JWTManager
	IdempotencyStore usecase.IdempotencyStore
	Logger           zerolog.Logger

	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Public
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", cfg.AuthHandler.Register)
			r.Post("/login", cfg.AuthHandler.Login)
		})

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))

			r.Route("/accounts", func(r chi.Router) {
				r.Get("/me", cfg.AccountHandler.Me)

				// Administrative account management
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)

					r.Get("/", cfg.AccountHandler.List)
					r.Get("/pending", cfg.AccountHandler.Pending)
					r.Put("/{username}/approve", cfg.AccountHandler.Approve)
					r.Put("/{username}/promote", cfg.AccountHandler.Promote)
					r.Put("/{username}/balance", cfg.AccountHandler.SetBalance)
					r.Put("/{username}/rename", cfg.AccountHandler.Rename)
					r.Delete("/{username}", cfg.AccountHandler.Delete)
				})
			})

			// Ledger and loans require an approved account
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireApproved)

				r.Route("/ledger", func(r chi.Router) {
					r.Get("/transactions", cfg.LedgerHandler.History)
					r.Post("/transfers", cfg.LedgerHandler.Transfer)
					r.Get("/verify", cfg.LedgerHandler.Verify)
				})

				r.Route("/loans", func(r chi.Router) {
					r.Post("/", cfg.LoanHandler.Create)
					r.Get("/", cfg.LoanHandler.List)
					r.Get("/{id}", cfg.LoanHandler.Get)
					r.Post("/{id}/approve", cfg.LoanHandler.Approve)
					r.Post("/{id}/reject", cfg.LoanHandler.Reject)
					r.Post("/{id}/repay", cfg.LoanHandler.Repay)
					r.Post("/{id}/withdraw", cfg.LoanHandler.Withdraw)
				})
			})

			r.Route("/alerts", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Get("/loans", cfg.AlertHandler.Loans)
				r.Get("/accounts", cfg.AlertHandler.Accounts)
			})
		})
	})

	return r
}
