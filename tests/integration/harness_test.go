package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	adaptershttp "github.com/lcbank/backend/internal/adapter/http"
	"github.com/lcbank/backend/internal/adapter/http/handler"
	postgresrepo "github.com/lcbank/backend/internal/adapter/repository/postgres"
	redisrepo "github.com/lcbank/backend/internal/adapter/repository/redis"
	"github.com/lcbank/backend/internal/domain"
	"github.com/lcbank/backend/internal/infrastructure/auth"
	infraredis "github.com/lcbank/backend/internal/infrastructure/redis"
	"github.com/lcbank/backend/internal/usecase"
	"github.com/lcbank/backend/tests/testutil"
)

// env is a full stack wired against real Postgres and Redis.
type env struct {
	db     *testutil.TestDB
	router http.Handler
	jwt    *auth.JWTManager
}

func newEnv(t *testing.T) *env {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	t.Cleanup(testDB.Cleanup)
	testDB.TruncateAll(ctx)

	pool := testDB.Pool
	txManager := postgresrepo.NewTxManager(pool)
	accountRepo := postgresrepo.NewAccountRepository(pool)
	txRepo := postgresrepo.NewTransactionRepository(pool)
	loanRepo := postgresrepo.NewLoanRepository(pool)
	retrier := postgresrepo.NewRetrier(zerolog.Nop())
	idGen := postgresrepo.NewULIDGenerator()

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	redisClient, err := infraredis.NewClient(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { _ = redisClient.Close() })

	balanceCache := redisrepo.NewBalanceCache(redisClient)
	idempotencyStore := redisrepo.NewIdempotencyStore(redisClient)

	ledgerUC := usecase.NewLedgerUseCase(txManager, txRepo, accountRepo, balanceCache, retrier, idGen, nil)
	loanUC := usecase.NewLoanUseCase(txManager, loanRepo, accountRepo, ledgerUC, idGen, nil)
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, txRepo, loanRepo, ledgerUC, idGen)
	alertUC := usecase.NewAlertUseCase(loanRepo, accountRepo, ledgerUC)

	jwtManager := auth.NewJWTManager("integration-secret", time.Hour)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		AuthHandler:      handler.NewAuthHandler(accountUC, jwtManager),
		AccountHandler:   handler.NewAccountHandler(accountUC, ledgerUC),
		LedgerHandler:    handler.NewLedgerHandler(ledgerUC),
		LoanHandler:      handler.NewLoanHandler(loanUC),
		AlertHandler:     handler.NewAlertHandler(alertUC),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		JWTManager:       jwtManager,
		IdempotencyStore: idempotencyStore,
		Logger:           zerolog.Nop(),
	})

	return &env{
		db:     testDB,
		router: router,
		jwt:    jwtManager,
	}
}

func (e *env) tokenFor(t *testing.T, account *domain.Account) string {
	t.Helper()
	token, err := e.jwt.Generate(account)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

func (e *env) do(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func validLoanExpiry() time.Time {
	return time.Now().UTC().Add(usecase.MinNoticeWindow + 15*24*time.Hour)
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}
