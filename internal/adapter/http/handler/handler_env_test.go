package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lcbank/backend/internal/domain"
	"github.com/lcbank/backend/internal/usecase"
	"github.com/lcbank/backend/internal/usecase/mocks"
)

// handlerEnv wires the use cases onto in-memory repositories so the
// handlers can be exercised end to end without a database.
type handlerEnv struct {
	accounts  *mocks.MockAccountRepository
	txRepo    *mocks.MockTransactionRepository
	loans     *mocks.MockLoanRepository
	ledger    *usecase.LedgerUseCase
	loanUC    *usecase.LoanUseCase
	accountUC *usecase.AccountUseCase
	alertUC   *usecase.AlertUseCase
}

func newHandlerEnv() *handlerEnv {
	accounts := mocks.NewMockAccountRepository()
	txRepo := mocks.NewMockTransactionRepository()
	loans := mocks.NewMockLoanRepository()
	cache := mocks.NewMockBalanceCache()
	txManager := mocks.NewMockTransactionManager()
	idGen := mocks.NewMockIDGenerator()

	ledger := usecase.NewLedgerUseCase(txManager, txRepo, accounts, cache, nil, idGen, nil)
	loanUC := usecase.NewLoanUseCase(txManager, loans, accounts, ledger, idGen, nil)
	accountUC := usecase.NewAccountUseCase(txManager, accounts, txRepo, loans, ledger, idGen)
	alertUC := usecase.NewAlertUseCase(loans, accounts, ledger)

	return &handlerEnv{
		accounts:  accounts,
		txRepo:    txRepo,
		loans:     loans,
		ledger:    ledger,
		loanUC:    loanUC,
		accountUC: accountUC,
		alertUC:   alertUC,
	}
}

func (env *handlerEnv) seedAccount(t *testing.T, username string, accountType domain.AccountType) *domain.Account {
	t.Helper()
	now := time.Now().UTC()
	account := &domain.Account{
		ID:        "acc-" + username,
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Type:      accountType,
		Approved:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := env.accounts.Create(context.Background(), account); err != nil {
		t.Fatalf("seed account %s: %v", username, err)
	}
	return account
}

func (env *handlerEnv) fund(t *testing.T, username, amount string) {
	t.Helper()
	if _, err := env.ledger.SetBalance(context.Background(), username, decimal.RequireFromString(amount)); err != nil {
		t.Fatalf("fund %s with %s: %v", username, amount, err)
	}
}

// asAccount attaches an authenticated account to the request, the way
// the auth middleware does in production.
func asAccount(r *http.Request, account *domain.Account) *http.Request {
	return r.WithContext(domain.ContextWithAccount(r.Context(), account))
}

func newRegisterInput(username string) usecase.RegisterInput {
	return usecase.RegisterInput{
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Password:  "hunter2hunter2",
	}
}

func validLoanExpiry() time.Time {
	return time.Now().UTC().Add(usecase.MinNoticeWindow + 15*24*time.Hour)
}
