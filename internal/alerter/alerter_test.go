package alerter

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/lcbank/backend/internal/domain"
	"github.com/lcbank/backend/internal/usecase"
	"github.com/lcbank/backend/internal/usecase/mocks"
)

type captureSubscriber struct {
	mu       sync.Mutex
	messages []string
}

func (s *captureSubscriber) Notify(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
}

func (s *captureSubscriber) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

type alerterEnv struct {
	accounts *mocks.MockAccountRepository
	loans    *mocks.MockLoanRepository
	ledger   *usecase.LedgerUseCase
	alerter  *Alerter
}

func newAlerterEnv() *alerterEnv {
	accounts := mocks.NewMockAccountRepository()
	txRepo := mocks.NewMockTransactionRepository()
	loans := mocks.NewMockLoanRepository()
	cache := mocks.NewMockBalanceCache()
	txManager := mocks.NewMockTransactionManager()
	idGen := mocks.NewMockIDGenerator()

	ledger := usecase.NewLedgerUseCase(txManager, txRepo, accounts, cache, nil, idGen, nil)
	loanUC := usecase.NewLoanUseCase(txManager, loans, accounts, ledger, idGen, nil)
	alertUC := usecase.NewAlertUseCase(loans, accounts, ledger)

	a := New(loanUC, alertUC, zerolog.Nop(), Config{
		SweepInterval: 20 * time.Second,
		AlertInterval: time.Second,
	})

	return &alerterEnv{
		accounts: accounts,
		loans:    loans,
		ledger:   ledger,
		alerter:  a,
	}
}

func (env *alerterEnv) seedAccount(t *testing.T, username, balance string) {
	t.Helper()
	now := time.Now().UTC()
	err := env.accounts.Create(context.Background(), &domain.Account{
		ID:        "acc-" + username,
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Type:      domain.AccountTypeClient,
		Approved:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed account %s: %v", username, err)
	}

	if balance != "0" {
		if _, err := env.ledger.SetBalance(context.Background(), username, decimal.RequireFromString(balance)); err != nil {
			t.Fatalf("fund %s: %v", username, err)
		}
	}
}

func (env *alerterEnv) seedLoan(t *testing.T, id, borrower, lender, amount string, status domain.LoanStatus, expiry time.Time) {
	t.Helper()
	now := time.Now().UTC()
	err := env.loans.Create(context.Background(), &domain.LoanRequest{
		ID:         id,
		Recipient:  borrower,
		Sender:     lender,
		Amount:     decimal.RequireFromString(amount),
		Status:     status,
		CreatedAt:  now,
		ExpiryDate: expiry,
	})
	if err != nil {
		t.Fatalf("seed loan %s: %v", id, err)
	}
}

func TestAlerter_BroadcastMessages(t *testing.T) {
	env := newAlerterEnv()
	env.seedAccount(t, "alice", "10")
	env.seedAccount(t, "bob", "100")
	env.seedAccount(t, "carol", "0")

	// Borrower balance 10 against a 50 LC loan trips the risk rule.
	farExpiry := time.Now().UTC().Add(90 * 24 * time.Hour)
	env.seedLoan(t, "loan-1", "alice", "bob", "50", domain.LoanStatusApproved, farExpiry)

	sub := &captureSubscriber{}
	env.alerter.Subscribe(sub)

	env.alerter.broadcast()

	messages := sub.all()
	if len(messages) != 2 {
		t.Fatalf("expected 2 alerts, got %d: %v", len(messages), messages)
	}

	if !strings.Contains(messages[0], "Loan requested by alice to bob") {
		t.Errorf("unexpected loan alert: %q", messages[0])
	}
	if !strings.HasSuffix(messages[0], "LC is invalid.") {
		t.Errorf("expected invalid verdict, got %q", messages[0])
	}
	if messages[1] != "carol has 0 LC in their account." {
		t.Errorf("unexpected balance alert: %q", messages[1])
	}
}

func TestAlerter_BroadcastExpiredVerdict(t *testing.T) {
	env := newAlerterEnv()
	env.seedAccount(t, "alice", "100")
	env.seedAccount(t, "bob", "100")

	pastExpiry := time.Now().UTC().Add(-24 * time.Hour)
	env.seedLoan(t, "loan-1", "alice", "bob", "10", domain.LoanStatusApproved, pastExpiry)

	sub := &captureSubscriber{}
	env.alerter.Subscribe(sub)

	env.alerter.broadcast()

	messages := sub.all()
	if len(messages) != 1 {
		t.Fatalf("expected 1 alert, got %d: %v", len(messages), messages)
	}
	if !strings.HasSuffix(messages[0], "LC is expired.") {
		t.Errorf("expected expired verdict, got %q", messages[0])
	}
}

func TestAlerter_SweepInvalidatesExpiredLoans(t *testing.T) {
	env := newAlerterEnv()
	env.seedAccount(t, "alice", "100")
	env.seedAccount(t, "bob", "100")

	pastExpiry := time.Now().UTC().Add(-24 * time.Hour)
	env.seedLoan(t, "loan-1", "alice", "bob", "10", domain.LoanStatusApproved, pastExpiry)

	env.alerter.sweep()

	loan, err := env.loans.GetByID(context.Background(), "loan-1")
	if err != nil {
		t.Fatalf("get loan: %v", err)
	}
	if loan.Status != domain.LoanStatusInvalid {
		t.Fatalf("expected invalid status, got %s", loan.Status)
	}
}

func TestAlerter_Unsubscribe(t *testing.T) {
	env := newAlerterEnv()
	env.seedAccount(t, "carol", "0")

	sub := &captureSubscriber{}
	id := env.alerter.Subscribe(sub)
	env.alerter.Unsubscribe(id)

	env.alerter.broadcast()

	if got := sub.all(); len(got) != 0 {
		t.Fatalf("expected no alerts after unsubscribe, got %v", got)
	}
}
