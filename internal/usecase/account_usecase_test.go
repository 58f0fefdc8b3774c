package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lcbank/backend/internal/domain"
	"github.com/lcbank/backend/internal/usecase"
)

func TestAccountUseCase_Register(t *testing.T) {
	tests := []struct {
		name    string
		input   usecase.RegisterInput
		wantErr error
	}{
		{
			name: "valid registration",
			input: usecase.RegisterInput{
				Username:  "Alice_01",
				FirstName: "Alice",
				LastName:  "Smith",
				Password:  "correct horse battery",
			},
		},
		{
			name: "username too short",
			input: usecase.RegisterInput{
				Username:  "al",
				FirstName: "Alice",
				LastName:  "Smith",
				Password:  "correct horse battery",
			},
			wantErr: domain.ErrInvalidUsername,
		},
		{
			name: "username with illegal characters",
			input: usecase.RegisterInput{
				Username:  "alice!01",
				FirstName: "Alice",
				LastName:  "Smith",
				Password:  "correct horse battery",
			},
			wantErr: domain.ErrInvalidUsername,
		},
		{
			name: "password too short",
			input: usecase.RegisterInput{
				Username:  "alice01",
				FirstName: "Alice",
				LastName:  "Smith",
				Password:  "short",
			},
			wantErr: domain.ErrInvalidPassword,
		},
		{
			name: "first name too short",
			input: usecase.RegisterInput{
				Username:  "alice01",
				FirstName: "A",
				LastName:  "Smith",
				Password:  "correct horse battery",
			},
			wantErr: domain.ErrInvalidName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()

			account, err := env.accountUC.Register(context.Background(), tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Register() error = %v", err)
			}

			if account.Username != "alice_01" {
				t.Errorf("username = %q, want lowercased %q", account.Username, "alice_01")
			}
			if account.Approved {
				t.Error("new account must await approval")
			}
			if account.Type != domain.AccountTypeClient {
				t.Errorf("type = %s, want client", account.Type)
			}
			if account.HashedPassword != "" {
				t.Error("hashed password leaked in response")
			}
		})
	}
}

func TestAccountUseCase_Register_DuplicateUsername(t *testing.T) {
	env := newTestEnv()

	input := usecase.RegisterInput{
		Username:  "alice01",
		FirstName: "Alice",
		LastName:  "Smith",
		Password:  "correct horse battery",
	}
	if _, err := env.accountUC.Register(context.Background(), input); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, err := env.accountUC.Register(context.Background(), input); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Errorf("second Register error = %v, want ErrUsernameTaken", err)
	}
}

func TestAccountUseCase_Authenticate(t *testing.T) {
	env := newTestEnv()

	if _, err := env.accountUC.Register(context.Background(), usecase.RegisterInput{
		Username:  "alice01",
		FirstName: "Alice",
		LastName:  "Smith",
		Password:  "correct horse battery",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	account, err := env.accountUC.Authenticate(context.Background(), "Alice01", "correct horse battery")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if account.Username != "alice01" {
		t.Errorf("username = %q, want alice01", account.Username)
	}

	if _, err := env.accountUC.Authenticate(context.Background(), "alice01", "wrong password"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("wrong password error = %v, want ErrUnauthorized", err)
	}
	if _, err := env.accountUC.Authenticate(context.Background(), "nobody", "correct horse battery"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("unknown user error = %v, want ErrUnauthorized", err)
	}
}

func TestAccountUseCase_ApproveAndPromote(t *testing.T) {
	env := newTestEnv()

	if _, err := env.accountUC.Register(context.Background(), usecase.RegisterInput{
		Username:  "alice01",
		FirstName: "Alice",
		LastName:  "Smith",
		Password:  "correct horse battery",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	pending, err := env.accountUC.ListPending(context.Background())
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending))
	}

	if err := env.accountUC.Approve(context.Background(), "alice01"); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if err := env.accountUC.Promote(context.Background(), "alice01"); err != nil {
		t.Fatalf("Promote: %v", err)
	}

	profile, err := env.accountUC.GetProfile(context.Background(), "alice01")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if !profile.Account.Approved {
		t.Error("account not approved")
	}
	if profile.Account.Type != domain.AccountTypeAdmin {
		t.Errorf("type = %s, want admin", profile.Account.Type)
	}
	if !profile.Balance.IsZero() {
		t.Errorf("fresh balance = %s, want 0", profile.Balance)
	}
}

func TestAccountUseCase_Rename_PropagatesAndRelinks(t *testing.T) {
	env := newTestEnv()
	env.seedAccount(t, "alice")
	env.seedAccount(t, "bob")
	env.fund(t, "alice", "100")

	if _, err := env.ledger.Append(context.Background(), usecase.AppendInput{
		Sender:    strptr("alice"),
		Recipient: strptr("bob"),
		Amount:    decimal.NewFromInt(30),
		Kind:      domain.TransactionKindTransfer,
	}); err != nil {
		t.Fatalf("append: %v", err)
	}

	env.seedLoan(t, &domain.LoanRequest{
		ID:         "loan-1",
		Recipient:  "bob",
		Sender:     "alice",
		Amount:     decimal.NewFromInt(10),
		Status:     domain.LoanStatusPending,
		ExpiryDate: time.Now().UTC().Add(60 * 24 * time.Hour),
	})

	account, err := env.accountUC.Rename(context.Background(), "alice", "alicia")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if account.Username != "alicia" {
		t.Errorf("username = %q, want alicia", account.Username)
	}

	// The chain was re-linked, not corrupted.
	if err := env.ledger.VerifyChain(context.Background()); err != nil {
		t.Fatalf("chain broken after rename: %v", err)
	}

	// The old name no longer appears anywhere.
	chain, _ := env.txRepo.ListAll(context.Background())
	for _, txn := range chain {
		if txn.Involves("alice") {
			t.Errorf("transaction %s still references old username", txn.ID)
		}
	}
	if got := env.balance(t, "alicia"); !got.Equal(decimal.NewFromInt(70)) {
		t.Errorf("balance under new name = %s, want 70", got)
	}

	loan, err := env.loans.GetByID(context.Background(), "loan-1")
	if err != nil {
		t.Fatalf("get loan: %v", err)
	}
	if loan.Sender != "alicia" {
		t.Errorf("loan lender = %q, want alicia", loan.Sender)
	}

	if _, err := env.accounts.GetByUsername(context.Background(), "alice"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("old account lookup error = %v, want ErrAccountNotFound", err)
	}
}

func TestAccountUseCase_Rename_TakenUsername(t *testing.T) {
	env := newTestEnv()
	env.seedAccount(t, "alice")
	env.seedAccount(t, "bobby")

	if _, err := env.accountUC.Rename(context.Background(), "alice", "bobby"); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Errorf("Rename error = %v, want ErrUsernameTaken", err)
	}
}

func TestAccountUseCase_Delete_KeepsHistory(t *testing.T) {
	env := newTestEnv()
	env.seedAccount(t, "alice")
	env.seedAccount(t, "bob")
	env.fund(t, "alice", "100")

	if _, err := env.ledger.Append(context.Background(), usecase.AppendInput{
		Sender:    strptr("alice"),
		Recipient: strptr("bob"),
		Amount:    decimal.NewFromInt(30),
		Kind:      domain.TransactionKindTransfer,
	}); err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := env.accountUC.Delete(context.Background(), "alice"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := env.accounts.GetByUsername(context.Background(), "alice"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("lookup error = %v, want ErrAccountNotFound", err)
	}

	history, err := env.ledger.ListByAccount(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ListByAccount: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("history length = %d, want 2", len(history))
	}
	if err := env.ledger.VerifyChain(context.Background()); err != nil {
		t.Errorf("chain broken after delete: %v", err)
	}
}

func TestAccountUseCase_Register_KeepsStoredHash(t *testing.T) {
	env := newTestEnv()

	account, err := env.accountUC.Register(context.Background(), usecase.RegisterInput{
		Username:  "alice01",
		FirstName: "Alice",
		LastName:  "Smith",
		Password:  "correct horse battery",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if account.HashedPassword != "" {
		t.Errorf("returned account leaks the password hash")
	}

	stored, err := env.accounts.GetByUsername(context.Background(), "alice01")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if stored.HashedPassword == "" {
		t.Fatalf("stored account lost its password hash")
	}
}
