package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/lcbank/backend/internal/domain"
)

// AccountUseCase handles membership: registration, authentication,
// approval, promotion, rename and deletion. Deleting an account keeps
// its historical transactions; renaming propagates into them.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	txRepo      TransactionRepository
	loanRepo    LoanRepository
	ledger      *LedgerUseCase
	idGen       IDGenerator
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	txRepo TransactionRepository,
	loanRepo LoanRepository,
	ledger *LedgerUseCase,
	idGen IDGenerator,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		txRepo:      txRepo,
		loanRepo:    loanRepo,
		ledger:      ledger,
		idGen:       idGen,
	}
}

// RegisterInput represents a registration request.
type RegisterInput struct {
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// Register creates an unapproved client account. An admin must approve
// it before it can move money.
func (uc *AccountUseCase) Register(ctx context.Context, input RegisterInput) (*domain.Account, error) {
	username := strings.ToLower(input.Username)

	if err := domain.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	if err := domain.ValidateName(input.FirstName); err != nil {
		return nil, err
	}
	if err := domain.ValidateName(input.LastName); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:             uc.idGen.Generate(),
		Username:       username,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		HashedPassword: string(hashed),
		Type:           domain.AccountTypeClient,
		Approved:       false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	account.HashedPassword = ""
	return account, nil
}

// Authenticate verifies credentials and returns the account.
func (uc *AccountUseCase) Authenticate(ctx context.Context, username, password string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByUsername(ctx, strings.ToLower(username))
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.HashedPassword), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	account.HashedPassword = ""
	return account, nil
}

// Profile is an account with its derived balance.
type Profile struct {
	Account *domain.Account
	Balance decimal.Decimal
}

// GetProfile returns the account and its replayed balance.
func (uc *AccountUseCase) GetProfile(ctx context.Context, username string) (*Profile, error) {
	account, err := uc.accountRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	balance, err := uc.ledger.BalanceOf(ctx, username)
	if err != nil {
		return nil, err
	}

	account.HashedPassword = ""
	return &Profile{Account: account, Balance: balance}, nil
}

// List returns all accounts with balances.
func (uc *AccountUseCase) List(ctx context.Context) ([]*Profile, error) {
	accounts, err := uc.accountRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	profiles := make([]*Profile, 0, len(accounts))
	for _, account := range accounts {
		balance, err := uc.ledger.BalanceOf(ctx, account.Username)
		if err != nil {
			return nil, err
		}
		account.HashedPassword = ""
		profiles = append(profiles, &Profile{Account: account, Balance: balance})
	}

	return profiles, nil
}

// ListPending returns accounts awaiting approval.
func (uc *AccountUseCase) ListPending(ctx context.Context) ([]*domain.Account, error) {
	accounts, err := uc.accountRepo.ListUnapproved(ctx)
	if err != nil {
		return nil, err
	}
	for _, account := range accounts {
		account.HashedPassword = ""
	}
	return accounts, nil
}

// Approve marks an account approved.
func (uc *AccountUseCase) Approve(ctx context.Context, username string) error {
	return uc.accountRepo.UpdateApproval(ctx, username, true)
}

// Promote grants admin type.
func (uc *AccountUseCase) Promote(ctx context.Context, username string) error {
	return uc.accountRepo.UpdateType(ctx, username, domain.AccountTypeAdmin)
}

// Rename changes a username and propagates the change into every
// transaction and loan request referencing it. The chain digest covers
// participant names, so the ledger re-links the chain in the same
// database transaction.
func (uc *AccountUseCase) Rename(ctx context.Context, oldUsername, newUsername string) (*domain.Account, error) {
	newUsername = strings.ToLower(newUsername)
	if err := domain.ValidateUsername(newUsername); err != nil {
		return nil, err
	}

	if _, err := uc.accountRepo.GetByUsername(ctx, oldUsername); err != nil {
		return nil, err
	}
	if _, err := uc.accountRepo.GetByUsername(ctx, newUsername); err == nil {
		return nil, domain.ErrUsernameTaken
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.accountRepo.UpdateUsername(txCtx, tx, oldUsername, newUsername); err != nil {
		return nil, err
	}

	if err := uc.ledger.RenameParticipant(txCtx, tx, oldUsername, newUsername); err != nil {
		return nil, err
	}

	if err := uc.loanRepo.RewriteParticipants(txCtx, tx, oldUsername, newUsername); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if err := uc.ledger.VerifyChain(ctx); err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByUsername(ctx, newUsername)
	if err != nil {
		return nil, err
	}
	account.HashedPassword = ""
	return account, nil
}

// Delete removes the account record. Historical transactions and loan
// requests are retained as audit records.
func (uc *AccountUseCase) Delete(ctx context.Context, username string) error {
	return uc.accountRepo.Delete(ctx, username)
}
