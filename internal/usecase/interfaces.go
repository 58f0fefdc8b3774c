package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lcbank/backend/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	Update(ctx context.Context, account *domain.Account) error
	UpdateUsername(ctx context.Context, tx Transaction, oldUsername, newUsername string) error
	UpdateApproval(ctx context.Context, username string, approved bool) error
	UpdateType(ctx context.Context, username string, accountType domain.AccountType) error
	Delete(ctx context.Context, username string) error
	List(ctx context.Context) ([]*domain.Account, error)
	ListUnapproved(ctx context.Context) ([]*domain.Account, error)
}

// TransactionRepository defines data access for the hash-chained
// transaction log. The store must preserve insertion order.
type TransactionRepository interface {
	// LockChain serializes appends: it must block until the caller is
	// the only writer of the chain for the lifetime of tx.
	LockChain(ctx context.Context, tx Transaction) error
	// GetLatest returns the most recently inserted transaction, or
	// (nil, nil) when the chain is empty.
	GetLatest(ctx context.Context, tx Transaction) (*domain.Transaction, error)
	Insert(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	ListAll(ctx context.Context) ([]*domain.Transaction, error)
	ListAllForUpdate(ctx context.Context, tx Transaction) ([]*domain.Transaction, error)
	ListByAccount(ctx context.Context, username string) ([]*domain.Transaction, error)
	RewriteParticipants(ctx context.Context, tx Transaction, oldUsername, newUsername string) error
	UpdateHashes(ctx context.Context, tx Transaction, id, prevHash, hash string) error
}

// LoanRepository defines data access for loan requests.
type LoanRepository interface {
	Create(ctx context.Context, loan *domain.LoanRequest) error
	GetByID(ctx context.Context, id string) (*domain.LoanRequest, error)
	ListByStatus(ctx context.Context, status domain.LoanStatus) ([]*domain.LoanRequest, error)
	ListByAccount(ctx context.Context, username string) ([]*domain.LoanRequest, error)
	// UpdateStatusIf transitions a loan only when its status still
	// matches from; returns domain.ErrStaleState otherwise.
	UpdateStatusIf(ctx context.Context, tx Transaction, id string, from, to domain.LoanStatus) error
	RewriteParticipants(ctx context.Context, tx Transaction, oldUsername, newUsername string) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier retries an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// BalanceCache is a read-through cache over derived balances. The full
// ledger replay stays the source of truth; the cache is invalidated on
// every append that touches the account.
type BalanceCache interface {
	Get(ctx context.Context, username string) (decimal.Decimal, bool, error)
	Set(ctx context.Context, username string, balance decimal.Decimal, ttl time.Duration) error
	Invalidate(ctx context.Context, usernames ...string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
