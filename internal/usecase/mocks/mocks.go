package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lcbank/backend/internal/domain"
	"github.com/lcbank/backend/internal/usecase"
)

// MockAccountRepository is an in-memory implementation of
// usecase.AccountRepository. Set the Func fields to override behavior.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc        func(ctx context.Context, account *domain.Account) error
	GetByUsernameFunc func(ctx context.Context, username string) (*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{accounts: make(map[string]*domain.Account)}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.Username]; ok {
		return domain.ErrUsernameTaken
	}
	// Store a copy so later mutation of the caller's struct does not
	// reach into the repository, matching the clone-on-read accessors.
	clone := *account
	m.accounts[account.Username] = &clone
	return nil
}

func (m *MockAccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if account, ok := m.accounts[username]; ok {
		clone := *account
		return &clone, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) Update(ctx context.Context, account *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.Username]; !ok {
		return domain.ErrAccountNotFound
	}
	m.accounts[account.Username] = account
	return nil
}

func (m *MockAccountRepository) UpdateUsername(ctx context.Context, tx usecase.Transaction, oldUsername, newUsername string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[oldUsername]
	if !ok {
		return domain.ErrAccountNotFound
	}
	delete(m.accounts, oldUsername)
	account.Username = newUsername
	m.accounts[newUsername] = account
	return nil
}

func (m *MockAccountRepository) UpdateApproval(ctx context.Context, username string, approved bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[username]
	if !ok {
		return domain.ErrAccountNotFound
	}
	account.Approved = approved
	return nil
}

func (m *MockAccountRepository) UpdateType(ctx context.Context, username string, accountType domain.AccountType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[username]
	if !ok {
		return domain.ErrAccountNotFound
	}
	account.Type = accountType
	return nil
}

func (m *MockAccountRepository) Delete(ctx context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[username]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(m.accounts, username)
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	accounts := make([]*domain.Account, 0, len(m.accounts))
	for _, account := range m.accounts {
		clone := *account
		accounts = append(accounts, &clone)
	}
	return accounts, nil
}

func (m *MockAccountRepository) ListUnapproved(ctx context.Context) ([]*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, account := range m.accounts {
		if !account.Approved {
			clone := *account
			accounts = append(accounts, &clone)
		}
	}
	return accounts, nil
}

// MockTransactionRepository keeps the chain as an ordered in-memory
// slice, preserving insertion order the way the real store does.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions []*domain.Transaction

	InsertFunc    func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error
	GetLatestFunc func(ctx context.Context, tx usecase.Transaction) (*domain.Transaction, error)
	ListAllFunc   func(ctx context.Context) ([]*domain.Transaction, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{}
}

func (m *MockTransactionRepository) LockChain(ctx context.Context, tx usecase.Transaction) error {
	return nil
}

func (m *MockTransactionRepository) GetLatest(ctx context.Context, tx usecase.Transaction) (*domain.Transaction, error) {
	if m.GetLatestFunc != nil {
		return m.GetLatestFunc(ctx, tx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.transactions) == 0 {
		return nil, nil
	}
	return m.transactions[len(m.transactions)-1], nil
}

func (m *MockTransactionRepository) Insert(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, tx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	txn.Seq = int64(len(m.transactions) + 1)
	m.transactions = append(m.transactions, txn)
	return nil
}

func (m *MockTransactionRepository) ListAll(ctx context.Context) ([]*domain.Transaction, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Transaction, len(m.transactions))
	copy(out, m.transactions)
	return out, nil
}

func (m *MockTransactionRepository) ListAllForUpdate(ctx context.Context, tx usecase.Transaction) ([]*domain.Transaction, error) {
	return m.ListAll(ctx)
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, username string) ([]*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	for _, txn := range m.transactions {
		if txn.Involves(username) {
			out = append(out, txn)
		}
	}
	return out, nil
}

func (m *MockTransactionRepository) RewriteParticipants(ctx context.Context, tx usecase.Transaction, oldUsername, newUsername string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, txn := range m.transactions {
		if txn.Sender != nil && *txn.Sender == oldUsername {
			name := newUsername
			txn.Sender = &name
		}
		if txn.Recipient != nil && *txn.Recipient == oldUsername {
			name := newUsername
			txn.Recipient = &name
		}
	}
	return nil
}

func (m *MockTransactionRepository) UpdateHashes(ctx context.Context, tx usecase.Transaction, id, prevHash, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, txn := range m.transactions {
		if txn.ID == id {
			txn.PrevHash = prevHash
			txn.Hash = hash
			return nil
		}
	}
	return fmt.Errorf("transaction %s not found", id)
}

// Corrupt rewrites the stored PrevHash of the transaction at index,
// for chain-integrity tests.
func (m *MockTransactionRepository) Corrupt(index int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[index].PrevHash = "corrupted"
}

// MockLoanRepository is an in-memory usecase.LoanRepository.
type MockLoanRepository struct {
	mu    sync.RWMutex
	loans map[string]*domain.LoanRequest
	order []string

	UpdateStatusIfFunc func(ctx context.Context, tx usecase.Transaction, id string, from, to domain.LoanStatus) error
}

func NewMockLoanRepository() *MockLoanRepository {
	return &MockLoanRepository{loans: make(map[string]*domain.LoanRequest)}
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *domain.LoanRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loans[loan.ID] = loan
	m.order = append(m.order, loan.ID)
	return nil
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id string) (*domain.LoanRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if loan, ok := m.loans[id]; ok {
		clone := *loan
		return &clone, nil
	}
	return nil, domain.ErrLoanNotFound
}

func (m *MockLoanRepository) ListByStatus(ctx context.Context, status domain.LoanStatus) ([]*domain.LoanRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.LoanRequest
	for _, id := range m.order {
		if m.loans[id].Status == status {
			clone := *m.loans[id]
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *MockLoanRepository) ListByAccount(ctx context.Context, username string) ([]*domain.LoanRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.LoanRequest
	for _, id := range m.order {
		loan := m.loans[id]
		if loan.Recipient == username || loan.Sender == username {
			clone := *loan
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *MockLoanRepository) UpdateStatusIf(ctx context.Context, tx usecase.Transaction, id string, from, to domain.LoanStatus) error {
	if m.UpdateStatusIfFunc != nil {
		return m.UpdateStatusIfFunc(ctx, tx, id, from, to)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	loan, ok := m.loans[id]
	if !ok {
		return domain.ErrLoanNotFound
	}
	if loan.Status != from {
		return domain.ErrStaleState
	}
	loan.Status = to
	return nil
}

func (m *MockLoanRepository) RewriteParticipants(ctx context.Context, tx usecase.Transaction, oldUsername, newUsername string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, loan := range m.loans {
		if loan.Recipient == oldUsername {
			loan.Recipient = newUsername
		}
		if loan.Sender == oldUsername {
			loan.Sender = newUsername
		}
	}
	return nil
}

// MockTransaction is a no-op usecase.Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockTransactionManager hands out no-op transactions.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockIDGenerator generates sequential IDs.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%04d", m.counter)
}

// MockBalanceCache is an in-memory usecase.BalanceCache that counts
// hits and invalidations.
type MockBalanceCache struct {
	mu            sync.Mutex
	values        map[string]decimal.Decimal
	Hits          int
	Invalidations int
}

func NewMockBalanceCache() *MockBalanceCache {
	return &MockBalanceCache{values: make(map[string]decimal.Decimal)}
}

func (m *MockBalanceCache) Get(ctx context.Context, username string) (decimal.Decimal, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if balance, ok := m.values[username]; ok {
		m.Hits++
		return balance, true, nil
	}
	return decimal.Zero, false, nil
}

func (m *MockBalanceCache) Set(ctx context.Context, username string, balance decimal.Decimal, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[username] = balance
	return nil
}

func (m *MockBalanceCache) Invalidate(ctx context.Context, usernames ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, username := range usernames {
		delete(m.values, username)
	}
	m.Invalidations++
	return nil
}
