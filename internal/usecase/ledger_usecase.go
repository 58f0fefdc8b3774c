package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lcbank/backend/internal/domain"
	"github.com/lcbank/backend/internal/infrastructure/metrics"
)

// LedgerUseCase owns the hash-chained transaction log: appends,
// balance derivation by replay, administrative corrections and chain
// verification. Once a post-write verification fails, the ledger
// latches into a halted state and refuses all further writes.
type LedgerUseCase struct {
	txManager   TransactionManager
	txRepo      TransactionRepository
	accountRepo AccountRepository
	cache       BalanceCache
	retrier     Retrier
	idGen       IDGenerator
	metrics     *metrics.Metrics
	halted      atomic.Bool
}

// NewLedgerUseCase creates a new LedgerUseCase. cache, retrier and
// metrics are optional.
func NewLedgerUseCase(
	txManager TransactionManager,
	txRepo TransactionRepository,
	accountRepo AccountRepository,
	cache BalanceCache,
	retrier Retrier,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:   txManager,
		txRepo:      txRepo,
		accountRepo: accountRepo,
		cache:       cache,
		retrier:     retrier,
		idGen:       idGen,
		metrics:     metrics,
	}
}

// AppendInput represents a transaction draft. A nil Sender or
// Recipient marks an administrative mint or burn.
type AppendInput struct {
	Sender      *string
	Recipient   *string
	Amount      decimal.Decimal
	Kind        domain.TransactionKind
	Description string
}

// Append validates the draft, links it to the chain tail and inserts
// it. Reading the tail and inserting happen under the chain lock in a
// single database transaction, so concurrent appends cannot fork the
// chain. Ends with a full chain verification.
func (uc *LedgerUseCase) Append(ctx context.Context, input AppendInput) (*domain.Transaction, error) {
	if err := uc.validateDraft(ctx, input); err != nil {
		return nil, err
	}

	var txn *domain.Transaction

	op := func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		txn, err = uc.AppendInTx(txCtx, tx, input)
		if err != nil {
			return err
		}

		return tx.Commit(txCtx)
	}

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, op)
	} else {
		err = op()
	}
	if err != nil {
		return nil, err
	}

	if err := uc.AfterAppend(ctx, txn); err != nil {
		return txn, err
	}

	return txn, nil
}

// validateDraft resolves the named parties up front. The lookup join
// happens here, at operation time, so the chain itself stays free of
// hidden I/O.
func (uc *LedgerUseCase) validateDraft(ctx context.Context, input AppendInput) error {
	if input.Amount.IsNegative() {
		return domain.ErrInvalidAmount
	}

	if input.Sender != nil && input.Recipient != nil && *input.Sender == *input.Recipient {
		return domain.ErrSameAccount
	}

	for _, party := range []*string{input.Sender, input.Recipient} {
		if party == nil {
			continue
		}
		if _, err := uc.accountRepo.GetByUsername(ctx, *party); err != nil {
			return err
		}
	}

	return nil
}

// AppendInTx links and inserts a draft inside the caller's database
// transaction. The caller commits, then must call AfterAppend. Used by
// the loan engine to make a status transition and its ledger entry
// atomic.
func (uc *LedgerUseCase) AppendInTx(ctx context.Context, tx Transaction, input AppendInput) (*domain.Transaction, error) {
	if uc.halted.Load() {
		return nil, domain.ErrChainCorrupted
	}

	if input.Amount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	if !input.Kind.IsValid() {
		return nil, fmt.Errorf("unknown transaction kind %q", input.Kind)
	}

	if err := uc.txRepo.LockChain(ctx, tx); err != nil {
		return nil, fmt.Errorf("lock chain: %w", err)
	}

	tail, err := uc.txRepo.GetLatest(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("read chain tail: %w", err)
	}

	prevHash := domain.ChainSentinel
	if tail != nil {
		prevHash = tail.Hash
	}

	txn := &domain.Transaction{
		ID:          uc.idGen.Generate(),
		Sender:      input.Sender,
		Recipient:   input.Recipient,
		Amount:      input.Amount,
		Kind:        input.Kind,
		Description: input.Description,
		CreatedAt:   time.Now().UTC(),
		PrevHash:    prevHash,
	}
	txn.Hash = txn.ComputeHash()

	if err := uc.txRepo.Insert(ctx, tx, txn); err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	return txn, nil
}

// AfterAppend invalidates cached balances for both parties and runs
// the post-write integrity check. A verification failure is fatal to
// the ledger, not just to this request.
func (uc *LedgerUseCase) AfterAppend(ctx context.Context, txn *domain.Transaction) error {
	if uc.cache != nil {
		parties := make([]string, 0, 2)
		if txn.Sender != nil {
			parties = append(parties, *txn.Sender)
		}
		if txn.Recipient != nil {
			parties = append(parties, *txn.Recipient)
		}
		if len(parties) > 0 {
			_ = uc.cache.Invalidate(ctx, parties...)
		}
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsAppended.WithLabelValues(string(txn.Kind)).Inc()
	}

	return uc.VerifyChain(ctx)
}

// BalanceOf derives the account balance by replaying every transaction
// the account took part in. Reads through the cache when one is
// configured; the replay stays the source of truth.
func (uc *LedgerUseCase) BalanceOf(ctx context.Context, username string) (decimal.Decimal, error) {
	if uc.cache != nil {
		if balance, ok, err := uc.cache.Get(ctx, username); err == nil && ok {
			if uc.metrics != nil {
				uc.metrics.BalanceCacheHits.Inc()
			}
			return balance, nil
		}
	}

	balance, err := uc.replayBalance(ctx, username)
	if err != nil {
		return decimal.Zero, err
	}

	if uc.cache != nil {
		_ = uc.cache.Set(ctx, username, balance, BalanceCacheTTL)
	}

	return balance, nil
}

func (uc *LedgerUseCase) replayBalance(ctx context.Context, username string) (decimal.Decimal, error) {
	transactions, err := uc.txRepo.ListByAccount(ctx, username)
	if err != nil {
		return decimal.Zero, fmt.Errorf("replay transactions: %w", err)
	}

	balance := decimal.Zero
	for _, txn := range transactions {
		balance = balance.Add(txn.SignedAmountFor(username))
	}

	if uc.metrics != nil {
		uc.metrics.BalanceReplays.Inc()
	}

	return balance, nil
}

// SetBalance is an administrative correction: it appends a mint or
// burn record bringing the derived balance to target. Returns nil when
// the balance already matches.
func (uc *LedgerUseCase) SetBalance(ctx context.Context, username string, target decimal.Decimal) (*domain.Transaction, error) {
	if target.IsNegative() {
		return nil, domain.ErrNegativeBalance
	}

	if _, err := uc.accountRepo.GetByUsername(ctx, username); err != nil {
		return nil, err
	}

	current, err := uc.replayBalance(ctx, username)
	if err != nil {
		return nil, err
	}

	diff := target.Sub(current)
	if diff.IsZero() {
		return nil, nil
	}

	input := AppendInput{
		Kind:        domain.TransactionKindTransfer,
		Description: "administrative balance correction",
	}
	if diff.IsPositive() {
		input.Recipient = &username
		input.Amount = diff
	} else {
		input.Sender = &username
		input.Amount = diff.Neg()
	}

	return uc.Append(ctx, input)
}

// VerifyChain replays the full transaction sequence and checks every
// link. On failure it halts the ledger and reports ErrChainCorrupted.
func (uc *LedgerUseCase) VerifyChain(ctx context.Context) error {
	transactions, err := uc.txRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("scan chain: %w", err)
	}

	if uc.metrics != nil {
		uc.metrics.ChainVerifications.Inc()
	}

	if idx, broken := domain.ChainBreak(transactions); broken {
		uc.halted.Store(true)
		if uc.metrics != nil {
			uc.metrics.ChainFailures.Inc()
		}
		return fmt.Errorf("link %d: %w", idx, domain.ErrChainCorrupted)
	}

	return nil
}

// Halted reports whether a failed integrity check has latched the
// ledger shut.
func (uc *LedgerUseCase) Halted() bool {
	return uc.halted.Load()
}

// ListByAccount returns the account's transactions in insertion order.
func (uc *LedgerUseCase) ListByAccount(ctx context.Context, username string) ([]*domain.Transaction, error) {
	return uc.txRepo.ListByAccount(ctx, username)
}

// RenameParticipant rewrites every occurrence of oldUsername in the
// chain and re-links it, all inside the caller's transaction under the
// chain lock. The digest covers participant names, so a plain rewrite
// would silently corrupt every following link.
func (uc *LedgerUseCase) RenameParticipant(ctx context.Context, tx Transaction, oldUsername, newUsername string) error {
	if uc.halted.Load() {
		return domain.ErrChainCorrupted
	}

	if err := uc.txRepo.LockChain(ctx, tx); err != nil {
		return fmt.Errorf("lock chain: %w", err)
	}

	if err := uc.txRepo.RewriteParticipants(ctx, tx, oldUsername, newUsername); err != nil {
		return fmt.Errorf("rewrite participants: %w", err)
	}

	transactions, err := uc.txRepo.ListAllForUpdate(ctx, tx)
	if err != nil {
		return fmt.Errorf("load chain: %w", err)
	}

	domain.RelinkChain(transactions)

	for _, txn := range transactions {
		if err := uc.txRepo.UpdateHashes(ctx, tx, txn.ID, txn.PrevHash, txn.Hash); err != nil {
			return fmt.Errorf("relink transaction %s: %w", txn.ID, err)
		}
	}

	if uc.cache != nil {
		_ = uc.cache.Invalidate(ctx, oldUsername, newUsername)
	}

	return nil
}
