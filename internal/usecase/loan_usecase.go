package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lcbank/backend/internal/domain"
	"github.com/lcbank/backend/internal/infrastructure/metrics"
)

// LoanUseCase is the state machine governing the loan lifecycle.
// Transitions that move money append a ledger entry in the same
// database transaction as the status change, guarded by an optimistic
// status check.
type LoanUseCase struct {
	txManager   TransactionManager
	loanRepo    LoanRepository
	accountRepo AccountRepository
	ledger      *LedgerUseCase
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewLoanUseCase creates a new LoanUseCase. metrics is optional.
func NewLoanUseCase(
	txManager TransactionManager,
	loanRepo LoanRepository,
	accountRepo AccountRepository,
	ledger *LedgerUseCase,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *LoanUseCase {
	return &LoanUseCase{
		txManager:   txManager,
		loanRepo:    loanRepo,
		accountRepo: accountRepo,
		ledger:      ledger,
		idGen:       idGen,
		metrics:     metrics,
	}
}

// CreateLoanInput represents a borrower's loan request.
type CreateLoanInput struct {
	Recipient   string // borrower
	Sender      string // lender
	Amount      decimal.Decimal
	ExpiryDate  time.Time
	Description string
}

// Create validates eligibility and records a pending request. No
// ledger entry is produced until approval.
func (uc *LoanUseCase) Create(ctx context.Context, input CreateLoanInput) (*domain.LoanRequest, error) {
	if input.Amount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	if input.Recipient == input.Sender {
		return nil, domain.ErrSameAccount
	}

	now := time.Now().UTC()
	if input.ExpiryDate.Before(now.Add(MinNoticeWindow)) {
		return nil, domain.ErrExpiryTooSoon
	}

	for _, username := range []string{input.Recipient, input.Sender} {
		if _, err := uc.accountRepo.GetByUsername(ctx, username); err != nil {
			return nil, err
		}
	}

	borrowerBalance, err := uc.ledger.BalanceOf(ctx, input.Recipient)
	if err != nil {
		return nil, err
	}
	if !domain.CanBorrow(borrowerBalance, input.Amount) {
		return nil, domain.ErrBorrowLimit
	}

	lenderBalance, err := uc.ledger.BalanceOf(ctx, input.Sender)
	if err != nil {
		return nil, err
	}
	if !domain.CanLend(lenderBalance, input.Amount) {
		return nil, domain.ErrLendLimit
	}

	loan := &domain.LoanRequest{
		ID:          uc.idGen.Generate(),
		Recipient:   input.Recipient,
		Sender:      input.Sender,
		Amount:      input.Amount,
		Description: input.Description,
		Status:      domain.LoanStatusPending,
		CreatedAt:   now,
		ExpiryDate:  input.ExpiryDate.UTC(),
	}

	if err := uc.loanRepo.Create(ctx, loan); err != nil {
		return nil, err
	}

	uc.countTransition("create")

	if err := uc.ledger.VerifyChain(ctx); err != nil {
		return loan, err
	}
	return loan, nil
}

// Approve moves a pending request to approved and disburses the loan.
// Only the lender may approve, and only while at least the minimum
// notice window of validity remains.
func (uc *LoanUseCase) Approve(ctx context.Context, id, actingUser string) (*domain.LoanRequest, error) {
	loan, err := uc.loanRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if loan.Status != domain.LoanStatusPending {
		return nil, domain.ErrNotPending
	}
	if loan.Sender != actingUser {
		return nil, domain.ErrForbidden
	}

	now := time.Now().UTC()
	if loan.Expired(now) || loan.RemainingValidity(now) < MinNoticeWindow {
		return nil, domain.ErrExpired
	}

	txn, err := uc.transition(ctx, loan, domain.LoanStatusApproved, &AppendInput{
		Sender:      &loan.Sender,
		Recipient:   &loan.Recipient,
		Amount:      loan.Amount,
		Kind:        domain.TransactionKindLoan,
		Description: loan.Description,
	})
	if err != nil {
		return nil, err
	}

	loan.Status = domain.LoanStatusApproved
	uc.countTransition("approve")

	if err := uc.ledger.AfterAppend(ctx, txn); err != nil {
		return loan, err
	}
	return loan, nil
}

// Reject moves a pending request to rejected. Only the lender may
// reject, and only before expiry. No ledger entry is produced.
func (uc *LoanUseCase) Reject(ctx context.Context, id, actingUser string) (*domain.LoanRequest, error) {
	loan, err := uc.loanRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if loan.Status != domain.LoanStatusPending {
		return nil, domain.ErrNotPending
	}
	if loan.Sender != actingUser {
		return nil, domain.ErrForbidden
	}
	if loan.Expired(time.Now().UTC()) {
		return nil, domain.ErrExpired
	}

	if _, err := uc.transition(ctx, loan, domain.LoanStatusRejected, nil); err != nil {
		return nil, err
	}

	loan.Status = domain.LoanStatusRejected
	uc.countTransition("reject")

	if err := uc.ledger.VerifyChain(ctx); err != nil {
		return loan, err
	}
	return loan, nil
}

// Repay settles an approved (or invalidated) loan. Only the borrower
// may repay; the full amount moves back to the lender.
func (uc *LoanUseCase) Repay(ctx context.Context, id, actingUser string) (*domain.LoanRequest, error) {
	loan, err := uc.loanRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !loan.Status.Repayable() {
		return nil, domain.ErrNotApproved
	}
	if loan.Recipient != actingUser {
		return nil, domain.ErrForbidden
	}

	return uc.settle(ctx, loan, "repay")
}

// Withdraw is the lender's early recall. It is only permitted while
// the borrower still violates the original risk threshold; once the
// borrower has recovered, immediate recall is refused.
func (uc *LoanUseCase) Withdraw(ctx context.Context, id, actingUser string) (*domain.LoanRequest, error) {
	loan, err := uc.loanRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !loan.Status.Repayable() {
		return nil, domain.ErrNotApproved
	}
	if loan.Sender != actingUser {
		return nil, domain.ErrForbidden
	}

	borrowerBalance, err := uc.ledger.BalanceOf(ctx, loan.Recipient)
	if err != nil {
		return nil, err
	}
	if !domain.IsAtRisk(borrowerBalance, loan.Amount) {
		return nil, domain.ErrBelowRiskThreshold
	}

	return uc.settle(ctx, loan, "withdraw")
}

// settle marks the loan repaid and moves the amount borrower→lender.
func (uc *LoanUseCase) settle(ctx context.Context, loan *domain.LoanRequest, transition string) (*domain.LoanRequest, error) {
	txn, err := uc.transition(ctx, loan, domain.LoanStatusRepaid, &AppendInput{
		Sender:      &loan.Recipient,
		Recipient:   &loan.Sender,
		Amount:      loan.Amount,
		Kind:        domain.TransactionKindRepay,
		Description: loan.Description,
	})
	if err != nil {
		return nil, err
	}

	loan.Status = domain.LoanStatusRepaid
	uc.countTransition(transition)

	if err := uc.ledger.AfterAppend(ctx, txn); err != nil {
		return loan, err
	}
	return loan, nil
}

// transition applies the optimistic status update and, when draft is
// non-nil, appends the ledger entry in the same database transaction.
func (uc *LoanUseCase) transition(ctx context.Context, loan *domain.LoanRequest, to domain.LoanStatus, draft *AppendInput) (*domain.Transaction, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.loanRepo.UpdateStatusIf(txCtx, tx, loan.ID, loan.Status, to); err != nil {
		return nil, err
	}

	var txn *domain.Transaction
	if draft != nil {
		txn, err = uc.ledger.AppendInTx(txCtx, tx, *draft)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return txn, nil
}

// SweepResult reports one invalid-loan sweep run.
type SweepResult struct {
	Scanned     int
	Invalidated int
}

// MarkInvalid is the background sweep: every approved loan whose
// borrower is at risk, whose lender can no longer cover it, or which
// has expired flips to invalid. The sweep emits no ledger entries and
// silently skips loans another actor transitioned concurrently.
func (uc *LoanUseCase) MarkInvalid(ctx context.Context) (SweepResult, error) {
	loans, err := uc.loanRepo.ListByStatus(ctx, domain.LoanStatusApproved)
	if err != nil {
		return SweepResult{}, err
	}

	result := SweepResult{Scanned: len(loans)}
	now := time.Now().UTC()

	for _, loan := range loans {
		anomalous, err := uc.loanAnomalous(ctx, loan, now)
		if err != nil {
			return result, err
		}
		if !anomalous {
			continue
		}

		if _, err := uc.transition(ctx, loan, domain.LoanStatusInvalid, nil); err != nil {
			if errors.Is(err, domain.ErrStaleState) {
				continue
			}
			return result, err
		}
		result.Invalidated++
	}

	if uc.metrics != nil {
		uc.metrics.SweepRuns.Inc()
		uc.metrics.LoansInvalidated.Add(float64(result.Invalidated))
	}

	if err := uc.ledger.VerifyChain(ctx); err != nil {
		return result, err
	}
	return result, nil
}

func (uc *LoanUseCase) loanAnomalous(ctx context.Context, loan *domain.LoanRequest, now time.Time) (bool, error) {
	if loan.Expired(now) {
		return true, nil
	}

	borrowerBalance, err := uc.ledger.BalanceOf(ctx, loan.Recipient)
	if err != nil {
		return false, err
	}
	if domain.IsAtRisk(borrowerBalance, loan.Amount) {
		return true, nil
	}

	lenderBalance, err := uc.ledger.BalanceOf(ctx, loan.Sender)
	if err != nil {
		return false, err
	}
	return !domain.CanLend(lenderBalance, loan.Amount), nil
}

// Get retrieves a loan request by ID.
func (uc *LoanUseCase) Get(ctx context.Context, id string) (*domain.LoanRequest, error) {
	return uc.loanRepo.GetByID(ctx, id)
}

// ListByAccount lists loan requests the user takes part in, on either
// side.
func (uc *LoanUseCase) ListByAccount(ctx context.Context, username string) ([]*domain.LoanRequest, error) {
	return uc.loanRepo.ListByAccount(ctx, username)
}

func (uc *LoanUseCase) countTransition(transition string) {
	if uc.metrics != nil {
		uc.metrics.LoanTransitions.WithLabelValues(transition).Inc()
	}
}
