package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lcbank/backend/internal/domain"
)

// AlertUseCase exposes the read-only anomaly queries consumed by the
// alerting collaborator. Delivery is out of scope here; callers format
// and push the results themselves.
type AlertUseCase struct {
	loanRepo    LoanRepository
	accountRepo AccountRepository
	ledger      *LedgerUseCase
}

// NewAlertUseCase creates a new AlertUseCase.
func NewAlertUseCase(loanRepo LoanRepository, accountRepo AccountRepository, ledger *LedgerUseCase) *AlertUseCase {
	return &AlertUseCase{
		loanRepo:    loanRepo,
		accountRepo: accountRepo,
		ledger:      ledger,
	}
}

// AnomalousLoan is an approved loan that no longer meets the risk
// rules, with the balances that condemned it.
type AnomalousLoan struct {
	Loan            *domain.LoanRequest
	BorrowerBalance decimal.Decimal
	LenderBalance   decimal.Decimal
	Expired         bool
}

// AnomalousLoans returns every approved loan where the borrower is at
// risk, the lender can no longer cover the amount, or the expiry date
// has passed. Same predicates as the invalid-loan sweep.
func (uc *AlertUseCase) AnomalousLoans(ctx context.Context) ([]*AnomalousLoan, error) {
	loans, err := uc.loanRepo.ListByStatus(ctx, domain.LoanStatusApproved)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	var anomalous []*AnomalousLoan
	for _, loan := range loans {
		borrowerBalance, err := uc.ledger.BalanceOf(ctx, loan.Recipient)
		if err != nil {
			return nil, err
		}
		lenderBalance, err := uc.ledger.BalanceOf(ctx, loan.Sender)
		if err != nil {
			return nil, err
		}

		expired := loan.Expired(now)
		if !expired &&
			!domain.IsAtRisk(borrowerBalance, loan.Amount) &&
			domain.CanLend(lenderBalance, loan.Amount) {
			continue
		}

		anomalous = append(anomalous, &AnomalousLoan{
			Loan:            loan,
			BorrowerBalance: borrowerBalance,
			LenderBalance:   lenderBalance,
			Expired:         expired,
		})
	}

	return anomalous, nil
}

// ZeroBalanceAccounts returns accounts whose derived balance is zero.
func (uc *AlertUseCase) ZeroBalanceAccounts(ctx context.Context) ([]*Profile, error) {
	accounts, err := uc.accountRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	var zero []*Profile
	for _, account := range accounts {
		balance, err := uc.ledger.BalanceOf(ctx, account.Username)
		if err != nil {
			return nil, err
		}
		if !balance.IsZero() {
			continue
		}
		account.HashedPassword = ""
		zero = append(zero, &Profile{Account: account, Balance: balance})
	}

	return zero, nil
}
