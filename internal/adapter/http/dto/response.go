package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lcbank/backend/internal/domain"
	"github.com/lcbank/backend/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        string             `json:"id"`
	Username  string             `json:"username"`
	FirstName string             `json:"first_name"`
	LastName  string             `json:"last_name"`
	Type      domain.AccountType `json:"type"`
	Approved  bool               `json:"approved"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		Username:  a.Username,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Type:      a.Type,
		Approved:  a.Approved,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ProfileResponse is an account with its derived balance.
type ProfileResponse struct {
	Account *AccountResponse `json:"account"`
	Balance decimal.Decimal  `json:"balance"`
}

// ProfileFromUseCase converts a profile to a response.
func ProfileFromUseCase(p *usecase.Profile) *ProfileResponse {
	return &ProfileResponse{
		Account: AccountFromDomain(p.Account),
		Balance: p.Balance,
	}
}

// ProfilesFromUseCase converts profiles to responses.
func ProfilesFromUseCase(profiles []*usecase.Profile) []*ProfileResponse {
	result := make([]*ProfileResponse, len(profiles))
	for i, p := range profiles {
		result[i] = ProfileFromUseCase(p)
	}
	return result
}

// TokenResponse carries an issued JWT.
type TokenResponse struct {
	Token string `json:"token"`
}

// TransactionResponse represents a ledger transaction in API responses.
type TransactionResponse struct {
	ID          string                 `json:"id"`
	Seq         int64                  `json:"seq"`
	Sender      *string                `json:"sender"`
	Recipient   *string                `json:"recipient"`
	Amount      decimal.Decimal        `json:"amount"`
	Kind        domain.TransactionKind `json:"kind"`
	Description string                 `json:"description,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	PrevHash    string                 `json:"prev_hash"`
	Hash        string                 `json:"hash"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:          t.ID,
		Seq:         t.Seq,
		Sender:      t.Sender,
		Recipient:   t.Recipient,
		Amount:      t.Amount,
		Kind:        t.Kind,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		PrevHash:    t.PrevHash,
		Hash:        t.Hash,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(transactions []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(transactions))
	for i, t := range transactions {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// LoanResponse represents a loan request in API responses.
type LoanResponse struct {
	ID          string            `json:"id"`
	Recipient   string            `json:"recipient"`
	Sender      string            `json:"sender"`
	Amount      decimal.Decimal   `json:"amount"`
	Description string            `json:"description,omitempty"`
	Status      domain.LoanStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	ExpiryDate  time.Time         `json:"expiry_date"`
}

// LoanFromDomain converts a domain loan request to a response.
func LoanFromDomain(l *domain.LoanRequest) *LoanResponse {
	return &LoanResponse{
		ID:          l.ID,
		Recipient:   l.Recipient,
		Sender:      l.Sender,
		Amount:      l.Amount,
		Description: l.Description,
		Status:      l.Status,
		CreatedAt:   l.CreatedAt,
		ExpiryDate:  l.ExpiryDate,
	}
}

// LoansFromDomain converts domain loan requests to responses.
func LoansFromDomain(loans []*domain.LoanRequest) []*LoanResponse {
	result := make([]*LoanResponse, len(loans))
	for i, l := range loans {
		result[i] = LoanFromDomain(l)
	}
	return result
}

// ChainStatusResponse reports a chain verification run.
type ChainStatusResponse struct {
	Intact bool   `json:"intact"`
	Halted bool   `json:"halted"`
	Error  string `json:"error,omitempty"`
}

// AnomalousLoanResponse represents an approved loan failing the risk
// rules, with the balances behind the verdict.
type AnomalousLoanResponse struct {
	Loan            *LoanResponse   `json:"loan"`
	BorrowerBalance decimal.Decimal `json:"borrower_balance"`
	LenderBalance   decimal.Decimal `json:"lender_balance"`
	Expired         bool            `json:"expired"`
}

// AnomalousLoansFromUseCase converts anomalous loans to responses.
func AnomalousLoansFromUseCase(loans []*usecase.AnomalousLoan) []*AnomalousLoanResponse {
	result := make([]*AnomalousLoanResponse, len(loans))
	for i, l := range loans {
		result[i] = &AnomalousLoanResponse{
			Loan:            LoanFromDomain(l.Loan),
			BorrowerBalance: l.BorrowerBalance,
			LenderBalance:   l.LenderBalance,
			Expired:         l.Expired,
		}
	}
	return result
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
