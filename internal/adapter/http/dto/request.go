package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lcbank/backend/internal/usecase"
)

// RegisterRequest represents a registration request.
type RegisterRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterRequest) ToUseCaseInput() usecase.RegisterInput {
	return usecase.RegisterInput{
		Username:  r.Username,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Password:  r.Password,
	}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateTransferRequest represents a transfer from the caller to a
// named recipient.
type CreateTransferRequest struct {
	Recipient   string          `json:"recipient"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// SetBalanceRequest represents an administrative balance correction.
type SetBalanceRequest struct {
	Balance decimal.Decimal `json:"balance"`
}

// RenameRequest represents a username change.
type RenameRequest struct {
	NewUsername string `json:"new_username"`
}

// CreateLoanRequest represents a borrower's loan request. The sender
// field names the lender; the borrower is the caller.
type CreateLoanRequest struct {
	Sender      string          `json:"sender"`
	Amount      decimal.Decimal `json:"amount"`
	ExpiryDate  time.Time       `json:"expiry_date"`
	Description string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input for the given borrower.
func (r *CreateLoanRequest) ToUseCaseInput(borrower string) usecase.CreateLoanInput {
	return usecase.CreateLoanInput{
		Recipient:   borrower,
		Sender:      r.Sender,
		Amount:      r.Amount,
		ExpiryDate:  r.ExpiryDate,
		Description: r.Description,
	}
}
