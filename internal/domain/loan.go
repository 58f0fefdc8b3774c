package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus represents where a loan request is in its lifecycle.
type LoanStatus string

const (
	LoanStatusPending  LoanStatus = "pending"
	LoanStatusApproved LoanStatus = "approved"
	LoanStatusRejected LoanStatus = "rejected"
	LoanStatusRepaid   LoanStatus = "repaid"
	LoanStatusInvalid  LoanStatus = "invalid"
)

// Repayable reports whether a loan in this status can still be settled.
// An invalid loan remains repayable; it never returns to approved.
func (s LoanStatus) Repayable() bool {
	return s == LoanStatusApproved || s == LoanStatusInvalid
}

// Terminal reports whether no further user transition is allowed.
func (s LoanStatus) Terminal() bool {
	return s == LoanStatusRejected || s == LoanStatusRepaid
}

// LoanRequest is the audit record of a loan's lifecycle. Approval and
// repayment produce ledger transactions linked only by matching
// sender/recipient/amount, never by a stored foreign key.
type LoanRequest struct {
	ID          string
	Recipient   string // borrower
	Sender      string // lender
	Amount      decimal.Decimal
	Description string
	Status      LoanStatus
	CreatedAt   time.Time
	ExpiryDate  time.Time
}

// Expired reports whether the request is past its expiry date.
func (l *LoanRequest) Expired(now time.Time) bool {
	return now.After(l.ExpiryDate)
}

// RemainingValidity returns how long the request stays valid from now.
func (l *LoanRequest) RemainingValidity(now time.Time) time.Duration {
	return l.ExpiryDate.Sub(now)
}
