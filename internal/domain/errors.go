package domain

import "errors"

var (
	// Ledger errors
	ErrInvalidAmount   = errors.New("amount cannot be negative")
	ErrNegativeBalance = errors.New("balance cannot be negative")
	ErrSameAccount     = errors.New("sender and recipient must differ")
	ErrChainCorrupted  = errors.New("transaction chain is corrupted")

	// Account errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrAccountNotApproved = errors.New("account is not approved")
	ErrInvalidUsername    = errors.New("username must be 4-32 lowercase letters, digits or underscores")
	ErrInvalidPassword    = errors.New("password must be at least 8 characters")
	ErrInvalidName        = errors.New("name must be at least 2 characters")

	// Loan errors
	ErrLoanNotFound       = errors.New("loan request not found")
	ErrNotPending         = errors.New("loan request is not pending")
	ErrNotApproved        = errors.New("loan request is not approved")
	ErrForbidden          = errors.New("acting user may not perform this transition")
	ErrExpired            = errors.New("loan request is past its validity window")
	ErrExpiryTooSoon      = errors.New("expiry date must leave the minimum notice window")
	ErrBorrowLimit        = errors.New("amount exceeds the borrower's loan cap")
	ErrLendLimit          = errors.New("amount exceeds the lender's loan cap")
	ErrBelowRiskThreshold = errors.New("borrower is solvent, immediate withdrawal refused")
	ErrStaleState         = errors.New("loan request was modified by another actor")
)

// Authentication errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
