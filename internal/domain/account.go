package domain

import "time"

// AccountType represents an account's access level.
type AccountType string

const (
	// AccountTypeClient can transfer funds and take part in loans.
	AccountTypeClient AccountType = "client"

	// AccountTypeAdmin can additionally manage accounts and correct balances.
	AccountTypeAdmin AccountType = "admin"
)

// IsValid checks if the account type is known.
func (t AccountType) IsValid() bool {
	return t == AccountTypeClient || t == AccountTypeAdmin
}

// IsAdmin reports whether the type grants administrative access.
func (t AccountType) IsAdmin() bool {
	return t == AccountTypeAdmin
}

// Account represents a bank member. The balance is never stored on the
// account; it is always derived by replaying the ledger.
type Account struct {
	ID             string
	Username       string
	FirstName      string
	LastName       string
	HashedPassword string
	Type           AccountType
	Approved       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CanOperate reports whether the account may move money.
func (a *Account) CanOperate() bool {
	return a.Approved
}
