package domain

import "github.com/shopspring/decimal"

// Fixed business thresholds gating loans against derived balances.
// These are constants of the system, not configuration.
var (
	borrowCapRatio = decimal.RequireFromString("0.6")
	lendCapRatio   = decimal.RequireFromString("0.5")
	riskRatio      = decimal.RequireFromString("0.6")
)

// CanBorrow reports whether the borrower's balance covers the loan:
// amount must not exceed 60% of the borrower's balance.
func CanBorrow(borrowerBalance, amount decimal.Decimal) bool {
	return amount.LessThanOrEqual(borrowerBalance.Mul(borrowCapRatio))
}

// CanLend reports whether the lender can afford the loan: amount must
// not exceed half of the lender's balance.
func CanLend(lenderBalance, amount decimal.Decimal) bool {
	return amount.LessThanOrEqual(lenderBalance.Mul(lendCapRatio))
}

// IsAtRisk reports whether an outstanding loan no longer meets the
// original risk threshold: 60% of the balance has dropped below the
// loan amount.
func IsAtRisk(balance, amount decimal.Decimal) bool {
	return balance.Mul(riskRatio).LessThan(amount)
}
