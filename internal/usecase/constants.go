package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database
	// transaction. This prevents long-running transactions from holding
	// the chain lock.
	DefaultTransactionTimeout = 10 * time.Second

	// MinNoticeWindow is the minimum remaining validity a loan request
	// must have, both when it is created and when it is approved.
	MinNoticeWindow = 30 * 24 * time.Hour

	// BalanceCacheTTL bounds staleness if an invalidation is lost.
	BalanceCacheTTL = time.Minute

	// IdempotencyKeyTTL is how long idempotency keys are cached.
	IdempotencyKeyTTL = 24 * time.Hour
)
