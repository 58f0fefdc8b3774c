package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// BalanceCache implements usecase.BalanceCache using Redis. A cache
// miss and a Redis failure both report ok=false so balance reads fall
// back to the ledger replay.
type BalanceCache struct {
	client *redis.Client
	prefix string
}

// NewBalanceCache creates a new BalanceCache.
func NewBalanceCache(client *redis.Client) *BalanceCache {
	return &BalanceCache{
		client: client,
		prefix: "balance:",
	}
}

// Get retrieves a cached balance.
func (c *BalanceCache) Get(ctx context.Context, username string) (decimal.Decimal, bool, error) {
	value, err := c.client.Get(ctx, c.prefix+username).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, err
	}

	balance, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, false, err
	}

	return balance, true, nil
}

// Set stores a balance with TTL.
func (c *BalanceCache) Set(ctx context.Context, username string, balance decimal.Decimal, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+username, balance.String(), ttl).Err()
}

// Invalidate drops the cached balances for the given usernames.
func (c *BalanceCache) Invalidate(ctx context.Context, usernames ...string) error {
	if len(usernames) == 0 {
		return nil
	}

	keys := make([]string, 0, len(usernames))
	for _, username := range usernames {
		keys = append(keys, c.prefix+username)
	}

	return c.client.Del(ctx, keys...).Err()
}
