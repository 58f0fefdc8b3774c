package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyPrefix = "idempotency:"

// IdempotencyStore keeps replayable responses for mutating requests,
// keyed by the client-supplied idempotency key.
type IdempotencyStore struct {
	client *redis.Client
}

// NewIdempotencyStore creates an IdempotencyStore.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// CheckAndSet returns the stored response when the key is already
// known. Otherwise it claims the key, either with the given response
// or with a placeholder that a later Update replaces.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	k := idempotencyPrefix + key

	prior, err := s.client.Get(ctx, k).Bytes()
	if err == nil {
		return true, prior, nil
	}
	if !errors.Is(err, redis.Nil) {
		return false, nil, err
	}

	if response != nil {
		if err := s.client.Set(ctx, k, response, ttl).Err(); err != nil {
			return false, nil, err
		}
		return false, nil, nil
	}

	claimed, err := s.client.SetNX(ctx, k, "processing", ttl).Result()
	if err != nil {
		return false, nil, err
	}
	if !claimed {
		// Lost the race; serve whatever the winner stored.
		prior, err := s.client.Get(ctx, k).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return false, nil, err
		}
		return true, prior, nil
	}
	return false, nil, nil
}

// Update overwrites a claimed key with the final response.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return s.client.Set(ctx, idempotencyPrefix+key, response, ttl).Err()
}
