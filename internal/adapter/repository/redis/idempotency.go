package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// placeholder marks a key whose request is still in flight.
const placeholder = "processing"

// IdempotencyStore implements usecase.IdempotencyStore using Redis.
type IdempotencyStore struct {
	client redis.UniversalClient
	prefix string
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client redis.UniversalClient) *IdempotencyStore {
	return &IdempotencyStore{
		client: client,
		prefix: "idempotency:",
	}
}

// CheckAndSet atomically checks if key exists, sets if not. A nil response
// stores a placeholder that Update later replaces.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	fullKey := s.prefix + key

	value := response
	if value == nil {
		value = []byte(placeholder)
	}

	set, err := s.client.SetNX(ctx, fullKey, value, ttl).Result()
	if err != nil {
		return false, nil, err
	}
	if set {
		return false, nil, nil
	}

	// Another request got there first
	existing, err := s.client.Get(ctx, fullKey).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, nil, err
	}

	return true, existing, nil
}

// Update updates an existing idempotency key with the final response.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	fullKey := s.prefix + key
	return s.client.Set(ctx, fullKey, response, ttl).Err()
}

// Delete removes an idempotency key.
func (s *IdempotencyStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
