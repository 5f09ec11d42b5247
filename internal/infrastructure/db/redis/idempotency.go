package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SakutaArc/QuickFund/internal/core/service"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour
	// pendingTTL bounds how long a crashed request can hold its key.
	pendingTTL = time.Minute

	statePending = "pending"
	stateDone    = "done"
)

// IdempotencyStore remembers donation request keys per user.
// Key format: idem:donation:<user_id>:<key>, value "pending" or "done".
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore wraps the given client. Completed keys expire after ttl
// (24h when ttl is not positive).
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Claim atomically reserves the key as pending. When the key is already held
// it reports whether the earlier request finished.
func (s *IdempotencyStore) Claim(ctx context.Context, userID int64, key string) (service.ClaimStatus, error) {
	k := s.key(userID, key)
	ok, err := s.client.SetNX(ctx, k, statePending, pendingTTL).Result()
	if err != nil {
		return 0, fmt.Errorf("idempotency claim: %w", err)
	}
	if ok {
		return service.ClaimAcquired, nil
	}

	state, err := s.client.Get(ctx, k).Result()
	switch {
	case errors.Is(err, redis.Nil):
		// released or expired between the two calls; the client should retry
		return service.ClaimInFlight, nil
	case err != nil:
		return 0, fmt.Errorf("idempotency state: %w", err)
	case state == stateDone:
		return service.ClaimCompleted, nil
	default:
		return service.ClaimInFlight, nil
	}
}

// Complete marks the key as applied for the full replay window.
func (s *IdempotencyStore) Complete(ctx context.Context, userID int64, key string) error {
	return s.client.Set(ctx, s.key(userID, key), stateDone, s.ttl).Err()
}

// Release frees a claimed key so the request can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, userID int64, key string) error {
	return s.client.Del(ctx, s.key(userID, key)).Err()
}

func (s *IdempotencyStore) key(userID int64, key string) string {
	return fmt.Sprintf("idem:donation:%d:%s", userID, key)
}
