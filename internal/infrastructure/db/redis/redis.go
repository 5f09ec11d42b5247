package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SakutaArc/QuickFund/internal/infrastructure/config"
)

const pingTimeout = 5 * time.Second

// Connect opens the donation idempotency store described by cfg and verifies
// it with a ping. The caller owns the store and must Close it.
func Connect(ctx context.Context, cfg config.RedisConfig) (*IdempotencyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewIdempotencyStore(client, cfg.IdempotencyTTL), nil
}

// Ping checks the connection behind the store.
func (s *IdempotencyStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *IdempotencyStore) Close() error {
	return s.client.Close()
}
