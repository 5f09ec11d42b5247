package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SakutaArc/QuickFund/internal/infrastructure/config"
)

const (
	defaultTimeout = 10 * time.Second
	indexTimeout   = 30 * time.Second
)

// Connect opens the audit store described by cfg, verifies it with a ping and
// returns the ledger entry repository with its indexes in place. The caller
// owns the repository and must Close it.
func Connect(ctx context.Context, cfg config.MongoConfig) (*LedgerEntryRepository, error) {
	connectCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	repo := NewLedgerEntryRepository(client.Database(cfg.Database))
	if err := repo.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo indexes: %w", err)
	}
	return repo, nil
}

// Ping runs the server ping command against the audit database.
func (r *LedgerEntryRepository) Ping(ctx context.Context) error {
	return r.col.Database().RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

// Close disconnects the underlying client.
func (r *LedgerEntryRepository) Close(ctx context.Context) error {
	return r.col.Database().Client().Disconnect(ctx)
}
