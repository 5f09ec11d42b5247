package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SakutaArc/QuickFund/internal/core/domain"
	"github.com/SakutaArc/QuickFund/internal/core/ports"
)

const collectionLedgerEntries = "ledger_entries"

// LedgerEntryRepository stores the append-only audit trail of committed
// donations and refunds.
type LedgerEntryRepository struct {
	col *mongo.Collection
}

func NewLedgerEntryRepository(db *mongo.Database) *LedgerEntryRepository {
	return &LedgerEntryRepository{col: db.Collection(collectionLedgerEntries)}
}

var _ ports.LedgerEntryRepository = (*LedgerEntryRepository)(nil)

type ledgerEntryDoc struct {
	ID            string    `bson:"_id"`
	Kind          string    `bson:"kind"`
	UserID        int64     `bson:"user_id"`
	ProjectID     int64     `bson:"project_id"`
	Amount        float64   `bson:"amount"`
	PaymentMethod string    `bson:"payment_method,omitempty"`
	RaisedAfter   float64   `bson:"raised_after"`
	RecordedAt    time.Time `bson:"recorded_at"`
}

func toLedgerEntryDoc(e *domain.LedgerEntry) ledgerEntryDoc {
	return ledgerEntryDoc{
		ID:            e.ID,
		Kind:          string(e.Kind),
		UserID:        e.UserID,
		ProjectID:     e.ProjectID,
		Amount:        e.Amount,
		PaymentMethod: e.PaymentMethod,
		RaisedAfter:   e.RaisedAfter,
		RecordedAt:    e.RecordedAt.UTC(),
	}
}

func (d ledgerEntryDoc) toDomain() domain.LedgerEntry {
	return domain.LedgerEntry{
		ID:            d.ID,
		Kind:          domain.EntryKind(d.Kind),
		UserID:        d.UserID,
		ProjectID:     d.ProjectID,
		Amount:        d.Amount,
		PaymentMethod: d.PaymentMethod,
		RaisedAfter:   d.RaisedAfter,
		RecordedAt:    d.RecordedAt,
	}
}

// Insert writes one entry. Re-inserting an id that already exists is a no-op,
// so a retried write never duplicates a movement.
func (r *LedgerEntryRepository) Insert(ctx context.Context, e *domain.LedgerEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, toLedgerEntryDoc(e))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return err
	}
	return nil
}

// ListByProject returns the newest entries first.
func (r *LedgerEntryRepository) ListByProject(ctx context.Context, projectID int64, limit int64) ([]domain.LedgerEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "recorded_at", Value: -1}}).
		SetLimit(limit)

	cur, err := r.col.Find(ctx, bson.M{"project_id": projectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []ledgerEntryDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	entries := make([]domain.LedgerEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, d.toDomain())
	}
	return entries, nil
}

// EnsureIndexes creates the lookup indexes on the ledger_entries collection.
func (r *LedgerEntryRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "recorded_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
