package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/splitpay-ledger/internal/domain/ledger"
)

const (
	// HistoryCollectionName is the name of the history collection in MongoDB
	HistoryCollectionName = "ledger_history"
)

// HistoryRepository implements the ledger.Repository interface for MongoDB
type HistoryRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewHistoryRepository creates a new MongoDB history repository
func NewHistoryRepository(logger *slog.Logger, db *mongo.Database) ledger.Repository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Append stores a new history record after checking for duplicates. Returns
// ErrDuplicateRecord if a record with the same ID exists, which lets the
// recorder redeliver safely.
func (r *HistoryRepository) Append(ctx context.Context, record *ledger.Record) error {
	collection := r.db.Collection(HistoryCollectionName)

	existing, err := r.GetByID(ctx, record.ID)
	if err != nil && !errors.Is(err, ledger.ErrRecordNotFound{}) {
		r.logger.Error("Failed to check for existing history record",
			"record_id", record.ID.String(),
			"error", err)
		return fmt.Errorf("failed to check for existing history record: %w", err)
	}

	if existing != nil {
		return ledger.ErrDuplicateRecord{RecordID: record.ID}
	}

	_, err = collection.InsertOne(ctx, record)
	if err != nil {
		r.logger.Error("Failed to append history record",
			"record_id", record.ID.String(),
			"error", err)
		return fmt.Errorf("failed to append history record: %w", err)
	}

	return nil
}

// GetByID retrieves a history record by its ID.
// Returns ErrRecordNotFound if no record exists.
func (r *HistoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*ledger.Record, error) {
	collection := r.db.Collection(HistoryCollectionName)

	filter := bson.M{"id": id}
	var record ledger.Record
	err := collection.FindOne(ctx, filter).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ledger.ErrRecordNotFound{RecordID: id}
		}
		r.logger.Error("Failed to get history record",
			"record_id", id.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get history record: %w", err)
	}

	return &record, nil
}

// GetByAccountID retrieves paginated history records for an account.
// Results are sorted by creation time in descending order (newest first).
func (r *HistoryRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*ledger.Record, error) {
	return r.find(ctx, bson.M{"account_id": accountID}, limit, offset)
}

// GetByUserID retrieves paginated history records across all accounts owned by
// a user, newest first.
func (r *HistoryRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*ledger.Record, error) {
	return r.find(ctx, bson.M{"user_id": userID}, limit, offset)
}

// CountByAccountID counts the total number of history records for an account
func (r *HistoryRepository) CountByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error) {
	collection := r.db.Collection(HistoryCollectionName)

	count, err := collection.CountDocuments(ctx, bson.M{"account_id": accountID})
	if err != nil {
		r.logger.Error("Failed to count history records",
			"account_id", accountID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count history records: %w", err)
	}

	return count, nil
}

func (r *HistoryRepository) find(ctx context.Context, filter bson.M, limit, offset int) ([]*ledger.Record, error) {
	collection := r.db.Collection(HistoryCollectionName)

	opts := options.Find().
		SetSort(bson.M{"created_at": -1}). // Sort by created_at in descending order
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to query history records", "error", err)
		return nil, fmt.Errorf("failed to query history records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*ledger.Record
	if err := cursor.All(ctx, &records); err != nil {
		r.logger.Error("Failed to decode history records", "error", err)
		return nil, fmt.Errorf("failed to decode history records: %w", err)
	}

	return records, nil
}
