package mongo

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/splitpay-ledger/internal/domain/ledger"
)

func TestNewHistoryRepository(t *testing.T) {
	db := &mongo.Database{}
	logger := slog.Default()

	repo := NewHistoryRepository(logger, db)

	assert.NotNil(t, repo)
	assert.IsType(t, &HistoryRepository{}, repo)
}

// Append relies on matching wrapped not-found and duplicate errors by type so
// that outbox redelivery stays idempotent. These assertions pin that contract.
func TestHistoryRecordErrorMatching(t *testing.T) {
	recordID := uuid.New()

	t.Run("NotFoundMatchesZeroTarget", func(t *testing.T) {
		err := fmt.Errorf("failed to get history record: %w", ledger.ErrRecordNotFound{RecordID: recordID})

		assert.True(t, errors.Is(err, ledger.ErrRecordNotFound{}))
		assert.True(t, errors.Is(err, ledger.ErrRecordNotFound{RecordID: recordID}))
		assert.False(t, errors.Is(err, ledger.ErrRecordNotFound{RecordID: uuid.New()}))
	})

	t.Run("DuplicateMatchesZeroTarget", func(t *testing.T) {
		err := ledger.ErrDuplicateRecord{RecordID: recordID}

		assert.True(t, errors.Is(err, ledger.ErrDuplicateRecord{}))
		assert.False(t, errors.Is(err, ledger.ErrRecordNotFound{}))
	})
}
