package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/splitpay-ledger/internal/domain/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMessage() *outbox.Message {
	return &outbox.Message{
		RecordID:   uuid.New(),
		TransferID: uuid.New(),
		AccountID:  uuid.New(),
		Payload:    json.RawMessage(`{"amount":-100}`),
		Status:     outbox.StatusPending,
		Attempts:   0,
		CreatedAt:  time.Now(),
	}
}

func TestOutboxRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: newTestLogger()}
	msg := testMessage()

	query := `
		INSERT INTO ledger_outbox \(record_id, transfer_id, account_id, payload, status, attempts, created_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7\)
		RETURNING id
	`

	t.Run("success assigns generated id", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(msg.RecordID, msg.TransferID, msg.AccountID, msg.Payload, msg.Status, msg.Attempts, msg.CreatedAt).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

		err := repo.Create(ctx, msg)
		require.NoError(t, err)
		assert.Equal(t, int64(42), msg.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_GetPending(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: newTestLogger()}

	query := `
		SELECT id, record_id, transfer_id, account_id, payload, status, attempts, created_at, last_attempt_at
		FROM ledger_outbox
		WHERE status = \$1
		ORDER BY created_at ASC
		LIMIT \$2
	`

	t.Run("returns pending messages oldest first", func(t *testing.T) {
		first := testMessage()
		second := testMessage()

		rows := pgxmock.NewRows([]string{
			"id", "record_id", "transfer_id", "account_id", "payload",
			"status", "attempts", "created_at", "last_attempt_at",
		}).
			AddRow(int64(1), first.RecordID, first.TransferID, first.AccountID, first.Payload,
				first.Status, first.Attempts, first.CreatedAt, nil).
			AddRow(int64(2), second.RecordID, second.TransferID, second.AccountID, second.Payload,
				second.Status, second.Attempts, second.CreatedAt, nil)

		mock.ExpectQuery(query).WithArgs(outbox.StatusPending, 10).WillReturnRows(rows)

		messages, err := repo.GetPending(ctx, 10)
		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.Equal(t, int64(1), messages[0].ID)
		assert.Equal(t, int64(2), messages[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty result", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{
			"id", "record_id", "transfer_id", "account_id", "payload",
			"status", "attempts", "created_at", "last_attempt_at",
		})
		mock.ExpectQuery(query).WithArgs(outbox.StatusPending, 10).WillReturnRows(rows)

		messages, err := repo.GetPending(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, messages)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: newTestLogger()}

	query := `
		UPDATE ledger_outbox
		SET status = \$1, last_attempt_at = NOW\(\)
		WHERE id = \$2
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(outbox.StatusProcessed, int64(7)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.UpdateStatus(ctx, 7, outbox.StatusProcessed)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(outbox.StatusProcessed, int64(8)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateStatus(ctx, 8, outbox.StatusProcessed)
		assert.ErrorIs(t, err, outbox.ErrMessageNotFound{ID: 8})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_IncrementAttempts(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: newTestLogger()}

	query := `
		UPDATE ledger_outbox
		SET attempts = attempts \+ 1, last_attempt_at = NOW\(\)
		WHERE id = \$1
	`

	mock.ExpectExec(query).
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.IncrementAttempts(ctx, 3)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
