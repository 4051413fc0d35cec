package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/splitpay-ledger/internal/domain/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanRepository_ListPersons(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PlanRepository{querier: mock, logger: newTestLogger()}

	planID := uuid.New()
	aliceID := uuid.New()
	bobID := uuid.New()
	bobUserID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"id", "plan_id", "user_id", "name", "color"}).
			AddRow(aliceID, planID, (*uuid.UUID)(nil), "Alice", "#ff0000").
			AddRow(bobID, planID, &bobUserID, "Bob", "#00ff00")

		mock.ExpectQuery(`SELECT id, plan_id, user_id, name, color\s+FROM plan_persons\s+WHERE plan_id = \$1`).
			WithArgs(planID).
			WillReturnRows(rows)

		persons, err := repo.ListPersons(context.Background(), planID)
		require.NoError(t, err)
		require.Len(t, persons, 2)
		assert.Equal(t, "Alice", persons[0].Name)
		assert.Nil(t, persons[0].UserID)
		assert.Equal(t, "Bob", persons[1].Name)
		require.NotNil(t, persons[1].UserID)
		assert.Equal(t, bobUserID, *persons[1].UserID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("EmptyPlan", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"id", "plan_id", "user_id", "name", "color"})

		mock.ExpectQuery(`SELECT id, plan_id, user_id, name, color\s+FROM plan_persons\s+WHERE plan_id = \$1`).
			WithArgs(planID).
			WillReturnRows(rows)

		persons, err := repo.ListPersons(context.Background(), planID)
		require.NoError(t, err)
		assert.Empty(t, persons)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPlanRepository_ListEntries(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PlanRepository{querier: mock, logger: newTestLogger()}

	planID := uuid.New()
	payerID := uuid.New()
	receiverID := uuid.New()
	now := time.Now().UTC()

	t.Run("Success", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"id", "plan_id", "payer_id", "amount", "settlement", "receiver_id", "sender_id", "date", "description", "created_at"}).
			AddRow(uuid.New(), planID, payerID, int64(4500), false, (*uuid.UUID)(nil), (*uuid.UUID)(nil), now, "Dinner", now).
			AddRow(uuid.New(), planID, payerID, int64(1500), true, &receiverID, (*uuid.UUID)(nil), now.Add(-time.Hour), "Settled up", now.Add(-time.Hour))

		mock.ExpectQuery(`SELECT id, plan_id, payer_id, amount, settlement, receiver_id, sender_id, date, description, created_at\s+FROM plan_entries\s+WHERE plan_id = \$1`).
			WithArgs(planID).
			WillReturnRows(rows)

		entries, err := repo.ListEntries(context.Background(), planID)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, int64(4500), entries[0].Amount)
		assert.False(t, entries[0].Settlement)
		assert.True(t, entries[1].Settlement)
		require.NotNil(t, entries[1].ReceiverID)
		assert.Equal(t, receiverID, *entries[1].ReceiverID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("QueryFailure", func(t *testing.T) {
		dbErr := errors.New("connection reset")
		mock.ExpectQuery(`SELECT id, plan_id, payer_id, amount, settlement, receiver_id, sender_id, date, description, created_at\s+FROM plan_entries`).
			WithArgs(planID).
			WillReturnError(dbErr)

		entries, err := repo.ListEntries(context.Background(), planID)
		assert.Error(t, err)
		assert.Nil(t, entries)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPlanRepository_GetPerson(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PlanRepository{querier: mock, logger: newTestLogger()}

	personID := uuid.New()
	planID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"id", "plan_id", "user_id", "name", "color"}).
			AddRow(personID, planID, (*uuid.UUID)(nil), "Alice", "#ff0000")

		mock.ExpectQuery(`SELECT id, plan_id, user_id, name, color\s+FROM plan_persons\s+WHERE id = \$1`).
			WithArgs(personID).
			WillReturnRows(rows)

		person, err := repo.GetPerson(context.Background(), personID)
		require.NoError(t, err)
		assert.Equal(t, personID, person.ID)
		assert.Equal(t, planID, person.PlanID)
		assert.Equal(t, "Alice", person.Name)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, plan_id, user_id, name, color\s+FROM plan_persons\s+WHERE id = \$1`).
			WithArgs(personID).
			WillReturnError(pgx.ErrNoRows)

		person, err := repo.GetPerson(context.Background(), personID)
		assert.Nil(t, person)
		assert.ErrorIs(t, err, plan.ErrPersonNotFound{PersonID: personID})

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPlanRepository_CreateEntry(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PlanRepository{querier: mock, logger: newTestLogger()}

	planID := uuid.New()
	payerID := uuid.New()
	receiverID := uuid.New()
	now := time.Now().UTC()

	entry := &plan.Entry{
		ID:          uuid.New(),
		PlanID:      planID,
		PayerID:     payerID,
		Amount:      2500,
		Settlement:  true,
		ReceiverID:  &receiverID,
		Date:        now,
		Description: "Settled up",
		CreatedAt:   now,
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO plan_entries`).
			WithArgs(entry.ID, entry.PlanID, entry.PayerID, entry.Amount, entry.Settlement, entry.ReceiverID, entry.SenderID, entry.Date, entry.Description, entry.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.CreateEntry(context.Background(), entry)
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure", func(t *testing.T) {
		dbErr := errors.New("insert failed")
		mock.ExpectExec(`INSERT INTO plan_entries`).
			WithArgs(entry.ID, entry.PlanID, entry.PayerID, entry.Amount, entry.Settlement, entry.ReceiverID, entry.SenderID, entry.Date, entry.Description, entry.CreatedAt).
			WillReturnError(dbErr)

		err := repo.CreateEntry(context.Background(), entry)
		assert.Error(t, err)
		assert.ErrorIs(t, err, dbErr)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
