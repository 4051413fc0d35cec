package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/splitpay-ledger/internal/domain/account"
	"github.com/splitpay-ledger/internal/domain/ledger"
	"github.com/splitpay-ledger/internal/domain/outbox"
	"github.com/splitpay-ledger/internal/domain/plan"
	"github.com/splitpay-ledger/internal/platform/persistence"
)

// RecordPaymentParams describes one manual settling payment
type RecordPaymentParams struct {
	PlanID           uuid.UUID
	PayerPersonID    uuid.UUID
	ReceiverPersonID uuid.UUID
	Amount           int64
	Date             time.Time
	Description      string

	// ActingUserID and PersonalAccountID drive the optional personal history
	// record. Both must be set, and the acting user must be the payer or the
	// receiver person, for the record to be written.
	ActingUserID      uuid.UUID
	PersonalAccountID uuid.UUID
	CorrelationID     string
}

// Recorder writes manual settling payments. The two plan entries, and the
// personal history intent when one applies, commit in a single database
// transaction: either the whole payment lands or none of it does.
type Recorder struct {
	db     persistence.TxExecutor
	plans  plan.Repository
	outbox outbox.Repository
	logger *slog.Logger
}

func NewRecorder(db persistence.TxExecutor, plans plan.Repository, outboxRepo outbox.Repository, logger *slog.Logger) *Recorder {
	return &Recorder{
		db:     db,
		plans:  plans,
		outbox: outboxRepo,
		logger: logger,
	}
}

// RecordPayment validates and persists a settling payment as an entry pair.
// Returns the payer-side entry.
func (r *Recorder) RecordPayment(ctx context.Context, params RecordPaymentParams) (*plan.Entry, error) {
	payerEntry, receiverEntry, err := plan.NewSettlementPair(
		params.PlanID, params.PayerPersonID, params.ReceiverPersonID,
		params.Amount, params.Date, params.Description,
	)
	if err != nil {
		return nil, err
	}

	payer, err := r.planPerson(ctx, params.PlanID, params.PayerPersonID)
	if err != nil {
		return nil, err
	}
	receiver, err := r.planPerson(ctx, params.PlanID, params.ReceiverPersonID)
	if err != nil {
		return nil, err
	}

	record := r.personalRecord(params, payer, receiver)

	err = r.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		plansTx := r.plans.WithTx(tx)
		if err := plansTx.CreateEntry(ctx, &payerEntry); err != nil {
			return fmt.Errorf("failed to create payer entry: %w", err)
		}
		if err := plansTx.CreateEntry(ctx, &receiverEntry); err != nil {
			return fmt.Errorf("failed to create receiver entry: %w", err)
		}

		if record != nil {
			message, err := outbox.NewMessage(record)
			if err != nil {
				return fmt.Errorf("failed to build history intent: %w", err)
			}
			if err := r.outbox.WithTx(tx).Create(ctx, message); err != nil {
				return fmt.Errorf("failed to queue history record: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Recorded settling payment",
		"plan_id", params.PlanID,
		"payer_person_id", params.PayerPersonID,
		"receiver_person_id", params.ReceiverPersonID,
		"amount", params.Amount,
		"personal_record", record != nil)

	return &payerEntry, nil
}

// planPerson loads a participant and verifies plan membership
func (r *Recorder) planPerson(ctx context.Context, planID, personID uuid.UUID) (*plan.Person, error) {
	person, err := r.plans.GetPerson(ctx, personID)
	if err != nil {
		return nil, err
	}
	if person.PlanID != planID {
		return nil, plan.ErrPersonNotFound{PersonID: personID}
	}
	return person, nil
}

// personalRecord builds the acting user's own history record for the payment,
// or nil when the payment does not touch the acting user's personal account.
// The amount is signed from the user's perspective: negative when they paid.
func (r *Recorder) personalRecord(params RecordPaymentParams, payer, receiver *plan.Person) *ledger.Record {
	if params.ActingUserID == uuid.Nil || params.PersonalAccountID == uuid.Nil {
		return nil
	}

	record := &ledger.Record{
		ID:            uuid.New(),
		TransferID:    uuid.New(),
		AccountID:     params.PersonalAccountID,
		UserID:        params.ActingUserID,
		Type:          ledger.RecordTypePayment,
		Medium:        account.MediumBalance,
		Status:        ledger.RecordStatusCompleted,
		Description:   params.Description,
		CorrelationID: params.CorrelationID,
		CreatedAt:     time.Now(),
	}

	switch {
	case payer.UserID != nil && *payer.UserID == params.ActingUserID:
		record.Amount = -params.Amount
		record.PayerAccountID = params.PersonalAccountID
	case receiver.UserID != nil && *receiver.UserID == params.ActingUserID:
		record.Amount = params.Amount
		record.PayeeAccountID = params.PersonalAccountID
	default:
		return nil
	}

	return record
}
