// Package plan holds the shared-plan model: the people splitting expenses and
// the expense and settlement entries recorded against a plan.
package plan

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSamePerson           = errors.New("payer and receiver must differ")
	ErrPersonNotSelected    = errors.New("both payer and receiver must be selected")
	ErrInvalidPaymentAmount = errors.New("payment amount must be positive")
	ErrNoPersons            = errors.New("plan has no participants")
)

// Person is a participant in a shared plan, optionally linked to an
// authenticated user for "self".
type Person struct {
	ID     uuid.UUID  `json:"id"`
	PlanID uuid.UUID  `json:"plan_id"`
	UserID *uuid.UUID `json:"user_id,omitempty"`
	Name   string     `json:"name"`
	Color  string     `json:"color"` // Display only
}

// Entry is an expense or settlement line on a plan. Amounts are signed minor
// units: a settlement is recorded as two entries with equal and opposite
// amounts, same date, payer side positive and receiver side negative.
type Entry struct {
	ID          uuid.UUID  `json:"id"`
	PlanID      uuid.UUID  `json:"plan_id"`
	PayerID     uuid.UUID  `json:"payer_id"`
	Amount      int64      `json:"amount"`
	Settlement  bool       `json:"settlement"`
	ReceiverID  *uuid.UUID `json:"receiver_id,omitempty"` // Settlement payer side only
	SenderID    *uuid.UUID `json:"sender_id,omitempty"`   // Settlement receiver side only
	Date        time.Time  `json:"date"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewSettlementPair builds the two entries a manual payment produces. Both
// carry the same date so the pair stays recognizable as one payment.
func NewSettlementPair(planID, payerID, receiverID uuid.UUID, amount int64, date time.Time, description string) (payer Entry, receiver Entry, err error) {
	if payerID == uuid.Nil || receiverID == uuid.Nil {
		return Entry{}, Entry{}, ErrPersonNotSelected
	}
	if payerID == receiverID {
		return Entry{}, Entry{}, ErrSamePerson
	}
	if amount <= 0 {
		return Entry{}, Entry{}, ErrInvalidPaymentAmount
	}

	now := time.Now()
	payer = Entry{
		ID:          uuid.New(),
		PlanID:      planID,
		PayerID:     payerID,
		Amount:      amount,
		Settlement:  true,
		ReceiverID:  &receiverID,
		Date:        date,
		Description: description,
		CreatedAt:   now,
	}
	receiver = Entry{
		ID:          uuid.New(),
		PlanID:      planID,
		PayerID:     receiverID,
		Amount:      -amount,
		Settlement:  true,
		SenderID:    &payerID,
		Date:        date,
		Description: description,
		CreatedAt:   now,
	}
	return payer, receiver, nil
}
