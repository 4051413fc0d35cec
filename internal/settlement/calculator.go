// Package settlement computes how the participants of a shared plan square up:
// who should pay whom to zero every balance, and which settling payments have
// already been recorded.
package settlement

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/splitpay-ledger/internal/domain/plan"
)

// epsilonCents is the residual below which a balance counts as settled.
// Amounts are integer minor units throughout; the epsilon only absorbs the
// fractional remainder of the per-head division.
const epsilonCents = 1.0

// Payment is one suggested debtor-to-creditor transfer
type Payment struct {
	FromPersonID uuid.UUID `json:"from_person_id"`
	ToPersonID   uuid.UUID `json:"to_person_id"`
	Amount       int64     `json:"amount"`
}

// PaymentRecord is one already-recorded settling payment
type PaymentRecord struct {
	PayerID     uuid.UUID `json:"payer_id"`
	ReceiverID  uuid.UUID `json:"receiver_id"`
	Amount      int64     `json:"amount"`
	Date        time.Time `json:"date"`
	Description string    `json:"description,omitempty"`
}

// Result holds the outcome of a settlement computation
type Result struct {
	Total     int64           `json:"total"`    // Sum of real spend across the plan
	PerHead   int64           `json:"per_head"` // Equal share, rounded to a cent
	Suggested []Payment       `json:"suggested"`
	History   []PaymentRecord `json:"history"`
}

type partyBalance struct {
	personID uuid.UUID
	balance  float64 // Positive owes, negative is owed
}

// Compute derives the suggested settling payments and the payment history for
// a plan. It is pure: the same persons and entries always produce the same
// result, and it never emits more than len(persons)-1 payments.
//
// Each person's effective contribution is their real spend plus their signed
// settlement adjustments; the balance is the equal share minus that. Debtors
// (positive balance) are greedily matched against creditors, largest first,
// with ties broken on person ID to keep the output deterministic.
func Compute(persons []*plan.Person, entries []*plan.Entry) (*Result, error) {
	if len(persons) == 0 {
		return nil, plan.ErrNoPersons
	}

	actual := make(map[uuid.UUID]int64, len(persons))
	adjustments := make(map[uuid.UUID]int64, len(persons))
	var total int64

	for _, e := range entries {
		if e.Settlement {
			adjustments[e.PayerID] += e.Amount
		} else {
			actual[e.PayerID] += e.Amount
			total += e.Amount
		}
	}

	perHead := float64(total) / float64(len(persons))

	var debtors, creditors []partyBalance
	for _, p := range persons {
		balance := perHead - float64(actual[p.ID]+adjustments[p.ID])
		switch {
		case balance > epsilonCents:
			debtors = append(debtors, partyBalance{personID: p.ID, balance: balance})
		case balance < -epsilonCents:
			creditors = append(creditors, partyBalance{personID: p.ID, balance: balance})
		}
	}

	// Largest debtor against largest creditor, deterministic tie-break
	sort.Slice(debtors, func(i, j int) bool {
		if debtors[i].balance != debtors[j].balance {
			return debtors[i].balance > debtors[j].balance
		}
		return debtors[i].personID.String() < debtors[j].personID.String()
	})
	sort.Slice(creditors, func(i, j int) bool {
		if creditors[i].balance != creditors[j].balance {
			return creditors[i].balance < creditors[j].balance
		}
		return creditors[i].personID.String() < creditors[j].personID.String()
	})

	var suggested []Payment
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		pay := math.Min(debtors[i].balance, -creditors[j].balance)

		if pay > epsilonCents {
			suggested = append(suggested, Payment{
				FromPersonID: debtors[i].personID,
				ToPersonID:   creditors[j].personID,
				Amount:       int64(math.Round(pay)),
			})
		}

		debtors[i].balance -= pay
		creditors[j].balance += pay

		if debtors[i].balance <= epsilonCents {
			i++
		}
		if creditors[j].balance >= -epsilonCents {
			j++
		}
	}

	return &Result{
		Total:     total,
		PerHead:   int64(math.Round(perHead)),
		Suggested: suggested,
		History:   paymentHistory(entries),
	}, nil
}

// paymentHistory collects the payer side of every recorded settlement, newest
// first.
func paymentHistory(entries []*plan.Entry) []PaymentRecord {
	var history []PaymentRecord
	for _, e := range entries {
		if !e.Settlement || e.Amount <= 0 {
			continue
		}
		record := PaymentRecord{
			PayerID:     e.PayerID,
			Amount:      e.Amount,
			Date:        e.Date,
			Description: e.Description,
		}
		if e.ReceiverID != nil {
			record.ReceiverID = *e.ReceiverID
		}
		history = append(history, record)
	}

	sort.Slice(history, func(i, j int) bool {
		if !history[i].Date.Equal(history[j].Date) {
			return history[i].Date.After(history[j].Date)
		}
		return history[i].PayerID.String() < history[j].PayerID.String()
	})

	return history
}
