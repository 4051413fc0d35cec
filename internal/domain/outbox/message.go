package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/splitpay-ledger/internal/domain/ledger"
)

// Status defines the publishing states of an outbox row
type Status string

const (
	StatusPending         Status = "PENDING"
	StatusProcessed       Status = "PROCESSED"
	StatusFailedToPublish Status = "FAILED_TO_PUBLISH"
)

// Message is a durable intent to append one history record. Rows are written in
// the same database transaction as the balance mutation they describe, so a
// committed transfer always has its history queued.
type Message struct {
	ID            int64           `json:"id"`
	RecordID      uuid.UUID       `json:"record_id"`
	TransferID    uuid.UUID       `json:"transfer_id"`
	AccountID     uuid.UUID       `json:"account_id"`
	Payload       json.RawMessage `json:"payload"`
	Status        Status          `json:"status"`
	Attempts      int             `json:"attempts"`
	CreatedAt     time.Time       `json:"created_at"`
	LastAttemptAt *time.Time      `json:"last_attempt_at,omitempty"`
}

// NewMessage wraps a history record into a pending outbox row
func NewMessage(record *ledger.Record) (*Message, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}

	return &Message{
		RecordID:   record.ID,
		TransferID: record.TransferID,
		AccountID:  record.AccountID,
		Payload:    payload,
		Status:     StatusPending,
		Attempts:   0,
		CreatedAt:  time.Now(),
	}, nil
}

// Record extracts the history record from the payload
func (m *Message) Record() (*ledger.Record, error) {
	var record ledger.Record
	if err := json.Unmarshal(m.Payload, &record); err != nil {
		return nil, err
	}
	return &record, nil
}
