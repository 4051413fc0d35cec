package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/splitpay-ledger/internal/domain/account"
)

// RecordType classifies a history record by the side of the money movement it
// describes.
type RecordType string

const (
	RecordTypeTransferOut RecordType = "TRANSFER_OUT"
	RecordTypeTransferIn  RecordType = "TRANSFER_IN"
	RecordTypePayment     RecordType = "PAYMENT"
)

// RecordStatus defines terminal states of a history record
type RecordStatus string

const (
	RecordStatusCompleted RecordStatus = "COMPLETED"
	RecordStatusFailed    RecordStatus = "FAILED"
	RecordStatusCancelled RecordStatus = "CANCELLED"
)

// Record is one side of a completed money movement. Two records share a
// TransferID, one per account touched. Records are immutable once written.
type Record struct {
	ID              uuid.UUID      `json:"id" bson:"id"`
	TransferID      uuid.UUID      `json:"transfer_id" bson:"transfer_id"`
	AccountID       uuid.UUID      `json:"account_id" bson:"account_id"`
	UserID          uuid.UUID      `json:"user_id" bson:"user_id"`
	Type            RecordType     `json:"type" bson:"type"`
	Medium          account.Medium `json:"medium" bson:"medium"`
	Amount          int64          `json:"amount" bson:"amount"` // Signed: negative on the paying side
	PayerAccountID  uuid.UUID      `json:"payer_account_id" bson:"payer_account_id"`
	PayeeAccountID  uuid.UUID      `json:"payee_account_id,omitempty" bson:"payee_account_id,omitempty"`
	PreviousBalance int64          `json:"previous_balance" bson:"previous_balance"`
	NewBalance      int64          `json:"new_balance" bson:"new_balance"`
	Status          RecordStatus   `json:"status" bson:"status"`
	Description     string         `json:"description,omitempty" bson:"description,omitempty"`
	CorrelationID   string         `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	CreatedAt       time.Time      `json:"created_at" bson:"created_at"`
}
