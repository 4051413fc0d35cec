package ledger

import (
	"context"

	"github.com/google/uuid"
)

// Repository manages history record persistence. Records are append-only: no
// update or delete operation exists, and Append is idempotent on record ID so
// the recorder can safely redeliver.
type Repository interface {
	Append(ctx context.Context, record *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Record, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Record, error)
	CountByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error)
}

// ErrRecordNotFound indicates missing history record
type ErrRecordNotFound struct {
	RecordID uuid.UUID
}

func (e ErrRecordNotFound) Error() string {
	return "history record not found: " + e.RecordID.String()
}

// Is implements the errors.Is interface for ErrRecordNotFound
func (e ErrRecordNotFound) Is(target error) bool {
	t, ok := target.(ErrRecordNotFound)
	if !ok {
		return false
	}
	return t.RecordID == uuid.Nil || e.RecordID == t.RecordID
}

// ErrDuplicateRecord indicates record uniqueness violation
type ErrDuplicateRecord struct {
	RecordID uuid.UUID
}

func (e ErrDuplicateRecord) Error() string {
	return "duplicate history record: " + e.RecordID.String()
}

// Is implements the errors.Is interface for ErrDuplicateRecord
func (e ErrDuplicateRecord) Is(target error) bool {
	t, ok := target.(ErrDuplicateRecord)
	if !ok {
		return false
	}
	return t.RecordID == uuid.Nil || e.RecordID == t.RecordID
}
