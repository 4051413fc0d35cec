package plan

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines plan persistence operations
type Repository interface {
	ListPersons(ctx context.Context, planID uuid.UUID) ([]*Person, error)
	ListEntries(ctx context.Context, planID uuid.UUID) ([]*Entry, error)
	GetPerson(ctx context.Context, id uuid.UUID) (*Person, error)
	CreatePerson(ctx context.Context, person *Person) error
	CreateEntry(ctx context.Context, entry *Entry) error
	WithTx(tx pgx.Tx) Repository
}

// ErrPersonNotFound indicates missing plan participant
type ErrPersonNotFound struct {
	PersonID uuid.UUID
}

func (e ErrPersonNotFound) Error() string {
	return "plan participant not found: " + e.PersonID.String()
}

// Is matches any ErrPersonNotFound when the target carries a nil ID
func (e ErrPersonNotFound) Is(target error) bool {
	t, ok := target.(ErrPersonNotFound)
	if !ok {
		return false
	}
	return t.PersonID == uuid.Nil || e.PersonID == t.PersonID
}
