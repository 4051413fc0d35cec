package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/splitpay-ledger/internal/domain/plan"
	"github.com/splitpay-ledger/internal/platform/persistence"
)

// PlanRepository implements the plan.Repository interface for PostgreSQL
type PlanRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewPlanRepository creates a new PostgreSQL plan repository
func NewPlanRepository(logger *slog.Logger, db *persistence.PostgresDB) plan.Repository {
	return &PlanRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so the two entries of a
// settlement pair commit or roll back together.
func (r *PlanRepository) WithTx(tx pgx.Tx) plan.Repository {
	return &PlanRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// ListPersons retrieves all participants of a plan
func (r *PlanRepository) ListPersons(ctx context.Context, planID uuid.UUID) ([]*plan.Person, error) {
	query := `
		SELECT id, plan_id, user_id, name, color
		FROM plan_persons
		WHERE plan_id = $1
		ORDER BY name ASC
	`

	rows, err := r.querier.Query(ctx, query, planID)
	if err != nil {
		r.logger.Error("Failed to list plan persons", "plan_id", planID.String(), "error", err)
		return nil, fmt.Errorf("failed to list plan persons: %w", err)
	}
	defer rows.Close()

	var persons []*plan.Person
	for rows.Next() {
		var p plan.Person
		if err := rows.Scan(&p.ID, &p.PlanID, &p.UserID, &p.Name, &p.Color); err != nil {
			return nil, fmt.Errorf("failed to scan plan person: %w", err)
		}
		persons = append(persons, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading plan persons: %w", err)
	}

	return persons, nil
}

// ListEntries retrieves all expense and settlement entries of a plan,
// newest first
func (r *PlanRepository) ListEntries(ctx context.Context, planID uuid.UUID) ([]*plan.Entry, error) {
	query := `
		SELECT id, plan_id, payer_id, amount, settlement, receiver_id, sender_id, date, description, created_at
		FROM plan_entries
		WHERE plan_id = $1
		ORDER BY date DESC, created_at DESC
	`

	rows, err := r.querier.Query(ctx, query, planID)
	if err != nil {
		r.logger.Error("Failed to list plan entries", "plan_id", planID.String(), "error", err)
		return nil, fmt.Errorf("failed to list plan entries: %w", err)
	}
	defer rows.Close()

	var entries []*plan.Entry
	for rows.Next() {
		var e plan.Entry
		if err := rows.Scan(
			&e.ID,
			&e.PlanID,
			&e.PayerID,
			&e.Amount,
			&e.Settlement,
			&e.ReceiverID,
			&e.SenderID,
			&e.Date,
			&e.Description,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan plan entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading plan entries: %w", err)
	}

	return entries, nil
}

// GetPerson retrieves a single plan participant by ID
func (r *PlanRepository) GetPerson(ctx context.Context, id uuid.UUID) (*plan.Person, error) {
	query := `
		SELECT id, plan_id, user_id, name, color
		FROM plan_persons
		WHERE id = $1
	`

	var p plan.Person
	err := r.querier.QueryRow(ctx, query, id).Scan(&p.ID, &p.PlanID, &p.UserID, &p.Name, &p.Color)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, plan.ErrPersonNotFound{PersonID: id}
		}
		r.logger.Error("Failed to get plan person", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get plan person: %w", err)
	}

	return &p, nil
}

// CreatePerson stores a new plan participant
func (r *PlanRepository) CreatePerson(ctx context.Context, person *plan.Person) error {
	query := `
		INSERT INTO plan_persons (id, plan_id, user_id, name, color)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.querier.Exec(ctx, query, person.ID, person.PlanID, person.UserID, person.Name, person.Color)
	if err != nil {
		r.logger.Error("Failed to create plan person", "plan_id", person.PlanID.String(), "error", err)
		return fmt.Errorf("failed to create plan person: %w", err)
	}

	return nil
}

// CreateEntry stores a new expense or settlement entry
func (r *PlanRepository) CreateEntry(ctx context.Context, entry *plan.Entry) error {
	query := `
		INSERT INTO plan_entries (id, plan_id, payer_id, amount, settlement, receiver_id, sender_id, date, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.querier.Exec(ctx, query,
		entry.ID,
		entry.PlanID,
		entry.PayerID,
		entry.Amount,
		entry.Settlement,
		entry.ReceiverID,
		entry.SenderID,
		entry.Date,
		entry.Description,
		entry.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create plan entry", "plan_id", entry.PlanID.String(), "error", err)
		return fmt.Errorf("failed to create plan entry: %w", err)
	}

	return nil
}
