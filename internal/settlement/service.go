package settlement

import (
	"context"

	"github.com/google/uuid"
	"github.com/splitpay-ledger/internal/domain/plan"
)

// Service loads a plan's state and computes its settlement
type Service struct {
	plans plan.Repository
}

func NewService(plans plan.Repository) *Service {
	return &Service{plans: plans}
}

// Settle computes the suggested payments and payment history for a plan
func (s *Service) Settle(ctx context.Context, planID uuid.UUID) (*Result, error) {
	persons, err := s.plans.ListPersons(ctx, planID)
	if err != nil {
		return nil, err
	}
	entries, err := s.plans.ListEntries(ctx, planID)
	if err != nil {
		return nil, err
	}
	return Compute(persons, entries)
}
