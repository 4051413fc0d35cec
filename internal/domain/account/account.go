package account

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidAccountType = errors.New("account type is not eligible for transfers")
	ErrSameAccount        = errors.New("payer and payee accounts must differ")
	ErrEmptyAccountNumber = errors.New("account number cannot be empty")
	ErrUnknownMedium      = errors.New("unknown balance medium")
)

// Type classifies an account. Only checking accounts move money through the
// transfer engine; savings and credit accounts are read-only from its view.
type Type string

const (
	TypeChecking Type = "CHECKING"
	TypeSavings  Type = "SAVINGS"
	TypeCredit   Type = "CREDIT"
)

// Medium selects which balance field a transfer moves value through.
type Medium string

const (
	MediumBalance Medium = "BALANCE"
	MediumRewards Medium = "REWARDS"
)

// ParseMedium maps a wire value to a Medium
func ParseMedium(s string) (Medium, error) {
	switch Medium(s) {
	case MediumBalance, MediumRewards:
		return Medium(s), nil
	case "":
		return MediumBalance, nil // Primary balance unless stated otherwise
	default:
		return "", ErrUnknownMedium
	}
}

// Account represents a balance-holding entity owned by a user. Balances are
// stored in minor units (cents) to keep arithmetic exact.
type Account struct {
	ID             uuid.UUID `json:"id"`
	OwnerID        uuid.UUID `json:"owner_id"`
	Type           Type      `json:"type"`
	AccountNumber  string    `json:"account_number"` // External-facing routing identifier, unique
	Balance        int64     `json:"balance"`
	RewardsBalance int64     `json:"rewards_balance"`
	AllowOverdraft bool      `json:"allow_overdraft"`
	Version        int       `json:"version"` // For optimistic locking
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewAccount creates a new account with the given parameters
func NewAccount(ownerID uuid.UUID, accType Type, accountNumber string, initialBalance int64, allowOverdraft bool) (*Account, error) {
	if accountNumber == "" {
		return nil, ErrEmptyAccountNumber
	}
	if initialBalance < 0 {
		return nil, ErrInvalidAmount
	}
	now := time.Now()

	return &Account{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		Type:           accType,
		AccountNumber:  accountNumber,
		Balance:        initialBalance,
		AllowOverdraft: allowOverdraft && accType != TypeSavings,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// AvailableBalance returns the balance held on the given medium
func (a *Account) AvailableBalance(medium Medium) int64 {
	if medium == MediumRewards {
		return a.RewardsBalance
	}
	return a.Balance
}

// CanTransfer reports whether the account type is eligible for transfers
func (a *Account) CanTransfer() bool {
	return a.Type == TypeChecking
}

// CanDebit checks whether debiting amount from the medium would violate the
// overdraft rule. Savings accounts never go negative regardless of the flag.
func (a *Account) CanDebit(medium Medium, amount int64) bool {
	if a.AvailableBalance(medium)-amount >= 0 {
		return true
	}
	// Rewards balances never overdraft
	return medium == MediumBalance && a.AllowOverdraft && a.Type != TypeSavings
}

// Apply mutates the in-memory balance on the given medium. delta is signed:
// negative for a debit, positive for a credit. Enforces the overdraft rule.
func (a *Account) Apply(medium Medium, delta int64) error {
	if delta == 0 {
		return ErrInvalidAmount
	}
	if delta < 0 && !a.CanDebit(medium, -delta) {
		return ErrInsufficientFunds
	}

	if medium == MediumRewards {
		a.RewardsBalance += delta
	} else {
		a.Balance += delta
	}
	a.Version++
	a.UpdatedAt = time.Now()
	return nil
}
