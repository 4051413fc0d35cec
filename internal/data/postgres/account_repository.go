// Package postgres provides PostgreSQL implementations of the domain
// repositories. It handles all database operations while maintaining
// transaction safety and proper error handling for the ledger core.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/splitpay-ledger/internal/domain/account"
	"github.com/splitpay-ledger/internal/platform/persistence"
)

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) account.Repository {
	return &AccountRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic
// operations across multiple repository calls. The returned repository uses the
// provided transaction for all database operations.
func (r *AccountRepository) WithTx(tx pgx.Tx) account.Repository {
	return &AccountRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const accountColumns = `id, owner_id, type, account_number, balance, rewards_balance, allow_overdraft, version, created_at, updated_at`

// Create stores a new account in the database. If an account with the same
// account number already exists, a database constraint error will be returned.
func (r *AccountRepository) Create(ctx context.Context, acc *account.Account) error {
	query := `
		INSERT INTO accounts (id, owner_id, type, account_number, balance, rewards_balance, allow_overdraft, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.querier.Exec(ctx, query,
		acc.ID,
		acc.OwnerID,
		acc.Type,
		acc.AccountNumber,
		acc.Balance,
		acc.RewardsBalance,
		acc.AllowOverdraft,
		acc.Version,
		acc.CreatedAt,
		acc.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return account.ErrDuplicateAccountNumber{AccountNumber: acc.AccountNumber}
		}
		r.logger.Error("Failed to create account", "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1
	`

	acc, err := r.scanAccount(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to get account", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return acc, nil
}

// GetByAccountNumber retrieves an account by its external-facing account
// number. Returns nil, nil when the number does not resolve, since a transfer
// to an unresolved number is still valid for the payer side.
func (r *AccountRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_number = $1
	`

	acc, err := r.scanAccount(r.querier.QueryRow(ctx, query, accountNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get account by account number", "account_number", accountNumber, "error", err)
		return nil, fmt.Errorf("failed to get account by account number: %w", err)
	}

	return acc, nil
}

// AdjustBalance atomically applies a signed delta to the selected medium using
// optimistic locking. The WHERE clause re-checks both the version and the
// overdraft rule at commit time, so a stale read can never overwrite a
// concurrent adjustment or push a guarded balance below zero. Returns
// ErrConcurrentModification when no row matched.
func (r *AccountRepository) AdjustBalance(ctx context.Context, id uuid.UUID, medium account.Medium, delta int64, version int) (int64, error) {
	var query string
	switch medium {
	case account.MediumRewards:
		// Rewards balances never overdraft
		query = `
			UPDATE accounts
			SET rewards_balance = rewards_balance + $1, version = version + 1, updated_at = NOW()
			WHERE id = $2 AND version = $3 AND rewards_balance + $1 >= 0
			RETURNING rewards_balance
		`
	case account.MediumBalance:
		query = `
			UPDATE accounts
			SET balance = balance + $1, version = version + 1, updated_at = NOW()
			WHERE id = $2 AND version = $3
			  AND (balance + $1 >= 0 OR (allow_overdraft AND type <> 'SAVINGS'))
			RETURNING balance
		`
	default:
		return 0, account.ErrUnknownMedium
	}

	var newBalance int64
	err := r.querier.QueryRow(ctx, query, delta, id, version).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, account.ErrConcurrentModification{AccountID: id}
		}
		r.logger.Error("Failed to adjust account balance", "id", id.String(), "error", err)
		return 0, fmt.Errorf("failed to adjust account balance: %w", err)
	}

	return newBalance, nil
}

func (r *AccountRepository) scanAccount(row pgx.Row) (*account.Account, error) {
	var acc account.Account
	err := row.Scan(
		&acc.ID,
		&acc.OwnerID,
		&acc.Type,
		&acc.AccountNumber,
		&acc.Balance,
		&acc.RewardsBalance,
		&acc.AllowOverdraft,
		&acc.Version,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}
