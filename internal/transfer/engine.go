// Package transfer implements the atomic money movement between accounts. A
// transfer debits the payer and credits the payee as one database transaction,
// and writes its history intent rows inside the same transaction so a committed
// balance change can never lose its audit trail.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/splitpay-ledger/internal/domain/account"
	"github.com/splitpay-ledger/internal/domain/ledger"
	"github.com/splitpay-ledger/internal/domain/outbox"
	"github.com/splitpay-ledger/internal/notify"
	"github.com/splitpay-ledger/internal/platform/persistence"
)

// ErrContention signals that the atomic unit kept colliding with concurrent
// transfers and gave up after the configured number of retries.
var ErrContention = errors.New("transfer aborted after repeated concurrent modifications")

// Request describes one transfer. Exactly one of PayeeAccountID and
// PayeeAccountNumber identifies the destination.
type Request struct {
	TransferID         uuid.UUID
	PayerAccountID     uuid.UUID
	PayeeAccountID     uuid.UUID
	PayeeAccountNumber string
	Amount             int64 // Minor units, must be positive
	Medium             account.Medium
	Description        string
	CorrelationID      string
}

// Result reports the final balances of a completed transfer
type Result struct {
	TransferID     uuid.UUID      `json:"transfer_id"`
	PayerAccountID uuid.UUID      `json:"payer_account_id"`
	PayeeAccountID uuid.UUID      `json:"payee_account_id,omitempty"`
	Medium         account.Medium `json:"medium"`
	Amount         int64          `json:"amount"`
	PayerBalance   int64          `json:"payer_balance"`
	PayeeBalance   int64          `json:"payee_balance,omitempty"`
	External       bool           `json:"external"` // Payee account number did not resolve locally
	CompletedAt    time.Time      `json:"completed_at"`

	payerOwnerID uuid.UUID
	payeeOwnerID uuid.UUID
}

// Engine orchestrates transfers over the account store, the history outbox and
// the notification collaborator.
type Engine struct {
	db         persistence.TxExecutor
	accounts   account.Repository
	outbox     outbox.Repository
	notifier   notify.Notifier
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
	maxRetries int
	timeout    time.Duration
}

// Config holds the engine's retry and deadline knobs
type Config struct {
	MaxRetries int
	Timeout    time.Duration
}

// NewEngine creates a transfer engine
func NewEngine(
	db persistence.TxExecutor,
	accounts account.Repository,
	outboxRepo outbox.Repository,
	notifier notify.Notifier,
	dispatcher *notify.Dispatcher,
	cfg Config,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		db:         db,
		accounts:   accounts,
		outbox:     outboxRepo,
		notifier:   notifier,
		dispatcher: dispatcher,
		logger:     logger,
		maxRetries: cfg.MaxRetries,
		timeout:    cfg.Timeout,
	}
}

// Transfer moves amount from the payer to the payee account. Business-rule
// failures (missing account, wrong type, insufficient funds) surface before any
// balance changes; lock contention is retried transparently up to the
// configured bound.
func (e *Engine) Transfer(ctx context.Context, req *Request) (*Result, error) {
	logger := e.logger
	if req.CorrelationID != "" {
		logger = e.logger.With("correlation_id", req.CorrelationID)
	}

	if err := e.validate(req); err != nil {
		return nil, err
	}
	if req.TransferID == uuid.Nil {
		req.TransferID = uuid.New()
	}

	ctx, cancel := e.withDeadline(ctx)
	defer cancel()

	// Resolve the destination. An account number that does not resolve is an
	// external transfer: the payer-side debit still completes.
	payeeID := req.PayeeAccountID
	external := false
	if payeeID == uuid.Nil {
		payee, err := e.accounts.GetByAccountNumber(ctx, req.PayeeAccountNumber)
		if err != nil {
			return nil, err
		}
		if payee == nil {
			external = true
			logger.Info("Payee account number did not resolve, proceeding with payer side only",
				"transfer_id", req.TransferID.String(),
				"account_number", req.PayeeAccountNumber,
			)
		} else {
			payeeID = payee.ID
		}
	}
	if !external && payeeID == req.PayerAccountID {
		return nil, account.ErrSameAccount
	}

	var result *Result
	run := func(tx pgx.Tx) error {
		var err error
		result, err = e.executeTransfer(ctx, tx, req, payeeID, external)
		return err
	}

	// Bounded retry of the whole atomic unit on optimistic-lock contention.
	// Business failures come back unchanged and are never retried.
	var err error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		err = e.db.ExecuteTx(ctx, run)
		if err == nil {
			break
		}
		if !errors.Is(err, account.ErrConcurrentModification{}) {
			return nil, err
		}
		logger.Warn("Transfer hit concurrent modification, retrying",
			"transfer_id", req.TransferID.String(),
			"attempt", attempt+1,
		)
	}
	if err != nil {
		logger.Error("Transfer failed after retries", "transfer_id", req.TransferID.String(), "error", err)
		return nil, fmt.Errorf("%w: %v", ErrContention, err)
	}

	e.publishSideEffects(req, result)

	logger.Info("Transfer completed",
		"transfer_id", req.TransferID.String(),
		"payer_account_id", req.PayerAccountID.String(),
		"amount", req.Amount,
		"external", external,
	)
	return result, nil
}

// TransferToAccountNumber moves amount to a destination identified by its
// external-facing account number.
func (e *Engine) TransferToAccountNumber(ctx context.Context, payerAccountID uuid.UUID, accountNumber string, amount int64, medium account.Medium, correlationID string) (*Result, error) {
	if accountNumber == "" {
		return nil, account.ErrEmptyAccountNumber
	}
	return e.Transfer(ctx, &Request{
		PayerAccountID:     payerAccountID,
		PayeeAccountNumber: accountNumber,
		Amount:             amount,
		Medium:             medium,
		CorrelationID:      correlationID,
	})
}

func (e *Engine) validate(req *Request) error {
	if req.Amount <= 0 {
		return account.ErrInvalidAmount
	}
	if req.PayerAccountID == uuid.Nil {
		return account.ErrAccountNotFound{AccountID: req.PayerAccountID}
	}
	if req.PayeeAccountID != uuid.Nil && req.PayeeAccountID == req.PayerAccountID {
		return account.ErrSameAccount
	}
	if req.PayeeAccountID == uuid.Nil && req.PayeeAccountNumber == "" {
		return account.ErrEmptyAccountNumber
	}
	switch req.Medium {
	case account.MediumBalance, account.MediumRewards:
		return nil
	case "":
		req.Medium = account.MediumBalance
		return nil
	default:
		return account.ErrUnknownMedium
	}
}

func (e *Engine) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.timeout)
}

// executeTransfer is the atomic unit. It re-reads both accounts inside the
// transaction, re-checks funds against the fresh state, applies both
// version-guarded balance adjustments, and queues the history records. All of
// it commits or none of it does.
func (e *Engine) executeTransfer(ctx context.Context, tx pgx.Tx, req *Request, payeeID uuid.UUID, external bool) (*Result, error) {
	accounts := e.accounts.WithTx(tx)
	outboxRepo := e.outbox.WithTx(tx)

	payer, err := accounts.GetByID(ctx, req.PayerAccountID)
	if err != nil {
		return nil, err
	}
	if !payer.CanTransfer() {
		return nil, account.ErrInvalidAccountType
	}
	if !payer.CanDebit(req.Medium, req.Amount) {
		return nil, account.ErrInsufficientFunds
	}

	var payee *account.Account
	if !external {
		payee, err = accounts.GetByID(ctx, payeeID)
		if err != nil {
			return nil, err
		}
		if !payee.CanTransfer() {
			return nil, account.ErrInvalidAccountType
		}
	}

	payerPrev := payer.AvailableBalance(req.Medium)
	payerBalance, err := accounts.AdjustBalance(ctx, payer.ID, req.Medium, -req.Amount, payer.Version)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result := &Result{
		TransferID:     req.TransferID,
		PayerAccountID: payer.ID,
		Medium:         req.Medium,
		Amount:         req.Amount,
		PayerBalance:   payerBalance,
		External:       external,
		CompletedAt:    now,
		payerOwnerID:   payer.OwnerID,
	}

	records := []*ledger.Record{{
		ID:              uuid.New(),
		TransferID:      req.TransferID,
		AccountID:       payer.ID,
		UserID:          payer.OwnerID,
		Type:            ledger.RecordTypeTransferOut,
		Medium:          req.Medium,
		Amount:          -req.Amount,
		PayerAccountID:  payer.ID,
		PayeeAccountID:  payeeID,
		PreviousBalance: payerPrev,
		NewBalance:      payerBalance,
		Status:          ledger.RecordStatusCompleted,
		Description:     req.Description,
		CorrelationID:   req.CorrelationID,
		CreatedAt:       now,
	}}

	if !external {
		payeePrev := payee.AvailableBalance(req.Medium)
		payeeBalance, err := accounts.AdjustBalance(ctx, payee.ID, req.Medium, req.Amount, payee.Version)
		if err != nil {
			return nil, err
		}
		result.PayeeAccountID = payee.ID
		result.PayeeBalance = payeeBalance
		result.payeeOwnerID = payee.OwnerID

		records = append(records, &ledger.Record{
			ID:              uuid.New(),
			TransferID:      req.TransferID,
			AccountID:       payee.ID,
			UserID:          payee.OwnerID,
			Type:            ledger.RecordTypeTransferIn,
			Medium:          req.Medium,
			Amount:          req.Amount,
			PayerAccountID:  payer.ID,
			PayeeAccountID:  payee.ID,
			PreviousBalance: payeePrev,
			NewBalance:      payeeBalance,
			Status:          ledger.RecordStatusCompleted,
			Description:     req.Description,
			CorrelationID:   req.CorrelationID,
			CreatedAt:       now,
		})
	}

	for _, record := range records {
		msg, err := outbox.NewMessage(record)
		if err != nil {
			return nil, fmt.Errorf("failed to build history intent for transfer %s: %w", req.TransferID.String(), err)
		}
		if err := outboxRepo.Create(ctx, msg); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// publishSideEffects enqueues the best-effort post-commit notifications:
// balance-changed events for both accounts and the out-of-band payee message.
// Failures are logged by the dispatcher, never surfaced.
func (e *Engine) publishSideEffects(req *Request, result *Result) {
	if e.dispatcher == nil || e.notifier == nil {
		return
	}

	payerEvent := &notify.BalanceChangedEvent{
		AccountID:  result.PayerAccountID,
		OwnerID:    result.payerOwnerID,
		Medium:     result.Medium,
		NewBalance: result.PayerBalance,
		TransferID: result.TransferID,
		OccurredAt: result.CompletedAt,
	}
	e.dispatcher.Enqueue("balance-changed-payer", func(ctx context.Context) error {
		return e.notifier.BalanceChanged(ctx, payerEvent)
	})

	if result.External {
		return
	}

	payeeEvent := &notify.BalanceChangedEvent{
		AccountID:  result.PayeeAccountID,
		OwnerID:    result.payeeOwnerID,
		Medium:     result.Medium,
		NewBalance: result.PayeeBalance,
		TransferID: result.TransferID,
		OccurredAt: result.CompletedAt,
	}
	e.dispatcher.Enqueue("balance-changed-payee", func(ctx context.Context) error {
		return e.notifier.BalanceChanged(ctx, payeeEvent)
	})

	notification := &notify.PayeeCreditedNotification{
		TransferID:     result.TransferID,
		PayeeAccountID: result.PayeeAccountID,
		PayeeUserID:    result.payeeOwnerID,
		PayerAccountID: result.PayerAccountID,
		Amount:         result.Amount,
		OccurredAt:     result.CompletedAt,
	}
	e.dispatcher.Enqueue("payee-credited", func(ctx context.Context) error {
		return e.notifier.PayeeCredited(ctx, notification)
	})
}
