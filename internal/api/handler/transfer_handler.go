package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/splitpay-ledger/internal/api/middleware"
	"github.com/splitpay-ledger/internal/domain/account"
	"github.com/splitpay-ledger/internal/transfer"
)

// TransferService executes transfers. Satisfied by transfer.Engine.
type TransferService interface {
	Transfer(ctx context.Context, req *transfer.Request) (*transfer.Result, error)
}

// TransferHandler handles HTTP requests for money movement
type TransferHandler struct {
	engine TransferService
	logger *slog.Logger
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(logger *slog.Logger, engine TransferService) *TransferHandler {
	return &TransferHandler{
		engine: engine,
		logger: logger,
	}
}

// Create executes a transfer between accounts. Business-rule failures map to
// 422, missing accounts to 404, contention that exhausted its retries to 409.
func (h *TransferHandler) Create(c *gin.Context) {
	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	payerID, err := uuid.Parse(req.PayerAccountID)
	if err != nil {
		RespondBadRequest(c, "Invalid payer account ID")
		return
	}

	var payeeID uuid.UUID
	if req.PayeeAccountID != "" {
		payeeID, err = uuid.Parse(req.PayeeAccountID)
		if err != nil {
			RespondBadRequest(c, "Invalid payee account ID")
			return
		}
	} else if req.PayeeAccountNumber == "" {
		RespondBadRequest(c, "Either payee_account_id or payee_account_number is required")
		return
	}

	medium, err := account.ParseMedium(req.Medium)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	result, err := h.engine.Transfer(c.Request.Context(), &transfer.Request{
		PayerAccountID:     payerID,
		PayeeAccountID:     payeeID,
		PayeeAccountNumber: req.PayeeAccountNumber,
		Amount:             req.Amount,
		Medium:             medium,
		Description:        req.Description,
		CorrelationID:      middleware.GetCorrelationID(c),
	})
	if err != nil {
		h.respondTransferError(c, err)
		return
	}

	RespondCreated(c, result)
}

func (h *TransferHandler) respondTransferError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, account.ErrAccountNotFound{}):
		RespondNotFound(c, "Account not found")
	case errors.Is(err, account.ErrInsufficientFunds):
		RespondUnprocessable(c, "INSUFFICIENT_FUNDS", "Insufficient funds for transfer")
	case errors.Is(err, account.ErrInvalidAccountType):
		RespondUnprocessable(c, "INVALID_ACCOUNT_TYPE", "Account type is not eligible for transfers")
	case errors.Is(err, account.ErrInvalidAmount),
		errors.Is(err, account.ErrSameAccount),
		errors.Is(err, account.ErrEmptyAccountNumber),
		errors.Is(err, account.ErrUnknownMedium):
		RespondBadRequest(c, err.Error())
	case errors.Is(err, transfer.ErrContention):
		RespondConflict(c, "Transfer aborted due to concurrent activity, please retry")
	default:
		h.logger.Error("Transfer failed", "error", err)
		RespondInternalError(c)
	}
}
