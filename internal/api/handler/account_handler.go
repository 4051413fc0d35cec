package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/splitpay-ledger/internal/domain/account"
)

// AccountHandler handles HTTP requests for account operations
type AccountHandler struct {
	accounts account.Repository
	logger   *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, accounts account.Repository) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		logger:   logger,
	}
}

// Create opens a new account for a user
func (h *AccountHandler) Create(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		RespondBadRequest(c, "Invalid owner ID")
		return
	}

	acc, err := account.NewAccount(ownerID, account.Type(req.Type), req.AccountNumber, req.InitialBalance, req.AllowOverdraft)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	if err := h.accounts.Create(c.Request.Context(), acc); err != nil {
		var duplicate account.ErrDuplicateAccountNumber
		if errors.As(err, &duplicate) {
			h.logger.Warn("Attempt to reuse account number", "account_number", duplicate.AccountNumber)
			RespondConflict(c, "Account number already in use")
			return
		}
		h.logger.Error("Failed to create account", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapAccountToResponse(acc))
}

// GetByID retrieves an account by its ID, returning 404 if not found
func (h *AccountHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid account ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	acc, err := h.accounts.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			RespondNotFound(c, "Account not found")
			return
		}
		h.logger.Error("Failed to get account", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// mapAccountToResponse maps an account entity to an account response DTO
func mapAccountToResponse(acc *account.Account) AccountResponse {
	return AccountResponse{
		ID:             acc.ID.String(),
		OwnerID:        acc.OwnerID.String(),
		Type:           string(acc.Type),
		AccountNumber:  acc.AccountNumber,
		Balance:        acc.Balance,
		RewardsBalance: acc.RewardsBalance,
		AllowOverdraft: acc.AllowOverdraft,
		CreatedAt:      acc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      acc.UpdatedAt.Format(time.RFC3339),
	}
}
