package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/splitpay-ledger/internal/domain/ledger"
)

// HistoryHandler serves the append-only transaction history
type HistoryHandler struct {
	history ledger.Repository
	logger  *slog.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(logger *slog.Logger, history ledger.Repository) *HistoryHandler {
	return &HistoryHandler{
		history: history,
		logger:  logger,
	}
}

// GetByAccountID lists an account's history records, newest first, paginated
func (h *HistoryHandler) GetByAccountID(c *gin.Context) {
	idParam := c.Param("id")
	accountID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid account ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}
	offset := (params.Page - 1) * params.PerPage

	records, err := h.history.GetByAccountID(c.Request.Context(), accountID, params.PerPage, offset)
	if err != nil {
		h.logger.Error("Failed to get account history", "account_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	total, err := h.history.CountByAccountID(c.Request.Context(), accountID)
	if err != nil {
		h.logger.Error("Failed to count account history", "account_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondWithPaginatedData(c, 200, mapRecordsToResponse(records), params.Page, params.PerPage, int(total))
}

// GetByUserID lists history records across all of a user's accounts
func (h *HistoryHandler) GetByUserID(c *gin.Context) {
	idParam := c.Param("id")
	userID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid user ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid user ID")
		return
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}
	offset := (params.Page - 1) * params.PerPage

	records, err := h.history.GetByUserID(c.Request.Context(), userID, params.PerPage, offset)
	if err != nil {
		h.logger.Error("Failed to get user history", "user_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapRecordsToResponse(records))
}

func mapRecordsToResponse(records []*ledger.Record) []HistoryRecordResponse {
	responses := make([]HistoryRecordResponse, 0, len(records))
	for _, r := range records {
		resp := HistoryRecordResponse{
			ID:              r.ID.String(),
			TransferID:      r.TransferID.String(),
			AccountID:       r.AccountID.String(),
			UserID:          r.UserID.String(),
			Type:            string(r.Type),
			Medium:          string(r.Medium),
			Amount:          r.Amount,
			PreviousBalance: r.PreviousBalance,
			NewBalance:      r.NewBalance,
			Status:          string(r.Status),
			Description:     r.Description,
			CreatedAt:       r.CreatedAt.Format(time.RFC3339),
		}
		if r.PayerAccountID != uuid.Nil {
			resp.PayerAccountID = r.PayerAccountID.String()
		}
		if r.PayeeAccountID != uuid.Nil {
			resp.PayeeAccountID = r.PayeeAccountID.String()
		}
		responses = append(responses, resp)
	}
	return responses
}
