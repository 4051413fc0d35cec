package handler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/splitpay-ledger/internal/api/middleware"
	"github.com/splitpay-ledger/internal/domain/plan"
	"github.com/splitpay-ledger/internal/settlement"
)

// SettlementService computes a plan's settlement. Satisfied by settlement.Service.
type SettlementService interface {
	Settle(ctx context.Context, planID uuid.UUID) (*settlement.Result, error)
}

// PaymentRecorder records settling payments. Satisfied by settlement.Recorder.
type PaymentRecorder interface {
	RecordPayment(ctx context.Context, params settlement.RecordPaymentParams) (*plan.Entry, error)
}

// PlanHandler handles HTTP requests for shared-plan settlement
type PlanHandler struct {
	settlements SettlementService
	recorder    PaymentRecorder
	logger      *slog.Logger
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(logger *slog.Logger, settlements SettlementService, recorder PaymentRecorder) *PlanHandler {
	return &PlanHandler{
		settlements: settlements,
		recorder:    recorder,
		logger:      logger,
	}
}

// GetSettlement computes who owes whom on a plan
func (h *PlanHandler) GetSettlement(c *gin.Context) {
	idParam := c.Param("id")
	planID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid plan ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid plan ID")
		return
	}

	result, err := h.settlements.Settle(c.Request.Context(), planID)
	if err != nil {
		if errors.Is(err, plan.ErrNoPersons) {
			RespondNotFound(c, "Plan has no participants")
			return
		}
		h.logger.Error("Failed to compute settlement", "plan_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, result)
}

// RecordPayment records a manual settling payment on a plan
func (h *PlanHandler) RecordPayment(c *gin.Context) {
	idParam := c.Param("id")
	planID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid plan ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid plan ID")
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	params, err := h.paymentParams(planID, &req)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}
	params.CorrelationID = middleware.GetCorrelationID(c)

	entry, err := h.recorder.RecordPayment(c.Request.Context(), params)
	if err != nil {
		h.respondPaymentError(c, err)
		return
	}

	RespondCreated(c, entry)
}

func (h *PlanHandler) paymentParams(planID uuid.UUID, req *RecordPaymentRequest) (settlement.RecordPaymentParams, error) {
	params := settlement.RecordPaymentParams{
		PlanID:      planID,
		Amount:      req.Amount,
		Date:        time.Now(),
		Description: req.Description,
	}

	var err error
	if params.PayerPersonID, err = uuid.Parse(req.PayerPersonID); err != nil {
		return params, errors.New("invalid payer person ID")
	}
	if params.ReceiverPersonID, err = uuid.Parse(req.ReceiverPersonID); err != nil {
		return params, errors.New("invalid receiver person ID")
	}
	if req.Date != "" {
		if params.Date, err = time.Parse(time.RFC3339, req.Date); err != nil {
			return params, errors.New("invalid date, expected RFC 3339")
		}
	}
	if req.ActingUserID != "" {
		if params.ActingUserID, err = uuid.Parse(req.ActingUserID); err != nil {
			return params, errors.New("invalid acting user ID")
		}
	}
	if req.PersonalAccountID != "" {
		if params.PersonalAccountID, err = uuid.Parse(req.PersonalAccountID); err != nil {
			return params, errors.New("invalid personal account ID")
		}
	}
	return params, nil
}

func (h *PlanHandler) respondPaymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, plan.ErrPersonNotFound{}):
		RespondNotFound(c, "Plan participant not found")
	case errors.Is(err, plan.ErrSamePerson),
		errors.Is(err, plan.ErrPersonNotSelected),
		errors.Is(err, plan.ErrInvalidPaymentAmount):
		RespondBadRequest(c, err.Error())
	default:
		h.logger.Error("Failed to record payment", "error", err)
		RespondInternalError(c)
	}
}
