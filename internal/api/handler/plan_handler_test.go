package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/splitpay-ledger/internal/domain/plan"
	"github.com/splitpay-ledger/internal/settlement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSettlementService struct {
	mock.Mock
}

func (m *MockSettlementService) Settle(ctx context.Context, planID uuid.UUID) (*settlement.Result, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.Result), args.Error(1)
}

type MockPaymentRecorder struct {
	mock.Mock
}

func (m *MockPaymentRecorder) RecordPayment(ctx context.Context, params settlement.RecordPaymentParams) (*plan.Entry, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*plan.Entry), args.Error(1)
}

func planRouter(settlements SettlementService, recorder PaymentRecorder) *gin.Engine {
	router := setupTestRouter()
	handler := NewPlanHandler(testLogger(), settlements, recorder)
	router.GET("/plans/:id/settlement", handler.GetSettlement)
	router.POST("/plans/:id/payments", handler.RecordPayment)
	return router
}

func TestPlanHandler_GetSettlement(t *testing.T) {
	planID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		from := uuid.New()
		to := uuid.New()
		mockService := new(MockSettlementService)
		mockService.On("Settle", mock.Anything, planID).Return(&settlement.Result{
			Total:   12000,
			PerHead: 4000,
			Suggested: []settlement.Payment{
				{FromPersonID: from, ToPersonID: to, Amount: 4000},
			},
		}, nil)

		rr := performRequest(planRouter(mockService, new(MockPaymentRecorder)),
			http.MethodGet, "/plans/"+planID.String()+"/settlement", nil)

		assert.Equal(t, http.StatusOK, rr.Code)

		var response Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		data := response.Data.(map[string]interface{})
		assert.Equal(t, float64(12000), data["total"])
		suggested := data["suggested"].([]interface{})
		require.Len(t, suggested, 1)
	})

	t.Run("EmptyPlan", func(t *testing.T) {
		mockService := new(MockSettlementService)
		mockService.On("Settle", mock.Anything, planID).Return(nil, plan.ErrNoPersons)

		rr := performRequest(planRouter(mockService, new(MockPaymentRecorder)),
			http.MethodGet, "/plans/"+planID.String()+"/settlement", nil)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("MalformedID", func(t *testing.T) {
		rr := performRequest(planRouter(new(MockSettlementService), new(MockPaymentRecorder)),
			http.MethodGet, "/plans/oops/settlement", nil)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestPlanHandler_RecordPayment(t *testing.T) {
	planID := uuid.New()
	payerID := uuid.New()
	receiverID := uuid.New()

	body := RecordPaymentRequest{
		PayerPersonID:    payerID.String(),
		ReceiverPersonID: receiverID.String(),
		Amount:           2500,
		Date:             time.Now().UTC().Format(time.RFC3339),
		Description:      "dinner",
	}

	t.Run("Success", func(t *testing.T) {
		mockRecorder := new(MockPaymentRecorder)
		mockRecorder.On("RecordPayment", mock.Anything, mock.MatchedBy(func(p settlement.RecordPaymentParams) bool {
			return p.PlanID == planID && p.PayerPersonID == payerID && p.Amount == 2500
		})).Return(&plan.Entry{
			ID:         uuid.New(),
			PlanID:     planID,
			PayerID:    payerID,
			Amount:     2500,
			Settlement: true,
		}, nil)

		rr := performRequest(planRouter(new(MockSettlementService), mockRecorder),
			http.MethodPost, "/plans/"+planID.String()+"/payments", body)

		assert.Equal(t, http.StatusCreated, rr.Code)
		mockRecorder.AssertExpectations(t)
	})

	t.Run("SamePerson", func(t *testing.T) {
		mockRecorder := new(MockPaymentRecorder)
		mockRecorder.On("RecordPayment", mock.Anything, mock.Anything).Return(nil, plan.ErrSamePerson)

		rr := performRequest(planRouter(new(MockSettlementService), mockRecorder),
			http.MethodPost, "/plans/"+planID.String()+"/payments", body)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("ParticipantNotFound", func(t *testing.T) {
		mockRecorder := new(MockPaymentRecorder)
		mockRecorder.On("RecordPayment", mock.Anything, mock.Anything).
			Return(nil, plan.ErrPersonNotFound{PersonID: payerID})

		rr := performRequest(planRouter(new(MockSettlementService), mockRecorder),
			http.MethodPost, "/plans/"+planID.String()+"/payments", body)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("NonPositiveAmount", func(t *testing.T) {
		bad := body
		bad.Amount = 0

		mockRecorder := new(MockPaymentRecorder)
		rr := performRequest(planRouter(new(MockSettlementService), mockRecorder),
			http.MethodPost, "/plans/"+planID.String()+"/payments", bad)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockRecorder.AssertNotCalled(t, "RecordPayment", mock.Anything, mock.Anything)
	})
}
