package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/splitpay-ledger/internal/api/handler"
	"github.com/splitpay-ledger/internal/api/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	accountHandler *handler.AccountHandler,
	transferHandler *handler.TransferHandler,
	historyHandler *handler.HistoryHandler,
	planHandler *handler.PlanHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		accounts := v1.Group("/accounts")
		{
			accounts.POST("", accountHandler.Create)
			accounts.GET("/:id", accountHandler.GetByID)
			accounts.GET("/:id/history", historyHandler.GetByAccountID)
		}

		v1.POST("/transfers", transferHandler.Create)

		v1.GET("/users/:id/history", historyHandler.GetByUserID)

		plans := v1.Group("/plans")
		{
			plans.GET("/:id/settlement", planHandler.GetSettlement)
			plans.POST("/:id/payments", planHandler.RecordPayment)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
