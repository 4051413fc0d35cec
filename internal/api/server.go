// Package api exposes the ledger over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/splitpay-ledger/internal/api/handler"
	"github.com/splitpay-ledger/internal/config"
	"github.com/splitpay-ledger/internal/domain/account"
	"github.com/splitpay-ledger/internal/domain/ledger"
	"github.com/splitpay-ledger/internal/settlement"
	"github.com/splitpay-ledger/internal/transfer"
)

// Server handles HTTP requests and manages the HTTP lifecycle
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
	httpRouter *gin.Engine
}

// NewServer creates and configures a new HTTP server over the ledger services
func NewServer(
	log *slog.Logger,
	cfg *config.Config,
	accounts account.Repository,
	history ledger.Repository,
	engine *transfer.Engine,
	settlements *settlement.Service,
	recorder *settlement.Recorder,
) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	accountHandler := handler.NewAccountHandler(log, accounts)
	transferHandler := handler.NewTransferHandler(log, engine)
	historyHandler := handler.NewHistoryHandler(log, history)
	planHandler := handler.NewPlanHandler(log, settlements, recorder)

	setupRouter(log, httpRouter, accountHandler, transferHandler, historyHandler, planHandler)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server with a timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.httpServer.WriteTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}

	return nil
}
