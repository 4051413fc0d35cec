package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/splitpay-ledger/internal/api"
	"github.com/splitpay-ledger/internal/config"
	"github.com/splitpay-ledger/internal/data/mongo"
	"github.com/splitpay-ledger/internal/data/postgres"
	"github.com/splitpay-ledger/internal/logger"
	"github.com/splitpay-ledger/internal/notify"
	"github.com/splitpay-ledger/internal/platform/messaging/producers"
	"github.com/splitpay-ledger/internal/platform/persistence"
	"github.com/splitpay-ledger/internal/recorder"
	"github.com/splitpay-ledger/internal/settlement"
	"github.com/splitpay-ledger/internal/transfer"
)

func main() {
	// Base context, canceled on shutdown
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("ledgerd")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	// Databases
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Kafka producers for the two outbound topics
	eventsProducer, err := producers.NewEventProducer(appCtx, log, &cfg.Kafka, cfg.Kafka.EventsTopic)
	if err != nil {
		log.Error("Failed to initialize events producer", "error", err)
		os.Exit(1)
	}
	notificationsProducer, err := producers.NewEventProducer(appCtx, log, &cfg.Kafka, cfg.Kafka.NotificationTopic)
	if err != nil {
		log.Error("Failed to initialize notifications producer", "error", err)
		os.Exit(1)
	}

	// Repositories
	accountRepo := postgres.NewAccountRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	planRepo := postgres.NewPlanRepository(log, postgresDB)
	historyRepo := mongo.NewHistoryRepository(log, mongoDB.Database())

	// Fire-and-forget side effect dispatcher over the notifier
	dispatcher, err := notify.NewDispatcher(cfg.Dispatcher.PoolSize, log)
	if err != nil {
		log.Error("Failed to initialize dispatcher", "error", err)
		os.Exit(1)
	}
	notifier := notify.NewKafkaNotifier(eventsProducer, notificationsProducer)

	// Core services
	engine := transfer.NewEngine(postgresDB, accountRepo, outboxRepo, notifier, dispatcher, transfer.Config{
		MaxRetries: cfg.Transfer.MaxRetries,
		Timeout:    cfg.Transfer.Timeout,
	}, log)
	settlementService := settlement.NewService(planRepo)
	paymentRecorder := settlement.NewRecorder(postgresDB, planRepo, outboxRepo, log)

	// History recorder drains the outbox into MongoDB
	historyPublisher := recorder.NewHistoryPublisher(outboxRepo, historyRepo, log)
	poller := recorder.NewPoller(&cfg.Outbox, outboxRepo, historyPublisher, log)
	go poller.Start(appCtx)

	server := api.NewServer(log, cfg, accountRepo, historyRepo, engine, settlementService, paymentRecorder)
	log.Info("REST server initialized")

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Let in-flight side effect tasks finish before the producers close
	dispatcher.Shutdown(cfg.Server.ShutdownTimeout)

	if err = eventsProducer.Close(); err != nil {
		log.Error("Error closing events producer", "error", err)
	}
	if err = notificationsProducer.Close(); err != nil {
		log.Error("Error closing notifications producer", "error", err)
	}

	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
