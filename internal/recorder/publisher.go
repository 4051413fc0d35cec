// Package recorder drains the history outbox into the durable ledger history
// store. Together with the transfer engine's transactional outbox writes it
// guarantees that every committed balance mutation ends up with exactly one
// history record, even across crashes between the two stores.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/splitpay-ledger/internal/domain/ledger"
	"github.com/splitpay-ledger/internal/domain/outbox"
)

// HistoryPublisher publishes one outbox message to the history store
type HistoryPublisher interface {
	PublishToHistory(ctx context.Context, message *outbox.Message) error
}

// HistoryPublisherImpl implements HistoryPublisher
type HistoryPublisherImpl struct {
	outboxRepo  outbox.Repository
	historyRepo ledger.Repository
	logger      *slog.Logger
}

// NewHistoryPublisher creates a new publisher
func NewHistoryPublisher(
	outboxRepo outbox.Repository,
	historyRepo ledger.Repository,
	logger *slog.Logger,
) HistoryPublisher {
	return &HistoryPublisherImpl{
		outboxRepo:  outboxRepo,
		historyRepo: historyRepo,
		logger:      logger,
	}
}

// PublishToHistory appends the record carried by an outbox message to the
// history store and marks the message processed. Appending is idempotent on
// record ID, so redelivery after a crash between the two steps is harmless.
func (p *HistoryPublisherImpl) PublishToHistory(ctx context.Context, message *outbox.Message) error {
	record, err := message.Record()
	if err != nil {
		p.logger.Error("Failed to unmarshal history record from outbox payload",
			"outbox_id", message.ID, "record_id", message.RecordID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, outbox.StatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	logger := p.logger
	if record.CorrelationID != "" {
		logger = p.logger.With("correlation_id", record.CorrelationID)
	}

	err = p.historyRepo.Append(ctx, record)
	if err != nil && !errors.Is(err, ledger.ErrDuplicateRecord{}) {
		logger.Error("Failed to append history record", "record_id", record.ID, "error", err)
		return fmt.Errorf("failed to append history record %s: %w", record.ID, err)
	}
	if errors.Is(err, ledger.ErrDuplicateRecord{}) {
		logger.Info("History record already appended", "record_id", record.ID)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, outbox.StatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "record_id", message.RecordID, "error", err,
		)
		return fmt.Errorf("history write for %s OK, but failed to mark outbox %d as PROCESSED: %w", message.RecordID, message.ID, err)
	}

	logger.Info("Outbox message published to history", "outbox_id", message.ID, "record_id", message.RecordID)
	return nil
}
