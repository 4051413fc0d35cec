// Package notify carries the post-commit side effects of a transfer: observer
// refresh events and outbound payee messages. Everything in this package is
// best-effort; a failure here is logged and swallowed, never surfaced to the
// caller that moved the money.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/splitpay-ledger/internal/domain/account"
	"github.com/splitpay-ledger/internal/platform/messaging/producers"
)

// Event names published on the events topic
const (
	EventBalanceChanged = "balance.changed"
)

// BalanceChangedEvent tells observers that an account balance moved and they
// should refresh.
type BalanceChangedEvent struct {
	Event      string         `json:"event"`
	AccountID  uuid.UUID      `json:"account_id"`
	OwnerID    uuid.UUID      `json:"owner_id"`
	Medium     account.Medium `json:"medium"`
	NewBalance int64          `json:"new_balance"`
	TransferID uuid.UUID      `json:"transfer_id"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// PayeeCreditedNotification is handed to the external messaging collaborator
// so the payee hears about an incoming credit out-of-band.
type PayeeCreditedNotification struct {
	TransferID     uuid.UUID `json:"transfer_id"`
	PayeeAccountID uuid.UUID `json:"payee_account_id"`
	PayeeUserID    uuid.UUID `json:"payee_user_id"`
	PayerAccountID uuid.UUID `json:"payer_account_id"`
	Amount         int64     `json:"amount"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Notifier is the best-effort notification collaborator of the transfer engine
type Notifier interface {
	BalanceChanged(ctx context.Context, event *BalanceChangedEvent) error
	PayeeCredited(ctx context.Context, notification *PayeeCreditedNotification) error
}

// KafkaNotifier publishes notifications through two Kafka topics: one for
// balance events, one for outbound payee messages.
type KafkaNotifier struct {
	events        producers.MessagePublisher
	notifications producers.MessagePublisher
}

// NewKafkaNotifier creates a notifier over the given producers
func NewKafkaNotifier(events, notifications producers.MessagePublisher) *KafkaNotifier {
	return &KafkaNotifier{
		events:        events,
		notifications: notifications,
	}
}

// BalanceChanged publishes a refresh event keyed by account so observers of
// one account see its events in order.
func (n *KafkaNotifier) BalanceChanged(ctx context.Context, event *BalanceChangedEvent) error {
	event.Event = EventBalanceChanged
	return n.events.Publish(ctx, event.AccountID.String(), event)
}

// PayeeCredited publishes an outbound payee message keyed by payee account
func (n *KafkaNotifier) PayeeCredited(ctx context.Context, notification *PayeeCreditedNotification) error {
	return n.notifications.Publish(ctx, notification.PayeeAccountID.String(), notification)
}
