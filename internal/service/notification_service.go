package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/events"
)

// NotificationService turns domain events into audit log entries.
type NotificationService struct {
	logger *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{logger: logger.Named("notifications")}
}

// EventTypes lists the events the service reacts to.
func (n *NotificationService) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventTicketCreated,
		events.EventTicketEdited,
		events.EventTicketDeleted,
		events.EventTicketTransitioned,
		events.EventAccountRoleChanged,
		events.EventAccountDeleted,
	}
}

// Handle routes a single event to its handler.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.EventAccountRoleChanged, events.EventAccountDeleted:
		return n.handleAccountEvent(ctx, event)
	default:
		return n.handleTicketEvent(ctx, event)
	}
}

func (n *NotificationService) handleTicketEvent(_ context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("actor", event.Actor),
		zap.Int64("ticket_id", event.TicketID),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleAccountEvent(_ context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("actor", event.Actor),
		zap.Int64("account_id", event.AccountID),
		zap.Any("payload", event.Payload))
	return nil
}
