package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/support-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated      EventType = "ticket_created"
	EventTicketEdited       EventType = "ticket_edited"
	EventTicketDeleted      EventType = "ticket_deleted"
	EventTicketTransitioned EventType = "ticket_transitioned"
	EventAccountRoleChanged EventType = "account_role_changed"
	EventAccountDeleted     EventType = "account_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     string      `json:"actor"`
	TicketID  int64       `json:"ticket_id,omitempty"`
	AccountID int64       `json:"account_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, actor string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Requester string                `json:"requester"`
	Status    domain.TicketStatus   `json:"status"`
	Priority  domain.TicketPriority `json:"priority"`
}

// TicketTransitionedPayload payload.
type TicketTransitionedPayload struct {
	OldStatus   domain.TicketStatus   `json:"old_status"`
	NewStatus   domain.TicketStatus   `json:"new_status"`
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
}

// AccountRoleChangedPayload payload.
type AccountRoleChangedPayload struct {
	Username string      `json:"username"`
	OldRole  domain.Role `json:"old_role"`
	NewRole  domain.Role `json:"new_role"`
}
