package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/auth"
	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/events"
	"github.com/spec-kit/support-portal/internal/observability"
	"github.com/spec-kit/support-portal/internal/repository"
	apperrors "github.com/spec-kit/support-portal/pkg/util/errorutil"
)

// TicketService applies the ticket lifecycle rules. Concurrent writes to the
// same ticket are not coordinated; the last write wins at the store.
type TicketService struct {
	tickets    repository.TicketRepository
	rules      ContentRules
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Tickets    repository.TicketRepository
	Rules      ContentRules
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// TicketOverview is a partitioned ticket list with its status counts.
type TicketOverview struct {
	Tickets []domain.Ticket
	Stats   domain.TicketStats
}

// TransitionInput names the target status and priority. An empty value keeps the current one.
type TransitionInput struct {
	Status   domain.TicketStatus
	Priority domain.TicketPriority
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rules := deps.Rules
	if rules == (ContentRules{}) {
		rules = DefaultContentRules()
	}
	return &TicketService{
		tickets:    deps.Tickets,
		rules:      rules,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateTicket submits a ticket for actor. Status and priority always start at
// OPEN and MEDIUM and the requester is always the actor.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.Account, content TicketContent) (ticket *domain.Ticket, err error) {
	ctx, span := tracer().Start(ctx, "TicketService.CreateTicket")
	defer func() { endSpan(span, err) }()

	if err := auth.Require(actor, auth.LevelUser); err != nil {
		return nil, err
	}

	errs := apperrors.FieldErrors{}
	content = s.rules.normalize(content, errs)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	ticket = &domain.Ticket{
		Requester:   actor.Username,
		Name:        content.Name,
		Description: content.Description,
		Status:      domain.TicketStatusOpen,
		Priority:    domain.TicketPriorityMedium,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("ticket.id", ticket.ID))
	s.metrics.RecordTicketCreated()

	event := events.NewEvent(events.EventTicketCreated, actor.Username, events.TicketCreatedPayload{
		Requester: ticket.Requester,
		Status:    ticket.Status,
		Priority:  ticket.Priority,
	})
	event.TicketID = ticket.ID
	publish(ctx, s.dispatcher, s.logger, event)
	return ticket, nil
}

// EditTicket replaces the requester-owned fields. Only the requester may edit,
// in any status.
func (s *TicketService) EditTicket(ctx context.Context, actor *domain.Account, id int64, content TicketContent) (ticket *domain.Ticket, err error) {
	ctx, span := tracer().Start(ctx, "TicketService.EditTicket")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.Int64("ticket.id", id))

	ticket, err = s.ownedTicket(ctx, actor, id, "edit_ticket")
	if err != nil {
		return nil, err
	}
	if ticket.Status == domain.TicketStatusClosed {
		s.metrics.RecordDenial("edit_ticket")
		return nil, apperrors.NewForbidden("closed tickets cannot be edited")
	}

	errs := apperrors.FieldErrors{}
	content = s.rules.normalize(content, errs)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	ticket.Name = content.Name
	ticket.Description = content.Description
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, notFoundOr(err, "ticket", id)
	}

	event := events.NewEvent(events.EventTicketEdited, actor.Username, nil)
	event.TicketID = id
	publish(ctx, s.dispatcher, s.logger, event)
	return ticket, nil
}

// DeleteTicket removes a ticket. Only the requester may delete it.
func (s *TicketService) DeleteTicket(ctx context.Context, actor *domain.Account, id int64) (err error) {
	ctx, span := tracer().Start(ctx, "TicketService.DeleteTicket")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.Int64("ticket.id", id))

	if _, err := s.ownedTicket(ctx, actor, id, "delete_ticket"); err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, id); err != nil {
		return notFoundOr(err, "ticket", id)
	}

	event := events.NewEvent(events.EventTicketDeleted, actor.Username, nil)
	event.TicketID = id
	publish(ctx, s.dispatcher, s.logger, event)
	return nil
}

// TransitionTicket sets status and priority. Any ADMIN or MANAGER may move a
// ticket to any status and priority, including reopening a closed ticket.
func (s *TicketService) TransitionTicket(ctx context.Context, actor *domain.Account, id int64, input TransitionInput) (ticket *domain.Ticket, err error) {
	ctx, span := tracer().Start(ctx, "TicketService.TransitionTicket")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.Int64("ticket.id", id))

	if err := auth.Require(actor, auth.LevelAdmin); err != nil {
		s.metrics.RecordDenial("transition_ticket")
		return nil, err
	}

	errs := apperrors.FieldErrors{}
	if input.Status != "" && !input.Status.Valid() {
		errs.Add("status", "status must be one of OPEN, IN_PROGRESS, CLOSED")
	}
	if input.Priority != "" && !input.Priority.Valid() {
		errs.Add("priority", "priority must be one of LOW, MEDIUM, HIGH")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	ticket, err = s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "ticket", id)
	}

	payload := events.TicketTransitionedPayload{
		OldStatus:   ticket.Status,
		NewStatus:   ticket.Status,
		OldPriority: ticket.Priority,
		NewPriority: ticket.Priority,
	}
	if input.Status != "" {
		payload.NewStatus = input.Status
	}
	if input.Priority != "" {
		payload.NewPriority = input.Priority
	}
	ticket.Status = payload.NewStatus
	ticket.Priority = payload.NewPriority

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, notFoundOr(err, "ticket", id)
	}
	if payload.OldStatus != payload.NewStatus {
		s.metrics.RecordTransition(string(payload.NewStatus))
	}

	event := events.NewEvent(events.EventTicketTransitioned, actor.Username, payload)
	event.TicketID = id
	publish(ctx, s.dispatcher, s.logger, event)
	return ticket, nil
}

// ListForRequester returns the actor's own tickets, open before closed.
func (s *TicketService) ListForRequester(ctx context.Context, actor *domain.Account) (*TicketOverview, error) {
	if err := auth.Require(actor, auth.LevelUser); err != nil {
		return nil, err
	}
	tickets, err := s.tickets.ListByRequester(ctx, actor.Username)
	if err != nil {
		return nil, err
	}
	return overviewOf(tickets), nil
}

// Dashboard returns every ticket, open before closed, with status counts. ADMIN and above.
func (s *TicketService) Dashboard(ctx context.Context, actor *domain.Account) (*TicketOverview, error) {
	if err := auth.Require(actor, auth.LevelAdmin); err != nil {
		s.metrics.RecordDenial("dashboard")
		return nil, err
	}
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, err
	}
	return overviewOf(tickets), nil
}

// Report builds the manager breakdown over all tickets.
func (s *TicketService) Report(ctx context.Context, actor *domain.Account) (*domain.TicketReport, error) {
	if err := auth.Require(actor, auth.LevelManager); err != nil {
		s.metrics.RecordDenial("report")
		return nil, err
	}
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, err
	}
	return BuildReport(tickets, s.now()), nil
}

// ownedTicket loads a ticket and checks the actor requested it.
func (s *TicketService) ownedTicket(ctx context.Context, actor *domain.Account, id int64, operation string) (*domain.Ticket, error) {
	if err := auth.Require(actor, auth.LevelUser); err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "ticket", id)
	}
	if ticket.Requester != actor.Username {
		s.metrics.RecordDenial(operation)
		return nil, apperrors.NewForbidden("only the requester may change this ticket")
	}
	return ticket, nil
}

func overviewOf(tickets []domain.Ticket) *TicketOverview {
	return &TicketOverview{
		Tickets: PartitionOpenFirst(tickets),
		Stats:   ComputeStats(tickets),
	}
}
