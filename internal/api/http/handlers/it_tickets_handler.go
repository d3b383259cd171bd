package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-portal/internal/api/dto"
	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/service"
)

// ITTicketsHandler serves the privileged IT dashboard.
type ITTicketsHandler struct {
	service *service.TicketService
}

// NewITTicketsHandler constructs handler.
func NewITTicketsHandler(ticketService *service.TicketService) *ITTicketsHandler {
	return &ITTicketsHandler{service: ticketService}
}

// Dashboard GET /it/tickets.
func (h *ITTicketsHandler) Dashboard(c *fiber.Ctx) error {
	overview, err := h.service.Dashboard(c.UserContext(), actor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketListResponse(overview.Tickets, overview.Stats)})
}

// Transition PATCH /it/tickets/:id.
func (h *ITTicketsHandler) Transition(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.TransitionTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.TransitionTicket(c.UserContext(), actor(c), id, service.TransitionInput{
		Status:   domain.TicketStatus(strings.ToUpper(strings.TrimSpace(req.Status))),
		Priority: domain.TicketPriority(strings.ToUpper(strings.TrimSpace(req.Priority))),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}
