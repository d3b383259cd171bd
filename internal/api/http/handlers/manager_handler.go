package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-portal/internal/api/dto"
	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/service"
	apperrors "github.com/spec-kit/support-portal/pkg/util/errorutil"
)

// ManagerHandler serves reporting and user management.
type ManagerHandler struct {
	tickets  *service.TicketService
	accounts *service.AccountService
}

// NewManagerHandler constructs handler.
func NewManagerHandler(tickets *service.TicketService, accounts *service.AccountService) *ManagerHandler {
	return &ManagerHandler{tickets: tickets, accounts: accounts}
}

// Report GET /manager/report.
func (h *ManagerHandler) Report(c *fiber.Ctx) error {
	report, err := h.tickets.Report(c.UserContext(), actor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewReportResponse(report)})
}

// ListAccounts GET /manager/accounts.
func (h *ManagerHandler) ListAccounts(c *fiber.Ctx) error {
	accounts, err := h.accounts.ListAccounts(c.UserContext(), actor(c))
	if err != nil {
		return err
	}
	items := make([]dto.AccountResponse, 0, len(accounts))
	for i := range accounts {
		items = append(items, dto.NewAccountResponse(&accounts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// SetRole PUT /manager/accounts/:id/role.
func (h *ManagerHandler) SetRole(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.SetRoleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return apperrors.NewFieldError("role", err.Error())
	}
	account, err := h.accounts.SetRole(c.UserContext(), actor(c), id, role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAccountResponse(account)})
}
