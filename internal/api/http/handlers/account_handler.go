package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-portal/internal/api/dto"
	"github.com/spec-kit/support-portal/internal/service"
)

// AccountHandler serves self-service account endpoints.
type AccountHandler struct {
	service    *service.AuthService
	cookieName string
}

// NewAccountHandler constructs handler.
func NewAccountHandler(authService *service.AuthService, cookieName string) *AccountHandler {
	return &AccountHandler{service: authService, cookieName: cookieName}
}

// Me GET /account.
func (h *AccountHandler) Me(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": dto.NewAccountResponse(actor(c))})
}

// ChangePassword POST /account/password.
func (h *AccountHandler) ChangePassword(c *fiber.Ctx) error {
	var req dto.ChangePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.service.ChangePassword(c.UserContext(), actor(c), req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteAccount DELETE /account.
func (h *AccountHandler) DeleteAccount(c *fiber.Ctx) error {
	var req dto.DeleteAccountRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.service.DeleteAccount(c.UserContext(), actor(c), req.Password); err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{Name: h.cookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), HTTPOnly: true})
	return c.SendStatus(fiber.StatusNoContent)
}
