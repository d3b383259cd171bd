package dto

import (
	"time"

	"github.com/spec-kit/support-portal/internal/domain"
)

// AccountResponse is the public view of an account. The password hash never leaves the service.
type AccountResponse struct {
	ID        int64       `json:"id"`
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

// SetRoleRequest accepts a role name or level number.
type SetRoleRequest struct {
	Role string `json:"role" form:"role"`
}

// NewAccountResponse maps a domain account.
func NewAccountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:        account.ID,
		Username:  account.Username,
		Role:      account.Role,
		CreatedAt: account.CreatedAt,
	}
}
