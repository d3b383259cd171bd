package auth

import (
	"github.com/spec-kit/support-portal/internal/domain"
	apperrors "github.com/spec-kit/support-portal/pkg/util/errorutil"
)

// Level is the ordinal authorization rank derived from an account role.
type Level int

const (
	LevelAnonymous Level = iota - 1
	LevelUser
	LevelAdmin
	LevelManager
)

func (l Level) String() string {
	switch l {
	case LevelUser:
		return "user"
	case LevelAdmin:
		return "admin"
	case LevelManager:
		return "manager"
	}
	return "anonymous"
}

var roleLevels = map[domain.Role]Level{
	domain.RoleUser:    LevelUser,
	domain.RoleAdmin:   LevelAdmin,
	domain.RoleManager: LevelManager,
}

// LevelOfRole maps a role to its level. Unknown roles rank as USER.
func LevelOfRole(role domain.Role) Level {
	if level, ok := roleLevels[role]; ok {
		return level
	}
	return LevelUser
}

// LevelOf returns the level of account; nil is anonymous.
func LevelOf(account *domain.Account) Level {
	if account == nil {
		return LevelAnonymous
	}
	return LevelOfRole(account.Role)
}

// AtLeast reports whether account passes a gate requiring level.
func AtLeast(account *domain.Account, required Level) bool {
	return LevelOf(account) >= required
}

// Require returns a Forbidden error unless account passes the gate.
func Require(account *domain.Account, required Level) error {
	if account == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !AtLeast(account, required) {
		return apperrors.NewForbidden(required.String() + " access required")
	}
	return nil
}

// CanAssignRole gates role promotion and demotion. Only a MANAGER may change
// roles, and a MANAGER may not lower their own role so the portal always keeps
// the manager that made the change.
func CanAssignRole(actor, target *domain.Account, newRole domain.Role) error {
	if err := Require(actor, LevelManager); err != nil {
		return err
	}
	if !newRole.Valid() {
		return apperrors.NewFieldError("role", "role must be one of USER, ADMIN, MANAGER")
	}
	if target != nil && actor.ID == target.ID && LevelOfRole(newRole) < LevelManager {
		return apperrors.NewForbidden("managers cannot demote themselves")
	}
	return nil
}
