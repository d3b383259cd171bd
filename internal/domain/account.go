package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Role enumerates the account roles known to the portal.
type Role string

const (
	RoleUser    Role = "USER"
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
)

// Valid reports whether the role is one of the enumerated values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleManager:
		return true
	}
	return false
}

// ParseRole accepts a role name (any case) or its numeric level.
func ParseRole(raw string) (Role, error) {
	val := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(val); err == nil {
		switch n {
		case 0:
			return RoleUser, nil
		case 1:
			return RoleAdmin, nil
		case 2:
			return RoleManager, nil
		}
		return "", fmt.Errorf("unknown role level %d", n)
	}
	role := Role(strings.ToUpper(val))
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", raw)
	}
	return role, nil
}

// Account is a portal login. Role defaults to USER at signup.
type Account struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
