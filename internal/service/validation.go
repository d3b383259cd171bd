package service

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spec-kit/support-portal/internal/config"
	apperrors "github.com/spec-kit/support-portal/pkg/util/errorutil"
)

const (
	minUsernameLen = 3
	minPasswordLen = 6
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

// ContentRules bounds requester-owned ticket fields.
type ContentRules struct {
	DescriptionMinLen int
	DescriptionMaxLen int
	NameMaxLen        int
}

// DefaultContentRules mirrors the configuration defaults.
func DefaultContentRules() ContentRules {
	return ContentRules{DescriptionMinLen: 25, DescriptionMaxLen: 250, NameMaxLen: 100}
}

// ContentRulesFrom builds rules from configuration, falling back to defaults for unset bounds.
func ContentRulesFrom(cfg config.TicketConfig) ContentRules {
	rules := DefaultContentRules()
	if cfg.DescriptionMinLen > 0 {
		rules.DescriptionMinLen = cfg.DescriptionMinLen
	}
	if cfg.DescriptionMaxLen > 0 {
		rules.DescriptionMaxLen = cfg.DescriptionMaxLen
	}
	if cfg.NameMaxLen > 0 {
		rules.NameMaxLen = cfg.NameMaxLen
	}
	return rules
}

// TicketContent is the requester-owned part of a ticket.
type TicketContent struct {
	Name        string
	Description string
}

// normalize trims both fields and records any bound violations.
func (r ContentRules) normalize(content TicketContent, errs apperrors.FieldErrors) TicketContent {
	name := strings.TrimSpace(content.Name)
	description := strings.TrimSpace(content.Description)

	switch {
	case name == "":
		errs.Add("name", "name is required")
	case utf8.RuneCountInString(name) > r.NameMaxLen:
		errs.Add("name", "name is too long")
	}

	length := utf8.RuneCountInString(description)
	switch {
	case length == 0:
		errs.Add("description", "description is required")
	case length < r.DescriptionMinLen || length > r.DescriptionMaxLen:
		errs.Add("description", describeBounds(r.DescriptionMinLen, r.DescriptionMaxLen))
	}
	return TicketContent{Name: name, Description: description}
}

func describeBounds(minLen, maxLen int) string {
	return fmt.Sprintf("description must be between %d and %d characters", minLen, maxLen)
}

// normalizeUsername trims surrounding whitespace and validates the result.
func normalizeUsername(raw string, errs apperrors.FieldErrors) string {
	username := strings.TrimSpace(raw)
	switch {
	case username == "":
		errs.Add("username", "username is required")
	case strings.IndexFunc(username, unicode.IsSpace) >= 0:
		errs.Add("username", "username must not contain spaces")
	case utf8.RuneCountInString(username) < minUsernameLen:
		errs.Add("username", "username must be at least 3 characters")
	}
	return username
}

// validateNewPassword applies the password policy to a new password and its confirmation.
func validateNewPassword(field, password, confirm string, errs apperrors.FieldErrors) {
	switch {
	case utf8.RuneCountInString(password) < minPasswordLen:
		errs.Add(field, "password must be at least 6 characters")
	case len(password) > maxPasswordBytes:
		errs.Add(field, "password must be at most 72 bytes")
	case strings.IndexFunc(password, unicode.IsDigit) < 0:
		errs.Add(field, "password must contain at least one digit")
	}
	if password != confirm {
		errs.Add("confirm_password", "passwords do not match")
	}
}
