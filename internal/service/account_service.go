package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/auth"
	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/events"
	"github.com/spec-kit/support-portal/internal/observability"
	"github.com/spec-kit/support-portal/internal/repository"
	apperrors "github.com/spec-kit/support-portal/pkg/util/errorutil"
)

// AccountService manages roles on behalf of managers.
type AccountService struct {
	accounts   repository.AccountRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewAccountService constructs the service.
func NewAccountService(accounts repository.AccountRepository, dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{accounts: accounts, dispatcher: dispatcher, metrics: metrics, logger: logger}
}

// SetRole promotes or demotes the target account. Only a MANAGER may do this
// and never to lower their own role.
func (s *AccountService) SetRole(ctx context.Context, actor *domain.Account, targetID int64, role domain.Role) (account *domain.Account, err error) {
	ctx, span := tracer().Start(ctx, "AccountService.SetRole")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.Int64("account.id", targetID), attribute.String("account.role", string(role)))

	if err := auth.Require(actor, auth.LevelManager); err != nil {
		s.metrics.RecordDenial("set_role")
		return nil, err
	}

	target, err := s.accounts.GetByID(ctx, targetID)
	if err != nil {
		return nil, notFoundOr(err, "account", targetID)
	}
	if err := auth.CanAssignRole(actor, target, role); err != nil {
		if apperrors.IsCode(err, apperrors.CodeForbidden) {
			s.metrics.RecordDenial("set_role")
		}
		return nil, err
	}

	return s.applyRole(ctx, actor.Username, target, role)
}

// AssignRole sets a role by username without the in-app gate. It backs the
// operator CLI, which already holds database credentials, and is how the
// first MANAGER gets created.
func (s *AccountService) AssignRole(ctx context.Context, username string, role domain.Role) (*domain.Account, error) {
	if !role.Valid() {
		return nil, apperrors.NewFieldError("role", "role must be one of USER, ADMIN, MANAGER")
	}
	target, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("account", map[string]any{"username": username})
		}
		return nil, err
	}
	return s.applyRole(ctx, "operator", target, role)
}

// ListAccounts returns every account for the user-management view.
func (s *AccountService) ListAccounts(ctx context.Context, actor *domain.Account) ([]domain.Account, error) {
	if err := auth.Require(actor, auth.LevelManager); err != nil {
		s.metrics.RecordDenial("list_accounts")
		return nil, err
	}
	return s.accounts.List(ctx)
}

func (s *AccountService) applyRole(ctx context.Context, actorName string, target *domain.Account, role domain.Role) (*domain.Account, error) {
	oldRole := target.Role
	if oldRole == role {
		return target, nil
	}
	target.Role = role
	if err := s.accounts.Update(ctx, target); err != nil {
		return nil, notFoundOr(err, "account", target.ID)
	}

	event := events.NewEvent(events.EventAccountRoleChanged, actorName, events.AccountRoleChangedPayload{
		Username: target.Username,
		OldRole:  oldRole,
		NewRole:  role,
	})
	event.AccountID = target.ID
	publish(ctx, s.dispatcher, s.logger, event)

	s.logger.Info("role changed",
		zap.String("actor", actorName),
		zap.String("username", target.Username),
		zap.String("old_role", string(oldRole)),
		zap.String("new_role", string(role)))
	return target, nil
}
