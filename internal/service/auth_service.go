package service

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/auth"
	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/events"
	"github.com/spec-kit/support-portal/internal/observability"
	"github.com/spec-kit/support-portal/internal/repository"
	apperrors "github.com/spec-kit/support-portal/pkg/util/errorutil"
)

// invalidCredentials is the only message a failed login or re-confirmation produces.
const invalidCredentials = "invalid credentials"

// AuthService coordinates signup, login and self-service account flows.
type AuthService struct {
	accounts   repository.AccountRepository
	hasher     *auth.PasswordHasher
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	Accounts   repository.AccountRepository
	Hasher     *auth.PasswordHasher
	Tokens     *auth.TokenManager
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		accounts:   deps.Accounts,
		hasher:     deps.Hasher,
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// Signup registers a USER account. Nothing is written unless every field passes.
func (s *AuthService) Signup(ctx context.Context, username, password, confirm string) (account *domain.Account, err error) {
	ctx, span := tracer().Start(ctx, "AuthService.Signup")
	defer func() {
		s.metrics.RecordAuth("signup", err == nil)
		endSpan(span, err)
	}()

	errs := apperrors.FieldErrors{}
	username = normalizeUsername(username, errs)
	validateNewPassword("password", password, confirm, errs)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	account = &domain.Account{
		Username:     username,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("username already taken", map[string]any{"username": username})
		}
		return nil, err
	}

	span.SetAttributes(attribute.Int64("account.id", account.ID))
	s.logger.Info("account created", zap.String("username", username))
	return account, nil
}

// Login checks credentials and issues a session token. Unknown usernames and
// wrong passwords produce the same error after the same amount of hashing work.
func (s *AuthService) Login(ctx context.Context, username, password string) (token string, session domain.Session, err error) {
	ctx, span := tracer().Start(ctx, "AuthService.Login")
	defer func() {
		s.metrics.RecordAuth("login", err == nil)
		endSpan(span, err)
	}()

	// Usernames never contain spaces, so any typed into the login form are dropped.
	username = strings.ReplaceAll(username, " ", "")
	account, err := s.accounts.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.hasher.Verify(password, "")
		s.logger.Info("login rejected", zap.String("username", username))
		return "", domain.Session{}, apperrors.NewUnauthorized(invalidCredentials)
	case err != nil:
		return "", domain.Session{}, err
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		s.logger.Info("login rejected", zap.String("username", username))
		return "", domain.Session{}, apperrors.NewUnauthorized(invalidCredentials)
	}

	return s.tokens.Issue(account.Username, account.ID)
}

// Logout is a no-op on the server. Tokens are stateless and the client discards its copy.
func (s *AuthService) Logout(_ context.Context) error {
	return nil
}

// ChangePassword replaces the actor's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, actor *domain.Account, current, newPassword, confirm string) (err error) {
	ctx, span := tracer().Start(ctx, "AuthService.ChangePassword")
	defer func() { endSpan(span, err) }()

	stored, err := s.storedAccount(ctx, actor)
	if err != nil {
		return err
	}

	errs := apperrors.FieldErrors{}
	if !s.hasher.Verify(current, stored.PasswordHash) {
		errs.Add("current_password", "current password is incorrect")
	}
	validateNewPassword("new_password", newPassword, confirm, errs)
	if err := errs.Err(); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	stored.PasswordHash = hash
	if err := s.accounts.Update(ctx, stored); err != nil {
		return notFoundOr(err, "account", actor.ID)
	}
	s.logger.Info("password changed", zap.String("username", actor.Username))
	return nil
}

// DeleteAccount removes the actor's own account after password re-confirmation.
// Tickets the account requested are left in place; existing tokens stop
// resolving because the subject no longer exists.
func (s *AuthService) DeleteAccount(ctx context.Context, actor *domain.Account, password string) (err error) {
	ctx, span := tracer().Start(ctx, "AuthService.DeleteAccount")
	defer func() { endSpan(span, err) }()

	stored, err := s.storedAccount(ctx, actor)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(password, stored.PasswordHash) {
		return apperrors.NewUnauthorized(invalidCredentials)
	}
	if err := s.accounts.Delete(ctx, actor.ID); err != nil {
		return notFoundOr(err, "account", actor.ID)
	}

	event := events.NewEvent(events.EventAccountDeleted, actor.Username, nil)
	event.AccountID = actor.ID
	publish(ctx, s.dispatcher, s.logger, event)
	s.logger.Info("account deleted", zap.String("username", actor.Username))
	return nil
}

// storedAccount reloads the actor from the store. Session principals may come
// from the identity cache, which holds no password hash.
func (s *AuthService) storedAccount(ctx context.Context, actor *domain.Account) (*domain.Account, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	stored, err := s.accounts.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, notFoundOr(err, "account", actor.ID)
	}
	return stored, nil
}

// TokenManager exposes the token manager so the HTTP layer can build the session middleware.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}
