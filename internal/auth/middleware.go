package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/repository"
)

const principalKey = "auth_principal"

type principalCtxKey struct{}

// Principal represents the caller of a request. Account is nil for anonymous callers.
type Principal struct {
	Account *domain.Account
	Session domain.Session
}

// Authenticated reports whether the request carried a valid session for an existing account.
func (p *Principal) Authenticated() bool {
	return p != nil && p.Account != nil
}

// Level returns the caller's permission level.
func (p *Principal) Level() Level {
	if p == nil {
		return LevelAnonymous
	}
	return LevelOf(p.Account)
}

// Username returns the subject username or "" for anonymous callers.
func (p *Principal) Username() string {
	if !p.Authenticated() {
		return ""
	}
	return p.Account.Username
}

var anonymous = &Principal{}

// SessionResolver turns a raw bearer token into a Principal.
type SessionResolver struct {
	tokens   *TokenManager
	accounts repository.AccountRepository
	logger   *zap.Logger
}

// NewSessionResolver constructs the resolver.
func NewSessionResolver(tokens *TokenManager, accounts repository.AccountRepository, logger *zap.Logger) *SessionResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionResolver{tokens: tokens, accounts: accounts, logger: logger}
}

// Resolve verifies the token and looks up the account fresh so role changes
// apply on the next request. Any failure yields the anonymous principal.
func (r *SessionResolver) Resolve(ctx context.Context, rawToken string) *Principal {
	if rawToken == "" {
		return anonymous
	}
	session, err := r.tokens.Verify(rawToken)
	if err != nil {
		return anonymous
	}
	account, err := r.accounts.GetByUsername(ctx, session.Subject)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			r.logger.Error("session account lookup failed", zap.String("subject", session.Subject), zap.Error(err))
		}
		return anonymous
	}
	if account.ID != session.AccountID {
		return anonymous
	}
	return &Principal{Account: account, Session: session}
}

// SessionMiddleware extracts the token from the cookie or Authorization header.
type SessionMiddleware struct {
	resolver   *SessionResolver
	cookieName string
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(resolver *SessionResolver, cookieName string) *SessionMiddleware {
	if cookieName == "" {
		cookieName = "access_token"
	}
	return &SessionMiddleware{resolver: resolver, cookieName: cookieName}
}

// Handle resolves the principal and stores it on the request. It never rejects.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	principal := m.resolver.Resolve(c.UserContext(), m.rawToken(c))
	c.Locals(principalKey, principal)
	c.SetUserContext(ContextWithPrincipal(c.UserContext(), principal))
	return c.Next()
}

func (m *SessionMiddleware) rawToken(c *fiber.Ctx) string {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Cookies(m.cookieName)
}

// PrincipalFromContext retrieves the caller; anonymous when the middleware did not run.
func PrincipalFromContext(c *fiber.Ctx) *Principal {
	if principal, ok := c.Locals(principalKey).(*Principal); ok && principal != nil {
		return principal
	}
	return anonymous
}

// ContextWithPrincipal attaches principal to ctx.
func ContextWithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, principal)
}

// PrincipalFrom returns the principal stored in ctx, or anonymous.
func PrincipalFrom(ctx context.Context) *Principal {
	if principal, ok := ctx.Value(principalCtxKey{}).(*Principal); ok && principal != nil {
		return principal
	}
	return anonymous
}
