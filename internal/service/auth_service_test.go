package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-portal/internal/auth"
	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/events"
	"github.com/spec-kit/support-portal/internal/repository"
	apperrors "github.com/spec-kit/support-portal/pkg/util/errorutil"
)

func TestSignupCreatesUser(t *testing.T) {
	p := setupPortal(t)

	account, err := p.auth.Signup(context.Background(), "  alice ", "abc123", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "alice", account.Username)
	assert.Equal(t, domain.RoleUser, account.Role)
	assert.NotEqual(t, "abc123", account.PasswordHash)
}

func TestSignupValidation(t *testing.T) {
	cases := []struct {
		name     string
		username string
		password string
		confirm  string
		field    string
	}{
		{"short password", "bob", "short", "short", "password"},
		{"no digit", "bob", "abcdefg", "abcdefg", "password"},
		{"mismatch", "bob", "abc123", "abc124", "confirm_password"},
		{"short username", "bo", "abc123", "abc123", "username"},
		{"embedded space", "bo b", "abc123", "abc123", "username"},
		{"blank username", "   ", "abc123", "abc123", "username"},
		{"too long for bcrypt", "bob", strings.Repeat("a1", 37), strings.Repeat("a1", 37), "password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := setupPortal(t)
			_, err := p.auth.Signup(context.Background(), tc.username, tc.password, tc.confirm)
			require.Error(t, err)

			domainErr := apperrors.ToDomainError(err)
			assert.Equal(t, apperrors.CodeValidation, domainErr.Code)
			assert.Contains(t, domainErr.Details, tc.field)

			accounts, err := p.accounts.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, accounts)
		})
	}
}

func TestSignupReportsEveryFailingField(t *testing.T) {
	p := setupPortal(t)

	_, err := p.auth.Signup(context.Background(), "bo", "short", "other")
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeValidation, domainErr.Code)
	assert.Len(t, domainErr.Details, 3)
}

func TestSignupRejectedThenRetriedScenario(t *testing.T) {
	p := setupPortal(t)
	ctx := context.Background()

	_, err := p.auth.Signup(ctx, "bob", "short", "short")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	_, err = p.auth.Signup(ctx, "bob", "abc123", "abc999")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	account, err := p.auth.Signup(ctx, "bob", "abc123", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "bob", account.Username)
}

func TestSignupDuplicateIsConflict(t *testing.T) {
	p := setupPortal(t)
	p.signup(t, "alice")

	_, err := p.auth.Signup(context.Background(), "alice", "xyz789", "xyz789")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
}

func TestSignupPropagatesStoreFailure(t *testing.T) {
	accounts := &fakeAccounts{
		AccountRepository: repository.NewMemoryAccountRepository(),
		createFn: func(context.Context, *domain.Account) error {
			return errConnRefused
		},
	}
	p := setupPortalWith(t, accounts, repository.NewMemoryTicketRepository())

	_, err := p.auth.Signup(context.Background(), "alice", "abc123", "abc123")
	assert.Same(t, errConnRefused, err)
}

func TestLogin(t *testing.T) {
	p := setupPortal(t)
	p.signup(t, "alice")
	ctx := context.Background()

	token, session, err := p.auth.Login(ctx, " alice ", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "alice", session.Subject)
	assert.Equal(t, p.tokens.TTL(), session.ExpiresAt.Sub(session.IssuedAt))

	verified, err := p.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", verified.Subject)

	_, session, err = p.auth.Login(ctx, "al ice", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "alice", session.Subject)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	p := setupPortal(t)
	p.signup(t, "alice")
	ctx := context.Background()

	_, _, wrongPassword := p.auth.Login(ctx, "alice", "wrong1")
	_, _, unknownUser := p.auth.Login(ctx, "mallory", "abc123")

	require.Error(t, wrongPassword)
	require.Error(t, unknownUser)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
	assert.True(t, apperrors.IsCode(wrongPassword, apperrors.CodeUnauthorized))
	assert.True(t, apperrors.IsCode(unknownUser, apperrors.CodeUnauthorized))
}

func TestLoginPropagatesStoreFailure(t *testing.T) {
	accounts := &fakeAccounts{
		AccountRepository: repository.NewMemoryAccountRepository(),
		getByUsernameFn: func(context.Context, string) (*domain.Account, error) {
			return nil, errConnRefused
		},
	}
	p := setupPortalWith(t, accounts, repository.NewMemoryTicketRepository())

	_, _, err := p.auth.Login(context.Background(), "alice", "abc123")
	assert.Same(t, errConnRefused, err)
}

func TestLogoutIsNoop(t *testing.T) {
	p := setupPortal(t)
	assert.NoError(t, p.auth.Logout(context.Background()))
}

func TestChangePassword(t *testing.T) {
	p := setupPortal(t)
	alice := p.signup(t, "alice")
	ctx := context.Background()

	err := p.auth.ChangePassword(ctx, alice, "wrong1", "newpass1", "newpass1")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	err = p.auth.ChangePassword(ctx, alice, "abc123", "nodigits", "nodigits")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	require.NoError(t, p.auth.ChangePassword(ctx, alice, "abc123", "newpass1", "newpass1"))

	_, _, err = p.auth.Login(ctx, "alice", "abc123")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
	_, _, err = p.auth.Login(ctx, "alice", "newpass1")
	assert.NoError(t, err)
}

func TestChangePasswordRequiresSession(t *testing.T) {
	p := setupPortal(t)
	err := p.auth.ChangePassword(context.Background(), nil, "abc123", "newpass1", "newpass1")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
}

func TestDeleteAccount(t *testing.T) {
	p := setupPortal(t)
	alice := p.signup(t, "alice")
	ctx := context.Background()

	ticket, err := p.ticketSvc.CreateTicket(ctx, alice, validContent())
	require.NoError(t, err)

	err = p.auth.DeleteAccount(ctx, alice, "wrong1")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
	_, err = p.accounts.GetByUsername(ctx, "alice")
	require.NoError(t, err)

	require.NoError(t, p.auth.DeleteAccount(ctx, alice, "abc123"))
	_, err = p.accounts.GetByUsername(ctx, "alice")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = p.tickets.GetByID(ctx, ticket.ID)
	assert.NoError(t, err, "tickets outlive their requester")

	last := p.published[len(p.published)-1]
	assert.Equal(t, events.EventAccountDeleted, last.Type)
	assert.Equal(t, alice.ID, last.AccountID)
}

func TestDeletedAccountTokenDoesNotOpenReusedUsername(t *testing.T) {
	p := setupPortal(t)
	ctx := context.Background()
	resolver := auth.NewSessionResolver(p.tokens, p.accounts, nil)

	original := p.signup(t, "alice")
	oldToken, _, err := p.auth.Login(ctx, "alice", "abc123")
	require.NoError(t, err)
	assert.True(t, resolver.Resolve(ctx, oldToken).Authenticated())

	require.NoError(t, p.auth.DeleteAccount(ctx, original, "abc123"))
	_, err = p.auth.Signup(ctx, "alice", "other99", "other99")
	require.NoError(t, err)

	principal := resolver.Resolve(ctx, oldToken)
	assert.False(t, principal.Authenticated())

	newToken, _, err := p.auth.Login(ctx, "alice", "other99")
	require.NoError(t, err)
	fresh := resolver.Resolve(ctx, newToken)
	require.True(t, fresh.Authenticated())
	assert.NotEqual(t, original.ID, fresh.Account.ID)
}

func TestCredentialChecksUseStoredHash(t *testing.T) {
	p := setupPortal(t)
	ctx := context.Background()
	alice := p.signup(t, "alice")

	// Session principals served from the identity cache carry no hash.
	identity := *alice
	identity.PasswordHash = ""

	require.NoError(t, p.auth.ChangePassword(ctx, &identity, "abc123", "newpass1", "newpass1"))
	_, _, err := p.auth.Login(ctx, "alice", "newpass1")
	require.NoError(t, err)

	require.NoError(t, p.auth.DeleteAccount(ctx, &identity, "newpass1"))
	_, err = p.accounts.GetByUsername(ctx, "alice")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
