package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/events"
	apperrors "github.com/spec-kit/support-portal/pkg/util/errorutil"
)

func TestSetRoleIsManagerOnly(t *testing.T) {
	p := setupPortal(t)
	ctx := context.Background()
	alice := p.signup(t, "alice")
	bob := p.signup(t, "bob")

	_, err := p.roles.SetRole(ctx, alice, bob.ID, domain.RoleAdmin)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	_, err = p.roles.AssignRole(ctx, "alice", domain.RoleAdmin)
	require.NoError(t, err)
	_, err = p.roles.SetRole(ctx, p.reload(t, alice), bob.ID, domain.RoleAdmin)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden), "ADMIN cannot promote")

	_, err = p.roles.SetRole(ctx, nil, bob.ID, domain.RoleAdmin)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
}

func TestSetRolePromotesAndDemotes(t *testing.T) {
	p := setupPortal(t)
	ctx := context.Background()
	boss := p.manager(t, "boss")
	bob := p.signup(t, "bob")

	updated, err := p.roles.SetRole(ctx, boss, bob.ID, domain.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, updated.Role)

	updated, err = p.roles.SetRole(ctx, boss, bob.ID, domain.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, p.reload(t, bob).Role)
	assert.Equal(t, domain.RoleUser, updated.Role)

	last := p.published[len(p.published)-1]
	assert.Equal(t, events.EventAccountRoleChanged, last.Type)
	payload, ok := last.Payload.(events.AccountRoleChangedPayload)
	require.True(t, ok)
	assert.Equal(t, domain.RoleManager, payload.OldRole)
	assert.Equal(t, domain.RoleUser, payload.NewRole)
}

func TestManagerCannotDemoteSelf(t *testing.T) {
	p := setupPortal(t)
	ctx := context.Background()
	boss := p.manager(t, "boss")

	for _, role := range []domain.Role{domain.RoleUser, domain.RoleAdmin} {
		_, err := p.roles.SetRole(ctx, boss, boss.ID, role)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
	}
	assert.Equal(t, domain.RoleManager, p.reload(t, boss).Role)
}

func TestSetRoleErrors(t *testing.T) {
	p := setupPortal(t)
	ctx := context.Background()
	boss := p.manager(t, "boss")
	bob := p.signup(t, "bob")

	_, err := p.roles.SetRole(ctx, boss, 404, domain.RoleAdmin)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	_, err = p.roles.SetRole(ctx, boss, bob.ID, domain.Role("ROOT"))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, err = p.roles.AssignRole(ctx, "ghost", domain.RoleAdmin)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestListAccounts(t *testing.T) {
	p := setupPortal(t)
	ctx := context.Background()
	alice := p.signup(t, "alice")
	boss := p.manager(t, "boss")

	_, err := p.roles.ListAccounts(ctx, alice)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	accounts, err := p.roles.ListAccounts(ctx, boss)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "alice", accounts[0].Username)
}
