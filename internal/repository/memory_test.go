package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-portal/internal/domain"
)

func TestMemoryAccountRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAccountRepository()

	alice := &domain.Account{Username: "alice", PasswordHash: "h", Role: domain.RoleUser}
	require.NoError(t, repo.Create(ctx, alice))
	assert.Equal(t, int64(1), alice.ID)

	assert.ErrorIs(t, repo.Create(ctx, &domain.Account{Username: "alice"}), ErrDuplicate)
	require.NoError(t, repo.Create(ctx, &domain.Account{Username: "Alice"}), "usernames are case-sensitive")

	alice.Role = domain.RoleAdmin
	require.NoError(t, repo.Update(ctx, alice))
	found, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, found.Role)

	found.Role = domain.RoleManager
	again, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, again.Role, "returned accounts are copies")

	require.NoError(t, repo.Delete(ctx, alice.ID))
	_, err = repo.GetByUsername(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, alice.ID), ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, alice), ErrNotFound)
}

func TestMemoryTicketRepositoryKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTicketRepository()

	for _, requester := range []string{"alice", "bob", "alice"} {
		require.NoError(t, repo.Create(ctx, &domain.Ticket{Requester: requester, Status: domain.TicketStatusOpen}))
	}

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{all[0].ID, all[1].ID, all[2].ID})

	mine, err := repo.ListByRequester(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, int64(3), mine[1].ID)

	require.NoError(t, repo.Delete(ctx, 2))
	_, err = repo.GetByID(ctx, 2)
	assert.ErrorIs(t, err, ErrNotFound)

	next := &domain.Ticket{Requester: "carol"}
	require.NoError(t, repo.Create(ctx, next))
	assert.Equal(t, int64(4), next.ID, "ids are never reused")
}
