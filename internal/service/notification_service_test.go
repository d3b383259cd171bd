package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/events"
)

func TestNotificationServiceLogsEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewNotificationService(zap.New(core))

	event := events.NewEvent(events.EventAccountRoleChanged, "boss", events.AccountRoleChangedPayload{
		Username: "alice",
		OldRole:  domain.RoleUser,
		NewRole:  domain.RoleAdmin,
	})
	event.AccountID = 7
	require.NoError(t, n.Handle(context.Background(), event))

	entries := logs.FilterMessage(string(events.EventAccountRoleChanged)).All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(7), entries[0].ContextMap()["account_id"])
	assert.Equal(t, "boss", entries[0].ContextMap()["actor"])
	assert.Len(t, n.EventTypes(), 6)
}
