package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/support-portal/internal/events"
	"github.com/spec-kit/support-portal/internal/service"
)

func TestWorkerDeliversQueuedEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	w := NewNotificationWorker(service.NewNotificationService(zap.New(core)), nil, 8)
	w.Start(dispatcher)

	created := events.NewEvent(events.EventTicketCreated, "alice", nil)
	created.TicketID = 1
	require.NoError(t, dispatcher.Publish(context.Background(), created))
	require.NoError(t, dispatcher.Publish(context.Background(), events.NewEvent(events.EventAccountDeleted, "bob", nil)))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, w.Stop(ctx))

	assert.Equal(t, 1, logs.FilterMessage(string(events.EventTicketCreated)).Len())
	assert.Equal(t, 1, logs.FilterMessage(string(events.EventAccountDeleted)).Len())
}

func TestWorkerDropsWhenFullAndIgnoresAfterStop(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	w := NewNotificationWorker(service.NewNotificationService(nil), zap.New(core), 1)

	// Not started, so nothing drains the queue.
	require.NoError(t, w.enqueue(context.Background(), events.NewEvent(events.EventTicketEdited, "alice", nil)))
	require.NoError(t, w.enqueue(context.Background(), events.NewEvent(events.EventTicketEdited, "alice", nil)))
	assert.Equal(t, 1, logs.FilterMessage("notification queue full; dropping event").Len())

	w.wg.Add(1)
	go w.drain()
	require.NoError(t, w.Stop(context.Background()))
	assert.NoError(t, w.enqueue(context.Background(), events.NewEvent(events.EventTicketEdited, "alice", nil)))
}
