package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/events"
	"github.com/spec-kit/support-portal/internal/service"
)

// DefaultQueueSize bounds how many events may wait for the notifier.
const DefaultQueueSize = 256

// NotificationWorker moves notification handling off the request path. Events
// are queued by the dispatcher and drained by a single goroutine. When the
// queue is full the event is dropped and logged; notifications are best effort.
type NotificationWorker struct {
	notifier *service.NotificationService
	logger   *zap.Logger
	queue    chan queuedEvent

	wg       sync.WaitGroup
	stopOnce sync.Once
	mu       sync.RWMutex
	stopped  bool
}

type queuedEvent struct {
	ctx   context.Context
	event events.Event
}

// NewNotificationWorker builds a worker with a queue of size bufferSize.
func NewNotificationWorker(notifier *service.NotificationService, logger *zap.Logger, bufferSize int) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bufferSize <= 0 {
		bufferSize = DefaultQueueSize
	}
	return &NotificationWorker{
		notifier: notifier,
		logger:   logger,
		queue:    make(chan queuedEvent, bufferSize),
	}
}

// Start subscribes the worker to the dispatcher and begins draining.
func (w *NotificationWorker) Start(dispatcher events.Dispatcher) {
	for _, eventType := range w.notifier.EventTypes() {
		dispatcher.Subscribe(eventType, w.enqueue)
	}
	w.wg.Add(1)
	go w.drain()
}

// Stop closes the queue and waits for queued events to be handled or ctx to end.
func (w *NotificationWorker) Stop(ctx context.Context) error {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.stopped = true
		close(w.queue)
		w.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *NotificationWorker) enqueue(ctx context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return nil
	}
	select {
	case w.queue <- queuedEvent{ctx: context.WithoutCancel(ctx), event: event}:
	default:
		w.logger.Warn("notification queue full; dropping event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
	}
	return nil
}

func (w *NotificationWorker) drain() {
	defer w.wg.Done()
	for item := range w.queue {
		if err := w.notifier.Handle(item.ctx, item.event); err != nil {
			w.logger.Warn("notification failed", zap.String("event_id", item.event.ID), zap.Error(err))
		}
	}
}
