package worker

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/strategy-hub/internal/events"
)

// ErrQueueFull is returned to the dispatcher when an event cannot be buffered.
var ErrQueueFull = errors.New("notification queue full")

// EventHandler processes one event off the request path.
type EventHandler interface {
	Handle(ctx context.Context, event events.Event) error
}

// NotificationWorker buffers dispatched events and hands them to a handler on
// its own goroutine, so sign-in and logout never wait on notification work.
type NotificationWorker struct {
	handler EventHandler
	queue   chan events.Event
	logger  *zap.Logger
}

// NewNotificationWorker creates a worker with room for buffer pending events.
func NewNotificationWorker(handler EventHandler, buffer int, logger *zap.Logger) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = 1
	}
	return &NotificationWorker{
		handler: handler,
		queue:   make(chan events.Event, buffer),
		logger:  logger,
	}
}

// Subscribe routes the given event types from d into the worker queue.
func (w *NotificationWorker) Subscribe(d events.Dispatcher, types ...events.EventType) {
	for _, t := range types {
		d.Subscribe(t, w.enqueue)
	}
}

// enqueue never blocks; a full queue drops the event.
func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run delivers events until ctx is done, then drains what is already queued.
func (w *NotificationWorker) Run(ctx context.Context) {
	for {
		select {
		case event := <-w.queue:
			w.deliver(ctx, event)
		case <-ctx.Done():
			w.drain()
			return
		}
	}
}

func (w *NotificationWorker) drain() {
	for {
		select {
		case event := <-w.queue:
			w.deliver(context.Background(), event)
		default:
			return
		}
	}
}

func (w *NotificationWorker) deliver(ctx context.Context, event events.Event) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("notification handler panicked", zap.String("event_id", event.ID), zap.Any("panic", r))
		}
	}()
	if err := w.handler.Handle(ctx, event); err != nil {
		w.logger.Warn("notification failed",
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.ID),
			zap.Error(err))
	}
}
