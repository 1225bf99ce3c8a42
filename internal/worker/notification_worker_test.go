package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/strategy-hub/internal/events"
)

type recordingHandler struct {
	mu     sync.Mutex
	seen   []events.EventType
	panics bool
}

func (h *recordingHandler) Handle(_ context.Context, event events.Event) error {
	h.mu.Lock()
	h.seen = append(h.seen, event.Type)
	panics := h.panics
	h.mu.Unlock()
	if panics {
		panic("handler exploded")
	}
	return nil
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.seen)
}

func TestNotificationWorker_DeliversSubscribedEvents(t *testing.T) {
	handler := &recordingHandler{}
	w := NewNotificationWorker(handler, 8, nil)
	d := events.NewInMemoryDispatcher(nil)
	w.Subscribe(d, events.EventUserRegistered, events.EventTokenRevoked)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.NoError(t, d.Publish(context.Background(), events.New(events.EventUserRegistered, 1, nil)))
	require.NoError(t, d.Publish(context.Background(), events.New(events.EventUserLoggedIn, 1, nil)))
	require.NoError(t, d.Publish(context.Background(), events.New(events.EventTokenRevoked, 1, nil)))

	require.Eventually(t, func() bool { return handler.count() == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
	assert.Equal(t, []events.EventType{events.EventUserRegistered, events.EventTokenRevoked}, handler.seen)
}

func TestNotificationWorker_FullQueueDrops(t *testing.T) {
	w := NewNotificationWorker(&recordingHandler{}, 1, nil)

	require.NoError(t, w.enqueue(context.Background(), events.New(events.EventGuestEntered, -1, nil)))
	assert.ErrorIs(t, w.enqueue(context.Background(), events.New(events.EventGuestEntered, -1, nil)), ErrQueueFull)
}

func TestNotificationWorker_DrainsOnShutdownAndSurvivesPanics(t *testing.T) {
	handler := &recordingHandler{panics: true}
	w := NewNotificationWorker(handler, 4, nil)
	require.NoError(t, w.enqueue(context.Background(), events.New(events.EventUserLoggedIn, 2, nil)))
	require.NoError(t, w.enqueue(context.Background(), events.New(events.EventUserLoggedIn, 3, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NotPanics(t, func() { w.Run(ctx) })
	assert.Equal(t, 2, handler.count())
}
