package notification

import (
	"context"
	"log/slog"
	"sync"
)

// HandlerFunc consumes a published event. Handler errors are logged and
// never propagated to the publishing use case.
type HandlerFunc func(ctx context.Context, evt Event) error

// Bus is a synchronous in-process event dispatcher. Handlers registered for
// an event name run in subscription order on the publisher's goroutine.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]HandlerFunc
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]HandlerFunc)}
}

// Subscribe registers a handler for an event name.
func (b *Bus) Subscribe(name string, h HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Publish dispatches evt to every handler subscribed to its name.
func (b *Bus) Publish(ctx context.Context, evt Event) {
	b.mu.RLock()
	handlers := b.handlers[evt.Name]
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, evt); err != nil {
			slog.Error("event handler failed",
				"event", evt.Name, "event_id", evt.ID, "error", err)
		}
	}
}
