package events

import (
	"context"
	"sync"
	"time"

	"plumbing_portal_backend/platform/logger"
)

// InMemoryBus is a simple in-process implementation of Bus. Handlers are
// invoked in their own goroutines; panics are recovered and logged so a
// misbehaving subscriber cannot take down the process.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      *logger.Logger

	// wg tracks in-flight async handlers so Close can drain them.
	wg sync.WaitGroup
}

// NewInMemoryBus creates an empty bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[string][]Handler),
		log:      log,
	}
}

// Subscribe registers a handler for the given event name.
func (b *InMemoryBus) Subscribe(eventName string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

// Publish delivers the event asynchronously to all subscribed handlers.
// The handler context is detached from the caller's so that finishing an
// HTTP request does not cancel notification work.
func (b *InMemoryBus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := b.handlers[event.EventName()]
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.wg.Add(1)
		go func(h Handler) {
			defer b.wg.Done()
			handlerCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
			defer cancel()
			b.invoke(handlerCtx, h, event)
		}(handler)
	}
}

// PublishSync delivers the event and blocks until every handler returns.
func (b *InMemoryBus) PublishSync(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := b.handlers[event.EventName()]
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.invoke(ctx, handler, event)
	}
}

// Close waits for in-flight async handlers, up to the context deadline.
func (b *InMemoryBus) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *InMemoryBus) invoke(ctx context.Context, handler Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked",
				"event", event.EventName(),
				"panic", r,
			)
		}
	}()

	if err := handler(ctx, event); err != nil {
		b.log.Error("event handler failed",
			"event", event.EventName(),
			"error", err,
		)
	}
}
