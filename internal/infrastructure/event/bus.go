package event

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/nfehub/backend/internal/domain/shared"
)

const (
	defaultWorkers   = 4
	defaultQueueSize = 256
)

// InMemoryEventBus delivers domain events to subscribed handlers inside the
// process. After Start, publishing enqueues events and a small worker pool
// dispatches them off the publisher goroutine; before Start (and after Stop)
// delivery is inline, which is what the tests rely on. A failing or
// panicking handler never affects the publisher or other handlers.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger

	queue   chan shared.DomainEvent
	running atomic.Bool
	wg      sync.WaitGroup
}

// NewInMemoryEventBus creates a bus with the default worker pool size.
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
		queue:    make(chan shared.DomainEvent, defaultQueueSize),
	}
}

// Publish delivers events to every handler subscribed to their type.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, evt := range events {
		if b.running.Load() {
			select {
			case b.queue <- evt:
			default:
				// Queue full. Deliver inline rather than drop the event.
				b.deliver(ctx, evt)
			}
			continue
		}
		b.deliver(ctx, evt)
	}
	return nil
}

// Subscribe registers a handler. With no explicit types the handler's own
// EventTypes decide what it receives; an empty list subscribes to everything.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("event handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler from every event type.
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start launches the dispatch workers.
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	if !b.running.CompareAndSwap(false, true) {
		return nil
	}
	for i := 0; i < defaultWorkers; i++ {
		b.wg.Add(1)
		go b.worker()
	}
	b.logger.Info("event bus started", zap.Int("workers", defaultWorkers))
	return nil
}

// Stop drains the queue and waits for the workers to finish.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	if !b.running.CompareAndSwap(true, false) {
		return nil
	}
	close(b.queue)
	b.wg.Wait()
	b.logger.Info("event bus stopped")
	return nil
}

func (b *InMemoryEventBus) worker() {
	defer b.wg.Done()
	for evt := range b.queue {
		b.deliver(context.Background(), evt)
	}
}

func (b *InMemoryEventBus) deliver(ctx context.Context, evt shared.DomainEvent) {
	for _, handler := range b.registry.GetHandlers(evt.EventType()) {
		if err := b.dispatch(ctx, handler, evt); err != nil {
			b.logger.Error("event handler failed",
				zap.String("event_type", evt.EventType()),
				zap.String("event_id", evt.EventID().String()),
				zap.Error(err),
			)
		}
	}
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, evt shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, evt)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
