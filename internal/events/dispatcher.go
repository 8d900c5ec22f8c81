package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
	Close()
}

// queueDispatcher runs handlers on a background goroutine fed by a bounded
// queue. Publish never blocks the caller: when the queue is full the event
// is dropped and logged. Delivery is best-effort with no durability; events
// already queued at shutdown are drained, one published after Close is
// dropped.
type queueDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
	queue     chan Event
	closed    bool
	closeOnce sync.Once
	done      chan struct{}
	logger    *zap.Logger
}

// NewQueueDispatcher creates a dispatcher with the given queue capacity and
// starts its worker.
func NewQueueDispatcher(queueSize int, logger *zap.Logger) Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	d := &queueDispatcher{
		listeners: make(map[EventType][]EventHandler),
		queue:     make(chan Event, queueSize),
		done:      make(chan struct{}),
		logger:    logger,
	}
	go d.run()
	return d
}

// Publish enqueues the event for background delivery and returns immediately.
// The read lock spans the send so Close cannot close the queue mid-publish.
func (d *queueDispatcher) Publish(_ context.Context, event Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("dispatcher closed, dropping event",
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.ID))
		return nil
	}

	select {
	case d.queue <- event:
	default:
		d.logger.Warn("event queue full, dropping event",
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.ID))
	}
	return nil
}

// Subscribe registers a handler for the given event type.
func (d *queueDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

// Close stops intake and waits for queued events to drain.
func (d *queueDispatcher) Close() {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()
		close(d.queue)
		<-d.done
	})
}

func (d *queueDispatcher) run() {
	defer close(d.done)
	for event := range d.queue {
		d.mu.RLock()
		handlers := append([]EventHandler{}, d.listeners[event.Type]...)
		d.mu.RUnlock()

		for _, handler := range handlers {
			if err := handler(context.Background(), event); err != nil {
				d.logger.Error("event handler failed",
					zap.String("event_type", string(event.Type)),
					zap.String("event_id", event.ID),
					zap.Error(err))
			}
		}
	}
}
