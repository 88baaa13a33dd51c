package bus

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// simpleEvent is a basic implementation of Event.
type simpleEvent struct {
	typeStr string
	source  string
	ts      time.Time
	data    any
}

func (e simpleEvent) Type() string         { return e.typeStr }
func (e simpleEvent) Source() string       { return e.source }
func (e simpleEvent) Timestamp() time.Time { return e.ts }
func (e simpleEvent) Data() any            { return e.data }

// NewEvent creates a simple Event implementation.
func NewEvent(typ, src string, data any) Event {
	return simpleEvent{typeStr: typ, source: src, ts: time.Now(), data: data}
}

// subscription implements Subscription interface.
type subscription struct {
	id        string
	eventType string
	handler   EventHandler
	active    atomic.Bool
	cancel    func()
}

func (s *subscription) ID() string        { return s.id }
func (s *subscription) EventType() string { return s.eventType }
func (s *subscription) IsActive() bool    { return s.active.Load() }
func (s *subscription) Cancel() error {
	if s.active.Swap(false) && s.cancel != nil {
		s.cancel()
	}
	return nil
}

// inMemoryBus is a thread-safe implementation of EventBus with optional observers.
type inMemoryBus struct {
	mu sync.RWMutex
	// handlers: eventType -> subscriptions in subscription order
	handlers  map[string][]*subscription
	metrics   EventBusMetrics
	observers map[EventBusObserver]struct{}
}

// New creates a new EventBus instance.
func New() EventBus {
	return &inMemoryBus{
		handlers:  make(map[string][]*subscription),
		observers: make(map[EventBusObserver]struct{}),
	}
}

func (b *inMemoryBus) Publish(event Event) error {
	return b.deliver(event)
}

func (b *inMemoryBus) PublishWithFilters(event Event, filters ...EventFilter) error {
	for _, f := range filters {
		if !f(event) {
			b.mu.Lock()
			if len(b.observers) > 0 {
				b.metrics.DroppedByFilters += 1
			}
			b.mu.Unlock()
			return nil
		}
	}
	return b.Publish(event)
}

func (b *inMemoryBus) Subscribe(eventType string, handler EventHandler) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s := &subscription{id: uuid.NewString(), eventType: eventType, handler: handler}
	s.active.Store(true)
	s.cancel = func() { b.remove(s) }
	b.handlers[eventType] = append(b.handlers[eventType], s)
	return s, nil
}

func (b *inMemoryBus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return nil
	}
	return sub.Cancel()
}

func (b *inMemoryBus) PublishBatch(events ...Event) error {
	var all error
	for _, e := range events {
		if err := b.Publish(e); err != nil {
			all = errors.Join(all, err)
		}
	}
	return all
}

func (b *inMemoryBus) AddObserver(obs EventBusObserver) {
	b.mu.Lock()
	b.observers[obs] = struct{}{}
	b.mu.Unlock()
}

func (b *inMemoryBus) RemoveObserver(obs EventBusObserver) {
	b.mu.Lock()
	delete(b.observers, obs)
	b.mu.Unlock()
}

func (b *inMemoryBus) GetMetrics() EventBusMetrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.metrics
}

func (b *inMemoryBus) remove(s *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.handlers[s.eventType]
	for i, candidate := range subs {
		if candidate == s {
			// copy so an in-flight delivery keeps its own snapshot
			next := make([]*subscription, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			if len(next) == 0 {
				delete(b.handlers, s.eventType)
			} else {
				b.handlers[s.eventType] = next
			}
			return
		}
	}
}

func (b *inMemoryBus) deliver(event Event) error {
	if event == nil {
		return ErrNilEvent
	}
	start := time.Now()
	etype := event.Type()

	b.mu.RLock()
	subs := b.handlers[etype]
	observers := make([]EventBusObserver, 0, len(b.observers))
	for obs := range b.observers {
		observers = append(observers, obs)
	}
	b.mu.RUnlock()

	for _, obs := range observers {
		obs.OnPublish(etype, event)
	}

	var all error
	delivered := 0
	for _, s := range subs {
		if !s.IsActive() {
			continue
		}
		delivered++
		if err := s.handler(event); err != nil {
			all = errors.Join(all, err)
		}
	}

	if len(observers) > 0 {
		dur := time.Since(start).Microseconds()
		for _, obs := range observers {
			obs.OnDelivered(etype, delivered, all, dur)
		}
		b.mu.Lock()
		b.metrics.Published += 1
		b.metrics.DeliveredHandlers += uint64(delivered)
		if all != nil {
			b.metrics.Errors += 1
		}
		var subsCount uint64
		for _, m := range b.handlers {
			subsCount += uint64(len(m))
		}
		b.metrics.SubscribersActive = subsCount
		b.mu.Unlock()
	}
	return all
}
