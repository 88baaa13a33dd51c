package bus

import "time"

// EventBus defines an in-process pub/sub event bus used to decouple event
// producers (entity lifecycle, color theme) from the systems reacting to them.
//
// Key characteristics:
// - Type-based fan-out: handlers subscribe by Event.Type() string.
// - Ordered, synchronous delivery: Publish calls handlers in the caller goroutine,
//   in the order they subscribed.
// - Error aggregation: multiple handler errors are joined and returned from Publish/PublishBatch.
// - Optional observability: metrics are produced only when observers are registered.
//
// Notes:
// - Filters are evaluated before delivery. If any filter rejects an event, it is dropped without error.
// - Handlers may subscribe or cancel subscriptions from inside a delivery; the change
//   applies from the next Publish.
// - All methods must be safe for concurrent use.
type EventBus interface {
	// Publish delivers the event synchronously to all active subscribers of event.Type().
	// If one or more handlers return an error, a joined error is returned.
	Publish(event Event) error
	// Subscribe registers a handler for a specific event type and returns a
	// Subscription handle that can be used to cancel later.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. It is safe to call with nil; does nothing.
	Unsubscribe(Subscription) error

	// PublishWithFilters applies filters before delivery; if any filter returns false,
	// the event is dropped and not delivered to handlers.
	PublishWithFilters(event Event, filters ...EventFilter) error
	// PublishBatch publishes a set of events sequentially and aggregates errors across them.
	PublishBatch(events ...Event) error

	// AddObserver registers an observer to receive metrics callbacks.
	AddObserver(obs EventBusObserver)
	// RemoveObserver unregisters a previously added observer.
	RemoveObserver(obs EventBusObserver)
	// GetMetrics returns a best-effort snapshot of accumulated metrics. Metrics are only
	// collected when at least one observer is registered.
	GetMetrics() EventBusMetrics
}

// Event is an immutable message transported by the EventBus.
//
// Fields:
// - Type: routing key used to select handlers (required for delivery).
// - Source: identifier of the publisher (free-form).
// - Timestamp: creation time of the event.
// - Data: payload for consumers.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

// EventHandler is a user callback invoked per delivered event. If it returns an
// error, Publish/PublishBatch aggregates and returns it.
type (
	EventHandler func(event Event) error
	// EventFilter decides whether an event should be delivered. If any filter
	// returns false, the event is dropped silently.
	EventFilter func(event Event) bool
)

// Subscription represents a registered handler bound to an event type.
// Use Cancel or EventBus.Unsubscribe to stop receiving events.
type Subscription interface {
	// ID is a unique identifier for this subscription.
	ID() string
	// EventType returns the event type this subscription listens to.
	EventType() string
	// IsActive reports whether this subscription is still registered.
	IsActive() bool
	// Cancel de-registers the handler from the bus. Multiple calls are safe.
	Cancel() error
}

// EventBusObserver is notified about deliveries and errors. Observers should return quickly.
type EventBusObserver interface {
	OnPublish(eventType string, event Event)
	OnDelivered(eventType string, handlers int, err error, durationMicros int64)
}

// EventBusMetrics represents a minimal set of counters; it is updated only when
// at least one observer is registered.
type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	DroppedByFilters  uint64
	SubscribersActive uint64
}
