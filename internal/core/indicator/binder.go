package indicator

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/zeusync/offscreen/internal/core/events/bus"
	"github.com/zeusync/offscreen/internal/core/observability/log"
)

// Event types consumed by the Binder.
const (
	EventEntityJoined = "entity.joined"
	EventEntityLeft   = "entity.left"
	EventColorChanged = "theme.color_changed"
)

type (
	EntityJoined struct {
		Target Target
	}
	EntityLeft struct {
		ID EntityID
	}
	ColorChanged struct {
		ID    EntityID
		Color Color
	}
)

func JoinedEvent(source string, t Target) bus.Event {
	return bus.NewEvent(EventEntityJoined, source, EntityJoined{Target: t})
}

func LeftEvent(source string, id EntityID) bus.Event {
	return bus.NewEvent(EventEntityLeft, source, EntityLeft{ID: id})
}

func ColorChangedEvent(source string, id EntityID, c Color) bus.Event {
	return bus.NewEvent(EventColorChanged, source, ColorChanged{ID: id, Color: c})
}

// Binder feeds lifecycle and theme events from the bus into a Registry.
//
// Joins rejected with ErrPoolExhausted are parked; whenever an entity leaves,
// parked entities are registered again, oldest first. The rejection is still
// returned to the publisher.
type Binder struct {
	registry *Registry
	subs     []bus.Subscription

	mu     sync.Mutex
	parked []Target

	logger log.Log
}

// Bind subscribes a new Binder to b. Close cancels the subscriptions.
func Bind(b bus.EventBus, registry *Registry, logger log.Log) (*Binder, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	binder := &Binder{
		registry: registry,
		logger:   logger.With(log.String("component", "indicator_binder")),
	}

	handlers := []struct {
		eventType string
		handler   bus.EventHandler
	}{
		{EventEntityJoined, binder.onJoined},
		{EventEntityLeft, binder.onLeft},
		{EventColorChanged, binder.onColorChanged},
	}
	for _, h := range handlers {
		sub, err := b.Subscribe(h.eventType, h.handler)
		if err != nil {
			_ = binder.Close()
			return nil, fmt.Errorf("subscribe %s: %w", h.eventType, err)
		}
		binder.subs = append(binder.subs, sub)
	}
	return binder, nil
}

// Close cancels all subscriptions. Multiple calls are safe.
func (b *Binder) Close() error {
	var all error
	for _, sub := range b.subs {
		all = errors.Join(all, sub.Cancel())
	}
	return all
}

// Parked returns the ids waiting for a free widget, oldest first.
func (b *Binder) Parked() []EntityID {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := make([]EntityID, len(b.parked))
	for i, t := range b.parked {
		ids[i] = t.ID()
	}
	return ids
}

func (b *Binder) onJoined(event bus.Event) error {
	joined, ok := event.Data().(EntityJoined)
	if !ok || joined.Target == nil {
		return fmt.Errorf("%s: %w", event.Type(), ErrUnexpectedPayload)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	_, err := b.registry.Register(joined.Target)
	if errors.Is(err, ErrPoolExhausted) && b.parkedIndex(joined.Target.ID()) < 0 {
		b.parked = append(b.parked, joined.Target)
		b.logger.Info("entity parked until a widget frees up",
			log.Uint64("entity", uint64(joined.Target.ID())),
			log.Int("parked", len(b.parked)),
		)
	}
	return err
}

func (b *Binder) onLeft(event bus.Event) error {
	left, ok := event.Data().(EntityLeft)
	if !ok {
		return fmt.Errorf("%s: %w", event.Type(), ErrUnexpectedPayload)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if i := b.parkedIndex(left.ID); i >= 0 {
		b.parked = slices.Delete(b.parked, i, i+1)
	}
	if b.registry.Unregister(left.ID) {
		b.drainLocked()
	}
	return nil
}

func (b *Binder) onColorChanged(event bus.Event) error {
	changed, ok := event.Data().(ColorChanged)
	if !ok {
		return fmt.Errorf("%s: %w", event.Type(), ErrUnexpectedPayload)
	}
	if !b.registry.UpdateColor(changed.ID, changed.Color) {
		b.logger.Debug("color change for unregistered entity ignored",
			log.Uint64("entity", uint64(changed.ID)),
		)
	}
	return nil
}

func (b *Binder) drainLocked() {
	for len(b.parked) > 0 {
		next := b.parked[0]
		if _, err := b.registry.Register(next); errors.Is(err, ErrPoolExhausted) {
			return
		}
		b.parked = b.parked[1:]
	}
}

func (b *Binder) parkedIndex(id EntityID) int {
	return slices.IndexFunc(b.parked, func(t Target) bool { return t.ID() == id })
}
