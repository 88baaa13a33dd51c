package indicator

import (
	"fmt"
	"slices"
	"sync"

	"github.com/zeusync/offscreen/internal/core/geom"
	"github.com/zeusync/offscreen/internal/core/observability/log"
	"github.com/zeusync/offscreen/internal/core/observability/metrics"
)

type binding struct {
	target Target
	slot   int
}

// Registry binds entities to widgets from a fixed, pre-allocated pool.
//
// Widgets are never created after construction; Register hands out the lowest
// free slot and Unregister returns it. With no releases in between, the Nth
// registered entity therefore receives the Nth widget.
//
// One mutex serializes registry changes with projection passes, so event
// handlers may run on other goroutines than the tick.
type Registry struct {
	mu       sync.Mutex
	widgets  []*Widget
	used     []bool
	bindings map[EntityID]binding
	order    []EntityID

	seq      uint64
	viewport geom.Vec2

	logger  log.Log
	metrics *metrics.Metrics
}

// NewRegistry pre-allocates one widget per entry of pool.
func NewRegistry(pool []SizeBounds, logger log.Log, m *metrics.Metrics) (*Registry, error) {
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}
	if logger == nil {
		logger = log.NewNop()
	}
	r := &Registry{
		widgets:  make([]*Widget, len(pool)),
		used:     make([]bool, len(pool)),
		bindings: make(map[EntityID]binding, len(pool)),
		order:    make([]EntityID, 0, len(pool)),
		logger:   logger.With(log.String("component", "indicator_registry")),
		metrics:  m,
	}
	for i, size := range pool {
		if err := size.Validate(); err != nil {
			return nil, fmt.Errorf("widget %d: %w", i, err)
		}
		r.widgets[i] = newWidget(i, size)
	}
	return r, nil
}

// Register assigns a free widget to t and seeds its color from t.Color().
// A duplicate id keeps its existing widget and returns ErrDuplicateRegistration;
// a full pool returns ErrPoolExhausted.
func (r *Registry) Register(t Target) (*Widget, error) {
	if t == nil {
		return nil, ErrNilTarget
	}
	id := t.ID()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bindings[id]; exists {
		r.metrics.IncrementRegistrationFailure(metrics.ReasonDuplicate)
		return nil, fmt.Errorf("register entity %d: %w", id, ErrDuplicateRegistration)
	}

	slot := slices.Index(r.used, false)
	if slot < 0 {
		r.metrics.IncrementRegistrationFailure(metrics.ReasonPoolExhausted)
		r.logger.Warn("indicator pool exhausted",
			log.Uint64("entity", uint64(id)),
			log.Int("capacity", len(r.widgets)),
		)
		return nil, fmt.Errorf("register entity %d: %w", id, ErrPoolExhausted)
	}

	w := r.widgets[slot]
	w.assign(id, t.Color())
	r.used[slot] = true
	r.bindings[id] = binding{target: t, slot: slot}
	r.order = append(r.order, id)
	r.metrics.SetRegistered(len(r.bindings))

	r.logger.Info("entity registered",
		log.Uint64("entity", uint64(id)),
		log.Int("slot", slot),
	)
	return w, nil
}

// Unregister releases the widget bound to id. It reports whether id was
// registered; unknown ids are a no-op.
func (r *Registry) Unregister(id EntityID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bindings[id]
	if !ok {
		return false
	}
	r.widgets[b.slot].release()
	r.used[b.slot] = false
	delete(r.bindings, id)
	if i := slices.Index(r.order, id); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	r.metrics.SetRegistered(len(r.bindings))

	r.logger.Info("entity unregistered",
		log.Uint64("entity", uint64(id)),
		log.Int("slot", b.slot),
	)
	return true
}

// UpdateColor sets the color of the widget bound to id without touching its
// placement. Unknown ids are ignored since theme changes may race with leaves.
func (r *Registry) UpdateColor(id EntityID, c Color) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bindings[id]
	if !ok {
		return false
	}
	r.widgets[b.slot].color = c
	return true
}

// Lookup returns the widget bound to id.
func (r *Registry) Lookup(id EntityID) (*Widget, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bindings[id]
	if !ok {
		return nil, false
	}
	return r.widgets[b.slot], true
}

// IsRegistered reports whether id currently holds a widget.
func (r *Registry) IsRegistered(id EntityID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.bindings[id]
	return ok
}

// Len returns the number of registered entities.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bindings)
}

// Capacity returns the size of the widget pool.
func (r *Registry) Capacity() int {
	return len(r.widgets)
}

// Range calls fn for every registered entity in registration order with the
// registry locked. fn must not call back into the registry.
func (r *Registry) Range(fn func(t Target, w *Widget)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rangeLocked(fn)
}

// Snapshot copies the state of every assigned widget, in registration order.
func (r *Registry) Snapshot() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()

	frame := Frame{
		Seq:        r.seq,
		Viewport:   r.viewport,
		Indicators: make([]WidgetState, 0, len(r.order)),
	}
	r.rangeLocked(func(t Target, w *Widget) {
		frame.Indicators = append(frame.Indicators, WidgetState{
			Slot:   w.slot,
			Entity: t.ID(),
			Label:  w.label,
			Active: w.active,
			Bounds: w.bounds,
			Color:  w.color,
		})
	})
	return frame
}

// pass runs one projection pass under the registry lock and stamps the
// resulting frame.
func (r *Registry) pass(viewport geom.Vec2, fn func(t Target, w *Widget)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rangeLocked(fn)
	r.seq++
	r.viewport = viewport
}

func (r *Registry) rangeLocked(fn func(t Target, w *Widget)) {
	for _, id := range r.order {
		b := r.bindings[id]
		fn(b.target, r.widgets[b.slot])
	}
}
