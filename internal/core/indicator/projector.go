package indicator

import (
	"time"

	"github.com/zeusync/offscreen/internal/core/camera"
	"github.com/zeusync/offscreen/internal/core/geom"
	"github.com/zeusync/offscreen/internal/core/observability/log"
	"github.com/zeusync/offscreen/internal/core/observability/metrics"
)

// Placement is the outcome of the visibility test for one projected point.
type Placement struct {
	// OnScreen is true when the point lies inside the viewport; Bounds is then unset.
	OnScreen bool
	Bounds   geom.Rect
}

// Place decides where, and how large, the indicator for a projected point is.
//
// screen is the raw projection (viewport pixels plus signed depth). The
// on-screen test uses it as is; sizing and clamping use the point negated
// when it lies behind the camera. Size goes linearly from size.Max at the
// viewport center to size.Min at minSizeDistance pixels and beyond.
func Place(screen geom.Vec3, viewport geom.Vec2, size SizeBounds, minSizeDistance float64) Placement {
	if screen.X >= 0 && screen.X <= viewport.X && screen.Y >= 0 && screen.Y <= viewport.Y {
		return Placement{OnScreen: true}
	}

	if screen.Z < 0 {
		screen = screen.Neg()
	}

	distance := geom.Distance2(viewport.Half(), screen.XY())
	t := 1.0
	if minSizeDistance > 0 {
		t = geom.Clamp01(distance / minSizeDistance)
	}
	current := geom.LerpVec2(size.Max, size.Min, t)

	half := current.Half()
	center := geom.Vec2{
		X: geom.Clamp(screen.X, half.X, viewport.X-half.X),
		Y: geom.Clamp(screen.Y, half.Y, viewport.Y-half.Y),
	}
	return Placement{Bounds: geom.Rect{Center: center, Size: current}}
}

// Projector runs the per-tick visibility pass over every registered entity.
// It reads the registry and writes widgets, never the entity bindings.
type Projector struct {
	registry        *Registry
	cameras         camera.Provider
	anchor          AnchorSource
	minSizeDistance float64

	logger  log.Log
	metrics *metrics.Metrics
}

func NewProjector(
	registry *Registry,
	cameras camera.Provider,
	anchor AnchorSource,
	minSizeDistance float64,
	logger log.Log,
	m *metrics.Metrics,
) *Projector {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Projector{
		registry:        registry,
		cameras:         cameras,
		anchor:          anchor,
		minSizeDistance: minSizeDistance,
		logger:          logger.With(log.String("component", "indicator_projector")),
		metrics:         m,
	}
}

// Tick recomputes visibility, size and placement for every registered entity
// in registration order. Without an active camera or anchor source the pass
// is skipped with ErrMissingCollaborator and no state is touched.
func (p *Projector) Tick() error {
	start := time.Now()

	cam, ok := p.activeCamera()
	if !ok || p.anchor == nil {
		p.metrics.IncrementSkippedTick()
		p.logger.Debug("projection skipped", log.Error(ErrMissingCollaborator))
		return ErrMissingCollaborator
	}

	viewport := cam.Viewport()
	height := p.anchor.ReferenceHeight()
	active := 0

	p.registry.pass(viewport, func(t Target, w *Widget) {
		anchor := t.Position().WithY(height)
		placement := Place(cam.WorldToScreen(anchor), viewport, w.size, p.minSizeDistance)
		if placement.OnScreen {
			t.SetVisible(true)
			w.hide()
			return
		}
		t.SetVisible(false)
		w.place(placement.Bounds)
		active++
	})

	p.metrics.ObserveTick(start, active)
	return nil
}

func (p *Projector) activeCamera() (camera.Camera, bool) {
	if p.cameras == nil {
		return nil, false
	}
	return p.cameras.Active()
}
