package indicator

import "github.com/zeusync/offscreen/internal/core/geom"

// EntityID is the stable identity of a tracked entity.
type EntityID uint64

// Target is a tracked entity as seen by the indicator system. Its methods are
// called while the registry lock is held and must not call back into the registry.
type Target interface {
	ID() EntityID
	// Position returns the world-space position, y-up.
	Position() geom.Vec3
	// Color is the entity's current color, used as the widget's initial color.
	Color() Color
	// SetVisible receives the result of the per-tick visibility test.
	SetVisible(visible bool)
}

// AnchorSource supplies the height all indicator anchors are projected at.
type AnchorSource interface {
	ReferenceHeight() float64
}

// FixedHeight is an AnchorSource with a constant height.
type FixedHeight float64

func (h FixedHeight) ReferenceHeight() float64 { return float64(h) }
