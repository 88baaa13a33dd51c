package camera

import (
	"sync"

	"github.com/zeusync/offscreen/internal/core/geom"
)

// Camera maps world positions into viewport pixels.
type Camera interface {
	// WorldToScreen projects a world point. X and Y are viewport pixels with the
	// origin at the bottom-left corner; Z is the signed depth along the view
	// direction, negative for points behind the camera.
	WorldToScreen(world geom.Vec3) geom.Vec3
	// Viewport returns the render surface size in pixels.
	Viewport() geom.Vec2
}

// Provider hands out the camera currently rendering the scene.
type Provider interface {
	Active() (Camera, bool)
}

// Holder is a Provider whose camera can be swapped at runtime, for example
// when the host switches scenes. The zero value has no camera.
type Holder struct {
	mu  sync.RWMutex
	cam Camera
}

func NewHolder(cam Camera) *Holder {
	return &Holder{cam: cam}
}

func (h *Holder) Active() (Camera, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cam, h.cam != nil
}

func (h *Holder) Set(cam Camera) {
	h.mu.Lock()
	h.cam = cam
	h.mu.Unlock()
}

func (h *Holder) Clear() {
	h.Set(nil)
}
