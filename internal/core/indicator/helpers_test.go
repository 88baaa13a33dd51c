package indicator

import (
	"github.com/zeusync/offscreen/internal/core/camera"
	"github.com/zeusync/offscreen/internal/core/geom"
)

type fakeTarget struct {
	id      EntityID
	pos     geom.Vec3
	color   Color
	visible bool
	tested  int
}

func newTarget(id EntityID) *fakeTarget {
	return &fakeTarget{id: id, color: RGBA(uint8(id), 0, 0, 255)}
}

func (t *fakeTarget) ID() EntityID        { return t.id }
func (t *fakeTarget) Position() geom.Vec3 { return t.pos }
func (t *fakeTarget) Color() Color        { return t.color }
func (t *fakeTarget) SetVisible(v bool) {
	t.visible = v
	t.tested++
}

// fakeCamera projects world points with a caller supplied function and
// records every anchor it was asked to project.
type fakeCamera struct {
	viewport geom.Vec2
	project  func(geom.Vec3) geom.Vec3
	seen     []geom.Vec3
}

func (c *fakeCamera) Viewport() geom.Vec2 { return c.viewport }
func (c *fakeCamera) WorldToScreen(world geom.Vec3) geom.Vec3 {
	c.seen = append(c.seen, world)
	return c.project(world)
}

// screenCamera treats the world X/Z of an anchor as its screen X/Y and the
// world Y as depth, so tests place entities directly in screen space and pick
// front or behind through the reference height.
func screenCamera(viewport geom.Vec2) *fakeCamera {
	return &fakeCamera{
		viewport: viewport,
		project: func(w geom.Vec3) geom.Vec3 {
			return geom.Vec3{X: w.X, Y: w.Z, Z: w.Y}
		},
	}
}

type cameraSource struct {
	cam *fakeCamera
}

func (s cameraSource) Active() (camera.Camera, bool) {
	if s.cam == nil {
		return nil, false
	}
	return s.cam, true
}

var hd = geom.Vec2{X: 1920, Y: 1080}

var defaultSize = SizeBounds{Min: geom.Vec2{X: 20, Y: 20}, Max: geom.Vec2{X: 80, Y: 80}}

func uniformPool(n int) []SizeBounds {
	pool := make([]SizeBounds, n)
	for i := range pool {
		pool[i] = defaultSize
	}
	return pool
}
