package camera

import (
	"math"

	"github.com/zeusync/offscreen/internal/core/geom"
)

var _ Camera = (*Perspective)(nil)

// nearDepth replaces an exact zero depth to keep the perspective divide finite.
const nearDepth = 1e-6

// Perspective is a pinhole camera with a y-up, left-handed world: yaw 0 looks
// down +Z, positive yaw turns right and positive pitch looks up. Points behind
// the camera go through the same divide and come out mirrored, like in a
// typical engine's world-to-screen call.
type Perspective struct {
	Position geom.Vec3
	Yaw      float64 // radians
	Pitch    float64 // radians
	FovY     float64 // vertical field of view, radians
	Size     geom.Vec2
}

// NewPerspective builds a camera from angles given in degrees.
func NewPerspective(position geom.Vec3, yawDeg, pitchDeg, fovDeg float64, viewport geom.Vec2) *Perspective {
	return &Perspective{
		Position: position,
		Yaw:      yawDeg * math.Pi / 180,
		Pitch:    pitchDeg * math.Pi / 180,
		FovY:     fovDeg * math.Pi / 180,
		Size:     viewport,
	}
}

func (p *Perspective) Viewport() geom.Vec2 {
	return p.Size
}

func (p *Perspective) WorldToScreen(world geom.Vec3) geom.Vec3 {
	right, up, forward := p.basis()
	d := world.Sub(p.Position)
	cx, cy, cz := d.Dot(right), d.Dot(up), d.Dot(forward)
	if cz == 0 {
		cz = nearDepth
	}

	aspect := 1.0
	if p.Size.Y > 0 {
		aspect = p.Size.X / p.Size.Y
	}
	focal := 1 / math.Tan(p.FovY/2)
	ndcX := cx * focal / (aspect * cz)
	ndcY := cy * focal / cz

	return geom.Vec3{
		X: (ndcX + 1) / 2 * p.Size.X,
		Y: (ndcY + 1) / 2 * p.Size.Y,
		Z: cz,
	}
}

// LookAt points the camera at target.
func (p *Perspective) LookAt(target geom.Vec3) {
	d := target.Sub(p.Position)
	p.Yaw = math.Atan2(d.X, d.Z)
	p.Pitch = math.Atan2(d.Y, math.Hypot(d.X, d.Z))
}

func (p *Perspective) basis() (right, up, forward geom.Vec3) {
	sy, cy := math.Sincos(p.Yaw)
	sp, cp := math.Sincos(p.Pitch)
	forward = geom.Vec3{X: cp * sy, Y: sp, Z: cp * cy}
	right = geom.Vec3{X: cy, Y: 0, Z: -sy}
	up = geom.Vec3{
		X: forward.Y*right.Z - forward.Z*right.Y,
		Y: forward.Z*right.X - forward.X*right.Z,
		Z: forward.X*right.Y - forward.Y*right.X,
	}
	return right, up, forward
}
