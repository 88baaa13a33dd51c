package geom

import "math"

// Small value types for world and screen space math. World space is y-up;
// screen space is in viewport pixels with the origin at the bottom-left corner.

// Vec2 is a 2D vector, used for screen points and sizes.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Vec3 is a 3D vector. For projected points Z carries the signed depth.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Rect is a screen-space rectangle positioned by its center.
type Rect struct {
	Center Vec2 `json:"center"`
	Size   Vec2 `json:"size"`
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Half() Vec2           { return v.Scale(0.5) }
func (v Vec2) Finite() bool         { return finite(v.X) && finite(v.Y) }

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Neg() Vec3            { return Vec3{-v.X, -v.Y, -v.Z} }
func (v Vec3) Dot(o Vec3) float64   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) XY() Vec2             { return Vec2{v.X, v.Y} }
func (v Vec3) Finite() bool         { return finite(v.X) && finite(v.Y) && finite(v.Z) }

// WithY returns v with its vertical component replaced.
func (v Vec3) WithY(y float64) Vec3 { return Vec3{v.X, y, v.Z} }

func (r Rect) Min() Vec2 { return r.Center.Sub(r.Size.Half()) }
func (r Rect) Max() Vec2 { return r.Center.Add(r.Size.Half()) }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Vec2) bool {
	lo, hi := r.Min(), r.Max()
	return p.X >= lo.X && p.X <= hi.X && p.Y >= lo.Y && p.Y <= hi.Y
}

// Distance2 computes Euclidean distance between two 2D points.
func Distance2(a, b Vec2) float64 { return math.Hypot(b.X-a.X, b.Y-a.Y) }

// Lerp interpolates linearly between a and b. t is not clamped.
func Lerp(a, b, t float64) float64 { return a + (b-a)*t }

// LerpVec2 interpolates each component independently.
func LerpVec2(a, b Vec2, t float64) Vec2 {
	return Vec2{Lerp(a.X, b.X, t), Lerp(a.Y, b.Y, t)}
}

// Clamp limits v to [lo, hi]. An inverted range (lo > hi) collapses to its
// midpoint and NaN maps to lo, so callers always get a usable coordinate.
func Clamp(v, lo, hi float64) float64 {
	if lo > hi {
		return (lo + hi) / 2
	}
	switch {
	case math.IsNaN(v), v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}

// Clamp01 limits t to [0, 1]. NaN saturates to 1.
func Clamp01(t float64) float64 {
	if math.IsNaN(t) {
		return 1
	}
	return Clamp(t, 0, 1)
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
