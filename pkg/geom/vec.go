// Package geom provides the 2D vector and polygon math used by the layout
// engine. All angles are in radians unless a function name says otherwise.
package geom

import "math"

// Vec represents a 2D point or vector.
type Vec struct {
	X, Y float64
}

// V is a convenience function to create a Vec.
func V(x, y float64) Vec {
	return Vec{X: x, Y: y}
}

// Unit returns the unit vector pointing in the given direction.
func Unit(angle float64) Vec {
	sin, cos := math.Sincos(angle)
	return Vec{X: cos, Y: sin}
}

// Add returns the sum of two vectors.
func (v Vec) Add(w Vec) Vec {
	return Vec{X: v.X + w.X, Y: v.Y + w.Y}
}

// Sub returns the difference of two vectors.
func (v Vec) Sub(w Vec) Vec {
	return Vec{X: v.X - w.X, Y: v.Y - w.Y}
}

// Mul returns the vector scaled by a scalar.
func (v Vec) Mul(s float64) Vec {
	return Vec{X: v.X * s, Y: v.Y * s}
}

// Div returns the vector divided by a scalar.
func (v Vec) Div(s float64) Vec {
	return Vec{X: v.X / s, Y: v.Y / s}
}

// Neg returns the vector pointing the opposite way.
func (v Vec) Neg() Vec {
	return Vec{X: -v.X, Y: -v.Y}
}

// Dot returns the dot product of two vectors.
func (v Vec) Dot(w Vec) float64 {
	return v.X*w.X + v.Y*w.Y
}

// Cross returns the 2D cross product (scalar). Its sign tells which side of
// v the vector w lies on: positive is counter-clockwise.
func (v Vec) Cross(w Vec) float64 {
	return v.X*w.Y - v.Y*w.X
}

// Length returns the length of the vector.
func (v Vec) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// LengthSq returns the squared length of the vector.
func (v Vec) LengthSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Distance returns the distance between two points.
func (v Vec) Distance(w Vec) float64 {
	return v.Sub(w).Length()
}

// DistanceSq returns the squared distance between two points.
func (v Vec) DistanceSq(w Vec) float64 {
	return v.Sub(w).LengthSq()
}

// Normalize returns a unit vector in the same direction. The zero vector is
// returned unchanged.
func (v Vec) Normalize() Vec {
	l := v.Length()
	if l == 0 {
		return Vec{}
	}
	return Vec{X: v.X / l, Y: v.Y / l}
}

// Angle returns the direction of the vector in (-π, π].
func (v Vec) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// AngleTo returns the unsigned angle between two vectors in [0, π].
func (v Vec) AngleTo(w Vec) float64 {
	d := v.Length() * w.Length()
	if d == 0 {
		return 0
	}
	c := v.Dot(w) / d
	// Clamp against floating point drift before acos.
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return math.Acos(c)
}

// Rotate returns the vector rotated by angle radians around the origin.
func (v Vec) Rotate(angle float64) Vec {
	sin, cos := math.Sincos(angle)
	return Vec{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// RotateAround returns the point rotated by angle radians around pivot.
func (v Vec) RotateAround(angle float64, pivot Vec) Vec {
	return v.Sub(pivot).Rotate(angle).Add(pivot)
}

// RotateAwayFrom rotates the point around pivot by ±angle, picking whichever
// sign moves it farther from ref. Ties keep the positive rotation.
func (v Vec) RotateAwayFrom(ref, pivot Vec, angle float64) Vec {
	ccw := v.RotateAround(angle, pivot)
	cw := v.RotateAround(-angle, pivot)
	if cw.DistanceSq(ref) > ccw.DistanceSq(ref) {
		return cw
	}
	return ccw
}

// Lerp performs linear interpolation between two points. t=0 returns v, t=1
// returns w.
func (v Vec) Lerp(w Vec, t float64) Vec {
	return Vec{
		X: v.X + (w.X-v.X)*t,
		Y: v.Y + (w.Y-v.Y)*t,
	}
}

// IsFinite reports whether both coordinates are finite numbers.
func (v Vec) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// Normals returns the two unit normals of the segment a→b, counter-clockwise
// first. A degenerate segment yields zero vectors.
func Normals(a, b Vec) (Vec, Vec) {
	d := b.Sub(a).Normalize()
	n := Vec{X: -d.Y, Y: d.X}
	return n, n.Neg()
}

// MirrorAbout reflects p across the infinite line through a and b. When a
// and b coincide the line is undefined and p is returned unchanged.
func MirrorAbout(p, a, b Vec) Vec {
	d := b.Sub(a)
	l2 := d.LengthSq()
	if l2 == 0 {
		return p
	}
	t := p.Sub(a).Dot(d) / l2
	foot := a.Add(d.Mul(t))
	return foot.Mul(2).Sub(p)
}

// Centroid returns the arithmetic mean of the given points. An empty slice
// yields the zero vector.
func Centroid(pts []Vec) Vec {
	if len(pts) == 0 {
		return Vec{}
	}
	var c Vec
	for _, p := range pts {
		c = c.Add(p)
	}
	return c.Div(float64(len(pts)))
}
