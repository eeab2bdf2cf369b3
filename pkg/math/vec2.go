package math

import "math"

// Vec2 is a 2D vector. The spline core uses it for ground-plane (XZ) projections.
type Vec2 struct {
	X, Y float32
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Length returns the magnitude.
func (v Vec2) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

// Normalize returns a unit vector.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Heading returns atan2(X, Y) in degrees: the compass heading of an XZ
// direction with 0 along +Z and 90 along +X.
func (v Vec2) Heading() float32 {
	return float32(math.Atan2(float64(v.X), float64(v.Y)) * 180 / math.Pi)
}
