// Package bezier evaluates cubic Bézier curves.
package bezier

import "github.com/Faultbox/splinetool/pkg/math"

// Point returns the position of the cubic p0..p3 at t in [0, 1].
func Point(p0, p1, p2, p3 math.Vec3, t float32) math.Vec3 {
	t = clamp01(t)
	mt := 1 - t
	a := p0.Scale(mt * mt * mt)
	b := p1.Scale(3 * mt * mt * t)
	c := p2.Scale(3 * mt * t * t)
	d := p3.Scale(t * t * t)
	return a.Add(b).Add(c).Add(d)
}

// FirstDerivative returns the tangent of the cubic p0..p3 at t in [0, 1].
// Its length is the parametric speed, not a unit vector.
func FirstDerivative(p0, p1, p2, p3 math.Vec3, t float32) math.Vec3 {
	t = clamp01(t)
	mt := 1 - t
	a := p1.Sub(p0).Scale(3 * mt * mt)
	b := p2.Sub(p1).Scale(6 * mt * t)
	c := p3.Sub(p2).Scale(3 * t * t)
	return a.Add(b).Add(c)
}

func clamp01(t float32) float32 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
