package splineset

import (
	"fmt"

	"github.com/Faultbox/splinetool/pkg/math"
	"github.com/Faultbox/splinetool/pkg/spline"
)

// ImportPolyline replaces the set with one spline through points. Handles
// follow the neighbouring points: a third of the chord at the ends and a
// sixth of the central difference elsewhere, which gives a smooth
// Catmull-Rom-like curve.
func (s *Set) ImportPolyline(points []math.Vec3) error {
	if len(points) < 2 {
		return fmt.Errorf("%w: polyline needs at least 2 points, got %d", ErrMalformedState, len(points))
	}
	for i, p := range points {
		if !p.IsFinite() {
			return fmt.Errorf("%w: polyline point %d is not finite", ErrMalformedState, i)
		}
	}

	n := len(points)
	cps := make([]*spline.ControlPoint, n)
	for i, p := range points {
		var handle math.Vec3
		switch i {
		case 0:
			handle = points[1].Sub(points[0]).Scale(1.0 / 3)
		case n - 1:
			handle = points[n-1].Sub(points[n-2]).Scale(1.0 / 3)
		default:
			handle = points[i+1].Sub(points[i-1]).Scale(1.0 / 6)
		}
		// NewControlPoint splits forward evenly across both handles.
		cps[i] = spline.NewControlPoint(p, handle.Scale(2))
	}

	sp := spline.FromPoints(splineName(0), cps, spline.WithResolution(s.resolution))
	s.replace([]*spline.Spline{sp}, s.newGraph())
	return nil
}
