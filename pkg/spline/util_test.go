package spline

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/Faultbox/splinetool/pkg/math"
)

var approx = cmpopts.EquateApprox(0, 1e-4)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

func vec(x, y, z float32) math.Vec3 {
	return math.Vec3{X: x, Y: y, Z: z}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// straightSpline returns a two-point spline from the origin to (0,0,length)
// with default forward handles.
func straightSpline(length float32) *Spline {
	return FromPoints("straight", []*ControlPoint{
		NewControlPoint(vec(0, 0, 0), math.Forward),
		NewControlPoint(vec(0, 0, length), math.Forward),
	})
}

// arcSpline returns a three-point S-shaped spline in the XZ plane.
func arcSpline() *Spline {
	return FromPoints("arc", []*ControlPoint{
		NewControlPoint(vec(0, 0, 0), vec(0, 0, 6)),
		NewControlPoint(vec(6, 0, 6), vec(6, 0, 0)),
		NewControlPoint(vec(12, 2, 0), vec(0, 0, -6)),
	})
}
