package spline

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/Faultbox/splinetool/pkg/math"
)

func TestNewControlPoint(t *testing.T) {
	p := NewControlPoint(vec(1, 2, 3), vec(0, 0, 2))

	diff(t, vec(1, 2, 3), p.Anchor())
	diff(t, vec(0, 0, -1), p.RelativeHandle(0))
	diff(t, vec(0, 0, 1), p.RelativeHandle(1))
	diff(t, vec(1, 2, 4), p.Handle(1))
	diff(t, math.Up, p.Up())
	if p.Mode() != Mirrored {
		t.Errorf("new point mode = %v, want mirrored", p.Mode())
	}
	if p.Group() != NoGroup {
		t.Errorf("new point group = %v, want NoGroup", p.Group())
	}
	if q := NewControlPoint(vec(0, 0, 0), math.Forward); q.ID() == p.ID() {
		t.Error("points should get distinct ids")
	}
}

func TestSetRelativeHandleModes(t *testing.T) {
	tests := []struct {
		name      string
		mode      Mode
		index     int
		handle    math.Vec3
		wantOther math.Vec3
	}{
		{"free leaves opposite", Free, 1, vec(3, 0, 0), vec(0, 0, -0.5)},
		{"aligned flips direction keeps length", Aligned, 1, vec(3, 0, 0), vec(-0.5, 0, 0)},
		{"aligned from back handle", Aligned, 0, vec(0, 4, 0), vec(0, -0.5, 0)},
		{"mirrored negates", Mirrored, 1, vec(3, 0, 0), vec(-3, 0, 0)},
		{"mirrored from back handle", Mirrored, 0, vec(1, 2, 3), vec(-1, -2, -3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewControlPoint(vec(0, 0, 0), math.Forward)
			p.mode = tt.mode
			p.SetRelativeHandle(tt.index, tt.handle)

			diff(t, tt.handle, p.RelativeHandle(tt.index), approx)
			diff(t, tt.wantOther, p.RelativeHandle(1-tt.index), approx)
		})
	}
}

func TestSetHandleWorld(t *testing.T) {
	p := NewControlPoint(vec(10, 0, 0), math.Forward)
	p.SetHandle(1, vec(10, 0, 3))
	diff(t, vec(0, 0, 3), p.RelativeHandle(1), approx)
	diff(t, vec(10, 0, -3), p.Handle(0), approx)
}

func TestSetHandleMagnitudeClamps(t *testing.T) {
	for _, m := range []float32{0, -5, 0.001} {
		p := NewControlPoint(vec(0, 0, 0), math.Forward)
		p.SetHandleMagnitude(1, m)
		if got := p.HandleMagnitude(1); abs(got-MinHandleMagnitude) > 1e-6 {
			t.Errorf("SetHandleMagnitude(%v) gave %v, want %v", m, got, MinHandleMagnitude)
		}
		if p.HandleMagnitude(0) == 0 {
			t.Errorf("SetHandleMagnitude(%v) produced a zero opposite handle", m)
		}
	}
}

func TestSetHandleMagnitude(t *testing.T) {
	p := NewControlPoint(vec(0, 0, 0), math.Forward)
	p.SetHandleMagnitude(0, 4)
	diff(t, vec(0, 0, -4), p.RelativeHandle(0), approx)
	diff(t, vec(0, 0, 4), p.RelativeHandle(1), approx)

	p.SetMode(Aligned)
	p.SetHandleMagnitude(1, 2)
	diff(t, vec(0, 0, -4), p.RelativeHandle(0), approx)
	diff(t, vec(0, 0, 2), p.RelativeHandle(1), approx)
}

func TestSetRelativeHandleZeroKeepsDirection(t *testing.T) {
	p := NewControlPoint(vec(0, 0, 0), vec(2, 0, 0))
	p.SetMode(Free)
	p.SetRelativeHandle(1, math.Vec3{})
	diff(t, vec(MinHandleMagnitude, 0, 0), p.RelativeHandle(1), approx)
}

func TestMirroredInvariant(t *testing.T) {
	p := NewControlPoint(vec(0, 0, 0), math.Forward)
	p.SetMode(Free)
	p.SetRelativeHandle(0, vec(1, 1, 0))
	p.SetRelativeHandle(1, vec(0, 0, 3))

	edits := []func(){
		func() { p.SetMode(Mirrored) },
		func() { p.SetRelativeHandle(0, vec(2, -1, 5)) },
		func() { p.SetHandle(1, vec(0, 7, 0)) },
		func() { p.SetHandleMagnitude(0, 0) },
		func() { p.SetHandleMagnitude(1, 9) },
		func() { p.SetRotation(math.QuatFromAxisAngle(math.Up, 1)) },
	}
	for i, edit := range edits {
		edit()
		diff(t, p.RelativeHandle(1).Neg(), p.RelativeHandle(0), approx)
		if t.Failed() {
			t.Fatalf("mirrored invariant broken after edit %d", i)
		}
	}
}

func TestSetModeSnapsHandles(t *testing.T) {
	p := NewControlPoint(vec(0, 0, 0), math.Forward)
	p.SetMode(Free)
	p.SetRelativeHandle(0, vec(2, 0, 0))
	p.SetRelativeHandle(1, vec(0, 0, 1))

	p.SetMode(Aligned)
	diff(t, vec(0, 0, -2), p.RelativeHandle(0), approx)
	diff(t, vec(0, 0, 1), p.RelativeHandle(1), approx)
}

func TestRotationRoundTrip(t *testing.T) {
	p := NewControlPoint(vec(0, 0, 0), vec(0, 0, 4))
	p.SetMode(Free)
	p.SetRelativeHandle(0, vec(0, 0, -1))

	q := math.QuatFromAxisAngle(vec(1, 1, 0).Normalize(), 0.8)
	p.SetRotation(q)

	got := p.Rotation()
	if d := got.Dot(q); abs(abs(d)-1) > 1e-4 {
		t.Errorf("Rotation() = %v, want %v", got, q)
	}
	// Handle lengths survive rotation.
	if m := p.HandleMagnitude(0); abs(m-1) > 1e-4 {
		t.Errorf("handle 0 magnitude = %v, want 1", m)
	}
	if m := p.HandleMagnitude(1); abs(m-2) > 1e-4 {
		t.Errorf("handle 1 magnitude = %v, want 2", m)
	}
	diff(t, q.Rotate(math.Up), p.Up(), approx)
}

func TestScale(t *testing.T) {
	p := NewControlPoint(vec(1, 1, 1), vec(2, 2, 2))
	p.Scale(vec(2, 0.5, 1))
	diff(t, vec(2, 0.5, 1), p.RelativeHandle(1), approx)
	diff(t, vec(-2, -0.5, -1), p.RelativeHandle(0), approx)
	diff(t, vec(1, 1, 1), p.Anchor())

	p.Scale(math.Vec3{})
	for i := 0; i < 2; i++ {
		if m := p.HandleMagnitude(i); abs(m-MinHandleMagnitude) > 1e-6 {
			t.Errorf("zero scale left handle %d at %v, want %v", i, m, MinHandleMagnitude)
		}
	}
}

func TestEulerAngles(t *testing.T) {
	tests := []struct {
		name        string
		up, forward math.Vec3
		want        math.Vec3
	}{
		{"level north", math.Up, math.Forward, vec(0, 0, 0)},
		{"level east", math.Up, math.Right, vec(0, 90, 0)},
		{"climbing", vec(0, 1, -1), vec(0, 1, 1), vec(-45, 0, 0)},
		{"diving", vec(0, 1, 1), vec(0, -1, 1), vec(45, 0, 0)},
		{"climbing with world up", math.Up, vec(0, 1, 1), vec(-45, 0, 45)},
		{"banked right", vec(1, 1, 0), math.Forward, vec(0, 0, -45)},
		{"banked left", vec(-1, 1, 0), math.Forward, vec(0, 0, 45)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EulerAngles(tt.up, tt.forward)
			diff(t, tt.want, got, cmpopts.EquateApprox(0, 0.05))
		})
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{Free, Aligned, Mirrored} {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("smooth"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("ParseMode(smooth) error = %v, want ErrUnknownMode", err)
	}
}
